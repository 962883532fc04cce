// Package pipeline 串联一次完整的排版：渲染块 → 逐块测量 → 单页装箱 → 组版。
package pipeline

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ByLCY/bytecv/binding"
	"github.com/ByLCY/bytecv/layout"
	"github.com/ByLCY/bytecv/resume"
	"github.com/ByLCY/bytecv/sections"
)

// ErrMeasure 表示测量面失败，本次排版被放弃。
var ErrMeasure = errors.New("pipeline: measurement failed")

// Pipeline 独占一个测量面；同一时刻只进行一次排版。
type Pipeline struct {
	mu       sync.Mutex
	theme    *layout.Theme
	geometry layout.Geometry
	measurer *layout.Measurer
}

// New 使用排版后端、主题与页面几何创建流水线。
func New(ts layout.Typesetter, theme *layout.Theme, g layout.Geometry) *Pipeline {
	return &Pipeline{
		theme:    theme,
		geometry: g,
		measurer: layout.NewMeasurer(ts, theme, g),
	}
}

// Theme 返回流水线使用的主题。
func (p *Pipeline) Theme() *layout.Theme { return p.theme }

// Geometry 返回页面几何。
func (p *Pipeline) Geometry() layout.Geometry { return p.geometry }

// Run 对文档快照执行一次完整排版。每次都重新测量所有块，不复用上一次的结果。
func (p *Pipeline) Run(doc *resume.Document) (*layout.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	blocks := sections.Render(doc, p.theme)
	measured := make([]layout.MeasuredBlock, 0, len(blocks))
	for _, b := range blocks {
		mb, err := p.measurer.Measure(b)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMeasure, err)
		}
		measured = append(measured, mb)
	}

	fit := layout.Fit(measured, p.geometry.Capacity())
	res := &layout.Result{
		Page:      layout.Compose(fit, p.geometry),
		Fit:       fit,
		Resources: p.theme.Resources,
		Meta:      p.meta(doc),
	}
	return res, nil
}

func (p *Pipeline) meta(doc *resume.Document) layout.DocumentMeta {
	record, err := binding.Record(doc)
	if err != nil {
		// 无法转换时按空数据插值，模板中的 fallback 仍然生效
		record = nil
	}
	return p.theme.DocumentMeta(record)
}
