// Package export 在独立的排版面上重新执行流水线并输出单页 PDF。
// 预览与导出使用同一个分类渲染器与装箱规则，截断行为一致。
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/sirupsen/logrus"

	"github.com/ByLCY/bytecv/layout"
	"github.com/ByLCY/bytecv/metrics"
	"github.com/ByLCY/bytecv/pipeline"
	"github.com/ByLCY/bytecv/renderer"
	"github.com/ByLCY/bytecv/resume"
)

// ErrNoSink 表示未配置对象存储，无法发布。
var ErrNoSink = errors.New("export: no object storage configured")

const contentType = "application/pdf"

// Sink 是发布导出文件的对象存储。
type Sink interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	PresignedURL(ctx context.Context, key, fileName string, expires time.Duration) (string, error)
}

// Options 配置 Exporter。
type Options struct {
	Sink   Sink
	URLTTL time.Duration
	Logger *logrus.Entry
}

// Exporter 拥有自己的排版面，不与预览共享测量状态。
type Exporter struct {
	surface renderer.Surface
	pipe    *pipeline.Pipeline
	sink    Sink
	ttl     time.Duration
	log     *logrus.Entry
	now     func() time.Time
}

// Published 描述一次发布的结果。
type Published struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	FileName  string    `json:"fileName"`
	Truncated bool      `json:"truncated"`
	Expires   time.Time `json:"expires"`
}

func New(surface renderer.Surface, theme *layout.Theme, g layout.Geometry, opts Options) *Exporter {
	log := opts.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	ttl := opts.URLTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Exporter{
		surface: surface,
		pipe:    pipeline.New(surface, theme, g),
		sink:    opts.Sink,
		ttl:     ttl,
		log:     log,
		now:     time.Now,
	}
}

// Render 排版并输出 PDF，同时返回排版结果（用于判断是否截断）。
func (e *Exporter) Render(doc *resume.Document) (*layout.Result, []byte, error) {
	res, err := e.pipe.Run(doc.Clone())
	if err != nil {
		return nil, nil, err
	}
	pdf, err := e.surface.Render(res)
	if err != nil {
		return res, nil, fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	return res, pdf, nil
}

// PDF 返回文档的单页 PDF。
func (e *Exporter) PDF(doc *resume.Document) ([]byte, error) {
	res, pdf, err := e.Render(doc)
	metrics.Exports.WithLabelValues("download", metrics.Result(err)).Inc()
	if err != nil {
		e.log.WithError(err).Error("export failed")
		return nil, err
	}
	if res.Fit.Truncated {
		e.log.WithField("included", len(res.Fit.Included)).Warn("export truncated to one page")
	}
	return pdf, nil
}

// Publish 上传 PDF 到对象存储并返回限时下载链接。
func (e *Exporter) Publish(ctx context.Context, doc *resume.Document) (Published, error) {
	if e.sink == nil {
		return Published{}, ErrNoSink
	}
	out, err := e.publish(ctx, doc)
	metrics.Exports.WithLabelValues("publish", metrics.Result(err)).Inc()
	if err != nil {
		e.log.WithError(err).Error("publish failed")
	}
	return out, err
}

func (e *Exporter) publish(ctx context.Context, doc *resume.Document) (Published, error) {
	res, pdf, err := e.Render(doc)
	if err != nil {
		return Published{}, err
	}
	now := e.now()
	name := FileName(doc)
	key := fmt.Sprintf("exports/%s-%d.pdf", slug(name), now.Unix())
	if err := e.sink.Upload(ctx, key, bytes.NewReader(pdf), int64(len(pdf)), contentType); err != nil {
		return Published{}, fmt.Errorf("上传 %s 失败: %w", key, err)
	}
	url, err := e.sink.PresignedURL(ctx, key, name, e.ttl)
	if err != nil {
		return Published{}, fmt.Errorf("生成下载链接失败: %w", err)
	}
	return Published{
		Key:       key,
		URL:       url,
		FileName:  name,
		Truncated: res.Fit.Truncated,
		Expires:   now.Add(e.ttl),
	}, nil
}

// FileName 返回下载文件名 <Name>_Resume.pdf；非字母数字字符替换为 "_"，姓名为空时为 Resume.pdf。
func FileName(doc *resume.Document) string {
	if doc == nil {
		return "Resume.pdf"
	}
	name := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, strings.TrimSpace(doc.PersonalInfo.Name))
	name = strings.Trim(name, "_")
	if name == "" {
		return "Resume.pdf"
	}
	return name + "_Resume.pdf"
}

func slug(fileName string) string {
	s := strings.ToLower(strings.TrimSuffix(fileName, ".pdf"))
	s = strings.ReplaceAll(s, "_", "-")
	var b strings.Builder
	for _, r := range s {
		if r < 0x80 {
			b.WriteRune(r)
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "resume"
	}
	return out
}
