package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/bytecv/layout"
	"github.com/ByLCY/bytecv/renderer"
)

const defaultRuleWidth = 0.2

// Renderer draws layout results via github.com/tdewolff/canvas and doubles as
// the typesetter used for measurement, so both sides share one set of font metrics.
type Renderer struct {
	fonts *fontCache
}

var (
	_ renderer.Surface  = (*Renderer)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	BaseDir string              // 相对字体路径的根目录
	Fonts   map[string]Resource // 通过 builtin:<name> 引用的注入字体
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a canvas-based renderer rooted at baseDir for resolving font paths.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected fonts.
func NewRendererWithOptions(opts Options) *Renderer {
	return &Renderer{fonts: newFontCache(opts.BaseDir, opts.Fonts)}
}

// Render 把单页排版结果绘制为 PDF 字节。
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	page := result.Page
	if page.Width <= 0 || page.Height <= 0 {
		return nil, fmt.Errorf("页面尺寸无效: %gx%g", page.Width, page.Height)
	}

	var buf bytes.Buffer
	writer := pdf.New(&buf, page.Width, page.Height, nil)
	meta := result.Meta
	writer.SetInfo(meta.Title, meta.Subject, strings.Join(meta.Keywords, ", "), meta.Author, meta.Creator)

	c := canvas.New(page.Width, page.Height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

	r.drawLines(ctx, page.Lines)
	for _, tb := range page.Texts {
		font := lookupFont(tb.Font, result.Resources.Fonts)
		if err := r.drawTextBox(ctx, tb, font); err != nil {
			return nil, err
		}
	}
	c.RenderTo(writer)

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// LayoutLines 实现 layout.Typesetter 接口，使用贪心换行算法。
// 约定：fontSize/lineHeight 入参均为毫米（mm）。与字体系统交互使用 pt，在边界做 mm↔pt 换算。
func (r *Renderer) LayoutLines(content string, width float64, font layout.FontResource, fontSize, lineHeight float64, wrap string) ([]layout.TextLine, error) {
	face, err := r.fonts.face(font, toPt(fontSize), layout.Color{})
	if err != nil {
		return nil, err
	}
	lines := wrapText(content, width, face.TextWidth, wrap)

	textHeight := face.Metrics().LineHeight
	if textHeight <= 0 {
		textHeight = lineHeight
	}
	leading := math.Max(lineHeight-textHeight, 0)
	if len(lines) == 0 {
		lines = []layout.TextLine{{}}
	}
	for i := range lines {
		lines[i].Height = textHeight
		if i > 0 {
			lines[i].GapBefore = leading
		}
	}
	return lines, nil
}

func (r *Renderer) drawTextBox(ctx *canvas.Context, tb layout.TextBox, font layout.FontResource) error {
	face, err := r.fonts.face(font, toPt(tb.FontSize), tb.Color)
	if err != nil {
		return err
	}

	var align canvas.TextAlign
	anchorX := tb.X
	switch strings.ToLower(tb.Align) {
	case "center":
		align = canvas.Center
		anchorX += tb.Width / 2
	case "right":
		align = canvas.Right
		anchorX += tb.Width
	default:
		align = canvas.Left
	}

	ascent := face.Metrics().Ascent
	y := tb.Y
	for _, line := range tb.Lines {
		y += line.GapBefore
		if line.Content != "" {
			// 基线 = 行顶 + 字体上升部
			ctx.DrawText(anchorX, y+ascent, canvas.NewTextLine(face, line.Content, align))
		}
		h := line.Height
		if h <= 0 {
			h = tb.FontSize
		}
		y += h
	}
	return nil
}

// drawLines 绘制直线列表（毫米单位）。
func (r *Renderer) drawLines(ctx *canvas.Context, lines []layout.Line) {
	for _, ln := range lines {
		w := ln.Width
		if w <= 0 {
			w = defaultRuleWidth
		}
		ctx.SetStrokeColor(colorFromLayout(ln.Color))
		ctx.SetStrokeWidth(w)
		p := &canvas.Path{}
		p.MoveTo(0, 0)
		p.LineTo(ln.X2-ln.X1, ln.Y2-ln.Y1)
		ctx.DrawPath(ln.X1, ln.Y1, p)
	}
}

func lookupFont(name string, fonts map[string]layout.FontResource) layout.FontResource {
	if font, ok := fonts[name]; ok {
		return font
	}
	if font, ok := fonts["Body"]; ok {
		return font
	}
	return layout.FontResource{Name: name}
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }
