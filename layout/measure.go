package layout

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrNoTypesetter 表示测量面不可用。
var ErrNoTypesetter = errors.New("layout: typesetter unavailable")

const bulletMarker = "•"

// Measurer 是测量适配器：在固定内容宽度下通过真实字体度量排版块，返回其高度。
// 同一内容、同一宽度与主题总是得到同样的高度；测量不做跨次缓存。
type Measurer struct {
	ts    Typesetter
	theme *Theme
	width float64
}

// NewMeasurer 使用给定排版后端、主题与页面几何创建测量器。
func NewMeasurer(ts Typesetter, theme *Theme, g Geometry) *Measurer {
	return &Measurer{ts: ts, theme: theme, width: g.ContentWidth()}
}

// Width 返回测量使用的内容宽度（mm）。
func (m *Measurer) Width() float64 { return m.width }

// Measure 排版一个块，文本框与横线坐标相对块左上角。
func (m *Measurer) Measure(b Block) (MeasuredBlock, error) {
	if m == nil || m.ts == nil {
		return MeasuredBlock{}, ErrNoTypesetter
	}
	if m.theme == nil {
		return MeasuredBlock{}, errors.New("layout: theme missing")
	}
	out := MeasuredBlock{Block: b}
	cursor := 0.0
	for i, el := range b.Elements {
		next, err := m.place(el, cursor, &out)
		if err != nil {
			return MeasuredBlock{}, fmt.Errorf("measure %s[%d] (%s): %w", b.Key, i, el.Kind, err)
		}
		cursor = next
	}
	out.Height = cursor
	return out, nil
}

// place 放置单个元素并返回新的纵向游标。
func (m *Measurer) place(el Element, y float64, out *MeasuredBlock) (float64, error) {
	switch el.Kind {
	case ElementSpacer:
		if el.Height > 0 {
			return y + el.Height, nil
		}
		if el.Style == "" {
			return y, nil
		}
		st, err := m.theme.TextStyle(el.Style)
		if err != nil {
			return y, err
		}
		return y + st.SpaceBefore + st.SpaceAfter, nil

	case ElementParagraph:
		st, err := m.theme.TextStyle(el.Style)
		if err != nil {
			return y, err
		}
		y += st.SpaceBefore
		tb, err := m.textBox(st, st.Apply(el.Text), st.Indent, y, m.width-st.Indent)
		if err != nil {
			return y, err
		}
		out.Texts = append(out.Texts, tb)
		return y + tb.Height + st.SpaceAfter, nil

	case ElementHeading:
		st, err := m.theme.TextStyle(el.Style)
		if err != nil {
			return y, err
		}
		y += st.SpaceBefore
		tb, err := m.textBox(st, st.Apply(el.Text), 0, y, m.width)
		if err != nil {
			return y, err
		}
		out.Texts = append(out.Texts, tb)
		y += tb.Height
		if st.Rule > 0 {
			y += st.RuleGap
			out.Lines = append(out.Lines, Line{X1: 0, Y1: y, X2: m.width, Y2: y, Color: st.Color, Width: st.Rule})
			y += st.Rule
		}
		return y + st.SpaceAfter, nil

	case ElementBullet:
		st, err := m.theme.TextStyle(el.Style)
		if err != nil {
			return y, err
		}
		y += st.SpaceBefore
		// 悬挂缩进 1em：圆点占据第一格，正文整体右移
		hang := st.Size
		text := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(el.Text), bulletMarker))
		marker, err := m.textBox(st, bulletMarker, st.Indent, y, hang)
		if err != nil {
			return y, err
		}
		marker.Align = ""
		body, err := m.textBox(st, st.Apply(text), st.Indent+hang, y, m.width-st.Indent-hang)
		if err != nil {
			return y, err
		}
		out.Texts = append(out.Texts, marker, body)
		return y + math.Max(marker.Height, body.Height) + st.SpaceAfter, nil

	case ElementColumns:
		return m.placeColumns(el, y, out)

	default:
		return y, fmt.Errorf("未知元素类型 %q", el.Kind)
	}
}

// placeColumns 左栏自适应，右栏宽度取其最长的不折行内容，两栏之间留出左栏样式的 gap。
func (m *Measurer) placeColumns(el Element, y float64, out *MeasuredBlock) (float64, error) {
	left, err := m.theme.TextStyle(el.Style)
	if err != nil {
		return y, err
	}
	y += left.SpaceBefore
	if strings.TrimSpace(el.Right) == "" {
		tb, err := m.textBox(left, left.Apply(el.Text), left.Indent, y, m.width-left.Indent)
		if err != nil {
			return y, err
		}
		out.Texts = append(out.Texts, tb)
		return y + tb.Height + left.SpaceAfter, nil
	}

	right, err := m.theme.TextStyle(el.RightStyle)
	if err != nil {
		return y, err
	}
	rightText := right.Apply(el.Right)
	natural, err := m.ts.LayoutLines(rightText, 0, right.Font, right.Size, right.LineHeight, "nowrap")
	if err != nil {
		return y, err
	}
	rightWidth := 0.0
	for _, ln := range natural {
		rightWidth = math.Max(rightWidth, ln.Width)
	}
	rightWidth = math.Min(rightWidth, m.width/2)
	leftWidth := m.width - left.Indent - rightWidth - left.Gap

	lb, err := m.textBox(left, left.Apply(el.Text), left.Indent, y, leftWidth)
	if err != nil {
		return y, err
	}
	rb, err := m.textBox(right, rightText, m.width-rightWidth, y, rightWidth)
	if err != nil {
		return y, err
	}
	rb.Align = "right"
	out.Texts = append(out.Texts, lb, rb)
	return y + math.Max(lb.Height, rb.Height) + left.SpaceAfter, nil
}

// textBox 通过 Typesetter 折行，盒子高度为各行高度与行间距之和。
func (m *Measurer) textBox(st TextStyle, content string, x, y, width float64) (TextBox, error) {
	lines, err := m.ts.LayoutLines(content, width, st.Font, st.Size, st.LineHeight, st.Wrap)
	if err != nil {
		return TextBox{}, err
	}
	if len(lines) == 0 {
		lines = []TextLine{{Content: "", Height: st.Size}}
	}
	leading := math.Max(st.LineHeight-st.Size, 0)
	total := 0.0
	for i := range lines {
		if lines[i].Height <= 0 {
			lines[i].Height = st.Size
		}
		if i == 0 {
			lines[i].GapBefore = 0
		} else if lines[i].GapBefore <= 0 {
			lines[i].GapBefore = leading
		}
		total += lines[i].GapBefore + lines[i].Height
	}
	return TextBox{
		Content:    content,
		X:          x,
		Y:          y,
		Width:      width,
		LineHeight: st.LineHeight,
		Font:       st.FontName,
		FontSize:   st.Size,
		Color:      st.Color,
		Lines:      lines,
		Height:     total,
		Align:      st.Align,
		Wrap:       st.Wrap,
	}, nil
}
