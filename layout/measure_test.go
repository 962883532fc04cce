package layout

import (
	"errors"
	"math"
	"strings"
	"testing"
	"unicode/utf8"
)

// stubTypesetter 是最小实现，仅用于测试，避免引入 renderer 造成循环依赖。
// 每个字符宽度为字号的一半，按宽度均匀切行。
type stubTypesetter struct {
	calls int
	fail  error
}

func (s *stubTypesetter) LayoutLines(content string, width float64, font FontResource, fontSize float64, lineHeight float64, wrap string) ([]TextLine, error) {
	s.calls++
	if s.fail != nil {
		return nil, s.fail
	}
	var lines []TextLine
	for _, para := range strings.Split(content, "\n") {
		total := float64(utf8.RuneCountInString(para)) * fontSize / 2
		if wrap == "nowrap" || width <= 0 || total <= width {
			lines = append(lines, TextLine{Content: para, Width: total, Height: fontSize})
			continue
		}
		n := int(math.Ceil(total / width))
		for i := 0; i < n; i++ {
			w := width
			if i == n-1 {
				w = total - width*float64(n-1)
			}
			lines = append(lines, TextLine{Content: para, Width: w, Height: fontSize})
		}
	}
	return lines, nil
}

func mustDefaultTheme(t *testing.T) *Theme {
	t.Helper()
	th, err := DefaultTheme()
	if err != nil {
		t.Fatalf("加载默认主题失败: %v", err)
	}
	return th
}

func TestMeasureHeightInvariant(t *testing.T) {
	th := mustDefaultTheme(t)
	m := NewMeasurer(&stubTypesetter{}, th, A4)
	b := Block{Key: "projects", Kind: BlockSection, Elements: []Element{
		{Kind: ElementHeading, Style: "heading", Text: "Projects"},
		{Kind: ElementColumns, Style: "item-title", Text: "ByteCV", Right: "2024", RightStyle: "meta-strong"},
		{Kind: ElementBullet, Style: "bullet", Text: "• " + strings.Repeat("long words ", 40)},
		{Kind: ElementSpacer, Style: "item-gap"},
	}}
	mb, err := m.Measure(b)
	if err != nil {
		t.Fatalf("测量失败: %v", err)
	}
	if mb.Height <= 0 {
		t.Fatalf("块高度应为正数: %g", mb.Height)
	}
	for _, tb := range mb.Texts {
		total := 0.0
		for _, ln := range tb.Lines {
			total += ln.GapBefore + ln.Height
		}
		if math.Abs(total-tb.Height) > 1e-9 {
			t.Fatalf("TextBox.Height 不变式不成立: got=%g want=%g", tb.Height, total)
		}
		if tb.Y+tb.Height > mb.Height+1e-9 {
			t.Fatalf("文本框超出块高度: %+v", tb)
		}
	}
	if len(mb.Lines) != 1 {
		t.Fatalf("标题应带一条横线, got %d", len(mb.Lines))
	}
	if got := mb.Texts[0].Content; got != "PROJECTS" {
		t.Fatalf("标题应转为大写, got %q", got)
	}
	// 圆点单独成框，正文去掉源文本里的圆点
	var body TextBox
	for _, tb := range mb.Texts {
		if strings.HasPrefix(tb.Content, "long") {
			body = tb
		}
	}
	if body.Content == "" || len(body.Lines) < 2 {
		t.Fatalf("长条目应折成多行: %+v", body)
	}
}

func TestMeasureIsDeterministicAndGrowsWithContent(t *testing.T) {
	th := mustDefaultTheme(t)
	m := NewMeasurer(&stubTypesetter{}, th, A4)
	short := Block{Key: "x", Elements: []Element{{Kind: ElementParagraph, Style: "item-body", Text: "short"}}}
	long := Block{Key: "x", Elements: []Element{{Kind: ElementParagraph, Style: "item-body", Text: strings.Repeat("word ", 200)}}}

	a, _ := m.Measure(short)
	b, _ := m.Measure(short)
	if a.Height != b.Height {
		t.Fatalf("同一内容两次测量结果不同: %g vs %g", a.Height, b.Height)
	}
	c, _ := m.Measure(long)
	if c.Height <= a.Height {
		t.Fatalf("折行内容应更高: short=%g long=%g", a.Height, c.Height)
	}
}

func TestMeasureColumnsSplitWidth(t *testing.T) {
	th := mustDefaultTheme(t)
	m := NewMeasurer(&stubTypesetter{}, th, A4)
	mb, err := m.Measure(Block{Key: "e", Elements: []Element{
		{Kind: ElementColumns, Style: "item-title", Text: "University", Right: "2019 - 2023", RightStyle: "meta-strong"},
	}})
	if err != nil {
		t.Fatalf("测量失败: %v", err)
	}
	if len(mb.Texts) != 2 {
		t.Fatalf("两栏应产生两个文本框, got %d", len(mb.Texts))
	}
	left, right := mb.Texts[0], mb.Texts[1]
	if right.Align != "right" || math.Abs(right.X+right.Width-m.Width()) > 1e-9 {
		t.Fatalf("右栏应贴右对齐: %+v", right)
	}
	if left.X+left.Width > right.X {
		t.Fatalf("左右栏重叠: left=%+v right=%+v", left, right)
	}
}

func TestMeasureErrors(t *testing.T) {
	th := mustDefaultTheme(t)
	boom := errors.New("surface lost")
	m := NewMeasurer(&stubTypesetter{fail: boom}, th, A4)
	if _, err := m.Measure(Block{Key: "h", Elements: []Element{{Kind: ElementParagraph, Style: "name", Text: "A"}}}); !errors.Is(err, boom) {
		t.Fatalf("排版后端错误应向上传递, got %v", err)
	}
	if _, err := NewMeasurer(nil, th, A4).Measure(Block{}); !errors.Is(err, ErrNoTypesetter) {
		t.Fatalf("缺少排版后端应返回 ErrNoTypesetter, got %v", err)
	}
	m = NewMeasurer(&stubTypesetter{}, th, A4)
	if _, err := m.Measure(Block{Key: "h", Elements: []Element{{Kind: ElementParagraph, Style: "nope"}}}); err == nil {
		t.Fatalf("未知样式应报错")
	}
}

func TestComposeStacksFromTopMargin(t *testing.T) {
	fit := FitResult{Included: []MeasuredBlock{
		{Block: Block{Key: "a"}, Height: 20, Texts: []TextBox{{Content: "a", X: 0, Y: 1}}},
		{Block: Block{Key: "b"}, Height: 30, Texts: []TextBox{{Content: "b", X: 2, Y: 0}}, Lines: []Line{{X1: 0, Y1: 5, X2: 10, Y2: 5}}},
	}}
	page := Compose(fit, A4)
	if page.Texts[0].Y != A4.Margin.Top+1 || page.Texts[0].X != A4.Margin.Left {
		t.Fatalf("第一块坐标不符: %+v", page.Texts[0])
	}
	if page.Texts[1].Y != A4.Margin.Top+20 || page.Texts[1].X != A4.Margin.Left+2 {
		t.Fatalf("第二块应紧接第一块: %+v", page.Texts[1])
	}
	if page.Lines[0].Y1 != A4.Margin.Top+25 || page.Lines[0].X2 != A4.Margin.Left+10 {
		t.Fatalf("横线坐标不符: %+v", page.Lines[0])
	}
}

func TestA4Geometry(t *testing.T) {
	if A4.Capacity() != 272 || A4.ContentWidth() != 196 {
		t.Fatalf("A4 几何不符: capacity=%g width=%g", A4.Capacity(), A4.ContentWidth())
	}
}
