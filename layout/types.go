package layout

// 该文件定义排版结果与资源描述，供测量、装箱、渲染与调试 JSON 共用。

// Result 是一次排版流水线的完整产物：单页页面、装箱结果与资源信息。
type Result struct {
	Page      Page         `json:"page"`
	Fit       FitResult    `json:"fit"`
	Resources ResourceSet  `json:"resources"`
	Meta      DocumentMeta `json:"meta"`
}

// ResourceSet 记录解析出的字体、颜色与样式定义。
type ResourceSet struct {
	Fonts  map[string]FontResource `json:"fonts"`
	Colors map[string]Color        `json:"colors"`
	Styles map[string]Style        `json:"styles"`
}

// FontResource 描述字体资源，src 可以是文件路径或 embed:<name>。
type FontResource struct {
	Name     string `json:"name"`
	Src      string `json:"src"`
	Style    string `json:"style,omitempty"`
	Family   string `json:"family"` // 渲染器使用的 Family 名称
	Fallback string `json:"fallback,omitempty"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Page 记录页面尺寸、边距与最终可以直接渲染的元素（页面坐标，mm）。
type Page struct {
	Width  float64   `json:"width"`
	Height float64   `json:"height"`
	Margin Margin    `json:"margin"`
	Texts  []TextBox `json:"texts"`
	Lines  []Line    `json:"lines,omitempty"`
}

// Margin 以毫米为单位。
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// TextBox 表示一个已经排好坐标的文本块。
type TextBox struct {
	Content    string     `json:"content"`
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	Width      float64    `json:"width"`
	LineHeight float64    `json:"lineHeight"`
	Font       string     `json:"font"`
	FontSize   float64    `json:"fontSize"`
	Color      Color      `json:"color"`
	Lines      []TextLine `json:"lines"`
	Height     float64    `json:"height"`
	Align      string     `json:"align,omitempty"` // left/center/right，默认 left
	Wrap       string     `json:"wrap,omitempty"`
}

// TextLine 表示排版后的一行文本内容及其宽高。
type TextLine struct {
	Content   string  `json:"content"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	GapBefore float64 `json:"gapBefore,omitempty"`
}

// Line 表示一条线段（标题下划线等）。
type Line struct {
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Color Color   `json:"color"`
	Width float64 `json:"width"` // 线宽（mm），<=0 时由渲染器给默认值
}

// Style 用于描述可继承的文本样式。
type Style struct {
	Name    string            `json:"name"`
	Extends string            `json:"extends,omitempty"`
	Props   map[string]string `json:"props"`
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}

// BlockKind 区分页眉块、内置分类块与自定义段落块。
type BlockKind string

const (
	BlockHeader  BlockKind = "header"
	BlockSection BlockKind = "section"
	BlockCustom  BlockKind = "custom"
)

// ElementKind 是块内元素的种类。
type ElementKind string

const (
	ElementParagraph ElementKind = "paragraph"
	ElementHeading   ElementKind = "heading"
	ElementBullet    ElementKind = "bullet"
	ElementColumns   ElementKind = "columns"
	ElementSpacer    ElementKind = "spacer"
)

// Element 是块内的一段抽象内容，按样式名引用主题。
// Columns 使用 Text/Style 作为左栏、Right/RightStyle 作为右栏；Spacer 只使用 Height。
type Element struct {
	Kind       ElementKind `json:"kind"`
	Style      string      `json:"style,omitempty"`
	Text       string      `json:"text,omitempty"`
	Right      string      `json:"right,omitempty"`
	RightStyle string      `json:"rightStyle,omitempty"`
	Height     float64     `json:"height,omitempty"`
}

// Block 是一个不可拆分的内容单元：要么整体上页，要么整体丢弃。
type Block struct {
	Key      string    `json:"key"`
	Kind     BlockKind `json:"kind"`
	Elements []Element `json:"elements"`
}

// MeasuredBlock 是测量后的块，Texts/Lines 的坐标相对块左上角。
type MeasuredBlock struct {
	Block
	Height float64   `json:"height"`
	Texts  []TextBox `json:"texts,omitempty"`
	Lines  []Line    `json:"lines,omitempty"`
}

// FitResult 是单页装箱结果：Included 恒为输入序列的前缀。
type FitResult struct {
	Included  []MeasuredBlock `json:"included"`
	Truncated bool            `json:"truncated"`
	Used      float64         `json:"used"`
	Capacity  float64         `json:"capacity"`
}

// Keys 返回已上页块的键。
func (f FitResult) Keys() []string {
	out := make([]string, 0, len(f.Included))
	for _, b := range f.Included {
		out = append(out, b.Key)
	}
	return out
}
