package layout

// Geometry 是固定的页面几何，单位 mm。
type Geometry struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Margin Margin  `json:"margin"`
}

// A4 是唯一支持的纸张：上 10mm、下 15mm，左右留白 8mm/6mm。
var A4 = Geometry{
	Width:  210,
	Height: 297,
	Margin: Margin{Top: 10, Right: 6, Bottom: 15, Left: 8},
}

// 基础字号（pt）与行高倍数，主题样式未声明时使用。
const (
	BaseFontSize   = 10.0
	BaseLineHeight = 1.2
)

// Capacity 返回单页可用高度（页面高度减去上下边距）。
func (g Geometry) Capacity() float64 {
	return g.Height - g.Margin.Top - g.Margin.Bottom
}

// ContentWidth 返回测量时使用的固定内容宽度。
func (g Geometry) ContentWidth() float64 {
	return g.Width - g.Margin.Left - g.Margin.Right
}
