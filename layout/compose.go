package layout

// Compose 把已上页的块从上边距开始依次堆叠，转换为页面坐标。
func Compose(fit FitResult, g Geometry) Page {
	page := Page{Width: g.Width, Height: g.Height, Margin: g.Margin}
	y := g.Margin.Top
	for _, b := range fit.Included {
		for _, tb := range b.Texts {
			tb.X += g.Margin.Left
			tb.Y += y
			page.Texts = append(page.Texts, tb)
		}
		for _, ln := range b.Lines {
			ln.X1 += g.Margin.Left
			ln.X2 += g.Margin.Left
			ln.Y1 += y
			ln.Y2 += y
			page.Lines = append(page.Lines, ln)
		}
		y += b.Height
	}
	return page
}
