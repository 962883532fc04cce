package layout

// Fit 按顺序贪心装箱：块依次累加高度，只要 used+h <= capacity 就上页；
// 第一个放不下的块及其后所有块全部丢弃并标记 Truncated。
// 块不可拆分、不重排、不跳过，页眉块同样遵守该规则。
func Fit(blocks []MeasuredBlock, capacity float64) FitResult {
	res := FitResult{Capacity: capacity, Included: []MeasuredBlock{}}
	for i, b := range blocks {
		if res.Used+b.Height > capacity {
			res.Truncated = true
			break
		}
		res.Included = blocks[: i+1 : i+1]
		res.Used += b.Height
	}
	return res
}
