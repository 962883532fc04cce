package canvasrenderer

import (
	"math"
	"strings"
	"unicode"

	"github.com/ByLCY/bytecv/layout"
)

// lineBuilder 累积当前行内容与宽度（mm）。
type lineBuilder struct {
	buf   strings.Builder
	width float64
	out   []layout.TextLine
}

func (lb *lineBuilder) add(s string, w float64) {
	lb.buf.WriteString(s)
	lb.width += w
}

// flush 输出当前行；keepEmpty 为 true 时空行也会保留（显式换行）。
func (lb *lineBuilder) flush(keepEmpty bool) {
	if lb.buf.Len() == 0 {
		if keepEmpty {
			lb.out = append(lb.out, layout.TextLine{})
		}
		return
	}
	lb.out = append(lb.out, layout.TextLine{Content: strings.TrimRightFunc(lb.buf.String(), unicode.IsSpace), Width: lb.width})
	lb.buf.Reset()
	lb.width = 0
}

// wrapText 贪心折行。wrap 取值：
//   - nowrap：仅按显式换行分割；
//   - break-word：忽略空白，逐字符按宽度切分；
//   - 其他：优先在空白处断行，单词超宽时在词内拆分。
func wrapText(content string, width float64, measure func(string) float64, wrap string) []layout.TextLine {
	limit := width
	if limit <= 0 {
		limit = math.MaxFloat64
	}
	content = strings.ReplaceAll(content, "\r", "")

	if wrap == "nowrap" {
		parts := strings.Split(content, "\n")
		lines := make([]layout.TextLine, 0, len(parts))
		for _, p := range parts {
			lines = append(lines, layout.TextLine{Content: p, Width: measure(p)})
		}
		return lines
	}

	lb := &lineBuilder{}
	if wrap == "break-word" {
		for _, r := range content {
			if r == '\n' {
				lb.flush(true)
				continue
			}
			s := string(r)
			w := measure(s)
			if lb.width > 0 && lb.width+w > limit {
				lb.flush(false)
			}
			lb.add(s, w)
		}
		lb.flush(true)
		return lb.out
	}

	for _, token := range tokenize(content) {
		if token == "\n" {
			lb.flush(true)
			continue
		}
		w := measure(token)
		isSpace := strings.TrimSpace(token) == ""
		if lb.width > 0 && lb.width+w > limit {
			lb.flush(false)
			if isSpace {
				// 行首空白直接丢弃
				continue
			}
		}
		if w <= limit {
			lb.add(token, w)
			continue
		}
		for _, chunk := range splitByWidth(token, limit, measure) {
			cw := measure(chunk)
			if lb.width > 0 && lb.width+cw > limit {
				lb.flush(false)
			}
			lb.add(chunk, cw)
		}
	}
	lb.flush(true)
	return lb.out
}

// tokenize 把文本拆成交替的空白/非空白片段，显式换行单独成为 "\n"。
func tokenize(s string) []string {
	var tokens []string
	var cur strings.Builder
	curSpace := false
	for _, r := range s {
		if r == '\n' {
			if cur.Len() > 0 {
				tokens = append(tokens, cur.String())
				cur.Reset()
			}
			tokens = append(tokens, "\n")
			continue
		}
		space := unicode.IsSpace(r)
		if cur.Len() > 0 && space != curSpace {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
		curSpace = space
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		tokens = append(tokens, cur.String())
	}
	return tokens
}

func splitByWidth(token string, limit float64, measure func(string) float64) []string {
	if limit <= 0 || limit == math.MaxFloat64 {
		return []string{token}
	}
	var parts []string
	var cur []rune
	for _, r := range token {
		cur = append(cur, r)
		if len(cur) > 1 && measure(string(cur)) > limit {
			parts = append(parts, string(cur[:len(cur)-1]))
			cur = []rune{r}
		}
	}
	if len(cur) > 0 {
		parts = append(parts, string(cur))
	}
	return parts
}
