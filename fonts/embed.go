package fonts

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// 内置字体使用 Go 字体家族，无需额外分发字体文件。
var builtin = map[string][]byte{
	"Go-Regular":    goregular.TTF,
	"Go-Bold":       gobold.TTF,
	"Go-Italic":     goitalic.TTF,
	"Go-BoldItalic": gobolditalic.TTF,
	"Go-Medium":     gomedium.TTF,
	"Go-Mono":       gomono.TTF,
}

// Default 是主题未声明可用字体时的兜底字体。
const Default = "embed:Go-Regular"

// IsEmbedded 判断 src 是否指向内置字体。
func IsEmbedded(src string) bool { return strings.HasPrefix(src, "embed:") }

// Load 返回内置字体的字节数据，path 可写为 "embed:Go-Bold" 或 "Go-Bold.ttf"。
func Load(path string) ([]byte, error) {
	name := strings.TrimSuffix(strings.TrimPrefix(path, "embed:"), ".ttf")
	data, ok := builtin[name]
	if !ok {
		return nil, fmt.Errorf("读取内置字体 %s 失败: 可用字体 %s", name, strings.Join(Names(), ", "))
	}
	return data, nil
}

// Names 返回全部内置字体名（已排序）。
func Names() []string {
	out := make([]string, 0, len(builtin))
	for name := range builtin {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
