package canvasrenderer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/bytecv/fonts"
	"github.com/ByLCY/bytecv/layout"
)

// fontCache 按资源缓存已加载的字体族。加载失败时依次尝试资源自带的 fallback
// 与内置默认字体，缓存本身由 mu 保护，可被多个渲染器调用方共享。
type fontCache struct {
	baseDir  string
	injected map[string][]byte

	mu       sync.Mutex
	families map[string]*familyEntry
	fallback *canvas.FontFamily
}

type familyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

func newFontCache(baseDir string, injected map[string]Resource) *fontCache {
	fc := &fontCache{
		baseDir:  baseDir,
		injected: map[string][]byte{},
		families: map[string]*familyEntry{},
	}
	for name, res := range injected {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			fc.injected[name] = res.Bytes
			continue
		}
		if res.Path != "" {
			// 读取失败留到真正使用时报告
			if data, err := os.ReadFile(res.Path); err == nil {
				fc.injected[name] = data
			}
		}
	}
	return fc
}

func (fc *fontCache) face(font layout.FontResource, sizePt float64, col layout.Color) (*canvas.FontFace, error) {
	family, style, err := fc.family(font)
	if err != nil {
		return nil, err
	}
	return family.Face(sizePt, colorFromLayout(col), style, canvas.FontNormal), nil
}

func (fc *fontCache) family(font layout.FontResource) (*canvas.FontFamily, canvas.FontStyle, error) {
	key := fmt.Sprintf("%s|%s|%s", font.Name, font.Src, font.Style)
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if entry, ok := fc.families[key]; ok {
		return entry.family, entry.style, nil
	}

	style := parseFontStyle(font.Style)
	name := font.Family
	if name == "" {
		name = font.Name
	}
	if name == "" {
		name = "Body"
	}

	var loadErr error
	for _, src := range []string{font.Src, font.Fallback} {
		if src == "" {
			continue
		}
		family := canvas.NewFontFamily(name)
		data, err := fc.bytes(src)
		if err == nil {
			err = family.LoadFont(data, 0, style)
		}
		if err == nil {
			fc.families[key] = &familyEntry{family: family, style: style}
			return family, style, nil
		}
		if loadErr == nil {
			loadErr = fmt.Errorf("加载字体 %s (%s) 失败: %w", font.Name, src, err)
		}
	}
	if loadErr == nil {
		loadErr = fmt.Errorf("字体 %s 缺少 src", font.Name)
	}

	fallback, err := fc.defaultFamily()
	if err != nil {
		return nil, canvas.FontRegular, loadErr
	}
	fc.families[key] = &familyEntry{family: fallback, style: canvas.FontRegular}
	return fallback, canvas.FontRegular, nil
}

func (fc *fontCache) bytes(src string) ([]byte, error) {
	if strings.HasPrefix(src, "built-in:") || strings.HasPrefix(src, "builtin:") {
		name := strings.TrimPrefix(strings.TrimPrefix(src, "built-in:"), "builtin:")
		if blob, ok := fc.injected[name]; ok {
			return blob, nil
		}
		return nil, fmt.Errorf("找不到内置字体资源 builtin:%s", name)
	}
	if fonts.IsEmbedded(src) {
		return fonts.Load(src)
	}
	path := src
	if !filepath.IsAbs(path) {
		if fc.baseDir == "" {
			return nil, fmt.Errorf("未指定资源目录时不允许直接使用字体路径：%s（请改用 builtin: 或 embed:）", src)
		}
		path = filepath.Join(fc.baseDir, path)
	}
	return os.ReadFile(path)
}

// defaultFamily 调用方需持有 mu。
func (fc *fontCache) defaultFamily() (*canvas.FontFamily, error) {
	if fc.fallback != nil {
		return fc.fallback, nil
	}
	data, err := fonts.Load(fonts.Default)
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily("bytecv-fallback")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, err
	}
	fc.fallback = family
	return family, nil
}

func parseFontStyle(style string) canvas.FontStyle {
	s := strings.ToLower(style)
	result := canvas.FontRegular
	switch {
	case s == "":
		return canvas.FontRegular
	case strings.Contains(s, "black"):
		result = canvas.FontBlack
	case strings.Contains(s, "extrabold"):
		result = canvas.FontExtraBold
	case strings.Contains(s, "semibold"), strings.Contains(s, "demibold"):
		result = canvas.FontSemiBold
	case strings.Contains(s, "bold"):
		result = canvas.FontBold
	case strings.Contains(s, "medium"):
		result = canvas.FontMedium
	case strings.Contains(s, "light"):
		result = canvas.FontLight
	}
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		result |= canvas.FontItalic
	}
	return result
}
