package layout

import (
	_ "embed"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ByLCY/bytecv/binding"
	"github.com/ByLCY/bytecv/dsl"
	"github.com/ByLCY/bytecv/fonts"
)

//go:embed default.theme
var defaultThemeSource string

var (
	defaultOnce  sync.Once
	defaultTheme *Theme
	defaultErr   error
)

// Theme 是编译后的排版主题：资源、分类标题与 PDF 元信息模板。
type Theme struct {
	Name      string            `json:"name"`
	Version   string            `json:"version"`
	Resources ResourceSet       `json:"resources"`
	Headings  map[string]string `json:"headings"`
	Meta      DocumentMeta      `json:"meta"` // 含 ${path|fallback} 占位符
}

// TextStyle 是解析为数值（mm）后的文本样式。
type TextStyle struct {
	Name        string
	Font        FontResource
	FontName    string
	Size        float64
	LineHeight  float64
	Color       Color
	Align       string
	Wrap        string
	Transform   string
	SpaceBefore float64
	SpaceAfter  float64
	Indent      float64
	Rule        float64
	RuleGap     float64
	Gap         float64
}

// DefaultTheme 返回内置主题，只解析一次。
func DefaultTheme() (*Theme, error) {
	defaultOnce.Do(func() {
		defaultTheme, defaultErr = ParseTheme(defaultThemeSource)
	})
	return defaultTheme, defaultErr
}

// LoadTheme 从 io.Reader 读取并编译主题。
func LoadTheme(name string, r io.Reader) (*Theme, error) {
	ast, err := dsl.Parse(name, r)
	if err != nil {
		return nil, fmt.Errorf("解析主题失败: %w", err)
	}
	return compileTheme(ast)
}

// ParseTheme 编译主题源码。
func ParseTheme(src string) (*Theme, error) {
	return LoadTheme("", strings.NewReader(src))
}

func compileTheme(ast *dsl.Theme) (*Theme, error) {
	th := &Theme{
		Name:     ast.Name,
		Version:  ast.Version,
		Headings: map[string]string{},
		Meta:     DocumentMeta{Creator: ast.Name},
	}
	res, err := collectResources(ast)
	if err != nil {
		return nil, err
	}
	th.Resources = res

	for _, section := range ast.Sections {
		switch {
		case section.Meta != nil && section.Meta.Block != nil:
			collectMeta(section.Meta.Block, &th.Meta)
		case section.Headings != nil && section.Headings.Block != nil:
			for _, stmt := range section.Headings.Block.Statements {
				if stmt.Assignment != nil {
					th.Headings[stmt.Assignment.Key] = stmt.Assignment.Value.Text()
				}
			}
		}
	}
	return th, nil
}

func collectResources(ast *dsl.Theme) (ResourceSet, error) {
	res := ResourceSet{
		Fonts:  map[string]FontResource{},
		Colors: map[string]Color{},
		Styles: map[string]Style{},
	}
	rawStyles := map[string]Style{}

	for _, section := range ast.Sections {
		if section.Resources == nil || section.Resources.Block == nil {
			continue
		}
		for _, stmt := range section.Resources.Block.Statements {
			if stmt.Command == nil {
				continue
			}
			switch stmt.Command.Name {
			case "font":
				font := parseFontResource(stmt.Command)
				if font.Name != "" {
					res.Fonts[font.Name] = font
				}
			case "color":
				name, value := parseColorResource(stmt.Command)
				if name == "" || value == "" {
					continue
				}
				c, err := parseColor(value)
				if err != nil {
					return res, err
				}
				res.Colors[name] = c
			case "style":
				style := parseStyleResource(stmt.Command)
				if style.Name != "" {
					rawStyles[style.Name] = style
				}
			default:
				return res, fmt.Errorf("%s: 未知资源类型 %s", stmt.Command.Pos, stmt.Command.Name)
			}
		}
	}

	if len(res.Fonts) == 0 {
		res.Fonts["Body"] = FontResource{Name: "Body", Family: "Body", Src: fonts.Default}
	}

	resolved, err := resolveStyles(rawStyles)
	if err != nil {
		return res, err
	}
	res.Styles = resolved
	return res, nil
}

func collectMeta(block *dsl.Block, meta *DocumentMeta) {
	for _, stmt := range block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		val := stmt.Assignment.Value
		switch strings.ToLower(stmt.Assignment.Key) {
		case "title":
			meta.Title = val.Text()
		case "author":
			meta.Author = val.Text()
		case "subject":
			meta.Subject = val.Text()
		case "creator":
			meta.Creator = val.Text()
		case "keywords":
			meta.Keywords = val.Strings()
		}
	}
}

func parseFontResource(cmd *dsl.Command) FontResource {
	if len(cmd.Args) == 0 {
		return FontResource{}
	}
	font := FontResource{Name: cmd.Args[0].Value, Family: cmd.Args[0].Value}
	if cmd.Block == nil {
		return font
	}
	for _, stmt := range cmd.Block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		switch stmt.Assignment.Key {
		case "src":
			font.Src = stmt.Assignment.Value.Text()
		case "style":
			font.Style = stmt.Assignment.Value.Text()
		case "fallback":
			font.Fallback = stmt.Assignment.Value.Text()
		}
	}
	return font
}

func parseStyleResource(cmd *dsl.Command) Style {
	if len(cmd.Args) == 0 {
		return Style{}
	}
	style := Style{Name: cmd.Args[0].Value, Props: map[string]string{}}
	if len(cmd.Args) >= 3 && strings.EqualFold(cmd.Args[1].Value, "extends") {
		style.Extends = cmd.Args[2].Value
	}
	if cmd.Block == nil {
		return style
	}
	for _, stmt := range cmd.Block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		if val := stmt.Assignment.Value.Text(); val != "" {
			style.Props[stmt.Assignment.Key] = val
		}
	}
	return style
}

// resolveStyles 展开 extends 继承链，子样式覆盖父样式。
func resolveStyles(styles map[string]Style) (map[string]Style, error) {
	resolved := map[string]Style{}
	visiting := map[string]bool{}

	var dfs func(name string) (Style, error)
	dfs = func(name string) (Style, error) {
		if style, ok := resolved[name]; ok {
			return style, nil
		}
		style, ok := styles[name]
		if !ok {
			return Style{}, fmt.Errorf("style %s 未定义", name)
		}
		if visiting[name] {
			return Style{}, fmt.Errorf("style 继承存在循环：%s", name)
		}
		visiting[name] = true

		props := map[string]string{}
		if style.Extends != "" {
			parent, err := dfs(style.Extends)
			if err != nil {
				return Style{}, err
			}
			for k, v := range parent.Props {
				props[k] = v
			}
		}
		for k, v := range style.Props {
			props[k] = v
		}
		style.Props = props
		resolved[name] = style
		delete(visiting, name)
		return style, nil
	}

	for name := range styles {
		if _, err := dfs(name); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

func parseColorResource(cmd *dsl.Command) (string, string) {
	if len(cmd.Args) == 0 {
		return "", ""
	}
	name := cmd.Args[0].Value
	value := ""
	if len(cmd.Args) > 1 {
		value = cmd.Args[len(cmd.Args)-1].Value
	}
	return name, value
}

func parseColor(value string) (Color, error) {
	hex := strings.TrimPrefix(value, "#")
	switch len(hex) {
	case 3:
		hex = strings.Repeat(hex[0:1], 2) + strings.Repeat(hex[1:2], 2) + strings.Repeat(hex[2:3], 2)
	case 6, 8:
	default:
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	var out [3]int
	for i := range out {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("颜色值 %s 无法解析: %w", value, err)
		}
		out[i] = int(v)
	}
	return Color{R: out[0], G: out[1], B: out[2]}, nil
}

// Heading 返回分类键的打印标题；主题未声明时退回键本身。
func (t *Theme) Heading(key string) string {
	if h, ok := t.Headings[key]; ok && h != "" {
		return h
	}
	return key
}

// DocumentMeta 用 data 插值元信息模板。
func (t *Theme) DocumentMeta(data any) DocumentMeta {
	meta := DocumentMeta{
		Title:   binding.Interpolate(t.Meta.Title, data),
		Author:  binding.Interpolate(t.Meta.Author, data),
		Subject: binding.Interpolate(t.Meta.Subject, data),
		Creator: binding.Interpolate(t.Meta.Creator, data),
	}
	for _, k := range t.Meta.Keywords {
		meta.Keywords = append(meta.Keywords, binding.Interpolate(k, data))
	}
	return meta
}

// TextStyle 把样式名解析为数值样式。未知样式名是主题与调用方不一致，返回错误。
func (t *Theme) TextStyle(name string) (TextStyle, error) {
	style, ok := t.Resources.Styles[name]
	if !ok {
		return TextStyle{}, fmt.Errorf("style %s 未定义", name)
	}
	props := style.Props

	ts := TextStyle{
		Name:      name,
		FontName:  props["font"],
		Size:      BaseFontSize * PtToMm,
		Align:     normalizeAlign(props["align"]),
		Wrap:      normalizeWrap(props["wrap"]),
		Transform: strings.ToLower(strings.TrimSpace(props["transform"])),
	}
	if v := ParseLength(props["size"]); v.Value > 0 {
		ts.Size = v.ToMM()
	}
	ts.LineHeight = LineHeightSpec{Factor: BaseLineHeight}.ResolveMM(ts.Size)
	if spec, ok := ParseLineHeight(props["line-height"]); ok {
		ts.LineHeight = spec.ResolveMM(ts.Size)
	}
	ts.Color = t.resolveColor(props["color"])
	ts.SpaceBefore = ParseLength(props["space-before"]).ToMM()
	ts.SpaceAfter = ParseLength(props["space-after"]).ToMM()
	ts.Indent = ParseLength(props["indent"]).ToMM()
	ts.Rule = ParseLength(props["rule"]).ToMM()
	ts.RuleGap = ParseLength(props["rule-gap"]).ToMM()
	ts.Gap = ParseLength(props["gap"]).ToMM()

	font, err := t.resolveFont(ts.FontName)
	if err != nil {
		return TextStyle{}, err
	}
	ts.Font = font
	ts.FontName = font.Name
	return ts, nil
}

// Apply 对文本执行样式的大小写变换。
func (s TextStyle) Apply(text string) string {
	switch s.Transform {
	case "uppercase":
		return cases.Upper(language.Und).String(text)
	case "lowercase":
		return cases.Lower(language.Und).String(text)
	case "capitalize":
		return cases.Title(language.Und, cases.NoLower).String(text)
	default:
		return text
	}
}

func (t *Theme) resolveFont(name string) (FontResource, error) {
	if font, ok := t.Resources.Fonts[name]; ok {
		return font, nil
	}
	if font, ok := t.Resources.Fonts["Body"]; ok {
		return font, nil
	}
	for _, font := range t.Resources.Fonts {
		return font, nil
	}
	return FontResource{}, fmt.Errorf("字体 %s 未定义，且没有可用的默认字体", name)
}

func (t *Theme) resolveColor(value string) Color {
	if c, ok := t.Resources.Colors[value]; ok {
		return c
	}
	if strings.HasPrefix(value, "#") {
		if c, err := parseColor(value); err == nil {
			return c
		}
	}
	return Color{}
}

func normalizeAlign(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "center", "middle":
		return "center"
	case "right", "end":
		return "right"
	default:
		return ""
	}
}

func normalizeWrap(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "nowrap", "no-wrap":
		return "nowrap"
	case "break-word", "break-all":
		return "break-word"
	default:
		return "anywhere"
	}
}
