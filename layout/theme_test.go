package layout

import (
	"math"
	"strings"
	"testing"
)

func TestDefaultThemeStyles(t *testing.T) {
	th := mustDefaultTheme(t)
	base, err := th.TextStyle("base")
	if err != nil {
		t.Fatalf("base 样式缺失: %v", err)
	}
	if math.Abs(base.Size-BaseFontSize*PtToMm) > 1e-9 {
		t.Fatalf("基础字号应为 10pt, got %gmm", base.Size)
	}
	if math.Abs(base.LineHeight-base.Size*BaseLineHeight) > 1e-9 {
		t.Fatalf("基础行高应为 1.2 倍, got %g", base.LineHeight)
	}

	name, err := th.TextStyle("name")
	if err != nil {
		t.Fatalf("name 样式缺失: %v", err)
	}
	if name.FontName != "Bold" || name.Align != "center" || name.Apply("ada lovelace") != "ADA LOVELACE" {
		t.Fatalf("name 样式不符: %+v", name)
	}
	if name.Color != (Color{}) {
		t.Fatalf("继承的颜色应为黑色: %+v", name.Color)
	}

	heading, _ := th.TextStyle("heading")
	if math.Abs(heading.Rule-PxToMm) > 1e-9 || heading.RuleGap <= 0 {
		t.Fatalf("标题横线参数不符: %+v", heading)
	}
	if th.Heading("technicalSkills") != "Technical Skills" || th.Heading("unknown") != "unknown" {
		t.Fatalf("分类标题不符")
	}
}

func TestThemeMetaInterpolation(t *testing.T) {
	th := mustDefaultTheme(t)
	meta := th.DocumentMeta(map[string]any{"personalInfo": map[string]any{"name": "Ada"}})
	if meta.Title != "Ada - Resume" || meta.Author != "Ada" {
		t.Fatalf("元信息插值不符: %+v", meta)
	}
	empty := th.DocumentMeta(map[string]any{"personalInfo": map[string]any{"name": ""}})
	if empty.Title != "Resume - Resume" || empty.Creator != "ByteCV" {
		t.Fatalf("空姓名应使用 fallback: %+v", empty)
	}
	if len(meta.Keywords) != 2 {
		t.Fatalf("keywords 不符: %v", meta.Keywords)
	}
}

func TestThemeStyleCycle(t *testing.T) {
	_, err := ParseTheme(`theme Loop v1 {
  resources {
    style a extends b { size: 10pt }
    style b extends a { size: 11pt }
  }
}`)
	if err == nil || !strings.Contains(err.Error(), "循环") {
		t.Fatalf("循环继承应报错, got %v", err)
	}
}

func TestThemeUnknownResource(t *testing.T) {
	if _, err := ParseTheme(`theme X v1 { resources { image Logo { src: "a.png" } } }`); err == nil {
		t.Fatalf("未知资源类型应报错")
	}
}

func TestThemeDefaultsWithoutFonts(t *testing.T) {
	th, err := ParseTheme(`theme Bare v1 { resources { style p { size: 12px } } }`)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	p, err := th.TextStyle("p")
	if err != nil {
		t.Fatalf("样式解析失败: %v", err)
	}
	if p.Font.Src != "embed:Go-Regular" {
		t.Fatalf("未声明字体时应回退到内置字体: %+v", p.Font)
	}
	if math.Abs(p.Size-12*PxToMm) > 1e-9 {
		t.Fatalf("px 字号换算错误: %g", p.Size)
	}
}
