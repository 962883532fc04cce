package dsl_test

import (
	"strings"
	"testing"

	"github.com/ByLCY/bytecv/dsl"
)

const sampleTheme = `
theme Sample v2 {
  meta {
    title: "${personalInfo.name|Resume}"
    keywords: [
      "resume"
      "cv"
    ]
  }

  // 资源
  resources {
    font Body {
      src: "embed:Go-Regular"
    }
    color Accent = #0F62FE

    style base { font: Body; size: 10pt; line-height: 1.2x }
    style name extends base {
      size: 20pt
      color: Accent
      space-after: 12px
    }
  }

  headings {
    education: "Education"
    technicalSkills: "Technical Skills"
  }
}
`

func TestParseTheme(t *testing.T) {
	th, err := dsl.ParseString(sampleTheme)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if th.Name != "Sample" || th.Version != "v2" {
		t.Fatalf("unexpected header: %s %s", th.Name, th.Version)
	}
	if len(th.Sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(th.Sections))
	}
	kinds := []string{th.Sections[0].Kind(), th.Sections[1].Kind(), th.Sections[2].Kind()}
	if strings.Join(kinds, ",") != "meta,resources,headings" {
		t.Fatalf("unexpected section kinds: %v", kinds)
	}

	meta := th.Sections[0].Meta
	title := meta.Block.Statements[0].Assignment
	if title == nil || title.Value.Text() != "${personalInfo.name|Resume}" {
		t.Fatalf("title 赋值不符: %+v", meta.Block.Statements[0])
	}
	keywords := meta.Block.Statements[1].Assignment
	if got := keywords.Value.Strings(); len(got) != 2 || got[1] != "cv" {
		t.Fatalf("keywords 数组不符: %v", got)
	}

	res := th.Sections[1].Resources.Block.Statements
	if len(res) != 4 {
		t.Fatalf("expected 4 resource statements, got %d", len(res))
	}
	font := res[0].Command
	if font == nil || font.Name != "font" || font.Args[0].Value != "Body" {
		t.Fatalf("font 声明不符: %+v", res[0])
	}
	if src := font.Block.Statements[0].Assignment.Value.Text(); src != "embed:Go-Regular" {
		t.Fatalf("font src 不符: %s", src)
	}
	color := res[1].Command
	if color == nil || len(color.Args) != 3 || color.Args[2].Value != "#0F62FE" {
		t.Fatalf("color 声明不符: %+v", color)
	}

	base := res[2].Command
	if base == nil || len(base.Block.Statements) != 3 {
		t.Fatalf("单行样式应按分号拆成 3 条语句: %+v", base)
	}
	if lh := base.Block.Statements[2].Assignment; lh.Key != "line-height" || lh.Value.Text() != "1.2x" {
		t.Fatalf("line-height 不符: %+v", lh)
	}
	if ref := base.Block.Statements[0].Assignment.Value; ref.Ident == nil || *ref.Ident != "Body" {
		t.Fatalf("字体引用应解析为标识符: %+v", ref)
	}

	name := res[3].Command
	if len(name.Args) != 3 || name.Args[1].Value != "extends" || name.Args[2].Value != "base" {
		t.Fatalf("extends 参数不符: %+v", name.Args)
	}
	if px := name.Block.Statements[2].Assignment.Value.Text(); px != "12px" {
		t.Fatalf("px 单位应被词法识别, got %s", px)
	}

	headings := th.Sections[2].Headings.Block.Statements
	if len(headings) != 2 || headings[1].Assignment.Key != "technicalSkills" {
		t.Fatalf("headings 不符: %+v", headings)
	}
}

func TestParseThemeRejectsUnknownSection(t *testing.T) {
	_, err := dsl.ParseString(`theme Broken v1 { page A4 { } }`)
	if err == nil {
		t.Fatalf("未知分节应解析失败")
	}
}
