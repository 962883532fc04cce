// Package sections 把简历文档转换为有序的排版块序列：页眉在前，其后按 SectionOrder 排列各分类。
// 每个分类整体成为一个块，装箱时要么整体上页，要么整体截断。
package sections

import (
	"strings"

	"github.com/ByLCY/bytecv/layout"
	"github.com/ByLCY/bytecv/resume"
)

// HeaderKey 是页眉块的键。
const HeaderKey = "header"

// PlaceholderName 在姓名为空时显示。
const PlaceholderName = "YOUR NAME"

// 主题中的样式名。
const (
	styleName       = "name"
	styleLocation   = "location"
	styleContact    = "contact"
	styleHeading    = "heading"
	styleItemTitle  = "item-title"
	styleItemBody   = "item-body"
	styleTech       = "tech"
	styleMetaStrong = "meta-strong"
	styleMetaItalic = "meta-italic"
	styleBullet     = "bullet"
	styleSkill      = "skill"
	styleItemGap    = "item-gap"
	styleSectionGap = "section-gap"
)

const contactSeparator = " | "

// Render 生成文档的块序列。内置分类仅在非空时出现；自定义段落在标题非空或至少有一个条目时出现。
// SectionOrder 中的未知键被忽略，缺失的内置分类按默认顺序补在末尾。
func Render(doc *resume.Document, theme *layout.Theme) []layout.Block {
	if doc == nil {
		doc = resume.New()
	}
	blocks := []layout.Block{header(doc.PersonalInfo)}

	seen := map[string]bool{}
	emit := func(key string) {
		if seen[key] {
			return
		}
		seen[key] = true
		if b, ok := section(doc, theme, key); ok {
			blocks = append(blocks, b)
		}
	}
	for _, key := range doc.SectionOrder {
		emit(key)
	}
	for _, key := range resume.DefaultSectionOrder() {
		emit(key)
	}
	return blocks
}

// Keys 返回 Render 结果的键序列。
func Keys(blocks []layout.Block) []string {
	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, b.Key)
	}
	return out
}

func header(p resume.PersonalInfo) layout.Block {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = PlaceholderName
	}
	els := []layout.Element{paragraph(styleName, name)}
	if loc := strings.TrimSpace(p.Location); loc != "" {
		els = append(els, paragraph(styleLocation, loc))
	}
	if contact := ContactLine(p); contact != "" {
		els = append(els, paragraph(styleContact, contact))
	} else {
		els = append(els, spacer(styleContact))
	}
	return layout.Block{Key: HeaderKey, Kind: layout.BlockHeader, Elements: els}
}

// ContactLine 拼接联系方式：电话、邮箱、LinkedIn、GitHub 与 LeetCode 标记。
func ContactLine(p resume.PersonalInfo) string {
	var parts []string
	add := func(v string) {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	add(p.Phone)
	add(p.Email)
	if h := handle(p.LinkedIn, "linkedin.com/in/"); h != "" {
		add("linkedin.com/in/" + h)
	}
	if h := handle(p.GitHub, "github.com/"); h != "" {
		add("github.com/" + h)
	}
	if strings.TrimSpace(p.LeetCode) != "" {
		add("leetcode")
	}
	return strings.Join(parts, contactSeparator)
}

// handle 去掉协议、www 与站点前缀，只保留用户名。
func handle(v, site string) string {
	v = strings.TrimSpace(v)
	for _, prefix := range []string{"https://", "http://", "www.", site} {
		v = strings.TrimPrefix(v, prefix)
	}
	return strings.Trim(v, "/")
}

func section(doc *resume.Document, theme *layout.Theme, key string) (layout.Block, bool) {
	var items [][]layout.Element
	switch key {
	case resume.CollectionEducation:
		for _, e := range doc.Education.Values() {
			items = append(items, education(e))
		}
	case resume.CollectionTechnicalSkills:
		for _, s := range doc.TechnicalSkills.Values() {
			items = append(items, skill(s))
		}
	case resume.CollectionExperience:
		for _, x := range doc.Experience.Values() {
			items = append(items, experience(x))
		}
	case resume.CollectionProjects:
		for _, p := range doc.Projects.Values() {
			items = append(items, project(p))
		}
	case resume.CollectionAchievements:
		for _, a := range doc.Achievements.Values() {
			items = append(items, achievement(a))
		}
	case resume.CollectionExtracurriculars:
		for _, x := range doc.Extracurriculars.Values() {
			items = append(items, extracurricular(x))
		}
	default:
		id, ok := resume.CustomID(key)
		if !ok {
			return layout.Block{}, false
		}
		cs, ok := doc.CustomSections.Get(id)
		if !ok {
			return layout.Block{}, false
		}
		if strings.TrimSpace(cs.Title) == "" && cs.Items.Len() == 0 {
			return layout.Block{}, false
		}
		for _, it := range cs.Items.Values() {
			items = append(items, customItem(it))
		}
		return assemble(key, layout.BlockCustom, cs.Title, items), true
	}
	if len(items) == 0 {
		return layout.Block{}, false
	}
	title := key
	if theme != nil {
		title = theme.Heading(key)
	}
	return assemble(key, layout.BlockSection, title, items), true
}

// assemble 组装分类块：标题、条目（条目之间留间距）、分类尾部间距。
func assemble(key string, kind layout.BlockKind, title string, items [][]layout.Element) layout.Block {
	els := []layout.Element{{Kind: layout.ElementHeading, Style: styleHeading, Text: title}}
	for i, it := range items {
		if i > 0 {
			els = append(els, spacer(styleItemGap))
		}
		els = append(els, it...)
	}
	els = append(els, spacer(styleSectionGap))
	return layout.Block{Key: key, Kind: kind, Elements: els}
}

func education(e resume.Education) []layout.Element {
	var els []layout.Element
	els = appendRow(els, styleItemTitle, e.Institution, styleMetaStrong, e.Duration)
	degree := strings.TrimSpace(e.Degree)
	if g := e.Grade.Display(); g != "" {
		if degree == "" {
			degree = g
		} else {
			degree += "; " + g
		}
	}
	return appendRow(els, styleItemBody, degree, styleMetaItalic, e.Location)
}

func skill(s resume.TechnicalSkill) []layout.Element {
	category := strings.TrimSpace(s.Category)
	skills := strings.TrimSpace(s.Skills)
	text := skills
	if category != "" {
		text = category + ": " + skills
	}
	if text == "" {
		return nil
	}
	return []layout.Element{paragraph(styleSkill, text)}
}

func experience(x resume.Experience) []layout.Element {
	var els []layout.Element
	els = appendRow(els, styleItemTitle, x.Company, styleMetaStrong, x.Duration)
	els = appendRow(els, styleItemBody, x.Position, styleMetaItalic, x.Location)
	return append(els, bullets(x.Description)...)
}

func project(p resume.Project) []layout.Element {
	var els []layout.Element
	title := strings.TrimSpace(p.Title)
	if links := ProjectLinks(p.Links); len(links) > 0 {
		title = strings.Join(append([]string{title}, links...), " | ")
	}
	els = appendRow(els, styleItemTitle, title, "", "")
	if tech := strings.TrimSpace(p.Technologies); tech != "" {
		els = append(els, paragraph(styleTech, tech))
	}
	return append(els, bullets(p.Description)...)
}

// ProjectLinks 把 "|" 分隔的链接转换为显示文本：GitHub 与 LeetCode 链接显示站点名，其余原样显示。
func ProjectLinks(links string) []string {
	var out []string
	for _, raw := range strings.Split(links, "|") {
		link := strings.TrimSpace(raw)
		if link == "" {
			continue
		}
		bare := strings.TrimPrefix(strings.TrimPrefix(link, "https://"), "http://")
		bare = strings.TrimPrefix(bare, "www.")
		switch {
		case strings.HasPrefix(bare, "github.com/"):
			out = append(out, "GitHub")
		case strings.HasPrefix(bare, "leetcode.com/"):
			out = append(out, "LeetCode")
		default:
			out = append(out, link)
		}
	}
	return out
}

func achievement(a resume.Achievement) []layout.Element {
	var els []layout.Element
	els = appendRow(els, styleItemTitle, a.Title, "", "")
	return append(els, bullets(a.Description)...)
}

func extracurricular(x resume.Extracurricular) []layout.Element {
	var els []layout.Element
	els = appendRow(els, styleItemTitle, x.Organization, styleMetaStrong, x.Duration)
	els = appendRow(els, styleItemBody, x.Designation, "", "")
	return append(els, bullets(x.Description)...)
}

func customItem(it resume.CustomItem) []layout.Element {
	var els []layout.Element
	els = appendRow(els, styleItemTitle, it.Title, styleMetaStrong, it.Duration)
	els = appendRow(els, styleItemBody, it.Subtitle, styleMetaItalic, it.Location)
	return append(els, bullets(it.Description)...)
}

// appendRow 追加一行左右两栏；两栏都为空时不输出。
func appendRow(els []layout.Element, style, text, rightStyle, right string) []layout.Element {
	text, right = strings.TrimSpace(text), strings.TrimSpace(right)
	if text == "" && right == "" {
		return els
	}
	if right == "" {
		return append(els, paragraph(style, text))
	}
	return append(els, layout.Element{Kind: layout.ElementColumns, Style: style, Text: text, Right: right, RightStyle: rightStyle})
}

// bullets 按行拆分描述，跳过空行；行首的 "•" 由测量阶段去除。
func bullets(desc string) []layout.Element {
	var out []layout.Element
	for _, line := range strings.Split(strings.ReplaceAll(desc, "\r", ""), "\n") {
		if strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "•")) == "" {
			continue
		}
		out = append(out, layout.Element{Kind: layout.ElementBullet, Style: styleBullet, Text: strings.TrimSpace(line)})
	}
	return out
}

func paragraph(style, text string) layout.Element {
	return layout.Element{Kind: layout.ElementParagraph, Style: style, Text: text}
}

func spacer(style string) layout.Element {
	return layout.Element{Kind: layout.ElementSpacer, Style: style}
}
