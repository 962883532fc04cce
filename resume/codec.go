package resume

import (
	"encoding/json"
	"fmt"
	"time"
)

// Record 是持久化使用的可移植记录：文档本身加上可选的保存时间。
type Record struct {
	Document  *Document
	LastSaved time.Time
}

type wireRecord struct {
	*Document
	LastSaved int64 `json:"lastSaved,omitempty"`
}

// presence 只用于判断旧版本记录缺少哪些字段。
type presence struct {
	SectionOrder   *[]string        `json:"sectionOrder"`
	CustomSections *json.RawMessage `json:"customSections"`
}

// Encode 输出可移植记录；lastSaved 为零值时省略。
func Encode(doc *Document, lastSaved time.Time) ([]byte, error) {
	if doc == nil {
		doc = New()
	}
	w := wireRecord{Document: doc}
	if !lastSaved.IsZero() {
		w.LastSaved = lastSaved.UnixMilli()
	}
	return json.Marshal(w)
}

// Decode 解析可移植记录并按文档化的默认值修复旧版本数据：
// 缺少 sectionOrder 时使用种子顺序，缺少 customSections 时为空列表。
func Decode(data []byte) (Record, error) {
	var p presence
	if err := json.Unmarshal(data, &p); err != nil {
		return Record{}, fmt.Errorf("解析简历记录失败: %w", err)
	}
	doc := New()
	w := wireRecord{Document: doc}
	if err := json.Unmarshal(data, &w); err != nil {
		return Record{}, fmt.Errorf("解析简历记录失败: %w", err)
	}
	Repair(doc, p.SectionOrder != nil, p.CustomSections != nil)
	rec := Record{Document: doc}
	if w.LastSaved > 0 {
		rec.LastSaved = time.UnixMilli(w.LastSaved)
	}
	return rec, nil
}

// Repair 补齐缺失的段落顺序，为缺少或重复 id 的记录分配新 id，并恢复 SectionOrder 不变式。
func Repair(doc *Document, hasOrder, hasCustom bool) {
	if !hasOrder || doc.SectionOrder == nil {
		doc.SectionOrder = DefaultSectionOrder()
	}
	if !hasCustom {
		doc.CustomSections = Collection[CustomSection]{}
	}
	doc.assignMissingIDs()
	doc.normalizeOrder()
}

func (d *Document) assignMissingIDs() {
	d.Education.rekey(d.nextID, func(e *Education, id string) { e.ID = id })
	d.TechnicalSkills.rekey(d.nextID, func(s *TechnicalSkill, id string) { s.ID = id })
	d.Projects.rekey(d.nextID, func(p *Project, id string) { p.ID = id })
	d.Experience.rekey(d.nextID, func(x *Experience, id string) { x.ID = id })
	d.Achievements.rekey(d.nextID, func(a *Achievement, id string) { a.ID = id })
	d.Extracurriculars.rekey(d.nextID, func(x *Extracurricular, id string) { x.ID = id })
	d.CustomSections.rekey(d.nextID, func(s *CustomSection, id string) { s.ID = id })
	for _, id := range d.CustomSections.IDs() {
		d.CustomSections.Update(id, func(s *CustomSection) {
			s.Items.rekey(d.nextID, func(i *CustomItem, id string) { i.ID = id })
		})
	}
}
