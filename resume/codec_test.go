package resume

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeRepairsLegacyRecord(t *testing.T) {
	legacy := `{
		"personalInfo": {"name": "Grace Hopper", "email": "grace@navy.mil"},
		"education": [{"id": "e1", "institution": "Yale", "degree": "PhD", "gradeFormat": "CGPA", "gradeValue": "4.0"}],
		"technicalSkills": [], "projects": [], "experience": [],
		"achievements": [], "extracurriculars": []
	}`
	rec, err := Decode([]byte(legacy))
	if err != nil {
		t.Fatalf("旧版本记录应可解析: %v", err)
	}
	doc := rec.Document
	if diff := cmp.Diff(DefaultSectionOrder(), doc.SectionOrder); diff != "" {
		t.Fatalf("缺失 sectionOrder 应补为默认顺序:\n%s", diff)
	}
	if doc.CustomSections.Len() != 0 {
		t.Fatalf("缺失 customSections 应为空")
	}
	e, ok := doc.Education.Get("e1")
	if !ok || e.Grade.Display() != "CGPA: 4.0" {
		t.Fatalf("成绩字段解析不符: %+v", e)
	}
	if !rec.LastSaved.IsZero() {
		t.Fatalf("无 lastSaved 时应为零值")
	}
}

func TestDecodeNormalisesOrder(t *testing.T) {
	data := `{
		"customSections": [{"id": "s1", "title": "Talks", "items": []}, {"id": "s2", "title": "", "items": []}],
		"sectionOrder": ["custom-s1", "education", "education", "custom-gone"]
	}`
	rec, err := Decode([]byte(data))
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	want := []string{"custom-s1", "education", "custom-s2"}
	if diff := cmp.Diff(want, rec.Document.SectionOrder); diff != "" {
		t.Fatalf("顺序规范化不符:\n%s", diff)
	}
}

func TestEncodeDecodeKeepsDocument(t *testing.T) {
	doc := New().WithIDGenerator(seqIDs())
	_ = doc.SetPersonal("name", "Alan Turing")
	id, _ := doc.Add(CollectionEducation)
	_ = doc.Update(CollectionEducation, id, "gradeFormat", "Percentage")
	_ = doc.Update(CollectionEducation, id, "gradeValue", "88")
	sec := doc.AddCustomSection()
	doc.AddCustomItem(sec)
	doc.MoveSection(len(doc.SectionOrder)-1, 1)

	saved := time.UnixMilli(1_700_000_000_123)
	data, err := Encode(doc, saved)
	if err != nil {
		t.Fatalf("编码失败: %v", err)
	}
	if !strings.Contains(string(data), `"gradeFormat":"Percentage"`) {
		t.Fatalf("成绩应以 gradeFormat/gradeValue 保存: %s", data)
	}
	rec, err := Decode(data)
	if err != nil {
		t.Fatalf("解码失败: %v", err)
	}
	if diff := cmp.Diff(doc, rec.Document, ignoreGen); diff != "" {
		t.Fatalf("往返后文档不一致:\n%s", diff)
	}
	if !rec.LastSaved.Equal(saved) {
		t.Fatalf("lastSaved 不符: %v", rec.LastSaved)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte("{not json")); err == nil {
		t.Fatalf("非法 JSON 应返回错误")
	}
}

func TestDecodeAssignsMissingAndDuplicateIDs(t *testing.T) {
	data := `{
		"achievements": [
			{"title": "First"},
			{"title": "Second"},
			{"id": "a1", "title": "Third"},
			{"id": "a1", "title": "Fourth"}
		],
		"customSections": [
			{"title": "Talks", "items": [{"title": "GopherCon"}, {"title": "FOSDEM"}]}
		]
	}`
	rec, err := Decode([]byte(data))
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	doc := rec.Document
	var titles []string
	seen := map[string]bool{}
	for _, a := range doc.Achievements.Values() {
		if a.ID == "" || seen[a.ID] {
			t.Fatalf("id 应非空且唯一: %+v", doc.Achievements.IDs())
		}
		seen[a.ID] = true
		titles = append(titles, a.Title)
	}
	if diff := cmp.Diff([]string{"First", "Second", "Third", "Fourth"}, titles); diff != "" {
		t.Fatalf("记录不应被合并:\n%s", diff)
	}
	if _, ok := doc.Achievements.Get("a1"); !ok {
		t.Fatalf("已有 id 应保留")
	}
	for _, id := range doc.Achievements.IDs() {
		if strings.HasPrefix(id, unkeyedPrefix) {
			t.Fatalf("占位键不应残留: %q", id)
		}
	}

	secs := doc.CustomSections.Values()
	if len(secs) != 1 || secs[0].ID == "" || secs[0].Items.Len() != 2 {
		t.Fatalf("自定义段落解析不符: %+v", secs)
	}
	want := []string{CustomKey(secs[0].ID)}
	if diff := cmp.Diff(want, doc.SectionOrder[len(doc.SectionOrder)-1:]); diff != "" {
		t.Fatalf("新段落应追加到顺序末尾:\n%s", diff)
	}
	for _, it := range secs[0].Items.Values() {
		if it.ID == "" {
			t.Fatalf("条目应分配 id: %+v", it)
		}
	}
}
