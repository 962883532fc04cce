package resume

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id%d", n)
	}
}

var ignoreGen = cmpopts.IgnoreUnexported(Document{})

func TestCustomSectionRoundTrip(t *testing.T) {
	doc := New().WithIDGenerator(seqIDs())
	if _, err := doc.Add(CollectionEducation); err != nil {
		t.Fatalf("添加教育经历失败: %v", err)
	}
	before := doc.Clone()

	id := doc.AddCustomSection()
	if got := doc.SectionOrder[len(doc.SectionOrder)-1]; got != CustomKey(id) {
		t.Fatalf("新段落键应追加到末尾, got %q", got)
	}
	doc.AddCustomItem(id)
	doc.RemoveCustomSection(id)

	if diff := cmp.Diff(before, doc, ignoreGen); diff != "" {
		t.Fatalf("添加再删除自定义段落后文档应恢复原状 (-want +got):\n%s", diff)
	}
}

func TestCustomKeyPresentExactlyOnce(t *testing.T) {
	doc := New().WithIDGenerator(seqIDs())
	a := doc.AddCustomSection()
	b := doc.AddCustomSection()
	doc.MoveSection(len(doc.SectionOrder)-1, 0)

	count := func(key string) int {
		n := 0
		for _, k := range doc.SectionOrder {
			if k == key {
				n++
			}
		}
		return n
	}
	if count(CustomKey(a)) != 1 || count(CustomKey(b)) != 1 {
		t.Fatalf("每个自定义段落的键应恰好出现一次: %v", doc.SectionOrder)
	}
	doc.RemoveCustomSection(a)
	if count(CustomKey(a)) != 0 {
		t.Fatalf("删除后键应消失: %v", doc.SectionOrder)
	}
	if doc.SectionOrder[0] != CustomKey(b) {
		t.Fatalf("移动后的顺序不应被删除操作打乱: %v", doc.SectionOrder)
	}
}

func TestUnknownIDsAreNoOps(t *testing.T) {
	doc := New().WithIDGenerator(seqIDs())
	id, _ := doc.Add(CollectionProjects)
	before := doc.Clone()

	if err := doc.Update(CollectionProjects, "missing", "title", "x"); err != nil {
		t.Fatalf("未知 id 的更新不应报错: %v", err)
	}
	if err := doc.Remove(CollectionProjects, "missing"); err != nil {
		t.Fatalf("未知 id 的删除不应报错: %v", err)
	}
	doc.RemoveCustomSection("missing")
	doc.RemoveCustomItem("missing", "missing")
	if got := doc.AddCustomItem("missing"); got != "" {
		t.Fatalf("段落不存在时不应创建条目, got %q", got)
	}
	if diff := cmp.Diff(before, doc, ignoreGen); diff != "" {
		t.Fatalf("未知 id 操作不应修改文档:\n%s", diff)
	}

	if err := doc.Update(CollectionProjects, id, "title", "ByteCV"); err != nil {
		t.Fatalf("更新失败: %v", err)
	}
	p, _ := doc.Projects.Get(id)
	if p.Title != "ByteCV" {
		t.Fatalf("标题应被更新, got %q", p.Title)
	}
}

func TestRequestErrors(t *testing.T) {
	doc := New()
	if _, err := doc.Add("hobbies"); !errors.Is(err, ErrUnknownCollection) {
		t.Fatalf("未知集合应返回 ErrUnknownCollection, got %v", err)
	}
	if err := doc.Update(CollectionEducation, "missing", "nickname", "x"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("未知字段应返回 ErrUnknownField, got %v", err)
	}
	if err := doc.SetPersonal("age", "30"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("未知个人字段应返回 ErrUnknownField, got %v", err)
	}
	if _, err := doc.Apply(Op{Kind: "explode"}); !errors.Is(err, ErrUnknownOp) {
		t.Fatalf("未知操作应返回 ErrUnknownOp, got %v", err)
	}
}

func TestMoveSectionSplice(t *testing.T) {
	doc := New()
	doc.MoveSection(0, 2)
	want := []string{CollectionTechnicalSkills, CollectionExperience, CollectionEducation,
		CollectionProjects, CollectionAchievements, CollectionExtracurriculars}
	if diff := cmp.Diff(want, doc.SectionOrder); diff != "" {
		t.Fatalf("splice 语义不符:\n%s", diff)
	}

	doc.MoveSection(-1, 3)
	doc.MoveSection(0, 99)
	if diff := cmp.Diff(want, doc.SectionOrder); diff != "" {
		t.Fatalf("越界移动应为 no-op:\n%s", diff)
	}
}

func TestApplyOps(t *testing.T) {
	doc := New().WithIDGenerator(seqIDs())
	ops := []Op{
		{Kind: OpSetPersonal, Field: "name", Value: "Ada Lovelace"},
		{Kind: OpAdd, Collection: CollectionExperience},
	}
	var ids []string
	for _, op := range ops {
		id, err := doc.Apply(op)
		if err != nil {
			t.Fatalf("执行 %s 失败: %v", op.Kind, err)
		}
		ids = append(ids, id)
	}
	if _, err := doc.Apply(Op{Kind: OpUpdate, Collection: CollectionExperience, ID: ids[1], Field: "company", Value: "Analytical Engines"}); err != nil {
		t.Fatalf("更新失败: %v", err)
	}
	sec, _ := doc.Apply(Op{Kind: OpAddCustomSection})
	if _, err := doc.Apply(Op{Kind: OpUpdateCustomSection, SectionID: sec, Field: "title", Value: "Publications"}); err != nil {
		t.Fatalf("更新段落标题失败: %v", err)
	}
	item, _ := doc.Apply(Op{Kind: OpAddCustomItem, SectionID: sec})
	if _, err := doc.Apply(Op{Kind: OpUpdateCustomItem, SectionID: sec, ID: item, Field: "title", Value: "Notes"}); err != nil {
		t.Fatalf("更新条目失败: %v", err)
	}

	if doc.PersonalInfo.Name != "Ada Lovelace" {
		t.Fatalf("姓名未写入: %+v", doc.PersonalInfo)
	}
	x, _ := doc.Experience.Get(ids[1])
	if x.Company != "Analytical Engines" {
		t.Fatalf("公司名未写入: %+v", x)
	}
	s, _ := doc.CustomSections.Get(sec)
	it, _ := s.Items.Get(item)
	if s.Title != "Publications" || it.Title != "Notes" {
		t.Fatalf("自定义段落内容不符: %+v", s)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	doc := New().WithIDGenerator(seqIDs())
	sec := doc.AddCustomSection()
	item := doc.AddCustomItem(sec)
	snap := doc.Clone()

	_ = doc.UpdateCustomItem(sec, item, "title", "changed")
	doc.MoveSection(0, 1)

	s, _ := snap.CustomSections.Get(sec)
	it, _ := s.Items.Get(item)
	if it.Title != "" {
		t.Fatalf("快照不应随原文档变化, got %q", it.Title)
	}
	if snap.SectionOrder[0] != CollectionEducation {
		t.Fatalf("快照顺序不应随原文档变化: %v", snap.SectionOrder)
	}
}

func TestGradeVariant(t *testing.T) {
	doc := New().WithIDGenerator(seqIDs())
	id, _ := doc.Add(CollectionEducation)

	_ = doc.Update(CollectionEducation, id, "gradeValue", "9.1")
	e, _ := doc.Education.Get(id)
	if e.Grade.IsSet() {
		t.Fatalf("未选择计分方式时不应接受取值: %+v", e.Grade)
	}

	_ = doc.Update(CollectionEducation, id, "gradeFormat", "CGPA")
	_ = doc.Update(CollectionEducation, id, "gradeValue", "9.1")
	e, _ = doc.Education.Get(id)
	if got := e.Grade.Display(); got != "CGPA: 9.1" {
		t.Fatalf("CGPA 展示不符, got %q", got)
	}

	_ = doc.Update(CollectionEducation, id, "gradeFormat", "Percentage")
	e, _ = doc.Education.Get(id)
	if got := e.Grade.Display(); got != "Percentage: 9.1%" {
		t.Fatalf("切换计分方式应保留取值并追加 %%, got %q", got)
	}
	if got := Percentage("92%").Display(); got != "Percentage: 92%" {
		t.Fatalf("已有 %% 时不应重复追加, got %q", got)
	}

	_ = doc.Update(CollectionEducation, id, "gradeFormat", "")
	e, _ = doc.Education.Get(id)
	if e.Grade != NoGrade() || e.Grade.Value() != "" {
		t.Fatalf("清空计分方式后应回到 None: %+v", e.Grade)
	}
}

func TestCollectionOrderAndReplace(t *testing.T) {
	c := collectionOf(Achievement{ID: "a"}, Achievement{ID: "b"}, Achievement{ID: "c"})
	c.Add(Achievement{ID: "b", Title: "replaced"})
	if diff := cmp.Diff([]string{"a", "b", "c"}, c.IDs()); diff != "" {
		t.Fatalf("替换不应改变顺序:\n%s", diff)
	}
	if got, _ := c.Get("b"); got.Title != "replaced" {
		t.Fatalf("记录应被原位替换: %+v", got)
	}
	c.Remove("b")
	if diff := cmp.Diff([]string{"a", "c"}, c.IDs()); diff != "" {
		t.Fatalf("删除后顺序不符:\n%s", diff)
	}
	c.Remove("a")
	c.Remove("c")
	if !c.Equal(Collection[Achievement]{}) {
		t.Fatalf("全部删除后应等于零值")
	}
}
