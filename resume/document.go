package resume

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrUnknownCollection = errors.New("resume: unknown collection")
	ErrUnknownField      = errors.New("resume: unknown field")
	ErrUnknownOp         = errors.New("resume: unknown operation")
)

func unknownField(owner, field string) error {
	return fmt.Errorf("%w: %s.%s", ErrUnknownField, owner, field)
}

// Document 是完整的简历数据及其段落顺序。
// 对未知 id 的更新/删除一律为 no-op，数据模型本身从不报错。
type Document struct {
	PersonalInfo     PersonalInfo                `json:"personalInfo"`
	Education        Collection[Education]       `json:"education"`
	TechnicalSkills  Collection[TechnicalSkill]  `json:"technicalSkills"`
	Projects         Collection[Project]         `json:"projects"`
	Experience       Collection[Experience]      `json:"experience"`
	Achievements     Collection[Achievement]     `json:"achievements"`
	Extracurriculars Collection[Extracurricular] `json:"extracurriculars"`
	CustomSections   Collection[CustomSection]   `json:"customSections"`
	SectionOrder     []string                    `json:"sectionOrder"`

	newID func() string
}

// New 返回默认文档：空白个人信息、空集合与种子段落顺序。
func New() *Document {
	return &Document{SectionOrder: DefaultSectionOrder()}
}

// WithIDGenerator 替换 id 生成函数（测试中用于得到确定的 id）。
func (d *Document) WithIDGenerator(gen func() string) *Document {
	d.newID = gen
	return d
}

func (d *Document) nextID() string {
	if d.newID != nil {
		return d.newID()
	}
	return uuid.NewString()
}

// Clone 返回深拷贝，作为交给排版流水线的不可变快照。
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{
		PersonalInfo:     d.PersonalInfo,
		Education:        d.Education.cloneWith(nil),
		TechnicalSkills:  d.TechnicalSkills.cloneWith(nil),
		Projects:         d.Projects.cloneWith(nil),
		Experience:       d.Experience.cloneWith(nil),
		Achievements:     d.Achievements.cloneWith(nil),
		Extracurriculars: d.Extracurriculars.cloneWith(nil),
		CustomSections:   d.CustomSections.cloneWith(CustomSection.clone),
		newID:            d.newID,
	}
	if d.SectionOrder != nil {
		out.SectionOrder = append([]string(nil), d.SectionOrder...)
	}
	return out
}

// SetPersonal 修改个人信息的单个字段。
func (d *Document) SetPersonal(field, value string) error {
	return d.PersonalInfo.set(field, value)
}

// Add 在指定内置集合末尾追加一条空白记录并返回新 id。
func (d *Document) Add(collection string) (string, error) {
	id := d.nextID()
	switch collection {
	case CollectionEducation:
		d.Education.Add(Education{ID: id})
	case CollectionTechnicalSkills:
		d.TechnicalSkills.Add(TechnicalSkill{ID: id})
	case CollectionProjects:
		d.Projects.Add(Project{ID: id})
	case CollectionExperience:
		d.Experience.Add(Experience{ID: id})
	case CollectionAchievements:
		d.Achievements.Add(Achievement{ID: id})
	case CollectionExtracurriculars:
		d.Extracurriculars.Add(Extracurricular{ID: id})
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	return id, nil
}

// Update 按 id 与字段名修改内置集合中的记录。
// 字段名先在临时记录上校验，因此 id 不存在时仍能报告非法字段。
func (d *Document) Update(collection, id, field, value string) error {
	switch collection {
	case CollectionEducation:
		if err := (&Education{}).set(field, value); err != nil {
			return err
		}
		d.Education.Update(id, func(e *Education) { _ = e.set(field, value) })
	case CollectionTechnicalSkills:
		if err := (&TechnicalSkill{}).set(field, value); err != nil {
			return err
		}
		d.TechnicalSkills.Update(id, func(s *TechnicalSkill) { _ = s.set(field, value) })
	case CollectionProjects:
		if err := (&Project{}).set(field, value); err != nil {
			return err
		}
		d.Projects.Update(id, func(p *Project) { _ = p.set(field, value) })
	case CollectionExperience:
		if err := (&Experience{}).set(field, value); err != nil {
			return err
		}
		d.Experience.Update(id, func(x *Experience) { _ = x.set(field, value) })
	case CollectionAchievements:
		if err := (&Achievement{}).set(field, value); err != nil {
			return err
		}
		d.Achievements.Update(id, func(a *Achievement) { _ = a.set(field, value) })
	case CollectionExtracurriculars:
		if err := (&Extracurricular{}).set(field, value); err != nil {
			return err
		}
		d.Extracurriculars.Update(id, func(x *Extracurricular) { _ = x.set(field, value) })
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	return nil
}

// Remove 从内置集合中按 id 删除记录。
func (d *Document) Remove(collection, id string) error {
	switch collection {
	case CollectionEducation:
		d.Education.Remove(id)
	case CollectionTechnicalSkills:
		d.TechnicalSkills.Remove(id)
	case CollectionProjects:
		d.Projects.Remove(id)
	case CollectionExperience:
		d.Experience.Remove(id)
	case CollectionAchievements:
		d.Achievements.Remove(id)
	case CollectionExtracurriculars:
		d.Extracurriculars.Remove(id)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	return nil
}

// AddCustomSection 新建空白自定义段落，并把 custom-<id> 追加到 SectionOrder。
func (d *Document) AddCustomSection() string {
	id := d.nextID()
	d.CustomSections.Add(CustomSection{ID: id})
	d.SectionOrder = append(d.SectionOrder, CustomKey(id))
	return id
}

// UpdateCustomSection 修改自定义段落的标题。
func (d *Document) UpdateCustomSection(id, field, value string) error {
	if field != "title" {
		return unknownField("customSection", field)
	}
	d.CustomSections.Update(id, func(s *CustomSection) { s.Title = value })
	return nil
}

// ReplaceCustomSection 以整段替换已存在的自定义段落（id 不存在时忽略）。
func (d *Document) ReplaceCustomSection(section CustomSection) {
	if !d.CustomSections.Has(section.ID) {
		return
	}
	d.CustomSections.Add(section.clone())
}

// RemoveCustomSection 删除段落并同时移除其 SectionOrder 键。
func (d *Document) RemoveCustomSection(id string) {
	if !d.CustomSections.Remove(id) {
		return
	}
	key := CustomKey(id)
	kept := make([]string, 0, len(d.SectionOrder))
	for _, k := range d.SectionOrder {
		if k != key {
			kept = append(kept, k)
		}
	}
	d.SectionOrder = kept
}

// AddCustomItem 在自定义段落末尾追加空白条目；段落不存在时返回空 id。
func (d *Document) AddCustomItem(sectionID string) string {
	if !d.CustomSections.Has(sectionID) {
		return ""
	}
	id := d.nextID()
	d.CustomSections.Update(sectionID, func(s *CustomSection) {
		s.Items.Add(CustomItem{ID: id})
	})
	return id
}

// UpdateCustomItem 修改自定义条目的单个字段。
func (d *Document) UpdateCustomItem(sectionID, itemID, field, value string) error {
	if err := (&CustomItem{}).set(field, value); err != nil {
		return err
	}
	d.CustomSections.Update(sectionID, func(s *CustomSection) {
		s.Items.Update(itemID, func(it *CustomItem) { _ = it.set(field, value) })
	})
	return nil
}

// RemoveCustomItem 删除自定义条目。
func (d *Document) RemoveCustomItem(sectionID, itemID string) {
	d.CustomSections.Update(sectionID, func(s *CustomSection) {
		s.Items.Remove(itemID)
	})
}
