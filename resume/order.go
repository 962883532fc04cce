package resume

import "strings"

// 内置分类的集合名，同时也是 SectionOrder 中的键。
const (
	CollectionEducation        = "education"
	CollectionTechnicalSkills  = "technicalSkills"
	CollectionExperience       = "experience"
	CollectionProjects         = "projects"
	CollectionAchievements     = "achievements"
	CollectionExtracurriculars = "extracurriculars"
)

const customKeyPrefix = "custom-"

// DefaultSectionOrder 返回种子顺序（新文档与缺失 sectionOrder 的旧记录使用）。
func DefaultSectionOrder() []string {
	return []string{
		CollectionEducation,
		CollectionTechnicalSkills,
		CollectionExperience,
		CollectionProjects,
		CollectionAchievements,
		CollectionExtracurriculars,
	}
}

// IsBuiltinKey 判断 key 是否为内置分类。
func IsBuiltinKey(key string) bool {
	for _, k := range DefaultSectionOrder() {
		if k == key {
			return true
		}
	}
	return false
}

// CustomKey 返回自定义段落的合成键 custom-<id>。
func CustomKey(id string) string { return customKeyPrefix + id }

// CustomID 从合成键中取出段落 id。
func CustomID(key string) (string, bool) {
	if !strings.HasPrefix(key, customKeyPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(key, customKeyPrefix)
	return id, id != ""
}

// MoveSection 以 splice 语义把 from 位置的键移动到 to；越界时为 no-op。
func (d *Document) MoveSection(from, to int) {
	n := len(d.SectionOrder)
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		return
	}
	key := d.SectionOrder[from]
	order := append(d.SectionOrder[:from:from], d.SectionOrder[from+1:]...)
	order = append(order[:to], append([]string{key}, order[to:]...)...)
	d.SectionOrder = order
}

// normalizeOrder 去重并丢弃悬空的自定义键，再补齐缺失的自定义键，
// 保证每个自定义段落的键恰好出现一次。
func (d *Document) normalizeOrder() {
	seen := map[string]bool{}
	order := make([]string, 0, len(d.SectionOrder)+d.CustomSections.Len())
	for _, key := range d.SectionOrder {
		if seen[key] {
			continue
		}
		if id, ok := CustomID(key); ok && !d.CustomSections.Has(id) {
			continue
		}
		seen[key] = true
		order = append(order, key)
	}
	for _, id := range d.CustomSections.IDs() {
		key := CustomKey(id)
		if !seen[key] {
			seen[key] = true
			order = append(order, key)
		}
	}
	d.SectionOrder = order
}
