package resume

import "encoding/json"

// PersonalInfo 是始终存在的个人信息单例，按字段原地修改。
type PersonalInfo struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	LinkedIn string `json:"linkedin"`
	GitHub   string `json:"github"`
	LeetCode string `json:"leetcode"`
}

func (p *PersonalInfo) set(field, value string) error {
	switch field {
	case "name":
		p.Name = value
	case "location":
		p.Location = value
	case "phone":
		p.Phone = value
	case "email":
		p.Email = value
	case "linkedin":
		p.LinkedIn = value
	case "github":
		p.GitHub = value
	case "leetcode":
		p.LeetCode = value
	default:
		return unknownField("personalInfo", field)
	}
	return nil
}

// Education 教育经历。成绩在内存中是 Grade 变体，持久化时拆为 gradeFormat/gradeValue。
type Education struct {
	ID          string
	Institution string
	Degree      string
	Duration    string
	Location    string
	Grade       Grade
}

func (e Education) Key() string { return e.ID }

type educationRecord struct {
	ID          string `json:"id"`
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Duration    string `json:"duration"`
	Location    string `json:"location"`
	GradeFormat string `json:"gradeFormat,omitempty"`
	GradeValue  string `json:"gradeValue,omitempty"`
}

func (e Education) MarshalJSON() ([]byte, error) {
	return json.Marshal(educationRecord{
		ID:          e.ID,
		Institution: e.Institution,
		Degree:      e.Degree,
		Duration:    e.Duration,
		Location:    e.Location,
		GradeFormat: e.Grade.Scale().String(),
		GradeValue:  e.Grade.Value(),
	})
}

func (e *Education) UnmarshalJSON(data []byte) error {
	var rec educationRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	*e = Education{
		ID:          rec.ID,
		Institution: rec.Institution,
		Degree:      rec.Degree,
		Duration:    rec.Duration,
		Location:    rec.Location,
		Grade:       NoGrade().WithScale(ParseGradeScale(rec.GradeFormat)).WithValue(rec.GradeValue),
	}
	return nil
}

func (e *Education) set(field, value string) error {
	switch field {
	case "institution":
		e.Institution = value
	case "degree":
		e.Degree = value
	case "duration":
		e.Duration = value
	case "location":
		e.Location = value
	case "gradeFormat":
		e.Grade = e.Grade.WithScale(ParseGradeScale(value))
	case "gradeValue":
		e.Grade = e.Grade.WithValue(value)
	default:
		return unknownField(CollectionEducation, field)
	}
	return nil
}

// TechnicalSkill 技能分类。
type TechnicalSkill struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Skills   string `json:"skills"`
}

func (s TechnicalSkill) Key() string { return s.ID }

func (s *TechnicalSkill) set(field, value string) error {
	switch field {
	case "category":
		s.Category = value
	case "skills":
		s.Skills = value
	default:
		return unknownField(CollectionTechnicalSkills, field)
	}
	return nil
}

// Project 项目经历，Links 以 "|" 分隔多个链接。
type Project struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Technologies string `json:"technologies"`
	Description  string `json:"description"`
	Links        string `json:"links,omitempty"`
}

func (p Project) Key() string { return p.ID }

func (p *Project) set(field, value string) error {
	switch field {
	case "title":
		p.Title = value
	case "technologies":
		p.Technologies = value
	case "description":
		p.Description = value
	case "links":
		p.Links = value
	default:
		return unknownField(CollectionProjects, field)
	}
	return nil
}

// Experience 工作经历。
type Experience struct {
	ID          string `json:"id"`
	Company     string `json:"company"`
	Position    string `json:"position"`
	Duration    string `json:"duration"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

func (x Experience) Key() string { return x.ID }

func (x *Experience) set(field, value string) error {
	switch field {
	case "company":
		x.Company = value
	case "position":
		x.Position = value
	case "duration":
		x.Duration = value
	case "location":
		x.Location = value
	case "description":
		x.Description = value
	default:
		return unknownField(CollectionExperience, field)
	}
	return nil
}

// Achievement 奖项与成就。
type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (a Achievement) Key() string { return a.ID }

func (a *Achievement) set(field, value string) error {
	switch field {
	case "title":
		a.Title = value
	case "description":
		a.Description = value
	default:
		return unknownField(CollectionAchievements, field)
	}
	return nil
}

// Extracurricular 课外活动。
type Extracurricular struct {
	ID           string `json:"id"`
	Organization string `json:"organization"`
	Designation  string `json:"designation"`
	Duration     string `json:"duration"`
	Description  string `json:"description"`
}

func (x Extracurricular) Key() string { return x.ID }

func (x *Extracurricular) set(field, value string) error {
	switch field {
	case "organization":
		x.Organization = value
	case "designation":
		x.Designation = value
	case "duration":
		x.Duration = value
	case "description":
		x.Description = value
	default:
		return unknownField(CollectionExtracurriculars, field)
	}
	return nil
}

// CustomItem 是自定义段落中的通用条目。
type CustomItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle,omitempty"`
	Description string `json:"description"`
	Duration    string `json:"duration,omitempty"`
	Location    string `json:"location,omitempty"`
}

func (i CustomItem) Key() string { return i.ID }

func (i *CustomItem) set(field, value string) error {
	switch field {
	case "title":
		i.Title = value
	case "subtitle":
		i.Subtitle = value
	case "description":
		i.Description = value
	case "duration":
		i.Duration = value
	case "location":
		i.Location = value
	default:
		return unknownField("customItem", field)
	}
	return nil
}

// CustomSection 用户自定义段落。
type CustomSection struct {
	ID    string                 `json:"id"`
	Title string                 `json:"title"`
	Items Collection[CustomItem] `json:"items"`
}

func (s CustomSection) Key() string { return s.ID }

// OrderKey 返回该段落在 SectionOrder 中的合成键。
func (s CustomSection) OrderKey() string { return CustomKey(s.ID) }

func (s CustomSection) clone() CustomSection {
	s.Items = s.Items.cloneWith(nil)
	return s
}
