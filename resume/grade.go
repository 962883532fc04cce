package resume

import (
	"fmt"
	"strings"
)

// GradeScale 是成绩的计分方式。
type GradeScale int

const (
	GradeNone GradeScale = iota
	GradeCGPA
	GradePercentage
)

// String 返回可移植记录中使用的 gradeFormat 文本。
func (s GradeScale) String() string {
	switch s {
	case GradeCGPA:
		return "CGPA"
	case GradePercentage:
		return "Percentage"
	default:
		return ""
	}
}

// ParseGradeScale 解析 gradeFormat；无法识别的值视为 GradeNone。
func ParseGradeScale(v string) GradeScale {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "cgpa":
		return GradeCGPA
	case "percentage", "percent", "%":
		return GradePercentage
	default:
		return GradeNone
	}
}

// Grade 是 None | CGPA(value) | Percentage(value) 的标签变体。
// 零值即 None，None 不携带取值。
type Grade struct {
	scale GradeScale
	value string
}

// NoGrade 返回空成绩。
func NoGrade() Grade { return Grade{} }

// CGPA 构造 CGPA 成绩。
func CGPA(value string) Grade { return Grade{scale: GradeCGPA, value: value} }

// Percentage 构造百分制成绩。
func Percentage(value string) Grade { return Grade{scale: GradePercentage, value: value} }

// Scale 返回计分方式。
func (g Grade) Scale() GradeScale { return g.scale }

// Value 返回成绩取值；None 时为空串。
func (g Grade) Value() string {
	if g.scale == GradeNone {
		return ""
	}
	return g.value
}

// IsSet 表示是否有可展示的成绩。
func (g Grade) IsSet() bool { return g.scale != GradeNone && strings.TrimSpace(g.value) != "" }

// WithScale 切换计分方式并保留取值；切换为 None 时清空。
func (g Grade) WithScale(s GradeScale) Grade {
	if s == GradeNone {
		return Grade{}
	}
	return Grade{scale: s, value: g.value}
}

// WithValue 更新取值；None 状态下不接受取值。
func (g Grade) WithValue(v string) Grade {
	if g.scale == GradeNone {
		return g
	}
	return Grade{scale: g.scale, value: v}
}

// Display 返回拼接在学位之后的文本，例如 "CGPA: 9.1" 或 "Percentage: 92%"。
func (g Grade) Display() string {
	if !g.IsSet() {
		return ""
	}
	v := strings.TrimSpace(g.value)
	if g.scale == GradePercentage && !strings.HasSuffix(v, "%") {
		v += "%"
	}
	return fmt.Sprintf("%s: %s", g.scale, v)
}
