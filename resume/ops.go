package resume

import "fmt"

// OpKind 是编辑协作方提交的离散操作类型。
type OpKind string

const (
	OpSetPersonal         OpKind = "setPersonal"
	OpAdd                 OpKind = "add"
	OpUpdate              OpKind = "update"
	OpRemove              OpKind = "remove"
	OpMoveSection         OpKind = "moveSection"
	OpAddCustomSection    OpKind = "addCustomSection"
	OpUpdateCustomSection OpKind = "updateCustomSection"
	OpRemoveCustomSection OpKind = "removeCustomSection"
	OpAddCustomItem       OpKind = "addCustomItem"
	OpUpdateCustomItem    OpKind = "updateCustomItem"
	OpRemoveCustomItem    OpKind = "removeCustomItem"
)

// Op 是一次文档变更的可序列化描述。
type Op struct {
	Kind       OpKind `json:"op"`
	Collection string `json:"collection,omitempty"`
	ID         string `json:"id,omitempty"`
	SectionID  string `json:"sectionId,omitempty"`
	Field      string `json:"field,omitempty"`
	Value      string `json:"value,omitempty"`
	From       int    `json:"from,omitempty"`
	To         int    `json:"to,omitempty"`
}

// Apply 执行一次操作；新增类操作返回新建的 id。
// 只有操作本身不合法（未知类型/集合/字段）时才返回错误。
func (d *Document) Apply(op Op) (string, error) {
	switch op.Kind {
	case OpSetPersonal:
		return "", d.SetPersonal(op.Field, op.Value)
	case OpAdd:
		return d.Add(op.Collection)
	case OpUpdate:
		return "", d.Update(op.Collection, op.ID, op.Field, op.Value)
	case OpRemove:
		return "", d.Remove(op.Collection, op.ID)
	case OpMoveSection:
		d.MoveSection(op.From, op.To)
		return "", nil
	case OpAddCustomSection:
		return d.AddCustomSection(), nil
	case OpUpdateCustomSection:
		return "", d.UpdateCustomSection(op.SectionID, op.Field, op.Value)
	case OpRemoveCustomSection:
		d.RemoveCustomSection(op.SectionID)
		return "", nil
	case OpAddCustomItem:
		return d.AddCustomItem(op.SectionID), nil
	case OpUpdateCustomItem:
		return "", d.UpdateCustomItem(op.SectionID, op.ID, op.Field, op.Value)
	case OpRemoveCustomItem:
		d.RemoveCustomItem(op.SectionID, op.ID)
		return "", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOp, op.Kind)
	}
}
