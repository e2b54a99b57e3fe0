package vdom

import "fmt"

// PatchOp is the type of patch operation.
type PatchOp uint8

const (
	PatchSetText     PatchOp = 0x01 // Update text content
	PatchSetAttr     PatchOp = 0x02 // Set/update attribute
	PatchRemoveAttr  PatchOp = 0x03 // Remove attribute
	PatchInsertNode  PatchOp = 0x04 // Insert new node
	PatchRemoveNode  PatchOp = 0x05 // Remove node
	PatchMoveNode    PatchOp = 0x06 // Move node to new position
	PatchReplaceNode PatchOp = 0x07 // Replace node entirely
)

// String returns the string representation of the PatchOp.
func (op PatchOp) String() string {
	switch op {
	case PatchSetText:
		return "SetText"
	case PatchSetAttr:
		return "SetAttr"
	case PatchRemoveAttr:
		return "RemoveAttr"
	case PatchInsertNode:
		return "InsertNode"
	case PatchRemoveNode:
		return "RemoveNode"
	case PatchMoveNode:
		return "MoveNode"
	case PatchReplaceNode:
		return "ReplaceNode"
	default:
		return "Unknown"
	}
}

// MarshalText encodes the op by name.
func (op PatchOp) MarshalText() ([]byte, error) {
	return []byte(op.String()), nil
}

// UnmarshalText decodes an op name produced by MarshalText.
func (op *PatchOp) UnmarshalText(text []byte) error {
	for o := PatchSetText; o <= PatchReplaceNode; o++ {
		if o.String() == string(text) {
			*op = o
			return nil
		}
	}
	return fmt.Errorf("vdom: unknown patch op %q", text)
}

// Patch represents a single tree operation.
//
// Path is the child-index path of the target node from the root. For
// InsertNode and MoveNode, Path addresses the parent and Index the
// position within it.
type Patch struct {
	Op    PatchOp `json:"op"`
	Path  []int   `json:"path"`
	Key   string  `json:"key,omitempty"`
	Value string  `json:"value,omitempty"`
	Index int     `json:"index,omitempty"`
	Node  *VNode  `json:"-"`
	HTML  string  `json:"html,omitempty"`
}
