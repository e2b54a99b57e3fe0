package vdom

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement  VKind = iota // <div>, <li>, etc.
	KindText                  // Plain text node
	KindFragment              // Grouping without wrapper
	KindRaw                   // Raw HTML (dangerous)
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	case KindRaw:
		return "Raw"
	default:
		return "Unknown"
	}
}

// VNode is the virtual DOM node.
type VNode struct {
	Kind     VKind             `json:"kind"`
	Tag      string            `json:"tag,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Key      string            `json:"key,omitempty"`
	Text     string            `json:"text,omitempty"`
	Children []*VNode          `json:"children,omitempty"`
}

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value string
}

// IsEmpty returns true if this is an empty attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// keyAttr is the pseudo-attribute that sets VNode.Key.
const keyAttr = "key"

// Walk calls fn for every node in the tree in depth-first order.
// Returning false from fn skips the node's children.
func (v *VNode) Walk(fn func(*VNode) bool) {
	if v == nil {
		return
	}
	if !fn(v) {
		return
	}
	for _, c := range v.Children {
		c.Walk(fn)
	}
}

// TextContent concatenates the text of every text node in the tree.
func (v *VNode) TextContent() string {
	var out []byte
	v.Walk(func(n *VNode) bool {
		if n.Kind == KindText {
			out = append(out, n.Text...)
		}
		return true
	})
	return string(out)
}
