package vdom

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement Kind = iota // <div>, <button>, etc.
	KindText                // Plain text node
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	default:
		return "Unknown"
	}
}

// VNode is an immutable description of one node of the desired tree.
//
// Children are kept out of Props so that attribute diffing never sees them.
// A VNode never points at render or host state and can be reused across
// renders.
type VNode struct {
	Kind     Kind     // Node type
	Tag      string   // Element tag name (e.g., "div")
	Props    Props    // Attributes, styles and event handlers
	Children []*VNode // Child nodes
	Key      string   // Accepted for callers; matching is positional
	Text     string   // For KindText
}

// Props holds attributes, styles and event handlers.
type Props map[string]any

// Style is a set of style fields applied one by one to the host node.
type Style map[string]string

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// EventHandler represents an event handler.
type EventHandler struct {
	Event   string // "onclick", "oninput", etc.
	Handler any    // Function to call
}

// SameType reports whether a and b describe the same kind of node, i.e.
// whether the node built from one can be updated in place to match the other.
func SameType(a, b *VNode) bool {
	if a == nil || b == nil {
		return false
	}
	if a.Kind != b.Kind {
		return false
	}
	return a.Kind != KindElement || a.Tag == b.Tag
}

// Count returns the number of nodes in the tree rooted at v.
func Count(v *VNode) int {
	if v == nil {
		return 0
	}
	n := 0
	stack := []*VNode{v}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n++
		for _, c := range top.Children {
			if c != nil {
				stack = append(stack, c)
			}
		}
	}
	return n
}
