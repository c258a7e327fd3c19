// Package host defines the contract between the reconciler and the
// externally owned host tree, and the rules for routing props onto host
// nodes.
package host

// Node is an opaque reference to a node of the host tree.
type Node any

// Adapter creates and mutates host nodes. Calls are synchronous; an error
// aborts the render pass or commit that issued it.
type Adapter interface {
	// CreateElement creates a detached element node.
	CreateElement(tag string) (Node, error)

	// CreateText creates a detached text node.
	CreateText(text string) (Node, error)

	// SetAttribute sets or replaces an attribute.
	SetAttribute(n Node, key string, value any) error

	// RemoveAttribute removes an attribute.
	RemoveAttribute(n Node, key string) error

	// SetEventHandler binds handler to the event prop key (e.g. "onclick").
	// A nil handler unbinds.
	SetEventHandler(n Node, key string, handler any) error

	// SetStyle sets one style field. An empty value clears the field.
	SetStyle(n Node, name, value string) error

	// AppendChild appends child as the last child of parent.
	AppendChild(parent, child Node) error

	// InsertBefore inserts child into parent immediately before before.
	InsertBefore(parent, child, before Node) error

	// RemoveChild detaches child from parent.
	RemoveChild(parent, child Node) error

	// SetText replaces the content of a text node.
	SetText(n Node, text string) error
}
