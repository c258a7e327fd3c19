package fiber

import (
	"strconv"
	"strings"

	"github.com/vango-dev/fiber/pkg/host"
	"github.com/vango-dev/fiber/pkg/vdom"
)

// Tag is the render node type discriminator.
type Tag uint8

const (
	TagRoot Tag = iota + 1 // Container of one render pass
	TagHost                // Element backed by a host element
	TagText                // Text backed by a host text node
)

// String returns the string representation of the Tag.
func (t Tag) String() string {
	switch t {
	case TagRoot:
		return "Root"
	case TagHost:
		return "Host"
	case TagText:
		return "Text"
	default:
		return "Unknown"
	}
}

// EffectTag classifies the host mutation a render node needs at commit.
type EffectTag uint8

const (
	EffectNone EffectTag = iota
	EffectPlacement
	EffectUpdate
	EffectDeletion
)

// String returns the string representation of the EffectTag.
func (e EffectTag) String() string {
	switch e {
	case EffectNone:
		return "None"
	case EffectPlacement:
		return "Placement"
	case EffectUpdate:
		return "Update"
	case EffectDeletion:
		return "Deletion"
	default:
		return "Unknown"
	}
}

// MarshalText lets EffectTag appear by name in JSON output.
func (e EffectTag) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// MarshalText lets Tag appear by name in JSON output.
func (t Tag) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Node is a render node: one unit of work per tree position.
//
// Child and Sibling own the nodes they point to. Return and Alternate are
// lookups only. The effect pointers thread the node into the effect list of
// its render pass and are only meaningful between completion and commit.
type Node struct {
	Tag      Tag
	Type     string // Element tag name for TagHost
	Key      string
	Props    vdom.Props
	Children []*vdom.VNode // Desired children, consumed by begin work
	Text     string        // For TagText

	// StateNode is the host node this render node owns.
	StateNode host.Node

	Child     *Node
	Sibling   *Node
	Return    *Node
	Alternate *Node
	Index     int // Position among Return's children

	EffectTag EffectTag

	firstEffect *Node
	lastEffect  *Node
	nextEffect  *Node
}

func newNode(v *vdom.VNode) *Node {
	n := &Node{
		Key:      v.Key,
		Props:    v.Props,
		Children: v.Children,
	}
	switch v.Kind {
	case vdom.KindText:
		n.Tag = TagText
		n.Text = v.Text
	default:
		n.Tag = TagHost
		n.Type = v.Tag
	}
	return n
}

// matches reports whether the node built from v can take n's place as an
// update.
func (n *Node) matches(v *vdom.VNode) bool {
	switch v.Kind {
	case vdom.KindText:
		return n.Tag == TagText
	case vdom.KindElement:
		return n.Tag == TagHost && n.Type == v.Tag
	}
	return false
}

// FirstEffect returns the head of this node's subtree effect list.
func (n *Node) FirstEffect() *Node { return n.firstEffect }

// LastEffect returns the tail of this node's subtree effect list.
func (n *Node) LastEffect() *Node { return n.lastEffect }

// NextEffect returns the node after n in the effect list.
func (n *Node) NextEffect() *Node { return n.nextEffect }

// Effects collects this node's subtree effect list in order.
func (n *Node) Effects() []*Node {
	var out []*Node
	for e := n.firstEffect; e != nil; e = e.nextEffect {
		out = append(out, e)
	}
	return out
}

// Path identifies the node's position, e.g. "root/0/1".
func (n *Node) Path() string {
	var parts []string
	for p := n; p != nil; p = p.Return {
		if p.Tag == TagRoot {
			parts = append(parts, "root")
			continue
		}
		parts = append(parts, strconv.Itoa(p.Index))
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

// Walk visits the subtree rooted at n in preorder by following the child,
// sibling and return pointers. fn returning false skips that node's
// children.
func (n *Node) Walk(fn func(*Node) bool) {
	cur := n
	for cur != nil {
		if fn(cur) && cur.Child != nil {
			cur = cur.Child
			continue
		}
		for cur != nil {
			if cur == n {
				return
			}
			if cur.Sibling != nil {
				cur = cur.Sibling
				break
			}
			cur = cur.Return
		}
	}
}

// Count returns the number of render nodes in the subtree rooted at n,
// including n.
func (n *Node) Count() int {
	c := 0
	n.Walk(func(*Node) bool { c++; return true })
	return c
}

// hostParent returns the host node of the nearest ancestor that has one.
func (n *Node) hostParent() host.Node {
	for p := n.Return; p != nil; p = p.Return {
		if p.StateNode != nil {
			return p.StateNode
		}
	}
	return nil
}

// hostSibling returns the host node of the first later sibling that is
// already mounted, so a placement can keep its position.
func (n *Node) hostSibling() host.Node {
	for s := n.Sibling; s != nil; s = s.Sibling {
		if s.EffectTag != EffectPlacement && s.StateNode != nil {
			return s.StateNode
		}
	}
	return nil
}

// detach unlinks n from its parent's child chain and renumbers the siblings
// after it.
func (n *Node) detach() {
	p := n.Return
	if p == nil {
		return
	}
	if p.Child == n {
		p.Child = n.Sibling
	} else {
		for c := p.Child; c != nil; c = c.Sibling {
			if c.Sibling == n {
				c.Sibling = n.Sibling
				break
			}
		}
	}
	for c := n.Sibling; c != nil; c = c.Sibling {
		c.Index--
	}
	n.Sibling = nil
}
