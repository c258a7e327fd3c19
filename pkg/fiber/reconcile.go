package fiber

import (
	"strconv"

	ferrors "github.com/vango-dev/fiber/internal/errors"
	"github.com/vango-dev/fiber/pkg/vdom"
)

// reconcileChildren builds parent's child/sibling chain from the desired
// children, matching each position against the same position of the
// previous committed tree. Matching is positional only; keys are ignored.
//
// Old nodes that cannot be carried over are tagged Deletion and moved to the
// pending deletions. They never appear in the new chain.
func (s *Scheduler) reconcileChildren(parent *Node, children []*vdom.VNode) error {
	var old *Node
	if parent.Alternate != nil {
		old = parent.Alternate.Child
	}

	parent.Child = nil
	var prev *Node
	for i, v := range children {
		if err := vdom.ValidateNode(v); err != nil {
			return err.(*ferrors.Error).WithPath(parent.Path() + "/" + strconv.Itoa(i))
		}

		n := newNode(v)
		if old != nil && old.matches(v) {
			n.StateNode = old.StateNode
			n.Alternate = old
			n.EffectTag = EffectUpdate
			// Only one generation back is ever needed.
			old.Alternate = nil
		} else {
			n.EffectTag = EffectPlacement
			if old != nil {
				s.deleteChild(old)
			}
		}
		n.Return = parent
		n.Index = i

		if prev == nil {
			parent.Child = n
		} else {
			prev.Sibling = n
		}
		prev = n

		if old != nil {
			old = old.Sibling
		}
	}

	for ; old != nil; old = old.Sibling {
		s.deleteChild(old)
	}
	return nil
}

func (s *Scheduler) deleteChild(old *Node) {
	old.EffectTag = EffectDeletion
	s.deletions = append(s.deletions, old)
}
