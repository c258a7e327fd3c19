package fiber

import (
	ferrors "github.com/vango-dev/fiber/internal/errors"
	"github.com/vango-dev/fiber/pkg/host"
)

// performUnit runs one work unit: begin work on n, then, if n is a leaf,
// complete nodes upwards until one with an unvisited sibling is found. It
// returns the next unit, or nil once the root has completed.
func (s *Scheduler) performUnit(n *Node) (*Node, error) {
	if err := s.beginWork(n); err != nil {
		return nil, err
	}
	if n.Child != nil {
		return n.Child, nil
	}
	for n != nil {
		if err := completeUnit(n); err != nil {
			return nil, err
		}
		if n.Sibling != nil {
			return n.Sibling, nil
		}
		n = n.Return
	}
	return nil, nil
}

func (s *Scheduler) beginWork(n *Node) error {
	switch n.Tag {
	case TagRoot:
		return s.reconcileChildren(n, n.Children)
	case TagHost:
		if n.StateNode == nil {
			el, err := s.adapter.CreateElement(n.Type)
			if err != nil {
				return hostError(n, err)
			}
			if _, err := host.ApplyProps(s.adapter, el, nil, n.Props); err != nil {
				return hostError(n, err)
			}
			n.StateNode = el
		}
		return s.reconcileChildren(n, n.Children)
	case TagText:
		if n.StateNode == nil {
			txt, err := s.adapter.CreateText(n.Text)
			if err != nil {
				return hostError(n, err)
			}
			n.StateNode = txt
		}
		return nil
	default:
		return unknownTag(n)
	}
}

// completeUnit merges n's effect list, followed by n itself when it carries
// an effect, onto the end of its parent's list. Children complete left to
// right, so the root ends up with every effect in completion order.
func completeUnit(n *Node) error {
	switch n.Tag {
	case TagRoot, TagHost, TagText:
	default:
		return unknownTag(n)
	}

	p := n.Return
	if p == nil {
		return nil
	}

	if n.firstEffect != nil {
		if p.lastEffect != nil {
			p.lastEffect.nextEffect = n.firstEffect
		} else {
			p.firstEffect = n.firstEffect
		}
		p.lastEffect = n.lastEffect
	}

	if n.EffectTag != EffectNone {
		if p.lastEffect != nil {
			p.lastEffect.nextEffect = n
		} else {
			p.firstEffect = n
		}
		p.lastEffect = n
	}
	return nil
}

func hostError(n *Node, err error) error {
	return ferrors.New(ferrors.CodeHostFailure).WithPath(n.Path()).Wrap(err)
}

func unknownTag(n *Node) error {
	return ferrors.Newf(ferrors.CodeUnknownTag, "unknown render node tag %d", n.Tag).WithPath(n.Path())
}
