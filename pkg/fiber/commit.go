package fiber

import (
	"errors"
	"time"

	ferrors "github.com/vango-dev/fiber/internal/errors"
	"github.com/vango-dev/fiber/pkg/host"
)

var errNoHostParent = errors.New("no ancestor has a host node")

// EffectRecord describes one applied effect.
type EffectRecord struct {
	Effect EffectTag `json:"effect"`
	Tag    Tag       `json:"tag"`
	Type   string    `json:"type,omitempty"`
	Text   string    `json:"text,omitempty"`
	Path   string    `json:"path"`
}

// CommitInfo summarises one committed render pass.
type CommitInfo struct {
	PassID     string         `json:"pass"`
	Units      int            `json:"units"`
	Slices     int            `json:"slices"`
	Placements int            `json:"placements"`
	Updates    int            `json:"updates"`
	Deletions  int            `json:"deletions"`
	Mutations  int            `json:"mutations"` // Attribute and text calls made by updates
	Duration   time.Duration  `json:"duration"`
	Effects    []EffectRecord `json:"effects"`
}

func record(n *Node, effect EffectTag) EffectRecord {
	return EffectRecord{Effect: effect, Tag: n.Tag, Type: n.Type, Text: n.Text, Path: n.Path()}
}

// commitRoot applies the pending deletions and then the effect list of root
// to the host tree. It never yields. On error, mutations applied so far stay
// applied. A removed node is unlinked from the committed tree as soon as its
// host node is gone, so a later pass never removes it twice.
func (s *Scheduler) commitRoot(root *Node, info *CommitInfo) error {
	for i, d := range s.deletions {
		info.Effects = append(info.Effects, record(d, EffectDeletion))
		if err := s.commitDeletion(d); err != nil {
			s.deletions = s.deletions[i:]
			return err
		}
		d.EffectTag = EffectNone
		d.detach()
		info.Deletions++
	}
	s.deletions = nil

	for n := root.firstEffect; n != nil; {
		next := n.nextEffect
		info.Effects = append(info.Effects, record(n, n.EffectTag))

		switch n.EffectTag {
		case EffectPlacement:
			if err := s.commitPlacement(n); err != nil {
				return err
			}
			info.Placements++
		case EffectUpdate:
			calls, err := s.commitUpdate(n)
			if err != nil {
				return err
			}
			info.Updates++
			info.Mutations += calls
		case EffectDeletion:
			if err := s.commitDeletion(n); err != nil {
				return err
			}
			n.detach()
			info.Deletions++
		}

		n.EffectTag = EffectNone
		n.nextEffect = nil
		n.firstEffect, n.lastEffect = nil, nil
		n = next
	}
	root.firstEffect, root.lastEffect = nil, nil
	return nil
}

func (s *Scheduler) commitPlacement(n *Node) error {
	parent := n.hostParent()
	if parent == nil {
		return hostError(n, errNoHostParent)
	}
	var err error
	if before := n.hostSibling(); before != nil {
		err = s.adapter.InsertBefore(parent, n.StateNode, before)
	} else {
		err = s.adapter.AppendChild(parent, n.StateNode)
	}
	if err != nil {
		return hostError(n, err)
	}
	return nil
}

func (s *Scheduler) commitUpdate(n *Node) (int, error) {
	switch n.Tag {
	case TagText:
		if n.Alternate != nil && n.Alternate.Text == n.Text {
			return 0, nil
		}
		if err := s.adapter.SetText(n.StateNode, n.Text); err != nil {
			return 0, hostError(n, err)
		}
		return 1, nil
	case TagHost:
		var prev map[string]any
		if n.Alternate != nil {
			prev = n.Alternate.Props
		}
		calls, err := host.ApplyProps(s.adapter, n.StateNode, prev, n.Props)
		if err != nil {
			return calls, hostError(n, err)
		}
		return calls, nil
	default:
		return 0, ferrors.Newf(ferrors.CodeUnknownTag, "cannot update %s node", n.Tag).WithPath(n.Path())
	}
}

func (s *Scheduler) commitDeletion(n *Node) error {
	if n.StateNode == nil {
		return nil
	}
	parent := n.hostParent()
	if parent == nil {
		return hostError(n, errNoHostParent)
	}
	if err := s.adapter.RemoveChild(parent, n.StateNode); err != nil {
		return hostError(n, err)
	}
	return nil
}
