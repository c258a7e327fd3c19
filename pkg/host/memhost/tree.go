// Package memhost is an in-memory host tree. It implements host.Adapter,
// records every call in an ordered mutation log and can serialise itself as
// HTML. It backs the CLI, the inspector and the reconciler tests.
package memhost

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/vango-dev/fiber/pkg/host"
)

// ErrForeignNode is returned when an adapter call receives a node that was
// not created by this tree.
var ErrForeignNode = errors.New("memhost: node does not belong to this tree")

// Element is a node of the in-memory host tree.
type Element struct {
	ID       int
	Tag      string // Empty for text nodes
	Text     string // For text nodes
	IsText   bool
	Attrs    map[string]any
	Handlers map[string]any
	Style    map[string]string
	Children []*Element
	Parent   *Element
}

// Tree is an in-memory host tree rooted at a container element.
type Tree struct {
	root   *Element
	nextID int
	log    []Mutation
	failOn map[Op]error
}

var _ host.Adapter = (*Tree)(nil)

// New creates an empty tree whose container is a <root> element with ID 0.
func New() *Tree {
	t := &Tree{failOn: make(map[Op]error)}
	t.root = t.newElement("root")
	return t
}

// Container returns the root element to pass to the scheduler.
func (t *Tree) Container() host.Node { return t.root }

// Root returns the container element.
func (t *Tree) Root() *Element { return t.root }

// Log returns a copy of the mutation log.
func (t *Tree) Log() []Mutation {
	out := make([]Mutation, len(t.log))
	copy(out, t.log)
	return out
}

// TakeLog returns the mutation log and clears it.
func (t *Tree) TakeLog() []Mutation {
	out := t.log
	t.log = nil
	return out
}

// ResetLog clears the mutation log.
func (t *Tree) ResetLog() { t.log = nil }

// Count returns how many logged mutations have the given op.
func (t *Tree) Count(op Op) int {
	n := 0
	for _, m := range t.log {
		if m.Op == op {
			n++
		}
	}
	return n
}

// FailOn makes every subsequent call of op return err. A nil err clears it.
func (t *Tree) FailOn(op Op, err error) {
	if err == nil {
		delete(t.failOn, op)
		return
	}
	t.failOn[op] = err
}

func (t *Tree) newElement(tag string) *Element {
	e := &Element{
		ID:       t.nextID,
		Tag:      tag,
		Attrs:    make(map[string]any),
		Handlers: make(map[string]any),
		Style:    make(map[string]string),
	}
	t.nextID++
	return e
}

func (t *Tree) check(op Op) error {
	if err := t.failOn[op]; err != nil {
		return fmt.Errorf("memhost: %s: %w", op, err)
	}
	return nil
}

func (t *Tree) record(m Mutation) { t.log = append(t.log, m) }

func element(n host.Node) (*Element, error) {
	e, ok := n.(*Element)
	if !ok || e == nil {
		return nil, fmt.Errorf("%w: %T", ErrForeignNode, n)
	}
	return e, nil
}

// CreateElement implements host.Adapter.
func (t *Tree) CreateElement(tag string) (host.Node, error) {
	if err := t.check(OpCreateElement); err != nil {
		return nil, err
	}
	e := t.newElement(tag)
	t.record(Mutation{Op: OpCreateElement, Node: e.ID, Key: tag})
	return e, nil
}

// CreateText implements host.Adapter.
func (t *Tree) CreateText(text string) (host.Node, error) {
	if err := t.check(OpCreateText); err != nil {
		return nil, err
	}
	e := t.newElement("")
	e.IsText = true
	e.Text = text
	t.record(Mutation{Op: OpCreateText, Node: e.ID, Value: text})
	return e, nil
}

// SetAttribute implements host.Adapter.
func (t *Tree) SetAttribute(n host.Node, key string, value any) error {
	if err := t.check(OpSetAttr); err != nil {
		return err
	}
	e, err := element(n)
	if err != nil {
		return err
	}
	e.Attrs[key] = value
	t.record(Mutation{Op: OpSetAttr, Node: e.ID, Key: key, Value: fmt.Sprint(value)})
	return nil
}

// RemoveAttribute implements host.Adapter.
func (t *Tree) RemoveAttribute(n host.Node, key string) error {
	if err := t.check(OpRemoveAttr); err != nil {
		return err
	}
	e, err := element(n)
	if err != nil {
		return err
	}
	delete(e.Attrs, key)
	t.record(Mutation{Op: OpRemoveAttr, Node: e.ID, Key: key})
	return nil
}

// SetEventHandler implements host.Adapter.
func (t *Tree) SetEventHandler(n host.Node, key string, handler any) error {
	if err := t.check(OpSetHandler); err != nil {
		return err
	}
	e, err := element(n)
	if err != nil {
		return err
	}
	if handler == nil {
		delete(e.Handlers, key)
	} else {
		e.Handlers[key] = handler
	}
	t.record(Mutation{Op: OpSetHandler, Node: e.ID, Key: key, Value: describeHandler(handler)})
	return nil
}

// SetStyle implements host.Adapter.
func (t *Tree) SetStyle(n host.Node, name, value string) error {
	if err := t.check(OpSetStyle); err != nil {
		return err
	}
	e, err := element(n)
	if err != nil {
		return err
	}
	if value == "" {
		delete(e.Style, name)
	} else {
		e.Style[name] = value
	}
	t.record(Mutation{Op: OpSetStyle, Node: e.ID, Key: name, Value: value})
	return nil
}

// AppendChild implements host.Adapter.
func (t *Tree) AppendChild(parent, child host.Node) error {
	if err := t.check(OpAppendChild); err != nil {
		return err
	}
	p, err := element(parent)
	if err != nil {
		return err
	}
	c, err := element(child)
	if err != nil {
		return err
	}
	if p.IsText {
		return fmt.Errorf("memhost: cannot append to text node #%d", p.ID)
	}
	c.detach()
	c.Parent = p
	p.Children = append(p.Children, c)
	t.record(Mutation{Op: OpAppendChild, Node: c.ID, Parent: p.ID})
	return nil
}

// InsertBefore implements host.Adapter.
func (t *Tree) InsertBefore(parent, child, before host.Node) error {
	if err := t.check(OpInsertBefore); err != nil {
		return err
	}
	p, err := element(parent)
	if err != nil {
		return err
	}
	c, err := element(child)
	if err != nil {
		return err
	}
	b, err := element(before)
	if err != nil {
		return err
	}
	c.detach()
	idx := p.indexOf(b)
	if idx < 0 {
		return fmt.Errorf("memhost: #%d is not a child of #%d", b.ID, p.ID)
	}
	p.Children = append(p.Children, nil)
	copy(p.Children[idx+1:], p.Children[idx:])
	p.Children[idx] = c
	c.Parent = p
	t.record(Mutation{Op: OpInsertBefore, Node: c.ID, Parent: p.ID, Before: b.ID})
	return nil
}

// RemoveChild implements host.Adapter.
func (t *Tree) RemoveChild(parent, child host.Node) error {
	if err := t.check(OpRemoveChild); err != nil {
		return err
	}
	p, err := element(parent)
	if err != nil {
		return err
	}
	c, err := element(child)
	if err != nil {
		return err
	}
	if c.Parent != p {
		return fmt.Errorf("memhost: #%d is not a child of #%d", c.ID, p.ID)
	}
	c.detach()
	t.record(Mutation{Op: OpRemoveChild, Node: c.ID, Parent: p.ID})
	return nil
}

// SetText implements host.Adapter.
func (t *Tree) SetText(n host.Node, text string) error {
	if err := t.check(OpSetText); err != nil {
		return err
	}
	e, err := element(n)
	if err != nil {
		return err
	}
	if !e.IsText {
		return fmt.Errorf("memhost: #%d is not a text node", e.ID)
	}
	e.Text = text
	t.record(Mutation{Op: OpSetText, Node: e.ID, Value: text})
	return nil
}

func (e *Element) indexOf(c *Element) int {
	for i, x := range e.Children {
		if x == c {
			return i
		}
	}
	return -1
}

func (e *Element) detach() {
	if e.Parent == nil {
		return
	}
	p := e.Parent
	if i := p.indexOf(e); i >= 0 {
		p.Children = append(p.Children[:i], p.Children[i+1:]...)
	}
	e.Parent = nil
}

func describeHandler(h any) string {
	if h == nil {
		return ""
	}
	if s, ok := h.(string); ok {
		return s
	}
	return reflect.TypeOf(h).String()
}
