package vdom

import "fmt"

// Element creates an element node with the given tag.
// Arguments can be: nil, Attr, []Attr, Style, EventHandler, *VNode, []*VNode
// or string. Strings become text children.
func Element(tag string, args ...any) *VNode {
	return createElement(tag, args)
}

func createElement(tag string, args []any) *VNode {
	node := &VNode{
		Kind:     KindElement,
		Tag:      tag,
		Props:    make(Props),
		Children: make([]*VNode, 0),
	}

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			// Ignore nil (allows conditional attributes)
			continue

		case Attr:
			node.setAttr(v)

		case []Attr:
			for _, a := range v {
				node.setAttr(a)
			}

		case Style:
			node.Props["style"] = v

		case EventHandler:
			node.Props[v.Event] = v.Handler

		case *VNode:
			if v != nil {
				node.Children = append(node.Children, v)
			}

		case []*VNode:
			for _, child := range v {
				if child != nil {
					node.Children = append(node.Children, child)
				}
			}

		case string:
			node.Children = append(node.Children, Text(v))
		}
	}

	return node
}

func (v *VNode) setAttr(a Attr) {
	if a.IsEmpty() {
		return
	}
	if a.Key == "key" {
		v.Key = fmt.Sprint(a.Value)
		return
	}
	v.Props[a.Key] = a.Value
}

// Common elements

func Div(args ...any) *VNode     { return createElement("div", args) }
func Span(args ...any) *VNode    { return createElement("span", args) }
func P(args ...any) *VNode       { return createElement("p", args) }
func H1(args ...any) *VNode      { return createElement("h1", args) }
func H2(args ...any) *VNode      { return createElement("h2", args) }
func Ul(args ...any) *VNode      { return createElement("ul", args) }
func Ol(args ...any) *VNode      { return createElement("ol", args) }
func Li(args ...any) *VNode      { return createElement("li", args) }
func A(args ...any) *VNode       { return createElement("a", args) }
func Button(args ...any) *VNode  { return createElement("button", args) }
func Input(args ...any) *VNode   { return createElement("input", args) }
func Section(args ...any) *VNode { return createElement("section", args) }
