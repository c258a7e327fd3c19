package vdom

import (
	"strconv"

	ferrors "github.com/vango-dev/fiber/internal/errors"
)

// ValidateNode checks the fields of a single node without descending into
// its children. It fails fast on anything the reconciler cannot represent.
func ValidateNode(v *VNode) error {
	if v == nil {
		return ferrors.Newf(ferrors.CodeMalformedNode, "nil virtual node")
	}
	switch v.Kind {
	case KindElement:
		if v.Tag == "" {
			return ferrors.Newf(ferrors.CodeMalformedNode, "element has no tag")
		}
		if v.Text != "" {
			return ferrors.Newf(ferrors.CodeMalformedNode, "element <%s> carries text; use a text child", v.Tag)
		}
		if _, ok := v.Props["children"]; ok {
			return ferrors.Newf(ferrors.CodeMalformedNode, "element <%s> has a children prop; use Children", v.Tag)
		}
	case KindText:
		if v.Tag != "" {
			return ferrors.Newf(ferrors.CodeMalformedNode, "text node has tag %q", v.Tag)
		}
		if len(v.Children) > 0 {
			return ferrors.Newf(ferrors.CodeMalformedNode, "text node has %d children", len(v.Children))
		}
	default:
		return ferrors.Newf(ferrors.CodeMalformedNode, "unknown node kind %d", v.Kind)
	}
	return nil
}

// Validate checks every node of the tree rooted at v. The returned error
// carries the path of the first offending node ("0/2/1").
func Validate(v *VNode) error {
	type item struct {
		node *VNode
		path string
	}
	stack := []item{{node: v, path: "0"}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if err := ValidateNode(top.node); err != nil {
			return err.(*ferrors.Error).WithPath(top.path)
		}
		for i := len(top.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{
				node: top.node.Children[i],
				path: top.path + "/" + strconv.Itoa(i),
			})
		}
	}
	return nil
}
