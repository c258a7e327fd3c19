// Package vdom describes desired presentation trees.
//
// A VNode is either an element (a tag plus props and ordered children) or a
// text node. Trees are built with variadic factory functions or decoded from
// YAML tree files, and are treated as immutable values by the reconciler.
//
//	Div(ID("A1"), Style{"margin": "5px"},
//	    "A",
//	    Div(ID("B1"), Text("B")),
//	)
//
// Props whose key starts with "on" are event handlers, the "style" prop is a
// Style map, and everything else is a plain attribute. How each of those
// reaches the host is decided by the host adapter, not by this package.
package vdom
