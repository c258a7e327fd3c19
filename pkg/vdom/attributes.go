package vdom

import "strings"

// Prop creates an arbitrary attribute.
func Prop(key string, value any) Attr { return Attr{Key: key, Value: value} }

// ID sets the id attribute.
func ID(id string) Attr { return Prop("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return Prop("class", strings.Join(classes, " ")) }

// Title sets the title attribute.
func Title(title string) Attr { return Prop("title", title) }

// Href sets the href attribute.
func Href(url string) Attr { return Prop("href", url) }

// Value sets the value attribute.
func Value(v string) Attr { return Prop("value", v) }

// Disabled sets the disabled attribute.
func Disabled(b bool) Attr { return Prop("disabled", b) }

// Data creates a data-* attribute.
func Data(key, value string) Attr { return Prop("data-"+key, value) }

// Key sets the node key. Keys are carried on the node but matching stays
// positional.
func Key(k string) Attr { return Prop("key", k) }
