package memhost

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"sort"
	"strings"
)

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// HTML serialises the container's children. The container itself is not
// written. Attributes and style fields are emitted in sorted order and event
// handlers are omitted.
func (t *Tree) HTML() string {
	var buf bytes.Buffer
	for _, c := range t.root.Children {
		// bytes.Buffer writes never fail
		_ = writeElement(&buf, c)
	}
	return buf.String()
}

// WriteHTML streams the subtree rooted at e to w.
func WriteHTML(w io.Writer, e *Element) error {
	return writeElement(w, e)
}

func writeElement(w io.Writer, e *Element) error {
	if e.IsText {
		_, err := io.WriteString(w, html.EscapeString(e.Text))
		return err
	}

	if _, err := fmt.Fprintf(w, "<%s", e.Tag); err != nil {
		return err
	}
	if err := writeAttributes(w, e); err != nil {
		return err
	}
	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}
	if voidElements[e.Tag] {
		return nil
	}

	for _, c := range e.Children {
		if err := writeElement(w, c); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "</%s>", e.Tag)
	return err
}

func writeAttributes(w io.Writer, e *Element) error {
	keys := make([]string, 0, len(e.Attrs))
	for k := range e.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := e.Attrs[k]
		if b, ok := v.(bool); ok {
			if !b {
				continue
			}
			if _, err := fmt.Fprintf(w, " %s", k); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, ` %s="%s"`, k, html.EscapeString(fmt.Sprint(v))); err != nil {
			return err
		}
	}

	if len(e.Style) > 0 {
		names := make([]string, 0, len(e.Style))
		for n := range e.Style {
			names = append(names, n)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, n := range names {
			parts = append(parts, n+":"+e.Style[n])
		}
		if _, err := fmt.Fprintf(w, ` style="%s"`, html.EscapeString(strings.Join(parts, ";"))); err != nil {
			return err
		}
	}
	return nil
}
