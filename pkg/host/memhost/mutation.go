package memhost

import (
	"fmt"
	"strings"
)

// Op is the type of a recorded host mutation.
type Op uint8

const (
	OpCreateElement Op = 0x01
	OpCreateText    Op = 0x02
	OpSetAttr       Op = 0x03
	OpRemoveAttr    Op = 0x04
	OpSetHandler    Op = 0x05
	OpSetStyle      Op = 0x06
	OpAppendChild   Op = 0x07
	OpInsertBefore  Op = 0x08
	OpRemoveChild   Op = 0x09
	OpSetText       Op = 0x0A
)

// String returns the string representation of the Op.
func (op Op) String() string {
	switch op {
	case OpCreateElement:
		return "CreateElement"
	case OpCreateText:
		return "CreateText"
	case OpSetAttr:
		return "SetAttr"
	case OpRemoveAttr:
		return "RemoveAttr"
	case OpSetHandler:
		return "SetHandler"
	case OpSetStyle:
		return "SetStyle"
	case OpAppendChild:
		return "AppendChild"
	case OpInsertBefore:
		return "InsertBefore"
	case OpRemoveChild:
		return "RemoveChild"
	case OpSetText:
		return "SetText"
	default:
		return "Unknown"
	}
}

// MarshalText lets Op appear by name in JSON and YAML output.
func (op Op) MarshalText() ([]byte, error) {
	return []byte(op.String()), nil
}

// UnmarshalText parses an Op from its name.
func (op *Op) UnmarshalText(text []byte) error {
	for o := OpCreateElement; o <= OpSetText; o++ {
		if o.String() == string(text) {
			*op = o
			return nil
		}
	}
	return fmt.Errorf("memhost: unknown op %q", text)
}

// Mutation is one recorded adapter call.
type Mutation struct {
	Op     Op     `json:"op"`
	Node   int    `json:"node"`             // Target node ID
	Parent int    `json:"parent,omitempty"` // For AppendChild/InsertBefore/RemoveChild
	Before int    `json:"before,omitempty"` // For InsertBefore
	Key    string `json:"key,omitempty"`    // Attribute, handler or style name; tag for CreateElement
	Value  string `json:"value,omitempty"`  // New value
}

// IsStructural reports whether the mutation changes the shape of the tree.
func (m Mutation) IsStructural() bool {
	switch m.Op {
	case OpAppendChild, OpInsertBefore, OpRemoveChild:
		return true
	}
	return false
}

// String renders the mutation on one line, e.g. `AppendChild #3 -> #1`.
func (m Mutation) String() string {
	switch m.Op {
	case OpCreateElement:
		return fmt.Sprintf("%s #%d <%s>", m.Op, m.Node, m.Key)
	case OpCreateText, OpSetText:
		return fmt.Sprintf("%s #%d %q", m.Op, m.Node, m.Value)
	case OpSetAttr, OpSetHandler, OpSetStyle:
		return fmt.Sprintf("%s #%d %s=%q", m.Op, m.Node, m.Key, m.Value)
	case OpRemoveAttr:
		return fmt.Sprintf("%s #%d %s", m.Op, m.Node, m.Key)
	case OpAppendChild, OpRemoveChild:
		return fmt.Sprintf("%s #%d -> #%d", m.Op, m.Node, m.Parent)
	case OpInsertBefore:
		return fmt.Sprintf("%s #%d -> #%d before #%d", m.Op, m.Node, m.Parent, m.Before)
	default:
		return m.Op.String()
	}
}

// FormatLog renders a mutation log one entry per line.
func FormatLog(log []Mutation) string {
	var b strings.Builder
	for _, m := range log {
		b.WriteString(m.String())
		b.WriteByte('\n')
	}
	return b.String()
}
