package vdom

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	ferrors "github.com/vango-dev/fiber/internal/errors"
)

// TreeFile is the on-disk description of a root's children.
//
//	name: demo
//	children:
//	  - tag: div
//	    props: {id: A1}
//	    style: {margin: 5px}
//	    children:
//	      - text: A
type TreeFile struct {
	Name     string     `yaml:"name,omitempty"`
	Children []NodeSpec `yaml:"children"`
}

// NodeSpec describes one node of a TreeFile. Exactly one of Tag or Text must
// be set.
type NodeSpec struct {
	Tag      string            `yaml:"tag,omitempty"`
	Text     *string           `yaml:"text,omitempty"`
	Key      string            `yaml:"key,omitempty"`
	Props    map[string]any    `yaml:"props,omitempty"`
	Style    map[string]string `yaml:"style,omitempty"`
	Children []NodeSpec        `yaml:"children,omitempty"`
}

// DecodeTree parses a YAML (or JSON) tree description. Unknown fields are
// rejected so typos surface immediately.
func DecodeTree(r io.Reader) (*TreeFile, []*VNode, error) {
	var tf TreeFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&tf); err != nil {
		if err == io.EOF {
			return &tf, nil, nil
		}
		return nil, nil, ferrors.New(ferrors.CodeTreeFile).Wrap(err)
	}

	nodes := make([]*VNode, 0, len(tf.Children))
	for i := range tf.Children {
		n, err := tf.Children[i].build(fmt.Sprintf("%d", i))
		if err != nil {
			return nil, nil, err
		}
		nodes = append(nodes, n)
	}
	return &tf, nodes, nil
}

// ParseTree is DecodeTree over a byte slice.
func ParseTree(data []byte) (*TreeFile, []*VNode, error) {
	return DecodeTree(bytes.NewReader(data))
}

// LoadTree reads and parses a tree file.
func LoadTree(path string) (*TreeFile, []*VNode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, ferrors.New(ferrors.CodeTreeFile).WithPath(path).Wrap(err)
	}
	tf, nodes, err := ParseTree(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return tf, nodes, nil
}

func (s *NodeSpec) build(path string) (*VNode, error) {
	if s.Text != nil {
		if s.Tag != "" || len(s.Props) > 0 || len(s.Style) > 0 || len(s.Children) > 0 {
			return nil, ferrors.Newf(ferrors.CodeTreeFile, "text node cannot have tag, props, style or children").WithPath(path)
		}
		return Text(*s.Text), nil
	}
	if s.Tag == "" {
		return nil, ferrors.Newf(ferrors.CodeTreeFile, "node needs either tag or text").WithPath(path)
	}

	n := &VNode{
		Kind:     KindElement,
		Tag:      s.Tag,
		Key:      s.Key,
		Props:    make(Props, len(s.Props)+1),
		Children: make([]*VNode, 0, len(s.Children)),
	}
	for k, v := range s.Props {
		if k == "children" || k == "style" {
			return nil, ferrors.Newf(ferrors.CodeTreeFile, "%q must be given as its own field, not a prop", k).WithPath(path)
		}
		n.Props[k] = v
	}
	if len(s.Style) > 0 {
		n.Props["style"] = Style(s.Style)
	}
	for i := range s.Children {
		c, err := s.Children[i].build(fmt.Sprintf("%s/%d", path, i))
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, c)
	}
	return n, nil
}
