package vdom

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "github.com/vango-dev/fiber/internal/errors"
)

func TestLoadTree(t *testing.T) {
	tf, nodes, err := LoadTree("testdata/demo.yaml")
	require.NoError(t, err)
	assert.Equal(t, "demo", tf.Name)
	require.Len(t, nodes, 1)

	root := nodes[0]
	assert.Equal(t, "div", root.Tag)
	assert.Equal(t, "A1", root.Props["id"])
	assert.Equal(t, Style{"border": "2px solid pink", "margin": "5px"}, root.Props["style"])
	require.Len(t, root.Children, 2)
	assert.Equal(t, "A", root.Children[0].Text)
	assert.Equal(t, 6, Count(root))
	assert.NoError(t, Validate(root))
}

func TestParseTreeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown field", "children:\n  - tga: div\n"},
		{"tag and text", "children:\n  - tag: div\n    text: x\n"},
		{"neither", "children:\n  - props: {id: x}\n"},
		{"children prop", "children:\n  - tag: div\n    props: {children: 1}\n"},
		{"not yaml", "children: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseTree([]byte(tt.src))
			require.Error(t, err)
			assert.True(t, ferrors.HasCode(err, ferrors.CodeTreeFile), "got %v", err)
		})
	}
}

func TestDecodeTreeJSON(t *testing.T) {
	_, nodes, err := DecodeTree(strings.NewReader(`{"children":[{"tag":"p","children":[{"text":""}]}]}`))
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	require.Len(t, nodes[0].Children, 1)
	assert.Equal(t, KindText, nodes[0].Children[0].Kind)
	assert.Equal(t, "", nodes[0].Children[0].Text)
}

func TestDecodeTreeEmpty(t *testing.T) {
	tf, nodes, err := DecodeTree(strings.NewReader(""))
	require.NoError(t, err)
	assert.NotNil(t, tf)
	assert.Empty(t, nodes)
}

func TestLoadTreeMissing(t *testing.T) {
	_, _, err := LoadTree("testdata/nope.yaml")
	require.Error(t, err)
	assert.True(t, ferrors.HasCode(err, ferrors.CodeTreeFile))
}
