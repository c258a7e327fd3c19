package host_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/fiber/pkg/host"
	"github.com/vango-dev/fiber/pkg/host/memhost"
	"github.com/vango-dev/fiber/pkg/vdom"
)

func newNode(t *testing.T) (*memhost.Tree, host.Node) {
	t.Helper()
	tr := memhost.New()
	n, err := tr.CreateElement("div")
	require.NoError(t, err)
	tr.ResetLog()
	return tr, n
}

func TestApplyPropsInitial(t *testing.T) {
	tr, n := newNode(t)
	click := func() {}

	calls, err := host.ApplyProps(tr, n, nil, vdom.Props{
		"id":      "A1",
		"onclick": click,
		"style":   vdom.Style{"margin": "5px", "border": "1px"},
		"key":     "ignored",
	})
	require.NoError(t, err)
	assert.Equal(t, 4, calls)
	assert.Equal(t, 1, tr.Count(memhost.OpSetAttr))
	assert.Equal(t, 1, tr.Count(memhost.OpSetHandler))
	assert.Equal(t, 2, tr.Count(memhost.OpSetStyle))
}

func TestApplyPropsUnchangedIsNoop(t *testing.T) {
	tr, n := newNode(t)
	click := func() {}
	props := func() vdom.Props {
		return vdom.Props{
			"id":      "A1",
			"tabs":    []string{"a", "b"},
			"onclick": click,
			"style":   vdom.Style{"margin": "5px"},
		}
	}

	calls, err := host.ApplyProps(tr, n, props(), props())
	require.NoError(t, err)
	assert.Zero(t, calls)
	assert.Empty(t, tr.Log())
}

func TestApplyPropsDiff(t *testing.T) {
	tr, n := newNode(t)
	prev := vdom.Props{
		"id":      "A1",
		"class":   "old",
		"onclick": "save",
		"style":   vdom.Style{"margin": "5px", "color": "red"},
	}
	next := vdom.Props{
		"id":      "A1",
		"title":   "new",
		"onclick": "submit",
		"style":   map[string]string{"margin": "6px"},
	}

	calls, err := host.ApplyProps(tr, n, prev, next)
	require.NoError(t, err)

	assert.Equal(t, []memhost.Mutation{
		{Op: memhost.OpRemoveAttr, Node: 1, Key: "class"},
		{Op: memhost.OpSetHandler, Node: 1, Key: "onclick", Value: "submit"},
		{Op: memhost.OpSetStyle, Node: 1, Key: "color", Value: ""},
		{Op: memhost.OpSetStyle, Node: 1, Key: "margin", Value: "6px"},
		{Op: memhost.OpSetAttr, Node: 1, Key: "title", Value: "new"},
	}, tr.Log())
	assert.Equal(t, 5, calls)
}

func TestApplyPropsRemovedHandlerAndStyle(t *testing.T) {
	tr, n := newNode(t)
	prev := vdom.Props{"onClick": "go", "style": map[string]any{"width": 10}}

	_, err := host.ApplyProps(tr, n, prev, vdom.Props{})
	require.NoError(t, err)
	assert.Equal(t, []memhost.Mutation{
		{Op: memhost.OpSetHandler, Node: 1, Key: "onClick"},
		{Op: memhost.OpSetStyle, Node: 1, Key: "width"},
	}, tr.Log())
}

func TestApplyPropsAdapterError(t *testing.T) {
	tr, n := newNode(t)
	boom := errors.New("boom")
	tr.FailOn(memhost.OpSetAttr, boom)

	_, err := host.ApplyProps(tr, n, nil, vdom.Props{"id": "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `set "id"`)
}

func TestPropsEqual(t *testing.T) {
	tests := []struct {
		a, b any
		want bool
	}{
		{"a", "a", true},
		{"a", "b", false},
		{1, 1, true},
		{1, int64(1), false},
		{int64(2), int64(2), true},
		{1.5, 1.5, true},
		{true, true, true},
		{true, "true", false},
		{nil, nil, true},
		{nil, "x", false},
		{[]int{1}, []int{1}, true},
		{map[string]int{"a": 1}, map[string]int{"a": 2}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, host.PropsEqual(tt.a, tt.b), "%v vs %v", tt.a, tt.b)
	}
}
