package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "malformed node",
			code:    CodeMalformedNode,
			wantMsg: "Malformed virtual node",
			wantCat: CategoryValidation,
		},
		{
			name:    "host failure",
			code:    CodeHostFailure,
			wantMsg: "Host adapter rejected a mutation",
			wantCat: CategoryHost,
		},
		{
			name:    "unknown error code",
			code:    "F999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			assert.Equal(t, tt.wantMsg, err.Message)
			assert.Equal(t, tt.wantCat, err.Category)
			assert.Equal(t, tt.code, err.Code)
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CodeMalformedNode, "element at %s has no tag", "root/0")
	assert.Equal(t, "element at root/0 has no tag", err.Message)
	assert.Equal(t, CategoryValidation, err.Category)
	assert.Equal(t, "F001: element at root/0 has no tag", err.Error())
}

func TestErrorString(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := New(CodeHostFailure).WithPath("root/1").Wrap(cause)
	assert.Equal(t, "F003: Host adapter rejected a mutation (at root/1): boom", err.Error())
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("disk full")
	err := New(CodeHostFailure).Wrap(cause)
	assert.True(t, stderrors.Is(err, cause))

	wrapped := fmt.Errorf("commit: %w", err)
	assert.True(t, HasCode(wrapped, CodeHostFailure))
	assert.False(t, HasCode(wrapped, CodeMalformedNode))
	assert.Equal(t, CodeHostFailure, CodeOf(wrapped))
	assert.Equal(t, "", CodeOf(cause))
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil, CodeHostFailure))

	existing := New(CodeMalformedNode)
	assert.Same(t, existing, FromError(fmt.Errorf("ctx: %w", existing), CodeHostFailure))

	plain := stderrors.New("plain")
	got := FromError(plain, CodeTreeFile)
	require.NotNil(t, got)
	assert.Equal(t, CodeTreeFile, got.Code)
	assert.Same(t, plain, got.Wrapped)
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New(CodeMalformedNode).
		WithPath("root/0/2").
		WithSuggestion("give the element a tag").
		Wrap(stderrors.New("empty tag"))

	out := err.Format()
	assert.Contains(t, out, "ERROR F001: Malformed virtual node")
	assert.Contains(t, out, "root/0/2")
	assert.Contains(t, out, "Cause: empty tag")
	assert.Contains(t, out, "Hint: give the element a tag")
	assert.NotContains(t, out, "\033[")
}

func TestFormatCompact(t *testing.T) {
	err := New(CodeUnknownTag).WithPath("root/3")
	assert.Equal(t, "root/3: F002: Unknown render node tag", err.FormatCompact())
}

func TestPrint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Print(&buf, fmt.Errorf("wrap: %w", New(CodeInvalidConfig)))
	assert.Contains(t, buf.String(), "ERROR F010: Invalid configuration")

	buf.Reset()
	Print(&buf, stderrors.New("plain failure"))
	assert.Contains(t, buf.String(), "ERROR: plain failure")
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 30), 20)
	require.NotEmpty(t, lines)
	for _, line := range lines {
		assert.LessOrEqual(t, len(line), 20)
	}
	assert.Nil(t, wrapText("", 10))
}

func TestRegistryCodesSorted(t *testing.T) {
	codes := GetAllCodes()
	require.Len(t, codes, 6)
	assert.Equal(t, CodeMalformedNode, codes[0])
	for _, code := range codes {
		tmpl, ok := GetTemplate(code)
		require.True(t, ok)
		assert.NotEmpty(t, tmpl.Message)
		assert.NotEmpty(t, tmpl.Detail)
	}
}
