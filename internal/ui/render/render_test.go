package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdownStyle(t *testing.T) {
	t.Setenv(EnvGlamourStyle, "")
	assert.Equal(t, "notty", MarkdownStyle(&bytes.Buffer{}), "non-terminal writers get plain output")

	t.Setenv(EnvGlamourStyle, "light")
	assert.Equal(t, "light", MarkdownStyle(&bytes.Buffer{}))

	t.Setenv(EnvGlamourStyle, "auto")
	assert.Equal(t, "notty", MarkdownStyle(&bytes.Buffer{}))
}

func TestMarkdown(t *testing.T) {
	out, err := Markdown("# Crash on start\n\nIt *crashes* when `kaidan` starts.", "notty", 80)
	require.NoError(t, err)
	assert.Contains(t, out, "Crash on start")
	assert.Contains(t, out, "crashes")
	assert.Contains(t, out, "kaidan")
	assert.False(t, strings.HasPrefix(out, "\n"))
	assert.False(t, strings.HasSuffix(out, "\n"))
}

func TestMarkdown_unknownStyle(t *testing.T) {
	_, err := Markdown("text", "no-such-style", 80)
	assert.Error(t, err)
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  string
	}{
		{name: "no width", text: "one two three", width: 0, want: "one two three"},
		{name: "fits", text: "one two", width: 20, want: "one two"},
		{name: "wraps words", text: "one two three four", width: 9, want: "one two\nthree\nfour"},
		{name: "keeps blank lines", text: "  first  \n\nsecond", width: 20, want: "first\n\nsecond"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Wrap(tt.text, tt.width))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "kaidan", Truncate("kaidan", 10))
	assert.Equal(t, "kaidan", Truncate("kaidan", 0))
	assert.Equal(t, "kai…", Truncate("kaidan", 4))
	assert.Equal(t, "…", Truncate("kaidan", 1))
	assert.Equal(t, "ää…", Truncate("äääää", 3))
}

func TestTable(t *testing.T) {
	var w bytes.Buffer
	assert.Empty(t, Table(&w, []string{"ID"}, nil))

	out := Table(&w, []string{"ID", "Title", "State"}, [][]string{
		{"KDE/kaidan#3", "Crash on start", "opened"},
		{"KDE/kaidan#4", "Typo", "closed"},
	})
	for _, want := range []string{"ID", "Title", "State", "KDE/kaidan#3", "Crash on start", "closed"} {
		assert.Contains(t, out, want)
	}
	assert.True(t, strings.HasSuffix(out, "\n"))
	assert.NotContains(t, out, "\x1b[", "no escape codes for a non-terminal writer")
}
