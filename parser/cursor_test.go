package parser

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorConsume(t *testing.T) {
	t.Parallel()
	c := NewCursor("aé<b")
	assert.Equal(t, 'a', c.Consume())
	assert.Equal(t, 1, c.Pos())
	assert.Equal(t, 'é', c.Consume())
	assert.Equal(t, 3, c.Pos())
	assert.Equal(t, "<b", c.ConsumeToEnd())
	assert.True(t, c.IsEmpty())
	assert.Equal(t, eofRune, c.Current())
	assert.Equal(t, eofRune, c.Consume())
	assert.Equal(t, 5, c.Pos())
}

func TestCursorConsumeTo(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		chars string
		want  string
		rest  string
	}{
		{"stops at first", "abc<def&", "&<", "abc", "<def&"},
		{"runs to end", "abcdef", "&<", "abcdef", ""},
		{"nothing to consume", "<abc", "<", "", "<abc"},
		{"empty input", "", "<", "", ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := NewCursor(tt.in)
			assert.Equal(t, tt.want, c.ConsumeToAny(tt.chars))
			assert.Equal(t, tt.rest, c.ConsumeToEnd())
		})
	}

	c := NewCursor("ab]]>")
	assert.Equal(t, "ab", c.ConsumeTo(']'))
	assert.Equal(t, ']', c.Current())
}

func TestCursorSequences(t *testing.T) {
	t.Parallel()
	c := NewCursor("abcDEF123xyz;09af!")
	assert.Equal(t, "abcDEF", c.ConsumeLetterSequence())
	assert.Equal(t, "123", c.ConsumeDigitSequence())
	assert.Equal(t, "xyz", c.ConsumeAlphanumericSequence())
	assert.True(t, c.MatchConsume(";"))
	assert.Equal(t, "09af", c.ConsumeHexSequence())
	assert.True(t, c.MatchesAny("!?"))
	assert.False(t, c.MatchesLetter())
}

func TestCursorMatching(t *testing.T) {
	t.Parallel()
	c := NewCursor("DocType html")
	assert.False(t, c.Matches("DOCTYPE"))
	assert.True(t, c.MatchesIgnoreCase("DOCTYPE"))
	assert.False(t, c.MatchConsume("doctype"))
	assert.Equal(t, 0, c.Pos())
	assert.True(t, c.MatchConsumeIgnoreCase("doctype"))
	assert.Equal(t, " html", c.Peek(100))
	assert.Equal(t, " h", c.Peek(2))
	assert.False(t, c.MatchesIgnoreCase(" html and more"))
}

func TestCursorMark(t *testing.T) {
	t.Parallel()
	c := NewCursor("<![CDATA[")
	c.Advance()
	c.Mark()
	c.ConsumeToEnd()
	require.True(t, c.IsEmpty())
	c.RewindToMark()
	assert.Equal(t, 1, c.Pos())
	assert.Equal(t, '!', c.Current())
}

func TestCursorLineCol(t *testing.T) {
	c := NewCursor("ab\ncdé\n\nx")
	tests := []struct {
		pos, line, col int
	}{
		{0, 1, 1},
		{2, 1, 3},
		{3, 2, 1},
		{7, 2, 4},
		{8, 3, 1},
		{9, 4, 1},
		{10, 4, 2},
		{100, 4, 2},
	}
	for _, tt := range tests {
		line, col := c.LineCol(tt.pos)
		assert.Equal(t, tt.line, line, "line at %d", tt.pos)
		assert.Equal(t, tt.col, col, "col at %d", tt.pos)
	}
}

func TestNormalizeNewlines(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "a\nb\nc\n\nd", normalizeNewlines("a\r\nb\rc\n\r\nd"))
	in := "no carriage returns"
	assert.Equal(t, in, normalizeNewlines(in))
}

func TestCursorInternsShortStrings(t *testing.T) {
	t.Parallel()
	c := NewCursor("div div averyveryverylongname averyveryverylongname")
	first := c.ConsumeToAny(" ")
	c.Advance()
	second := c.ConsumeToAny(" ")
	require.Equal(t, first, second)
	assert.Equal(t, unsafe.StringData(first), unsafe.StringData(second))

	c.Advance()
	long := c.ConsumeToAny(" ")
	assert.Equal(t, "averyveryverylongname", long)
}
