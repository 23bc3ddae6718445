package parser

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/segmentio/fasthash/fnv1a"
)

// eofRune is returned by Current once the input is exhausted.
const eofRune rune = -1

const (
	// strings up to this many bytes are interned through the flyweight cache.
	maxCachedLen = 12
	cacheSize    = 512
)

// Cursor is a bounds checked, seekable scanner over the input. Positions are
// byte offsets into the input string.
type Cursor struct {
	input      string
	pos        int
	mark       int
	cache      [cacheSize]string
	lineStarts []int
}

// normalizeNewlines converts CRLF pairs and lone CRs to LF.
func normalizeNewlines(s string) string {
	if strings.IndexByte(s, '\r') == -1 {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// NewCursor returns a cursor at the start of input. Newlines must already be
// normalized.
func NewCursor(input string) *Cursor {
	return &Cursor{input: input}
}

// Pos returns the current read position.
func (c *Cursor) Pos() int {
	return c.pos
}

// IsEmpty reports whether every character has been consumed.
func (c *Cursor) IsEmpty() bool {
	return c.pos >= len(c.input)
}

// Current returns the character at the read position without consuming it,
// or eofRune. Invalid UTF-8 decodes as U+FFFD.
func (c *Cursor) Current() rune {
	if c.pos >= len(c.input) {
		return eofRune
	}
	b := c.input[c.pos]
	if b < utf8.RuneSelf {
		return rune(b)
	}
	r, _ := utf8.DecodeRuneInString(c.input[c.pos:])
	return r
}

// Advance moves past the current character.
func (c *Cursor) Advance() {
	if c.pos >= len(c.input) {
		return
	}
	if c.input[c.pos] < utf8.RuneSelf {
		c.pos++
		return
	}
	_, w := utf8.DecodeRuneInString(c.input[c.pos:])
	c.pos += w
}

// Consume returns the current character and advances past it.
func (c *Cursor) Consume() rune {
	r := c.Current()
	c.Advance()
	return r
}

// Mark remembers the current position. There is a single mark slot.
func (c *Cursor) Mark() {
	c.mark = c.pos
}

// RewindToMark returns to the position saved by Mark.
func (c *Cursor) RewindToMark() {
	c.pos = c.mark
}

// ConsumeTo returns everything up to the next occurrence of r, or to the end
// of input, and advances past it. r itself is not consumed.
func (c *Cursor) ConsumeTo(r rune) string {
	rest := c.input[c.pos:]
	i := strings.IndexRune(rest, r)
	if i == -1 {
		i = len(rest)
	}
	return c.take(i)
}

// ConsumeToAny is ConsumeTo for the first of several characters.
func (c *Cursor) ConsumeToAny(chars string) string {
	rest := c.input[c.pos:]
	i := strings.IndexAny(rest, chars)
	if i == -1 {
		i = len(rest)
	}
	return c.take(i)
}

// ConsumeToEnd returns the remaining input.
func (c *Cursor) ConsumeToEnd() string {
	return c.take(len(c.input) - c.pos)
}

// ConsumeMatching consumes the longest run of ASCII characters accepted by fn.
func (c *Cursor) ConsumeMatching(fn func(b byte) bool) string {
	i := c.pos
	for i < len(c.input) && fn(c.input[i]) {
		i++
	}
	return c.take(i - c.pos)
}

// ConsumeLetterSequence consumes ASCII letters.
func (c *Cursor) ConsumeLetterSequence() string {
	return c.ConsumeMatching(isASCIILetter)
}

// ConsumeAlphanumericSequence consumes ASCII letters and digits.
func (c *Cursor) ConsumeAlphanumericSequence() string {
	return c.ConsumeMatching(isASCIIAlphanumeric)
}

// ConsumeDigitSequence consumes ASCII digits.
func (c *Cursor) ConsumeDigitSequence() string {
	return c.ConsumeMatching(isASCIIDigit)
}

// ConsumeHexSequence consumes ASCII hex digits.
func (c *Cursor) ConsumeHexSequence() string {
	return c.ConsumeMatching(isASCIIHexDigit)
}

// Matches reports whether the input at the read position starts with s.
func (c *Cursor) Matches(s string) bool {
	return strings.HasPrefix(c.input[c.pos:], s)
}

// MatchesIgnoreCase is Matches with ASCII case folding.
func (c *Cursor) MatchesIgnoreCase(s string) bool {
	rest := c.input[c.pos:]
	return len(rest) >= len(s) && strings.EqualFold(rest[:len(s)], s)
}

// MatchesAny reports whether the current character is one of chars.
func (c *Cursor) MatchesAny(chars string) bool {
	r := c.Current()
	return r != eofRune && strings.ContainsRune(chars, r)
}

// MatchesLetter reports whether the current character is an ASCII letter.
func (c *Cursor) MatchesLetter() bool {
	return c.pos < len(c.input) && isASCIILetter(c.input[c.pos])
}

// MatchConsume consumes s if the input starts with it.
func (c *Cursor) MatchConsume(s string) bool {
	if !c.Matches(s) {
		return false
	}
	c.pos += len(s)
	return true
}

// MatchConsumeIgnoreCase consumes s, ignoring ASCII case, if the input starts
// with it.
func (c *Cursor) MatchConsumeIgnoreCase(s string) bool {
	if !c.MatchesIgnoreCase(s) {
		return false
	}
	c.pos += len(s)
	return true
}

// Peek returns up to n bytes from the read position without consuming them.
func (c *Cursor) Peek(n int) string {
	end := c.pos + n
	if end > len(c.input) {
		end = len(c.input)
	}
	return c.input[c.pos:end]
}

// LineCol converts a byte offset into a 1-based line and column. Columns
// count characters, not bytes.
func (c *Cursor) LineCol(pos int) (int, int) {
	if c.lineStarts == nil {
		c.lineStarts = []int{0}
		for i := 0; i < len(c.input); i++ {
			if c.input[i] == '\n' {
				c.lineStarts = append(c.lineStarts, i+1)
			}
		}
	}
	if pos > len(c.input) {
		pos = len(c.input)
	}
	line := sort.Search(len(c.lineStarts), func(i int) bool { return c.lineStarts[i] > pos }) - 1
	start := c.lineStarts[line]
	return line + 1, utf8.RuneCountInString(c.input[start:pos]) + 1
}

func (c *Cursor) take(n int) string {
	start := c.pos
	c.pos += n
	return c.cacheString(start, c.pos)
}

// cacheString returns input[start:end]. Short strings are copied through a
// fixed size table so repeated names share one allocation and do not pin the
// input; a slot holding a different string is left alone and the value is
// copied uncached.
func (c *Cursor) cacheString(start, end int) string {
	s := c.input[start:end]
	if len(s) == 0 || len(s) > maxCachedLen {
		return s
	}
	slot := fnv1a.HashString32(s) % cacheSize
	cached := c.cache[slot]
	switch {
	case cached == s:
		return cached
	case cached == "":
		cached = strings.Clone(s)
		c.cache[slot] = cached
		return cached
	default:
		return strings.Clone(s)
	}
}

func isASCIILetter(b byte) bool {
	return ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

func isASCIIDigit(b byte) bool {
	return '0' <= b && b <= '9'
}

func isASCIIAlphanumeric(b byte) bool {
	return isASCIILetter(b) || isASCIIDigit(b)
}

func isASCIIHexDigit(b byte) bool {
	return isASCIIDigit(b) || ('a' <= b && b <= 'f') || ('A' <= b && b <= 'F')
}
