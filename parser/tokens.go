package parser

import (
	"fmt"
	"strings"

	"github.com/heathj/gobrowse/parser/dom"
)

//go:generate stringer -type=tokenType
type tokenType uint

const (
	characterToken tokenType = iota
	startTagToken
	endTagToken
	endOfFileToken
	commentToken
	docTypeToken
)

func (t tokenType) String() string {
	switch t {
	case characterToken:
		return "Character"
	case startTagToken:
		return "StartTag"
	case endTagToken:
		return "EndTag"
	case endOfFileToken:
		return "EOF"
	case commentToken:
		return "Comment"
	case docTypeToken:
		return "DOCTYPE"
	}
	return fmt.Sprintf("tokenType(%d)", uint(t))
}

type tagType uint

const (
	startTag tagType = iota
	endTag
)

// Token is a concrete token that is ready to be emitted.
type Token struct {
	TokenType tokenType
	// TagName is the tag or DOCTYPE name with the case-folding policy
	// applied. normalName is always lower case and drives tree construction.
	TagName          string
	normalName       string
	Attributes       *dom.Attributes
	SelfClosing      bool
	Data             string
	Bogus            bool
	CDATA            bool
	PublicIdentifier string
	SystemIdentifier string
	HasPublicID      bool
	HasSystemID      bool
	ForceQuirks      bool
}

func (t *Token) String() string {
	switch t.TokenType {
	case startTagToken:
		return fmt.Sprintf("<%s>", t.TagName)
	case endTagToken:
		return fmt.Sprintf("</%s>", t.TagName)
	case commentToken:
		return fmt.Sprintf("<!--%s-->", t.Data)
	case docTypeToken:
		return fmt.Sprintf("<!DOCTYPE %s>", t.TagName)
	case characterToken:
		return fmt.Sprintf("%q", t.Data)
	}
	return "EOF"
}

// Equal compares two tokens field by field. Attribute order is ignored.
func (t *Token) Equal(o *Token) bool {
	return t.TokenType == o.TokenType &&
		t.TagName == o.TagName &&
		t.SelfClosing == o.SelfClosing &&
		t.Data == o.Data &&
		t.CDATA == o.CDATA &&
		t.PublicIdentifier == o.PublicIdentifier &&
		t.SystemIdentifier == o.SystemIdentifier &&
		t.HasPublicID == o.HasPublicID &&
		t.HasSystemID == o.HasSystemID &&
		t.ForceQuirks == o.ForceQuirks &&
		t.Attributes.Equal(o.Attributes)
}

func (t *Token) isWhitespace() bool {
	return t.TokenType == characterToken && strings.Trim(t.Data, whitespace) == ""
}

// whitespace is the set of HTML space characters.
const whitespace = "\t\n\f\r "

func isWhitespaceRune(r rune) bool {
	switch r {
	case '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

// asciiLower lower-cases ASCII letters only, returning s itself when there is
// nothing to change.
func asciiLower(s string) string {
	for i := 0; i < len(s); i++ {
		if 'A' <= s[i] && s[i] <= 'Z' {
			b := []byte(s)
			for j := i; j < len(b); j++ {
				if 'A' <= b[j] && b[j] <= 'Z' {
					b[j] += 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return s
}

// TokenBuilder builds various tokens up during the tokenization
// phase.
type TokenBuilder struct {
	settings               ParseSettings
	attributes             *dom.Attributes
	attributeKey           strings.Builder
	attributeValue         strings.Builder
	hasAttributeKey        bool
	name                   strings.Builder
	data                   strings.Builder
	tempBuffer             strings.Builder
	publicID               strings.Builder
	systemID               strings.Builder
	hasPublicID            bool
	hasSystemID            bool
	selfClosing            bool
	forceQuirks            bool
	bogus                  bool
	removeNextAttr         bool
	curTagType             tagType
	characterReferenceCode int
}

func newTokenBuilder(settings ParseSettings) *TokenBuilder {
	return &TokenBuilder{
		settings:   settings,
		attributes: dom.NewAttributes(),
	}
}

// Reset clears all the builders and attributes. The temp buffer is owned by
// the states that use it and is cleared separately.
func (t *TokenBuilder) Reset() {
	t.attributes = dom.NewAttributes()
	t.attributeKey.Reset()
	t.attributeValue.Reset()
	t.hasAttributeKey = false
	t.publicID.Reset()
	t.systemID.Reset()
	t.hasPublicID = false
	t.hasSystemID = false
	t.data.Reset()
	t.name.Reset()
	t.selfClosing = false
	t.forceQuirks = false
	t.bogus = false
	t.removeNextAttr = false
}

// EnableSelfClosing changes to the self-closing flag to "set".
func (t *TokenBuilder) EnableSelfClosing() {
	t.selfClosing = true
}

// EnableForceQuirks changes to the force-quirks flag to "set".
func (t *TokenBuilder) EnableForceQuirks() {
	t.forceQuirks = true
}

// WritePublicIdentifierEmpty marks the public identifier as present and empty.
func (t *TokenBuilder) WritePublicIdentifierEmpty() {
	t.publicID.Reset()
	t.hasPublicID = true
}

// WriteSystemIdentifierEmpty marks the system identifier as present and empty.
func (t *TokenBuilder) WriteSystemIdentifierEmpty() {
	t.systemID.Reset()
	t.hasSystemID = true
}

// WritePublicIdentifier appends a rune to the public identifier buffer.
func (t *TokenBuilder) WritePublicIdentifier(r rune) {
	t.hasPublicID = true
	t.publicID.WriteRune(r)
}

// WriteSystemIdentifier appends a rune to the system identifier buffer.
func (t *TokenBuilder) WriteSystemIdentifier(r rune) {
	t.hasSystemID = true
	t.systemID.WriteRune(r)
}

// WriteAttributeName appends a character to the current
// attribute's name.
func (t *TokenBuilder) WriteAttributeName(r rune) {
	t.hasAttributeKey = true
	t.attributeKey.WriteRune(r)
}

// WriteAttributeNameString appends a run of characters to the current
// attribute's name.
func (t *TokenBuilder) WriteAttributeNameString(s string) {
	t.hasAttributeKey = true
	t.attributeKey.WriteString(s)
}

// WriteData appends a character to the current data section.
func (t *TokenBuilder) WriteData(r rune) {
	t.data.WriteRune(r)
}

// WriteDataString appends a run of characters to the current data section.
func (t *TokenBuilder) WriteDataString(s string) {
	t.data.WriteString(s)
}

// WriteAttributeValue appends a character to the current
// attribute's value.
func (t *TokenBuilder) WriteAttributeValue(r rune) {
	t.attributeValue.WriteRune(r)
}

// WriteAttributeValueString appends a run of characters to the current
// attribute's value.
func (t *TokenBuilder) WriteAttributeValueString(s string) {
	t.attributeValue.WriteString(s)
}

// RemoveDuplicateAttributeName checks if the current name is already
// in the list of commited attributes. If so, the attribute is dropped when it
// is committed.
func (t *TokenBuilder) RemoveDuplicateAttributeName() bool {
	ok := t.attributes.Has(t.settings.normalizeAttribute(t.attributeKey.String()))
	if ok {
		t.removeNextAttr = true
	}
	return ok
}

// WriteName appends a character to the current name value.
func (t *TokenBuilder) WriteName(r rune) {
	t.name.WriteRune(r)
}

// WriteNameString appends a run of characters to the current name value.
func (t *TokenBuilder) WriteNameString(s string) {
	t.name.WriteString(s)
}

// CommitAttribute ends the creation of a key/value
// pair by copying the name and value fields into the
// attribute field and clearing the name and value fields.
func (t *TokenBuilder) CommitAttribute() {
	if t.hasAttributeKey && !t.removeNextAttr {
		k := t.settings.normalizeAttribute(t.attributeKey.String())
		t.attributes.Put(k, t.attributeValue.String())
	}
	t.attributeKey.Reset()
	t.attributeValue.Reset()
	t.hasAttributeKey = false
	t.removeNextAttr = false
}

// WriteTempBuffer appends a character to the temporary buffer of the current
// state.
func (t *TokenBuilder) WriteTempBuffer(r rune) {
	t.tempBuffer.WriteRune(r)
}

// WriteTempBufferString appends a run of characters to the temporary buffer.
func (t *TokenBuilder) WriteTempBufferString(s string) {
	t.tempBuffer.WriteString(s)
}

// ResetTempBuffer clears the temporary buffer to be used by some other state.
func (t *TokenBuilder) ResetTempBuffer() {
	t.tempBuffer.Reset()
}

// TempBuffer just returns the string version of the current buffer conents.
func (t *TokenBuilder) TempBuffer() string {
	return t.tempBuffer.String()
}

// SetCharRef sets the internal character reference code.
func (t *TokenBuilder) SetCharRef(i int) {
	t.characterReferenceCode = i
}

// GetCharRef returns the internal character reference code.
func (t *TokenBuilder) GetCharRef() int {
	return t.characterReferenceCode
}

// AppendCharRefDigit shifts a digit into the character reference code. The
// code saturates just past the largest code point so overflowing references
// stay invalid.
func (t *TokenBuilder) AppendCharRefDigit(base, digit int) {
	t.characterReferenceCode = t.characterReferenceCode*base + digit
	if t.characterReferenceCode > 0x10FFFF {
		t.characterReferenceCode = 0x110000
	}
}

func (t *TokenBuilder) tagName() (string, string) {
	raw := t.name.String()
	return t.settings.normalizeTag(raw), asciiLower(raw)
}

// StartTagToken creates a start tag token from the builder
// contents.
func (t *TokenBuilder) StartTagToken() *Token {
	name, normal := t.tagName()
	return &Token{
		TokenType:   startTagToken,
		TagName:     name,
		normalName:  normal,
		Attributes:  t.attributes,
		SelfClosing: t.selfClosing,
	}
}

// EndTagToken creates an end tag token from the builder
// contents.
func (t *TokenBuilder) EndTagToken() *Token {
	name, normal := t.tagName()
	return &Token{
		TokenType:   endTagToken,
		TagName:     name,
		normalName:  normal,
		Attributes:  t.attributes,
		SelfClosing: t.selfClosing,
	}
}

// CharacterToken creates a character token.
func (t *TokenBuilder) CharacterToken(data string, cdata bool) *Token {
	return &Token{
		TokenType: characterToken,
		Data:      data,
		CDATA:     cdata,
	}
}

// EndOfFileToken create an end of file token.
func (t *TokenBuilder) EndOfFileToken() *Token {
	return &Token{
		TokenType: endOfFileToken,
	}
}

// CommentToken creates a comment token from the builder contents.
func (t *TokenBuilder) CommentToken() *Token {
	return &Token{
		TokenType: commentToken,
		Data:      t.data.String(),
		Bogus:     t.bogus,
	}
}

// DocTypeToken creates a doc type token from the builder contents.
func (t *TokenBuilder) DocTypeToken() *Token {
	name := t.name.String()
	return &Token{
		TokenType:        docTypeToken,
		TagName:          asciiLower(name),
		normalName:       asciiLower(name),
		ForceQuirks:      t.forceQuirks,
		PublicIdentifier: t.publicID.String(),
		SystemIdentifier: t.systemID.String(),
		HasPublicID:      t.hasPublicID,
		HasSystemID:      t.hasSystemID,
	}
}
