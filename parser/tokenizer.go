package parser

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// HTMLTokenizer holds state for the various state of the tokenizer.
type HTMLTokenizer struct {
	cursor                    *Cursor
	errs                      *ParseErrorList
	log                       *logrus.Entry
	trace                     bool
	done                      bool
	allowCDATA                func() bool
	selfClosingPending        bool
	returnState, currentState tokenizerState
	tokenBuilder              *TokenBuilder
	lastEmittedStartTagName   string
	pending                   []*Token
	chars                     strings.Builder
	charsCDATA                bool
	eofToken                  *Token
}

// NewHTMLTokenizer creates a tokenizer over input. Newlines are normalized and
// invalid UTF-8 is replaced before scanning starts. A nil error list records
// nothing and a nil log entry logs nothing.
func NewHTMLTokenizer(input string, settings ParseSettings, errs *ParseErrorList, log *logrus.Entry) *HTMLTokenizer {
	if errs == nil {
		errs = newParseErrorList(0)
	}
	if log == nil {
		log = logrus.NewEntry(discardLogger())
	}
	log = log.WithField("component", "tokenizer")
	return &HTMLTokenizer{
		cursor:       NewCursor(prepareInput(input)),
		errs:         errs,
		log:          log,
		trace:        log.Logger.IsLevelEnabled(logrus.TraceLevel),
		tokenBuilder: newTokenBuilder(settings),
	}
}

func prepareInput(input string) string {
	return strings.ToValidUTF8(normalizeNewlines(input), "\uFFFD")
}

// SwitchTo changes the state the next token is read in. The tree builder uses
// it to enter the text states after elements such as title or script.
func (p *HTMLTokenizer) SwitchTo(state tokenizerState) {
	p.currentState = state
}

// AcknowledgeSelfClosing marks the self-closing flag of the last start tag as
// handled.
func (p *HTMLTokenizer) AcknowledgeSelfClosing() {
	p.selfClosingPending = false
}

// SetAllowCDATA installs the check consulted when <![CDATA[ is seen. A CDATA
// section is only opened when it reports true; otherwise the markup becomes a
// bogus comment.
func (p *HTMLTokenizer) SetAllowCDATA(allow func() bool) {
	p.allowCDATA = allow
}

// Next returns the next token. Consecutive characters are delivered as one
// token. Once the end of the input is reached every call returns the EOF
// token.
func (p *HTMLTokenizer) Next() *Token {
	if p.selfClosingPending {
		p.selfClosingPending = false
		p.parseError("non-void-html-element-start-tag-with-trailing-solidus")
	}
	for len(p.pending) == 0 {
		if p.done {
			return p.eofToken
		}
		p.step()
	}
	t := p.pending[0]
	p.pending[0] = nil
	p.pending = p.pending[1:]
	if t.TokenType == startTagToken && t.SelfClosing {
		p.selfClosingPending = true
	}
	return t
}

// Pos returns the read position in the normalized input.
func (p *HTMLTokenizer) Pos() int {
	return p.cursor.Pos()
}

func (p *HTMLTokenizer) step() {
	eof := p.cursor.IsEmpty()
	r := p.cursor.Current()
	reconsume, next := p.stateToParser(p.currentState)(r, eof)
	if p.trace && next != p.currentState {
		p.log.WithFields(logrus.Fields{
			"from": p.currentState,
			"to":   next,
			"pos":  p.cursor.Pos(),
		}).Trace("state transition")
	}
	p.currentState = next
	if !reconsume && !eof {
		p.cursor.Advance()
	}
}

func (p *HTMLTokenizer) parseError(msg string) {
	p.recordError(msg, p.log)
}

// recordError adds msg at the read position to the error list and logs it to
// log. The tree builder records its errors through here as well.
func (p *HTMLTokenizer) recordError(msg string, log *logrus.Entry) {
	if !p.errs.CanAddError() {
		return
	}
	pos := p.cursor.Pos()
	line, col := p.cursor.LineCol(pos)
	p.errs.add(ParseError{Pos: pos, Line: line, Col: col, Message: msg})
	log.WithFields(logrus.Fields{"line": line, "col": col}).Debug(msg)
}

func (p *HTMLTokenizer) stateToParser(state tokenizerState) parserStateHandler {
	switch state {
	case dataState:
		return p.dataStateParser
	case rcDataState:
		return p.rcDataStateParser
	case rawTextState:
		return p.rawTextStateParser
	case scriptDataState:
		return p.scriptDataStateParser
	case plaintextState:
		return p.plaintextStateParser
	case tagOpenState:
		return p.tagOpenStateParser
	case endTagOpenState:
		return p.endTagOpenStateParser
	case tagNameState:
		return p.tagNameStateParser
	case rcDataLessThanSignState:
		return p.rcDataLessThanSignStateParser
	case rcDataEndTagOpenState:
		return p.rcDataEndTagOpenStateParser
	case rcDataEndTagNameState:
		return p.rcDataEndTagNameStateParser
	case rawTextLessThanSignState:
		return p.rawTextLessThanSignStateParser
	case rawTextEndTagOpenState:
		return p.rawTextEndTagOpenStateParser
	case rawTextEndTagNameState:
		return p.rawTextEndTagNameStateParser
	case scriptDataLessThanSignState:
		return p.scriptDataLessThanSignStateParser
	case scriptDataEndTagOpenState:
		return p.scriptDataEndTagOpenStateParser
	case scriptDataEndTagNameState:
		return p.scriptDataEndTagNameStateParser
	case scriptDataEscapeStartState:
		return p.scriptDataEscapeStartStateParser
	case scriptDataEscapeStartDashState:
		return p.scriptDataEscapeStartDashStateParser
	case scriptDataEscapedState:
		return p.scriptDataEscapedStateParser
	case scriptDataEscapedDashState:
		return p.scriptDataEscapedDashStateParser
	case scriptDataEscapedDashDashState:
		return p.scriptDataEscapedDashDashStateParser
	case scriptDataEscapedLessThanSignState:
		return p.scriptDataEscapedLessThanSignStateParser
	case scriptDataEscapedEndTagOpenState:
		return p.scriptDataEscapedEndTagOpenStateParser
	case scriptDataEscapedEndTagNameState:
		return p.scriptDataEscapedEndTagNameStateParser
	case scriptDataDoubleEscapeStartState:
		return p.scriptDataDoubleEscapeStartStateParser
	case scriptDataDoubleEscapedState:
		return p.scriptDataDoubleEscapedStateParser
	case scriptDataDoubleEscapedDashState:
		return p.scriptDataDoubleEscapedDashStateParser
	case scriptDataDoubleEscapedDashDashState:
		return p.scriptDataDoubleEscapedDashDashStateParser
	case scriptDataDoubleEscapedLessThanSignState:
		return p.scriptDataDoubleEscapedLessThanSignStateParser
	case scriptDataDoubleEscapeEndState:
		return p.scriptDataDoubleEscapeEndStateParser
	case beforeAttributeNameState:
		return p.beforeAttributeNameStateParser
	case attributeNameState:
		return p.attributeNameStateParser
	case afterAttributeNameState:
		return p.afterAttributeNameStateParser
	case beforeAttributeValueState:
		return p.beforeAttributeValueStateParser
	case attributeValueDoubleQuotedState:
		return p.attributeValueDoubleQuotedStateParser
	case attributeValueSingleQuotedState:
		return p.attributeValueSingleQuotedStateParser
	case attributeValueUnquotedState:
		return p.attributeValueUnquotedStateParser
	case afterAttributeValueQuotedState:
		return p.afterAttributeValueQuotedStateParser
	case selfClosingStartTagState:
		return p.selfClosingStartTagStateParser
	case bogusCommentState:
		return p.bogusCommentStateParser
	case markupDeclarationOpenState:
		return p.markupDeclarationOpenStateParser
	case commentStartState:
		return p.commentStartStateParser
	case commentStartDashState:
		return p.commentStartDashStateParser
	case commentState:
		return p.commentStateParser
	case commentLessThanSignState:
		return p.commentLessThanSignStateParser
	case commentLessThanSignBangState:
		return p.commentLessThanSignBangStateParser
	case commentLessThanSignBangDashState:
		return p.commentLessThanSignBangDashStateParser
	case commentLessThanSignBangDashDashState:
		return p.commentLessThanSignBangDashDashStateParser
	case commentEndDashState:
		return p.commentEndDashStateParser
	case commentEndState:
		return p.commentEndStateParser
	case commentEndBangState:
		return p.commentEndBangStateParser
	case doctypeState:
		return p.doctypeStateParser
	case beforeDoctypeNameState:
		return p.beforeDoctypeNameStateParser
	case doctypeNameState:
		return p.doctypeNameStateParser
	case afterDoctypeNameState:
		return p.afterDoctypeNameStateParser
	case afterDoctypePublicKeywordState:
		return p.afterDoctypePublicKeywordStateParser
	case beforeDoctypePublicIdentifierState:
		return p.beforeDoctypePublicIdentifierStateParser
	case doctypePublicIdentifierDoubleQuotedState:
		return p.doctypePublicIdentifierDoubleQuotedStateParser
	case doctypePublicIdentifierSingleQuotedState:
		return p.doctypePublicIdentifierSingleQuotedStateParser
	case afterDoctypePublicIdentifierState:
		return p.afterDoctypePublicIdentifierStateParser
	case betweenDoctypePublicAndSystemIdentifiersState:
		return p.betweenDoctypePublicAndSystemIdentifiersStateParser
	case afterDoctypeSystemKeywordState:
		return p.afterDoctypeSystemKeywordStateParser
	case beforeDoctypeSystemIdentifierState:
		return p.beforeDoctypeSystemIdentifierStateParser
	case doctypeSystemIdentifierDoubleQuotedState:
		return p.doctypeSystemIdentifierDoubleQuotedStateParser
	case doctypeSystemIdentifierSingleQuotedState:
		return p.doctypeSystemIdentifierSingleQuotedStateParser
	case afterDoctypeSystemIdentifierState:
		return p.afterDoctypeSystemIdentifierStateParser
	case bogusDoctypeState:
		return p.bogusDoctypeStateParser
	case cdataSectionState:
		return p.cdataSectionStateParser
	case cdataSectionBracketState:
		return p.cdataSectionBracketStateParser
	case cdataSectionEndState:
		return p.cdataSectionEndStateParser
	case characterReferenceState:
		return p.characterReferenceStateParser
	case namedCharacterReferenceState:
		return p.namedCharacterReferenceStateParser
	case ambiguousAmpersandState:
		return p.ambiguousAmpersandStateParser
	case numericCharacterReferenceState:
		return p.numericCharacterReferenceStateParser
	case hexadecimalCharacterReferenceStartState:
		return p.hexadecimalCharacterReferenceStartStateParser
	case decimalCharacterReferenceStartState:
		return p.decimalCharacterReferenceStartStateParser
	case hexadecimalCharacterReferenceState:
		return p.hexadecimalCharacterReferenceStateParser
	case decimalCharacterReferenceState:
		return p.decimalCharacterReferenceStateParser
	case numericCharacterReferenceEndState:
		return p.numericCharacterReferenceEndStateParser
	}

	return p.dataStateParser
}

func isNonCharacter(code int) bool {
	if code >= 0xFDD0 && code <= 0xFDEF {
		return true
	}
	return code&0xFFFE == 0xFFFE && code <= 0x10FFFF
}

func isC0Control(code int) bool {
	return code >= 0x00 && code <= 0x1F
}

func isControl(code int) bool {
	return isC0Control(code) || (code >= 0x7F && code <= 0x9F)
}

func isASCIIWhitespace(code int) bool {
	switch code {
	case 0x09, 0x0A, 0x0C, 0x0D, 0x20:
		return true
	default:
		return false
	}
}

func isSurrogate(code int) bool {
	return code >= 0xD800 && code <= 0xDFFF
}

func isASCIIAlpha(r rune) bool {
	return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
}

func isASCIIAlnum(r rune) bool {
	return isASCIIAlpha(r) || ('0' <= r && r <= '9')
}

func wasConsumedByAttribute(returnState tokenizerState) bool {
	switch returnState {
	case attributeValueDoubleQuotedState, attributeValueSingleQuotedState, attributeValueUnquotedState:
		return true
	}
	return false
}

func (p *HTMLTokenizer) flushCodePointsAsCharacterReference() {
	if wasConsumedByAttribute(p.returnState) {
		p.tokenBuilder.WriteAttributeValueString(p.tokenBuilder.TempBuffer())
	} else {
		p.emitString(p.tokenBuilder.TempBuffer())
	}
}

func (p *HTMLTokenizer) isApprEndTagToken() bool {
	return p.lastEmittedStartTagName != "" &&
		p.lastEmittedStartTagName == asciiLower(p.tokenBuilder.name.String())
}

// emitChar buffers a character. Buffered characters become a single token
// when the next non-character token is emitted.
func (p *HTMLTokenizer) emitChar(r rune) {
	p.bufferChars(false)
	p.chars.WriteRune(r)
}

func (p *HTMLTokenizer) emitString(s string) {
	p.bufferChars(false)
	p.chars.WriteString(s)
}

func (p *HTMLTokenizer) emitCDATA(s string) {
	p.bufferChars(true)
	p.chars.WriteString(s)
}

func (p *HTMLTokenizer) bufferChars(cdata bool) {
	if p.chars.Len() > 0 && p.charsCDATA != cdata {
		p.flushChars()
	}
	p.charsCDATA = cdata
}

func (p *HTMLTokenizer) flushChars() {
	if p.chars.Len() == 0 {
		return
	}
	p.pending = append(p.pending, p.tokenBuilder.CharacterToken(p.chars.String(), p.charsCDATA))
	p.chars.Reset()
}

func (p *HTMLTokenizer) emit(token *Token) {
	p.flushChars()
	switch token.TokenType {
	case endTagToken:
		if token.Attributes.Len() > 0 {
			p.parseError("end-tag-with-attributes")
			token.Attributes = nil
		}
		if token.SelfClosing {
			p.parseError("end-tag-with-trailing-solidus")
			token.SelfClosing = false
		}
	case startTagToken:
		p.lastEmittedStartTagName = token.normalName
	case endOfFileToken:
		p.done = true
		p.eofToken = token
	}
	p.pending = append(p.pending, token)
}

func (p *HTMLTokenizer) emitEOF() (bool, tokenizerState) {
	p.emit(p.tokenBuilder.EndOfFileToken())
	return false, dataState
}

func (p *HTMLTokenizer) dataStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.emitEOF()
	}
	switch r {
	case '&':
		p.returnState = dataState
		return false, characterReferenceState
	case '<':
		return false, tagOpenState
	case '\u0000':
		p.parseError("unexpected-null-character")
		p.emitChar(r)
		return false, dataState
	default:
		p.emitString(p.cursor.ConsumeToAny("&<\x00"))
		return true, dataState
	}
}

func (p *HTMLTokenizer) rcDataStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.emitEOF()
	}
	switch r {
	case '&':
		p.returnState = rcDataState
		return false, characterReferenceState
	case '<':
		return false, rcDataLessThanSignState
	case '\u0000':
		p.parseError("unexpected-null-character")
		p.emitChar('\uFFFD')
		return false, rcDataState
	default:
		p.emitString(p.cursor.ConsumeToAny("&<\x00"))
		return true, rcDataState
	}
}

func (p *HTMLTokenizer) rawTextStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.emitEOF()
	}
	switch r {
	case '<':
		return false, rawTextLessThanSignState
	case '\u0000':
		p.parseError("unexpected-null-character")
		p.emitChar('\uFFFD')
		return false, rawTextState
	default:
		p.emitString(p.cursor.ConsumeToAny("<\x00"))
		return true, rawTextState
	}
}

func (p *HTMLTokenizer) scriptDataStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.emitEOF()
	}
	switch r {
	case '<':
		return false, scriptDataLessThanSignState
	case '\u0000':
		p.parseError("unexpected-null-character")
		p.emitChar('\uFFFD')
		return false, scriptDataState
	default:
		p.emitString(p.cursor.ConsumeToAny("<\x00"))
		return true, scriptDataState
	}
}

func (p *HTMLTokenizer) plaintextStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.emitEOF()
	}
	switch r {
	case '\u0000':
		p.parseError("unexpected-null-character")
		p.emitChar('\uFFFD')
		return false, plaintextState
	default:
		p.emitString(p.cursor.ConsumeTo('\x00'))
		return true, plaintextState
	}
}

func (p *HTMLTokenizer) tagOpenStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.parseError("eof-before-tag-name")
		p.emitChar('<')
		return p.emitEOF()
	}
	switch {
	case r == '!':
		return false, markupDeclarationOpenState
	case r == '/':
		return false, endTagOpenState
	case p.cursor.MatchesLetter():
		p.tokenBuilder.Reset()
		p.tokenBuilder.curTagType = startTag
		return true, tagNameState
	case r == '?':
		p.parseError("unexpected-question-mark-instead-of-tag-name")
		p.tokenBuilder.Reset()
		p.tokenBuilder.bogus = true
		return true, bogusCommentState
	default:
		p.parseError("invalid-first-character-of-tag-name")
		p.emitChar('<')
		return true, dataState
	}
}

func (p *HTMLTokenizer) endTagOpenStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.parseError("eof-before-tag-name")
		p.emitString("</")
		return p.emitEOF()
	}
	switch {
	case p.cursor.MatchesLetter():
		p.tokenBuilder.Reset()
		p.tokenBuilder.curTagType = endTag
		return true, tagNameState
	case r == '>':
		p.parseError("missing-end-tag-name")
		return false, dataState
	default:
		p.parseError("invalid-first-character-of-tag-name")
		p.tokenBuilder.Reset()
		p.tokenBuilder.bogus = true
		return true, bogusCommentState
	}
}

func (p *HTMLTokenizer) tagNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.parseError("eof-in-tag")
		return p.emitEOF()
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ': // tab, line feed, form feed, space
		return false, beforeAttributeNameState
	case '/':
		return false, selfClosingStartTagState
	case '>':
		return false, p.emitCurrentTag()
	case '\u0000': // null
		p.parseError("unexpected-null-character")
		p.tokenBuilder.WriteName('\uFFFD')
		return false, tagNameState
	default:
		p.tokenBuilder.WriteNameString(p.cursor.ConsumeToAny("\t\n\f />\x00"))
		return true, tagNameState
	}
}

func (p *HTMLTokenizer) lessThanSignStateParser(r rune, endTagOpen, fallback tokenizerState) (bool, tokenizerState) {
	if r == '/' {
		p.tokenBuilder.ResetTempBuffer()
		return false, endTagOpen
	}
	p.emitChar('<')
	return true, fallback
}

func (p *HTMLTokenizer) endTagOpenTextStateParser(r rune, endTagName, fallback tokenizerState) (bool, tokenizerState) {
	if isASCIIAlpha(r) {
		p.tokenBuilder.Reset()
		p.tokenBuilder.curTagType = endTag
		return true, endTagName
	}
	p.emitString("</")
	return true, fallback
}

// endTagNameTextStateParser is shared by the end tag name states of the text
// states. Only an appropriate end tag leaves the text; anything else is
// emitted as characters.
func (p *HTMLTokenizer) endTagNameTextStateParser(r rune, eof bool, fallback tokenizerState) (bool, tokenizerState) {
	if !eof {
		switch {
		case isWhitespaceRune(r):
			if p.isApprEndTagToken() {
				return false, beforeAttributeNameState
			}
		case r == '/':
			if p.isApprEndTagToken() {
				return false, selfClosingStartTagState
			}
		case r == '>':
			if p.isApprEndTagToken() {
				return false, p.emitCurrentTag()
			}
		case isASCIIAlpha(r):
			run := p.cursor.ConsumeLetterSequence()
			for _, c := range run {
				p.tokenBuilder.WriteName(c)
			}
			p.tokenBuilder.WriteTempBufferString(run)
			return true, p.currentState
		}
	}
	p.emitString("</")
	p.emitString(p.tokenBuilder.TempBuffer())
	return true, fallback
}

func (p *HTMLTokenizer) rcDataLessThanSignStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.lessThanSignStateParser(r, rcDataEndTagOpenState, rcDataState)
}

func (p *HTMLTokenizer) rcDataEndTagOpenStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.endTagOpenTextStateParser(r, rcDataEndTagNameState, rcDataState)
}

func (p *HTMLTokenizer) rcDataEndTagNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.endTagNameTextStateParser(r, eof, rcDataState)
}

func (p *HTMLTokenizer) rawTextLessThanSignStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.lessThanSignStateParser(r, rawTextEndTagOpenState, rawTextState)
}

func (p *HTMLTokenizer) rawTextEndTagOpenStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.endTagOpenTextStateParser(r, rawTextEndTagNameState, rawTextState)
}

func (p *HTMLTokenizer) rawTextEndTagNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.endTagNameTextStateParser(r, eof, rawTextState)
}

func (p *HTMLTokenizer) scriptDataLessThanSignStateParser(r rune, eof bool) (bool, tokenizerState) {
	switch r {
	case '/':
		p.tokenBuilder.ResetTempBuffer()
		return false, scriptDataEndTagOpenState
	case '!':
		p.emitString("<!")
		return false, scriptDataEscapeStartState
	default:
		p.emitChar('<')
		return true, scriptDataState
	}
}

func (p *HTMLTokenizer) scriptDataEndTagOpenStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.endTagOpenTextStateParser(r, scriptDataEndTagNameState, scriptDataState)
}

func (p *HTMLTokenizer) scriptDataEndTagNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.endTagNameTextStateParser(r, eof, scriptDataState)
}

func (p *HTMLTokenizer) scriptDataEscapeStartStateParser(r rune, eof bool) (bool, tokenizerState) {
	if r == '-' {
		p.emitChar('-')
		return false, scriptDataEscapeStartDashState
	}
	return true, scriptDataState
}

func (p *HTMLTokenizer) scriptDataEscapeStartDashStateParser(r rune, eof bool) (bool, tokenizerState) {
	if r == '-' {
		p.emitChar('-')
		return false, scriptDataEscapedDashDashState
	}
	return true, scriptDataState
}

func (p *HTMLTokenizer) scriptDataEscapedStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.parseError("eof-in-script-html-comment-like-text")
		return p.emitEOF()
	}
	switch r {
	case '-':
		p.emitChar('-')
		return false, scriptDataEscapedDashState
	case '<':
		return false, scriptDataEscapedLessThanSignState
	case '\u0000':
		p.parseError("unexpected-null-character")
		p.emitChar('\uFFFD')
		return false, scriptDataEscapedState
	default:
		p.emitString(p.cursor.ConsumeToAny("-<\x00"))
		return true, scriptDataEscapedState
	}
}

func (p *HTMLTokenizer) scriptDataEscapedDashStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.parseError("eof-in-script-html-comment-like-text")
		return p.emitEOF()
	}
	switch r {
	case '-':
		p.emitChar('-')
		return false, scriptDataEscapedDashDashState
	case '<':
		return false, scriptDataEscapedLessThanSignState
	case '\u0000':
		p.parseError("unexpected-null-character")
		p.emitChar('\uFFFD')
		return false, scriptDataEscapedState
	default:
		p.emitChar(r)
		return false, scriptDataEscapedState
	}
}

func (p *HTMLTokenizer) scriptDataEscapedDashDashStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.parseError("eof-in-script-html-comment-like-text")
		return p.emitEOF()
	}
	switch r {
	case '-':
		p.emitChar('-')
		return false, scriptDataEscapedDashDashState
	case '<':
		return false, scriptDataEscapedLessThanSignState
	case '>':
		p.emitChar('>')
		return false, scriptDataState
	case '\u0000':
		p.parseError("unexpected-null-character")
		p.emitChar('\uFFFD')
		return false, scriptDataEscapedState
	default:
		p.emitChar(r)
		return false, scriptDataEscapedState
	}
}

func (p *HTMLTokenizer) scriptDataEscapedLessThanSignStateParser(r rune, eof bool) (bool, tokenizerState) {
	switch {
	case r == '/':
		p.tokenBuilder.ResetTempBuffer()
		return false, scriptDataEscapedEndTagOpenState
	case isASCIIAlpha(r):
		p.tokenBuilder.ResetTempBuffer()
		p.emitChar('<')
		return true, scriptDataDoubleEscapeStartState
	default:
		p.emitChar('<')
		return true, scriptDataEscapedState
	}
}

func (p *HTMLTokenizer) scriptDataEscapedEndTagOpenStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.endTagOpenTextStateParser(r, scriptDataEscapedEndTagNameState, scriptDataEscapedState)
}

func (p *HTMLTokenizer) scriptDataEscapedEndTagNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.endTagNameTextStateParser(r, eof, scriptDataEscapedState)
}

// doubleEscapeBoundary handles the shared steps of the double escape start and
// end states: on a delimiter the temp buffer decides the next state, letters
// accumulate, and anything else falls back.
func (p *HTMLTokenizer) doubleEscapeBoundary(r rune, eof bool, onScript, otherwise tokenizerState) (bool, tokenizerState) {
	if eof {
		return true, otherwise
	}
	switch {
	case isWhitespaceRune(r) || r == '/' || r == '>':
		p.emitChar(r)
		if p.tokenBuilder.TempBuffer() == "script" {
			return false, onScript
		}
		return false, otherwise
	case isASCIIAlpha(r):
		p.tokenBuilder.WriteTempBuffer(r | 0x20)
		p.emitChar(r)
		return false, p.currentState
	default:
		return true, otherwise
	}
}

func (p *HTMLTokenizer) scriptDataDoubleEscapeStartStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.doubleEscapeBoundary(r, eof, scriptDataDoubleEscapedState, scriptDataEscapedState)
}

func (p *HTMLTokenizer) scriptDataDoubleEscapedStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.parseError("eof-in-script-html-comment-like-text")
		return p.emitEOF()
	}
	switch r {
	case '-':
		p.emitChar('-')
		return false, scriptDataDoubleEscapedDashState
	case '<':
		p.emitChar('<')
		return false, scriptDataDoubleEscapedLessThanSignState
	case '\u0000':
		p.parseError("unexpected-null-character")
		p.emitChar('\uFFFD')
		return false, scriptDataDoubleEscapedState
	default:
		p.emitString(p.cursor.ConsumeToAny("-<\x00"))
		return true, scriptDataDoubleEscapedState
	}
}

func (p *HTMLTokenizer) scriptDataDoubleEscapedDashStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.parseError("eof-in-script-html-comment-like-text")
		return p.emitEOF()
	}
	switch r {
	case '-':
		p.emitChar('-')
		return false, scriptDataDoubleEscapedDashDashState
	case '<':
		p.emitChar('<')
		return false, scriptDataDoubleEscapedLessThanSignState
	case '\u0000':
		p.parseError("unexpected-null-character")
		p.emitChar('\uFFFD')
		return false, scriptDataDoubleEscapedState
	default:
		p.emitChar(r)
		return false, scriptDataDoubleEscapedState
	}
}

func (p *HTMLTokenizer) scriptDataDoubleEscapedDashDashStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.parseError("eof-in-script-html-comment-like-text")
		return p.emitEOF()
	}
	switch r {
	case '-':
		p.emitChar('-')
		return false, scriptDataDoubleEscapedDashDashState
	case '<':
		p.emitChar('<')
		return false, scriptDataDoubleEscapedLessThanSignState
	case '>':
		p.emitChar('>')
		return false, scriptDataState
	case '\u0000':
		p.parseError("unexpected-null-character")
		p.emitChar('\uFFFD')
		return false, scriptDataDoubleEscapedState
	default:
		p.emitChar(r)
		return false, scriptDataDoubleEscapedState
	}
}

func (p *HTMLTokenizer) scriptDataDoubleEscapedLessThanSignStateParser(r rune, eof bool) (bool, tokenizerState) {
	if r == '/' {
		p.tokenBuilder.ResetTempBuffer()
		p.emitChar('/')
		return false, scriptDataDoubleEscapeEndState
	}
	return true, scriptDataDoubleEscapedState
}

func (p *HTMLTokenizer) scriptDataDoubleEscapeEndStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.doubleEscapeBoundary(r, eof, scriptDataEscapedState, scriptDataDoubleEscapedState)
}

// startAttribute commits the attribute under construction, if any, and
// begins a new one.
func (p *HTMLTokenizer) startAttribute() {
	p.tokenBuilder.CommitAttribute()
}

func (p *HTMLTokenizer) checkDuplicateAttribute() {
	if p.tokenBuilder.RemoveDuplicateAttributeName() {
		p.parseError("duplicate-attribute")
	}
}

func (p *HTMLTokenizer) beforeAttributeNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return true, afterAttributeNameState
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, beforeAttributeNameState
	case '/', '>':
		return true, afterAttributeNameState
	case '=':
		p.parseError("unexpected-equals-sign-before-attribute-name")
		p.startAttribute()
		p.tokenBuilder.WriteAttributeName(r)
		return false, attributeNameState
	default:
		p.startAttribute()
		return true, attributeNameState
	}
}

func (p *HTMLTokenizer) attributeNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.checkDuplicateAttribute()
		return true, afterAttributeNameState
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ', '/', '>':
		p.checkDuplicateAttribute()
		return true, afterAttributeNameState
	case '=':
		p.checkDuplicateAttribute()
		return false, beforeAttributeValueState
	case '\u0000':
		p.parseError("unexpected-null-character")
		p.tokenBuilder.WriteAttributeName('\uFFFD')
		return false, attributeNameState
	case '"', '\'', '<':
		p.parseError("unexpected-character-in-attribute-name")
		p.tokenBuilder.WriteAttributeName(r)
		return false, attributeNameState
	default:
		p.tokenBuilder.WriteAttributeNameString(p.cursor.ConsumeToAny("\t\n\f />=\x00\"'<"))
		return true, attributeNameState
	}
}

func (p *HTMLTokenizer) afterAttributeNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.parseError("eof-in-tag")
		return p.emitEOF()
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, afterAttributeNameState
	case '/':
		return false, selfClosingStartTagState
	case '=':
		return false, beforeAttributeValueState
	case '>':
		return false, p.emitCurrentTag()
	default:
		p.startAttribute()
		return true, attributeNameState
	}
}

func (p *HTMLTokenizer) beforeAttributeValueStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return true, attributeValueUnquotedState
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, beforeAttributeValueState
	case '"':
		return false, attributeValueDoubleQuotedState
	case '\'':
		return false, attributeValueSingleQuotedState
	case '>':
		p.parseError("missing-attribute-value")
		return false, p.emitCurrentTag()
	default:
		return true, attributeValueUnquotedState
	}
}

func (p *HTMLTokenizer) quotedAttributeValue(r rune, eof bool, quote rune, state tokenizerState) (bool, tokenizerState) {
	if eof {
		p.parseError("eof-in-tag")
		return p.emitEOF()
	}
	switch r {
	case quote:
		return false, afterAttributeValueQuotedState
	case '&':
		p.returnState = state
		return false, characterReferenceState
	case '\u0000':
		p.parseError("unexpected-null-character")
		p.tokenBuilder.WriteAttributeValue('\uFFFD')
		return false, state
	default:
		p.tokenBuilder.WriteAttributeValueString(p.cursor.ConsumeToAny(string(quote) + "&\x00"))
		return true, state
	}
}

func (p *HTMLTokenizer) attributeValueDoubleQuotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.quotedAttributeValue(r, eof, '"', attributeValueDoubleQuotedState)
}

func (p *HTMLTokenizer) attributeValueSingleQuotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.quotedAttributeValue(r, eof, '\'', attributeValueSingleQuotedState)
}

func (p *HTMLTokenizer) attributeValueUnquotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.parseError("eof-in-tag")
		return p.emitEOF()
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, beforeAttributeNameState
	case '&':
		p.returnState = attributeValueUnquotedState
		return false, characterReferenceState
	case '>':
		return false, p.emitCurrentTag()
	case '\u0000':
		p.parseError("unexpected-null-character")
		p.tokenBuilder.WriteAttributeValue('\uFFFD')
		return false, attributeValueUnquotedState
	case '"', '\'', '<', '=', '`':
		p.parseError("unexpected-character-in-unquoted-attribute-value")
		p.tokenBuilder.WriteAttributeValue(r)
		return false, attributeValueUnquotedState
	default:
		p.tokenBuilder.WriteAttributeValueString(p.cursor.ConsumeToAny("\t\n\f >&\x00\"'<=`"))
		return true, attributeValueUnquotedState
	}
}

func (p *HTMLTokenizer) afterAttributeValueQuotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.parseError("eof-in-tag")
		return p.emitEOF()
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, beforeAttributeNameState
	case '/':
		return false, selfClosingStartTagState
	case '>':
		return false, p.emitCurrentTag()
	default:
		p.parseError("missing-whitespace-between-attributes")
		return true, beforeAttributeNameState
	}
}

func (p *HTMLTokenizer) selfClosingStartTagStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.parseError("eof-in-tag")
		return p.emitEOF()
	}
	switch r {
	case '>':
		p.tokenBuilder.EnableSelfClosing()
		return false, p.emitCurrentTag()
	default:
		p.parseError("unexpected-solidus-in-tag")
		return true, beforeAttributeNameState
	}
}

func (p *HTMLTokenizer) bogusCommentStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.emit(p.tokenBuilder.CommentToken())
		return p.emitEOF()
	}
	switch r {
	case '>':
		p.emit(p.tokenBuilder.CommentToken())
		return false, dataState
	case '\u0000':
		p.parseError("unexpected-null-character")
		p.tokenBuilder.WriteData('\uFFFD')
		return false, bogusCommentState
	default:
		p.tokenBuilder.WriteDataString(p.cursor.ConsumeToAny(">\x00"))
		return true, bogusCommentState
	}
}

// markupDeclarationOpenStateParser looks ahead from the character after "<!".
// Every branch moves the cursor itself, so the handler always reports a
// reconsume.
func (p *HTMLTokenizer) markupDeclarationOpenStateParser(r rune, eof bool) (bool, tokenizerState) {
	p.tokenBuilder.Reset()
	switch {
	case p.cursor.MatchConsume("--"):
		return true, commentStartState
	case p.cursor.MatchConsumeIgnoreCase("DOCTYPE"):
		return true, doctypeState
	case p.cursor.MatchConsume("[CDATA["):
		if p.allowCDATA != nil && p.allowCDATA() {
			return true, cdataSectionState
		}
		p.parseError("cdata-in-html-content")
		p.tokenBuilder.bogus = true
		p.tokenBuilder.WriteDataString("[CDATA[")
		return true, bogusCommentState
	default:
		p.parseError("incorrectly-opened-comment")
		p.tokenBuilder.bogus = true
		return true, bogusCommentState
	}
}

func (p *HTMLTokenizer) commentStartStateParser(r rune, eof bool) (bool, tokenizerState) {
	switch {
	case !eof && r == '-':
		return false, commentStartDashState
	case !eof && r == '>':
		p.parseError("abrupt-closing-of-empty-comment")
		p.emit(p.tokenBuilder.CommentToken())
		return false, dataState
	default:
		return true, commentState
	}
}

func (p *HTMLTokenizer) commentStartDashStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.parseError("eof-in-comment")
		p.emit(p.tokenBuilder.CommentToken())
		return p.emitEOF()
	}
	switch r {
	case '-':
		return false, commentEndState
	case '>':
		p.parseError("abrupt-closing-of-empty-comment")
		p.emit(p.tokenBuilder.CommentToken())
		return false, dataState
	default:
		p.tokenBuilder.WriteData('-')
		return true, commentState
	}
}

func (p *HTMLTokenizer) commentStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.parseError("eof-in-comment")
		p.emit(p.tokenBuilder.CommentToken())
		return p.emitEOF()
	}
	switch r {
	case '<':
		p.tokenBuilder.WriteData(r)
		return false, commentLessThanSignState
	case '-':
		return false, commentEndDashState
	case '\u0000':
		p.parseError("unexpected-null-character")
		p.tokenBuilder.WriteData('\uFFFD')
		return false, commentState
	default:
		p.tokenBuilder.WriteDataString(p.cursor.ConsumeToAny("<-\x00"))
		return true, commentState
	}
}

func (p *HTMLTokenizer) commentLessThanSignStateParser(r rune, eof bool) (bool, tokenizerState) {
	switch {
	case !eof && r == '!':
		p.tokenBuilder.WriteData(r)
		return false, commentLessThanSignBangState
	case !eof && r == '<':
		p.tokenBuilder.WriteData(r)
		return false, commentLessThanSignState
	default:
		return true, commentState
	}
}

func (p *HTMLTokenizer) commentLessThanSignBangStateParser(r rune, eof bool) (bool, tokenizerState) {
	if !eof && r == '-' {
		return false, commentLessThanSignBangDashState
	}
	return true, commentState
}

func (p *HTMLTokenizer) commentLessThanSignBangDashStateParser(r rune, eof bool) (bool, tokenizerState) {
	if !eof && r == '-' {
		return false, commentLessThanSignBangDashDashState
	}
	return true, commentEndDashState
}

func (p *HTMLTokenizer) commentLessThanSignBangDashDashStateParser(r rune, eof bool) (bool, tokenizerState) {
	if !eof && r != '>' {
		p.parseError("nested-comment")
	}
	return true, commentEndState
}

func (p *HTMLTokenizer) commentEndDashStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.parseError("eof-in-comment")
		p.emit(p.tokenBuilder.CommentToken())
		return p.emitEOF()
	}
	if r == '-' {
		return false, commentEndState
	}
	p.tokenBuilder.WriteData('-')
	return true, commentState
}

func (p *HTMLTokenizer) commentEndStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.parseError("eof-in-comment")
		p.emit(p.tokenBuilder.CommentToken())
		return p.emitEOF()
	}
	switch r {
	case '>':
		p.emit(p.tokenBuilder.CommentToken())
		return false, dataState
	case '!':
		return false, commentEndBangState
	case '-':
		p.tokenBuilder.WriteData('-')
		return false, commentEndState
	default:
		p.tokenBuilder.WriteDataString("--")
		return true, commentState
	}
}

func (p *HTMLTokenizer) commentEndBangStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.parseError("eof-in-comment")
		p.emit(p.tokenBuilder.CommentToken())
		return p.emitEOF()
	}
	switch r {
	case '-':
		p.tokenBuilder.WriteDataString("--!")
		return false, commentEndDashState
	case '>':
		p.parseError("incorrectly-closed-comment")
		p.emit(p.tokenBuilder.CommentToken())
		return false, dataState
	default:
		p.tokenBuilder.WriteDataString("--!")
		return true, commentState
	}
}

func (p *HTMLTokenizer) emitForceQuirksDoctype() {
	p.tokenBuilder.EnableForceQuirks()
	p.emit(p.tokenBuilder.DocTypeToken())
}

func (p *HTMLTokenizer) eofInDoctype() (bool, tokenizerState) {
	p.parseError("eof-in-doctype")
	p.emitForceQuirksDoctype()
	return p.emitEOF()
}

func (p *HTMLTokenizer) doctypeStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.eofInDoctype()
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, beforeDoctypeNameState
	case '>':
		return true, beforeDoctypeNameState
	default:
		p.parseError("missing-whitespace-before-doctype-name")
		return true, beforeDoctypeNameState
	}
}

func (p *HTMLTokenizer) beforeDoctypeNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.eofInDoctype()
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, beforeDoctypeNameState
	case '\u0000':
		p.parseError("unexpected-null-character")
		p.tokenBuilder.WriteName('\uFFFD')
		return false, doctypeNameState
	case '>':
		p.parseError("missing-doctype-name")
		p.emitForceQuirksDoctype()
		return false, dataState
	default:
		p.tokenBuilder.WriteName(r)
		return false, doctypeNameState
	}
}

func (p *HTMLTokenizer) doctypeNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.eofInDoctype()
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, afterDoctypeNameState
	case '>':
		p.emit(p.tokenBuilder.DocTypeToken())
		return false, dataState
	case '\u0000':
		p.parseError("unexpected-null-character")
		p.tokenBuilder.WriteName('\uFFFD')
		return false, doctypeNameState
	default:
		p.tokenBuilder.WriteName(r)
		return false, doctypeNameState
	}
}

func (p *HTMLTokenizer) afterDoctypeNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.eofInDoctype()
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, afterDoctypeNameState
	case '>':
		p.emit(p.tokenBuilder.DocTypeToken())
		return false, dataState
	}
	switch {
	case p.cursor.MatchConsumeIgnoreCase("PUBLIC"):
		return true, afterDoctypePublicKeywordState
	case p.cursor.MatchConsumeIgnoreCase("SYSTEM"):
		return true, afterDoctypeSystemKeywordState
	default:
		p.parseError("invalid-character-sequence-after-doctype-name")
		p.tokenBuilder.EnableForceQuirks()
		return true, bogusDoctypeState
	}
}

// afterDoctypeKeyword is shared by the states following the PUBLIC and
// SYSTEM keywords.
func (p *HTMLTokenizer) afterDoctypeKeyword(r rune, eof bool, public bool, before, dq, sq tokenizerState) (bool, tokenizerState) {
	if eof {
		return p.eofInDoctype()
	}
	kind := "system"
	if public {
		kind = "public"
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, before
	case '"', '\'':
		p.parseError("missing-whitespace-after-doctype-" + kind + "-keyword")
		p.emptyIdentifier(public)
		if r == '"' {
			return false, dq
		}
		return false, sq
	case '>':
		p.parseError("missing-doctype-" + kind + "-identifier")
		p.emitForceQuirksDoctype()
		return false, dataState
	default:
		p.parseError("missing-quote-before-doctype-" + kind + "-identifier")
		p.tokenBuilder.EnableForceQuirks()
		return true, bogusDoctypeState
	}
}

func (p *HTMLTokenizer) beforeDoctypeIdentifier(r rune, eof bool, public bool, dq, sq tokenizerState) (bool, tokenizerState) {
	if eof {
		return p.eofInDoctype()
	}
	kind := "system"
	if public {
		kind = "public"
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, p.currentState
	case '"':
		p.emptyIdentifier(public)
		return false, dq
	case '\'':
		p.emptyIdentifier(public)
		return false, sq
	case '>':
		p.parseError("missing-doctype-" + kind + "-identifier")
		p.emitForceQuirksDoctype()
		return false, dataState
	default:
		p.parseError("missing-quote-before-doctype-" + kind + "-identifier")
		p.tokenBuilder.EnableForceQuirks()
		return true, bogusDoctypeState
	}
}

func (p *HTMLTokenizer) doctypeIdentifier(r rune, eof bool, public bool, quote rune, after tokenizerState) (bool, tokenizerState) {
	if eof {
		return p.eofInDoctype()
	}
	switch r {
	case quote:
		return false, after
	case '\u0000':
		p.parseError("unexpected-null-character")
		p.writeIdentifier(public, '\uFFFD')
		return false, p.currentState
	case '>':
		if public {
			p.parseError("abrupt-doctype-public-identifier")
		} else {
			p.parseError("abrupt-doctype-system-identifier")
		}
		p.emitForceQuirksDoctype()
		return false, dataState
	default:
		p.writeIdentifier(public, r)
		return false, p.currentState
	}
}

func (p *HTMLTokenizer) emptyIdentifier(public bool) {
	if public {
		p.tokenBuilder.WritePublicIdentifierEmpty()
	} else {
		p.tokenBuilder.WriteSystemIdentifierEmpty()
	}
}

func (p *HTMLTokenizer) writeIdentifier(public bool, r rune) {
	if public {
		p.tokenBuilder.WritePublicIdentifier(r)
	} else {
		p.tokenBuilder.WriteSystemIdentifier(r)
	}
}

func (p *HTMLTokenizer) afterDoctypePublicKeywordStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.afterDoctypeKeyword(r, eof, true, beforeDoctypePublicIdentifierState,
		doctypePublicIdentifierDoubleQuotedState, doctypePublicIdentifierSingleQuotedState)
}

func (p *HTMLTokenizer) beforeDoctypePublicIdentifierStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.beforeDoctypeIdentifier(r, eof, true,
		doctypePublicIdentifierDoubleQuotedState, doctypePublicIdentifierSingleQuotedState)
}

func (p *HTMLTokenizer) doctypePublicIdentifierDoubleQuotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.doctypeIdentifier(r, eof, true, '"', afterDoctypePublicIdentifierState)
}

func (p *HTMLTokenizer) doctypePublicIdentifierSingleQuotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.doctypeIdentifier(r, eof, true, '\'', afterDoctypePublicIdentifierState)
}

func (p *HTMLTokenizer) afterDoctypePublicIdentifierStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.eofInDoctype()
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, betweenDoctypePublicAndSystemIdentifiersState
	case '>':
		p.emit(p.tokenBuilder.DocTypeToken())
		return false, dataState
	case '"':
		p.parseError("missing-whitespace-between-doctype-public-and-system-identifiers")
		p.tokenBuilder.WriteSystemIdentifierEmpty()
		return false, doctypeSystemIdentifierDoubleQuotedState
	case '\'':
		p.parseError("missing-whitespace-between-doctype-public-and-system-identifiers")
		p.tokenBuilder.WriteSystemIdentifierEmpty()
		return false, doctypeSystemIdentifierSingleQuotedState
	default:
		p.parseError("missing-quote-before-doctype-system-identifier")
		p.tokenBuilder.EnableForceQuirks()
		return true, bogusDoctypeState
	}
}

func (p *HTMLTokenizer) betweenDoctypePublicAndSystemIdentifiersStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.eofInDoctype()
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, betweenDoctypePublicAndSystemIdentifiersState
	case '>':
		p.emit(p.tokenBuilder.DocTypeToken())
		return false, dataState
	case '"':
		p.tokenBuilder.WriteSystemIdentifierEmpty()
		return false, doctypeSystemIdentifierDoubleQuotedState
	case '\'':
		p.tokenBuilder.WriteSystemIdentifierEmpty()
		return false, doctypeSystemIdentifierSingleQuotedState
	default:
		p.parseError("missing-quote-before-doctype-system-identifier")
		p.tokenBuilder.EnableForceQuirks()
		return true, bogusDoctypeState
	}
}

func (p *HTMLTokenizer) afterDoctypeSystemKeywordStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.afterDoctypeKeyword(r, eof, false, beforeDoctypeSystemIdentifierState,
		doctypeSystemIdentifierDoubleQuotedState, doctypeSystemIdentifierSingleQuotedState)
}

func (p *HTMLTokenizer) beforeDoctypeSystemIdentifierStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.beforeDoctypeIdentifier(r, eof, false,
		doctypeSystemIdentifierDoubleQuotedState, doctypeSystemIdentifierSingleQuotedState)
}

func (p *HTMLTokenizer) doctypeSystemIdentifierDoubleQuotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.doctypeIdentifier(r, eof, false, '"', afterDoctypeSystemIdentifierState)
}

func (p *HTMLTokenizer) doctypeSystemIdentifierSingleQuotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.doctypeIdentifier(r, eof, false, '\'', afterDoctypeSystemIdentifierState)
}

func (p *HTMLTokenizer) afterDoctypeSystemIdentifierStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.eofInDoctype()
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, afterDoctypeSystemIdentifierState
	case '>':
		p.emit(p.tokenBuilder.DocTypeToken())
		return false, dataState
	default:
		p.parseError("unexpected-character-after-doctype-system-identifier")
		return true, bogusDoctypeState
	}
}

func (p *HTMLTokenizer) bogusDoctypeStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.emit(p.tokenBuilder.DocTypeToken())
		return p.emitEOF()
	}
	switch r {
	case '>':
		p.emit(p.tokenBuilder.DocTypeToken())
		return false, dataState
	case '\u0000':
		p.parseError("unexpected-null-character")
		return false, bogusDoctypeState
	default:
		return false, bogusDoctypeState
	}
}

func (p *HTMLTokenizer) cdataSectionStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.parseError("eof-in-cdata")
		return p.emitEOF()
	}
	if r == ']' {
		return false, cdataSectionBracketState
	}
	p.emitCDATA(p.cursor.ConsumeTo(']'))
	return true, cdataSectionState
}

func (p *HTMLTokenizer) cdataSectionBracketStateParser(r rune, eof bool) (bool, tokenizerState) {
	if !eof && r == ']' {
		return false, cdataSectionEndState
	}
	p.emitCDATA("]")
	return true, cdataSectionState
}

func (p *HTMLTokenizer) cdataSectionEndStateParser(r rune, eof bool) (bool, tokenizerState) {
	switch {
	case !eof && r == ']':
		p.emitCDATA("]")
		return false, cdataSectionEndState
	case !eof && r == '>':
		return false, dataState
	default:
		p.emitCDATA("]]")
		return true, cdataSectionState
	}
}

func (p *HTMLTokenizer) characterReferenceStateParser(r rune, eof bool) (bool, tokenizerState) {
	p.tokenBuilder.ResetTempBuffer()
	p.tokenBuilder.WriteTempBuffer('&')

	switch {
	case !eof && isASCIIAlnum(r):
		return true, namedCharacterReferenceState
	case !eof && r == '#':
		p.tokenBuilder.WriteTempBuffer(r)
		return false, numericCharacterReferenceState
	default:
		p.flushCodePointsAsCharacterReference()
		return true, p.returnState
	}
}

// matchNamedCharRef returns the longest entity name that prefixes the input
// at the read position.
func (p *HTMLTokenizer) matchNamedCharRef() string {
	window := p.cursor.Peek(longestCharRefName)
	for n := len(window); n > 0; n-- {
		if _, ok := namedCharRefs[window[:n]]; ok {
			return window[:n]
		}
	}
	return ""
}

func (p *HTMLTokenizer) namedCharacterReferenceStateParser(r rune, eof bool) (bool, tokenizerState) {
	name := p.matchNamedCharRef()
	if name == "" {
		p.flushCodePointsAsCharacterReference()
		return true, ambiguousAmpersandState
	}
	p.cursor.MatchConsume(name)
	p.tokenBuilder.WriteTempBufferString(name)

	terminated := strings.HasSuffix(name, ";")
	if !terminated && wasConsumedByAttribute(p.returnState) {
		next := p.cursor.Current()
		if next == '=' || isASCIIAlnum(next) {
			p.flushCodePointsAsCharacterReference()
			return true, p.returnState
		}
	}
	if !terminated {
		p.parseError("missing-semicolon-after-character-reference")
	}
	p.tokenBuilder.ResetTempBuffer()
	p.tokenBuilder.WriteTempBufferString(namedCharRefs[name])
	p.flushCodePointsAsCharacterReference()
	return true, p.returnState
}

func (p *HTMLTokenizer) ambiguousAmpersandStateParser(r rune, eof bool) (bool, tokenizerState) {
	switch {
	case !eof && isASCIIAlnum(r):
		run := p.cursor.ConsumeAlphanumericSequence()
		if wasConsumedByAttribute(p.returnState) {
			p.tokenBuilder.WriteAttributeValueString(run)
		} else {
			p.emitString(run)
		}
		return true, ambiguousAmpersandState
	case !eof && r == ';':
		p.parseError("unknown-named-character-reference")
		return true, p.returnState
	default:
		return true, p.returnState
	}
}

func (p *HTMLTokenizer) numericCharacterReferenceStateParser(r rune, eof bool) (bool, tokenizerState) {
	p.tokenBuilder.SetCharRef(0)
	if p.cursor.MatchesAny("xX") {
		p.tokenBuilder.WriteTempBuffer(r)
		return false, hexadecimalCharacterReferenceStartState
	}
	return true, decimalCharacterReferenceStartState
}

func (p *HTMLTokenizer) hexadecimalCharacterReferenceStartStateParser(r rune, eof bool) (bool, tokenizerState) {
	if p.cursor.MatchesAny(hexDigits) {
		return true, hexadecimalCharacterReferenceState
	}
	p.parseError("absence-of-digits-in-numeric-character-reference")
	p.flushCodePointsAsCharacterReference()
	return true, p.returnState
}

func (p *HTMLTokenizer) decimalCharacterReferenceStartStateParser(r rune, eof bool) (bool, tokenizerState) {
	if p.cursor.MatchesAny(hexDigits[:10]) {
		return true, decimalCharacterReferenceState
	}
	p.parseError("absence-of-digits-in-numeric-character-reference")
	p.flushCodePointsAsCharacterReference()
	return true, p.returnState
}

func (p *HTMLTokenizer) hexadecimalCharacterReferenceStateParser(r rune, eof bool) (bool, tokenizerState) {
	switch {
	case !eof && r < 0x80 && isASCIIHexDigit(byte(r)):
		for _, d := range p.cursor.ConsumeHexSequence() {
			p.tokenBuilder.AppendCharRefDigit(16, hexValue(d))
		}
		return true, hexadecimalCharacterReferenceState
	case !eof && r == ';':
		return false, numericCharacterReferenceEndState
	default:
		p.parseError("missing-semicolon-after-character-reference")
		return true, numericCharacterReferenceEndState
	}
}

func (p *HTMLTokenizer) decimalCharacterReferenceStateParser(r rune, eof bool) (bool, tokenizerState) {
	switch {
	case !eof && '0' <= r && r <= '9':
		for _, d := range p.cursor.ConsumeDigitSequence() {
			p.tokenBuilder.AppendCharRefDigit(10, int(d-'0'))
		}
		return true, decimalCharacterReferenceState
	case !eof && r == ';':
		return false, numericCharacterReferenceEndState
	default:
		p.parseError("missing-semicolon-after-character-reference")
		return true, numericCharacterReferenceEndState
	}
}

const hexDigits = "0123456789abcdefABCDEF"

func hexValue(d rune) int {
	switch {
	case d <= '9':
		return int(d - '0')
	case d <= 'F':
		return int(d - 'A' + 10)
	default:
		return int(d - 'a' + 10)
	}
}

var numericCharacterReferenceEndStateTable = map[int]rune{
	0x80: 0x20AC,
	0x82: 0x201A,
	0x83: 0x0192,
	0x84: 0x201E,
	0x85: 0x2026,
	0x86: 0x2020,
	0x87: 0x2021,
	0x88: 0x02C6,
	0x89: 0x2030,
	0x8A: 0x0160,
	0x8B: 0x2039,
	0x8C: 0x0152,
	0x8E: 0x017D,
	0x91: 0x2018,
	0x92: 0x2019,
	0x93: 0x201C,
	0x94: 0x201D,
	0x95: 0x2022,
	0x96: 0x2013,
	0x97: 0x2014,
	0x98: 0x02DC,
	0x99: 0x2122,
	0x9A: 0x0161,
	0x9B: 0x203A,
	0x9C: 0x0153,
	0x9E: 0x017E,
	0x9F: 0x0178,
}

// numericCharacterReferenceEndStateParser never consumes the current
// character.
func (p *HTMLTokenizer) numericCharacterReferenceEndStateParser(r rune, eof bool) (bool, tokenizerState) {
	code := p.tokenBuilder.GetCharRef()
	switch {
	case code == 0:
		p.parseError("null-character-reference")
		code = 0xFFFD
	case code > 0x10FFFF:
		p.parseError("character-reference-outside-unicode-range")
		code = 0xFFFD
	case isSurrogate(code):
		p.parseError("surrogate-character-reference")
		code = 0xFFFD
	case isNonCharacter(code):
		p.parseError("noncharacter-character-reference")
	case code == 0x0D || (isControl(code) && !isASCIIWhitespace(code)):
		p.parseError("control-character-reference")
		if replacement, ok := numericCharacterReferenceEndStateTable[code]; ok {
			code = int(replacement)
		}
	}

	p.tokenBuilder.ResetTempBuffer()
	p.tokenBuilder.WriteTempBuffer(rune(code))
	p.flushCodePointsAsCharacterReference()
	return true, p.returnState
}

func (p *HTMLTokenizer) emitCurrentTag() tokenizerState {
	p.tokenBuilder.CommitAttribute()
	switch p.tokenBuilder.curTagType {
	case startTag:
		p.emit(p.tokenBuilder.StartTagToken())
	case endTag:
		p.emit(p.tokenBuilder.EndTagToken())
	}

	return dataState
}

// a stateHandler is a func that takes in a rune and a bool representing the endoffile
// and returns the next state to transition to. Handlers that move the cursor
// themselves report a reconsume so the driver does not advance again.
type parserStateHandler func(in rune, eof bool) (bool, tokenizerState)

type tokenizerState uint

const (
	dataState tokenizerState = iota
	rcDataState
	rawTextState
	scriptDataState
	plaintextState
	tagOpenState
	endTagOpenState
	tagNameState
	rcDataLessThanSignState
	rcDataEndTagOpenState
	rcDataEndTagNameState
	rawTextLessThanSignState
	rawTextEndTagOpenState
	rawTextEndTagNameState
	scriptDataLessThanSignState
	scriptDataEndTagOpenState
	scriptDataEndTagNameState
	scriptDataEscapeStartState
	scriptDataEscapeStartDashState
	scriptDataEscapedState
	scriptDataEscapedDashState
	scriptDataEscapedDashDashState
	scriptDataEscapedLessThanSignState
	scriptDataEscapedEndTagOpenState
	scriptDataEscapedEndTagNameState
	scriptDataDoubleEscapeStartState
	scriptDataDoubleEscapedState
	scriptDataDoubleEscapedDashState
	scriptDataDoubleEscapedDashDashState
	scriptDataDoubleEscapedLessThanSignState
	scriptDataDoubleEscapeEndState
	beforeAttributeNameState
	attributeNameState
	afterAttributeNameState
	beforeAttributeValueState
	attributeValueDoubleQuotedState
	attributeValueSingleQuotedState
	attributeValueUnquotedState
	afterAttributeValueQuotedState
	selfClosingStartTagState
	bogusCommentState
	markupDeclarationOpenState
	commentStartState
	commentStartDashState
	commentState
	commentLessThanSignState
	commentLessThanSignBangState
	commentLessThanSignBangDashState
	commentLessThanSignBangDashDashState
	commentEndDashState
	commentEndState
	commentEndBangState
	doctypeState
	beforeDoctypeNameState
	doctypeNameState
	afterDoctypeNameState
	afterDoctypePublicKeywordState
	beforeDoctypePublicIdentifierState
	doctypePublicIdentifierDoubleQuotedState
	doctypePublicIdentifierSingleQuotedState
	afterDoctypePublicIdentifierState
	betweenDoctypePublicAndSystemIdentifiersState
	afterDoctypeSystemKeywordState
	beforeDoctypeSystemIdentifierState
	doctypeSystemIdentifierDoubleQuotedState
	doctypeSystemIdentifierSingleQuotedState
	afterDoctypeSystemIdentifierState
	bogusDoctypeState
	cdataSectionState
	cdataSectionBracketState
	cdataSectionEndState
	characterReferenceState
	namedCharacterReferenceState
	ambiguousAmpersandState
	numericCharacterReferenceState
	hexadecimalCharacterReferenceStartState
	decimalCharacterReferenceStartState
	hexadecimalCharacterReferenceState
	decimalCharacterReferenceState
	numericCharacterReferenceEndState
)

var tokenizerStateNames = [...]string{
	"Data", "RCDATA", "RAWTEXT", "ScriptData", "PLAINTEXT", "TagOpen",
	"EndTagOpen", "TagName", "RCDATALessThanSign", "RCDATAEndTagOpen",
	"RCDATAEndTagName", "RAWTEXTLessThanSign", "RAWTEXTEndTagOpen",
	"RAWTEXTEndTagName", "ScriptDataLessThanSign", "ScriptDataEndTagOpen",
	"ScriptDataEndTagName", "ScriptDataEscapeStart", "ScriptDataEscapeStartDash",
	"ScriptDataEscaped", "ScriptDataEscapedDash", "ScriptDataEscapedDashDash",
	"ScriptDataEscapedLessThanSign", "ScriptDataEscapedEndTagOpen",
	"ScriptDataEscapedEndTagName", "ScriptDataDoubleEscapeStart",
	"ScriptDataDoubleEscaped", "ScriptDataDoubleEscapedDash",
	"ScriptDataDoubleEscapedDashDash", "ScriptDataDoubleEscapedLessThanSign",
	"ScriptDataDoubleEscapeEnd", "BeforeAttributeName", "AttributeName",
	"AfterAttributeName", "BeforeAttributeValue", "AttributeValueDoubleQuoted",
	"AttributeValueSingleQuoted", "AttributeValueUnquoted",
	"AfterAttributeValueQuoted", "SelfClosingStartTag", "BogusComment",
	"MarkupDeclarationOpen", "CommentStart", "CommentStartDash", "Comment",
	"CommentLessThanSign", "CommentLessThanSignBang", "CommentLessThanSignBangDash",
	"CommentLessThanSignBangDashDash", "CommentEndDash", "CommentEnd",
	"CommentEndBang", "DOCTYPE", "BeforeDOCTYPEName", "DOCTYPEName",
	"AfterDOCTYPEName", "AfterDOCTYPEPublicKeyword",
	"BeforeDOCTYPEPublicIdentifier", "DOCTYPEPublicIdentifierDoubleQuoted",
	"DOCTYPEPublicIdentifierSingleQuoted", "AfterDOCTYPEPublicIdentifier",
	"BetweenDOCTYPEPublicAndSystemIdentifiers", "AfterDOCTYPESystemKeyword",
	"BeforeDOCTYPESystemIdentifier", "DOCTYPESystemIdentifierDoubleQuoted",
	"DOCTYPESystemIdentifierSingleQuoted", "AfterDOCTYPESystemIdentifier",
	"BogusDOCTYPE", "CDATASection", "CDATASectionBracket", "CDATASectionEnd",
	"CharacterReference", "NamedCharacterReference", "AmbiguousAmpersand",
	"NumericCharacterReference", "HexadecimalCharacterReferenceStart",
	"DecimalCharacterReferenceStart", "HexadecimalCharacterReference",
	"DecimalCharacterReference", "NumericCharacterReferenceEnd",
}

func (s tokenizerState) String() string {
	if int(s) < len(tokenizerStateNames) {
		return tokenizerStateNames[s]
	}
	return "tokenizerState(?)"
}
