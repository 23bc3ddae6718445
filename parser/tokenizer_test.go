package parser

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokenizerAttributeAccuracyTestcase struct {
	inHTML string            // snippet of HTML to tokenize (should only be one element)
	attrs  map[string]string // expected attributes to collected from the first token that is produced
}

var tokenizerAttributeAccuracyTests = []tokenizerAttributeAccuracyTestcase{
	{"<head></head>", map[string]string{}},
	{"<script src='123' onload='test'></script>", map[string]string{
		"src":    "123",
		"onload": "test",
	}},
	{"<a href='https://google.com' onclick='alert(1)'>Click this</a>", map[string]string{
		"href":    "https://google.com",
		"onclick": "alert(1)",
	}},
	{"<script src='123' src='456'></script>", map[string]string{
		"src": "123",
	}},
	{"<script src=123 onload=test></script>", map[string]string{
		"src":    "123",
		"onload": "test",
	}},
	{"<script src='123' onload='test' ></script>", map[string]string{
		"src":    "123",
		"onload": "test",
	}},
	{"<script =src='123'onload='test' ></script>", map[string]string{
		"=src":   "123",
		"onload": "test",
	}},
	{"<script src></script>", map[string]string{
		"src": "",
	}},
	{"<script src test></script>", map[string]string{
		"src":  "",
		"test": "",
	}},
	{"<script 'asd></script>", map[string]string{
		"'asd": "",
	}},
	{"<script <asd></script>", map[string]string{
		"<asd": "",
	}},
	{"<script ABC=123></script>", map[string]string{
		"abc": "123",
	}},
	{"<script abc='\u0000123'></script>", map[string]string{
		"abc": "\uFFFD123",
	}},
	{"<script abc=></script>", map[string]string{
		"abc": "",
	}},
	{"<script\tabc=123></script>", map[string]string{
		"abc": "123",
	}},
	{"<a href=\"?x=1&not=2\">", map[string]string{
		"href": "?x=1&not=2",
	}},
	{"<a title=\"&notit\">", map[string]string{
		"title": "&notit",
	}},
	{"<a title='&amp;&lt;'>", map[string]string{
		"title": "&<",
	}},
}

// TestTokenizerAttributeAccuracy just makes sure that we have the
// correct number attribute names and values
func TestTokenizerAttributeAccuracy(t *testing.T) {
	for _, tt := range tokenizerAttributeAccuracyTests {
		runTestTokenizerAttributeAccuracy(tt, t)
	}
}

// helper function to parallelize the above test case.
func runTestTokenizerAttributeAccuracy(tt tokenizerAttributeAccuracyTestcase, t *testing.T) {
	t.Run(tt.inHTML, func(t *testing.T) {
		t.Parallel()
		p := NewHTMLTokenizer(tt.inHTML, HTMLSettings, nil, nil)
		token := p.Next()
		require.Equal(t, startTagToken, token.TokenType)
		assert.Equal(t, len(tt.attrs), token.Attributes.Len())
		for k, v := range tt.attrs {
			got, ok := token.Attributes.Get(k)
			if assert.True(t, ok, "expected to find a key of %s", k) {
				assert.Equal(t, v, got)
			}
		}
	})
}

type stateMachineTestCase struct {
	inRune            rune           // the rune to pass to the startingState
	startingState     tokenizerState // the state to start from
	shouldReconsume   bool           // the expectation if the next state should reconsume
	nextExpectedState tokenizerState // the next state
}

// TestStateParsers tests to make sure that each component of the state machine returns the next
// expected state. Handlers that scan a run of characters themselves report a reconsume so the
// driver does not skip past the end of the run.
func TestStateParsers(t *testing.T) {
	stateParserTests := []stateMachineTestCase{
		{'&', dataState, false, characterReferenceState},
		{'<', dataState, false, tagOpenState},
		{'\u0000', dataState, false, dataState},
		{'a', dataState, true, dataState},
		{'1', dataState, true, dataState},

		{'&', rcDataState, false, characterReferenceState},
		{'<', rcDataState, false, rcDataLessThanSignState},
		{'\u0000', rcDataState, false, rcDataState},
		{'#', rcDataState, true, rcDataState},

		{'<', rawTextState, false, rawTextLessThanSignState},
		{'\u0000', rawTextState, false, rawTextState},
		{'&', rawTextState, true, rawTextState},

		{'<', scriptDataState, false, scriptDataLessThanSignState},
		{'\u0000', scriptDataState, false, scriptDataState},
		{'a', scriptDataState, true, scriptDataState},

		{'\u0000', plaintextState, false, plaintextState},
		{'<', plaintextState, true, plaintextState},

		{'!', tagOpenState, false, markupDeclarationOpenState},
		{'/', tagOpenState, false, endTagOpenState},
		{'a', tagOpenState, true, tagNameState},
		{'Z', tagOpenState, true, tagNameState},
		{'?', tagOpenState, true, bogusCommentState},
		{'1', tagOpenState, true, dataState},

		{'a', endTagOpenState, true, tagNameState},
		{'B', endTagOpenState, true, tagNameState},
		{'>', endTagOpenState, false, dataState},
		{'"', endTagOpenState, true, bogusCommentState},
		{'#', endTagOpenState, true, bogusCommentState},

		{'\t', tagNameState, false, beforeAttributeNameState},
		{'\u000A', tagNameState, false, beforeAttributeNameState},
		{'\u000C', tagNameState, false, beforeAttributeNameState},
		{' ', tagNameState, false, beforeAttributeNameState},
		{'/', tagNameState, false, selfClosingStartTagState},
		{'>', tagNameState, false, dataState},
		{'\u0000', tagNameState, false, tagNameState},
		{'a', tagNameState, true, tagNameState},

		{'/', rcDataLessThanSignState, false, rcDataEndTagOpenState},
		{'a', rcDataLessThanSignState, true, rcDataState},

		{'a', rcDataEndTagOpenState, true, rcDataEndTagNameState},
		{'A', rcDataEndTagOpenState, true, rcDataEndTagNameState},
		{'1', rcDataEndTagOpenState, true, rcDataState},

		{'A', rcDataEndTagNameState, true, rcDataEndTagNameState},
		{'z', rcDataEndTagNameState, true, rcDataEndTagNameState},
		{'1', rcDataEndTagNameState, true, rcDataState},
		{' ', rcDataEndTagNameState, true, rcDataState},
		{'>', rcDataEndTagNameState, true, rcDataState},

		{'/', rawTextLessThanSignState, false, rawTextEndTagOpenState},
		{'1', rawTextLessThanSignState, true, rawTextState},
		{'z', rawTextEndTagOpenState, true, rawTextEndTagNameState},
		{'1', rawTextEndTagOpenState, true, rawTextState},

		{'/', scriptDataLessThanSignState, false, scriptDataEndTagOpenState},
		{'!', scriptDataLessThanSignState, false, scriptDataEscapeStartState},
		{'a', scriptDataLessThanSignState, true, scriptDataState},

		{' ', beforeAttributeNameState, false, beforeAttributeNameState},
		{'/', beforeAttributeNameState, true, afterAttributeNameState},
		{'>', beforeAttributeNameState, true, afterAttributeNameState},
		{'=', beforeAttributeNameState, false, attributeNameState},
		{'a', beforeAttributeNameState, true, attributeNameState},

		{' ', attributeNameState, true, afterAttributeNameState},
		{'/', attributeNameState, true, afterAttributeNameState},
		{'=', attributeNameState, false, beforeAttributeValueState},
		{'\u0000', attributeNameState, false, attributeNameState},
		{'"', attributeNameState, false, attributeNameState},
		{'a', attributeNameState, true, attributeNameState},

		{' ', afterAttributeNameState, false, afterAttributeNameState},
		{'/', afterAttributeNameState, false, selfClosingStartTagState},
		{'=', afterAttributeNameState, false, beforeAttributeValueState},
		{'>', afterAttributeNameState, false, dataState},
		{'a', afterAttributeNameState, true, attributeNameState},

		{' ', beforeAttributeValueState, false, beforeAttributeValueState},
		{'"', beforeAttributeValueState, false, attributeValueDoubleQuotedState},
		{'\'', beforeAttributeValueState, false, attributeValueSingleQuotedState},
		{'>', beforeAttributeValueState, false, dataState},
		{'a', beforeAttributeValueState, true, attributeValueUnquotedState},

		{'"', attributeValueDoubleQuotedState, false, afterAttributeValueQuotedState},
		{'&', attributeValueDoubleQuotedState, false, characterReferenceState},
		{'\u0000', attributeValueDoubleQuotedState, false, attributeValueDoubleQuotedState},
		{'a', attributeValueDoubleQuotedState, true, attributeValueDoubleQuotedState},
		{'\'', attributeValueSingleQuotedState, false, afterAttributeValueQuotedState},
		{'&', attributeValueSingleQuotedState, false, characterReferenceState},

		{' ', attributeValueUnquotedState, false, beforeAttributeNameState},
		{'&', attributeValueUnquotedState, false, characterReferenceState},
		{'>', attributeValueUnquotedState, false, dataState},
		{'`', attributeValueUnquotedState, false, attributeValueUnquotedState},
		{'a', attributeValueUnquotedState, true, attributeValueUnquotedState},

		{' ', afterAttributeValueQuotedState, false, beforeAttributeNameState},
		{'/', afterAttributeValueQuotedState, false, selfClosingStartTagState},
		{'>', afterAttributeValueQuotedState, false, dataState},
		{'a', afterAttributeValueQuotedState, true, beforeAttributeNameState},

		{'>', selfClosingStartTagState, false, dataState},
		{'a', selfClosingStartTagState, true, beforeAttributeNameState},

		{'>', bogusCommentState, false, dataState},
		{'\u0000', bogusCommentState, false, bogusCommentState},
		{'a', bogusCommentState, true, bogusCommentState},

		{'-', commentStartState, false, commentStartDashState},
		{'>', commentStartState, false, dataState},
		{'a', commentStartState, true, commentState},
		{'-', commentStartDashState, false, commentEndState},
		{'>', commentStartDashState, false, dataState},
		{'a', commentStartDashState, true, commentState},
		{'<', commentState, false, commentLessThanSignState},
		{'-', commentState, false, commentEndDashState},
		{'\u0000', commentState, false, commentState},
		{'a', commentState, true, commentState},
		{'>', commentEndState, false, dataState},
		{'!', commentEndState, false, commentEndBangState},
		{'-', commentEndState, false, commentEndState},
		{'a', commentEndState, true, commentState},
		{'-', commentEndBangState, false, commentEndDashState},
		{'>', commentEndBangState, false, dataState},
		{'a', commentEndBangState, true, commentState},

		{' ', doctypeState, false, beforeDoctypeNameState},
		{'>', doctypeState, true, beforeDoctypeNameState},
		{'a', doctypeState, true, beforeDoctypeNameState},
		{' ', beforeDoctypeNameState, false, beforeDoctypeNameState},
		{'\u0000', beforeDoctypeNameState, false, doctypeNameState},
		{'>', beforeDoctypeNameState, false, dataState},
		{'a', beforeDoctypeNameState, false, doctypeNameState},
		{' ', doctypeNameState, false, afterDoctypeNameState},
		{'>', doctypeNameState, false, dataState},
		{'a', doctypeNameState, false, doctypeNameState},

		{'a', characterReferenceState, true, namedCharacterReferenceState},
		{'#', characterReferenceState, false, numericCharacterReferenceState},
		{' ', characterReferenceState, true, dataState},
		{'x', numericCharacterReferenceState, false, hexadecimalCharacterReferenceStartState},
		{'X', numericCharacterReferenceState, false, hexadecimalCharacterReferenceStartState},
		{'1', numericCharacterReferenceState, true, decimalCharacterReferenceStartState},
		{'a', hexadecimalCharacterReferenceStartState, true, hexadecimalCharacterReferenceState},
		{'g', hexadecimalCharacterReferenceStartState, true, dataState},
		{'1', decimalCharacterReferenceStartState, true, decimalCharacterReferenceState},
		{'a', decimalCharacterReferenceStartState, true, dataState},

		{'0', hexadecimalCharacterReferenceState, true, hexadecimalCharacterReferenceState},
		{'f', hexadecimalCharacterReferenceState, true, hexadecimalCharacterReferenceState},
		{'F', hexadecimalCharacterReferenceState, true, hexadecimalCharacterReferenceState},
		{';', hexadecimalCharacterReferenceState, false, numericCharacterReferenceEndState},
		{'#', hexadecimalCharacterReferenceState, true, numericCharacterReferenceEndState},
		{']', hexadecimalCharacterReferenceState, true, numericCharacterReferenceEndState},

		{'0', decimalCharacterReferenceState, true, decimalCharacterReferenceState},
		{'9', decimalCharacterReferenceState, true, decimalCharacterReferenceState},
		{';', decimalCharacterReferenceState, false, numericCharacterReferenceEndState},
		{'g', decimalCharacterReferenceState, true, numericCharacterReferenceEndState},
		{'!', decimalCharacterReferenceState, true, numericCharacterReferenceEndState},

		{']', cdataSectionState, false, cdataSectionBracketState},
		{']', cdataSectionBracketState, false, cdataSectionEndState},
		{'a', cdataSectionBracketState, true, cdataSectionState},
		{'>', cdataSectionEndState, false, dataState},
		{']', cdataSectionEndState, false, cdataSectionEndState},
	}

	for _, tt := range stateParserTests {
		runStateParserTest(tt, t)
	}
}

// helper function to parallelize the above test case
func runStateParserTest(testcase stateMachineTestCase, t *testing.T) {
	testName := fmt.Sprintf("%s-%#U", testcase.startingState, testcase.inRune)
	t.Run(testName, func(t *testing.T) {
		t.Parallel()
		p := NewHTMLTokenizer(string(testcase.inRune), HTMLSettings, nil, nil)
		p.SwitchTo(testcase.startingState)
		reconsume, state := p.stateToParser(testcase.startingState)(testcase.inRune, false)
		assert.Equal(t, testcase.nextExpectedState, state, "next state")
		assert.Equal(t, testcase.shouldReconsume, reconsume, "reconsume")
	})
}

type parserStatefulnessTestCase struct {
	inHTML     string                                // the HTML to tokenize
	startState tokenizerState                        // the starting state of the tokenizer
	testFunc   func(*HTMLTokenizer) (string, string) // since we are testing internal state, we need a function that can look inside the tokenizer
	setup      func(*HTMLTokenizer)                  // any setup code will be run before tokenization
}

func builtName(p *HTMLTokenizer) string {
	name, _ := p.tokenBuilder.tagName()
	return name
}

func hasAttribute(name string) func(p *HTMLTokenizer) (string, string) {
	return func(p *HTMLTokenizer) (string, string) {
		p.tokenBuilder.CommitAttribute()
		return fmt.Sprintf("%t", p.tokenBuilder.attributes.Has(name)), "true"
	}
}

func forceQuirks(p *HTMLTokenizer) (string, string) {
	return fmt.Sprintf("%t", p.tokenBuilder.forceQuirks), "true"
}

// TestParseStatefulness runs the tokenizer over the input without reaching the
// EOF handlers, which would erase the token builder state, and then inspects
// the builder.
func TestParseStatefulness(t *testing.T) {
	parserStatefulnessTestCases := []parserStatefulnessTestCase{
		{"&", dataState, func(p *HTMLTokenizer) (string, string) { return p.returnState.String(), dataState.String() }, nil},
		{"&", rcDataState, func(p *HTMLTokenizer) (string, string) { return p.returnState.String(), rcDataState.String() }, nil},
		{"b", tagOpenState, func(p *HTMLTokenizer) (string, string) { return builtName(p), "b" }, nil},
		{"ba", tagOpenState, func(p *HTMLTokenizer) (string, string) { return builtName(p), "ba" }, nil},
		{"bAc", tagOpenState, func(p *HTMLTokenizer) (string, string) { return builtName(p), "bac" }, nil},
		{"bA\u0000c", tagOpenState, func(p *HTMLTokenizer) (string, string) { return builtName(p), "ba\uFFFDc" }, nil},
		{"a", endTagOpenState, func(p *HTMLTokenizer) (string, string) { return builtName(p), "a" }, nil},
		{"P", endTagOpenState, func(p *HTMLTokenizer) (string, string) { return builtName(p), "p" }, nil},
		{"1", endTagOpenState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.data.String(), "1" }, nil},
		{"U", tagNameState, func(p *HTMLTokenizer) (string, string) { return builtName(p), "u" }, nil},
		{"\u0000", tagNameState, func(p *HTMLTokenizer) (string, string) { return builtName(p), "\uFFFD" }, nil},
		{"<", tagNameState, func(p *HTMLTokenizer) (string, string) { return builtName(p), "<" }, nil},
		{"U", rcDataEndTagNameState, func(p *HTMLTokenizer) (string, string) { return builtName(p), "u" }, nil},
		{"U", rawTextEndTagNameState, func(p *HTMLTokenizer) (string, string) { return builtName(p), "u" }, nil},
		{"U", scriptDataEndTagNameState, func(p *HTMLTokenizer) (string, string) { return builtName(p), "u" }, nil},
		{"U", scriptDataEscapedEndTagNameState, func(p *HTMLTokenizer) (string, string) { return builtName(p), "u" }, nil},
		{"U", scriptDataDoubleEscapeStartState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.TempBuffer(), "u" }, nil},
		{"U", scriptDataDoubleEscapeEndState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.TempBuffer(), "u" }, nil},
		{"U", attributeNameState, hasAttribute("u"), nil},
		{"1", attributeNameState, hasAttribute("1"), nil},
		{"\u0000", attributeNameState, hasAttribute("\uFFFD"), nil},
		{"\u0000", attributeValueDoubleQuotedState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.attributeValue.String(), "\uFFFD" }, nil},
		{"A", attributeValueDoubleQuotedState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.attributeValue.String(), "A" }, nil},
		{"\u0000", attributeValueSingleQuotedState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.attributeValue.String(), "\uFFFD" }, nil},
		{"\u0000", attributeValueUnquotedState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.attributeValue.String(), "\uFFFD" }, nil},
		{"A", attributeValueUnquotedState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.attributeValue.String(), "A" }, nil},
		{"&", attributeValueUnquotedState, func(p *HTMLTokenizer) (string, string) {
			return p.returnState.String(), attributeValueUnquotedState.String()
		}, nil},
		{">", selfClosingStartTagState, func(p *HTMLTokenizer) (string, string) { return fmt.Sprintf("%t", p.tokenBuilder.selfClosing), "true" }, nil},
		{"\u0000", bogusCommentState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.data.String(), "\uFFFD" }, nil},
		{"!3", bogusCommentState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.data.String(), "!3" }, nil},
		{"3", commentStartDashState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.data.String(), "-3" }, nil},
		{"<", commentState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.data.String(), "<" }, nil},
		{"\u0000", commentState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.data.String(), "\uFFFD" }, nil},
		{"!", commentLessThanSignState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.data.String(), "!" }, nil},
		{"a", commentEndDashState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.data.String(), "-a" }, nil},
		{"-", commentEndState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.data.String(), "-" }, nil},
		{"A", commentEndState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.data.String(), "--A" }, nil},
		{"-", commentEndBangState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.data.String(), "--!" }, nil},
		{"@", commentEndBangState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.data.String(), "--!@" }, nil},
		{"A", beforeDoctypeNameState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.DocTypeToken().TagName, "a" }, nil},
		{">", beforeDoctypeNameState, forceQuirks, nil},
		{">", beforeDoctypePublicIdentifierState, forceQuirks, nil},
		{"A", beforeDoctypePublicIdentifierState, forceQuirks, nil},
		{"\u0000", doctypePublicIdentifierDoubleQuotedState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.publicID.String(), "\uFFFD" }, nil},
		{">", doctypePublicIdentifierDoubleQuotedState, forceQuirks, nil},
		{"A", doctypePublicIdentifierSingleQuotedState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.publicID.String(), "A" }, nil},
		{"A", afterDoctypePublicIdentifierState, forceQuirks, nil},
		{"!", betweenDoctypePublicAndSystemIdentifiersState, forceQuirks, nil},
		{">", afterDoctypeSystemKeywordState, forceQuirks, nil},
		{"!", beforeDoctypeSystemIdentifierState, forceQuirks, nil},
		{"a!", doctypeSystemIdentifierDoubleQuotedState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.systemID.String(), "a!" }, nil},
		{">", doctypeSystemIdentifierSingleQuotedState, forceQuirks, nil},
		{"a", ambiguousAmpersandState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.attributeValue.String(), "a" },
			func(p *HTMLTokenizer) {
				p.returnState = attributeValueDoubleQuotedState
			}},
		{"1", ambiguousAmpersandState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.attributeValue.String(), "1" },
			func(p *HTMLTokenizer) {
				p.returnState = attributeValueDoubleQuotedState
			}},
		{"X", numericCharacterReferenceState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.TempBuffer(), "X" }, nil},
		{"1", hexadecimalCharacterReferenceState, func(p *HTMLTokenizer) (string, string) {
			return fmt.Sprintf("%d", p.tokenBuilder.GetCharRef()), "1"
		}, nil},
		{"22", hexadecimalCharacterReferenceState, func(p *HTMLTokenizer) (string, string) {
			return fmt.Sprintf("%d", p.tokenBuilder.GetCharRef()), "34"
		}, nil},
		{"ff", hexadecimalCharacterReferenceState, func(p *HTMLTokenizer) (string, string) {
			return fmt.Sprintf("%d", p.tokenBuilder.GetCharRef()), "255"
		}, nil},
		{"134", decimalCharacterReferenceState, func(p *HTMLTokenizer) (string, string) {
			return fmt.Sprintf("%d", p.tokenBuilder.GetCharRef()), "134"
		}, nil},
		{"99999999999", decimalCharacterReferenceState, func(p *HTMLTokenizer) (string, string) {
			return fmt.Sprintf("%d", p.tokenBuilder.GetCharRef()), "1114112"
		}, nil},
	}

	for _, testcase := range parserStatefulnessTestCases {
		runParserStatefulnessTest(testcase, t)
	}
}

// helper function to paralleize the above tests
func runParserStatefulnessTest(testcase parserStatefulnessTestCase, t *testing.T) {
	testName := fmt.Sprintf("%s-%q", testcase.startState, testcase.inHTML)
	t.Run(testName, func(t *testing.T) {
		t.Parallel()
		p := NewHTMLTokenizer(testcase.inHTML, HTMLSettings, nil, nil)
		p.SwitchTo(testcase.startState)
		if testcase.setup != nil {
			testcase.setup(p)
		}
		for !p.cursor.IsEmpty() {
			p.step()
		}
		answer, expected := testcase.testFunc(p)
		assert.Equal(t, expected, answer)
	})
}

func tokenize(t *testing.T, in string, settings ParseSettings) ([]*Token, *ParseErrorList) {
	t.Helper()
	errs := newParseErrorList(100)
	p := NewHTMLTokenizer(in, settings, errs, nil)
	var tokens []*Token
	for i := 0; i < 10000; i++ {
		tok := p.Next()
		tokens = append(tokens, tok)
		if tok.TokenType == startTagToken && tok.SelfClosing {
			p.AcknowledgeSelfClosing()
		}
		if tok.TokenType == endOfFileToken {
			return tokens, errs
		}
	}
	t.Fatalf("no EOF token for %q", in)
	return nil, nil
}

func tokenStrings(tokens []*Token) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, tok.String())
	}
	return out
}

func errorMessages(errs *ParseErrorList) []string {
	var out []string
	for _, e := range errs.Errors() {
		out = append(out, e.Message)
	}
	return out
}

func TestTokenStream(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		tokens []string
		errors []string
	}{
		{"simple element", "<p>Hi</p>", []string{"<p>", `"Hi"`, "</p>", "EOF"}, nil},
		{"coalesced characters", "a&amp;b c", []string{`"a&b c"`, "EOF"}, nil},
		{"references", "&amp;&#65;&unknownref;", []string{`"&A&unknownref;"`, "EOF"}, []string{"unknown-named-character-reference"}},
		{"legacy reference without semicolon", "&notit;", []string{`"¬it;"`, "EOF"}, []string{"missing-semicolon-after-character-reference"}},
		{"unknown reference without semicolon", "&zzz x", []string{`"&zzz x"`, "EOF"}, nil},
		{"c1 replacement", "&#x80;", []string{`"€"`, "EOF"}, []string{"control-character-reference"}},
		{"null reference", "&#0;", []string{"\"\uFFFD\"", "EOF"}, []string{"null-character-reference"}},
		{"surrogate reference", "&#xD800;", []string{"\"\uFFFD\"", "EOF"}, []string{"surrogate-character-reference"}},
		{"out of range reference", "&#1114112;", []string{"\"\uFFFD\"", "EOF"}, []string{"character-reference-outside-unicode-range"}},
		{"no digits", "&#;", []string{`"&#;"`, "EOF"}, []string{"absence-of-digits-in-numeric-character-reference"}},
		{"comment", "<!--x-->", []string{"<!--x-->", "EOF"}, nil},
		{"empty comment", "<!---->", []string{"<!---->", "EOF"}, nil},
		{"abrupt comment", "<!-->", []string{"<!---->", "EOF"}, []string{"abrupt-closing-of-empty-comment"}},
		{"doctype", "<!DOCTYPE html>", []string{"<!DOCTYPE html>", "EOF"}, nil},
		{"cdata in html", "<![CDATA[x]]>", []string{"<!--[CDATA[x]]-->", "EOF"}, []string{"cdata-in-html-content"}},
		{"question mark", "<?xml?>", []string{"<!--?xml?-->", "EOF"}, []string{"unexpected-question-mark-instead-of-tag-name"}},
		{"lone less than", "a < b", []string{`"a < b"`, "EOF"}, []string{"invalid-first-character-of-tag-name"}},
		{"eof in tag", "<div class", []string{"EOF"}, []string{"eof-in-tag"}},
		{"eof in comment", "<!--x", []string{"<!--x-->", "EOF"}, []string{"eof-in-comment"}},
		{"duplicate attribute", "<a x=1 x=2>", []string{"<a>", "EOF"}, []string{"duplicate-attribute"}},
		{"end tag attributes", "</a b=c>", []string{"</a>", "EOF"}, []string{"end-tag-with-attributes"}},
		{"end tag solidus", "</a/>", []string{"</a>", "EOF"}, []string{"end-tag-with-trailing-solidus"}},
		{"missing end tag name", "</>x", []string{`"x"`, "EOF"}, []string{"missing-end-tag-name"}},
		{"crlf", "a\r\nb\rc", []string{`"a\nb\nc"`, "EOF"}, nil},
		{"null in data", "a\x00b", []string{`"a\x00b"`, "EOF"}, []string{"unexpected-null-character"}},
		{"uppercase tag", "<DIV>", []string{"<div>", "EOF"}, nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tokens, errs := tokenize(t, tt.in, HTMLSettings)
			assert.Equal(t, tt.tokens, tokenStrings(tokens))
			assert.Equal(t, tt.errors, errorMessages(errs))
		})
	}
}

func TestTokenizerTextStates(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		state  tokenizerState
		tokens []string
	}{
		{"rcdata keeps other end tags", "<title>a</div>&amp;</title>x", rcDataState, []string{"<title>", `"a</div>&"`, "</title>", `"x"`, "EOF"}},
		{"rawtext ignores references", "<style>a&amp;<b></STYLE>", rawTextState, []string{"<style>", `"a&amp;<b>"`, "</style>", "EOF"}},
		{"script data escapes", "<script><!--</x>--></script>", scriptDataState, []string{"<script>", `"<!--</x>-->"`, "</script>", "EOF"}},
		{"plaintext never ends", "<plaintext></plaintext>", plaintextState, []string{"<plaintext>", `"</plaintext>"`, "EOF"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := NewHTMLTokenizer(tt.in, HTMLSettings, nil, nil)
			first := p.Next()
			p.SwitchTo(tt.state)
			tokens := []*Token{first}
			for tok := first; tok.TokenType != endOfFileToken; {
				tok = p.Next()
				tokens = append(tokens, tok)
			}
			assert.Equal(t, tt.tokens, tokenStrings(tokens))
		})
	}
}

func TestTokenizerSelfClosingAcknowledgement(t *testing.T) {
	t.Parallel()
	errs := newParseErrorList(10)
	p := NewHTMLTokenizer("<div/><br/>", HTMLSettings, errs, nil)

	div := p.Next()
	require.True(t, div.SelfClosing)
	br := p.Next()
	require.True(t, br.SelfClosing)
	assert.Equal(t, 1, errs.Len())
	p.AcknowledgeSelfClosing()

	assert.Equal(t, endOfFileToken, p.Next().TokenType)
	assert.Equal(t, []string{"non-void-html-element-start-tag-with-trailing-solidus"}, errorMessages(errs))
}

func TestTokenizerCDATA(t *testing.T) {
	t.Parallel()
	p := NewHTMLTokenizer("a<![CDATA[x<y]]>b", HTMLSettings, nil, nil)
	p.SetAllowCDATA(func() bool { return true })

	tokens := []*Token{p.Next(), p.Next(), p.Next()}
	assert.Equal(t, "a", tokens[0].Data)
	assert.False(t, tokens[0].CDATA)
	assert.Equal(t, "x<y", tokens[1].Data)
	assert.True(t, tokens[1].CDATA)
	assert.Equal(t, "b", tokens[2].Data)
	assert.Equal(t, endOfFileToken, p.Next().TokenType)
}

func TestTokenizerEOFIsSticky(t *testing.T) {
	t.Parallel()
	p := NewHTMLTokenizer("x", HTMLSettings, nil, nil)
	assert.Equal(t, characterToken, p.Next().TokenType)
	eof := p.Next()
	assert.Equal(t, endOfFileToken, eof.TokenType)
	for i := 0; i < 3; i++ {
		assert.Same(t, eof, p.Next())
	}
}

func TestTokenizerCasePolicy(t *testing.T) {
	t.Parallel()
	tokens, _ := tokenize(t, "<DiV ID=x></DiV>", PreserveCaseSettings)
	require.Len(t, tokens, 3)
	assert.Equal(t, "DiV", tokens[0].TagName)
	assert.Equal(t, "div", tokens[0].normalName)
	v, ok := tokens[0].Attributes.Get("ID")
	assert.True(t, ok)
	assert.Equal(t, "x", v)
	assert.Equal(t, "DiV", tokens[1].TagName)

	tokens, _ = tokenize(t, "<DiV ID=x>", HTMLSettings)
	assert.Equal(t, "div", tokens[0].TagName)
	assert.True(t, tokens[0].Attributes.Has("id"))
}

func TestTokenizerDoctypeIdentifiers(t *testing.T) {
	t.Parallel()
	tokens, errs := tokenize(t, `<!DOCTYPE html PUBLIC "-//W3C//DTD HTML 4.01//EN" ''>`, HTMLSettings)
	require.Len(t, tokens, 2)
	d := tokens[0]
	assert.Equal(t, "html", d.TagName)
	assert.True(t, d.HasPublicID)
	assert.Equal(t, "-//W3C//DTD HTML 4.01//EN", d.PublicIdentifier)
	assert.True(t, d.HasSystemID)
	assert.Equal(t, "", d.SystemIdentifier)
	assert.False(t, d.ForceQuirks)
	assert.Equal(t, 0, errs.Len())

	tokens, _ = tokenize(t, "<!DOCTYPE>", HTMLSettings)
	assert.True(t, tokens[0].ForceQuirks)
}

func TestTokenizerErrorPositions(t *testing.T) {
	t.Parallel()
	_, errs := tokenize(t, "a\nbc<div x", HTMLSettings)
	require.Equal(t, 1, errs.Len())
	e := errs.Errors()[0]
	assert.Equal(t, "eof-in-tag", e.Message)
	assert.Equal(t, 2, e.Line)
	assert.Equal(t, 9, e.Col)
	assert.Equal(t, "2:9: eof-in-tag", e.String())
}

func TestTokenizerErrorCap(t *testing.T) {
	t.Parallel()
	errs := newParseErrorList(2)
	p := NewHTMLTokenizer("\x00\x00\x00\x00", HTMLSettings, errs, nil)
	for p.Next().TokenType != endOfFileToken {
	}
	assert.Equal(t, 2, errs.Len())
	assert.Equal(t, 2, errs.MaxSize())

	disabled := newParseErrorList(0)
	p = NewHTMLTokenizer("\x00", HTMLSettings, disabled, nil)
	for p.Next().TokenType != endOfFileToken {
	}
	assert.Equal(t, 0, disabled.Len())
}

func TestTokenizerNumericReferenceRuns(t *testing.T) {
	tests := []struct {
		in     string
		data   string
		errors []string
	}{
		{"&#x1F600;&#X41;&#0065;a", "\U0001F600AAa", nil},
		{"&#x00000000041;", "A", nil},
		{"&#xaBc;", "\u0ABC", nil},
		{"&#99999999999999999999;", "\uFFFD", []string{"character-reference-outside-unicode-range"}},
		{"&#65x", "Ax", []string{"missing-semicolon-after-character-reference"}},
		{"&#xG", "&#xG", []string{"absence-of-digits-in-numeric-character-reference"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			tokens, errs := tokenize(t, tt.in, HTMLSettings)
			require.Len(t, tokens, 2)
			assert.Equal(t, tt.data, tokens[0].Data)
			assert.Equal(t, tt.errors, errorMessages(errs))
		})
	}
}
