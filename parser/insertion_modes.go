package parser

import (
	"strings"

	"github.com/heathj/gobrowse/parser/dom"
	"github.com/sirupsen/logrus"
)

// splitWhitespace returns the leading run of HTML space characters in s and
// the rest.
func splitWhitespace(s string) (string, string) {
	i := 0
	for i < len(s) && strings.IndexByte(whitespace, s[i]) != -1 {
		i++
	}
	return s[:i], s[i:]
}

// onlyWhitespace keeps the space characters of s and reports whether anything
// else was dropped.
func onlyWhitespace(s string) (string, bool) {
	kept := strings.Map(func(r rune) rune {
		if isWhitespaceRune(r) {
			return r
		}
		return -1
	}, s)
	return kept, len(kept) != len(s)
}

// attributeFold looks an attribute up ignoring ASCII case, so it works under
// either case-folding policy.
func attributeFold(attrs *dom.Attributes, name string) (string, bool) {
	for _, a := range attrs.All() {
		if strings.EqualFold(a.Name, name) {
			return a.Value, true
		}
	}
	return "", false
}

func isHiddenInput(t *Token) bool {
	v, ok := attributeFold(t.Attributes, "type")
	return ok && strings.EqualFold(v, "hidden")
}

func (c *HTMLTreeConstructor) stripNulls(t *Token) bool {
	if strings.IndexByte(t.Data, 0) == -1 {
		return t.Data != ""
	}
	c.parseError("unexpected-null-character")
	t.Data = strings.ReplaceAll(t.Data, "\x00", "")
	return t.Data != ""
}

// https://html.spec.whatwg.org/multipage/parsing.html#the-initial-insertion-mode
func (c *HTMLTreeConstructor) initialModeHandler(t *Token) bool {
	switch t.TokenType {
	case characterToken:
		_, rest := splitWhitespace(t.Data)
		if rest == "" {
			return false
		}
		t.Data = rest
	case commentToken:
		c.insertComment(t, c.sink.Document())
		return false
	case docTypeToken:
		if t.TagName != "html" || t.HasPublicID || (t.HasSystemID && t.SystemIdentifier != "about:legacy-compat") {
			c.parseError("non-conforming-doctype", logrus.Fields{"doctype": t.String()})
		}
		c.sink.SetDoctype(t.TagName, t.PublicIdentifier, t.SystemIdentifier)
		c.quirksMode = quirksModeFor(t)
		c.sink.SetQuirksMode(c.quirksMode)
		c.insertionMode = beforeHTML
		return false
	}

	c.parseError("missing-doctype")
	c.quirksMode = dom.Quirks
	c.sink.SetQuirksMode(c.quirksMode)
	c.insertionMode = beforeHTML
	return true
}

// https://html.spec.whatwg.org/multipage/parsing.html#the-before-html-insertion-mode
func (c *HTMLTreeConstructor) beforeHTMLModeHandler(t *Token) bool {
	switch t.TokenType {
	case docTypeToken:
		c.unexpected(t)
		return false
	case commentToken:
		c.insertComment(t, c.sink.Document())
		return false
	case characterToken:
		_, rest := splitWhitespace(t.Data)
		if rest == "" {
			return false
		}
		t.Data = rest
	case startTagToken:
		if t.normalName == "html" {
			elem := c.createElementForToken(t)
			c.sink.AppendChild(c.sink.Document(), elem)
			c.push(elem)
			c.insertionMode = beforeHead
			return false
		}
	case endTagToken:
		switch t.normalName {
		case "head", "body", "html", "br":
		default:
			c.unexpected(t)
			return false
		}
	}

	elem := c.createElementForToken(c.syntheticStartTag("html"))
	c.sink.AppendChild(c.sink.Document(), elem)
	c.push(elem)
	c.insertionMode = beforeHead
	return true
}

// https://html.spec.whatwg.org/multipage/parsing.html#the-before-head-insertion-mode
func (c *HTMLTreeConstructor) beforeHeadModeHandler(t *Token) bool {
	switch t.TokenType {
	case characterToken:
		_, rest := splitWhitespace(t.Data)
		if rest == "" {
			return false
		}
		t.Data = rest
	case commentToken:
		c.insertComment(t, dom.NoHandle)
		return false
	case docTypeToken:
		c.unexpected(t)
		return false
	case startTagToken:
		switch t.normalName {
		case "html":
			return c.useRulesFor(t, inBody)
		case "head":
			c.headElementPointer = c.insertHTMLElementForToken(t)
			c.insertionMode = inHead
			return false
		}
	case endTagToken:
		switch t.normalName {
		case "head", "body", "html", "br":
		default:
			c.unexpected(t)
			return false
		}
	}

	c.headElementPointer = c.insertHTMLElementNamed("head")
	c.insertionMode = inHead
	return true
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-inhead
func (c *HTMLTreeConstructor) inHeadModeHandler(t *Token) bool {
	switch t.TokenType {
	case characterToken:
		ws, rest := splitWhitespace(t.Data)
		c.insertCharacter(ws)
		if rest == "" {
			return false
		}
		t.Data = rest
	case commentToken:
		c.insertComment(t, dom.NoHandle)
		return false
	case docTypeToken:
		c.unexpected(t)
		return false
	case startTagToken:
		switch t.normalName {
		case "html":
			return c.useRulesFor(t, inBody)
		case "base", "basefont", "bgsound", "link", "meta":
			c.insertVoidElement(t)
			return false
		case "title":
			c.insertRawText(t, rcDataState)
			return false
		case "noscript":
			if c.scriptingEnabled {
				c.insertRawText(t, rawTextState)
				return false
			}
			c.insertHTMLElementForToken(t)
			c.insertionMode = inHeadNoScript
			return false
		case "noframes", "style":
			c.insertRawText(t, rawTextState)
			return false
		case "script":
			c.insertRawText(t, scriptDataState)
			return false
		case "template":
			c.insertHTMLElementForToken(t)
			c.insertMarker()
			c.framesetOK = false
			c.insertionMode = inTemplate
			c.pushTemplateInsertionMode(inTemplate)
			return false
		case "head":
			c.unexpected(t)
			return false
		}
	case endTagToken:
		switch t.normalName {
		case "head":
			c.pop()
			c.insertionMode = afterHead
			return false
		case "body", "html", "br":
		case "template":
			if !c.hasTemplateOnStack() {
				c.unexpected(t)
				return false
			}
			c.generateImpliedEndTagsThoroughly()
			if !c.currentNodeIs("template") {
				c.unexpected(t)
			}
			c.popUntil("template")
			c.clearActiveFormattingElements()
			c.popTemplateInsertionMode()
			c.resetInsertionMode()
			return false
		default:
			c.unexpected(t)
			return false
		}
	}

	c.pop()
	c.insertionMode = afterHead
	return true
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-inheadnoscript
func (c *HTMLTreeConstructor) inHeadNoScriptModeHandler(t *Token) bool {
	switch t.TokenType {
	case docTypeToken:
		c.unexpected(t)
		return false
	case commentToken:
		return c.useRulesFor(t, inHead)
	case characterToken:
		ws, rest := splitWhitespace(t.Data)
		c.insertCharacter(ws)
		if rest == "" {
			return false
		}
		t.Data = rest
	case startTagToken:
		switch t.normalName {
		case "html":
			return c.useRulesFor(t, inBody)
		case "basefont", "bgsound", "link", "meta", "noframes", "style":
			return c.useRulesFor(t, inHead)
		case "head", "noscript":
			c.unexpected(t)
			return false
		}
	case endTagToken:
		switch t.normalName {
		case "noscript":
			c.pop()
			c.insertionMode = inHead
			return false
		case "br":
		default:
			c.unexpected(t)
			return false
		}
	}

	c.unexpected(t)
	c.pop()
	c.insertionMode = inHead
	return true
}

// https://html.spec.whatwg.org/multipage/parsing.html#the-after-head-insertion-mode
func (c *HTMLTreeConstructor) afterHeadModeHandler(t *Token) bool {
	switch t.TokenType {
	case characterToken:
		ws, rest := splitWhitespace(t.Data)
		c.insertCharacter(ws)
		if rest == "" {
			return false
		}
		t.Data = rest
	case commentToken:
		c.insertComment(t, dom.NoHandle)
		return false
	case docTypeToken:
		c.unexpected(t)
		return false
	case startTagToken:
		switch t.normalName {
		case "html":
			return c.useRulesFor(t, inBody)
		case "body":
			c.insertHTMLElementForToken(t)
			c.framesetOK = false
			c.insertionMode = inBody
			return false
		case "frameset":
			c.insertHTMLElementForToken(t)
			c.insertionMode = inFrameset
			return false
		case "base", "basefont", "bgsound", "link", "meta", "noframes", "script", "style", "template", "title":
			c.unexpected(t)
			head := c.headElementPointer
			c.push(head)
			reprocess := c.useRulesFor(t, inHead)
			c.removeFromStack(head)
			return reprocess
		case "head":
			c.unexpected(t)
			return false
		}
	case endTagToken:
		switch t.normalName {
		case "template":
			return c.useRulesFor(t, inHead)
		case "body", "html", "br":
		default:
			c.unexpected(t)
			return false
		}
	}

	c.insertHTMLElementNamed("body")
	c.insertionMode = inBody
	return true
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-inbody
func (c *HTMLTreeConstructor) inBodyModeHandler(t *Token) bool {
	switch t.TokenType {
	case characterToken:
		if !c.stripNulls(t) {
			return false
		}
		c.reconstructActiveFormattingElements()
		c.insertCharacter(t.Data)
		if !t.isWhitespace() {
			c.framesetOK = false
		}
	case commentToken:
		c.insertComment(t, dom.NoHandle)
	case docTypeToken:
		c.unexpected(t)
	case startTagToken:
		return c.inBodyStartTag(t)
	case endTagToken:
		return c.inBodyEndTag(t)
	case endOfFileToken:
		if len(c.templateInsertionModes) > 0 {
			return c.useRulesFor(t, inTemplate)
		}
		for _, h := range c.stackOfOpenElements {
			switch c.nameOf(h) {
			case "dd", "dt", "li", "optgroup", "option", "p", "rb", "rp", "rt", "rtc",
				"tbody", "td", "tfoot", "th", "thead", "tr", "body", "html":
			default:
				c.parseError("eof-with-open-elements", logrus.Fields{"tag": c.nameOf(h)})
				return false
			}
		}
	}
	return false
}

func (c *HTMLTreeConstructor) inBodyStartTag(t *Token) bool {
	switch t.normalName {
	case "html":
		c.unexpected(t)
		if !c.hasTemplateOnStack() && len(c.stackOfOpenElements) > 0 {
			c.sink.MergeAttributes(c.stackOfOpenElements[0], t.Attributes)
		}
	case "base", "basefont", "bgsound", "link", "meta", "noframes", "script", "style", "template", "title":
		return c.useRulesFor(t, inHead)
	case "body":
		c.unexpected(t)
		if len(c.stackOfOpenElements) < 2 || c.nameOf(c.stackOfOpenElements[1]) != "body" || c.hasTemplateOnStack() {
			return false
		}
		c.framesetOK = false
		c.sink.MergeAttributes(c.stackOfOpenElements[1], t.Attributes)
	case "frameset":
		c.unexpected(t)
		if len(c.stackOfOpenElements) < 2 || c.nameOf(c.stackOfOpenElements[1]) != "body" || !c.framesetOK {
			return false
		}
		c.sink.Detach(c.stackOfOpenElements[1])
		c.stackOfOpenElements = c.stackOfOpenElements[:1]
		c.insertHTMLElementForToken(t)
		c.insertionMode = inFrameset
	case "address", "article", "aside", "blockquote", "center", "details", "dialog", "dir", "div", "dl",
		"fieldset", "figcaption", "figure", "footer", "header", "hgroup", "main", "menu", "nav", "ol", "p",
		"search", "section", "summary", "ul":
		c.closePElementInButtonScope()
		c.insertHTMLElementForToken(t)
	case "h1", "h2", "h3", "h4", "h5", "h6":
		c.closePElementInButtonScope()
		if c.currentNodeIs("h1", "h2", "h3", "h4", "h5", "h6") {
			c.unexpected(t)
			c.pop()
		}
		c.insertHTMLElementForToken(t)
	case "pre", "listing":
		c.closePElementInButtonScope()
		c.insertHTMLElementForToken(t)
		c.skipNextNewline = true
		c.framesetOK = false
	case "form":
		template := c.hasTemplateOnStack()
		if c.formElementPointer != dom.NoHandle && !template {
			c.unexpected(t)
			return false
		}
		c.closePElementInButtonScope()
		elem := c.insertHTMLElementForToken(t)
		if !template {
			c.formElementPointer = elem
		}
	case "li":
		c.framesetOK = false
		c.closeListItem(t, "li")
		c.closePElementInButtonScope()
		c.insertHTMLElementForToken(t)
	case "dd", "dt":
		c.framesetOK = false
		c.closeListItem(t, "dd", "dt")
		c.closePElementInButtonScope()
		c.insertHTMLElementForToken(t)
	case "plaintext":
		c.closePElementInButtonScope()
		c.insertHTMLElementForToken(t)
		c.tokenizer.SwitchTo(plaintextState)
	case "button":
		if c.elementInScope("button") {
			c.unexpected(t)
			c.generateImpliedEndTags("")
			c.popUntil("button")
		}
		c.reconstructActiveFormattingElements()
		c.insertHTMLElementForToken(t)
		c.framesetOK = false
	case "a":
		if i := c.lastFormattingElementNamed("a"); i != -1 {
			c.unexpected(t)
			a := c.activeFormattingElements[i].node
			c.adoptionAgencyAlgorithm(&Token{TokenType: endTagToken, TagName: t.TagName, normalName: "a"})
			if j := c.formattingIndex(a); j != -1 {
				c.removeFormattingAt(j)
			}
			c.removeFromStack(a)
		}
		c.reconstructActiveFormattingElements()
		c.pushActiveFormattingElements(c.insertHTMLElementForToken(t), t)
	case "b", "big", "code", "em", "font", "i", "s", "small", "strike", "strong", "tt", "u":
		c.reconstructActiveFormattingElements()
		c.pushActiveFormattingElements(c.insertHTMLElementForToken(t), t)
	case "nobr":
		c.reconstructActiveFormattingElements()
		if c.elementInScope("nobr") {
			c.unexpected(t)
			c.adoptionAgencyAlgorithm(&Token{TokenType: endTagToken, TagName: t.TagName, normalName: "nobr"})
			c.reconstructActiveFormattingElements()
		}
		c.pushActiveFormattingElements(c.insertHTMLElementForToken(t), t)
	case "applet", "marquee", "object":
		c.reconstructActiveFormattingElements()
		c.insertHTMLElementForToken(t)
		c.insertMarker()
		c.framesetOK = false
	case "table":
		if c.quirksMode != dom.Quirks {
			c.closePElementInButtonScope()
		}
		c.insertHTMLElementForToken(t)
		c.framesetOK = false
		c.insertionMode = inTable
	case "area", "br", "embed", "img", "keygen", "wbr":
		c.reconstructActiveFormattingElements()
		c.insertVoidElement(t)
		c.framesetOK = false
	case "input":
		c.reconstructActiveFormattingElements()
		c.insertVoidElement(t)
		if !isHiddenInput(t) {
			c.framesetOK = false
		}
	case "param", "source", "track":
		c.insertVoidElement(t)
	case "hr":
		c.closePElementInButtonScope()
		c.insertVoidElement(t)
		c.framesetOK = false
	case "image":
		c.unexpected(t)
		t.TagName = c.settings.normalizeTag("img")
		t.normalName = "img"
		return true
	case "textarea":
		c.insertHTMLElementForToken(t)
		c.skipNextNewline = true
		c.tokenizer.SwitchTo(rcDataState)
		c.originalInsertionMode = c.insertionMode
		c.framesetOK = false
		c.insertionMode = text
	case "xmp":
		c.closePElementInButtonScope()
		c.reconstructActiveFormattingElements()
		c.framesetOK = false
		c.insertRawText(t, rawTextState)
	case "iframe":
		c.framesetOK = false
		c.insertRawText(t, rawTextState)
	case "noembed":
		c.insertRawText(t, rawTextState)
	case "noscript":
		if c.scriptingEnabled {
			c.insertRawText(t, rawTextState)
			return false
		}
		c.reconstructActiveFormattingElements()
		c.insertHTMLElementForToken(t)
	case "select":
		c.reconstructActiveFormattingElements()
		c.insertHTMLElementForToken(t)
		c.framesetOK = false
		switch c.insertionMode {
		case inTable, inCaption, inTableBody, inRow, inCell:
			c.insertionMode = inSelectInTable
		default:
			c.insertionMode = inSelect
		}
	case "optgroup", "option":
		if c.currentNodeIs("option") {
			c.pop()
		}
		c.reconstructActiveFormattingElements()
		c.insertHTMLElementForToken(t)
	case "rb", "rtc":
		if c.elementInScope("ruby") {
			c.generateImpliedEndTags("")
			if !c.currentNodeIs("ruby") {
				c.unexpected(t)
			}
		}
		c.insertHTMLElementForToken(t)
	case "rp", "rt":
		if c.elementInScope("ruby") {
			c.generateImpliedEndTags("rtc")
			if !c.currentNodeIs("ruby", "rtc") {
				c.unexpected(t)
			}
		}
		c.insertHTMLElementForToken(t)
	case "math", "svg":
		c.reconstructActiveFormattingElements()
		c.insertHTMLElementForToken(t)
		if t.SelfClosing {
			c.pop()
			c.tokenizer.AcknowledgeSelfClosing()
		}
	case "caption", "col", "colgroup", "frame", "head", "tbody", "td", "tfoot", "th", "thead", "tr":
		c.unexpected(t)
	default:
		c.reconstructActiveFormattingElements()
		c.insertHTMLElementForToken(t)
	}
	return false
}

// closeListItem implements the loop shared by li, dd and dt start tags.
func (c *HTMLTreeConstructor) closeListItem(t *Token, names ...string) {
	for i := len(c.stackOfOpenElements) - 1; i >= 0; i-- {
		name := c.nameOf(c.stackOfOpenElements[i])
		if contains(names, name) {
			c.generateImpliedEndTags(name)
			if !c.currentNodeIs(name) {
				c.unexpected(t)
			}
			c.popUntil(name)
			return
		}
		if isSpecial(name) && name != "address" && name != "div" && name != "p" {
			return
		}
	}
}

func (c *HTMLTreeConstructor) inBodyEndTag(t *Token) bool {
	switch t.normalName {
	case "template":
		return c.useRulesFor(t, inHead)
	case "body", "html":
		if !c.elementInScope("body") {
			c.unexpected(t)
			return false
		}
		c.insertionMode = afterBody
		return t.normalName == "html"
	case "address", "article", "aside", "blockquote", "button", "center", "details", "dialog", "dir", "div",
		"dl", "fieldset", "figcaption", "figure", "footer", "header", "hgroup", "listing", "main", "menu",
		"nav", "ol", "pre", "search", "section", "summary", "ul":
		if !c.elementInScope(t.normalName) {
			c.unexpected(t)
			return false
		}
		c.generateImpliedEndTags("")
		if !c.currentNodeIs(t.normalName) {
			c.unexpected(t)
		}
		c.popUntil(t.normalName)
	case "form":
		if c.hasTemplateOnStack() {
			if !c.elementInScope("form") {
				c.unexpected(t)
				return false
			}
			c.generateImpliedEndTags("")
			if !c.currentNodeIs("form") {
				c.unexpected(t)
			}
			c.popUntil("form")
			return false
		}
		node := c.formElementPointer
		c.formElementPointer = dom.NoHandle
		if node == dom.NoHandle || !c.nodeInScope(node) {
			c.unexpected(t)
			return false
		}
		c.generateImpliedEndTags("")
		if c.getCurrentNode() != node {
			c.unexpected(t)
		}
		c.removeFromStack(node)
	case "p":
		if !c.elementInButtonScope("p") {
			c.unexpected(t)
			c.insertHTMLElementNamed("p")
		}
		c.closePElement()
	case "li":
		if !c.elementInListItemScope("li") {
			c.unexpected(t)
			return false
		}
		c.generateImpliedEndTags("li")
		if !c.currentNodeIs("li") {
			c.unexpected(t)
		}
		c.popUntil("li")
	case "dd", "dt":
		if !c.elementInScope(t.normalName) {
			c.unexpected(t)
			return false
		}
		c.generateImpliedEndTags(t.normalName)
		if !c.currentNodeIs(t.normalName) {
			c.unexpected(t)
		}
		c.popUntil(t.normalName)
	case "h1", "h2", "h3", "h4", "h5", "h6":
		if !c.elementInScope("h1", "h2", "h3", "h4", "h5", "h6") {
			c.unexpected(t)
			return false
		}
		c.generateImpliedEndTags("")
		if !c.currentNodeIs(t.normalName) {
			c.unexpected(t)
		}
		c.popUntil("h1", "h2", "h3", "h4", "h5", "h6")
	case "a", "b", "big", "code", "em", "font", "i", "nobr", "s", "small", "strike", "strong", "tt", "u":
		if c.adoptionAgencyAlgorithm(t) {
			c.anyOtherEndTag(t)
		}
	case "applet", "marquee", "object":
		if !c.elementInScope(t.normalName) {
			c.unexpected(t)
			return false
		}
		c.generateImpliedEndTags("")
		if !c.currentNodeIs(t.normalName) {
			c.unexpected(t)
		}
		c.popUntil(t.normalName)
		c.clearActiveFormattingElements()
	case "br":
		c.unexpected(t)
		br := c.syntheticStartTag("br")
		c.reconstructActiveFormattingElements()
		c.insertHTMLElementForToken(br)
		c.pop()
		c.framesetOK = false
	default:
		c.anyOtherEndTag(t)
	}
	return false
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-incdata
func (c *HTMLTreeConstructor) textModeHandler(t *Token) bool {
	switch t.TokenType {
	case characterToken:
		c.insertCharacter(t.Data)
	case endOfFileToken:
		c.unexpected(t)
		c.pop()
		c.insertionMode = c.originalInsertionMode
		return true
	case endTagToken:
		c.pop()
		c.insertionMode = c.originalInsertionMode
	default:
		c.unexpected(t)
	}
	return false
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-intable
func (c *HTMLTreeConstructor) inTableModeHandler(t *Token) bool {
	switch t.TokenType {
	case characterToken:
		if c.currentNodeIs("table", "tbody", "template", "tfoot", "thead", "tr") {
			c.pendingTableCharacters = c.pendingTableCharacters[:0]
			c.pendingTableCharactersDirty = false
			c.originalInsertionMode = c.insertionMode
			c.insertionMode = inTableText
			return true
		}
	case commentToken:
		c.insertComment(t, dom.NoHandle)
		return false
	case docTypeToken:
		c.unexpected(t)
		return false
	case startTagToken:
		switch t.normalName {
		case "caption":
			c.clearStackBackToTable()
			c.insertMarker()
			c.insertHTMLElementForToken(t)
			c.insertionMode = inCaption
			return false
		case "colgroup":
			c.clearStackBackToTable()
			c.insertHTMLElementForToken(t)
			c.insertionMode = inColumnGroup
			return false
		case "col":
			c.clearStackBackToTable()
			c.insertHTMLElementNamed("colgroup")
			c.insertionMode = inColumnGroup
			return true
		case "tbody", "tfoot", "thead":
			c.clearStackBackToTable()
			c.insertHTMLElementForToken(t)
			c.insertionMode = inTableBody
			return false
		case "td", "th", "tr":
			c.clearStackBackToTable()
			c.insertHTMLElementNamed("tbody")
			c.insertionMode = inTableBody
			return true
		case "table":
			c.unexpected(t)
			if !c.elementInTableScope("table") {
				return false
			}
			c.popUntil("table")
			c.resetInsertionMode()
			return true
		case "style", "script", "template":
			return c.useRulesFor(t, inHead)
		case "input":
			if !isHiddenInput(t) {
				break
			}
			c.unexpected(t)
			c.insertVoidElement(t)
			return false
		case "form":
			c.unexpected(t)
			if c.hasTemplateOnStack() || c.formElementPointer != dom.NoHandle {
				return false
			}
			c.formElementPointer = c.insertHTMLElementForToken(t)
			c.pop()
			return false
		}
	case endTagToken:
		switch t.normalName {
		case "table":
			if !c.elementInTableScope("table") {
				c.unexpected(t)
				return false
			}
			c.popUntil("table")
			c.resetInsertionMode()
			return false
		case "body", "caption", "col", "colgroup", "html", "tbody", "td", "tfoot", "th", "thead", "tr":
			c.unexpected(t)
			return false
		case "template":
			return c.useRulesFor(t, inHead)
		}
	case endOfFileToken:
		return c.useRulesFor(t, inBody)
	}

	c.unexpected(t)
	c.fosterParenting = true
	reprocess := c.useRulesFor(t, inBody)
	c.fosterParenting = false
	return reprocess
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-intabletext
func (c *HTMLTreeConstructor) inTableTextModeHandler(t *Token) bool {
	if t.TokenType == characterToken {
		if c.stripNulls(t) {
			c.pendingTableCharacters = append(c.pendingTableCharacters, t.Data)
			if !t.isWhitespace() {
				c.pendingTableCharactersDirty = true
			}
		}
		return false
	}

	data := strings.Join(c.pendingTableCharacters, "")
	c.pendingTableCharacters = c.pendingTableCharacters[:0]
	if c.pendingTableCharactersDirty {
		c.parseError("unexpected-character-in-table")
		c.fosterParenting = true
		c.useRulesFor(&Token{TokenType: characterToken, Data: data}, inBody)
		c.fosterParenting = false
	} else {
		c.insertCharacter(data)
	}
	c.pendingTableCharactersDirty = false
	c.insertionMode = c.originalInsertionMode
	return true
}

func (c *HTMLTreeConstructor) closeCaption() bool {
	if !c.elementInTableScope("caption") {
		return false
	}
	c.generateImpliedEndTags("")
	if !c.currentNodeIs("caption") {
		c.parseError("caption-closed-with-open-elements")
	}
	c.popUntil("caption")
	c.clearActiveFormattingElements()
	c.insertionMode = inTable
	return true
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-incaption
func (c *HTMLTreeConstructor) inCaptionModeHandler(t *Token) bool {
	switch t.TokenType {
	case startTagToken:
		switch t.normalName {
		case "caption", "col", "colgroup", "tbody", "td", "tfoot", "th", "thead", "tr":
			if !c.closeCaption() {
				c.unexpected(t)
				return false
			}
			return true
		}
	case endTagToken:
		switch t.normalName {
		case "caption":
			if !c.closeCaption() {
				c.unexpected(t)
			}
			return false
		case "table":
			if !c.closeCaption() {
				c.unexpected(t)
				return false
			}
			return true
		case "body", "col", "colgroup", "html", "tbody", "td", "tfoot", "th", "thead", "tr":
			c.unexpected(t)
			return false
		}
	}
	return c.useRulesFor(t, inBody)
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-incolgroup
func (c *HTMLTreeConstructor) inColumnGroupModeHandler(t *Token) bool {
	switch t.TokenType {
	case characterToken:
		ws, rest := splitWhitespace(t.Data)
		c.insertCharacter(ws)
		if rest == "" {
			return false
		}
		t.Data = rest
	case commentToken:
		c.insertComment(t, dom.NoHandle)
		return false
	case docTypeToken:
		c.unexpected(t)
		return false
	case startTagToken:
		switch t.normalName {
		case "html":
			return c.useRulesFor(t, inBody)
		case "col":
			c.insertVoidElement(t)
			return false
		case "template":
			return c.useRulesFor(t, inHead)
		}
	case endTagToken:
		switch t.normalName {
		case "colgroup":
			if !c.currentNodeIs("colgroup") {
				c.unexpected(t)
				return false
			}
			c.pop()
			c.insertionMode = inTable
			return false
		case "col":
			c.unexpected(t)
			return false
		case "template":
			return c.useRulesFor(t, inHead)
		}
	case endOfFileToken:
		return c.useRulesFor(t, inBody)
	}

	if !c.currentNodeIs("colgroup") {
		c.unexpected(t)
		return false
	}
	c.pop()
	c.insertionMode = inTable
	return true
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-intbody
func (c *HTMLTreeConstructor) inTableBodyModeHandler(t *Token) bool {
	switch t.TokenType {
	case startTagToken:
		switch t.normalName {
		case "tr":
			c.clearStackBackToTableBody()
			c.insertHTMLElementForToken(t)
			c.insertionMode = inRow
			return false
		case "th", "td":
			c.unexpected(t)
			c.clearStackBackToTableBody()
			c.insertHTMLElementNamed("tr")
			c.insertionMode = inRow
			return true
		case "caption", "col", "colgroup", "tbody", "tfoot", "thead":
			return c.leaveTableBody(t)
		}
	case endTagToken:
		switch t.normalName {
		case "tbody", "tfoot", "thead":
			if !c.elementInTableScope(t.normalName) {
				c.unexpected(t)
				return false
			}
			c.clearStackBackToTableBody()
			c.pop()
			c.insertionMode = inTable
			return false
		case "table":
			return c.leaveTableBody(t)
		case "body", "caption", "col", "colgroup", "html", "td", "th", "tr":
			c.unexpected(t)
			return false
		}
	}
	return c.useRulesFor(t, inTable)
}

func (c *HTMLTreeConstructor) leaveTableBody(t *Token) bool {
	if !c.elementInTableScope("tbody", "thead", "tfoot") {
		c.unexpected(t)
		return false
	}
	c.clearStackBackToTableBody()
	c.pop()
	c.insertionMode = inTable
	return true
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-intr
func (c *HTMLTreeConstructor) inRowModeHandler(t *Token) bool {
	switch t.TokenType {
	case startTagToken:
		switch t.normalName {
		case "th", "td":
			c.clearStackBackToTableRow()
			c.insertHTMLElementForToken(t)
			c.insertionMode = inCell
			c.insertMarker()
			return false
		case "caption", "col", "colgroup", "tbody", "tfoot", "thead", "tr":
			return c.leaveRow(t)
		}
	case endTagToken:
		switch t.normalName {
		case "tr":
			if !c.elementInTableScope("tr") {
				c.unexpected(t)
				return false
			}
			c.clearStackBackToTableRow()
			c.pop()
			c.insertionMode = inTableBody
			return false
		case "table":
			return c.leaveRow(t)
		case "tbody", "tfoot", "thead":
			if !c.elementInTableScope(t.normalName) {
				c.unexpected(t)
				return false
			}
			return c.leaveRow(t)
		case "body", "caption", "col", "colgroup", "html", "td", "th":
			c.unexpected(t)
			return false
		}
	}
	return c.useRulesFor(t, inTable)
}

func (c *HTMLTreeConstructor) leaveRow(t *Token) bool {
	if !c.elementInTableScope("tr") {
		c.unexpected(t)
		return false
	}
	c.clearStackBackToTableRow()
	c.pop()
	c.insertionMode = inTableBody
	return true
}

func (c *HTMLTreeConstructor) closeCell() {
	c.generateImpliedEndTags("")
	if !c.currentNodeIs("td", "th") {
		c.parseError("cell-closed-with-open-elements")
	}
	c.popUntil("td", "th")
	c.clearActiveFormattingElements()
	c.insertionMode = inRow
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-intd
func (c *HTMLTreeConstructor) inCellModeHandler(t *Token) bool {
	switch t.TokenType {
	case startTagToken:
		switch t.normalName {
		case "caption", "col", "colgroup", "tbody", "td", "tfoot", "th", "thead", "tr":
			if !c.elementInTableScope("td", "th") {
				c.unexpected(t)
				return false
			}
			c.closeCell()
			return true
		}
	case endTagToken:
		switch t.normalName {
		case "td", "th":
			if !c.elementInTableScope(t.normalName) {
				c.unexpected(t)
				return false
			}
			c.generateImpliedEndTags("")
			if !c.currentNodeIs(t.normalName) {
				c.unexpected(t)
			}
			c.popUntil(t.normalName)
			c.clearActiveFormattingElements()
			c.insertionMode = inRow
			return false
		case "body", "caption", "col", "colgroup", "html":
			c.unexpected(t)
			return false
		case "table", "tbody", "tfoot", "thead", "tr":
			if !c.elementInTableScope(t.normalName) {
				c.unexpected(t)
				return false
			}
			c.closeCell()
			return true
		}
	}
	return c.useRulesFor(t, inBody)
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-inselect
func (c *HTMLTreeConstructor) inSelectModeHandler(t *Token) bool {
	switch t.TokenType {
	case characterToken:
		if c.stripNulls(t) {
			c.insertCharacter(t.Data)
		}
	case commentToken:
		c.insertComment(t, dom.NoHandle)
	case docTypeToken:
		c.unexpected(t)
	case startTagToken:
		switch t.normalName {
		case "html":
			return c.useRulesFor(t, inBody)
		case "option":
			if c.currentNodeIs("option") {
				c.pop()
			}
			c.insertHTMLElementForToken(t)
		case "optgroup":
			if c.currentNodeIs("option") {
				c.pop()
			}
			if c.currentNodeIs("optgroup") {
				c.pop()
			}
			c.insertHTMLElementForToken(t)
		case "hr":
			if c.currentNodeIs("option") {
				c.pop()
			}
			if c.currentNodeIs("optgroup") {
				c.pop()
			}
			c.insertVoidElement(t)
		case "select":
			c.unexpected(t)
			if c.elementInSelectScope("select") {
				c.popUntil("select")
				c.resetInsertionMode()
			}
		case "input", "keygen", "textarea":
			c.unexpected(t)
			if !c.elementInSelectScope("select") {
				return false
			}
			c.popUntil("select")
			c.resetInsertionMode()
			return true
		case "script", "template":
			return c.useRulesFor(t, inHead)
		default:
			c.unexpected(t)
		}
	case endTagToken:
		switch t.normalName {
		case "optgroup":
			n := len(c.stackOfOpenElements)
			if c.currentNodeIs("option") && n > 1 && c.nameOf(c.stackOfOpenElements[n-2]) == "optgroup" {
				c.pop()
			}
			if c.currentNodeIs("optgroup") {
				c.pop()
			} else {
				c.unexpected(t)
			}
		case "option":
			if c.currentNodeIs("option") {
				c.pop()
			} else {
				c.unexpected(t)
			}
		case "select":
			if !c.elementInSelectScope("select") {
				c.unexpected(t)
				return false
			}
			c.popUntil("select")
			c.resetInsertionMode()
		case "template":
			return c.useRulesFor(t, inHead)
		default:
			c.unexpected(t)
		}
	case endOfFileToken:
		return c.useRulesFor(t, inBody)
	}
	return false
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-inselectintable
func (c *HTMLTreeConstructor) inSelectInTableModeHandler(t *Token) bool {
	switch t.normalName {
	case "caption", "table", "tbody", "tfoot", "thead", "tr", "td", "th":
		switch t.TokenType {
		case startTagToken:
			c.unexpected(t)
			c.popUntil("select")
			c.resetInsertionMode()
			return true
		case endTagToken:
			c.unexpected(t)
			if !c.elementInTableScope(t.normalName) {
				return false
			}
			c.popUntil("select")
			c.resetInsertionMode()
			return true
		}
	}
	return c.useRulesFor(t, inSelect)
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-intemplate
func (c *HTMLTreeConstructor) inTemplateModeHandler(t *Token) bool {
	switch t.TokenType {
	case characterToken, commentToken, docTypeToken:
		return c.useRulesFor(t, inBody)
	case startTagToken:
		switch t.normalName {
		case "base", "basefont", "bgsound", "link", "meta", "noframes", "script", "style", "template", "title":
			return c.useRulesFor(t, inHead)
		case "caption", "colgroup", "tbody", "tfoot", "thead":
			c.switchTemplateInsertionMode(inTable)
		case "col":
			c.switchTemplateInsertionMode(inColumnGroup)
		case "tr":
			c.switchTemplateInsertionMode(inTableBody)
		case "td", "th":
			c.switchTemplateInsertionMode(inRow)
		default:
			c.switchTemplateInsertionMode(inBody)
		}
		return true
	case endTagToken:
		if t.normalName == "template" {
			return c.useRulesFor(t, inHead)
		}
		c.unexpected(t)
		return false
	case endOfFileToken:
		if !c.hasTemplateOnStack() {
			return false
		}
		c.unexpected(t)
		c.popUntil("template")
		c.clearActiveFormattingElements()
		c.popTemplateInsertionMode()
		c.resetInsertionMode()
		return true
	}
	return false
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-afterbody
func (c *HTMLTreeConstructor) afterBodyModeHandler(t *Token) bool {
	switch t.TokenType {
	case characterToken:
		ws, rest := splitWhitespace(t.Data)
		if ws != "" {
			c.useRulesFor(&Token{TokenType: characterToken, Data: ws}, inBody)
		}
		if rest == "" {
			return false
		}
		t.Data = rest
	case commentToken:
		if len(c.stackOfOpenElements) > 0 {
			c.insertComment(t, c.stackOfOpenElements[0])
		}
		return false
	case docTypeToken:
		c.unexpected(t)
		return false
	case startTagToken:
		if t.normalName == "html" {
			return c.useRulesFor(t, inBody)
		}
	case endTagToken:
		if t.normalName == "html" {
			if c.isFragment() {
				c.unexpected(t)
				return false
			}
			c.insertionMode = afterAfterBody
			return false
		}
	case endOfFileToken:
		return false
	}

	c.unexpected(t)
	c.insertionMode = inBody
	return true
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-inframeset
func (c *HTMLTreeConstructor) inFramesetModeHandler(t *Token) bool {
	switch t.TokenType {
	case characterToken:
		ws, dropped := onlyWhitespace(t.Data)
		if dropped {
			c.unexpected(t)
		}
		c.insertCharacter(ws)
	case commentToken:
		c.insertComment(t, dom.NoHandle)
	case docTypeToken:
		c.unexpected(t)
	case startTagToken:
		switch t.normalName {
		case "html":
			return c.useRulesFor(t, inBody)
		case "frameset":
			c.insertHTMLElementForToken(t)
		case "frame":
			c.insertVoidElement(t)
		case "noframes":
			return c.useRulesFor(t, inHead)
		default:
			c.unexpected(t)
		}
	case endTagToken:
		if t.normalName != "frameset" {
			c.unexpected(t)
			return false
		}
		if len(c.stackOfOpenElements) <= 1 {
			c.unexpected(t)
			return false
		}
		c.pop()
		if !c.isFragment() && !c.currentNodeIs("frameset") {
			c.insertionMode = afterFrameset
		}
	case endOfFileToken:
		if len(c.stackOfOpenElements) > 1 {
			c.unexpected(t)
		}
	}
	return false
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-afterframeset
func (c *HTMLTreeConstructor) afterFramesetModeHandler(t *Token) bool {
	switch t.TokenType {
	case characterToken:
		ws, dropped := onlyWhitespace(t.Data)
		if dropped {
			c.unexpected(t)
		}
		c.insertCharacter(ws)
	case commentToken:
		c.insertComment(t, dom.NoHandle)
	case docTypeToken:
		c.unexpected(t)
	case startTagToken:
		switch t.normalName {
		case "html":
			return c.useRulesFor(t, inBody)
		case "noframes":
			return c.useRulesFor(t, inHead)
		default:
			c.unexpected(t)
		}
	case endTagToken:
		if t.normalName == "html" {
			c.insertionMode = afterAfterFrameset
			return false
		}
		c.unexpected(t)
	}
	return false
}

// https://html.spec.whatwg.org/multipage/parsing.html#the-after-after-body-insertion-mode
func (c *HTMLTreeConstructor) afterAfterBodyModeHandler(t *Token) bool {
	switch t.TokenType {
	case commentToken:
		c.insertComment(t, c.sink.Document())
		return false
	case docTypeToken:
		return c.useRulesFor(t, inBody)
	case characterToken:
		ws, rest := splitWhitespace(t.Data)
		if ws != "" {
			c.useRulesFor(&Token{TokenType: characterToken, Data: ws}, inBody)
		}
		if rest == "" {
			return false
		}
		t.Data = rest
	case startTagToken:
		if t.normalName == "html" {
			return c.useRulesFor(t, inBody)
		}
	case endOfFileToken:
		return false
	}

	c.unexpected(t)
	c.insertionMode = inBody
	return true
}

// https://html.spec.whatwg.org/multipage/parsing.html#the-after-after-frameset-insertion-mode
func (c *HTMLTreeConstructor) afterAfterFramesetModeHandler(t *Token) bool {
	switch t.TokenType {
	case commentToken:
		c.insertComment(t, c.sink.Document())
	case docTypeToken:
		return c.useRulesFor(t, inBody)
	case characterToken:
		ws, dropped := onlyWhitespace(t.Data)
		if dropped {
			c.unexpected(t)
		}
		if ws != "" {
			c.useRulesFor(&Token{TokenType: characterToken, Data: ws}, inBody)
		}
	case startTagToken:
		switch t.normalName {
		case "html":
			return c.useRulesFor(t, inBody)
		case "noframes":
			return c.useRulesFor(t, inHead)
		default:
			c.unexpected(t)
		}
	case endTagToken:
		c.unexpected(t)
	}
	return false
}
