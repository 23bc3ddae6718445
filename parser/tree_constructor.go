package parser

import (
	"fmt"

	"github.com/heathj/gobrowse/parser/dom"
	"github.com/sirupsen/logrus"
)

// maxScopeDepth bounds how far down the stack of open elements a scope
// search looks.
const maxScopeDepth = 100

// formattingEntry is an entry of the list of active formatting elements:
// either a marker or an element together with the token that created it.
type formattingEntry struct {
	marker bool
	node   dom.Handle
	token  *Token
}

// HTMLTreeConstructor holds the state for various state of the tree construction phase.
type HTMLTreeConstructor struct {
	sink                                          TreeSink
	tokenizer                                     *HTMLTokenizer
	settings                                      ParseSettings
	log                                           *logrus.Entry
	trace                                         bool
	insertionMode, originalInsertionMode          insertionMode
	templateInsertionModes                        []insertionMode
	stackOfOpenElements                           []dom.Handle
	activeFormattingElements                      []formattingEntry
	headElementPointer, formElementPointer        dom.Handle
	pendingTableCharacters                        []string
	pendingTableCharactersDirty                   bool
	framesetOK, fosterParenting, scriptingEnabled bool
	skipNextNewline                               bool
	quirksMode                                    dom.QuirksMode
	context                                       *Context
	mappings                                      map[insertionMode]treeConstructionModeHandler
}

// NewHTMLTreeConstructor creates an HTMLTreeConstructor that writes into
// sink and pulls tokens from tokenizer.
func NewHTMLTreeConstructor(sink TreeSink, tokenizer *HTMLTokenizer, settings ParseSettings, scripting bool, log *logrus.Entry) *HTMLTreeConstructor {
	if log == nil {
		log = logrus.NewEntry(discardLogger())
	}
	log = log.WithField("component", "treebuilder")
	c := &HTMLTreeConstructor{
		sink:               sink,
		tokenizer:          tokenizer,
		settings:           settings,
		log:                log,
		trace:              log.Logger.IsLevelEnabled(logrus.TraceLevel),
		headElementPointer: dom.NoHandle,
		formElementPointer: dom.NoHandle,
		framesetOK:         true,
		scriptingEnabled:   scripting,
	}
	c.createMappings()
	tokenizer.SetAllowCDATA(c.inForeignContent)
	return c
}

func (c *HTMLTreeConstructor) createMappings() {
	c.mappings = map[insertionMode]treeConstructionModeHandler{
		initial:            c.initialModeHandler,
		beforeHTML:         c.beforeHTMLModeHandler,
		beforeHead:         c.beforeHeadModeHandler,
		inHead:             c.inHeadModeHandler,
		inHeadNoScript:     c.inHeadNoScriptModeHandler,
		afterHead:          c.afterHeadModeHandler,
		inBody:             c.inBodyModeHandler,
		text:               c.textModeHandler,
		inTable:            c.inTableModeHandler,
		inTableText:        c.inTableTextModeHandler,
		inCaption:          c.inCaptionModeHandler,
		inColumnGroup:      c.inColumnGroupModeHandler,
		inTableBody:        c.inTableBodyModeHandler,
		inRow:              c.inRowModeHandler,
		inCell:             c.inCellModeHandler,
		inSelect:           c.inSelectModeHandler,
		inSelectInTable:    c.inSelectInTableModeHandler,
		inTemplate:         c.inTemplateModeHandler,
		afterBody:          c.afterBodyModeHandler,
		inFrameset:         c.inFramesetModeHandler,
		afterFrameset:      c.afterFramesetModeHandler,
		afterAfterBody:     c.afterAfterBodyModeHandler,
		afterAfterFrameset: c.afterAfterFramesetModeHandler,
	}
}

// ConstructTree pulls tokens until the EOF token has been processed. A token
// is fed to the current mode again for as long as the mode asks for it to be
// reprocessed.
func (c *HTMLTreeConstructor) ConstructTree() {
	for {
		t := c.tokenizer.Next()
		if c.skipNextNewline {
			c.skipNextNewline = false
			if t.TokenType == characterToken && len(t.Data) > 0 && t.Data[0] == '\n' {
				t.Data = t.Data[1:]
				if t.Data == "" {
					continue
				}
			}
		}
		for c.process(t) {
		}
		if t.TokenType == endOfFileToken {
			c.stopParsing()
			return
		}
	}
}

func (c *HTMLTreeConstructor) process(t *Token) bool {
	if c.trace {
		c.log.WithFields(logrus.Fields{"mode": c.insertionMode, "token": t}).Trace("process")
	}
	return c.mappings[c.insertionMode](t)
}

// useRulesFor processes t with the rules of another mode without switching to
// it.
func (c *HTMLTreeConstructor) useRulesFor(t *Token, mode insertionMode) bool {
	return c.mappings[mode](t)
}

func (c *HTMLTreeConstructor) stopParsing() {
	c.stackOfOpenElements = c.stackOfOpenElements[:0]
}

// parseError records code, a kebab-case error name like the tokenizer's.
// Details that would not fit a fixed code go to the log entry as fields.
func (c *HTMLTreeConstructor) parseError(code string, fields ...logrus.Fields) {
	if !c.tokenizer.errs.CanAddError() {
		return
	}
	log := c.log
	for _, f := range fields {
		log = log.WithFields(f)
	}
	c.tokenizer.recordError(code, log)
}

var unexpectedTokenCodes = map[tokenType]string{
	characterToken: "unexpected-character",
	startTagToken:  "unexpected-start-tag",
	endTagToken:    "unexpected-end-tag",
	commentToken:   "unexpected-comment",
	docTypeToken:   "unexpected-doctype",
	endOfFileToken: "unexpected-eof",
}

func (c *HTMLTreeConstructor) unexpected(t *Token) {
	c.parseError(unexpectedTokenCodes[t.TokenType], logrus.Fields{
		"token": t.String(),
		"mode":  c.insertionMode.String(),
	})
}

func (c *HTMLTreeConstructor) isFragment() bool {
	return c.context != nil
}

func (c *HTMLTreeConstructor) nameOf(h dom.Handle) string {
	return asciiLower(c.sink.TagName(h))
}

func (c *HTMLTreeConstructor) getCurrentNode() dom.Handle {
	if len(c.stackOfOpenElements) == 0 {
		return dom.NoHandle
	}
	return c.stackOfOpenElements[len(c.stackOfOpenElements)-1]
}

func (c *HTMLTreeConstructor) currentNodeName() string {
	h := c.getCurrentNode()
	if h == dom.NoHandle {
		return ""
	}
	return c.nameOf(h)
}

func (c *HTMLTreeConstructor) currentNodeIs(names ...string) bool {
	cur := c.currentNodeName()
	for _, n := range names {
		if cur == n {
			return true
		}
	}
	return false
}

// inForeignContent reports whether an svg or math element is open.
func (c *HTMLTreeConstructor) inForeignContent() bool {
	for i := len(c.stackOfOpenElements) - 1; i >= 0; i-- {
		switch c.nameOf(c.stackOfOpenElements[i]) {
		case "svg", "math":
			return true
		}
	}
	return false
}

func (c *HTMLTreeConstructor) push(h dom.Handle) {
	c.stackOfOpenElements = append(c.stackOfOpenElements, h)
}

func (c *HTMLTreeConstructor) pop() dom.Handle {
	n := len(c.stackOfOpenElements)
	if n == 0 {
		return dom.NoHandle
	}
	h := c.stackOfOpenElements[n-1]
	c.stackOfOpenElements = c.stackOfOpenElements[:n-1]
	return h
}

// popUntil pops elements until one named in names has been popped.
func (c *HTMLTreeConstructor) popUntil(names ...string) {
	for len(c.stackOfOpenElements) > 0 {
		name := c.nameOf(c.pop())
		for _, n := range names {
			if name == n {
				return
			}
		}
	}
}

func (c *HTMLTreeConstructor) popUntilHandle(h dom.Handle) {
	for len(c.stackOfOpenElements) > 0 {
		if c.pop() == h {
			return
		}
	}
}

func (c *HTMLTreeConstructor) stackIndex(h dom.Handle) int {
	for i := len(c.stackOfOpenElements) - 1; i >= 0; i-- {
		if c.stackOfOpenElements[i] == h {
			return i
		}
	}
	return -1
}

func (c *HTMLTreeConstructor) removeFromStack(h dom.Handle) {
	if i := c.stackIndex(h); i != -1 {
		c.stackOfOpenElements = append(c.stackOfOpenElements[:i], c.stackOfOpenElements[i+1:]...)
	}
}

func (c *HTMLTreeConstructor) insertIntoStack(i int, h dom.Handle) {
	c.stackOfOpenElements = append(c.stackOfOpenElements, dom.NoHandle)
	copy(c.stackOfOpenElements[i+1:], c.stackOfOpenElements[i:])
	c.stackOfOpenElements[i] = h
}

func (c *HTMLTreeConstructor) hasTemplateOnStack() bool {
	for _, h := range c.stackOfOpenElements {
		if c.nameOf(h) == "template" {
			return true
		}
	}
	return false
}

type scope uint

const (
	defaultScope scope = iota
	listItemScope
	buttonScope
	tableScope
	selectScope
)

// https://html.spec.whatwg.org/multipage/parsing.html#has-an-element-in-the-specific-scope
func isScopeBoundary(s scope, name string) bool {
	switch s {
	case tableScope:
		return name == "html" || name == "table" || name == "template"
	case selectScope:
		return name != "optgroup" && name != "option"
	case listItemScope:
		if name == "ol" || name == "ul" {
			return true
		}
	case buttonScope:
		if name == "button" {
			return true
		}
	}
	switch name {
	case "applet", "caption", "html", "table", "td", "th", "marquee", "object", "template":
		return true
	}
	return false
}

// elementInSpecificScope walks at most maxScopeDepth entries from the top of
// the stack looking for an element named in targets before a boundary of s.
func (c *HTMLTreeConstructor) elementInSpecificScope(s scope, targets ...string) bool {
	bottom := len(c.stackOfOpenElements) - 1 - maxScopeDepth
	if bottom < 0 {
		bottom = 0
	}
	for i := len(c.stackOfOpenElements) - 1; i >= bottom; i-- {
		name := c.nameOf(c.stackOfOpenElements[i])
		for _, t := range targets {
			if name == t {
				return true
			}
		}
		if isScopeBoundary(s, name) {
			return false
		}
	}
	return false
}

func (c *HTMLTreeConstructor) elementInScope(targets ...string) bool {
	return c.elementInSpecificScope(defaultScope, targets...)
}

func (c *HTMLTreeConstructor) elementInButtonScope(name string) bool {
	return c.elementInSpecificScope(buttonScope, name)
}

func (c *HTMLTreeConstructor) elementInListItemScope(name string) bool {
	return c.elementInSpecificScope(listItemScope, name)
}

func (c *HTMLTreeConstructor) elementInTableScope(targets ...string) bool {
	return c.elementInSpecificScope(tableScope, targets...)
}

func (c *HTMLTreeConstructor) elementInSelectScope(name string) bool {
	return c.elementInSpecificScope(selectScope, name)
}

// nodeInScope is the default scope search for a particular element.
func (c *HTMLTreeConstructor) nodeInScope(h dom.Handle) bool {
	bottom := len(c.stackOfOpenElements) - 1 - maxScopeDepth
	if bottom < 0 {
		bottom = 0
	}
	for i := len(c.stackOfOpenElements) - 1; i >= bottom; i-- {
		entry := c.stackOfOpenElements[i]
		if entry == h {
			return true
		}
		if isScopeBoundary(defaultScope, c.nameOf(entry)) {
			return false
		}
	}
	return false
}

// insertionLocation is a parent and the child to insert before, or
// dom.NoHandle to append.
type insertionLocation struct {
	parent, before dom.Handle
}

// https://html.spec.whatwg.org/multipage/parsing.html#appropriate-place-for-inserting-a-node
func (c *HTMLTreeConstructor) getAppropriatePlaceForInsertion(target dom.Handle) insertionLocation {
	if target == dom.NoHandle {
		target = c.getCurrentNode()
	}
	if !c.fosterParenting {
		return insertionLocation{parent: target, before: dom.NoHandle}
	}
	switch c.nameOf(target) {
	case "table", "tbody", "tfoot", "thead", "tr":
	default:
		return insertionLocation{parent: target, before: dom.NoHandle}
	}

	lastTemplate, lastTable := -1, -1
	for i := len(c.stackOfOpenElements) - 1; i >= 0; i-- {
		switch c.nameOf(c.stackOfOpenElements[i]) {
		case "template":
			if lastTemplate == -1 {
				lastTemplate = i
			}
		case "table":
			if lastTable == -1 {
				lastTable = i
			}
		}
	}
	if lastTemplate != -1 && (lastTable == -1 || lastTemplate > lastTable) {
		return insertionLocation{parent: c.stackOfOpenElements[lastTemplate], before: dom.NoHandle}
	}
	if lastTable == -1 {
		return insertionLocation{parent: c.stackOfOpenElements[0], before: dom.NoHandle}
	}
	table := c.stackOfOpenElements[lastTable]
	if parent, ok := c.sink.Parent(table); ok {
		return insertionLocation{parent: parent, before: table}
	}
	return insertionLocation{parent: c.stackOfOpenElements[lastTable-1], before: dom.NoHandle}
}

func (c *HTMLTreeConstructor) insertAt(loc insertionLocation, n dom.Handle) {
	if loc.before != dom.NoHandle {
		c.sink.InsertBefore(loc.before, n)
		return
	}
	c.sink.AppendChild(loc.parent, n)
}

// Inserts a comment at the adjusted insertion location, or as the last child
// of parent when one is given.
// https://html.spec.whatwg.org/multipage/parsing.html#insert-a-comment
func (c *HTMLTreeConstructor) insertComment(t *Token, parent dom.Handle) {
	n := c.sink.CreateComment(t.Data)
	if parent != dom.NoHandle {
		c.sink.AppendChild(parent, n)
		return
	}
	c.insertAt(c.getAppropriatePlaceForInsertion(dom.NoHandle), n)
}

// https://html.spec.whatwg.org/multipage/parsing.html#insert-a-character
func (c *HTMLTreeConstructor) insertCharacter(data string) {
	if data == "" {
		return
	}
	loc := c.getAppropriatePlaceForInsertion(dom.NoHandle)
	if loc.parent == c.sink.Document() {
		return
	}
	c.insertAt(loc, c.sink.CreateText(data))
}

// createElementForToken creates an element from a token.
// https://html.spec.whatwg.org/multipage/parsing.html#create-an-element-for-the-token
func (c *HTMLTreeConstructor) createElementForToken(t *Token) dom.Handle {
	return c.sink.CreateElement(t.TagName, t.Attributes)
}

func (c *HTMLTreeConstructor) insertHTMLElementForToken(t *Token) dom.Handle {
	elem := c.createElementForToken(t)
	c.insertAt(c.getAppropriatePlaceForInsertion(dom.NoHandle), elem)
	c.push(elem)
	return elem
}

// syntheticStartTag builds the start tag for an element the parser implies,
// such as html, head, body or tbody.
func (c *HTMLTreeConstructor) syntheticStartTag(name string) *Token {
	return &Token{
		TokenType:  startTagToken,
		TagName:    c.settings.normalizeTag(name),
		normalName: name,
		Attributes: dom.NewAttributes(),
	}
}

func (c *HTMLTreeConstructor) insertHTMLElementNamed(name string) dom.Handle {
	return c.insertHTMLElementForToken(c.syntheticStartTag(name))
}

// insertVoidElement inserts an element that is immediately popped.
func (c *HTMLTreeConstructor) insertVoidElement(t *Token) {
	c.insertHTMLElementForToken(t)
	c.pop()
	c.tokenizer.AcknowledgeSelfClosing()
}

// insertRawText implements the generic raw text and RCDATA element parsing
// algorithms.
func (c *HTMLTreeConstructor) insertRawText(t *Token, state tokenizerState) {
	c.insertHTMLElementForToken(t)
	c.tokenizer.SwitchTo(state)
	c.originalInsertionMode = c.insertionMode
	c.insertionMode = text
}

var impliedEndTags = []string{"dd", "dt", "li", "optgroup", "option", "p", "rb", "rp", "rt", "rtc"}

var impliedEndTagsThoroughly = []string{
	"caption", "colgroup", "dd", "dt", "li", "optgroup", "option", "p", "rb", "rp", "rt", "rtc",
	"tbody", "td", "tfoot", "th", "thead", "tr",
}

// generateImpliedEndTags pops elements with optional end tags. An element
// named except stops the loop.
func (c *HTMLTreeConstructor) generateImpliedEndTags(except string) {
	c.popWhile(impliedEndTags, except)
}

func (c *HTMLTreeConstructor) generateImpliedEndTagsThoroughly() {
	c.popWhile(impliedEndTagsThoroughly, "")
}

func (c *HTMLTreeConstructor) popWhile(names []string, except string) {
	for {
		cur := c.currentNodeName()
		if cur == "" || cur == except || !contains(names, cur) {
			return
		}
		c.pop()
	}
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// closePElement implements "close a p element".
func (c *HTMLTreeConstructor) closePElement() {
	c.generateImpliedEndTags("p")
	if !c.currentNodeIs("p") {
		c.parseError("p-closed-with-open-elements")
	}
	c.popUntil("p")
}

func (c *HTMLTreeConstructor) closePElementInButtonScope() {
	if c.elementInButtonScope("p") {
		c.closePElement()
	}
}

func (c *HTMLTreeConstructor) clearStackBackTo(names ...string) {
	for !c.currentNodeIs(names...) && len(c.stackOfOpenElements) > 0 {
		c.pop()
	}
}

func (c *HTMLTreeConstructor) clearStackBackToTable() {
	c.clearStackBackTo("table", "template", "html")
}

func (c *HTMLTreeConstructor) clearStackBackToTableBody() {
	c.clearStackBackTo("tbody", "tfoot", "thead", "template", "html")
}

func (c *HTMLTreeConstructor) clearStackBackToTableRow() {
	c.clearStackBackTo("tr", "template", "html")
}

func isSpecial(name string) bool {
	switch name {
	case "address", "applet", "area", "article", "aside", "base", "basefont", "bgsound", "blockquote", "body", "br", "button", "caption", "center", "col", "colgroup", "dd", "details", "dir", "div", "dl", "dt", "embed", "fieldset", "figcaption", "figure", "footer", "form", "frame", "frameset", "h1", "h2", "h3", "h4", "h5", "h6", "head", "header", "hgroup", "hr", "html", "iframe", "img", "input", "keygen", "li", "link", "listing", "main", "marquee", "menu", "meta", "nav", "noembed", "noframes", "noscript", "object", "ol", "p", "param", "plaintext", "pre", "script", "search", "section", "select", "source", "style", "summary", "table", "tbody", "td", "template", "textarea", "tfoot", "th", "thead", "title", "tr", "track", "ul", "wbr", "xmp":
		return true
	}
	return false
}

func (c *HTMLTreeConstructor) formattingIndex(h dom.Handle) int {
	for i := len(c.activeFormattingElements) - 1; i >= 0; i-- {
		if !c.activeFormattingElements[i].marker && c.activeFormattingElements[i].node == h {
			return i
		}
	}
	return -1
}

// lastFormattingElementNamed finds the last element named name after the last
// marker in the list of active formatting elements.
func (c *HTMLTreeConstructor) lastFormattingElementNamed(name string) int {
	for i := len(c.activeFormattingElements) - 1; i >= 0; i-- {
		e := c.activeFormattingElements[i]
		if e.marker {
			return -1
		}
		if c.nameOf(e.node) == name {
			return i
		}
	}
	return -1
}

func (c *HTMLTreeConstructor) removeFormattingAt(i int) {
	c.activeFormattingElements = append(c.activeFormattingElements[:i], c.activeFormattingElements[i+1:]...)
}

func (c *HTMLTreeConstructor) insertMarker() {
	c.activeFormattingElements = append(c.activeFormattingElements, formattingEntry{marker: true, node: dom.NoHandle})
}

// https://html.spec.whatwg.org/multipage/parsing.html#clear-the-list-of-active-formatting-elements-up-to-the-last-marker
func (c *HTMLTreeConstructor) clearActiveFormattingElements() {
	for len(c.activeFormattingElements) > 0 {
		last := c.activeFormattingElements[len(c.activeFormattingElements)-1]
		c.activeFormattingElements = c.activeFormattingElements[:len(c.activeFormattingElements)-1]
		if last.marker {
			return
		}
	}
}

// pushActiveFormattingElements appends elem to the list of active formatting
// elements. When three elements with the same name and attributes already
// follow the last marker, the earliest of them is removed first.
// https://html.spec.whatwg.org/multipage/parsing.html#push-onto-the-list-of-active-formatting-elements
func (c *HTMLTreeConstructor) pushActiveFormattingElements(elem dom.Handle, t *Token) {
	name := c.nameOf(elem)
	attrs := c.sink.Attributes(elem)
	same, earliest := 0, -1
	for i := len(c.activeFormattingElements) - 1; i >= 0; i-- {
		e := c.activeFormattingElements[i]
		if e.marker {
			break
		}
		if c.nameOf(e.node) == name && c.sink.Attributes(e.node).Equal(attrs) {
			same++
			earliest = i
		}
	}
	if same >= 3 {
		c.removeFormattingAt(earliest)
	}
	c.activeFormattingElements = append(c.activeFormattingElements, formattingEntry{node: elem, token: t})
}

// https://html.spec.whatwg.org/multipage/parsing.html#reconstruct-the-active-formatting-elements
func (c *HTMLTreeConstructor) reconstructActiveFormattingElements() {
	n := len(c.activeFormattingElements)
	if n == 0 {
		return
	}
	last := c.activeFormattingElements[n-1]
	if last.marker || c.stackIndex(last.node) != -1 {
		return
	}

	// rewind to the entry after the last marker or open element
	i := n - 1
	for i > 0 {
		prev := c.activeFormattingElements[i-1]
		if prev.marker || c.stackIndex(prev.node) != -1 {
			break
		}
		i--
	}

	// advance and create
	for ; i < n; i++ {
		entry := &c.activeFormattingElements[i]
		entry.node = c.insertHTMLElementForToken(entry.token)
	}
}

// adoptionAgencyAlgorithm handles a misnested formatting end tag. It returns
// true when the caller should fall back to the "any other end tag" steps.
// https://html.spec.whatwg.org/multipage/parsing.html#adoption-agency-algorithm
func (c *HTMLTreeConstructor) adoptionAgencyAlgorithm(t *Token) bool {
	subject := t.normalName
	cur := c.getCurrentNode()
	if cur != dom.NoHandle && c.nameOf(cur) == subject && c.formattingIndex(cur) == -1 {
		c.pop()
		return false
	}

	for outer := 0; outer < 8; outer++ {
		fi := c.lastFormattingElementNamed(subject)
		if fi == -1 {
			return true
		}
		formattingElement := c.activeFormattingElements[fi].node

		si := c.stackIndex(formattingElement)
		if si == -1 {
			c.parseError("formatting-element-not-open", logrus.Fields{"tag": subject})
			c.removeFormattingAt(fi)
			return false
		}
		if !c.nodeInScope(formattingElement) {
			c.parseError("formatting-element-not-in-scope", logrus.Fields{"tag": subject})
			return false
		}
		if formattingElement != c.getCurrentNode() {
			c.parseError("end-tag-not-current-node", logrus.Fields{"tag": subject})
		}

		furthest := -1
		for i := si + 1; i < len(c.stackOfOpenElements); i++ {
			if isSpecial(c.nameOf(c.stackOfOpenElements[i])) {
				furthest = i
				break
			}
		}
		if furthest == -1 {
			c.popUntilHandle(formattingElement)
			c.removeFormattingAt(c.formattingIndex(formattingElement))
			return false
		}
		furthestBlock := c.stackOfOpenElements[furthest]
		commonAncestor := c.stackOfOpenElements[si-1]
		bookmark := fi

		node, lastNode := furthestBlock, furthestBlock
		nodeIndex := furthest
		for inner := 1; ; inner++ {
			nodeIndex--
			node = c.stackOfOpenElements[nodeIndex]
			if node == formattingElement {
				break
			}
			ni := c.formattingIndex(node)
			if inner > 3 && ni != -1 {
				c.removeFormattingAt(ni)
				if ni < bookmark {
					bookmark--
				}
				ni = -1
			}
			if ni == -1 {
				c.stackOfOpenElements = append(c.stackOfOpenElements[:nodeIndex], c.stackOfOpenElements[nodeIndex+1:]...)
				continue
			}
			elem := c.createElementForToken(c.activeFormattingElements[ni].token)
			c.activeFormattingElements[ni].node = elem
			c.stackOfOpenElements[nodeIndex] = elem
			node = elem
			if lastNode == furthestBlock {
				bookmark = ni + 1
			}
			c.sink.AppendChild(node, lastNode)
			lastNode = node
		}

		c.insertAt(c.getAppropriatePlaceForInsertion(commonAncestor), lastNode)

		fi = c.formattingIndex(formattingElement)
		entry := c.activeFormattingElements[fi]
		clone := c.createElementForToken(entry.token)
		c.sink.ReparentChildren(furthestBlock, clone)
		c.sink.AppendChild(furthestBlock, clone)

		c.removeFormattingAt(fi)
		if fi < bookmark {
			bookmark--
		}
		if bookmark > len(c.activeFormattingElements) {
			bookmark = len(c.activeFormattingElements)
		}
		entry.node = clone
		c.activeFormattingElements = append(c.activeFormattingElements, formattingEntry{})
		copy(c.activeFormattingElements[bookmark+1:], c.activeFormattingElements[bookmark:])
		c.activeFormattingElements[bookmark] = entry

		c.removeFromStack(formattingElement)
		c.insertIntoStack(c.stackIndex(furthestBlock)+1, clone)
	}
	return false
}

// anyOtherEndTag implements the in body steps for an end tag without a more
// specific rule.
func (c *HTMLTreeConstructor) anyOtherEndTag(t *Token) {
	for i := len(c.stackOfOpenElements) - 1; i >= 0; i-- {
		node := c.stackOfOpenElements[i]
		name := c.nameOf(node)
		if name == t.normalName {
			c.generateImpliedEndTags(name)
			if node != c.getCurrentNode() {
				c.unexpected(t)
			}
			c.popUntilHandle(node)
			return
		}
		if isSpecial(name) {
			c.unexpected(t)
			return
		}
	}
}

// https://html.spec.whatwg.org/multipage/parsing.html#reset-the-insertion-mode-appropriately
func (c *HTMLTreeConstructor) resetInsertionMode() {
	for i := len(c.stackOfOpenElements) - 1; i >= 0; i-- {
		last := i == 0
		name := c.nameOf(c.stackOfOpenElements[i])
		if last && c.isFragment() {
			name = c.context.normalName()
		}
		switch name {
		case "select":
			if !last {
				for j := i - 1; j >= 0; j-- {
					ancestor := c.nameOf(c.stackOfOpenElements[j])
					if ancestor == "template" {
						break
					}
					if ancestor == "table" {
						c.insertionMode = inSelectInTable
						return
					}
				}
			}
			c.insertionMode = inSelect
			return
		case "td", "th":
			c.insertionMode = inCell
			return
		case "tr":
			c.insertionMode = inRow
			return
		case "tbody", "thead", "tfoot":
			c.insertionMode = inTableBody
			return
		case "caption":
			c.insertionMode = inCaption
			return
		case "colgroup":
			c.insertionMode = inColumnGroup
			return
		case "table":
			c.insertionMode = inTable
			return
		case "template":
			c.insertionMode = c.currentTemplateInsertionMode()
			return
		case "head":
			if !last {
				c.insertionMode = inHead
				return
			}
		case "body":
			c.insertionMode = inBody
			return
		case "frameset":
			c.insertionMode = inFrameset
			return
		case "html":
			if c.headElementPointer == dom.NoHandle {
				c.insertionMode = beforeHead
			} else {
				c.insertionMode = afterHead
			}
			return
		}
		if last {
			c.insertionMode = inBody
			return
		}
	}
	c.insertionMode = inBody
}

func (c *HTMLTreeConstructor) currentTemplateInsertionMode() insertionMode {
	if len(c.templateInsertionModes) == 0 {
		return inBody
	}
	return c.templateInsertionModes[len(c.templateInsertionModes)-1]
}

func (c *HTMLTreeConstructor) pushTemplateInsertionMode(m insertionMode) {
	c.templateInsertionModes = append(c.templateInsertionModes, m)
}

func (c *HTMLTreeConstructor) popTemplateInsertionMode() {
	if n := len(c.templateInsertionModes); n > 0 {
		c.templateInsertionModes = c.templateInsertionModes[:n-1]
	}
}

// switchTemplateInsertionMode replaces the current template insertion mode
// and switches to it.
func (c *HTMLTreeConstructor) switchTemplateInsertionMode(m insertionMode) {
	c.popTemplateInsertionMode()
	c.pushTemplateInsertionMode(m)
	c.insertionMode = m
}

type insertionMode uint

const (
	initial insertionMode = iota
	beforeHTML
	beforeHead
	inHead
	inHeadNoScript
	afterHead
	inBody
	text
	inTable
	inTableText
	inCaption
	inColumnGroup
	inTableBody
	inRow
	inCell
	inSelect
	inSelectInTable
	inTemplate
	afterBody
	inFrameset
	afterFrameset
	afterAfterBody
	afterAfterFrameset
)

var insertionModeNames = [...]string{
	"initial", "before html", "before head", "in head", "in head noscript",
	"after head", "in body", "text", "in table", "in table text", "in caption",
	"in column group", "in table body", "in row", "in cell", "in select",
	"in select in table", "in template", "after body", "in frameset",
	"after frameset", "after after body", "after after frameset",
}

func (m insertionMode) String() string {
	if int(m) < len(insertionModeNames) {
		return insertionModeNames[m]
	}
	return fmt.Sprintf("insertionMode(%d)", uint(m))
}

// treeConstructionModeHandler processes a token in one insertion mode and
// reports whether the token must be reprocessed in the mode now current.
type treeConstructionModeHandler func(t *Token) bool
