package parser

import (
	"github.com/heathj/gobrowse/parser/dom"
	"github.com/pkg/errors"
)

// Context describes the element a fragment is parsed as the contents of.
// Ancestors lists the names of the context's ancestors, nearest first, and is
// only consulted to find an enclosing form.
type Context struct {
	TagName    string
	Attributes *dom.Attributes
	Ancestors  []string
}

func (c *Context) normalName() string {
	return asciiLower(c.TagName)
}

func (c *Context) validate() error {
	if c.TagName == "" {
		return errors.Wrap(ErrUnresolvableContext, "empty tag name")
	}
	if !isASCIILetter(c.TagName[0]) {
		return errors.Wrapf(ErrUnresolvableContext, "invalid tag name %q", c.TagName)
	}
	for i := 1; i < len(c.TagName); i++ {
		switch c.TagName[i] {
		case '\t', '\n', '\f', '\r', ' ', '/', '>', 0:
			return errors.Wrapf(ErrUnresolvableContext, "invalid tag name %q", c.TagName)
		}
	}
	return nil
}

func (c *Context) insideForm() bool {
	if c.normalName() == "form" {
		return true
	}
	for _, a := range c.Ancestors {
		if asciiLower(a) == "form" {
			return true
		}
	}
	return false
}

// tokenizerStateFor picks the state a fragment starts tokenizing in.
// https://html.spec.whatwg.org/multipage/parsing.html#parsing-html-fragments
func tokenizerStateFor(name string, scripting bool) tokenizerState {
	switch name {
	case "title", "textarea":
		return rcDataState
	case "style", "xmp", "iframe", "noembed", "noframes":
		return rawTextState
	case "script":
		return scriptDataState
	case "noscript":
		if scripting {
			return rawTextState
		}
	case "plaintext":
		return plaintextState
	}
	return dataState
}

// ParseFragment parses input as the contents of context. A nil context
// parses as the contents of a body element. The returned handles are the
// top level nodes of the fragment inside the returned document; they are
// children of a synthetic html element that is not itself part of the
// result.
func (p *Parser) ParseFragment(input string, context *Context) (*dom.Document, []dom.Handle, *ParseErrorList, error) {
	if context == nil {
		context = &Context{TagName: "body"}
	}
	if err := context.validate(); err != nil {
		return nil, nil, nil, err
	}

	doc := dom.NewDocument(p.baseURI)
	doc.SetScripting(p.scripting)
	errs := newParseErrorList(p.maxErrors)
	tokenizer := p.newTokenizer(input, errs)
	c := p.newTreeConstructor(doc, tokenizer)
	root := c.seedFragment(context)
	c.ConstructTree()
	p.logSummary(errs)

	return doc, append([]dom.Handle(nil), doc.Children(root)...), errs, nil
}

// seedFragment prepares the tree constructor to parse the contents of
// context and returns the synthetic root element.
func (c *HTMLTreeConstructor) seedFragment(context *Context) dom.Handle {
	c.context = context
	name := context.normalName()
	c.tokenizer.SwitchTo(tokenizerStateFor(name, c.scriptingEnabled))

	root := c.createElementForToken(c.syntheticStartTag("html"))
	c.sink.AppendChild(c.sink.Document(), root)
	c.push(root)
	if name == "template" {
		c.pushTemplateInsertionMode(inTemplate)
	}
	c.resetInsertionMode()
	if context.insideForm() {
		c.formElementPointer = c.createElementForToken(c.syntheticStartTag("form"))
	}
	return root
}

// ParseFragment parses input as the contents of context with HTML case
// folding and no error tracking.
func ParseFragment(input string, context *Context) (*dom.Document, []dom.Handle, error) {
	doc, nodes, _, err := defaultParser.ParseFragment(input, context)
	return doc, nodes, err
}
