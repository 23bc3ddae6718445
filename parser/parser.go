package parser

import (
	"io"
	"os"

	"github.com/heathj/gobrowse/parser/dom"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Parser holds the configuration shared by every parse it runs. Each call
// builds its own tokenizer and tree constructor, so a Parser may be used from
// several goroutines.
type Parser struct {
	settings  ParseSettings
	maxErrors int
	scripting bool
	baseURI   string
	log       *logrus.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithSettings selects the case-folding policy.
func WithSettings(s ParseSettings) Option {
	return func(p *Parser) {
		p.settings = s
	}
}

// WithMaxErrors caps the number of parse errors recorded. Zero disables
// error tracking.
func WithMaxErrors(n int) Option {
	return func(p *Parser) {
		p.maxErrors = n
	}
}

// WithScripting sets the scripting flag, which changes how noscript is
// parsed.
func WithScripting(enabled bool) Option {
	return func(p *Parser) {
		p.scripting = enabled
	}
}

// WithLogger routes tokenizer and tree construction logging to l.
func WithLogger(l *logrus.Logger) Option {
	return func(p *Parser) {
		p.log = l
	}
}

// WithBaseURI records the location the document came from on the document
// node. The parser itself never interprets it.
func WithBaseURI(uri string) Option {
	return func(p *Parser) {
		p.baseURI = uri
	}
}

func defaultLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	return l
}

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return l
}

// NewParser returns a parser with HTML case folding, no error tracking and
// scripting disabled unless options say otherwise.
func NewParser(opts ...Option) *Parser {
	p := &Parser{settings: HTMLSettings}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = defaultLogger()
	}
	return p
}

func (p *Parser) newTokenizer(input string, errs *ParseErrorList) *HTMLTokenizer {
	return NewHTMLTokenizer(input, p.settings, errs, logrus.NewEntry(p.log))
}

func (p *Parser) newTreeConstructor(sink TreeSink, tokenizer *HTMLTokenizer) *HTMLTreeConstructor {
	return NewHTMLTreeConstructor(sink, tokenizer, p.settings, p.scripting, logrus.NewEntry(p.log))
}

// ParseDocument parses a complete document. The returned error is only set
// for configuration problems; malformed markup is reported through the error
// list.
func (p *Parser) ParseDocument(input string) (*dom.Document, *ParseErrorList, error) {
	doc := dom.NewDocument(p.baseURI)
	doc.SetScripting(p.scripting)
	errs, err := p.ParseDocumentInto(input, doc)
	if err != nil {
		return nil, nil, err
	}
	return doc, errs, nil
}

// ParseDocumentInto parses a complete document into a caller supplied sink.
func (p *Parser) ParseDocumentInto(input string, sink TreeSink) (*ParseErrorList, error) {
	if sink == nil {
		return nil, errors.New("nil tree sink")
	}
	errs := newParseErrorList(p.maxErrors)
	tokenizer := p.newTokenizer(input, errs)
	c := p.newTreeConstructor(sink, tokenizer)
	c.ConstructTree()
	p.logSummary(errs)
	return errs, nil
}

func (p *Parser) logSummary(errs *ParseErrorList) {
	if errs.Len() == 0 {
		return
	}
	p.log.WithFields(logrus.Fields{
		"errors": errs.Len(),
		"max":    errs.MaxSize(),
	}).Debug("parse finished with errors")
}

// Tokens runs only the tokenizer and returns every token up to and including
// the EOF token. Self-closing flags are acknowledged as they are read.
func (p *Parser) Tokens(input string) ([]*Token, *ParseErrorList) {
	errs := newParseErrorList(p.maxErrors)
	tokenizer := p.newTokenizer(input, errs)
	var tokens []*Token
	for {
		t := tokenizer.Next()
		tokens = append(tokens, t)
		if t.TokenType == startTagToken && t.SelfClosing {
			tokenizer.AcknowledgeSelfClosing()
		}
		if t.TokenType == endOfFileToken {
			return tokens, errs
		}
	}
}

var defaultParser = NewParser(WithLogger(discardLogger()))

// Parse parses a document with HTML case folding and no error tracking.
func Parse(input string) (*dom.Document, error) {
	doc, _, err := defaultParser.ParseDocument(input)
	return doc, err
}
