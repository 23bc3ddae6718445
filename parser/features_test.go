package parser_test

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/google/go-cmp/cmp"
	"github.com/heathj/gobrowse/parser"
	"github.com/heathj/gobrowse/parser/dom"
	"github.com/sirupsen/logrus"
)

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: initializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("feature scenarios failed")
	}
}

// scenarioState holds the results of the last parse for the assertion steps.
type scenarioState struct {
	maxErrors int

	doc    *dom.Document
	nodes  []dom.Handle
	errs   *parser.ParseErrorList
	tokens []*parser.Token
	err    error

	second     *dom.Document
	secondErrs *parser.ParseErrorList
}

func discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.PanicLevel)
	return log
}

func (s *scenarioState) parser() *parser.Parser {
	return parser.NewParser(parser.WithMaxErrors(s.maxErrors), parser.WithLogger(discard()))
}

// unescape lets feature files spell control characters as Go escapes.
func unescape(s string) string {
	if u, err := strconv.Unquote(`"` + s + `"`); err == nil {
		return u
	}
	return s
}

func errorMessages(errs *parser.ParseErrorList) []string {
	var out []string
	for _, e := range errs.Errors() {
		out = append(out, e.Message)
	}
	return out
}

func column(table *godog.Table) []string {
	var out []string
	for _, row := range table.Rows[1:] {
		out = append(out, row.Cells[0].Value)
	}
	return out
}

func diff(what string, want, got interface{}) error {
	if d := cmp.Diff(want, got); d != "" {
		return fmt.Errorf("%s mismatch (-want +got):\n%s", what, d)
	}
	return nil
}

func initializeScenario(ctx *godog.ScenarioContext) {
	s := &scenarioState{}

	ctx.Step(`^a parser that records up to (\d+) errors?$`, func(n int) error {
		s.maxErrors = n
		return nil
	})

	ctx.Step(`^I parse the document "([^"]*)"$`, func(in string) error {
		s.doc, s.errs, s.err = s.parser().ParseDocument(unescape(in))
		return s.err
	})

	ctx.Step(`^I parse the document "([^"]*)" twice$`, func(in string) error {
		p := s.parser()
		var err error
		if s.doc, s.errs, err = p.ParseDocument(unescape(in)); err != nil {
			return err
		}
		s.second, s.secondErrs, err = p.ParseDocument(unescape(in))
		return err
	})

	ctx.Step(`^I parse the fragment "([^"]*)" in the context of "([^"]*)"$`, func(in, context string) error {
		s.doc, s.nodes, s.errs, s.err = s.parser().ParseFragment(unescape(in), &parser.Context{TagName: context})
		return nil
	})

	ctx.Step(`^I tokenize "([^"]*)"$`, func(in string) error {
		s.tokens, s.errs = s.parser().Tokens(unescape(in))
		return nil
	})

	ctx.Step(`^the tree is:$`, func(want *godog.DocString) error {
		if s.doc == nil {
			return fmt.Errorf("no document was parsed")
		}
		return diff("tree", want.Content, s.doc.Dump(s.doc.Document()))
	})

	ctx.Step(`^the fragment is:$`, func(want *godog.DocString) error {
		if s.err != nil {
			return s.err
		}
		return diff("fragment", want.Content, s.doc.DumpNodes(s.nodes))
	})

	ctx.Step(`^the tokens are:$`, func(table *godog.Table) error {
		var got []string
		for _, t := range s.tokens {
			got = append(got, t.String())
		}
		return diff("tokens", column(table), got)
	})

	ctx.Step(`^the errors are:$`, func(table *godog.Table) error {
		return diff("errors", column(table), errorMessages(s.errs))
	})

	ctx.Step(`^no errors are reported$`, func() error {
		if s.errs.Len() != 0 {
			return fmt.Errorf("expected no errors, got %s", strings.Join(errorMessages(s.errs), ", "))
		}
		return nil
	})

	ctx.Step(`^exactly (\d+) errors? (?:is|are) reported$`, func(n int) error {
		if s.errs.Len() != n {
			return fmt.Errorf("expected %d errors, got %d: %s", n, s.errs.Len(), strings.Join(errorMessages(s.errs), ", "))
		}
		return nil
	})

	ctx.Step(`^at least (\d+) errors? (?:is|are) reported$`, func(n int) error {
		if s.errs.Len() < n {
			return fmt.Errorf("expected at least %d errors, got %d", n, s.errs.Len())
		}
		return nil
	})

	ctx.Step(`^both parses produce the same tree and errors$`, func() error {
		if err := diff("tree", s.doc.Dump(s.doc.Document()), s.second.Dump(s.second.Document())); err != nil {
			return err
		}
		return diff("errors", s.errs.Errors(), s.secondErrs.Errors())
	})

	ctx.Step(`^the first token has attribute "([^"]*)" with value "([^"]*)"$`, func(name, value string) error {
		if len(s.tokens) == 0 {
			return fmt.Errorf("no tokens")
		}
		got, ok := s.tokens[0].Attributes.Get(name)
		if !ok {
			return fmt.Errorf("attribute %q missing from %s", name, s.tokens[0])
		}
		return diff("attribute", value, got)
	})

	ctx.Step(`^the parse fails with "([^"]*)"$`, func(msg string) error {
		if s.err == nil {
			return fmt.Errorf("expected the parse to fail")
		}
		if !strings.Contains(s.err.Error(), msg) {
			return fmt.Errorf("error %q does not mention %q", s.err, msg)
		}
		return nil
	})
}
