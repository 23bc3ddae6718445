package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/heathj/gobrowse/parser"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type cmdopts struct {
	Fragment     string `long:"fragment" value-name:"TAG" description:"parse the input as a fragment in the context of TAG"`
	Ancestors    string `long:"ancestors" value-name:"TAGS" description:"comma separated ancestors of the fragment context, outermost first"`
	PreserveCase bool   `long:"preserve-case" description:"keep tag and attribute names as written"`
	MaxErrors    int    `long:"max-errors" default:"100" description:"stop recording parse errors after this many"`
	Scripting    bool   `long:"scripting" description:"parse as if scripting were enabled"`
	Encoding     string `long:"encoding" default:"utf-8" description:"character encoding of the input when it has no byte order mark"`
	Dump         bool   `long:"dump" description:"print the parsed tree"`
	Render       bool   `long:"render" description:"print the parsed tree serialized back to HTML"`
	Tokens       bool   `long:"tokens" description:"print the token stream instead of building a tree"`
	Verbose      []bool `short:"v" long:"verbose" description:"log parse errors as they are found, repeat for more detail"`
}

func main() {
	os.Exit(_main(os.Args[1:]))
}

func showUsage() {
	fmt.Printf(`Usage : htmllint [options] HTMLfiles ...
	Parse the HTML files and report every parse error found.
	Reads standard input when no files are given.
	--fragment TAG  : parse as a fragment in the context of TAG
	--tokens        : print the token stream
	--dump          : print the parsed tree
	--render        : print the parsed tree as HTML
`)
}

func logLevel(verbose int) logrus.Level {
	switch {
	case verbose >= 2:
		return logrus.TraceLevel
	case verbose == 1:
		return logrus.DebugLevel
	default:
		return logrus.WarnLevel
	}
}

// _main returns 0 when every input parsed cleanly, 1 when any parse error
// was recorded and 2 when the inputs or options could not be used.
func _main(argv []string) int {
	opts := cmdopts{}
	args, err := flags.ParseArgs(&opts, argv)
	if err != nil {
		if flags.WroteHelp(err) {
			return 0
		}
		showUsage()
		return 2
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logLevel(len(opts.Verbose)))

	settings := parser.HTMLSettings
	if opts.PreserveCase {
		settings = parser.PreserveCaseSettings
	}
	p := parser.NewParser(
		parser.WithSettings(settings),
		parser.WithMaxErrors(opts.MaxErrors),
		parser.WithScripting(opts.Scripting),
		parser.WithLogger(log),
	)

	if len(args) == 0 {
		args = []string{"-"}
	}

	status := 0
	for _, name := range args {
		n, err := lint(p, &opts, name, os.Stdout)
		if err != nil {
			log.WithField("file", name).Error(err)
			return 2
		}
		if n > 0 {
			status = 1
		}
	}
	return status
}

// lint parses one input and writes its report to w. It returns the number of
// parse errors recorded.
func lint(p *parser.Parser, opts *cmdopts, name string, w io.Writer) (int, error) {
	input, err := readInput(name, opts.Encoding)
	if err != nil {
		return 0, err
	}

	var errs *parser.ParseErrorList
	switch {
	case opts.Tokens:
		var tokens []*parser.Token
		tokens, errs = p.Tokens(input)
		for _, t := range tokens {
			fmt.Fprintln(w, t)
		}
	case opts.Fragment != "":
		context := &parser.Context{TagName: opts.Fragment}
		if opts.Ancestors != "" {
			context.Ancestors = strings.Split(opts.Ancestors, ",")
		}
		doc, nodes, ferrs, err := p.ParseFragment(input, context)
		if err != nil {
			return 0, errors.Wrapf(err, "parsing fragment in context %q", opts.Fragment)
		}
		errs = ferrs
		if opts.Dump {
			fmt.Fprintln(w, doc.DumpNodes(nodes))
		}
		if opts.Render {
			fmt.Fprintln(w, doc.RenderNodes(nodes))
		}
	default:
		doc, derrs, err := p.ParseDocument(input)
		if err != nil {
			return 0, errors.Wrap(err, "parsing document")
		}
		errs = derrs
		if opts.Dump {
			fmt.Fprintln(w, doc.Dump(doc.Document()))
		}
		if opts.Render {
			fmt.Fprintln(w, doc.Render(doc.Document()))
		}
	}

	for _, e := range errs.Errors() {
		fmt.Fprintf(w, "%s:%s\n", name, e)
	}
	return errs.Len(), nil
}

// readInput reads name, or standard input for "-", and decodes it to UTF-8.
// A byte order mark overrides the requested encoding.
func readInput(name, encoding string) (string, error) {
	var r io.Reader = os.Stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return "", errors.Wrap(err, "opening input")
		}
		defer f.Close()
		r = f
	}

	enc, err := htmlindex.Get(encoding)
	if err != nil {
		return "", errors.Wrapf(err, "unknown encoding %q", encoding)
	}
	buf, err := io.ReadAll(transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder())))
	if err != nil {
		return "", errors.Wrap(err, "decoding input")
	}
	return string(buf), nil
}
