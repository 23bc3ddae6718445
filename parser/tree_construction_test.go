package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/heathj/gobrowse/parser/dom"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type treeTest struct {
	file     string
	in       string
	expected string
}

// parseTreeTests reads the html5lib tree construction format. Sections start
// with a line beginning with '#'; a blank line ends the #document section.
func parseTreeTests(t *testing.T, path string) []treeTest {
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var (
		tests   []treeTest
		cur     *treeTest
		section string
		lines   []string
	)
	flush := func() {
		if cur == nil {
			return
		}
		switch section {
		case "#data":
			cur.in = strings.Join(lines, "\n")
		case "#document":
			cur.expected = "#document\n" + strings.Join(lines, "\n")
		}
		lines = nil
	}
	for _, line := range strings.Split(string(data), "\n") {
		switch {
		case line == "#data":
			flush()
			if cur != nil {
				tests = append(tests, *cur)
			}
			cur = &treeTest{file: filepath.Base(path)}
			section = line
		case strings.HasPrefix(line, "#") && cur != nil && (line == "#errors" || line == "#document"):
			flush()
			section = line
		case line == "" && section == "#document":
			flush()
			section = ""
		default:
			lines = append(lines, line)
		}
	}
	flush()
	if cur != nil {
		tests = append(tests, *cur)
	}
	return tests
}

func TestTreeConstructor(t *testing.T) {
	files, err := filepath.Glob("testdata/tree_construction/*.dat")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		for _, test := range parseTreeTests(t, file) {
			runTreeConstructorTest(test, t)
		}
	}
}

func runTreeConstructorTest(test treeTest, t *testing.T) {
	t.Run(test.file+"/"+test.in, func(t *testing.T) {
		t.Parallel()
		p := NewParser(WithLogger(discardLogger()))
		doc, _, err := p.ParseDocument(test.in)
		require.NoError(t, err)
		s := doc.Dump(doc.Document())
		if s != test.expected {
			t.Errorf("Wrong document. Expected: \n\n%s\nGot: \n\n%s", test.expected, s)
		}
	})
}

func newTestParser() *Parser {
	return NewParser(WithMaxErrors(100), WithLogger(discardLogger()))
}

func TestEOFInTagStillBuildsTree(t *testing.T) {
	t.Parallel()
	doc, errs, err := newTestParser().ParseDocument("<!DOCTYPE html><html><body><div class")
	require.NoError(t, err)
	assert.Equal(t, []string{"eof-in-tag"}, errorMessages(errs))
	assert.Equal(t, dom.NoQuirks, doc.QuirksMode())

	html := doc.DocumentElement()
	require.NotEqual(t, dom.NoHandle, html)
	assert.NotEqual(t, dom.NoHandle, doc.FirstElementByTag(html, "body"))
	assert.Equal(t, dom.NoHandle, doc.FirstElementByTag(html, "div"))
}

func TestRecoveryIsDeterministic(t *testing.T) {
	inputs := []string{
		"<b>1<i>2</b>3</i>",
		"<table><b>X</table>Y",
		"<p><a><div></p></a>x",
		"<select><table><tr><td><select>y",
		"</html><frameset><body>&#0;\x00<!-- ",
		"<a><b><c><d><e><f><g></a>z",
	}
	for _, in := range inputs {
		in := in
		t.Run(in, func(t *testing.T) {
			t.Parallel()
			p := newTestParser()
			first, firstErrs, err := p.ParseDocument(in)
			require.NoError(t, err)
			second, secondErrs, err := p.ParseDocument(in)
			require.NoError(t, err)
			assert.Equal(t, first.Dump(first.Document()), second.Dump(second.Document()))
			assert.Equal(t, firstErrs.Errors(), secondErrs.Errors())
			assert.NotZero(t, firstErrs.Len())
		})
	}
}

func TestStackStaysBalanced(t *testing.T) {
	inputs := []string{
		"<p>x",
		"<table><tr><td>a<td>b",
		"<b><i><u>x</b>y",
		"<template><tr>",
		"<svg><foreignObject><p>x",
		"<frameset><frame>",
	}
	for _, in := range inputs {
		in := in
		t.Run(in, func(t *testing.T) {
			t.Parallel()
			doc := dom.NewDocument("")
			c := NewHTMLTreeConstructor(doc, NewHTMLTokenizer(in, HTMLSettings, nil, nil), HTMLSettings, false, nil)
			c.ConstructTree()
			assert.Empty(t, c.stackOfOpenElements)
			for _, entry := range c.activeFormattingElements {
				if !entry.marker {
					_, attached := doc.Parent(entry.node)
					assert.True(t, attached, "formatting element %s detached", doc.TagName(entry.node))
				}
			}
		})
	}
}

func TestNoahsArkClause(t *testing.T) {
	t.Parallel()
	doc := dom.NewDocument("")
	in := "<b><b><b><b><b>x<b class=y>"
	c := NewHTMLTreeConstructor(doc, NewHTMLTokenizer(in, HTMLSettings, nil, nil), HTMLSettings, false, nil)
	c.ConstructTree()

	same := 0
	for _, entry := range c.activeFormattingElements {
		if !entry.marker && doc.TagName(entry.node) == "b" && doc.Attributes(entry.node).Len() == 0 {
			same++
		}
	}
	assert.Equal(t, 3, same)
	assert.Len(t, c.activeFormattingElements, 4)
}

func TestScopeSearchIsBounded(t *testing.T) {
	t.Parallel()
	doc := dom.NewDocument("")
	c := NewHTMLTreeConstructor(doc, NewHTMLTokenizer("", HTMLSettings, nil, nil), HTMLSettings, false, nil)
	html := doc.CreateElement("html", nil)
	doc.AppendChild(doc.Document(), html)
	c.push(html)
	c.push(doc.CreateElement("p", nil))
	for i := 0; i < maxScopeDepth+10; i++ {
		c.push(doc.CreateElement("span", nil))
	}

	assert.True(t, c.elementInScope("span"))
	assert.False(t, c.elementInButtonScope("p"))
	assert.False(t, c.elementInScope("html"))
	assert.False(t, c.nodeInScope(c.stackOfOpenElements[0]))
}

func TestScopeStopsAtBoundary(t *testing.T) {
	t.Parallel()
	doc := dom.NewDocument("")
	c := NewHTMLTreeConstructor(doc, NewHTMLTokenizer("", HTMLSettings, nil, nil), HTMLSettings, false, nil)
	for _, name := range []string{"html", "p", "table", "span"} {
		h := doc.CreateElement(name, nil)
		if cur := c.getCurrentNode(); cur != dom.NoHandle {
			doc.AppendChild(cur, h)
		} else {
			doc.AppendChild(doc.Document(), h)
		}
		c.push(h)
	}

	assert.True(t, c.elementInScope("span"))
	assert.True(t, c.elementInScope("table"))
	assert.False(t, c.elementInScope("p"))
	assert.False(t, c.elementInButtonScope("p"))
	assert.True(t, c.elementInTableScope("table"))
	assert.False(t, c.elementInTableScope("p"))
}

func TestDeepNesting(t *testing.T) {
	t.Parallel()
	in := strings.Repeat("<div>", 5000) + "x" + strings.Repeat("</div>", 5000)
	doc, _, err := newTestParser().ParseDocument(in)
	require.NoError(t, err)
	assert.Equal(t, "x", doc.Text(doc.Document()))
}

func TestFragmentInsertionMode(t *testing.T) {
	tests := []struct {
		context string
		mode    insertionMode
	}{
		{"td", inCell},
		{"TH", inCell},
		{"tr", inRow},
		{"tbody", inTableBody},
		{"caption", inCaption},
		{"colgroup", inColumnGroup},
		{"table", inTable},
		{"select", inSelect},
		{"template", inTemplate},
		{"frameset", inFrameset},
		{"html", beforeHead},
		{"head", inBody},
		{"div", inBody},
		{"title", inBody},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.context, func(t *testing.T) {
			t.Parallel()
			doc := dom.NewDocument("")
			c := NewHTMLTreeConstructor(doc, NewHTMLTokenizer("", HTMLSettings, nil, nil), HTMLSettings, false, nil)
			c.seedFragment(&Context{TagName: tt.context})
			assert.Equal(t, tt.mode.String(), c.insertionMode.String())
		})
	}
}

func TestParseFragment(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		context  *Context
		expected string
	}{
		{"body", "<p>a<p>b", nil, "| <p>\n|   \"a\"\n| <p>\n|   \"b\""},
		{"row", "<td>x", &Context{TagName: "tr"}, "| <td>\n|   \"x\""},
		{"table", "<tr><td>x", &Context{TagName: "table"}, "| <tbody>\n|   <tr>\n|     <td>\n|       \"x\""},
		{"cell", "<p>a</td>b", &Context{TagName: "td"}, "| <p>\n|   \"ab\""},
		{"title", "<b>&amp;</title>x", &Context{TagName: "title"}, "| \"<b>&</title>x\""},
		{"style", "a&amp;<b>", &Context{TagName: "style"}, "| \"a&amp;<b>\""},
		{"plaintext", "</plaintext>", &Context{TagName: "plaintext"}, "| \"</plaintext>\""},
		{"select", "<option>a<p>b", &Context{TagName: "select"}, "| <option>\n|   \"ab\""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			doc, nodes, errs, err := newTestParser().ParseFragment(tt.in, tt.context)
			require.NoError(t, err)
			require.NotNil(t, errs)
			assert.Equal(t, tt.expected, doc.DumpNodes(nodes))
		})
	}
}

func TestParseFragmentInsideForm(t *testing.T) {
	t.Parallel()
	doc, nodes, _, err := newTestParser().ParseFragment("<form><input>", &Context{TagName: "div", Ancestors: []string{"p", "FORM"}})
	require.NoError(t, err)
	assert.Equal(t, "| <input>", doc.DumpNodes(nodes))
}

func TestParseFragmentUnresolvableContext(t *testing.T) {
	contexts := []string{"", "1td", "t d", "td/", "a>b", "t\x00d"}
	for _, name := range contexts {
		name := name
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			doc, nodes, errs, err := newTestParser().ParseFragment("<p>x", &Context{TagName: name})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnresolvableContext))
			assert.Equal(t, ErrUnresolvableContext, errors.Cause(err))
			assert.Nil(t, doc)
			assert.Nil(t, nodes)
			assert.Nil(t, errs)
		})
	}
}

func TestQuirksModeFromDoctype(t *testing.T) {
	tests := []struct {
		in   string
		mode dom.QuirksMode
	}{
		{"<!DOCTYPE html>", dom.NoQuirks},
		{"<p>", dom.Quirks},
		{`<!DOCTYPE html PUBLIC "-//W3C//DTD HTML 4.01 Transitional//EN">`, dom.Quirks},
		{`<!DOCTYPE html PUBLIC "-//W3C//DTD HTML 4.01 Transitional//EN" "http://www.w3.org/TR/html4/loose.dtd">`, dom.LimitedQuirks},
		{`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">`, dom.NoQuirks},
		{"<!DOCTYPE foo>", dom.Quirks},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			doc, _, err := newTestParser().ParseDocument(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.mode, doc.QuirksMode())
		})
	}
}
