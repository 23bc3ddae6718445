package parser

import (
	"fmt"
	"regexp"
	"sync"
	"testing"

	"github.com/heathj/gobrowse/parser/dom"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	t.Parallel()
	doc, err := Parse("<title>x</title><p>y")
	require.NoError(t, err)
	assert.Equal(t, "xy", doc.Text(doc.Document()))

	doc, errs, err := NewParser(WithLogger(discardLogger())).ParseDocument("<p>\x00")
	require.NoError(t, err)
	assert.Equal(t, 0, errs.Len())
	assert.Equal(t, 0, errs.MaxSize())
	assert.Equal(t, dom.Quirks, doc.QuirksMode())
}

func TestParserMaxErrors(t *testing.T) {
	in := "</a></b></c></d></e>"
	tests := []struct {
		max  int
		want int
	}{
		{0, 0},
		{1, 1},
		{3, 3},
		{100, 6},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(fmt.Sprintf("max=%d", tt.max), func(t *testing.T) {
			t.Parallel()
			_, errs, err := NewParser(WithMaxErrors(tt.max), WithLogger(discardLogger())).ParseDocument(in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, errs.Len())
			assert.Equal(t, tt.max, errs.MaxSize())
		})
	}
}

func TestParserCasePolicy(t *testing.T) {
	t.Parallel()
	in := `<svg viewBox="0 0 1 1"><clipPath></clipPath></svg><DIV>x</DIV>`

	doc, _, err := NewParser(WithLogger(discardLogger())).ParseDocument(in)
	require.NoError(t, err)
	body := doc.FirstElementByTag(doc.Document(), "body")
	require.NotEqual(t, dom.NoHandle, body)
	assert.NotEqual(t, dom.NoHandle, doc.FirstElementByTag(body, "clippath"))
	assert.True(t, doc.Attributes(doc.FirstElementByTag(body, "svg")).Has("viewbox"))

	doc, _, err = NewParser(WithSettings(PreserveCaseSettings), WithLogger(discardLogger())).ParseDocument(in)
	require.NoError(t, err)
	body = doc.FirstElementByTag(doc.Document(), "body")
	assert.NotEqual(t, dom.NoHandle, doc.FirstElementByTag(body, "clipPath"))
	assert.NotEqual(t, dom.NoHandle, doc.FirstElementByTag(body, "DIV"))
	assert.True(t, doc.Attributes(doc.FirstElementByTag(body, "svg")).Has("viewBox"))
}

func TestParserScripting(t *testing.T) {
	t.Parallel()
	in := "<head><noscript><p>x</p></noscript></head>"

	doc, _, err := NewParser(WithScripting(true), WithLogger(discardLogger())).ParseDocument(in)
	require.NoError(t, err)
	noscript := doc.FirstElementByTag(doc.Document(), "noscript")
	require.NotEqual(t, dom.NoHandle, noscript)
	assert.Equal(t, "<p>x</p>", doc.Text(noscript))

	doc, _, err = NewParser(WithScripting(false), WithLogger(discardLogger())).ParseDocument(in)
	require.NoError(t, err)
	assert.NotEqual(t, dom.NoHandle, doc.FirstElementByTag(doc.Document(), "p"))
}

func TestParserBaseURI(t *testing.T) {
	t.Parallel()
	doc, _, err := NewParser(WithBaseURI("https://example.com/"), WithLogger(discardLogger())).ParseDocument("")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/", doc.BaseURI())
}

func TestParseDocumentIntoNilSink(t *testing.T) {
	t.Parallel()
	errs, err := NewParser(WithLogger(discardLogger())).ParseDocumentInto("<p>", nil)
	assert.Error(t, err)
	assert.Nil(t, errs)
}

func TestParserTokens(t *testing.T) {
	t.Parallel()
	tokens, errs := NewParser(WithMaxErrors(10), WithLogger(discardLogger())).Tokens("&amp;&#65;&unknownref;")
	assert.Equal(t, []string{`"&A&unknownref;"`, "EOF"}, tokenStrings(tokens))
	assert.Equal(t, []string{"unknown-named-character-reference"}, errorMessages(errs))

	tokens, errs = NewParser(WithMaxErrors(10), WithLogger(discardLogger())).Tokens("<br/><img/>")
	assert.Equal(t, []string{"<br>", "<img>", "EOF"}, tokenStrings(tokens))
	assert.Equal(t, 0, errs.Len())
}

func TestParserLogging(t *testing.T) {
	t.Parallel()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	_, errs, err := NewParser(WithMaxErrors(5), WithLogger(logger)).ParseDocument("<p>\x00")
	require.NoError(t, err)
	assert.Equal(t, []string{"missing-doctype", "unexpected-null-character", "unexpected-null-character"}, errorMessages(errs))

	entries := hook.AllEntries()
	require.Len(t, entries, 4)
	assert.Equal(t, "treebuilder", entries[0].Data["component"])
	assert.Equal(t, "tokenizer", entries[1].Data["component"])
	assert.Equal(t, "unexpected-null-character", entries[1].Message)
	assert.Equal(t, 1, entries[1].Data["line"])
	assert.Equal(t, 4, entries[1].Data["col"])
	assert.Equal(t, "treebuilder", entries[2].Data["component"])

	summary := hook.LastEntry()
	assert.Equal(t, logrus.DebugLevel, summary.Level)
	assert.Equal(t, "parse finished with errors", summary.Message)
	assert.Equal(t, 3, summary.Data["errors"])
	assert.Equal(t, 5, summary.Data["max"])
}

func TestParserConcurrentUse(t *testing.T) {
	t.Parallel()
	p := NewParser(WithMaxErrors(10), WithLogger(discardLogger()))
	in := "<table><b>X</table>Y"
	want, _, err := p.ParseDocument(in)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			doc, _, err := p.ParseDocument(in)
			if err == nil {
				results[i] = doc.Dump(doc.Document())
			}
		}(i)
	}
	wg.Wait()
	for _, got := range results {
		assert.Equal(t, want.Dump(want.Document()), got)
	}
}

func TestTreeBuilderErrorCodes(t *testing.T) {
	t.Parallel()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	_, errs, err := NewParser(WithMaxErrors(5), WithLogger(logger)).ParseDocument("<!DOCTYPE html></x>")
	require.NoError(t, err)
	assert.Equal(t, []string{"unexpected-end-tag"}, errorMessages(errs))

	entry := hook.AllEntries()[0]
	assert.Equal(t, "treebuilder", entry.Data["component"])
	assert.Equal(t, "</x>", entry.Data["token"])
	assert.Equal(t, "before html", entry.Data["mode"])

	code := regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	inputs := []string{
		"<frameset>\x00 x</frameset><p>",
		"<table>x<caption><b></caption><tr><td><i></td></table>",
		"<b><p></b></i></p><div>",
		"<!DOCTYPE foo><html><head><head></html><body></html>",
	}
	for _, in := range inputs {
		_, errs, err := newTestParser().ParseDocument(in)
		require.NoError(t, err)
		require.NotZero(t, errs.Len(), in)
		for _, e := range errs.Errors() {
			assert.Regexp(t, code, e.Message, in)
		}
	}
}

func TestRenderRoundTrip(t *testing.T) {
	wrap := func(head, body string) string {
		return "<!DOCTYPE html><html><head>" + head + "</head><body>" + body + "</body></html>"
	}
	tests := []struct {
		name      string
		in        string
		scripting bool
	}{
		{"pre leading newline", wrap("", "<pre>\n\nx</pre>"), false},
		{"pre single newline", wrap("", "<pre>\nx</pre><pre>y</pre>"), false},
		{"textarea leading newline", wrap("", "<textarea>\n\nfoo &amp; bar</textarea>"), false},
		{"listing leading newline", wrap("", "<listing>\n\ny</listing>"), false},
		{"noscript in head with scripting", wrap("<noscript>&lt;b&gt;</noscript>", ""), true},
		{"noscript in body with scripting", wrap("", "<noscript><p>x &amp; y</p></noscript>"), true},
		{"noscript without scripting", wrap("", "<noscript><p>x &amp; y</p></noscript>"), false},
		{"script and style", wrap(`<style>a > b { color: red }</style><script>if (a < b && c) { x = "</p>" }</script>`, ""), false},
		{"title", wrap("<title>a &amp; b &lt;c&gt;</title>", ""), false},
		{"attributes", wrap("", `<a href="x?a=1&amp;b=2" title="say &quot;hi&quot; &amp; bye">t</a><img alt="a&lt;b">`), false},
		{"text escapes", wrap("", "<p>a &lt; b &amp;&nbsp;c</p>"), false},
		{"tables and lists", wrap("", "<table><tbody><tr><td>1</td><th>2</th></tr></tbody></table><ul><li>a</li><li>b</li></ul>"), false},
		{"comments", wrap("<!--h-->", "<div><!-- x --></div>"), false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := NewParser(WithScripting(tt.scripting), WithLogger(discardLogger()))
			first, _, err := p.ParseDocument(tt.in)
			require.NoError(t, err)
			rendered := first.Render(first.Document())
			second, _, err := p.ParseDocument(rendered)
			require.NoError(t, err)
			assert.Equal(t, first.Dump(first.Document()), second.Dump(second.Document()), "rendered as %q", rendered)
		})
	}
}
