package parser_test

import (
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/heathj/gobrowse/parser"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

// dumpNetHTML renders an x/net/html tree in the same format as dom.Dump.
func dumpNetHTML(doc *html.Node) string {
	var b strings.Builder
	b.WriteString("#document\n")
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		dumpNetHTMLNode(&b, c, 0)
	}
	return strings.TrimRight(b.String(), "\n")
}

func dumpNetHTMLNode(b *strings.Builder, n *html.Node, depth int) {
	indent := "| " + strings.Repeat("  ", depth)
	b.WriteString(indent)
	switch n.Type {
	case html.ElementNode:
		b.WriteString("<" + n.Data + ">\n")
		attrs := append([]html.Attribute(nil), n.Attr...)
		sort.Slice(attrs, func(i, j int) bool { return attrs[i].Key < attrs[j].Key })
		for _, a := range attrs {
			b.WriteString(indent + "  " + a.Key + "=\"" + a.Val + "\"\n")
		}
	case html.TextNode:
		b.WriteString("\"" + n.Data + "\"\n")
	case html.CommentNode:
		b.WriteString("<!-- " + n.Data + " -->\n")
	case html.DoctypeNode:
		var public, system string
		for _, a := range n.Attr {
			switch a.Key {
			case "public":
				public = a.Val
			case "system":
				system = a.Val
			}
		}
		b.WriteString("<!DOCTYPE " + n.Data)
		if public != "" || system != "" {
			b.WriteString(" \"" + public + "\" \"" + system + "\"")
		}
		b.WriteString(">\n")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		dumpNetHTMLNode(b, c, depth+1)
	}
}

// TestAgainstNetHTML checks that recovery agrees with golang.org/x/net/html
// on inputs outside foreign content and templates.
func TestAgainstNetHTML(t *testing.T) {
	inputs := []string{
		"<p>One<p>Two",
		"<b>1<i>2</b>3</i>",
		"<b>1<p>2</b>3</p>",
		"<table><b>X</table>Y",
		"<table>a<tr>b</table>",
		"<!DOCTYPE html><title>a &amp; b</title><p class=x id=y>c",
		`<!DOCTYPE html PUBLIC "-//W3C//DTD HTML 4.01//EN" "http://www.w3.org/TR/html4/strict.dtd"><p>x`,
		"<!--a--><html><!--b--><head></head><!--c--><body></body><!--d--></html><!--e-->",
		"<table><tr><td>a<td>b</table>",
		"<ul><li>a<li>b</ul>",
		"<a href=x>1<a href=y>2",
		"<p><b>x</p>y",
		"a</p>b",
		"<br></br>",
		"<dl><dt>a<dd>b<dt>c</dl>",
		"<h1>a<h2>b</h2>c",
		"<form><form>x</form>y",
		"<button><p>a<button>b",
		"<div><a>1<div>2</a>3</div>",
		"<i><b><s>x</i>y",
		"<table><caption>c<td>d</table>",
		"<table><colgroup><col><tbody><tr><th>h</table>",
		"<!DOCTYPE html><p><table><td>x</table>",
		"<p><table></table>",
		"<frameset><frame></frameset>",
		"<head><meta charset=utf-8><base href=/><link rel=x></head><body>x",
		"<body><script>a<b</script><style>c</style>",
		"<textarea>\nx</textarea><pre>\n\ny</pre>",
		"<html lang=en><body id=a><html class=b><body id=c lang=fr>",
		"<nobr>a<nobr>b",
		"<marquee><p>a</marquee>b",
		"<div>&notin; &noti; &#x80; &#0;</div>",
	}

	p := parser.NewParser(parser.WithScripting(true), parser.WithLogger(discard()))
	for _, in := range inputs {
		in := in
		t.Run(in, func(t *testing.T) {
			t.Parallel()
			doc, _, err := p.ParseDocument(in)
			require.NoError(t, err)
			want, err := html.Parse(strings.NewReader(in))
			require.NoError(t, err)

			if d := cmp.Diff(dumpNetHTML(want), doc.Dump(doc.Document())); d != "" {
				t.Errorf("tree mismatch (-x/net/html +parser):\n%s", d)
			}
		})
	}
}
