package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDoc() (*Document, Handle, Handle) {
	d := NewDocument("about:blank")
	html := d.CreateElement("html", nil)
	d.AppendChild(d.Document(), html)
	body := d.CreateElement("body", nil)
	d.AppendChild(html, body)
	return d, html, body
}

func TestDocumentAppendMergesText(t *testing.T) {
	t.Parallel()
	d, _, body := buildDoc()
	d.AppendChild(body, d.CreateText("a"))
	d.AppendChild(body, d.CreateText("b"))
	require.Len(t, d.Children(body), 1)
	assert.Equal(t, "ab", d.Data(d.Children(body)[0]))

	d.AppendChild(body, d.CreateComment("c"))
	d.AppendChild(body, d.CreateText("d"))
	assert.Len(t, d.Children(body), 3)
}

func TestDocumentInsertBefore(t *testing.T) {
	t.Parallel()
	d, _, body := buildDoc()
	table := d.CreateElement("table", nil)
	d.AppendChild(body, table)

	d.InsertBefore(table, d.CreateText("x"))
	d.InsertBefore(table, d.CreateText("y"))
	children := d.Children(body)
	require.Len(t, children, 2)
	assert.Equal(t, "xy", d.Data(children[0]))
	assert.Equal(t, table, children[1])

	b := d.CreateElement("b", nil)
	d.InsertBefore(children[0], b)
	assert.Equal(t, []Handle{b, children[0], table}, d.Children(body))

	// moving a node detaches it from its old position
	d.InsertBefore(b, table)
	assert.Equal(t, table, d.Children(body)[0])
	assert.Len(t, d.Children(body), 3)

	detached := d.CreateElement("p", nil)
	d.InsertBefore(detached, d.CreateText("ignored"))
	assert.Empty(t, d.Children(detached))
}

func TestDocumentDetachAndReparent(t *testing.T) {
	t.Parallel()
	d, html, body := buildDoc()
	p := d.CreateElement("p", nil)
	d.AppendChild(body, p)
	d.AppendChild(p, d.CreateText("x"))
	d.AppendChild(p, d.CreateElement("i", nil))

	div := d.CreateElement("div", nil)
	d.ReparentChildren(p, div)
	assert.Empty(t, d.Children(p))
	require.Len(t, d.Children(div), 2)
	parent, ok := d.Parent(d.Children(div)[0])
	assert.True(t, ok)
	assert.Equal(t, div, parent)

	d.Detach(body)
	_, ok = d.Parent(body)
	assert.False(t, ok)
	assert.Empty(t, d.Children(html))
	d.Detach(body)

	_, ok = d.Parent(Handle(1000))
	assert.False(t, ok)
}

func TestDocumentMergeAttributes(t *testing.T) {
	t.Parallel()
	d := NewDocument("")
	attrs := NewAttributes()
	attrs.Put("lang", "en")
	html := d.CreateElement("html", attrs)
	attrs.Put("changed", "after")
	assert.False(t, d.Attributes(html).Has("changed"))

	more := NewAttributes()
	more.Put("lang", "fr")
	more.Put("class", "x")
	d.MergeAttributes(html, more)
	lang, _ := d.Attributes(html).Get("lang")
	assert.Equal(t, "en", lang)
	assert.True(t, d.Attributes(html).Has("class"))
}

func TestDocumentDoctypeAndQuirks(t *testing.T) {
	t.Parallel()
	d := NewDocument("https://example.com/")
	assert.Equal(t, NoHandle, d.Doctype())
	assert.Equal(t, NoQuirks, d.QuirksMode())

	d.SetDoctype("html", "pub", "sys")
	d.SetQuirksMode(LimitedQuirks)
	require.NotEqual(t, NoHandle, d.Doctype())
	assert.Equal(t, DocumentTypeNode, d.NodeType(d.Doctype()))
	pub, sys := d.DoctypeIDs(d.Doctype())
	assert.Equal(t, "pub", pub)
	assert.Equal(t, "sys", sys)
	assert.Equal(t, "limited-quirks", d.QuirksMode().String())
	assert.Equal(t, "https://example.com/", d.BaseURI())
	assert.Equal(t, NoHandle, d.DocumentElement())
}

func TestDocumentQueries(t *testing.T) {
	t.Parallel()
	d, html, body := buildDoc()
	assert.Equal(t, html, d.DocumentElement())
	assert.Equal(t, DocumentNode, d.NodeType(d.Document()))
	ul := d.CreateElement("ul", nil)
	d.AppendChild(body, ul)
	li := d.CreateElement("li", nil)
	d.AppendChild(ul, li)
	d.AppendChild(li, d.CreateText("one"))
	d.AppendChild(body, d.CreateText(" two"))

	assert.Equal(t, li, d.FirstElementByTag(d.Document(), "li"))
	assert.Equal(t, NoHandle, d.FirstElementByTag(d.Document(), "table"))
	assert.Equal(t, "one two", d.Text(d.Document()))
	assert.Equal(t, "li", d.TagName(li))
}
