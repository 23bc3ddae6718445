package dom

import "strings"

var voidElements = map[string]bool{
	"area": true, "base": true, "basefont": true, "bgsound": true, "br": true,
	"col": true, "embed": true, "frame": true, "hr": true, "img": true,
	"input": true, "keygen": true, "link": true, "meta": true, "param": true,
	"source": true, "track": true, "wbr": true,
}

// IsVoid reports whether name is an element that never has content.
func IsVoid(name string) bool {
	return voidElements[name]
}

// https://html.spec.whatwg.org/#escapingString
func escapeString(s string, attrVal bool) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "\u00A0", "&nbsp;")
	if attrVal {
		s = strings.ReplaceAll(s, "\"", "&quot;")
	} else {
		s = strings.ReplaceAll(s, "<", "&lt;")
		s = strings.ReplaceAll(s, ">", "&gt;")
	}
	return s
}

// Render serializes the children of n as HTML.
// https://html.spec.whatwg.org/#serialising-html-fragments
func (d *Document) Render(n Handle) string {
	var b strings.Builder
	for _, c := range d.nodes[n].children {
		d.render(&b, c)
	}
	return b.String()
}

// RenderNodes serializes a node list, such as the result of a fragment parse.
func (d *Document) RenderNodes(nodes []Handle) string {
	var b strings.Builder
	for _, c := range nodes {
		d.render(&b, c)
	}
	return b.String()
}

func (d *Document) rawTextParent(name string) bool {
	switch name {
	case "style", "script", "xmp", "iframe", "noembed", "noframes", "plaintext":
		return true
	case "noscript":
		return d.scripting
	}
	return false
}

// startsWithNewline reports whether h is a pre, textarea or listing element
// whose first child is text beginning with a newline. The parser drops one
// leading newline in these elements, so the serializer writes an extra one.
func (d *Document) startsWithNewline(h Handle) bool {
	switch d.nodes[h].name {
	case "pre", "textarea", "listing":
	default:
		return false
	}
	children := d.nodes[h].children
	if len(children) == 0 {
		return false
	}
	first := &d.nodes[children[0]]
	return first.nodeType == TextNode && strings.HasPrefix(first.data, "\n")
}

func (d *Document) render(b *strings.Builder, h Handle) {
	n := &d.nodes[h]
	switch n.nodeType {
	case ElementNode:
		b.WriteString("<" + n.name)
		for _, a := range n.attrs.All() {
			b.WriteString(" " + a.Name + "=\"" + escapeString(a.Value, true) + "\"")
		}
		b.WriteString(">")
		if voidElements[n.name] {
			return
		}
		if d.startsWithNewline(h) {
			b.WriteString("\n")
		}
		for _, c := range n.children {
			d.render(b, c)
		}
		b.WriteString("</" + n.name + ">")
	case TextNode:
		if n.parent != NoHandle && d.rawTextParent(d.nodes[n.parent].name) {
			b.WriteString(n.data)
		} else {
			b.WriteString(escapeString(n.data, false))
		}
	case CommentNode:
		b.WriteString("<!--" + n.data + "-->")
	case DocumentTypeNode:
		b.WriteString("<!DOCTYPE " + n.name + ">")
	}
}
