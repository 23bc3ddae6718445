package dom

import (
	"sort"
	"strings"
)

// Dump renders the subtree under n in the html5lib tree-construction test
// format: one node per line, prefixed with "| " and two spaces per level.
// The node itself is printed as "#document" for documents and omitted for
// other roots, so Dump of an element lists its children.
func (d *Document) Dump(n Handle) string {
	var b strings.Builder
	if d.nodes[n].nodeType == DocumentNode {
		b.WriteString("#document\n")
	}
	for _, c := range d.nodes[n].children {
		d.dumpNode(&b, c, 0)
	}
	return strings.TrimRight(b.String(), "\n")
}

// DumpNodes renders a node list, such as the result of a fragment parse.
func (d *Document) DumpNodes(nodes []Handle) string {
	var b strings.Builder
	for _, c := range nodes {
		d.dumpNode(&b, c, 0)
	}
	return strings.TrimRight(b.String(), "\n")
}

func indent(depth int) string {
	return "| " + strings.Repeat("  ", depth)
}

func (d *Document) dumpNode(b *strings.Builder, h Handle, depth int) {
	n := &d.nodes[h]
	b.WriteString(indent(depth))
	switch n.nodeType {
	case ElementNode:
		b.WriteString("<" + n.name + ">\n")
		attrs := append([]Attribute(nil), n.attrs.All()...)
		sort.Slice(attrs, func(i, j int) bool { return attrs[i].Name < attrs[j].Name })
		for _, a := range attrs {
			b.WriteString(indent(depth+1) + a.Name + "=\"" + a.Value + "\"\n")
		}
	case TextNode:
		b.WriteString("\"" + n.data + "\"\n")
	case CommentNode:
		b.WriteString("<!-- " + n.data + " -->\n")
	case DocumentTypeNode:
		b.WriteString("<!DOCTYPE " + n.name)
		if n.publicID != "" || n.systemID != "" {
			b.WriteString(" \"" + n.publicID + "\" \"" + n.systemID + "\"")
		}
		b.WriteString(">\n")
	}
	for _, c := range n.children {
		d.dumpNode(b, c, depth+1)
	}
}
