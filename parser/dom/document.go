// Package dom holds the node tree the HTML parser builds. Nodes live in a
// flat arena owned by a Document and are addressed by Handle, so the parser's
// open element stack and formatting list never hold pointers into the tree.
package dom

import "strings"

// NodeType follows the DOM node type numbering.
type NodeType uint16

const (
	ElementNode NodeType = iota + 1
	AttrNode
	TextNode
	CDATASectionNode
	ProcessingInstructionNode
	CommentNode
	DocumentNode
	DocumentTypeNode
	DocumentFragmentNode
)

// QuirksMode is the rendering mode selected from the document's DOCTYPE.
type QuirksMode uint8

const (
	NoQuirks QuirksMode = iota
	Quirks
	LimitedQuirks
)

func (q QuirksMode) String() string {
	switch q {
	case Quirks:
		return "quirks"
	case LimitedQuirks:
		return "limited-quirks"
	default:
		return "no-quirks"
	}
}

// Handle addresses a node inside a Document.
type Handle int

// NoHandle is the zero value for "no node".
const NoHandle Handle = -1

type node struct {
	nodeType NodeType
	name     string
	data     string
	publicID string
	systemID string
	attrs    *Attributes
	parent   Handle
	children []Handle
}

// Document is an arena of nodes. Handle 0 is always the document node.
type Document struct {
	nodes      []node
	baseURI    string
	quirksMode QuirksMode
	doctype    Handle
	scripting  bool
}

// NewDocument returns an empty document rooted at handle 0.
func NewDocument(baseURI string) *Document {
	d := &Document{
		baseURI: baseURI,
		doctype: NoHandle,
	}
	d.add(node{nodeType: DocumentNode, name: "#document"})
	return d
}

func (d *Document) add(n node) Handle {
	n.parent = NoHandle
	d.nodes = append(d.nodes, n)
	return Handle(len(d.nodes) - 1)
}

func (d *Document) valid(h Handle) bool {
	return h >= 0 && int(h) < len(d.nodes)
}

// Document returns the handle of the document node.
func (d *Document) Document() Handle {
	return 0
}

// BaseURI returns the location the document was parsed for.
func (d *Document) BaseURI() string {
	return d.baseURI
}

// QuirksMode returns the mode chosen while parsing.
func (d *Document) QuirksMode() QuirksMode {
	return d.quirksMode
}

// SetQuirksMode records the mode chosen from the DOCTYPE.
func (d *Document) SetQuirksMode(q QuirksMode) {
	d.quirksMode = q
}

// Scripting reports whether the document was parsed with scripting enabled.
func (d *Document) Scripting() bool {
	return d.scripting
}

// SetScripting records the scripting flag the document is parsed with. It
// decides whether noscript content is serialized as raw text.
func (d *Document) SetScripting(enabled bool) {
	d.scripting = enabled
}

// CreateElement creates a detached element. The attributes are copied.
func (d *Document) CreateElement(name string, attrs *Attributes) Handle {
	return d.add(node{nodeType: ElementNode, name: name, attrs: attrs.Clone()})
}

// CreateText creates a detached text node.
func (d *Document) CreateText(data string) Handle {
	return d.add(node{nodeType: TextNode, name: "#text", data: data})
}

// CreateComment creates a detached comment node.
func (d *Document) CreateComment(data string) Handle {
	return d.add(node{nodeType: CommentNode, name: "#comment", data: data})
}

// SetDoctype appends a document type node to the document.
func (d *Document) SetDoctype(name, publicID, systemID string) {
	h := d.add(node{nodeType: DocumentTypeNode, name: name, publicID: publicID, systemID: systemID})
	d.AppendChild(0, h)
	d.doctype = h
}

// Doctype returns the document type node, or NoHandle.
func (d *Document) Doctype() Handle {
	return d.doctype
}

// Detach removes n from its parent, if it has one.
func (d *Document) Detach(n Handle) {
	p := d.nodes[n].parent
	if p == NoHandle {
		return
	}
	children := d.nodes[p].children
	for i, c := range children {
		if c == n {
			d.nodes[p].children = append(children[:i:i], children[i+1:]...)
			break
		}
	}
	d.nodes[n].parent = NoHandle
}

// AppendChild makes child the last child of parent, moving it if it is
// already attached. A text child directly following a text node is merged
// into it.
func (d *Document) AppendChild(parent, child Handle) {
	d.Detach(child)
	siblings := d.nodes[parent].children
	if d.nodes[child].nodeType == TextNode && len(siblings) > 0 {
		last := siblings[len(siblings)-1]
		if d.nodes[last].nodeType == TextNode {
			d.nodes[last].data += d.nodes[child].data
			return
		}
	}
	d.nodes[parent].children = append(siblings, child)
	d.nodes[child].parent = parent
}

// InsertBefore inserts child into anchor's parent immediately before anchor.
// A text child directly following a text node is merged into it.
func (d *Document) InsertBefore(anchor, child Handle) {
	parent := d.nodes[anchor].parent
	if parent == NoHandle {
		return
	}
	d.Detach(child)
	siblings := d.nodes[parent].children
	at := 0
	for i, c := range siblings {
		if c == anchor {
			at = i
			break
		}
	}
	if d.nodes[child].nodeType == TextNode && at > 0 {
		prev := siblings[at-1]
		if d.nodes[prev].nodeType == TextNode {
			d.nodes[prev].data += d.nodes[child].data
			return
		}
	}
	siblings = append(siblings, NoHandle)
	copy(siblings[at+1:], siblings[at:])
	siblings[at] = child
	d.nodes[parent].children = siblings
	d.nodes[child].parent = parent
}

// ReparentChildren moves every child of from to the end of to.
func (d *Document) ReparentChildren(from, to Handle) {
	children := d.nodes[from].children
	d.nodes[from].children = nil
	for _, c := range children {
		d.nodes[c].parent = NoHandle
		d.AppendChild(to, c)
	}
}

// MergeAttributes adds every attribute of attrs that n does not have yet.
func (d *Document) MergeAttributes(n Handle, attrs *Attributes) {
	if d.nodes[n].attrs == nil {
		d.nodes[n].attrs = NewAttributes()
	}
	for _, a := range attrs.All() {
		d.nodes[n].attrs.Put(a.Name, a.Value)
	}
}

// Parent returns the parent of n.
func (d *Document) Parent(n Handle) (Handle, bool) {
	if !d.valid(n) {
		return NoHandle, false
	}
	p := d.nodes[n].parent
	return p, p != NoHandle
}

// TagName returns the element name, or the node name for non-elements.
func (d *Document) TagName(n Handle) string {
	return d.nodes[n].name
}

// Attributes returns the element's attributes. Non-elements return nil.
func (d *Document) Attributes(n Handle) *Attributes {
	return d.nodes[n].attrs
}

// NodeType returns the type of n.
func (d *Document) NodeType(n Handle) NodeType {
	return d.nodes[n].nodeType
}

// Data returns the character data of a text or comment node.
func (d *Document) Data(n Handle) string {
	return d.nodes[n].data
}

// DoctypeIDs returns the public and system identifiers of a doctype node.
func (d *Document) DoctypeIDs(n Handle) (publicID, systemID string) {
	return d.nodes[n].publicID, d.nodes[n].systemID
}

// Children returns the child handles of n. The slice must not be modified.
func (d *Document) Children(n Handle) []Handle {
	return d.nodes[n].children
}

// DocumentElement returns the first element child of the document.
func (d *Document) DocumentElement() Handle {
	for _, c := range d.nodes[0].children {
		if d.nodes[c].nodeType == ElementNode {
			return c
		}
	}
	return NoHandle
}

// FirstElementByTag walks the subtree under n in document order and returns
// the first element with the given name.
func (d *Document) FirstElementByTag(n Handle, name string) Handle {
	for _, c := range d.nodes[n].children {
		if d.nodes[c].nodeType != ElementNode {
			continue
		}
		if d.nodes[c].name == name {
			return c
		}
		if found := d.FirstElementByTag(c, name); found != NoHandle {
			return found
		}
	}
	return NoHandle
}

// Text returns the concatenated text of every text node under n.
func (d *Document) Text(n Handle) string {
	var b strings.Builder
	d.writeText(&b, n)
	return b.String()
}

func (d *Document) writeText(b *strings.Builder, n Handle) {
	if d.nodes[n].nodeType == TextNode {
		b.WriteString(d.nodes[n].data)
		return
	}
	for _, c := range d.nodes[n].children {
		d.writeText(b, c)
	}
}
