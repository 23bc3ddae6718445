package parser

import "github.com/heathj/gobrowse/parser/dom"

// TreeSink receives the tree mutations made while parsing. The builder only
// reads back names, attributes and parents.
type TreeSink interface {
	Document() dom.Handle
	CreateElement(name string, attrs *dom.Attributes) dom.Handle
	CreateText(data string) dom.Handle
	CreateComment(data string) dom.Handle
	// AppendChild and InsertBefore move a node that already has a parent and
	// merge text into an adjacent preceding text node.
	AppendChild(parent, child dom.Handle)
	InsertBefore(anchor, child dom.Handle)
	Detach(n dom.Handle)
	ReparentChildren(from, to dom.Handle)
	Parent(n dom.Handle) (dom.Handle, bool)
	TagName(n dom.Handle) string
	Attributes(n dom.Handle) *dom.Attributes
	MergeAttributes(n dom.Handle, attrs *dom.Attributes)
	SetDoctype(name, publicID, systemID string)
	SetQuirksMode(mode dom.QuirksMode)
}

var _ TreeSink = (*dom.Document)(nil)
