package parser

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrUnresolvableContext is returned when a fragment parse is given a context
// element that cannot seed the tree builder.
var ErrUnresolvableContext = errors.New("unresolvable fragment context")

// ParseError is a recoverable anomaly found while tokenizing or building the
// tree. Pos is a byte offset into the normalized input.
type ParseError struct {
	Pos     int
	Line    int
	Col     int
	Message string
}

func (e ParseError) String() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Message)
}

// ParseErrorList collects parse errors up to a maximum. A list with a
// maximum of zero never records anything.
type ParseErrorList struct {
	max    int
	errors []ParseError
}

func newParseErrorList(max int) *ParseErrorList {
	if max < 0 {
		max = 0
	}
	return &ParseErrorList{max: max}
}

// CanAddError reports whether another error would be recorded.
func (l *ParseErrorList) CanAddError() bool {
	return len(l.errors) < l.max
}

func (l *ParseErrorList) add(e ParseError) {
	if l.CanAddError() {
		l.errors = append(l.errors, e)
	}
}

// Len returns the number of recorded errors.
func (l *ParseErrorList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.errors)
}

// Errors returns the recorded errors in the order they were found.
func (l *ParseErrorList) Errors() []ParseError {
	if l == nil {
		return nil
	}
	return l.errors
}

// MaxSize returns the cap the list was created with.
func (l *ParseErrorList) MaxSize() int {
	return l.max
}
