package bibsort

import (
	"errors"
	"fmt"
)

// ErrorKind classifies parse failures so the caller can report them apart
// from plain IO errors.
type ErrorKind int8

const (
	// MalformedEntry is an entry whose nesting never returns to the top
	// level, or a record marker with no opening delimiter before EOF.
	MalformedEntry ErrorKind = iota + 1
	// MissingKey is an entry with no extractable citation key.
	MissingKey
	// EncodingError is input that is not valid UTF-8.
	EncodingError
)

func (k ErrorKind) String() string {
	switch k {
	case MalformedEntry:
		return "malformed entry"
	case MissingKey:
		return "missing key"
	case EncodingError:
		return "encoding error"
	}
	return "unknown error"
}

// ParseError reports what went wrong and where. Line is 1-based, Offset is
// the byte offset into the input; both point at the start of the offending
// entry, not at the byte where scanning gave up.
type ParseError struct {
	Kind   ErrorKind
	Line   int
	Offset int
	msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at line %d (byte %d): %s", e.Kind, e.Line, e.Offset, e.msg)
}

func parseErrorf(kind ErrorKind, line, offset int, format string, args ...any) *ParseError {
	return &ParseError{
		Kind:   kind,
		Line:   line,
		Offset: offset,
		msg:    fmt.Sprintf(format, args...),
	}
}

// AsParseError unwraps err to a *ParseError if there is one.
func AsParseError(err error) (*ParseError, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
