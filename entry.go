package bibsort

import (
	"io"
	"strings"
)

// Entry is one @type{key,...} record kept exactly as written, including any
// comment or blank text that sat between it and the previous entry. Sorting
// moves that text together with the record it precedes.
type Entry struct {
	raw     string // record text plus attached leading junk; never modified
	key     string // citation key as written in the file
	sortKey string // folded comparison key, filled in by Sort
	line    int    // 1-based line of the '@' marker
	offset  int    // byte offset of the '@' marker in the input
}

// Raw returns the entry text exactly as it appeared in the input.
func (e *Entry) Raw() string { return e.raw }

// Key returns the citation key with its original casing.
func (e *Entry) Key() string { return e.key }

func (e *Entry) Line() int   { return e.line }
func (e *Entry) Offset() int { return e.offset }

// Document is one parsed bib file: optional preamble text, the entries in
// their current order, and any text after the last entry. Writing the three
// parts back out in original order reproduces the input byte for byte.
type Document struct {
	Preamble string
	Entries  []*Entry
	Trailing string
	name     string
}

func newDocument(name string) *Document {
	return &Document{name: name}
}

func (d *Document) Name() string {
	return d.name
}

func (d *Document) EntryCount() int {
	return len(d.Entries)
}

func (d *Document) addEntry(e *Entry) {
	d.Entries = append(d.Entries, e)
}

// WriteTo writes the document in its current entry order.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	var written int64
	emit := func(s string) error {
		n, err := io.WriteString(w, s)
		written += int64(n)
		return err
	}
	if err := emit(d.Preamble); err != nil {
		return written, err
	}
	for _, e := range d.Entries {
		if err := emit(e.raw); err != nil {
			return written, err
		}
	}
	err := emit(d.Trailing)
	return written, err
}

// Text returns the document in its current entry order as a string.
func (d *Document) Text() string {
	var sb strings.Builder
	sb.Grow(len(d.Preamble) + len(d.Trailing))
	sb.WriteString(d.Preamble)
	for _, e := range d.Entries {
		sb.WriteString(e.raw)
	}
	sb.WriteString(d.Trailing)
	return sb.String()
}

// Keys returns the citation keys in current document order.
func (d *Document) Keys() []string {
	keys := make([]string, len(d.Entries))
	for i, e := range d.Entries {
		keys[i] = e.key
	}
	return keys
}
