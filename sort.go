package bibsort

import (
	"fmt"
	"sort"

	"golang.org/x/text/cases"
)

// SortKeyType selects what Sort compares.
type SortKeyType int8

const (
	// ByCitationKey orders entries by their citation key.
	ByCitationKey SortKeyType = iota
	// ByFirstAuthorField orders by the first author exactly as written in
	// the author field.
	ByFirstAuthorField
	// ByFirstAuthorFirstName orders by the first author with a
	// "Last, First" name turned around to "First Last".
	ByFirstAuthorFirstName
)

type SortOptions struct {
	// CaseSensitive compares keys as written instead of case-folding them.
	CaseSensitive bool
	By            SortKeyType
}

// Sort reorders doc's entries in place, ascending by the selected key.
// The sort is stable: entries whose keys compare equal keep their original
// relative order. The preamble and trailing text never move, and no entry
// text is modified. Sorting an empty document is a no-op.
func Sort(doc *Document, opts SortOptions) error {
	var keyOf func(*Entry) string
	switch opts.By {
	case ByCitationKey:
		keyOf = func(e *Entry) string { return e.key }
	case ByFirstAuthorField:
		keyOf = FirstAuthor
	case ByFirstAuthorFirstName:
		keyOf = FirstAuthorFirstName
	default:
		return fmt.Errorf("unknown sort key type %d", opts.By)
	}
	fold := cases.Fold()
	for _, e := range doc.Entries {
		k := keyOf(e)
		if !opts.CaseSensitive {
			k = fold.String(k)
		}
		e.sortKey = k
	}
	recs := doc.Entries
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].sortKey < recs[j].sortKey
	})
	return nil
}
