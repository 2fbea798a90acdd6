package bibsort

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/cases"
)

var (
	doiFieldRE = regexp.MustCompile(`(?i)\bdoi\s*=\s*`)
	doiValueRE = regexp.MustCompile(`10\.[()\w./:-]+`)
)

type DedupOptions struct {
	// CaseSensitive compares citation keys as written; by default keys that
	// differ only in case count as duplicates, matching the sort order.
	CaseSensitive bool
	// CheckDOIs additionally flags entries whose doi fields carry the same
	// value. Entries without a doi field are ignored.
	CheckDOIs bool
	// AllowEmptyDOIs tolerates a doi field with no parseable 10.xxx value;
	// otherwise that is reported as an error.
	AllowEmptyDOIs bool
}

// DedupMap groups entries by the index term they collide on.
type DedupMap = map[string][]*Entry

// DedupReport lists the duplicate sets found in a document. Entries with
// empty citation keys are exempt from both checks.
type DedupReport struct {
	DuplicateKeys DedupMap
	DuplicateDOIs DedupMap
}

// SetCount returns the number of duplicate sets across both checks.
func (dr *DedupReport) SetCount() int {
	if dr == nil {
		return 0
	}
	return len(dr.DuplicateKeys) + len(dr.DuplicateDOIs)
}

// HasDuplicates reports whether any duplicate key or DOI was found.
func (dr *DedupReport) HasDuplicates() bool {
	return dr.SetCount() > 0
}

// Print writes one line per duplicate set naming the colliding term, the
// file and the lines involved.
func (dr *DedupReport) Print(w io.Writer) (err error) {
	if !dr.HasDuplicates() {
		return nil
	}
	_, err = fmt.Fprintf(w, "%d duplicate sets found\n", dr.SetCount())
	for _, label := range []struct {
		kind string
		set  DedupMap
	}{
		{"key", dr.DuplicateKeys},
		{"doi", dr.DuplicateDOIs},
	} {
		for _, term := range sortedTerms(label.set) {
			nodes := label.set[term]
			lines := make([]string, len(nodes))
			for i, e := range nodes {
				lines[i] = fmt.Sprintf("%d", e.Line())
			}
			_, err = fmt.Fprintf(w, "duplicate %s [%s] occurs %d times, at lines %s\n",
				label.kind, term, len(nodes), strings.Join(lines, ", "))
		}
	}
	return err
}

func (dr DedupReport) String() string {
	var b = new(bytes.Buffer)
	if err := dr.Print(b); err != nil {
		b.WriteString("error: " + err.Error())
	}
	return b.String()
}

func sortedTerms(set DedupMap) []string {
	terms := make([]string, 0, len(set))
	for term := range set {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// FindDuplicates scans doc for entries sharing a citation key and, when
// asked, a DOI. It never modifies the document. The returned error is not
// a duplicate finding but a doi field whose value could not be read at all,
// which the original file needs fixed before trusting the check.
func FindDuplicates(doc *Document, opts DedupOptions) (*DedupReport, error) {
	fold := cases.Fold()
	index := func(key string) string {
		if opts.CaseSensitive {
			return key
		}
		return fold.String(key)
	}

	keySet := make(DedupMap, doc.EntryCount())
	for _, e := range doc.Entries {
		if e.key == "" {
			continue
		}
		term := index(e.key)
		keySet[term] = append(keySet[term], e)
	}

	report := &DedupReport{
		DuplicateKeys: make(DedupMap),
		DuplicateDOIs: make(DedupMap),
	}
	for term, nodes := range keySet {
		if len(nodes) > 1 {
			report.DuplicateKeys[term] = nodes
		}
	}

	if !opts.CheckDOIs {
		return report, nil
	}
	doiSet := make(DedupMap, doc.EntryCount())
	for _, e := range doc.Entries {
		if e.key == "" {
			continue
		}
		doi, ok, err := entryDOI(e, opts.AllowEmptyDOIs)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		doiSet[doi] = append(doiSet[doi], e)
	}
	for term, nodes := range doiSet {
		if len(nodes) > 1 {
			report.DuplicateDOIs[term] = nodes
		}
	}
	return report, nil
}

// entryDOI pulls the doi field value out of the raw entry text. The value
// ends at the first comma so a missing DOI is not scraped from a later
// field by accident.
func entryDOI(e *Entry, allowEmpty bool) (doi string, ok bool, err error) {
	loc := doiFieldRE.FindStringIndex(e.raw)
	if loc == nil {
		return "", false, nil
	}
	rest := e.raw[loc[1]:]
	if value, _, found := strings.Cut(rest, ","); found {
		rest = value
	}
	m := doiValueRE.FindString(rest)
	if m == "" {
		if allowEmpty {
			return "", false, nil
		}
		return "", false, errors.Errorf(
			"cannot read the DOI of entry %q (line %d) although it has a doi field",
			e.key, e.Line())
	}
	return m, true, nil
}
