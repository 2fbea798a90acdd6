package bibsort

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bibScenario = `@article{boers2019,
    author = {N. Boers AND B. Goswami AND A. Rheinwalt},
    title = {Complex networks reveal global pattern of extreme-rainfall teleconnections},
    journal = {Nature},
    year = 2019,
    volume = {566},
    pages = {373-377},
    doi = {10.1038/s41586-018-0872-x}
}

@article{baxter1982,
    author = {Baxter, Rodney J.},
    title = {Exactly solved models in statistical mechanics},
    year = 1982,
    doi = {10.1016/baxter1982}
}
`

func sortedText(t *testing.T, text string, opts SortOptions) string {
	t.Helper()
	doc := mustParse(t, text, Options{})
	require.NoError(t, Sort(doc, opts))
	return doc.Text()
}

func TestSortConcreteScenario(t *testing.T) {
	out := sortedText(t, bibScenario, SortOptions{})
	assert.Less(t, strings.Index(out, "baxter1982"), strings.Index(out, "boers2019"))
	// entries come through with their internal formatting untouched
	assert.Contains(t, out, "@article{baxter1982,\n    author = {Baxter, Rodney J.},")
	assert.Contains(t, out, "    pages = {373-377},\n    doi = {10.1038/s41586-018-0872-x}\n}")
}

func TestSortIdempotent(t *testing.T) {
	once := sortedText(t, bibMixed, SortOptions{})
	twice := sortedText(t, once, SortOptions{})
	assert.Equal(t, once, twice)
}

func TestSortKeepsKeyMultiset(t *testing.T) {
	doc := mustParse(t, bibMixed, Options{})
	before := doc.Keys()
	require.NoError(t, Sort(doc, SortOptions{}))
	after := doc.Keys()
	sort.Strings(before)
	sort.Strings(after)
	assert.Equal(t, before, after)
}

func TestSortAdjacentPairsOrdered(t *testing.T) {
	doc := mustParse(t, bibMixed, Options{})
	require.NoError(t, Sort(doc, SortOptions{}))
	for i := 1; i < doc.EntryCount(); i++ {
		prev := strings.ToLower(doc.Entries[i-1].Key())
		cur := strings.ToLower(doc.Entries[i].Key())
		assert.LessOrEqual(t, prev, cur)
	}
}

func TestSortCaseFolding(t *testing.T) {
	const text = "@misc{BBB, n = {1}}\n@misc{aaa, n = {2}}\n"

	out := sortedText(t, text, SortOptions{})
	assert.Less(t, strings.Index(out, "aaa"), strings.Index(out, "BBB"))

	// byte order puts upper case first when folding is off
	out = sortedText(t, text, SortOptions{CaseSensitive: true})
	assert.Less(t, strings.Index(out, "BBB"), strings.Index(out, "aaa"))
}

func TestSortStability(t *testing.T) {
	const text = `@misc{Dup, note = {first}}
@misc{dup, note = {second}}
@misc{DUP, note = {third}}
`
	doc := mustParse(t, text, Options{})
	require.NoError(t, Sort(doc, SortOptions{}))
	require.Equal(t, 3, doc.EntryCount())
	assert.Contains(t, doc.Entries[0].Raw(), "first")
	assert.Contains(t, doc.Entries[1].Raw(), "second")
	assert.Contains(t, doc.Entries[2].Raw(), "third")
}

func TestSortPreamblePreserved(t *testing.T) {
	const text = "% keep me on top\n@misc{z, n = {1}}\n@misc{a, n = {2}}\n"
	out := sortedText(t, text, SortOptions{})
	assert.True(t, strings.HasPrefix(out, "% keep me on top\n"))
	assert.Less(t, strings.Index(out, "@misc{a"), strings.Index(out, "@misc{z"))
}

func TestSortEmptyKeysFirst(t *testing.T) {
	const text = "@misc{bbb, n = {1}}\n@article{, n = {template}}\n"
	doc := mustParse(t, text, Options{AllowEmptyKeys: true})
	require.NoError(t, Sort(doc, SortOptions{}))
	assert.Equal(t, "", doc.Entries[0].Key())
	assert.Equal(t, "bbb", doc.Entries[1].Key())
}

func TestSortCommentRecord(t *testing.T) {
	// @comment records sort like any other entry, keyed by their first token
	const text = "@misc{zzz, n = {1}}\n@comment{aardvark notes}\n"
	doc := mustParse(t, text, Options{})
	require.NoError(t, Sort(doc, SortOptions{}))
	assert.Equal(t, []string{"aardvark", "zzz"}, doc.Keys())
}

func TestSortEmptyDocument(t *testing.T) {
	doc := mustParse(t, "", Options{})
	assert.NoError(t, Sort(doc, SortOptions{}))
}

func TestSortUnknownKeyType(t *testing.T) {
	doc := mustParse(t, bibScenario, Options{})
	assert.Error(t, Sort(doc, SortOptions{By: SortKeyType(42)}))
}
