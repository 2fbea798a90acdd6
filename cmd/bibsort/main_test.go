package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sortable = `@article{Zeta2020,
    author = {Z. Author},
    doi = {10.1/zeta}
}

@article{alpha2019,
    author = {A. Author},
    doi = {10.1/alpha}
}
`

func writeInput(t *testing.T, dir, text string) string {
	t.Helper()
	path := filepath.Join(dir, "literature.bib")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestRunSortsToStdout(t *testing.T) {
	path := writeInput(t, t.TempDir(), sortable)
	var out, errOut bytes.Buffer
	require.NoError(t, run(&out, &errOut, path, &options{}))
	assert.Less(t, strings.Index(out.String(), "alpha2019"), strings.Index(out.String(), "Zeta2020"))
	assert.Empty(t, errOut.String())
}

func TestRunWritesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeInput(t, dir, sortable)
	outPath := filepath.Join(dir, "sorted.bib")
	var out, errOut bytes.Buffer
	require.NoError(t, run(&out, &errOut, path, &options{out: outPath}))
	assert.Empty(t, out.String())

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Less(t, strings.Index(string(data), "alpha2019"), strings.Index(string(data), "Zeta2020"))
}

func TestRunOverwritesInputInPlace(t *testing.T) {
	path := writeInput(t, t.TempDir(), sortable)
	var out, errOut bytes.Buffer
	require.NoError(t, run(&out, &errOut, path, &options{out: path}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Less(t, strings.Index(string(data), "alpha2019"), strings.Index(string(data), "Zeta2020"))
}

func TestRunParseErrorLeavesOutputUntouched(t *testing.T) {
	dir := t.TempDir()
	path := writeInput(t, dir, "@article{bad,\n    title = {never closed\n")
	outPath := filepath.Join(dir, "sorted.bib")
	require.NoError(t, os.WriteFile(outPath, []byte("precious\n"), 0o644))

	var out, errOut bytes.Buffer
	err := run(&out, &errOut, path, &options{out: outPath})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed entry")

	data, readErr := os.ReadFile(outPath)
	require.NoError(t, readErr)
	assert.Equal(t, "precious\n", string(data))
}

func TestRunDuplicatesBlockOutput(t *testing.T) {
	dir := t.TempDir()
	path := writeInput(t, dir, "@misc{dup, n = {1}}\n@misc{DUP, n = {2}}\n")
	outPath := filepath.Join(dir, "sorted.bib")

	var out, errOut bytes.Buffer
	err := run(&out, &errOut, path, &options{out: outPath})
	require.Error(t, err)
	assert.Contains(t, errOut.String(), "duplicate key [dup]")
	assert.NoFileExists(t, outPath)

	// and the same input goes through once detection is off
	out.Reset()
	errOut.Reset()
	require.NoError(t, run(&out, &errOut, path, &options{noDupDetection: true}))
	assert.Contains(t, out.String(), "@misc{DUP")
}

func TestRunMissingInput(t *testing.T) {
	var out, errOut bytes.Buffer
	err := run(&out, &errOut, filepath.Join(t.TempDir(), "nope.bib"), &options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot read")
}

func TestRunAuthorSort(t *testing.T) {
	path := writeInput(t, t.TempDir(), sortable)
	var out, errOut bytes.Buffer
	require.NoError(t, run(&out, &errOut, path, &options{sortByAuthorField: true}))
	assert.Less(t, strings.Index(out.String(), "alpha2019"), strings.Index(out.String(), "Zeta2020"))
}

func TestHelpTouchesNoFile(t *testing.T) {
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"--help"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Sort bibtex files by citation key")
}
