package main

import (
	"io"
	"os"
	"syscall"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/drgo/bibsort"
)

var version = "devel"

const longHelp = `Sorts a bibtex file by citation key and prints the result, leaving every
entry byte for byte as it was written. In

  @article{boers2019,
      author = {N. Boers and B. Goswami},
      ...
  }

the citation key is boers2019. Sorting is case-insensitive and stable
unless told otherwise.

Duplicate citation keys and DOIs are reported as errors by default; see the
--allow flags and --no-duplicate-detection to relax that.

Do NOT pipe the output into the input file: the shell truncates
literature.bib before bibsort has read it. Use -o instead, which is safe
even when it names the input file, because nothing is written until the
whole file has parsed.`

type options struct {
	out                   string
	caseSensitive         bool
	noDupDetection        bool
	allowEmptyKeys        bool
	allowDOIDuplicates    bool
	allowEmptyDOI         bool
	sortByAuthorField     bool
	sortByAuthorFirstName bool
	colorMode             string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if brokenPipe(err) {
			os.Exit(0)
		}
		errorf := color.New(color.FgRed, color.Bold).FprintfFunc()
		errorf(os.Stderr, "bibsort: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:     "bibsort [flags] <file.bib>",
		Short:   "Sort bibtex files by citation key",
		Long:    longHelp,
		Version: version,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			cmd.SilenceErrors = true
			if err := applyConfig(cmd, opts, args[0]); err != nil {
				return err
			}
			setupColor(opts.colorMode)
			return run(cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], opts)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&opts.out, "out", "o", "",
		"write the sorted file to this path instead of stdout; may name the input file")
	fl.BoolVarP(&opts.caseSensitive, "case-sensitive", "c", false,
		"make sorting and duplicate detection case sensitive")
	fl.BoolVarP(&opts.noDupDetection, "no-duplicate-detection", "n", false,
		"do not fail on duplicate citation keys or DOIs")
	fl.BoolVar(&opts.allowEmptyKeys, "allow-empty-keys", false,
		"accept entries without a citation key; they sort first and skip duplicate detection")
	fl.BoolVar(&opts.allowDOIDuplicates, "allow-doi-duplicates", false,
		"do not compare doi fields when looking for duplicates")
	fl.BoolVar(&opts.allowEmptyDOI, "allow-empty-doi", false,
		"tolerate doi fields with no readable value, like doi = {}")
	fl.BoolVar(&opts.sortByAuthorField, "sort-by-first-author-field", false,
		"sort by the first author as written in the author field")
	fl.BoolVar(&opts.sortByAuthorFirstName, "sort-by-first-author-first-name", false,
		"sort by the first author with 'Last, First' names turned around")
	fl.StringVar(&opts.colorMode, "color", "auto", "colorize diagnostics (auto|on|off)")
	cmd.MarkFlagsMutuallyExclusive("sort-by-first-author-field", "sort-by-first-author-first-name")
	return cmd
}

func setupColor(mode string) {
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		color.NoColor = !term.IsTerminal(int(os.Stderr.Fd()))
	}
}

// run is the whole pipeline: read all, parse all, validate all, and only
// then touch the output target. A file that fails to parse therefore never
// clobbers a pre-existing -o destination, input file included.
func run(stdout, stderr io.Writer, path string, opts *options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "cannot read %s", path)
	}
	doc, err := bibsort.Parse(string(data), path, bibsort.Options{
		AllowEmptyKeys: opts.allowEmptyKeys,
	})
	if err != nil {
		return errors.Wrapf(err, "%s", path)
	}
	if err := bibsort.Sort(doc, bibsort.SortOptions{CaseSensitive: opts.caseSensitive}); err != nil {
		return err
	}
	if !opts.noDupDetection {
		report, err := bibsort.FindDuplicates(doc, bibsort.DedupOptions{
			CaseSensitive:  opts.caseSensitive,
			CheckDOIs:      !opts.allowDOIDuplicates,
			AllowEmptyDOIs: opts.allowEmptyDOI,
		})
		if err != nil {
			return err
		}
		if report.HasDuplicates() {
			if err := report.Print(stderr); err != nil {
				return err
			}
			return errors.New("duplicate keys or DOIs detected; nothing was written " +
				"(see --no-duplicate-detection and the --allow flags)")
		}
	}
	switch {
	case opts.sortByAuthorField:
		err = bibsort.Sort(doc, bibsort.SortOptions{
			CaseSensitive: opts.caseSensitive, By: bibsort.ByFirstAuthorField,
		})
	case opts.sortByAuthorFirstName:
		err = bibsort.Sort(doc, bibsort.SortOptions{
			CaseSensitive: opts.caseSensitive, By: bibsort.ByFirstAuthorFirstName,
		})
	}
	if err != nil {
		return err
	}
	if opts.out == "" {
		_, err := doc.WriteTo(stdout)
		return err
	}
	err = saveWith(opts.out, func(w io.Writer) error {
		_, err := doc.WriteTo(w)
		return err
	})
	return errors.Wrapf(err, "cannot write %s", opts.out)
}

func saveWith(filename string, w func(io.Writer) error) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		ferr := f.Close()
		if err == nil {
			err = ferr
		}
	}()
	return w(f)
}

// brokenPipe reports a closed stdout, as in bibsort file.bib | head.
func brokenPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE)
}
