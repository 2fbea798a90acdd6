package main

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// configName is looked up in the input file's directory and its parents,
// so a project can keep its bibsort defaults next to its .tex sources.
const configName = "bibsort.toml"

type config struct {
	CaseSensitive  bool       `toml:"case_sensitive"`
	AllowEmptyKeys bool       `toml:"allow_empty_keys"`
	Sort           sortConfig `toml:"sort"`
	Duplicates     dupConfig  `toml:"duplicates"`
}

type sortConfig struct {
	ByFirstAuthorField     bool `toml:"by_first_author_field"`
	ByFirstAuthorFirstName bool `toml:"by_first_author_first_name"`
}

type dupConfig struct {
	Disable            bool `toml:"disable"`
	AllowDOIDuplicates bool `toml:"allow_doi_duplicates"`
	AllowEmptyDOI      bool `toml:"allow_empty_doi"`
}

func findConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, errors.Wrap(err, "cannot resolve config search directory")
	}
	for {
		candidate := filepath.Join(dir, configName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, errors.Wrapf(err, "cannot stat %s", candidate)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

func loadConfig(path string) (config, error) {
	var cfg config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "cannot read config %s", path)
	}
	return cfg, nil
}

// applyConfig fills options from the nearest bibsort.toml. Flags given on
// the command line always win over config values.
func applyConfig(cmd *cobra.Command, opts *options, inputPath string) error {
	path, ok, err := findConfig(filepath.Dir(inputPath))
	if err != nil || !ok {
		return err
	}
	cfg, err := loadConfig(path)
	if err != nil {
		return err
	}
	changed := cmd.Flags().Changed
	if !changed("case-sensitive") {
		opts.caseSensitive = cfg.CaseSensitive
	}
	if !changed("allow-empty-keys") {
		opts.allowEmptyKeys = cfg.AllowEmptyKeys
	}
	if !changed("no-duplicate-detection") {
		opts.noDupDetection = cfg.Duplicates.Disable
	}
	if !changed("allow-doi-duplicates") {
		opts.allowDOIDuplicates = cfg.Duplicates.AllowDOIDuplicates
	}
	if !changed("allow-empty-doi") {
		opts.allowEmptyDOI = cfg.Duplicates.AllowEmptyDOI
	}
	if !changed("sort-by-first-author-field") && !changed("sort-by-first-author-first-name") {
		opts.sortByAuthorField = cfg.Sort.ByFirstAuthorField
		opts.sortByAuthorFirstName = cfg.Sort.ByFirstAuthorFirstName
	}
	return nil
}
