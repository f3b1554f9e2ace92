// Package config holds the settings of an audit run, read from a JSON or YAML
// file and then overridden from the command line.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/carbocation/dicomaudit/archive"
	"github.com/carbocation/dicomaudit/audit"
	"github.com/carbocation/dicomaudit/catalog"
	"github.com/carbocation/dicomaudit/objstore"
	"github.com/carbocation/pfx"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

const (
	DefaultObservedOutput = "observed_sequences.csv"
	DefaultMissingOutput  = "missing_sequences.csv"
)

type Config struct {
	ConfigPath string `json:"-" yaml:"-"`

	// Archive root holding one directory per subject
	Root           string `json:"root" yaml:"root"`
	ObservedOutput string `json:"observed_output" yaml:"observed_output"`
	MissingOutput  string `json:"missing_output" yaml:"missing_output"`

	// Catalog is a path (local, gs:// or s3://) to an expected-count table.
	// ExpectedFiles, when non-empty, is used instead. With neither, the
	// built-in catalog applies.
	Catalog       string         `json:"catalog" yaml:"catalog"`
	ExpectedFiles map[string]int `json:"expected_files" yaml:"expected_files"`

	SkipExact           []string         `json:"skip_exact" yaml:"skip_exact"`
	SkipContains        []string         `json:"skip_contains" yaml:"skip_contains"`
	SkipGlobs           []string         `json:"skip_globs" yaml:"skip_globs"`
	RepresentativeGlobs []string         `json:"representative_globs" yaml:"representative_globs"`
	NameSource          audit.NameSource `json:"name_source" yaml:"name_source"`

	Auxiliary      bool              `json:"auxiliary" yaml:"auxiliary"`
	AuxiliaryRules *archive.AuxRules `json:"auxiliary_rules" yaml:"auxiliary_rules"`

	// Upload is a gs:// or s3:// prefix (or a local directory) that both
	// tables are copied to after they are written
	Upload          string             `json:"upload" yaml:"upload"`
	BigQueryProject string             `json:"bigquery_project" yaml:"bigquery_project"`
	BigQueryDataset string             `json:"bigquery_dataset" yaml:"bigquery_dataset"`
	S3              objstore.S3Options `json:"s3" yaml:"s3"`
}

// Default is the configuration used when no file is given.
func Default() Config {
	skip := archive.DefaultSkipRules()

	return Config{
		ObservedOutput:      DefaultObservedOutput,
		MissingOutput:       DefaultMissingOutput,
		SkipExact:           skip.Exact,
		SkipContains:        skip.Contains,
		SkipGlobs:           skip.Globs,
		RepresentativeGlobs: append([]string(nil), archive.DefaultRepresentativeGlobs...),
		NameSource:          audit.NameFromProtocol,
	}
}

// ParseConfigFromPath reads a .json, .yaml or .yml file over the defaults, so
// keys absent from the file keep their default values.
func ParseConfigFromPath(path string) (Config, error) {
	out := Default()

	path, err := homedir.Expand(path)
	if err != nil {
		return out, pfx.Err(err)
	}
	out.ConfigPath = path

	fileBytes, err := os.ReadFile(path)
	if err != nil {
		return out, pfx.Err(err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(fileBytes, &out); err != nil {
			if e, ok := err.(*json.SyntaxError); ok {
				log.Printf("syntax error at byte offset %d", e.Offset)
			}
			return out, pfx.Err(err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(fileBytes, &out); err != nil {
			return out, pfx.Err(err)
		}
	default:
		return out, fmt.Errorf("config %s: unrecognized extension %q, expected .json, .yaml or .yml", path, ext)
	}

	err = out.ExpandHome()

	return out, err
}

// ExpandHome interprets a leading ~ in every local path setting.
func (c *Config) ExpandHome() error {
	for _, p := range []*string{&c.Root, &c.ObservedOutput, &c.MissingOutput, &c.Catalog, &c.Upload} {
		if objstore.IsRemote(*p) {
			continue
		}

		expanded, err := homedir.Expand(*p)
		if err != nil {
			return pfx.Err(err)
		}
		*p = expanded
	}

	return nil
}

func (c Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("no archive root given")
	}

	if c.ObservedOutput == "" || c.MissingOutput == "" {
		return fmt.Errorf("both output paths are required")
	}

	if !c.NameSource.Valid() {
		return fmt.Errorf("name_source %q must be %q or %q", c.NameSource, audit.NameFromProtocol, audit.NameFromFolder)
	}

	if (c.BigQueryProject == "") != (c.BigQueryDataset == "") {
		return fmt.Errorf("bigquery_project and bigquery_dataset must be given together")
	}

	if c.Upload != "" {
		if _, err := objstore.Parse(c.Upload); err != nil {
			return fmt.Errorf("upload: %w", err)
		}
	}

	return c.Walker().Validate()
}

// Walker builds the archive walker these settings describe.
func (c Config) Walker() archive.Walker {
	w := archive.NewWalker()
	w.Skip = archive.SkipRules{
		Exact:    c.SkipExact,
		Contains: c.SkipContains,
		Globs:    c.SkipGlobs,
	}
	w.RepresentativeGlobs = c.RepresentativeGlobs
	w.Auxiliary = c.Auxiliary
	if c.AuxiliaryRules != nil {
		w.AuxRules = *c.AuxiliaryRules
	}

	return w
}

// LoadCatalog resolves the expected-count table: inline entries first, then
// the catalog path, then the built-in catalog.
func (c Config) LoadCatalog(ctx context.Context) (audit.Catalog, error) {
	switch {
	case len(c.ExpectedFiles) > 0:
		return audit.NewCatalog(c.ExpectedFiles)
	case c.Catalog != "":
		return catalog.Load(ctx, c.Catalog, c.S3)
	}

	return catalog.Default()
}
