// Package catalog loads expected-count tables from disk, object storage or the
// copy embedded in the binary.
package catalog

import (
	"bytes"
	"context"
	"embed"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/carbocation/dicomaudit/audit"
	"github.com/carbocation/dicomaudit/objstore"
	"github.com/carbocation/pfx"
	"github.com/csimplestring/go-csv/detector"
	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"
)

//go:embed lookups/*
var embeddedLookups embed.FS

const defaultLookup = "lookups/default.tsv"

// Default returns the study catalog compiled into the binary.
func Default() (audit.Catalog, error) {
	fileBytes, err := embeddedLookups.ReadFile(defaultLookup)
	if err != nil {
		return audit.Catalog{}, pfx.Err(err)
	}

	entries, err := parseDelimited(fileBytes, '\t')
	if err != nil {
		return audit.Catalog{}, fmt.Errorf("%s: %w", defaultLookup, err)
	}

	return audit.NewCatalogFromEntries(entries)
}

// Load reads a catalog from a local path, gs:// or s3://. The format follows
// the extension: .json and .yaml/.yml hold either a sequence-to-count mapping
// or a list of {sequence, expected_files} entries; anything else is delimited
// text with a sequence,expected_files header and a sniffed delimiter.
func Load(ctx context.Context, path string, s3 objstore.S3Options) (audit.Catalog, error) {
	rc, err := objstore.Open(ctx, path, s3)
	if err != nil {
		return audit.Catalog{}, err
	}
	defer rc.Close()

	fileBytes, err := io.ReadAll(rc)
	if err != nil {
		return audit.Catalog{}, pfx.Err(err)
	}

	cat, err := Parse(fileBytes, filepath.Ext(path))
	if err != nil {
		return audit.Catalog{}, fmt.Errorf("catalog %s: %w", path, err)
	}

	return cat, nil
}

// Parse decodes catalog bytes in the format implied by ext.
func Parse(fileBytes []byte, ext string) (audit.Catalog, error) {
	var (
		entries []audit.CatalogEntry
		err     error
	)

	switch strings.ToLower(ext) {
	case ".json":
		entries, err = parseStructured(fileBytes, json.Unmarshal)
	case ".yaml", ".yml":
		entries, err = parseStructured(fileBytes, yaml.Unmarshal)
	default:
		entries, err = parseDelimited(fileBytes, DetermineDelimiter(bytes.NewReader(fileBytes)))
	}
	if err != nil {
		return audit.Catalog{}, err
	}

	return audit.NewCatalogFromEntries(entries)
}

// parseStructured accepts either shape. The mapping form loses file order, but
// the catalog sorts its keys anyway.
func parseStructured(fileBytes []byte, unmarshal func([]byte, interface{}) error) ([]audit.CatalogEntry, error) {
	mapping := make(map[string]int)
	if mapErr := unmarshal(fileBytes, &mapping); mapErr == nil {
		entries := make([]audit.CatalogEntry, 0, len(mapping))
		for name, count := range mapping {
			entries = append(entries, audit.CatalogEntry{Sequence: name, ExpectedFiles: count})
		}
		return entries, nil
	}

	var entries []audit.CatalogEntry
	if err := unmarshal(fileBytes, &entries); err != nil {
		return nil, pfx.Err(err)
	}

	return entries, nil
}

func parseDelimited(fileBytes []byte, delim rune) ([]audit.CatalogEntry, error) {
	cr := csv.NewReader(bytes.NewReader(fileBytes))
	cr.Comma = delim
	cr.Comment = '#'
	cr.TrimLeadingSpace = true

	entries := []audit.CatalogEntry{}
	if err := gocsv.UnmarshalCSV(cr, &entries); err != nil {
		return nil, pfx.Err(err)
	}

	return entries, nil
}

// DetermineDelimiter returns the single most likely rune that would delimit the
// values in the reader, assuming a CSV-like file. Only the usual table
// delimiters are accepted; anything else falls back to a comma.
func DetermineDelimiter(r io.Reader) rune {
	d := detector.New()
	delimiters := d.DetectDelimiter(r, '"')

	for _, candidate := range delimiters {
		if len(candidate) == 0 {
			continue
		}
		switch c := rune(candidate[0]); c {
		case ',', '\t', ';', '|':
			return c
		}
	}

	return ','
}
