package audit

import (
	"fmt"
	"sort"
)

// CatalogEntry is one expected sequence and the number of files a complete
// acquisition of it produces.
type CatalogEntry struct {
	Sequence      string `csv:"sequence" json:"sequence" yaml:"sequence"`
	ExpectedFiles int    `csv:"expected_files" json:"expected_files" yaml:"expected_files"`
}

// Catalog is the read-only table of canonical sequence name => expected file
// count. Build one with NewCatalog and pass it around by value; nothing in
// this package mutates it after construction.
type Catalog struct {
	expected map[string]int
	keys     []string
}

// NewCatalog canonicalizes every key with Normalize. Negative counts, empty
// keys and two keys that normalize to the same name are rejected. An expected
// count of zero is valid and means the sequence only needs to be present.
func NewCatalog(expected map[string]int) (Catalog, error) {
	out := Catalog{
		expected: make(map[string]int, len(expected)),
		keys:     make([]string, 0, len(expected)),
	}

	// Iterate in a fixed order so that collision errors are reproducible
	raw := make([]string, 0, len(expected))
	for k := range expected {
		raw = append(raw, k)
	}
	sort.Strings(raw)

	origin := make(map[string]string, len(expected))
	for _, name := range raw {
		count := expected[name]
		key := Normalize(name)

		if key == "" {
			return Catalog{}, fmt.Errorf("catalog: sequence name %q is empty after normalization", name)
		}

		if count < 0 {
			return Catalog{}, fmt.Errorf("catalog: sequence %q has negative expected file count %d", name, count)
		}

		if prior, exists := origin[key]; exists {
			return Catalog{}, fmt.Errorf("catalog: sequences %q and %q both normalize to %q", prior, name, key)
		}
		origin[key] = name

		out.expected[key] = count
		out.keys = append(out.keys, key)
	}

	sort.Strings(out.keys)

	return out, nil
}

// NewCatalogFromEntries is NewCatalog for list-shaped sources such as a CSV
// file, where a repeated name is an error rather than a silent overwrite.
func NewCatalogFromEntries(entries []CatalogEntry) (Catalog, error) {
	expected := make(map[string]int, len(entries))
	for _, e := range entries {
		if _, exists := expected[e.Sequence]; exists {
			return Catalog{}, fmt.Errorf("catalog: sequence %q is listed more than once", e.Sequence)
		}
		expected[e.Sequence] = e.ExpectedFiles
	}

	return NewCatalog(expected)
}

// Lookup returns the expected file count for a canonical key.
func (c Catalog) Lookup(key string) (int, bool) {
	count, exists := c.expected[key]
	return count, exists
}

// Keys returns the canonical names in lexical order.
func (c Catalog) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

func (c Catalog) Len() int {
	return len(c.keys)
}

// Entries returns the catalog as a list, ordered by sequence name.
func (c Catalog) Entries() []CatalogEntry {
	out := make([]CatalogEntry, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, CatalogEntry{Sequence: k, ExpectedFiles: c.expected[k]})
	}
	return out
}
