package audit

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewCatalog(t *testing.T) {
	cat, err := NewCatalog(map[string]int{
		"DKI":        4480,
		"WIP T2w":    136,
		"B0_PreScan": 0,
	})
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"b0_prescan", "dki", "t2w"}, cat.Keys()); diff != "" {
		t.Errorf("Keys mismatch (-want +got):\n%s", diff)
	}

	if n, ok := cat.Lookup("dki"); !ok || n != 4480 {
		t.Errorf("Lookup(dki) = %d, %v", n, ok)
	}
	if n, ok := cat.Lookup("b0_prescan"); !ok || n != 0 {
		t.Errorf("Lookup(b0_prescan) = %d, %v", n, ok)
	}
	if _, ok := cat.Lookup("DKI"); ok {
		t.Error("lookups take canonical keys only")
	}
	if cat.Len() != 3 {
		t.Errorf("Len = %d", cat.Len())
	}

	// Keys returns a copy
	keys := cat.Keys()
	keys[0] = "changed"
	if cat.Keys()[0] != "b0_prescan" {
		t.Error("mutating Keys() changed the catalog")
	}

	want := []CatalogEntry{{"b0_prescan", 0}, {"dki", 4480}, {"t2w", 136}}
	if diff := cmp.Diff(want, cat.Entries()); diff != "" {
		t.Errorf("Entries mismatch (-want +got):\n%s", diff)
	}
}

func TestNewCatalogRejects(t *testing.T) {
	bad := []map[string]int{
		{"dki": -1},
		{"  ": 3},
		{"DKI": 1, "WIP dki": 2},
	}

	for _, expected := range bad {
		if _, err := NewCatalog(expected); err == nil {
			t.Errorf("NewCatalog(%v) should have failed", expected)
		}
	}

	if _, err := NewCatalogFromEntries([]CatalogEntry{{"t1w", 192}, {"t1w", 193}}); err == nil {
		t.Error("repeated entries should be rejected")
	}
}

func TestEmptyCatalog(t *testing.T) {
	var cat Catalog
	if _, ok := cat.Lookup("t1w"); ok {
		t.Error("zero catalog should be empty")
	}
	if len(cat.Keys()) != 0 {
		t.Error("zero catalog should have no keys")
	}
}
