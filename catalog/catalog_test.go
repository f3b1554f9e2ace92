package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/carbocation/dicomaudit/audit"
	"github.com/carbocation/dicomaudit/objstore"
	"github.com/google/go-cmp/cmp"
)

func TestDefault(t *testing.T) {
	cat, err := Default()
	if err != nil {
		t.Fatal(err)
	}

	if cat.Len() != 20 {
		t.Errorf("default catalog has %d sequences, want 20", cat.Len())
	}

	for name, want := range map[string]int{
		"dki":              4480,
		"b0_prescan":       0,
		"task-rest_bold":   12100,
		"task-trends_bold": 6720,
		"t1w_psir":         576,
		"survey":           9,
	} {
		if got, ok := cat.Lookup(name); !ok || got != want {
			t.Errorf("Lookup(%s) = %d, %v; want %d", name, got, ok, want)
		}
	}
}

func TestParseFormats(t *testing.T) {
	want := []audit.CatalogEntry{
		{Sequence: "dki", ExpectedFiles: 4480},
		{Sequence: "flair", ExpectedFiles: 150},
		{Sequence: "t1w", ExpectedFiles: 192},
	}

	cases := []struct {
		ext  string
		body string
	}{
		{".json", `{"WIP DKI": 4480, "t1w": 192, "FLAIR": 150}`},
		{".json", `[{"sequence": "dki", "expected_files": 4480}, {"sequence": "t1w", "expected_files": 192}, {"sequence": "flair", "expected_files": 150}]`},
		{".yaml", "dki: 4480\nt1w: 192\nflair: 150\n"},
		{".yml", "- sequence: dki\n  expected_files: 4480\n- sequence: t1w\n  expected_files: 192\n- sequence: flair\n  expected_files: 150\n"},
		{".csv", "sequence,expected_files\ndki,4480\nt1w,192\nflair,150\n"},
		{".tsv", "sequence\texpected_files\ndki\t4480\nt1w\t192\nflair\t150\n"},
		{"", "sequence,expected_files\n# comment lines are ignored\ndki,4480\nt1w,192\nflair,150\n"},
	}

	for _, c := range cases {
		cat, err := Parse([]byte(c.body), c.ext)
		if err != nil {
			t.Errorf("Parse(%q, %q): %v", c.ext, c.body, err)
			continue
		}
		if diff := cmp.Diff(want, cat.Entries()); diff != "" {
			t.Errorf("Parse(%q, %q) mismatch (-want +got):\n%s", c.ext, c.body, diff)
		}
	}
}

func TestParseRejects(t *testing.T) {
	cases := []struct {
		ext  string
		body string
	}{
		{".json", `{"t1w": -1}`},
		{".json", `"t1w"`},
		{".yaml", "t1w: [1, 2]\n"},
		{".csv", "sequence,expected_files\nt1w,192\nT1w,193\n"},
		{".csv", "sequence,expected_files\nt1w,lots\n"},
	}

	for _, c := range cases {
		if _, err := Parse([]byte(c.body), c.ext); err == nil {
			t.Errorf("Parse(%q, %q) should have failed", c.ext, c.body)
		}
	}
}

func TestLoadLocal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expected.yaml")
	if err := os.WriteFile(path, []byte("t1w: 192\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cat, err := Load(context.Background(), path, objstore.S3Options{})
	if err != nil {
		t.Fatal(err)
	}
	if n, ok := cat.Lookup("t1w"); !ok || n != 192 {
		t.Errorf("Lookup(t1w) = %d, %v", n, ok)
	}

	_, err = Load(context.Background(), filepath.Join(t.TempDir(), "absent.csv"), objstore.S3Options{})
	if err == nil {
		t.Error("loading a missing file should fail")
	}
}

func TestDetermineDelimiter(t *testing.T) {
	cases := map[string]rune{
		"a,b\n1,2\n3,4\n":    ',',
		"a\tb\n1\t2\n3\t4\n": '\t',
	}

	for body, want := range cases {
		if got := DetermineDelimiter(strings.NewReader(body)); got != want {
			t.Errorf("DetermineDelimiter(%q) = %q, want %q", body, got, want)
		}
	}
}
