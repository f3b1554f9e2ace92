package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/carbocation/dicomaudit/dicommeta"
	"gopkg.in/guregu/null.v3"
)

func TestPrintMetadata(t *testing.T) {
	var buf bytes.Buffer
	PrintMetadata(&buf, dicommeta.Metadata{
		AccessionNumber: null.StringFrom("ACC1"),
		ProtocolName:    null.StringFrom("WIP DKI"),
	})

	out := buf.String()
	for _, want := range []string{"accession_id\tACC1\n", "protocol_name\tWIP DKI\n", "cleaned_sequence_name\tdki\n", "study_comment\t\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestDumpFolderWithoutRepresentative(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "SUBJ1", "301")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := Dump(dir)
	if !errors.Is(err, dicommeta.ErrNoRepresentative) {
		t.Errorf("expected ErrNoRepresentative, got %v", err)
	}
}

func TestDumpMissingPath(t *testing.T) {
	if err := Dump(filepath.Join(t.TempDir(), "absent.dcm")); err == nil {
		t.Error("dumping a missing path should fail")
	}
}
