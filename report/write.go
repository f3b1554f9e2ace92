package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/carbocation/dicomaudit/audit"
	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"
)

// WriteObserved writes the observed-sequences table. The header is written
// even when there are no records.
func WriteObserved(w io.Writer, records []audit.ObservedRecord, cat audit.Catalog) error {
	return pfx.Err(gocsv.Marshal(ObservedRows(records, cat), w))
}

// WriteMissing writes the missing-sequences table, with the vft, trends and
// examcard columns only when withAux is set.
func WriteMissing(w io.Writer, summaries []audit.SubjectSummary, withAux bool) error {
	if withAux {
		return pfx.Err(gocsv.Marshal(MissingAuxRows(summaries), w))
	}
	return pfx.Err(gocsv.Marshal(MissingRows(summaries), w))
}

// WriteFiles writes both tables of res to the given paths, creating parent
// directories as needed.
func WriteFiles(observedPath, missingPath string, res *audit.Result, cat audit.Catalog, withAux bool) error {
	if err := writeFile(observedPath, func(w io.Writer) error {
		return WriteObserved(w, res.Records, cat)
	}); err != nil {
		return fmt.Errorf("writing observed table: %w", err)
	}

	if err := writeFile(missingPath, func(w io.Writer) error {
		return WriteMissing(w, res.Summaries, withAux)
	}); err != nil {
		return fmt.Errorf("writing missing table: %w", err)
	}

	return nil
}

func writeFile(path string, render func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return pfx.Err(err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return pfx.Err(err)
	}

	if err := render(f); err != nil {
		f.Close()
		return err
	}

	return pfx.Err(f.Close())
}
