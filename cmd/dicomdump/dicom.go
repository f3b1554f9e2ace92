package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/carbocation/dicomaudit/archive"
	"github.com/carbocation/dicomaudit/audit"
	"github.com/carbocation/dicomaudit/dicommeta"
	"github.com/carbocation/pfx"
	"github.com/suyashkumar/dicom/dicomtag"
	"github.com/suyashkumar/dicom/element"
)

// Dump resolves path to a single file and prints it.
func Dump(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return pfx.Err(err)
	}

	if fi.IsDir() {
		seq, err := archive.NewWalker().Describe(path)
		if err != nil {
			return err
		}
		if seq.Representative == "" {
			return &dicommeta.ReadError{Path: path, Err: dicommeta.ErrNoRepresentative}
		}

		fmt.Fprintf(STDOUT, "%s: %d files, representative %s\n", seq.Path, seq.FileCount, seq.Representative)
		path = seq.Representative
	}

	rc, err := dicommeta.Open(path)
	if err != nil {
		return err
	}
	defer rc.Close()

	ds, err := dicommeta.Parse(rc)
	if err != nil {
		return &dicommeta.ReadError{Path: path, Err: err}
	}

	PrintElements(STDOUT, ds)
	PrintMetadata(STDOUT, dicommeta.FromDataSet(ds))

	return nil
}

// PrintElements writes one line per element. Pixel data has already been
// dropped by the parser.
func PrintElements(w io.Writer, ds *element.DataSet) {
	fmt.Fprintln(w, strings.Repeat("-", 30))

	for _, elem := range ds.Elements {
		tagName, _ := dicomtag.Find(elem.Tag)

		if tagName.Name == "" {
			tagName.Name = "____"
		}

		if elem.Tag.Compare(dicomtag.Tag{Group: 0x6000, Element: 0x3000}) == 0 {
			// Don't print the overlay as text
			fmt.Fprintln(w, elem.Tag, tagName.Name, "~~skipping overlay pixel data~~")
			continue
		}

		if elem.Tag.Group == 0x0029 {
			// Private Siemens CSA headers are binary
			fmt.Fprintln(w, elem.Tag, tagName.Name, "~~skipping private Siemens data~~")
			continue
		}

		fmt.Fprintln(w, elem.Tag, tagName.Name, elem.Value)
	}
}

func PrintMetadata(w io.Writer, meta dicommeta.Metadata) {
	fmt.Fprintln(w, strings.Repeat("-", 30))

	fields := []struct {
		name  string
		value string
	}{
		{"accession_id", dicommeta.Format(meta.AccessionNumber)},
		{"patient_name", dicommeta.Format(meta.PatientName)},
		{"study_description", dicommeta.Format(meta.StudyDescription)},
		{"study_comment", dicommeta.Format(meta.StudyComments)},
		{"protocol_name", dicommeta.Format(meta.ProtocolName)},
		{"cleaned_sequence_name", audit.Normalize(dicommeta.Format(meta.ProtocolName))},
		{"scan_date", dicommeta.Format(meta.ScanDate)},
	}

	for _, f := range fields {
		fmt.Fprintf(w, "%s\t%s\n", f.name, f.value)
	}
}
