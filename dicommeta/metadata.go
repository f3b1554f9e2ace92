// Package dicommeta reads the handful of DICOM header fields that the audit
// reports on. Pixel data is never decoded.
package dicommeta

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/carbocation/pfx"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/dicomtag"
	"github.com/suyashkumar/dicom/element"
	"gopkg.in/guregu/null.v3"
)

// ScanDateFormat is the layout used for Metadata.ScanDate when the raw header
// value could be understood.
const ScanDateFormat = "2006-01-02"

var (
	// Neither of these is in every dictionary revision, so refer to them by
	// number.
	tagStudyComments                   = dicomtag.Tag{Group: 0x0032, Element: 0x4000}
	tagPerformedProcedureStepStartDate = dicomtag.Tag{Group: 0x0040, Element: 0x0244}
)

// ErrNoRepresentative is wrapped in a ReadError when a sequence folder had no
// file that looked like a DICOM.
var ErrNoRepresentative = errors.New("no representative DICOM file")

// Metadata holds the subset of header fields used by the audit. Any of them may
// be absent from a given file, in which case it is null rather than "".
type Metadata struct {
	AccessionNumber  null.String
	PatientName      null.String
	StudyDescription null.String
	StudyComments    null.String
	ProtocolName     null.String
	ScanDate         null.String
}

// ReadError reports a representative file that was missing, unreadable or not
// a conformant DICOM. Callers are expected to log it and move on.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading DICOM metadata from %q: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Reader reads Metadata from files on local disk. The zero value is ready to
// use.
type Reader struct{}

// Read extracts Metadata from the file at path. Every failure is returned as a
// *ReadError.
func (Reader) Read(path string) (Metadata, error) {
	if path == "" {
		return Metadata{}, &ReadError{Path: path, Err: ErrNoRepresentative}
	}

	rc, err := Open(path)
	if err != nil {
		return Metadata{}, &ReadError{Path: path, Err: err}
	}
	defer rc.Close()

	ds, err := Parse(rc)
	if err != nil {
		return Metadata{}, &ReadError{Path: path, Err: err}
	}

	return FromDataSet(ds), nil
}

// Parse reads a whole DICOM from r, skipping pixel data.
func Parse(r io.Reader) (*element.DataSet, error) {
	dcm, err := io.ReadAll(r)
	if err != nil {
		return nil, pfx.Err(err)
	}

	parsedData, err := safelyParse(dcm, dicom.ParseOptions{
		DropPixelData: true,
	})
	if parsedData == nil || err != nil {
		return nil, fmt.Errorf("error reading dicom: %v", err)
	}

	return parsedData, nil
}

// safelyParse converts parser panics on malformed input into errors.
func safelyParse(dcm []byte, opts dicom.ParseOptions) (parsedData *element.DataSet, err error) {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			err = fmt.Errorf("%v", panicErr)
		}
	}()

	p, err := dicom.NewParserFromBytes(dcm, nil)
	if err != nil {
		return nil, pfx.Err(err)
	}

	return p.Parse(opts)
}

// FromDataSet picks the audited fields out of a parsed DICOM.
func FromDataSet(ds *element.DataSet) Metadata {
	out := Metadata{}
	if ds == nil {
		return out
	}

	var studyDate null.String

	for _, elem := range ds.Elements {
		if elem == nil {
			continue
		}

		switch elem.Tag {
		case dicomtag.AccessionNumber:
			out.AccessionNumber = firstString(elem)
		case dicomtag.PatientName:
			out.PatientName = firstString(elem)
		case dicomtag.StudyDescription:
			out.StudyDescription = firstString(elem)
		case tagStudyComments:
			out.StudyComments = firstString(elem)
		case dicomtag.ProtocolName:
			out.ProtocolName = firstString(elem)
		case tagPerformedProcedureStepStartDate:
			out.ScanDate = firstString(elem)
		case dicomtag.StudyDate:
			studyDate = firstString(elem)
		}
	}

	if !out.ScanDate.Valid {
		out.ScanDate = studyDate
	}

	if out.ScanDate.Valid {
		out.ScanDate = null.StringFrom(NormalizeDate(out.ScanDate.String))
	}

	return out
}

// firstString returns the first value of a string-valued element, trimmed of
// the space padding DICOM uses to reach an even length. Empty values are null.
func firstString(elem *element.Element) null.String {
	for _, v := range elem.Value {
		s, ok := v.(string)
		if !ok {
			return null.String{}
		}

		s = strings.TrimRight(s, " \x00")
		if s == "" {
			return null.String{}
		}

		return null.StringFrom(s)
	}

	return null.String{}
}

// NormalizeDate renders a DICOM DA value such as 20250729 as 2025-07-29. Values
// that cannot be understood are returned untouched so nothing is lost.
func NormalizeDate(raw string) string {
	if raw == "" {
		return raw
	}

	res, err := dateparse.ParseAny(raw)
	if err == nil {
		return res.Format(ScanDateFormat)
	}

	// Try some known values that dateparse fails to understand
	if res, err := time.Parse("02-Jan-2006 15:04:05", raw); err == nil {
		return res.Format(ScanDateFormat)
	}

	return raw
}

// Format renders a nullable field for a text table: null becomes "".
func Format(n null.String) string {
	if !n.Valid {
		return ""
	}

	return n.String
}
