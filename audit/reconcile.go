package audit

import (
	"strings"

	"github.com/carbocation/dicomaudit/archive"
	"gopkg.in/guregu/null.v3"
)

// NoneMissing stands in for an empty missing list so that a fully complete
// subject reads differently from a blank cell.
const NoneMissing = "NIL"

// Identity is the subject-level header information copied from one of the
// subject's records.
type Identity struct {
	AccessionNumber  null.String
	PatientName      null.String
	StudyDescription null.String
	StudyComments    null.String
	ScanDate         null.String
}

func identityOf(r ObservedRecord) *Identity {
	return &Identity{
		AccessionNumber:  r.Metadata.AccessionNumber,
		PatientName:      r.Metadata.PatientName,
		StudyDescription: r.Metadata.StudyDescription,
		StudyComments:    r.Metadata.StudyComments,
		ScanDate:         r.Metadata.ScanDate,
	}
}

// SubjectSummary is the reconciled view of one subject. Identity is nil when
// the subject produced no readable records. Missing is sorted and never
// empty: it holds NoneMissing when nothing is missing.
type SubjectSummary struct {
	SubjectID string
	Identity  *Identity
	Missing   []string
	Aux       *archive.AuxFlags
}

// MissingString is the comma-joined form used in the report.
func (s SubjectSummary) MissingString() string {
	return strings.Join(s.Missing, ",")
}

// Complete is true when every catalog sequence was present in full.
func (s SubjectSummary) Complete() bool {
	return len(s.Missing) == 1 && s.Missing[0] == NoneMissing
}

// Reconcile checks every catalog sequence against the records of one subject.
// Records for the same canonical name (a re-run, or the same protocol saved
// with and without the WIP prefix) are collapsed to the largest file count
// before classification. A catalog sequence is missing when it was never
// observed or when its best count is still short. Identity comes from the
// first record in the slice. Records belonging to other subjects and
// excluded records are ignored.
func Reconcile(cat Catalog, subjectID string, records []ObservedRecord) SubjectSummary {
	out := SubjectSummary{SubjectID: subjectID}

	best := make(map[string]int)
	for _, r := range records {
		if r.SubjectID != subjectID || r.Excluded() {
			continue
		}

		if out.Identity == nil {
			out.Identity = identityOf(r)
		}

		if prior, seen := best[r.CanonicalSequenceName]; !seen || r.FileCount > prior {
			best[r.CanonicalSequenceName] = r.FileCount
		}
	}

	// Keys() is sorted, so the missing list comes out sorted too
	missing := make([]string, 0)
	for _, key := range cat.Keys() {
		count, seen := best[key]
		if !seen || Classify(cat, key, count) != Complete {
			missing = append(missing, key)
		}
	}

	if len(missing) == 0 {
		missing = append(missing, NoneMissing)
	}
	out.Missing = missing

	return out
}
