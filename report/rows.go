// Package report renders audit results as the observed-sequences and
// missing-sequences tables.
package report

import (
	"github.com/carbocation/dicomaudit/archive"
	"github.com/carbocation/dicomaudit/audit"
	"github.com/carbocation/dicomaudit/dicommeta"
)

// ObservedRow is one line of the observed-sequences table. Absent metadata is
// an empty cell.
type ObservedRow struct {
	SubjectID           string `csv:"subject_id"`
	AccessionID         string `csv:"accession_id"`
	PatientName         string `csv:"patient_name"`
	StudyDescription    string `csv:"study_description"`
	StudyComment        string `csv:"study_comment"`
	CleanedSequenceName string `csv:"cleaned_sequence_name"`
	ProtocolName        string `csv:"protocol_name"`
	FileCount           int    `csv:"file_count"`
	ScanDate            string `csv:"scan_date"`
	CompletenessFlag    int    `csv:"completeness_flag"`
}

// MissingRow is one line of the missing-sequences table.
type MissingRow struct {
	SubjectID        string `csv:"subject_id"`
	AccessionID      string `csv:"accession_id"`
	PatientName      string `csv:"patient_name"`
	StudyDescription string `csv:"study_description"`
	StudyComment     string `csv:"study_comment"`
	ScanDate         string `csv:"scan_date"`
	MissingSequences string `csv:"missing_sequences"`
}

// MissingAuxRow is MissingRow with the auxiliary artifact flags appended.
// It repeats the fields rather than embedding MissingRow so the column order
// is plain to see.
type MissingAuxRow struct {
	SubjectID        string `csv:"subject_id"`
	AccessionID      string `csv:"accession_id"`
	PatientName      string `csv:"patient_name"`
	StudyDescription string `csv:"study_description"`
	StudyComment     string `csv:"study_comment"`
	ScanDate         string `csv:"scan_date"`
	MissingSequences string `csv:"missing_sequences"`
	VFT              int    `csv:"vft"`
	TRENDS           int    `csv:"trends"`
	Examcard         int    `csv:"examcard"`
}

func ObservedRows(records []audit.ObservedRecord, cat audit.Catalog) []ObservedRow {
	out := make([]ObservedRow, 0, len(records))
	for _, r := range records {
		out = append(out, ObservedRow{
			SubjectID:           r.SubjectID,
			AccessionID:         dicommeta.Format(r.Metadata.AccessionNumber),
			PatientName:         dicommeta.Format(r.Metadata.PatientName),
			StudyDescription:    dicommeta.Format(r.Metadata.StudyDescription),
			StudyComment:        dicommeta.Format(r.Metadata.StudyComments),
			CleanedSequenceName: r.CanonicalSequenceName,
			ProtocolName:        dicommeta.Format(r.Metadata.ProtocolName),
			FileCount:           r.FileCount,
			ScanDate:            dicommeta.Format(r.Metadata.ScanDate),
			CompletenessFlag:    r.Completeness(cat).Flag(),
		})
	}
	return out
}

// identityCells returns accession, patient name, study description, study
// comment and scan date, all empty for a subject without records.
func identityCells(id *audit.Identity) (accession, patient, description, comment, scanDate string) {
	if id == nil {
		return
	}
	return dicommeta.Format(id.AccessionNumber),
		dicommeta.Format(id.PatientName),
		dicommeta.Format(id.StudyDescription),
		dicommeta.Format(id.StudyComments),
		dicommeta.Format(id.ScanDate)
}

func MissingRows(summaries []audit.SubjectSummary) []MissingRow {
	out := make([]MissingRow, 0, len(summaries))
	for _, s := range summaries {
		row := MissingRow{SubjectID: s.SubjectID, MissingSequences: s.MissingString()}
		row.AccessionID, row.PatientName, row.StudyDescription, row.StudyComment, row.ScanDate = identityCells(s.Identity)
		out = append(out, row)
	}
	return out
}

// MissingAuxRows treats a subject with no aux detection result as having
// none of the artifacts.
func MissingAuxRows(summaries []audit.SubjectSummary) []MissingAuxRow {
	out := make([]MissingAuxRow, 0, len(summaries))
	for _, s := range summaries {
		row := MissingAuxRow{SubjectID: s.SubjectID, MissingSequences: s.MissingString()}
		row.AccessionID, row.PatientName, row.StudyDescription, row.StudyComment, row.ScanDate = identityCells(s.Identity)

		aux := archive.AuxFlags{}
		if s.Aux != nil {
			aux = *s.Aux
		}
		row.VFT, row.TRENDS, row.Examcard = bit(aux.VFT), bit(aux.TRENDS), bit(aux.Examcard)

		out = append(out, row)
	}
	return out
}

func bit(b bool) int {
	if b {
		return 1
	}
	return 0
}
