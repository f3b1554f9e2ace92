package report

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"cloud.google.com/go/bigquery"
	"github.com/carbocation/dicomaudit/audit"
	"github.com/carbocation/pfx"
	"google.golang.org/api/googleapi"
	"gopkg.in/guregu/null.v3"
)

const (
	ObservedTable = "observed_sequences"
	MissingTable  = "missing_sequences"

	// Rows per streaming insert request
	insertBatchSize = 500
)

// ObservedBQ is the BigQuery form of ObservedRow; absent metadata is NULL
// rather than an empty string.
type ObservedBQ struct {
	SubjectID           string              `bigquery:"subject_id"`
	AccessionID         bigquery.NullString `bigquery:"accession_id"`
	PatientName         bigquery.NullString `bigquery:"patient_name"`
	StudyDescription    bigquery.NullString `bigquery:"study_description"`
	StudyComment        bigquery.NullString `bigquery:"study_comment"`
	CleanedSequenceName string              `bigquery:"cleaned_sequence_name"`
	ProtocolName        bigquery.NullString `bigquery:"protocol_name"`
	FileCount           int64               `bigquery:"file_count"`
	ScanDate            bigquery.NullString `bigquery:"scan_date"`
	CompletenessFlag    int64               `bigquery:"completeness_flag"`
}

// MissingBQ keeps the missing list as a repeated column. The aux flags are
// NULL when auxiliary detection was off.
type MissingBQ struct {
	SubjectID        string              `bigquery:"subject_id"`
	AccessionID      bigquery.NullString `bigquery:"accession_id"`
	PatientName      bigquery.NullString `bigquery:"patient_name"`
	StudyDescription bigquery.NullString `bigquery:"study_description"`
	StudyComment     bigquery.NullString `bigquery:"study_comment"`
	ScanDate         bigquery.NullString `bigquery:"scan_date"`
	MissingSequences []string            `bigquery:"missing_sequences"`
	VFT              bigquery.NullBool   `bigquery:"vft"`
	TRENDS           bigquery.NullBool   `bigquery:"trends"`
	Examcard         bigquery.NullBool   `bigquery:"examcard"`
}

func nullString(s null.String) bigquery.NullString {
	return bigquery.NullString{StringVal: s.String, Valid: s.Valid}
}

func ObservedBQRows(records []audit.ObservedRecord, cat audit.Catalog) []*ObservedBQ {
	out := make([]*ObservedBQ, 0, len(records))
	for _, r := range records {
		out = append(out, &ObservedBQ{
			SubjectID:           r.SubjectID,
			AccessionID:         nullString(r.Metadata.AccessionNumber),
			PatientName:         nullString(r.Metadata.PatientName),
			StudyDescription:    nullString(r.Metadata.StudyDescription),
			StudyComment:        nullString(r.Metadata.StudyComments),
			CleanedSequenceName: r.CanonicalSequenceName,
			ProtocolName:        nullString(r.Metadata.ProtocolName),
			FileCount:           int64(r.FileCount),
			ScanDate:            nullString(r.Metadata.ScanDate),
			CompletenessFlag:    int64(r.Completeness(cat).Flag()),
		})
	}
	return out
}

func MissingBQRows(summaries []audit.SubjectSummary) []*MissingBQ {
	out := make([]*MissingBQ, 0, len(summaries))
	for _, s := range summaries {
		row := &MissingBQ{
			SubjectID:        s.SubjectID,
			MissingSequences: append([]string(nil), s.Missing...),
		}

		if id := s.Identity; id != nil {
			row.AccessionID = nullString(id.AccessionNumber)
			row.PatientName = nullString(id.PatientName)
			row.StudyDescription = nullString(id.StudyDescription)
			row.StudyComment = nullString(id.StudyComments)
			row.ScanDate = nullString(id.ScanDate)
		}

		if s.Aux != nil {
			row.VFT = bigquery.NullBool{Bool: s.Aux.VFT, Valid: true}
			row.TRENDS = bigquery.NullBool{Bool: s.Aux.TRENDS, Valid: true}
			row.Examcard = bigquery.NullBool{Bool: s.Aux.Examcard, Valid: true}
		}

		out = append(out, row)
	}
	return out
}

// LoadBigQuery streams both tables into project.dataset, creating each table
// from its inferred schema if it does not exist yet. The dataset must exist.
func LoadBigQuery(ctx context.Context, project, dataset string, res *audit.Result, cat audit.Catalog) error {
	client, err := bigquery.NewClient(ctx, project)
	if err != nil {
		return pfx.Err(err)
	}
	defer client.Close()

	ds := client.Dataset(dataset)

	if err := insert(ctx, ds, ObservedTable, ObservedBQRows(res.Records, cat)); err != nil {
		return err
	}

	return insert(ctx, ds, MissingTable, MissingBQRows(res.Summaries))
}

// insert creates the table from the schema of T when needed, then streams rows
// in batches.
func insert[T any](ctx context.Context, ds *bigquery.Dataset, name string, rows []*T) error {
	var proto T
	schema, err := bigquery.InferSchema(proto)
	if err != nil {
		return pfx.Err(err)
	}

	table := ds.Table(name)
	if err := ensureTable(ctx, table, schema); err != nil {
		return fmt.Errorf("%s.%s: %w", ds.DatasetID, name, err)
	}

	ins := table.Inserter()
	for start := 0; start < len(rows); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(rows) {
			end = len(rows)
		}

		if err := ins.Put(ctx, rows[start:end]); err != nil {
			return pfx.Err(fmt.Errorf("%s.%s rows %d-%d: %w", ds.DatasetID, name, start, end, err))
		}
	}

	log.Printf("Inserted %d rows into %s.%s.%s\n", len(rows), ds.ProjectID, ds.DatasetID, name)

	return nil
}

func ensureTable(ctx context.Context, table *bigquery.Table, schema bigquery.Schema) error {
	_, err := table.Metadata(ctx)
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) || apiErr.Code != http.StatusNotFound {
		return pfx.Err(err)
	}

	log.Printf("Creating table %s.%s.%s\n", table.ProjectID, table.DatasetID, table.TableID)
	return pfx.Err(table.Create(ctx, &bigquery.TableMetadata{Schema: schema}))
}
