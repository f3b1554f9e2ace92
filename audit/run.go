package audit

import (
	"fmt"
	"log"

	"github.com/carbocation/dicomaudit/archive"
	"github.com/carbocation/dicomaudit/dicommeta"
)

// MetadataReader is satisfied by dicommeta.Reader.
type MetadataReader interface {
	Read(path string) (dicommeta.Metadata, error)
}

// SubjectWalker is satisfied by archive.Walker.
type SubjectWalker interface {
	Walk(root string, fn func(archive.Subject) error) error
}

// Stats summarizes a run for the log.
type Stats struct {
	Subjects         int
	Sequences        int
	Records          int
	ReadErrors       int
	Excluded         int
	Unknown          int
	CompleteSubjects int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d subjects (%d complete), %d sequence folders, %d records, %d unreadable, %d excluded, %d not in catalog",
		s.Subjects, s.CompleteSubjects, s.Sequences, s.Records, s.ReadErrors, s.Excluded, s.Unknown)
}

type Result struct {
	// Every observed record, subject by subject, in walk order
	Records []ObservedRecord

	// One summary per subject directory, in walk order
	Summaries []SubjectSummary

	Stats Stats
}

// Auditor wires the walker and the metadata reader to the reconciliation
// engine.
type Auditor struct {
	Catalog    Catalog
	Walker     SubjectWalker
	Reader     MetadataReader
	NameSource NameSource
}

// Run walks root and reconciles every subject found. Unreadable folders and
// files are logged and skipped. The returned Result is never nil; when the
// walk itself fails it holds whatever was gathered before the failure.
func (a Auditor) Run(root string) (*Result, error) {
	col := NewCollector()
	aux := make(map[string]*archive.AuxFlags)
	stats := Stats{}

	walkErr := a.Walker.Walk(root, func(s archive.Subject) error {
		stats.Subjects++
		col.Touch(s.ID)
		aux[s.ID] = s.Aux

		for _, seq := range s.Sequences {
			stats.Sequences++

			meta, err := a.Reader.Read(seq.Representative)
			if err != nil {
				// The folder exists but contributes nothing, so it will
				// reconcile as missing
				stats.ReadErrors++
				log.Printf("Skipping %s: %v\n", seq.Path, err)
				continue
			}

			rec := NewObservedRecord(s.ID, seq.Name, seq.FileCount, meta, a.NameSource)
			if !col.Add(rec) {
				stats.Excluded++
				continue
			}
			stats.Records++

			if rec.Completeness(a.Catalog) == Unknown {
				stats.Unknown++
				log.Println(UnknownSequenceWarning{SubjectID: s.ID, Folder: seq.Name, Sequence: rec.CanonicalSequenceName})
			}
		}

		return nil
	})

	summaries := col.Summaries(a.Catalog)
	for i := range summaries {
		summaries[i].Aux = aux[summaries[i].SubjectID]
		if summaries[i].Complete() {
			stats.CompleteSubjects++
		}
	}

	return &Result{
		Records:   col.All(),
		Summaries: summaries,
		Stats:     stats,
	}, walkErr
}
