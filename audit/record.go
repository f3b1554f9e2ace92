package audit

import (
	"fmt"
	"strings"

	"github.com/carbocation/dicomaudit/dicommeta"
)

// NameSource chooses where the raw sequence name of a folder comes from.
type NameSource string

const (
	// NameFromProtocol uses the DICOM ProtocolName, falling back to the folder
	// name when the tag is absent. Required for exports whose folders are
	// named by series number.
	NameFromProtocol NameSource = "protocol"

	// NameFromFolder always uses the folder name.
	NameFromFolder NameSource = "folder"
)

func (n NameSource) Valid() bool {
	return n == NameFromProtocol || n == NameFromFolder
}

// ObservedRecord is one successfully read sequence folder. Treat it as
// immutable once built.
type ObservedRecord struct {
	SubjectID             string
	FolderName            string
	RawSequenceName       string
	CanonicalSequenceName string
	FileCount             int
	Metadata              dicommeta.Metadata
}

func NewObservedRecord(subjectID, folderName string, fileCount int, meta dicommeta.Metadata, source NameSource) ObservedRecord {
	raw := folderName
	if source != NameFromFolder && meta.ProtocolName.Valid {
		raw = meta.ProtocolName.String
	}

	return ObservedRecord{
		SubjectID:             subjectID,
		FolderName:            folderName,
		RawSequenceName:       raw,
		CanonicalSequenceName: Normalize(raw),
		FileCount:             fileCount,
		Metadata:              meta,
	}
}

// Completeness classifies this record on its own, without collapsing
// duplicates.
func (r ObservedRecord) Completeness(cat Catalog) Completeness {
	return Classify(cat, r.CanonicalSequenceName, r.FileCount)
}

// secondaryName marks derived (secondary capture) series, which are not
// acquisitions.
const secondaryName = "secondary"

// Excluded reports whether a record must be left out of the observed set
// entirely, whatever the catalog says.
func (r ObservedRecord) Excluded() bool {
	return strings.EqualFold(strings.TrimSpace(r.FolderName), secondaryName) ||
		r.CanonicalSequenceName == secondaryName
}

// UnknownSequenceWarning notes an observed sequence that has no catalog entry.
// It is informational: the record is still reported, with flag -1.
type UnknownSequenceWarning struct {
	SubjectID string
	Folder    string
	Sequence  string
}

func (w UnknownSequenceWarning) Error() string {
	return fmt.Sprintf("subject %s: sequence %q (folder %q) is not in the catalog", w.SubjectID, w.Sequence, w.Folder)
}
