// Package archive enumerates the subject and sequence folders of a DICOM
// archive laid out as <root>/<subject>/<sequence>/<files>.
package archive

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/carbocation/pfx"
)

// DICOMDir holds the image files of a sequence in XNAT-style exports, where
// the sequence folder itself is named by series number.
const DICOMDir = "DICOM"

// DefaultRepresentativeGlobs select the file whose header describes the whole
// sequence: Philips-style I* files, or .dcm files.
var DefaultRepresentativeGlobs = []string{"I*", "*.dcm", "*.dcm.gz"}

// SequenceFolder is one acquisition found beneath a subject.
type SequenceFolder struct {
	Subject string

	// Name of the folder directly beneath the subject
	Name string
	Path string

	// Where the files were counted; Path itself or its DICOM sub-directory
	FilesPath string
	FileCount int

	// First file matching the representative globs, "" if there was none
	Representative string
}

// Subject is one top-level directory of the archive with everything found
// beneath it. Aux is nil unless auxiliary detection is enabled.
type Subject struct {
	ID        string
	Path      string
	Sequences []SequenceFolder
	Aux       *AuxFlags
}

// DirectoryAccessError reports a subject or sequence directory that could not
// be listed. The walker logs it and carries on.
type DirectoryAccessError struct {
	Path string
	Err  error
}

func (e *DirectoryAccessError) Error() string {
	return fmt.Sprintf("cannot read directory %q: %v", e.Path, e.Err)
}

func (e *DirectoryAccessError) Unwrap() error {
	return e.Err
}

type Walker struct {
	Skip                SkipRules
	RepresentativeGlobs []string

	// Auxiliary enables behavioral-data and exam card detection in
	// resources folders
	Auxiliary bool
	AuxRules  AuxRules
}

func NewWalker() Walker {
	return Walker{
		Skip:                DefaultSkipRules(),
		RepresentativeGlobs: append([]string(nil), DefaultRepresentativeGlobs...),
		AuxRules:            DefaultAuxRules(),
	}
}

func (w Walker) Validate() error {
	if err := w.Skip.Validate(); err != nil {
		return err
	}

	if err := validatePatterns("representative glob", w.RepresentativeGlobs); err != nil {
		return err
	}

	return w.AuxRules.Validate()
}

// Walk calls fn once per subject directory beneath root, in lexical order.
// Only a failure to list root itself, or an error returned by fn, stops the
// walk; unreadable subjects and sequences are logged and skipped.
func (w Walker) Walk(root string, fn func(Subject) error) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return &DirectoryAccessError{Path: root, Err: pfx.Err(err)}
	}

	for _, entry := range entries {
		subjectPath := filepath.Join(root, entry.Name())
		if !isDirEntry(subjectPath, entry) {
			continue
		}

		subject, err := w.readSubject(entry.Name(), subjectPath)
		if err != nil {
			log.Println(err)
			continue
		}

		if err := fn(subject); err != nil {
			return err
		}
	}

	return nil
}

func (w Walker) readSubject(id, subjectPath string) (Subject, error) {
	out := Subject{
		ID:   id,
		Path: subjectPath,
	}

	entries, err := os.ReadDir(subjectPath)
	if err != nil {
		return out, &DirectoryAccessError{Path: subjectPath, Err: err}
	}

	var aux AuxFlags

	for _, entry := range entries {
		seqPath := filepath.Join(subjectPath, entry.Name())
		if !isDirEntry(seqPath, entry) {
			continue
		}

		if w.Skip.Skip(entry.Name()) {
			log.Printf("Skipping %s\n", seqPath)
			continue
		}

		seqEntries, err := os.ReadDir(seqPath)
		if err != nil {
			log.Println(&DirectoryAccessError{Path: seqPath, Err: err})
			continue
		}

		if hasDir(seqPath, seqEntries, ResourcesDir) {
			if w.Auxiliary {
				aux = aux.Or(DetectAux(filepath.Join(seqPath, ResourcesDir), w.AuxRules))
			}
			continue
		}

		seq, err := w.sequenceAt(id, entry.Name(), seqPath, seqEntries)
		if err != nil {
			log.Println(err)
			continue
		}

		out.Sequences = append(out.Sequences, seq)
	}

	if w.Auxiliary {
		out.Aux = &aux
	}

	return out, nil
}

// Describe summarizes one sequence folder the way Walk would, taking the
// subject ID from the parent directory name.
func (w Walker) Describe(seqPath string) (SequenceFolder, error) {
	entries, err := os.ReadDir(seqPath)
	if err != nil {
		return SequenceFolder{}, &DirectoryAccessError{Path: seqPath, Err: pfx.Err(err)}
	}

	seqPath = filepath.Clean(seqPath)
	return w.sequenceAt(filepath.Base(filepath.Dir(seqPath)), filepath.Base(seqPath), seqPath, entries)
}

// sequenceAt descends into the DICOM sub-directory of XNAT-style exports
// before counting files.
func (w Walker) sequenceAt(subject, name, seqPath string, entries []os.DirEntry) (SequenceFolder, error) {
	filesPath := seqPath
	if hasDir(seqPath, entries, DICOMDir) {
		filesPath = filepath.Join(seqPath, DICOMDir)

		var err error
		entries, err = os.ReadDir(filesPath)
		if err != nil {
			return SequenceFolder{}, &DirectoryAccessError{Path: filesPath, Err: err}
		}
	}

	return w.describe(subject, name, seqPath, filesPath, entries), nil
}

func (w Walker) describe(subject, name, seqPath, filesPath string, entries []os.DirEntry) SequenceFolder {
	out := SequenceFolder{
		Subject:   subject,
		Name:      name,
		Path:      seqPath,
		FilesPath: filesPath,
	}

	// os.ReadDir sorts by name, so the first match is the lexically first
	for _, e := range entries {
		if isDirEntry(filepath.Join(filesPath, e.Name()), e) {
			continue
		}

		out.FileCount++

		if out.Representative == "" && matchAny(w.RepresentativeGlobs, e.Name()) {
			out.Representative = filepath.Join(filesPath, e.Name())
		}
	}

	return out
}

// isDirEntry follows symlinks, which are common in curated archives.
func isDirEntry(path string, entry fs.DirEntry) bool {
	if entry.Type()&fs.ModeSymlink != 0 {
		return isDirPath(path)
	}

	return entry.IsDir()
}

func isDirPath(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

func hasDir(parent string, entries []os.DirEntry, name string) bool {
	for _, e := range entries {
		if e.Name() == name && isDirEntry(filepath.Join(parent, name), e) {
			return true
		}
	}

	return false
}
