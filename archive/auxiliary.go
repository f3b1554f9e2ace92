package archive

import (
	"os"
	"path/filepath"
	"strings"
)

// ResourcesDir is the folder that marks a subject sub-directory as holding
// non-imaging resources rather than a DICOM series.
const ResourcesDir = "resources"

// AuxRule locates one auxiliary artifact beneath a resources folder. Path is
// relative to the resources folder. Each pattern must match at least one file
// in that directory (names are lowercased before matching); with no patterns
// the directory existing is enough.
type AuxRule struct {
	Path     string   `json:"path" yaml:"path"`
	Patterns []string `json:"patterns" yaml:"patterns"`
}

// AuxRules are the three artifacts tracked per subject: the verbal fluency
// and TRENDS task exports and the scanner exam cards.
type AuxRules struct {
	VFT      AuxRule `json:"vft" yaml:"vft"`
	TRENDS   AuxRule `json:"trends" yaml:"trends"`
	Examcard AuxRule `json:"examcard" yaml:"examcard"`
}

func DefaultAuxRules() AuxRules {
	return AuxRules{
		VFT: AuxRule{
			Path:     filepath.Join("Behavioral%20data-VFT", "VFT"),
			Patterns: []string{"*.wav", "*export.txt*"},
		},
		TRENDS: AuxRule{
			Path:     filepath.Join("Behavioral%20data-TRENDS", "TRENDS"),
			Patterns: []string{"*export.txt*"},
		},
		Examcard: AuxRule{
			Path: "Examcards",
		},
	}
}

func (r AuxRules) Validate() error {
	for _, rule := range []AuxRule{r.VFT, r.TRENDS, r.Examcard} {
		if err := validatePatterns("auxiliary pattern", rule.Patterns); err != nil {
			return err
		}
	}

	return nil
}

// AuxFlags records which auxiliary artifacts were found for a subject.
type AuxFlags struct {
	VFT      bool
	TRENDS   bool
	Examcard bool
}

// Or merges flags found in another resources folder of the same subject.
func (a AuxFlags) Or(b AuxFlags) AuxFlags {
	return AuxFlags{
		VFT:      a.VFT || b.VFT,
		TRENDS:   a.TRENDS || b.TRENDS,
		Examcard: a.Examcard || b.Examcard,
	}
}

// DetectAux checks one resources folder against the rules. Unreadable
// directories simply count as absent.
func DetectAux(resourcesPath string, rules AuxRules) AuxFlags {
	return AuxFlags{
		VFT:      rules.VFT.present(resourcesPath),
		TRENDS:   rules.TRENDS.present(resourcesPath),
		Examcard: rules.Examcard.present(resourcesPath),
	}
}

func (r AuxRule) present(resourcesPath string) bool {
	if r.Path == "" {
		return false
	}

	dir := filepath.Join(resourcesPath, r.Path)
	if !isDirPath(dir) {
		return false
	}

	if len(r.Patterns) == 0 {
		return true
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, strings.ToLower(e.Name()))
	}

Patterns:
	for _, pattern := range r.Patterns {
		for _, name := range names {
			if matchAny([]string{pattern}, name) {
				continue Patterns
			}
		}
		return false
	}

	return true
}
