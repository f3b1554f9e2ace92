package archive

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// SkipRules decide which sub-directories of a subject are never treated as
// sequences. A folder is skipped if any rule matches its name.
type SkipRules struct {
	// Exact names, e.g. the DIRFILE index written by Philips exports
	Exact []string `json:"exact" yaml:"exact"`

	// Substrings, e.g. the S0 marker carried by calibration scans
	Contains []string `json:"contains" yaml:"contains"`

	// doublestar patterns matched against the folder name
	Globs []string `json:"globs" yaml:"globs"`
}

func DefaultSkipRules() SkipRules {
	return SkipRules{
		Exact:    []string{"DIRFILE"},
		Contains: []string{"S0"},
	}
}

func (s SkipRules) Skip(name string) bool {
	for _, v := range s.Exact {
		if name == v {
			return true
		}
	}

	for _, v := range s.Contains {
		if v != "" && strings.Contains(name, v) {
			return true
		}
	}

	for _, v := range s.Globs {
		if ok, err := doublestar.Match(v, name); ok && err == nil {
			return true
		}
	}

	return false
}

func (s SkipRules) Validate() error {
	return validatePatterns("skip glob", s.Globs)
}

func validatePatterns(what string, patterns []string) error {
	for _, v := range patterns {
		if !doublestar.ValidatePattern(v) {
			return fmt.Errorf("%s %q is not a valid pattern", what, v)
		}
	}

	return nil
}

// matchAny reports whether name matches at least one pattern. Patterns have
// been validated up front, so match errors are treated as non-matches.
func matchAny(patterns []string, name string) bool {
	for _, v := range patterns {
		if ok, err := doublestar.Match(v, name); ok && err == nil {
			return true
		}
	}

	return false
}
