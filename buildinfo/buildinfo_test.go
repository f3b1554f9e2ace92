package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFromBuildInfo(t *testing.T) {
	info := fromBuildInfo(&debug.BuildInfo{
		GoVersion: "go1.24.0",
		Path:      "github.com/carbocation/dicomaudit/cmd/dicomaudit",
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2025-07-29T10:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
			{Key: "GOOS", Value: "linux"},
		},
	})

	if info.Commit != "abc123" || info.CommitTime != "2025-07-29T10:00:00Z" || !info.Modified {
		t.Errorf("unexpected info: %+v", info)
	}

	s := info.String()
	for _, want := range []string{"cmd/dicomaudit", "go1.24.0", "abc123", "modified"} {
		if !strings.Contains(s, want) {
			t.Errorf("%q does not mention %q", s, want)
		}
	}
}

func TestEmptyInfo(t *testing.T) {
	if got := (Info{}).String(); !strings.Contains(got, "unavailable") {
		t.Errorf("zero Info printed %q", got)
	}
}
