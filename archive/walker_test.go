package archive

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// touch creates the named files (and their parents) beneath root.
func touch(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, f)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func mkdirs(t *testing.T, root string, dirs ...string) {
	t.Helper()
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}
}

func buildArchive(t *testing.T) string {
	root := t.TempDir()

	touch(t, root,
		"notes.txt",
		"S1/WIP DKI/I20",
		"S1/WIP DKI/I10",
		"S1/DIRFILE/I10",
		"S1/SURVEY_S0/I10",
		"S1/readme.txt",
		"S2/101/DICOM/b.dcm",
		"S2/101/DICOM/a.dcm",
		"S2/201/scan.txt",
		"S2/Behavioral/resources/Behavioral%20data-VFT/VFT/rec.WAV",
		"S2/Behavioral/resources/Behavioral%20data-VFT/VFT/task_Export.txt",
		"S2/Behavioral/resources/Behavioral%20data-TRENDS/TRENDS/rec.wav",
	)
	mkdirs(t, root,
		"S1/WIP DKI/nested",
		"S2/Behavioral/resources/Examcards",
		"S3",
	)

	return root
}

func TestWalk(t *testing.T) {
	root := buildArchive(t)

	w := NewWalker()
	w.Auxiliary = true

	var got []Subject
	if err := w.Walk(root, func(s Subject) error {
		got = append(got, s)
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	want := []Subject{
		{
			ID:   "S1",
			Path: filepath.Join(root, "S1"),
			Sequences: []SequenceFolder{
				{
					Subject:        "S1",
					Name:           "WIP DKI",
					Path:           filepath.Join(root, "S1", "WIP DKI"),
					FilesPath:      filepath.Join(root, "S1", "WIP DKI"),
					FileCount:      2,
					Representative: filepath.Join(root, "S1", "WIP DKI", "I10"),
				},
			},
			Aux: &AuxFlags{},
		},
		{
			ID:   "S2",
			Path: filepath.Join(root, "S2"),
			Sequences: []SequenceFolder{
				{
					Subject:        "S2",
					Name:           "101",
					Path:           filepath.Join(root, "S2", "101"),
					FilesPath:      filepath.Join(root, "S2", "101", "DICOM"),
					FileCount:      2,
					Representative: filepath.Join(root, "S2", "101", "DICOM", "a.dcm"),
				},
				{
					Subject:   "S2",
					Name:      "201",
					Path:      filepath.Join(root, "S2", "201"),
					FilesPath: filepath.Join(root, "S2", "201"),
					FileCount: 1,
				},
			},
			Aux: &AuxFlags{VFT: true, Examcard: true},
		},
		{
			ID:   "S3",
			Path: filepath.Join(root, "S3"),
			Aux:  &AuxFlags{},
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Walk mismatch (-want +got):\n%s", diff)
	}
}

func TestWalkWithoutAuxiliary(t *testing.T) {
	root := buildArchive(t)

	var seen []string
	if err := NewWalker().Walk(root, func(s Subject) error {
		if s.Aux != nil {
			t.Errorf("%s: Aux should be nil when detection is disabled", s.ID)
		}
		for _, seq := range s.Sequences {
			seen = append(seen, s.ID+"/"+seq.Name)
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	// Resource folders are never reported as sequences
	if diff := cmp.Diff([]string{"S1/WIP DKI", "S2/101", "S2/201"}, seen); diff != "" {
		t.Errorf("sequences mismatch (-want +got):\n%s", diff)
	}
}

func TestWalkStopsOnCallbackError(t *testing.T) {
	root := buildArchive(t)
	stop := errors.New("stop")

	calls := 0
	err := NewWalker().Walk(root, func(s Subject) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Errorf("expected the callback error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestWalkMissingRoot(t *testing.T) {
	err := NewWalker().Walk(filepath.Join(t.TempDir(), "absent"), func(Subject) error { return nil })

	var dae *DirectoryAccessError
	if !errors.As(err, &dae) {
		t.Fatalf("expected a *DirectoryAccessError, got %v", err)
	}
}

func TestSkipRules(t *testing.T) {
	rules := DefaultSkipRules()
	rules.Globs = []string{"*_localizer"}

	cases := map[string]bool{
		"DIRFILE":        true,
		"dirfile":        false,
		"B0_S0_cal":      true,
		"T1w":            false,
		"t2_localizer":   true,
		"WIP DKI":        false,
		"task-rest_bold": false,
	}

	for name, want := range cases {
		if got := rules.Skip(name); got != want {
			t.Errorf("Skip(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestValidate(t *testing.T) {
	w := NewWalker()
	if err := w.Validate(); err != nil {
		t.Errorf("default walker should validate: %v", err)
	}

	w.RepresentativeGlobs = []string{"[I*"}
	if err := w.Validate(); err == nil {
		t.Error("expected an invalid representative glob to be rejected")
	}
}

func TestDetectAux(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"Behavioral%20data-TRENDS/TRENDS/RUN1_EXPORT.TXT",
		"Behavioral%20data-VFT/VFT/only.wav",
	)

	got := DetectAux(root, DefaultAuxRules())
	want := AuxFlags{TRENDS: true}
	if got != want {
		t.Errorf("DetectAux = %+v, want %+v", got, want)
	}

	if merged := got.Or(AuxFlags{VFT: true}); merged != (AuxFlags{VFT: true, TRENDS: true}) {
		t.Errorf("Or = %+v", merged)
	}
}

func TestDescribe(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"SUBJ9/301/DICOM/1.dcm",
		"SUBJ9/301/DICOM/2.dcm",
		"SUBJ9/301/DICOM/3.dcm",
	)

	seq, err := NewWalker().Describe(filepath.Join(root, "SUBJ9", "301") + string(filepath.Separator))
	if err != nil {
		t.Fatal(err)
	}

	want := SequenceFolder{
		Subject:        "SUBJ9",
		Name:           "301",
		Path:           filepath.Join(root, "SUBJ9", "301"),
		FilesPath:      filepath.Join(root, "SUBJ9", "301", DICOMDir),
		FileCount:      3,
		Representative: filepath.Join(root, "SUBJ9", "301", DICOMDir, "1.dcm"),
	}
	if diff := cmp.Diff(want, seq); diff != "" {
		t.Errorf("Describe mismatch (-want +got):\n%s", diff)
	}

	if _, err := NewWalker().Describe(filepath.Join(root, "absent")); err == nil {
		t.Error("describing a missing folder should fail")
	}
}
