package audit

import (
	"testing"
	"testing/quick"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"WIP DKI", "dki"},
		{"WIP  T1w_PSIR ", "t1w_psir"},
		{"WIP\tfieldmap", "fieldmap"},
		{"dki", "dki"},
		{"Ref_DWI_AP", "ref_dwi_ap"},
		{"task-rest_bold", "task-rest_bold"},
		{"  FLAIR  ", "flair"},
		{"wip DKI", "wip dki"},
		{"WIPDKI", "wipdki"},
		{"WIP", "wip"},
		{" WIP DKI", "wip dki"},
		{"WIP WIP DKI", "wip dki"},
		{"", ""},
	}

	for _, c := range cases {
		if got := Normalize(c.raw); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.raw, got, c.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	idempotent := func(raw string) bool {
		once := Normalize(raw)
		return Normalize(once) == once
	}

	if err := quick.Check(idempotent, nil); err != nil {
		t.Error(err)
	}

	for _, raw := range []string{"WIP DKI", "WIP WIP DKI", " WIP x", "WIP T2w", "Survey"} {
		if !idempotent(raw) {
			t.Errorf("Normalize is not idempotent for %q", raw)
		}
	}
}
