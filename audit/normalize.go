// Package audit decides, per subject, which expected imaging sequences are
// absent or incomplete. Sequence names are normalized, compared against a
// catalog of expected file counts and collapsed into one summary row per
// subject.
package audit

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// WIPPrefix is prepended by the scanner console to protocols that were saved
// as "work in progress". It is case sensitive.
const WIPPrefix = "WIP"

// Normalize maps a raw sequence name, as found in a folder name or in the
// ProtocolName tag, to the key used by the Catalog. A leading "WIP " token is
// removed, the remainder is lowercased and surrounding whitespace is trimmed.
// Nothing else is touched, so "Ref_DWI_AP" and "ref_dwi_ap" collide but
// "ref-dwi-ap" does not.
func Normalize(raw string) string {
	if rest := strings.TrimPrefix(raw, WIPPrefix); len(rest) < len(raw) {
		if r, _ := utf8.DecodeRuneInString(rest); r != utf8.RuneError && unicode.IsSpace(r) {
			raw = rest
		}
	}

	return strings.TrimSpace(strings.ToLower(raw))
}
