package antispam

import (
	"strconv"
	"strings"
)

// NormalizeContent trims, lower-cases, and collapses internal whitespace
// runs to single spaces so cosmetic edits do not defeat duplicate detection.
func NormalizeContent(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// Fingerprint hashes normalized complaint text into a short base-36 string.
// This is an abuse heuristic, not a security boundary; loose collisions are
// acceptable.
func Fingerprint(text string) string {
	normalized := NormalizeContent(text)
	var h uint32
	for _, r := range normalized {
		h = h*31 + uint32(r)
	}
	return strconv.FormatUint(uint64(h), 36)
}
