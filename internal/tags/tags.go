// Package tags enforces the canonical form for free-text tag strings.
package tags

import "strings"

const (
	leadingMarkers      = "#＃"
	trailingTerminators = ".．。"
)

// Normalize strips leading hash markers and trailing sentence terminators
// (half-width and full-width variants), then appends exactly one half-width
// dot. Empty or whitespace-only input yields the empty string; callers must
// drop it rather than store it. Normalize is idempotent.
func Normalize(raw string) string {
	t := strings.TrimSpace(raw)
	t = strings.TrimLeft(t, leadingMarkers)
	t = strings.TrimRight(t, trailingTerminators)
	t = strings.TrimSpace(t)
	if t == "" {
		return ""
	}
	return t + "."
}

// NormalizeAll normalizes every tag in order, dropping entries that
// normalize to the empty string. Duplicates are kept.
func NormalizeAll(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, tag := range raw {
		normalized := Normalize(tag)
		if normalized == "" {
			continue
		}
		out = append(out, normalized)
	}
	return out
}
