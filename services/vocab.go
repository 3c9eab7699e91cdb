package services

import (
	"os"
	"strings"
)

// Division labels drifted across frontend revisions, so the canonical set is
// configuration, not a hardcoded contract. FEEDBACK_DIVISIONS is a comma
// separated list; the default matches the current label set.
const defaultDivisions = "LnT,EEO,PR,HRD,RnD"

// Divisions returns the configured division label set.
func Divisions() []string {
	raw := os.Getenv("FEEDBACK_DIVISIONS")
	if raw == "" {
		raw = defaultDivisions
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ValidDivision reports whether label is one of the configured divisions.
func ValidDivision(label string) bool {
	for _, d := range Divisions() {
		if d == label {
			return true
		}
	}
	return false
}
