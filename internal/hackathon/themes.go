package hackathon

import (
	"strings"

	"golang.org/x/text/cases"
)

// themeAliases maps case-folded theme text to its canonical label.
var themeAliases = map[string]string{
	"machine learning/ai":     "AI/ML",
	"machine learning":        "AI/ML",
	"artificial intelligence": "AI/ML",
	"open source":             "Open Source",
	"blockchain":              "Blockchain",
	"no restrictions":         "General",
}

// fold returns the case-folded form of s used for alias and organizer lookups.
func fold(s string) string {
	return cases.Fold().String(s)
}

// NormalizeTheme collapses whitespace in a theme and replaces known synonyms
// with their canonical label. Unknown themes are returned as written.
func NormalizeTheme(theme string) string {
	normalized := collapseSpace(theme)
	if normalized == "" {
		return ""
	}
	if alias, ok := themeAliases[fold(normalized)]; ok {
		return alias
	}
	return normalized
}

// CanonicalThemes normalizes each theme, drops empties, and removes
// duplicates while keeping first-seen order.
func CanonicalThemes(themes []string) []string {
	out := make([]string, 0, len(themes))
	seen := make(map[string]bool)
	for _, t := range themes {
		n := NormalizeTheme(t)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// ContainsAny reports whether s contains any of the substrings.
func ContainsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
