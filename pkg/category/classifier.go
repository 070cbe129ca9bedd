package category

import (
	"regexp"
	"strings"
)

var numberSuffixRegex = regexp.MustCompile(` -[0-9]+$`)

// Classify returns the first category with a keyword contained in the channel
// name or stream URL. Matching is case-insensitive substring containment; a
// trailing " -<digits>" left by an earlier numbering pass is ignored on the name.
func (d Dictionary) Classify(name, streamURL string) (string, bool) {
	cleanName := CleanName(name)
	lowerURL := strings.ToLower(streamURL)

	for _, c := range d {
		for _, kw := range c.Keywords {
			if strings.Contains(cleanName, kw) || strings.Contains(lowerURL, kw) {
				return c.Name, true
			}
		}
	}

	return "", false
}

// CleanName lowercases a display name and strips a trailing numbering suffix.
func CleanName(name string) string {
	lower := strings.ToLower(name)
	return strings.TrimSpace(numberSuffixRegex.ReplaceAllString(lower, ""))
}
