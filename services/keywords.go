package services

import "strings"

// ParseKeywords splits a comma-separated model reply into trimmed, non-empty
// keywords in their original order. Duplicates are kept and no count bound
// is enforced.
func ParseKeywords(text string) []string {
	keywords := []string{}
	for _, piece := range strings.Split(text, ",") {
		if k := strings.TrimSpace(piece); k != "" {
			keywords = append(keywords, k)
		}
	}
	return keywords
}
