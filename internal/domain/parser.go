package domain

import (
	"regexp"
	"strings"
)

// listMarker splits a completion into description and numbered items.
// Numerals followed by a period inside prose ("step 3.5") also match; callers
// get the same split the marker rule produces.
var listMarker = regexp.MustCompile(`\d+\.`)

// ParseCompletion splits completion text into a leading description and the
// numbered recommendations that follow it. Items that are empty after trimming
// are dropped, and Recommendations is never nil.
func ParseCompletion(text string) *ParsedTroubleshooting {
	parts := listMarker.Split(text, -1)

	recommendations := make([]string, 0, len(parts)-1)
	for _, part := range parts[1:] {
		if item := strings.TrimSpace(part); item != "" {
			recommendations = append(recommendations, item)
		}
	}

	return &ParsedTroubleshooting{
		Description:     strings.TrimSpace(parts[0]),
		Recommendations: recommendations,
	}
}
