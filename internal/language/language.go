package language

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Names of languages the platform collects, mapped to their canonical tags.
// Covers what reviewers type in practice; anything else must be a parseable
// BCP 47 tag.
var byName = map[string]string{
	"icelandic": "is-IS",
	"faroese":   "fo-FO",
	"danish":    "da-DK",
	"norwegian": "nb-NO",
	"swedish":   "sv-SE",
	"finnish":   "fi-FI",
	"english":   "en",
	"german":    "de",
	"french":    "fr",
	"spanish":   "es",
	"polish":    "pl",
}

// NormalizeTag resolves input to a canonical BCP 47 tag string. An empty
// input is an error; callers supply their own default.
func NormalizeTag(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", fmt.Errorf("language tag is required")
	}
	if tag, ok := byName[strings.ToLower(trimmed)]; ok {
		trimmed = tag
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("parse language tag %q: %w", input, err)
	}
	return tag.String(), nil
}

// DisplayName returns the English name for a tag, or "Unknown" when the tag
// cannot be parsed.
func DisplayName(tagValue string) string {
	tag, err := language.Parse(strings.TrimSpace(tagValue))
	if err != nil {
		return "Unknown"
	}
	return display.English.Tags().Name(tag)
}
