package normalization

import "strings"

// ParseInputString trims and lowercases free-form identifiers such as
// usernames, emails and enum values.
func ParseInputString(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}
