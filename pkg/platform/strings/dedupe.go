// Package strings provides small string-slice helpers for list-valued
// configuration.
package strings

import (
	"strings"
)

// DedupeAndTrim trims each element and drops empties and duplicates,
// preserving first-seen order. Used for comma-separated env lists like
// broker addresses.
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}
