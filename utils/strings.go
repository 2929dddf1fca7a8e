package utils

import "strings"

// StringJoin joins items with delim, skipping empty entries.
func StringJoin(items []string, delim string) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if item == "" {
			continue
		}
		parts = append(parts, item)
	}
	return strings.Join(parts, delim)
}
