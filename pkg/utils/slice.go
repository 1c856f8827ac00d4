package utils

import (
	"golang.org/x/exp/slices"
)

// Strings converts a decoded JSON list to strings, dropping non-scalar items.
func Strings(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := All2Str(item); ok {
			out = append(out, s)
		}
	}
	return out
}

// AppendUnique appends the items of add that s does not already contain,
// keeping the order of first appearance.
func AppendUnique(s []string, add ...string) []string {
	for _, item := range add {
		if !slices.Contains(s, item) {
			s = append(s, item)
		}
	}
	return s
}
