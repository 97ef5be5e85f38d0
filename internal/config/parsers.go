package config

import (
	"strings"
)

// ParseExtraParameters parses a flat "key=value,key=value" string into a map.
//
// Segments are split on ','. Within a segment the first '=' separates the
// trimmed key from the trimmed value. Segments without an '=' or whose '='
// is the first character are silently dropped; this matches the permissive
// behavior existing property files rely on. Empty or all-whitespace input
// yields an empty map, never nil.
func ParseExtraParameters(raw string) map[string]string {
	params := make(map[string]string)
	if strings.TrimSpace(raw) == "" {
		return params
	}
	for _, segment := range strings.Split(raw, ",") {
		eq := strings.Index(segment, "=")
		if eq <= 0 {
			continue
		}
		key := strings.TrimSpace(segment[:eq])
		value := strings.TrimSpace(segment[eq+1:])
		params[key] = value
	}
	return params
}
