package provider

import (
	"strconv"
	"strings"
)

// Accessors for loosely-shaped provider records. Providers mix strings,
// numbers, and nulls freely, so every read tolerates the wrong type.

func rawString(r map[string]any, key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

func rawInt(r map[string]any, key string) int {
	switch v := r[key].(type) {
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func rawMap(r map[string]any, key string) map[string]any {
	if v, ok := r[key].(map[string]any); ok {
		return v
	}
	return map[string]any{}
}

func rawStrings(r map[string]any, key string) []string {
	list, ok := r[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
