package common

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// GetStringArg returns args[key] as a trimmed string, or def when missing or empty.
func GetStringArg(args map[string]interface{}, key, def string) string {
	if v, ok := args[key].(string); ok {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return def
}

// RequireStringArg returns args[key] as a non-empty string.
func RequireStringArg(args map[string]interface{}, key string) (string, error) {
	v := GetStringArg(args, key, "")
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

// GetIntArg returns args[key] as an int. JSON numbers arrive as float64 and
// must be whole; numeric strings are accepted too.
func GetIntArg(args map[string]interface{}, key string, def int) (int, error) {
	switch v := args[key].(type) {
	case nil:
		return def, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%s must be a whole number, got %v", key, v)
		}
		return int(v), nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case string:
		if strings.TrimSpace(v) == "" {
			return def, nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s must be an integer, got %T", key, v)
	}
}

// GetBoolArg returns args[key] as a bool, or def when missing.
func GetBoolArg(args map[string]interface{}, key string, def bool) bool {
	switch v := args[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// GetStringSliceArg accepts either a JSON array of strings or a comma
// separated string. Empty items are dropped.
func GetStringSliceArg(args map[string]interface{}, key string) []string {
	var raw []string
	switch v := args[key].(type) {
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	case []string:
		raw = v
	case string:
		raw = strings.Split(v, ",")
	}

	var out []string
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
