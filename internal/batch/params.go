package batch

import (
	"fmt"
	"time"
)

// Params are the arguments of one step, as decoded from YAML or from an MCP
// tool call.
type Params map[string]any

func stringParam(params Params, key, defaultVal string) string {
	if v, ok := params[key]; ok && v != nil {
		if s, ok := v.(string); ok {
			return s
		}
		// Handle numeric values that YAML may parse as int/float
		return fmt.Sprintf("%v", v)
	}
	return defaultVal
}

func intParam(params Params, key string, defaultVal int) int {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		case int64:
			return int(n)
		}
	}
	return defaultVal
}

func floatParam(params Params, key string, defaultVal float64) float64 {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		case int64:
			return float64(n)
		}
	}
	return defaultVal
}

func boolParam(params Params, key string, defaultVal bool) bool {
	if v, ok := params[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return defaultVal
}

// durationParam accepts a Go duration string ("1.5s") or a number of
// milliseconds. ok is false when the key is absent.
func durationParam(params Params, key string) (d time.Duration, ok bool, err error) {
	v, present := params[key]
	if !present || v == nil {
		return 0, false, nil
	}
	switch n := v.(type) {
	case string:
		d, err := time.ParseDuration(n)
		if err != nil {
			return 0, false, fmt.Errorf("%s: %w", key, err)
		}
		return d, true, nil
	case int:
		return time.Duration(n) * time.Millisecond, true, nil
	case int64:
		return time.Duration(n) * time.Millisecond, true, nil
	case float64:
		return time.Duration(n * float64(time.Millisecond)), true, nil
	default:
		return 0, false, fmt.Errorf("%s: expected a duration or milliseconds, got %v", key, v)
	}
}

// optionalDuration is durationParam for the *time.Duration overrides of the
// dispatcher.
func optionalDuration(params Params, key string) (*time.Duration, error) {
	d, ok, err := durationParam(params, key)
	if err != nil || !ok {
		return nil, err
	}
	return &d, nil
}
