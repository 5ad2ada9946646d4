package scope

import (
	"strconv"
	"strings"
)

// ToNumber coerces a resolved value to a float64. Numeric strings coerce
// numerically so that conditional operators can compare values read from
// tabular row input, where everything arrives as a string.
func ToNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// ToBool coerces a resolved value to a bool. The strings accepted are the
// ones strconv.ParseBool understands ("true", "1", "F", ...).
func ToBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return false, false
		}
		return parsed, true
	default:
		return false, false
	}
}
