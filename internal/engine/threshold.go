package engine

import (
	"fmt"
	"strconv"

	"seowatch/internal/rules"
)

// EvaluateThreshold compares one value against a configured operator and
// bound. Returns the hit decision plus observed/limit strings for messages
// and alert metadata. Malformed bounds never fire (fail-closed).
func EvaluateThreshold(spec rules.ThresholdSpec, value float64) (bool, string, string) {
	observed := fmt.Sprint(value)
	switch spec.Op {
	case ">":
		target, ok := toFloat(spec.Value)
		return ok && value > target, observed, fmt.Sprintf("> %v", target)
	case ">=":
		target, ok := toFloat(spec.Value)
		return ok && value >= target, observed, fmt.Sprintf(">= %v", target)
	case "<":
		target, ok := toFloat(spec.Value)
		return ok && value < target, observed, fmt.Sprintf("< %v", target)
	case "<=":
		target, ok := toFloat(spec.Value)
		return ok && value <= target, observed, fmt.Sprintf("<= %v", target)
	case "==", "=":
		target, ok := toFloat(spec.Value)
		return ok && value == target, observed, fmt.Sprintf("== %v", target)
	case "!=", "<>":
		target, ok := toFloat(spec.Value)
		return ok && value != target, observed, fmt.Sprintf("!= %v", target)
	case "between":
		if spec.Min == nil || spec.Max == nil {
			return false, observed, "between"
		}
		return value >= *spec.Min && value <= *spec.Max, observed, fmt.Sprintf("between [%v, %v]", *spec.Min, *spec.Max)
	case "not_between":
		if spec.Min == nil || spec.Max == nil {
			return false, observed, "not_between"
		}
		return value < *spec.Min || value > *spec.Max, observed, fmt.Sprintf("not between [%v, %v]", *spec.Min, *spec.Max)
	default:
		return false, observed, spec.Op
	}
}

// MalformedThreshold reports whether the condition is missing the bounds its
// operator requires. The caller logs a warning; the evaluator itself just
// declines to fire.
func MalformedThreshold(spec rules.ThresholdSpec) bool {
	switch spec.Op {
	case "between", "not_between":
		return spec.Min == nil || spec.Max == nil
	default:
		_, ok := toFloat(spec.Value)
		return !ok
	}
}

func toFloat(val interface{}) (float64, bool) {
	switch t := val.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case int32:
		return float64(t), true
	case string:
		parsed, err := strconv.ParseFloat(t, 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}
