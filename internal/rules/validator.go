package rules

import (
	"fmt"
	"strconv"
)

var validSeverities = map[string]struct{}{
	SeverityLow:      {},
	SeverityMedium:   {},
	SeverityHigh:     {},
	SeverityCritical: {},
}

var validOps = map[string]struct{}{
	">": {}, "<": {}, "==": {}, ">=": {}, "<=": {}, "!=": {},
	"between": {}, "not_between": {},
}

var validSensitivities = map[string]struct{}{
	SensitivityLow:    {},
	SensitivityMedium: {},
	SensitivityHigh:   {},
}

var validPatterns = map[string]struct{}{
	PatternConsecutiveDecline: {},
	PatternConsecutiveGrowth:  {},
	PatternTrendReversal:      {},
}

// ValidateRule rejects rules the engine could not evaluate fail-closed:
// unknown types, mismatched condition variants, malformed bounds.
func ValidateRule(rule Rule) *ParseError {
	var details []ErrorDetail
	if rule.ID == "" {
		details = append(details, ErrorDetail{Field: "id", Problem: "missing", Hint: "Provide a rule id"})
	}
	if rule.Metric == "" {
		details = append(details, ErrorDetail{Field: "metric", Problem: "missing", Hint: "Name the metric to evaluate"})
	}
	if _, ok := validSeverities[rule.Severity]; !ok {
		details = append(details, ErrorDetail{Field: "severity", Problem: "invalid", Hint: "One of low, medium, high, critical"})
	}
	if rule.SuppressionWindowMinutes != nil && *rule.SuppressionWindowMinutes < 0 {
		details = append(details, ErrorDetail{Field: "suppressionWindowMinutes", Problem: "negative", Hint: "Must be >= 0"})
	}
	details = append(details, validateCondition(rule)...)
	if len(details) > 0 {
		return &ParseError{Code: "RULE_SCHEMA_INVALID", Message: "rule failed validation", Details: details}
	}
	return nil
}

func validateCondition(rule Rule) []ErrorDetail {
	var details []ErrorDetail
	cond := rule.Condition
	set := 0
	if cond.Threshold != nil {
		set++
	}
	if cond.Anomaly != nil {
		set++
	}
	if cond.Pattern != nil {
		set++
	}
	if set != 1 {
		return []ErrorDetail{{Field: "condition", Problem: "ambiguous", Hint: "Exactly one condition payload must be set"}}
	}
	switch rule.Type {
	case TypeThreshold:
		if cond.Threshold == nil {
			return []ErrorDetail{{Field: "condition.threshold", Problem: "missing", Hint: "threshold rules need a threshold condition"}}
		}
		details = append(details, validateThreshold(*cond.Threshold)...)
	case TypeAnomaly:
		if cond.Anomaly == nil {
			return []ErrorDetail{{Field: "condition.anomaly", Problem: "missing", Hint: "anomaly rules need an anomaly condition"}}
		}
		if _, ok := validSensitivities[cond.Anomaly.Sensitivity]; !ok {
			details = append(details, ErrorDetail{Field: "condition.anomaly.sensitivity", Problem: "invalid", Hint: "One of low, medium, high"})
		}
	case TypePattern:
		if cond.Pattern == nil {
			return []ErrorDetail{{Field: "condition.pattern", Problem: "missing", Hint: "pattern rules need a pattern condition"}}
		}
		if _, ok := validPatterns[cond.Pattern.Pattern]; !ok {
			details = append(details, ErrorDetail{Field: "condition.pattern.pattern", Problem: "invalid", Hint: "One of consecutive_decline, consecutive_growth, trend_reversal"})
		}
		if cond.Pattern.Duration < 2 {
			details = append(details, ErrorDetail{Field: "condition.pattern.duration", Problem: "too small", Hint: "Must be >= 2"})
		}
	default:
		details = append(details, ErrorDetail{Field: "type", Problem: "invalid", Hint: "One of threshold, anomaly, pattern"})
	}
	return details
}

func validateThreshold(spec ThresholdSpec) []ErrorDetail {
	var details []ErrorDetail
	if _, ok := validOps[spec.Op]; !ok {
		details = append(details, ErrorDetail{Field: "condition.threshold.op", Problem: "invalid", Hint: "Unsupported comparison operator"})
	}
	switch spec.Op {
	case "between", "not_between":
		if spec.Min == nil || spec.Max == nil {
			details = append(details, ErrorDetail{Field: "condition.threshold", Problem: "missing bounds", Hint: "between needs min and max"})
		} else if *spec.Min > *spec.Max {
			details = append(details, ErrorDetail{Field: "condition.threshold", Problem: "inverted bounds", Hint: "min must be <= max"})
		}
	default:
		if spec.Value == nil {
			details = append(details, ErrorDetail{Field: "condition.threshold.value", Problem: "missing", Hint: "Provide a comparison value"})
		} else if !isNumeric(spec.Value) {
			details = append(details, ErrorDetail{Field: "condition.threshold.value", Problem: "not numeric", Hint: fmt.Sprintf("Got %T", spec.Value)})
		}
	}
	return details
}

func isNumeric(val interface{}) bool {
	switch t := val.(type) {
	case float64, float32, int, int32, int64:
		return true
	case string:
		_, err := strconv.ParseFloat(t, 64)
		return err == nil
	default:
		return false
	}
}
