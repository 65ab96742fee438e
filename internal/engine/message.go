package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"seowatch/internal/rules"
)

// ComposeMessage builds the human-readable explanation attached to an alert.
// It recomputes the same statistics the evaluators used, so the text always
// matches the decision. Composing never fails: when the underlying values
// are unavailable it falls back to a generic one-liner.
func ComposeMessage(rule rules.Rule, snap Snapshot, hist History, tiers SensitivityTable) string {
	switch rule.Type {
	case rules.TypeThreshold:
		if rule.Condition.Threshold == nil {
			break
		}
		value, ok := snap[rule.Metric]
		if !ok {
			break
		}
		spec := *rule.Condition.Threshold
		return fmt.Sprintf("Metric '%s' value %s %s", rule.Metric, formatNumber(value), limitText(spec))
	case rules.TypeAnomaly:
		if rule.Condition.Anomaly == nil {
			break
		}
		series := hist.Series(rule.Metric)
		res := EvaluateAnomaly(series, rule.Condition.Anomaly.Sensitivity, tiers)
		if !res.Sufficient || res.StdDev == 0 {
			break
		}
		return fmt.Sprintf("Metric '%s' latest %s deviates from baseline mean %.2f (z-score %.2f, sensitivity %s)",
			rule.Metric, formatNumber(res.Latest), res.Mean, res.ZScore, res.Sensitivity)
	case rules.TypePattern:
		if rule.Condition.Pattern == nil {
			break
		}
		spec := *rule.Condition.Pattern
		res := EvaluatePattern(hist.Series(rule.Metric), spec.Pattern, spec.Duration)
		if !res.Sufficient || len(res.Window) == 0 {
			break
		}
		return fmt.Sprintf("Metric '%s' %s over %d periods: %s",
			rule.Metric, spec.Pattern, spec.Duration, formatSeries(res.Window))
	}
	return fmt.Sprintf("Rule '%s' (%s) triggered for metric '%s'", rule.Name, rule.Type, rule.Metric)
}

func limitText(spec rules.ThresholdSpec) string {
	switch spec.Op {
	case "between", "not_between":
		if spec.Min == nil || spec.Max == nil {
			return spec.Op
		}
		return fmt.Sprintf("%s [%s, %s]", strings.ReplaceAll(spec.Op, "_", " "), formatNumber(*spec.Min), formatNumber(*spec.Max))
	default:
		target, ok := toFloat(spec.Value)
		if !ok {
			return spec.Op
		}
		return fmt.Sprintf("%s %s", spec.Op, formatNumber(target))
	}
}

// formatNumber rounds to 2 decimals and drops trailing zeros.
func formatNumber(v float64) string {
	rounded := math.Round(v*100) / 100
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

func formatSeries(values []float64) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, formatNumber(v))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
