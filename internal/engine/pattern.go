package engine

import "seowatch/internal/rules"

const (
	trendGrowth  = "growth"
	trendDecline = "decline"
	trendStable  = "stable"
)

type PatternResult struct {
	Hit        bool
	Sufficient bool
	Known      bool
	// Window holds the recent values the decision was made over.
	Window []float64
	// PreviousTrend/RecentTrend are set for trend_reversal.
	PreviousTrend string
	RecentTrend   string
}

// EvaluatePattern tests the tail of a series for a multi-period trend
// pattern. Short series are reported as insufficient, never approximated
// with overlapping or partial windows.
func EvaluatePattern(series []float64, pattern string, duration int) PatternResult {
	switch pattern {
	case rules.PatternConsecutiveDecline:
		return evaluateMonotone(series, duration, false)
	case rules.PatternConsecutiveGrowth:
		return evaluateMonotone(series, duration, true)
	case rules.PatternTrendReversal:
		return evaluateReversal(series, duration)
	default:
		return PatternResult{Sufficient: true}
	}
}

func evaluateMonotone(series []float64, duration int, growth bool) PatternResult {
	result := PatternResult{Known: true}
	if duration < 2 || len(series) < duration {
		return result
	}
	result.Sufficient = true
	window := series[len(series)-duration:]
	result.Window = window
	for i := 1; i < len(window); i++ {
		if growth && window[i] <= window[i-1] {
			return result
		}
		if !growth && window[i] >= window[i-1] {
			return result
		}
	}
	result.Hit = true
	return result
}

func evaluateReversal(series []float64, duration int) PatternResult {
	result := PatternResult{Known: true}
	if duration < 2 || len(series) < duration+2 {
		return result
	}
	prevEnd := len(series) - duration
	prevStart := prevEnd - duration
	if prevStart < 0 {
		// Cannot form two full non-overlapping windows.
		return result
	}
	result.Sufficient = true
	previous := series[prevStart:prevEnd]
	recent := series[prevEnd:]
	result.Window = recent
	result.PreviousTrend = classifyTrend(previous)
	result.RecentTrend = classifyTrend(recent)
	result.Hit = (result.PreviousTrend == trendDecline && result.RecentTrend == trendGrowth) ||
		(result.PreviousTrend == trendGrowth && result.RecentTrend == trendDecline)
	return result
}

// classifyTrend requires both the endpoint delta and the majority of steps
// to agree, so a single large step cannot override a flat window.
func classifyTrend(values []float64) string {
	if len(values) < 2 {
		return trendStable
	}
	first := values[0]
	last := values[len(values)-1]
	ups, downs := 0, 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[i-1] {
			ups++
		} else if values[i] < values[i-1] {
			downs++
		}
	}
	if last > first && ups > downs {
		return trendGrowth
	}
	if last < first && downs > ups {
		return trendDecline
	}
	return trendStable
}
