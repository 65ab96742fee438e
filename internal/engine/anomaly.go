package engine

import (
	"math"

	"seowatch/internal/rules"
)

// SensitivityTable maps a named sensitivity tier to the z-score a deviation
// must exceed to fire. Injected at construction so tests can substitute
// alternate mappings without global state.
type SensitivityTable map[string]float64

func DefaultSensitivity() SensitivityTable {
	return SensitivityTable{
		rules.SensitivityLow:    3.0,
		rules.SensitivityMedium: 2.5,
		rules.SensitivityHigh:   2.0,
	}
}

// Threshold resolves a tier name. Unknown names fall back to medium.
func (t SensitivityTable) Threshold(sensitivity string) (float64, string) {
	if z, ok := t[sensitivity]; ok {
		return z, sensitivity
	}
	return t[rules.SensitivityMedium], rules.SensitivityMedium
}

type AnomalyResult struct {
	Hit         bool
	Sufficient  bool
	Latest      float64
	Mean        float64
	StdDev      float64
	ZScore      float64
	ZThreshold  float64
	Sensitivity string
}

// EvaluateAnomaly runs a two-sided z-score test of the latest value against
// the baseline formed by all preceding values. A constant baseline (zero
// variance) cannot produce a meaningful score and never fires.
func EvaluateAnomaly(series []float64, sensitivity string, tiers SensitivityTable) AnomalyResult {
	zThreshold, tier := tiers.Threshold(sensitivity)
	result := AnomalyResult{ZThreshold: zThreshold, Sensitivity: tier}
	if len(series) < 3 {
		return result
	}
	result.Sufficient = true
	historical := series[:len(series)-1]
	result.Latest = series[len(series)-1]
	result.Mean = Mean(historical)
	result.StdDev = StdDev(historical, true)
	if result.StdDev == 0 {
		return result
	}
	result.ZScore = math.Abs(result.Latest-result.Mean) / result.StdDev
	result.Hit = result.ZScore > zThreshold
	return result
}
