package engine

// Snapshot maps metric name to its single current value for one
// property/page. Supplied fresh per evaluation call, never retained.
type Snapshot map[string]float64

// HistoryPoint is one period's metric values. A metric absent from the map
// means the value was not computed for that day; callers do not interpolate.
type HistoryPoint map[string]float64

// History is ordered oldest to newest, one entry per period.
type History []HistoryPoint

// Series extracts the ordered values of one metric, skipping periods where
// the metric is absent.
func (h History) Series(metric string) []float64 {
	series := make([]float64, 0, len(h))
	for _, point := range h {
		if v, ok := point[metric]; ok {
			series = append(series, v)
		}
	}
	return series
}

// RuleResult reports the outcome of evaluating one rule. Skipped is distinct
// from Triggered=false: a skipped rule could not be evaluated at all.
type RuleResult struct {
	RuleID        string `json:"ruleId"`
	RuleName      string `json:"ruleName"`
	RuleType      string `json:"ruleType"`
	Triggered     bool   `json:"triggered"`
	Suppressed    bool   `json:"suppressed,omitempty"`
	Skipped       bool   `json:"skipped,omitempty"`
	SkipReason    string `json:"skipReason,omitempty"`
	Message       string `json:"message,omitempty"`
	AlertID       string `json:"alertId,omitempty"`
	Error         string `json:"error,omitempty"`
	DispatchError string `json:"dispatchError,omitempty"`
}
