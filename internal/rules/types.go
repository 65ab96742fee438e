package rules

const (
	TypeThreshold = "threshold"
	TypeAnomaly   = "anomaly"
	TypePattern   = "pattern"
)

const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

const (
	SensitivityLow    = "low"
	SensitivityMedium = "medium"
	SensitivityHigh   = "high"
)

const (
	PatternConsecutiveDecline = "consecutive_decline"
	PatternConsecutiveGrowth  = "consecutive_growth"
	PatternTrendReversal      = "trend_reversal"
)

// Rule is the unit of evaluation. Rules are created and edited by external
// tooling; the engine treats them as read-only.
type Rule struct {
	ID                       string        `json:"id"`
	Name                     string        `json:"name"`
	Type                     string        `json:"type"`
	Metric                   string        `json:"metric"`
	Condition                ConditionSpec `json:"condition"`
	Severity                 string        `json:"severity"`
	SuppressionWindowMinutes *int          `json:"suppressionWindowMinutes,omitempty"`
	Action                   ActionSpec    `json:"action"`
	Enabled                  bool          `json:"enabled"`
}

// ConditionSpec is a closed variant: exactly one payload may be set and it
// must match the rule type.
type ConditionSpec struct {
	Threshold *ThresholdSpec `json:"threshold,omitempty"`
	Anomaly   *AnomalySpec   `json:"anomaly,omitempty"`
	Pattern   *PatternSpec   `json:"pattern,omitempty"`
}

type ThresholdSpec struct {
	Op    string      `json:"op"`
	Value interface{} `json:"value"`
	Min   *float64    `json:"min"`
	Max   *float64    `json:"max"`
}

type AnomalySpec struct {
	Sensitivity string `json:"sensitivity"`
}

type PatternSpec struct {
	Pattern  string `json:"pattern"`
	Duration int    `json:"duration"`
}

// ActionSpec names the notification channel and carries channel-specific
// parameters. Opaque to the evaluators.
type ActionSpec struct {
	Type   string            `json:"type"`
	Params map[string]string `json:"params,omitempty"`
}

type ErrorDetail struct {
	Field   string `json:"field"`
	Problem string `json:"problem"`
	Hint    string `json:"hint"`
}

type ParseError struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details"`
}

func (e *ParseError) Error() string {
	return e.Message
}
