package rules

import "encoding/json"

// ParseRule decodes a stored rule document and validates its shape. A rule
// that fails validation is never handed to the engine.
func ParseRule(data []byte) (Rule, *ParseError) {
	var rule Rule
	if err := json.Unmarshal(data, &rule); err != nil {
		return Rule{}, &ParseError{
			Code:    "RULE_JSON_INVALID",
			Message: "rule document is not valid JSON",
			Details: []ErrorDetail{{Field: "", Problem: "unparseable", Hint: err.Error()}},
		}
	}
	normalizeRule(&rule)
	if perr := ValidateRule(rule); perr != nil {
		return Rule{}, perr
	}
	return rule, nil
}

func normalizeRule(rule *Rule) {
	if rule.Severity == "" {
		rule.Severity = SeverityMedium
	}
	if rule.Type == TypeAnomaly && rule.Condition.Anomaly != nil && rule.Condition.Anomaly.Sensitivity == "" {
		rule.Condition.Anomaly.Sensitivity = SensitivityMedium
	}
	if rule.Condition.Threshold != nil {
		normalizeOp(rule.Condition.Threshold)
	}
}

// normalizeOp folds operator aliases so the evaluator sees one spelling.
func normalizeOp(spec *ThresholdSpec) {
	switch spec.Op {
	case "=":
		spec.Op = "=="
	case "<>":
		spec.Op = "!="
	}
}
