package storage

import (
	"encoding/json"
	"time"
)

// Alert status lifecycle. The engine only ever creates `new` rows; the
// later transitions belong to external workflow tooling.
const (
	StatusNew           = "new"
	StatusInvestigating = "investigating"
	StatusDiagnosed     = "diagnosed"
	StatusActioned      = "actioned"
	StatusResolved      = "resolved"
	StatusFalsePositive = "false_positive"
)

var validStatuses = map[string]struct{}{
	StatusNew:           {},
	StatusInvestigating: {},
	StatusDiagnosed:     {},
	StatusActioned:      {},
	StatusResolved:      {},
	StatusFalsePositive: {},
}

func ValidStatus(status string) bool {
	_, ok := validStatuses[status]
	return ok
}

type RuleRecord struct {
	ID       string
	Property string
	RuleJSON []byte
	Enabled  bool
}

type AlertRecord struct {
	ID          string
	RuleID      string
	Property    string
	PagePath    string
	Severity    string
	Title       string
	Message     string
	Metadata    json.RawMessage
	TriggeredAt time.Time
	Status      string
}
