package notify

import (
	"context"
	"time"

	"seowatch/internal/rules"
)

// Alert is the channel-independent payload handed to dispatchers.
type Alert struct {
	ID          string    `json:"id"`
	RuleID      string    `json:"ruleId"`
	RuleName    string    `json:"ruleName"`
	Property    string    `json:"property"`
	PagePath    string    `json:"pagePath,omitempty"`
	Severity    string    `json:"severity"`
	Message     string    `json:"message"`
	TriggeredAt time.Time `json:"triggeredAt"`
}

// Dispatcher delivers one alert over one channel type. Delivery is
// at-least-once; a returned error means the caller should surface the
// failure, not that the alert record is lost.
type Dispatcher interface {
	Send(ctx context.Context, action rules.ActionSpec, alert Alert) error
}
