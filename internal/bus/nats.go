package bus

import (
	"encoding/json"

	"github.com/nats-io/nats.go"
)

// RuleEvent announces a rule lifecycle change on subjects like rule.created.
type RuleEvent struct {
	RuleID string `json:"rule_id"`
}

// AlertEvent is published on alert.triggered after an alert is persisted.
type AlertEvent struct {
	AlertID  string `json:"alert_id"`
	RuleID   string `json:"rule_id"`
	Property string `json:"property"`
	Severity string `json:"severity"`
}

type Publisher struct {
	Conn *nats.Conn
}

func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	return &Publisher{Conn: conn}, nil
}

func (p *Publisher) Publish(subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.Conn.Publish(subject, data)
}

func (p *Publisher) Close() {
	if p.Conn != nil {
		p.Conn.Drain()
		p.Conn.Close()
	}
}

type Subscriber struct {
	Conn *nats.Conn
}

func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	return &Subscriber{Conn: conn}, nil
}

func (s *Subscriber) Subscribe(subject string, handler func(RuleEvent)) (*nats.Subscription, error) {
	return s.Conn.Subscribe(subject, func(msg *nats.Msg) {
		var evt RuleEvent
		_ = json.Unmarshal(msg.Data, &evt)
		handler(evt)
	})
}

func (s *Subscriber) Close() {
	if s.Conn != nil {
		s.Conn.Drain()
		s.Conn.Close()
	}
}
