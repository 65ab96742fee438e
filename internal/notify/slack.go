package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"seowatch/internal/rules"
)

type SlackDispatcher struct {
	cfg    SlackConfig
	client *http.Client
}

func NewSlackDispatcher(cfg SlackConfig) *SlackDispatcher {
	return &SlackDispatcher{
		cfg:    cfg,
		client: &http.Client{Timeout: timeoutOrDefault(cfg.TimeoutSeconds)},
	}
}

type slackMessage struct {
	Text    string `json:"text"`
	Channel string `json:"channel,omitempty"`
}

func (d *SlackDispatcher) Send(ctx context.Context, action rules.ActionSpec, alert Alert) error {
	channel := d.cfg.Channel
	if override, ok := action.Params["channel"]; ok && override != "" {
		channel = override
	}
	msg := slackMessage{
		Text:    fmt.Sprintf("[%s] %s: %s (%s)", alert.Severity, alert.RuleName, alert.Message, alert.Property),
		Channel: channel,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}
	return nil
}
