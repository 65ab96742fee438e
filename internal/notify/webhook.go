package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"seowatch/internal/rules"
)

type WebhookDispatcher struct {
	cfg    WebhookConfig
	client *http.Client
}

func NewWebhookDispatcher(cfg WebhookConfig) *WebhookDispatcher {
	return &WebhookDispatcher{
		cfg:    cfg,
		client: &http.Client{Timeout: timeoutOrDefault(cfg.TimeoutSeconds)},
	}
}

// Send posts the alert as JSON. A per-rule `url` action param overrides the
// configured endpoint.
func (d *WebhookDispatcher) Send(ctx context.Context, action rules.ActionSpec, alert Alert) error {
	url := d.cfg.URL
	if override, ok := action.Params["url"]; ok && override != "" {
		url = override
	}
	payload, err := json.Marshal(alert)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range d.cfg.Headers {
		req.Header.Set(key, value)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
