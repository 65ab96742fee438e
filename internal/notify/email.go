package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"seowatch/internal/rules"
)

type EmailDispatcher struct {
	cfg EmailConfig
	// send is swappable for tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewEmailDispatcher(cfg EmailConfig) *EmailDispatcher {
	return &EmailDispatcher{cfg: cfg, send: smtp.SendMail}
}

// Send delivers the alert as a plain-text email. A per-rule `to` action
// param (comma separated) overrides the configured recipients.
func (d *EmailDispatcher) Send(ctx context.Context, action rules.ActionSpec, alert Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	to := d.cfg.To
	if override, ok := action.Params["to"]; ok && override != "" {
		to = splitRecipients(override)
	}
	if len(to) == 0 {
		return fmt.Errorf("no email recipients configured")
	}
	subject := fmt.Sprintf("[%s] %s", strings.ToUpper(alert.Severity), alert.RuleName)
	body := fmt.Sprintf("%s\r\n\r\nProperty: %s\r\nTriggered: %s\r\nAlert ID: %s\r\n",
		alert.Message, alert.Property, alert.TriggeredAt.Format("2006-01-02 15:04:05 UTC"), alert.ID)
	msg := strings.Builder{}
	msg.WriteString("From: " + d.cfg.From + "\r\n")
	msg.WriteString("To: " + strings.Join(to, ", ") + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", d.cfg.Host, d.cfg.Port)
	var auth smtp.Auth
	if d.cfg.Username != "" {
		auth = smtp.PlainAuth("", d.cfg.Username, d.cfg.Password, d.cfg.Host)
	}
	return d.send(addr, auth, d.cfg.From, to, []byte(msg.String()))
}

func splitRecipients(value string) []string {
	parts := strings.Split(value, ",")
	recipients := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			recipients = append(recipients, trimmed)
		}
	}
	return recipients
}
