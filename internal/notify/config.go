package notify

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Email   *EmailConfig   `yaml:"email"`
	Webhook *WebhookConfig `yaml:"webhook"`
	Slack   *SlackConfig   `yaml:"slack"`
}

type EmailConfig struct {
	Host     string   `yaml:"host"`
	Port     int      `yaml:"port"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
}

type WebhookConfig struct {
	URL            string            `yaml:"url"`
	Headers        map[string]string `yaml:"headers"`
	TimeoutSeconds int               `yaml:"timeoutSeconds"`
}

type SlackConfig struct {
	WebhookURL     string `yaml:"webhookUrl"`
	Channel        string `yaml:"channel"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	if cfg.Email == nil && cfg.Webhook == nil && cfg.Slack == nil {
		return Config{}, fmt.Errorf("no notification channels configured")
	}
	return cfg, nil
}

// BuildRegistry wires a dispatcher per configured channel.
func (c Config) BuildRegistry() (*Registry, error) {
	dispatchers := map[string]Dispatcher{}
	if c.Email != nil {
		if c.Email.Host == "" || c.Email.From == "" {
			return nil, fmt.Errorf("email channel requires host and from")
		}
		dispatchers["email"] = NewEmailDispatcher(*c.Email)
	}
	if c.Webhook != nil {
		if c.Webhook.URL == "" {
			return nil, fmt.Errorf("webhook channel requires url")
		}
		dispatchers["webhook"] = NewWebhookDispatcher(*c.Webhook)
	}
	if c.Slack != nil {
		if c.Slack.WebhookURL == "" {
			return nil, fmt.Errorf("slack channel requires webhookUrl")
		}
		dispatchers["slack"] = NewSlackDispatcher(*c.Slack)
	}
	return NewRegistry(dispatchers), nil
}

func timeoutOrDefault(seconds int) time.Duration {
	if seconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(seconds) * time.Second
}
