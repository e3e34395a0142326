package config

import (
	"log/slog"

	"github.com/relaymill/towncrier/pkg/service/webhook"
	"github.com/urfave/cli/v3"
)

// Webhook holds CLI flags for the outgoing webhook
type Webhook struct {
	url string
}

func (x *Webhook) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "webhook-url",
			Usage:       "Incoming webhook URL messages are posted to",
			Category:    "Webhook",
			Required:    true,
			Sources:     cli.EnvVars("TOWNCRIER_WEBHOOK_URL"),
			Destination: &x.url,
		},
	}
}

func (x Webhook) LogValue() slog.Value {
	// The URL embeds the webhook secret, log only its length
	return slog.GroupValue(
		slog.Int("url.len", len(x.url)),
	)
}

// Configure builds the webhook service client
func (x *Webhook) Configure() (webhook.Service, error) {
	return webhook.New(x.url)
}
