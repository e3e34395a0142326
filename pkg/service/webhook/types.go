package webhook

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

// Service delivers formatted messages to the configured chat webhook
type Service interface {
	// Post sends the message with a single POST attempt. There is no
	// retry and no delivery confirmation beyond the HTTP status.
	Post(ctx context.Context, msg *slack.WebhookMessage) error
}

// ErrTagDelivery marks errors raised while posting to the webhook
var ErrTagDelivery = goerr.NewTag("webhook_delivery")
