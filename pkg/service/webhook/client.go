package webhook

import (
	"context"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

// DefaultTimeout bounds every webhook POST
const DefaultTimeout = 15 * time.Second

// client implements Service interface
type client struct {
	url        string
	httpClient *http.Client
}

// Option is a functional option for client configuration
type Option func(*client)

// WithHTTPClient replaces the underlying HTTP client (mainly for tests)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// New creates a new webhook service posting to the given URL
func New(url string, opts ...Option) (Service, error) {
	if url == "" {
		return nil, goerr.New("webhook URL is required")
	}

	c := &client{
		url:        url,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Post sends the message to the webhook endpoint
func (c *client) Post(ctx context.Context, msg *slack.WebhookMessage) error {
	if err := slack.PostWebhookCustomHTTPContext(ctx, c.url, c.httpClient, msg); err != nil {
		return goerr.Wrap(err, "failed to post webhook message", goerr.T(ErrTagDelivery))
	}
	return nil
}
