package config

import (
	"log/slog"

	"github.com/relaymill/towncrier/pkg/service/crm"
	"github.com/urfave/cli/v3"
)

// CRM holds CLI flags for the CRM API connection
type CRM struct {
	baseURL  string
	apiToken string
}

func (x *CRM) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "crm-base-url",
			Usage:       "Base URL of the CRM account (e.g. https://example.highrisehq.com)",
			Category:    "CRM",
			Required:    true,
			Sources:     cli.EnvVars("TOWNCRIER_CRM_BASE_URL"),
			Destination: &x.baseURL,
		},
		&cli.StringFlag{
			Name:        "crm-api-token",
			Usage:       "CRM API authentication token",
			Category:    "CRM",
			Required:    true,
			Sources:     cli.EnvVars("TOWNCRIER_CRM_API_TOKEN"),
			Destination: &x.apiToken,
		},
	}
}

func (x CRM) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("base-url", x.baseURL),
		slog.Int("api-token.len", len(x.apiToken)),
	)
}

// BaseURL returns the CRM account URL, also used to build record links
func (x *CRM) BaseURL() string {
	return x.baseURL
}

// Configure builds the CRM service client
func (x *CRM) Configure() (crm.Service, error) {
	return crm.New(x.baseURL, x.apiToken)
}
