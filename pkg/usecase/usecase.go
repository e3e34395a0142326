package usecase

import (
	"github.com/relaymill/towncrier/pkg/domain/model/config"
	"github.com/relaymill/towncrier/pkg/service/crm"
	"github.com/relaymill/towncrier/pkg/service/webhook"
)

// defaultConcurrency bounds the per-recording pipelines running in parallel
const defaultConcurrency = 8

// SyncUseCase orchestrates one sync cycle: fetch recordings since the
// checkpoint, filter, enrich, format and post each, then compute the next
// checkpoint.
type SyncUseCase struct {
	crm         crm.Service
	webhook     webhook.Service
	notifyCfg   *config.NotifyConfig
	baseURL     string
	concurrency int
}

// Option is a functional option for SyncUseCase configuration
type Option func(*SyncUseCase)

// WithBaseURL sets the CRM web UI base URL used for links in messages
func WithBaseURL(baseURL string) Option {
	return func(uc *SyncUseCase) {
		uc.baseURL = baseURL
	}
}

// WithConcurrency bounds how many recordings are processed in parallel
func WithConcurrency(n int) Option {
	return func(uc *SyncUseCase) {
		if n > 0 {
			uc.concurrency = n
		}
	}
}

// NewSyncUseCase creates a new SyncUseCase
func NewSyncUseCase(crmSvc crm.Service, webhookSvc webhook.Service, notifyCfg *config.NotifyConfig, opts ...Option) *SyncUseCase {
	uc := &SyncUseCase{
		crm:         crmSvc,
		webhook:     webhookSvc,
		notifyCfg:   notifyCfg,
		concurrency: defaultConcurrency,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}
