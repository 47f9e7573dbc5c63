package application

import (
	"context"

	"courier-shopify-layer/internal/domain"

	"github.com/rs/zerolog"
)

// Webhook outcomes, used as the result label of the webhook counter.
const (
	OutcomeProcessed = "processed"
	OutcomeDuplicate = "duplicate"
	OutcomeNoTenant  = "no_tenant"
	OutcomeIgnored   = "ignored"
	OutcomeFailed    = "failed"
)

// WebhookResult is acknowledged to Shopify with a 200.
type WebhookResult struct {
	Message string
	Outcome string
}

// WebhookHandler processes one family of webhook topics.
type WebhookHandler interface {
	CanHandle(topic string) bool
	Handle(ctx context.Context, event *domain.WebhookEvent) (*WebhookResult, error)
}

// WebhookDispatcher routes verified events to the first handler accepting their topic.
type WebhookDispatcher struct {
	handlers []WebhookHandler
	logger   zerolog.Logger
}

func NewWebhookDispatcher(logger zerolog.Logger) *WebhookDispatcher {
	return &WebhookDispatcher{logger: logger}
}

func (d *WebhookDispatcher) RegisterHandler(h WebhookHandler) {
	d.handlers = append(d.handlers, h)
}

func (d *WebhookDispatcher) Dispatch(ctx context.Context, event *domain.WebhookEvent) (*WebhookResult, error) {
	for _, h := range d.handlers {
		if h.CanHandle(event.Topic) {
			return h.Handle(ctx, event)
		}
	}
	d.logger.Debug().Str("topic", event.Topic).Str("shop", event.Shop).Msg("No handler for webhook topic")
	return &WebhookResult{Message: "topic ignored", Outcome: OutcomeIgnored}, nil
}
