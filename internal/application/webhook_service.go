package application

import (
	"context"
	"strings"
	"time"

	"courier-shopify-layer/internal/domain"
	"courier-shopify-layer/internal/metrics"
	"courier-shopify-layer/internal/ports"

	"github.com/rs/zerolog"
)

// WebhookDelivery is an inbound webhook as read off the wire.
type WebhookDelivery struct {
	Topic     string
	Shop      string
	WebhookID string
	HMAC      string
	Body      []byte
}

// WebhookService authenticates, de-duplicates, logs and dispatches webhook deliveries.
type WebhookService struct {
	registry   *AppRegistry
	verifier   ports.SignatureVerifier
	events     ports.WebhookEventRepository
	guard      ports.WebhookGuard
	dispatcher *WebhookDispatcher
	metrics    *metrics.Metrics
	logger     zerolog.Logger
	now        func() time.Time
}

// NewWebhookService creates the webhook entry point. guard may be nil.
func NewWebhookService(
	registry *AppRegistry,
	verifier ports.SignatureVerifier,
	events ports.WebhookEventRepository,
	guard ports.WebhookGuard,
	dispatcher *WebhookDispatcher,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *WebhookService {
	return &WebhookService{
		registry:   registry,
		verifier:   verifier,
		events:     events,
		guard:      guard,
		dispatcher: dispatcher,
		metrics:    m,
		logger:     logger,
		now:        time.Now,
	}
}

// Authenticate resolves the app and checks the delivery's HMAC.
func (s *WebhookService) Authenticate(appID string, d WebhookDelivery) (*domain.ShopifyApp, error) {
	app, err := s.registry.Resolve(appID)
	if err != nil {
		return nil, err
	}
	if !s.verifier.VerifyWebhook(d.Body, d.HMAC, app.ClientSecret) {
		s.logger.Warn().Str("app", app.ID).Str("shop", d.Shop).Str("topic", d.Topic).Msg("Webhook signature verification failed")
		s.metrics.IncWebhook(app.ID, d.Topic, "unauthorized")
		return nil, domain.NewError(domain.KindAuthentication, "invalid signature")
	}
	return app, nil
}

// Receive handles an order or lifecycle webhook. A returned error means Shopify should retry.
func (s *WebhookService) Receive(ctx context.Context, appID string, d WebhookDelivery) (*WebhookResult, error) {
	app, err := s.Authenticate(appID, d)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(d.Topic) == "" {
		return nil, domain.NewError(domain.KindValidation, "missing topic")
	}

	event := &domain.WebhookEvent{
		AppID:      app.ID,
		Topic:      strings.ToLower(strings.TrimSpace(d.Topic)),
		Shop:       strings.ToLower(strings.TrimSpace(d.Shop)),
		WebhookID:  d.WebhookID,
		Payload:    d.Body,
		Verified:   true,
		ReceivedAt: s.now(),
	}
	log := s.logger.With().Str("app", app.ID).Str("topic", event.Topic).Str("shop", event.Shop).Str("webhookId", d.WebhookID).Logger()

	if err := s.events.LogWebhook(ctx, event); err != nil {
		log.Warn().Err(err).Msg("Failed to log webhook event")
	}

	if s.guard != nil && d.WebhookID != "" {
		seen, err := s.guard.CheckAndMark(ctx, d.WebhookID)
		if err != nil {
			log.Warn().Err(err).Msg("Webhook guard unavailable, processing without it")
		} else if seen {
			log.Info().Msg("Duplicate webhook delivery acknowledged")
			s.metrics.IncWebhook(app.ID, event.Topic, OutcomeDuplicate)
			return &WebhookResult{Message: "delivery already processed", Outcome: OutcomeDuplicate}, nil
		}
	}

	result, err := s.dispatcher.Dispatch(ctx, event)
	if err != nil {
		log.Error().Err(err).Msg("Failed to process webhook event")
		s.metrics.IncWebhook(app.ID, event.Topic, OutcomeFailed)
		if s.guard != nil && d.WebhookID != "" {
			if rerr := s.guard.Release(ctx, d.WebhookID); rerr != nil {
				log.Warn().Err(rerr).Msg("Failed to release webhook guard")
			}
		}
		return nil, err
	}

	s.metrics.IncWebhook(app.ID, event.Topic, result.Outcome)
	return result, nil
}
