package application

import (
	"context"
	"strings"

	"courier-shopify-layer/internal/domain"
	"courier-shopify-layer/internal/ports"

	"github.com/rs/zerolog"
)

// RegistrationResult is the outcome of one webhook subscription attempt.
type RegistrationResult struct {
	Topic   string
	Success bool
	Error   string
}

// WebhookManager subscribes shops to the topics an app listens on.
type WebhookManager struct {
	client ports.ShopifyClient
	appURL string
	logger zerolog.Logger
}

func NewWebhookManager(client ports.ShopifyClient, appURL string, logger zerolog.Logger) *WebhookManager {
	return &WebhookManager{
		client: client,
		appURL: strings.TrimRight(appURL, "/"),
		logger: logger,
	}
}

// Register subscribes topic to appURL+callbackPath. It never returns an error; transport
// failures and userErrors are reported in the result.
func (m *WebhookManager) Register(ctx context.Context, app *domain.ShopifyApp, shop, accessToken, topic, callbackPath string) RegistrationResult {
	result := RegistrationResult{Topic: topic}
	userErrors, err := m.client.CreateWebhookSubscription(ctx, shop, accessToken, app.APIVersion, topic, m.appURL+callbackPath)
	if err != nil {
		m.logger.Warn().Err(err).Str("shop", shop).Str("topic", topic).Msg("Webhook registration failed")
		result.Error = err.Error()
		return result
	}
	if len(userErrors) > 0 {
		msgs := make([]string, 0, len(userErrors))
		for _, ue := range userErrors {
			msgs = append(msgs, ue.Message)
		}
		result.Error = strings.Join(msgs, "; ")
		m.logger.Warn().Str("shop", shop).Str("topic", topic).Str("error", result.Error).Msg("Webhook registration rejected")
		return result
	}
	result.Success = true
	return result
}

// RegisterAll subscribes every topic of app and returns the result of the order-creation topic,
// which determines the connection's webhook status.
func (m *WebhookManager) RegisterAll(ctx context.Context, app *domain.ShopifyApp, shop, accessToken string) RegistrationResult {
	primary := RegistrationResult{Topic: domain.TopicOrdersCreate, Error: "order webhook not registered"}
	for _, topic := range app.WebhookTopics {
		res := m.Register(ctx, app, shop, accessToken, topic, app.WebhookPath)
		if topic == domain.TopicOrdersCreate {
			primary = res
		}
	}
	return primary
}
