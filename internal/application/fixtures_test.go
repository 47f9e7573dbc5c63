package application

import (
	"courier-shopify-layer/internal/domain"
)

const (
	testAppURL    = "https://app.example.com"
	testDashboard = "https://dash.example.com/integrations/shopify"
	testShop      = "acme.myshopify.com"
	testToken     = "shpat_live_token"
)

func testApps() []domain.ShopifyApp {
	topics := []string{domain.TopicOrdersCreate, domain.TopicAppUninstalled}
	return []domain.ShopifyApp{
		{
			ID:            "primary",
			ClientID:      "primary-client",
			ClientSecret:  "primary-secret",
			Scopes:        []string{"read_orders", "write_fulfillments"},
			APIVersion:    "2024-10",
			WebhookPath:   "/shopify/primary/webhooks",
			WebhookTopics: topics,
		},
		{
			ID:                 "custom",
			ClientID:           "custom-client",
			ClientSecret:       "custom-secret",
			Scopes:             []string{"read_orders"},
			APIVersion:         "2024-10",
			WebhookPath:        "/shopify/custom/webhooks",
			WebhookTopics:      topics,
			CustomDistribution: true,
		},
		{ID: "unconfigured"},
	}
}
