package domain

import "strings"

// Webhook topics in their GraphQL enum form.
const (
	TopicOrdersCreate   = "ORDERS_CREATE"
	TopicAppUninstalled = "APP_UNINSTALLED"
)

// Webhook topics as delivered in the X-Shopify-Topic header.
const (
	HeaderTopicOrdersCreate   = "orders/create"
	HeaderTopicAppUninstalled = "app/uninstalled"
)

// ShopifyApp describes one Shopify app variant the platform is listed under.
type ShopifyApp struct {
	ID                 string
	ClientID           string
	ClientSecret       string
	Scopes             []string
	APIVersion         string
	WebhookPath        string
	WebhookTopics      []string
	CustomDistribution bool
}

// Configured reports whether the app can sign and exchange tokens.
func (a *ShopifyApp) Configured() bool {
	return a != nil && a.ClientID != "" && a.ClientSecret != ""
}

// ScopeString joins scopes the way the authorize endpoint expects them.
func (a *ShopifyApp) ScopeString() string {
	return strings.Join(a.Scopes, ",")
}
