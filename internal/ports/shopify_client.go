package ports

import (
	"context"
)

// TokenGrant is the result of an authorization code exchange.
type TokenGrant struct {
	AccessToken string
	Scopes      []string
}

// FulfillmentOrder is an open unit of work on a Shopify order.
type FulfillmentOrder struct {
	ID     string
	Status string
}

// TrackingInfo is attached to a fulfillment.
type TrackingInfo struct {
	Company string
	Number  string
	URL     string
}

// UserError mirrors the userErrors array of Shopify admin mutations.
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// ShopifyClient defines the Shopify admin operations used by the platform.
type ShopifyClient interface {
	ExchangeToken(ctx context.Context, shop string, clientID string, clientSecret string, code string) (*TokenGrant, error)
	CreateWebhookSubscription(ctx context.Context, shop string, accessToken string, apiVersion string, topic string, callbackURL string) ([]UserError, error)
	ListFulfillmentOrders(ctx context.Context, shop string, accessToken string, apiVersion string, orderID string) ([]FulfillmentOrder, error)
	CreateFulfillment(ctx context.Context, shop string, accessToken string, apiVersion string, fulfillmentOrderID string, tracking TrackingInfo) (string, []UserError, error)
}
