package portstest

import (
	"context"

	"courier-shopify-layer/internal/ports"

	"github.com/stretchr/testify/mock"
)

// ShopifyClient is a testify mock of ports.ShopifyClient.
type ShopifyClient struct {
	mock.Mock
}

func (m *ShopifyClient) ExchangeToken(ctx context.Context, shop, clientID, clientSecret, code string) (*ports.TokenGrant, error) {
	args := m.Called(ctx, shop, clientID, clientSecret, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.TokenGrant), args.Error(1)
}

func (m *ShopifyClient) CreateWebhookSubscription(ctx context.Context, shop, accessToken, apiVersion, topic, callbackURL string) ([]ports.UserError, error) {
	args := m.Called(ctx, shop, accessToken, apiVersion, topic, callbackURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.UserError), args.Error(1)
}

func (m *ShopifyClient) ListFulfillmentOrders(ctx context.Context, shop, accessToken, apiVersion, orderID string) ([]ports.FulfillmentOrder, error) {
	args := m.Called(ctx, shop, accessToken, apiVersion, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.FulfillmentOrder), args.Error(1)
}

func (m *ShopifyClient) CreateFulfillment(ctx context.Context, shop, accessToken, apiVersion, fulfillmentOrderID string, tracking ports.TrackingInfo) (string, []ports.UserError, error) {
	args := m.Called(ctx, shop, accessToken, apiVersion, fulfillmentOrderID, tracking)
	var userErrors []ports.UserError
	if v := args.Get(1); v != nil {
		userErrors = v.([]ports.UserError)
	}
	return args.String(0), userErrors, args.Error(2)
}
