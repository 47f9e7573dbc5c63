package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"courier-shopify-layer/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

const orderGIDPrefix = "gid://shopify/Order/"

type client struct {
	httpClient  *http.Client
	rateLimiter *RateLimiter
	retryConfig RetryConfig
	logger      zerolog.Logger
}

// NewClient creates a Shopify admin client adapter
func NewClient(logger zerolog.Logger) ports.ShopifyClient {
	return NewClientWithOptions(nil, nil, DefaultRetryConfig(), logger)
}

// NewClientWithOptions creates a client with a custom transport, rate limiting and retry options
func NewClientWithOptions(
	httpClient *http.Client,
	rateLimiter *RateLimiter,
	retryConfig RetryConfig,
	logger zerolog.Logger,
) ports.ShopifyClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: retryConfig.Timeout}
	}
	return &client{
		httpClient:  httpClient,
		rateLimiter: rateLimiter,
		retryConfig: retryConfig,
		logger:      logger,
	}
}

// createClient is a helper to create a goshopify client bound to one shop
func (c *client) createClient(shopDomain, accessToken, apiVersion string) (*goshopify.Client, error) {
	opts := []goshopify.Option{
		goshopify.WithHTTPClient(c.httpClient),
		goshopify.WithRetry(c.retryConfig.MaxRetries),
	}
	if apiVersion != "" {
		opts = append(opts, goshopify.WithVersion(apiVersion))
	}
	client, err := goshopify.NewClient(goshopify.App{}, shopDomain, accessToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

func (c *client) wait(ctx context.Context, shop string) error {
	if c.rateLimiter == nil {
		return nil
	}
	if err := c.rateLimiter.Wait(ctx, shop); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

// ExchangeToken trades an authorization code for an offline access token.
func (c *client) ExchangeToken(ctx context.Context, shop, clientID, clientSecret, code string) (*ports.TokenGrant, error) {
	body, err := json.Marshal(map[string]string{
		"client_id":     clientID,
		"client_secret": clientSecret,
		"code":          code,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode token request: %w", err)
	}

	tokenURL := fmt.Sprintf("https://%s/admin/oauth/access_token", shop)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("failed to exchange token: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var tokenResponse struct {
		AccessToken string `json:"access_token"`
		Scope       string `json:"scope"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokenResponse.AccessToken == "" {
		return nil, fmt.Errorf("failed to exchange token: empty access token")
	}

	grant := &ports.TokenGrant{AccessToken: tokenResponse.AccessToken}
	for _, s := range strings.Split(tokenResponse.Scope, ",") {
		if s = strings.TrimSpace(s); s != "" {
			grant.Scopes = append(grant.Scopes, s)
		}
	}
	return grant, nil
}

// Webhook API

func (c *client) CreateWebhookSubscription(ctx context.Context, shop, accessToken, apiVersion, topic, callbackURL string) ([]ports.UserError, error) {
	if err := c.wait(ctx, shop); err != nil {
		return nil, err
	}
	client, err := c.createClient(shop, accessToken, apiVersion)
	if err != nil {
		return nil, err
	}

	vars := map[string]any{
		"topic": topic,
		"webhookSubscription": map[string]any{
			"callbackUrl": callbackURL,
			"format":      "JSON",
		},
	}
	var resp webhookSubscriptionCreateResponse
	if err := client.GraphQL.Query(ctx, webhookSubscriptionCreateMutation, vars, &resp); err != nil {
		return nil, fmt.Errorf("failed to create webhook subscription: %w", err)
	}
	return toUserErrors(resp.WebhookSubscriptionCreate.UserErrors), nil
}

// Fulfillment API

func (c *client) ListFulfillmentOrders(ctx context.Context, shop, accessToken, apiVersion, orderID string) ([]ports.FulfillmentOrder, error) {
	if err := c.wait(ctx, shop); err != nil {
		return nil, err
	}
	client, err := c.createClient(shop, accessToken, apiVersion)
	if err != nil {
		return nil, err
	}

	var resp fulfillmentOrdersResponse
	if err := client.GraphQL.Query(ctx, fulfillmentOrdersQuery, map[string]any{"id": orderGID(orderID)}, &resp); err != nil {
		return nil, fmt.Errorf("failed to list fulfillment orders: %w", err)
	}
	if resp.Order == nil {
		return nil, nil
	}

	orders := make([]ports.FulfillmentOrder, 0, len(resp.Order.FulfillmentOrders.Nodes))
	for _, n := range resp.Order.FulfillmentOrders.Nodes {
		orders = append(orders, ports.FulfillmentOrder{ID: n.ID, Status: n.Status})
	}
	return orders, nil
}

func (c *client) CreateFulfillment(ctx context.Context, shop, accessToken, apiVersion, fulfillmentOrderID string, tracking ports.TrackingInfo) (string, []ports.UserError, error) {
	if err := c.wait(ctx, shop); err != nil {
		return "", nil, err
	}
	client, err := c.createClient(shop, accessToken, apiVersion)
	if err != nil {
		return "", nil, err
	}

	trackingInfo := map[string]any{
		"company": tracking.Company,
		"number":  tracking.Number,
	}
	if tracking.URL != "" {
		trackingInfo["url"] = tracking.URL
	}
	vars := map[string]any{
		"fulfillment": map[string]any{
			"lineItemsByFulfillmentOrder": []map[string]any{
				{"fulfillmentOrderId": fulfillmentOrderID},
			},
			"trackingInfo":   trackingInfo,
			"notifyCustomer": true,
		},
	}

	var resp fulfillmentCreateResponse
	if err := client.GraphQL.Query(ctx, fulfillmentCreateMutation, vars, &resp); err != nil {
		return "", nil, fmt.Errorf("failed to create fulfillment: %w", err)
	}
	if errs := toUserErrors(resp.FulfillmentCreate.UserErrors); len(errs) > 0 {
		return "", errs, nil
	}
	if resp.FulfillmentCreate.Fulfillment == nil {
		return "", nil, fmt.Errorf("failed to create fulfillment: empty response")
	}
	return resp.FulfillmentCreate.Fulfillment.ID, nil, nil
}

func toUserErrors(nodes []userErrorNode) []ports.UserError {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]ports.UserError, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, ports.UserError{Field: n.Field, Message: n.Message})
	}
	return out
}

func orderGID(orderID string) string {
	if strings.HasPrefix(orderID, "gid://") {
		return orderID
	}
	return orderGIDPrefix + orderID
}
