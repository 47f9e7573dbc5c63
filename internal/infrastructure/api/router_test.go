package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"courier-shopify-layer/internal/application"
	"courier-shopify-layer/internal/application/webhook_handlers"
	"courier-shopify-layer/internal/domain"
	shopifyinfra "courier-shopify-layer/internal/infrastructure/shopify"
	"courier-shopify-layer/internal/ports"
	"courier-shopify-layer/internal/ports/portstest"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testShop      = "acme.myshopify.com"
	testDashboard = "https://dash.example.com/integrations/shopify"
)

type routerFixture struct {
	handler   http.Handler
	tenants   *portstest.Tenants
	shipments *portstest.Shipments
	client    *portstest.ShopifyClient
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	logger := zerolog.Nop()
	f := &routerFixture{
		tenants: portstest.NewTenants(
			&domain.Tenant{ID: "u1", Connection: &domain.Connection{
				ShopDomain: testShop, AccessToken: "enc:primary:shpat", Connected: true, AppID: "primary",
			}},
			&domain.Tenant{ID: "u2"},
		),
		shipments: portstest.NewShipments(&domain.Shipment{
			ID: "s1", TenantID: "u1", Source: domain.ShipmentSourceShopify, ShopDomain: testShop,
			ShopifyOrderID: "5551", Courier: "DTDC", AWB: "D123",
		}),
		client: &portstest.ShopifyClient{},
	}
	registry := application.NewAppRegistry([]domain.ShopifyApp{{
		ID:            "primary",
		ClientID:      "client",
		ClientSecret:  "secret",
		Scopes:        []string{"read_orders"},
		APIVersion:    "2024-10",
		WebhookPath:   "/shopify/primary/webhooks",
		WebhookTopics: []string{domain.TopicOrdersCreate},
	}})
	vault := &portstest.Vault{}
	pending := portstest.NewPendingInstalls()

	dispatcher := application.NewWebhookDispatcher(logger)
	dispatcher.RegisterHandler(webhook_handlers.NewOrderHandler(f.tenants, f.shipments, portstest.Addresses{}, logger))

	svc := Services{
		OAuth: application.NewOAuthService(application.OAuthDependencies{
			Registry:     registry,
			Tenants:      f.tenants,
			Pending:      pending,
			Client:       f.client,
			Vault:        vault,
			States:       shopifyinfra.NewSigner(),
			Verifier:     portstest.Verifier{},
			Webhooks:     application.NewWebhookManager(f.client, "https://app.example.com", logger),
			AppURL:       "https://app.example.com",
			DashboardURL: testDashboard,
		}, logger),
		Webhooks: application.NewWebhookService(registry, portstest.Verifier{}, &portstest.WebhookEvents{}, nil, dispatcher, nil, logger),
		GDPR: application.NewGDPRService(application.GDPRDependencies{
			Registry:  registry,
			Verifier:  portstest.Verifier{},
			Tenants:   f.tenants,
			Pending:   pending,
			Shipments: f.shipments,
			Audit:     &portstest.GDPRAudit{},
			Vault:     vault,
		}, logger),
		Fulfillment: application.NewFulfillmentService(registry, f.tenants, f.shipments, f.client, vault, nil, logger),
		Connections: application.NewConnectionService(f.tenants, vault, logger),
	}
	f.handler = NewRouter(svc, portstest.Identity{}, RouterConfig{
		AllowedOrigins: []string{"https://dash.example.com"},
		Gatherer:       prometheus.NewRegistry(),
	}, logger)
	return f
}

func (f *routerFixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRouter_Health(t *testing.T) {
	f := newRouterFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = f.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_Install(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/shopify/primary/install?shop=newshop&userId=u2", nil))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "https://newshop.myshopify.com/admin/oauth/authorize?"))

	rec = f.do(httptest.NewRequest(http.MethodGet, "/install?shop=newshop&userId=u2", nil))
	assert.Equal(t, http.StatusFound, rec.Code)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/shopify/primary/install?shop=newshop", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec), "error")

	rec = f.do(httptest.NewRequest(http.MethodGet, "/shopify/retail/install?shop=newshop&userId=u2", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_CallbackRedirectsWithReason(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/shopify/primary/callback?shop=acme&code=c&hmac=bad", nil))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, testDashboard+"?Error=invalid_signature", rec.Header().Get("Location"))
}

func webhookRequest(path, topic, hmac, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("X-Shopify-Topic", topic)
	req.Header.Set("X-Shopify-Shop-Domain", testShop)
	req.Header.Set("X-Shopify-Hmac-Sha256", hmac)
	return req
}

func TestRouter_OrderWebhook(t *testing.T) {
	f := newRouterFixture(t)
	order := `{"id": 7001, "total_price": "250.00", "payment_gateway_names": ["shopify_payments"]}`

	rec := f.do(webhookRequest("/shopify/primary/webhooks", "orders/create", "forged", order))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Len(t, f.shipments.All(), 1)

	rec = f.do(webhookRequest("/shopify/primary/webhooks", "orders/create", portstest.Sign("secret"), order))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "shipment created", decodeBody(t, rec)["message"])
	assert.Len(t, f.shipments.All(), 2)

	rec = f.do(webhookRequest("/webhook", "orders/create", portstest.Sign("secret"), order))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "order already processed", decodeBody(t, rec)["message"])
	assert.Len(t, f.shipments.All(), 2)

	rec = f.do(webhookRequest("/webhook", "", portstest.Sign("secret"), order))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Signature is checked before any header validation.
	rec = f.do(webhookRequest("/webhook", "", "forged", order))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_GDPR(t *testing.T) {
	f := newRouterFixture(t)
	body := `{"shop_domain":"acme.myshopify.com","customer":{"phone":"+91"},"orders_to_redact":[5551]}`

	rec := f.do(webhookRequest("/gdpr/customers-redact", "customers/redact", portstest.Sign("secret"), body))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["received"])

	s, err := f.shipments.GetShipment(t.Context(), "s1")
	require.NoError(t, err)
	assert.NotNil(t, s.RedactedAt)

	rec = f.do(webhookRequest("/shopify/primary/gdpr/shop-redact", "shop/redact", "forged", body))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_Fulfill(t *testing.T) {
	f := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/shopify/fulfill", strings.NewReader(`{"shipmentId":"s1"}`))
	assert.Equal(t, http.StatusUnauthorized, f.do(req).Code)

	req = httptest.NewRequest(http.MethodPost, "/shopify/fulfill", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer token-u1")
	rec := f.do(req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string]any{"shipmentId": "is required"}, decodeBody(t, rec)["details"])

	req = httptest.NewRequest(http.MethodPost, "/shopify/fulfill", strings.NewReader(`{"shipmentId":"s1"}`))
	req.Header.Set("Authorization", "Bearer token-u2")
	assert.Equal(t, http.StatusForbidden, f.do(req).Code)

	f.client.On("ListFulfillmentOrders", mock.Anything, testShop, "shpat", "2024-10", "5551").
		Return([]ports.FulfillmentOrder{{ID: "fo-1", Status: "OPEN"}}, nil).Once()
	f.client.On("CreateFulfillment", mock.Anything, testShop, "shpat", "2024-10", "fo-1", mock.Anything).
		Return("gid://shopify/Fulfillment/1", nil, nil).Once()

	req = httptest.NewRequest(http.MethodPost, "/shopify/fulfill", strings.NewReader(`{"shipmentId":"s1"}`))
	req.Header.Set("Authorization", "Bearer token-u1")
	rec = f.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "gid://shopify/Fulfillment/1", body["fulfillmentId"])
}

func TestRouter_Connection(t *testing.T) {
	f := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/shopify/connection", nil)
	req.Header.Set("Authorization", "Bearer token-u1")
	rec := f.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["connected"])
	assert.NotContains(t, rec.Body.String(), "shpat")

	req = httptest.NewRequest(http.MethodDelete, "/shopify/connection", nil)
	req.Header.Set("Authorization", "Bearer token-u1")
	assert.Equal(t, http.StatusNoContent, f.do(req).Code)

	tenant, err := f.tenants.GetTenant(t.Context(), "u1")
	require.NoError(t, err)
	assert.Nil(t, tenant.Connection)
}
