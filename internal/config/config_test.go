package config

import (
	"os"
	"testing"
	"time"

	"courier-shopify-layer/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("APP_URL", "https://courier.example.com/")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("MONGODB_DATABASE", "courier")
	t.Setenv("JWT_SECRET", "jwt-secret")
	t.Setenv("ENCRYPTION_KEY", "enc-key")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("SHOPIFY_PRIMARY_CLIENT_ID", "cid")
	t.Setenv("SHOPIFY_PRIMARY_CLIENT_SECRET", "csecret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "https://courier.example.com", cfg.App.URL)
	assert.Equal(t, 48*time.Hour, cfg.Redis.WebhookDedupTTL)
	assert.Equal(t, "/integrations/shopify", cfg.Dashboard.Path)

	require.Len(t, cfg.Shopify.Apps, 1)
	app := cfg.Shopify.Apps[0]
	assert.Equal(t, "primary", app.ID)
	assert.True(t, app.Configured())
	assert.Equal(t, "2024-10", app.APIVersion)
	assert.Equal(t, "/shopify/primary/webhooks", app.WebhookPath)
	assert.Equal(t, []string{domain.TopicOrdersCreate, domain.TopicAppUninstalled}, app.WebhookTopics)
	assert.Contains(t, app.Scopes, "read_orders")
	assert.False(t, app.CustomDistribution)
}

func TestLoad_MultipleApps(t *testing.T) {
	setRequired(t)
	t.Setenv("SHOPIFY_APP_IDS", "primary, b2b,primary")
	t.Setenv("SHOPIFY_PRIMARY_CLIENT_ID", "p-id")
	t.Setenv("SHOPIFY_PRIMARY_CLIENT_SECRET", "p-secret")
	t.Setenv("SHOPIFY_B2B_CLIENT_ID", "b-id")
	t.Setenv("SHOPIFY_B2B_CLIENT_SECRET", "b-secret")
	t.Setenv("SHOPIFY_B2B_CUSTOM_DISTRIBUTION", "true")
	t.Setenv("SHOPIFY_B2B_SCOPES", "read_orders,write_fulfillments")
	t.Setenv("SHOPIFY_B2B_API_VERSION", "2025-01")

	cfg, err := Load()
	require.NoError(t, err)
	require.Len(t, cfg.Shopify.Apps, 2)

	b2b := cfg.Shopify.Apps[1]
	assert.Equal(t, "b2b", b2b.ID)
	assert.Equal(t, "b-id", b2b.ClientID)
	assert.True(t, b2b.CustomDistribution)
	assert.Equal(t, []string{"read_orders", "write_fulfillments"}, b2b.Scopes)
	assert.Equal(t, "2025-01", b2b.APIVersion)
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequired(t)
	require.NoError(t, os.Unsetenv("ENCRYPTION_KEY"))

	_, err := Load()
	assert.Error(t, err)
}

func TestCarrierConfig_Enabled(t *testing.T) {
	c := CarrierConfig{BluedartLoginID: "l", BluedartLicenseKey: "k", DTDCAPIKey: "only-key"}
	assert.Equal(t, []string{"bluedart"}, c.Enabled())
}
