package config

import (
	"fmt"
	"strings"
	"time"

	"courier-shopify-layer/internal/domain"

	"github.com/kelseyhightower/envconfig"
)

const (
	defaultAPIVersion = "2024-10"
	defaultAppID      = "primary"
)

type Config struct {
	App       AppConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Security  SecurityConfig
	Dashboard DashboardConfig
	Carriers  CarrierConfig
	Shopify   ShopifyConfig
}

type AppConfig struct {
	Port     string `envconfig:"PORT" default:"8080"`
	URL      string `envconfig:"APP_URL" required:"true"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

type MongoConfig struct {
	URI      string `envconfig:"MONGODB_URI" required:"true"`
	Database string `envconfig:"MONGODB_DATABASE" required:"true"`
}

// RedisConfig is optional; without a URL webhook deliveries are not de-duplicated by id.
type RedisConfig struct {
	URL             string        `envconfig:"REDIS_URL"`
	WebhookDedupTTL time.Duration `envconfig:"WEBHOOK_DEDUP_TTL" default:"48h"`
}

type AuthConfig struct {
	JWTSecret   string `envconfig:"JWT_SECRET" required:"true"`
	JWTIssuer   string `envconfig:"JWT_ISSUER"`
	JWTAudience string `envconfig:"JWT_AUDIENCE"`
}

type SecurityConfig struct {
	EncryptionKey string `envconfig:"ENCRYPTION_KEY" required:"true"`
}

type DashboardConfig struct {
	URL  string `envconfig:"DASHBOARD_URL" default:"http://localhost:5173"`
	Path string `envconfig:"DASHBOARD_PATH" default:"/integrations/shopify"`
}

// CarrierConfig holds courier credentials. They stay server-side and are never rendered.
type CarrierConfig struct {
	BluedartLoginID    string `envconfig:"BLUEDART_LOGIN_ID" json:"-"`
	BluedartLicenseKey string `envconfig:"BLUEDART_LICENSE_KEY" json:"-"`
	DTDCAPIKey         string `envconfig:"DTDC_API_KEY" json:"-"`
	DTDCCustomerCode   string `envconfig:"DTDC_CUSTOMER_CODE" json:"-"`
}

// Enabled lists carriers with complete credentials.
func (c CarrierConfig) Enabled() []string {
	var out []string
	if c.BluedartLoginID != "" && c.BluedartLicenseKey != "" {
		out = append(out, "bluedart")
	}
	if c.DTDCAPIKey != "" && c.DTDCCustomerCode != "" {
		out = append(out, "dtdc")
	}
	return out
}

type ShopifyConfig struct {
	AppIDs []string            `envconfig:"SHOPIFY_APP_IDS" default:"primary"`
	Apps   []domain.ShopifyApp `ignored:"true"`
}

// appEnv is read once per app id with prefix SHOPIFY_<ID>.
type appEnv struct {
	ClientID           string   `envconfig:"CLIENT_ID"`
	ClientSecret       string   `envconfig:"CLIENT_SECRET"`
	Scopes             []string `envconfig:"SCOPES" default:"read_orders,read_merchant_managed_fulfillment_orders,write_merchant_managed_fulfillment_orders"`
	APIVersion         string   `envconfig:"API_VERSION" default:"2024-10"`
	CustomDistribution bool     `envconfig:"CUSTOM_DISTRIBUTION" default:"false"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.App.URL = strings.TrimRight(cfg.App.URL, "/")
	cfg.Dashboard.URL = strings.TrimRight(cfg.Dashboard.URL, "/")

	apps, err := loadApps(cfg.Shopify.AppIDs)
	if err != nil {
		return nil, err
	}
	cfg.Shopify.Apps = apps
	return &cfg, nil
}

func loadApps(ids []string) ([]domain.ShopifyApp, error) {
	seen := map[string]bool{}
	var apps []domain.ShopifyApp
	for _, raw := range ids {
		id := strings.ToLower(strings.TrimSpace(raw))
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		var env appEnv
		prefix := "SHOPIFY_" + strings.ToUpper(strings.ReplaceAll(id, "-", "_"))
		if err := envconfig.Process(prefix, &env); err != nil {
			return nil, fmt.Errorf("parsing config for shopify app %q: %w", id, err)
		}
		if env.APIVersion == "" {
			env.APIVersion = defaultAPIVersion
		}
		apps = append(apps, domain.ShopifyApp{
			ID:                 id,
			ClientID:           env.ClientID,
			ClientSecret:       env.ClientSecret,
			Scopes:             env.Scopes,
			APIVersion:         env.APIVersion,
			WebhookPath:        "/shopify/" + id + "/webhooks",
			WebhookTopics:      []string{domain.TopicOrdersCreate, domain.TopicAppUninstalled},
			CustomDistribution: env.CustomDistribution,
		})
	}
	if len(apps) == 0 {
		return nil, fmt.Errorf("parsing config: SHOPIFY_APP_IDS names no app")
	}
	return apps, nil
}
