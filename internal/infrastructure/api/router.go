// Package api exposes the HTTP surface: OAuth redirects, Shopify webhooks and the
// dashboard endpoints.
package api

import (
	"net/http"

	"courier-shopify-layer/internal/application"
	"courier-shopify-layer/internal/domain"
	securitymiddleware "courier-shopify-layer/internal/infrastructure/middleware"
	"courier-shopify-layer/internal/metrics"
	"courier-shopify-layer/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Services are the application entry points served over HTTP.
type Services struct {
	OAuth       *application.OAuthService
	Webhooks    *application.WebhookService
	GDPR        *application.GDPRService
	Fulfillment *application.FulfillmentService
	Connections *application.ConnectionService
}

// RouterConfig carries the HTTP-only settings.
type RouterConfig struct {
	AllowedOrigins []string
	SwaggerFile    string
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
}

// NewRouter builds the chi router. Routes under /shopify/{appId} serve one app variant;
// the bare aliases serve the default app.
func NewRouter(svc Services, identity ports.IdentityVerifier, cfg RouterConfig, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(securitymiddleware.AuditLoggingMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(securitymiddleware.MetricsMiddleware(cfg.Metrics))
	r.Use(securitymiddleware.SecurityHeadersMiddleware())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	if cfg.SwaggerFile != "" {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
		r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			http.ServeFile(w, r, cfg.SwaggerFile)
		})
	}

	shopifyRoutes := func(r chi.Router) {
		r.Get("/install", installHandler(svc.OAuth, logger))
		r.Get("/callback", callbackHandler(svc.OAuth, logger))
		r.Post("/gdpr/customers-data-request", gdprHandler(svc.GDPR, domain.GDPRCustomersDataRequest, logger))
		r.Post("/gdpr/customers-redact", gdprHandler(svc.GDPR, domain.GDPRCustomersRedact, logger))
		r.Post("/gdpr/shop-redact", gdprHandler(svc.GDPR, domain.GDPRShopRedact, logger))
	}

	r.Route("/shopify", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(securitymiddleware.BearerAuth(identity, logger))
			r.Post("/fulfill", fulfillHandler(svc.Fulfillment, logger))
			r.Get("/connection", getConnectionHandler(svc.Connections, logger))
			r.Delete("/connection", deleteConnectionHandler(svc.Connections, logger))
		})
		r.Route("/{appId}", func(r chi.Router) {
			shopifyRoutes(r)
			r.Post("/webhooks", webhookHandler(svc.Webhooks, logger))
		})
	})

	r.Group(shopifyRoutes)
	r.Post("/webhook", webhookHandler(svc.Webhooks, logger))

	return r
}
