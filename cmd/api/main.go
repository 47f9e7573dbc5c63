package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"courier-shopify-layer/internal/application"
	"courier-shopify-layer/internal/application/webhook_handlers"
	"courier-shopify-layer/internal/config"
	apiinfra "courier-shopify-layer/internal/infrastructure/api"
	"courier-shopify-layer/internal/infrastructure/auth"
	"courier-shopify-layer/internal/infrastructure/cache"
	"courier-shopify-layer/internal/infrastructure/encryption"
	redisinfra "courier-shopify-layer/internal/infrastructure/redis"
	"courier-shopify-layer/internal/infrastructure/repository"
	shopifyinfra "courier-shopify-layer/internal/infrastructure/shopify"
	"courier-shopify-layer/internal/metrics"
	"courier-shopify-layer/internal/ports"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("⚠️  Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.App.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to MongoDB
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.Mongo.URI))
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.Mongo.Database)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create MongoDB indexes")
	}

	// Token ciphers: the global key for legacy records, one key per app for the rest
	globalCipher, err := encryption.NewService(cfg.Security.EncryptionKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}
	appCiphers := make(map[string]ports.EncryptionService)
	for _, app := range cfg.Shopify.Apps {
		if !app.Configured() {
			logger.Warn().Str("app", app.ID).Msg("Shopify app has no client credentials; its routes will answer 500")
			continue
		}
		c, err := encryption.NewService(app.ClientSecret)
		if err != nil {
			logger.Fatal().Err(err).Str("app", app.ID).Msg("Failed to initialize app cipher")
		}
		appCiphers[app.ID] = c
	}
	tokenManager := shopifyinfra.NewTokenManager(globalCipher, appCiphers, cache.NewMemoryTokenCache(), logger)

	// Optional webhook delivery guard
	var guard ports.WebhookGuard
	if cfg.Redis.URL != "" {
		rdb, err := redisinfra.NewClient(ctx, cfg.Redis.URL)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		g, err := redisinfra.NewWebhookGuard(rdb, cfg.Redis.WebhookDedupTTL)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to initialize webhook guard")
		}
		guard = g
	} else {
		logger.Warn().Msg("REDIS_URL not set; webhook deliveries are not de-duplicated by id")
	}

	identity, err := auth.NewJWTVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize token verifier")
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Initialize repositories
	tenants := repository.NewMongoTenantRepository(db)
	pending := repository.NewMongoPendingInstallRepository(db)
	shipments := repository.NewMongoShipmentRepository(db)
	addresses := repository.NewMongoAddressRepository(db)
	audit := repository.NewMongoGDPRAuditRepository(db)
	events := repository.NewMongoWebhookEventRepository(db)

	// Shopify admin client with per-shop rate limiting and retry
	shopifyClient := shopifyinfra.NewClientWithOptions(
		&http.Client{Timeout: 30 * time.Second},
		shopifyinfra.NewRateLimiter(logger),
		shopifyinfra.DefaultRetryConfig(),
		logger,
	)
	signer := shopifyinfra.NewSigner()
	registry := application.NewAppRegistry(cfg.Shopify.Apps)

	// Initialize application services
	webhookManager := application.NewWebhookManager(shopifyClient, cfg.App.URL, logger)
	oauthService := application.NewOAuthService(application.OAuthDependencies{
		Registry:     registry,
		Tenants:      tenants,
		Pending:      pending,
		Client:       shopifyClient,
		Vault:        tokenManager,
		States:       signer,
		Verifier:     signer,
		Webhooks:     webhookManager,
		Metrics:      m,
		AppURL:       cfg.App.URL,
		DashboardURL: cfg.Dashboard.URL + cfg.Dashboard.Path,
	}, logger)

	// Initialize webhook dispatcher and register handlers
	webhookDispatcher := application.NewWebhookDispatcher(logger)
	webhookDispatcher.RegisterHandler(webhook_handlers.NewOrderHandler(tenants, shipments, addresses, logger))
	webhookDispatcher.RegisterHandler(webhook_handlers.NewAppUninstalledHandler(tenants, tokenManager, logger))
	webhookService := application.NewWebhookService(registry, signer, events, guard, webhookDispatcher, m, logger)

	gdprService := application.NewGDPRService(application.GDPRDependencies{
		Registry:  registry,
		Verifier:  signer,
		Tenants:   tenants,
		Pending:   pending,
		Shipments: shipments,
		Audit:     audit,
		Vault:     tokenManager,
		Metrics:   m,
	}, logger)
	fulfillmentService := application.NewFulfillmentService(registry, tenants, shipments, shopifyClient, tokenManager, m, logger)
	connectionService := application.NewConnectionService(tenants, tokenManager, logger)

	router := apiinfra.NewRouter(apiinfra.Services{
		OAuth:       oauthService,
		Webhooks:    webhookService,
		GDPR:        gdprService,
		Fulfillment: fulfillmentService,
		Connections: connectionService,
	}, identity, apiinfra.RouterConfig{
		AllowedOrigins: []string{cfg.Dashboard.URL},
		SwaggerFile:    "./docs/swagger.json",
		Metrics:        m,
		Gatherer:       reg,
	}, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}()

	logger.Info().
		Str("port", cfg.App.Port).
		Str("defaultApp", registry.DefaultID()).
		Strs("carriers", cfg.Carriers.Enabled()).
		Msg("Starting API server")
	logger.Info().Msg("Swagger documentation available at http://localhost:" + cfg.App.Port + "/swagger/index.html")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
	logger.Info().Msg("Server stopped")
}
