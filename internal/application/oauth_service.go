package application

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"courier-shopify-layer/internal/domain"
	"courier-shopify-layer/internal/metrics"
	"courier-shopify-layer/internal/ports"

	"github.com/rs/zerolog"
)

// Redirect reason codes appended to the dashboard URL.
const (
	ReasonConnected           = "connected"
	ReasonPendingClaim        = "pending_claim"
	ReasonMissingParams       = "missing_params"
	ReasonInvalidSignature    = "invalid_signature"
	ReasonUnknownUser         = "unknown_user"
	ReasonTokenExchangeFailed = "token_exchange_failed"
	ReasonInternalError       = "internal_error"
)

// OAuthService runs the install and callback legs of the Shopify OAuth flow.
type OAuthService struct {
	registry  *AppRegistry
	tenants   ports.TenantRepository
	pending   ports.PendingInstallRepository
	client    ports.ShopifyClient
	vault     ports.TokenVault
	states    ports.StateCodec
	verifier  ports.SignatureVerifier
	webhooks  *WebhookManager
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	appURL    string
	dashboard string
	now       func() time.Time
}

// OAuthDependencies groups the collaborators of OAuthService.
type OAuthDependencies struct {
	Registry     *AppRegistry
	Tenants      ports.TenantRepository
	Pending      ports.PendingInstallRepository
	Client       ports.ShopifyClient
	Vault        ports.TokenVault
	States       ports.StateCodec
	Verifier     ports.SignatureVerifier
	Webhooks     *WebhookManager
	Metrics      *metrics.Metrics
	AppURL       string
	DashboardURL string
}

func NewOAuthService(deps OAuthDependencies, logger zerolog.Logger) *OAuthService {
	return &OAuthService{
		registry:  deps.Registry,
		tenants:   deps.Tenants,
		pending:   deps.Pending,
		client:    deps.Client,
		vault:     deps.Vault,
		states:    deps.States,
		verifier:  deps.Verifier,
		webhooks:  deps.Webhooks,
		metrics:   deps.Metrics,
		logger:    logger,
		appURL:    strings.TrimRight(deps.AppURL, "/"),
		dashboard: deps.DashboardURL,
		now:       time.Now,
	}
}

// Install returns where to send the merchant's browser. A claimable pending install is
// bound to the user directly; otherwise the user is sent to Shopify's authorize page.
func (s *OAuthService) Install(ctx context.Context, appID, rawShop, userID string) (string, error) {
	if rawShop == "" || userID == "" {
		return "", domain.NewError(domain.KindValidation, "shop and userId are required")
	}
	app, err := s.registry.Resolve(appID)
	if err != nil {
		return "", err
	}
	shop, err := NormalizeShopDomain(rawShop)
	if err != nil {
		return "", err
	}

	log := s.logger.With().Str("app", app.ID).Str("shop", shop).Str("userId", userID).Logger()

	tenant, err := s.tenants.GetTenant(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load tenant: %w", err)
	}
	if tenant == nil {
		return "", domain.NewError(domain.KindNotFound, "unknown user")
	}

	claimed, err := s.pending.TryClaim(ctx, shop, userID)
	if err != nil {
		return "", fmt.Errorf("failed to claim pending install: %w", err)
	}
	if claimed != nil {
		owner, err := s.bindPendingInstall(ctx, userID, claimed)
		if err != nil {
			if relErr := s.pending.Release(ctx, shop); relErr != nil {
				log.Error().Err(relErr).Msg("Failed to release pending install after a failed bind")
			}
			return "", err
		}
		log.Info().Str("tokenApp", owner.ID).Msg("Bound pending install to tenant")
		s.metrics.IncInstall(owner.ID, "claimed")
		return s.successURL(shop, ReasonConnected), nil
	}

	if err := s.tenants.SetPendingShop(ctx, userID, shop); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.WrapError(domain.KindNotFound, err, "unknown user")
		}
		return "", fmt.Errorf("failed to record pending shop: %w", err)
	}

	state, err := s.states.Encode(app.ClientSecret, userID)
	if err != nil {
		return "", domain.WrapError(domain.KindValidation, err, "invalid userId")
	}

	q := url.Values{}
	q.Set("client_id", app.ClientID)
	q.Set("scope", app.ScopeString())
	q.Set("redirect_uri", s.appURL+"/shopify/"+app.ID+"/callback")
	q.Set("state", state)

	log.Info().Strs("scopes", app.Scopes).Msg("Redirecting to Shopify authorization")
	s.metrics.IncInstall(app.ID, "authorize")
	return fmt.Sprintf("https://%s/admin/oauth/authorize?%s", shop, q.Encode()), nil
}

// bindPendingInstall moves a claimed ledger token onto the tenant. The connection keeps the
// cipher, id and webhook route of the app that issued the token.
func (s *OAuthService) bindPendingInstall(ctx context.Context, userID string, install *domain.PendingInstall) (*domain.ShopifyApp, error) {
	owner, err := s.registry.Resolve(install.AppID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve app of pending install: %w", err)
	}
	token, err := s.vault.DecryptToken(install.AppID, install.EncryptedToken)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt pending install token: %w", err)
	}

	conn := &domain.Connection{
		ShopDomain:  install.ShopDomain,
		AccessToken: install.EncryptedToken,
		Connected:   true,
		Scopes:      install.Scopes,
		AppID:       install.AppID,
		ConnectedAt: s.now(),
	}
	if err := s.tenants.SaveConnection(ctx, userID, conn); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.WrapError(domain.KindNotFound, err, "unknown user")
		}
		return nil, fmt.Errorf("failed to save connection: %w", err)
	}
	s.vault.Invalidate(userID)
	s.recordWebhookStatus(ctx, owner, userID, install.ShopDomain, token)

	if err := s.pending.DeleteIfClaimed(ctx, install.ShopDomain); err != nil {
		s.logger.Warn().Err(err).Str("shop", install.ShopDomain).Msg("Failed to delete claimed pending install")
	}
	return owner, nil
}

// Callback completes the authorization and returns the dashboard redirect. Failures are
// reported as reason codes, never as errors, except for an unknown or unconfigured app.
func (s *OAuthService) Callback(ctx context.Context, appID string, query url.Values) (string, error) {
	app, err := s.registry.Resolve(appID)
	if err != nil {
		return "", err
	}

	rawShop, code, hmacParam := query.Get("shop"), query.Get("code"), query.Get("hmac")
	if rawShop == "" || code == "" || hmacParam == "" {
		return s.fail(app, ReasonMissingParams), nil
	}
	if !s.verifier.VerifyQuery(query, app.ClientSecret) {
		s.logger.Warn().Str("app", app.ID).Str("shop", rawShop).Msg("OAuth callback signature mismatch")
		return s.fail(app, ReasonInvalidSignature), nil
	}
	shop, err := NormalizeShopDomain(rawShop)
	if err != nil {
		return s.fail(app, ReasonMissingParams), nil
	}

	log := s.logger.With().Str("app", app.ID).Str("shop", shop).Logger()

	userID, err := s.resolveIdentity(ctx, app, shop, query.Get("state"))
	if err != nil {
		log.Error().Err(err).Msg("Failed to resolve installing user")
		return s.fail(app, ReasonInternalError), nil
	}

	if userID == "" && !app.CustomDistribution {
		log.Warn().Msg("OAuth callback without a resolvable user")
		return s.fail(app, ReasonUnknownUser), nil
	}

	grant, err := s.client.ExchangeToken(ctx, shop, app.ClientID, app.ClientSecret, code)
	if err != nil {
		log.Error().Err(err).Msg("Failed to exchange authorization code")
		return s.fail(app, ReasonTokenExchangeFailed), nil
	}
	scopes := grant.Scopes
	if len(scopes) == 0 {
		scopes = app.Scopes
	}

	encrypted, err := s.vault.EncryptToken(app.ID, grant.AccessToken)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encrypt access token")
		return s.fail(app, ReasonInternalError), nil
	}

	if userID == "" {
		install := &domain.PendingInstall{
			ShopDomain:     shop,
			EncryptedToken: encrypted,
			Scopes:         scopes,
			AppID:          app.ID,
			CreatedAt:      s.now(),
		}
		if err := s.pending.Put(ctx, install); err != nil {
			log.Error().Err(err).Msg("Failed to park token in pending installs")
			return s.fail(app, ReasonInternalError), nil
		}
		log.Info().Msg("Parked vendor-initiated install until a tenant claims it")
		s.metrics.IncInstall(app.ID, ReasonPendingClaim)
		return s.successURL(shop, ReasonPendingClaim), nil
	}

	conn := &domain.Connection{
		ShopDomain:  shop,
		AccessToken: encrypted,
		Connected:   true,
		Scopes:      scopes,
		AppID:       app.ID,
		ConnectedAt: s.now(),
	}
	if err := s.tenants.SaveConnection(ctx, userID, conn); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Warn().Str("userId", userID).Msg("OAuth callback for a user without a profile")
			return s.fail(app, ReasonUnknownUser), nil
		}
		log.Error().Err(err).Msg("Failed to save connection")
		return s.fail(app, ReasonInternalError), nil
	}
	s.vault.Invalidate(userID)
	s.recordWebhookStatus(ctx, app, userID, shop, grant.AccessToken)

	log.Info().Str("userId", userID).Msg("Shop connected")
	s.metrics.IncInstall(app.ID, ReasonConnected)
	return s.successURL(shop, ReasonConnected), nil
}

// resolveIdentity prefers the signed state and falls back to the shop recorded at install.
func (s *OAuthService) resolveIdentity(ctx context.Context, app *domain.ShopifyApp, shop, state string) (string, error) {
	if userID, ok := s.states.Decode(app.ClientSecret, state); ok {
		return userID, nil
	}
	tenant, err := s.tenants.FindByPendingShop(ctx, shop)
	if err != nil {
		return "", err
	}
	if tenant == nil {
		return "", nil
	}
	s.logger.Warn().
		Str("app", app.ID).
		Str("shop", shop).
		Str("userId", tenant.ID).
		Msg("Resolved installing user by pending shop domain instead of signed state")
	return tenant.ID, nil
}

func (s *OAuthService) recordWebhookStatus(ctx context.Context, app *domain.ShopifyApp, userID, shop, accessToken string) {
	res := s.webhooks.RegisterAll(ctx, app, shop, accessToken)
	status := domain.WebhookStatusRegistered
	if !res.Success {
		status = domain.WebhookStatusFailed
	}
	if err := s.tenants.UpdateWebhookStatus(ctx, userID, status, res.Error); err != nil {
		s.logger.Warn().Err(err).Str("userId", userID).Msg("Failed to record webhook status")
	}
}

func (s *OAuthService) successURL(shop, reason string) string {
	q := url.Values{}
	q.Set("Success", reason)
	q.Set("shop", shop)
	return s.dashboard + "?" + q.Encode()
}

func (s *OAuthService) fail(app *domain.ShopifyApp, reason string) string {
	s.metrics.IncInstall(app.ID, reason)
	return s.dashboard + "?Error=" + url.QueryEscape(reason)
}
