package application

import (
	"context"
	"fmt"
	"time"

	"courier-shopify-layer/internal/domain"
	"courier-shopify-layer/internal/ports"

	"github.com/rs/zerolog"
)

// ConnectionSummary is a tenant's shop connection without its secret.
type ConnectionSummary struct {
	Connected     bool       `json:"connected"`
	ShopDomain    string     `json:"shopDomain,omitempty"`
	AppID         string     `json:"appId,omitempty"`
	Scopes        []string   `json:"scopes,omitempty"`
	WebhookStatus string     `json:"webhookStatus,omitempty"`
	WebhookError  string     `json:"webhookError,omitempty"`
	ConnectedAt   *time.Time `json:"connectedAt,omitempty"`
	UninstalledAt *time.Time `json:"uninstalledAt,omitempty"`
	PendingShop   string     `json:"pendingShop,omitempty"`
}

// ConnectionService lets a signed-in tenant inspect or drop its shop connection.
type ConnectionService struct {
	tenants ports.TenantRepository
	vault   ports.TokenVault
	logger  zerolog.Logger
}

func NewConnectionService(tenants ports.TenantRepository, vault ports.TokenVault, logger zerolog.Logger) *ConnectionService {
	return &ConnectionService{tenants: tenants, vault: vault, logger: logger}
}

func (s *ConnectionService) Get(ctx context.Context, userID string) (*ConnectionSummary, error) {
	tenant, err := s.tenants.GetTenant(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	if tenant == nil {
		return nil, domain.NewError(domain.KindNotFound, "unknown user")
	}

	summary := &ConnectionSummary{PendingShop: tenant.PendingShop}
	if c := tenant.Connection; c != nil {
		summary.Connected = tenant.Active()
		summary.ShopDomain = c.ShopDomain
		summary.AppID = c.AppID
		summary.Scopes = c.Scopes
		summary.WebhookStatus = c.WebhookStatus
		summary.WebhookError = c.WebhookError
		summary.UninstalledAt = c.UninstalledAt
		if !c.ConnectedAt.IsZero() {
			at := c.ConnectedAt
			summary.ConnectedAt = &at
		}
	}
	return summary, nil
}

func (s *ConnectionService) Disconnect(ctx context.Context, userID string) error {
	tenant, err := s.tenants.GetTenant(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get tenant: %w", err)
	}
	if tenant == nil {
		return domain.NewError(domain.KindNotFound, "unknown user")
	}
	if tenant.Connection == nil {
		return nil
	}

	if err := s.tenants.ClearConnection(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear connection: %w", err)
	}
	s.vault.Invalidate(userID)
	s.logger.Info().Str("userId", userID).Str("shop", tenant.Connection.ShopDomain).Msg("Shop disconnected by tenant")
	return nil
}
