package webhook_handlers

import (
	"context"
	"fmt"
	"time"

	"courier-shopify-layer/internal/application"
	"courier-shopify-layer/internal/domain"
	"courier-shopify-layer/internal/ports"

	"github.com/rs/zerolog"
)

// AppUninstalledHandler marks every connection to the shop as disconnected.
type AppUninstalledHandler struct {
	tenants ports.TenantRepository
	vault   ports.TokenVault
	logger  zerolog.Logger
	now     func() time.Time
}

func NewAppUninstalledHandler(tenants ports.TenantRepository, vault ports.TokenVault, logger zerolog.Logger) *AppUninstalledHandler {
	return &AppUninstalledHandler{
		tenants: tenants,
		vault:   vault,
		logger:  logger,
		now:     time.Now,
	}
}

func (h *AppUninstalledHandler) CanHandle(topic string) bool {
	return topic == domain.HeaderTopicAppUninstalled
}

// Handle keeps the connection record for audit but flags it unusable.
func (h *AppUninstalledHandler) Handle(ctx context.Context, event *domain.WebhookEvent) (*application.WebhookResult, error) {
	ids, err := h.tenants.MarkDisconnectedByShop(ctx, event.Shop, h.now())
	if err != nil {
		return nil, fmt.Errorf("failed to mark shop disconnected: %w", err)
	}
	for _, id := range ids {
		h.vault.Invalidate(id)
	}

	h.logger.Info().
		Str("shop", event.Shop).
		Strs("tenants", ids).
		Msg("App uninstalled, connections marked disconnected")

	if len(ids) == 0 {
		return &application.WebhookResult{Message: "no tenant for shop", Outcome: application.OutcomeNoTenant}, nil
	}
	return &application.WebhookResult{Message: "shop disconnected", Outcome: application.OutcomeProcessed}, nil
}
