package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"courier-shopify-layer/internal/domain"
	"courier-shopify-layer/internal/metrics"
	"courier-shopify-layer/internal/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"
)

type gdprCustomer struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type gdprPayload struct {
	ShopDomain      string        `json:"shop_domain"`
	Customer        gdprCustomer  `json:"customer"`
	OrdersRequested []json.Number `json:"orders_requested"`
	OrdersToRedact  []json.Number `json:"orders_to_redact"`
}

func (p *gdprPayload) orderIDs() []string {
	ids := make([]string, 0, len(p.OrdersRequested)+len(p.OrdersToRedact))
	for _, list := range [][]json.Number{p.OrdersRequested, p.OrdersToRedact} {
		for _, n := range list {
			if s := n.String(); s != "" {
				ids = append(ids, s)
			}
		}
	}
	return ids
}

// GDPRService serves the mandatory compliance webhooks.
type GDPRService struct {
	registry  *AppRegistry
	verifier  ports.SignatureVerifier
	tenants   ports.TenantRepository
	pending   ports.PendingInstallRepository
	shipments ports.ShipmentRepository
	audit     ports.GDPRAuditRepository
	vault     ports.TokenVault
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	now       func() time.Time
}

// GDPRDependencies groups the collaborators of GDPRService.
type GDPRDependencies struct {
	Registry  *AppRegistry
	Verifier  ports.SignatureVerifier
	Tenants   ports.TenantRepository
	Pending   ports.PendingInstallRepository
	Shipments ports.ShipmentRepository
	Audit     ports.GDPRAuditRepository
	Vault     ports.TokenVault
	Metrics   *metrics.Metrics
}

func NewGDPRService(deps GDPRDependencies, logger zerolog.Logger) *GDPRService {
	return &GDPRService{
		registry:  deps.Registry,
		verifier:  deps.Verifier,
		tenants:   deps.Tenants,
		pending:   deps.Pending,
		shipments: deps.Shipments,
		audit:     deps.Audit,
		vault:     deps.Vault,
		metrics:   deps.Metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Handle authenticates and processes a compliance delivery. Only an unknown app or a bad
// signature is returned as an error; processing failures are logged and acknowledged.
func (s *GDPRService) Handle(ctx context.Context, appID, kind string, d WebhookDelivery) error {
	app, err := s.registry.Resolve(appID)
	if err != nil {
		return err
	}
	if !s.verifier.VerifyWebhook(d.Body, d.HMAC, app.ClientSecret) {
		s.logger.Warn().Str("app", app.ID).Str("kind", kind).Str("shop", d.Shop).Msg("Compliance webhook signature verification failed")
		return domain.NewError(domain.KindAuthentication, "invalid signature")
	}

	var payload gdprPayload
	if err := json.Unmarshal(d.Body, &payload); err != nil {
		s.logger.Warn().Err(err).Str("kind", kind).Msg("Unparseable compliance payload")
	}
	shop := strings.ToLower(strings.TrimSpace(d.Shop))
	if shop == "" {
		shop = strings.ToLower(strings.TrimSpace(payload.ShopDomain))
	}

	log := s.logger.With().Str("app", app.ID).Str("kind", kind).Str("shop", shop).Logger()
	s.metrics.IncGDPR(kind)

	switch kind {
	case domain.GDPRCustomersDataRequest:
		err = s.dataRequest(ctx, shop, &payload, d.Body)
	case domain.GDPRCustomersRedact:
		err = s.redactCustomer(ctx, shop, &payload, d.Body)
	case domain.GDPRShopRedact:
		err = s.redactShop(ctx, shop, d.Body)
	default:
		log.Warn().Msg("Unknown compliance webhook kind")
		return nil
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to process compliance webhook")
		return nil
	}
	log.Info().Msg("Compliance webhook processed")
	return nil
}

func (s *GDPRService) newRequest(kind, shop string, payload *gdprPayload, body []byte) *domain.GDPRRequest {
	return &domain.GDPRRequest{
		ID:            uuid.NewString(),
		Kind:          kind,
		ShopDomain:    shop,
		CustomerID:    payload.Customer.ID,
		CustomerEmail: payload.Customer.Email,
		CustomerPhone: payload.Customer.Phone,
		OrderIDs:      payload.orderIDs(),
		Payload:       body,
		ReceivedAt:    s.now(),
	}
}

func (s *GDPRService) dataRequest(ctx context.Context, shop string, payload *gdprPayload, body []byte) error {
	req := s.newRequest(domain.GDPRCustomersDataRequest, shop, payload, body)
	matches, err := s.shipments.FindForCustomer(ctx, shop, payload.Customer.Phone, req.OrderIDs)
	if err != nil {
		return fmt.Errorf("failed to find customer shipments: %w", err)
	}
	for _, sh := range matches {
		req.ShipmentIDs = append(req.ShipmentIDs, sh.ID)
		req.ShipmentRecords = append(req.ShipmentRecords, *sh)
	}
	if err := s.audit.Append(ctx, req); err != nil {
		return fmt.Errorf("failed to append compliance audit: %w", err)
	}
	return nil
}

func (s *GDPRService) redactCustomer(ctx context.Context, shop string, payload *gdprPayload, body []byte) error {
	req := s.newRequest(domain.GDPRCustomersRedact, shop, payload, body)
	matches, err := s.shipments.FindForCustomer(ctx, shop, payload.Customer.Phone, req.OrderIDs)
	if err != nil {
		return fmt.Errorf("failed to find customer shipments: %w", err)
	}
	for _, sh := range matches {
		req.ShipmentIDs = append(req.ShipmentIDs, sh.ID)
	}

	var errs error
	if len(req.ShipmentIDs) > 0 {
		if err := s.shipments.RedactPersonalData(ctx, req.ShipmentIDs, req.ReceivedAt); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("failed to redact shipments: %w", err))
		}
	}
	if err := s.audit.Append(ctx, req); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("failed to append compliance audit: %w", err))
	}
	return errs
}

// redactShop runs every step even when an earlier one fails.
func (s *GDPRService) redactShop(ctx context.Context, shop string, body []byte) error {
	req := s.newRequest(domain.GDPRShopRedact, shop, &gdprPayload{}, body)

	var errs error
	shipments, err := s.shipments.FindByShop(ctx, shop)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("failed to list shop shipments: %w", err))
	}
	for _, sh := range shipments {
		req.ShipmentIDs = append(req.ShipmentIDs, sh.ID)
	}
	if len(req.ShipmentIDs) > 0 {
		if err := s.shipments.RedactPersonalData(ctx, req.ShipmentIDs, req.ReceivedAt); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("failed to redact shipments: %w", err))
		}
	}

	tenantIDs, err := s.tenants.ClearConnectionsByShop(ctx, shop)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("failed to clear shop connections: %w", err))
	}
	for _, id := range tenantIDs {
		s.vault.Invalidate(id)
	}

	if err := s.pending.Delete(ctx, shop); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("failed to delete pending install: %w", err))
	}
	if err := s.audit.Append(ctx, req); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("failed to append compliance audit: %w", err))
	}
	return errs
}
