package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"courier-shopify-layer/internal/domain"
	"courier-shopify-layer/internal/metrics"
	"courier-shopify-layer/internal/ports"

	"github.com/rs/zerolog"
)

var syncableFulfillmentOrderStatuses = map[string]bool{
	"OPEN":        true,
	"IN_PROGRESS": true,
}

// FulfillmentService pushes a booked shipment's tracking data back to its Shopify order.
type FulfillmentService struct {
	registry  *AppRegistry
	tenants   ports.TenantRepository
	shipments ports.ShipmentRepository
	client    ports.ShopifyClient
	vault     ports.TokenVault
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	now       func() time.Time
}

func NewFulfillmentService(
	registry *AppRegistry,
	tenants ports.TenantRepository,
	shipments ports.ShipmentRepository,
	client ports.ShopifyClient,
	vault ports.TokenVault,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *FulfillmentService {
	return &FulfillmentService{
		registry:  registry,
		tenants:   tenants,
		shipments: shipments,
		client:    client,
		vault:     vault,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// Sync creates a fulfillment for the shipment's order and returns its Shopify id.
func (s *FulfillmentService) Sync(ctx context.Context, userID, shipmentID string) (string, error) {
	if strings.TrimSpace(shipmentID) == "" {
		return "", domain.NewError(domain.KindValidation, "shipmentId is required")
	}

	shipment, err := s.shipments.GetShipment(ctx, shipmentID)
	if err != nil {
		return "", fmt.Errorf("failed to get shipment: %w", err)
	}
	if shipment == nil {
		return "", domain.NewError(domain.KindNotFound, "shipment not found")
	}
	if shipment.TenantID != userID {
		return "", domain.NewError(domain.KindAuthorization, "shipment belongs to another account")
	}
	if !shipment.FromShopify() {
		return "", domain.NewError(domain.KindValidation, "shipment is not linked to a Shopify order")
	}
	if shipment.AWB == "" {
		return "", domain.NewError(domain.KindValidation, "shipment has no tracking number yet")
	}

	tenant, err := s.tenants.GetTenant(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to get tenant: %w", err)
	}
	if !tenant.Active() {
		return "", domain.NewError(domain.KindValidation, "Shopify store is not connected")
	}
	conn := tenant.Connection
	if !strings.EqualFold(conn.ShopDomain, shipment.ShopDomain) {
		return "", domain.NewError(domain.KindValidation, "shipment belongs to a different Shopify store than the connected one")
	}

	app, err := s.registry.Resolve(conn.AppID)
	if err != nil {
		return "", err
	}
	token, err := s.vault.TenantToken(tenant.ID, conn)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt access token: %w", err)
	}

	log := s.logger.With().
		Str("tenant", tenant.ID).
		Str("shop", conn.ShopDomain).
		Str("shipmentId", shipment.ID).
		Str("orderId", shipment.ShopifyOrderID).
		Logger()

	orders, err := s.client.ListFulfillmentOrders(ctx, conn.ShopDomain, token, app.APIVersion, shipment.ShopifyOrderID)
	if err != nil {
		return "", s.failed(ctx, log, shipment.ID, "failed to load fulfillment orders",
			domain.WrapError(domain.KindUpstream, err, "failed to load fulfillment orders"))
	}
	var target *ports.FulfillmentOrder
	for i := range orders {
		if syncableFulfillmentOrderStatuses[orders[i].Status] {
			target = &orders[i]
			break
		}
	}
	if target == nil {
		msg := "no open fulfillment order"
		return "", s.failed(ctx, log, shipment.ID, msg, domain.NewError(domain.KindValidation, msg))
	}

	tracking := ports.TrackingInfo{
		Company: shipment.Courier,
		Number:  shipment.AWB,
		URL:     domain.TrackingURL(shipment.Courier, shipment.AWB),
	}
	fulfillmentID, userErrors, err := s.client.CreateFulfillment(ctx, conn.ShopDomain, token, app.APIVersion, target.ID, tracking)
	if err != nil {
		return "", s.failed(ctx, log, shipment.ID, "fulfillment request failed",
			domain.WrapError(domain.KindUpstream, err, "fulfillment request failed"))
	}
	if len(userErrors) > 0 {
		msgs := make([]string, 0, len(userErrors))
		for _, ue := range userErrors {
			msgs = append(msgs, ue.Message)
		}
		msg := strings.Join(msgs, "; ")
		return "", s.failed(ctx, log, shipment.ID, msg,
			domain.NewError(domain.KindValidation, "Shopify rejected the fulfillment").WithDetails(userErrors))
	}

	if err := s.shipments.MarkFulfillmentSynced(ctx, shipment.ID, fulfillmentID, s.now()); err != nil {
		return "", fmt.Errorf("failed to record fulfillment: %w", err)
	}
	log.Info().Str("fulfillmentId", fulfillmentID).Msg("Shipment fulfilled on Shopify")
	s.metrics.IncFulfillment("fulfilled")
	return fulfillmentID, nil
}

func (s *FulfillmentService) failed(ctx context.Context, log zerolog.Logger, shipmentID, msg string, cause *domain.Error) error {
	log.Warn().Err(cause).Msg("Fulfillment sync failed")
	if err := s.shipments.MarkFulfillmentFailed(ctx, shipmentID, msg); err != nil {
		log.Error().Err(err).Msg("Failed to record fulfillment failure")
	}
	s.metrics.IncFulfillment(string(cause.Kind))
	return cause
}
