package webhook_handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"courier-shopify-layer/internal/application"
	"courier-shopify-layer/internal/domain"
	"courier-shopify-layer/internal/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type orderAddress struct {
	Name      string `json:"name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Company   string `json:"company"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2"`
	City      string `json:"city"`
	Province  string `json:"province"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
}

type orderLineItem struct {
	Title    string `json:"title"`
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
	Grams    int    `json:"grams"`
}

type orderCustomer struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type orderPayload struct {
	ID                  json.Number     `json:"id"`
	Name                string          `json:"name"`
	OrderNumber         json.Number     `json:"order_number"`
	Email               string          `json:"email"`
	Phone               string          `json:"phone"`
	TotalPrice          string          `json:"total_price"`
	FinancialStatus     string          `json:"financial_status"`
	Gateway             string          `json:"gateway"`
	PaymentGatewayNames []string        `json:"payment_gateway_names"`
	TotalWeight         int             `json:"total_weight"`
	LineItems           []orderLineItem `json:"line_items"`
	ShippingAddress     *orderAddress   `json:"shipping_address"`
	Customer            *orderCustomer  `json:"customer"`
}

// OrderHandler turns orders/create deliveries into shipments awaiting a courier.
type OrderHandler struct {
	tenants   ports.TenantRepository
	shipments ports.ShipmentRepository
	addresses ports.AddressRepository
	logger    zerolog.Logger
	now       func() time.Time
}

func NewOrderHandler(
	tenants ports.TenantRepository,
	shipments ports.ShipmentRepository,
	addresses ports.AddressRepository,
	logger zerolog.Logger,
) *OrderHandler {
	return &OrderHandler{
		tenants:   tenants,
		shipments: shipments,
		addresses: addresses,
		logger:    logger,
		now:       time.Now,
	}
}

func (h *OrderHandler) CanHandle(topic string) bool {
	return topic == domain.HeaderTopicOrdersCreate
}

// Handle creates at most one shipment per (tenant, order). Redeliveries are acknowledged.
func (h *OrderHandler) Handle(ctx context.Context, event *domain.WebhookEvent) (*application.WebhookResult, error) {
	var order orderPayload
	if err := json.Unmarshal(event.Payload, &order); err != nil {
		h.logger.Warn().Err(err).Str("shop", event.Shop).Msg("Unparseable order webhook payload")
		return &application.WebhookResult{Message: "payload ignored", Outcome: application.OutcomeIgnored}, nil
	}
	if order.ID.String() == "" {
		return &application.WebhookResult{Message: "payload ignored", Outcome: application.OutcomeIgnored}, nil
	}

	tenant, err := h.tenants.FindByConnectedShop(ctx, event.Shop)
	if err != nil {
		return nil, fmt.Errorf("failed to find tenant for shop: %w", err)
	}
	if tenant == nil {
		h.logger.Info().Str("shop", event.Shop).Str("orderId", order.ID.String()).Msg("Order for shop without a connected tenant")
		return &application.WebhookResult{Message: "no tenant for shop", Outcome: application.OutcomeNoTenant}, nil
	}

	shipment, err := h.buildShipment(ctx, tenant.ID, event.Shop, &order)
	if err != nil {
		return nil, err
	}

	if err := h.shipments.InsertIfAbsent(ctx, shipment); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			h.logger.Info().Str("tenant", tenant.ID).Str("orderId", shipment.ShopifyOrderID).Msg("Order already processed")
			return &application.WebhookResult{Message: "order already processed", Outcome: application.OutcomeDuplicate}, nil
		}
		return nil, fmt.Errorf("failed to create shipment: %w", err)
	}

	h.logger.Info().
		Str("tenant", tenant.ID).
		Str("shop", event.Shop).
		Str("orderId", shipment.ShopifyOrderID).
		Str("shipmentId", shipment.ID).
		Str("paymentMode", string(shipment.PaymentMode)).
		Msg("Shipment created from order")
	return &application.WebhookResult{Message: "shipment created", Outcome: application.OutcomeProcessed}, nil
}

func (h *OrderHandler) buildShipment(ctx context.Context, tenantID, shop string, order *orderPayload) (*domain.Shipment, error) {
	items := make([]domain.LineItem, 0, len(order.LineItems))
	itemsTotal := decimal.Zero
	weight := 0
	for _, li := range order.LineItems {
		price, err := parseAmount(li.Price)
		if err != nil {
			return nil, fmt.Errorf("failed to parse line item price: %w", err)
		}
		qty := li.Quantity
		if qty <= 0 {
			qty = 1
		}
		itemsTotal = itemsTotal.Add(price.Mul(decimal.NewFromInt(int64(qty))))
		weight += li.Grams * qty
		items = append(items, domain.LineItem{
			Title:    li.Title,
			SKU:      li.SKU,
			Quantity: qty,
			Price:    price,
			Grams:    li.Grams,
		})
	}
	if weight == 0 {
		weight = order.TotalWeight
	}

	declared := itemsTotal
	if strings.TrimSpace(order.TotalPrice) != "" {
		total, err := parseAmount(order.TotalPrice)
		if err != nil {
			return nil, fmt.Errorf("failed to parse order total: %w", err)
		}
		declared = total
	}

	mode := domain.PaymentModePrepaid
	codAmount := decimal.Zero
	if isCashOnDelivery(order) {
		mode = domain.PaymentModeCOD
		codAmount = declared
	}

	var origin domain.Address
	pickup, err := h.addresses.GetDefaultPickup(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pickup address: %w", err)
	}
	if pickup != nil {
		origin = *pickup
	} else {
		h.logger.Warn().Str("tenant", tenantID).Msg("Tenant has no pickup address, shipment origin left empty")
	}

	number := order.Name
	if number == "" {
		number = order.OrderNumber.String()
	}

	now := h.now()
	return &domain.Shipment{
		ID:                    uuid.NewString(),
		TenantID:              tenantID,
		Source:                domain.ShipmentSourceShopify,
		ShopDomain:            shop,
		ShopifyOrderID:        order.ID.String(),
		ShopifyOrderNumber:    number,
		LineItems:             items,
		Origin:                origin,
		Destination:           destinationOf(order),
		PaymentMode:           mode,
		DeclaredValue:         declared,
		CODAmount:             codAmount,
		WeightGrams:           weight,
		Status:                domain.ShipmentStatusAwaitingCourier,
		FulfillmentSyncStatus: domain.FulfillmentSyncPending,
		CreatedAt:             now,
		UpdatedAt:             now,
	}, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// isCashOnDelivery infers COD from the gateway names, or an unpaid order on a manual gateway.
func isCashOnDelivery(order *orderPayload) bool {
	gateways := append([]string{order.Gateway}, order.PaymentGatewayNames...)
	manual := false
	for _, g := range gateways {
		name := strings.ToLower(strings.TrimSpace(g))
		if name == "" {
			continue
		}
		if strings.Contains(name, "cash on delivery") {
			return true
		}
		for _, word := range strings.FieldsFunc(name, func(r rune) bool {
			return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
		}) {
			if word == "cod" {
				return true
			}
		}
		if name == "manual" {
			manual = true
		}
	}
	return manual && strings.EqualFold(order.FinancialStatus, "pending")
}

func destinationOf(order *orderPayload) domain.Address {
	var dest domain.Address
	if a := order.ShippingAddress; a != nil {
		name := strings.TrimSpace(a.Name)
		if name == "" {
			name = strings.TrimSpace(a.FirstName + " " + a.LastName)
		}
		dest = domain.Address{
			Name:     name,
			Phone:    a.Phone,
			Company:  a.Company,
			Address1: a.Address1,
			Address2: a.Address2,
			City:     a.City,
			State:    a.Province,
			Pincode:  a.Zip,
			Country:  a.Country,
		}
	}
	dest.Email = order.Email
	if dest.Phone == "" {
		dest.Phone = order.Phone
	}
	if c := order.Customer; c != nil {
		if dest.Email == "" {
			dest.Email = c.Email
		}
		if dest.Phone == "" {
			dest.Phone = c.Phone
		}
	}
	return dest
}
