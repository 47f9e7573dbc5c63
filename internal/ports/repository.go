package ports

import (
	"context"
	"time"

	"courier-shopify-layer/internal/domain"
)

// TenantRepository persists tenant profiles and their embedded shop connection.
type TenantRepository interface {
	GetTenant(ctx context.Context, userID string) (*domain.Tenant, error)
	// FindByPendingShop resolves the tenant that last started an install for shop.
	FindByPendingShop(ctx context.Context, shopDomain string) (*domain.Tenant, error)
	// FindByConnectedShop returns the tenant whose active connection is shop.
	FindByConnectedShop(ctx context.Context, shopDomain string) (*domain.Tenant, error)
	SetPendingShop(ctx context.Context, userID string, shopDomain string) error
	// SaveConnection overwrites the connection and clears the pending shop.
	SaveConnection(ctx context.Context, userID string, conn *domain.Connection) error
	UpdateWebhookStatus(ctx context.Context, userID string, status string, errMsg string) error
	// MarkDisconnectedByShop flags every connection referencing shop and returns the tenant ids.
	MarkDisconnectedByShop(ctx context.Context, shopDomain string, at time.Time) ([]string, error)
	// ClearConnectionsByShop removes every connection referencing shop and returns the tenant ids.
	ClearConnectionsByShop(ctx context.Context, shopDomain string) ([]string, error)
	ClearConnection(ctx context.Context, userID string) error
}

// PendingInstallRepository is the ledger of vendor-initiated installs awaiting a tenant.
type PendingInstallRepository interface {
	Put(ctx context.Context, install *domain.PendingInstall) error
	// TryClaim atomically marks the unclaimed record of shop as claimed by userID.
	// Returns nil when there is no unclaimed record.
	TryClaim(ctx context.Context, shopDomain string, userID string) (*domain.PendingInstall, error)
	// Release returns a claimed record to the unclaimed state after a failed bind.
	Release(ctx context.Context, shopDomain string) error
	DeleteIfClaimed(ctx context.Context, shopDomain string) error
	Delete(ctx context.Context, shopDomain string) error
}

// ShipmentRepository persists shipments.
type ShipmentRepository interface {
	// InsertIfAbsent creates the shipment unless one already exists for
	// (TenantID, ShopifyOrderID). Returns domain.ErrDuplicate in that case.
	InsertIfAbsent(ctx context.Context, shipment *domain.Shipment) error
	GetShipment(ctx context.Context, id string) (*domain.Shipment, error)
	FindByShopifyOrder(ctx context.Context, tenantID string, shopifyOrderID string) (*domain.Shipment, error)
	// FindForCustomer matches shipments of shop by destination phone or order id.
	FindForCustomer(ctx context.Context, shopDomain string, phone string, orderIDs []string) ([]*domain.Shipment, error)
	FindByShop(ctx context.Context, shopDomain string) ([]*domain.Shipment, error)
	MarkFulfillmentSynced(ctx context.Context, id string, fulfillmentID string, at time.Time) error
	MarkFulfillmentFailed(ctx context.Context, id string, message string) error
	// RedactPersonalData anonymizes destination PII of the given shipments.
	RedactPersonalData(ctx context.Context, ids []string, at time.Time) error
}

// AddressRepository reads saved pickup addresses.
type AddressRepository interface {
	GetDefaultPickup(ctx context.Context, tenantID string) (*domain.Address, error)
}

// GDPRAuditRepository is append-only.
type GDPRAuditRepository interface {
	Append(ctx context.Context, request *domain.GDPRRequest) error
}

// WebhookEventRepository logs verified webhook deliveries.
type WebhookEventRepository interface {
	LogWebhook(ctx context.Context, event *domain.WebhookEvent) error
}
