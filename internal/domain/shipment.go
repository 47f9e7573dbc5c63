package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShipmentSource identifies where a shipment was booked from.
const ShipmentSourceShopify = "shopify"

// Shipment lifecycle status.
const ShipmentStatusAwaitingCourier = "awaiting_courier"

// FulfillmentSyncStatus tracks the push of tracking data back to Shopify.
type FulfillmentSyncStatus string

const (
	FulfillmentSyncPending   FulfillmentSyncStatus = "pending"
	FulfillmentSyncFulfilled FulfillmentSyncStatus = "fulfilled"
	FulfillmentSyncFailed    FulfillmentSyncStatus = "failed"
)

// PaymentMode of a shipment.
type PaymentMode string

const (
	PaymentModePrepaid PaymentMode = "PREPAID"
	PaymentModeCOD     PaymentMode = "COD"
)

// RedactedMarker replaces personal data removed on a compliance request.
const RedactedMarker = "[REDACTED]"

type Address struct {
	Name     string
	Phone    string
	Email    string
	Company  string
	Address1 string
	Address2 string
	City     string
	State    string
	Pincode  string
	Country  string
}

// Redact overwrites every field that can locate or identify the customer. Only the
// country is kept.
func (a *Address) Redact() {
	a.Name = RedactedMarker
	a.Phone = RedactedMarker
	a.Email = RedactedMarker
	a.Company = RedactedMarker
	a.Address1 = RedactedMarker
	a.Address2 = RedactedMarker
	a.City = RedactedMarker
	a.State = RedactedMarker
	a.Pincode = RedactedMarker
}

type LineItem struct {
	Title    string
	SKU      string
	Quantity int
	Price    decimal.Decimal
	Grams    int
}

// Shipment is the internal booking created from a storefront order.
type Shipment struct {
	ID                    string
	TenantID              string
	Source                string
	ShopDomain            string
	ShopifyOrderID        string
	ShopifyOrderNumber    string
	LineItems             []LineItem
	Origin                Address
	Destination           Address
	PaymentMode           PaymentMode
	DeclaredValue         decimal.Decimal
	CODAmount             decimal.Decimal
	WeightGrams           int
	Status                string
	Courier               string
	AWB                   string
	FulfillmentSyncStatus FulfillmentSyncStatus
	FulfillmentSyncError  string
	ShopifyFulfillmentID  string
	FulfilledAt           *time.Time
	RedactedAt            *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// FromShopify reports whether the shipment is linked to a Shopify order.
func (s *Shipment) FromShopify() bool {
	return s.Source == ShipmentSourceShopify && s.ShopifyOrderID != ""
}
