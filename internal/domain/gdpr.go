package domain

import "time"

// Compliance webhook kinds.
const (
	GDPRCustomersDataRequest = "customers/data_request"
	GDPRCustomersRedact      = "customers/redact"
	GDPRShopRedact           = "shop/redact"
)

// GDPRRequest is the append-only audit entry written per compliance webhook.
type GDPRRequest struct {
	ID              string
	Kind            string
	ShopDomain      string
	CustomerID      int64
	CustomerEmail   string
	CustomerPhone   string
	OrderIDs        []string
	ShipmentIDs     []string
	ShipmentRecords []Shipment
	Payload         []byte
	ReceivedAt      time.Time
}
