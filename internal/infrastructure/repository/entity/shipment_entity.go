package entity

import (
	"time"

	"courier-shopify-layer/internal/domain"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoShipmentDoc represents a shipment in MongoDB. Amounts are stored as Decimal128.
type MongoShipmentDoc struct {
	ID                    string               `bson:"_id"`
	TenantID              string               `bson:"tenantId"`
	Source                string               `bson:"source"`
	ShopDomain            string               `bson:"shopDomain,omitempty"`
	ShopifyOrderID        string               `bson:"shopifyOrderId,omitempty"`
	ShopifyOrderNumber    string               `bson:"shopifyOrderNumber,omitempty"`
	LineItems             []MongoLineItemDoc   `bson:"lineItems"`
	Origin                MongoAddressDoc      `bson:"origin"`
	Destination           MongoAddressDoc      `bson:"destination"`
	PaymentMode           string               `bson:"paymentMode"`
	DeclaredValue         primitive.Decimal128 `bson:"declaredValue"`
	CODAmount             primitive.Decimal128 `bson:"codAmount"`
	WeightGrams           int                  `bson:"weightGrams"`
	Status                string               `bson:"status"`
	Courier               string               `bson:"courier,omitempty"`
	AWB                   string               `bson:"awb,omitempty"`
	FulfillmentSyncStatus string               `bson:"fulfillmentSyncStatus,omitempty"`
	FulfillmentSyncError  string               `bson:"fulfillmentSyncError,omitempty"`
	ShopifyFulfillmentID  string               `bson:"shopifyFulfillmentId,omitempty"`
	FulfilledAt           *time.Time           `bson:"fulfilledAt,omitempty"`
	RedactedAt            *time.Time           `bson:"redactedAt,omitempty"`
	CreatedAt             time.Time            `bson:"createdAt"`
	UpdatedAt             time.Time            `bson:"updatedAt"`
}

type MongoLineItemDoc struct {
	Title    string               `bson:"title"`
	SKU      string               `bson:"sku,omitempty"`
	Quantity int                  `bson:"quantity"`
	Price    primitive.Decimal128 `bson:"price"`
	Grams    int                  `bson:"grams"`
}

type MongoAddressDoc struct {
	Name     string `bson:"name"`
	Phone    string `bson:"phone"`
	Email    string `bson:"email,omitempty"`
	Company  string `bson:"company,omitempty"`
	Address1 string `bson:"address1"`
	Address2 string `bson:"address2,omitempty"`
	City     string `bson:"city"`
	State    string `bson:"state"`
	Pincode  string `bson:"pincode"`
	Country  string `bson:"country"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoShipmentDoc) ToDomain() *domain.Shipment {
	s := &domain.Shipment{
		ID:                    d.ID,
		TenantID:              d.TenantID,
		Source:                d.Source,
		ShopDomain:            d.ShopDomain,
		ShopifyOrderID:        d.ShopifyOrderID,
		ShopifyOrderNumber:    d.ShopifyOrderNumber,
		Origin:                d.Origin.ToDomain(),
		Destination:           d.Destination.ToDomain(),
		PaymentMode:           domain.PaymentMode(d.PaymentMode),
		DeclaredValue:         decimalFrom(d.DeclaredValue),
		CODAmount:             decimalFrom(d.CODAmount),
		WeightGrams:           d.WeightGrams,
		Status:                d.Status,
		Courier:               d.Courier,
		AWB:                   d.AWB,
		FulfillmentSyncStatus: domain.FulfillmentSyncStatus(d.FulfillmentSyncStatus),
		FulfillmentSyncError:  d.FulfillmentSyncError,
		ShopifyFulfillmentID:  d.ShopifyFulfillmentID,
		FulfilledAt:           d.FulfilledAt,
		RedactedAt:            d.RedactedAt,
		CreatedAt:             d.CreatedAt,
		UpdatedAt:             d.UpdatedAt,
	}
	for _, li := range d.LineItems {
		s.LineItems = append(s.LineItems, domain.LineItem{
			Title:    li.Title,
			SKU:      li.SKU,
			Quantity: li.Quantity,
			Price:    decimalFrom(li.Price),
			Grams:    li.Grams,
		})
	}
	return s
}

// MongoShipmentDocFromDomain converts a domain entity to a MongoDB document
func MongoShipmentDocFromDomain(s *domain.Shipment) (*MongoShipmentDoc, error) {
	declared, err := decimal128From(s.DeclaredValue)
	if err != nil {
		return nil, err
	}
	cod, err := decimal128From(s.CODAmount)
	if err != nil {
		return nil, err
	}
	doc := &MongoShipmentDoc{
		ID:                    s.ID,
		TenantID:              s.TenantID,
		Source:                s.Source,
		ShopDomain:            s.ShopDomain,
		ShopifyOrderID:        s.ShopifyOrderID,
		ShopifyOrderNumber:    s.ShopifyOrderNumber,
		LineItems:             make([]MongoLineItemDoc, 0, len(s.LineItems)),
		Origin:                MongoAddressDocFromDomain(s.Origin),
		Destination:           MongoAddressDocFromDomain(s.Destination),
		PaymentMode:           string(s.PaymentMode),
		DeclaredValue:         declared,
		CODAmount:             cod,
		WeightGrams:           s.WeightGrams,
		Status:                s.Status,
		Courier:               s.Courier,
		AWB:                   s.AWB,
		FulfillmentSyncStatus: string(s.FulfillmentSyncStatus),
		FulfillmentSyncError:  s.FulfillmentSyncError,
		ShopifyFulfillmentID:  s.ShopifyFulfillmentID,
		FulfilledAt:           s.FulfilledAt,
		RedactedAt:            s.RedactedAt,
		CreatedAt:             s.CreatedAt,
		UpdatedAt:             s.UpdatedAt,
	}
	for _, li := range s.LineItems {
		price, err := decimal128From(li.Price)
		if err != nil {
			return nil, err
		}
		doc.LineItems = append(doc.LineItems, MongoLineItemDoc{
			Title:    li.Title,
			SKU:      li.SKU,
			Quantity: li.Quantity,
			Price:    price,
			Grams:    li.Grams,
		})
	}
	return doc, nil
}

func (d MongoAddressDoc) ToDomain() domain.Address {
	return domain.Address{
		Name:     d.Name,
		Phone:    d.Phone,
		Email:    d.Email,
		Company:  d.Company,
		Address1: d.Address1,
		Address2: d.Address2,
		City:     d.City,
		State:    d.State,
		Pincode:  d.Pincode,
		Country:  d.Country,
	}
}

func MongoAddressDocFromDomain(a domain.Address) MongoAddressDoc {
	return MongoAddressDoc{
		Name:     a.Name,
		Phone:    a.Phone,
		Email:    a.Email,
		Company:  a.Company,
		Address1: a.Address1,
		Address2: a.Address2,
		City:     a.City,
		State:    a.State,
		Pincode:  a.Pincode,
		Country:  a.Country,
	}
}

func decimal128From(d decimal.Decimal) (primitive.Decimal128, error) {
	return primitive.ParseDecimal128(d.String())
}

func decimalFrom(d primitive.Decimal128) decimal.Decimal {
	v, err := decimal.NewFromString(d.String())
	if err != nil {
		return decimal.Zero
	}
	return v
}
