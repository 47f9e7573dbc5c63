package entity

import (
	"time"

	"courier-shopify-layer/internal/domain"
)

// MongoGDPRRequestDoc is an append-only audit record of a compliance webhook
type MongoGDPRRequestDoc struct {
	ID            string             `bson:"_id"`
	Kind          string             `bson:"kind"`
	ShopDomain    string             `bson:"shopDomain"`
	CustomerID    int64              `bson:"customerId,omitempty"`
	CustomerEmail string             `bson:"customerEmail,omitempty"`
	CustomerPhone string             `bson:"customerPhone,omitempty"`
	OrderIDs      []string           `bson:"orderIds,omitempty"`
	ShipmentIDs   []string           `bson:"shipmentIds,omitempty"`
	Shipments     []MongoShipmentDoc `bson:"shipments,omitempty"`
	Payload       string             `bson:"payload"`
	ReceivedAt    time.Time          `bson:"receivedAt"`
}

func MongoGDPRRequestDocFromDomain(r *domain.GDPRRequest) (*MongoGDPRRequestDoc, error) {
	doc := &MongoGDPRRequestDoc{
		ID:            r.ID,
		Kind:          r.Kind,
		ShopDomain:    r.ShopDomain,
		CustomerID:    r.CustomerID,
		CustomerEmail: r.CustomerEmail,
		CustomerPhone: r.CustomerPhone,
		OrderIDs:      r.OrderIDs,
		ShipmentIDs:   r.ShipmentIDs,
		Payload:       string(r.Payload),
		ReceivedAt:    r.ReceivedAt,
	}
	for i := range r.ShipmentRecords {
		s, err := MongoShipmentDocFromDomain(&r.ShipmentRecords[i])
		if err != nil {
			return nil, err
		}
		doc.Shipments = append(doc.Shipments, *s)
	}
	return doc, nil
}
