package repository

import (
	"context"
	"fmt"
	"time"

	"courier-shopify-layer/internal/domain"
	"courier-shopify-layer/internal/infrastructure/repository/entity"
	"courier-shopify-layer/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoShipmentRepository implements ShipmentRepository using MongoDB
type MongoShipmentRepository struct {
	collection *mongo.Collection
}

func NewMongoShipmentRepository(db *mongo.Database) ports.ShipmentRepository {
	return &MongoShipmentRepository{
		collection: db.Collection(shipmentsCollection),
	}
}

// InsertIfAbsent upserts with $setOnInsert keyed by (tenantId, shopifyOrderId). The unique
// index turns a concurrent duplicate into a duplicate-key error, reported as ErrDuplicate.
func (r *MongoShipmentRepository) InsertIfAbsent(ctx context.Context, shipment *domain.Shipment) error {
	now := time.Now()
	if shipment.CreatedAt.IsZero() {
		shipment.CreatedAt = now
	}
	shipment.UpdatedAt = now

	doc, err := entity.MongoShipmentDocFromDomain(shipment)
	if err != nil {
		return fmt.Errorf("failed to encode shipment: %w", err)
	}

	filter := bson.M{"tenantId": shipment.TenantID, "shopifyOrderId": shipment.ShopifyOrderID}
	opts := options.Update().SetUpsert(true)
	res, err := r.collection.UpdateOne(ctx, filter, bson.M{"$setOnInsert": doc}, opts)
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to insert shipment: %w", err)
	}
	if res.UpsertedCount == 0 {
		return domain.ErrDuplicate
	}
	return nil
}

// GetShipment retrieves a shipment by id
func (r *MongoShipmentRepository) GetShipment(ctx context.Context, id string) (*domain.Shipment, error) {
	var doc entity.MongoShipmentDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shipment: %w", err)
	}
	return doc.ToDomain(), nil
}

func (r *MongoShipmentRepository) FindByShopifyOrder(ctx context.Context, tenantID string, shopifyOrderID string) (*domain.Shipment, error) {
	var doc entity.MongoShipmentDoc
	err := r.collection.FindOne(ctx, bson.M{"tenantId": tenantID, "shopifyOrderId": shopifyOrderID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shipment: %w", err)
	}
	return doc.ToDomain(), nil
}

// FindForCustomer matches shipments of a shop whose destination phone or Shopify order id matches
func (r *MongoShipmentRepository) FindForCustomer(ctx context.Context, shopDomain string, phone string, orderIDs []string) ([]*domain.Shipment, error) {
	var or bson.A
	if phone != "" {
		or = append(or, bson.M{"destination.phone": phone})
	}
	if len(orderIDs) > 0 {
		or = append(or, bson.M{"shopifyOrderId": bson.M{"$in": orderIDs}})
	}
	if len(or) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"shopDomain": shopDomain, "$or": or})
}

func (r *MongoShipmentRepository) FindByShop(ctx context.Context, shopDomain string) ([]*domain.Shipment, error) {
	return r.find(ctx, bson.M{"shopDomain": shopDomain})
}

func (r *MongoShipmentRepository) MarkFulfillmentSynced(ctx context.Context, id string, fulfillmentID string, at time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"fulfillmentSyncStatus": string(domain.FulfillmentSyncFulfilled),
			"shopifyFulfillmentId":  fulfillmentID,
			"fulfilledAt":           at,
			"updatedAt":             at,
		},
		"$unset": bson.M{"fulfillmentSyncError": ""},
	}
	return r.updateShipment(ctx, id, update)
}

func (r *MongoShipmentRepository) MarkFulfillmentFailed(ctx context.Context, id string, message string) error {
	update := bson.M{"$set": bson.M{
		"fulfillmentSyncStatus": string(domain.FulfillmentSyncFailed),
		"fulfillmentSyncError":  message,
		"updatedAt":             time.Now(),
	}}
	return r.updateShipment(ctx, id, update)
}

// RedactPersonalData overwrites the destination down to its country. Amounts and payment
// mode are untouched.
func (r *MongoShipmentRepository) RedactPersonalData(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	update := bson.M{"$set": bson.M{
		"destination.name":     domain.RedactedMarker,
		"destination.phone":    domain.RedactedMarker,
		"destination.email":    domain.RedactedMarker,
		"destination.company":  domain.RedactedMarker,
		"destination.address1": domain.RedactedMarker,
		"destination.address2": domain.RedactedMarker,
		"destination.city":     domain.RedactedMarker,
		"destination.state":    domain.RedactedMarker,
		"destination.pincode":  domain.RedactedMarker,
		"redactedAt":           at,
		"updatedAt":            at,
	}}
	if _, err := r.collection.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": ids}}, update); err != nil {
		return fmt.Errorf("failed to redact shipments: %w", err)
	}
	return nil
}

func (r *MongoShipmentRepository) updateShipment(ctx context.Context, id string, update bson.M) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update shipment: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoShipmentRepository) find(ctx context.Context, filter bson.M) ([]*domain.Shipment, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list shipments: %w", err)
	}
	defer cursor.Close(ctx)

	var shipments []*domain.Shipment
	for cursor.Next(ctx) {
		var doc entity.MongoShipmentDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode shipment: %w", err)
		}
		shipments = append(shipments, doc.ToDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return shipments, nil
}
