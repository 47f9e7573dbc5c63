package repository

import (
	"context"
	"fmt"
	"time"

	"courier-shopify-layer/internal/domain"
	"courier-shopify-layer/internal/infrastructure/repository/entity"
	"courier-shopify-layer/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	usersCollection           = "users"
	pendingInstallsCollection = "pending_installs"
	shipmentsCollection       = "shipments"
	addressesCollection       = "addresses"
	gdprRequestsCollection    = "gdpr_requests"
	webhookEventsCollection   = "webhook_events"
)

// EnsureIndexes creates the indexes the repositories rely on for correctness.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		shipmentsCollection: {
			{
				Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "shopifyOrderId", Value: 1}},
				Options: options.Index().
					SetUnique(true).
					SetName("tenant_shopify_order_unique").
					SetPartialFilterExpression(bson.M{"shopifyOrderId": bson.M{"$type": "string"}}),
			},
			{Keys: bson.D{{Key: "shopDomain", Value: 1}, {Key: "destination.phone", Value: 1}}},
		},
		usersCollection: {
			{Keys: bson.D{{Key: "shopify.shopDomain", Value: 1}}},
			{Keys: bson.D{{Key: "pendingShopifyShop", Value: 1}}, Options: options.Index().SetSparse(true)},
		},
		addressesCollection: {
			{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "type", Value: 1}, {Key: "isDefault", Value: 1}}},
		},
		webhookEventsCollection: {
			{Keys: bson.D{{Key: "shop", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}
	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// MongoWebhookEventRepository implements WebhookEventRepository using MongoDB
type MongoWebhookEventRepository struct {
	collection *mongo.Collection
}

// NewMongoWebhookEventRepository creates a new MongoDB webhook event repository
func NewMongoWebhookEventRepository(db *mongo.Database) ports.WebhookEventRepository {
	return &MongoWebhookEventRepository{
		collection: db.Collection(webhookEventsCollection),
	}
}

// LogWebhook logs a webhook event
func (r *MongoWebhookEventRepository) LogWebhook(ctx context.Context, event *domain.WebhookEvent) error {
	doc := entity.MongoWebhookDocFromDomain(event)
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to log webhook: %w", err)
	}

	return nil
}
