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

// MongoTenantRepository implements TenantRepository over the users collection
type MongoTenantRepository struct {
	collection *mongo.Collection
}

// NewMongoTenantRepository creates a new MongoDB tenant repository
func NewMongoTenantRepository(db *mongo.Database) ports.TenantRepository {
	return &MongoTenantRepository{
		collection: db.Collection(usersCollection),
	}
}

func (r *MongoTenantRepository) findOne(ctx context.Context, filter bson.M) (*domain.Tenant, error) {
	var doc entity.MongoTenantDoc
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return doc.ToDomain(), nil
}

// GetTenant retrieves a tenant by user id
func (r *MongoTenantRepository) GetTenant(ctx context.Context, userID string) (*domain.Tenant, error) {
	return r.findOne(ctx, bson.M{"_id": userID})
}

func (r *MongoTenantRepository) FindByPendingShop(ctx context.Context, shopDomain string) (*domain.Tenant, error) {
	return r.findOne(ctx, bson.M{"pendingShopifyShop": shopDomain})
}

func (r *MongoTenantRepository) FindByConnectedShop(ctx context.Context, shopDomain string) (*domain.Tenant, error) {
	return r.findOne(ctx, bson.M{"shopify.shopDomain": shopDomain, "shopify.connected": true})
}

func (r *MongoTenantRepository) SetPendingShop(ctx context.Context, userID string, shopDomain string) error {
	return r.updateTenant(ctx, userID, bson.M{"$set": bson.M{"pendingShopifyShop": shopDomain}})
}

// SaveConnection overwrites any previous connection and clears the pending shop
func (r *MongoTenantRepository) SaveConnection(ctx context.Context, userID string, conn *domain.Connection) error {
	update := bson.M{
		"$set":   bson.M{"shopify": entity.MongoConnectionDocFromDomain(conn)},
		"$unset": bson.M{"pendingShopifyShop": ""},
	}
	return r.updateTenant(ctx, userID, update)
}

func (r *MongoTenantRepository) UpdateWebhookStatus(ctx context.Context, userID string, status string, errMsg string) error {
	set := bson.M{"shopify.webhookStatus": status}
	update := bson.M{"$set": set}
	if errMsg != "" {
		set["shopify.webhookError"] = errMsg
	} else {
		update["$unset"] = bson.M{"shopify.webhookError": ""}
	}
	return r.updateTenant(ctx, userID, update)
}

func (r *MongoTenantRepository) ClearConnection(ctx context.Context, userID string) error {
	return r.updateTenant(ctx, userID, bson.M{"$unset": bson.M{"shopify": ""}})
}

// MarkDisconnectedByShop flags every connection bound to shop as uninstalled
func (r *MongoTenantRepository) MarkDisconnectedByShop(ctx context.Context, shopDomain string, at time.Time) ([]string, error) {
	filter := bson.M{"shopify.shopDomain": shopDomain}
	ids, err := r.idsMatching(ctx, filter)
	if err != nil || len(ids) == 0 {
		return ids, err
	}
	update := bson.M{"$set": bson.M{"shopify.connected": false, "shopify.uninstalledAt": at}}
	if _, err := r.collection.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": ids}}, update); err != nil {
		return nil, fmt.Errorf("failed to mark tenants disconnected: %w", err)
	}
	return ids, nil
}

// ClearConnectionsByShop removes every connection bound to shop
func (r *MongoTenantRepository) ClearConnectionsByShop(ctx context.Context, shopDomain string) ([]string, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"shopify.shopDomain": shopDomain},
		bson.M{"pendingShopifyShop": shopDomain},
	}}
	ids, err := r.idsMatching(ctx, filter)
	if err != nil || len(ids) == 0 {
		return ids, err
	}
	update := bson.M{"$unset": bson.M{"shopify": "", "pendingShopifyShop": ""}}
	if _, err := r.collection.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": ids}}, update); err != nil {
		return nil, fmt.Errorf("failed to clear shop connections: %w", err)
	}
	return ids, nil
}

func (r *MongoTenantRepository) updateTenant(ctx context.Context, userID string, update bson.M) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return fmt.Errorf("failed to update tenant: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoTenantRepository) idsMatching(ctx context.Context, filter bson.M) ([]string, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer cursor.Close(ctx)

	var ids []string
	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode tenant: %w", err)
		}
		ids = append(ids, doc.ID)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return ids, nil
}
