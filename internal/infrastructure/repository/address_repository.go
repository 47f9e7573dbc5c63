package repository

import (
	"context"
	"fmt"

	"courier-shopify-layer/internal/domain"
	"courier-shopify-layer/internal/infrastructure/repository/entity"
	"courier-shopify-layer/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const addressTypePickup = "pickup"

// MongoAddressRepository reads the tenant address book
type MongoAddressRepository struct {
	collection *mongo.Collection
}

func NewMongoAddressRepository(db *mongo.Database) ports.AddressRepository {
	return &MongoAddressRepository{
		collection: db.Collection(addressesCollection),
	}
}

// GetDefaultPickup returns the tenant's default pickup address, or nil when none is saved
func (r *MongoAddressRepository) GetDefaultPickup(ctx context.Context, tenantID string) (*domain.Address, error) {
	filter := bson.M{"tenantId": tenantID, "type": addressTypePickup}
	opts := options.FindOne().SetSort(bson.D{{Key: "isDefault", Value: -1}})

	var doc entity.MongoSavedAddressDoc
	err := r.collection.FindOne(ctx, filter, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pickup address: %w", err)
	}
	addr := doc.MongoAddressDoc.ToDomain()
	return &addr, nil
}
