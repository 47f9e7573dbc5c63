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

// MongoPendingInstallRepository implements PendingInstallRepository using MongoDB
type MongoPendingInstallRepository struct {
	collection *mongo.Collection
}

func NewMongoPendingInstallRepository(db *mongo.Database) ports.PendingInstallRepository {
	return &MongoPendingInstallRepository{
		collection: db.Collection(pendingInstallsCollection),
	}
}

// Put replaces the entry of a shop with a fresh unclaimed token
func (r *MongoPendingInstallRepository) Put(ctx context.Context, install *domain.PendingInstall) error {
	createdAt := install.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	update := bson.M{
		"$set": bson.M{
			"accessToken": install.EncryptedToken,
			"scopes":      install.Scopes,
			"appId":       install.AppID,
			"claimed":     false,
			"createdAt":   createdAt,
		},
		"$unset": bson.M{"claimedBy": "", "claimedAt": ""},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": install.ShopDomain}, update, opts); err != nil {
		return fmt.Errorf("failed to save pending install: %w", err)
	}
	return nil
}

// TryClaim flips claimed from false to true in a single find-and-modify, so concurrent
// claimers cannot both win.
func (r *MongoPendingInstallRepository) TryClaim(ctx context.Context, shopDomain string, userID string) (*domain.PendingInstall, error) {
	now := time.Now()
	filter := bson.M{"_id": shopDomain, "claimed": false}
	update := bson.M{"$set": bson.M{"claimed": true, "claimedBy": userID, "claimedAt": now}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc entity.MongoPendingInstallDoc
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim pending install: %w", err)
	}
	return doc.ToDomain(), nil
}

func (r *MongoPendingInstallRepository) Release(ctx context.Context, shopDomain string) error {
	filter := bson.M{"_id": shopDomain, "claimed": true}
	update := bson.M{
		"$set":   bson.M{"claimed": false},
		"$unset": bson.M{"claimedBy": "", "claimedAt": ""},
	}
	if _, err := r.collection.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to release pending install: %w", err)
	}
	return nil
}

func (r *MongoPendingInstallRepository) DeleteIfClaimed(ctx context.Context, shopDomain string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": shopDomain, "claimed": true}); err != nil {
		return fmt.Errorf("failed to delete pending install: %w", err)
	}
	return nil
}

func (r *MongoPendingInstallRepository) Delete(ctx context.Context, shopDomain string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": shopDomain}); err != nil {
		return fmt.Errorf("failed to delete pending install: %w", err)
	}
	return nil
}
