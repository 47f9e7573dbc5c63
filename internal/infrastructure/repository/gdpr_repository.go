package repository

import (
	"context"
	"fmt"

	"courier-shopify-layer/internal/domain"
	"courier-shopify-layer/internal/infrastructure/repository/entity"
	"courier-shopify-layer/internal/ports"

	"go.mongodb.org/mongo-driver/mongo"
)

// MongoGDPRAuditRepository appends compliance audit records
type MongoGDPRAuditRepository struct {
	collection *mongo.Collection
}

func NewMongoGDPRAuditRepository(db *mongo.Database) ports.GDPRAuditRepository {
	return &MongoGDPRAuditRepository{
		collection: db.Collection(gdprRequestsCollection),
	}
}

func (r *MongoGDPRAuditRepository) Append(ctx context.Context, request *domain.GDPRRequest) error {
	doc, err := entity.MongoGDPRRequestDocFromDomain(request)
	if err != nil {
		return fmt.Errorf("failed to encode gdpr request: %w", err)
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to append gdpr request: %w", err)
	}
	return nil
}
