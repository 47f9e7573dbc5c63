package entity

import (
	"time"

	"courier-shopify-layer/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoWebhookDoc represents a logged webhook delivery
type MongoWebhookDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	AppID     string             `bson:"appId"`
	Topic     string             `bson:"topic"`
	Shop      string             `bson:"shop"`
	WebhookID string             `bson:"webhookId,omitempty"`
	Payload   string             `bson:"payload"`
	Verified  bool               `bson:"verified"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func MongoWebhookDocFromDomain(event *domain.WebhookEvent) *MongoWebhookDoc {
	doc := &MongoWebhookDoc{
		AppID:     event.AppID,
		Topic:     event.Topic,
		Shop:      event.Shop,
		WebhookID: event.WebhookID,
		Payload:   string(event.Payload),
		Verified:  event.Verified,
		CreatedAt: event.ReceivedAt,
	}
	if event.ID != "" {
		if objID, err := primitive.ObjectIDFromHex(event.ID); err == nil {
			doc.ID = objID
		}
	}
	return doc
}
