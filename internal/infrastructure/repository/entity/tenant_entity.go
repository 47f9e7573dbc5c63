package entity

import (
	"time"

	"courier-shopify-layer/internal/domain"
)

// MongoTenantDoc represents a tenant profile in the users collection
type MongoTenantDoc struct {
	ID          string              `bson:"_id"`
	Email       string              `bson:"email,omitempty"`
	Name        string              `bson:"name,omitempty"`
	PendingShop string              `bson:"pendingShopifyShop,omitempty"`
	Shopify     *MongoConnectionDoc `bson:"shopify,omitempty"`
}

// MongoConnectionDoc is the shop connection embedded in a tenant profile
type MongoConnectionDoc struct {
	ShopDomain    string     `bson:"shopDomain"`
	AccessToken   string     `bson:"accessToken"`
	Connected     bool       `bson:"connected"`
	Scopes        []string   `bson:"scopes,omitempty"`
	WebhookStatus string     `bson:"webhookStatus,omitempty"`
	WebhookError  string     `bson:"webhookError,omitempty"`
	AppID         string     `bson:"appId,omitempty"`
	ConnectedAt   time.Time  `bson:"connectedAt"`
	UninstalledAt *time.Time `bson:"uninstalledAt,omitempty"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoTenantDoc) ToDomain() *domain.Tenant {
	t := &domain.Tenant{
		ID:          d.ID,
		Email:       d.Email,
		Name:        d.Name,
		PendingShop: d.PendingShop,
	}
	if d.Shopify != nil {
		t.Connection = d.Shopify.ToDomain()
	}
	return t
}

func (d *MongoConnectionDoc) ToDomain() *domain.Connection {
	return &domain.Connection{
		ShopDomain:    d.ShopDomain,
		AccessToken:   d.AccessToken,
		Connected:     d.Connected,
		Scopes:        d.Scopes,
		WebhookStatus: d.WebhookStatus,
		WebhookError:  d.WebhookError,
		AppID:         d.AppID,
		ConnectedAt:   d.ConnectedAt,
		UninstalledAt: d.UninstalledAt,
	}
}

// MongoConnectionDocFromDomain converts a domain connection to its embedded document
func MongoConnectionDocFromDomain(c *domain.Connection) *MongoConnectionDoc {
	return &MongoConnectionDoc{
		ShopDomain:    c.ShopDomain,
		AccessToken:   c.AccessToken,
		Connected:     c.Connected,
		Scopes:        c.Scopes,
		WebhookStatus: c.WebhookStatus,
		WebhookError:  c.WebhookError,
		AppID:         c.AppID,
		ConnectedAt:   c.ConnectedAt,
		UninstalledAt: c.UninstalledAt,
	}
}
