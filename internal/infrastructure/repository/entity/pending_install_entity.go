package entity

import (
	"time"

	"courier-shopify-layer/internal/domain"
)

// MongoPendingInstallDoc is keyed by shop domain so a shop has at most one entry
type MongoPendingInstallDoc struct {
	ShopDomain     string     `bson:"_id"`
	EncryptedToken string     `bson:"accessToken"`
	Scopes         []string   `bson:"scopes,omitempty"`
	AppID          string     `bson:"appId,omitempty"`
	Claimed        bool       `bson:"claimed"`
	ClaimedBy      string     `bson:"claimedBy,omitempty"`
	ClaimedAt      *time.Time `bson:"claimedAt,omitempty"`
	CreatedAt      time.Time  `bson:"createdAt"`
}

func (d *MongoPendingInstallDoc) ToDomain() *domain.PendingInstall {
	return &domain.PendingInstall{
		ShopDomain:     d.ShopDomain,
		EncryptedToken: d.EncryptedToken,
		Scopes:         d.Scopes,
		AppID:          d.AppID,
		Claimed:        d.Claimed,
		ClaimedBy:      d.ClaimedBy,
		CreatedAt:      d.CreatedAt,
	}
}
