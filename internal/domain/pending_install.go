package domain

import "time"

// PendingInstall holds a token authorized by the vendor before any tenant claimed the shop.
type PendingInstall struct {
	ShopDomain     string
	EncryptedToken string
	Scopes         []string
	AppID          string
	Claimed        bool
	ClaimedBy      string
	CreatedAt      time.Time
}
