package domain

import "time"

// Webhook registration status stored on a connection.
const (
	WebhookStatusRegistered = "registered"
	WebhookStatusFailed     = "failed"
)

// Tenant is the business account profile a shop connects to.
type Tenant struct {
	ID          string
	Email       string
	Name        string
	PendingShop string
	Connection  *Connection
}

// Connection binds a tenant to a Shopify shop. AccessToken is always ciphertext.
type Connection struct {
	ShopDomain    string
	AccessToken   string
	Connected     bool
	Scopes        []string
	WebhookStatus string
	WebhookError  string
	AppID         string
	ConnectedAt   time.Time
	UninstalledAt *time.Time
}

// Active reports whether the tenant currently has a usable shop connection.
func (t *Tenant) Active() bool {
	return t != nil && t.Connection != nil && t.Connection.Connected && t.Connection.AccessToken != ""
}
