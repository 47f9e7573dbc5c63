package domain

import "time"

// WebhookEvent is a verified inbound delivery from Shopify.
type WebhookEvent struct {
	ID         string
	AppID      string
	Topic      string
	Shop       string
	WebhookID  string
	Payload    []byte
	Verified   bool
	ReceivedAt time.Time
}
