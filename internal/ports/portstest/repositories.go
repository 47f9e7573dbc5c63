// Package portstest provides in-memory implementations of the ports for tests.
package portstest

import (
	"context"
	"sort"
	"sync"
	"time"

	"courier-shopify-layer/internal/domain"
)

// Tenants is an in-memory ports.TenantRepository.
type Tenants struct {
	mu   sync.Mutex
	byID map[string]*domain.Tenant
}

func NewTenants(tenants ...*domain.Tenant) *Tenants {
	r := &Tenants{byID: make(map[string]*domain.Tenant)}
	for _, t := range tenants {
		r.byID[t.ID] = t
	}
	return r
}

func (r *Tenants) Add(t *domain.Tenant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[t.ID] = t
}

func cloneTenant(t *domain.Tenant) *domain.Tenant {
	c := *t
	if t.Connection != nil {
		conn := *t.Connection
		c.Connection = &conn
	}
	return &c
}

func (r *Tenants) GetTenant(_ context.Context, userID string) (*domain.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[userID]
	if !ok {
		return nil, nil
	}
	return cloneTenant(t), nil
}

func (r *Tenants) sortedIDs() []string {
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Tenants) FindByPendingShop(_ context.Context, shop string) (*domain.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.sortedIDs() {
		if t := r.byID[id]; t.PendingShop == shop {
			return cloneTenant(t), nil
		}
	}
	return nil, nil
}

func (r *Tenants) FindByConnectedShop(_ context.Context, shop string) (*domain.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.sortedIDs() {
		if t := r.byID[id]; t.Connection != nil && t.Connection.Connected && t.Connection.ShopDomain == shop {
			return cloneTenant(t), nil
		}
	}
	return nil, nil
}

func (r *Tenants) SetPendingShop(_ context.Context, userID, shop string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[userID]
	if !ok {
		return domain.ErrNotFound
	}
	t.PendingShop = shop
	return nil
}

func (r *Tenants) SaveConnection(_ context.Context, userID string, conn *domain.Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[userID]
	if !ok {
		return domain.ErrNotFound
	}
	c := *conn
	t.Connection = &c
	t.PendingShop = ""
	return nil
}

func (r *Tenants) UpdateWebhookStatus(_ context.Context, userID, status, errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[userID]
	if !ok || t.Connection == nil {
		return domain.ErrNotFound
	}
	t.Connection.WebhookStatus = status
	t.Connection.WebhookError = errMsg
	return nil
}

func (r *Tenants) MarkDisconnectedByShop(_ context.Context, shop string, at time.Time) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for _, id := range r.sortedIDs() {
		t := r.byID[id]
		if t.Connection != nil && t.Connection.ShopDomain == shop {
			t.Connection.Connected = false
			uninstalled := at
			t.Connection.UninstalledAt = &uninstalled
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *Tenants) ClearConnectionsByShop(_ context.Context, shop string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for _, id := range r.sortedIDs() {
		t := r.byID[id]
		if t.Connection != nil && t.Connection.ShopDomain == shop {
			t.Connection = nil
			ids = append(ids, id)
		}
		if t.PendingShop == shop {
			t.PendingShop = ""
		}
	}
	return ids, nil
}

func (r *Tenants) ClearConnection(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[userID]
	if !ok {
		return domain.ErrNotFound
	}
	t.Connection = nil
	return nil
}

// PendingInstalls is an in-memory ports.PendingInstallRepository.
type PendingInstalls struct {
	mu     sync.Mutex
	byShop map[string]*domain.PendingInstall
}

func NewPendingInstalls() *PendingInstalls {
	return &PendingInstalls{byShop: make(map[string]*domain.PendingInstall)}
}

// Get returns a copy of the record for shop, for assertions.
func (r *PendingInstalls) Get(shop string) *domain.PendingInstall {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byShop[shop]
	if !ok {
		return nil
	}
	c := *p
	return &c
}

func (r *PendingInstalls) Put(_ context.Context, install *domain.PendingInstall) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *install
	c.Claimed = false
	c.ClaimedBy = ""
	r.byShop[install.ShopDomain] = &c
	return nil
}

func (r *PendingInstalls) TryClaim(_ context.Context, shop, userID string) (*domain.PendingInstall, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byShop[shop]
	if !ok || p.Claimed {
		return nil, nil
	}
	p.Claimed = true
	p.ClaimedBy = userID
	c := *p
	return &c, nil
}

func (r *PendingInstalls) Release(_ context.Context, shop string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.byShop[shop]; ok {
		p.Claimed = false
		p.ClaimedBy = ""
	}
	return nil
}

func (r *PendingInstalls) DeleteIfClaimed(_ context.Context, shop string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.byShop[shop]; ok && p.Claimed {
		delete(r.byShop, shop)
	}
	return nil
}

func (r *PendingInstalls) Delete(_ context.Context, shop string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byShop, shop)
	return nil
}

// Shipments is an in-memory ports.ShipmentRepository.
type Shipments struct {
	mu   sync.Mutex
	byID map[string]*domain.Shipment
}

func NewShipments(shipments ...*domain.Shipment) *Shipments {
	r := &Shipments{byID: make(map[string]*domain.Shipment)}
	for _, s := range shipments {
		r.byID[s.ID] = s
	}
	return r
}

// All returns copies of every stored shipment ordered by id.
func (r *Shipments) All() []*domain.Shipment {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.matching(func(*domain.Shipment) bool { return true })
}

func (r *Shipments) matching(pred func(*domain.Shipment) bool) []*domain.Shipment {
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []*domain.Shipment
	for _, id := range ids {
		if s := r.byID[id]; pred(s) {
			c := *s
			out = append(out, &c)
		}
	}
	return out
}

func (r *Shipments) InsertIfAbsent(_ context.Context, shipment *domain.Shipment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.byID {
		if s.TenantID == shipment.TenantID && s.ShopifyOrderID == shipment.ShopifyOrderID {
			return domain.ErrDuplicate
		}
	}
	c := *shipment
	r.byID[shipment.ID] = &c
	return nil
}

func (r *Shipments) GetShipment(_ context.Context, id string) (*domain.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	c := *s
	return &c, nil
}

func (r *Shipments) FindByShopifyOrder(_ context.Context, tenantID, orderID string) (*domain.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	found := r.matching(func(s *domain.Shipment) bool {
		return s.TenantID == tenantID && s.ShopifyOrderID == orderID
	})
	if len(found) == 0 {
		return nil, nil
	}
	return found[0], nil
}

func (r *Shipments) FindForCustomer(_ context.Context, shop, phone string, orderIDs []string) ([]*domain.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := make(map[string]bool, len(orderIDs))
	for _, id := range orderIDs {
		wanted[id] = true
	}
	return r.matching(func(s *domain.Shipment) bool {
		if s.ShopDomain != shop {
			return false
		}
		return (phone != "" && s.Destination.Phone == phone) || wanted[s.ShopifyOrderID]
	}), nil
}

func (r *Shipments) FindByShop(_ context.Context, shop string) ([]*domain.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.matching(func(s *domain.Shipment) bool { return s.ShopDomain == shop }), nil
}

func (r *Shipments) MarkFulfillmentSynced(_ context.Context, id, fulfillmentID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.FulfillmentSyncStatus = domain.FulfillmentSyncFulfilled
	s.ShopifyFulfillmentID = fulfillmentID
	s.FulfillmentSyncError = ""
	fulfilled := at
	s.FulfilledAt = &fulfilled
	return nil
}

func (r *Shipments) MarkFulfillmentFailed(_ context.Context, id, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.FulfillmentSyncStatus = domain.FulfillmentSyncFailed
	s.FulfillmentSyncError = message
	return nil
}

func (r *Shipments) RedactPersonalData(_ context.Context, ids []string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		if s, ok := r.byID[id]; ok {
			s.Destination.Redact()
			redacted := at
			s.RedactedAt = &redacted
		}
	}
	return nil
}

// Addresses is an in-memory ports.AddressRepository keyed by tenant.
type Addresses map[string]*domain.Address

func (a Addresses) GetDefaultPickup(_ context.Context, tenantID string) (*domain.Address, error) {
	addr, ok := a[tenantID]
	if !ok {
		return nil, nil
	}
	c := *addr
	return &c, nil
}

// GDPRAudit records appended compliance requests.
type GDPRAudit struct {
	mu       sync.Mutex
	Requests []*domain.GDPRRequest
}

func (a *GDPRAudit) Append(_ context.Context, req *domain.GDPRRequest) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Requests = append(a.Requests, req)
	return nil
}

// WebhookEvents records logged deliveries.
type WebhookEvents struct {
	mu     sync.Mutex
	Events []*domain.WebhookEvent
}

func (e *WebhookEvents) LogWebhook(_ context.Context, event *domain.WebhookEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Events = append(e.Events, event)
	return nil
}
