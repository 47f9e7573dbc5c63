package application

import (
	"testing"

	"courier-shopify-layer/internal/domain"
	"courier-shopify-layer/internal/ports/portstest"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gdprFixture struct {
	svc       *GDPRService
	tenants   *portstest.Tenants
	pending   *portstest.PendingInstalls
	shipments *portstest.Shipments
	audit     *portstest.GDPRAudit
	vault     *portstest.Vault
}

func customerShipment(id, orderID, phone string) *domain.Shipment {
	return &domain.Shipment{
		ID:             id,
		TenantID:       "u1",
		Source:         domain.ShipmentSourceShopify,
		ShopDomain:     testShop,
		ShopifyOrderID: orderID,
		PaymentMode:    domain.PaymentModeCOD,
		DeclaredValue:  decimal.RequireFromString("499.00"),
		CODAmount:      decimal.RequireFromString("499.00"),
		Destination: domain.Address{
			Name:     "Asha Rao",
			Phone:    phone,
			Email:    "asha@example.com",
			Address1: "12 MG Road",
			City:     "Bengaluru",
			State:    "Karnataka",
			Pincode:  "560001",
			Country:  "IN",
		},
	}
}

func newGDPRFixture(t *testing.T) *gdprFixture {
	t.Helper()
	f := &gdprFixture{
		tenants: portstest.NewTenants(connectedTenant("u1")),
		pending: portstest.NewPendingInstalls(),
		shipments: portstest.NewShipments(
			customerShipment("s1", "1001", "+919800000001"),
			customerShipment("s2", "1002", "+919800000002"),
			customerShipment("s3", "1003", "+919800000003"),
		),
		audit: &portstest.GDPRAudit{},
		vault: &portstest.Vault{},
	}
	f.svc = NewGDPRService(GDPRDependencies{
		Registry:  NewAppRegistry(testApps()),
		Verifier:  portstest.Verifier{},
		Tenants:   f.tenants,
		Pending:   f.pending,
		Shipments: f.shipments,
		Audit:     f.audit,
		Vault:     f.vault,
	}, zerolog.Nop())
	return f
}

func gdprDelivery(body string) WebhookDelivery {
	return WebhookDelivery{Shop: testShop, HMAC: portstest.Sign("primary-secret"), Body: []byte(body)}
}

func (f *gdprFixture) shipment(t *testing.T, id string) *domain.Shipment {
	t.Helper()
	s, err := f.shipments.GetShipment(t.Context(), id)
	require.NoError(t, err)
	return s
}

func TestGDPRService_DataRequest(t *testing.T) {
	f := newGDPRFixture(t)
	body := `{"shop_domain":"acme.myshopify.com","customer":{"id":77,"email":"asha@example.com","phone":"+919800000001"},"orders_requested":[1002]}`

	require.NoError(t, f.svc.Handle(t.Context(), "primary", domain.GDPRCustomersDataRequest, gdprDelivery(body)))

	require.Len(t, f.audit.Requests, 1)
	req := f.audit.Requests[0]
	assert.Equal(t, domain.GDPRCustomersDataRequest, req.Kind)
	assert.Equal(t, int64(77), req.CustomerID)
	assert.Equal(t, []string{"1002"}, req.OrderIDs)
	assert.Equal(t, []string{"s1", "s2"}, req.ShipmentIDs)
	require.Len(t, req.ShipmentRecords, 2)
	assert.Equal(t, "Asha Rao", req.ShipmentRecords[0].Destination.Name)
	assert.Equal(t, "Asha Rao", f.shipment(t, "s1").Destination.Name)
}

func TestGDPRService_CustomerRedact(t *testing.T) {
	f := newGDPRFixture(t)
	body := `{"shop_domain":"acme.myshopify.com","customer":{"id":77,"phone":"+919800000001"},"orders_to_redact":[1003]}`

	require.NoError(t, f.svc.Handle(t.Context(), "primary", domain.GDPRCustomersRedact, gdprDelivery(body)))

	for _, id := range []string{"s1", "s3"} {
		s := f.shipment(t, id)
		assert.Equal(t, domain.RedactedMarker, s.Destination.Name)
		assert.Equal(t, domain.RedactedMarker, s.Destination.Phone)
		assert.Equal(t, domain.RedactedMarker, s.Destination.Email)
		assert.Equal(t, domain.RedactedMarker, s.Destination.Address1)
		assert.Equal(t, domain.RedactedMarker, s.Destination.City)
		assert.Equal(t, domain.RedactedMarker, s.Destination.Pincode)
		assert.Equal(t, "IN", s.Destination.Country)
		assert.NotNil(t, s.RedactedAt)
		assert.True(t, s.DeclaredValue.Equal(decimal.RequireFromString("499")))
		assert.Equal(t, domain.PaymentModeCOD, s.PaymentMode)
	}
	assert.Equal(t, "Asha Rao", f.shipment(t, "s2").Destination.Name)

	require.Len(t, f.audit.Requests, 1)
	assert.Equal(t, []string{"s1", "s3"}, f.audit.Requests[0].ShipmentIDs)
}

func TestGDPRService_ShopRedact(t *testing.T) {
	f := newGDPRFixture(t)
	require.NoError(t, f.pending.Put(t.Context(), &domain.PendingInstall{ShopDomain: testShop, EncryptedToken: "x"}))

	require.NoError(t, f.svc.Handle(t.Context(), "primary", domain.GDPRShopRedact, gdprDelivery(`{"shop_domain":"acme.myshopify.com"}`)))

	for _, id := range []string{"s1", "s2", "s3"} {
		s := f.shipment(t, id)
		assert.Equal(t, domain.RedactedMarker, s.Destination.Name)
		assert.True(t, s.CODAmount.Equal(decimal.RequireFromString("499")))
	}
	tenant, err := f.tenants.GetTenant(t.Context(), "u1")
	require.NoError(t, err)
	assert.Nil(t, tenant.Connection)
	assert.Nil(t, f.pending.Get(testShop))
	assert.Contains(t, f.vault.Invalidated, "u1")
	require.Len(t, f.audit.Requests, 1)
	assert.Equal(t, domain.GDPRShopRedact, f.audit.Requests[0].Kind)
}

func TestGDPRService_RejectsBadSignature(t *testing.T) {
	f := newGDPRFixture(t)
	d := gdprDelivery(`{"shop_domain":"acme.myshopify.com"}`)
	d.HMAC = "forged"

	err := f.svc.Handle(t.Context(), "primary", domain.GDPRShopRedact, d)
	assert.Equal(t, domain.KindAuthentication, domain.KindOf(err))
	assert.Empty(t, f.audit.Requests)
	assert.Equal(t, "Asha Rao", f.shipment(t, "s1").Destination.Name)
}

func TestGDPRService_MalformedPayloadAcknowledged(t *testing.T) {
	f := newGDPRFixture(t)

	require.NoError(t, f.svc.Handle(t.Context(), "primary", domain.GDPRCustomersRedact, gdprDelivery(`not json`)))
	assert.Equal(t, "Asha Rao", f.shipment(t, "s1").Destination.Name)
	require.Len(t, f.audit.Requests, 1)
	assert.Empty(t, f.audit.Requests[0].ShipmentIDs)
}
