package application

import (
	"fmt"

	"courier-shopify-layer/internal/domain"
)

// AppRegistry resolves Shopify app variants by id. The first registered app is the default.
type AppRegistry struct {
	apps      map[string]*domain.ShopifyApp
	order     []string
	defaultID string
}

func NewAppRegistry(apps []domain.ShopifyApp) *AppRegistry {
	r := &AppRegistry{apps: make(map[string]*domain.ShopifyApp, len(apps))}
	for i := range apps {
		app := apps[i]
		if _, dup := r.apps[app.ID]; dup {
			continue
		}
		r.apps[app.ID] = &app
		r.order = append(r.order, app.ID)
	}
	if len(r.order) > 0 {
		r.defaultID = r.order[0]
	}
	return r
}

// Resolve returns the app for appID ("" selects the default). Unknown ids are NotFound and
// apps missing credentials are a ConfigurationError.
func (r *AppRegistry) Resolve(appID string) (*domain.ShopifyApp, error) {
	if appID == "" {
		appID = r.defaultID
	}
	app, ok := r.apps[appID]
	if !ok {
		return nil, domain.NewError(domain.KindNotFound, fmt.Sprintf("unknown shopify app %q", appID))
	}
	if !app.Configured() {
		return nil, domain.NewError(domain.KindConfiguration, fmt.Sprintf("shopify app %q is missing client credentials", appID))
	}
	return app, nil
}

func (r *AppRegistry) DefaultID() string {
	return r.defaultID
}

// All returns the apps in registration order.
func (r *AppRegistry) All() []*domain.ShopifyApp {
	out := make([]*domain.ShopifyApp, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.apps[id])
	}
	return out
}
