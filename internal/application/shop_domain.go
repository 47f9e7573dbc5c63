package application

import (
	"strings"

	"courier-shopify-layer/internal/domain"

	goshopify "github.com/bold-commerce/go-shopify/v4"
)

// NormalizeShopDomain lower-cases the shop and appends .myshopify.com when absent.
// Values carrying a scheme, path or whitespace are rejected.
func NormalizeShopDomain(shop string) (string, error) {
	shop = strings.ToLower(strings.TrimSpace(shop))
	if shop == "" || strings.ContainsAny(shop, "/\\ \t:?#@") {
		return "", domain.NewError(domain.KindValidation, "invalid shop domain")
	}
	return goshopify.ShopFullName(shop), nil
}
