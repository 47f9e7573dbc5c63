package domain

import (
	"fmt"
	"net/url"
	"strings"
)

var trackingURLFormats = map[string]string{
	"blue dart":    "https://www.bluedart.com/web/guest/trackdartresult?trackFor=0&trackNo=%s",
	"bluedart":     "https://www.bluedart.com/web/guest/trackdartresult?trackFor=0&trackNo=%s",
	"dtdc":         "https://www.dtdc.in/trace.asp?strCnno=%s",
	"delhivery":    "https://www.delhivery.com/track/package/%s",
	"ecom express": "https://ecomexpress.in/tracking/?awb_field=%s",
	"xpressbees":   "https://www.xpressbees.com/shipment/tracking?awbNo=%s",
}

// TrackingURL returns the public tracking page of a carrier, or "" when unknown.
func TrackingURL(carrier, trackingNumber string) string {
	format, ok := trackingURLFormats[strings.ToLower(strings.TrimSpace(carrier))]
	if !ok || trackingNumber == "" {
		return ""
	}
	return fmt.Sprintf(format, url.QueryEscape(trackingNumber))
}
