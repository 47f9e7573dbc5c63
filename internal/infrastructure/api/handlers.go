package api

import (
	"io"
	"net/http"

	"courier-shopify-layer/internal/application"
	"courier-shopify-layer/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const maxWebhookBody = 5 << 20

// Shopify webhook headers.
const (
	headerHMAC      = "X-Shopify-Hmac-Sha256"
	headerTopic     = "X-Shopify-Topic"
	headerShop      = "X-Shopify-Shop-Domain"
	headerWebhookID = "X-Shopify-Webhook-Id"
)

// installHandler starts an install for ?shop=&userId=, or binds a parked install directly.
func installHandler(oauth *application.OAuthService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		redirect, err := oauth.Install(r.Context(), chi.URLParam(r, "appId"), q.Get("shop"), q.Get("userId"))
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		http.Redirect(w, r, redirect, http.StatusFound)
	}
}

func callbackHandler(oauth *application.OAuthService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		redirect, err := oauth.Callback(r.Context(), chi.URLParam(r, "appId"), r.URL.Query())
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		http.Redirect(w, r, redirect, http.StatusFound)
	}
}

func readDelivery(w http.ResponseWriter, r *http.Request) (application.WebhookDelivery, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		return application.WebhookDelivery{}, domain.WrapError(domain.KindValidation, err, "failed to read request body")
	}
	return application.WebhookDelivery{
		Topic:     r.Header.Get(headerTopic),
		Shop:      r.Header.Get(headerShop),
		WebhookID: r.Header.Get(headerWebhookID),
		HMAC:      r.Header.Get(headerHMAC),
		Body:      body,
	}, nil
}

// webhookHandler answers 500 on processing failures so Shopify redelivers.
func webhookHandler(webhooks *application.WebhookService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := readDelivery(w, r)
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		result, err := webhooks.Receive(r.Context(), chi.URLParam(r, "appId"), d)
		if err != nil {
			if domain.AsError(err) == nil {
				writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to process webhook"})
				return
			}
			writeError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": result.Message})
	}
}

// gdprHandler acknowledges every authentic compliance delivery, whatever its processing outcome.
func gdprHandler(gdpr *application.GDPRService, kind string, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := readDelivery(w, r)
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		if err := gdpr.Handle(r.Context(), chi.URLParam(r, "appId"), kind, d); err != nil {
			writeError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"received": true})
	}
}

type fulfillRequest struct {
	ShipmentID string `json:"shipmentId" validate:"required,max=128"`
}

type fulfillResponse struct {
	Success       bool   `json:"success"`
	FulfillmentID string `json:"fulfillmentId"`
}

func fulfillHandler(fulfillment *application.FulfillmentService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req fulfillRequest
		if err := decodeJSONBody(w, r, &req); err != nil {
			writeError(w, r, logger, err)
			return
		}

		userID := domain.GetUserIDFromContext(r.Context())
		id, err := fulfillment.Sync(r.Context(), userID, req.ShipmentID)
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, fulfillResponse{Success: true, FulfillmentID: id})
	}
}

func getConnectionHandler(connections *application.ConnectionService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := connections.Get(r.Context(), domain.GetUserIDFromContext(r.Context()))
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

func deleteConnectionHandler(connections *application.ConnectionService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := connections.Disconnect(r.Context(), domain.GetUserIDFromContext(r.Context())); err != nil {
			writeError(w, r, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
