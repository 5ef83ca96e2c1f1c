// Package billing exposes the Stripe endpoints: one for sending the user to
// checkout or the billing portal, one for receiving webhooks.
package billing

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/Hitanshuser50/ContentFuse/pkg/auth"
	"github.com/Hitanshuser50/ContentFuse/pkg/logger"
	"github.com/Hitanshuser50/ContentFuse/pkg/subscription"
)

// maxWebhookBody bounds webhook payload reads.
const maxWebhookBody = 1 << 20

// Handler serves the billing endpoints.
type Handler struct {
	subs *subscription.Service
	log  *slog.Logger
}

// NewHandler creates the billing handler.
func NewHandler(subs *subscription.Service, log *slog.Logger) *Handler {
	return &Handler{subs: subs, log: log}
}

// Session handles GET /api/stripe. Users with a billing history get a
// portal session, everyone else a checkout session; either way the response
// carries the URL to redirect to.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	userID, found := auth.UserIDFromContext(r.Context())
	if !found {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	sess, err := h.subs.BillingSessionFor(r.Context(), userID, r.URL.Query().Get("email"))
	if err != nil {
		h.log.ErrorContext(r.Context(), "billing session failed",
			logger.UserID(userID),
			logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "could not start a billing session")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": sess.URL})
}

// Webhook handles POST /api/webhook. Signature failures are 400 so Stripe
// retries with a correct signature config; processing failures are 500 so
// Stripe retries delivery.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "could not read payload")
		return
	}

	err = h.subs.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, subscription.ErrWebhookVerification) {
			writeError(w, http.StatusBadRequest, "invalid_signature", "webhook signature verification failed")
			return
		}
		h.log.ErrorContext(r.Context(), "webhook processing failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "webhook processing failed")
		return
	}

	w.WriteHeader(http.StatusOK)
}
