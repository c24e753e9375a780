package handler

import (
	"io"
	"net/http"
	"time"
)

// maxWebhookBody caps the payload size read from the provider. Stripe events
// are small; anything bigger is not a legitimate delivery.
const maxWebhookBody = 1 << 20

type webhookResponse struct {
	Received  bool   `json:"received"`
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Processed bool   `json:"processed"`
}

type webhookErrorResponse struct {
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// handleWebhook accepts one provider delivery. Any failure answers 400 so the
// provider keeps redelivering; idempotent processing makes redelivery safe.
func (rt *router) handleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		rt.log.ErrorContext(r.Context(), "failed to read webhook body", "error", err)
		respondJSON(w, http.StatusBadRequest, webhookErrorResponse{
			Error:     "failed to read request body",
			Timestamp: time.Now().UTC(),
		})
		return
	}

	res, err := rt.proc.Process(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		rt.log.ErrorContext(r.Context(), "webhook rejected", "error", err)
		respondJSON(w, http.StatusBadRequest, webhookErrorResponse{
			Error:     err.Error(),
			Timestamp: time.Now().UTC(),
		})
		return
	}

	respondJSON(w, http.StatusOK, webhookResponse{
		Received:  true,
		EventID:   res.EventID,
		EventType: res.EventType,
		Processed: res.Processed,
	})
}
