package handler

import (
	"net/http"
	"strconv"
	"time"
)

const defaultDeliveryLimit = 50

type deliveryView struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	Status     string    `json:"status"`
	RetryCount int       `json:"retry_count"`
	Error      string    `json:"error,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// handleListDeliveries exposes retrying/failed webhook deliveries so an
// operator can spot events that need manual replay.
func (rt *router) handleListDeliveries(w http.ResponseWriter, r *http.Request) {
	limit := defaultDeliveryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	deliveries, err := rt.deliveries.ListUnresolved(r.Context(), limit)
	if err != nil {
		rt.log.ErrorContext(r.Context(), "failed to list unresolved deliveries", "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list deliveries"})
		return
	}

	views := make([]deliveryView, 0, len(deliveries))
	for _, d := range deliveries {
		view := deliveryView{
			EventID:    d.EventID,
			EventType:  d.EventType,
			Status:     string(d.Status),
			RetryCount: d.RetryCount,
			UpdatedAt:  d.UpdatedAt,
		}
		if d.Error != nil {
			view.Error = *d.Error
		}
		views = append(views, view)
	}

	respondJSON(w, http.StatusOK, map[string]any{"deliveries": views})
}
