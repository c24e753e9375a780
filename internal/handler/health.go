package handler

import "net/http"

func (rt *router) handleHealth(w http.ResponseWriter, r *http.Request) {
	if rt.healthz != nil {
		if err := rt.healthz(r.Context()); err != nil {
			rt.log.ErrorContext(r.Context(), "healthcheck failed", "error", err)
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
