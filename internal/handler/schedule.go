package handler

import (
	"encoding/json"
	"net/http"

	"github.com/prospectly/billing-service/internal/schedule"
)

type createScheduleRequest struct {
	CustomerEmail string `json:"customerEmail"`
	SuccessURL    string `json:"successUrl"`
	CancelURL     string `json:"cancelUrl"`
	Phone         string `json:"phone"`
	Metadata      struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Phone     string `json:"phone"`
	} `json:"metadata"`
}

type createScheduleResponse struct {
	URL        string `json:"url"`
	ScheduleID string `json:"scheduleId"`
	CustomerID string `json:"customerId"`
	SessionID  string `json:"sessionId"`
	UserID     string `json:"userId"`
}

type scheduleErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

func (rt *router) handleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	var body createScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondJSON(w, http.StatusBadRequest, scheduleErrorResponse{
			Error:   "invalid request body",
			Details: err.Error(),
		})
		return
	}

	phone := body.Phone
	if phone == "" {
		phone = body.Metadata.Phone
	}

	res, err := rt.creator.Create(r.Context(), schedule.Request{
		Email:      body.CustomerEmail,
		SuccessURL: body.SuccessURL,
		CancelURL:  body.CancelURL,
		FirstName:  body.Metadata.FirstName,
		LastName:   body.Metadata.LastName,
		Phone:      phone,
	})
	if err != nil {
		rt.log.ErrorContext(r.Context(), "failed to create founding schedule",
			"email", body.CustomerEmail, "error", err)
		respondJSON(w, http.StatusInternalServerError, scheduleErrorResponse{
			Error:   "failed to create subscription schedule",
			Details: err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, createScheduleResponse{
		URL:        res.URL,
		ScheduleID: res.ScheduleID,
		CustomerID: res.CustomerID,
		SessionID:  res.SessionID,
		UserID:     res.UserID,
	})
}
