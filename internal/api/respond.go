package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Priya8975/newsletter-delivery-system/internal/domain"
	"github.com/Priya8975/newsletter-delivery-system/internal/engine"
	"github.com/go-chi/chi/v5/middleware"
)

type messageResponse struct {
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, messageResponse{Message: message})
}

// respondServiceError maps workflow errors to status codes. Causes of 5xx
// responses are logged and never returned to the client.
func respondServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, engine.ErrMalformedToken):
		respondError(w, http.StatusBadRequest, "malformed subscription token")
	case errors.Is(err, domain.ErrDuplicateEmail):
		respondError(w, http.StatusConflict, "email is already subscribed")
	case errors.Is(err, domain.ErrUnknownToken):
		respondError(w, http.StatusNotFound, "unknown subscription token")
	case errors.Is(err, engine.ErrDispatch):
		logger.Error("email dispatch failed", "error", err, "request_id", middleware.GetReqID(r.Context()))
		respondError(w, http.StatusInternalServerError, "failed to send email")
	default:
		logger.Error("request failed", "error", err, "request_id", middleware.GetReqID(r.Context()))
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
