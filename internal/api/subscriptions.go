package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/schema"
)

// SubscriptionService is implemented by *engine.SubscriptionWorkflow.
type SubscriptionService interface {
	Subscribe(ctx context.Context, name, email string) error
	Confirm(ctx context.Context, token string) error
}

type SubscriptionHandler struct {
	service SubscriptionService
	decoder *schema.Decoder
	logger  *slog.Logger
}

func NewSubscriptionHandler(service SubscriptionService, logger *slog.Logger) *SubscriptionHandler {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	return &SubscriptionHandler{service: service, decoder: decoder, logger: logger}
}

type subscribeForm struct {
	Name  string `schema:"name"`
	Email string `schema:"email"`
}

var subscribeFields = []string{"name", "email"}

// Subscribe handles POST /subscriptions with a urlencoded name and email.
func (h *SubscriptionHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	// A field that is present but empty is a validation failure (400), an
	// absent one is unprocessable (422).
	for _, field := range subscribeFields {
		if _, ok := r.PostForm[field]; !ok {
			respondError(w, http.StatusUnprocessableEntity, field+" is required")
			return
		}
	}

	var form subscribeForm
	if err := h.decoder.Decode(&form, r.PostForm); err != nil {
		respondError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	if err := h.service.Subscribe(r.Context(), form.Name, form.Email); err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, messageResponse{Message: "confirmation email sent"})
}

// Confirm handles GET /subscriptions/confirm?subscription_token=...
func (h *SubscriptionHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("subscription_token")
	if token == "" {
		respondError(w, http.StatusBadRequest, "subscription_token is required")
		return
	}

	if err := h.service.Confirm(r.Context(), token); err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, messageResponse{Message: "subscription confirmed"})
}
