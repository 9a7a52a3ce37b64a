package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/Priya8975/newsletter-delivery-system/internal/domain"
	"github.com/Priya8975/newsletter-delivery-system/internal/engine"
	"github.com/go-playground/validator/v10"
)

// Publisher is implemented by *engine.FanOutEngine.
type Publisher interface {
	Publish(ctx context.Context, n domain.Newsletter) (*engine.PublishReport, error)
}

type NewsletterHandler struct {
	publisher Publisher
	validate  *validator.Validate
	logger    *slog.Logger
}

func NewNewsletterHandler(publisher Publisher, logger *slog.Logger) *NewsletterHandler {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &NewsletterHandler{publisher: publisher, validate: v, logger: logger}
}

// Pointers distinguish an absent field from an empty one.
type publishRequest struct {
	Title   *string         `json:"title" validate:"required"`
	Content *publishContent `json:"content" validate:"required"`
}

type publishContent struct {
	Text *string `json:"text" validate:"required"`
	HTML *string `json:"html" validate:"required"`
}

// Publish handles POST /newsletters.
func (h *NewsletterHandler) Publish(w http.ResponseWriter, r *http.Request) {
	var req publishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			respondError(w, http.StatusUnprocessableEntity, fieldPath(verrs[0])+" is required")
			return
		}
		respondError(w, http.StatusUnprocessableEntity, "invalid newsletter")
		return
	}

	report, err := h.publisher.Publish(r.Context(), domain.Newsletter{
		Title: *req.Title,
		Text:  *req.Content.Text,
		HTML:  *req.Content.HTML,
	})
	if err != nil {
		if report != nil {
			h.logger.Warn("newsletter partially delivered",
				"title", *req.Title,
				"delivered", report.Delivered,
				"failed", len(report.Failed),
			)
		}
		respondServiceError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// fieldPath drops the root struct name, e.g. "content.text".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
