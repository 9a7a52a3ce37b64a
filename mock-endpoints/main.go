// Command mock-endpoints serves a minimal Amazon SES v2 SendEmail endpoint for
// local runs. Point SES_ENDPOINT at it.
//
//	recipient contains "+fail@" -> 400 MessageRejected
//	recipient contains "+slow@" -> 200 after 3s
//	anything else               -> 200 with a MessageId
package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type sendEmailRequest struct {
	FromEmailAddress string `json:"FromEmailAddress"`
	Destination      struct {
		ToAddresses []string `json:"ToAddresses"`
	} `json:"Destination"`
	Content struct {
		Simple struct {
			Subject struct {
				Data string `json:"Data"`
			} `json:"Subject"`
		} `json:"Simple"`
	} `json:"Content"`
}

type stats struct {
	accepted atomic.Int64
	rejected atomic.Int64
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	port := "9090"
	if p := os.Getenv("PORT"); p != "" {
		port = p
	}

	logger.Info("mock SES endpoint starting", "port", port)
	if err := http.ListenAndServe(":"+port, newRouter(&stats{}, logger)); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func newRouter(st *stats, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/v2/email/outbound-emails", func(w http.ResponseWriter, r *http.Request) {
		var req sendEmailRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeAWSError(w, http.StatusBadRequest, "BadRequestException", "invalid request body")
			return
		}

		to := strings.Join(req.Destination.ToAddresses, ",")
		switch {
		case strings.Contains(to, "+fail@"):
			st.rejected.Add(1)
			logger.Warn("rejecting email", "to", to, "subject", req.Content.Simple.Subject.Data)
			writeAWSError(w, http.StatusBadRequest, "MessageRejected", "recipient rejected by mock")
			return
		case strings.Contains(to, "+slow@"):
			time.Sleep(3 * time.Second)
		}

		id := uuid.NewString()
		st.accepted.Add(1)
		logger.Info("accepted email",
			"message_id", id,
			"from", req.FromEmailAddress,
			"to", to,
			"subject", req.Content.Simple.Subject.Data,
		)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"MessageId": id})
	})

	r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int64{
			"accepted": st.accepted.Load(),
			"rejected": st.rejected.Load(),
		})
	})

	return r
}

func writeAWSError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Amzn-ErrorType", code)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
