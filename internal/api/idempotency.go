package api

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
)

const (
	IdempotencyHeader         = "Idempotency-Key"
	DefaultIdempotencyTTL     = 10 * time.Minute
	idempotencyKeyPrefix      = "newsletter:idempotency:"
	idempotencyStateInFlight  = "0"
	idempotencyStateCompleted = "1"
)

// Idempotency rejects a repeated request with 409 while the first one is in
// flight and for ttl after it succeeded. The key is the Idempotency-Key
// header, or a hash of method, path and body when the header is absent. A
// failed request releases its key so it can be retried. Redis errors let
// the request through.
func Idempotency(rdb *redis.Client, ttl time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, err := idempotencyKey(r)
			if err != nil {
				respondError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			redisKey := idempotencyKeyPrefix + key
			ctx := r.Context()

			acquired, err := rdb.SetNX(ctx, redisKey, idempotencyStateInFlight, ttl).Result()
			if err != nil {
				logger.Warn("idempotency guard unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !acquired {
				msg := "an identical request was already processed"
				if state, _ := rdb.Get(ctx, redisKey).Result(); state == idempotencyStateInFlight {
					msg = "an identical request is still being processed"
				}
				respondError(w, http.StatusConflict, msg)
				return
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			returned := false
			// Deferred so a panicking handler releases its key before the
			// panic reaches the recoverer.
			defer func() {
				settleIdempotencyKey(context.WithoutCancel(ctx), rdb, redisKey, returned, ww.Status(), logger)
			}()

			next.ServeHTTP(ww, r)
			returned = true
		})
	}
}

// settleIdempotencyKey marks the key completed after a 2xx response and
// releases it otherwise, including when the handler panicked.
func settleIdempotencyKey(ctx context.Context, rdb *redis.Client, key string, returned bool, status int, logger *slog.Logger) {
	var err error
	if returned && status >= 200 && status < 300 {
		err = rdb.Set(ctx, key, idempotencyStateCompleted, redis.KeepTTL).Err()
	} else {
		err = rdb.Del(ctx, key).Err()
	}
	if err != nil {
		logger.Warn("failed to settle idempotency key", "error", err, "status", status)
	}
}

func idempotencyKey(r *http.Request) (string, error) {
	if hdr := r.Header.Get(IdempotencyHeader); hdr != "" {
		return hdr, nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", fmt.Errorf("reading request body: %w", err)
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	h := sha256.New()
	h.Write([]byte(r.Method + "|" + r.URL.Path + "|"))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil)), nil
}
