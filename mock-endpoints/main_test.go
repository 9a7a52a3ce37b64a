package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMockSES(t *testing.T) {
	st := &stats{}
	srv := httptest.NewServer(newRouter(st, slog.New(slog.NewTextHandler(io.Discard, nil))))
	defer srv.Close()

	tests := []struct {
		to         string
		wantStatus int
	}{
		{"ada@example.com", http.StatusOK},
		{"ada+fail@example.com", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.to, func(t *testing.T) {
			body := `{"FromEmailAddress":"news@example.com","Destination":{"ToAddresses":["` + tt.to + `"]},"Content":{"Simple":{"Subject":{"Data":"hi"}}}}`
			resp, err := http.Post(srv.URL+"/v2/email/outbound-emails", "application/json", strings.NewReader(body))
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}

	if st.accepted.Load() != 1 || st.rejected.Load() != 1 {
		t.Errorf("stats = accepted %d rejected %d", st.accepted.Load(), st.rejected.Load())
	}

	resp, err := http.Get(srv.URL + "/stats")
	if err != nil {
		t.Fatalf("stats request failed: %v", err)
	}
	defer resp.Body.Close()
	var got map[string]int64
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("invalid stats body: %v", err)
	}
	if got["accepted"] != 1 {
		t.Errorf("stats body = %v", got)
	}
}
