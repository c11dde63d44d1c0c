// mock-gateway simulates the upstream messaging aggregators for local
// development: Gupshup-style message submission, a SendGrid-style mail
// endpoint, and a Mailgun-style one. Point the provider base URLs at this
// process to exercise the full dispatch path without real credentials.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"

	"campusnotify/internal/config"
	"campusnotify/internal/logging"
)

type server struct {
	cfg config.MockGatewayConfig
	seq atomic.Int64
}

func main() {
	cfg := config.LoadMockGateway()
	logging.Init("mock-gateway", cfg.LogFormat, "info")

	s := &server{cfg: cfg}

	r := mux.NewRouter()
	r.HandleFunc("/sm/api/v1/msg", s.handleGupshup).Methods(http.MethodPost)
	r.HandleFunc("/v3/mail/send", s.handleSendGrid).Methods(http.MethodPost)
	r.HandleFunc("/v3/{domain}/messages", s.handleMailgun).Methods(http.MethodPost)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: logRequests(r)}
	slog.Info("mock gateway listening",
		"port", cfg.Port,
		"success_rate", cfg.SuccessRate,
		"delay_ms", cfg.DelayMs,
		"jitter_ms", cfg.JitterMs,
	)
	if err := srv.ListenAndServe(); err != nil {
		slog.Error("mock gateway failed", "err", err)
		os.Exit(1)
	}
}

// simulate sleeps for the configured latency and rolls the success dice.
func (s *server) simulate() bool {
	delay := s.cfg.DelayMs
	if s.cfg.JitterMs > 0 {
		delay += rand.Intn(s.cfg.JitterMs)
	}
	if delay > 0 {
		time.Sleep(time.Duration(delay) * time.Millisecond)
	}
	return rand.Float64() < s.cfg.SuccessRate
}

func (s *server) nextID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, s.seq.Add(1))
}

func (s *server) handleGupshup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil || r.PostFormValue("destination") == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"status":  "error",
			"message": "missing destination",
		})
		return
	}
	if !s.simulate() {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status":  "error",
			"message": "simulated gateway failure",
		})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":    "submitted",
		"messageId": s.nextID("gs"),
	})
}

func (s *server) handleSendGrid(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"errors": []map[string]string{{"message": "invalid json"}},
		})
		return
	}
	if !s.simulate() {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"errors": []map[string]string{{"message": "simulated gateway failure"}},
		})
		return
	}
	w.Header().Set("X-Message-Id", s.nextID("sg"))
	w.WriteHeader(http.StatusAccepted)
}

func (s *server) handleMailgun(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil || r.PostFormValue("to") == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "missing to"})
		return
	}
	if !s.simulate() {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "simulated gateway failure"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"id":      "<" + s.nextID("mg") + "@" + mux.Vars(r)["domain"] + ">",
		"message": "Queued. Thank you.",
	})
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Info("mock request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
