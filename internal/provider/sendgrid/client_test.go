package sendgrid

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"campusnotify/internal/provider"
)

func TestDeliverAccepted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sg-key" {
			t.Errorf("missing bearer token")
		}
		body, _ := io.ReadAll(r.Body)
		var payload map[string]any
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		if payload["subject"] != "Enrollment" {
			t.Errorf("subject not forwarded: %v", payload["subject"])
		}
		w.Header().Set("X-Message-Id", "sg-42")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := &Client{APIKey: "sg-key", FromEmail: "admin@school.test", BaseURL: srv.URL, HTTP: srv.Client()}
	rec, err := c.Deliver(context.Background(), provider.Request{
		To:      "parent@example.com",
		Subject: "Enrollment",
		Body:    "Welcome",
	})
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if rec.MessageID != "sg-42" {
		t.Fatalf("got message id %q", rec.MessageID)
	}
}

func TestDeliverErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad api key"}]}`))
	}))
	defer srv.Close()

	c := &Client{APIKey: "wrong", FromEmail: "admin@school.test", BaseURL: srv.URL, HTTP: srv.Client()}
	_, err := c.Deliver(context.Background(), provider.Request{To: "parent@example.com"})
	if err == nil || err.Error() != "bad api key" {
		t.Fatalf("expected provider error message, got %v", err)
	}
}
