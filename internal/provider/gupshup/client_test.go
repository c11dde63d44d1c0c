package gupshup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campusnotify/internal/provider"
)

func TestDeliverSubmitted(t *testing.T) {
	var gotForm map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != "k1" {
			t.Errorf("missing apikey header")
		}
		_ = r.ParseForm()
		gotForm = map[string]string{
			"channel":     r.PostForm.Get("channel"),
			"destination": r.PostForm.Get("destination"),
			"message":     r.PostForm.Get("message"),
		}
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"status":"submitted","messageId":"gs-123"}`))
	}))
	defer srv.Close()

	c := &Client{
		APIKey:  "k1",
		Source:  "917000000000",
		Channel: "whatsapp",
		BaseURL: srv.URL,
		HTTP:    &http.Client{Timeout: time.Second},
	}
	rec, err := c.Deliver(context.Background(), provider.Request{To: "919876543210", Body: "hi"})
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if rec.MessageID != "gs-123" {
		t.Fatalf("got message id %q", rec.MessageID)
	}
	if gotForm["channel"] != "whatsapp" || gotForm["destination"] != "919876543210" || gotForm["message"] != "hi" {
		t.Fatalf("unexpected form: %v", gotForm)
	}
}

func TestDeliverRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":"error","message":"invalid destination"}`))
	}))
	defer srv.Close()

	c := &Client{APIKey: "k1", Channel: "sms", BaseURL: srv.URL, HTTP: srv.Client()}
	_, err := c.Deliver(context.Background(), provider.Request{To: "123", Body: "hi"})
	if err == nil || err.Error() != "invalid destination" {
		t.Fatalf("expected provider error message, got %v", err)
	}
}
