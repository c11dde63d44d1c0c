package dispatch_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"campusnotify/internal/dispatch"
	"campusnotify/internal/domain"
	"campusnotify/internal/provider"
	"campusnotify/internal/provider/providertest"
	"campusnotify/internal/ratelimit"
)

func waProvider(name string, tr provider.Transport) *provider.WhatsAppSender {
	return provider.NewWhatsApp(provider.WhatsAppConfig{
		Config: provider.Config{
			Name:            name,
			Transport:       tr,
			Limiter:         ratelimit.New(ratelimit.Config{Provider: name, MaxPerSecond: 10_000, LongLimit: 100_000}),
			BatchSize:       10,
			InterBatchDelay: time.Millisecond,
		},
	})
}

func emailProvider(name string, tr provider.Transport) *provider.EmailSender {
	return provider.NewEmail(provider.EmailConfig{
		Config: provider.Config{
			Name:            name,
			Transport:       tr,
			Limiter:         ratelimit.New(ratelimit.Config{Provider: name, MaxPerSecond: 10_000, LongLimit: 100_000}),
			BatchSize:       10,
			InterBatchDelay: time.Millisecond,
		},
		FlatCost: 0.01,
	})
}

func composedMessage() domain.Message {
	return domain.Message{
		Channels: []domain.Channel{domain.ChannelWhatsApp, domain.ChannelSMS},
		Content: map[domain.Channel]string{
			domain.ChannelWhatsApp: "Hi {{parentName}}",
			domain.ChannelSMS:      "Enrolled at {{schoolName}}",
		},
		Vars: map[string]string{"schoolName": "Greenwood"},
		Selection: domain.Selection{
			Mode: domain.SelectAll,
			Recipients: []domain.Recipient{
				{ID: "r1", Name: "Asha", Phone: "+919800000001"},
				{ID: "r2", Name: "Binod", Phone: "+919800000002"},
				{ID: "r3", Name: "Chitra", Phone: "+919800000003"},
			},
		},
		Schedule: domain.Schedule{SendImmediately: true},
	}
}

func TestDispatchEndToEnd(t *testing.T) {
	waFake := &providertest.FakeTransport{}
	smsFake := &providertest.FakeTransport{}

	d := dispatch.New(map[domain.Channel]*dispatch.Chain{
		domain.ChannelWhatsApp: {
			Channel:   domain.ChannelWhatsApp,
			Providers: []provider.Provider{waProvider("gupshup-wa", waFake)},
		},
		domain.ChannelSMS: {
			Channel:   domain.ChannelSMS,
			Providers: []provider.Provider{smsProvider("gupshup-sms", smsFake)},
		},
	})

	report, err := d.Dispatch(context.Background(), composedMessage())
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	if report.Attempts != 6 {
		t.Fatalf("expected 6 attempts (3 recipients x 2 channels), got %d", report.Attempts)
	}
	if !report.Success {
		t.Fatalf("expected success, got %+v", report)
	}
	if report.ID == "" || !strings.HasPrefix(report.ID, "dsp_") {
		t.Fatalf("missing dispatch id: %q", report.ID)
	}

	wa := report.Channels[domain.ChannelWhatsApp]
	if wa.Sent != 3 || wa.TotalCost != 0 {
		t.Fatalf("whatsapp: sent=%d cost=%f, want 3 and 0", wa.Sent, wa.TotalCost)
	}
	sms := report.Channels[domain.ChannelSMS]
	if sms.Sent != 3 {
		t.Fatalf("sms sent=%d, want 3", sms.Sent)
	}
	// Single-segment content at 0.25 per segment.
	if sms.TotalCost != 3*0.25 {
		t.Fatalf("sms cost=%f, want %f", sms.TotalCost, 3*0.25)
	}
	if report.TotalCost != sms.TotalCost {
		t.Fatalf("report cost=%f, want %f", report.TotalCost, sms.TotalCost)
	}

	// Interpolation happened per recipient.
	waCalls := waFake.Calls()
	if len(waCalls) != 3 {
		t.Fatalf("whatsapp transport saw %d calls", len(waCalls))
	}
	bodies := map[string]bool{}
	for _, c := range waCalls {
		bodies[c.Body] = true
	}
	for _, want := range []string{"Hi Asha", "Hi Binod", "Hi Chitra"} {
		if !bodies[want] {
			t.Fatalf("missing rendered body %q in %v", want, bodies)
		}
	}
	for _, c := range smsFake.Calls() {
		if c.Body != "Enrolled at Greenwood" {
			t.Fatalf("sms body not rendered from message vars: %q", c.Body)
		}
	}
}

func TestDispatchFailsClosedOnValidation(t *testing.T) {
	fake := &providertest.FakeTransport{}
	d := dispatch.New(map[domain.Channel]*dispatch.Chain{
		domain.ChannelSMS: {
			Channel:   domain.ChannelSMS,
			Providers: []provider.Provider{smsProvider("gupshup-sms", fake)},
		},
	})

	msg := composedMessage()
	msg.Channels = nil

	_, err := d.Dispatch(context.Background(), msg)
	var vfe domain.ValidationFailedError
	if !errors.As(err, &vfe) {
		t.Fatalf("expected ValidationFailedError, got %v", err)
	}
	if fake.CallCount() != 0 {
		t.Fatalf("no provider call may happen on validation failure, saw %d", fake.CallCount())
	}
}

func TestDispatchChannelWithoutProvider(t *testing.T) {
	d := dispatch.New(map[domain.Channel]*dispatch.Chain{
		domain.ChannelSMS: {
			Channel:   domain.ChannelSMS,
			Providers: []provider.Provider{smsProvider("gupshup-sms", &providertest.FakeTransport{})},
		},
	})

	msg := composedMessage() // selects whatsapp too, which has no chain
	report, err := d.Dispatch(context.Background(), msg)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if report.Success {
		t.Fatalf("success must be false when a selected channel cannot deliver")
	}
	if report.ChannelErr[domain.ChannelWhatsApp] == "" {
		t.Fatalf("expected channel error for whatsapp, got %+v", report.ChannelErr)
	}
	if report.Channels[domain.ChannelSMS].Sent != 3 {
		t.Fatalf("sms channel must still run")
	}
}

func TestDispatchSurfacesAllProvidersFailed(t *testing.T) {
	d := dispatch.New(map[domain.Channel]*dispatch.Chain{
		domain.ChannelSMS: {
			Channel:   domain.ChannelSMS,
			Providers: []provider.Provider{smsProvider("gupshup-sms", &providertest.FakeTransport{FailAll: true})},
		},
	})

	msg := composedMessage()
	msg.Channels = []domain.Channel{domain.ChannelSMS}

	report, err := d.Dispatch(context.Background(), msg)
	if err != nil {
		t.Fatalf("channel-level failure must not be a dispatch error: %v", err)
	}
	if report.Success {
		t.Fatalf("expected failed report")
	}
	if got := report.ChannelErr[domain.ChannelSMS]; !strings.Contains(got, "all providers failed") {
		t.Fatalf("expected all-providers-failed channel error, got %q", got)
	}
}

func TestDispatchProgressCallback(t *testing.T) {
	d := dispatch.New(map[domain.Channel]*dispatch.Chain{
		domain.ChannelSMS: {
			Channel:   domain.ChannelSMS,
			Providers: []provider.Provider{smsProvider("gupshup-sms", &providertest.FakeTransport{})},
		},
	})

	var last struct {
		ch          domain.Channel
		done, total int
	}
	d.Progress = func(ch domain.Channel, done, total int) {
		last.ch, last.done, last.total = ch, done, total
	}

	msg := composedMessage()
	msg.Channels = []domain.Channel{domain.ChannelSMS}
	if _, err := d.Dispatch(context.Background(), msg); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if last.ch != domain.ChannelSMS || last.done != 3 || last.total != 3 {
		t.Fatalf("expected final progress 3/3 on sms, got %+v", last)
	}
}

func TestDispatchEmailSubjectForwarded(t *testing.T) {
	fake := &providertest.FakeTransport{}
	d := dispatch.New(map[domain.Channel]*dispatch.Chain{
		domain.ChannelEmail: {
			Channel:   domain.ChannelEmail,
			Providers: []provider.Provider{emailProvider("sendgrid", fake)},
		},
	})

	msg := domain.Message{
		Channels: []domain.Channel{domain.ChannelEmail},
		Content:  map[domain.Channel]string{domain.ChannelEmail: "Dear {{parentName}}, welcome."},
		Subject:  "Admission update from {{schoolName}}",
		Vars:     map[string]string{"schoolName": "Greenwood"},
		Selection: domain.Selection{
			Mode: domain.SelectAll,
			Recipients: []domain.Recipient{
				{ID: "r1", Name: "Asha", Email: "asha@example.com"},
			},
		},
		Schedule: domain.Schedule{SendImmediately: true},
	}

	report, err := d.Dispatch(context.Background(), msg)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !report.Success {
		t.Fatalf("expected success: %+v", report)
	}
	calls := fake.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 transport call, got %d", len(calls))
	}
	if calls[0].Subject != "Admission update from Greenwood" {
		t.Fatalf("subject not rendered: %q", calls[0].Subject)
	}
	if calls[0].To != "asha@example.com" {
		t.Fatalf("unexpected destination %q", calls[0].To)
	}
}
