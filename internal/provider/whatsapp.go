package provider

import (
	"context"
	"time"

	"campusnotify/internal/domain"
)

// WhatsApp-style aggregator APIs take small batches and a generous pause
// between them.
const (
	defaultWhatsAppBatch = 10
	defaultWhatsAppDelay = time.Second
)

type WhatsAppConfig struct {
	Config
	// FlatCost per message; 0 for session messages inside the free window.
	FlatCost           float64
	DefaultCountryCode string
}

type WhatsAppSender struct {
	base
	flatCost  float64
	defaultCC string
}

func NewWhatsApp(cfg WhatsAppConfig) *WhatsAppSender {
	if cfg.DefaultCountryCode == "" {
		cfg.DefaultCountryCode = "91"
	}
	return &WhatsAppSender{
		base:      newBase(cfg.Config, domain.ChannelWhatsApp, defaultWhatsAppBatch, defaultWhatsAppDelay),
		flatCost:  cfg.FlatCost,
		defaultCC: cfg.DefaultCountryCode,
	}
}

func (s *WhatsAppSender) Cost(string) float64 { return s.flatCost }

func (s *WhatsAppSender) Send(ctx context.Context, rcpt domain.Recipient, content string, meta map[string]string) domain.DispatchResult {
	to, err := FormatPhone(rcpt.WhatsAppNumber(), s.defaultCC)
	if err != nil {
		return failedResult(rcpt.ID, s.channel, s.name, err.Error())
	}
	return s.deliver(ctx, rcpt.ID, to, "", content, meta, s.flatCost)
}

func (s *WhatsAppSender) SendBulk(ctx context.Context, rcpts []domain.Recipient, content string, meta map[string]string) ([]domain.DispatchResult, error) {
	return RunBulk(ctx, s, rcpts, RepeatContent(content, len(rcpts)), meta, nil)
}
