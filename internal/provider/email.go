package provider

import (
	"context"
	"time"

	"campusnotify/internal/domain"
)

const (
	defaultEmailBatch = 25
	defaultEmailDelay = 200 * time.Millisecond
)

type EmailConfig struct {
	Config
	FlatCost float64
}

type EmailSender struct {
	base
	flatCost float64
}

func NewEmail(cfg EmailConfig) *EmailSender {
	return &EmailSender{
		base:     newBase(cfg.Config, domain.ChannelEmail, defaultEmailBatch, defaultEmailDelay),
		flatCost: cfg.FlatCost,
	}
}

func (s *EmailSender) Cost(string) float64 { return s.flatCost }

func (s *EmailSender) Send(ctx context.Context, rcpt domain.Recipient, content string, meta map[string]string) domain.DispatchResult {
	to, err := FormatEmail(rcpt.Email)
	if err != nil {
		return failedResult(rcpt.ID, s.channel, s.name, err.Error())
	}
	subject := ""
	if meta != nil {
		subject = meta["subject"]
	}
	return s.deliver(ctx, rcpt.ID, to, subject, content, meta, s.flatCost)
}

func (s *EmailSender) SendBulk(ctx context.Context, rcpts []domain.Recipient, content string, meta map[string]string) ([]domain.DispatchResult, error) {
	return RunBulk(ctx, s, rcpts, RepeatContent(content, len(rcpts)), meta, nil)
}
