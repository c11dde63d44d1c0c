package provider

import (
	"context"
	"time"

	"campusnotify/internal/domain"
)

const (
	defaultSMSBatch = 50
	defaultSMSDelay = 500 * time.Millisecond

	// GSM-7 segmentation: 160 chars in a single part, 153 per part once
	// the message is concatenated (7 chars go to the UDH header).
	smsSingleSegment = 160
	smsConcatSegment = 153
)

type SMSConfig struct {
	Config
	SegmentCost        float64
	DefaultCountryCode string
}

type SMSSender struct {
	base
	segmentCost float64
	defaultCC   string
}

func NewSMS(cfg SMSConfig) *SMSSender {
	if cfg.DefaultCountryCode == "" {
		cfg.DefaultCountryCode = "91"
	}
	return &SMSSender{
		base:        newBase(cfg.Config, domain.ChannelSMS, defaultSMSBatch, defaultSMSDelay),
		segmentCost: cfg.SegmentCost,
		defaultCC:   cfg.DefaultCountryCode,
	}
}

// Segments returns the number of billable SMS parts for content.
func Segments(content string) int {
	n := len(content)
	if n == 0 {
		return 1
	}
	if n <= smsSingleSegment {
		return 1
	}
	return (n + smsConcatSegment - 1) / smsConcatSegment
}

func (s *SMSSender) Cost(content string) float64 {
	return float64(Segments(content)) * s.segmentCost
}

func (s *SMSSender) Send(ctx context.Context, rcpt domain.Recipient, content string, meta map[string]string) domain.DispatchResult {
	to, err := FormatPhone(rcpt.Phone, s.defaultCC)
	if err != nil {
		return failedResult(rcpt.ID, s.channel, s.name, err.Error())
	}
	return s.deliver(ctx, rcpt.ID, to, "", content, meta, s.Cost(content))
}

func (s *SMSSender) SendBulk(ctx context.Context, rcpts []domain.Recipient, content string, meta map[string]string) ([]domain.DispatchResult, error) {
	return RunBulk(ctx, s, rcpts, RepeatContent(content, len(rcpts)), meta, nil)
}
