// Package validate checks a composed message against channel-specific and
// general business rules before any send is attempted. All rules are
// evaluated and reported together so the composer can show every problem at
// once; only hard errors block dispatch.
package validate

import (
	"fmt"
	"strings"
	"time"

	"campusnotify/internal/domain"
)

const (
	MaxSubjectLen     = 200
	SubjectWarnLen    = 50
	SMSSoftLimit      = 160
	SMSHardLimit      = 306
	WhatsAppHardLimit = 4096

	MinScheduleLead   = 5 * time.Minute
	MaxScheduleWindow = 365 * 24 * time.Hour
)

type Result struct {
	Errors   []domain.Issue `json:"errors"`
	Warnings []domain.Issue `json:"warnings"`
}

// OK reports whether dispatch may proceed. Warnings alone do not block.
func (r Result) OK() bool { return len(r.Errors) == 0 }

func (r *Result) addError(field, msg string) {
	r.Errors = append(r.Errors, domain.Issue{Field: field, Message: msg})
}

func (r *Result) addWarning(field, msg string) {
	r.Warnings = append(r.Warnings, domain.Issue{Field: field, Message: msg})
}

// Check validates msg relative to now. Pure: no I/O, never panics on a
// well-formed Message value.
func Check(msg domain.Message, now time.Time) Result {
	var res Result

	if len(msg.Channels) == 0 {
		res.addError("channels", "at least one channel must be selected")
	}
	for _, ch := range msg.Channels {
		if !ch.Valid() {
			res.addError("channels", fmt.Sprintf("unknown channel %q", ch))
		}
	}

	anyContent := false
	for _, ch := range msg.Channels {
		if strings.TrimSpace(msg.Content[ch]) != "" {
			anyContent = true
			break
		}
	}
	if len(msg.Channels) > 0 && !anyContent {
		res.addError("content", "no selected channel has content")
	}

	if msg.HasChannel(domain.ChannelEmail) {
		subject := strings.TrimSpace(msg.Subject)
		switch {
		case subject == "":
			res.addError("subject", "subject is required for email")
		case len(msg.Subject) > MaxSubjectLen:
			res.addError("subject", fmt.Sprintf("subject exceeds %d characters", MaxSubjectLen))
		case len(msg.Subject) > SubjectWarnLen:
			res.addWarning("subject", fmt.Sprintf("subjects over %d characters may be truncated by mail clients", SubjectWarnLen))
		}
	}

	checkContentLengths(msg, &res)

	if len(msg.Selection.Resolve()) == 0 {
		res.addError("recipients", "recipient selection resolves to no recipients")
	}

	checkSchedule(msg.Schedule, now, &res)

	return res
}

func checkContentLengths(msg domain.Message, res *Result) {
	if msg.HasChannel(domain.ChannelSMS) {
		n := len(msg.Content[domain.ChannelSMS])
		switch {
		case n > SMSHardLimit:
			res.addError("content.sms", fmt.Sprintf("SMS content exceeds %d characters", SMSHardLimit))
		case n > SMSSoftLimit:
			res.addWarning("content.sms", fmt.Sprintf("SMS over %d characters is billed as multiple segments", SMSSoftLimit))
		}
	}
	if msg.HasChannel(domain.ChannelWhatsApp) {
		if n := len(msg.Content[domain.ChannelWhatsApp]); n > WhatsAppHardLimit {
			res.addError("content.whatsapp", fmt.Sprintf("WhatsApp content exceeds %d characters", WhatsAppHardLimit))
		}
	}
}

func checkSchedule(s domain.Schedule, now time.Time, res *Result) {
	if s.SendImmediately {
		if !s.ScheduledAt.IsZero() {
			res.addError("schedule", "sendImmediately and scheduledAt are mutually exclusive")
		}
		return
	}
	if s.ScheduledAt.IsZero() {
		res.addError("schedule", "either sendImmediately or scheduledAt must be set")
		return
	}
	if s.ScheduledAt.Before(now.Add(MinScheduleLead)) {
		res.addError("schedule", "scheduledAt must be at least 5 minutes in the future")
	}
	if s.ScheduledAt.After(now.Add(MaxScheduleWindow)) {
		res.addError("schedule", "scheduledAt must be within one year")
	}
}
