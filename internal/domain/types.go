package domain

import "time"

type Channel string

const (
	ChannelWhatsApp Channel = "whatsapp"
	ChannelSMS      Channel = "sms"
	ChannelEmail    Channel = "email"
)

func (c Channel) Valid() bool {
	switch c {
	case ChannelWhatsApp, ChannelSMS, ChannelEmail:
		return true
	}
	return false
}

// Recipient is caller-owned and read-only to the dispatch engine.
type Recipient struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	WhatsApp string `json:"whatsapp,omitempty"` // falls back to Phone when empty
	Grade    string `json:"grade,omitempty"`
}

// WhatsAppNumber returns the number to use for WhatsApp delivery.
func (r Recipient) WhatsAppNumber() string {
	if r.WhatsApp != "" {
		return r.WhatsApp
	}
	return r.Phone
}

type SelectionMode string

const (
	SelectAll    SelectionMode = "all"
	SelectGrade  SelectionMode = "grade"
	SelectCustom SelectionMode = "custom"
)

// Selection describes which recipients a message targets. Recipients carries
// the caller-resolved full roster; the engine narrows it by Mode.
type Selection struct {
	Mode       SelectionMode `json:"mode"`
	Grade      string        `json:"grade,omitempty"`
	CustomIDs  []string      `json:"customIds,omitempty"`
	Recipients []Recipient   `json:"recipients"`
}

// Resolve returns the recipients matching the selection mode.
func (s Selection) Resolve() []Recipient {
	switch s.Mode {
	case SelectGrade:
		var out []Recipient
		for _, r := range s.Recipients {
			if r.Grade == s.Grade {
				out = append(out, r)
			}
		}
		return out
	case SelectCustom:
		want := make(map[string]bool, len(s.CustomIDs))
		for _, id := range s.CustomIDs {
			want[id] = true
		}
		var out []Recipient
		for _, r := range s.Recipients {
			if want[r.ID] {
				out = append(out, r)
			}
		}
		return out
	default:
		return s.Recipients
	}
}

// Schedule is either immediate or a future timestamp, never both.
type Schedule struct {
	SendImmediately bool      `json:"sendImmediately"`
	ScheduledAt     time.Time `json:"scheduledAt,omitempty"`
}

// Message is a composed invitation: validated once, then immutable for the
// duration of a dispatch run.
type Message struct {
	Channels  []Channel          `json:"channels"`
	Content   map[Channel]string `json:"content"`
	Subject   string             `json:"subject,omitempty"` // email only
	Selection Selection          `json:"selection"`
	Vars      map[string]string  `json:"vars,omitempty"` // merged into per-recipient template data
	Schedule  Schedule           `json:"schedule"`
}

func (m Message) HasChannel(c Channel) bool {
	for _, ch := range m.Channels {
		if ch == c {
			return true
		}
	}
	return false
}

// DispatchResult is one (recipient, channel) attempt. Never mutated after
// creation.
type DispatchResult struct {
	RecipientID   string    `json:"recipientId"`
	Channel       Channel   `json:"channel"`
	Provider      string    `json:"provider"`
	Success       bool      `json:"success"`
	ProviderMsgID string    `json:"providerMsgId,omitempty"`
	Error         string    `json:"error,omitempty"`
	Cost          float64   `json:"cost"`
	Timestamp     time.Time `json:"timestamp"`
}

// BatchResult aggregates one channel's results in input-recipient order.
type BatchResult struct {
	Channel   Channel          `json:"channel"`
	Results   []DispatchResult `json:"results"`
	Sent      int              `json:"sent"`
	Failed    int              `json:"failed"`
	TotalCost float64          `json:"totalCost"`
}

// Recount recomputes the aggregate fields from Results.
func (b *BatchResult) Recount() {
	b.Sent, b.Failed, b.TotalCost = 0, 0, 0
	for _, r := range b.Results {
		if r.Success {
			b.Sent++
		} else {
			b.Failed++
		}
		b.TotalCost += r.Cost
	}
}

// DispatchReport is the aggregate outcome of one Dispatch call. Success is
// true iff every selected channel achieved at least one delivery.
type DispatchReport struct {
	ID         string                  `json:"id"`
	Channels   map[Channel]BatchResult `json:"channels"`
	ChannelErr map[Channel]string      `json:"channelErrors,omitempty"`
	TotalCost  float64                 `json:"totalCost"`
	Attempts   int                     `json:"attempts"`
	Success    bool                    `json:"success"`
	StartedAt  time.Time               `json:"startedAt"`
	FinishedAt time.Time               `json:"finishedAt"`
}
