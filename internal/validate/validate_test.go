package validate

import (
	"strings"
	"testing"
	"time"

	"campusnotify/internal/domain"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func baseMessage() domain.Message {
	return domain.Message{
		Channels: []domain.Channel{domain.ChannelSMS},
		Content: map[domain.Channel]string{
			domain.ChannelSMS: "Enrollment confirmed for {{childName}}",
		},
		Selection: domain.Selection{
			Mode: domain.SelectAll,
			Recipients: []domain.Recipient{
				{ID: "r1", Name: "Asha", Phone: "+919800000001"},
			},
		},
		Schedule: domain.Schedule{SendImmediately: true},
	}
}

func hasIssue(issues []domain.Issue, field string) bool {
	for _, i := range issues {
		if i.Field == field {
			return true
		}
	}
	return false
}

func TestEmptyChannels(t *testing.T) {
	msg := baseMessage()
	msg.Channels = nil

	res := Check(msg, testNow)
	if res.OK() {
		t.Fatalf("expected errors")
	}
	if !hasIssue(res.Errors, "channels") {
		t.Fatalf("expected a channels error, got %v", res.Errors)
	}
}

func TestNoContentOnAnyChannel(t *testing.T) {
	msg := baseMessage()
	msg.Content = map[domain.Channel]string{domain.ChannelSMS: "   "}

	res := Check(msg, testNow)
	if !hasIssue(res.Errors, "content") {
		t.Fatalf("expected a content error, got %v", res.Errors)
	}
}

func TestSubjectRequiredOnlyForEmail(t *testing.T) {
	msg := baseMessage()
	msg.Channels = []domain.Channel{domain.ChannelEmail}
	msg.Content = map[domain.Channel]string{domain.ChannelEmail: "Welcome"}
	msg.Subject = ""

	res := Check(msg, testNow)
	if !hasIssue(res.Errors, "subject") {
		t.Fatalf("expected subject error when email selected, got %v", res.Errors)
	}

	// Same message without email must not report a subject error.
	msg.Channels = []domain.Channel{domain.ChannelSMS}
	msg.Content = map[domain.Channel]string{domain.ChannelSMS: "Welcome"}
	res = Check(msg, testNow)
	if hasIssue(res.Errors, "subject") {
		t.Fatalf("subject error without email selected: %v", res.Errors)
	}
}

func TestSubjectLengths(t *testing.T) {
	msg := baseMessage()
	msg.Channels = []domain.Channel{domain.ChannelEmail}
	msg.Content = map[domain.Channel]string{domain.ChannelEmail: "Body"}

	msg.Subject = strings.Repeat("s", 201)
	if res := Check(msg, testNow); !hasIssue(res.Errors, "subject") {
		t.Fatalf("expected hard error for 201-char subject")
	}

	msg.Subject = strings.Repeat("s", 60)
	res := Check(msg, testNow)
	if !res.OK() {
		t.Fatalf("60-char subject should not be a hard error: %v", res.Errors)
	}
	if !hasIssue(res.Warnings, "subject") {
		t.Fatalf("expected warning for long subject")
	}
}

func TestSMSLengthTiers(t *testing.T) {
	msg := baseMessage()

	msg.Content[domain.ChannelSMS] = strings.Repeat("a", 160)
	res := Check(msg, testNow)
	if hasIssue(res.Warnings, "content.sms") || hasIssue(res.Errors, "content.sms") {
		t.Fatalf("160 chars should be clean: %+v", res)
	}

	msg.Content[domain.ChannelSMS] = strings.Repeat("a", 200)
	res = Check(msg, testNow)
	if !hasIssue(res.Warnings, "content.sms") {
		t.Fatalf("expected multi-segment warning at 200 chars")
	}
	if !res.OK() {
		t.Fatalf("200 chars must not hard-fail: %v", res.Errors)
	}

	msg.Content[domain.ChannelSMS] = strings.Repeat("a", 307)
	if res := Check(msg, testNow); !hasIssue(res.Errors, "content.sms") {
		t.Fatalf("expected hard error above 306 chars")
	}
}

func TestWhatsAppHardLimit(t *testing.T) {
	msg := baseMessage()
	msg.Channels = []domain.Channel{domain.ChannelWhatsApp}
	msg.Content = map[domain.Channel]string{domain.ChannelWhatsApp: strings.Repeat("w", 4097)}

	if res := Check(msg, testNow); !hasIssue(res.Errors, "content.whatsapp") {
		t.Fatalf("expected hard error above 4096 chars")
	}
}

func TestEmptySelection(t *testing.T) {
	msg := baseMessage()
	msg.Selection = domain.Selection{
		Mode:  domain.SelectGrade,
		Grade: "5",
		Recipients: []domain.Recipient{
			{ID: "r1", Grade: "6"},
		},
	}

	if res := Check(msg, testNow); !hasIssue(res.Errors, "recipients") {
		t.Fatalf("expected recipients error for empty grade selection")
	}
}

func TestScheduleBoundaries(t *testing.T) {
	msg := baseMessage()
	msg.Schedule = domain.Schedule{ScheduledAt: testNow.Add(4 * time.Minute)}
	if res := Check(msg, testNow); !hasIssue(res.Errors, "schedule") {
		t.Fatalf("now+4m must be rejected")
	}

	msg.Schedule = domain.Schedule{ScheduledAt: testNow.Add(6 * time.Minute)}
	if res := Check(msg, testNow); hasIssue(res.Errors, "schedule") {
		t.Fatalf("now+6m must be accepted: %v", res.Errors)
	}

	msg.Schedule = domain.Schedule{ScheduledAt: testNow.Add(366 * 24 * time.Hour)}
	if res := Check(msg, testNow); !hasIssue(res.Errors, "schedule") {
		t.Fatalf("beyond one year must be rejected")
	}
}

func TestScheduleXOR(t *testing.T) {
	msg := baseMessage()
	msg.Schedule = domain.Schedule{SendImmediately: true, ScheduledAt: testNow.Add(time.Hour)}
	if res := Check(msg, testNow); !hasIssue(res.Errors, "schedule") {
		t.Fatalf("immediate plus scheduledAt must be rejected")
	}

	msg.Schedule = domain.Schedule{}
	if res := Check(msg, testNow); !hasIssue(res.Errors, "schedule") {
		t.Fatalf("neither immediate nor scheduledAt must be rejected")
	}
}

func TestAllIssuesReportedTogether(t *testing.T) {
	msg := domain.Message{
		Channels: []domain.Channel{domain.ChannelEmail},
		Content:  map[domain.Channel]string{},
		Schedule: domain.Schedule{},
	}

	res := Check(msg, testNow)
	for _, field := range []string{"content", "subject", "recipients", "schedule"} {
		if !hasIssue(res.Errors, field) {
			t.Errorf("expected %s error, got %v", field, res.Errors)
		}
	}
}
