package provider

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailRe    = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)
	nonDigitRe = regexp.MustCompile(`[^0-9]`)
)

// FormatPhone normalizes a phone number to the country-code-prefixed digit
// string the aggregator APIs expect (e.g. "919876543210"). A bare national
// number gets defaultCC prepended. Formatting failure is per-recipient:
// callers fail only that recipient's result.
func FormatPhone(raw, defaultCC string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("empty phone number")
	}

	hasPlus := strings.HasPrefix(trimmed, "+")
	digits := nonDigitRe.ReplaceAllString(trimmed, "")
	if digits == "" {
		return "", fmt.Errorf("phone number %q has no digits", raw)
	}

	// Leading 00 is the international-prefix spelling of +.
	if !hasPlus && strings.HasPrefix(digits, "00") {
		hasPlus = true
		digits = digits[2:]
	}
	if !hasPlus {
		if len(digits) == 10 {
			digits = defaultCC + digits
		} else if len(digits) < 10 {
			return "", fmt.Errorf("phone number %q too short", raw)
		}
	}
	if len(digits) < 11 || len(digits) > 15 {
		return "", fmt.Errorf("phone number %q is not E.164-normalizable", raw)
	}
	return digits, nil
}

// FormatEmail validates and canonicalizes an email address.
func FormatEmail(raw string) (string, error) {
	addr := strings.TrimSpace(raw)
	if addr == "" {
		return "", fmt.Errorf("empty email address")
	}
	if !emailRe.MatchString(addr) {
		return "", fmt.Errorf("invalid email address %q", raw)
	}
	return strings.ToLower(addr), nil
}
