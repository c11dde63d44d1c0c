// Package sendgrid implements the Transport for SendGrid's v3 mail API,
// the primary email provider.
package sendgrid

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"campusnotify/internal/provider"
)

type Client struct {
	APIKey    string
	FromEmail string
	FromName  string
	BaseURL   string
	HTTP      *http.Client
}

type address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type mailPayload struct {
	Personalizations []struct {
		To []address `json:"to"`
	} `json:"personalizations"`
	From    address `json:"from"`
	Subject string  `json:"subject"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
}

type errorBody struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *Client) Deliver(ctx context.Context, req provider.Request) (provider.Receipt, error) {
	var payload mailPayload
	payload.Personalizations = make([]struct {
		To []address `json:"to"`
	}, 1)
	payload.Personalizations[0].To = []address{{Email: req.To}}
	payload.From = address{Email: c.FromEmail, Name: c.FromName}
	payload.Subject = req.Subject
	payload.Content = []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}{{Type: "text/plain", Value: req.Body}}

	body, err := json.Marshal(payload)
	if err != nil {
		return provider.Receipt{}, err
	}

	baseURL := strings.TrimRight(c.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.sendgrid.com"
	}
	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v3/mail/send", bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return provider.Receipt{}, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)

	// SendGrid answers 202 with the id in a header and an empty body.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.Unmarshal(b, &eb)
		if len(eb.Errors) > 0 && eb.Errors[0].Message != "" {
			return provider.Receipt{}, errors.New(eb.Errors[0].Message)
		}
		return provider.Receipt{}, errors.New("sendgrid send failed: http " + resp.Status)
	}
	return provider.Receipt{MessageID: resp.Header.Get("X-Message-Id")}, nil
}
