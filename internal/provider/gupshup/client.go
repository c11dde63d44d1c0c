// Package gupshup implements the Transport for the Gupshup messaging
// aggregator, which fronts both WhatsApp and SMS.
package gupshup

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"campusnotify/internal/provider"
)

type Client struct {
	APIKey  string
	Source  string // approved sender number / header
	AppName string
	Channel string // "whatsapp" or "sms"
	BaseURL string
	HTTP    *http.Client
}

type apiResponse struct {
	Status    string `json:"status"`
	MessageID string `json:"messageId"`
	Message   string `json:"message"`
}

func (c *Client) Deliver(ctx context.Context, req provider.Request) (provider.Receipt, error) {
	form := url.Values{}
	form.Set("channel", c.Channel)
	form.Set("source", c.Source)
	form.Set("destination", req.To)
	form.Set("message", req.Body)
	if c.AppName != "" {
		form.Set("src.name", c.AppName)
	}

	baseURL := strings.TrimRight(c.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.gupshup.io"
	}
	endpoint := baseURL + "/sm/api/v1/msg"
	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("apikey", c.APIKey)

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return provider.Receipt{}, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)

	var out apiResponse
	_ = json.Unmarshal(b, &out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if out.Message != "" {
			return provider.Receipt{}, errors.New(out.Message)
		}
		return provider.Receipt{}, errors.New("gupshup send failed: http " + resp.Status)
	}
	if out.Status != "" && out.Status != "submitted" {
		return provider.Receipt{}, errors.New("gupshup rejected message: " + out.Status)
	}
	return provider.Receipt{MessageID: out.MessageID, Detail: out.Status}, nil
}
