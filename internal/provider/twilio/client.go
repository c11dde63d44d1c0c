// Package twilio implements the Transport for Twilio's Messages API, used
// as the secondary SMS provider in the fallback chain.
package twilio

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
	AccountSID          string
	AuthToken           string
	MessagingServiceSID string
	FromNumber          string
	BaseURL             string
	HTTP                *http.Client
}

type sendResponse struct {
	Sid       string `json:"sid"`
	Status    string `json:"status"`
	ErrorCode *int   `json:"error_code"`
	Message   string `json:"message"`
}

func (c *Client) Deliver(ctx context.Context, req provider.Request) (provider.Receipt, error) {
	form := url.Values{}
	form.Set("To", "+"+strings.TrimPrefix(req.To, "+"))
	form.Set("Body", req.Body)
	if c.MessagingServiceSID != "" {
		form.Set("MessagingServiceSid", c.MessagingServiceSID)
	} else {
		form.Set("From", c.FromNumber)
	}

	baseURL := strings.TrimRight(c.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.twilio.com"
	}
	endpoint := baseURL + "/2010-04-01/Accounts/" + c.AccountSID + "/Messages.json"
	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.SetBasicAuth(c.AccountSID, c.AuthToken)

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return provider.Receipt{}, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)

	var out sendResponse
	_ = json.Unmarshal(b, &out)

	// Twilio returns 201 for created; treat 2xx as success
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if out.Message != "" {
			return provider.Receipt{}, errors.New(out.Message)
		}
		return provider.Receipt{}, errors.New("twilio send failed: http " + resp.Status)
	}
	return provider.Receipt{MessageID: out.Sid, Detail: out.Status}, nil
}
