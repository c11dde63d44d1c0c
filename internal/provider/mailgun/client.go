// Package mailgun implements the Transport for Mailgun's messages API, the
// secondary email provider in the fallback chain.
package mailgun

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
	Domain  string
	From    string
	BaseURL string
	HTTP    *http.Client
}

type sendResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

func (c *Client) Deliver(ctx context.Context, req provider.Request) (provider.Receipt, error) {
	form := url.Values{}
	form.Set("from", c.From)
	form.Set("to", req.To)
	form.Set("subject", req.Subject)
	form.Set("text", req.Body)

	baseURL := strings.TrimRight(c.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.mailgun.net"
	}
	endpoint := baseURL + "/v3/" + c.Domain + "/messages"
	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.SetBasicAuth("api", c.APIKey)

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return provider.Receipt{}, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)

	var out sendResponse
	_ = json.Unmarshal(b, &out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if out.Message != "" {
			return provider.Receipt{}, errors.New(out.Message)
		}
		return provider.Receipt{}, errors.New("mailgun send failed: http " + resp.Status)
	}
	return provider.Receipt{MessageID: strings.Trim(out.ID, "<>"), Detail: out.Message}, nil
}
