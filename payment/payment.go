// Package payment talks to the serverless function that creates payment
// preferences for online orders.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

var ErrBadResponse = errors.New("payment function returned an unexpected response")

type Item struct {
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type Payer struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type Request struct {
	OrderID string  `json:"order_id"`
	TeamID  string  `json:"team_id"`
	Method  string  `json:"method"`
	Amount  float64 `json:"amount"`
	Items   []Item  `json:"items"`
	Payer   Payer   `json:"payer"`
}

type Pix struct {
	QRCode       string `json:"qr_code"`
	QRCodeBase64 string `json:"qr_code_base64"`
}

// Preference is either a hosted-checkout redirect or a PIX code, never both.
type Preference struct {
	RedirectURL string `json:"redirect_url,omitempty"`
	Pix         *Pix   `json:"pix,omitempty"`
}

func (p *Preference) validate() error {
	hasRedirect := p.RedirectURL != ""
	hasPix := p.Pix != nil && p.Pix.QRCode != "" && p.Pix.QRCodeBase64 != ""
	if hasRedirect == hasPix {
		return ErrBadResponse
	}
	if p.Pix != nil && !hasPix {
		return ErrBadResponse
	}
	return nil
}

type Client struct {
	http *resty.Client
}

// New builds a client for the functions base URL. key is sent as a bearer token when set.
func New(baseURL, key string) *Client {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(300 * time.Millisecond).
		SetHeader("Content-Type", "application/json")
	if key != "" {
		c.SetAuthToken(key)
	}
	return &Client{http: c}
}

// CreatePreference asks the function for a payment preference.
func (c *Client) CreatePreference(ctx context.Context, req Request) (*Preference, error) {
	var pref Preference
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&pref).
		Post("/create-payment-preference")
	if err != nil {
		return nil, fmt.Errorf("call payment function: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %d", ErrBadResponse, resp.StatusCode())
	}
	if err := pref.validate(); err != nil {
		return nil, err
	}
	return &pref, nil
}
