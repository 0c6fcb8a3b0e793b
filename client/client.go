// Package client is the Go SDK for the ordering API. It keeps the per-session state
// a storefront needs: the signed-in user, the resolved restaurant and the cart.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

var ErrNotFound = errors.New("not found")

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// Client talks to the API on behalf of one storefront host.
type Client struct {
	http *resty.Client
	host string

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

// WithHost sends every request with this Host header, e.g. loja1.delliapp.com.br.
func WithHost(host string) Option {
	return func(c *Client) { c.host = host }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(10 * time.Second).
			SetHeader("Accept", "application/json"),
	}
	for _, o := range opts {
		o(c)
	}
	c.http.SetPreRequestHook(func(_ *resty.Client, r *http.Request) error {
		if c.host != "" {
			r.Host = c.host
		}
		return nil
	})
	return c
}

// Host is the storefront host the client speaks for.
func (c *Client) Host() string { return c.host }

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) r(ctx context.Context) *resty.Request {
	req := c.http.R().SetContext(ctx).SetError(&APIError{})
	c.mu.RLock()
	if c.token != "" {
		req.SetAuthToken(c.token)
	}
	c.mu.RUnlock()
	return req
}

// check turns transport failures and error statuses into errors.
func check(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if !resp.IsError() {
		return nil
	}
	apiErr, _ := resp.Error().(*APIError)
	if apiErr == nil {
		apiErr = &APIError{}
	}
	apiErr.Status = resp.StatusCode()
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode())
	}
	if resp.StatusCode() == http.StatusNotFound {
		return fmt.Errorf("%w: %w", ErrNotFound, apiErr)
	}
	return apiErr
}
