// Package github is a minimal client for the GitHub REST endpoints the note
// sync needs: repository contents and the low-level git data API.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

const (
	DefaultBaseURL = "https://api.github.com"
	AcceptHeader   = "application/vnd.github.v3+json"

	maxRawDetail = 100
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*options)

type options struct {
	baseURL string
	base    *http.Client
}

func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets the client whose transport carries the authenticated requests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.base = c
	}
}

// NewClient returns a client that authenticates every request with token as a
// bearer credential. Clients are cheap; one is built per sync so that a token
// change in the settings applies to the very next run.
func NewClient(ctx context.Context, token string, opts ...Option) *Client {
	o := &options{baseURL: DefaultBaseURL, base: http.DefaultClient}
	for _, opt := range opts {
		opt(o)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, o.base)
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})

	return &Client{
		baseURL:    o.baseURL,
		httpClient: oauth2.NewClient(ctx, src),
	}
}

// Do sends one request and decodes the JSON reply into out when out is non-nil.
// It never retries.
func (c *Client) Do(ctx context.Context, method, endpoint string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", AcceptHeader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseError(method, endpoint, resp.StatusCode, raw)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response of %s %s: %w", method, endpoint, err)
	}
	return nil
}

type apiError struct {
	Message string `json:"message"`
	Errors  []struct {
		Resource string `json:"resource"`
		Field    string `json:"field"`
		Code     string `json:"code"`
		Message  string `json:"message"`
	} `json:"errors"`
}

func parseError(method, endpoint string, status int, raw []byte) error {
	detail := ""

	var body apiError
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		detail = body.Message

		var extra []string
		for _, e := range body.Errors {
			switch {
			case e.Message != "":
				extra = append(extra, e.Message)
			case e.Code != "":
				extra = append(extra, strings.TrimSpace(e.Field+" "+e.Code))
			}
		}
		if len(extra) > 0 {
			detail += ": " + strings.Join(extra, "; ")
		}

		if strings.Contains(strings.ToLower(body.Message), permissionDeniedMarker) {
			return &PermissionDeniedError{Status: status, Detail: detail}
		}
	} else {
		detail = truncate(strings.TrimSpace(string(raw)), maxRawDetail)
	}

	if detail == "" {
		detail = http.StatusText(status)
	}

	return &RequestError{
		Method:   method,
		Endpoint: endpoint,
		Status:   status,
		Detail:   detail,
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
