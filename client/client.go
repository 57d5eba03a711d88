// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package client talks to the translation API of an inline translator server.

It issues exactly one HTTP request per call and never retries.
*/
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"codeberg.org/ride/inlinetranslator/core/audit"
	"codeberg.org/ride/inlinetranslator/core/cookie"
	"codeberg.org/ride/inlinetranslator/core/idgen"
	"codeberg.org/ride/inlinetranslator/core/translation"
	"codeberg.org/ride/inlinetranslator/server/request_context"
	"codeberg.org/ride/inlinetranslator/server/utils"
)

// maxResponseBytes bounds response bodies.
const maxResponseBytes = 4 << 20

var (
	errAPIResponseError   = errors.New("translator API error")
	errInvalidJSON        = errors.New("invalid JSON response")
	errUnexpectedResponse = errors.New("unexpected response")
)

// APIError represents an error status or error payload returned by the API.
type APIError struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int

	// Message is the message of the error payload, or the status text.
	Message string

	// Err is the underlying error cause.
	Err error
}

// Error returns a formatted error message including the status code and API message if available.
func (e *APIError) Error() string {
	var b strings.Builder

	b.WriteString(e.Err.Error())

	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}

	fmt.Fprintf(&b, " (status code: %d)", e.StatusCode)

	return b.String()
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Client calls the API below a base URL such as https://example.com/api/v1/i18n.
type Client struct {
	base       *url.URL
	httpClient *http.Client
	token      string
	useCookie  bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces utils.HTTPClient.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithBearerToken authenticates with an Authorization header.
func WithBearerToken(token string) Option {
	return func(cl *Client) {
		cl.token = token
		cl.useCookie = false
	}
}

// WithAccessCookie authenticates with the access cookie, the way a browser does.
func WithAccessCookie(token string) Option {
	return func(cl *Client) {
		cl.token = token
		cl.useCookie = true
	}
}

// New returns a Client for baseURL, which must be absolute.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := utils.ParseURL(baseURL, "translator API")
	if err != nil {
		return nil, err
	}

	c := &Client{
		base:       base,
		httpClient: utils.HTTPClient,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// FetchVariants returns the variants of key keyed by locale code.
func (c *Client) FetchVariants(ctx context.Context, key string) (map[string]translation.LocaleVariant, error) {
	body, err := c.do(ctx, http.MethodGet, c.endpoint("translation", key), nil)
	if err != nil {
		return nil, err
	}

	result := gjson.ParseBytes(body)
	if !result.IsObject() {
		return nil, fmt.Errorf("%w: variants are not an object", errUnexpectedResponse)
	}

	variants := make(map[string]translation.LocaleVariant)

	result.ForEach(func(code, value gjson.Result) bool {
		variant := translation.LocaleVariant{
			Key:    value.Get("key").String(),
			Code:   value.Get("code").String(),
			Locale: value.Get("locale").String(),
		}

		if variant.Code == "" {
			variant.Code = code.String()
		}

		if text := value.Get("translation"); text.Exists() && text.Type != gjson.Null {
			s := text.String()
			variant.Translation = &s
		}

		variants[code.String()] = variant

		return true
	})

	return variants, nil
}

// SaveVariants posts values for key and returns the text the server now
// resolves for locale.
func (c *Client) SaveVariants(ctx context.Context, locale, key string, values map[string]string) (string, error) {
	payload, err := json.Marshal(struct {
		Translations map[string]string `json:"translations"`
	}{Translations: values})
	if err != nil {
		return "", fmt.Errorf("failed to marshal translations: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, c.endpoint("translation", locale, key), payload)
	if err != nil {
		return "", err
	}

	text := gjson.GetBytes(body, "translation")
	if text.Type != gjson.String {
		return "", fmt.Errorf("%w: missing translation", errUnexpectedResponse)
	}

	return text.String(), nil
}

func (c *Client) endpoint(segments ...string) string {
	u := *c.base

	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}

	u.Path = c.base.Path + "/" + strings.Join(segments, "/")
	u.RawPath = c.base.EscapedPath() + "/" + strings.Join(escaped, "/")

	return u.String()
}

// do sends one request and returns the body of a successful JSON response.
func (c *Client) do(ctx context.Context, method, target string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", target, err)
	}

	req.Header.Set("Accept", "application/json")

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.token != "" {
		if c.useCookie {
			req.AddCookie(&http.Cookie{Name: string(cookie.AccessCookie), Value: url.QueryEscape(c.token)})
		} else {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
	}

	resp, body, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}

	return processJSONResponse(resp.StatusCode, body)
}

func (c *Client) send(ctx context.Context, req *http.Request) (_ *http.Response, _ []byte, err error) {
	span := audit.Span{
		Destination: audit.ToTranslatorAPI,
		RequestID:   request_context.FromContext(ctx).RequestID + "-" + idgen.Make(),
		Method:      req.Method,
		URL:         req.URL.String(),
	}

	_ = span.Begin(ctx)
	defer func() {
		span.Error = err
		span.End()
		span.Log()
	}()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	span.StatusCode = resp.StatusCode

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	span.Size = len(body)

	return resp, body, nil
}

// processJSONResponse turns error statuses and {"error":true} payloads into
// *APIError and rejects bodies that are not JSON.
func processJSONResponse(status int, body []byte) ([]byte, error) {
	if status >= http.StatusBadRequest {
		message := gjson.GetBytes(body, "message").String()

		// Fall back to the HTTP status text if no JSON message is found.
		if message == "" {
			message = http.StatusText(status)
		}

		return nil, &APIError{
			StatusCode: status,
			Message:    message,
			Err:        errAPIResponseError,
		}
	}

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: %s", errInvalidJSON, truncate(body))
	}

	result := gjson.ParseBytes(body)

	if result.Get("error").Bool() {
		message := result.Get("message").String()
		if message == "" {
			message = "API response contained an error with no message"
		}

		return nil, &APIError{
			StatusCode: status,
			Message:    message,
			Err:        errAPIResponseError,
		}
	}

	return body, nil
}

func truncate(body []byte) string {
	const maxShown = 200

	if len(body) > maxShown {
		return string(body[:maxShown]) + "…"
	}

	return string(body)
}
