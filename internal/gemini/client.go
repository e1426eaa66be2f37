// Copyright (c) 2025 NexuBible
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini is the gateway to the Gemini generateContent API.
//
// Every operation is a single-turn prompt: the gateway sanitizes and bounds
// the interpolated inputs, sends one POST, classifies any failure into the
// package's error taxonomy, and decodes the answer. The gateway itself
// never retries; see RetryPolicy for the opt-in caller-side policy.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Configuration constants for the Gemini API.
const (
	// DefaultBaseURL is the models root of the generateContent API.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

	// DefaultModel is the model every operation targets.
	DefaultModel = "gemini-2.5-flash"

	// DefaultRequestTimeout bounds one HTTP exchange.
	DefaultRequestTimeout = 30 * time.Second

	// DefaultResourceTimeout bounds the whole operation, decode included.
	DefaultResourceTimeout = 45 * time.Second

	// maxResponseSize caps the response body read.
	maxResponseSize = 4 * 1024 * 1024
)

// CredentialFunc supplies the API key at call time. Returning "" means no
// credential is configured.
type CredentialFunc func() string

// EntitlementFunc gates AI features. Returning false fails the operation
// before any request is sent.
type EntitlementFunc func() bool

// Client calls the Gemini API. Operations are goroutine-safe; concurrent
// calls share the HTTP client and nothing else.
type Client struct {
	baseURL         string
	model           string
	credential      CredentialFunc
	entitled        EntitlementFunc
	httpClient      *http.Client
	resourceTimeout time.Duration
	log             *logrus.Logger

	// inFlight counts started, not-yet-terminal requests. Each request
	// has its own accounting; the count never blocks concurrent calls.
	inFlight atomic.Int64
}

// Option adjusts a Client at construction.
type Option func(*Client)

// WithBaseURL points the client at a different API root.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithModel selects a different model.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithTimeouts overrides the request and resource timeouts.
func WithTimeouts(request, resource time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = request
		c.resourceTimeout = resource
	}
}

// WithEntitlement installs an entitlement gate.
func WithEntitlement(fn EntitlementFunc) Option {
	return func(c *Client) { c.entitled = fn }
}

// WithHTTPClient substitutes the transport, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient builds a gateway. credential must not be nil; a client with an
// empty credential is valid but every operation fails with
// KindConfiguration.
func NewClient(credential CredentialFunc, log *logrus.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:         DefaultBaseURL,
		model:           DefaultModel,
		credential:      credential,
		httpClient:      &http.Client{Timeout: DefaultRequestTimeout},
		resourceTimeout: DefaultResourceTimeout,
		log:             log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsConfigured reports whether a credential is currently available.
func (c *Client) IsConfigured() bool {
	return c.credential() != ""
}

// InFlight returns the number of requests started but not yet finished.
func (c *Client) InFlight() int {
	return int(c.inFlight.Load())
}

// =============================================================================
// REQUEST / RESPONSE ENVELOPE
// =============================================================================

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// =============================================================================
// CORE CALL
// =============================================================================

// generate sends one prompt and returns the model's trimmed answer text.
// All failures come back as *Error.
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	key := c.credential()
	if key == "" {
		return "", &Error{Kind: KindConfiguration, Message: "Cheia API nu este configurată. Adăugați-o în Setări."}
	}
	if c.entitled != nil && !c.entitled() {
		return "", &Error{Kind: KindNotEntitled, Message: "Funcțiile AI nu sunt disponibile pentru acest cont."}
	}

	c.inFlight.Add(1)
	defer c.inFlight.Add(-1)

	ctx, cancel := context.WithTimeout(ctx, c.resourceTimeout)
	defer cancel()

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", &Error{Kind: KindUnexpectedFormat, Message: "Eroare la pregătirea cererii.", cause: err}
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", c.baseURL, c.model, key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &Error{Kind: KindUnexpectedFormat, Message: "Eroare la pregătirea cererii.", cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		gerr := c.classifyTransport(err)
		c.log.WithError(err).WithField("kind", gerr.Kind.String()).Warn("gemini request failed")
		return "", gerr
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", c.classifyTransport(err)
	}

	if resp.StatusCode != http.StatusOK {
		gerr := classifyStatus(resp.StatusCode, raw)
		c.log.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"kind":   gerr.Kind.String(),
		}).Warn("gemini request rejected")
		return "", gerr
	}

	var envelope generateResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return "", &Error{Kind: KindUnexpectedFormat, Message: "Format de răspuns neașteptat.", cause: err}
	}
	if len(envelope.Candidates) == 0 || len(envelope.Candidates[0].Content.Parts) == 0 {
		return "", &Error{Kind: KindUnexpectedFormat, Message: "Format de răspuns neașteptat."}
	}

	return strings.TrimSpace(envelope.Candidates[0].Content.Parts[0].Text), nil
}

// classifyTransport maps transport errors to Timeout or Offline.
func (c *Client) classifyTransport(err error) *Error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Message: "Conexiunea a expirat. Încercați din nou.", cause: err}
	case errors.As(err, &netErr) && netErr.Timeout():
		return &Error{Kind: KindTimeout, Message: "Conexiunea a expirat. Încercați din nou.", cause: err}
	default:
		return &Error{Kind: KindOffline, Message: "Fără conexiune la internet.", cause: err}
	}
}

// classifyStatus maps a non-200 status to an error kind. The 429 body is
// inspected to tell exhausted quota apart from plain throttling.
func classifyStatus(status int, body []byte) *Error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &Error{Kind: KindAuth, Status: status, Message: "Cheie API invalidă. Verificați în Setări."}

	case status == http.StatusTooManyRequests:
		text := string(body)
		if strings.Contains(text, "RESOURCE_EXHAUSTED") || strings.Contains(text, "RATE_LIMIT_EXCEEDED") {
			return &Error{
				Kind:           KindRateLimited,
				Status:         status,
				QuotaExhausted: true,
				Message:        "Limita API depășită. Încercați din nou în câteva minute.",
			}
		}
		return &Error{Kind: KindRateLimited, Status: status, Message: "Prea multe cereri. Încercați din nou imediat."}

	case status >= 500 && status <= 599:
		return &Error{Kind: KindServerUnavailable, Status: status, Message: "Serverul Gemini nu este disponibil."}

	default:
		return &Error{Kind: KindUnexpectedStatus, Status: status, Message: fmt.Sprintf("Eroare server: %d", status)}
	}
}
