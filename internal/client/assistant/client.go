package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mahtabthestranger/Mdilink/internal/model/chat"
)

// DefaultPath is where the assistant endpoint lives on the host.
const DefaultPath = "/api/chat"

const maxBodyBytes = 1 << 20

// ErrResponseTooLarge is wrapped in a read TransportError when the reply
// body exceeds the client's size limit.
var ErrResponseTooLarge = errors.New("assistant response exceeds 1 MiB")

// Client posts single-turn messages to the assistant endpoint.
type Client struct {
	url        string
	httpClient *http.Client
	logger     zerolog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for url. A zero timeout leaves the request
// bounded only by the caller's context.
func NewClient(url string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: log.With().Str("component", "assistant-client").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the endpoint the client posts to.
func (c *Client) URL() string {
	return c.url
}

// Send posts message and returns the assistant's reply. Failures are either
// *ApplicationError or *TransportError.
func (c *Client) Send(ctx context.Context, message string) (string, error) {
	payload, err := json.Marshal(chat.ChatRequest{Message: message})
	if err != nil {
		return "", &TransportError{Op: "encode", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", &TransportError{Op: "request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &TransportError{Op: "post", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return "", &TransportError{Op: "read", Status: resp.StatusCode, Err: err}
	}
	if len(body) > maxBodyBytes {
		return "", &TransportError{Op: "read", Status: resp.StatusCode, Err: ErrResponseTooLarge}
	}

	c.logger.Debug().
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(started)).
		Int("bytes", len(body)).
		Msg("assistant responded")

	var parsed *chat.ChatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &TransportError{
			Op:     "decode",
			Status: resp.StatusCode,
			Err:    fmt.Errorf("malformed response body %q: %w", truncate(string(body), 200), err),
		}
	}

	if parsed == nil {
		return "", &TransportError{
			Op:     "decode",
			Status: resp.StatusCode,
			Err:    errors.New("response body is not a JSON object"),
		}
	}

	if !parsed.Usable() {
		return "", &ApplicationError{Status: resp.StatusCode, Message: strings.TrimSpace(parsed.Error)}
	}
	return parsed.Response, nil
}

func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}
