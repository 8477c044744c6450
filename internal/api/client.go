package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"taskpad/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/oauth2"
)

const (
	DefaultBaseURL = "https://task-manager-backend-mdxa.onrender.com/api"

	maxResponseBytes = 4 << 20
	defaultTimeout   = 30 * time.Second
)

// TokenSource yields the bearer token of the active session, if any.
type TokenSource interface {
	Token() (string, bool)
}

type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Tokens     TokenSource
	Logger     logrus.FieldLogger
	// Breaker is optional; when set, transport errors and 5xx responses count as failures
	// and calls are rejected while it is open.
	Breaker *gobreaker.CircuitBreaker
}

// Client talks to the remote task service. Every operation returns a Result; no call
// returns a raw transport error and no call is retried.
type Client struct {
	baseURL string
	http    *http.Client
	log     logrus.FieldLogger
	breaker *gobreaker.CircuitBreaker

	mu     sync.RWMutex
	tokens TokenSource
}

func New(opts Options) *Client {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	return &Client{
		baseURL: base,
		http:    hc,
		log:     log,
		breaker: opts.Breaker,
		tokens:  opts.Tokens,
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// SetTokenSource replaces the token source consulted on every request.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	c.tokens = ts
	c.mu.Unlock()
}

func (c *Client) bearer() (*oauth2.Token, bool) {
	c.mu.RLock()
	ts := c.tokens
	c.mu.RUnlock()
	if ts == nil {
		return nil, false
	}
	tok, ok := ts.Token()
	if !ok || strings.TrimSpace(tok) == "" {
		return nil, false
	}
	return &oauth2.Token{AccessToken: tok, TokenType: "Bearer"}, true
}

// NewBreaker builds the optional circuit breaker for the client.
func NewBreaker(failures uint32, openFor time.Duration, log logrus.FieldLogger) *gobreaker.CircuitBreaker {
	if failures == 0 {
		failures = 3
	}
	if openFor <= 0 {
		openFor = 10 * time.Second
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "task-service",
		MaxRequests: 1,
		Timeout:     openFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if log != nil {
				log.WithFields(logrus.Fields{"breaker": name, "from": from.String(), "to": to.String()}).Warn("circuit breaker state change")
			}
		},
	})
}

var errServerStatus = errors.New("server error status")

func (c *Client) send(req *http.Request) (*http.Response, error) {
	if c.breaker == nil {
		return c.http.Do(req)
	}
	v, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			return resp, errServerStatus
		}
		return resp, nil
	})
	if errors.Is(err, errServerStatus) {
		return v.(*http.Response), nil
	}
	if err != nil {
		return nil, err
	}
	return v.(*http.Response), nil
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func failureMessage(raw []byte, fallback string) string {
	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err == nil {
		if m := strings.TrimSpace(eb.Message); m != "" {
			return m
		}
		if m := strings.TrimSpace(eb.Error); m != "" {
			return m
		}
	}
	return fallback
}

// do performs one request. out may be nil when the body is ignored.
func (c *Client) do(ctx context.Context, method, path string, body any, out any, fallback string) *Error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindDecode, Message: fallback, cause: err}
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return &Error{Kind: KindTransport, Message: fallback, cause: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok, ok := c.bearer(); ok {
		tok.SetAuthHeader(req)
	}

	start := time.Now()
	resp, err := c.send(req)
	entry := c.log.WithFields(logrus.Fields{"method": method, "path": path, "duration": time.Since(start).String()})
	if err != nil {
		entry.WithError(err).Warn("api request failed")
		return &Error{Kind: KindTransport, Message: fallback, cause: err}
	}
	defer resp.Body.Close()
	entry = entry.WithField("status", resp.StatusCode)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		entry.WithError(err).Warn("api response read failed")
		return &Error{Kind: KindTransport, Status: resp.StatusCode, Message: fallback, cause: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		entry.Debug("api request rejected")
		return &Error{
			Kind:    kindForStatus(resp.StatusCode),
			Status:  resp.StatusCode,
			Message: failureMessage(raw, fallback),
		}
	}
	entry.Debug("api request")
	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return &Error{Kind: KindDecode, Status: resp.StatusCode, Message: fallback, cause: io.ErrUnexpectedEOF}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		entry.WithError(err).Warn("api response decode failed")
		return &Error{Kind: KindDecode, Status: resp.StatusCode, Message: fallback, cause: err}
	}
	return nil
}
