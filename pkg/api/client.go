// Package api talks to the retail REST API: a shared HTTP client plus a
// generic per-entity resource.
package api

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

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Credentials supplies the bearer token and user id of the current session.
type Credentials interface {
	Token() string
	UserID() string
}

// Client sends JSON requests relative to a base URL.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	creds   Credentials
	logger  *zap.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithCredentials attaches the session used for authorized endpoints.
func WithCredentials(creds Credentials) Option {
	return func(c *Client) { c.creds = creds }
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient validates baseURL and applies options.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", baseURL)
	}
	c := &Client{baseURL: u, http: http.DefaultClient}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c, nil
}

// Request describes one call.
type Request struct {
	Method     string
	Path       string
	Authorized bool
	Body       any
}

// Response carries the status and raw body of a successful call.
type Response struct {
	Status int
	Body   []byte
}

// Empty reports a success without content (204 or a zero-length body).
func (r Response) Empty() bool {
	return r.Status == http.StatusNoContent || len(bytes.TrimSpace(r.Body)) == 0
}

// Token returns the bearer token or "" when no session is attached.
func (c *Client) Token() string {
	if c.creds == nil {
		return ""
	}
	return c.creds.Token()
}

// UserID returns the session user id or "" when no session is attached.
func (c *Client) UserID() string {
	if c.creds == nil {
		return ""
	}
	return c.creds.UserID()
}

// Do sends req and turns transport failures and non-2xx statuses into typed errors.
func (c *Client) Do(ctx context.Context, req Request) (Response, error) {
	target := c.resolve(req.Path)

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return Response{}, fmt.Errorf("encode %s body: %w", req.Path, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return Response{}, fmt.Errorf("build request: %w", err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.Authorized {
		token := c.Token()
		if token == "" {
			return Response{}, ErrNoCredentials
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	log := c.logger.With(
		zap.String("method", req.Method),
		zap.String("url", target),
		zap.String("request_id", requestID),
	)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Response{}, ctxErr
		}
		log.Warn("request failed", zap.Error(err))
		return Response{}, &NetworkError{Method: req.Method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn("reading response failed", zap.Error(err))
		return Response{}, &NetworkError{Method: req.Method, URL: target, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		fetchErr := &FetchError{Status: resp.StatusCode, Message: errorMessage(raw, resp.StatusCode)}
		log.Info("request rejected", zap.Int("status", resp.StatusCode), zap.String("message", fetchErr.Message))
		return Response{}, fetchErr
	}

	log.Debug("request succeeded", zap.Int("status", resp.StatusCode), zap.Int("bytes", len(raw)))
	return Response{Status: resp.StatusCode, Body: raw}, nil
}

// resolve joins the relative API path onto the base URL.
func (c *Client) resolve(path string) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	u.RawPath = ""
	return u.String()
}

// errorMessage reads {"message": ...} or {"error": ...}, falling back to a generic text.
func errorMessage(body []byte, status int) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Title   string `json:"title"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, m := range []string{payload.Message, payload.Error, payload.Title} {
			if strings.TrimSpace(m) != "" {
				return m
			}
		}
	}
	return fallbackMessage(status)
}

// decode parses a JSON body into out and wraps failures as DecodeError.
func decode(entity string, body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return &DecodeError{Entity: entity, Err: err}
	}
	return nil
}

// errMissingID is wrapped in DecodeError when a record arrives without an identifier.
var errMissingID = errors.New("record has no identifier")
