package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultTimeout bounds every ledger round-trip.
const DefaultTimeout = 10 * time.Second

// APIPrefix is the path prefix the ledger service mounts its routes under.
const APIPrefix = "/api/v1"

// Client issues exactly one request per call. It never retries or caches.
type Client struct {
	baseURL  string
	token    string
	http     *http.Client
	validate *validator.Validate
	log      *logrus.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the underlying client. Its Timeout is kept as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func WithLogger(l *logrus.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient builds a client for the ledger at baseURL. token is sent as a
// bearer credential and never inspected.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		token:    token,
		http:     &http.Client{Timeout: DefaultTimeout},
		validate: validator.New(),
		log:      logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) endpoint(path string, params url.Values) string {
	u := c.baseURL + APIPrefix + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

func (c *Client) do(ctx context.Context, op, method, path string, params url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return validationError(op, fmt.Errorf("failed to marshal request: %w", err))
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, params), body)
	if err != nil {
		return &RemoteLedgerError{Op: op, Kind: KindNetwork, Message: err.Error(), Err: err}
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WithFields(logrus.Fields{"module": "ledger", "op": op, "request_id": reqID}).
			Debug(err.Error())
		return transportError(op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(op, fmt.Errorf("failed to read response: %w", err))
	}
	c.log.WithFields(logrus.Fields{
		"module":      "ledger",
		"op":          op,
		"request_id":  reqID,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("ledger request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return responseError(op, resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &RemoteLedgerError{
			Op:      op,
			Kind:    KindServer,
			Status:  resp.StatusCode,
			Message: "unparsable response body",
			Err:     err,
		}
	}
	return nil
}
