// Package remote implements the repositories over the clinic REST backend.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/clinic-console/internal/repository"
	"github.com/jwalitptl/clinic-console/pkg/circuitbreaker"
	"github.com/jwalitptl/clinic-console/pkg/errors"
	"github.com/jwalitptl/clinic-console/pkg/logger"
	"github.com/jwalitptl/clinic-console/pkg/metrics"
)

const HeaderXRequestID = "X-Request-ID"

type Config struct {
	BaseURL string
	// Timeout bounds each request. Zero leaves requests unbounded.
	Timeout time.Duration
	// RateLimit is requests per second. Zero disables limiting.
	RateLimit float64
	RateBurst int
	Breaker   circuitbreaker.Settings
	// DictionaryTTL is how long record dictionaries are cached. Zero
	// disables the cache.
	DictionaryTTL time.Duration
}

// Client sends requests to the backend and unwraps its envelopes.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	creds   repository.Credentials
	limiter *rate.Limiter
	breaker *circuitbreaker.CircuitBreaker
	metrics *metrics.Metrics
	log     *logger.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient builds a client. creds may be nil for unauthenticated use.
func NewClient(cfg Config, creds repository.Credentials, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		http:    &http.Client{},
		creds:   creds,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	bs := cfg.Breaker
	if bs.Name == "" {
		bs.Name = "backend"
	}
	onChange := bs.OnStateChange
	bs.OnStateChange = func(name, from, to string) {
		c.log.Warn("circuit breaker state changed", "breaker", name, "from", from, "to", to)
		if c.metrics != nil {
			c.metrics.SetBreakerOpen(name, to == "open")
		}
		if onChange != nil {
			onChange(name, from, to)
		}
	}
	c.breaker = circuitbreaker.NewCircuitBreaker(bs)
	return c
}

// envelope is the backend response body. Detail covers framework-level
// validation errors that bypass the envelope.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Detail  json.RawMessage `json:"detail"`
}

type transportError struct {
	status int
}

func (e *transportError) Error() string {
	return fmt.Sprintf("backend unavailable: HTTP %d", e.status)
}

// do performs one request. The envelope code decides success and the HTTP
// status is ignored. A body that is not an envelope is a 500. A nil out
// discards the data.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return errors.Internal(fmt.Errorf("rate limiter: %w", err))
		}
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.Internal(fmt.Errorf("encode %s %s: %w", method, path, err))
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return errors.Internal(err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.creds != nil {
		if token := c.creds.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	requestID := uuid.New().String()
	req.Header.Set(HeaderXRequestID, requestID)

	var (
		status    int
		payload   []byte
		cancelled error
	)
	start := time.Now()
	err = c.breaker.Execute(func() error {
		resp, err := c.http.Do(req)
		if err != nil {
			// Cancelled calls do not count against the breaker.
			if ctx.Err() != nil {
				cancelled = err
				return nil
			}
			return err
		}
		defer resp.Body.Close()
		status = resp.StatusCode
		payload, err = io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		switch status {
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return &transportError{status: status}
		}
		return nil
	})
	if c.metrics != nil {
		c.metrics.ObserveBackend(method, status, time.Since(start))
	}
	if err == nil && cancelled != nil {
		err = cancelled
	}
	if err != nil {
		c.log.Warn("backend request failed", "method", method, "path", path, "request_id", requestID, "error", err.Error())
		return errors.Internal(fmt.Errorf("%s %s: %w", method, path, err))
	}
	c.log.Debug("backend request", "method", method, "path", path, "status", status, "request_id", requestID)

	return decode(status, payload, out)
}

func decode(status int, payload []byte, out interface{}) error {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil || (env.Code == 0 && len(env.Detail) == 0 && (env.Data == nil || string(env.Data) == "null")) {
		return errors.Internal(fmt.Errorf("malformed backend response: HTTP %d", status))
	}
	if env.Code == 0 {
		return errors.BadRequest(detailMessage(env.Detail), nil)
	}
	if env.Code != int(errors.CodeOK) {
		return errors.FromEnvelope(env.Code, env.Message)
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return errors.Internal(fmt.Errorf("decode backend data: %w", err))
	}
	return nil
}

func detailMessage(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if json.Unmarshal(raw, &items) == nil && len(items) > 0 {
		return items[0].Msg
	}
	return "invalid request"
}

func (c *Client) userID() int64 {
	if c.creds == nil {
		return 0
	}
	return c.creds.UserID()
}

// query helpers

type params url.Values

func newParams() params { return params(url.Values{}) }

func (p params) setInt(key string, v int64) params {
	if v != 0 {
		url.Values(p).Set(key, strconv.FormatInt(v, 10))
	}
	return p
}

func (p params) setStr(key, v string) params {
	if v = strings.TrimSpace(v); v != "" {
		url.Values(p).Set(key, v)
	}
	return p
}

func (p params) setBool(key string, v *bool) params {
	if v != nil {
		url.Values(p).Set(key, strconv.FormatBool(*v))
	}
	return p
}

// page always sends both paging fields.
func (p params) page(page, pageSize, defaultSize int) params {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultSize
	}
	url.Values(p).Set("page", strconv.Itoa(page))
	url.Values(p).Set("pageSize", strconv.Itoa(pageSize))
	return p
}

func (p params) values() url.Values { return url.Values(p) }

func idPath(format string, id interface{}) string {
	return fmt.Sprintf(format, url.PathEscape(fmt.Sprint(id)))
}

func (c *Client) cacheLookup(name string, hit bool) {
	if c.metrics != nil {
		c.metrics.CacheLookup(name, hit)
	}
}
