package tenon

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
	"time"

	"go.uber.org/zap"
)

// Checker is implemented by *Client; the relay API and CLI depend on it.
type Checker interface {
	CheckURLWithOptions(ctx context.Context, target string, opts Options) (Result, error)
	CheckSrcWithOptions(ctx context.Context, target string, opts Options) (Result, error)
	CheckFragmentWithOptions(ctx context.Context, target string, opts Options) (Result, error)
	AnalyzeWithOptions(ctx context.Context, target string, opts Options) (Result, error)
}

var _ Checker = (*Client)(nil)

// Client posts checks to the Tenon.io API. Safe for concurrent use.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// Option customizes a Client at construction.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used for per-exchange events.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New validates cfg and returns a Client. An empty key is rejected here
// rather than on first use.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.Key = strings.TrimSpace(cfg.Key)
	if cfg.Key == "" {
		return nil, ErrMissingKey
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if _, err := url.ParseRequestURI(cfg.Endpoint); err != nil {
		return nil, fmt.Errorf("tenon: invalid endpoint %q: %w", cfg.Endpoint, err)
	}
	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Endpoint returns the configured service URL.
func (c *Client) Endpoint() string { return c.cfg.Endpoint }

func (c *Client) CheckURL(ctx context.Context, target string) (Result, error) {
	return c.CheckURLWithOptions(ctx, target, nil)
}

func (c *Client) CheckURLWithOptions(ctx context.Context, target string, opts Options) (Result, error) {
	if target == "" {
		return Result{}, invalidInput(msgNoURL)
	}
	return c.validate(ctx, KindURL, url.Values{"url": {target}}, opts)
}

func (c *Client) CheckSrc(ctx context.Context, target string) (Result, error) {
	return c.CheckSrcWithOptions(ctx, target, nil)
}

func (c *Client) CheckSrcWithOptions(ctx context.Context, target string, opts Options) (Result, error) {
	if target == "" {
		return Result{}, invalidInput(msgNoSrc)
	}
	return c.validate(ctx, KindSrc, url.Values{"src": {target}}, opts)
}

func (c *Client) CheckFragment(ctx context.Context, target string) (Result, error) {
	return c.CheckFragmentWithOptions(ctx, target, nil)
}

func (c *Client) CheckFragmentWithOptions(ctx context.Context, target string, opts Options) (Result, error) {
	if target == "" {
		return Result{}, invalidInput(msgNoSrc)
	}
	return c.validate(ctx, KindFragment, url.Values{"src": {target}, "fragment": {"1"}}, opts)
}

// Analyze guesses whether target is a URL, a full page or a fragment and
// routes to the matching check.
func (c *Client) Analyze(ctx context.Context, target string) (Result, error) {
	return c.AnalyzeWithOptions(ctx, target, nil)
}

func (c *Client) AnalyzeWithOptions(ctx context.Context, target string, opts Options) (Result, error) {
	kind, err := Classify(target)
	if err != nil {
		return Result{}, err
	}
	return c.Check(ctx, kind, target, opts)
}

// Check runs the operation selected by kind. KindAuto behaves like Analyze.
func (c *Client) Check(ctx context.Context, kind Kind, target string, opts Options) (Result, error) {
	switch kind {
	case KindURL:
		return c.CheckURLWithOptions(ctx, target, opts)
	case KindSrc:
		return c.CheckSrcWithOptions(ctx, target, opts)
	case KindFragment:
		return c.CheckFragmentWithOptions(ctx, target, opts)
	default:
		return c.AnalyzeWithOptions(ctx, target, opts)
	}
}

// reserved fields are owned by the check operation, never by caller options.
var reserved = map[string]bool{"url": true, "src": true, "fragment": true, "endpoint": true}

// buildForm merges target fields, caller options and the API key in that
// order. The key always comes from configuration.
func (c *Client) buildForm(fields url.Values, opts Options) url.Values {
	form := url.Values{}
	for k, v := range fields {
		form[k] = v
	}
	for k, v := range opts {
		if reserved[k] {
			c.logger.Debug("tenon_option_ignored", zap.String("field", k))
			continue
		}
		form.Set(k, v)
	}
	form.Set("key", c.cfg.Key)
	return form
}

func (c *Client) validate(ctx context.Context, kind Kind, fields url.Values, opts Options) (Result, error) {
	form := c.buildForm(fields, opts)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return Result{}, &TransportError{Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	latency := time.Since(start).Seconds() * 1000 // ms
	if err != nil {
		c.logger.Warn("tenon_check_failed",
			zap.String("kind", kind.String()),
			zap.String("endpoint", c.cfg.Endpoint),
			zap.Float64("latency_ms", latency),
			zap.Error(err),
		)
		return Result{}, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, &TransportError{Err: fmt.Errorf("read body: %w", err)}
	}

	result, err := decodeResult(body)
	if err != nil {
		c.logger.Warn("tenon_decode_failed",
			zap.String("kind", kind.String()),
			zap.Int("http_status", resp.StatusCode),
			zap.Error(err),
		)
		return Result{}, &DecodeError{Err: err}
	}

	if !result.ok() {
		status := result.Status()
		msg, _ := result["message"].(string)
		c.logger.Info("tenon_check_rejected",
			zap.String("kind", kind.String()),
			zap.Int("status", status),
			zap.String("message", msg),
		)
		return Result{}, &ServiceError{Status: status, Message: msg}
	}

	c.logger.Info("tenon_check",
		zap.String("kind", kind.String()),
		zap.Int("http_status", resp.StatusCode),
		zap.Float64("latency_ms", latency),
	)
	return result, nil
}

// decodeResult keeps numbers as json.Number so pass-through fields are not
// rounded through float64. Trailing data after the object is rejected.
func decodeResult(body []byte) (Result, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var result Result
	if err := dec.Decode(&result); err != nil {
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, errors.New("unexpected data after JSON object")
	}
	if result == nil {
		// a literal JSON null
		return nil, errors.New("empty response body")
	}
	return result, nil
}
