// Package graphql sends operations to the upstream GraphQL endpoint and
// classifies what comes back.
package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"success-mcp/internal/logger"

	"github.com/google/uuid"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"golang.org/x/time/rate"
)

const maxErrorBody = 512

type Request struct {
	OperationName string         `json:"operationName,omitempty"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// KeyFunc returns the bearer key for a call.
type KeyFunc func(ctx context.Context) (string, error)

type Options struct {
	Endpoint   string
	Key        KeyFunc
	Timeout    time.Duration
	RateLimit  float64 // requests per second, <= 0 disables
	Burst      int
	HTTPClient *http.Client
	Debug      *DebugLog
	Metrics    *Metrics
}

type Client struct {
	endpoint string
	key      KeyFunc
	client   *http.Client
	limiter  *rate.Limiter
	debug    *DebugLog
	metrics  *Metrics
}

func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return &Client{
		endpoint: opts.Endpoint,
		key:      opts.Key,
		client:   hc,
		limiter:  limiter,
		debug:    opts.Debug,
		metrics:  opts.Metrics,
	}
}

// Do sends req and decodes its data into out (which may be nil). A GraphQL
// errors array yields a *ResponseError after any partial data is decoded.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	start := time.Now()
	id := uuid.NewString()
	status, err := c.do(ctx, id, req, out)

	elapsed := time.Since(start)
	c.metrics.observe(req.OperationName, outcome(err), elapsed)
	entry := debugEntry{
		Time: start, RequestID: id, Operation: req.OperationName, Variables: req.Variables,
		Status: status, DurationMS: elapsed.Milliseconds(),
	}
	if err != nil {
		entry.Error = err.Error()
		logger.Warn("graphql.request", "op", req.OperationName, "request_id", id, "status", status, "err", err)
	} else {
		logger.Debug("graphql.request", "op", req.OperationName, "request_id", id, "ms", elapsed.Milliseconds())
	}
	c.debug.write(entry)
	return err
}

func (c *Client) do(ctx context.Context, id string, req Request, out any) (int, error) {
	if err := CheckSyntax(req.Query); err != nil {
		return 0, err
	}
	if c.key == nil {
		return 0, ErrNoAPIKey
	}
	key, err := c.key(ctx)
	if err != nil || key == "" {
		return 0, ErrNoAPIKey
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limit: %w", err)
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return 0, fmt.Errorf("encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+key)
	httpReq.Header.Set("X-Request-Id", id)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("graphql call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, httpError(resp.StatusCode, body)
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []Error         `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return resp.StatusCode, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	hasData := len(envelope.Data) > 0 && !bytes.Equal(envelope.Data, []byte("null"))
	if hasData && out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("%w: %v", ErrDecode, err)
		}
	}
	if len(envelope.Errors) > 0 {
		return resp.StatusCode, &ResponseError{Errors: envelope.Errors, HasData: hasData}
	}
	if !hasData {
		return resp.StatusCode, fmt.Errorf("%w: no data", ErrDecode)
	}
	return resp.StatusCode, nil
}

func httpError(status int, body []byte) *HTTPError {
	he := &HTTPError{StatusCode: status}

	var doc struct {
		Errors  []Error `json:"errors"`
		Message string  `json:"message"`
		Error   string  `json:"error"`
	}
	if json.Unmarshal(body, &doc) == nil {
		for _, e := range doc.Errors {
			he.Messages = append(he.Messages, e.Message)
		}
		if doc.Message != "" {
			he.Messages = append(he.Messages, doc.Message)
		}
		if doc.Error != "" {
			he.Messages = append(he.Messages, doc.Error)
		}
		he.Parsed = len(he.Messages) > 0
	}
	if !he.Parsed {
		text := string(body)
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody] + "..."
		}
		he.Body = text
	}
	return he
}

// CheckSyntax parses doc as an executable GraphQL document.
func CheckSyntax(doc string) error {
	if _, err := parser.ParseQuery(&ast.Source{Input: doc}); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	return nil
}

// IsNoAPIKey reports whether err means no key was available.
func IsNoAPIKey(err error) bool { return errors.Is(err, ErrNoAPIKey) }
