// Package sdk is the Go client for the aiguardrails service. A Client carries
// an application's credentials on every request and exposes the prompt check,
// output filter and agent plan endpoints.
//
//	client, err := sdk.NewClient("http://localhost:8080", "appId", "secret")
//	if err != nil {
//		return err
//	}
//	result, err := client.PromptCheck(ctx, "hello")
//
// Failures are typed: *TransportError, *RequestError and *DecodeError.
// Nothing is retried.
package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/SecureAI-Team/aiguardrails/internal/audit"
)

const (
	PromptCheckPath  = "/v1/guardrails/prompt-check"
	OutputFilterPath = "/v1/guardrails/output-filter"
	AgentPlanPath    = "/v1/agent/plan"

	maxResponseBodyBytes = int64(10 << 20) // 10 MiB

	auditEventRequest = "sdk.request"
)

var tracer = otel.Tracer("github.com/SecureAI-Team/aiguardrails/packages/sdk-go")

// Client is safe for concurrent use. It holds no mutable state once built.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
	audit      *audit.Logger
	actorID    string
	metrics    *Metrics
	userAgent  string
}

// RawResponse is an unclassified HTTP response as returned by Exchange.
type RawResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	RequestID  string
}

// NewClient builds a Client for baseURL. One trailing slash is stripped from
// baseURL. No network I/O happens here.
func NewClient(baseURL, appID, secret string, opts ...Option) (*Client, error) {
	return NewClientFromConfig(Config{BaseURL: baseURL, AppID: appID, Secret: secret}, opts...)
}

// NewClientFromConfig is NewClient taking a Config. A zero Timeout selects
// DefaultTimeout; WithTimeout takes precedence over cfg.Timeout.
func NewClientFromConfig(cfg Config, opts ...Option) (*Client, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.timeout != 0 {
		cfg.Timeout = o.timeout
	}
	cfg = cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	httpClient := o.httpClient
	if httpClient == nil {
		rt := o.transport
		if rt == nil {
			var err error
			rt, err = NewTransport(TransportConfig{})
			if err != nil {
				return nil, err
			}
		}
		httpClient = &http.Client{Transport: rt, Timeout: cfg.Timeout}
	}

	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	auditLogger := audit.New(logger)

	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     logger,
		audit:      auditLogger,
		actorID:    auditLogger.HashIdentity(cfg.AppID),
		metrics:    o.metrics,
		userAgent:  o.userAgent,
	}, nil
}

// ContextWithRequestID makes calls made with ctx send id as X-Request-Id
// instead of a generated identifier.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return audit.WithRequestID(ctx, id)
}

// Config returns a copy of the client's configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// PromptCheck submits prompt to the prompt firewall.
func (c *Client) PromptCheck(ctx context.Context, prompt string) (any, error) {
	return c.post(ctx, "prompt_check", PromptCheckPath, map[string]any{"prompt": prompt})
}

// OutputFilter submits model output for filtering.
func (c *Client) OutputFilter(ctx context.Context, output string) (any, error) {
	return c.post(ctx, "output_filter", OutputFilterPath, map[string]any{"output": output})
}

// AgentPlan requests a plan for prompt. Tool descriptors are passed through
// opaquely; omitting them sends an empty list.
func (c *Client) AgentPlan(ctx context.Context, prompt string, tools ...any) (any, error) {
	if tools == nil {
		tools = []any{}
	}
	return c.post(ctx, "agent_plan", AgentPlanPath, map[string]any{"prompt": prompt, "tools": tools})
}

// Exchange POSTs body as JSON to BaseURL+path with the auth headers and
// returns the response whatever its status. Only transport failures are
// reported as errors.
func (c *Client) Exchange(ctx context.Context, path string, body any) (*RawResponse, error) {
	ctx, requestID := audit.EnsureRequestID(ctx)
	url := c.cfg.BaseURL + path

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("aiguardrails: failed to encode request body: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	req.Header = AuthHeaders(c.cfg)
	req.Header.Set(audit.RequestIDHeader, requestID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return nil, &TransportError{URL: url, StatusCode: resp.StatusCode, Err: err}
	}

	return &RawResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
		RequestID:  requestID,
	}, nil
}

func (c *Client) post(ctx context.Context, operation, path string, body any) (any, error) {
	ctx, requestID := audit.EnsureRequestID(ctx)
	ctx = audit.WithActor(ctx, c.actorID)
	ctx, span := tracer.Start(ctx, "aiguardrails."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("aiguardrails.operation", operation),
			attribute.String("aiguardrails.path", path),
			attribute.String("aiguardrails.request_id", requestID),
		),
	)
	defer span.End()

	start := time.Now()
	result, status, err := c.roundTrip(ctx, path, body)
	elapsed := time.Since(start)

	outcome := classify(err)
	c.metrics.observe(operation, outcome, elapsed)
	if status != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	c.record(ctx, operation, path, outcome, status, elapsed, err)

	return result, err
}

func (c *Client) roundTrip(ctx context.Context, path string, body any) (any, int, error) {
	resp, err := c.Exchange(ctx, path, body)
	if err != nil {
		var transportErr *TransportError
		if errors.As(err, &transportErr) {
			return nil, transportErr.StatusCode, err
		}
		return nil, 0, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, &RequestError{
			StatusCode: resp.StatusCode,
			Body:       string(resp.Body),
			RequestID:  resp.RequestID,
		}
	}

	var out any
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, resp.StatusCode, &DecodeError{Body: string(resp.Body), Err: err}
	}
	return out, resp.StatusCode, nil
}

func classify(err error) string {
	var (
		requestErr   *RequestError
		decodeErr    *DecodeError
		transportErr *TransportError
	)
	switch {
	case err == nil:
		return outcomeSuccess
	case errors.As(err, &requestErr):
		return outcomeRequestError
	case errors.As(err, &decodeErr):
		return outcomeDecodeError
	case errors.As(err, &transportErr):
		return outcomeTransportError
	default:
		return "error"
	}
}

func (c *Client) record(ctx context.Context, operation, path, outcome string, status int, elapsed time.Duration, err error) {
	details := map[string]any{"duration_ms": elapsed.Milliseconds()}
	if status != 0 {
		details["status_code"] = status
	}
	if err != nil {
		details["error"] = err
	}
	event := audit.Event{
		Name:       auditEventRequest,
		Outcome:    outcome,
		Target:     path,
		Capability: operation,
		Details:    audit.SanitizeDetails(details),
	}

	if err == nil {
		c.logger.DebugContext(ctx, "guardrails request completed",
			slog.String("operation", operation),
			slog.Int("status_code", status),
			slog.Duration("elapsed", elapsed),
		)
		c.audit.Info(ctx, event)
		return
	}

	c.logger.WarnContext(ctx, "guardrails request failed",
		slog.String("operation", operation),
		slog.String("outcome", outcome),
		slog.Any("error", err),
	)
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		c.audit.Security(ctx, event)
		return
	}
	c.audit.Error(ctx, event)
}
