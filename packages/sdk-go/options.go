package sdk

import (
	"log/slog"
	"net/http"
	"time"
)

// Option customises a Client at construction.
type Option func(*options)

type options struct {
	timeout    time.Duration
	httpClient *http.Client
	transport  http.RoundTripper
	logger     *slog.Logger
	metrics    *Metrics
	userAgent  string
}

// WithTimeout overrides DefaultTimeout. The timeout bounds the whole request,
// connect through body read.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithHTTPClient supplies the *http.Client used for every call. The client's
// own Timeout is left untouched; the configured timeout still applies.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithTransport replaces the default instrumented transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// WithLogger sets the logger for request logs and audit events. Without it
// the client logs nothing.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics records request counts and latencies on m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}
