package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

const (
	actorContextKey     contextKey = "audit.actor"
	requestIDContextKey contextKey = "audit.request_id"
	defaultSalt                    = "aiguardrails"

	// RequestIDHeader carries the per-call identifier to the guardrails service.
	RequestIDHeader = "X-Request-Id"
)

// Event captures the structured details emitted to the audit log.
type Event struct {
	Name       string
	Outcome    string
	Target     string
	Capability string
	Details    map[string]any
}

// Logger provides structured helpers for writing audit events.
type Logger struct {
	logger *slog.Logger
	salt   string
}

// New constructs a Logger writing through logger. The hashing salt comes from
// AIGUARDRAILS_AUDIT_SALT so hashed identities stay stable across processes.
func New(logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	salt := strings.TrimSpace(os.Getenv("AIGUARDRAILS_AUDIT_SALT"))
	if salt == "" {
		salt = defaultSalt
	}
	return &Logger{logger: logger, salt: salt}
}

// WithActor records the hashed actor identifier on the context.
func WithActor(ctx context.Context, actor string) context.Context {
	if actor == "" {
		return ctx
	}
	return context.WithValue(ctx, actorContextKey, actor)
}

// WithRequestID stores id on the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDContextKey, id)
}

// EnsureRequestID returns a context carrying a request identifier, generating
// a UUIDv4 when none is present yet.
func EnsureRequestID(ctx context.Context) (context.Context, string) {
	if ctx == nil {
		ctx = context.Background()
	}
	if id := RequestID(ctx); id != "" {
		return ctx, id
	}
	id := uuid.NewString()
	return context.WithValue(ctx, requestIDContextKey, id), id
}

// Info records a successful audit event.
func (l *Logger) Info(ctx context.Context, event Event) {
	l.log(ctx, slog.LevelInfo, "aiguardrails.audit.info", event)
}

// Security records a security-relevant audit event.
func (l *Logger) Security(ctx context.Context, event Event) {
	l.log(ctx, slog.LevelWarn, "aiguardrails.audit.security", event)
}

// Error records an audit event that resulted in a failure.
func (l *Logger) Error(ctx context.Context, event Event) {
	l.log(ctx, slog.LevelError, "aiguardrails.audit.error", event)
}

func (l *Logger) log(ctx context.Context, level slog.Level, msg string, event Event) {
	if l == nil || l.logger == nil {
		return
	}
	attrs := []slog.Attr{
		slog.String("event", event.Name),
		slog.String("outcome", event.Outcome),
		slog.String("target", event.Target),
	}
	if event.Capability != "" {
		attrs = append(attrs, slog.String("capability", event.Capability))
	}
	if actor := Actor(ctx); actor != "" {
		attrs = append(attrs, slog.String("actor_id", actor))
	}
	if reqID := RequestID(ctx); reqID != "" {
		attrs = append(attrs, slog.String("request_id", reqID))
	}
	if len(event.Details) > 0 {
		attrs = append(attrs, slog.Any("details", event.Details))
	}

	l.logger.LogAttrs(ctx, level, msg, attrs...)
}

// HashIdentity hashes the provided identity components using SHA-256 with the
// logger's configured salt. Empty components are ignored to maintain stability.
func (l *Logger) HashIdentity(parts ...string) string {
	h := sha256.New()
	h.Write([]byte(l.salt))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		h.Write([]byte("|"))
		h.Write([]byte(trimmed))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Actor returns the actor identifier stored by WithActor.
func Actor(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	actor, _ := ctx.Value(actorContextKey).(string)
	return actor
}

// RequestID extracts the request identifier from the context, returning an
// empty string when none is present.
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if requestID, ok := ctx.Value(requestIDContextKey).(string); ok {
		return requestID
	}
	return ""
}

// SanitizeDetails copies details, coercing values into log-safe forms.
func SanitizeDetails(details map[string]any) map[string]any {
	if len(details) == 0 {
		return nil
	}
	sanitized := make(map[string]any, len(details))
	for key, value := range details {
		switch v := value.(type) {
		case nil:
			sanitized[key] = nil
		case fmt.Stringer:
			sanitized[key] = v.String()
		case error:
			sanitized[key] = v.Error()
		case string, bool, int, int32, int64, uint, uint32, uint64, float32, float64, []string, map[string]any:
			sanitized[key] = v
		default:
			sanitized[key] = fmt.Sprintf("%v", v)
		}
	}
	return sanitized
}
