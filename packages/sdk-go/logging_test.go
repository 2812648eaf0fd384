package sdk

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, record slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, record.Clone())
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h *recordingHandler) WithGroup(string) slog.Handler { return h }

func (h *recordingHandler) find(msg string) (slog.Record, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range h.records {
		if r.Message == msg {
			return r, true
		}
	}
	return slog.Record{}, false
}

func attrsOf(record slog.Record) map[string]any {
	attrs := map[string]any{}
	record.Attrs(func(attr slog.Attr) bool {
		attrs[attr.Key] = attr.Value.Any()
		return true
	})
	return attrs
}

func TestSuccessEmitsAuditInfo(t *testing.T) {
	handler := &recordingHandler{}
	server := newStubServer(t, http.StatusOK, `{"allowed": true}`)
	client := newTestClient(t, server.URL, WithLogger(slog.New(handler)))

	_, err := client.PromptCheck(context.Background(), "hello")
	require.NoError(t, err)

	record, ok := handler.find("aiguardrails.audit.info")
	require.True(t, ok, "expected audit info record")
	attrs := attrsOf(record)
	assert.Equal(t, "sdk.request", attrs["event"])
	assert.Equal(t, outcomeSuccess, attrs["outcome"])
	assert.Equal(t, PromptCheckPath, attrs["target"])
	assert.Equal(t, "prompt_check", attrs["capability"])
	assert.Equal(t, server.last(t).Header.Get("X-Request-Id"), attrs["request_id"])
	assert.NotEmpty(t, client.actorID)
	assert.Equal(t, client.actorID, attrs["actor_id"])

	_, ok = handler.find("guardrails request completed")
	assert.True(t, ok, "expected debug completion record")
}

func TestForbiddenEmitsSecurityEvent(t *testing.T) {
	handler := &recordingHandler{}
	server := newStubServer(t, http.StatusForbidden, `forbidden`)
	client := newTestClient(t, server.URL, WithLogger(slog.New(handler)))

	_, err := client.PromptCheck(context.Background(), "x")
	require.Error(t, err)

	record, ok := handler.find("aiguardrails.audit.security")
	require.True(t, ok, "expected security audit record")
	assert.Equal(t, slog.LevelWarn, record.Level)
	assert.Equal(t, outcomeRequestError, attrsOf(record)["outcome"])
}

func TestServerErrorEmitsAuditError(t *testing.T) {
	handler := &recordingHandler{}
	server := newStubServer(t, http.StatusBadGateway, `upstream down`)
	client := newTestClient(t, server.URL, WithLogger(slog.New(handler)))

	_, err := client.OutputFilter(context.Background(), "x")
	require.Error(t, err)

	_, ok := handler.find("aiguardrails.audit.error")
	assert.True(t, ok, "expected audit error record")
	_, ok = handler.find("guardrails request failed")
	assert.True(t, ok, "expected warn record")
}

func TestLogsNeverContainSecret(t *testing.T) {
	handler := &recordingHandler{}
	server := newStubServer(t, http.StatusUnauthorized, `invalid credentials`)
	client := newTestClient(t, server.URL, WithLogger(slog.New(handler)))

	_, err := client.PromptCheck(context.Background(), "x")
	require.Error(t, err)

	handler.mu.Lock()
	defer handler.mu.Unlock()
	require.NotEmpty(t, handler.records)
	for _, record := range handler.records {
		var sb strings.Builder
		sb.WriteString(record.Message)
		record.Attrs(func(attr slog.Attr) bool {
			sb.WriteString(attr.String())
			return true
		})
		assert.NotContains(t, sb.String(), "s3cret")
		assert.NotContains(t, sb.String(), "app-123")
	}
}

func TestCallerRequestIDIsPropagated(t *testing.T) {
	server := newStubServer(t, http.StatusOK, `{}`)
	client := newTestClient(t, server.URL)

	ctx := ContextWithRequestID(context.Background(), "req-fixed")
	_, err := client.PromptCheck(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "req-fixed", server.last(t).Header.Get("X-Request-Id"))
}
