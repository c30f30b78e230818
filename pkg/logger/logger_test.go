package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestLogger(buf *bytes.Buffer, level slog.Level) *slog.Logger {
	h := NewColorHandler(buf, &slog.HandlerOptions{Level: level, ReplaceAttr: RedactSecrets})
	h.color = false
	return slog.New(h)
}

func TestColorHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf, slog.LevelInfo)

	log.Info("classification succeeded", "provider", "remote_model", "labels", 3)

	line := buf.String()
	assert.Contains(t, line, "INFO  classification succeeded")
	assert.Contains(t, line, "provider=remote_model labels=3")
	assert.NotContains(t, line, "level=")
	assert.NotContains(t, line, "msg=")
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestColorHandler_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf, slog.LevelWarn)

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "WARN  shown")
}

func TestColorHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf, slog.LevelDebug).With("request_id", "r-1").WithGroup("remote")

	log.Debug("call finished", "status", 200)

	assert.Contains(t, buf.String(), "request_id=r-1 remote.status=200")
}

func TestRedactSecrets(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf, slog.LevelInfo)

	log.Info("configured", "api_token", "hf_secret", "Authorization", "Bearer hf_secret", "model", "bart")

	out := buf.String()
	assert.NotContains(t, out, "hf_secret")
	assert.Contains(t, out, "api_token="+Redacted)
	assert.Contains(t, out, "model=bart")
}

func TestColorHandler_Colors(t *testing.T) {
	var buf bytes.Buffer
	h := NewColorHandler(&buf, nil)
	h.color = true
	slog.New(h).Error("boom")

	assert.Contains(t, buf.String(), colorRed+"ERROR"+colorReset)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
