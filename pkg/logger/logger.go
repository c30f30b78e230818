// Package logger provides a colourised slog handler for terminal output and
// the redaction hook used by every logger in the module.
package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorGray   = "\033[90m"
)

// Redacted replaces the value of sensitive attributes.
const Redacted = "[REDACTED]"

// sensitiveKeys are matched case-insensitively as substrings of attribute keys.
var sensitiveKeys = []string{"token", "authorization", "api_key", "apikey", "password", "secret"}

// RedactSecrets is a slog ReplaceAttr hook that hides credential values.
func RedactSecrets(groups []string, a slog.Attr) slog.Attr {
	key := strings.ToLower(a.Key)
	for _, s := range sensitiveKeys {
		if strings.Contains(key, s) {
			return slog.String(a.Key, Redacted)
		}
	}
	return a
}

// ColorHandler writes "time LEVEL message key=value..." lines, colouring the
// level. Attribute formatting is delegated to slog.TextHandler.
type ColorHandler struct {
	out   io.Writer
	color bool
	level slog.Leveler
	mu    *sync.Mutex
	buf   *bytes.Buffer
	inner slog.Handler
}

// NewColorHandler creates a ColorHandler writing to w. Colour is disabled when
// NO_COLOR is set.
func NewColorHandler(w io.Writer, opts *slog.HandlerOptions) *ColorHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	level := opts.Level
	if level == nil {
		level = slog.LevelInfo
	}

	userReplace := opts.ReplaceAttr
	buf := &bytes.Buffer{}
	inner := slog.NewTextHandler(buf, &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: opts.AddSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Time, level and message are rendered by Handle.
			if len(groups) == 0 {
				switch a.Key {
				case slog.TimeKey, slog.LevelKey, slog.MessageKey:
					return slog.Attr{}
				}
			}
			if userReplace != nil {
				return userReplace(groups, a)
			}
			return a
		},
	})

	_, noColor := os.LookupEnv("NO_COLOR")
	return &ColorHandler{
		out:   w,
		color: !noColor,
		level: level,
		mu:    &sync.Mutex{},
		buf:   buf,
		inner: inner,
	}
}

// Enabled implements slog.Handler
func (h *ColorHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler
func (h *ColorHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.buf.Reset()
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}
	attrs := strings.TrimSpace(h.buf.String())

	var line strings.Builder
	line.WriteString(r.Time.Format("15:04:05.000"))
	line.WriteByte(' ')
	line.WriteString(h.paint(levelColor(r.Level), padLevel(r.Level)))
	line.WriteByte(' ')
	line.WriteString(r.Message)
	if attrs != "" {
		line.WriteByte(' ')
		line.WriteString(h.paint(colorGray, attrs))
	}
	line.WriteByte('\n')

	_, err := io.WriteString(h.out, line.String())
	return err
}

// WithAttrs implements slog.Handler
func (h *ColorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.inner = h.inner.WithAttrs(attrs)
	return &clone
}

// WithGroup implements slog.Handler
func (h *ColorHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.inner = h.inner.WithGroup(name)
	return &clone
}

func (h *ColorHandler) paint(color, s string) string {
	if !h.color {
		return s
	}
	return color + s + colorReset
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return colorRed
	case level >= slog.LevelWarn:
		return colorYellow
	case level >= slog.LevelInfo:
		return colorGreen
	default:
		return colorBlue
	}
}

func padLevel(level slog.Level) string {
	s := level.String()
	for len(s) < 5 {
		s += " "
	}
	return s
}

// NewDefaultLogger returns a colour logger on stderr with secrets redacted.
func NewDefaultLogger(level slog.Level) *slog.Logger {
	return slog.New(NewColorHandler(os.Stderr, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: RedactSecrets,
	}))
}

// ParseLevel maps "debug", "info", "warn" and "error" to a slog.Level.
// Unknown values give info.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}
