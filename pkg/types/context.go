package types

type contextKey string

// Context keys carrying request metadata to logs and telemetry.
const (
	ContextKeyRequestID     contextKey = "request_id"
	ContextKeySessionID     contextKey = "session_id"
	ContextKeyRequestSource contextKey = "request_source"
)
