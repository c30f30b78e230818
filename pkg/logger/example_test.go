package logger_test

import (
	"log/slog"

	"github.com/soundprediction/zeroshot/pkg/logger"
)

func ExampleNewDefaultLogger() {
	// Create a logger with default settings
	log := logger.NewDefaultLogger(slog.LevelDebug)

	// Log different levels
	log.Debug("This is a debug message")
	log.Info("Classification succeeded", "provider", "remote_model") // Green in terminal
	log.Warn("Provider failed, trying next", "kind", "timeout")      // Yellow in terminal
	log.Error("Keyword fallback failed")                             // Red in terminal
}

func ExampleRedactSecrets() {
	log := logger.NewDefaultLogger(slog.LevelInfo)

	// Printed as api_token=[REDACTED]
	log.Info("Remote provider configured", "model", "facebook/bart-large-mnli", "api_token", "hf_xxx")
}
