package nlp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
	"github.com/soundprediction/zeroshot/pkg/types"
)

// Attempt outcomes
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// AttemptRecord represents a single provider attempt
type AttemptRecord struct {
	ID            string    `parquet:"id"`
	Timestamp     time.Time `parquet:"timestamp"`
	RequestID     string    `parquet:"request_id"`
	SessionID     string    `parquet:"session_id"`
	RequestSource string    `parquet:"request_source"`
	Provider      string    `parquet:"provider"`
	Outcome       string    `parquet:"outcome"`
	ErrorKind     string    `parquet:"error_kind"`
	LatencyMs     int64     `parquet:"latency_ms"`
	LabelCount    int       `parquet:"label_count"`
	MultiLabel    bool      `parquet:"multi_label"`
}

// ParquetAttemptTracker handles persistence of provider attempts to Parquet files
type ParquetAttemptTracker struct {
	outputDir string
	logger    *slog.Logger
	mu        sync.Mutex
	buffer    []AttemptRecord
	batchSize int
}

// NewAttemptTracker creates a new attempt tracker writing to a directory
func NewAttemptTracker(outputDir string, logger *slog.Logger) (*ParquetAttemptTracker, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create attempt tracking directory: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ParquetAttemptTracker{
		outputDir: outputDir,
		logger:    logger,
		buffer:    make([]AttemptRecord, 0, 100),
		batchSize: 100,
	}, nil
}

// Record adds an attempt to the tracker. Request metadata is read from ctx.
func (t *ParquetAttemptTracker) Record(ctx context.Context, provider types.ProviderID, req types.ClassificationRequest, latency time.Duration, err error) error {
	record := AttemptRecord{
		ID:         uuid.New().String(),
		Timestamp:  time.Now().UTC(),
		Provider:   provider.String(),
		Outcome:    OutcomeSuccess,
		LatencyMs:  latency.Milliseconds(),
		LabelCount: len(req.Labels()),
		MultiLabel: req.AllowMultiLabel(),
	}
	if err != nil {
		record.Outcome = OutcomeFailure
		record.ErrorKind = ErrorKind(err)
	}

	if v, ok := ctx.Value(types.ContextKeyRequestID).(string); ok {
		record.RequestID = v
	}
	if v, ok := ctx.Value(types.ContextKeySessionID).(string); ok {
		record.SessionID = v
	}
	if v, ok := ctx.Value(types.ContextKeyRequestSource).(string); ok {
		record.RequestSource = v
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.buffer = append(t.buffer, record)

	if len(t.buffer) >= t.batchSize {
		return t.flush()
	}

	return nil
}

// Flush writes any buffered records
func (t *ParquetAttemptTracker) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.flush()
}

// flush writes the current buffer to a new Parquet file
// Caller must hold the lock
func (t *ParquetAttemptTracker) flush() error {
	if len(t.buffer) == 0 {
		return nil
	}

	now := time.Now()
	filename := fmt.Sprintf("attempts_%s_%d.parquet", now.Format("20060102_150405"), now.UnixNano())
	path := filepath.Join(t.outputDir, filename)

	if err := parquet.WriteFile(path, t.buffer); err != nil {
		return fmt.Errorf("failed to write attempts parquet file: %w", err)
	}

	t.buffer = t.buffer[:0]
	return nil
}

// TrackingProvider wraps a Provider to record every attempt
type TrackingProvider struct {
	provider Provider
	tracker  *ParquetAttemptTracker
}

// NewTrackingProvider creates a wrapper provider
func NewTrackingProvider(provider Provider, tracker *ParquetAttemptTracker) *TrackingProvider {
	return &TrackingProvider{
		provider: provider,
		tracker:  tracker,
	}
}

// ID implements Provider
func (p *TrackingProvider) ID() types.ProviderID {
	return p.provider.ID()
}

// Available implements Availability by delegating to the wrapped provider
func (p *TrackingProvider) Available(ctx context.Context) bool {
	return IsAvailable(ctx, p.provider)
}

// Classify implements Provider
func (p *TrackingProvider) Classify(ctx context.Context, req types.ClassificationRequest) (json.RawMessage, error) {
	start := time.Now()
	raw, err := p.provider.Classify(ctx, req)

	if recErr := p.tracker.Record(ctx, p.provider.ID(), req, time.Since(start), err); recErr != nil {
		p.tracker.logger.Warn("failed to record provider attempt", "provider", p.provider.ID(), "error", recErr)
	}

	return raw, err
}

// Close implements Provider. The tracker is shared and flushed by its owner.
func (p *TrackingProvider) Close() error {
	return p.provider.Close()
}
