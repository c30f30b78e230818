// Package inference provides the hosted zero-shot provider: an HTTP inference
// endpoint reached with a bearer token.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/soundprediction/zeroshot/pkg/nlp"
	"github.com/soundprediction/zeroshot/pkg/normalizer"
	"github.com/soundprediction/zeroshot/pkg/resource"
	"github.com/soundprediction/zeroshot/pkg/types"
)

const (
	// DefaultBaseURL is the hosted inference API root.
	DefaultBaseURL = "https://api-inference.huggingface.co"
	// DefaultModel is the zero-shot model used when Config.Model is empty.
	DefaultModel = "facebook/bart-large-mnli"
	// DefaultTimeout bounds a single HTTP call, including model warm-up.
	DefaultTimeout = 60 * time.Second
)

// maxErrorBody caps how much of an unparseable error body is quoted.
const maxErrorBody = 512

// Config holds configuration for the remote provider
type Config struct {
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
	// APIToken is the stored default credential. A session token on the
	// request context takes precedence.
	APIToken string        `json:"-"`
	Timeout  time.Duration `json:"timeout"`
}

type sessionTokenKey struct{}

// WithSessionToken attaches a user-supplied token to ctx. It outranks the
// configured token for calls made with ctx and is never stored elsewhere.
func WithSessionToken(ctx context.Context, token string) context.Context {
	token = strings.TrimSpace(token)
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionTokenKey{}, token)
}

func sessionToken(ctx context.Context) string {
	token, _ := ctx.Value(sessionTokenKey{}).(string)
	return token
}

// RemoteProvider classifies through the hosted inference API
type RemoteProvider struct {
	config *Config
	client *resource.Cache[*http.Client]
	logger *slog.Logger
}

// NewRemoteProvider creates a remote provider. The HTTP client is built on
// first use and reused afterwards.
func NewRemoteProvider(config *Config, logger *slog.Logger) *RemoteProvider {
	c := Config{}
	if config != nil {
		c = *config
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	timeout := c.Timeout
	return &RemoteProvider{
		config: &c,
		client: resource.NewCache(func() (*http.Client, error) {
			return &http.Client{Timeout: timeout}, nil
		}),
		logger: logger,
	}
}

// ID implements nlp.Provider
func (p *RemoteProvider) ID() types.ProviderID {
	return types.RemoteModel
}

// Available reports whether a credential exists for ctx.
func (p *RemoteProvider) Available(ctx context.Context) bool {
	return p.token(ctx) != ""
}

func (p *RemoteProvider) token(ctx context.Context) string {
	if t := sessionToken(ctx); t != "" {
		return t
	}
	return strings.TrimSpace(p.config.APIToken)
}

// Endpoint returns the URL classification requests are posted to.
func (p *RemoteProvider) Endpoint() string {
	return strings.TrimRight(p.config.BaseURL, "/") + "/models/" + p.config.Model
}

type classifyRequest struct {
	Inputs     string          `json:"inputs"`
	Parameters classifyParams  `json:"parameters"`
	Options    classifyOptions `json:"options"`
}

type classifyParams struct {
	CandidateLabels []string `json:"candidate_labels"`
	MultiClass      bool     `json:"multi_class"`
}

type classifyOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

// Classify implements nlp.Provider
func (p *RemoteProvider) Classify(ctx context.Context, req types.ClassificationRequest) (json.RawMessage, error) {
	token := p.token(ctx)
	if token == "" {
		return nil, nlp.ErrAuthMissing
	}

	reqBody, err := json.Marshal(classifyRequest{
		Inputs: req.Text(),
		Parameters: classifyParams{
			CandidateLabels: req.Labels(),
			MultiClass:      req.AllowMultiLabel(),
		},
		Options: classifyOptions{WaitForModel: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint(), bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	client, err := p.client.Get()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", nlp.ErrProviderUnavailable, err)
	}

	start := time.Now()
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, nlp.WrapTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nlp.WrapTransportError(fmt.Errorf("failed to read response: %w", err))
	}

	p.logger.Debug("remote inference call finished",
		"model", p.config.Model,
		"status", resp.StatusCode,
		"latency_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := errorMessage(body)
		if msg == "" {
			msg = bodySnippet(body)
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, nlp.NewRemoteError(resp.StatusCode, msg)
	}

	if msg := errorMessage(body); msg != "" {
		return nil, nlp.NewRemoteError(0, msg)
	}

	if err := normalizer.Validate(body); err != nil {
		return nil, err
	}

	return body, nil
}

// Close implements nlp.Provider
func (p *RemoteProvider) Close() error {
	if p.client.Built() {
		if c, err := p.client.Get(); err == nil {
			c.CloseIdleConnections()
		}
	}
	return nil
}

// errorMessage extracts the "error" field of a JSON object body. The field may
// be a string or a list of strings.
func errorMessage(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ""
	}

	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil || len(envelope.Error) == 0 || string(envelope.Error) == "null" {
		return ""
	}

	var single string
	if err := json.Unmarshal(envelope.Error, &single); err == nil {
		return single
	}
	var many []string
	if err := json.Unmarshal(envelope.Error, &many); err == nil {
		return strings.Join(many, "; ")
	}
	return string(envelope.Error)
}

// bodySnippet quotes an unstructured error body, truncated.
func bodySnippet(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > maxErrorBody {
		trimmed = trimmed[:maxErrorBody]
	}
	return string(trimmed)
}
