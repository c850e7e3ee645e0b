package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"
)

// Supported provider identifiers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// DefaultTimeout bounds a generation call when the caller does not set one.
const DefaultTimeout = 30 * time.Second

var (
	generateDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "prepview",
		Subsystem: "llm",
		Name:      "generate_duration_seconds",
		Help:      "Duration of outbound LLM generation calls",
	}, []string{"provider"})

	generateFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prepview",
		Subsystem: "llm",
		Name:      "generate_failures_total",
		Help:      "Number of failed LLM generation calls",
	}, []string{"provider"})
)

// Config defines construction options for the LLM client.
type Config struct {
	Provider      string
	APIKey        string
	BaseURL       string
	Model         string
	MaxConcurrent int64
	Logger        zerolog.Logger
}

type provider interface {
	generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// Client performs rate-limited generation calls against a single provider. A
// weighted semaphore caps the number of in-flight calls; callers beyond
// capacity queue in FIFO order rather than failing.
type Client struct {
	provider     provider
	providerName string
	permits      *semaphore.Weighted
	tracer       trace.Tracer
	logger       zerolog.Logger
}

// New builds a client for the configured provider. It fails with
// ErrNotConfigured when no credential is present so that a misconfigured
// deployment surfaces at startup instead of on the first evaluation.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}

	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}

	logger := cfg.Logger.With().Str("component", "llm_client").Logger()

	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	var backend provider
	switch name {
	case ProviderGemini:
		backend = newGeminiProvider(cfg)
	case ProviderOpenAI, "":
		name = ProviderOpenAI
		backend = newOpenAIProvider(cfg)
	default:
		logger.Warn().Str("provider", name).Msg("unknown llm provider, defaulting to openai")
		name = ProviderOpenAI
		backend = newOpenAIProvider(cfg)
	}

	return &Client{
		provider:     backend,
		providerName: name,
		permits:      semaphore.NewWeighted(cfg.MaxConcurrent),
		tracer:       otel.Tracer("github.com/prepview/prepview-api/pkg/llm"),
		logger:       logger,
	}, nil
}

// Generate performs one generation call under the concurrency permit. The
// permit guards the entire outbound call and is released on every exit path.
func (c *Client) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	if err := c.permits.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("acquire llm permit: %w", err)
	}
	defer c.permits.Release(1)

	ctx, span := c.tracer.Start(ctx, "llm.generate", trace.WithAttributes(
		attribute.String("provider", c.providerName),
	))
	defer span.End()

	callCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	start := time.Now()
	text, err := c.provider.generate(callCtx, prompt, opts)
	generateDuration.WithLabelValues(c.providerName).Observe(time.Since(start).Seconds())

	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			err = fmt.Errorf("%w after %s", ErrTimeout, opts.Timeout)
		}
		generateFailures.WithLabelValues(c.providerName).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Error().Err(err).Msg("generation call failed")
		return "", err
	}

	c.logger.Debug().Int("response_chars", len(text)).Msg("generation call succeeded")
	return text, nil
}
