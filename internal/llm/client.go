// Package llm wraps the text-generation collaborator.
//
// The client is intentionally narrow: one prompt in, free-form text
// out. Callers own parsing and must tolerate any output shape; see
// ExtractArray and ExtractObject for pulling embedded JSON out of
// model responses.
package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"
)

// Provider names accepted by NewClient.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// ErrMissingAPIKey indicates no API key was configured or found in the
// provider's environment variable.
var ErrMissingAPIKey = errors.New("llm: api key not set")

// Client generates text from a prompt.
type Client interface {
	// Generate returns the raw model output for prompt. The output is
	// unstructured text; no format is guaranteed.
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config configures the generation client.
type Config struct {
	// Provider is "anthropic" or "openai".
	Provider string

	// Model is the provider model identifier.
	Model string

	// APIKey authenticates the provider. When empty, the provider's
	// standard environment variable is used.
	APIKey string

	// BaseURL overrides the endpoint for OpenAI-compatible servers.
	BaseURL string

	// MaxTokens is the output budget per call (default: 2000).
	MaxTokens int

	// Temperature is the sampling temperature.
	Temperature float64

	// Timeout bounds each call (default: 30s).
	Timeout time.Duration

	// RequestsPerSecond rate-limits outbound calls (0 = unlimited).
	RequestsPerSecond float64
}

// client calls a langchaingo model with rate limiting and timeouts.
type client struct {
	model       llms.Model
	maxTokens   int
	temperature float64
	timeout     time.Duration
	limiter     *rate.Limiter
}

// NewClient creates a generation client for the configured provider.
func NewClient(cfg Config) (Client, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("llm: model is required")
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	model, err := newModel(cfg)
	if err != nil {
		return nil, err
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &client{
		model:       model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		limiter:     limiter,
	}, nil
}

func newModel(cfg Config) (llms.Model, error) {
	switch cfg.Provider {
	case ProviderAnthropic:
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if apiKey == "" {
			return nil, ErrMissingAPIKey
		}
		return anthropic.New(
			anthropic.WithToken(apiKey),
			anthropic.WithModel(cfg.Model),
		)
	case ProviderOpenAI:
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			return nil, ErrMissingAPIKey
		}
		opts := []openai.Option{
			openai.WithToken(apiKey),
			openai.WithModel(cfg.Model),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		return openai.New(opts...)
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
}

// Generate calls the model once, bounded by the configured timeout.
func (c *client) Generate(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("llm: rate limit wait: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt,
		llms.WithMaxTokens(c.maxTokens),
		llms.WithTemperature(c.temperature),
	)
	if err != nil {
		return "", fmt.Errorf("llm: generation failed: %w", err)
	}
	return out, nil
}
