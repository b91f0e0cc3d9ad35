package agent

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rocketscienceinc/ai-arena/internal/apperror"
)

// Credentials resolves provider secrets for a profile.
type Credentials interface {
	OpenAIKey(profile string) (string, error)
	AnthropicKey(profile string) (string, error)
	OllamaBaseURL(profile string) string
}

// Builder turns agent configs into ready agents.
type Builder interface {
	Build(configs []Config) ([]Agent, error)
}

type builder struct {
	logger      *slog.Logger
	credentials Credentials
	httpClient  *http.Client
	timeout     time.Duration
}

// NewBuilder creates a builder. A nil httpClient makes every backend create its own
// client with the given timeout, zero meaning none.
func NewBuilder(logger *slog.Logger, credentials Credentials, httpClient *http.Client, timeout time.Duration) Builder {
	return &builder{
		logger:      logger.With("component", "agent.builder"),
		credentials: credentials,
		httpClient:  httpClient,
		timeout:     timeout,
	}
}

// Build names agents "<Kind>_<position>", positions counted from 1.
func (that *builder) Build(configs []Config) ([]Agent, error) {
	agents := make([]Agent, 0, len(configs))

	for i, cfg := range configs {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("agent %d: %w", i+1, err)
		}

		name := fmt.Sprintf("%s_%d", cfg.Kind, i+1)

		created, err := that.build(name, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to build agent %s: %w", name, err)
		}

		that.logger.Debug("agent built", "name", name, "kind", cfg.Kind, "model", cfg.Model)
		agents = append(agents, created)
	}

	return agents, nil
}

func (that *builder) build(name string, cfg Config) (Agent, error) {
	switch cfg.Kind {
	case KindOpenAI:
		key, err := that.credentials.OpenAIKey(cfg.SecretProfile)
		if err != nil {
			return nil, err
		}

		return NewOpenAI(OpenAIConfig{
			Name:        name,
			APIKey:      key,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Seed:        cfg.Seed,
			Timeout:     that.timeout,
			HTTPClient:  that.httpClient,
		})
	case KindAnthropic:
		key, err := that.credentials.AnthropicKey(cfg.SecretProfile)
		if err != nil {
			return nil, err
		}

		return NewAnthropic(AnthropicConfig{
			Name:        name,
			APIKey:      key,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     that.timeout,
			HTTPClient:  that.httpClient,
		})
	case KindOllama:
		return NewOllama(OllamaConfig{
			Name:        name,
			BaseURL:     that.credentials.OllamaBaseURL(cfg.SecretProfile),
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Seed:        cfg.Seed,
			Timeout:     that.timeout,
			HTTPClient:  that.httpClient,
		})
	case KindRandom:
		return NewRandom(name, cfg.Seed), nil
	default:
		return nil, fmt.Errorf("%w: %s", apperror.ErrUnknownAgentKind, cfg.Kind)
	}
}
