// Package secrets reads provider credentials from a TOML file and resolves them
// against the environment.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/rocketscienceinc/ai-arena/internal/apperror"
)

const (
	defaultProfile       = "default"
	defaultOllamaBaseURL = "http://localhost:11434"

	envOpenAIKey     = "OPENAI_API_KEY"
	envAnthropicKey  = "ANTHROPIC_API_KEY"
	envOllamaBaseURL = "OLLAMA_BASE_URL"
)

var ErrInvalidFormat = errors.New("invalid secrets file format")

// LookupEnv matches os.LookupEnv.
type LookupEnv func(key string) (string, bool)

type file struct {
	Secrets section `toml:"secrets"`
}

type section struct {
	OpenAI    map[string]apiKeySecret  `toml:"openai"`
	Anthropic map[string]apiKeySecret  `toml:"anthropic"`
	Ollama    map[string]baseURLSecret `toml:"ollama"`
}

type apiKeySecret struct {
	APIKey string `toml:"api_key"`
}

type baseURLSecret struct {
	BaseURL string `toml:"base_url"`
}

// Manager holds the parsed secrets file. A missing file gives an empty manager
// that resolves from the environment only.
type Manager struct {
	logger    *slog.Logger
	path      string
	secrets   section
	lookupEnv LookupEnv
}

// DefaultPath is $XDG_CONFIG_HOME/ai_arena/secrets.toml, falling back to
// ~/.config and then to a relative .ai_arena directory.
func DefaultPath() string {
	if configDir, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok && configDir != "" {
		return filepath.Join(configDir, "ai_arena", "secrets.toml")
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "ai_arena", "secrets.toml")
	}

	return filepath.Join(".ai_arena", "secrets.toml")
}

// Load reads path, or DefaultPath when path is empty. lookupEnv defaults to os.LookupEnv.
func Load(logger *slog.Logger, path string, lookupEnv LookupEnv) (*Manager, error) {
	if path == "" {
		path = DefaultPath()
	}

	manager := Empty(logger, lookupEnv)
	manager.path = path
	log := manager.logger

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug("secrets file not found, using environment only", "path", path)
		return manager, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read secrets file metadata: %w", err)
	}

	if info.Mode().Perm()&0o007 != 0 {
		log.Warn("secrets file is readable by others, consider chmod 600", "path", path)
	}

	var parsed file
	if _, err = toml.DecodeFile(path, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}

	manager.secrets = parsed.Secrets

	return manager, nil
}

// Empty returns a manager without a file, resolving from lookupEnv only.
func Empty(logger *slog.Logger, lookupEnv LookupEnv) *Manager {
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}

	return &Manager{logger: logger.With("component", "secrets"), lookupEnv: lookupEnv}
}

// Path is the secrets file consulted, empty for an environment only manager.
func (that *Manager) Path() string {
	return that.path
}

// OpenAIKey resolves profile, then OPENAI_API_KEY, then the default profile.
func (that *Manager) OpenAIKey(profile string) (string, error) {
	key, ok := resolve(that.secrets.OpenAI, profile, that.lookupEnv, envOpenAIKey, apiKeyOf)
	if !ok {
		return "", fmt.Errorf("%w: OpenAI API key not found. Set %s environment variable or configure a secret profile",
			apperror.ErrSecretNotFound, envOpenAIKey)
	}

	return key, nil
}

// AnthropicKey resolves profile, then ANTHROPIC_API_KEY, then the default profile.
func (that *Manager) AnthropicKey(profile string) (string, error) {
	key, ok := resolve(that.secrets.Anthropic, profile, that.lookupEnv, envAnthropicKey, apiKeyOf)
	if !ok {
		return "", fmt.Errorf("%w: Anthropic API key not found. Set %s environment variable or configure a secret profile",
			apperror.ErrSecretNotFound, envAnthropicKey)
	}

	return key, nil
}

// OllamaBaseURL resolves like the API keys and never fails.
func (that *Manager) OllamaBaseURL(profile string) string {
	baseURL, ok := resolve(that.secrets.Ollama, profile, that.lookupEnv, envOllamaBaseURL, baseURLOf)
	if !ok {
		return defaultOllamaBaseURL
	}

	return baseURL
}

func apiKeyOf(secret apiKeySecret) string   { return secret.APIKey }
func baseURLOf(secret baseURLSecret) string { return secret.BaseURL }

func resolve[T any](profiles map[string]T, profile string, lookupEnv LookupEnv, envKey string, value func(T) string) (string, bool) {
	if profile != "" {
		if secret, ok := profiles[profile]; ok {
			return value(secret), true
		}
	}

	if fromEnv, ok := lookupEnv(envKey); ok {
		return fromEnv, true
	}

	if secret, ok := profiles[defaultProfile]; ok {
		return value(secret), true
	}

	return "", false
}
