package agent

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rocketscienceinc/ai-arena/internal/entity"
)

const ollamaEndpoint = "/api/chat"

var ErrBaseURLRequired = errors.New("base url is required")

type OllamaConfig struct {
	Name        string
	BaseURL     string
	Model       string
	Temperature float64
	Seed        *uint64
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// Ollama talks to a local or remote ollama server with format=json.
type Ollama struct {
	name        string
	model       string
	endpointURL string
	temperature float64
	seed        *uint64
	httpClient  *http.Client
}

var _ Agent = (*Ollama)(nil)

func NewOllama(cfg OllamaConfig) (*Ollama, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("new ollama agent: %w", ErrBaseURLRequired)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, fmt.Errorf("new ollama agent: %w", ErrModelRequired)
	}

	return &Ollama{
		name:        cfg.Name,
		model:       model,
		endpointURL: strings.TrimRight(baseURL, "/") + ollamaEndpoint,
		temperature: cfg.Temperature,
		seed:        cfg.Seed,
		httpClient:  newHTTPClient(cfg.HTTPClient, cfg.Timeout),
	}, nil
}

func (that *Ollama) Name() string {
	return that.name
}

type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   string          `json:"format"`
	Options  ollamaOptions   `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	Seed        *uint64 `json:"seed,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaResponse struct {
	Message         ollamaMessage `json:"message"`
	PromptEvalCount int           `json:"prompt_eval_count"`
	EvalCount       int           `json:"eval_count"`
	Error           string        `json:"error,omitempty"`
}

func (that *Ollama) ExecuteTurn(ctx context.Context, request entity.MoveRequest) (entity.MoveResponse, error) {
	user, err := userPayload(request)
	if err != nil {
		return entity.MoveResponse{}, err
	}

	payload := ollamaRequest{
		Model: that.model,
		Messages: []ollamaMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: user},
		},
		Stream:  false,
		Format:  "json",
		Options: ollamaOptions{Temperature: that.temperature, Seed: that.seed},
	}

	var response ollamaResponse
	if err = postJSON(ctx, that.httpClient, that.endpointURL, nil, payload, &response); err != nil {
		return entity.MoveResponse{}, err
	}

	if response.Error != "" {
		return entity.MoveResponse{}, internal("ollama chat request failed: %s", response.Error)
	}

	move, err := parseMove(response.Message.Content)
	if err != nil {
		return entity.MoveResponse{}, err
	}

	diagnostics := fmt.Sprintf("prompt_eval_count=%d eval_count=%d", response.PromptEvalCount, response.EvalCount)

	return entity.MoveResponse{ChosenMove: move, Diagnostics: diagnostics}, nil
}
