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

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	openAIEndpoint       = "/chat/completions"
)

var (
	ErrAPIKeyRequired = errors.New("api key is required")
	ErrModelRequired  = errors.New("model is required")
)

type OpenAIConfig struct {
	Name        string
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	Seed        *uint64
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// OpenAI talks to the chat completions API in JSON mode.
type OpenAI struct {
	name        string
	apiKey      string
	model       string
	endpointURL string
	temperature float64
	seed        *uint64
	httpClient  *http.Client
}

var _ Agent = (*OpenAI)(nil)

func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("new openai agent: %w", ErrAPIKeyRequired)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, fmt.Errorf("new openai agent: %w", ErrModelRequired)
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}

	return &OpenAI{
		name:        cfg.Name,
		apiKey:      apiKey,
		model:       model,
		endpointURL: strings.TrimRight(baseURL, "/") + openAIEndpoint,
		temperature: cfg.Temperature,
		seed:        cfg.Seed,
		httpClient:  newHTTPClient(cfg.HTTPClient, cfg.Timeout),
	}, nil
}

func (that *OpenAI) Name() string {
	return that.name
}

type openAIRequest struct {
	Model          string               `json:"model"`
	Messages       []openAIMessage      `json:"messages"`
	Temperature    float64              `json:"temperature"`
	Seed           *uint64              `json:"seed,omitempty"`
	ResponseFormat openAIResponseFormat `json:"response_format"`
}

type openAIResponseFormat struct {
	Type string `json:"type"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage,omitempty"`
}

func (that *OpenAI) ExecuteTurn(ctx context.Context, request entity.MoveRequest) (entity.MoveResponse, error) {
	user, err := userPayload(request)
	if err != nil {
		return entity.MoveResponse{}, err
	}

	payload := openAIRequest{
		Model: that.model,
		Messages: []openAIMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: user},
		},
		Temperature:    that.temperature,
		Seed:           that.seed,
		ResponseFormat: openAIResponseFormat{Type: "json_object"},
	}

	headers := map[string]string{"Authorization": "Bearer " + that.apiKey}

	var response openAIResponse
	if err = postJSON(ctx, that.httpClient, that.endpointURL, headers, payload, &response); err != nil {
		return entity.MoveResponse{}, err
	}

	if len(response.Choices) == 0 {
		return entity.MoveResponse{}, invalidResponse("%v", errEmptyContent)
	}

	move, err := parseMove(response.Choices[0].Message.Content)
	if err != nil {
		return entity.MoveResponse{}, err
	}

	var diagnostics string
	if response.Usage != nil {
		diagnostics = fmt.Sprintf("prompt_tokens=%d completion_tokens=%d",
			response.Usage.PromptTokens, response.Usage.CompletionTokens)
	}

	return entity.MoveResponse{ChosenMove: move, Diagnostics: diagnostics}, nil
}
