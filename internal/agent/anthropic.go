package agent

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rocketscienceinc/ai-arena/internal/entity"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	anthropicEndpoint       = "/v1/messages"
	anthropicVersion        = "2023-06-01"
	anthropicMaxTokens      = 1024
)

type AnthropicConfig struct {
	Name        string
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// Anthropic talks to the messages API. The API has no seed parameter.
type Anthropic struct {
	name        string
	apiKey      string
	model       string
	endpointURL string
	temperature float64
	httpClient  *http.Client
}

var _ Agent = (*Anthropic)(nil)

func NewAnthropic(cfg AnthropicConfig) (*Anthropic, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("new anthropic agent: %w", ErrAPIKeyRequired)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, fmt.Errorf("new anthropic agent: %w", ErrModelRequired)
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}

	return &Anthropic{
		name:        cfg.Name,
		apiKey:      apiKey,
		model:       model,
		endpointURL: strings.TrimRight(baseURL, "/") + anthropicEndpoint,
		temperature: cfg.Temperature,
		httpClient:  newHTTPClient(cfg.HTTPClient, cfg.Timeout),
	}, nil
}

func (that *Anthropic) Name() string {
	return that.name
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature float64            `json:"temperature"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      *struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage,omitempty"`
}

func (that *Anthropic) ExecuteTurn(ctx context.Context, request entity.MoveRequest) (entity.MoveResponse, error) {
	user, err := userPayload(request)
	if err != nil {
		return entity.MoveResponse{}, err
	}

	payload := anthropicRequest{
		Model:       that.model,
		MaxTokens:   anthropicMaxTokens,
		System:      systemPrompt,
		Messages:    []anthropicMessage{{Role: "user", Content: user}},
		Temperature: that.temperature,
	}

	headers := map[string]string{
		"x-api-key":         that.apiKey,
		"anthropic-version": anthropicVersion,
	}

	var response anthropicResponse
	if err = postJSON(ctx, that.httpClient, that.endpointURL, headers, payload, &response); err != nil {
		return entity.MoveResponse{}, err
	}

	var text strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	move, err := parseMove(text.String())
	if err != nil {
		return entity.MoveResponse{}, err
	}

	var diagnostics string
	if response.Usage != nil {
		diagnostics = fmt.Sprintf("input_tokens=%d output_tokens=%d stop_reason=%s",
			response.Usage.InputTokens, response.Usage.OutputTokens, response.StopReason)
	}

	return entity.MoveResponse{ChosenMove: move, Diagnostics: diagnostics}, nil
}
