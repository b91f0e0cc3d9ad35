package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rocketscienceinc/ai-arena/internal/entity"
)

const (
	systemPrompt = "You are a game-playing AI. Respond ONLY with strict JSON matching the expected schema. " +
		"Do not include any text outside JSON."

	maxResponseBytes = 2 << 20
)

var errEmptyContent = errors.New("missing content")

// userPayload serialises the request the same way for every backend.
func userPayload(request entity.MoveRequest) (string, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return "", invalidRequest("encode move request: %v", err)
	}

	return string(payload), nil
}

// parseMove decodes the model's text as one JSON document.
func parseMove(content string) (any, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, invalidResponse("%v", errEmptyContent)
	}

	var move any
	if err := json.Unmarshal([]byte(trimmed), &move); err != nil {
		return nil, invalidResponse("non-json: %v", err)
	}

	return move, nil
}

func newHTTPClient(client *http.Client, timeout time.Duration) *http.Client {
	if client != nil {
		return client
	}

	return &http.Client{Timeout: timeout}
}

// postJSON sends payload and decodes a 2xx body into out. Any transport or status
// failure is an Internal error, a body that cannot be decoded is InvalidResponse.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload, out any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return invalidRequest("encode provider request: %v", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return internal("build provider request: %v", err)
	}

	request.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		request.Header.Set(key, value)
	}

	response, err := client.Do(request)
	if err != nil {
		return internal("provider request: %v", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return internal("read provider response: %v", err)
	}

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return internal("provider response status=%d body=%s", response.StatusCode, strings.TrimSpace(string(body)))
	}

	if err = json.Unmarshal(body, out); err != nil {
		return invalidResponse("decode provider response: %v", err)
	}

	return nil
}
