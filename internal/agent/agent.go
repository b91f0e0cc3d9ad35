// Package agent holds the move-producing capability the games talk to and the
// concrete model backends behind it.
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/rocketscienceinc/ai-arena/internal/apperror"
	"github.com/rocketscienceinc/ai-arena/internal/entity"
	"github.com/rocketscienceinc/ai-arena/internal/validation"
)

// Agent produces a move for a request. Implementations may block on network I/O.
type Agent interface {
	Name() string
	ExecuteTurn(ctx context.Context, request entity.MoveRequest) (entity.MoveResponse, error)
}

type Kind string

const (
	KindOpenAI    Kind = "OpenAI"
	KindAnthropic Kind = "Anthropic"
	KindOllama    Kind = "Ollama"
	KindRandom    Kind = "Random"
)

var kinds = []Kind{KindOpenAI, KindAnthropic, KindOllama, KindRandom}

// ParseKind matches a kind name case-insensitively.
func ParseKind(value string) (Kind, error) {
	trimmed := strings.TrimSpace(value)
	for _, kind := range kinds {
		if strings.EqualFold(trimmed, string(kind)) {
			return kind, nil
		}
	}

	return "", fmt.Errorf("%w: %s. Must be OpenAI, Anthropic, Ollama or Random", apperror.ErrUnknownAgentKind, value)
}

func (that *Kind) UnmarshalText(text []byte) error {
	kind, err := ParseKind(string(text))
	if err != nil {
		return err
	}

	*that = kind

	return nil
}

// Config describes one agent of a match.
type Config struct {
	Kind          Kind    `json:"kind" validate:"required,oneof=OpenAI Anthropic Ollama Random"`
	Model         string  `json:"model" validate:"required_unless=Kind Random"`
	Temperature   float64 `json:"temperature" validate:"gte=0,lte=2"`
	Seed          *uint64 `json:"seed,omitempty"`
	SecretProfile string  `json:"secret_profile,omitempty" validate:"omitempty,max=64"`
}

func (that Config) Validate() error {
	return validation.Struct(that)
}
