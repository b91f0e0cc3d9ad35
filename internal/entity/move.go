package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

var (
	ErrMissingField = errors.New("missing or invalid field")
	ErrNotAnObject  = errors.New("move is not an object")
)

// MoveRequest - what an agent receives for a single turn.
type MoveRequest struct {
	TurnIndex          uint32          `json:"turn_index"`
	GameID             string          `json:"game_id"`
	State              json.RawMessage `json:"state"`
	ExpectedMoveSchema map[string]any  `json:"expected_move_schema"`
}

// MoveResponse - what an agent answers. ChosenMove is an arbitrary JSON document,
// each game decides how to read it.
type MoveResponse struct {
	ChosenMove  any    `json:"chosen_move"`
	Diagnostics string `json:"diagnostics,omitempty"`
}

// UintField reads a non-negative integer from a decoded JSON object.
func UintField(move any, key string) (int, error) {
	obj, ok := move.(map[string]any)
	if !ok {
		return 0, fmt.Errorf("%w: want '%s'", ErrNotAnObject, key)
	}

	var number float64

	switch value := obj[key].(type) {
	case float64:
		number = value
	case json.Number:
		parsed, err := value.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: '%s'", ErrMissingField, key)
		}
		number = parsed
	case int:
		number = float64(value)
	default:
		return 0, fmt.Errorf("%w: '%s'", ErrMissingField, key)
	}

	if number < 0 || number != math.Trunc(number) || number > math.MaxInt32 {
		return 0, fmt.Errorf("%w: '%s'", ErrMissingField, key)
	}

	return int(number), nil
}

// StringField reads a string from a decoded JSON object.
func StringField(move any, key string) (string, error) {
	obj, ok := move.(map[string]any)
	if !ok {
		return "", fmt.Errorf("%w: want '%s'", ErrNotAnObject, key)
	}

	value, ok := obj[key].(string)
	if !ok {
		return "", fmt.Errorf("%w: '%s'", ErrMissingField, key)
	}

	return value, nil
}

// FormatMove renders a move as "key: value" pairs, sorted by key.
func FormatMove(move any) string {
	obj, ok := move.(map[string]any)
	if !ok {
		if move == nil {
			return "-"
		}
		raw, err := json.Marshal(move)
		if err != nil {
			return fmt.Sprint(move)
		}
		return string(raw)
	}

	keys := make([]string, 0, len(obj))
	for key := range obj {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		switch value := obj[key].(type) {
		case string:
			parts = append(parts, key+": "+value)
		default:
			raw, _ := json.Marshal(value)
			parts = append(parts, key+": "+string(raw))
		}
	}

	return strings.Join(parts, ", ")
}
