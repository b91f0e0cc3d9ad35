package agent

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/rocketscienceinc/ai-arena/internal/entity"
)

// Random is a local opponent that needs no provider. It samples each schema
// property from its integer bounds or string enum and, when the state carries
// a board, only picks cells and columns that are still free.
type Random struct {
	name string

	mu  sync.Mutex
	rng *rand.Rand
}

var _ Agent = (*Random)(nil)

func NewRandom(name string, seed *uint64) *Random {
	var source rand.Source
	if seed != nil {
		source = rand.NewPCG(*seed, *seed)
	} else {
		source = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}

	return &Random{name: name, rng: rand.New(source)}
}

func (that *Random) Name() string {
	return that.name
}

type boardState struct {
	Board [][]*string `json:"board"`
}

// boardOf returns the grid of a board game snapshot. Round based states and
// snapshots that are not a JSON object have none, and the schema is sampled.
func boardOf(raw json.RawMessage) [][]*string {
	var state boardState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil
	}

	return state.Board
}

func (that *Random) ExecuteTurn(_ context.Context, request entity.MoveRequest) (entity.MoveResponse, error) {
	properties, ok := request.ExpectedMoveSchema["properties"].(map[string]any)
	if !ok || len(properties) == 0 {
		return entity.MoveResponse{}, invalidRequest("expected move schema has no properties")
	}

	board := boardOf(request.State)

	that.mu.Lock()
	defer that.mu.Unlock()

	_, hasRow := properties["row"]
	_, hasCol := properties["col"]
	_, hasColumn := properties["column"]

	switch {
	case hasRow && hasCol && len(board) > 0:
		if move, found := that.pickCell(board); found {
			return entity.MoveResponse{ChosenMove: move, Diagnostics: "random cell"}, nil
		}
	case hasColumn && len(board) > 0:
		if move, found := that.pickColumn(board); found {
			return entity.MoveResponse{ChosenMove: move, Diagnostics: "random column"}, nil
		}
	}

	keys := make([]string, 0, len(properties))
	for key := range properties {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	move := make(map[string]any, len(keys))
	for _, key := range keys {
		property, _ := properties[key].(map[string]any)

		value, err := that.sample(key, property)
		if err != nil {
			return entity.MoveResponse{}, err
		}
		move[key] = value
	}

	return entity.MoveResponse{ChosenMove: move, Diagnostics: "random sample"}, nil
}

func (that *Random) pickCell(board [][]*string) (map[string]any, bool) {
	type cell struct{ row, col int }

	free := make([]cell, 0)
	for row, cells := range board {
		for col, value := range cells {
			if value == nil {
				free = append(free, cell{row: row, col: col})
			}
		}
	}

	if len(free) == 0 {
		return nil, false
	}

	chosen := free[that.rng.IntN(len(free))]

	return map[string]any{"row": float64(chosen.row), "col": float64(chosen.col)}, true
}

func (that *Random) pickColumn(board [][]*string) (map[string]any, bool) {
	free := make([]int, 0, len(board[0]))
	for col, value := range board[0] {
		if value == nil {
			free = append(free, col)
		}
	}

	if len(free) == 0 {
		return nil, false
	}

	return map[string]any{"column": float64(free[that.rng.IntN(len(free))])}, true
}

func (that *Random) sample(key string, property map[string]any) (any, error) {
	switch options := property["enum"].(type) {
	case []any:
		if len(options) > 0 {
			return options[that.rng.IntN(len(options))], nil
		}
	case []string:
		if len(options) > 0 {
			return options[that.rng.IntN(len(options))], nil
		}
	}

	if property["type"] == "integer" {
		minimum, okMin := number(property["minimum"])
		maximum, okMax := number(property["maximum"])
		if !okMin || !okMax || maximum < minimum {
			return nil, invalidRequest("property '%s' has no usable bounds", key)
		}

		return float64(minimum + that.rng.IntN(maximum-minimum+1)), nil
	}

	return nil, invalidRequest("property '%s' cannot be sampled", key)
}

func number(value any) (int, bool) {
	switch typed := value.(type) {
	case int:
		return typed, true
	case float64:
		return int(typed), true
	default:
		return 0, false
	}
}
