// Package tictactoe plays an N x N board where the first line of win_length marks wins.
package tictactoe

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/ai-arena/internal/agent"
	"github.com/rocketscienceinc/ai-arena/internal/entity"
	"github.com/rocketscienceinc/ai-arena/internal/game"
	"github.com/rocketscienceinc/ai-arena/internal/validation"
)

const (
	PlayerX = "X"
	PlayerO = "O"

	idPrefix = "ttt"
)

type Config struct {
	BoardSize uint32 `json:"board_size" yaml:"board-size" validate:"gte=1,lte=32"`
	WinLength uint32 `json:"win_length" yaml:"win-length" validate:"gte=1,ltefield=BoardSize"`
}

func DefaultConfig() Config {
	return Config{BoardSize: 3, WinLength: 3}
}

func (that Config) Validate() error {
	return validation.Struct(that)
}

type snapshot struct {
	Board         [][]*string `json:"board"`
	CurrentPlayer string      `json:"current_player"`
	TurnNumber    uint32      `json:"turn_number"`
	GameOver      bool        `json:"game_over"`
	Winner        *string     `json:"winner"`
	BoardSize     uint32      `json:"board_size"`
	WinLength     uint32      `json:"win_length"`
}

type board struct {
	config Config
	grid   *game.Grid
}

var _ game.Board = (*board)(nil)

func newBoard(config Config) *board {
	size := int(config.BoardSize)

	return &board{config: config, grid: game.NewGrid(size, size)}
}

func (that *board) Labels() [2]string {
	return [2]string{PlayerX, PlayerO}
}

func (that *board) MaxTurns() uint32 {
	return that.config.BoardSize * that.config.BoardSize
}

func (that *board) MoveSchema() map[string]any {
	maximum := int(that.config.BoardSize) - 1

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"row": map[string]any{
				"type":        "integer",
				"minimum":     0,
				"maximum":     maximum,
				"description": "Row index (0-indexed)",
			},
			"col": map[string]any{
				"type":        "integer",
				"minimum":     0,
				"maximum":     maximum,
				"description": "Column index (0-indexed)",
			},
		},
		"required": []string{"row", "col"},
	}
}

func (that *board) Snapshot(status game.Status) (json.RawMessage, error) {
	return json.Marshal(snapshot{
		Board:         that.grid.Board(),
		CurrentPlayer: status.CurrentPlayer,
		TurnNumber:    status.TurnNumber,
		GameOver:      status.GameOver,
		Winner:        status.Winner,
		BoardSize:     that.config.BoardSize,
		WinLength:     that.config.WinLength,
	})
}

func (that *board) Play(move any, label string) error {
	row, err := entity.UintField(move, "row")
	if err != nil {
		return err
	}

	col, err := entity.UintField(move, "col")
	if err != nil {
		return err
	}

	if err = that.grid.Place(row, col, label); err != nil {
		return fmt.Errorf("%w: row=%d, col=%d (%w)", game.ErrInvalidMove, row, col, err)
	}

	return nil
}

func (that *board) HasWon(label string) bool {
	return that.grid.CheckWin(label, int(that.config.WinLength))
}

// Game is one TicTacToe session. The first agent plays X.
type Game struct {
	session *game.Alternating
}

func New(logger *slog.Logger, config Config) *Game {
	return &Game{
		session: game.NewAlternating(logger.With("game", "TicTacToe"), game.NewID(idPrefix), newBoard(config)),
	}
}

func (that *Game) ID() string {
	return that.session.GameID()
}

func (that *Game) Play(ctx context.Context, agents []agent.Agent) entity.Result {
	return that.session.Play(ctx, agents)
}
