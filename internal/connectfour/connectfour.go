// Package connectfour plays a gravity board: pieces drop to the lowest free row.
package connectfour

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
	PlayerRed    = "Red"
	PlayerYellow = "Yellow"

	idPrefix = "c4"
)

type Config struct {
	Rows      uint32 `json:"rows" yaml:"rows" validate:"gte=1,lte=32"`
	Cols      uint32 `json:"cols" yaml:"cols" validate:"gte=1,lte=32"`
	WinLength uint32 `json:"win_length" yaml:"win-length" validate:"gte=1"`
}

func DefaultConfig() Config {
	return Config{Rows: 6, Cols: 7, WinLength: 4}
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
	Rows          uint32      `json:"rows"`
	Cols          uint32      `json:"cols"`
	WinLength     uint32      `json:"win_length"`
}

type board struct {
	config Config
	grid   *game.Grid
}

var _ game.Board = (*board)(nil)

func newBoard(config Config) *board {
	return &board{config: config, grid: game.NewGrid(int(config.Rows), int(config.Cols))}
}

func (that *board) Labels() [2]string {
	return [2]string{PlayerRed, PlayerYellow}
}

func (that *board) MaxTurns() uint32 {
	return that.config.Rows * that.config.Cols
}

func (that *board) MoveSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"column": map[string]any{
				"type":        "integer",
				"minimum":     0,
				"maximum":     int(that.config.Cols) - 1,
				"description": "Column index (0-indexed) where to drop the piece",
			},
		},
		"required": []string{"column"},
	}
}

func (that *board) Snapshot(status game.Status) (json.RawMessage, error) {
	return json.Marshal(snapshot{
		Board:         that.grid.Board(),
		CurrentPlayer: status.CurrentPlayer,
		TurnNumber:    status.TurnNumber,
		GameOver:      status.GameOver,
		Winner:        status.Winner,
		Rows:          that.config.Rows,
		Cols:          that.config.Cols,
		WinLength:     that.config.WinLength,
	})
}

func (that *board) Play(move any, label string) error {
	column, err := entity.UintField(move, "column")
	if err != nil {
		return err
	}

	if _, err = that.grid.Drop(column, label); err != nil {
		return fmt.Errorf("%w: column=%d (%w)", game.ErrInvalidMove, column, err)
	}

	return nil
}

func (that *board) HasWon(label string) bool {
	return that.grid.CheckWin(label, int(that.config.WinLength))
}

// Game is one ConnectFour session. The first agent plays Red.
type Game struct {
	session *game.Alternating
}

func New(logger *slog.Logger, config Config) *Game {
	return &Game{
		session: game.NewAlternating(logger.With("game", "ConnectFour"), game.NewID(idPrefix), newBoard(config)),
	}
}

func (that *Game) ID() string {
	return that.session.GameID()
}

func (that *Game) Play(ctx context.Context, agents []agent.Agent) entity.Result {
	return that.session.Play(ctx, agents)
}
