package game

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/ai-arena/internal/agent"
	"github.com/rocketscienceinc/ai-arena/internal/entity"
)

const playersPerGame = 2

// WrongAgentCount is the session error for anything but two agents.
func WrongAgentCount(agents []agent.Agent) (string, bool) {
	if len(agents) == playersPerGame {
		return "", false
	}

	return fmt.Sprintf("expected %d agents, got %d", playersPerGame, len(agents)), true
}

// WinnerName formats a winner as "<agent> (<label>)".
func WinnerName(agentName, label string) string {
	return fmt.Sprintf("%s (%s)", agentName, label)
}

// Alternating drives a board where players take single turns one after another.
// A failed or rejected turn consumes the turn number and leaves the same player
// to move again.
type Alternating struct {
	logger *slog.Logger
	gameID string
	board  Board
	status Status
	stats  *entity.GameStatistics
}

func NewAlternating(logger *slog.Logger, gameID string, board Board) *Alternating {
	return &Alternating{
		logger: logger.With("component", "game.alternating", "game_id", gameID),
		gameID: gameID,
		board:  board,
		status: Status{CurrentPlayer: board.Labels()[0]},
		stats:  entity.NewGameStatistics(),
	}
}

func (that *Alternating) GameID() string {
	return that.gameID
}

// Play runs the session to completion. The first agent plays the first label.
// It returns early, without a winner, once ctx is done.
func (that *Alternating) Play(ctx context.Context, agents []agent.Agent) entity.Result {
	log := that.logger.With("method", "Play")

	if message, wrong := WrongAgentCount(agents); wrong {
		return entity.Result{Stats: *that.stats, Error: message}
	}

	start := time.Now()
	labels := that.board.Labels()
	maxTurns := that.board.MaxTurns()

	for !that.status.GameOver && that.status.TurnNumber < maxTurns {
		if ctx.Err() != nil {
			log.Warn("session interrupted", "turn", that.status.TurnNumber, "error", ctx.Err())
			break
		}

		index := 0
		if that.status.CurrentPlayer == labels[1] {
			index = 1
		}

		current := agents[index]

		if !that.executeTurn(ctx, current, that.status.CurrentPlayer) {
			continue
		}

		if that.board.HasWon(that.status.CurrentPlayer) {
			winner := that.status.CurrentPlayer
			that.status.GameOver = true
			that.status.Winner = &winner
			that.stats.Winner = WinnerName(current.Name(), winner)
			break
		}

		if that.status.TurnNumber >= maxTurns {
			that.status.GameOver = true
			that.stats.Draw = true
			break
		}

		that.status.CurrentPlayer = labels[1-index]
	}

	that.stats.TotalDuration = time.Since(start)

	log.Info("session finished",
		"winner", that.stats.Winner, "draw", that.stats.Draw,
		"turns", that.stats.TotalTurns(), "invalid_moves", that.stats.InvalidMoves)

	return entity.Result{Winner: that.stats.Winner, Stats: *that.stats}
}

// executeTurn records one attempt and reports whether the move was applied.
func (that *Alternating) executeTurn(ctx context.Context, player agent.Agent, label string) bool {
	turnStart := time.Now()
	that.status.TurnNumber++

	stateBefore := that.snapshot()

	request := entity.MoveRequest{
		TurnIndex:          that.status.TurnNumber,
		GameID:             that.gameID,
		State:              stateBefore,
		ExpectedMoveSchema: that.board.MoveSchema(),
	}

	record := entity.TurnRecord{
		TurnNumber:  that.status.TurnNumber,
		Player:      player.Name(),
		StateBefore: stateBefore,
		StateAfter:  stateBefore,
	}

	response, err := player.ExecuteTurn(ctx, request)
	record.TimeTaken = time.Since(turnStart)

	if err != nil {
		record.ErrorMessage = fmt.Sprintf("Agent error: %v", err)
		that.reject(record)
		return false
	}

	record.MoveMade = response.ChosenMove
	record.Diagnostics = response.Diagnostics

	if err = that.board.Play(response.ChosenMove, label); err != nil {
		record.ErrorMessage = err.Error()
		that.reject(record)
		return false
	}

	record.MoveValid = true
	record.StateAfter = that.snapshot()
	that.stats.AddTurn(record)

	return true
}

func (that *Alternating) reject(record entity.TurnRecord) {
	that.logger.Warn("turn rejected",
		"turn", record.TurnNumber, "player", record.Player, "error", record.ErrorMessage)
	that.stats.AddTurn(record)
}

func (that *Alternating) snapshot() json.RawMessage {
	state, err := that.board.Snapshot(that.status)
	if err != nil {
		that.logger.Error("failed to snapshot state", "error", err)
		return json.RawMessage("null")
	}

	return state
}
