package tictactoe

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/ai-arena/internal/agent"
	"github.com/rocketscienceinc/ai-arena/internal/agent/agenttest"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func cell(row, col int) agenttest.Response {
	return agenttest.Move(map[string]any{"row": row, "col": col})
}

type decodedState struct {
	Board         [][]*string `json:"board"`
	CurrentPlayer string      `json:"current_player"`
	TurnNumber    uint32      `json:"turn_number"`
	BoardSize     uint32      `json:"board_size"`
	WinLength     uint32      `json:"win_length"`
}

func decode(t *testing.T, raw json.RawMessage) decodedState {
	t.Helper()

	var state decodedState
	require.NoError(t, json.Unmarshal(raw, &state))

	return state
}

func occupied(state decodedState) int {
	count := 0
	for _, cells := range state.Board {
		for _, value := range cells {
			if value != nil {
				count++
			}
		}
	}

	return count
}

func TestGame_Play(t *testing.T) {
	ctx := context.Background()

	t.Run("First agent wins along the top row", func(t *testing.T) {
		// Given: agent one plays the top row, agent two plays the middle row
		one := agenttest.NewScripted("OpenAI_1", cell(0, 0), cell(0, 1), cell(0, 2))
		two := agenttest.NewScripted("Anthropic_2", cell(1, 0), cell(1, 1))
		game := New(testLogger(), DefaultConfig())

		// When: playing the game
		result := game.Play(ctx, []agent.Agent{one, two})

		// Then: agent one wins as X after turn 5, every turn valid
		assert.Equal(t, "OpenAI_1 (X)", result.Winner)
		assert.Empty(t, result.Error)
		assert.False(t, result.Stats.Draw)
		require.Len(t, result.Stats.Turns, 5)
		assert.Equal(t, 0, result.Stats.InvalidMoves)

		for i, turn := range result.Stats.Turns {
			assert.Equal(t, uint32(i+1), turn.TurnNumber)
			assert.True(t, turn.MoveValid)
			assert.Equal(t, occupied(decode(t, turn.StateBefore))+1, occupied(decode(t, turn.StateAfter)))
		}

		assert.Equal(t, "OpenAI_1", result.Stats.Turns[4].Player)
	})

	t.Run("Full board without a line is a draw", func(t *testing.T) {
		// Given: a classic drawn game
		one := agenttest.NewScripted("A", cell(0, 0), cell(0, 2), cell(1, 0), cell(2, 1), cell(2, 2))
		two := agenttest.NewScripted("B", cell(0, 1), cell(1, 1), cell(1, 2), cell(2, 0))

		// When: playing the game
		result := New(testLogger(), DefaultConfig()).Play(ctx, []agent.Agent{one, two})

		// Then: it is a draw after nine turns
		assert.Empty(t, result.Winner)
		assert.True(t, result.Stats.Draw)
		assert.True(t, result.IsDraw())
		assert.Len(t, result.Stats.Turns, 9)
	})

	t.Run("Rejected move keeps the same player and leaves state untouched", func(t *testing.T) {
		// Given: agent one first plays off the board, then a legal cell
		one := agenttest.NewScripted("A", cell(5, 5), cell(0, 0), cell(0, 1), cell(0, 2))
		two := agenttest.NewScripted("B", cell(1, 1), cell(2, 2))

		// When: playing the game
		result := New(testLogger(), DefaultConfig()).Play(ctx, []agent.Agent{one, two})

		// Then: turn 1 is invalid with identical snapshots and turn 2 is agent one again
		require.GreaterOrEqual(t, len(result.Stats.Turns), 2)
		first := result.Stats.Turns[0]
		assert.False(t, first.MoveValid)
		assert.Contains(t, first.ErrorMessage, "invalid move: row=5, col=5")
		assert.Equal(t, []byte(first.StateBefore), []byte(first.StateAfter))

		second := result.Stats.Turns[1]
		assert.Equal(t, "A", second.Player)
		assert.Equal(t, uint32(2), second.TurnNumber)
		assert.True(t, second.MoveValid)

		assert.Equal(t, 1, result.Stats.InvalidMoves)
		assert.Equal(t, "A (X)", result.Winner)
	})

	t.Run("Occupied cell is rejected", func(t *testing.T) {
		// Given: agent two tries the cell agent one just took
		one := agenttest.NewScripted("A", cell(1, 1), cell(0, 0), cell(2, 2), cell(0, 2), cell(1, 2))
		two := agenttest.NewScripted("B", cell(1, 1), cell(0, 1), cell(2, 0), cell(1, 0), cell(2, 1))

		// When: playing the game
		result := New(testLogger(), DefaultConfig()).Play(ctx, []agent.Agent{one, two})

		// Then: turn 2 is invalid because the cell is taken
		require.GreaterOrEqual(t, len(result.Stats.Turns), 2)
		assert.False(t, result.Stats.Turns[1].MoveValid)
		assert.Contains(t, result.Stats.Turns[1].ErrorMessage, "cell is already occupied")
	})

	t.Run("Missing field is an invalid move", func(t *testing.T) {
		// Given: agent one forgets the column
		one := agenttest.NewScripted("A", agenttest.Move(map[string]any{"row": 1}))
		two := agenttest.NewScripted("B")
		game := New(testLogger(), Config{BoardSize: 1, WinLength: 1})

		// When: playing a 1x1 game
		result := game.Play(ctx, []agent.Agent{one, two})

		// Then: the single turn is invalid and the game is incomplete
		require.Len(t, result.Stats.Turns, 1)
		assert.False(t, result.Stats.Turns[0].MoveValid)
		assert.Contains(t, result.Stats.Turns[0].ErrorMessage, "'col'")
		assert.Equal(t, map[string]any{"row": 1}, result.Stats.Turns[0].MoveMade)
		assert.True(t, result.IsIncomplete())
	})

	t.Run("Failing agent stalls on the same player until the turn budget runs out", func(t *testing.T) {
		// Given: agent one fails every time
		failure := agenttest.Fail(errors.New("boom"))
		one := agenttest.NewScripted("A", failure, failure, failure, failure, failure, failure, failure, failure, failure)
		two := agenttest.NewScripted("B")

		// When: playing the game
		result := New(testLogger(), DefaultConfig()).Play(ctx, []agent.Agent{one, two})

		// Then: all nine turns are agent one's failures and agent two is never asked
		require.Len(t, result.Stats.Turns, 9)
		for _, turn := range result.Stats.Turns {
			assert.Equal(t, "A", turn.Player)
			assert.False(t, turn.MoveValid)
			assert.Nil(t, turn.MoveMade)
			assert.Equal(t, "Agent error: boom", turn.ErrorMessage)
		}
		assert.Equal(t, 9, result.Stats.InvalidMoves)
		assert.Equal(t, 0, two.Calls())
		assert.True(t, result.IsIncomplete())
	})

	t.Run("Wrong agent count fails without turns", func(t *testing.T) {
		// Given: a single agent
		one := agenttest.NewScripted("A")

		// When: playing the game
		result := New(testLogger(), DefaultConfig()).Play(ctx, []agent.Agent{one})

		// Then: the session error is set and nothing was played
		assert.Equal(t, "expected 2 agents, got 1", result.Error)
		assert.Empty(t, result.Stats.Turns)
		assert.Equal(t, 0, one.Calls())
	})

	t.Run("Cancelled context stops the session", func(t *testing.T) {
		// Given: a context that is already done
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		one := agenttest.NewScripted("A", cell(0, 0))
		two := agenttest.NewScripted("B")

		// When: playing the game
		result := New(testLogger(), DefaultConfig()).Play(cancelled, []agent.Agent{one, two})

		// Then: no turn is played
		assert.Empty(t, result.Stats.Turns)
		assert.True(t, result.IsIncomplete())
	})

	t.Run("Request carries state and move schema", func(t *testing.T) {
		// Given: agents that win quickly
		one := agenttest.NewScripted("A", cell(0, 0), cell(0, 1), cell(0, 2))
		two := agenttest.NewScripted("B", cell(1, 0), cell(1, 1))
		game := New(testLogger(), DefaultConfig())

		// When: playing the game
		game.Play(ctx, []agent.Agent{one, two})

		// Then: the first request describes an empty board for X
		requests := one.Requests()
		require.NotEmpty(t, requests)
		first := requests[0]
		assert.Equal(t, uint32(1), first.TurnIndex)
		assert.Equal(t, game.ID(), first.GameID)
		assert.Regexp(t, `^ttt_[0-9a-f]{8}$`, first.GameID)

		state := decode(t, first.State)
		assert.Equal(t, "X", state.CurrentPlayer)
		assert.Equal(t, uint32(1), state.TurnNumber)
		assert.Equal(t, uint32(3), state.BoardSize)
		assert.Equal(t, 0, occupied(state))

		properties, ok := first.ExpectedMoveSchema["properties"].(map[string]any)
		require.True(t, ok)
		row, ok := properties["row"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, 2, row["maximum"])

		// And: agent two sees O to move on turn 2
		second := decode(t, two.Requests()[0].State)
		assert.Equal(t, "O", second.CurrentPlayer)
		assert.Equal(t, uint32(2), second.TurnNumber)
	})

	t.Run("Custom board and win length", func(t *testing.T) {
		// Given: a 5x5 board where four on a diagonal win
		one := agenttest.NewScripted("A", cell(0, 0), cell(1, 1), cell(2, 2), cell(3, 3))
		two := agenttest.NewScripted("B", cell(0, 4), cell(1, 4), cell(2, 4))

		// When: playing the game
		result := New(testLogger(), Config{BoardSize: 5, WinLength: 4}).Play(ctx, []agent.Agent{one, two})

		// Then: agent one wins on turn 7
		assert.Equal(t, "A (X)", result.Winner)
		assert.Len(t, result.Stats.Turns, 7)
	})
}

func TestConfig_Validate(t *testing.T) {
	t.Run("Default config is valid", func(t *testing.T) {
		require.NoError(t, DefaultConfig().Validate())
	})

	t.Run("Win length cannot exceed the board", func(t *testing.T) {
		// Given: a win length longer than the board
		config := Config{BoardSize: 3, WinLength: 4}

		// Then: validation fails
		require.Error(t, config.Validate())
	})
}
