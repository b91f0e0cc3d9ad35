package entity

import (
	"encoding/json"
	"time"
)

// TurnRecord - one attempted move. Appended once, never changed afterwards.
type TurnRecord struct {
	TurnNumber   uint32          `json:"turn_number"`
	Player       string          `json:"player"`
	MoveMade     any             `json:"move_made"`
	TimeTaken    time.Duration   `json:"time_taken"`
	MoveValid    bool            `json:"move_valid"`
	ErrorMessage string          `json:"error_message,omitempty"`
	StateBefore  json.RawMessage `json:"state_before"`
	StateAfter   json.RawMessage `json:"state_after"`
	Diagnostics  string          `json:"diagnostics,omitempty"`
}

// GameStatistics - the audit trail of a single session.
type GameStatistics struct {
	Turns         []TurnRecord  `json:"turns"`
	TotalDuration time.Duration `json:"total_duration"`
	InvalidMoves  int           `json:"invalid_moves"`
	Winner        string        `json:"winner,omitempty"`
	Draw          bool          `json:"draw"`
}

func NewGameStatistics() *GameStatistics {
	return &GameStatistics{
		Turns: make([]TurnRecord, 0),
	}
}

// AddTurn appends the record and counts it as invalid when the caller says so.
func (that *GameStatistics) AddTurn(record TurnRecord) {
	if !record.MoveValid {
		that.InvalidMoves++
	}

	that.Turns = append(that.Turns, record)
}

// AverageTurnTime returns zero for an empty game.
func (that *GameStatistics) AverageTurnTime() time.Duration {
	if len(that.Turns) == 0 {
		return 0
	}

	var total time.Duration
	for _, turn := range that.Turns {
		total += turn.TimeTaken
	}

	return total / time.Duration(len(that.Turns))
}

func (that *GameStatistics) TotalTurns() int {
	return len(that.Turns)
}

// PlayerSummary - per-player aggregate over the recorded turns.
type PlayerSummary struct {
	Name         string        `json:"name"`
	TotalTurns   int           `json:"total_turns"`
	ValidMoves   int           `json:"valid_moves"`
	InvalidMoves int           `json:"invalid_moves"`
	TotalTime    time.Duration `json:"total_time"`
}

func (that PlayerSummary) AverageTime() time.Duration {
	if that.TotalTurns == 0 {
		return 0
	}

	return that.TotalTime / time.Duration(that.TotalTurns)
}

// PlayerSummaries groups turns by player, in order of first appearance.
func (that *GameStatistics) PlayerSummaries() []PlayerSummary {
	index := make(map[string]int)
	summaries := make([]PlayerSummary, 0, 2)

	for _, turn := range that.Turns {
		i, ok := index[turn.Player]
		if !ok {
			i = len(summaries)
			index[turn.Player] = i
			summaries = append(summaries, PlayerSummary{Name: turn.Player})
		}

		summaries[i].TotalTurns++
		summaries[i].TotalTime += turn.TimeTaken
		if turn.MoveValid {
			summaries[i].ValidMoves++
		} else {
			summaries[i].InvalidMoves++
		}
	}

	return summaries
}
