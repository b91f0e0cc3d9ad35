package game

import "encoding/json"

// Status is the part of a turn-based game's state the alternating loop owns.
type Status struct {
	CurrentPlayer string
	TurnNumber    uint32
	GameOver      bool
	Winner        *string
}

// Board is the variant-specific half of an alternating game.
type Board interface {
	// Labels are the two player labels in turn order, e.g. X and O.
	Labels() [2]string
	MaxTurns() uint32
	MoveSchema() map[string]any
	// Snapshot serialises the whole game state.
	Snapshot(status Status) (json.RawMessage, error)
	// Play parses, validates and applies a move for label. On error the board
	// is untouched.
	Play(move any, label string) error
	HasWon(label string) bool
}
