package entity

import "time"

// Result - what a finished session hands back. Error is set only for structural
// failures (e.g. wrong agent count), never for misbehaving agents.
type Result struct {
	Winner string         `json:"winner,omitempty"`
	Stats  GameStatistics `json:"stats"`
	Error  string         `json:"error,omitempty"`
}

func (that *Result) IsDraw() bool {
	return that.Error == "" && that.Winner == "" && that.Stats.Draw
}

// IsIncomplete - the turn budget ran out with neither a winner nor a draw.
func (that *Result) IsIncomplete() bool {
	return that.Error == "" && that.Winner == "" && !that.Stats.Draw
}

// MatchRecord - a persisted session together with who played it.
type MatchRecord struct {
	ID          string    `json:"id"`
	Game        string    `json:"game"`
	GameID      string    `json:"game_id"`
	Description string    `json:"description,omitempty"`
	Agents      []string  `json:"agents"`
	Result      Result    `json:"result"`
	CreatedAt   time.Time `json:"created_at"`
}
