// Package rps plays best-of-N rock paper scissors. Both agents answer every round.
package rps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rocketscienceinc/ai-arena/internal/agent"
	"github.com/rocketscienceinc/ai-arena/internal/entity"
	"github.com/rocketscienceinc/ai-arena/internal/game"
	"github.com/rocketscienceinc/ai-arena/internal/validation"
)

const (
	PlayerOne = "Player 1"
	PlayerTwo = "Player 2"

	idPrefix = "rps"
)

var ErrInvalidChoice = errors.New("invalid choice")

type Choice string

const (
	Rock     Choice = "rock"
	Paper    Choice = "paper"
	Scissors Choice = "scissors"
)

// ParseChoice matches case-insensitively. Unknown values report false.
func ParseChoice(value string) (Choice, bool) {
	switch Choice(strings.ToLower(value)) {
	case Rock:
		return Rock, true
	case Paper:
		return Paper, true
	case Scissors:
		return Scissors, true
	default:
		return "", false
	}
}

func (that Choice) Beats(other Choice) bool {
	return (that == Rock && other == Scissors) ||
		(that == Paper && other == Rock) ||
		(that == Scissors && other == Paper)
}

// RoundWinner is 0 for player one, 1 for player two and nil for no winner,
// which includes a round where either choice is missing.
func RoundWinner(one, two *Choice) *int {
	if one == nil || two == nil {
		return nil
	}

	var winner int

	switch {
	case one.Beats(*two):
		winner = 0
	case two.Beats(*one):
		winner = 1
	default:
		return nil
	}

	return &winner
}

type Config struct {
	Rounds uint32 `json:"rounds" yaml:"rounds" validate:"gte=1,lte=1000"`
}

func DefaultConfig() Config {
	return Config{Rounds: 3}
}

func (that Config) Validate() error {
	return validation.Struct(that)
}

// RoundsToWin is a strict majority of the configured rounds.
func (that Config) RoundsToWin() uint32 {
	return that.Rounds/2 + 1
}

type RoundResult struct {
	RoundNumber     uint32  `json:"round_number"`
	PlayerOneChoice *Choice `json:"player_one_choice"`
	PlayerTwoChoice *Choice `json:"player_two_choice"`
	Winner          *int    `json:"winner"`
}

type state struct {
	Round          uint32        `json:"round"`
	PlayerOneScore uint32        `json:"player_one_score"`
	PlayerTwoScore uint32        `json:"player_two_score"`
	RoundHistory   []RoundResult `json:"round_history"`
	GameOver       bool          `json:"game_over"`
	TotalRounds    uint32        `json:"total_rounds"`
	RoundsToWin    uint32        `json:"rounds_to_win"`
}

// Game is one RockPaperScissors session.
type Game struct {
	logger *slog.Logger
	config Config
	gameID string
	state  state
	stats  *entity.GameStatistics
}

func New(logger *slog.Logger, config Config) *Game {
	gameID := game.NewID(idPrefix)

	return &Game{
		logger: logger.With("component", "rps", "game", "RockPaperScissors", "game_id", gameID),
		config: config,
		gameID: gameID,
		state: state{
			RoundHistory: make([]RoundResult, 0),
			TotalRounds:  config.Rounds,
			RoundsToWin:  config.RoundsToWin(),
		},
		stats: entity.NewGameStatistics(),
	}
}

func (that *Game) ID() string {
	return that.gameID
}

func moveSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"choice": map[string]any{
				"type":        "string",
				"enum":        []any{string(Rock), string(Paper), string(Scissors)},
				"description": "Your choice for this round",
			},
		},
		"required": []string{"choice"},
	}
}

// Play runs rounds until a side reaches a majority or the rounds run out.
func (that *Game) Play(ctx context.Context, agents []agent.Agent) entity.Result {
	log := that.logger.With("method", "Play")

	if message, wrong := game.WrongAgentCount(agents); wrong {
		return entity.Result{Stats: *that.stats, Error: message}
	}

	start := time.Now()
	one, two := agents[0], agents[1]
	roundsToWin := that.config.RoundsToWin()
	interrupted := false

	for !that.state.GameOver && that.state.Round < that.config.Rounds {
		if ctx.Err() != nil {
			log.Warn("session interrupted", "round", that.state.Round, "error", ctx.Err())
			interrupted = true
			break
		}

		that.state.Round++
		result := that.executeRound(ctx, one, two)

		switch {
		case that.state.PlayerOneScore >= roundsToWin:
			that.state.GameOver = true
			that.stats.Winner = game.WinnerName(one.Name(), PlayerOne)
		case that.state.PlayerTwoScore >= roundsToWin:
			that.state.GameOver = true
			that.stats.Winner = game.WinnerName(two.Name(), PlayerTwo)
		}

		log.Debug("round finished", "round", result.RoundNumber,
			"player_one_score", that.state.PlayerOneScore, "player_two_score", that.state.PlayerTwoScore)
	}

	if !that.state.GameOver && !interrupted {
		switch {
		case that.state.PlayerOneScore > that.state.PlayerTwoScore:
			that.stats.Winner = game.WinnerName(one.Name(), PlayerOne)
		case that.state.PlayerTwoScore > that.state.PlayerOneScore:
			that.stats.Winner = game.WinnerName(two.Name(), PlayerTwo)
		default:
			that.stats.Draw = true
		}
		that.state.GameOver = true
	}

	that.stats.TotalDuration = time.Since(start)

	log.Info("session finished",
		"winner", that.stats.Winner, "draw", that.stats.Draw,
		"rounds", that.state.Round, "invalid_moves", that.stats.InvalidMoves)

	return entity.Result{Winner: that.stats.Winner, Stats: *that.stats}
}

type answer struct {
	record entity.TurnRecord
	choice *Choice
}

// executeRound asks agent one, then agent two, with the same request, scores the
// round and records both answers under one shared duration.
func (that *Game) executeRound(ctx context.Context, one, two agent.Agent) RoundResult {
	roundStart := time.Now()
	stateBefore := that.snapshot()

	request := entity.MoveRequest{
		TurnIndex:          that.state.Round,
		GameID:             that.gameID,
		State:              stateBefore,
		ExpectedMoveSchema: moveSchema(),
	}

	first := that.ask(ctx, one, request)
	second := that.ask(ctx, two, request)
	elapsed := time.Since(roundStart)

	result := RoundResult{
		RoundNumber:     that.state.Round,
		PlayerOneChoice: first.choice,
		PlayerTwoChoice: second.choice,
		Winner:          RoundWinner(first.choice, second.choice),
	}

	if result.Winner != nil {
		if *result.Winner == 0 {
			that.state.PlayerOneScore++
		} else {
			that.state.PlayerTwoScore++
		}
	}

	that.state.RoundHistory = append(that.state.RoundHistory, result)
	stateAfter := that.snapshot()

	for i, current := range []answer{first, second} {
		record := current.record
		record.TurnNumber = that.state.Round*2 - 1 + uint32(i)
		record.TimeTaken = elapsed
		record.StateBefore = stateBefore
		record.StateAfter = stateBefore
		if record.MoveValid {
			record.StateAfter = stateAfter
		} else {
			that.logger.Warn("turn rejected",
				"turn", record.TurnNumber, "player", record.Player, "error", record.ErrorMessage)
		}
		that.stats.AddTurn(record)
	}

	return result
}

func (that *Game) ask(ctx context.Context, player agent.Agent, request entity.MoveRequest) answer {
	record := entity.TurnRecord{Player: player.Name()}

	response, err := player.ExecuteTurn(ctx, request)
	if err != nil {
		record.ErrorMessage = fmt.Sprintf("Agent error: %v", err)
		return answer{record: record}
	}

	record.MoveMade = response.ChosenMove
	record.Diagnostics = response.Diagnostics

	raw, err := entity.StringField(response.ChosenMove, "choice")
	if err != nil {
		record.ErrorMessage = err.Error()
		return answer{record: record}
	}

	choice, ok := ParseChoice(raw)
	if !ok {
		record.ErrorMessage = fmt.Sprintf("%v: '%s'", ErrInvalidChoice, raw)
		return answer{record: record}
	}

	record.MoveValid = true

	return answer{record: record, choice: &choice}
}

func (that *Game) snapshot() json.RawMessage {
	state, err := json.Marshal(that.state)
	if err != nil {
		that.logger.Error("failed to snapshot state", "error", err)
		return json.RawMessage("null")
	}

	return state
}
