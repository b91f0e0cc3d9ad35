// Package arena selects a game variant, builds its agents and runs one session.
package arena

import (
	"fmt"

	"github.com/rocketscienceinc/ai-arena/internal/apperror"
	"github.com/rocketscienceinc/ai-arena/internal/connectfour"
	"github.com/rocketscienceinc/ai-arena/internal/rps"
	"github.com/rocketscienceinc/ai-arena/internal/tictactoe"
)

type Kind string

const (
	KindTicTacToe         Kind = "TicTacToe"
	KindRockPaperScissors Kind = "RockPaperScissors"
	KindConnectFour       Kind = "ConnectFour"
)

// Names lists the accepted game names.
var Names = []string{string(KindTicTacToe), string(KindRockPaperScissors), string(KindConnectFour)}

// Game is a tagged union: exactly the config matching Kind is set.
type Game struct {
	Kind        Kind                `json:"kind"`
	TicTacToe   *tictactoe.Config   `json:"tictactoe,omitempty"`
	RPS         *rps.Config         `json:"rps,omitempty"`
	ConnectFour *connectfour.Config `json:"connectfour,omitempty"`
	Order       PlayerOrder         `json:"order"`
}

// New builds the default config for a game name. Names are matched exactly.
func New(name string) (Game, error) {
	switch Kind(name) {
	case KindTicTacToe:
		config := tictactoe.DefaultConfig()
		return Game{Kind: KindTicTacToe, TicTacToe: &config}, nil
	case KindRockPaperScissors:
		config := rps.DefaultConfig()
		return Game{Kind: KindRockPaperScissors, RPS: &config}, nil
	case KindConnectFour:
		config := connectfour.DefaultConfig()
		return Game{Kind: KindConnectFour, ConnectFour: &config}, nil
	default:
		return Game{}, fmt.Errorf("%w: %s", apperror.ErrUnknownGame, name)
	}
}

// MustNew is New for names known to be valid.
func MustNew(name string) Game {
	game, err := New(name)
	if err != nil {
		panic(err)
	}

	return game
}

func (that Game) Name() string {
	return string(that.Kind)
}

// Validate checks that the config for Kind is present and sane.
func (that Game) Validate() error {
	switch that.Kind {
	case KindTicTacToe:
		if that.TicTacToe == nil {
			return fmt.Errorf("%w: missing tictactoe config", apperror.ErrInvalidTestCase)
		}
		return that.TicTacToe.Validate()
	case KindRockPaperScissors:
		if that.RPS == nil {
			return fmt.Errorf("%w: missing rps config", apperror.ErrInvalidTestCase)
		}
		return that.RPS.Validate()
	case KindConnectFour:
		if that.ConnectFour == nil {
			return fmt.Errorf("%w: missing connectfour config", apperror.ErrInvalidTestCase)
		}
		return that.ConnectFour.Validate()
	default:
		return fmt.Errorf("%w: %s", apperror.ErrUnknownGame, that.Kind)
	}
}
