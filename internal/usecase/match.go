package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/ai-arena/internal/agent"
	"github.com/rocketscienceinc/ai-arena/internal/arena"
	"github.com/rocketscienceinc/ai-arena/internal/connectfour"
	"github.com/rocketscienceinc/ai-arena/internal/entity"
	"github.com/rocketscienceinc/ai-arena/internal/rps"
	"github.com/rocketscienceinc/ai-arena/internal/tictactoe"
	"github.com/rocketscienceinc/ai-arena/internal/validation"
)

// MatchRequest is one match as submitted over the API or read from a batch file.
// The variant configs are optional overrides of the game's defaults.
type MatchRequest struct {
	Game        string              `json:"game" validate:"required"`
	Order       string              `json:"order,omitempty"`
	Description string              `json:"description,omitempty" validate:"max=512"`
	Agents      []agent.Config      `json:"agents" validate:"len=2,dive"`
	TicTacToe   *tictactoe.Config   `json:"tictactoe,omitempty"`
	RPS         *rps.Config         `json:"rps,omitempty"`
	ConnectFour *connectfour.Config `json:"connectfour,omitempty"`
}

// ToGame resolves the game name, order and overrides into an arena game.
func (that MatchRequest) ToGame() (arena.Game, error) {
	game, err := arena.New(that.Game)
	if err != nil {
		return arena.Game{}, err
	}

	if game.Order, err = arena.ParseOrder(that.Order); err != nil {
		return arena.Game{}, err
	}

	switch game.Kind {
	case arena.KindTicTacToe:
		if that.TicTacToe != nil {
			game.TicTacToe = that.TicTacToe
		}
	case arena.KindRockPaperScissors:
		if that.RPS != nil {
			game.RPS = that.RPS
		}
	case arena.KindConnectFour:
		if that.ConnectFour != nil {
			game.ConnectFour = that.ConnectFour
		}
	}

	return game, nil
}

type MatchUseCase interface {
	PlayMatch(ctx context.Context, request MatchRequest) (*entity.MatchRecord, error)
	GetMatch(ctx context.Context, id string) (*entity.MatchRecord, error)
	ListMatches(ctx context.Context, game string, limit int) ([]*entity.MatchRecord, error)
}

type gamePlayer interface {
	PlayGame(ctx context.Context, game arena.Game, configs []agent.Config) (arena.TestResult, error)
}

type resultRepo interface {
	Save(ctx context.Context, record *entity.MatchRecord) error
	GetByID(ctx context.Context, id string) (*entity.MatchRecord, error)
	ListByGame(ctx context.Context, game string, limit int) ([]*entity.MatchRecord, error)
}

type matchUseCase struct {
	logger     *slog.Logger
	player     gamePlayer
	resultRepo resultRepo
}

func NewMatchUseCase(logger *slog.Logger, player gamePlayer, resultRepo resultRepo) MatchUseCase {
	return &matchUseCase{
		logger:     logger.With("component", "match"),
		player:     player,
		resultRepo: resultRepo,
	}
}

func (that *matchUseCase) PlayMatch(ctx context.Context, request MatchRequest) (*entity.MatchRecord, error) {
	log := that.logger.With("method", "PlayMatch", "game", request.Game)

	if err := validation.Struct(request); err != nil {
		return nil, fmt.Errorf("invalid match request: %w", err)
	}

	game, err := request.ToGame()
	if err != nil {
		return nil, fmt.Errorf("invalid match request: %w", err)
	}

	result, err := that.player.PlayGame(ctx, game, request.Agents)
	if err != nil {
		return nil, fmt.Errorf("could not play match: %w", err)
	}

	record := &entity.MatchRecord{
		Game:        result.Game,
		GameID:      result.GameID,
		Description: request.Description,
		Agents:      result.Agents,
		Result:      result.Result,
	}

	if err = that.resultRepo.Save(ctx, record); err != nil {
		log.Error("failed to save match", "game_id", result.GameID, "error", err)
		return record, fmt.Errorf("failed to save match: %w", err)
	}

	log.Info("match finished", "id", record.ID, "game_id", record.GameID, "winner", record.Result.Winner)

	return record, nil
}

func (that *matchUseCase) GetMatch(ctx context.Context, id string) (*entity.MatchRecord, error) {
	record, err := that.resultRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	return record, nil
}

func (that *matchUseCase) ListMatches(ctx context.Context, game string, limit int) ([]*entity.MatchRecord, error) {
	if _, err := arena.New(game); err != nil {
		return nil, err
	}

	records, err := that.resultRepo.ListByGame(ctx, game, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	return records, nil
}
