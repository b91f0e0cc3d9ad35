package arena

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/ai-arena/internal/agent"
	"github.com/rocketscienceinc/ai-arena/internal/apperror"
	"github.com/rocketscienceinc/ai-arena/internal/connectfour"
	"github.com/rocketscienceinc/ai-arena/internal/entity"
	"github.com/rocketscienceinc/ai-arena/internal/rps"
	"github.com/rocketscienceinc/ai-arena/internal/tictactoe"
)

// TestResult is the uniform result of any variant.
type TestResult struct {
	Game   string        `json:"game"`
	GameID string        `json:"game_id"`
	Agents []string      `json:"agents"`
	Result entity.Result `json:"result"`
}

type agentBuilder interface {
	Build(configs []agent.Config) ([]agent.Agent, error)
}

type session interface {
	ID() string
	Play(ctx context.Context, agents []agent.Agent) entity.Result
}

type GameManager struct {
	logger  *slog.Logger
	builder agentBuilder
}

func NewGameManager(logger *slog.Logger, builder agentBuilder) *GameManager {
	return &GameManager{
		logger:  logger.With("component", "arena"),
		builder: builder,
	}
}

// PlayGame resolves configs into agents and plays one session. Only configuration
// problems are returned as errors; everything that happens during play is in
// the result.
func (that *GameManager) PlayGame(ctx context.Context, game Game, configs []agent.Config) (TestResult, error) {
	log := that.logger.With("method", "PlayGame", "game", game.Name())

	if err := game.Validate(); err != nil {
		return TestResult{}, fmt.Errorf("invalid game config: %w", err)
	}

	agents, err := that.builder.Build(configs)
	if err != nil {
		log.Error("failed to build agents", "error", err)
		return TestResult{}, fmt.Errorf("failed to build agents: %w", err)
	}

	return that.Play(ctx, game, agents)
}

// Play runs a session with agents that are already built.
func (that *GameManager) Play(ctx context.Context, game Game, agents []agent.Agent) (TestResult, error) {
	current, err := that.newSession(game)
	if err != nil {
		return TestResult{}, err
	}

	ordered := game.Order.Apply(agents)

	names := make([]string, 0, len(ordered))
	for _, player := range ordered {
		names = append(names, player.Name())
	}

	that.logger.Info("starting session", "game", game.Name(), "game_id", current.ID(), "agents", names)

	return TestResult{
		Game:   game.Name(),
		GameID: current.ID(),
		Agents: names,
		Result: current.Play(ctx, ordered),
	}, nil
}

func (that *GameManager) newSession(game Game) (session, error) {
	switch {
	case game.Kind == KindTicTacToe && game.TicTacToe != nil:
		return tictactoe.New(that.logger, *game.TicTacToe), nil
	case game.Kind == KindRockPaperScissors && game.RPS != nil:
		return rps.New(that.logger, *game.RPS), nil
	case game.Kind == KindConnectFour && game.ConnectFour != nil:
		return connectfour.New(that.logger, *game.ConnectFour), nil
	default:
		return nil, fmt.Errorf("%w: %s", apperror.ErrUnknownGame, game.Kind)
	}
}
