package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/ai-arena/internal/agent"
	"github.com/rocketscienceinc/ai-arena/internal/apperror"
	"github.com/rocketscienceinc/ai-arena/internal/arena"
	"github.com/rocketscienceinc/ai-arena/internal/entity"
	"github.com/rocketscienceinc/ai-arena/internal/tictactoe"
	"github.com/rocketscienceinc/ai-arena/internal/validation"
)

var (
	errRedisDown = errors.New("redis down")
	errNoKey     = errors.New("no key")
)

type mockGamePlayer struct {
	mock.Mock
}

func (that *mockGamePlayer) PlayGame(ctx context.Context, game arena.Game, configs []agent.Config) (arena.TestResult, error) {
	args := that.Called(ctx, game, configs)

	return args.Get(0).(arena.TestResult), args.Error(1)
}

type mockResultRepo struct {
	mock.Mock
}

func (that *mockResultRepo) Save(ctx context.Context, record *entity.MatchRecord) error {
	return that.Called(ctx, record).Error(0)
}

func (that *mockResultRepo) GetByID(ctx context.Context, id string) (*entity.MatchRecord, error) {
	args := that.Called(ctx, id)

	record, _ := args.Get(0).(*entity.MatchRecord)

	return record, args.Error(1)
}

func (that *mockResultRepo) ListByGame(ctx context.Context, game string, limit int) ([]*entity.MatchRecord, error) {
	args := that.Called(ctx, game, limit)

	records, _ := args.Get(0).([]*entity.MatchRecord)

	return records, args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validRequest() MatchRequest {
	return MatchRequest{
		Game:        "TicTacToe",
		Description: "smoke",
		Agents: []agent.Config{
			{Kind: agent.KindOpenAI, Model: "gpt-4o", Temperature: 0.7},
			{Kind: agent.KindRandom},
		},
	}
}

func TestMatchRequest_ToGame(t *testing.T) {
	t.Run("Defaults and overrides", func(t *testing.T) {
		// Given: a request overriding the board size
		request := validRequest()
		request.Order = "descending"
		request.TicTacToe = &tictactoe.Config{BoardSize: 5, WinLength: 4}

		// When: resolving the game
		game, err := request.ToGame()

		// Then: the override and order are applied
		require.NoError(t, err)
		assert.Equal(t, arena.KindTicTacToe, game.Kind)
		assert.Equal(t, uint32(5), game.TicTacToe.BoardSize)
		assert.Equal(t, arena.Descending, game.Order)
	})

	t.Run("Override for another variant is ignored", func(t *testing.T) {
		request := validRequest()
		request.Game = "ConnectFour"
		request.TicTacToe = &tictactoe.Config{BoardSize: 5, WinLength: 4}

		game, err := request.ToGame()

		require.NoError(t, err)
		assert.Nil(t, game.TicTacToe)
		assert.Equal(t, uint32(7), game.ConnectFour.Cols)
	})

	t.Run("Unknown order", func(t *testing.T) {
		request := validRequest()
		request.Order = "sideways"

		_, err := request.ToGame()

		require.ErrorIs(t, err, apperror.ErrUnknownOrder)
	})
}

func TestMatchUseCase_PlayMatch(t *testing.T) {
	ctx := context.Background()

	t.Run("Plays and persists the match", func(t *testing.T) {
		// Given: a player producing a win and a repository accepting saves
		player := &mockGamePlayer{}
		repo := &mockResultRepo{}
		request := validRequest()
		expectedGame := arena.MustNew("TicTacToe")
		expectedGame.Order = arena.OrderInList

		player.On("PlayGame", ctx, expectedGame, request.Agents).
			Return(arena.TestResult{
				Game:   "TicTacToe",
				GameID: "ttt_1234abcd",
				Agents: []string{"OpenAI_1", "Random_2"},
				Result: entity.Result{Winner: "OpenAI_1 (X)"},
			}, nil).
			Once()
		repo.On("Save", ctx, mock.AnythingOfType("*entity.MatchRecord")).
			Run(func(args mock.Arguments) {
				args.Get(1).(*entity.MatchRecord).ID = "match-1"
			}).
			Return(nil).
			Once()

		useCase := NewMatchUseCase(testLogger(), player, repo)

		// When: playing the match
		record, err := useCase.PlayMatch(ctx, request)

		// Then: the saved record carries the result and the description
		require.NoError(t, err)
		assert.Equal(t, "match-1", record.ID)
		assert.Equal(t, "ttt_1234abcd", record.GameID)
		assert.Equal(t, "smoke", record.Description)
		assert.Equal(t, "OpenAI_1 (X)", record.Result.Winner)
		player.AssertExpectations(t)
		repo.AssertExpectations(t)
	})

	t.Run("Invalid request never reaches the player", func(t *testing.T) {
		// Given: a request with one agent
		player := &mockGamePlayer{}
		repo := &mockResultRepo{}
		request := validRequest()
		request.Agents = request.Agents[:1]

		useCase := NewMatchUseCase(testLogger(), player, repo)

		// When: playing it
		_, err := useCase.PlayMatch(ctx, request)

		// Then: validation fails
		require.ErrorIs(t, err, validation.ErrValidation)
		player.AssertNotCalled(t, "PlayGame", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Unknown game", func(t *testing.T) {
		request := validRequest()
		request.Game = "Chess"

		_, err := NewMatchUseCase(testLogger(), &mockGamePlayer{}, &mockResultRepo{}).PlayMatch(ctx, request)

		require.ErrorIs(t, err, apperror.ErrUnknownGame)
	})

	t.Run("Player failure", func(t *testing.T) {
		player := &mockGamePlayer{}
		player.On("PlayGame", mock.Anything, mock.Anything, mock.Anything).
			Return(arena.TestResult{}, errNoKey).
			Once()

		_, err := NewMatchUseCase(testLogger(), player, &mockResultRepo{}).PlayMatch(ctx, validRequest())

		require.ErrorIs(t, err, errNoKey)
	})

	t.Run("Save failure still returns the record", func(t *testing.T) {
		player := &mockGamePlayer{}
		repo := &mockResultRepo{}
		player.On("PlayGame", mock.Anything, mock.Anything, mock.Anything).
			Return(arena.TestResult{Game: "TicTacToe", Result: entity.Result{Winner: "Random_2 (O)"}}, nil).
			Once()
		repo.On("Save", mock.Anything, mock.Anything).Return(errRedisDown).Once()

		record, err := NewMatchUseCase(testLogger(), player, repo).PlayMatch(ctx, validRequest())

		require.ErrorIs(t, err, errRedisDown)
		require.NotNil(t, record)
		assert.Equal(t, "Random_2 (O)", record.Result.Winner)
	})
}

func TestMatchUseCase_GetAndList(t *testing.T) {
	ctx := context.Background()

	t.Run("GetMatch wraps not found", func(t *testing.T) {
		repo := &mockResultRepo{}
		repo.On("GetByID", ctx, "missing").Return(nil, apperror.ErrResultNotFound).Once()

		_, err := NewMatchUseCase(testLogger(), &mockGamePlayer{}, repo).GetMatch(ctx, "missing")

		require.ErrorIs(t, err, apperror.ErrResultNotFound)
	})

	t.Run("ListMatches checks the game name", func(t *testing.T) {
		repo := &mockResultRepo{}
		repo.On("ListByGame", ctx, "ConnectFour", 10).
			Return([]*entity.MatchRecord{{ID: "a"}, {ID: "b"}}, nil).
			Once()
		useCase := NewMatchUseCase(testLogger(), &mockGamePlayer{}, repo)

		records, err := useCase.ListMatches(ctx, "ConnectFour", 10)
		require.NoError(t, err)
		assert.Len(t, records, 2)

		_, err = useCase.ListMatches(ctx, "Chess", 10)
		require.ErrorIs(t, err, apperror.ErrUnknownGame)
		repo.AssertNumberOfCalls(t, "ListByGame", 1)
	})
}
