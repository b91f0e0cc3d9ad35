package batch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/ai-arena/internal/agent"
	"github.com/rocketscienceinc/ai-arena/internal/apperror"
	"github.com/rocketscienceinc/ai-arena/internal/display"
	"github.com/rocketscienceinc/ai-arena/internal/entity"
	"github.com/rocketscienceinc/ai-arena/internal/export"
	"github.com/rocketscienceinc/ai-arena/internal/usecase"
)

const header = "game_name,agent_one_kind,agent_one_model,agent_one_temp,agent_one_seed,agent_one_secret_profile," +
	"agent_two_kind,agent_two_model,agent_two_temp,agent_two_seed,agent_two_secret_profile,repetitions,description\n"

var (
	errNoKey     = errors.New("no key")
	errForbidden = errors.New("forbidden")
)

func TestRead(t *testing.T) {
	t.Run("Minimal row uses defaults", func(t *testing.T) {
		// Given: a row with empty numeric fields
		input := header + "TicTacToe,OpenAI,gpt-4o-mini,,,,Ollama,llama3,,,,,Test game\n"

		// When: reading it
		cases, err := Read(strings.NewReader(input))

		// Then: temperature, seed and repetitions fall back to their defaults
		require.NoError(t, err)
		require.Len(t, cases, 1)

		testCase := cases[0]
		assert.Equal(t, "TicTacToe", testCase.Game)
		assert.Equal(t, uint32(1), testCase.Repetitions)
		assert.Equal(t, "Test game", testCase.Description)
		require.Len(t, testCase.Agents, 2)
		assert.Equal(t, agent.KindOpenAI, testCase.Agents[0].Kind)
		assert.Equal(t, "gpt-4o-mini", testCase.Agents[0].Model)
		assert.InDelta(t, 0.7, testCase.Agents[0].Temperature, 1e-9)
		require.NotNil(t, testCase.Agents[0].Seed)
		assert.Equal(t, uint64(0), *testCase.Agents[0].Seed)
		assert.Empty(t, testCase.Agents[0].SecretProfile)
		assert.Equal(t, agent.KindOllama, testCase.Agents[1].Kind)
	})

	t.Run("Full row with mixed case headers and kinds", func(t *testing.T) {
		input := strings.ToUpper(header) +
			"ConnectFour,anthropic,claude-3-5-sonnet,0.2,42,work,OPENAI,gpt-4o,1.1,7,,3,c4 match\n"

		cases, err := Read(strings.NewReader(input))

		require.NoError(t, err)
		require.Len(t, cases, 1)
		assert.Equal(t, agent.KindAnthropic, cases[0].Agents[0].Kind)
		assert.InDelta(t, 0.2, cases[0].Agents[0].Temperature, 1e-9)
		assert.Equal(t, uint64(42), *cases[0].Agents[0].Seed)
		assert.Equal(t, "work", cases[0].Agents[0].SecretProfile)
		assert.Equal(t, agent.KindOpenAI, cases[0].Agents[1].Kind)
		assert.Equal(t, uint64(7), *cases[0].Agents[1].Seed)
		assert.Equal(t, uint32(3), cases[0].Repetitions)
	})

	t.Run("Garbage numbers are defaulted, not rejected", func(t *testing.T) {
		input := header + "RockPaperScissors,Ollama,llama3,hot,-1,,Ollama,llama3,abc,x,,many,\n"

		cases, err := Read(strings.NewReader(input))

		require.NoError(t, err)
		assert.InDelta(t, 0.7, cases[0].Agents[0].Temperature, 1e-9)
		assert.Equal(t, uint64(0), *cases[0].Agents[0].Seed)
		assert.Equal(t, uint32(1), cases[0].Repetitions)
		assert.Empty(t, cases[0].Description)
	})

	t.Run("Repetitions beyond 32 bits fall back to one", func(t *testing.T) {
		// Given: a repetition count that does not fit in 32 bits
		input := header + "TicTacToe,Random,,,,,Random,,,,,4294967296,\n"

		// When: reading it
		cases, err := Read(strings.NewReader(input))

		// Then: the default is used instead of a wrapped value
		require.NoError(t, err)
		assert.Equal(t, uint32(1), cases[0].Repetitions)
	})

	t.Run("Description column is optional", func(t *testing.T) {
		input := "game_name,agent_one_kind,agent_one_model,agent_two_kind,agent_two_model\n" +
			"TicTacToe,Random,,Random,\n"

		cases, err := Read(strings.NewReader(input))

		require.NoError(t, err)
		assert.Empty(t, cases[0].Description)
		assert.Equal(t, uint32(1), cases[0].Repetitions)
	})

	t.Run("Invalid agent kind reports the row number", func(t *testing.T) {
		input := header +
			"TicTacToe,OpenAI,gpt-4o,,,,Ollama,llama3,,,,,\n" +
			"TicTacToe,Gemini,pro,,,,Ollama,llama3,,,,,\n"

		_, err := Read(strings.NewReader(input))

		require.ErrorIs(t, err, apperror.ErrUnknownAgentKind)
		assert.Contains(t, err.Error(), "error parsing row 3")
		assert.Contains(t, err.Error(), "Gemini")
	})

	t.Run("Missing required column", func(t *testing.T) {
		input := "game_name,agent_one_kind,agent_one_model,agent_two_kind\nTicTacToe,OpenAI,gpt-4o,Ollama\n"

		_, err := Read(strings.NewReader(input))

		require.ErrorIs(t, err, apperror.ErrMissingField)
		assert.Contains(t, err.Error(), "error parsing row 2")
		assert.Contains(t, err.Error(), "agent_two_model")
	})

	t.Run("Unknown game", func(t *testing.T) {
		input := header + "Chess,OpenAI,gpt-4o,,,,Ollama,llama3,,,,,\n"

		_, err := Read(strings.NewReader(input))

		require.ErrorIs(t, err, apperror.ErrUnknownGame)
	})

	t.Run("Empty input", func(t *testing.T) {
		_, err := Read(strings.NewReader(""))

		require.ErrorIs(t, err, apperror.ErrInvalidTestCase)
	})

	t.Run("ReadFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cases.csv")
		require.NoError(t, os.WriteFile(path, []byte(header+"TicTacToe,Random,,,,,Random,,,,,2,\n"), 0o600))

		cases, err := ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, uint32(2), cases[0].Repetitions)

		_, err = ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
		require.Error(t, err)
	})
}

type mockMatchPlayer struct {
	mock.Mock
}

func (that *mockMatchPlayer) PlayMatch(ctx context.Context, request usecase.MatchRequest) (*entity.MatchRecord, error) {
	args := that.Called(ctx, request)

	record, _ := args.Get(0).(*entity.MatchRecord)

	return record, args.Error(1)
}

type mockExporter struct {
	mock.Mock
}

func (that *mockExporter) Export(ctx context.Context, report export.Report) (string, error) {
	args := that.Called(ctx, report)

	return args.String(0), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func randomCase(game string, repetitions uint32) Case {
	return Case{
		Game:        game,
		Agents:      []agent.Config{{Kind: agent.KindRandom}, {Kind: agent.KindRandom}},
		Repetitions: repetitions,
		Description: "dry run",
	}
}

func TestRunner_Run(t *testing.T) {
	ctx := context.Background()
	won := &entity.MatchRecord{ID: "m", Game: "TicTacToe", Result: entity.Result{Winner: "Random_1 (X)"}}

	t.Run("Plays every repetition and exports the report", func(t *testing.T) {
		// Given: two cases, the second repeated three times
		matches := &mockMatchPlayer{}
		matches.On("PlayMatch", mock.Anything, mock.Anything).Return(won, nil).Times(4)
		exporter := &mockExporter{}
		exporter.On("Export", mock.Anything, mock.MatchedBy(func(report export.Report) bool {
			return report.TotalGames == 4 && report.Completed == 4 && len(report.Matches) == 4
		})).Return("gs://arena/runs/x/report.json", nil).Once()

		var out bytes.Buffer
		runner := NewRunner(testLogger(), matches, display.New(&out), exporter, false)

		// When: running
		report, err := runner.Run(ctx, "cases.csv", []Case{randomCase("TicTacToe", 1), randomCase("TicTacToe", 3)})

		// Then: the full table is printed once, repetitions get one line each
		require.NoError(t, err)
		assert.Equal(t, 4, report.TotalGames)
		assert.NotEmpty(t, report.RunID)
		text := out.String()
		assert.Equal(t, 1, strings.Count(text, "GAME RESULTS"))
		assert.Contains(t, text, "TicTacToe #3: Winner: Random_1 (X)")
		assert.Contains(t, text, "[Test Case 2 of 2]")
		assert.Contains(t, text, "Description: dry run")
		assert.Contains(t, text, "Total games: 4")
		assert.Contains(t, text, "Report uploaded to gs://arena/runs/x/report.json")
		matches.AssertExpectations(t)
		exporter.AssertExpectations(t)
	})

	t.Run("Verbose prints every match", func(t *testing.T) {
		matches := &mockMatchPlayer{}
		matches.On("PlayMatch", mock.Anything, mock.Anything).Return(won, nil).Times(2)

		var out bytes.Buffer
		_, err := NewRunner(testLogger(), matches, display.New(&out), nil, true).
			Run(ctx, "cli", []Case{randomCase("TicTacToe", 2)})

		require.NoError(t, err)
		assert.Equal(t, 2, strings.Count(out.String(), "GAME RESULTS"))
		assert.Contains(t, out.String(), "--- Repetition 2 of 2 ---")
	})

	t.Run("Setup failure aborts the run", func(t *testing.T) {
		// Given: the second match cannot be built
		matches := &mockMatchPlayer{}
		matches.On("PlayMatch", mock.Anything, mock.Anything).Return(won, nil).Once()
		matches.On("PlayMatch", mock.Anything, mock.Anything).Return(nil, errNoKey).Once()

		// When: running three cases
		report, err := NewRunner(testLogger(), matches, display.New(io.Discard), nil, false).
			Run(ctx, "cases.csv", []Case{randomCase("TicTacToe", 1), randomCase("ConnectFour", 1), randomCase("TicTacToe", 1)})

		// Then: the error names the case and the third case never runs
		require.ErrorIs(t, err, errNoKey)
		assert.Contains(t, err.Error(), "test case 2")
		assert.Equal(t, 1, report.Completed)
		matches.AssertNumberOfCalls(t, "PlayMatch", 2)
	})

	t.Run("Storage failure keeps going", func(t *testing.T) {
		matches := &mockMatchPlayer{}
		matches.On("PlayMatch", mock.Anything, mock.Anything).Return(won, errForbidden).Twice()

		report, err := NewRunner(testLogger(), matches, display.New(io.Discard), nil, false).
			Run(ctx, "cases.csv", []Case{randomCase("TicTacToe", 2)})

		require.NoError(t, err)
		assert.Equal(t, 2, report.Completed)
	})

	t.Run("Export failure is not fatal", func(t *testing.T) {
		matches := &mockMatchPlayer{}
		matches.On("PlayMatch", mock.Anything, mock.Anything).Return(won, nil).Once()
		exporter := &mockExporter{}
		exporter.On("Export", mock.Anything, mock.Anything).Return("", errForbidden).Once()

		_, err := NewRunner(testLogger(), matches, display.New(io.Discard), exporter, false).
			Run(ctx, "cases.csv", []Case{randomCase("TicTacToe", 1)})

		require.NoError(t, err)
		exporter.AssertExpectations(t)
	})

	t.Run("Cancelled context stops between matches", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		matches := &mockMatchPlayer{}

		_, err := NewRunner(testLogger(), matches, display.New(io.Discard), nil, false).
			Run(cancelled, "cases.csv", []Case{randomCase("TicTacToe", 1)})

		require.ErrorIs(t, err, context.Canceled)
		matches.AssertNotCalled(t, "PlayMatch", mock.Anything, mock.Anything)
	})
}
