package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/ai-arena/internal/agent"
	"github.com/rocketscienceinc/ai-arena/internal/apperror"
	"github.com/rocketscienceinc/ai-arena/internal/config"
)

func TestParseFlags(t *testing.T) {
	t.Run("Single case", func(t *testing.T) {
		// Given: a full single case on the command line
		flags, err := parseFlags("test", []string{
			"-g", "ConnectFour", "-r", "3",
			"-agent-one-kind", "openai", "-agent-one-model", "gpt-4o", "-agent-one-seed", "9",
			"-agent-two-kind", "Ollama", "-agent-two-model", "llama3", "-agent-two-temp", "0.1",
			"-agent-two-secret-profile", "home",
		})
		require.NoError(t, err)

		// When: building the case
		testCase, err := flags.testCase()

		// Then: both agents are configured
		require.NoError(t, err)
		require.NotNil(t, testCase)
		assert.Equal(t, "ConnectFour", testCase.Game)
		assert.Equal(t, uint32(3), testCase.Repetitions)
		assert.Equal(t, agent.KindOpenAI, testCase.Agents[0].Kind)
		assert.Equal(t, uint64(9), *testCase.Agents[0].Seed)
		assert.InDelta(t, 0.7, testCase.Agents[0].Temperature, 1e-9)
		assert.InDelta(t, 0.1, testCase.Agents[1].Temperature, 1e-9)
		assert.Equal(t, "home", testCase.Agents[1].SecretProfile)
	})

	t.Run("No game means no case", func(t *testing.T) {
		flags, err := parseFlags("test", []string{"-f", "cases.csv"})
		require.NoError(t, err)

		testCase, err := flags.testCase()
		require.NoError(t, err)
		assert.Nil(t, testCase)
		assert.Equal(t, "cases.csv", flags.file)
	})

	t.Run("Repetitions beyond 32 bits are rejected", func(t *testing.T) {
		// Given: a repetition count that would wrap to zero
		flags, err := parseFlags("test", []string{"-g", "TicTacToe", "-r", "4294967296"})
		require.NoError(t, err)

		// When: building the case
		_, err = flags.testCase()

		// Then: it fails instead of skipping every game
		require.ErrorIs(t, err, errRepetitionsRange)
	})

	t.Run("Bad agent kind", func(t *testing.T) {
		flags, err := parseFlags("test", []string{"-g", "TicTacToe", "-agent-one-kind", "Gemini"})
		require.NoError(t, err)

		_, err = flags.testCase()
		require.ErrorIs(t, err, apperror.ErrUnknownAgentKind)
	})
}

func TestInitLogger(t *testing.T) {
	var out bytes.Buffer

	logger := initLogger(&config.Config{LogLevel: "warn", LogFormat: "json"}, &out)
	logger.Info("hidden")
	logger.Warn("shown", "game_id", "ttt_1")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), `"game_id":"ttt_1"`)
}
