package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	app "github.com/rocketscienceinc/ai-arena/internal"
	"github.com/rocketscienceinc/ai-arena/internal/agent"
	"github.com/rocketscienceinc/ai-arena/internal/apperror"
	"github.com/rocketscienceinc/ai-arena/internal/arena"
	"github.com/rocketscienceinc/ai-arena/internal/batch"
	"github.com/rocketscienceinc/ai-arena/internal/config"
)

var errRepetitionsRange = errors.New("repetitions out of range")

type agentFlags struct {
	kind          string
	model         string
	temperature   float64
	seed          uint64
	secretProfile string
}

func (that *agentFlags) register(fs *flag.FlagSet, prefix string) {
	fs.StringVar(&that.kind, prefix+"-kind", "", "agent kind: OpenAI, Anthropic, Ollama or Random")
	fs.StringVar(&that.model, prefix+"-model", "", "model name")
	fs.Float64Var(&that.temperature, prefix+"-temp", 0.7, "sampling temperature")
	fs.Uint64Var(&that.seed, prefix+"-seed", 0, "sampling seed")
	fs.StringVar(&that.secretProfile, prefix+"-secret-profile", "", "secrets file profile")
}

func (that *agentFlags) config() (agent.Config, error) {
	kind, err := agent.ParseKind(that.kind)
	if err != nil {
		return agent.Config{}, err
	}

	seed := that.seed

	return agent.Config{
		Kind:          kind,
		Model:         that.model,
		Temperature:   that.temperature,
		Seed:          &seed,
		SecretProfile: that.secretProfile,
	}, nil
}

type cliFlags struct {
	configPath  string
	file        string
	game        string
	repetitions uint
	verbose     bool
	agentOne    agentFlags
	agentTwo    agentFlags
}

func parseFlags(name string, args []string) (*cliFlags, error) {
	flags := &cliFlags{}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&flags.configPath, "config", "", "path to config.yml")
	fs.StringVar(&flags.file, "f", "", "CSV file with test cases")
	fs.StringVar(&flags.file, "test-file", "", "CSV file with test cases")
	fs.StringVar(&flags.game, "g", "", "game: "+strings.Join(arena.Names, ", "))
	fs.StringVar(&flags.game, "game", "", "game name")
	fs.StringVar(&flags.game, "game-name", "", "game name")
	fs.UintVar(&flags.repetitions, "r", 1, "repetitions of a single case")
	fs.UintVar(&flags.repetitions, "repetitions", 1, "repetitions of a single case")
	fs.BoolVar(&flags.verbose, "verbose", true, "print full tables for every repetition")
	flags.agentOne.register(fs, "agent-one")
	flags.agentTwo.register(fs, "agent-two")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	return flags, nil
}

func (that *cliFlags) testCase() (*batch.Case, error) {
	if that.game == "" {
		return nil, nil
	}

	if uint64(that.repetitions) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: repetitions %d", errRepetitionsRange, that.repetitions)
	}

	one, err := that.agentOne.config()
	if err != nil {
		return nil, fmt.Errorf("agent one: %w", err)
	}

	two, err := that.agentTwo.config()
	if err != nil {
		return nil, fmt.Errorf("agent two: %w", err)
	}

	return &batch.Case{
		Game:        that.game,
		Agents:      []agent.Config{one, two},
		Repetitions: uint32(that.repetitions),
	}, nil
}

// main - is the entry point of the application. It initializes the configuration, logger, and runs the application.
func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	_ = godotenv.Load()

	serve := len(args) > 0 && args[0] == "serve"
	if serve {
		args = args[1:]
	}

	flags, err := parseFlags("ai-arena", args)
	if err != nil {
		return err
	}

	testCase, err := flags.testCase()
	if err != nil {
		return err
	}

	conf, err := initConfig(flags.configPath)
	if err != nil {
		return err
	}

	logger := initLogger(conf, os.Stderr)

	err = app.RunApp(logger, conf, app.Options{
		Serve:   serve,
		File:    flags.file,
		Case:    testCase,
		Verbose: flags.verbose,
	})
	if errors.Is(err, apperror.ErrNoCaseOrTestFile) {
		fmt.Println("No test case or test file provided.")
		return nil
	}

	return err
}

// initialize config.
func initConfig(path string) (*config.Config, error) {
	if path == "" {
		baseDir, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}

		path = filepath.Join(baseDir, "config.yml")
	}

	return config.Load(path)
}

// initialize logger.
func initLogger(conf *config.Config, output io.Writer) *slog.Logger {
	var level slog.Level

	switch conf.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	if conf.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(output, &slog.HandlerOptions{Level: level}))
	}

	return slog.New(tint.NewHandler(output, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Value.Kind() == slog.KindAny {
				if _, ok := a.Value.Any().(error); ok {
					return tint.Attr(9, a)
				}
			}
			return a
		},
	}))
}
