package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/ai-arena/internal/agent"
	"github.com/rocketscienceinc/ai-arena/internal/apperror"
	"github.com/rocketscienceinc/ai-arena/internal/arena"
	"github.com/rocketscienceinc/ai-arena/internal/batch"
	"github.com/rocketscienceinc/ai-arena/internal/config"
	"github.com/rocketscienceinc/ai-arena/internal/display"
	"github.com/rocketscienceinc/ai-arena/internal/export"
	"github.com/rocketscienceinc/ai-arena/internal/secrets"
	"github.com/rocketscienceinc/ai-arena/internal/usecase"
	"github.com/rocketscienceinc/ai-arena/transport/rest"
)

// Options selects what RunApp does: serve the API, run a CSV file or run one case.
type Options struct {
	Serve   bool
	File    string
	Case    *batch.Case
	Verbose bool
}

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config, opts Options) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	cases, source, err := loadCases(opts)
	if err != nil {
		return err
	}

	secretsPath := conf.SecretsPath
	if secretsPath == "" {
		secretsPath = secrets.DefaultPath()
	}

	credentials, err := secrets.Load(logger, secretsPath, os.LookupEnv)
	if err != nil {
		return fmt.Errorf("could not load secrets: %w", err)
	}

	log.Debug("secrets resolved", "path", credentials.Path())

	results, closeStorage, err := newResultRepository(ctx, conf.Storage)
	if err != nil {
		return err
	}

	defer func() {
		if err := closeStorage(); err != nil {
			log.Error("could not close storage", "error", err)
		}
	}()

	builder := agent.NewBuilder(logger, credentials, &http.Client{}, conf.AgentTimeout)
	gameManager := arena.NewGameManager(logger, builder)
	matchUseCase := usecase.NewMatchUseCase(logger, gameManager, results)

	if opts.Serve {
		log.Info("Starting HTTP server", "port", conf.HTTPPort, "storage", conf.Storage.Driver)
		if err = rest.Start(ctx, rest.NewApp(logger, matchUseCase), conf.HTTPPort); err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	}

	printer := display.New(os.Stdout)
	runner := batch.NewRunner(logger, matchUseCase, printer, nil, opts.Verbose)

	if conf.Export.GCSBucket != "" {
		gcs, err := export.NewGCS(ctx, export.GCSOptions{
			Bucket:          conf.Export.GCSBucket,
			Endpoint:        conf.Export.GCSEndpoint,
			CredentialsFile: conf.Export.GCSCredentialsFile,
		})
		if err != nil {
			return fmt.Errorf("could not create exporter: %w", err)
		}
		defer gcs.Close()

		runner = batch.NewRunner(logger, matchUseCase, printer, export.New(logger, gcs), opts.Verbose)
	}

	if _, err = runner.Run(ctx, source, cases); err != nil {
		return fmt.Errorf("batch run failed: %w", err)
	}

	return nil
}

func loadCases(opts Options) ([]batch.Case, string, error) {
	switch {
	case opts.Serve:
		return nil, "", nil
	case opts.File != "":
		cases, err := batch.ReadFile(opts.File)
		if err != nil {
			return nil, "", err
		}
		return cases, opts.File, nil
	case opts.Case != nil:
		return []batch.Case{*opts.Case}, "cli", nil
	default:
		return nil, "", apperror.ErrNoCaseOrTestFile
	}
}
