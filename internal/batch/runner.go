package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/ai-arena/internal/display"
	"github.com/rocketscienceinc/ai-arena/internal/entity"
	"github.com/rocketscienceinc/ai-arena/internal/export"
	"github.com/rocketscienceinc/ai-arena/internal/usecase"
)

type matchPlayer interface {
	PlayMatch(ctx context.Context, request usecase.MatchRequest) (*entity.MatchRecord, error)
}

type reportExporter interface {
	Export(ctx context.Context, report export.Report) (string, error)
}

type Runner struct {
	logger   *slog.Logger
	matches  matchPlayer
	printer  *display.Printer
	exporter reportExporter
	verbose  bool
}

// NewRunner builds a runner. exporter may be nil, in which case no report is uploaded.
func NewRunner(logger *slog.Logger, matches matchPlayer, printer *display.Printer, exporter reportExporter, verbose bool) *Runner {
	return &Runner{
		logger:   logger.With("component", "batch"),
		matches:  matches,
		printer:  printer,
		exporter: exporter,
		verbose:  verbose,
	}
}

// Run plays every case in order, each repetition as its own match. A match that
// cannot be set up aborts the run; a cancelled context stops it between matches.
func (that *Runner) Run(ctx context.Context, source string, cases []Case) (export.Report, error) {
	log := that.logger.With("method", "Run", "source", source)

	report := export.Report{
		RunID:     uuid.NewString(),
		Source:    source,
		StartedAt: time.Now().UTC(),
		Matches:   make([]*entity.MatchRecord, 0),
	}

	that.printer.Banner("CSV BATCH RUN", fmt.Sprintf("Found %d test case(s) in CSV file", len(cases)))

	for i, testCase := range cases {
		that.printCase(i, len(cases), testCase)

		for rep := 1; rep <= int(testCase.Repetitions); rep++ {
			if err := ctx.Err(); err != nil {
				log.Warn("batch interrupted", "case", i+1, "repetition", rep)
				return that.finish(ctx, report), fmt.Errorf("batch interrupted: %w", err)
			}

			report.TotalGames++

			if testCase.Repetitions > 1 && that.verbose {
				that.printer.Printf("\n--- Repetition %d of %d ---\n", rep, testCase.Repetitions)
			}

			record, err := that.matches.PlayMatch(ctx, testCase.Request())
			if err != nil && record == nil {
				return that.finish(ctx, report), fmt.Errorf("test case %d: %w", i+1, err)
			}
			if err != nil {
				log.Warn("match played but not stored", "game_id", record.GameID, "error", err)
			}

			report.Completed++
			report.Matches = append(report.Matches, record)

			if that.verbose || testCase.Repetitions == 1 {
				that.printer.Match(record.Game, record.Result)
			} else {
				that.printer.Line(record.Game, rep, record.Result)
			}
		}
	}

	report = that.finish(ctx, report)

	that.printer.Banner(
		"BATCH RUN COMPLETE",
		fmt.Sprintf("Total games: %d", report.TotalGames),
		fmt.Sprintf("Completed: %d", report.Completed),
	)

	return report, nil
}

func (that *Runner) printCase(i, total int, testCase Case) {
	that.printer.Printf("\n[Test Case %d of %d]\n", i+1, total)
	if testCase.Description != "" {
		that.printer.Printf("Description: %s\n", testCase.Description)
	}
	that.printer.Printf("Game: %s\n", testCase.Game)
	that.printer.Printf("Repetitions: %d\n", testCase.Repetitions)
	that.printer.Printf("Agents: %s (%s) vs %s (%s)\n",
		testCase.Agents[0].Model, testCase.Agents[0].Kind,
		testCase.Agents[1].Model, testCase.Agents[1].Kind)
}

// finish stamps the report and uploads it when an exporter is configured.
// Export failures are logged, the matches are already stored.
func (that *Runner) finish(ctx context.Context, report export.Report) export.Report {
	report.FinishedAt = time.Now().UTC()

	if that.exporter == nil || len(report.Matches) == 0 {
		return report
	}

	uri, err := that.exporter.Export(context.WithoutCancel(ctx), report)
	if err != nil {
		that.logger.Error("failed to export report", "run_id", report.RunID, "error", err)
		return report
	}

	that.printer.Printf("Report uploaded to %s\n", uri)

	return report
}
