// Package export uploads batch run reports to Cloud Storage.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/ai-arena/internal/entity"
)

const reportFilename = "report.json"

// Report is everything a batch run produced.
type Report struct {
	RunID      string                `json:"run_id"`
	Source     string                `json:"source"`
	StartedAt  time.Time             `json:"started_at"`
	FinishedAt time.Time             `json:"finished_at"`
	TotalGames int                   `json:"total_games"`
	Completed  int                   `json:"completed"`
	Matches    []*entity.MatchRecord `json:"matches"`
}

type uploader interface {
	Upload(ctx context.Context, objectPath string, data []byte, metadata map[string]string) (string, error)
}

type Exporter struct {
	logger   *slog.Logger
	uploader uploader
}

func New(logger *slog.Logger, uploader uploader) *Exporter {
	return &Exporter{
		logger:   logger.With("component", "export"),
		uploader: uploader,
	}
}

// ObjectPath is where an artifact of a run is stored in the bucket.
func ObjectPath(runID, filename string) string {
	return fmt.Sprintf("runs/%s/%s", runID, filename)
}

// Export uploads the report and returns its gs:// URI.
func (that *Exporter) Export(ctx context.Context, report Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("could not marshal report: %w", err)
	}

	uri, err := that.uploader.Upload(ctx, ObjectPath(report.RunID, reportFilename), data, map[string]string{
		"runId":  report.RunID,
		"source": report.Source,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report: %w", err)
	}

	that.logger.Info("report exported", "run_id", report.RunID, "uri", uri, "matches", len(report.Matches))

	return uri, nil
}
