package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"stepcount/internal/models"
)

type StepReporter interface {
	Report(ctx context.Context) (models.StepReport, error)
}

type ReportService struct {
	steps StepReporter
	path  string
}

func NewReportService(steps StepReporter, path string) ReportService {
	return ReportService{steps: steps, path: path}
}

// Generate fetches the report and overwrites the output file with its line.
// Nothing is written if fetching fails.
func (r ReportService) Generate(ctx context.Context) (models.StepReport, error) {
	report, err := r.steps.Report(ctx)
	if err != nil {
		return models.StepReport{}, fmt.Errorf("error fetching step report: %w", err)
	}

	if err := os.WriteFile(r.path, []byte(report.Line()), 0o644); err != nil {
		return report, fmt.Errorf("error writing step report to %s: %w", r.path, err)
	}
	slog.Info("step count data saved", "path", r.path)
	return report, nil
}
