package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"google.golang.org/api/option"

	"stepcount/clients/googlefit"
	"stepcount/internal/config"
	"stepcount/internal/services"
)

func runReport(ctx context.Context, cfg *config.Config, opts ...option.ClientOption) error {
	if err := cfg.RequireRefreshToken(); err != nil {
		return err
	}

	conf := googlefit.NewOAuthConfig(cfg.ClientID, cfg.ClientSecret, "")
	client, err := googlefit.NewGoogleFitClient(ctx, conf, cfg.RefreshToken, opts...)
	if err != nil {
		return fmt.Errorf("error creating google fit client: %w", err)
	}

	steps := services.NewStepService(client, nil)
	report, err := services.NewReportService(steps, cfg.OutputPath()).Generate(ctx)
	if err != nil {
		return err
	}
	log.Debug("wrote step report", "today", report.Today, "average", report.WeeklyAverage)
	return nil
}
