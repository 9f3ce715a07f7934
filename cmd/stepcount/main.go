package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"stepcount/internal/config"
	"stepcount/internal/server"
)

const getRefreshTokenArg = "get-refresh-token"

func newRootCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "stepcount [get-refresh-token]",
		Short: "Write today's Google Fit step count and seven day average to a file",
		Long: `stepcount reads step aggregates from Google Fit and writes a single line
like " Steps: 8342 / 6120" (today / seven day average) to OUTPUT_FILE_PATH.

Run "stepcount get-refresh-token" once to authorize the app and print the
refresh token to store as GOOGLE_REFRESH_TOKEN.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		// the only recognized argument is get-refresh-token; anything else,
		// flag-like or not, runs the report
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 && args[0] == getRefreshTokenArg {
				return runAuth(cmd.Context(), cfg, server.DefaultAddr, cmd.OutOrStdout())
			}
			// reporting errors are logged, never surfaced as a failed run
			if err := runReport(cmd.Context(), cfg); err != nil {
				log.Error("error fetching step count data", "err", err)
			}
			return nil
		},
	}
}

func newLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "stepcount",
	})
}

func main() {
	logger := newLogger()
	log.SetDefault(logger)
	slog.SetDefault(slog.New(logger))

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("error loading config", "err", err)
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn("unknown log level, using info", "level", cfg.LogLevel)
		level = log.InfoLevel
	}
	logger.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	err = newRootCmd(cfg).ExecuteContext(ctx)
	stop()
	if err != nil {
		log.Error("stepcount failed", "err", err)
		os.Exit(1)
	}
}
