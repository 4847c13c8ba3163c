package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"NewsSpider/internal/app"
	"NewsSpider/internal/config"
	"NewsSpider/internal/logging"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "newsspider",
		Short:         "Crawl configured news listings once and notify about new articles",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApplication(cmd.Context(), func(ctx context.Context, application *app.Application) error {
				return application.Run(ctx)
			})
		},
	}

	root.AddCommand(newScheduleCommand(), newHistoryCommand())
	return root
}

func newScheduleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Crawl on the configured cron expression until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return withApplication(ctx, func(ctx context.Context, application *app.Application) error {
				return application.Schedule(ctx)
			})
		},
	}
}

func newHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the most recently processed links",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApplication(cmd.Context(), func(ctx context.Context, application *app.Application) error {
				records, err := application.History(ctx, limit)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "DATE\tURL\tTAGS")
				for _, r := range records {
					fmt.Fprintf(w, "%s\t%s\t%s\n", r.PublishDate.UTC().Format(time.DateTime), r.URL, r.Tags)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of records to print")
	return cmd
}

// withApplication loads configuration, builds the application and logs any failure.
func withApplication(ctx context.Context, fn func(context.Context, *app.Application) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(config.Path())
	if err != nil {
		slog.Error("cannot load configuration", "error", err)
		return err
	}
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("application init failed", "error", err)
		return err
	}
	defer func() {
		if closeErr := application.Close(); closeErr != nil {
			logger.Error("close application", "error", closeErr)
		}
	}()

	if err := fn(ctx, application); err != nil {
		logger.Error("application stopped", "error", err)
		return err
	}
	return nil
}
