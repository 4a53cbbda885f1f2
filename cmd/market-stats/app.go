package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/example/market-stats/internal/chart"
	"github.com/example/market-stats/internal/config"
	"github.com/example/market-stats/internal/logging"
	"github.com/example/market-stats/internal/report"
	"github.com/example/market-stats/internal/storage"
	"github.com/example/market-stats/pkg/summary"
	"github.com/example/market-stats/pkg/transaction"
)

type app struct {
	cfg *config.Config
	log *logrus.Logger
	out io.Writer
}

func setup(cmd *cobra.Command, configPath string) (*app, error) {
	envErr := godotenv.Load()

	cfg, err := config.LoadConfig(configPath, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		logger.WithError(envErr).Warn("Failed to load .env file")
	}

	return &app{cfg: cfg, log: logger, out: cmd.OutOrStdout()}, nil
}

func (a *app) load() (transaction.Records, summary.Summary, error) {
	records, err := transaction.LoadFile(a.cfg.Input, a.cfg.LoadOptions())
	if err != nil {
		return nil, summary.Summary{}, fmt.Errorf("failed to load %s: %w", a.cfg.Input, err)
	}
	a.log.WithFields(logrus.Fields{"input": a.cfg.Input, "records": len(records)}).Info("Loaded records")

	for _, c := range records.Currencies() {
		if !c.Known() {
			a.log.WithField("currency", c).Warn("Unknown currency code, amounts are not converted")
		}
	}
	for _, r := range summary.ReversedSpans(records) {
		a.log.WithField("record", r.String()).Warn("Acted on before listed, skipped in monthly totals")
	}

	sum := summary.Summarize(records)
	if first, last, ok := sum.Span(); ok {
		a.log.WithFields(logrus.Fields{"from": first.String(), "to": last.String(), "items": len(sum.ByName)}).Debug("Computed summaries")
	}
	return records, sum, nil
}

func (a *app) report(sum summary.Summary) {
	report.New(a.out, a.cfg.Currency).Print(sum)
}

func (a *app) charts(sum summary.Summary) error {
	r := chart.New(chart.Options{
		Width:    a.cfg.Charts.Width,
		Height:   a.cfg.Charts.Height,
		Currency: a.cfg.Currency,
	})

	byName := filepath.Join(a.cfg.Charts.Dir, a.cfg.Charts.ByName)
	byMonth := filepath.Join(a.cfg.Charts.Dir, a.cfg.Charts.ByMonth)

	written := logrus.Fields{}
	if err := r.SaveByName(byName, sum.Total, sum.ByName); err == nil {
		written["by_name"] = byName
	} else if errors.Is(err, chart.ErrNoData) {
		a.log.Warn("No records, skipping item chart")
	} else {
		return fmt.Errorf("failed to render chart: %w", err)
	}

	if err := r.SaveByMonth(byMonth, sum.ByMonth); err == nil {
		written["by_month"] = byMonth
	} else if errors.Is(err, chart.ErrNoData) {
		a.log.Warn("No monthly totals, skipping month chart")
	} else {
		return fmt.Errorf("failed to render chart: %w", err)
	}

	if len(written) > 0 {
		a.log.WithFields(written).Info("Charts written")
	}
	return nil
}

// onlyItem narrows records to one item name and recomputes the summary
func onlyItem(records transaction.Records, item string) (transaction.Records, summary.Summary) {
	filtered := records.ByName(item)
	return filtered, summary.Summarize(filtered)
}

func (a *app) export(ctx context.Context, records transaction.Records, sum summary.Summary) error {
	store, err := storage.Open(ctx, a.cfg.Export.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}
	defer store.Close()

	id, err := store.SaveRun(ctx, a.cfg.Input, records, sum)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	a.log.WithFields(logrus.Fields{"run": id, "db": a.cfg.Export.DBPath}).Info("Snapshot saved")
	fmt.Fprintf(a.out, "Saved run %d to %s\n", id, a.cfg.Export.DBPath)
	return nil
}

func (a *app) history(ctx context.Context) error {
	store, err := storage.Open(ctx, a.cfg.Export.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}
	defer store.Close()

	runs, err := store.Runs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list snapshots: %w", err)
	}

	fmt.Fprintf(a.out, "%-5s | %-20s | %7s | %14s | %s\n", "RUN", "CREATED", "RECORDS", "TOTAL", "SOURCE")
	for _, run := range runs {
		fmt.Fprintf(a.out, "%-5d | %-20s | %7d | %10s %s | %s\n",
			run.ID, run.CreatedAt.Format("2006-01-02 15:04:05"), run.RecordCount,
			report.FormatAmount(run.Total), a.cfg.Currency, run.Source)
	}
	return nil
}
