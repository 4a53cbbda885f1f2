package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "market-stats",
		Short: "Summarize marketplace transaction history",
		Long: `Market Stats reads a JSON export of marketplace transactions, prints totals
per item and per month, and renders charts of price and count.

Run without a subcommand to print the report and render both charts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, configPath)
			if err != nil {
				return err
			}
			_, sum, err := a.load()
			if err != nil {
				return err
			}
			a.report(sum)
			return a.charts(sum)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "path to a TOML config file")
	flags.String("input", "", "JSON file with transaction history")
	flags.String("currency", "", "currency label printed next to amounts")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("out-dir", "", "directory charts are written to")

	rootCmd.AddCommand(
		newReportCmd(&configPath),
		newChartCmd(&configPath),
		newExportCmd(&configPath),
		newHistoryCmd(&configPath),
	)
	return rootCmd
}

func newReportCmd(configPath *string) *cobra.Command {
	var item string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print total, per-item and per-month tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, *configPath)
			if err != nil {
				return err
			}
			records, sum, err := a.load()
			if err != nil {
				return err
			}
			if item != "" {
				records, sum = onlyItem(records, item)
				if len(records) == 0 {
					return fmt.Errorf("no records named %q", item)
				}
			}
			a.report(sum)
			return nil
		},
	}
	cmd.Flags().StringVar(&item, "item", "", "only report records with this item name")
	return cmd
}

func newChartCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "chart",
		Short: "Render per-item and per-month charts",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, *configPath)
			if err != nil {
				return err
			}
			_, sum, err := a.load()
			if err != nil {
				return err
			}
			return a.charts(sum)
		},
	}
}

func newExportCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Save records and summaries to a SQLite snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, *configPath)
			if err != nil {
				return err
			}
			records, sum, err := a.load()
			if err != nil {
				return err
			}
			return a.export(cmd.Context(), records, sum)
		},
	}
	cmd.Flags().String("db", "", "SQLite database path")
	return cmd
}

func newHistoryCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List snapshots saved by export",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, *configPath)
			if err != nil {
				return err
			}
			return a.history(cmd.Context())
		},
	}
	cmd.Flags().String("db", "", "SQLite database path")
	return cmd
}
