// Command foldboost runs the stratified k-fold boosting experiment and
// writes the submission.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/foldboost/experiment"
	"github.com/YuminosukeSato/foldboost/pkg/errors"
	"github.com/YuminosukeSato/foldboost/pkg/log"
)

func main() {
	// .env is optional; real environment variables take precedence
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.GetLoggerWithName("cli").Error("foldboost failed", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return newRootCmdFor(newOptions())
}

func newRootCmdFor(opts *options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "foldboost",
		Short: "Stratified k-fold gradient boosting experiment",
		Long: `Train one boosted-tree classifier per stratified fold, report the
fold and out-of-fold sqrt(AUC) scores and write the averaged test
predictions into the sample submission.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setupLogging(cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			cfg.Stdout = cmd.OutOrStdout()
			_, err = experiment.Run(cmd.Context(), cfg)
			return err
		},
	}

	opts.bindLogging(rootCmd)
	opts.bindRun(rootCmd)
	rootCmd.AddCommand(newHistoryCmd(opts))
	return rootCmd
}

func newHistoryCmd(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.historyDSN == "" {
				return errors.New("no history database: set --history or FOLDBOOST_HISTORY")
			}
			store, err := experiment.OpenHistory(cmd.Context(), opts.historyDSN)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-36s  %-19s  %5s  %-8s  %-8s\n", "RUN", "STARTED", "FOLDS", "CV", "VALID")
			for _, r := range runs {
				fmt.Fprintf(out, "%-36s  %-19s  %5d  %-8.5f  %-8.5f\n",
					r.RunID, r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.NFolds, r.CVScore, r.ValidMean)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "last", 20, "number of runs to show")
	cmd.Flags().StringVar(&opts.historyDSN, "history", opts.historyDSN, "SQLite run history database")
	return cmd
}
