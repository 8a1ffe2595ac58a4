package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one collection pass over all stored resumes",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("allow-duplicates", false, "do not skip postings already stored for a resume")
	runCmd.Flags().Bool("dry-run", false, "only log matched jobs, do not store them")
}

func run(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, config := setup()

	logger.Info("starting the job-matcher", zap.String("version", version))

	p, err := newPipeline(ctx, cmd, config, nil, logger)
	if err != nil {
		logger.Fatal("preparing the pipeline", zap.Error(err))
	}
	defer p.close()

	report, err := p.collector.FindAndStoreJobs(ctx)
	if err != nil {
		logger.Error("collection interrupted", zap.Error(err), zap.Int("stored", report.Stored))
		return
	}

	logger.Info("collection finished",
		zap.Int("resumes", report.Resumes),
		zap.Int("stored", report.Stored),
		zap.Int("failed_writes", report.Failed),
	)
}
