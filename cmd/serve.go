package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run collection passes on a schedule and expose metrics",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Bool("allow-duplicates", false, "do not skip postings already stored for a resume")
	serveCmd.Flags().Bool("dry-run", false, "only log matched jobs, do not store them")
	serveCmd.Flags().Bool("run-now", false, "run a collection pass right after start")
}

func serve(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, config := setup()

	schedule := config.Schedule
	if schedule == "" {
		schedule = defaultSchedule
	}

	addr := defaultMetricsAddr
	if config.Metrics != nil && config.Metrics.Addr != "" {
		addr = config.Metrics.Addr
	}

	m := metrics.New()

	p, err := newPipeline(ctx, cmd, config, m, logger)
	if err != nil {
		logger.Fatal("preparing the pipeline", zap.Error(err))
	}
	defer p.close()

	pass := func() {
		report, err := p.collector.FindAndStoreJobs(ctx)
		if err != nil {
			logger.Warn("collection interrupted", zap.Error(err))
			return
		}
		logger.Info("collection finished",
			zap.Int("resumes", report.Resumes),
			zap.Int("stored", report.Stored),
			zap.Int("failed_writes", report.Failed),
		)
	}

	cronLog := &cronLogger{logger: logger.Named("cron").Sugar()}
	scheduler := cron.New(
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog)),
	)

	// shared by the schedule and --run-now so passes never overlap
	job := cron.NewChain(cron.SkipIfStillRunning(cronLog)).Then(cron.FuncJob(pass))
	if _, err := scheduler.AddJob(schedule, job); err != nil {
		logger.Fatal("scheduling collection", zap.String("schedule", schedule), zap.Error(err))
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("metrics server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
			stop()
		}
	}()

	scheduler.Start()
	logger.Info("scheduler started", zap.String("schedule", schedule), zap.String("version", version))

	if flagIsSet(cmd, "run-now") {
		go job.Run()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("stopping metrics server", zap.Error(err))
	}

	// wait for a running pass, it sees the cancelled context
	select {
	case <-scheduler.Stop().Done():
	case <-shutdownCtx.Done():
		logger.Warn("collection pass did not stop in time")
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
