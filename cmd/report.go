package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/store"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print stored jobs of a resume grouped by company",
	Run: func(cmd *cobra.Command, _ []string) {
		report(cmd)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringP("resume", "r", "", "resume id to report on")
	reportCmd.MarkFlagRequired("resume")
}

func report(cmd *cobra.Command) {
	ctx := context.Background()
	logger, config := setup()

	resumeID := strings.TrimSpace(cmd.Flag("resume").Value.String())
	if resumeID == "" {
		logger.Fatal("resume id is required")
	}

	st, err := openStore(ctx, config, logger)
	if err != nil {
		logger.Fatal("opening the store", zap.Error(err))
	}
	defer st.Close()

	jobs, err := st.Jobs(ctx, resumeID)
	if err != nil {
		logger.Fatal("listing stored jobs", zap.Error(err))
	}

	logger.Info("stored jobs", zap.String("resume_id", resumeID), zap.Int("count", len(jobs)))

	pretty, _ := json.MarshalIndent(store.ReportByCompany(jobs), "", "  ")
	fmt.Println(string(pretty))
}
