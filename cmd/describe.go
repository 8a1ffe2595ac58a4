package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/store"
)

var describeCmd = &cobra.Command{
	Use:   "describe <job-id>",
	Short: "Print the description of a stored job or of a JSearch job id",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		describe(args[0])
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
}

func describe(id string) {
	ctx := context.Background()
	logger, config := setup()

	st, err := openStore(ctx, config, logger)
	if err != nil {
		logger.Fatal("opening the store", zap.Error(err))
	}
	defer st.Close()

	job, err := st.Job(ctx, id)
	if err == nil {
		fmt.Printf("%s / %s\n%s\n\n%s\n", job.Title, job.Company, job.JobLink, job.Description)
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		logger.Fatal("reading stored job", zap.Error(err))
	}

	logger.Debug("job is not stored, asking jsearch", zap.String("job_id", id))

	client, err := newSearchClient(config, logger)
	if err != nil {
		logger.Fatal("building search client", zap.Error(err))
	}

	posting, err := client.JobDetails(ctx, id)
	if err != nil {
		logger.Fatal("fetching job details", zap.String("job_id", id), zap.Error(err))
	}

	link, _ := posting.Link()
	fmt.Printf("%s / %s\n%s\n\n%s\n", posting.TitleOrDefault(), posting.CompanyOrDefault(), link, posting.Description)
}
