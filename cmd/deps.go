package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/collector"
	"github.com/spigell/job-matcher/internal/embedding"
	"github.com/spigell/job-matcher/internal/filtering"
	"github.com/spigell/job-matcher/internal/jsearch"
	"github.com/spigell/job-matcher/internal/logger"
	"github.com/spigell/job-matcher/internal/metrics"
	"github.com/spigell/job-matcher/internal/secrets"
	"github.com/spigell/job-matcher/internal/skills"
	"github.com/spigell/job-matcher/internal/store"
)

// setup builds the logger and reads the config. Any failure here is fatal.
func setup() (*zap.Logger, *Config) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	return logger, config
}

func openStore(ctx context.Context, config *Config, logger *zap.Logger) (*store.Store, error) {
	driver, dsn := store.DriverSQLite, defaultDSN
	if config.Store != nil {
		if config.Store.Driver != "" {
			driver = config.Store.Driver
		}
		if config.Store.DSN != "" {
			dsn = config.Store.DSN
		}
	}

	st, err := store.Open(ctx, driver, dsn, logger.With(zap.String("driver", driver)))
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", driver, err)
	}

	return st, nil
}

func newSearchClient(config *Config, logger *zap.Logger) (*jsearch.Client, error) {
	src := secrets.Source{Name: "rapidapi key", Env: "RAPIDAPI_KEY"}
	if config.RapidAPI != nil {
		src.Value = config.RapidAPI.APIKey
		src.File = config.RapidAPI.APIKeyFile
	}

	key, err := secrets.Load(src)
	if err != nil {
		return nil, fmt.Errorf("%w (set rapidapi.api-key-file or RAPIDAPI_KEY_FILE)", err)
	}

	client := jsearch.New(logger, key)
	client.Params = config.Search

	if config.UserAgent != "" {
		client.UserAgent = config.UserAgent
	}

	return client, nil
}

// newEmbedder returns a nil embedder when embeddings are disabled. Redis is
// optional: without it vectors are cached only in process.
func newEmbedder(ctx context.Context, config *EmbeddingConfig, logger *zap.Logger) (skills.Embedder, func(), error) {
	noop := func() {}
	if config == nil || !config.Enabled {
		logger.Info("semantic matching is disabled")
		return nil, noop, nil
	}

	if config.Gemini == nil {
		return nil, noop, fmt.Errorf("gemini configuration is required when embeddings are enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: config.Gemini.APIKey,
		File:  config.Gemini.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, noop, fmt.Errorf("%w (set embedding.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	model := config.Gemini.Model
	if model == "" {
		model = embedding.DefaultGeminiModel
	}

	genLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", model),
		zap.Int("embedding_retry_attempts", config.Gemini.MaxRetries),
	)

	gemini, err := embedding.NewGemini(ctx, apiKey, model, config.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, noop, err
	}

	var rdb redis.Cmdable
	cleanup := noop

	if url := strings.TrimSpace(config.RedisURL); url != "" {
		client, err := embedding.NewRedisClient(ctx, url)
		if err != nil {
			logger.Warn("embedding cache falls back to memory", zap.Error(err))
		} else {
			rdb = client
			cleanup = func() {
				if err := client.Close(); err != nil {
					logger.Warn("closing redis", zap.Error(err))
				}
			}
		}
	}

	return embedding.NewCache(gemini, gemini.Model(), rdb, config.CacheTTL, genLogger), cleanup, nil
}

func prepareFilters(cmd *cobra.Command, config *Config, links filtering.LinkLookup) []filtering.Filter {
	var employers []string
	if config.Exclude != nil {
		employers = config.Exclude.Employers
	}

	steps := []filtering.Filter{
		filtering.NewApplyLink(),
		filtering.NewExcludedEmployers(employers),
		filtering.NewAlreadyStored(links),
	}

	if flagIsSet(cmd, "allow-duplicates") {
		filtering.DisableByName(steps, "already_stored", "allow-duplicates flag is set")
	}

	return steps
}

func flagIsSet(cmd *cobra.Command, name string) bool {
	if cmd == nil {
		return false
	}

	flag := cmd.Flag(name)
	return flag != nil && strings.EqualFold(flag.Value.String(), "true")
}

// pipeline is everything a collection pass needs. close releases the
// store and the redis connection.
type pipeline struct {
	collector *collector.Collector
	close     func()
}

func newPipeline(ctx context.Context, cmd *cobra.Command, config *Config, m *metrics.Metrics, logger *zap.Logger) (*pipeline, error) {
	st, err := openStore(ctx, config, logger)
	if err != nil {
		return nil, err
	}

	fail := func(err error) (*pipeline, error) {
		st.Close()
		return nil, err
	}

	search, err := newSearchClient(config, logger)
	if err != nil {
		return fail(fmt.Errorf("building search client: %w", err))
	}

	embedder, closeEmbedder, err := newEmbedder(ctx, config.Embedding, logger)
	if err != nil {
		return fail(fmt.Errorf("building embedder: %w", err))
	}

	var writer collector.JobWriter = st
	if flagIsSet(cmd, "dry-run") {
		logger.Info("dry run, matched jobs are only logged")
		writer = store.NewDryRun(logger)
	}

	steps := prepareFilters(cmd, config, st)
	for _, status := range filtering.Describe(steps) {
		logger.Debug("filter", zap.String("name", status.Name), zap.Bool("enabled", status.Enabled), zap.String("reason", status.Reason))
	}

	c, err := collector.New(config.Collector, collector.Deps{
		Skills:  st,
		Search:  search,
		Matcher: skills.NewMatcher(embedder, config.Matcher, logger),
		Jobs:    writer,
		Filters: steps,
		Logger:  logger,
		Metrics: m,
	})
	if err != nil {
		closeEmbedder()
		return fail(err)
	}

	return &pipeline{
		collector: c,
		close: func() {
			closeEmbedder()
			if err := st.Close(); err != nil {
				logger.Warn("closing store", zap.Error(err))
			}
		},
	}, nil
}
