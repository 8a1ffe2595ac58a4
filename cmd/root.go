package cmd

import (
	"errors"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/job-matcher/internal/collector"
	"github.com/spigell/job-matcher/internal/embedding"
	"github.com/spigell/job-matcher/internal/jsearch"
	"github.com/spigell/job-matcher/internal/skills"
	"github.com/spigell/job-matcher/internal/store"
)

const (
	app = "job-matcher"

	defaultSchedule    = "@every 24h"
	defaultMetricsAddr = ":9090"
	defaultDSN         = app + ".db"
)

type Config struct {
	Search    *jsearch.SearchParams `mapstructure:"search"`
	UserAgent string                `mapstructure:"user-agent"`
	RapidAPI  *RapidAPIConfig       `mapstructure:"rapidapi"`
	Store     *StoreConfig          `mapstructure:"store"`
	Collector *collector.Config     `mapstructure:"collector"`
	Matcher   *skills.Config        `mapstructure:"matcher"`
	Embedding *EmbeddingConfig      `mapstructure:"embedding"`
	Exclude   *struct {
		Employers []string
	}
	Schedule string         `mapstructure:"schedule"`
	Metrics  *MetricsConfig `mapstructure:"metrics"`
}

type RapidAPIConfig struct {
	APIKey     string `mapstructure:"api-key" json:"-"`
	APIKeyFile string `mapstructure:"api-key-file"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn" json:"-"`
}

type EmbeddingConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	RedisURL string        `mapstructure:"redis-url" json:"-"`
	CacheTTL time.Duration `mapstructure:"cache-ttl"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key" json:"-"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	MaxRetries int    `mapstructure:"max-retries"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "job-matcher searches job postings for every stored resume and keeps the ones matching its skills",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envs := map[string]string{
		"rapidapi.api-key-file":         "RAPIDAPI_KEY_FILE",
		"embedding.gemini.api-key-file": "GEMINI_API_KEY_FILE",
		"store.dsn":                     "JOB_MATCHER_DSN",
		"embedding.redis-url":           "REDIS_URL",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("schedule", defaultSchedule)
	viper.SetDefault("metrics.addr", defaultMetricsAddr)
	viper.SetDefault("store.driver", store.DriverSQLite)
	viper.SetDefault("store.dsn", defaultDSN)
	viper.SetDefault("embedding.gemini.model", embedding.DefaultGeminiModel)
	viper.SetDefault("embedding.gemini.max-retries", 3)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is job-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if versionCmd.CalledAs() != "" {
		return
	}

	// variables from .env never override the real environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	err := viper.ReadInConfig()
	if err == nil {
		return
	}

	// Without an explicit --config the defaults and the environment are enough.
	var notFound viper.ConfigFileNotFoundError
	if cfgFile == "" && errors.As(err, &notFound) {
		return
	}

	log.Fatal(err)
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		return nil, errors.New("config is empty")
	}

	return config, nil
}
