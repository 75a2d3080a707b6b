package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Upstream   UpstreamConfig   `mapstructure:"upstream"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Algorithm  AlgorithmConfig  `mapstructure:"recommendation"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Security   SecurityConfig   `mapstructure:"security"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// UpstreamConfig describes the collaborator API this engine consumes
// (spec.md §6): users, cafés, visits, reviews/sentiment.
type UpstreamConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	RetryCount   int           `mapstructure:"retry_count"`
	UserCacheTTL time.Duration `mapstructure:"user_cache_ttl"`
	CafeCacheTTL time.Duration `mapstructure:"cafe_cache_ttl"`
	SentimentTTL time.Duration `mapstructure:"sentiment_cache_ttl"`
}

// RedisConfig is optional: an empty URL keeps the sentiment cache purely
// in-memory — the cache package treats a nil client as "no second tier".
type RedisConfig struct {
	URL      string        `mapstructure:"url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	PoolSize int           `mapstructure:"pool_size"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AlgorithmConfig holds every tunable constant spec.md §6 names: fusion
// weights, Bayesian prior, KNN neighbourhood size, pool sizing, Top-K, the
// ranking K-set, and the evaluator's defaults.
type AlgorithmConfig struct {
	Weights           FusionWeights  `mapstructure:"weights"`
	SentimentPrior    SentimentPrior `mapstructure:"sentiment_prior"`
	KNNMaxNeighbors   int            `mapstructure:"knn_max_neighbors"`
	TopNPerSignal     int            `mapstructure:"top_n_per_signal"`
	PoolCap           int            `mapstructure:"pool_cap"`
	TopK              int            `mapstructure:"top_k"`
	RankingCutoffs    []int          `mapstructure:"ranking_cutoffs"`
	EvaluatorM        int            `mapstructure:"evaluator_m"`
	CVFolds           int            `mapstructure:"cv_folds"`
	CVSeed            int64          `mapstructure:"cv_seed"`
	NormalizationPctl float64        `mapstructure:"normalization_percentile"`
	RatingCap         float64        `mapstructure:"rating_cap"`
}

type FusionWeights struct {
	CF          float64 `mapstructure:"cf"`
	VF          float64 `mapstructure:"vf"`
	CO          float64 `mapstructure:"co"`
	SentAndRate float64 `mapstructure:"sent_and_rate"`
}

type SentimentPrior struct {
	Mu float64 `mapstructure:"mu"`
	C  float64 `mapstructure:"c"`
}

type MonitoringConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Port        string `mapstructure:"port"`
	MetricsPath string `mapstructure:"metrics_path"`
}

type SecurityConfig struct {
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

func Load() (*Config, error) {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional, continue with env vars and defaults.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "development")

	viper.SetDefault("upstream.base_url", "http://127.0.0.1:8080")
	viper.SetDefault("upstream.fetch_timeout", "6s")
	viper.SetDefault("upstream.retry_count", 2)
	viper.SetDefault("upstream.user_cache_ttl", "2s")
	viper.SetDefault("upstream.cafe_cache_ttl", "2s")
	viper.SetDefault("upstream.sentiment_cache_ttl", "1h")

	viper.SetDefault("redis.url", "")
	viper.SetDefault("redis.timeout", "5s")
	viper.SetDefault("redis.pool_size", 5)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")

	viper.SetDefault("recommendation.weights.cf", 0.5)
	viper.SetDefault("recommendation.weights.vf", 0.2)
	viper.SetDefault("recommendation.weights.co", 0.2)
	viper.SetDefault("recommendation.weights.sent_and_rate", 0.1)
	viper.SetDefault("recommendation.sentiment_prior.mu", 0.6)
	viper.SetDefault("recommendation.sentiment_prior.c", 5.0)
	viper.SetDefault("recommendation.knn_max_neighbors", 7)
	viper.SetDefault("recommendation.top_n_per_signal", 50)
	viper.SetDefault("recommendation.pool_cap", 300)
	viper.SetDefault("recommendation.top_k", 6)
	viper.SetDefault("recommendation.ranking_cutoffs", []int{1, 3, 5, 10})
	viper.SetDefault("recommendation.evaluator_m", 3)
	viper.SetDefault("recommendation.cv_folds", 5)
	viper.SetDefault("recommendation.cv_seed", 42)
	viper.SetDefault("recommendation.normalization_percentile", 95.0)
	viper.SetDefault("recommendation.rating_cap", 5.0)

	viper.SetDefault("monitoring.enabled", true)
	viper.SetDefault("monitoring.port", "9090")
	viper.SetDefault("monitoring.metrics_path", "/metrics")

	viper.SetDefault("security.cors.allowed_origins", []string{"*"})
	viper.SetDefault("security.cors.allowed_methods", []string{"GET", "OPTIONS"})
	viper.SetDefault("security.cors.allowed_headers", []string{"*"})
}
