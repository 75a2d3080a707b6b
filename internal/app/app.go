package app

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/kopikita/cafereco/internal/cache"
	"github.com/kopikita/cafereco/internal/config"
	"github.com/kopikita/cafereco/internal/engine"
	"github.com/kopikita/cafereco/internal/handlers"
	"github.com/kopikita/cafereco/internal/middleware"
	"github.com/kopikita/cafereco/internal/scoring"
	"github.com/kopikita/cafereco/internal/sentiment"
	"github.com/kopikita/cafereco/internal/upstream"
)

type App struct {
	config *config.Config
	logger *logrus.Logger

	upstream    *upstream.Client
	sentiment   *sentiment.Aggregator
	recommender *engine.Recommender
	evaluator   *engine.Evaluator

	router *gin.Engine
}

func New(cfg *config.Config) (*App, error) {
	app := &App{
		config: cfg,
		logger: setupLogger(cfg),
	}

	upstreamClient := upstream.New(upstream.Config{
		BaseURL:      cfg.Upstream.BaseURL,
		FetchTimeout: cfg.Upstream.FetchTimeout,
		RetryCount:   cfg.Upstream.RetryCount,
		UserCacheTTL: cfg.Upstream.UserCacheTTL,
		CafeCacheTTL: cfg.Upstream.CafeCacheTTL,
	}, app.logger)
	app.upstream = upstreamClient

	sentimentAggregator := sentiment.New(upstreamClient, sentiment.Prior{
		Mu: cfg.Algorithm.SentimentPrior.Mu,
		C:  cfg.Algorithm.SentimentPrior.C,
	}, cfg.Upstream.SentimentTTL)

	redisTier, err := cache.NewRedisTier(cfg.Redis.URL, cfg.Redis.Timeout, cfg.Redis.PoolSize, cfg.Upstream.SentimentTTL)
	if err != nil {
		app.logger.WithError(err).Warn("redis tier disabled: invalid configuration")
	} else if redisTier != nil {
		sentimentAggregator = sentimentAggregator.WithRedisTier(redisTier)
	}
	app.sentiment = sentimentAggregator

	params := engine.Params{
		Weights: scoring.Weights{
			CF:          cfg.Algorithm.Weights.CF,
			VF:          cfg.Algorithm.Weights.VF,
			CO:          cfg.Algorithm.Weights.CO,
			SentAndRate: cfg.Algorithm.Weights.SentAndRate,
		},
		KNNMaxNeighbors:   cfg.Algorithm.KNNMaxNeighbors,
		TopNPerSignal:     cfg.Algorithm.TopNPerSignal,
		PoolCap:           cfg.Algorithm.PoolCap,
		TopK:              cfg.Algorithm.TopK,
		NormalizationPctl: cfg.Algorithm.NormalizationPctl,
		RatingCap:         cfg.Algorithm.RatingCap,
	}

	app.recommender = engine.NewRecommender(upstreamClient, sentimentAggregator, params, app.logger)
	app.evaluator = engine.NewEvaluator(upstreamClient, sentimentAggregator, engine.EvalParams{
		Params:  params,
		Cutoffs: cfg.Algorithm.RankingCutoffs,
		CVSeed:  cfg.Algorithm.CVSeed,
	}, app.logger)

	app.setupRouter(cfg)

	return app, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

// Shutdown releases no resources today — there's no database connection
// and no background worker pool, just the upstream HTTP client, which
// closes its idle connections on process exit.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down")
	return nil
}

func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}

func (a *App) setupRouter(cfg *config.Config) {
	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Logger(a.logger))
	router.Use(middleware.Recovery(a.logger))
	router.Use(middleware.CORS(cfg))
	router.Use(middleware.CompressionMiddleware())

	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	recommendHandler := handlers.NewRecommendHandler(a.recommender)
	evaluateHandler := handlers.NewEvaluateHandler(a.evaluator, cfg.Algorithm.EvaluatorM, cfg.Algorithm.CVFolds)

	router.GET("/recommend/:user_id", recommendHandler.Get)
	router.GET("/evaluate", evaluateHandler.Get)

	a.router = router
}
