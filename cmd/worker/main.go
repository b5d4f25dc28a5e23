package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"scoutiq/internal/analytics"
	"scoutiq/internal/config"
	"scoutiq/internal/db"
	"scoutiq/internal/logging"
	"scoutiq/internal/processor"
	queue "scoutiq/internal/queue"
	"scoutiq/internal/scheduler"
	"scoutiq/internal/service"
	"scoutiq/internal/textgen"
)

var (
	_ service.Reader        = (*db.MatchReader)(nil)
	_ service.Writer        = (*db.AnalyticsWriter)(nil)
	_ service.PoolRefresher = (*db.PoolRefresher)(nil)
	_ service.TextGenerator = (*textgen.Client)(nil)
	_ processor.Service     = (*service.AnalyticsService)(nil)
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logging.Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf("config load failed: %v", err)
		os.Exit(1)
	}
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		logger.Errorf("invalid LOG_LEVEL: %v", err)
		os.Exit(1)
	}

	pool, err := db.NewPool(ctx, cfg.DBURL, int32(cfg.WorkerCount+2))
	if err != nil {
		logger.Errorf("db connection failed: %v", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		logger.Errorf("schema setup failed: %v", err)
		os.Exit(1)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Errorf("invalid redis url: %v", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	textClient := textgen.NewClient(textgen.Config{
		APIKey:   cfg.TextGenAPIKey,
		BaseURL:  cfg.TextGenBaseURL,
		Model:    cfg.TextGenModel,
		Timeout:  cfg.TextGenTimeout,
		CacheTTL: cfg.TextGenCacheTTL,
	}, textgen.NewRedisCache(redisClient))
	if !textClient.Configured() {
		logger.Warnf("TEXTGEN_API_KEY not set, scouting explanations will use fallback text")
	}

	matchReader := db.NewMatchReader(pool)
	analyticsWriter := db.NewAnalyticsWriter(pool)
	poolRefresher := db.NewPoolRefresher(pool)

	var profiles analytics.ProfileStrategy = analytics.HistoricalProfiles{Source: matchReader}
	if cfg.ProfileStrategy == analytics.StrategyStatic {
		profiles = analytics.StaticProfiles{}
	}

	svc := service.New(matchReader, analyticsWriter, textClient, service.Options{
		SnapshotWindow:    cfg.SnapshotWindow,
		CarryPressureRows: cfg.CarryPressureRows,
		Profiles:          profiles,
		Pools:             poolRefresher,
	})

	if cfg.ProfileRefreshCron != "" {
		profileScheduler, err := scheduler.NewProfileScheduler(cfg.ProfileRefreshCron, svc)
		if err != nil {
			logger.Errorf("profile scheduler setup failed: %v", err)
			os.Exit(1)
		}
		if err := profileScheduler.Start(); err != nil {
			logger.Errorf("profile scheduler start failed: %v", err)
			os.Exit(1)
		}
		defer profileScheduler.Stop()
	} else {
		logger.Infof("PROFILE_REFRESH_CRON empty, scheduled profile refresh disabled")
	}

	proc := processor.NewAnalyticsProcessor(svc)
	q := queue.NewRedisQueue(redisClient, cfg.RedisQueue)

	// Use concurrent processing if worker count > 1
	if cfg.WorkerCount > 1 {
		logger.Infof("starting concurrent consumption with %d workers", cfg.WorkerCount)
		if err := q.ConsumeConcurrent(ctx, cfg.RedisQueue, cfg.WorkerCount, cfg.JobBufferSize, proc.Handle); err != nil && ctx.Err() == nil {
			logger.Errorf("queue consumption ended: %v", err)
			os.Exit(1)
		}
	} else {
		logger.Infof("starting single-threaded consumption")
		if err := q.Consume(ctx, cfg.RedisQueue, proc.Handle); err != nil && ctx.Err() == nil {
			logger.Errorf("queue consumption ended: %v", err)
			os.Exit(1)
		}
	}
}
