package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/couponwatch/couponwatch/internal/aggregator"
	"github.com/couponwatch/couponwatch/internal/config"
	"github.com/couponwatch/couponwatch/internal/couponcheck"
	"github.com/couponwatch/couponwatch/internal/history"
	"github.com/couponwatch/couponwatch/internal/httpclient"
	"github.com/couponwatch/couponwatch/internal/logger"
	"github.com/couponwatch/couponwatch/internal/notifier"
	"github.com/couponwatch/couponwatch/internal/scheduler"
	"github.com/couponwatch/couponwatch/internal/sources"

	"github.com/rs/zerolog"
)

func main() {
	configFile := flag.String("config", "", "Path to the YAML/JSON configuration file. If not set, searches default locations.")
	configFileAlias := flag.String("c", "", "Alias for --config")

	modeFlag := flag.String("mode", "", "Mode to run the tool: onetime or automated (overrides config file if set)")
	modeFlagAlias := flag.String("m", "", "Alias for --mode")
	flag.Parse()

	if *configFile == "" && *configFileAlias != "" {
		*configFile = *configFileAlias
	}
	if *modeFlag == "" && *modeFlagAlias != "" {
		*modeFlag = *modeFlagAlias
	}

	gCfg, err := config.LoadGlobalConfig(*configFile)
	if err != nil {
		log.Fatalf("[FATAL] Could not load config using path '%s': %v", *configFile, err)
	}

	zLogger, err := logger.New(gCfg.LogConfig)
	if err != nil {
		log.Fatalf("[FATAL] Could not initialize logger: %v", err)
	}

	if *modeFlag != "" {
		gCfg.Mode = *modeFlag
		zLogger.Info().Str("mode", gCfg.Mode).Msg("Mode overridden by command line flag")
	}

	if err := config.ValidateConfig(gCfg); err != nil {
		zLogger.Fatal().Err(err).Msg("Configuration validation failed")
	}

	httpClient, err := httpclient.NewClientBuilder(zLogger).
		WithTimeout(time.Duration(gCfg.HTTPConfig.TimeoutSecs) * time.Second).
		WithUserAgent(gCfg.HTTPConfig.UserAgent).
		Build()
	if err != nil {
		zLogger.Fatal().Err(err).Msg("Failed to build HTTP client")
	}

	historyStore := history.NewStore(gCfg.HistoryConfig.Capacity, zLogger)
	if gCfg.HistoryConfig.Persist {
		historyDB, err := history.NewDB(gCfg.HistoryConfig.SQLitePath, zLogger)
		if err != nil {
			zLogger.Fatal().Err(err).Msg("Failed to open history database")
		}
		defer historyDB.Close()
		if err := historyStore.WithPersistence(historyDB); err != nil {
			zLogger.Fatal().Err(err).Msg("Failed to restore history from database")
		}
	}

	adapters := sources.BuildAdapters(gCfg.SourcesConfig, httpClient, zLogger)
	checker := couponcheck.NewChecker(gCfg.CouponCheckConfig, httpClient, zLogger)
	agg := aggregator.NewAggregator(adapters, checker, historyStore, zLogger)

	discordNotifier := notifier.NewDiscordNotifier(zLogger, &http.Client{Timeout: 20 * time.Second})
	notificationHelper := notifier.NewNotificationHelper(gCfg.NotificationConfig, discordNotifier, zLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		zLogger.Info().Str("signal", sig.String()).Msg("Received interrupt signal, initiating graceful shutdown")
		cancel()
	}()

	// SIGUSR1 clears the emitted-URL history so the next run re-announces
	// everything it finds.
	clearChan := make(chan os.Signal, 1)
	signal.Notify(clearChan, syscall.SIGUSR1)
	go func() {
		for range clearChan {
			if err := historyStore.Clear(); err != nil {
				zLogger.Error().Err(err).Msg("Failed to clear history")
			}
		}
	}()

	deliver := func(ctx context.Context, result aggregator.RunResult) {
		notificationHelper.DeliverCourses(ctx, result.Confirmed)
		notificationHelper.SendRunSummary(ctx, result.Summary)
	}

	if gCfg.Mode == "automated" {
		runAutomated(ctx, gCfg, agg, deliver, zLogger)
	} else {
		runOnetime(ctx, agg, deliver, zLogger)
	}
}

// runOnetime performs a single discovery run and delivers the outcome.
func runOnetime(ctx context.Context, agg *aggregator.Aggregator, deliver scheduler.ResultHandler, zLogger zerolog.Logger) {
	runID := time.Now().Format("20060102-150405")
	result, err := agg.Run(ctx, runID)
	if err != nil {
		zLogger.Fatal().Err(err).Str("run_id", runID).Msg("Discovery run failed")
	}
	deliver(ctx, result)
	zLogger.Info().Int("new_confirmed", len(result.Confirmed)).Msg("Onetime run completed")
}

// runAutomated starts the periodic scheduler and blocks until shutdown.
func runAutomated(ctx context.Context, gCfg *config.GlobalConfig, agg *aggregator.Aggregator, deliver scheduler.ResultHandler, zLogger zerolog.Logger) {
	sched, err := scheduler.NewScheduler(gCfg.SchedulerConfig, agg, deliver, zLogger)
	if err != nil {
		zLogger.Fatal().Err(err).Msg("Failed to initialize scheduler")
	}

	if err := sched.Start(ctx); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			zLogger.Info().Msg("Scheduler stopped due to context cancellation")
		} else {
			zLogger.Error().Err(err).Msg("Scheduler error")
		}
	}
	zLogger.Info().Msg("Automated mode completed or interrupted")
}
