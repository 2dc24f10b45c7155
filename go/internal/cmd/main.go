package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/ktbartholomew/karate-scoreboard/go/internal/config"
	"github.com/ktbartholomew/karate-scoreboard/go/internal/feed"
	"github.com/ktbartholomew/karate-scoreboard/go/internal/gateway"
	"github.com/ktbartholomew/karate-scoreboard/go/internal/schedule"
	"github.com/ktbartholomew/karate-scoreboard/go/internal/scoreboard"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(config.PathFromEnv())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogLevel(cfg.LogLevel)

	basePublisher, natsConn, closeFeed := setupPublisher(cfg)
	defer closeFeed()
	feedStats := feed.NewStatsCollector()
	publisher := feed.NewMetricPublisher(basePublisher, feedStats)
	feedHealth := feed.NewHealthChecker(feedStats, natsConn)

	connConfig := gateway.DefaultConnectionConfig()
	connConfig.PromptTimeout = cfg.PromptTimeout()
	connConfig.CheckOrigin = originChecker(cfg.Server.AllowedOrigins)
	displays := gateway.NewConnectionManager(connConfig)

	engine := scoreboard.NewEngine(cfg.EngineConfig(), schedule.RealClock(), displays,
		scoreboard.WithPresenters(displays),
		scoreboard.WithPrompter(displays),
		scoreboard.WithPublisher(publisher),
	)

	log.Info().
		Str("match_id", engine.ID().String()).
		Int("duration_sec", cfg.Match.DurationSec).
		Str("nats_url", cfg.NATS.URL).
		Str("port", cfg.Server.Port).
		Msg("starting scoreboard")

	server := setupServer(cfg, displays, engine, feedHealth)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go displays.Start(ctx)
	go func() {
		if err := engine.Run(ctx); err != nil {
			log.Error().Err(err).Msg("scoreboard engine failed")
		}
	}()

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	cancel()

	log.Info().Msg("scoreboard shutdown complete")
}

func setupLogLevel(name string) {
	level, err := zerolog.ParseLevel(name)
	if err != nil || name == "" {
		log.Warn().Str("log_level", name).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

// setupPublisher returns the NATS feed when configured, otherwise a log-only feed. The
// connection status is nil for the log-only feed.
func setupPublisher(cfg *config.Config) (feed.Publisher, feed.ConnStatus, func()) {
	if cfg.NATS.URL == "" {
		return feed.NewLogPublisher(), nil, func() {}
	}

	nc, err := feed.Connect(cfg.NATS.URL)
	if err != nil {
		log.Error().Err(err).Str("nats_url", cfg.NATS.URL).Msg("NATS unavailable, match events will only be logged")
		return feed.NewLogPublisher(), nil, func() {}
	}

	log.Info().
		Str("nats_url", cfg.NATS.URL).
		Str("subject_prefix", cfg.NATS.SubjectPrefix).
		Msg("publishing match events to NATS")

	return feed.NewNATSPublisher(nc, cfg.NATS.SubjectPrefix), nc, func() {
		if err := nc.Drain(); err != nil {
			log.Error().Err(err).Msg("failed to drain NATS connection")
		}
	}
}
