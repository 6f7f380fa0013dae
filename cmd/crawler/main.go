package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/corvidsearch/notice/internal/config"
	"github.com/corvidsearch/notice/internal/crawlpool"
	"github.com/corvidsearch/notice/internal/fts"
	"github.com/corvidsearch/notice/internal/genai"
	"github.com/corvidsearch/notice/internal/pace"
	"github.com/corvidsearch/notice/internal/robots"
	"github.com/corvidsearch/notice/internal/scrape"
	"github.com/corvidsearch/notice/internal/store"
)

const healthTimeout = 5 * time.Second

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setLogLevel(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := store.New(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to apply migrations")
	}

	if _, err := db.ResetStale(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to reset stale queue entries")
	}

	var index fts.FullTextIndex = fts.NewSolr(cfg.SolrURL, cfg.SolrTimeout)

	if cfg.SolrURL == "" {
		logger.Warn().Msg("No Solr URL configured, using in-memory index")

		index = fts.NewMemory()
	} else if err := index.Configure(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to configure index schema")
	}

	pool := crawlpool.New(
		crawlpool.Config{
			Workers:           cfg.CrawlerWorkers,
			MaxContentBytes:   cfg.CrawlerMaxBytes,
			SummaryInputBytes: cfg.CrawlerSummaryMaxLen,
			DiscoverLinks:     cfg.CrawlerDiscoverLinks,
			IdleSleep:         cfg.CrawlerIdleSleep,
			FetchRPS:          cfg.CrawlerFetchRPS,
		},
		db, db,
		scrape.New(cfg.CrawlerUserAgent, cfg.CrawlerRequestTime),
		robots.New(cfg.CrawlerUserAgent),
		pace.New(cfg.CrawlerPoliteDelay),
		index,
		genai.New(cfg.LLMProvider, cfg.LLMAPIKey, cfg.LLMModel),
		&logger,
	)

	go func() {
		logger.Info().Int("port", cfg.HealthPort).Msg("Starting health server")

		if err := runHealthServer(ctx, cfg.HealthPort, pool); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Health server error")
		}
	}()

	logger.Info().Msg("Starting crawler")

	if err := pool.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("Crawler error")
	}

	logger.Info().Msg("Crawler stopped")
}

// runHealthServer exposes liveness, readiness, and metrics endpoints
// for the standalone crawler process.
func runHealthServer(ctx context.Context, port int, pool *crawlpool.Pool) error {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)

		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if !pool.Running() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
	})

	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: healthTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), healthTimeout)
		defer cancel()

		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil {
		return fmt.Errorf("start health server: %w", err)
	}

	return nil
}

// setLogLevel sets the global log level based on the configuration.
func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
