package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/corvidsearch/notice/internal/config"
	"github.com/corvidsearch/notice/internal/crawlpool"
	"github.com/corvidsearch/notice/internal/discovery"
	"github.com/corvidsearch/notice/internal/fts"
	"github.com/corvidsearch/notice/internal/genai"
	"github.com/corvidsearch/notice/internal/instant"
	"github.com/corvidsearch/notice/internal/pace"
	"github.com/corvidsearch/notice/internal/query"
	"github.com/corvidsearch/notice/internal/robots"
	"github.com/corvidsearch/notice/internal/scrape"
	"github.com/corvidsearch/notice/internal/server"
	"github.com/corvidsearch/notice/internal/store"
)

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

	reset, err := db.ResetStale(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to reset stale queue entries")
	}

	if reset > 0 {
		logger.Info().Int64("count", reset).Msg("Reset stale queue entries")
	}

	index := newIndex(ctx, cfg, &logger)

	llm := genai.New(cfg.LLMProvider, cfg.LLMAPIKey, cfg.LLMModel)
	scraper := scrape.New(cfg.CrawlerUserAgent, cfg.CrawlerRequestTime)
	robotsCache := robots.New(cfg.CrawlerUserAgent)
	pacer := pace.New(cfg.CrawlerPoliteDelay)

	pool := crawlpool.New(
		crawlpool.Config{
			Workers:           cfg.CrawlerWorkers,
			MaxContentBytes:   cfg.CrawlerMaxBytes,
			SummaryInputBytes: cfg.CrawlerSummaryMaxLen,
			DiscoverLinks:     cfg.CrawlerDiscoverLinks,
			IdleSleep:         cfg.CrawlerIdleSleep,
			FetchRPS:          cfg.CrawlerFetchRPS,
		},
		db, db, scraper, robotsCache, pacer, index, llm, &logger,
	)

	discoverer := discovery.New(cfg.DiscoveryPrimaryURL, cfg.DiscoverySecondaryURL, cfg.CrawlerUserAgent)
	currency := instant.NewCurrencyConverter(cfg.CurrencyAPIURL, cfg.CurrencyAPIKey)
	pipeline := query.New(index, llm, currency, discoverer, db, &logger)

	srv := server.New(db, index, pool, pipeline, server.AuthConfig{
		Required: cfg.AuthRequireBearer,
		Token:    cfg.AuthBearerToken,
	}, &logger)

	if cfg.CrawlerEnabled {
		go func() {
			if err := pool.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("Crawler pool error")
			}
		}()
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	logger.Info().Str("addr", addr).Msg("Starting server")

	if err := srv.Start(ctx, addr); err != nil {
		logger.Fatal().Err(err).Msg("Server error")
	}

	logger.Info().Msg("Server stopped")
}

// newIndex selects the full-text index adapter: Solr when configured,
// otherwise the in-process fallback.
func newIndex(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) fts.FullTextIndex {
	if cfg.SolrURL == "" {
		logger.Warn().Msg("No Solr URL configured, using in-memory index")

		return fts.NewMemory()
	}

	index := fts.NewSolr(cfg.SolrURL, cfg.SolrTimeout)

	if err := index.Configure(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to configure index schema")
	}

	return index
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
