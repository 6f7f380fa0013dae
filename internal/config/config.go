// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every tunable knob for both the server and crawler
// binaries. Both processes load the same struct; each only reads the
// fields relevant to it.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"local"`

	Host string `env:"HOST" envDefault:"0.0.0.0"`
	Port int    `env:"PORT" envDefault:"8080"`

	PostgresDSN string `env:"POSTGRES_DSN,required"`

	SolrURL     string        `env:"SOLR_URL" envDefault:"http://localhost:8983/solr/notice"`
	SolrTimeout time.Duration `env:"SOLR_TIMEOUT" envDefault:"10s"`

	LLMAPIKey   string `env:"LLM_API_KEY" envDefault:"mock"`
	LLMProvider string `env:"LLM_PROVIDER" envDefault:"anthropic"`
	LLMModel    string `env:"LLM_MODEL" envDefault:"claude-haiku-4.5"`

	DiscoveryPrimaryURL   string `env:"DISCOVERY_PRIMARY_URL" envDefault:"https://www.bing.com/search"`
	DiscoverySecondaryURL string `env:"DISCOVERY_SECONDARY_URL" envDefault:"https://duckduckgo.com/html"`
	DiscoveryAPIKey       string `env:"DISCOVERY_API_KEY"`

	CurrencyAPIURL string `env:"CURRENCY_API_URL" envDefault:"https://api.exchangerate.host/latest"`
	CurrencyAPIKey string `env:"CURRENCY_API_KEY"`

	// Crawler tuning knobs.
	CrawlerEnabled       bool          `env:"CRAWLER_ENABLED" envDefault:"true"`
	CrawlerWorkers       int           `env:"CRAWLER_WORKERS" envDefault:"2"`
	CrawlerPoliteDelay   time.Duration `env:"CRAWLER_POLITE_DELAY" envDefault:"1000ms"`
	CrawlerRequestTime   time.Duration `env:"CRAWLER_REQUEST_TIMEOUT" envDefault:"30s"`
	CrawlerMaxBytes      int64         `env:"CRAWLER_MAX_CONTENT_BYTES" envDefault:"5242880"`
	CrawlerUserAgent     string        `env:"CRAWLER_USER_AGENT" envDefault:"NoticeBot/1.0 (+https://notice.example/bot)"`
	CrawlerDiscoverLinks bool          `env:"CRAWLER_DISCOVER_LINKS" envDefault:"true"`
	CrawlerMaxLinkDepth  int           `env:"CRAWLER_MAX_LINK_DEPTH" envDefault:"3"`
	CrawlerIdleSleep     time.Duration `env:"CRAWLER_IDLE_SLEEP" envDefault:"5s"`
	CrawlerFetchRPS      float64       `env:"CRAWLER_FETCH_RPS" envDefault:"2"`
	CrawlerSummaryMaxLen int           `env:"CRAWLER_SUMMARY_INPUT_BYTES" envDefault:"8000"`

	HealthPort int    `env:"HEALTH_PORT" envDefault:"8081"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`

	AuthRequireBearer bool   `env:"AUTH_REQUIRE_BEARER" envDefault:"false"`
	AuthBearerToken   string `env:"AUTH_BEARER_TOKEN"`
}

// Load reads a .env file if present (ignored if missing) and parses
// environment variables into a Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}
