// Package crawlpool runs the crawler: a fixed set of long-lived
// workers draining the durable queue, each taking a URL through
// robots gating, politeness pacing, scraping, persistence, indexing,
// summarization, and link discovery.
package crawlpool

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/corvidsearch/notice/internal/fts"
	"github.com/corvidsearch/notice/internal/genai"
	"github.com/corvidsearch/notice/internal/pace"
	"github.com/corvidsearch/notice/internal/robots"
	"github.com/corvidsearch/notice/internal/scrape"
	"github.com/corvidsearch/notice/internal/store"
)

const (
	defaultWorkers           = 2
	defaultIdleSleep         = 5 * time.Second
	defaultMaxContentBytes   = 5 * 1024 * 1024
	defaultSummaryInputBytes = 8000

	queueMetricsInterval = 30 * time.Second
)

// Queue is the durable work-queue surface the pool drains.
// *store.DB satisfies it.
type Queue interface {
	DequeueNext(ctx context.Context) (*store.QueueEntry, error)
	MarkCompleted(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id, reason string) error
	Enqueue(ctx context.Context, url string, priority int, submitter string) (*store.QueueEntry, error)
	URLIsKnown(ctx context.Context, url string) (bool, error)
	QueueStatsSnapshot(ctx context.Context) (store.QueueStats, error)
}

// Documents is the row-store surface the pool writes crawled pages
// through. *store.DB satisfies it.
type Documents interface {
	GetDocumentByURL(ctx context.Context, url string) (*store.Document, error)
	InsertDocument(ctx context.Context, url, title, rawText string, quality float64) (*store.Document, error)
	UpdateSummary(ctx context.Context, id, summary string) (*store.Document, error)
	MarkSummaryFailed(ctx context.Context, id string) error
}

// Config tunes the pool.
type Config struct {
	Workers           int
	MaxContentBytes   int64
	SummaryInputBytes int
	DiscoverLinks     bool
	IdleSleep         time.Duration
	FetchRPS          float64
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}

	if c.MaxContentBytes <= 0 {
		c.MaxContentBytes = defaultMaxContentBytes
	}

	if c.SummaryInputBytes <= 0 {
		c.SummaryInputBytes = defaultSummaryInputBytes
	}

	if c.IdleSleep <= 0 {
		c.IdleSleep = defaultIdleSleep
	}

	return c
}

// Pool coordinates the crawl workers. All collaborators are shared
// and safe for concurrent use; the pool itself only owns the worker
// lifecycle.
type Pool struct {
	cfg        Config
	queue      Queue
	docs       Documents
	scraper    *scrape.Scraper
	robots     *robots.Cache
	pacer      *pace.Pacer
	index      fts.FullTextIndex
	summarizer genai.Summarizer
	limiter    *rate.Limiter
	logger     *zerolog.Logger

	running atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New creates a Pool. The rate limiter bounds total fetch throughput
// across all workers on top of the per-domain pacer.
func New(
	cfg Config,
	queue Queue,
	docs Documents,
	scraper *scrape.Scraper,
	robotsCache *robots.Cache,
	pacer *pace.Pacer,
	index fts.FullTextIndex,
	summarizer genai.Summarizer,
	logger *zerolog.Logger,
) *Pool {
	cfg = cfg.withDefaults()

	rps := cfg.FetchRPS
	if rps <= 0 {
		rps = float64(cfg.Workers)
	}

	return &Pool{
		cfg:        cfg,
		queue:      queue,
		docs:       docs,
		scraper:    scraper,
		robots:     robotsCache,
		pacer:      pacer,
		index:      index,
		summarizer: summarizer,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

// Run starts the workers and blocks until ctx is cancelled or Stop is
// called, then waits for in-flight URLs to finish.
func (p *Pool) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()

	p.running.Store(true)
	defer p.running.Store(false)

	p.logger.Info().
		Int("workers", p.cfg.Workers).
		Bool("discover_links", p.cfg.DiscoverLinks).
		Msg("Starting crawl workers")

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()
		p.publishQueueMetrics(ctx)
	}()

	for i := 0; i < p.cfg.Workers; i++ {
		wg.Add(1)

		go func(id int) {
			defer wg.Done()
			p.worker(ctx, id)
		}(i)
	}

	wg.Wait()
	p.logger.Info().Msg("Crawl workers stopped")

	return ctx.Err()
}

// Stop cancels the worker context. Workers finish their current URL
// and exit; in-flight HTTP and DB calls run to their own timeouts.
func (p *Pool) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
	}
}

// Running reports whether the pool currently has live workers.
func (p *Pool) Running() bool {
	return p.running.Load()
}

// worker is one long-lived crawl loop: lease, process, ack, repeat.
func (p *Pool) worker(ctx context.Context, id int) {
	logger := p.logger.With().Int("worker", id).Logger()

	for {
		if ctx.Err() != nil {
			return
		}

		entry, err := p.queue.DequeueNext(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Dequeue failed")
			p.idle(ctx)

			continue
		}

		if entry == nil {
			p.idle(ctx)

			continue
		}

		p.handleEntry(ctx, &logger, entry)
	}
}

// handleEntry runs one queue entry through the pipeline and records
// the outcome on the queue row. Errors are local to the entry: the
// worker always moves on to the next URL.
func (p *Pool) handleEntry(ctx context.Context, logger *zerolog.Logger, entry *store.QueueEntry) {
	urlsProcessedTotal.Inc()

	result, err := p.ProcessURL(ctx, entry.URL)
	if err != nil {
		crawlErrorsTotal.Inc()
		logger.Warn().Err(err).Str("url", entry.URL).Int("retry", entry.RetryCount).Msg("Crawl failed")

		if markErr := p.queue.MarkFailed(ctx, entry.ID, err.Error()); markErr != nil {
			logger.Error().Err(markErr).Str("url", entry.URL).Msg("Failed to record crawl failure")
		}

		return
	}

	if err := p.queue.MarkCompleted(ctx, entry.ID); err != nil {
		logger.Error().Err(err).Str("url", entry.URL).Msg("Failed to record crawl completion")
	}

	p.enqueueDiscovered(ctx, logger, result.Links)

	logger.Info().
		Str("url", entry.URL).
		Int("links", len(result.Links)).
		Bool("already_known", result.AlreadyKnown).
		Msg("Crawled")
}

// enqueueDiscovered feeds newly discovered links back into the queue
// at discovery priority, skipping anything already known.
func (p *Pool) enqueueDiscovered(ctx context.Context, logger *zerolog.Logger, links []string) {
	for _, link := range links {
		known, err := p.queue.URLIsKnown(ctx, link)
		if err != nil {
			logger.Warn().Err(err).Str("url", link).Msg("Failed to check discovered link")

			continue
		}

		if known {
			continue
		}

		if _, err := p.queue.Enqueue(ctx, link, store.PriorityDiscovered, ""); err != nil {
			logger.Warn().Err(err).Str("url", link).Msg("Failed to enqueue discovered link")
		}
	}
}

// idle sleeps the queue-empty interval, waking early on cancellation.
func (p *Pool) idle(ctx context.Context) {
	timer := time.NewTimer(p.cfg.IdleSleep)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// publishQueueMetrics periodically snapshots queue counts into the
// Prometheus gauges.
func (p *Pool) publishQueueMetrics(ctx context.Context) {
	ticker := time.NewTicker(queueMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats, err := p.queue.QueueStatsSnapshot(ctx)
			if err != nil {
				p.logger.Warn().Err(err).Msg("Failed to read queue stats")

				continue
			}

			updateQueueMetrics(stats)
		}
	}
}
