// Package query is the retrieval pipeline: it classifies a query,
// answers computation intents inline, searches the full-text index
// otherwise, triggers background discovery for cold queries, and
// optionally synthesizes a grounded answer from the top hits.
package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/corvidsearch/notice/internal/apperror"
	"github.com/corvidsearch/notice/internal/classify"
	"github.com/corvidsearch/notice/internal/fts"
	"github.com/corvidsearch/notice/internal/genai"
	"github.com/corvidsearch/notice/internal/instant"
	"github.com/corvidsearch/notice/internal/store"
)

const (
	defaultLimit = 20
	maxLimit     = 100

	// coldResultThreshold is the hit count below which background
	// discovery is triggered.
	coldResultThreshold = 3

	ragContextLimit  = 5
	discoveryTimeout = 10 * time.Second
)

// Enqueuer is the write-only queue surface the pipeline uses to feed
// discovered URLs back into the crawler. *store.DB satisfies it.
type Enqueuer interface {
	Enqueue(ctx context.Context, url string, priority int, submitter string) (*store.QueueEntry, error)
}

// Discoverer finds candidate URLs for a query the local index could
// not answer well.
type Discoverer interface {
	FindURLs(ctx context.Context, query string) ([]string, error)
}

// Request is one search invocation.
type Request struct {
	Query     string
	Limit     int
	Offset    int
	SessionID string
	UserID    string
}

// Response carries either ranked hits (with an optional synthesized
// answer) or an instant answer, never both.
type Response struct {
	Query         string
	Results       []fts.SearchHit
	Total         int64
	InstantAnswer *instant.Answer
	AIAnswer      string
}

// Pipeline routes queries between instant answers and full-text
// retrieval. The answerer, discoverer, and queue are optional; a nil
// collaborator disables its step.
type Pipeline struct {
	index    fts.FullTextIndex
	answerer genai.Answerer
	currency *instant.CurrencyConverter
	discover Discoverer
	queue    Enqueuer
	history  *History
	logger   *zerolog.Logger
}

// New creates a Pipeline.
func New(
	index fts.FullTextIndex,
	answerer genai.Answerer,
	currency *instant.CurrencyConverter,
	discover Discoverer,
	queue Enqueuer,
	logger *zerolog.Logger,
) *Pipeline {
	return &Pipeline{
		index:    index,
		answerer: answerer,
		currency: currency,
		discover: discover,
		queue:    queue,
		history:  NewHistory(logger),
		logger:   logger,
	}
}

// Run executes one query through the pipeline.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Response, error) {
	q := strings.TrimSpace(req.Query)
	if q == "" {
		return nil, fmt.Errorf("%w: query must not be empty", apperror.ErrValidation)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	if limit > maxLimit {
		limit = maxLimit
	}

	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	intent := classify.Classify(q)

	if answer, ok := p.evaluateInstant(ctx, intent, q); ok {
		p.history.Record(ctx, Entry{
			Query:        q,
			Intent:       string(intent),
			ResultsCount: 0,
			SessionID:    req.SessionID,
			UserID:       req.UserID,
		})

		return &Response{Query: q, Results: []fts.SearchHit{}, InstantAnswer: answer}, nil
	}

	hits, total, err := p.index.Search(ctx, q, limit, offset)
	if err != nil {
		// Degrade to an empty result page; retrieval must not fail
		// the request because the index is unreachable.
		p.logger.Error().Err(err).Str("query", q).Msg("Index search failed")

		hits, total = nil, 0
	}

	if hits == nil {
		hits = []fts.SearchHit{}
	}

	if len(hits) < coldResultThreshold {
		p.discoverInBackground(ctx, q)
	}

	var aiAnswer string

	if len(hits) >= 1 && p.answerer != nil {
		aiAnswer = p.synthesize(ctx, q, hits)
	}

	p.history.Record(ctx, Entry{
		Query:        q,
		Intent:       string(classify.IntentSearch),
		ResultsCount: len(hits),
		SessionID:    req.SessionID,
		UserID:       req.UserID,
	})

	return &Response{Query: q, Results: hits, Total: total, AIAnswer: aiAnswer}, nil
}

// evaluateInstant answers a computation intent inline. A failed
// evaluation falls through to full-text search rather than erroring.
func (p *Pipeline) evaluateInstant(ctx context.Context, intent classify.Intent, q string) (*instant.Answer, bool) {
	switch intent {
	case classify.IntentTimer:
		answer := instant.EvaluateTimer(q)
		return &answer, true

	case classify.IntentUnitConversion:
		answer, err := instant.EvaluateUnitConversion(q)
		if err != nil {
			p.logger.Warn().Err(err).Str("query", q).Msg("Unit conversion failed")
			return nil, false
		}

		return &answer, true

	case classify.IntentCurrencyConversion:
		if p.currency == nil {
			return nil, false
		}

		answer, err := p.currency.Evaluate(ctx, q)
		if err != nil {
			p.logger.Warn().Err(err).Str("query", q).Msg("Currency conversion failed")
			return nil, false
		}

		return &answer, true

	case classify.IntentMath:
		answer, err := instant.EvaluateMath(q)
		if err != nil {
			p.logger.Warn().Err(err).Str("query", q).Msg("Math evaluation failed")
			return nil, false
		}

		return &answer, true

	default:
		return nil, false
	}
}

// discoverInBackground kicks off cold-query discovery without
// blocking the response: found URLs are enqueued at discovery
// priority for the crawler to pick up.
func (p *Pipeline) discoverInBackground(ctx context.Context, q string) {
	if p.discover == nil || p.queue == nil {
		return
	}

	// Detached from the request context so the work survives the
	// response being written.
	bgCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), discoveryTimeout)

	go func() {
		defer cancel()

		urls, err := p.discover.FindURLs(bgCtx, q)
		if err != nil {
			p.logger.Warn().Err(err).Str("query", q).Msg("Cold-query discovery failed")

			return
		}

		enqueued := 0

		for _, u := range urls {
			entry, err := p.queue.Enqueue(bgCtx, u, store.PriorityDiscovery, "")
			if err != nil {
				p.logger.Warn().Err(err).Str("url", u).Msg("Failed to enqueue discovered URL")

				continue
			}

			if entry != nil {
				enqueued++
			}
		}

		p.logger.Info().Str("query", q).Int("enqueued", enqueued).Msg("Cold-query discovery finished")
	}()
}

// synthesize builds the grounded answer from the top hits; failures
// degrade to no answer.
func (p *Pipeline) synthesize(ctx context.Context, q string, hits []fts.SearchHit) string {
	n := len(hits)
	if n > ragContextLimit {
		n = ragContextLimit
	}

	contexts := make([]string, 0, n)

	for _, hit := range hits[:n] {
		contexts = append(contexts, fmt.Sprintf("Title: %s\nURL: %s\nSnippet: %s", hit.Title, hit.URL, hit.Snippet))
	}

	answer, err := p.answerer.Answer(ctx, q, contexts)
	if err != nil {
		p.logger.Warn().Err(err).Str("query", q).Msg("Answer synthesis failed")

		return ""
	}

	return answer
}
