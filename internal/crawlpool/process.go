package crawlpool

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/corvidsearch/notice/internal/apperror"
	"github.com/corvidsearch/notice/internal/fts"
	"github.com/corvidsearch/notice/internal/linkextract"
	"github.com/corvidsearch/notice/internal/quality"
	"github.com/corvidsearch/notice/internal/store"
	"github.com/corvidsearch/notice/internal/textutil"
	"github.com/corvidsearch/notice/internal/urlutil"
)

// ErrBlockedByRobots marks a URL the target host's robots.txt
// disallows for our user agent.
var ErrBlockedByRobots = errors.New("blocked by robots.txt")

// descriptionSupplementThreshold is the body-text length below which
// the page's meta description is prepended to the summarizer input.
const descriptionSupplementThreshold = 200

// Result is the outcome of one successful pass over a URL.
type Result struct {
	Document *store.Document
	Links    []string

	// AlreadyKnown is set when the URL was in the document store
	// before this pass; the pass is a no-op then.
	AlreadyKnown bool
}

// ProcessURL takes one URL through the full ingest sequence: robots
// gate, politeness pacing, scrape, quality scoring, row-store insert,
// index write, and summarization. It is shared by the worker loop and
// the synchronous crawl endpoint so both leave the stores in the same
// state.
//
// Index and summarizer failures are not fatal: the row store is the
// source of truth and a resync can reconcile the index later.
func (p *Pool) ProcessURL(ctx context.Context, rawURL string) (*Result, error) {
	pageURL, err := urlutil.Normalize(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrValidation, err)
	}

	if !p.robots.Allowed(ctx, pageURL) {
		return nil, fmt.Errorf("%w: %s", ErrBlockedByRobots, pageURL)
	}

	domain := urlutil.Domain(pageURL)

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	p.pacer.WaitFor(domain)

	if existing, err := p.docs.GetDocumentByURL(ctx, pageURL); err == nil {
		return &Result{Document: existing, AlreadyKnown: true}, nil
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("check existing document: %w", err)
	}

	page, err := p.scraper.Scrape(ctx, pageURL, p.cfg.MaxContentBytes)
	if err != nil {
		return nil, fmt.Errorf("scrape %s: %w", pageURL, err)
	}

	var links []string

	if p.cfg.DiscoverLinks {
		links, err = linkextract.Extract(bytes.NewReader(page.RawHTML), pageURL)
		if err != nil {
			p.logger.Warn().Err(err).Str("url", pageURL).Msg("Link extraction failed")

			links = nil
		}
	}

	score := quality.Score(domain, page.Title, page.Text)

	doc, err := p.docs.InsertDocument(ctx, pageURL, page.Title, page.Text, score)
	if err != nil {
		// A concurrent worker may have inserted the same URL between
		// the existence check and this insert.
		if errors.Is(err, apperror.ErrConflict) {
			if existing, getErr := p.docs.GetDocumentByURL(ctx, pageURL); getErr == nil {
				return &Result{Document: existing, AlreadyKnown: true}, nil
			}
		}

		return nil, fmt.Errorf("persist document: %w", err)
	}

	if err := p.index.AddDocuments(ctx, []fts.IndexPayload{payloadFor(doc)}); err != nil {
		p.logger.Error().Err(err).Str("url", pageURL).Msg("Index write failed")
	} else {
		documentsIndexedTotal.Inc()
	}

	p.summarize(ctx, doc, page.Description)

	return &Result{Document: doc, Links: links}, nil
}

// summarize generates and stores a summary for doc, re-indexing on
// success and recording a terminal failure otherwise.
func (p *Pool) summarize(ctx context.Context, doc *store.Document, description string) {
	input := doc.RawText
	if len(input) < descriptionSupplementThreshold && description != "" {
		input = description + "\n" + input
	}

	input = textutil.Truncate(input, p.cfg.SummaryInputBytes)

	summary, err := p.summarizer.Summarize(ctx, input)
	if err != nil || summary == "" {
		summariesTotal.WithLabelValues("failed").Inc()
		p.logger.Warn().Err(err).Str("url", doc.URL).Msg("Summarization failed")

		if markErr := p.docs.MarkSummaryFailed(ctx, doc.ID); markErr != nil {
			p.logger.Error().Err(markErr).Str("id", doc.ID).Msg("Failed to record summary failure")
		}

		return
	}

	updated, err := p.docs.UpdateSummary(ctx, doc.ID, summary)
	if err != nil {
		p.logger.Error().Err(err).Str("id", doc.ID).Msg("Failed to store summary")

		return
	}

	summariesTotal.WithLabelValues("ok").Inc()

	*doc = *updated

	if err := p.index.AddDocuments(ctx, []fts.IndexPayload{payloadFor(updated)}); err != nil {
		p.logger.Error().Err(err).Str("url", doc.URL).Msg("Index update after summary failed")
	}
}

// payloadFor projects a document row into its index representation.
func payloadFor(doc *store.Document) fts.IndexPayload {
	return fts.IndexPayload{
		ID:           doc.ID,
		URL:          doc.URL,
		Domain:       doc.Domain,
		Title:        doc.Title,
		Summary:      doc.Summary,
		RawText:      doc.RawText,
		Status:       doc.Status,
		QualityScore: doc.QualityScore,
		CreatedAt:    doc.CreatedAt,
	}
}
