package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/corvidsearch/notice/internal/apperror"
	"github.com/corvidsearch/notice/internal/fts"
	"github.com/corvidsearch/notice/internal/query"
	"github.com/corvidsearch/notice/internal/store"
	"github.com/corvidsearch/notice/internal/urlutil"
)

// documentJSON is the wire form of a document. Raw text is omitted
// from listings and only present on single-document fetches.
type documentJSON struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	Domain       string    `json:"domain"`
	Title        string    `json:"title,omitempty"`
	RawText      string    `json:"raw_text,omitempty"`
	Summary      string    `json:"summary,omitempty"`
	Status       string    `json:"status"`
	QualityScore float64   `json:"quality_score"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func documentToJSON(doc *store.Document, includeRawText bool) documentJSON {
	out := documentJSON{
		ID:           doc.ID,
		URL:          doc.URL,
		Domain:       doc.Domain,
		Title:        doc.Title,
		Summary:      doc.Summary,
		Status:       doc.Status,
		QualityScore: doc.QualityScore,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}

	if includeRawText {
		out.RawText = doc.RawText
	}

	return out
}

type searchHitJSON struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	Domain       string    `json:"domain"`
	Title        string    `json:"title,omitempty"`
	Summary      string    `json:"summary,omitempty"`
	Status       string    `json:"status"`
	QualityScore float64   `json:"quality_score"`
	CreatedAt    time.Time `json:"created_at"`
	Score        float64   `json:"score"`
	Snippet      string    `json:"snippet"`
}

type instantAnswerJSON struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

type searchResponseJSON struct {
	Query         string             `json:"query"`
	Results       []searchHitJSON    `json:"results"`
	Total         int64              `json:"total"`
	InstantAnswer *instantAnswerJSON `json:"instant_answer"`
	AIAnswer      *string            `json:"ai_answer"`
}

// handleHealth pings every dependency and reports per-dependency
// state.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	deps := make(map[string]string)
	status := "ok"

	if err := s.store.Ping(ctx); err != nil {
		deps["database"] = err.Error()
		status = "degraded"
	} else {
		deps["database"] = "ok"
	}

	if _, err := s.index.Count(ctx); err != nil {
		deps["index"] = err.Error()
		status = "degraded"
	} else {
		deps["index"] = "ok"
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":       status,
		"dependencies": deps,
	})
}

type submitRequest struct {
	URL string `json:"url"`
}

// handleSubmit queues a URL for asynchronous crawling.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	submitter, err := s.authenticate(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, fmt.Errorf("%w: invalid request body", apperror.ErrValidation))
		return
	}

	normalized, err := urlutil.Normalize(req.URL)
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: %w", apperror.ErrValidation, err))
		return
	}

	if doc, err := s.store.GetDocumentByURL(r.Context(), normalized); err == nil {
		s.writeJSON(w, http.StatusOK, map[string]any{
			"id":      doc.ID,
			"url":     normalized,
			"status":  "exists",
			"message": "document already crawled",
		})

		return
	} else if !errors.Is(err, apperror.ErrNotFound) {
		s.writeError(w, err)
		return
	}

	entry, err := s.store.Enqueue(r.Context(), normalized, store.PrioritySubmitted, submitter)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if entry == nil {
		s.writeJSON(w, http.StatusOK, map[string]any{
			"id":      "",
			"url":     normalized,
			"status":  "already_queued",
			"message": "url is already in the crawl queue",
		})

		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"id":      entry.ID,
		"url":     normalized,
		"status":  "queued",
		"message": "url queued for crawling",
	})
}

// handleCrawl ingests a URL synchronously, sharing the worker pool's
// step sequence so both paths leave the stores in the same state.
func (s *Server) handleCrawl(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, fmt.Errorf("%w: invalid request body", apperror.ErrValidation))
		return
	}

	if req.URL == "" {
		s.writeError(w, fmt.Errorf("%w: url must not be empty", apperror.ErrValidation))
		return
	}

	result, err := s.crawler.ProcessURL(r.Context(), req.URL)
	if err != nil {
		if apperror.HTTPStatus(err) == http.StatusInternalServerError {
			err = fmt.Errorf("%w: %w", apperror.ErrCrawler, err)
		}

		s.writeError(w, err)

		return
	}

	if result.AlreadyKnown {
		s.writeError(w, fmt.Errorf("%w: document already exists for this url", apperror.ErrConflict))
		return
	}

	s.writeJSON(w, http.StatusOK, documentToJSON(result.Document, true))
}

// handleSearch runs the query pipeline.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	user, err := s.authenticate(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	params := r.URL.Query()

	req := query.Request{
		Query:     params.Get("q"),
		Limit:     parseIntParam(params.Get("limit"), 0),
		Offset:    parseIntParam(params.Get("offset"), 0),
		SessionID: params.Get("session_id"),
		UserID:    user,
	}

	resp, err := s.pipeline.Run(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	out := searchResponseJSON{
		Query:   resp.Query,
		Results: make([]searchHitJSON, 0, len(resp.Results)),
		Total:   resp.Total,
	}

	for _, hit := range resp.Results {
		out.Results = append(out.Results, searchHitJSON{
			ID:           hit.ID,
			URL:          hit.URL,
			Domain:       hit.Domain,
			Title:        hit.Title,
			Summary:      hit.Summary,
			Status:       hit.Status,
			QualityScore: hit.QualityScore,
			CreatedAt:    hit.CreatedAt,
			Score:        hit.Score,
			Snippet:      hit.Snippet,
		})
	}

	if resp.InstantAnswer != nil {
		out.InstantAnswer = &instantAnswerJSON{Kind: resp.InstantAnswer.Kind, Value: resp.InstantAnswer.Value}
	}

	if resp.AIAnswer != "" {
		out.AIAnswer = &resp.AIAnswer
	}

	s.writeJSON(w, http.StatusOK, out)
}

// handleListDocuments returns a page of documents without raw text.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	limit := parseIntParam(params.Get("limit"), 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	offset := parseIntParam(params.Get("offset"), 0)
	if offset < 0 {
		offset = 0
	}

	docs, err := s.store.ListDocuments(r.Context(), limit, offset)
	if err != nil {
		s.writeError(w, err)
		return
	}

	total, err := s.store.CountDocuments(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	out := make([]documentJSON, 0, len(docs))
	for i := range docs {
		out = append(out, documentToJSON(&docs[i], false))
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"documents": out,
		"total":     total,
		"limit":     limit,
		"offset":    offset,
	})
}

// handleGetDocument fetches one document by id, raw text included.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if _, err := uuid.Parse(id); err != nil {
		s.writeError(w, fmt.Errorf("%w: invalid document id", apperror.ErrValidation))
		return
	}

	doc, err := s.store.GetDocumentByID(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, documentToJSON(doc, true))
}

// handleQueueStats reports queue counts per lifecycle state.
func (s *Server) handleQueueStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.QueueStatsSnapshot(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]int64{
		"pending":     stats.Pending,
		"in_progress": stats.InProgress,
		"completed":   stats.Completed,
		"failed":      stats.Failed,
	})
}

// handleCrawlerStatus reports the pool state, queue counts, and
// index size.
func (s *Server) handleCrawlerStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.QueueStatsSnapshot(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	crawlerState := "stopped"
	if s.crawler.Running() {
		crawlerState = "running"
	}

	indexDocs, err := s.index.Count(r.Context())
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to count indexed documents")

		indexDocs = 0
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"crawler": crawlerState,
		"queue": map[string]int64{
			"pending":     stats.Pending,
			"in_progress": stats.InProgress,
			"completed":   stats.Completed,
			"failed":      stats.Failed,
		},
		"index_documents": indexDocs,
	})
}

// handleCrawlerStop triggers pool cancellation. Workers finish their
// current URL and exit.
func (s *Server) handleCrawlerStop(w http.ResponseWriter, _ *http.Request) {
	s.crawler.Stop()

	s.writeJSON(w, http.StatusOK, map[string]string{"message": "crawler stopping"})
}

// handleResync pushes every stored document back into the full-text
// index in batches, reconciling any missed upserts.
func (s *Server) handleResync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var synced, failed int64

	for offset := 0; ; offset += resyncBatchSize {
		docs, err := s.store.ListDocumentsFull(ctx, resyncBatchSize, offset)
		if err != nil {
			s.writeError(w, err)
			return
		}

		if len(docs) == 0 {
			break
		}

		payloads := make([]fts.IndexPayload, 0, len(docs))

		for i := range docs {
			doc := &docs[i]
			payloads = append(payloads, fts.IndexPayload{
				ID:           doc.ID,
				URL:          doc.URL,
				Domain:       doc.Domain,
				Title:        doc.Title,
				Summary:      doc.Summary,
				RawText:      doc.RawText,
				Status:       doc.Status,
				QualityScore: doc.QualityScore,
				CreatedAt:    doc.CreatedAt,
			})
		}

		if err := s.index.AddDocuments(ctx, payloads); err != nil {
			s.logger.Error().Err(err).Int("offset", offset).Msg("Resync batch failed")

			failed += int64(len(docs))
		} else {
			synced += int64(len(docs))
		}

		if len(docs) < resyncBatchSize {
			break
		}
	}

	totalInStore, err := s.store.CountDocuments(ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}

	totalInIndex, err := s.index.Count(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to count indexed documents")

		totalInIndex = 0
	}

	s.writeJSON(w, http.StatusOK, map[string]int64{
		"synced":         synced,
		"failed":         failed,
		"total_in_store": totalInStore,
		"total_in_index": totalInIndex,
	})
}

func parseIntParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}
