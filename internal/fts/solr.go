package fts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const (
	selectPath          = "/select"
	updatePath          = "/update"
	schemaPath          = "/schema"
	contentTypeJSON     = "application/json"
	errBodyReadLimit    = 1024
	maxResponseBodySize = 10 * 1024 * 1024
	defaultTimeout      = 10 * time.Second
)

var (
	errServerError    = fmt.Errorf("solr server error")
	errClientDisabled = fmt.Errorf("solr client disabled")
)

// SolrIndex is a FullTextIndex backed by an Apache Solr collection,
// modeled on a JSON /select, /update, /get client.
type SolrIndex struct {
	baseURL    string
	httpClient *http.Client
	enabled    bool
}

// NewSolr creates a SolrIndex pointed at baseURL (a full collection
// URL, e.g. "http://solr:8983/solr/notice"). An empty baseURL disables
// the adapter; calls return errClientDisabled.
func NewSolr(baseURL string, timeout time.Duration) *SolrIndex {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &SolrIndex{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		enabled:    baseURL != "",
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Configure pushes field definitions to the schema API. Ranking
// weights and synonym expansion are per-query concerns in Solr, so
// they live in Search (edismax boosts, client-side expansion) rather
// than in schema state. Safe to call repeatedly.
func (s *SolrIndex) Configure(ctx context.Context) error {
	if !s.enabled {
		return errClientDisabled
	}

	payload := map[string]any{
		"add-field": fieldDefinitions(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal schema payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+schemaPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create schema request: %w", err)
	}

	req.Header.Set("Content-Type", contentTypeJSON)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("schema request: %w", err)
	}
	defer resp.Body.Close()

	// Solr returns 400 for fields that already exist; configuration
	// is treated as idempotent regardless.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusBadRequest {
		return fmt.Errorf("%w: status %d", errServerError, resp.StatusCode)
	}

	return nil
}

func fieldDefinitions() []map[string]any {
	var defs []map[string]any

	for _, f := range SearchableFields {
		defs = append(defs, map[string]any{"name": f, "type": "text_general", "indexed": true, "stored": true})
	}

	for _, f := range FilterableFields {
		defs = append(defs, map[string]any{"name": f, "type": "string", "indexed": true, "stored": true})
	}

	defs = append(defs, map[string]any{"name": "quality_score", "type": "pfloat", "indexed": true, "stored": true})

	return defs
}

// AddDocuments upserts docs by id, waiting for the commit to apply.
func (s *SolrIndex) AddDocuments(ctx context.Context, docs []IndexPayload) error {
	if !s.enabled {
		return errClientDisabled
	}

	if len(docs) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, applyTimeout)
	defer cancel()

	solrDocs := make([]map[string]any, 0, len(docs))
	for _, d := range docs {
		solrDocs = append(solrDocs, map[string]any{
			"id":            d.ID,
			"url":           d.URL,
			"domain":        d.Domain,
			"title":         d.Title,
			"summary":       d.Summary,
			"raw_text":      d.RawText,
			"status":        d.Status,
			"quality_score": d.QualityScore,
			"created_at":    d.CreatedAt,
		})
	}

	return s.sendUpdate(ctx, solrDocs)
}

func (s *SolrIndex) sendUpdate(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+updatePath+"?commit=true", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create update request: %w", err)
	}

	req.Header.Set("Content-Type", contentTypeJSON)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", ErrApplyTimeout, err)
		}

		return fmt.Errorf("update request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyReadLimit))

		return fmt.Errorf("%w: status %d, body: %s", errServerError, resp.StatusCode, string(respBody))
	}

	return nil
}

// DeleteDocument removes a document by id.
func (s *SolrIndex) DeleteDocument(ctx context.Context, id string) error {
	if !s.enabled {
		return errClientDisabled
	}

	return s.sendUpdate(ctx, map[string]any{"delete": id})
}

type solrSelectResponse struct {
	Response struct {
		NumFound int64     `json:"numFound"`
		Docs     []solrDoc `json:"docs"`
	} `json:"response"`
	Highlighting map[string]map[string][]string `json:"highlighting"`
}

type solrDoc struct {
	ID           string  `json:"id"`
	URL          string  `json:"url"`
	Domain       string  `json:"domain"`
	Title        string  `json:"title"`
	Summary      string  `json:"summary"`
	RawText      string  `json:"raw_text"`
	Status       string  `json:"status"`
	QualityScore float64 `json:"quality_score"`
	CreatedAt    string  `json:"created_at"`
}

// parseSolrTime handles the loosely-formatted date strings Solr
// stores back, which do not always round-trip as strict RFC 3339.
func parseSolrTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return time.Time{}
	}

	return t
}

// Count returns numFound for a match-all query.
func (s *SolrIndex) Count(ctx context.Context) (int64, error) {
	if !s.enabled {
		return 0, errClientDisabled
	}

	q := url.Values{}
	q.Set("q", "*:*")
	q.Set("rows", "0")
	q.Set("wt", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+selectPath+"?"+q.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("create count request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("count request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: status %d", errServerError, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return 0, fmt.Errorf("read count response: %w", err)
	}

	var parsed solrSelectResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, fmt.Errorf("parse count response: %w", err)
	}

	return parsed.Response.NumFound, nil
}

// expandQuery applies the synonym table client-side so Solr matches
// any member of an equivalence class, mirroring MemoryIndex.Search.
func expandQuery(query string) string {
	terms := expandSynonyms(tokenize(query))
	if len(terms) == 0 {
		return query
	}

	return strings.Join(terms, " ")
}

// boostedQueryFields renders SearchableFields with their priority
// weights as edismax boosts (title^4 summary^3 ...).
func boostedQueryFields() string {
	parts := make([]string, 0, len(SearchableFields))

	for _, f := range SearchableFields {
		parts = append(parts, fmt.Sprintf("%s^%g", f, fieldWeights[f]))
	}

	return strings.Join(parts, " ")
}

// Search issues a GET against /select with synonym-expanded terms and
// edismax field boosts matching SearchableFields' priority order.
// Relevance dominates the ordering; quality_score breaks ties.
func (s *SolrIndex) Search(ctx context.Context, query string, limit, offset int) ([]SearchHit, int64, error) {
	if !s.enabled {
		return nil, 0, errClientDisabled
	}

	q := url.Values{}
	q.Set("q", expandQuery(query))
	q.Set("defType", "edismax")
	q.Set("qf", boostedQueryFields())
	q.Set("rows", strconv.Itoa(limit))
	q.Set("start", strconv.Itoa(offset))
	q.Set("sort", "score desc, quality_score desc")
	q.Set("hl", "true")
	q.Set("hl.fl", "title,summary")
	q.Set("wt", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+selectPath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create search request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyReadLimit))

		return nil, 0, fmt.Errorf("%w: status %d, body: %s", errServerError, resp.StatusCode, string(respBody))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, 0, fmt.Errorf("read search response: %w", err)
	}

	var parsed solrSelectResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, 0, fmt.Errorf("parse search response: %w", err)
	}

	hits := make([]SearchHit, 0, len(parsed.Response.Docs))

	for _, d := range parsed.Response.Docs {
		hits = append(hits, SearchHit{
			ID:           d.ID,
			URL:          d.URL,
			Domain:       d.Domain,
			Title:        d.Title,
			Summary:      d.Summary,
			Status:       d.Status,
			QualityScore: d.QualityScore,
			CreatedAt:    parseSolrTime(d.CreatedAt),
			Snippet:      snippetFor(d.RawText, d.Summary),
		})
	}

	return hits, parsed.Response.NumFound, nil
}
