// Package server is the HTTP surface of the search engine: document
// submission and ingest, search, queue and crawler introspection, and
// the admin resync path. All responses are JSON.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/corvidsearch/notice/internal/apperror"
	"github.com/corvidsearch/notice/internal/crawlpool"
	"github.com/corvidsearch/notice/internal/fts"
	"github.com/corvidsearch/notice/internal/query"
	"github.com/corvidsearch/notice/internal/store"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second

	resyncBatchSize = 100
)

// Store is the row-store surface the handlers read and write.
// *store.DB satisfies it.
type Store interface {
	Ping(ctx context.Context) error
	GetDocumentByID(ctx context.Context, id string) (*store.Document, error)
	GetDocumentByURL(ctx context.Context, url string) (*store.Document, error)
	ListDocuments(ctx context.Context, limit, offset int) ([]store.Document, error)
	ListDocumentsFull(ctx context.Context, limit, offset int) ([]store.Document, error)
	CountDocuments(ctx context.Context) (int64, error)
	Enqueue(ctx context.Context, url string, priority int, submitter string) (*store.QueueEntry, error)
	QueueStatsSnapshot(ctx context.Context) (store.QueueStats, error)
}

// Crawler is the worker-pool control surface. *crawlpool.Pool
// satisfies it.
type Crawler interface {
	Running() bool
	Stop()
	ProcessURL(ctx context.Context, rawURL string) (*crawlpool.Result, error)
}

// Pipeline runs search queries. *query.Pipeline satisfies it.
type Pipeline interface {
	Run(ctx context.Context, req query.Request) (*query.Response, error)
}

// AuthConfig controls bearer-token checking. With Required unset a
// missing or invalid token yields anonymous access.
type AuthConfig struct {
	Required bool
	Token    string
}

// Server wires the HTTP routes to their collaborators.
type Server struct {
	store    Store
	index    fts.FullTextIndex
	crawler  Crawler
	pipeline Pipeline
	auth     AuthConfig
	logger   *zerolog.Logger

	httpServer *http.Server
}

// New creates a Server.
func New(st Store, index fts.FullTextIndex, crawler Crawler, pipeline Pipeline, auth AuthConfig, logger *zerolog.Logger) *Server {
	return &Server{
		store:    st,
		index:    index,
		crawler:  crawler,
		pipeline: pipeline,
		auth:     auth,
		logger:   logger,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/submit", s.handleSubmit)
	mux.HandleFunc("POST /api/crawl", s.handleCrawl)
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("GET /api/documents", s.handleListDocuments)
	mux.HandleFunc("GET /api/documents/{id}", s.handleGetDocument)
	mux.HandleFunc("GET /api/queue/stats", s.handleQueueStats)
	mux.HandleFunc("GET /api/crawler/status", s.handleCrawlerStatus)
	mux.HandleFunc("POST /api/crawler/stop", s.handleCrawlerStop)
	mux.HandleFunc("POST /api/admin/resync", s.handleResync)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s.logRequests(mux)
}

// Start runs the HTTP server on addr until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = s.httpServer.Shutdown(shutdownCtx)
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve http: %w", err)
	}

	return nil
}

// logRequests emits one structured line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}

// authenticate resolves the bearer token into a submitter principal.
// With optional auth, a missing or invalid token is anonymous; with
// required auth it is an error.
func (s *Server) authenticate(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		if s.auth.Required {
			return "", fmt.Errorf("%w: missing bearer token", apperror.ErrAuth)
		}

		return "", nil
	}

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" || (s.auth.Token != "" && token != s.auth.Token) {
		if s.auth.Required {
			return "", fmt.Errorf("%w: invalid bearer token", apperror.ErrAuth)
		}

		return "", nil
	}

	return token, nil
}

type errorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

// writeError maps err through the error taxonomy; internal errors get
// a generic body with the original logged.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := apperror.HTTPStatus(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Msg("Internal error")

		message = "internal server error"
	}

	s.writeJSON(w, status, errorResponse{Error: message, Status: status})
}
