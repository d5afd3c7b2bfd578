// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package server exposes a loaded corpus and its searcher as a read-only
// JSON API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/mux"
	"github.com/poiesic/kokushi/core"
	"github.com/poiesic/kokushi/corpus"
	"github.com/poiesic/kokushi/search"
)

const (
	// DefaultPageSize is the number of questions returned when limit is absent.
	DefaultPageSize = 50
	// DefaultMaxPageSize caps the limit parameter.
	DefaultMaxPageSize = 500

	shutdownTimeout = 5 * time.Second
)

// Server answers the JSON API.
type Server struct {
	corpus      *corpus.Corpus
	searcher    *search.Searcher
	router      *mux.Router
	pageSize    int
	maxPageSize int
	logger      *slog.Logger
}

var _ http.Handler = (*Server)(nil)

// Option configures a Server.
type Option func(*Server) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithPageSize sets the default and the maximum number of questions per page.
func WithPageSize(pageSize, maxPageSize int) Option {
	return func(s *Server) error {
		if pageSize < 1 || maxPageSize < pageSize {
			return ErrInvalidPageLimit
		}
		s.pageSize = pageSize
		s.maxPageSize = maxPageSize
		return nil
	}
}

// New creates a server over c, answering searches with searcher. The
// searcher is expected to have been built from c's questions.
func New(c *corpus.Corpus, searcher *search.Searcher, opts ...Option) (*Server, error) {
	if c == nil {
		return nil, ErrCorpusRequired
	}
	if searcher == nil {
		return nil, ErrSearcherRequired
	}

	s := &Server{
		corpus:      c,
		searcher:    searcher,
		pageSize:    DefaultPageSize,
		maxPageSize: DefaultMaxPageSize,
		logger:      slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	router := mux.NewRouter()
	router.Use(s.logRequests)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.sendError(w, http.StatusNotFound, "not found")
	})

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/questions", s.handleSearch).Methods(http.MethodGet)
	api.HandleFunc("/questions/{id}", s.handleGetQuestion).Methods(http.MethodGet)
	api.HandleFunc("/categories", s.handleCategories).Methods(http.MethodGet)
	api.HandleFunc("/categories/{name}/subcategories", s.handleSubcategories).Methods(http.MethodGet)
	api.HandleFunc("/meta", s.handleMeta).Methods(http.MethodGet)
	s.router = router

	return s, nil
}

// ServeHTTP dispatches to the API routes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr, "questions", s.corpus.Len())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Response is the envelope around every API reply.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SearchPage is one page of search results.
type SearchPage struct {
	Match     string           `json:"match"`
	Total     int              `json:"total"`
	Offset    int              `json:"offset"`
	Limit     int              `json:"limit"`
	Questions []*core.Question `json:"questions"`
}

// MetaInfo describes the served corpus.
type MetaInfo struct {
	Meta      core.CorpusMeta `json:"meta"`
	Count     int             `json:"count"`
	YearRange core.YearRange  `json:"yearRange"`
	Sessions  []core.Session  `json:"sessions"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	query, err := parseQuery(params)
	if err != nil {
		s.sendError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, limit, err := s.parsePage(params)
	if err != nil {
		s.sendError(w, http.StatusBadRequest, err.Error())
		return
	}

	var kind matchRecorder
	results := s.searcher.SearchWithMonitor(query, &kind)
	if results == nil {
		results = []*core.Question{}
	}

	from := min(offset, len(results))
	to := min(from+limit, len(results))
	s.sendJSON(w, http.StatusOK, Response{
		Success: true,
		Data: SearchPage{
			Match:     kind.String(),
			Total:     len(results),
			Offset:    offset,
			Limit:     limit,
			Questions: results[from:to],
		},
	})
}

func (s *Server) handleGetQuestion(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	q, ok := s.corpus.Get(id)
	if !ok {
		s.sendError(w, http.StatusNotFound, fmt.Sprintf("question %q not found", id))
		return
	}
	s.sendJSON(w, http.StatusOK, Response{Success: true, Data: q})
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	s.sendJSON(w, http.StatusOK, Response{Success: true, Data: s.corpus.Categories()})
}

func (s *Server) handleSubcategories(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	known := slices.ContainsFunc(s.corpus.Categories(), func(c corpus.Category) bool {
		return c.Name == name
	})
	if !known {
		s.sendError(w, http.StatusNotFound, fmt.Sprintf("category %q not found", name))
		return
	}
	s.sendJSON(w, http.StatusOK, Response{Success: true, Data: s.corpus.Subcategories(name)})
}

func (s *Server) handleMeta(w http.ResponseWriter, _ *http.Request) {
	s.sendJSON(w, http.StatusOK, Response{
		Success: true,
		Data: MetaInfo{
			Meta:      s.corpus.Meta(),
			Count:     s.corpus.Len(),
			YearRange: s.corpus.YearRange(),
			Sessions:  s.corpus.Sessions(),
		},
	})
}

func (s *Server) sendJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("JSON encoding error", "err", err)
	}
}

func (s *Server) sendError(w http.ResponseWriter, status int, msg string) {
	s.sendJSON(w, status, Response{Success: false, Error: msg})
}

// statusWriter records the status code written by a handler.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(status int) {
	sw.status = status
	sw.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"elapsed", time.Since(start))
	})
}

// matchRecorder is a search.SearchMonitor that remembers which stage
// answered the query.
type matchRecorder struct {
	kind search.MatchKind
}

var _ search.SearchMonitor = (*matchRecorder)(nil)

func (m *matchRecorder) Start(_ search.Query) {}
func (m *matchRecorder) CacheHit(_ uint64) {}
func (m *matchRecorder) IdentifierMatch(_ search.MatchKind, _ int) {}
func (m *matchRecorder) ExpandedKeyword(_ string, _ []string) {}
func (m *matchRecorder) AfterFilter(_, _ int) {}
func (m *matchRecorder) Finish(kind search.MatchKind, _ []*core.Question) { m.kind = kind }

func (m *matchRecorder) String() string {
	return m.kind.String()
}
