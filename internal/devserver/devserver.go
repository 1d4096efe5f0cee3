// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PromptKeep Authors

// Package devserver is an in-memory reference implementation of the prompt
// backend. It exists to exercise the HTTP transport end-to-end (integration
// tests run it under httptest) and for local development via cmd/devserver.
// It is not a production backend: no persistence, no real authentication.
package devserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"

	"github.com/promptkeep/promptkeep/internal/logger"
	"github.com/promptkeep/promptkeep/internal/utils"
	"github.com/promptkeep/promptkeep/models"
)

// Config tunes the simulated account limits. Zero means unlimited.
type Config struct {
	MaxPrompts      int
	MaxStorageBytes int64
}

// record is one stored prompt plus its accounting weight.
type record struct {
	prompt models.RemotePrompt
	bytes  int64
}

// collection is one prompt library (personal account or one team).
type collection struct {
	records map[string]*record
}

// Server is the in-memory backend.
type Server struct {
	cfg Config
	log *logger.Logger
	ids *utils.UUIDGenerator

	mu       sync.Mutex
	personal *collection
	teams    map[string]*collection
}

func New(cfg Config, log *logger.Logger) *Server {
	return &Server{
		cfg:      cfg,
		log:      log,
		ids:      utils.NewUUIDGenerator(),
		personal: &collection{records: make(map[string]*record)},
		teams:    make(map[string]*collection),
	}
}

// Router builds the chi router serving the same API surface the real
// backend exposes, for both the personal and team scopes.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logging)
	r.Use(s.auth)

	r.Route("/api", func(r chi.Router) {
		s.mountScope(r, func(*http.Request) *collection { return s.personal })

		r.Route("/teams/{teamID}", func(r chi.Router) {
			s.mountScope(r, func(req *http.Request) *collection {
				return s.team(chi.URLParam(req, "teamID"))
			})
		})
	})

	return r
}

func (s *Server) mountScope(r chi.Router, col func(*http.Request) *collection) {
	r.Get("/prompts", s.listPrompts(col))
	r.Post("/prompts", s.upsertPrompt(col))
	r.Delete("/prompts/{cloudID}", s.deletePrompt(col))
	r.Post("/quota/check", s.checkQuota(col))
	r.Post("/workspaces", s.registerWorkspace)
}

// team returns the collection for a team id, creating it on first use.
// Caller must not hold s.mu.
func (s *Server) team(id string) *collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.teams[id]
	if !ok {
		c = &collection{records: make(map[string]*record)}
		s.teams[id] = c
	}
	return c
}

// logging attaches a request-scoped logger to the context.
func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqLog := s.log.With().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Logger()
		next.ServeHTTP(w, r.WithContext(reqLog.WithContext(r.Context())))
	})
}

// auth requires a bearer token. The dev server only checks presence; the
// real backend verifies signatures.
func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if len(header) < len("Bearer ")+1 || header[:len("Bearer ")] != "Bearer " {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Token mints an unsigned-verification development token carrying userID as
// the subject claim. Handy for tests and local runs.
func Token(userID string) string {
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("devserver-local-secret"))
	if err != nil {
		return ""
	}
	return signed
}
