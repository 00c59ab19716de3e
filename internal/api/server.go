// Copyright (c) 2026 John Earle
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

// Package api exposes the JSON HTTP surface: registration and login,
// Gmail account connection via OAuth, custom keyword management, and
// package generation/download.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/invozip/backend/internal/auth"
	"github.com/invozip/backend/internal/config"
	"github.com/invozip/backend/internal/gmail"
	"github.com/invozip/backend/internal/queue"
	"github.com/invozip/backend/internal/secrets"
	"github.com/invozip/backend/internal/storage"
	"github.com/invozip/backend/internal/store"
	"github.com/invozip/backend/internal/tokencache"
)

// Server holds the handlers' collaborators.
type Server struct {
	cfg       *config.Config
	store     *store.Store
	box       *secrets.Box
	oauth     *gmail.OAuth
	s3        *storage.S3Store
	tokens    *tokencache.Cache
	publisher *queue.Publisher

	// gmailBaseURL is overridable so tests can point harvests at a
	// local server.
	gmailBaseURL string
}

// ServerConfig wires the server's dependencies.
type ServerConfig struct {
	Config       *config.Config
	Store        *store.Store
	Box          *secrets.Box
	OAuth        *gmail.OAuth
	S3           *storage.S3Store
	Tokens       *tokencache.Cache
	Publisher    *queue.Publisher
	GmailBaseURL string
}

// NewServer creates the API server.
func NewServer(cfg ServerConfig) *Server {
	base := cfg.GmailBaseURL
	if base == "" {
		base = gmail.DefaultBaseURL
	}
	return &Server{
		cfg:          cfg.Config,
		store:        cfg.Store,
		box:          cfg.Box,
		oauth:        cfg.OAuth,
		s3:           cfg.S3,
		tokens:       cfg.Tokens,
		publisher:    cfg.Publisher,
		gmailBaseURL: base,
	}
}

// Routes builds the service mux. Health is registered by the caller so
// it can include infrastructure pings.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	mux.HandleFunc("GET /api/gmail/auth", s.requireAuth(s.handleGmailAuthURL))
	mux.HandleFunc("GET /api/gmail/callback", s.handleGmailCallback)
	mux.HandleFunc("GET /api/gmail/status", s.requireAuth(s.handleGmailStatus))
	mux.HandleFunc("DELETE /api/gmail", s.requireAuth(s.handleGmailDisconnect))

	mux.HandleFunc("GET /api/keywords", s.requireAuth(s.handleGetKeywords))
	mux.HandleFunc("PUT /api/keywords", s.requireAuth(s.handleSetKeywords))

	mux.HandleFunc("POST /api/packages/generate", s.requireAuth(s.handleGeneratePackage))
	mux.HandleFunc("GET /api/packages", s.requireAuth(s.handleListPackages))
	mux.HandleFunc("GET /api/packages/latest", s.requireAuth(s.handleLatestPackage))
	mux.HandleFunc("GET /api/packages/download/{id}", s.requireAuth(s.handleDownloadPackage))
	mux.HandleFunc("GET /api/packages/usage", s.requireAuth(s.handleUsage))

	return mux
}

// --- request context ---

type contextKey string

const userIDKey contextKey = "userID"

// requireAuth verifies the bearer token and stashes the user ID on the
// request context.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		userID, err := auth.UserIDFromToken(token, []byte(s.cfg.JWTSecret))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	}
}

func userID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
