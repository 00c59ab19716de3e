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

package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/invozip/backend/internal/auth"
	"github.com/invozip/backend/internal/gmail"
	"github.com/invozip/backend/internal/models"
)

// ErrReauthRequired signals that the stored refresh token no longer
// works and the user must reconnect the account.
var ErrReauthRequired = errors.New("gmail access expired, reconnect required")

// handleGmailAuthURL returns the Google consent URL. The state is a
// short-lived JWT naming the user, so the callback knows who initiated
// the flow without a session.
func (s *Server) handleGmailAuthURL(w http.ResponseWriter, r *http.Request) {
	state, err := auth.GenerateToken(userID(r), []byte(s.cfg.JWTSecret), auth.OAuthStateTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "issue state token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": s.oauth.AuthURL(state)})
}

// handleGmailCallback finishes the OAuth flow: validates state, trades
// the code for tokens, and stores the sealed refresh token.
func (s *Server) handleGmailCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		writeError(w, http.StatusBadRequest, "missing code or state")
		return
	}

	uid, err := auth.UserIDFromToken(state, []byte(s.cfg.JWTSecret))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid or expired state")
		return
	}

	tok, err := s.oauth.Exchange(r.Context(), code)
	if err != nil {
		slog.Error("OAuth code exchange failed", "user", uid, "error", err)
		writeError(w, http.StatusBadGateway, "code exchange failed")
		return
	}
	if tok.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "no refresh token received, retry with consent prompt")
		return
	}

	client := gmail.NewClientWithToken(r.Context(), tok.AccessToken, s.gmailBaseURL)
	profile, err := client.GetProfile(r.Context())
	if err != nil {
		slog.Error("fetch Gmail profile failed", "user", uid, "error", err)
		writeError(w, http.StatusBadGateway, "could not read Gmail profile")
		return
	}

	// Enforce the plan's connected-account limit before adding a new one.
	user, err := s.store.UserByID(r.Context(), uid)
	if err != nil || user == nil {
		writeError(w, http.StatusInternalServerError, "lookup user")
		return
	}
	plan := s.planFor(user)
	conns, err := s.store.ActiveConnections(r.Context(), uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "lookup connections")
		return
	}
	already := false
	for _, c := range conns {
		if c.Email == profile.EmailAddress {
			already = true
			break
		}
	}
	if !already && len(conns) >= plan.GmailLimit {
		writeError(w, http.StatusForbidden, "plan's Gmail account limit reached")
		return
	}

	sealed, err := s.box.Seal(tok.RefreshToken)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "seal refresh token")
		return
	}

	conn := &models.GmailConnection{
		UserID:          uid,
		Email:           profile.EmailAddress,
		RefreshTokenEnc: sealed,
		Primary:         len(conns) == 0,
	}
	if err := s.store.UpsertConnection(r.Context(), conn); err != nil {
		slog.Error("save connection failed", "user", uid, "error", err)
		writeError(w, http.StatusInternalServerError, "save connection")
		return
	}

	slog.Info("gmail connected", "user", uid, "email", profile.EmailAddress)

	if s.cfg.FrontendURL != "" {
		http.Redirect(w, r, s.cfg.FrontendURL+"/?gmail=connected", http.StatusFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"msg":   "Gmail connected",
		"email": profile.EmailAddress,
	})
}

func (s *Server) handleGmailStatus(w http.ResponseWriter, r *http.Request) {
	conns, err := s.store.ActiveConnections(r.Context(), userID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "lookup connections")
		return
	}
	type account struct {
		ID          string `json:"id"`
		Email       string `json:"email"`
		Primary     bool   `json:"primary"`
		ConnectedAt string `json:"connected_at"`
	}
	accounts := make([]account, 0, len(conns))
	for _, c := range conns {
		accounts = append(accounts, account{
			ID:          c.ID,
			Email:       c.Email,
			Primary:     c.Primary,
			ConnectedAt: c.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"connected": len(accounts) > 0,
		"accounts":  accounts,
	})
}

func (s *Server) handleGmailDisconnect(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	// Drop cached access tokens so a reconnect starts clean.
	if conns, err := s.store.ActiveConnections(r.Context(), uid); err == nil {
		for _, c := range conns {
			s.tokens.Forget(r.Context(), c.ID)
		}
	}

	if err := s.store.DeleteConnections(r.Context(), uid); err != nil {
		writeError(w, http.StatusInternalServerError, "disconnect failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": "Gmail disconnected"})
}

// freshAccessToken returns a working access token for the connection:
// cache hit, else a refresh-token round trip to Google. Refresh failures
// map to ErrReauthRequired.
func (s *Server) freshAccessToken(ctx context.Context, conn *models.GmailConnection) (string, error) {
	if tok := s.tokens.Get(ctx, conn.ID); tok != "" {
		return tok, nil
	}

	refreshToken, err := s.box.Open(conn.RefreshTokenEnc)
	if err != nil {
		return "", fmt.Errorf("unseal refresh token: %w", err)
	}

	tok, err := s.oauth.Refresh(ctx, refreshToken)
	if err != nil {
		slog.Warn("refresh token rejected", "connection", conn.ID, "error", err)
		return "", ErrReauthRequired
	}

	if err := s.tokens.Put(ctx, conn.ID, tok.AccessToken); err != nil {
		// Cache failures are not fatal, the token still works.
		slog.Warn("token cache write failed", "connection", conn.ID, "error", err)
	}
	return tok.AccessToken, nil
}

func (s *Server) planFor(user *models.User) models.Plan {
	if plan, ok := s.cfg.Plans[user.Plan]; ok {
		return plan
	}
	return s.cfg.Plans["personal"]
}
