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
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/invozip/backend/internal/auth"
	"github.com/invozip/backend/internal/config"
	"github.com/invozip/backend/internal/models"
)

func testServer() *Server {
	return NewServer(ServerConfig{
		Config: &config.Config{
			JWTSecret: "test-secret",
			Plans:     models.DefaultPlans(),
		},
	})
}

// TestRequireAuth_ValidToken verifies the middleware passes through and
// exposes the user ID to the handler.
func TestRequireAuth_ValidToken(t *testing.T) {
	s := testServer()

	token, err := auth.GenerateToken("user-7", []byte("test-secret"), auth.SessionTTL)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	var gotUser string
	handler := s.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		gotUser = userID(r)
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/gmail/status", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if gotUser != "user-7" {
		t.Errorf("user ID = %q, want user-7", gotUser)
	}
}

// TestRequireAuth_Rejections verifies missing and bad tokens are turned
// away before the handler runs.
func TestRequireAuth_Rejections(t *testing.T) {
	s := testServer()

	handler := s.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run without valid auth")
	})

	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not bearer", "Basic dXNlcjpwdw=="},
		{"garbage token", "Bearer not.a.jwt"},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/gmail/status", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		handler(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", tc.name, rec.Code)
		}
	}
}

// TestRequireAuth_WrongSecret verifies tokens signed with another key
// are rejected.
func TestRequireAuth_WrongSecret(t *testing.T) {
	s := testServer()

	token, err := auth.GenerateToken("user-7", []byte("different-secret"), auth.SessionTTL)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	handler := s.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run for a foreign token")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/keywords", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

// TestPlanFor_FallsBackToPersonal verifies unknown plan IDs resolve to
// the personal tier instead of a zero-valued plan.
func TestPlanFor_FallsBackToPersonal(t *testing.T) {
	s := testServer()

	plan := s.planFor(&models.User{Plan: "enterprise-legacy"})
	if plan.ID != "personal" {
		t.Errorf("plan = %q, want personal fallback", plan.ID)
	}
}
