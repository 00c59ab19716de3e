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
	"strings"

	"github.com/invozip/backend/internal/harvest"
)

const maxCustomKeywords = 20

func (s *Server) handleGetKeywords(w http.ResponseWriter, r *http.Request) {
	custom, err := s.store.CustomKeywords(r.Context(), userID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "lookup keywords")
		return
	}
	if custom == nil {
		custom = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"base":   harvest.BaseKeywords(),
		"custom": custom,
	})
}

type setKeywordsRequest struct {
	Keywords []string `json:"keywords"`
}

func (s *Server) handleSetKeywords(w http.ResponseWriter, r *http.Request) {
	var req setKeywordsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	cleaned := make([]string, 0, len(req.Keywords))
	for _, kw := range req.Keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if len(kw) > 100 {
			writeError(w, http.StatusBadRequest, "keywords must be 100 characters or fewer")
			return
		}
		cleaned = append(cleaned, kw)
	}
	if len(cleaned) > maxCustomKeywords {
		writeError(w, http.StatusBadRequest, "too many keywords, 20 max")
		return
	}

	if err := s.store.SetCustomKeywords(r.Context(), userID(r), cleaned); err != nil {
		writeError(w, http.StatusInternalServerError, "save keywords")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"keywords": cleaned})
}
