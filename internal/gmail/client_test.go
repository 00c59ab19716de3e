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

package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestListMessages_Pagination verifies the client follows page tokens
// and accumulates results across pages.
func TestListMessages_Pagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Query().Get("pageToken") {
		case "":
			json.NewEncoder(w).Encode(map[string]any{
				"messages":      []map[string]string{{"id": "m1"}, {"id": "m2"}},
				"nextPageToken": "page-2",
			})
		case "page-2":
			json.NewEncoder(w).Encode(map[string]any{
				"messages": []map[string]string{{"id": "m3"}},
			})
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer server.Close()

	c := NewClient(server.Client(), server.URL)
	refs, err := c.ListMessages(context.Background(), "subject:(\"Factura\")", 100, false)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(refs) != 3 {
		t.Fatalf("got %d refs, want 3", len(refs))
	}
	if refs[0].ID != "m1" || refs[2].ID != "m3" {
		t.Errorf("unexpected ref order: %v", refs)
	}
}

// TestListMessages_MaxTruncation verifies results are capped at max even
// when a page overshoots it.
func TestListMessages_MaxTruncation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		msgs := make([]map[string]string, 10)
		for i := range msgs {
			msgs[i] = map[string]string{"id": fmt.Sprintf("m%d", i)}
		}
		json.NewEncoder(w).Encode(map[string]any{
			"messages":      msgs,
			"nextPageToken": "more",
		})
	}))
	defer server.Close()

	c := NewClient(server.Client(), server.URL)
	refs, err := c.ListMessages(context.Background(), "q", 7, false)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(refs) != 7 {
		t.Errorf("got %d refs, want 7", len(refs))
	}
}

// TestListMessages_SpamFlag verifies the includeSpamTrash parameter is
// forwarded only when requested.
func TestListMessages_SpamFlag(t *testing.T) {
	var gotSpamParam string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSpamParam = r.URL.Query().Get("includeSpamTrash")
		json.NewEncoder(w).Encode(map[string]any{"messages": []map[string]string{}})
	}))
	defer server.Close()

	c := NewClient(server.Client(), server.URL)

	if _, err := c.ListMessages(context.Background(), "q", 10, true); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if gotSpamParam != "true" {
		t.Errorf("includeSpamTrash = %q, want true", gotSpamParam)
	}

	if _, err := c.ListMessages(context.Background(), "q", 10, false); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if gotSpamParam != "" {
		t.Errorf("includeSpamTrash = %q, want unset", gotSpamParam)
	}
}

// TestListMessages_Error verifies non-200 responses propagate.
func TestListMessages_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := NewClient(server.Client(), server.URL)
	if _, err := c.ListMessages(context.Background(), "q", 10, false); err == nil {
		t.Fatal("expected error for 401 response")
	}
}

// TestGetAttachment_DecodesBase64URL verifies unpadded and padded
// base64url attachment data both decode.
func TestGetAttachment_DecodesBase64URL(t *testing.T) {
	payload := []byte("%PDF-1.4 data")

	for name, encoded := range map[string]string{
		"unpadded": base64.RawURLEncoding.EncodeToString(payload),
		"padded":   base64.URLEncoding.EncodeToString(payload),
	} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"size": len(payload), "data": encoded})
		}))

		c := NewClient(server.Client(), server.URL)
		data, err := c.GetAttachment(context.Background(), "m1", "a1")
		server.Close()

		if err != nil {
			t.Fatalf("%s: get attachment failed: %v", name, err)
		}
		if string(data) != string(payload) {
			t.Errorf("%s: data = %q, want %q", name, data, payload)
		}
	}
}

// TestGetMessage_Subject verifies subject extraction from headers.
func TestGetMessage_Subject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"id": "m1",
			"payload": map[string]any{
				"headers": []map[string]string{
					{"name": "From", "value": "emisor@empresa.sv"},
					{"name": "Subject", "value": "Factura electrónica"},
				},
			},
		})
	}))
	defer server.Close()

	c := NewClient(server.Client(), server.URL)
	msg, err := c.GetMessage(context.Background(), "m1")
	if err != nil {
		t.Fatalf("get message failed: %v", err)
	}
	if got := msg.Subject(); got != "Factura electrónica" {
		t.Errorf("subject = %q, want %q", got, "Factura electrónica")
	}
}

// TestGetProfile verifies the profile response mapping.
func TestGetProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/me/profile" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"emailAddress":  "cuenta@gmail.com",
			"messagesTotal": 1234,
		})
	}))
	defer server.Close()

	c := NewClient(server.Client(), server.URL)
	p, err := c.GetProfile(context.Background())
	if err != nil {
		t.Fatalf("get profile failed: %v", err)
	}
	if p.EmailAddress != "cuenta@gmail.com" {
		t.Errorf("email = %q, want cuenta@gmail.com", p.EmailAddress)
	}
}
