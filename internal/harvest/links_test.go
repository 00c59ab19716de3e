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

package harvest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestExtractLinks_TrustedOnly verifies untrusted hosts are dropped
// before any fetch could happen.
func TestExtractLinks_TrustedOnly(t *testing.T) {
	body := "Descargue su factura: https://s.edicom.eu/doc123.pdf and https://evil.example.com/malware.pdf"

	links := ExtractLinks(body, DefaultTrustedHosts)

	if len(links) != 1 {
		t.Fatalf("got %d links, want 1: %v", len(links), links)
	}
	if links[0] != "https://s.edicom.eu/doc123.pdf" {
		t.Errorf("link = %q, want the edicom URL", links[0])
	}
}

// TestExtractLinks_SubdomainMatching verifies suffix matching trusts
// subdomains but not lookalike hosts.
func TestExtractLinks_SubdomainMatching(t *testing.T) {
	cases := []struct {
		url     string
		trusted bool
	}{
		{"https://edicom.eu/a.pdf", true},
		{"https://portal.mh.gob.sv/doc", true},
		{"https://deep.sub.factura.gob.sv/x", true},
		{"https://notedicom.eu/a.pdf", false},
		{"https://edicom.eu.evil.com/a.pdf", false},
	}

	for _, tc := range cases {
		links := ExtractLinks("ver "+tc.url, DefaultTrustedHosts)
		got := len(links) == 1
		if got != tc.trusted {
			t.Errorf("%s: trusted = %v, want %v", tc.url, got, tc.trusted)
		}
	}
}

// TestExtractLinks_TrailingPunctuation verifies sentence punctuation is
// stripped off extracted URLs.
func TestExtractLinks_TrailingPunctuation(t *testing.T) {
	links := ExtractLinks("Su documento: https://mh.gob.sv/dte/987.", DefaultTrustedHosts)
	if len(links) != 1 || links[0] != "https://mh.gob.sv/dte/987" {
		t.Errorf("got %v, want the URL without the trailing period", links)
	}
}

// TestExtractLinks_Dedup verifies repeated URLs extract once.
func TestExtractLinks_Dedup(t *testing.T) {
	body := "https://mh.gob.sv/a.pdf otra vez https://mh.gob.sv/a.pdf"
	if links := ExtractLinks(body, DefaultTrustedHosts); len(links) != 1 {
		t.Errorf("got %d links, want 1", len(links))
	}
}

// TestLinkFetcher_PDFByContentType verifies a pdf content type passes
// the document check.
func TestLinkFetcher_PDFByContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("not really pdf bytes"))
	}))
	defer server.Close()

	f := NewLinkFetcher(server.Client(), time.Second)
	data, err := f.Fetch(context.Background(), server.URL+"/doc")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected document bytes")
	}
}

// TestLinkFetcher_PDFByMagicBytes verifies the %PDF- prefix passes even
// with a generic content type.
func TestLinkFetcher_PDFByMagicBytes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte("%PDF-1.7 content"))
	}))
	defer server.Close()

	f := NewLinkFetcher(server.Client(), time.Second)
	if _, err := f.Fetch(context.Background(), server.URL+"/download"); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
}

// TestLinkFetcher_NotPDF verifies an HTML landing page is rejected with
// ErrNotPDF.
func TestLinkFetcher_NotPDF(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>login required</html>"))
	}))
	defer server.Close()

	f := NewLinkFetcher(server.Client(), time.Second)
	_, err := f.Fetch(context.Background(), server.URL+"/portal")
	if !errors.Is(err, ErrNotPDF) {
		t.Errorf("err = %v, want ErrNotPDF", err)
	}
}

// TestLinkFetcher_HTTPError verifies non-200 responses fail.
func TestLinkFetcher_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	f := NewLinkFetcher(server.Client(), time.Second)
	if _, err := f.Fetch(context.Background(), server.URL+"/doc.pdf"); err == nil {
		t.Error("expected error for 403 response")
	}
}

// TestLinkFilename verifies filename synthesis from URL paths.
func TestLinkFilename(t *testing.T) {
	cases := []struct {
		link string
		want string
	}{
		{"https://s.edicom.eu/doc123.pdf", "doc123.pdf"},
		{"https://mh.gob.sv/dte/987", "987.pdf"},
		{"https://mh.gob.sv/", "document.pdf"},
		{"https://mh.gob.sv/archivo con espacios.PDF", "archivo_con_espacios.PDF"},
	}

	for _, tc := range cases {
		if got := LinkFilename(tc.link); got != tc.want {
			t.Errorf("LinkFilename(%q) = %q, want %q", tc.link, got, tc.want)
		}
	}
}
