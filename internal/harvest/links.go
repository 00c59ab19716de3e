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
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"
)

// DefaultTrustedHosts are the invoicing platforms whose links we follow
// to fetch PDFs that arrive as download links rather than attachments.
// Subdomains of each entry are trusted too.
var DefaultTrustedHosts = []string{
	"edicom.eu",
	"factura.gob.sv",
	"mh.gob.sv",
}

// ErrNotPDF marks a trusted-link response that does not look like a PDF
// document. It is a skip condition, not a failure.
var ErrNotPDF = errors.New("link content is not a PDF")

var urlPattern = regexp.MustCompile(`https?://[^\s<>"')\]]+`)

// maxLinkDocBytes bounds how much we read from an external host.
const maxLinkDocBytes = 32 << 20

// ExtractLinks pulls http(s) URLs out of a body and keeps only those
// whose host is on the trusted list, preserving order and dropping
// duplicates. Untrusted links are discarded before any fetch happens.
func ExtractLinks(body string, trusted []string) []string {
	var links []string
	seen := make(map[string]struct{})
	for _, raw := range urlPattern.FindAllString(body, -1) {
		raw = strings.TrimRight(raw, ".,;")
		if _, ok := seen[raw]; ok {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil {
			continue
		}
		if !hostTrusted(u.Hostname(), trusted) {
			continue
		}
		seen[raw] = struct{}{}
		links = append(links, raw)
	}
	return links
}

func hostTrusted(host string, trusted []string) bool {
	host = strings.ToLower(host)
	for _, t := range trusted {
		t = strings.ToLower(t)
		if host == t || strings.HasSuffix(host, "."+t) {
			return true
		}
	}
	return false
}

// LinkFetcher downloads PDF documents from trusted external links.
type LinkFetcher struct {
	httpClient *http.Client
	timeout    time.Duration
}

// NewLinkFetcher creates a fetcher with the given per-download timeout.
// A nil client uses http.DefaultClient.
func NewLinkFetcher(client *http.Client, timeout time.Duration) *LinkFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &LinkFetcher{httpClient: client, timeout: timeout}
}

// Fetch downloads the link and returns the document bytes. Responses
// that do not indicate PDF — by content type, leading bytes, or a .pdf
// path — return ErrNotPDF.
func (f *LinkFetcher) Fetch(ctx context.Context, link string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch link: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("link returned HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxLinkDocBytes))
	if err != nil {
		return nil, fmt.Errorf("read link body: %w", err)
	}

	if !looksLikePDF(link, resp.Header.Get("Content-Type"), data) {
		return nil, ErrNotPDF
	}
	return data, nil
}

func looksLikePDF(link, contentType string, data []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "pdf") {
		return true
	}
	if len(data) >= 5 && string(data[:5]) == "%PDF-" {
		return true
	}
	u, err := url.Parse(link)
	return err == nil && strings.HasSuffix(strings.ToLower(u.Path), ".pdf")
}

// LinkFilename synthesises a filename for a link-derived document from
// the URL's last path segment, sanitised and suffixed with .pdf.
func LinkFilename(link string) string {
	name := "document"
	if u, err := url.Parse(link); err == nil {
		if base := path.Base(u.Path); base != "" && base != "/" && base != "." {
			name = base
		}
	}
	name = sanitizeFilename(name)
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	return name
}

func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
