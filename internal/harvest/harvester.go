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

// Package harvest implements the invoice harvesting pipeline: it builds
// a Gmail search query from a keyword set and date range, pages through
// matching messages, walks their MIME trees for PDF and DTE JSON
// attachments, follows trusted invoice-platform links, deduplicates by
// attachment identity and content hash, and assembles everything into a
// directory tree ready for zipping.
package harvest

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/invozip/backend/internal/gmail"
)

// Directory names inside a batch. The per-message tree keeps JSON and
// PDF together; the flat mirror holds only PDFs for accountants who
// want a single folder to print from.
const (
	mailDirName = "JSON_y_PDFS"
	soloDirName = "SOLO_PDF"
)

// Harvester runs invoice harvests against one Gmail mailbox client.
type Harvester struct {
	client            *gmail.Client
	links             *LinkFetcher
	messageWorkers    int
	attachmentWorkers int
	trustedHosts      []string
}

// Config holds the harvester's collaborators and pool widths.
type Config struct {
	Client            *gmail.Client
	Links             *LinkFetcher
	MessageWorkers    int // default 4
	AttachmentWorkers int // default 8
	TrustedHosts      []string
}

// New creates a harvester. Zero pool widths take the defaults; a nil
// link fetcher gets a default 20s-timeout fetcher.
func New(cfg Config) *Harvester {
	h := &Harvester{
		client:            cfg.Client,
		links:             cfg.Links,
		messageWorkers:    cfg.MessageWorkers,
		attachmentWorkers: cfg.AttachmentWorkers,
		trustedHosts:      cfg.TrustedHosts,
	}
	if h.links == nil {
		h.links = NewLinkFetcher(nil, 0)
	}
	if h.messageWorkers <= 0 {
		h.messageWorkers = 4
	}
	if h.attachmentWorkers <= 0 {
		h.attachmentWorkers = 8
	}
	if h.trustedHosts == nil {
		h.trustedHosts = DefaultTrustedHosts
	}
	return h
}

// Request defines the scope of one harvest run.
type Request struct {
	UserID     string
	BatchLabel string

	// StartEpoch is inclusive. EndEpoch feeds Gmail's exclusive before:
	// filter, so callers wanting an inclusive end date pass end + 1 day.
	StartEpoch int64
	EndEpoch   int64

	MaxMessages    int
	MaxJSON        int // soft cap on JSON documents saved; 0 saves none
	CustomKeywords []string
	IncludeSpam    bool

	// BaseDir is the scratch root; output lands in BaseDir/UserID/BatchLabel.
	BaseDir string
}

// Result summarises a completed harvest run. The output directory is
// left on disk for the caller to zip and delete.
type Result struct {
	Processed     int      `json:"processed"`
	MessagesFound int      `json:"messages_found"`
	FilesSaved    int      `json:"files_saved"`
	PDFCount      int      `json:"pdf_count"`
	JSONCount     int      `json:"json_count"`
	SavedFiles    []string `json:"saved_files"`
	OutputDir     string   `json:"output_dir"`
}

// runState is the mutable state shared by all workers of one run.
type runState struct {
	ledger  *Ledger
	maxJSON int

	pdfCount  atomic.Int64
	jsonCount atomic.Int64
	processed atomic.Int64

	mu    sync.Mutex
	saved []string
}

// jsonExhausted reports whether the JSON document cap has been reached.
// The check and the later increment are deliberately not one atomic
// step: concurrent in-flight fetches may overshoot the cap by at most
// the attachment pool width. The cap is best-effort.
func (s *runState) jsonExhausted() bool {
	return s.jsonCount.Load() >= int64(s.maxJSON)
}

func (s *runState) appendSaved(name string) {
	s.mu.Lock()
	s.saved = append(s.saved, name)
	s.mu.Unlock()
}

// messageState tracks per-message output: the lazily created folder and
// whether anything was written for the message.
type messageState struct {
	dir     string
	dirOnce sync.Once
	dirErr  error
	wrote   atomic.Bool
}

func (m *messageState) ensureDir() error {
	m.dirOnce.Do(func() {
		m.dirErr = os.MkdirAll(m.dir, 0o755)
	})
	return m.dirErr
}

// Run executes one harvest. A listing failure aborts the run before any
// message is touched; failures inside individual messages, attachments,
// or links are logged and skipped.
func (h *Harvester) Run(ctx context.Context, req Request) (*Result, error) {
	maxMessages := req.MaxMessages
	if maxMessages <= 0 {
		maxMessages = 100
	}

	keywords := MergeKeywords(req.CustomKeywords)
	query := BuildQuery(keywords, req.StartEpoch, req.EndEpoch)

	slog.Info("starting invoice harvest",
		"user", req.UserID,
		"batch", req.BatchLabel,
		"keywords", len(keywords),
		"max_messages", maxMessages,
		"include_spam", req.IncludeSpam,
	)

	refs, err := h.client.ListMessages(ctx, query, maxMessages, req.IncludeSpam)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	baseDir := filepath.Join(req.BaseDir, req.UserID, req.BatchLabel)
	mailDir := filepath.Join(baseDir, mailDirName)
	soloDir := filepath.Join(baseDir, soloDirName)
	for _, d := range []string{mailDir, soloDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}

	st := &runState{ledger: NewLedger(), maxJSON: req.MaxJSON}

	tasks := make([]Task, len(refs))
	for i, ref := range refs {
		ref := ref
		tasks[i] = func(ctx context.Context) {
			if err := h.processMessage(ctx, ref, st, mailDir, soloDir); err != nil {
				slog.Error("message processing failed",
					"message_id", ref.ID,
					"error", err,
				)
			}
		}
	}
	RunPool(ctx, tasks, h.messageWorkers)

	res := &Result{
		Processed:     int(st.processed.Load()),
		MessagesFound: len(refs),
		FilesSaved:    len(st.saved),
		PDFCount:      int(st.pdfCount.Load()),
		JSONCount:     int(st.jsonCount.Load()),
		SavedFiles:    st.saved,
		OutputDir:     baseDir,
	}

	slog.Info("invoice harvest complete",
		"user", req.UserID,
		"batch", req.BatchLabel,
		"messages_found", res.MessagesFound,
		"processed", res.Processed,
		"files_saved", res.FilesSaved,
		"pdf_count", res.PDFCount,
		"json_count", res.JSONCount,
	)

	return res, nil
}

// processMessage fetches one message, downloads its eligible attachments
// through the attachment pool, then follows trusted links from its body.
func (h *Harvester) processMessage(ctx context.Context, ref gmail.MessageRef, st *runState, mailDir, soloDir string) error {
	msg, err := h.client.GetMessage(ctx, ref.ID)
	if err != nil {
		return err
	}

	subject := msg.Subject()
	if subject == "" {
		subject = "No Subject"
	}
	safeSubject := sanitizeSubject(subject)

	ms := &messageState{dir: filepath.Join(mailDir, safeSubject+"_"+ref.ID)}

	parts := CollectParts(msg.Payload)

	// Filename dedup is scoped to one message; only this goroutine
	// touches the set, during scheduling.
	filenameSeen := make(map[string]struct{})

	var tasks []Task
	for _, part := range parts {
		if part.Filename == "" || part.Body == nil || part.Body.AttachmentID == "" {
			continue
		}
		ext := strings.ToLower(filepath.Ext(part.Filename))
		if ext != ".pdf" && ext != ".json" {
			continue
		}
		if ext == ".json" && st.jsonExhausted() {
			continue
		}
		if !st.ledger.ClaimAttachment(ref.ID, part.Body.AttachmentID) {
			continue
		}
		if ext == ".pdf" {
			if _, dup := filenameSeen[part.Filename]; dup {
				continue
			}
			filenameSeen[part.Filename] = struct{}{}
		}

		part := part
		tasks = append(tasks, func(ctx context.Context) {
			h.saveAttachment(ctx, ref.ID, part, ext, safeSubject, soloDir, st, ms)
		})
	}
	RunPool(ctx, tasks, h.attachmentWorkers)

	var linkTasks []Task
	for _, link := range h.trustedLinks(parts) {
		name := LinkFilename(link)
		if _, dup := filenameSeen[name]; dup {
			continue
		}
		filenameSeen[name] = struct{}{}
		if !st.ledger.ClaimLink(link) {
			continue
		}

		link := link
		linkTasks = append(linkTasks, func(ctx context.Context) {
			h.saveLinkedDocument(ctx, link, name, ref.ID, safeSubject, soloDir, st, ms)
		})
	}
	RunPool(ctx, linkTasks, h.attachmentWorkers)

	if ms.wrote.Load() {
		st.processed.Add(1)
	}
	return nil
}

// saveAttachment downloads one attachment and writes it through the
// dedup and quota gates. Failures are logged; the file is just not saved.
func (h *Harvester) saveAttachment(ctx context.Context, messageID string, part *gmail.MessagePart, ext, safeSubject, soloDir string, st *runState, ms *messageState) {
	// Quota races with sibling downloads are tolerated (soft cap).
	if ext == ".json" && st.jsonExhausted() {
		return
	}

	data, err := h.client.GetAttachment(ctx, messageID, part.Body.AttachmentID)
	if err != nil {
		slog.Warn("attachment download failed",
			"message_id", messageID,
			"filename", part.Filename,
			"error", err,
		)
		return
	}

	h.writeDocument(data, part.Filename, ext, messageID, safeSubject, soloDir, st, ms)
}

// saveLinkedDocument downloads a PDF from a trusted link and stores it
// exactly like a direct PDF attachment. Non-PDF responses are a silent
// skip, not an error.
func (h *Harvester) saveLinkedDocument(ctx context.Context, link, filename, messageID, safeSubject, soloDir string, st *runState, ms *messageState) {
	data, err := h.links.Fetch(ctx, link)
	if errors.Is(err, ErrNotPDF) {
		slog.Debug("trusted link is not a PDF, skipping", "link", link)
		return
	}
	if err != nil {
		slog.Warn("trusted link download failed", "link", link, "error", err)
		return
	}

	h.writeDocument(data, filename, ".pdf", messageID, safeSubject, soloDir, st, ms)
}

// writeDocument runs the content-hash gate and writes the file into the
// per-message folder, plus the flat PDF mirror for PDFs. Counts move
// only when a write actually happens.
func (h *Harvester) writeDocument(data []byte, filename, ext, messageID, safeSubject, soloDir string, st *runState, ms *messageState) {
	sum := sha256.Sum256(data)
	if !st.ledger.ClaimContent(sum) {
		slog.Debug("duplicate content skipped", "message_id", messageID, "filename", filename)
		return
	}

	if ext == ".json" && st.jsonExhausted() {
		return
	}

	if err := ms.ensureDir(); err != nil {
		slog.Error("create message folder failed", "dir", ms.dir, "error", err)
		return
	}
	if err := os.WriteFile(filepath.Join(ms.dir, filename), data, 0o644); err != nil {
		slog.Error("write document failed", "filename", filename, "error", err)
		return
	}

	if ext == ".pdf" {
		soloName := fmt.Sprintf("%s_%s_%s", safeSubject, messageID, filename)
		if err := os.WriteFile(filepath.Join(soloDir, soloName), data, 0o644); err != nil {
			slog.Warn("write flat PDF copy failed", "filename", soloName, "error", err)
		}
		st.pdfCount.Add(1)
	} else {
		st.jsonCount.Add(1)
	}

	st.appendSaved(filename)
	ms.wrote.Store(true)
}

// trustedLinks extracts allow-listed URLs from the message's text and
// HTML body parts.
func (h *Harvester) trustedLinks(parts []*gmail.MessagePart) []string {
	var links []string
	seen := make(map[string]struct{})
	for _, part := range parts {
		if part.Body == nil || part.Body.Data == "" {
			continue
		}
		mt := strings.ToLower(part.MimeType)
		if mt != "text/plain" && mt != "text/html" {
			continue
		}
		body, err := gmail.DecodeBody(part.Body.Data)
		if err != nil {
			continue
		}
		for _, link := range ExtractLinks(string(body), h.trustedHosts) {
			if _, ok := seen[link]; ok {
				continue
			}
			seen[link] = struct{}{}
			links = append(links, link)
		}
	}
	return links
}

// sanitizeSubject turns a subject into a filesystem-safe folder name
// fragment: non-alphanumeric runes become underscores and the result is
// truncated to 50 characters.
func sanitizeSubject(subject string) string {
	var b strings.Builder
	for _, r := range subject {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	s := b.String()
	if len(s) > 50 {
		s = s[:50]
	}
	return s
}
