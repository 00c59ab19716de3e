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
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/invozip/backend/internal/archive"
	"github.com/invozip/backend/internal/gmail"
	"github.com/invozip/backend/internal/harvest"
	"github.com/invozip/backend/internal/models"
	"github.com/invozip/backend/internal/storage"
)

type generateRequest struct {
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	AccountID   string `json:"accountId"`
	IncludeSpam bool   `json:"includeSpam"`
}

// handleGeneratePackage runs a harvest for the requested window, zips
// the result, uploads it to S3, and records the package and usage.
func (s *Server) handleGeneratePackage(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	// Opportunistic cleanup of stale local batches before we add one.
	archive.CleanOld(s.cfg.WorkDir, s.cfg.Harvest.ZipMaxAge)

	var req generateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	dr, err := parseDates(req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.store.UserByID(r.Context(), uid)
	if err != nil || user == nil {
		writeError(w, http.StatusInternalServerError, "lookup user")
		return
	}
	if user.PlanStatus != "active" {
		writeError(w, http.StatusForbidden, "subscription is not active")
		return
	}
	plan := s.planFor(user)

	period := time.Now().UTC().Format("2006-01")
	used, err := s.store.UsageCount(r.Context(), uid, period)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "lookup usage")
		return
	}
	remaining := plan.DTELimit - used
	if remaining <= 0 {
		writeError(w, http.StatusForbidden, "monthly DTE limit reached")
		return
	}

	conn, err := s.selectConnection(r, uid, req.AccountID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	accessToken, err := s.freshAccessToken(r.Context(), conn)
	if errors.Is(err, ErrReauthRequired) {
		writeError(w, http.StatusUnauthorized, "gmail access expired, reconnect the account")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "obtain Gmail token")
		return
	}

	custom, err := s.store.CustomKeywords(r.Context(), uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "lookup keywords")
		return
	}

	client := gmail.NewClientWithToken(r.Context(), accessToken, s.gmailBaseURL)
	client.SetPageSize(s.cfg.Harvest.PageSize)

	harvester := harvest.New(harvest.Config{
		Client:            client,
		Links:             harvest.NewLinkFetcher(nil, s.cfg.Harvest.LinkTimeout),
		MessageWorkers:    s.cfg.Harvest.MessageWorkers,
		AttachmentWorkers: s.cfg.Harvest.AttachmentWorkers,
	})

	res, err := harvester.Run(r.Context(), harvest.Request{
		UserID:         uid,
		BatchLabel:     dr.BatchLabel,
		StartEpoch:     dr.StartEpoch,
		EndEpoch:       dr.EndEpoch,
		MaxMessages:    s.cfg.Harvest.MaxMessages,
		MaxJSON:        remaining,
		CustomKeywords: custom,
		IncludeSpam:    req.IncludeSpam,
		BaseDir:        s.cfg.WorkDir,
	})
	if err != nil {
		slog.Error("harvest failed", "user", uid, "error", err)
		writeError(w, http.StatusBadGateway, "harvest failed")
		return
	}

	if err := writeBatchInfo(res.OutputDir, dr, conn.Email); err != nil {
		slog.Warn("write batch info failed", "user", uid, "error", err)
	}

	zipPath := filepath.Join(filepath.Dir(res.OutputDir), dr.BatchLabel+".zip")
	size, err := archive.ZipDirectory(res.OutputDir, zipPath)
	if err != nil {
		os.RemoveAll(res.OutputDir)
		writeError(w, http.StatusInternalServerError, "zip harvest output")
		return
	}

	if size > plan.ZipLimitBytes {
		os.RemoveAll(res.OutputDir)
		os.Remove(zipPath)
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("zip is %d bytes, plan limit is %d", size, plan.ZipLimitBytes))
		return
	}

	pkgID := uuid.New().String()
	storageKey := fmt.Sprintf("zips/%s/%s.zip", uid, pkgID)

	if err := s.s3.UploadZip(r.Context(), zipPath, storageKey); err != nil {
		slog.Error("zip upload failed", "user", uid, "key", storageKey, "error", err)
		os.RemoveAll(res.OutputDir)
		os.Remove(zipPath)
		writeError(w, http.StatusBadGateway, "upload to storage failed")
		return
	}

	os.RemoveAll(res.OutputDir)
	os.Remove(zipPath)

	pkg := &models.Package{
		ID:            pkgID,
		UserID:        uid,
		AccountID:     conn.ID,
		AccountEmail:  conn.Email,
		BatchLabel:    dr.BatchLabel,
		StartDate:     dr.Start.Format("2006-01-02"),
		EndDate:       dr.End.Format("2006-01-02"),
		StorageKey:    storageKey,
		Status:        models.PackageAvailable,
		SizeBytes:     size,
		FilesSaved:    res.FilesSaved,
		MessagesFound: res.MessagesFound,
		PDFCount:      res.PDFCount,
		JSONCount:     res.JSONCount,
	}
	if err := s.store.CreatePackage(r.Context(), pkg); err != nil {
		slog.Error("record package failed", "user", uid, "package", pkgID, "error", err)
		writeError(w, http.StatusInternalServerError, "record package")
		return
	}

	consumed := min(res.JSONCount, remaining)
	if consumed > 0 {
		if err := s.store.AddUsage(r.Context(), uid, period, consumed); err != nil {
			slog.Error("record usage failed", "user", uid, "error", err)
		}
	}

	if err := s.publisher.PublishPackageGenerated(r.Context(), pkg); err != nil {
		// The package is already safe in S3 and the database.
		slog.Warn("publish package event failed", "package", pkgID, "error", err)
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"package": pkg,
		"summary": map[string]any{
			"messages_found": res.MessagesFound,
			"processed":      res.Processed,
			"files_saved":    res.FilesSaved,
			"pdf_count":      res.PDFCount,
			"json_count":     res.JSONCount,
		},
		"limit_info": map[string]any{
			"dte_limit": plan.DTELimit,
			"used":      used + consumed,
			"remaining": plan.DTELimit - used - consumed,
		},
	})
}

// selectConnection resolves which Gmail account to harvest: an explicit
// account ID, else the primary, else the sole connected account.
func (s *Server) selectConnection(r *http.Request, uid, accountID string) (*models.GmailConnection, error) {
	if accountID != "" {
		conn, err := s.store.ConnectionByID(r.Context(), uid, accountID)
		if err != nil {
			return nil, errors.New("lookup account failed")
		}
		if conn == nil || conn.Status != "active" {
			return nil, errors.New("unknown or inactive Gmail account")
		}
		return conn, nil
	}

	conns, err := s.store.ActiveConnections(r.Context(), uid)
	if err != nil {
		return nil, errors.New("lookup accounts failed")
	}
	if len(conns) == 0 {
		return nil, errors.New("no Gmail account connected")
	}
	// Ordered primary first by the store.
	return &conns[0], nil
}

// writeBatchInfo drops an INFO.txt at the batch root describing the
// harvest window and source account.
func writeBatchInfo(outputDir string, dr *dateRange, accountEmail string) error {
	content := fmt.Sprintf("Batch: %s a %s\nExtraído de: %s\nGenerado: %s\n",
		dr.Start.Format("2006-01-02"),
		dr.End.Format("2006-01-02"),
		accountEmail,
		time.Now().UTC().Format(time.RFC3339),
	)
	return os.WriteFile(filepath.Join(outputDir, "INFO.txt"), []byte(content), 0o644)
}

func (s *Server) handleListPackages(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}

	pkgs, total, err := s.store.ListPackages(r.Context(), userID(r), limit, (page-1)*limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "lookup packages")
		return
	}
	if pkgs == nil {
		pkgs = []models.Package{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"packages": pkgs,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}

func (s *Server) handleLatestPackage(w http.ResponseWriter, r *http.Request) {
	pkg, err := s.store.LatestPackage(r.Context(), userID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "lookup latest package")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"package": pkg})
}

func (s *Server) handleDownloadPackage(w http.ResponseWriter, r *http.Request) {
	pkg, err := s.store.PackageByID(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "lookup package")
		return
	}
	if pkg == nil {
		writeError(w, http.StatusNotFound, "package not found")
		return
	}
	if pkg.Status != models.PackageAvailable {
		writeError(w, http.StatusGone, "package is no longer available")
		return
	}

	url, err := s.s3.DownloadURL(r.Context(), pkg.StorageKey, 5*time.Minute, pkg.BatchLabel+".zip")
	if errors.Is(err, storage.ErrNotFound) {
		// The bucket lifecycle removed the object; record that so the
		// dashboard stops offering the download.
		if markErr := s.store.SetPackageStatus(r.Context(), pkg.ID, models.PackageExpired); markErr != nil {
			slog.Warn("mark package expired failed", "package", pkg.ID, "error", markErr)
		}
		writeError(w, http.StatusGone, "package file has expired from storage")
		return
	}
	if err != nil {
		slog.Error("presign download failed", "package", pkg.ID, "error", err)
		writeError(w, http.StatusBadGateway, "could not create download link")
		return
	}

	if r.URL.Query().Get("urlOnly") == "1" {
		writeJSON(w, http.StatusOK, map[string]string{"url": url})
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	user, err := s.store.UserByID(r.Context(), uid)
	if err != nil || user == nil {
		writeError(w, http.StatusInternalServerError, "lookup user")
		return
	}
	plan := s.planFor(user)

	period := time.Now().UTC().Format("2006-01")
	used, err := s.store.UsageCount(r.Context(), uid, period)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "lookup usage")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"plan":        plan,
		"plan_status": user.PlanStatus,
		"usage":       models.UsageMonth{UserID: uid, Period: period, DTECount: used},
		"remaining":   max(plan.DTELimit-used, 0),
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
