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

// Package archive zips harvest output directories and prunes stale
// local batches.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// ZipDirectory compresses sourceDir into outPath (the directory's
// contents sit at the archive root) and returns the zip size in bytes.
func ZipDirectory(sourceDir, outPath string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return 0, fmt.Errorf("create zip parent dir: %w", err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf("create zip file: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)

	err = filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}

		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err
	})
	if err != nil {
		zw.Close()
		return 0, fmt.Errorf("zip %s: %w", sourceDir, err)
	}
	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("finalize zip: %w", err)
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return 0, fmt.Errorf("stat zip: %w", err)
	}
	return info.Size(), nil
}

// CleanOld removes per-user batch directories (and stray zips) under
// base that have not been modified within maxAge. Best effort; failures
// are logged and skipped.
func CleanOld(base string, maxAge time.Duration) {
	entries, err := os.ReadDir(base)
	if err != nil {
		return
	}
	threshold := time.Now().Add(-maxAge)

	for _, userEntry := range entries {
		if !userEntry.IsDir() {
			continue
		}
		userDir := filepath.Join(base, userEntry.Name())
		batches, err := os.ReadDir(userDir)
		if err != nil {
			continue
		}
		for _, batch := range batches {
			batchPath := filepath.Join(userDir, batch.Name())
			info, err := batch.Info()
			if err != nil {
				continue
			}
			if info.ModTime().After(threshold) {
				continue
			}
			if err := os.RemoveAll(batchPath); err != nil {
				slog.Warn("failed to prune stale batch", "path", batchPath, "error", err)
				continue
			}
			slog.Info("pruned stale batch", "path", batchPath)
		}
	}
}
