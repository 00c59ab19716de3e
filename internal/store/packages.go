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

package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/invozip/backend/internal/models"
)

// CreatePackage records a generated zip's metadata.
func (s *Store) CreatePackage(ctx context.Context, p *models.Package) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO packages
			(id, user_id, account_id, batch_label, start_date, end_date,
			 storage_key, status, size_bytes, files_saved, messages_found,
			 pdf_count, json_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, p.ID, p.UserID, p.AccountID, p.BatchLabel, p.StartDate, p.EndDate,
		p.StorageKey, p.Status, p.SizeBytes, p.FilesSaved, p.MessagesFound,
		p.PDFCount, p.JSONCount)
	return err
}

const packageColumns = `
	p.id, p.user_id, p.account_id, p.batch_label, p.start_date, p.end_date,
	p.storage_key, p.status, p.size_bytes, p.files_saved, p.messages_found,
	p.pdf_count, p.json_count, p.created_at, COALESCE(c.email, '')
`

// SetPackageStatus updates a package's lifecycle status.
func (s *Store) SetPackageStatus(ctx context.Context, packageID, status string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE packages SET status = $2 WHERE id = $1
	`, packageID, status)
	return err
}

// PackageByID returns one of the user's packages, or nil.
func (s *Store) PackageByID(ctx context.Context, userID, packageID string) (*models.Package, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+packageColumns+`
		FROM packages p
		LEFT JOIN gmail_connections c ON c.id = p.account_id
		WHERE p.user_id = $1 AND p.id = $2
	`, userID, packageID)
	return scanPackage(row)
}

// ListPackages returns a page of the user's packages, newest first,
// along with the total count.
func (s *Store) ListPackages(ctx context.Context, userID string, limit, offset int) ([]models.Package, int, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+packageColumns+`
		FROM packages p
		LEFT JOIN gmail_connections c ON c.id = p.account_id
		WHERE p.user_id = $1
		ORDER BY p.created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var pkgs []models.Package
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, 0, err
		}
		pkgs = append(pkgs, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM packages WHERE user_id = $1
	`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	return pkgs, total, nil
}

// LatestPackage returns the user's most recent package, or nil.
func (s *Store) LatestPackage(ctx context.Context, userID string) (*models.Package, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+packageColumns+`
		FROM packages p
		LEFT JOIN gmail_connections c ON c.id = p.account_id
		WHERE p.user_id = $1
		ORDER BY p.created_at DESC
		LIMIT 1
	`, userID)
	return scanPackage(row)
}

func scanPackage(row pgx.Row) (*models.Package, error) {
	var p models.Package
	err := row.Scan(
		&p.ID, &p.UserID, &p.AccountID, &p.BatchLabel, &p.StartDate, &p.EndDate,
		&p.StorageKey, &p.Status, &p.SizeBytes, &p.FilesSaved, &p.MessagesFound,
		&p.PDFCount, &p.JSONCount, &p.CreatedAt, &p.AccountEmail,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
