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

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/invozip/backend/internal/models"
)

// UpsertConnection inserts or refreshes a Gmail connection keyed on
// (user_id, email). Reconnecting an account replaces its sealed refresh
// token and reactivates it.
func (s *Store) UpsertConnection(ctx context.Context, c *models.GmailConnection) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = "active"
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO gmail_connections (id, user_id, email, refresh_token_enc, is_primary, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, email) DO UPDATE SET
			refresh_token_enc = EXCLUDED.refresh_token_enc,
			status            = EXCLUDED.status
	`, c.ID, c.UserID, c.Email, c.RefreshTokenEnc, c.Primary, c.Status)
	return err
}

// ActiveConnections lists a user's active Gmail connections, primary first.
func (s *Store) ActiveConnections(ctx context.Context, userID string) ([]models.GmailConnection, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, email, refresh_token_enc, is_primary, status, created_at
		FROM gmail_connections
		WHERE user_id = $1 AND status = 'active'
		ORDER BY is_primary DESC, created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conns []models.GmailConnection
	for rows.Next() {
		var c models.GmailConnection
		if err := rows.Scan(&c.ID, &c.UserID, &c.Email, &c.RefreshTokenEnc,
			&c.Primary, &c.Status, &c.CreatedAt); err != nil {
			return nil, err
		}
		conns = append(conns, c)
	}
	return conns, rows.Err()
}

// ConnectionByID returns one of the user's connections, or nil.
func (s *Store) ConnectionByID(ctx context.Context, userID, connID string) (*models.GmailConnection, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, email, refresh_token_enc, is_primary, status, created_at
		FROM gmail_connections
		WHERE user_id = $1 AND id = $2
	`, userID, connID)

	var c models.GmailConnection
	err := row.Scan(&c.ID, &c.UserID, &c.Email, &c.RefreshTokenEnc,
		&c.Primary, &c.Status, &c.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteConnections removes all of a user's Gmail connections.
func (s *Store) DeleteConnections(ctx context.Context, userID string) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM gmail_connections WHERE user_id = $1
	`, userID)
	return err
}
