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

// Package store provides the Postgres-backed persistence layer: users,
// Gmail connections, custom keywords, monthly usage counters, and
// generated package records.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store provides CRUD operations over a shared Postgres pool.
type Store struct {
	pool *pgxpool.Pool
}

// New creates the store and ensures the schema exists.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	s := &Store{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	slog.Info("store initialised")
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id            UUID PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			name          TEXT DEFAULT '',
			plan          TEXT DEFAULT 'personal',
			plan_status   TEXT DEFAULT 'active',
			role          TEXT DEFAULT 'user',
			created_at    TIMESTAMPTZ DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS gmail_connections (
			id                UUID PRIMARY KEY,
			user_id           UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			email             TEXT NOT NULL,
			refresh_token_enc TEXT NOT NULL,
			is_primary        BOOLEAN DEFAULT FALSE,
			status            TEXT DEFAULT 'active',
			created_at        TIMESTAMPTZ DEFAULT NOW(),
			UNIQUE(user_id, email)
		);

		CREATE TABLE IF NOT EXISTS custom_keywords (
			user_id    UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			keywords   TEXT[] NOT NULL DEFAULT '{}',
			updated_at TIMESTAMPTZ DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS usage_months (
			user_id   UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			period    TEXT NOT NULL,
			dte_count INT NOT NULL DEFAULT 0,
			PRIMARY KEY (user_id, period)
		);

		CREATE TABLE IF NOT EXISTS packages (
			id             UUID PRIMARY KEY,
			user_id        UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			account_id     UUID,
			batch_label    TEXT NOT NULL,
			start_date     TEXT NOT NULL,
			end_date       TEXT NOT NULL,
			storage_key    TEXT NOT NULL,
			status         TEXT DEFAULT 'available',
			size_bytes     BIGINT DEFAULT 0,
			files_saved    INT DEFAULT 0,
			messages_found INT DEFAULT 0,
			pdf_count      INT DEFAULT 0,
			json_count     INT DEFAULT 0,
			created_at     TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_packages_user_created
			ON packages(user_id, created_at DESC);
	`)
	return err
}
