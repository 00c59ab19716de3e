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
)

// CustomKeywords returns a user's custom keyword list (empty when unset).
func (s *Store) CustomKeywords(ctx context.Context, userID string) ([]string, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT keywords FROM custom_keywords WHERE user_id = $1
	`, userID)

	var keywords []string
	err := row.Scan(&keywords)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return keywords, nil
}

// SetCustomKeywords replaces a user's custom keyword list.
func (s *Store) SetCustomKeywords(ctx context.Context, userID string, keywords []string) error {
	if keywords == nil {
		keywords = []string{}
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO custom_keywords (user_id, keywords)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET
			keywords = EXCLUDED.keywords, updated_at = NOW()
	`, userID, keywords)
	return err
}

// UsageCount returns the DTE count for a user's billing period (0 when
// the period has no row yet).
func (s *Store) UsageCount(ctx context.Context, userID, period string) (int, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT dte_count FROM usage_months WHERE user_id = $1 AND period = $2
	`, userID, period)

	var count int
	err := row.Scan(&count)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}

// AddUsage increments the period's DTE counter, creating the row on
// first use.
func (s *Store) AddUsage(ctx context.Context, userID, period string, delta int) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO usage_months (user_id, period, dte_count)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, period) DO UPDATE SET
			dte_count = usage_months.dte_count + EXCLUDED.dte_count
	`, userID, period, delta)
	return err
}
