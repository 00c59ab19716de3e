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

// CreateUser inserts a new user. The ID is assigned here when empty.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.Plan == "" {
		u.Plan = "personal"
	}
	if u.PlanStatus == "" {
		u.PlanStatus = "active"
	}
	if u.Role == "" {
		u.Role = "user"
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, name, plan, plan_status, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, u.ID, u.Email, u.PasswordHash, u.Name, u.Plan, u.PlanStatus, u.Role)
	return err
}

// UserByEmail returns the user with the given email, or nil.
func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, name, plan, plan_status, role, created_at
		FROM users WHERE email = $1
	`, email)
	return scanUser(row)
}

// UserByID returns the user with the given ID, or nil.
func (s *Store) UserByID(ctx context.Context, id string) (*models.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, name, plan, plan_status, role, created_at
		FROM users WHERE id = $1
	`, id)
	return scanUser(row)
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Plan,
		&u.PlanStatus, &u.Role, &u.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
