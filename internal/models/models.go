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

// Package models defines the data structures shared across the backend service.
package models

import "time"

// Plan describes a subscription tier and its limits.
type Plan struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	DTELimit      int     `json:"dte_limit"`       // JSON invoice documents per month
	ZipLimitBytes int64   `json:"zip_limit_bytes"` // max size of a generated zip
	GmailLimit    int     `json:"gmail_limit"`     // connected accounts
}

// DefaultPlans returns the built-in plan table, used when config.yaml
// does not override it.
func DefaultPlans() map[string]Plan {
	const mb = 1024 * 1024
	return map[string]Plan{
		"personal": {
			ID:            "personal",
			Name:          "Plan A (Personal)",
			Price:         6.99,
			DTELimit:      100,
			ZipLimitBytes: 100 * mb,
			GmailLimit:    1,
		},
		"negocio": {
			ID:            "negocio",
			Name:          "Plan B (Negocio)",
			Price:         9.99,
			DTELimit:      250,
			ZipLimitBytes: 250 * mb,
			GmailLimit:    2,
		},
		"pro": {
			ID:            "pro",
			Name:          "Plan C (Pro)",
			Price:         14.99,
			DTELimit:      800,
			ZipLimitBytes: 500 * mb,
			GmailLimit:    4,
		},
	}
}

// User is a registered account holder.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Plan         string    `json:"plan"`
	PlanStatus   string    `json:"plan_status"` // "active" or "canceled"
	Role         string    `json:"role"`        // "user" or "admin"
	CreatedAt    time.Time `json:"created_at"`
}

// GmailConnection links a user to a Gmail account via a sealed refresh token.
type GmailConnection struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Email           string    `json:"email"`
	RefreshTokenEnc string    `json:"-"`
	Primary         bool      `json:"primary"`
	Status          string    `json:"status"` // "active" or "revoked"
	CreatedAt       time.Time `json:"created_at"`
}

// UsageMonth tracks DTE consumption for one user in one billing period.
type UsageMonth struct {
	UserID   string `json:"user_id"`
	Period   string `json:"period"` // "2026-08"
	DTECount int    `json:"dte_count"`
}

// Package statuses.
const (
	PackageAvailable = "available"
	PackageExpired   = "expired"
)

// Package is a generated zip of harvested invoices stored in S3.
type Package struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	AccountID     string    `json:"account_id"`
	AccountEmail  string    `json:"account_email,omitempty"`
	BatchLabel    string    `json:"batch_label"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	StorageKey    string    `json:"storage_key"`
	Status        string    `json:"status"`
	SizeBytes     int64     `json:"size_bytes"`
	FilesSaved    int       `json:"files_saved"`
	MessagesFound int       `json:"messages_found"`
	PDFCount      int       `json:"pdf_count"`
	JSONCount     int       `json:"json_count"`
	CreatedAt     time.Time `json:"created_at"`
}
