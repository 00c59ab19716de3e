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

// Package queue publishes package lifecycle events to Redis for the
// notification worker (receipt emails, dashboard refresh pushes).
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/invozip/backend/internal/models"
)

// Publisher sends events to a Redis list consumed by the worker.
type Publisher struct {
	rdb       *redis.Client
	queueName string
}

// NewPublisher creates a publisher targeting the specified queue.
func NewPublisher(rdb *redis.Client, queueName string) *Publisher {
	return &Publisher{rdb: rdb, queueName: queueName}
}

// PackageEvent is the envelope the notification worker consumes.
type PackageEvent struct {
	EventID    string `json:"event_id"`
	Type       string `json:"type"` // "package.generated"
	PackageID  string `json:"package_id"`
	UserID     string `json:"user_id"`
	BatchLabel string `json:"batch_label"`
	SizeBytes  int64  `json:"size_bytes"`
	FilesSaved int    `json:"files_saved"`
	PDFCount   int    `json:"pdf_count"`
	JSONCount  int    `json:"json_count"`
	CreatedAt  string `json:"created_at"`
}

// PublishPackageGenerated enqueues a package.generated event.
func (p *Publisher) PublishPackageGenerated(ctx context.Context, pkg *models.Package) error {
	event := PackageEvent{
		EventID:    uuid.New().String(),
		Type:       "package.generated",
		PackageID:  pkg.ID,
		UserID:     pkg.UserID,
		BatchLabel: pkg.BatchLabel,
		SizeBytes:  pkg.SizeBytes,
		FilesSaved: pkg.FilesSaved,
		PDFCount:   pkg.PDFCount,
		JSONCount:  pkg.JSONCount,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal package event: %w", err)
	}

	if err := p.rdb.LPush(ctx, p.queueName, payload).Err(); err != nil {
		return fmt.Errorf("redis LPUSH: %w", err)
	}

	slog.Info("published package event",
		"event_id", event.EventID,
		"package_id", pkg.ID,
		"user", pkg.UserID,
		"queue", p.queueName,
	)
	return nil
}

// Ping checks the Redis connection.
func (p *Publisher) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.rdb.Ping(ctx).Err()
}
