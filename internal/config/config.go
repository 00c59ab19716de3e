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

// Package config loads configuration from config.yaml and environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/invozip/backend/internal/models"
)

// GoogleConfig holds the OAuth client used to connect Gmail accounts.
type GoogleConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURI  string `yaml:"redirect_uri"`
}

// AWSConfig holds credentials for the S3 bucket storing generated zips.
type AWSConfig struct {
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Bucket          string `yaml:"bucket"`
	BaseEndpoint    string `yaml:"base_endpoint"` // optional, for MinIO in dev
}

// HarvestConfig holds tunables for the invoice harvest pipeline.
type HarvestConfig struct {
	PageSize          int           // Gmail list page size
	MaxMessages       int           // cap per harvest run
	MessageWorkers    int           // message-level pool width
	AttachmentWorkers int           // attachment/link pool width per message
	LinkTimeout       time.Duration // trusted-link download timeout
	ZipMaxAge         time.Duration // local batch dirs older than this are pruned
}

// Config holds all configuration for the backend service.
type Config struct {
	Port        int
	DatabaseURL string

	// Redis
	RedisURL    string
	EventsQueue string

	Google GoogleConfig
	AWS    AWSConfig

	// Secrets
	JWTSecret     string
	EncryptionKey string // 32 bytes, seals stored refresh tokens

	// Optional dashboard URL for the OAuth callback redirect.
	FrontendURL string

	// Local scratch space for harvest output and zips.
	WorkDir string

	Harvest HarvestConfig

	Plans map[string]models.Plan
}

// rawConfig mirrors the YAML structure for unmarshalling.
type rawConfig struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Redis struct {
		URL    string `yaml:"url"`
		Queues struct {
			Events string `yaml:"events"`
		} `yaml:"queues"`
	} `yaml:"redis"`
	Google GoogleConfig `yaml:"google"`
	AWS    AWSConfig    `yaml:"aws"`
	Auth   struct {
		JWTSecret     string `yaml:"jwt_secret"`
		EncryptionKey string `yaml:"encryption_key"`
	} `yaml:"auth"`
	FrontendURL string `yaml:"frontend_url"`
	WorkDir     string `yaml:"work_dir"`
	Plans       []struct {
		ID         string  `yaml:"id"`
		Name       string  `yaml:"name"`
		Price      float64 `yaml:"price"`
		DTELimit   int     `yaml:"dte_limit"`
		ZipLimitMB int64   `yaml:"zip_limit_mb"`
		GmailLimit int     `yaml:"gmail_limit"`
	} `yaml:"plans"`
}

// Load reads configuration from config.yaml (with env var expansion) and
// environment variables for non-YAML settings.
func Load() (*Config, error) {
	configPath := envOrDefault("CONFIG_PATH", "/app/config/config.yaml")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", configPath, err)
	}

	// Expand ${VAR} references in the YAML
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config YAML: %w", err)
	}

	cfg := &Config{
		Port:          firstNonZero(raw.Server.Port, envOrDefaultInt("PORT", 8080)),
		DatabaseURL:   firstNonEmpty(raw.Database.URL, os.Getenv("DATABASE_URL")),
		RedisURL:      firstNonEmpty(raw.Redis.URL, envOrDefault("REDIS_URL", "redis://localhost:6379/0")),
		EventsQueue:   firstNonEmpty(raw.Redis.Queues.Events, envOrDefault("EVENTS_QUEUE", "package-events")),
		Google:        raw.Google,
		AWS:           raw.AWS,
		JWTSecret:     firstNonEmpty(raw.Auth.JWTSecret, os.Getenv("JWT_SECRET")),
		EncryptionKey: firstNonEmpty(raw.Auth.EncryptionKey, os.Getenv("ENCRYPTION_KEY")),
		FrontendURL:   firstNonEmpty(raw.FrontendURL, os.Getenv("FRONTEND_URL")),
		WorkDir:       firstNonEmpty(raw.WorkDir, envOrDefault("WORK_DIR", "/var/lib/invozip/zips")),
		Harvest: HarvestConfig{
			PageSize:          envOrDefaultInt("HARVEST_PAGE_SIZE", 70),
			MaxMessages:       envOrDefaultInt("HARVEST_MAX_MESSAGES", 100),
			MessageWorkers:    envOrDefaultInt("HARVEST_MESSAGE_WORKERS", 4),
			AttachmentWorkers: envOrDefaultInt("HARVEST_ATTACHMENT_WORKERS", 8),
			LinkTimeout:       envOrDefaultDuration("HARVEST_LINK_TIMEOUT", 20*time.Second),
			ZipMaxAge:         envOrDefaultDuration("ZIP_MAX_AGE", 24*time.Hour),
		},
		Plans: make(map[string]models.Plan),
	}

	for _, p := range raw.Plans {
		if p.ID == "" {
			continue
		}
		cfg.Plans[p.ID] = models.Plan{
			ID:            p.ID,
			Name:          p.Name,
			Price:         p.Price,
			DTELimit:      p.DTELimit,
			ZipLimitBytes: p.ZipLimitMB * 1024 * 1024,
			GmailLimit:    p.GmailLimit,
		}
	}
	if len(cfg.Plans) == 0 {
		cfg.Plans = models.DefaultPlans()
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database URL is required — set database.url or DATABASE_URL")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT secret is required — set auth.jwt_secret or JWT_SECRET")
	}
	if len(cfg.EncryptionKey) != 32 {
		return nil, fmt.Errorf("encryption key must be exactly 32 bytes, got %d", len(cfg.EncryptionKey))
	}
	if cfg.Google.ClientID == "" || cfg.Google.ClientSecret == "" || cfg.Google.RedirectURI == "" {
		return nil, fmt.Errorf("google OAuth client is not fully configured")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envOrDefaultDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstNonZero(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
