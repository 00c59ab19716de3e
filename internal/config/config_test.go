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

package config

import (
	"os"
	"path/filepath"
	"testing"
)

const validYAML = `
server:
  port: 9090
database:
  url: postgres://app:secret@db:5432/invozip
redis:
  url: redis://cache:6379/0
  queues:
    events: pkg-events
google:
  client_id: test-client-id
  client_secret: test-client-secret
  redirect_uri: http://localhost:8080/api/gmail/callback
aws:
  region: us-east-1
  access_key_id: AKIATEST
  secret_access_key: secret
  bucket: invozip-zips
auth:
  jwt_secret: test-jwt-secret
  encryption_key: 0123456789abcdef0123456789abcdef
plans:
  - id: personal
    name: Plan A
    price: 6.99
    dte_limit: 100
    zip_limit_mb: 100
    gmail_limit: 1
`

func writeConfig(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", path)
}

// TestLoad_Valid verifies a complete config parses with plan limits
// converted to bytes.
func TestLoad_Valid(t *testing.T) {
	writeConfig(t, validYAML)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Port)
	}
	if cfg.EventsQueue != "pkg-events" {
		t.Errorf("events queue = %q, want pkg-events", cfg.EventsQueue)
	}

	plan, ok := cfg.Plans["personal"]
	if !ok {
		t.Fatal("personal plan missing")
	}
	if plan.ZipLimitBytes != 100*1024*1024 {
		t.Errorf("zip limit = %d, want 100 MiB in bytes", plan.ZipLimitBytes)
	}
	if plan.DTELimit != 100 {
		t.Errorf("dte limit = %d, want 100", plan.DTELimit)
	}
}

// TestLoad_EnvExpansion verifies ${VAR} references in the YAML resolve
// from the environment.
func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_DB_URL", "postgres://expanded:pw@host:5432/db")
	writeConfig(t, `
database:
  url: ${TEST_DB_URL}
google:
  client_id: id
  client_secret: secret
  redirect_uri: http://localhost/cb
auth:
  jwt_secret: s
  encryption_key: 0123456789abcdef0123456789abcdef
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.DatabaseURL != "postgres://expanded:pw@host:5432/db" {
		t.Errorf("database URL = %q, want the expanded value", cfg.DatabaseURL)
	}
}

// TestLoad_DefaultPlans verifies the built-in plan table applies when
// the YAML defines none.
func TestLoad_DefaultPlans(t *testing.T) {
	writeConfig(t, `
database:
  url: postgres://x
google:
  client_id: id
  client_secret: secret
  redirect_uri: http://localhost/cb
auth:
  jwt_secret: s
  encryption_key: 0123456789abcdef0123456789abcdef
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	for _, id := range []string{"personal", "negocio", "pro"} {
		if _, ok := cfg.Plans[id]; !ok {
			t.Errorf("default plan %q missing", id)
		}
	}
}

// TestLoad_Validation verifies required settings are enforced.
func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"missing database", `
google:
  client_id: id
  client_secret: secret
  redirect_uri: http://localhost/cb
auth:
  jwt_secret: s
  encryption_key: 0123456789abcdef0123456789abcdef
`},
		{"short encryption key", `
database:
  url: postgres://x
google:
  client_id: id
  client_secret: secret
  redirect_uri: http://localhost/cb
auth:
  jwt_secret: s
  encryption_key: too-short
`},
		{"incomplete google client", `
database:
  url: postgres://x
google:
  client_id: id
auth:
  jwt_secret: s
  encryption_key: 0123456789abcdef0123456789abcdef
`},
	}

	for _, tc := range cases {
		writeConfig(t, tc.yaml)
		if _, err := Load(); err == nil {
			t.Errorf("%s: expected load error", tc.name)
		}
	}
}

// TestLoad_MissingFile verifies a nonexistent config path errors.
func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))
	if _, err := Load(); err == nil {
		t.Error("expected error for missing config file")
	}
}
