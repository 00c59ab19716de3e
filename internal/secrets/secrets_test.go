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

package secrets

import (
	"strings"
	"testing"
)

const testKey = "0123456789abcdef0123456789abcdef"

// TestBox_RoundTrip verifies sealed values open back to the plaintext.
func TestBox_RoundTrip(t *testing.T) {
	box, err := NewBox(testKey)
	if err != nil {
		t.Fatalf("new box failed: %v", err)
	}

	sealed, err := box.Seal("1//refresh-token-value")
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}

	if parts := strings.Split(sealed, ":"); len(parts) != 3 {
		t.Fatalf("sealed format has %d fields, want iv:cipher:tag", len(parts))
	}

	plain, err := box.Open(sealed)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if plain != "1//refresh-token-value" {
		t.Errorf("plaintext = %q, want the original", plain)
	}
}

// TestBox_UniqueNonces verifies sealing the same value twice produces
// different ciphertexts.
func TestBox_UniqueNonces(t *testing.T) {
	box, _ := NewBox(testKey)

	a, _ := box.Seal("same-secret")
	b, _ := box.Seal("same-secret")
	if a == b {
		t.Error("two seals of the same plaintext must differ")
	}
}

// TestBox_Tampered verifies a modified ciphertext fails to open.
func TestBox_Tampered(t *testing.T) {
	box, _ := NewBox(testKey)
	sealed, _ := box.Seal("secret")

	parts := strings.Split(sealed, ":")
	parts[1] = "QUFBQUFBQUE=" // replaced ciphertext body
	if _, err := box.Open(strings.Join(parts, ":")); err == nil {
		t.Error("expected authentication failure for tampered value")
	}
}

// TestBox_Malformed verifies bad wire formats are rejected.
func TestBox_Malformed(t *testing.T) {
	box, _ := NewBox(testKey)

	for _, sealed := range []string{"", "onlyonefield", "two:fields", "a:b:c:d", "!!!:???:###"} {
		if _, err := box.Open(sealed); err == nil {
			t.Errorf("expected error opening %q", sealed)
		}
	}
}

// TestNewBox_KeyLength verifies only 32-byte keys are accepted.
func TestNewBox_KeyLength(t *testing.T) {
	if _, err := NewBox("short"); err == nil {
		t.Error("expected error for short key")
	}
	if _, err := NewBox(testKey + "extra"); err == nil {
		t.Error("expected error for long key")
	}
}
