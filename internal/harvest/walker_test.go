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

package harvest

import (
	"testing"

	"github.com/invozip/backend/internal/gmail"
)

// TestCollectParts_NestedTree verifies depth-first flattening of a
// deeply nested multipart tree, attachments included.
func TestCollectParts_NestedTree(t *testing.T) {
	root := &gmail.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmail.MessagePart{
			{
				MimeType: "multipart/alternative",
				Parts: []*gmail.MessagePart{
					{PartID: "0.0", MimeType: "text/plain"},
					{PartID: "0.1", MimeType: "text/html"},
				},
			},
			{PartID: "1", MimeType: "application/pdf", Filename: "factura.pdf"},
			{
				MimeType: "multipart/mixed",
				Parts: []*gmail.MessagePart{
					{PartID: "2.0", MimeType: "application/json", Filename: "dte.json"},
				},
			},
		},
	}

	leaves := CollectParts(root)
	if len(leaves) != 4 {
		t.Fatalf("got %d leaves, want 4", len(leaves))
	}

	wantOrder := []string{"0.0", "0.1", "1", "2.0"}
	for i, want := range wantOrder {
		if leaves[i].PartID != want {
			t.Errorf("leaf %d = %q, want %q", i, leaves[i].PartID, want)
		}
	}
}

// TestCollectParts_SinglePart verifies a leaf-only payload yields itself.
func TestCollectParts_SinglePart(t *testing.T) {
	root := &gmail.MessagePart{PartID: "0", MimeType: "text/plain"}
	leaves := CollectParts(root)
	if len(leaves) != 1 || leaves[0].PartID != "0" {
		t.Errorf("got %d leaves, want the single root leaf", len(leaves))
	}
}

// TestCollectParts_NilRoot verifies a missing payload is harmless.
func TestCollectParts_NilRoot(t *testing.T) {
	if leaves := CollectParts(nil); len(leaves) != 0 {
		t.Errorf("nil root produced %d leaves, want 0", len(leaves))
	}
}
