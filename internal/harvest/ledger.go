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
	"fmt"
	"sync"
)

// Ledger tracks what a single harvest run has already handled. It holds
// the identity set (message+attachment reference), the global content
// hash set, and the set of links already attempted. All sets are scoped
// to one run and shared across the run's worker goroutines, so every
// check-and-record is a single locked claim.
type Ledger struct {
	mu       sync.Mutex
	identity map[string]struct{}
	hashes   map[[32]byte]struct{}
	links    map[string]struct{}
}

// NewLedger creates an empty dedup ledger.
func NewLedger() *Ledger {
	return &Ledger{
		identity: make(map[string]struct{}),
		hashes:   make(map[[32]byte]struct{}),
		links:    make(map[string]struct{}),
	}
}

// ClaimAttachment records the (message, attachment) reference pair and
// reports whether this was its first appearance. The same pair showing
// up twice, for example through malformed nesting, is claimed once.
func (l *Ledger) ClaimAttachment(messageID, attachmentID string) bool {
	key := fmt.Sprintf("%s:%s", messageID, attachmentID)
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.identity[key]; ok {
		return false
	}
	l.identity[key] = struct{}{}
	return true
}

// ClaimContent records a document's content hash and reports whether the
// bytes are new to this run. Byte-identical documents reached by
// different routes (direct attachment vs. trusted link) collapse here.
func (l *Ledger) ClaimContent(sum [32]byte) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.hashes[sum]; ok {
		return false
	}
	l.hashes[sum] = struct{}{}
	return true
}

// ClaimLink records a trusted link URL and reports whether it has not
// been attempted yet in this run.
func (l *Ledger) ClaimLink(url string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.links[url]; ok {
		return false
	}
	l.links[url] = struct{}{}
	return true
}
