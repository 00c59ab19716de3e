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
	"strings"
	"testing"
)

// TestBuildQuery_Format verifies the Gmail query shape: quoted keywords
// joined with OR, plus attachment and date filters.
func TestBuildQuery_Format(t *testing.T) {
	q := BuildQuery([]string{"Factura", "Crédito Fiscal"}, 1000, 2000)

	want := `subject:("Factura" OR "Crédito Fiscal") has:attachment after:1000 before:2000`
	if q != want {
		t.Errorf("query = %q, want %q", q, want)
	}
}

// TestBuildQuery_MergedKeywords verifies that a merged keyword set keeps
// every base keyword and the custom additions in the query.
func TestBuildQuery_MergedKeywords(t *testing.T) {
	merged := MergeKeywords([]string{"Mi Proveedor"})
	q := BuildQuery(merged, 1, 2)

	for _, kw := range []string{"DTE", "Factura", "Mi Proveedor"} {
		if !strings.Contains(q, `"`+kw+`"`) {
			t.Errorf("query missing keyword %q", kw)
		}
	}
}

// TestMergeKeywords_Dedup verifies order preservation and exact-string
// duplicate removal.
func TestMergeKeywords_Dedup(t *testing.T) {
	merged := MergeKeywords([]string{"Factura", "Proveedor X", "", "Proveedor X"})

	count := 0
	for _, k := range merged {
		if k == "Factura" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("keyword %q appears %d times, want 1", "Factura", count)
	}

	count = 0
	for _, k := range merged {
		if k == "Proveedor X" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("custom keyword appears %d times, want 1", count)
	}

	if merged[0] != "DTE" {
		t.Errorf("first keyword = %q, want DTE (base order preserved)", merged[0])
	}
	if merged[len(merged)-1] != "Proveedor X" {
		t.Errorf("last keyword = %q, want the custom addition", merged[len(merged)-1])
	}
}

// TestMergeKeywords_NoCustom verifies custom-free merges return the full
// base list.
func TestMergeKeywords_NoCustom(t *testing.T) {
	merged := MergeKeywords(nil)
	if len(merged) != len(baseKeywords) {
		t.Errorf("merged length = %d, want %d", len(merged), len(baseKeywords))
	}
}
