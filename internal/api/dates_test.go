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

package api

import (
	"errors"
	"testing"
	"time"
)

// TestParseDates_Valid verifies both accepted layouts, the exclusive
// end-epoch bump, and the batch label.
func TestParseDates_Valid(t *testing.T) {
	for _, pair := range [][2]string{
		{"2026-07-01", "2026-07-31"},
		{"2026/07/01", "2026/07/31"},
	} {
		dr, err := parseDates(pair[0], pair[1])
		if err != nil {
			t.Fatalf("parseDates(%q, %q) failed: %v", pair[0], pair[1], err)
		}

		if dr.BatchLabel != "2026-07" {
			t.Errorf("batch label = %q, want 2026-07", dr.BatchLabel)
		}
		if dr.StartEpoch != dr.Start.Unix() {
			t.Errorf("start epoch mismatch")
		}
		// before: is exclusive, so the end epoch is the following day
		wantEnd := dr.End.AddDate(0, 0, 1).Unix()
		if dr.EndEpoch != wantEnd {
			t.Errorf("end epoch = %d, want %d (end + 1 day)", dr.EndEpoch, wantEnd)
		}
	}
}

// TestParseDates_SingleDay verifies a one-day range is valid and spans
// exactly 24 hours of epochs.
func TestParseDates_SingleDay(t *testing.T) {
	dr, err := parseDates("2026-07-15", "2026-07-15")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if dr.EndEpoch-dr.StartEpoch != 24*60*60 {
		t.Errorf("window = %d seconds, want 86400", dr.EndEpoch-dr.StartEpoch)
	}
}

// TestParseDates_Rejections verifies each validation rule fires.
func TestParseDates_Rejections(t *testing.T) {
	future := time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")

	cases := []struct {
		name       string
		start, end string
		wantErr    error
	}{
		{"missing start", "", "2026-07-31", errDatesRequired},
		{"missing end", "2026-07-01", "", errDatesRequired},
		{"bad layout", "01-07-2026", "2026-07-31", errDatesInvalid},
		{"garbage", "not-a-date", "2026-07-31", errDatesInvalid},
		{"reversed", "2026-07-31", "2026-07-01", errDatesOrder},
		{"future", future, future, errDatesFuture},
		{"too wide", "2026-06-01", "2026-07-15", errDatesTooWide},
	}

	for _, tc := range cases {
		_, err := parseDates(tc.start, tc.end)
		if !errors.Is(err, tc.wantErr) {
			t.Errorf("%s: err = %v, want %v", tc.name, err, tc.wantErr)
		}
	}
}
