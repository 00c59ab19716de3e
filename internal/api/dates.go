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
	"time"
)

// maxRangeDays caps how wide a harvest window may be.
const maxRangeDays = 31

// dateRange is a validated harvest window.
type dateRange struct {
	Start time.Time
	End   time.Time

	// StartEpoch/EndEpoch feed Gmail's after:/before: filters. EndEpoch
	// is the day after End, since before: is exclusive.
	StartEpoch int64
	EndEpoch   int64

	// BatchLabel names the batch after the start month, "2026-08".
	BatchLabel string
}

var (
	errDatesRequired = errors.New("startDate and endDate are required")
	errDatesInvalid  = errors.New("dates must be YYYY-MM-DD or YYYY/MM/DD")
	errDatesOrder    = errors.New("startDate must not be after endDate")
	errDatesFuture   = errors.New("date range cannot be in the future")
	errDatesTooWide  = errors.New("date range cannot exceed 31 days")
)

// parseDates validates a start/end date pair and derives the epoch
// window and batch label.
func parseDates(startStr, endStr string) (*dateRange, error) {
	if startStr == "" || endStr == "" {
		return nil, errDatesRequired
	}

	start, err := parseDate(startStr)
	if err != nil {
		return nil, errDatesInvalid
	}
	end, err := parseDate(endStr)
	if err != nil {
		return nil, errDatesInvalid
	}

	if start.After(end) {
		return nil, errDatesOrder
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if start.After(today) || end.After(today) {
		return nil, errDatesFuture
	}
	if end.Sub(start) > maxRangeDays*24*time.Hour {
		return nil, errDatesTooWide
	}

	return &dateRange{
		Start:      start,
		End:        end,
		StartEpoch: start.Unix(),
		EndEpoch:   end.AddDate(0, 0, 1).Unix(),
		BatchLabel: start.Format("2006-01"),
	}, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "2006/01/02"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errDatesInvalid
}
