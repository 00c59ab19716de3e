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
	"strings"
)

// BuildQuery turns a keyword set and an epoch range into a Gmail search
// query. Gmail's before: filter is exclusive, so callers must pass an
// end epoch already bumped by one day when the end date should be
// inclusive. An empty keyword list yields a query matching no subjects.
func BuildQuery(keywords []string, afterEpoch, beforeEpoch int64) string {
	quoted := make([]string, len(keywords))
	for i, k := range keywords {
		quoted[i] = fmt.Sprintf("%q", k)
	}
	return fmt.Sprintf("subject:(%s) has:attachment after:%d before:%d",
		strings.Join(quoted, " OR "), afterEpoch, beforeEpoch)
}
