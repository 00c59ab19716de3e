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
	"context"
	"sync"
	"sync/atomic"
)

// Task is one unit of pool work. Tasks must absorb their own failures —
// a task that needs to report an error records it through state it
// closes over. This keeps one bad attachment from aborting its siblings.
type Task func(ctx context.Context)

// RunPool drains the task list with at most limit concurrent workers.
// Workers pull the next unclaimed task index until the list is
// exhausted; the call returns once every started task has finished.
// Completion order is not defined. Cancelling the context stops workers
// from claiming further tasks but does not interrupt tasks in flight.
func RunPool(ctx context.Context, tasks []Task, limit int) {
	if len(tasks) == 0 {
		return
	}
	if limit < 1 {
		limit = 1
	}
	if limit > len(tasks) {
		limit = len(tasks)
	}

	var next atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < limit; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				idx := int(next.Add(1) - 1)
				if idx >= len(tasks) || ctx.Err() != nil {
					return
				}
				tasks[idx](ctx)
			}
		}()
	}
	wg.Wait()
}
