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

import "github.com/invozip/backend/internal/gmail"

// CollectParts flattens a message's MIME tree into its leaf parts,
// depth-first, preserving order. Some senders nest attachments inside
// multipart containers several levels deep. A nil root yields an empty
// slice.
func CollectParts(root *gmail.MessagePart) []*gmail.MessagePart {
	var leaves []*gmail.MessagePart
	var walk func(p *gmail.MessagePart)
	walk = func(p *gmail.MessagePart) {
		if p == nil {
			return
		}
		if len(p.Parts) == 0 {
			leaves = append(leaves, p)
			return
		}
		for _, child := range p.Parts {
			walk(child)
		}
	}
	walk(root)
	return leaves
}
