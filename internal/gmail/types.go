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

package gmail

// MessageRef is a message stub from the list endpoint.
type MessageRef struct {
	ID       string `json:"id"`
	ThreadID string `json:"threadId"`
}

// listResponse is a page of the users.messages.list response.
type listResponse struct {
	Messages      []MessageRef `json:"messages"`
	NextPageToken string       `json:"nextPageToken"`
}

// Header is a single RFC 2822 header on a message part.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// PartBody carries inline content or a reference to a separate attachment.
type PartBody struct {
	AttachmentID string `json:"attachmentId"`
	Size         int    `json:"size"`
	Data         string `json:"data"` // base64url
}

// MessagePart is a node of a message's MIME tree. Internal nodes carry
// Parts; leaves carry a Body and, for attachments, a Filename.
type MessagePart struct {
	PartID   string         `json:"partId"`
	MimeType string         `json:"mimeType"`
	Filename string         `json:"filename"`
	Headers  []Header       `json:"headers"`
	Body     *PartBody      `json:"body"`
	Parts    []*MessagePart `json:"parts"`
}

// Message is a full message from the get endpoint.
type Message struct {
	ID      string       `json:"id"`
	Snippet string       `json:"snippet"`
	Payload *MessagePart `json:"payload"`
}

// Subject returns the Subject header of the message, or "" if absent.
func (m *Message) Subject() string {
	if m == nil || m.Payload == nil {
		return ""
	}
	for _, h := range m.Payload.Headers {
		if h.Name == "Subject" {
			return h.Value
		}
	}
	return ""
}

// attachmentResponse is the users.messages.attachments.get response.
type attachmentResponse struct {
	Size int    `json:"size"`
	Data string `json:"data"` // base64url
}

// Profile is the users.getProfile response.
type Profile struct {
	EmailAddress  string `json:"emailAddress"`
	MessagesTotal int    `json:"messagesTotal"`
}
