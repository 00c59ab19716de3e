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

// Package gmail provides a REST client for the Gmail API: paginated
// message listing, full message retrieval, and attachment download.
// Authentication is an opaque bearer token supplied by the caller;
// refresh handling lives elsewhere.
package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/oauth2"
)

// DefaultBaseURL is the production Gmail API endpoint.
const DefaultBaseURL = "https://gmail.googleapis.com/gmail/v1"

// Client talks to the Gmail API for a single mailbox ("me").
type Client struct {
	httpClient *http.Client
	baseURL    string
	pageSize   int
}

// NewClient creates a Gmail client from a pre-authenticated HTTP client.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		pageSize:   70,
	}
}

// NewClientWithToken creates a Gmail client that sends the given bearer
// access token on every request.
func NewClientWithToken(ctx context.Context, accessToken, baseURL string) *Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	return NewClient(oauth2.NewClient(ctx, src), baseURL)
}

// SetPageSize overrides the list page size. The page size is a tuning
// knob, not part of any contract with callers.
func (c *Client) SetPageSize(n int) {
	if n > 0 {
		c.pageSize = n
	}
}

// ListMessages pages through search results for the query until no pages
// remain or max results have accumulated, then truncates to max.
// includeSpamTrash extends the search into the spam and trash folders.
// Any page fetch error propagates to the caller unmodified.
func (c *Client) ListMessages(ctx context.Context, query string, max int, includeSpamTrash bool) ([]MessageRef, error) {
	var refs []MessageRef
	pageToken := ""
	pageCount := 0

	for {
		params := url.Values{}
		params.Set("q", query)
		params.Set("maxResults", strconv.Itoa(c.pageSize))
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}
		if includeSpamTrash {
			params.Set("includeSpamTrash", "true")
		}

		var page listResponse
		if err := c.getJSON(ctx, fmt.Sprintf("%s/users/me/messages?%s", c.baseURL, params.Encode()), &page); err != nil {
			return nil, fmt.Errorf("list messages page %d: %w", pageCount, err)
		}
		pageCount++

		refs = append(refs, page.Messages...)

		slog.Debug("messages page fetched",
			"page", pageCount,
			"messages", len(page.Messages),
			"accumulated", len(refs),
		)

		if page.NextPageToken == "" || len(refs) >= max {
			break
		}
		pageToken = page.NextPageToken
	}

	if len(refs) > max {
		refs = refs[:max]
	}
	return refs, nil
}

// GetMessage retrieves the full message, including its MIME tree.
func (c *Client) GetMessage(ctx context.Context, messageID string) (*Message, error) {
	var msg Message
	if err := c.getJSON(ctx, fmt.Sprintf("%s/users/me/messages/%s", c.baseURL, messageID), &msg); err != nil {
		return nil, fmt.Errorf("get message %s: %w", messageID, err)
	}
	return &msg, nil
}

// GetAttachment downloads and decodes a single attachment's bytes.
func (c *Client) GetAttachment(ctx context.Context, messageID, attachmentID string) ([]byte, error) {
	var att attachmentResponse
	u := fmt.Sprintf("%s/users/me/messages/%s/attachments/%s", c.baseURL, messageID, attachmentID)
	if err := c.getJSON(ctx, u, &att); err != nil {
		return nil, fmt.Errorf("get attachment %s of message %s: %w", attachmentID, messageID, err)
	}

	data, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(att.Data)
	if err != nil {
		// Some responses arrive padded.
		data, err = base64.URLEncoding.DecodeString(att.Data)
	}
	if err != nil {
		return nil, fmt.Errorf("decode attachment data: %w", err)
	}
	return data, nil
}

// GetProfile returns the mailbox profile of the authenticated account.
func (c *Client) GetProfile(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := c.getJSON(ctx, fmt.Sprintf("%s/users/me/profile", c.baseURL), &p); err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		slog.Error("gmail API error", "status", resp.StatusCode, "body", string(body))
		return fmt.Errorf("gmail API returned HTTP %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// DecodeBody decodes a part's inline base64url body data.
func DecodeBody(data string) ([]byte, error) {
	b, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(data)
	if err != nil {
		b, err = base64.URLEncoding.DecodeString(data)
	}
	return b, err
}
