// Copyright 2025 Kadir Pekel
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

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultDuckDuckGoURL = "https://api.duckduckgo.com"

// DuckDuckGoTool queries the DuckDuckGo instant answer API.
type DuckDuckGoTool struct {
	baseURL     string
	client      *http.Client
	resultChars int
}

// duckDuckGoResponse is the subset of the instant answer payload we use.
type duckDuckGoResponse struct {
	AbstractText string `json:"AbstractText"`
	Answer       string `json:"Answer"`
	Definition   string `json:"Definition"`

	RelatedTopics []struct {
		Text string `json:"Text"`
	} `json:"RelatedTopics"`
}

// NewDuckDuckGoTool creates a web search tool. Results are truncated to
// resultChars characters.
func NewDuckDuckGoTool(resultChars int) *DuckDuckGoTool {
	return &DuckDuckGoTool{
		baseURL:     defaultDuckDuckGoURL,
		client:      &http.Client{Timeout: 30 * time.Second},
		resultChars: resultChars,
	}
}

// WithBaseURL sets a custom endpoint (used by tests).
func (t *DuckDuckGoTool) WithBaseURL(baseURL string) *DuckDuckGoTool {
	t.baseURL = baseURL
	return t
}

// WithHTTPClient sets a custom HTTP client.
func (t *DuckDuckGoTool) WithHTTPClient(client *http.Client) *DuckDuckGoTool {
	t.client = client
	return t
}

func (t *DuckDuckGoTool) Name() string {
	return "Search"
}

func (t *DuckDuckGoTool) Description() string {
	return "Useful for searching the internet for current events and general information."
}

// Run performs the search and returns a text summary of the best answers.
func (t *DuckDuckGoTool) Run(ctx context.Context, input string) (string, error) {
	query := url.Values{}
	query.Set("q", input)
	query.Set("format", "json")
	query.Set("no_html", "1")
	query.Set("skip_disambig", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	var result duckDuckGoResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	var parts []string
	for _, text := range []string{result.Answer, result.AbstractText, result.Definition} {
		if text != "" {
			parts = append(parts, text)
		}
	}
	for _, topic := range result.RelatedTopics {
		if len(parts) >= 4 {
			break
		}
		if topic.Text != "" {
			parts = append(parts, topic.Text)
		}
	}

	if len(parts) == 0 {
		return "No good DuckDuckGo Search Result was found", nil
	}

	return truncate(strings.Join(parts, "\n"), t.resultChars), nil
}

// Ensure DuckDuckGoTool implements Tool.
var _ Tool = (*DuckDuckGoTool)(nil)
