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
	"time"
)

const defaultWikipediaURL = "https://en.wikipedia.org/w/api.php"

// WikipediaTool looks up the single best matching Wikipedia article and
// returns its summary.
type WikipediaTool struct {
	baseURL     string
	client      *http.Client
	resultChars int
}

type wikipediaSearchResponse struct {
	Query struct {
		Search []struct {
			Title  string `json:"title"`
			PageID int    `json:"pageid"`
		} `json:"search"`
	} `json:"query"`
}

type wikipediaExtractResponse struct {
	Query struct {
		Pages map[string]struct {
			Title   string `json:"title"`
			Extract string `json:"extract"`
		} `json:"pages"`
	} `json:"query"`
}

// NewWikipediaTool creates a Wikipedia lookup tool. Results are truncated
// to resultChars characters.
func NewWikipediaTool(resultChars int) *WikipediaTool {
	return &WikipediaTool{
		baseURL:     defaultWikipediaURL,
		client:      &http.Client{Timeout: 30 * time.Second},
		resultChars: resultChars,
	}
}

// WithBaseURL sets a custom endpoint (used by tests).
func (t *WikipediaTool) WithBaseURL(baseURL string) *WikipediaTool {
	t.baseURL = baseURL
	return t
}

// WithHTTPClient sets a custom HTTP client.
func (t *WikipediaTool) WithHTTPClient(client *http.Client) *WikipediaTool {
	t.client = client
	return t
}

func (t *WikipediaTool) Name() string {
	return "Wikipedia"
}

func (t *WikipediaTool) Description() string {
	return "Useful for finding detailed information about historical figures, concepts, and places."
}

// Run searches for the best matching article and returns its summary.
func (t *WikipediaTool) Run(ctx context.Context, input string) (string, error) {
	title, err := t.search(ctx, input)
	if err != nil {
		return "", err
	}
	if title == "" {
		return "No good Wikipedia Search Result was found", nil
	}

	summary, err := t.extract(ctx, title)
	if err != nil {
		return "", err
	}

	return truncate(fmt.Sprintf("Page: %s\nSummary: %s", title, summary), t.resultChars), nil
}

func (t *WikipediaTool) search(ctx context.Context, input string) (string, error) {
	query := url.Values{}
	query.Set("action", "query")
	query.Set("list", "search")
	query.Set("srsearch", input)
	query.Set("srlimit", "1")
	query.Set("format", "json")

	var result wikipediaSearchResponse
	if err := t.get(ctx, query, &result); err != nil {
		return "", err
	}

	if len(result.Query.Search) == 0 {
		return "", nil
	}
	return result.Query.Search[0].Title, nil
}

func (t *WikipediaTool) extract(ctx context.Context, title string) (string, error) {
	query := url.Values{}
	query.Set("action", "query")
	query.Set("prop", "extracts")
	query.Set("titles", title)
	query.Set("exintro", "1")
	query.Set("explaintext", "1")
	query.Set("format", "json")

	var result wikipediaExtractResponse
	if err := t.get(ctx, query, &result); err != nil {
		return "", err
	}

	for _, page := range result.Query.Pages {
		return page.Extract, nil
	}
	return "", nil
}

func (t *WikipediaTool) get(ctx context.Context, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("wikipedia request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wikipedia returned status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Ensure WikipediaTool implements Tool.
var _ Tool = (*WikipediaTool)(nil)
