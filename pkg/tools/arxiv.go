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
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultArxivURL = "http://export.arxiv.org/api/query"

// ArxivTool queries the arXiv Atom API for the best matching paper.
type ArxivTool struct {
	baseURL     string
	client      *http.Client
	resultChars int
}

type arxivFeed struct {
	XMLName xml.Name     `xml:"feed"`
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	Title     string `xml:"title"`
	Summary   string `xml:"summary"`
	Published string `xml:"published"`
	Authors   []struct {
		Name string `xml:"name"`
	} `xml:"author"`
}

// NewArxivTool creates an arXiv lookup tool. Results are truncated to
// resultChars characters.
func NewArxivTool(resultChars int) *ArxivTool {
	return &ArxivTool{
		baseURL:     defaultArxivURL,
		client:      &http.Client{Timeout: 30 * time.Second},
		resultChars: resultChars,
	}
}

// WithBaseURL sets a custom endpoint (used by tests).
func (t *ArxivTool) WithBaseURL(baseURL string) *ArxivTool {
	t.baseURL = baseURL
	return t
}

// WithHTTPClient sets a custom HTTP client.
func (t *ArxivTool) WithHTTPClient(client *http.Client) *ArxivTool {
	t.client = client
	return t
}

func (t *ArxivTool) Name() string {
	return "Arxiv"
}

func (t *ArxivTool) Description() string {
	return "Useful for searching scientific papers and academic research."
}

// Run returns the top matching paper's publication date, title, authors
// and abstract.
func (t *ArxivTool) Run(ctx context.Context, input string) (string, error) {
	query := url.Values{}
	query.Set("search_query", "all:"+input)
	query.Set("start", "0")
	query.Set("max_results", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("arxiv request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("arxiv returned status %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(feed.Entries) == 0 {
		return "No good Arxiv Result was found", nil
	}

	entry := feed.Entries[0]

	names := make([]string, 0, len(entry.Authors))
	for _, author := range entry.Authors {
		names = append(names, author.Name)
	}

	result := fmt.Sprintf("Published: %s\nTitle: %s\nAuthors: %s\nSummary: %s",
		strings.TrimSpace(entry.Published),
		strings.TrimSpace(entry.Title),
		strings.Join(names, ", "),
		strings.TrimSpace(entry.Summary),
	)

	return truncate(result, t.resultChars), nil
}

// Ensure ArxivTool implements Tool.
var _ Tool = (*ArxivTool)(nil)
