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

// Package video summarizes YouTube videos from their caption tracks.
// Summarization is stateless: no session, no history, no persistence.
package video

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kadirpekel/trio/pkg/llms"
)

const defaultTranscriptURL = "https://video.google.com/timedtext"

const summaryPromptFormat = "You are a helpful assistant that summarizes videos. " +
	"Below is the full transcript of a YouTube video. " +
	"Write a detailed summary covering the main topics, key points and conclusions." +
	"\n\n" +
	"Transcript:\n%s"

// Summarizer fetches a video's transcript and condenses it with a model.
type Summarizer struct {
	llm           llms.Provider
	client        *http.Client
	transcriptURL string
}

type transcript struct {
	XMLName xml.Name `xml:"transcript"`
	Texts   []struct {
		Value string `xml:",chardata"`
	} `xml:"text"`
}

// NewSummarizer creates a video summarizer.
func NewSummarizer(llm llms.Provider) *Summarizer {
	return &Summarizer{
		llm:           llm,
		client:        &http.Client{Timeout: 30 * time.Second},
		transcriptURL: defaultTranscriptURL,
	}
}

// WithBaseURL sets a custom transcript endpoint (used by tests).
func (s *Summarizer) WithBaseURL(baseURL string) *Summarizer {
	s.transcriptURL = baseURL
	return s
}

// WithHTTPClient sets a custom HTTP client.
func (s *Summarizer) WithHTTPClient(client *http.Client) *Summarizer {
	s.client = client
	return s
}

// Summarize fetches the English caption track for the given YouTube URL
// and returns a model-written summary.
func (s *Summarizer) Summarize(ctx context.Context, videoURL string) (string, error) {
	videoID, err := ParseVideoID(videoURL)
	if err != nil {
		return "", err
	}

	text, err := s.fetchTranscript(ctx, videoID)
	if err != nil {
		return "", err
	}

	summary, _, err := s.llm.Generate(ctx, []llms.Message{
		{Role: llms.RoleUser, Content: fmt.Sprintf(summaryPromptFormat, text)},
	})
	if err != nil {
		return "", fmt.Errorf("model call failed: %w", err)
	}

	return summary, nil
}

func (s *Summarizer) fetchTranscript(ctx context.Context, videoID string) (string, error) {
	query := url.Values{}
	query.Set("lang", "en")
	query.Set("v", videoID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.transcriptURL+"?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcript request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read transcript: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcript request returned status %d", resp.StatusCode)
	}

	var tr transcript
	if err := xml.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("failed to decode transcript: %w", err)
	}

	parts := make([]string, 0, len(tr.Texts))
	for _, t := range tr.Texts {
		line := strings.TrimSpace(html.UnescapeString(t.Value))
		if line != "" {
			parts = append(parts, line)
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no transcript available for video %s", videoID)
	}

	return strings.Join(parts, " "), nil
}

// ParseVideoID extracts the video identifier from the common YouTube URL
// shapes: watch?v=, youtu.be/, embed/ and shorts/. A bare 11-character
// identifier is accepted as-is.
func ParseVideoID(videoURL string) (string, error) {
	raw := strings.TrimSpace(videoURL)
	if raw == "" {
		return "", fmt.Errorf("video URL is empty")
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		// Not a URL. Accept a bare video id.
		if isVideoID(raw) {
			return raw, nil
		}
		return "", fmt.Errorf("invalid YouTube URL: %s", videoURL)
	}

	host := strings.TrimPrefix(u.Hostname(), "www.")

	var id string
	switch host {
	case "youtu.be":
		id = strings.Trim(u.Path, "/")
	case "youtube.com", "m.youtube.com":
		switch {
		case u.Path == "/watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(u.Path, "/embed/"):
			id = strings.TrimPrefix(u.Path, "/embed/")
		case strings.HasPrefix(u.Path, "/shorts/"):
			id = strings.TrimPrefix(u.Path, "/shorts/")
		}
	}

	id = strings.Trim(id, "/")
	if !isVideoID(id) {
		return "", fmt.Errorf("could not extract video id from URL: %s", videoURL)
	}

	return id, nil
}

func isVideoID(s string) bool {
	if len(s) != 11 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}
