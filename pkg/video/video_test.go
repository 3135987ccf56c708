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

package video

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/trio/pkg/llms"
)

type stubLLM struct {
	answer string
	prompt string
}

func (s *stubLLM) Generate(ctx context.Context, messages []llms.Message) (string, int, error) {
	s.prompt = messages[len(messages)-1].Content
	return s.answer, 0, nil
}

func (s *stubLLM) ModelName() string { return "stub" }

func TestParseVideoID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtube.com/watch?v=dQw4w9WgXcQ&t=43s", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"dQw4w9WgXcQ", "dQw4w9WgXcQ"},
	}

	for _, tt := range tests {
		id, err := ParseVideoID(tt.url)
		require.NoError(t, err, tt.url)
		assert.Equal(t, tt.want, id, tt.url)
	}
}

func TestParseVideoID_Invalid(t *testing.T) {
	for _, bad := range []string{
		"",
		"https://example.com/watch?v=dQw4w9WgXcQ",
		"https://www.youtube.com/watch",
		"not a url at all",
		"https://youtu.be/",
	} {
		_, err := ParseVideoID(bad)
		assert.Error(t, err, bad)
	}
}

func TestSummarizer_Summarize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "dQw4w9WgXcQ", r.URL.Query().Get("v"))
		assert.Equal(t, "en", r.URL.Query().Get("lang"))
		w.Write([]byte(`<?xml version="1.0" encoding="utf-8"?>
			<transcript>
				<text start="0" dur="2">Never gonna give you up</text>
				<text start="2" dur="2">never gonna let you down &amp; more</text>
			</transcript>`))
	}))
	defer server.Close()

	llm := &stubLLM{answer: "A song about commitment."}
	summarizer := NewSummarizer(llm).WithBaseURL(server.URL)

	summary, err := summarizer.Summarize(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	require.NoError(t, err)

	assert.Equal(t, "A song about commitment.", summary)
	assert.Contains(t, llm.prompt, "Never gonna give you up")
	assert.Contains(t, llm.prompt, "never gonna let you down & more")
}

func TestSummarizer_EmptyTranscript(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<?xml version="1.0" encoding="utf-8"?><transcript></transcript>`))
	}))
	defer server.Close()

	summarizer := NewSummarizer(&stubLLM{}).WithBaseURL(server.URL)

	_, err := summarizer.Summarize(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no transcript available")
}

func TestSummarizer_BadURL(t *testing.T) {
	summarizer := NewSummarizer(&stubLLM{})

	_, err := summarizer.Summarize(context.Background(), "https://example.com/video")
	assert.Error(t, err)
}
