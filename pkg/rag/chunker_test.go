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

package rag

import (
	"strings"
	"testing"
)

func TestOverlappingChunker_SmallContent(t *testing.T) {
	chunker := NewOverlappingChunker(ChunkerConfig{Size: 100, Overlap: 20})

	chunks := chunker.Chunk("short document")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Content != "short document" {
		t.Errorf("chunk content changed: %q", chunks[0].Content)
	}
	if chunks[0].Total != 1 {
		t.Errorf("expected total 1, got %d", chunks[0].Total)
	}
}

func TestOverlappingChunker_EmptyContent(t *testing.T) {
	chunker := NewOverlappingChunker(ChunkerConfig{Size: 100, Overlap: 20})

	for _, content := range []string{"", "   ", "\n\t\n"} {
		if chunks := chunker.Chunk(content); len(chunks) != 0 {
			t.Errorf("expected no chunks for %q, got %d", content, len(chunks))
		}
	}
}

func TestOverlappingChunker_Overlap(t *testing.T) {
	chunker := NewOverlappingChunker(ChunkerConfig{Size: 100, Overlap: 20})

	content := strings.Repeat("abcdefghij", 25) // 250 chars
	chunks := chunker.Chunk(content)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1].Content
		tail := prev[len(prev)-20:]
		if !strings.HasPrefix(chunks[i].Content, tail) {
			t.Errorf("chunk %d does not start with overlap of chunk %d", i, i-1)
		}
	}
}

func TestOverlappingChunker_CoversAllContent(t *testing.T) {
	chunker := NewOverlappingChunker(ChunkerConfig{Size: 50, Overlap: 10})

	content := strings.Repeat("0123456789", 17) // 170 chars
	chunks := chunker.Chunk(content)

	// Reassemble by dropping each chunk's overlap prefix
	var rebuilt strings.Builder
	rebuilt.WriteString(chunks[0].Content)
	for i := 1; i < len(chunks); i++ {
		rebuilt.WriteString(chunks[i].Content[10:])
	}
	if rebuilt.String() != content {
		t.Error("chunks do not cover the original content")
	}
}

func TestOverlappingChunker_MultibyteContent(t *testing.T) {
	chunker := NewOverlappingChunker(ChunkerConfig{Size: 10, Overlap: 2})

	content := strings.Repeat("日本語テキスト", 5) // 30 runes
	chunks := chunker.Chunk(content)

	for i, chunk := range chunks {
		if !strings.ContainsAny(chunk.Content, "日本語テキスト") {
			t.Errorf("chunk %d contains corrupted runes: %q", i, chunk.Content)
		}
	}
}

func TestChunkerConfig_Defaults(t *testing.T) {
	cfg := ChunkerConfig{}
	cfg.SetDefaults()

	if cfg.Size != 5000 {
		t.Errorf("expected default size 5000, got %d", cfg.Size)
	}
	if cfg.Overlap != 200 {
		t.Errorf("expected default overlap 200, got %d", cfg.Overlap)
	}
}

func TestChunkerConfig_OverlapBounds(t *testing.T) {
	cfg := ChunkerConfig{Size: 100, Overlap: 100}
	cfg.SetDefaults()

	if cfg.Overlap >= cfg.Size {
		t.Errorf("overlap %d not clamped below size %d", cfg.Overlap, cfg.Size)
	}
}
