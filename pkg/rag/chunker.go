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

// Package rag provides document chunking and text extraction for retrieval.
package rag

import (
	"strings"
)

// Chunk is a contiguous slice of a document prepared for embedding.
type Chunk struct {
	Content string
	Index   int
	Total   int
}

// ChunkerConfig controls chunk sizing. Size and Overlap are measured in
// characters, not bytes, so multibyte text never splits mid-rune.
type ChunkerConfig struct {
	Size    int
	Overlap int
}

// SetDefaults applies default values for zero fields.
func (c *ChunkerConfig) SetDefaults() {
	if c.Size <= 0 {
		c.Size = 5000
	}
	if c.Overlap < 0 || c.Overlap >= c.Size {
		c.Overlap = c.Size / 25
	}
}

// OverlappingChunker splits text into fixed-size windows with overlap.
// Overlap preserves context at chunk boundaries, improving retrieval
// quality when relevant information spans two chunks.
type OverlappingChunker struct {
	config ChunkerConfig
}

// NewOverlappingChunker creates a chunker with the given configuration.
func NewOverlappingChunker(cfg ChunkerConfig) *OverlappingChunker {
	cfg.SetDefaults()
	return &OverlappingChunker{config: cfg}
}

// Chunk splits content into overlapping character windows. Whitespace-only
// content yields no chunks.
func (c *OverlappingChunker) Chunk(content string) []Chunk {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	runes := []rune(content)

	// If content fits in one chunk, return it
	if len(runes) <= c.config.Size {
		return []Chunk{{Content: content, Index: 0, Total: 1}}
	}

	step := c.config.Size - c.config.Overlap

	var chunks []Chunk
	for start := 0; start < len(runes); start += step {
		end := start + c.config.Size
		if end > len(runes) {
			end = len(runes)
		}

		chunks = append(chunks, Chunk{
			Content: string(runes[start:end]),
			Index:   len(chunks),
		})

		if end == len(runes) {
			break
		}
	}

	total := len(chunks)
	for i := range chunks {
		chunks[i].Total = total
	}

	return chunks
}

// Config returns the effective chunker configuration.
func (c *OverlappingChunker) Config() ChunkerConfig {
	return c.config
}
