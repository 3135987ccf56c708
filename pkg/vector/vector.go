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

// Package vector provides embedded vector storage backed by chromem-go.
package vector

import "context"

// Document is a chunk with its pre-computed embedding, ready for indexing.
type Document struct {
	ID        string
	Content   string
	Metadata  map[string]string
	Embedding []float32
}

// Result is a single similarity search hit.
type Result struct {
	ID       string
	Content  string
	Score    float32
	Metadata map[string]string
}

// Index stores embedded documents and answers similarity queries.
// Embeddings are computed externally; the index never calls an embedder.
type Index interface {
	Add(ctx context.Context, docs []Document) error
	Query(ctx context.Context, embedding []float32, topK int) ([]Result, error)
	Count() int
}
