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

package vector

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/philippgille/chromem-go"
)

const collectionName = "documents"

// ChromemIndex implements Index using chromem-go with file persistence.
//
// Each index owns one on-disk database under its own directory, so separate
// conversations never share vectors. Writes persist immediately; reopening
// the same path restores the stored documents.
type ChromemIndex struct {
	db  *chromem.DB
	col *chromem.Collection
	mu  sync.RWMutex
}

// OpenChromemIndex opens or creates a persistent index at path.
func OpenChromemIndex(path string) (*ChromemIndex, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector database: %w", err)
	}

	// Vectors are always pre-computed, so the embedding function must
	// never run.
	identityEmbed := func(ctx context.Context, text string) ([]float32, error) {
		return nil, fmt.Errorf("embedding function called but vectors should be pre-computed")
	}

	col, err := db.GetOrCreateCollection(collectionName, nil, identityEmbed)
	if err != nil {
		return nil, fmt.Errorf("failed to get/create collection %q: %w", collectionName, err)
	}

	return &ChromemIndex{db: db, col: col}, nil
}

// Add indexes documents with their pre-computed embeddings.
func (x *ChromemIndex) Add(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	chromemDocs := make([]chromem.Document, 0, len(docs))
	for _, doc := range docs {
		chromemDocs = append(chromemDocs, chromem.Document{
			ID:        doc.ID,
			Content:   doc.Content,
			Metadata:  doc.Metadata,
			Embedding: doc.Embedding,
		})
	}

	if err := x.col.AddDocuments(ctx, chromemDocs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}

	return nil
}

// Query returns up to topK documents ranked by cosine similarity.
// chromem rejects queries asking for more results than stored documents,
// so topK is clamped to the collection size.
func (x *ChromemIndex) Query(ctx context.Context, embedding []float32, topK int) ([]Result, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	count := x.col.Count()
	if count == 0 {
		return nil, nil
	}
	if topK > count {
		topK = count
	}

	results, err := x.col.QueryEmbedding(ctx, embedding, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}

	out := make([]Result, 0, len(results))
	for _, r := range results {
		out = append(out, Result{
			ID:       r.ID,
			Content:  r.Content,
			Score:    r.Similarity,
			Metadata: r.Metadata,
		})
	}

	return out, nil
}

// Count returns the number of stored documents.
func (x *ChromemIndex) Count() int {
	x.mu.RLock()
	defer x.mu.RUnlock()

	return x.col.Count()
}

// Ensure ChromemIndex implements Index.
var _ Index = (*ChromemIndex)(nil)
