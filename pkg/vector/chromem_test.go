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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocs() []Document {
	return []Document{
		{ID: "a", Content: "about cats", Embedding: []float32{1, 0, 0}, Metadata: map[string]string{"file": "a.pdf"}},
		{ID: "b", Content: "about dogs", Embedding: []float32{0, 1, 0}, Metadata: map[string]string{"file": "b.pdf"}},
		{ID: "c", Content: "about fish", Embedding: []float32{0, 0, 1}, Metadata: map[string]string{"file": "c.pdf"}},
	}
}

func TestChromemIndex_AddAndQuery(t *testing.T) {
	idx, err := OpenChromemIndex(filepath.Join(t.TempDir(), "index"))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, idx.Add(ctx, testDocs()))
	assert.Equal(t, 3, idx.Count())

	results, err := idx.Query(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].ID)
	assert.Equal(t, "about cats", results[0].Content)
	assert.Equal(t, "a.pdf", results[0].Metadata["file"])
}

func TestChromemIndex_QueryEmptyIndex(t *testing.T) {
	idx, err := OpenChromemIndex(filepath.Join(t.TempDir(), "index"))
	require.NoError(t, err)

	results, err := idx.Query(context.Background(), []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestChromemIndex_TopKClampedToSize(t *testing.T) {
	idx, err := OpenChromemIndex(filepath.Join(t.TempDir(), "index"))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, idx.Add(ctx, testDocs()))

	// Asking for more results than stored documents must not error.
	results, err := idx.Query(ctx, []float32{0, 1, 0}, 50)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestChromemIndex_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index")
	ctx := context.Background()

	idx, err := OpenChromemIndex(path)
	require.NoError(t, err)
	require.NoError(t, idx.Add(ctx, testDocs()))

	reopened, err := OpenChromemIndex(path)
	require.NoError(t, err)
	assert.Equal(t, 3, reopened.Count())
}

func TestChromemIndex_AddNothing(t *testing.T) {
	idx, err := OpenChromemIndex(filepath.Join(t.TempDir(), "index"))
	require.NoError(t, err)

	require.NoError(t, idx.Add(context.Background(), nil))
	assert.Equal(t, 0, idx.Count())
}
