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

package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistoryStore_AppendAndGet(t *testing.T) {
	store := NewHistoryStore()

	store.Append("s1", "what is Go?", "A programming language.")
	store.Append("s1", "who made it?", "Google.")

	turns := store.Get("s1")
	assert.Len(t, turns, 4)
	assert.Equal(t, Turn{Role: RoleHuman, Content: "what is Go?"}, turns[0])
	assert.Equal(t, Turn{Role: RoleAI, Content: "A programming language."}, turns[1])
	assert.Equal(t, Turn{Role: RoleHuman, Content: "who made it?"}, turns[2])
}

func TestHistoryStore_UnknownSessionIsEmpty(t *testing.T) {
	store := NewHistoryStore()

	assert.Empty(t, store.Get("nope"))
	assert.Equal(t, 0, store.Len("nope"))
}

func TestHistoryStore_SessionsAreIsolated(t *testing.T) {
	store := NewHistoryStore()

	store.Append("s1", "q1", "a1")
	store.Append("s2", "q2", "a2")

	assert.Equal(t, 2, store.Len("s1"))
	assert.Equal(t, "q2", store.Get("s2")[0].Content)
}

func TestHistoryStore_Delete(t *testing.T) {
	store := NewHistoryStore()

	store.Append("s1", "q", "a")
	store.Delete("s1")
	assert.Empty(t, store.Get("s1"))

	// Deleting twice is fine.
	store.Delete("s1")
}

func TestHistoryStore_GetReturnsCopy(t *testing.T) {
	store := NewHistoryStore()
	store.Append("s1", "q", "a")

	turns := store.Get("s1")
	turns[0].Content = "mutated"

	assert.Equal(t, "q", store.Get("s1")[0].Content)
}

func TestHistoryStore_ConcurrentAccess(t *testing.T) {
	store := NewHistoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", n%4)
			store.Append(id, "q", "a")
			store.Get(id)
			store.Len(id)
		}(i)
	}
	wg.Wait()

	total := 0
	for i := 0; i < 4; i++ {
		total += store.Len(fmt.Sprintf("s%d", i))
	}
	assert.Equal(t, 40, total)
}

func TestNewID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		assert.NotEmpty(t, id)
		assert.False(t, seen[id])
		seen[id] = true
	}
}
