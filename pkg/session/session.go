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

// Package session keeps per-conversation chat history in memory.
package session

import (
	"sync"

	"github.com/google/uuid"
)

// Turn roles as they appear in conversation history.
const (
	RoleSystem = "system"
	RoleHuman  = "human"
	RoleAI     = "ai"
)

// Turn is one utterance in a conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewID returns a fresh session identifier.
func NewID() string {
	return uuid.NewString()
}

// HistoryStore holds chat history for active sessions. History lives only
// in memory; restarting the process forgets all conversations.
type HistoryStore struct {
	mu        sync.RWMutex
	histories map[string][]Turn
}

// NewHistoryStore creates an empty history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{
		histories: make(map[string][]Turn),
	}
}

// Get returns a copy of the session's history. Unknown sessions yield an
// empty history, not an error.
func (s *HistoryStore) Get(sessionID string) []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.histories[sessionID]
	out := make([]Turn, len(history))
	copy(out, history)
	return out
}

// Append records a question and its answer as two turns.
func (s *HistoryStore) Append(sessionID, question, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.histories[sessionID] = append(s.histories[sessionID],
		Turn{Role: RoleHuman, Content: question},
		Turn{Role: RoleAI, Content: answer},
	)
}

// Delete forgets the session's history. Deleting an unknown session is a
// no-op.
func (s *HistoryStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.histories, sessionID)
}

// Len returns the number of turns recorded for the session.
func (s *HistoryStore) Len(sessionID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.histories[sessionID])
}
