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

// Package docstore manages per-session document collections and answers
// questions against them using retrieval-augmented generation.
package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/kadirpekel/trio/pkg/config"
	"github.com/kadirpekel/trio/pkg/embedders"
	"github.com/kadirpekel/trio/pkg/llms"
	"github.com/kadirpekel/trio/pkg/rag"
	"github.com/kadirpekel/trio/pkg/session"
	"github.com/kadirpekel/trio/pkg/utils"
	"github.com/kadirpekel/trio/pkg/vector"
)

// NoDocumentsMessage is returned by Answer when the session has no
// ingested documents.
const NoDocumentsMessage = "Please upload a PDF first."

const (
	metadataFileName = "metadata.json"
	indexDirName     = "index"
)

// IngestStatus classifies the outcome of a document upload.
type IngestStatus int

const (
	// IngestOK means the document was chunked and indexed.
	IngestOK IngestStatus = iota

	// IngestDuplicate means a document with the same filename is already
	// in the session. Nothing is re-indexed.
	IngestDuplicate

	// IngestLimitReached means the session already holds the maximum
	// number of documents.
	IngestLimitReached

	// IngestNoContent means no extractable text was found, e.g. a
	// scanned or image-only PDF.
	IngestNoContent
)

// IngestResult reports what happened to an upload.
type IngestResult struct {
	Status IngestStatus
	Chunks int
}

// sessionMetadata is the on-disk record of a session's documents. It is
// the sole authority on what the session holds; the vector index is
// derived data.
type sessionMetadata struct {
	Files []string `json:"files"`
}

const contextualizePrompt = "Given a chat history and the latest user question " +
	"which might reference context in the chat history, " +
	"formulate a standalone question which can be understood " +
	"without the chat history. Do NOT answer the question, " +
	"just reformulate it if needed and otherwise return it as is."

const answerPromptFormat = "You are an intelligent assistant analyzing PDF documents. " +
	"The text provided below in the 'Context' section IS the actual content of the PDF files you need to use. " +
	"Do not say you don't have the PDF. The context IS the PDF content. " +
	"Use this context to answer the user's question. " +
	"If the user asks for a summary, summarize the provided context. " +
	"If the answer is not in the context, state that you cannot find the information in the document." +
	"\n\n" +
	"Context from PDF:\n%s"

// Store holds each session's documents in its own on-disk vector index
// under the configured base directory, alongside a metadata file listing
// the ingested filenames.
type Store struct {
	config    *config.DocumentsConfig
	embedder  embedders.Embedder
	llm       llms.Provider
	extractor rag.Extractor
	chunker   *rag.OverlappingChunker
	history   *session.HistoryStore
	counter   *utils.TokenCounter

	mu      sync.Mutex
	locks   map[string]*sync.Mutex
	indexes map[string]vector.Index
}

// NewStore creates a document store. The base directory is created if it
// does not exist.
func NewStore(
	cfg *config.DocumentsConfig,
	embedder embedders.Embedder,
	llm llms.Provider,
	extractor rag.Extractor,
	history *session.HistoryStore,
) (*Store, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	// Token counting needs the encoding tables, which tiktoken fetches on
	// first use. Without them the context budget is skipped, not fatal.
	counter, err := utils.NewTokenCounter(llm.ModelName())
	if err != nil {
		slog.Warn("Token counter unavailable, context budgeting disabled", "error", err)
		counter = nil
	}

	return &Store{
		config:    cfg,
		embedder:  embedder,
		llm:       llm,
		extractor: extractor,
		chunker: rag.NewOverlappingChunker(rag.ChunkerConfig{
			Size:    cfg.ChunkSize,
			Overlap: cfg.ChunkOverlap,
		}),
		history: history,
		counter: counter,
		locks:   make(map[string]*sync.Mutex),
		indexes: make(map[string]vector.Index),
	}, nil
}

// sessionLock returns the mutex serializing operations on one session.
// Different sessions proceed concurrently.
func (s *Store) sessionLock(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[sessionID] = lock
	}
	return lock
}

func (s *Store) sessionDir(sessionID string) string {
	return filepath.Join(s.config.BaseDir, sessionID)
}

func (s *Store) metadataPath(sessionID string) string {
	return filepath.Join(s.sessionDir(sessionID), metadataFileName)
}

// readMetadata returns the session's document list. A missing or corrupt
// metadata file reads as an empty list.
func (s *Store) readMetadata(sessionID string) []string {
	data, err := os.ReadFile(s.metadataPath(sessionID))
	if err != nil {
		return nil
	}

	var meta sessionMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		slog.Warn("Corrupt session metadata, treating as empty",
			"session_id", sessionID,
			"error", err)
		return nil
	}
	return meta.Files
}

func (s *Store) writeMetadata(sessionID string, files []string) error {
	if err := os.MkdirAll(s.sessionDir(sessionID), 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.Marshal(sessionMetadata{Files: files})
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	if err := os.WriteFile(s.metadataPath(sessionID), data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

// index returns the session's vector index, opening it on first use.
func (s *Store) index(sessionID string) (vector.Index, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, ok := s.indexes[sessionID]; ok {
		return idx, nil
	}

	idx, err := vector.OpenChromemIndex(filepath.Join(s.sessionDir(sessionID), indexDirName))
	if err != nil {
		return nil, err
	}
	s.indexes[sessionID] = idx
	return idx, nil
}

// Ingest extracts, chunks, embeds and indexes one uploaded document. The
// metadata file is updated only after indexing succeeds, so a failed
// ingest never leaves a phantom entry.
func (s *Store) Ingest(ctx context.Context, sessionID, filename string, data []byte) (*IngestResult, error) {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	files := s.readMetadata(sessionID)

	for _, existing := range files {
		if existing == filename {
			return &IngestResult{Status: IngestDuplicate}, nil
		}
	}

	if len(files) >= s.config.MaxDocuments {
		return &IngestResult{Status: IngestLimitReached}, nil
	}

	text, err := s.extractor.Extract(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text from %s: %w", filename, err)
	}

	chunks := s.chunker.Chunk(text)
	if len(chunks) == 0 {
		return &IngestResult{Status: IngestNoContent}, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	idx, err := s.index(sessionID)
	if err != nil {
		return nil, err
	}

	docs := make([]vector.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = vector.Document{
			ID:      fmt.Sprintf("%s-%d", filename, chunk.Index),
			Content: chunk.Content,
			Metadata: map[string]string{
				"file":  filename,
				"chunk": fmt.Sprintf("%d", chunk.Index),
			},
			Embedding: vectors[i],
		}
	}

	if err := idx.Add(ctx, docs); err != nil {
		return nil, err
	}

	if err := s.writeMetadata(sessionID, append(files, filename)); err != nil {
		return nil, err
	}

	slog.Info("Document ingested",
		"session_id", sessionID,
		"file", filename,
		"chunks", len(chunks))

	return &IngestResult{Status: IngestOK, Chunks: len(chunks)}, nil
}

// Answer responds to a question using the session's documents and chat
// history. With no documents ingested it returns a fixed instruction to
// upload one, not an error.
func (s *Store) Answer(ctx context.Context, sessionID, question string) (string, error) {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if len(s.readMetadata(sessionID)) == 0 {
		return NoDocumentsMessage, nil
	}

	history := s.history.Get(sessionID)

	query, err := s.reformulate(ctx, question, history)
	if err != nil {
		return "", err
	}

	queryVector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return "", fmt.Errorf("failed to embed query: %w", err)
	}

	idx, err := s.index(sessionID)
	if err != nil {
		return "", err
	}

	results, err := idx.Query(ctx, queryVector, s.config.TopK)
	if err != nil {
		return "", err
	}

	contextText := s.buildContext(results)

	messages := []llms.Message{
		{Role: llms.RoleSystem, Content: fmt.Sprintf(answerPromptFormat, contextText)},
	}
	messages = append(messages, historyMessages(history)...)
	messages = append(messages, llms.Message{Role: llms.RoleUser, Content: question})

	answer, _, err := s.llm.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("model call failed: %w", err)
	}

	s.history.Append(sessionID, question, answer)

	return answer, nil
}

// reformulate rewrites a follow-up question into a standalone one using
// the chat history. With no history the question is used as-is and no
// model call is made.
func (s *Store) reformulate(ctx context.Context, question string, history []session.Turn) (string, error) {
	if len(history) == 0 {
		return question, nil
	}

	messages := []llms.Message{
		{Role: llms.RoleSystem, Content: contextualizePrompt},
	}
	messages = append(messages, historyMessages(history)...)
	messages = append(messages, llms.Message{Role: llms.RoleUser, Content: question})

	reformulated, _, err := s.llm.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to reformulate question: %w", err)
	}

	reformulated = strings.TrimSpace(reformulated)
	if reformulated == "" {
		return question, nil
	}
	return reformulated, nil
}

// buildContext joins retrieved chunks, keeping the total within the
// configured token budget.
func (s *Store) buildContext(results []vector.Result) string {
	chunks := make([]string, 0, len(results))
	for _, r := range results {
		chunks = append(chunks, r.Content)
	}
	if s.counter != nil {
		chunks = s.counter.FitChunks(chunks, s.config.ContextTokenLimit)
	}
	return strings.Join(chunks, "\n\n")
}

// Documents returns the session's filenames in upload order.
func (s *Store) Documents(sessionID string) []string {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	return s.readMetadata(sessionID)
}

// Clear removes the session's persisted index, metadata and chat
// history. Filesystem errors are logged, not returned, so a session
// reset always succeeds from the caller's view.
func (s *Store) Clear(sessionID string) {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	delete(s.indexes, sessionID)
	s.mu.Unlock()

	if err := os.RemoveAll(s.sessionDir(sessionID)); err != nil {
		slog.Error("Failed to delete session directory",
			"session_id", sessionID,
			"error", err)
	}

	s.history.Delete(sessionID)
}

func historyMessages(history []session.Turn) []llms.Message {
	messages := make([]llms.Message, 0, len(history))
	for _, turn := range history {
		role := llms.RoleUser
		if turn.Role == session.RoleAI {
			role = llms.RoleAssistant
		}
		messages = append(messages, llms.Message{Role: role, Content: turn.Content})
	}
	return messages
}
