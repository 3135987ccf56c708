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

// Package orchestrator routes queries to the right backend and coerces
// every backend's native output into one result envelope.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/kadirpekel/trio/pkg/docstore"
	"github.com/kadirpekel/trio/pkg/reasoning"
	"github.com/kadirpekel/trio/pkg/session"
)

// AgentType selects which backend handles a query.
type AgentType string

const (
	AgentSearch AgentType = "search"
	AgentPDF    AgentType = "pdf"
	AgentVideo  AgentType = "video"
)

// ParseAgentType validates an agent type string. Unrecognized values are
// an error; routing never falls back to a default backend.
func ParseAgentType(s string) (AgentType, error) {
	switch AgentType(s) {
	case AgentSearch, AgentPDF, AgentVideo:
		return AgentType(s), nil
	default:
		return "", fmt.Errorf("unknown agent type %q: must be one of search, pdf, video", s)
	}
}

// Envelope is the normalized result shape, regardless of which backend
// produced it. Backends that have no sources or history leave those
// fields empty rather than omitting them.
type Envelope struct {
	Response    string         `json:"response"`
	Sources     []string       `json:"sources"`
	History     []session.Turn `json:"history"`
	SourceAgent AgentType      `json:"source_agent"`
}

// SearchBackend answers open-ended questions with tool use.
type SearchBackend interface {
	Run(ctx context.Context, query string) (*reasoning.Result, error)
}

// DocumentBackend answers questions against a session's documents.
type DocumentBackend interface {
	Ingest(ctx context.Context, sessionID, filename string, data []byte) (*docstore.IngestResult, error)
	Answer(ctx context.Context, sessionID, question string) (string, error)
	Documents(sessionID string) []string
	Clear(sessionID string)
}

// VideoBackend summarizes a video given its URL.
type VideoBackend interface {
	Summarize(ctx context.Context, videoURL string) (string, error)
}

// Orchestrator is the single entry point the transport layer talks to.
type Orchestrator struct {
	search SearchBackend
	docs   DocumentBackend
	video  VideoBackend
}

// New creates an orchestrator over the three backends.
func New(search SearchBackend, docs DocumentBackend, video VideoBackend) *Orchestrator {
	return &Orchestrator{
		search: search,
		docs:   docs,
		video:  video,
	}
}

// NewSession issues a fresh session identifier.
func (o *Orchestrator) NewSession() string {
	return session.NewID()
}

// RouteQuery dispatches a query to the selected backend and wraps the
// result in the envelope. All three agent types route through here; for
// the video agent the query is the video URL.
func (o *Orchestrator) RouteQuery(ctx context.Context, query, sessionID string, agentType AgentType) (*Envelope, error) {
	switch agentType {
	case AgentSearch:
		result, err := o.search.Run(ctx, query)
		if err != nil {
			return nil, err
		}
		return &Envelope{
			Response:    result.Response,
			Sources:     emptyIfNil(result.Sources),
			History:     result.History,
			SourceAgent: AgentSearch,
		}, nil

	case AgentPDF:
		answer, err := o.docs.Answer(ctx, sessionID, query)
		if err != nil {
			return nil, err
		}
		return &Envelope{
			Response:    answer,
			Sources:     []string{},
			History:     []session.Turn{},
			SourceAgent: AgentPDF,
		}, nil

	case AgentVideo:
		summary, err := o.video.Summarize(ctx, query)
		if err != nil {
			return nil, err
		}
		return &Envelope{
			Response:    summary,
			Sources:     []string{},
			History:     []session.Turn{},
			SourceAgent: AgentVideo,
		}, nil

	default:
		return nil, fmt.Errorf("unknown agent type %q: must be one of search, pdf, video", agentType)
	}
}

// IngestDocument forwards an upload to the document backend.
func (o *Orchestrator) IngestDocument(ctx context.Context, sessionID, filename string, data []byte) (*docstore.IngestResult, error) {
	return o.docs.Ingest(ctx, sessionID, filename, data)
}

// UploadedDocuments forwards to the document backend.
func (o *Orchestrator) UploadedDocuments(sessionID string) []string {
	return o.docs.Documents(sessionID)
}

// ClearContext forwards to the document backend.
func (o *Orchestrator) ClearContext(sessionID string) {
	o.docs.Clear(sessionID)
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
