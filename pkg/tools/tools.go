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

// Package tools provides the research tools available to the reasoning
// engine: web search, Wikipedia lookup and arXiv lookup.
package tools

import (
	"context"

	"github.com/kadirpekel/trio/pkg/registry"
)

// Tool is a single named capability the reasoning engine can invoke.
type Tool interface {
	// Name is the identifier the model uses to select the tool.
	Name() string

	// Description tells the model what the tool is good for.
	Description() string

	// Run executes the tool with the given input and returns its
	// observation text.
	Run(ctx context.Context, input string) (string, error)
}

// Registry holds the tools available to a reasoning engine.
type Registry struct {
	*registry.BaseRegistry[Tool]
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{BaseRegistry: registry.NewBaseRegistry[Tool]()}
}

// RegisterTool adds a tool under its own name.
func (r *Registry) RegisterTool(t Tool) error {
	return r.Register(t.Name(), t)
}

// truncate limits a result to max characters, which keeps observations
// small enough to fit the reasoning prompt.
func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
