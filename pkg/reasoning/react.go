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

package reasoning

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/kadirpekel/trio/pkg/llms"
	"github.com/kadirpekel/trio/pkg/session"
	"github.com/kadirpekel/trio/pkg/tools"
)

// ExhaustedMessage is returned when the iteration budget runs out without
// a final answer.
const ExhaustedMessage = "I reached the maximum number of iterations without finding a final answer."

// Result is the outcome of one reasoning run.
type Result struct {
	// Response is the answer text.
	Response string

	// Sources records every successful tool invocation as
	// "tool_name: input", deduplicated.
	Sources []string

	// History is the full message sequence of the run, in order. It is
	// only ever appended to during the run, so it replays the exchange
	// exactly.
	History []session.Turn
}

// Engine runs the Thought/Action/Observation loop against a model and a
// tool registry.
type Engine struct {
	llm           llms.Provider
	registry      *tools.Registry
	maxIterations int
}

// NewEngine creates a reasoning engine. maxIterations bounds the number
// of model calls per run.
func NewEngine(llm llms.Provider, registry *tools.Registry, maxIterations int) *Engine {
	if maxIterations <= 0 {
		maxIterations = 5
	}
	return &Engine{
		llm:           llm,
		registry:      registry,
		maxIterations: maxIterations,
	}
}

// Run answers a query, invoking tools as the model requests them. The
// loop terminates on a final answer, malformed output, exhaustion of the
// iteration budget, or a model error. Tool failures never terminate the
// loop; they are fed back as observations.
func (e *Engine) Run(ctx context.Context, query string) (*Result, error) {
	history := []session.Turn{
		{Role: session.RoleSystem, Content: e.systemPrompt()},
		{Role: session.RoleHuman, Content: query},
	}

	var sources []string

	for i := 0; i < e.maxIterations; i++ {
		response, _, err := e.llm.Generate(ctx, toMessages(history))
		if err != nil {
			return nil, fmt.Errorf("model call failed: %w", err)
		}

		decision := Parse(response)
		slog.Debug("Parsed model output",
			"iteration", i,
			"kind", decision.Kind,
			"thought", decision.Thought)

		switch decision.Kind {
		case DecisionFinalAnswer:
			return &Result{
				Response: decision.Answer,
				Sources:  dedupe(sources),
				History:  history,
			}, nil

		case DecisionMalformed:
			// Neither a final answer nor an action pair. Return the raw
			// text rather than retrying.
			return &Result{
				Response: decision.Answer,
				Sources:  dedupe(sources),
				History:  history,
			}, nil

		case DecisionToolCall:
			observation := e.invoke(ctx, decision, &sources)
			history = append(history,
				session.Turn{Role: session.RoleAI, Content: response},
				session.Turn{Role: session.RoleHuman, Content: "Observation: " + observation},
			)
		}
	}

	return &Result{
		Response: ExhaustedMessage,
		Sources:  dedupe(sources),
		History:  history,
	}, nil
}

// invoke runs the requested tool and returns the observation text. A
// successful run records a source entry; failures and unknown tool names
// only produce observations.
func (e *Engine) invoke(ctx context.Context, decision Decision, sources *[]string) string {
	tool, ok := e.registry.Get(decision.Tool)
	if !ok {
		return fmt.Sprintf("Tool '%s' not found. Please use one of %v.", decision.Tool, e.registry.Names())
	}

	output, err := tool.Run(ctx, decision.Input)
	if err != nil {
		slog.Warn("Tool execution failed",
			"tool", decision.Tool,
			"error", err)
		return fmt.Sprintf("Error executing tool: %v", err)
	}

	*sources = append(*sources, fmt.Sprintf("%s: %s", decision.Tool, decision.Input))
	return output
}

// systemPrompt lists the registered tools and the required output format.
func (e *Engine) systemPrompt() string {
	var b strings.Builder
	b.WriteString("You are a helpful assistant with access to the following tools:\n\n")

	for _, name := range e.registry.Names() {
		tool, _ := e.registry.Get(name)
		b.WriteString(fmt.Sprintf("%s: %s\n", tool.Name(), tool.Description()))
	}

	b.WriteString(`
To use a tool, please use the following format:
Thought: Do I need to use a tool? Yes
Action: [The name of the tool to use, e.g. Search]
Action Input: [The input to the tool]
Observation: [The result of the tool]

When you have a response to say to the Human, or if you do not need to use a tool, you MUST use the format:
Thought: Do I need to use a tool? No
Final Answer: [your response here]

Begin!
`)

	return b.String()
}

// toMessages converts conversation turns to chat-completion messages.
func toMessages(history []session.Turn) []llms.Message {
	messages := make([]llms.Message, 0, len(history))
	for _, turn := range history {
		role := llms.RoleUser
		switch turn.Role {
		case session.RoleSystem:
			role = llms.RoleSystem
		case session.RoleAI:
			role = llms.RoleAssistant
		}
		messages = append(messages, llms.Message{Role: role, Content: turn.Content})
	}
	return messages
}

// dedupe returns the unique entries in sorted order. A nil input yields
// an empty slice so callers always serialize a JSON array.
func dedupe(entries []string) []string {
	seen := make(map[string]struct{}, len(entries))
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		if _, ok := seen[entry]; ok {
			continue
		}
		seen[entry] = struct{}{}
		out = append(out, entry)
	}
	sort.Strings(out)
	return out
}
