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

// Package reasoning implements the Thought/Action/Observation loop that
// drives tool-augmented question answering.
package reasoning

import (
	"regexp"
	"strings"
)

// DecisionKind classifies what a model output asks the loop to do next.
type DecisionKind int

const (
	// DecisionFinalAnswer means the model produced a final answer.
	DecisionFinalAnswer DecisionKind = iota

	// DecisionToolCall means the model requested a tool invocation.
	DecisionToolCall

	// DecisionMalformed means the output fits neither shape. The loop
	// treats the raw text as a de facto final answer.
	DecisionMalformed
)

// Decision is the parsed form of one model output.
type Decision struct {
	Kind DecisionKind

	// Answer holds the final answer text (DecisionFinalAnswer) or the
	// raw model output (DecisionMalformed).
	Answer string

	// Tool and Input are set for DecisionToolCall.
	Tool  string
	Input string

	// Thought is the model's stated reasoning, when present.
	Thought string
}

const finalAnswerMarker = "Final Answer:"

var (
	actionRe      = regexp.MustCompile(`Action:\s*(.*)`)
	actionInputRe = regexp.MustCompile(`Action Input:\s*(.*)`)
	thoughtRe     = regexp.MustCompile(`Thought:\s*(.*)`)
)

// Parse classifies a model output. A final answer marker anywhere in the
// text wins over an action pair; the answer is everything after the LAST
// marker occurrence, so a model that narrates earlier drafts still yields
// the final one.
func Parse(response string) Decision {
	thought := "Thinking..."
	if m := thoughtRe.FindStringSubmatch(response); m != nil {
		thought = strings.TrimSpace(m[1])
	}

	if idx := strings.LastIndex(response, finalAnswerMarker); idx >= 0 {
		return Decision{
			Kind:    DecisionFinalAnswer,
			Answer:  strings.TrimSpace(response[idx+len(finalAnswerMarker):]),
			Thought: thought,
		}
	}

	actionMatch := actionRe.FindStringSubmatch(response)
	inputMatch := actionInputRe.FindStringSubmatch(response)
	if actionMatch != nil && inputMatch != nil {
		return Decision{
			Kind:    DecisionToolCall,
			Tool:    normalizeToolName(actionMatch[1]),
			Input:   stripBrackets(inputMatch[1]),
			Thought: thought,
		}
	}

	return Decision{
		Kind:    DecisionMalformed,
		Answer:  response,
		Thought: thought,
	}
}

// normalizeToolName cleans an action string into a bare tool name. Models
// sometimes emit descriptive text ("Search the web for...") or keep the
// format's example brackets; take the first token and strip the brackets.
func normalizeToolName(raw string) string {
	name := strings.TrimSpace(raw)
	if strings.Contains(name, " ") {
		name = strings.Fields(name)[0]
	}
	return stripBrackets(name)
}

func stripBrackets(s string) string {
	s = strings.ReplaceAll(s, "[", "")
	s = strings.ReplaceAll(s, "]", "")
	return strings.TrimSpace(s)
}
