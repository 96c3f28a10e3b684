package tool

import (
	"fmt"
	"strings"

	"github.com/juricore/juricore/core"
)

// RecallToolName identifies the conversation recall tool.
const RecallToolName = "recall_conversation"

// NewRecallTool builds the recall gate's tool: it answers "what did we
// discuss" questions from the conversation history snapshot instead of the
// document corpus. An empty history is an error so the loop can fall back to
// standard retrieval.
func NewRecallTool() *FunctionTool {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"turns": map[string]any{
				"type":        "integer",
				"description": "How many trailing turns to summarize (default 10)",
			},
		},
	}

	return NewFunctionTool(
		RecallToolName,
		"Look up what was previously discussed in this conversation. Use only for questions about the conversation itself.",
		params,
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			history := tc.History()
			if len(history) == 0 {
				return nil, fmt.Errorf("no conversation history available")
			}

			limit := 10
			if turns, ok := args["turns"].(float64); ok && turns > 0 {
				limit = int(turns)
			}
			if limit > len(history) {
				limit = len(history)
			}

			recent := history[len(history)-limit:]
			var b strings.Builder
			for _, turn := range recent {
				role := "Assistant"
				if turn.IsUser() {
					role = "User"
				}
				fmt.Fprintf(&b, "%s: %s\n", role, turn.Content)
			}

			return map[string]any{
				"turns":      limit,
				"transcript": b.String(),
			}, nil
		},
	)
}
