package prompt

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ToolSpec describes one tool in the reasoning protocol section of the
// system prompt.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

const systemPreamble = `You are a legal research assistant. Ground every answer in the provided documents and conversation context. If the context does not contain the answer, say so instead of speculating.`

const decisionProtocol = `Respond with a single JSON object and nothing else:
{"thought": "<your reasoning>", "action": {"tool": "<tool name>", "input": {<arguments>}}, "is_final": false}
or, when you can answer:
{"thought": "<your reasoning>", "is_final": true, "final_answer": "<the answer>"}`

// SystemInstructions renders the system prompt: role preamble, available
// tools and the decision protocol.
func SystemInstructions(tools []ToolSpec) string {
	var sb strings.Builder
	sb.WriteString(systemPreamble)
	if len(tools) > 0 {
		sb.WriteString("\n\nAvailable tools:\n")
		for _, t := range tools {
			schema := "{}"
			if t.Parameters != nil {
				if data, err := json.Marshal(t.Parameters); err == nil {
					schema = string(data)
				}
			}
			fmt.Fprintf(&sb, "- %s: %s Parameters: %s\n", t.Name, t.Description, schema)
		}
	}
	sb.WriteString("\n")
	sb.WriteString(decisionProtocol)
	return sb.String()
}

// ModeInstruction returns extra answer-style guidance for non-default modes.
func ModeInstruction(m Mode) string {
	switch m {
	case ModeLegalBrief:
		return "Format the final answer as a structured legal brief: issue, rule, application, conclusion. Cite the supporting documents by their bracketed numbers."
	case ModeProcedureGuide:
		return "Format the final answer as a numbered step-by-step guide. State prerequisites first and flag deadlines explicitly."
	case ModeOther:
		return "Follow the structural format the user asked for as closely as the material allows."
	default:
		return ""
	}
}
