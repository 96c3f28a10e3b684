// Package tool implements the capabilities the reasoning loop can invoke
// during query resolution: document retrieval, entity extraction, team scope
// lookup and conversation recall. Arguments are schema validated and errors
// are normalized so the loop can count and surface them uniformly.
package tool

import (
	"fmt"

	"github.com/juricore/juricore/core"
	"github.com/juricore/juricore/internal/util"
)

// Tool defines the interface for capabilities invokable by the reasoning loop.
//
// Tool implementations should:
//   - Provide clear, descriptive names and descriptions
//   - Define proper JSON schema for parameters
//   - Handle errors gracefully
//   - Be thread-safe if used concurrently
//   - Follow consistent naming conventions (snake_case)
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description of what this tool does.
	// This description is provided to the reasoning backend to help it decide
	// when and how to use the tool.
	Description() string

	// Parameters returns a JSON schema describing the expected input format.
	// This schema is used for parameter validation and for the tool protocol
	// section of the reasoning prompt.
	Parameters() map[string]interface{}

	// Call executes the tool with structured arguments and a ToolContext
	// carrying the query, history snapshot and retrieval scope.
	// Arguments are parsed from the backend's decision JSON and validated
	// against the tool's schema.
	Call(toolCtx *core.ToolContext, args map[string]interface{}) (interface{}, error)
}

// ValidationError represents parameter validation errors with detailed information.
type ValidationError = util.ValidationError

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string      `json:"tool"`              // Name of the tool that failed
	Message string      `json:"message"`           // Error message
	Code    string      `json:"code"`              // Error code for categorization
	Details interface{} `json:"details,omitempty"` // Additional error details
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// ErrorCode returns the categorization code so error events carry it through
// the stream without depending on this package.
func (e *ToolError) ErrorCode() string {
	if e.Code == "" {
		return "TOOL_ERROR"
	}
	return e.Code
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}
