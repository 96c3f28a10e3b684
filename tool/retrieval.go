package tool

import (
	"fmt"

	"github.com/juricore/juricore/core"
)

// RetrievalToolName is the identifier the reasoning backend uses to request a
// document search.
const RetrievalToolName = "search_documents"

// NewRetrievalTool exposes the retrieval collaborator as a tool. The search
// scope combines the loop's accumulated refinements (team, entities) with the
// backend supplied query text. Retrieval failures surface as EXECUTION_ERROR
// so the loop records them as observations and continues.
func NewRetrievalTool() *FunctionTool {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "Search query for the document corpus",
			},
			"limit": map[string]any{
				"type":        "integer",
				"description": "Maximum number of documents to return (default 5)",
			},
		},
		"required": []any{"query"},
	}

	return NewFunctionTool(
		RetrievalToolName,
		"Search the document corpus for passages relevant to a query. Use this to ground answers in source material.",
		params,
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			retriever := tc.Retriever()
			if retriever == nil {
				return nil, NewToolError(RetrievalToolName, "no retriever configured", "EXECUTION_ERROR")
			}

			query, _ := args["query"].(string)
			if query == "" {
				query = tc.Query().Text
			}

			scope := tc.Scope()
			if limit, ok := args["limit"].(float64); ok && limit > 0 {
				scope.Limit = int(limit)
			}
			if scope.Limit <= 0 {
				scope.Limit = 5
			}

			docs, err := retriever.Search(tc.Context(), query, scope)
			if err != nil {
				return nil, fmt.Errorf("retrieval failed: %w", err)
			}

			return docs, nil
		},
	)
}
