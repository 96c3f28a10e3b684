package core

import "context"

// Document is a retrieved evidence item with a relevance score and arbitrary
// metadata. Text holds the full document text when the retriever provides it;
// Excerpt is a retriever-chosen snippet.
type Document struct {
	ID       string         `json:"id"`
	Title    string         `json:"title,omitempty"`
	Text     string         `json:"text"`
	Excerpt  string         `json:"excerpt,omitempty"`
	Score    float64        `json:"score"`
	Source   string         `json:"source,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// SearchScope narrows a retrieval request. Fields are refined opportunistically
// by loop tools (entity extraction, team-query detection) before retrieval.
type SearchScope struct {
	UserID   string   `json:"user_id,omitempty"`
	TeamID   string   `json:"team_id,omitempty"`
	Entities []string `json:"entities,omitempty"`
	Limit    int      `json:"limit,omitempty"`
}

// Retriever is the external vector-search / ranking collaborator. Failures
// are treated by the loop as recoverable tool errors, never as pipeline
// aborts on their own.
type Retriever interface {
	Search(ctx context.Context, query string, scope SearchScope) ([]Document, error)
}
