package tool

import (
	"regexp"

	"github.com/juricore/juricore/core"
)

// TeamQueryToolName identifies the team scope detection tool.
const TeamQueryToolName = "detect_team_query"

// TeamResolver maps a user to their team, when they belong to one. Returns an
// empty string when the user has no team; that is not an error.
type TeamResolver interface {
	TeamFor(userID string) (string, error)
}

// TeamResolverFunc adapts a function to the TeamResolver interface.
type TeamResolverFunc func(userID string) (string, error)

// TeamFor implements TeamResolver.
func (f TeamResolverFunc) TeamFor(userID string) (string, error) { return f(userID) }

var teamPhrasePattern = regexp.MustCompile(`(?i)\b(our team|my team|team'?s|our (?:firm|office|department|practice group)|shared (?:with|by) (?:the|my|our) team|colleagues)\b`)

// NewTeamQueryTool builds a tool that checks whether the query refers to the
// user's team and, if so, resolves the team and widens the retrieval scope to
// team-shared documents.
func NewTeamQueryTool(resolver TeamResolver) *FunctionTool {
	params := map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}

	return NewFunctionTool(
		TeamQueryToolName,
		"Detect whether the current query concerns the user's team and widen the search scope to team documents when it does.",
		params,
		func(tc *core.ToolContext, _ map[string]any) (any, error) {
			query := tc.Query()
			if !IsTeamQuery(query.Text) {
				return map[string]any{"team_query": false}, nil
			}
			if resolver == nil {
				return map[string]any{"team_query": true, "team_id": ""}, nil
			}

			teamID, err := resolver.TeamFor(query.UserID)
			if err != nil {
				return nil, NewToolError(TeamQueryToolName, err.Error(), "EXECUTION_ERROR")
			}
			if teamID != "" {
				tc.SetTeam(teamID)
			}

			return map[string]any{"team_query": true, "team_id": teamID}, nil
		},
	)
}

// IsTeamQuery reports whether the text refers to the user's team or shared
// workspace.
func IsTeamQuery(text string) bool {
	return teamPhrasePattern.MatchString(text)
}
