package router

import (
	"github.com/juricore/juricore/core"
	"github.com/juricore/juricore/internal/util"
)

// Canned response templates keyed by short-circuit decision. Templates use
// text/template syntax with the query exposed as {{.query}} and the user id
// as {{.user_id}}.
var defaultResponses = map[Decision]string{
	DecisionPromptInjection:     "I can't help with that request. If you have a question about your documents or a legal topic, I'm happy to assist.",
	DecisionGreeting:            "Hello! Ask me about your documents, contracts, or any legal topic and I'll do my best to help.",
	DecisionCasual:              "Happy to chat, but I'm most useful with questions about your documents and legal matters. What would you like to know?",
	DecisionIdentityQuestion:    "I'm a legal research assistant. I can search your documents, summarize case law, and answer questions about legal topics.",
	DecisionOutOfDomain:         "That's outside what I can help with. I answer questions about your documents and legal topics.",
	DecisionClarificationNeeded: "Could you give me a bit more detail? A few more words about the document, case, or topic you mean will help me find the right answer.",
}

// CannedResponse renders the templated short-circuit response for a decision.
// Unknown or proceed decisions return an empty string.
func CannedResponse(d Decision, q core.Query) string {
	tmplText, ok := defaultResponses[d]
	if !ok {
		return ""
	}
	rendered, err := util.RenderTemplate(tmplText, map[string]any{
		"query":   q.Text,
		"user_id": q.UserID,
	})
	if err != nil {
		return tmplText
	}
	return rendered
}
