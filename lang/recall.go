package lang

import (
	"regexp"

	"github.com/juricore/juricore/core"
)

var recallPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bwhat\s+(?:did|have)\s+we\s+(?:discuss|talk(?:ed)?\s+about|cover(?:ed)?|say|said)\b`),
	regexp.MustCompile(`(?i)\bwhat\s+was\s+(?:my|your|the)\s+(?:last|previous|earlier)\s+(?:question|answer|message)\b`),
	regexp.MustCompile(`(?i)\b(?:earlier|previously|before)\s+(?:in\s+(?:this|our)\s+(?:conversation|chat|session))\b`),
	regexp.MustCompile(`(?i)\b(?:remind|tell)\s+me\s+what\s+(?:we|you|i)\s+(?:discussed|said|asked|talked\s+about)\b`),
	regexp.MustCompile(`(?i)\bsummar(?:ize|ise)\s+(?:our|this|the)\s+(?:conversation|chat|discussion)\b`),
	regexp.MustCompile(`(?i)\bwhat\s+did\s+(?:you|i)\s+(?:just\s+)?(?:say|tell\s+me|ask)\b`),
	regexp.MustCompile(`(?i)\bgo\s+back\s+to\s+(?:what|where)\s+we\b`),
}

// IsConversationRecallQuery reports whether the query asks about the
// conversation itself rather than posing a new domain question. Always false
// for an empty history since there is nothing to recall.
func IsConversationRecallQuery(query string, history []core.Turn) bool {
	if len(history) == 0 {
		return false
	}
	for _, p := range recallPatterns {
		if p.MatchString(query) {
			return true
		}
	}
	return false
}
