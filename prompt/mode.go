// Package prompt builds the reasoning context sent to the backend: answer
// mode detection, document/memory/history sections with deterministic
// truncation, and the system instructions for the reasoning protocol.
package prompt

import (
	"regexp"
)

// Mode is the detected answer style of a query. It drives generation
// parameters in the gateway and participates in the cache fingerprint.
type Mode int

const (
	// ModeDefault is the ordinary conversational answer style.
	ModeDefault Mode = iota
	// ModeLegalBrief asks for a structured brief with citations.
	ModeLegalBrief
	// ModeProcedureGuide asks for step-by-step procedural guidance.
	ModeProcedureGuide
	// ModeOther covers recognized but unclassified structured requests.
	ModeOther
)

// String returns the wire name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeLegalBrief:
		return "legal_brief"
	case ModeProcedureGuide:
		return "procedure_guide"
	case ModeOther:
		return "other"
	default:
		return "default"
	}
}

// Strict reports whether the mode calls for lower-variance generation.
func (m Mode) Strict() bool {
	return m == ModeLegalBrief || m == ModeProcedureGuide
}

var (
	briefPattern = regexp.MustCompile(`(?i)\b(?:legal\s+brief|draft\s+(?:a\s+)?(?:brief|memo(?:randum)?)|formal\s+(?:opinion|analysis)|memorandum)\b`)
	guidePattern = regexp.MustCompile(`(?i)\b(?:step[-\s]by[-\s]step|procedure|how\s+do\s+i\s+file|filing\s+process|what\s+(?:are\s+the\s+)?steps|checklist|walk\s+me\s+through)\b`)
	otherPattern = regexp.MustCompile(`(?i)\b(?:compare|table|timeline|summar(?:y|ize|ise)\s+(?:as|into|in)\s)\b`)
)

// DetectMode classifies the query text into an answer mode. Brief beats
// guide when both match since briefs subsume procedural content.
func DetectMode(text string) Mode {
	switch {
	case briefPattern.MatchString(text):
		return ModeLegalBrief
	case guidePattern.MatchString(text):
		return ModeProcedureGuide
	case otherPattern.MatchString(text):
		return ModeOther
	default:
		return ModeDefault
	}
}
