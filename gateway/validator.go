package gateway

import (
	"regexp"
	"strings"
)

// Violation is one validation finding on a raw answer. Violations are
// attached to the result and logged; they never block returning the answer.
type Violation struct {
	Rule   string `json:"rule"`
	Detail string `json:"detail"`
}

// Validator checks a raw answer for policy or quality violations.
type Validator interface {
	Validate(answer string) []Violation
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(answer string) []Violation

// Validate implements Validator.
func (f ValidatorFunc) Validate(answer string) []Violation { return f(answer) }

var leakedProtocolPattern = regexp.MustCompile(`"is_final"\s*:`)

// RuleValidator is the default answer validator. It flags empty answers,
// leaked decision protocol JSON and missing disclaimers on advice-shaped
// answers.
type RuleValidator struct {
	// RequireDisclaimer flags answers that give direct legal advice without
	// a professional-review note.
	RequireDisclaimer bool
}

// NewRuleValidator creates the default validator.
func NewRuleValidator() *RuleValidator {
	return &RuleValidator{RequireDisclaimer: false}
}

var advicePattern = regexp.MustCompile(`(?i)\byou\s+(?:should|must|are\s+(?:required|obligated)\s+to)\b`)
var disclaimerPattern = regexp.MustCompile(`(?i)\b(?:not\s+legal\s+advice|consult\s+(?:a|your)\s+(?:lawyer|attorney|legal\s+professional))\b`)

// Validate implements Validator.
func (v *RuleValidator) Validate(answer string) []Violation {
	var violations []Violation

	if strings.TrimSpace(answer) == "" {
		violations = append(violations, Violation{
			Rule:   "non_empty",
			Detail: "answer is empty or whitespace only",
		})
		return violations
	}

	if leakedProtocolPattern.MatchString(answer) {
		violations = append(violations, Violation{
			Rule:   "no_protocol_leak",
			Detail: "answer contains raw decision protocol JSON",
		})
	}

	if v.RequireDisclaimer && advicePattern.MatchString(answer) && !disclaimerPattern.MatchString(answer) {
		violations = append(violations, Violation{
			Rule:   "advice_disclaimer",
			Detail: "direct advice given without a professional-review note",
		})
	}

	return violations
}
