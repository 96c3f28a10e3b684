// Package router performs the security and intent triage that every query
// passes through before any retrieval or backend call. Non-proceed decisions
// short-circuit the pipeline with a canned response, bounding both cost and
// attack surface.
package router

import (
	"regexp"
	"strings"

	"github.com/juricore/juricore/core"
)

// Decision is the router's classification of a query.
type Decision string

const (
	// DecisionProceed lets the query continue into the full pipeline.
	DecisionProceed Decision = "proceed"
	// DecisionPromptInjection flags an attempt to subvert backend instructions.
	DecisionPromptInjection Decision = "prompt_injection"
	// DecisionGreeting matches pure salutations.
	DecisionGreeting Decision = "greeting"
	// DecisionCasual matches small talk with no domain content.
	DecisionCasual Decision = "casual"
	// DecisionIdentityQuestion matches questions about the assistant itself.
	DecisionIdentityQuestion Decision = "identity_question"
	// DecisionOutOfDomain matches questions clearly outside the legal domain.
	DecisionOutOfDomain Decision = "out_of_domain"
	// DecisionClarificationNeeded matches queries too short or vague to act on.
	DecisionClarificationNeeded Decision = "clarification_needed"
)

// ShortCircuits reports whether the decision terminates the pipeline with a
// canned response instead of invoking retrieval and the reasoning backend.
func (d Decision) ShortCircuits() bool { return d != DecisionProceed }

// Router classifies queries. Implementations must be side-effect-free so a
// classification can be safely retried.
type Router interface {
	Classify(q core.Query) Decision
}

// RuleRouter classifies with precompiled patterns checked in priority order:
// injection first (security beats convenience), then the cheap conversational
// classes, then domain and clarity checks. It holds no mutable state and is
// safe for concurrent use.
type RuleRouter struct {
	injection     []*regexp.Regexp
	greeting      *regexp.Regexp
	casual        *regexp.Regexp
	identity      *regexp.Regexp
	outOfDomain   []*regexp.Regexp
	domainAnchors *regexp.Regexp
	minWords      int
}

// Options configures a RuleRouter.
type Options struct {
	// MinWords is the minimum word count below which a query without domain
	// anchors is classified clarification_needed.
	MinWords int
}

// NewRuleRouter builds the default rule-based router.
func NewRuleRouter(optFns ...func(o *Options)) *RuleRouter {
	opts := Options{MinWords: 3}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &RuleRouter{
		injection: []*regexp.Regexp{
			regexp.MustCompile(`(?i)ignore\s+(?:all\s+)?(?:previous|prior|above|earlier)\s+(?:instructions|prompts|rules)`),
			regexp.MustCompile(`(?i)disregard\s+(?:your|all|the)\s+(?:instructions|rules|guidelines|system\s+prompt)`),
			regexp.MustCompile(`(?i)(?:reveal|show|print|repeat|output)\s+(?:your|the)\s+(?:system\s+prompt|instructions|initial\s+prompt)`),
			regexp.MustCompile(`(?i)you\s+are\s+now\s+(?:a|an|in)\s`),
			regexp.MustCompile(`(?i)pretend\s+(?:to\s+be|you\s+are)\s`),
			regexp.MustCompile(`(?i)\b(?:jailbreak|dan\s+mode|developer\s+mode)\b`),
			regexp.MustCompile(`(?i)act\s+as\s+if\s+you\s+have\s+no\s+(?:restrictions|rules|guidelines)`),
		},
		greeting: regexp.MustCompile(`(?i)^\s*(?:hi|hello|hey|good\s+(?:morning|afternoon|evening)|greetings)[\s!,.]*$`),
		casual:   regexp.MustCompile(`(?i)^\s*(?:how\s+are\s+you|what'?s\s+up|thanks?(?:\s+you)?|thank\s+you|ok(?:ay)?|cool|nice|great|bye|goodbye|see\s+you)[\s!,.?]*$`),
		identity: regexp.MustCompile(`(?i)^\s*(?:who|what)\s+are\s+you[\s?!.]*$|(?i)are\s+you\s+(?:a\s+)?(?:human|real|an?\s+ai|a\s+robot|chatgpt|a\s+lawyer)[\s?!.]*$|(?i)what\s+can\s+you\s+do[\s?!.]*$`),
		outOfDomain: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:recipe|cook(?:ing)?|bake|ingredients)\b`),
			regexp.MustCompile(`(?i)\b(?:football|soccer|basketball|tennis)\s+(?:score|match|game|result)`),
			regexp.MustCompile(`(?i)\b(?:weather|temperature)\s+(?:today|tomorrow|forecast|in)\b`),
			regexp.MustCompile(`(?i)write\s+(?:me\s+)?a\s+(?:poem|song|story|joke)\b`),
		},
		domainAnchors: regexp.MustCompile(`(?i)\b(?:law|legal|statute|regulation|contract|clause|liability|court|ruling|judgment|judgement|case\s+law|precedent|claim|damages|gdpr|compliance|article|section|§|plaintiff|defendant|appeal|tort|lease|employment|dismissal|ip|patent|trademark|copyright)\b`),
		minWords:      opts.MinWords,
	}
}

// Classify implements Router. The first matching class wins; anything
// unmatched proceeds.
func (r *RuleRouter) Classify(q core.Query) Decision {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return DecisionClarificationNeeded
	}

	for _, p := range r.injection {
		if p.MatchString(text) {
			return DecisionPromptInjection
		}
	}
	if r.greeting.MatchString(text) {
		return DecisionGreeting
	}
	if r.casual.MatchString(text) {
		return DecisionCasual
	}
	if r.identity.MatchString(text) {
		return DecisionIdentityQuestion
	}

	hasAnchor := r.domainAnchors.MatchString(text)
	for _, p := range r.outOfDomain {
		if p.MatchString(text) && !hasAnchor {
			return DecisionOutOfDomain
		}
	}

	if len(strings.Fields(text)) < r.minWords && !hasAnchor {
		return DecisionClarificationNeeded
	}

	return DecisionProceed
}
