// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package rules

import (
	"github.com/poiesic/jobtrail/core"
)

// Input is what the decision layer sees of a message.
type Input struct {
	Subject     string
	Body        string
	Sender      string
	Probability float64
}

// Decision is the outcome for one message.
type Decision struct {
	Accepted    bool
	Status      core.Status
	AppliedFlag bool
	Reason      string // name of the category rule that fired
}

// prepared holds the normalized views of an Input shared by all predicates.
type prepared struct {
	subject     string
	text        string // subject and body
	domain      string
	probability float64
}

// rule is one (predicate, outcome) pair of the category list.
type rule struct {
	Name   string
	Accept bool
	Match  func(in *prepared) bool
}

// statusRule is one (predicate, status) pair of the status list.
type statusRule struct {
	Status core.Status
	Match  func(in *prepared) bool
}

// Rule names reported in Decision.Reason.
const (
	RuleHardNegativeSender = "hard_negative_sender"
	RuleStrongPhrase       = "strong_phrase"
	RulePlatformSender     = "platform_sender"
	RuleModelThreshold     = "model_threshold"
	RuleBelowThreshold     = "below_threshold"
)

// Engine evaluates the ordered rule lists built from a Config.
type Engine struct {
	category []rule
	status   []statusRule
}

// NewEngine builds an engine from cfg. A nil cfg uses DefaultConfig.
func NewEngine(cfg *Config) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	strongPhrases := make([]string, 0,
		len(cfg.ApplicationPhrases)+len(cfg.InterviewPhrases)+len(cfg.OfferPhrases)+len(cfg.RejectionPhrases))
	strongPhrases = append(strongPhrases, cfg.ApplicationPhrases...)
	strongPhrases = append(strongPhrases, cfg.InterviewPhrases...)
	strongPhrases = append(strongPhrases, cfg.OfferPhrases...)
	strongPhrases = append(strongPhrases, cfg.RejectionPhrases...)

	threshold := cfg.Threshold
	gate := cfg.RequirePlatformKeyword
	keywords := cfg.PlatformSubjectKeywords

	category := []rule{
		{
			Name:   RuleHardNegativeSender,
			Accept: false,
			Match: func(in *prepared) bool {
				return containsAny(in.domain, cfg.HardNegativeDomains)
			},
		},
		{
			Name:   RuleStrongPhrase,
			Accept: true,
			Match: func(in *prepared) bool {
				return containsAny(in.text, strongPhrases)
			},
		},
		{
			Name:   RulePlatformSender,
			Accept: true,
			Match: func(in *prepared) bool {
				if !containsAny(in.domain, cfg.PlatformDomains) {
					return false
				}
				return !gate || containsAny(in.subject, keywords)
			},
		},
		{
			Name:   RuleModelThreshold,
			Accept: true,
			Match: func(in *prepared) bool {
				return in.probability >= threshold
			},
		},
	}

	status := []statusRule{
		{Status: core.StatusApplicationConfirmation, Match: phraseMatcher(cfg.ApplicationPhrases)},
		{Status: core.StatusInterviewInvite, Match: phraseMatcher(cfg.InterviewPhrases)},
		{Status: core.StatusRejection, Match: phraseMatcher(cfg.RejectionPhrases)},
		{Status: core.StatusJobOpening, Match: phraseMatcher(cfg.OpeningPhrases)},
	}

	return &Engine{category: category, status: status}, nil
}

func phraseMatcher(phrases []string) func(in *prepared) bool {
	return func(in *prepared) bool {
		return containsAny(in.text, phrases)
	}
}

// Decide classifies one message. A message matching no category rule is
// rejected with status OTHER.
func (e *Engine) Decide(in Input) Decision {
	p := &prepared{
		subject:     normalizeText(in.Subject),
		text:        normalizeText(in.Subject + " " + in.Body),
		domain:      SenderDomain(in.Sender),
		probability: in.Probability,
	}

	decision := Decision{Status: core.StatusOther, Reason: RuleBelowThreshold}
	for _, r := range e.category {
		if r.Match(p) {
			decision.Accepted = r.Accept
			decision.Reason = r.Name
			break
		}
	}
	if !decision.Accepted {
		return decision
	}

	for _, r := range e.status {
		if r.Match(p) {
			decision.Status = r.Status
			break
		}
	}
	decision.AppliedFlag = decision.Status.Applied()
	return decision
}

// ProbabilityFor returns the probability used for the threshold rule. When a
// classifier only produced a label, the label stands in as 0 or 1.
func ProbabilityFor(label *int, probability *float64) float64 {
	if probability != nil {
		return *probability
	}
	if label != nil && *label > 0 {
		return 1
	}
	return 0
}
