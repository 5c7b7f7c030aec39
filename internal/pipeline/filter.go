package pipeline

import (
	"regexp"
	"strings"

	"github.com/trajectory-labs/pathways-cli/internal/model"
)

// Verdict is a relevance rule's decision about one search result.
type Verdict int

const (
	// VerdictNeutral means the rule has no opinion; later rules decide.
	VerdictNeutral Verdict = iota
	// VerdictKeep accepts the result outright.
	VerdictKeep
	// VerdictReject discards the result outright.
	VerdictReject
)

// RelevanceRule judges one search result against the profile. Rules run in
// order; the first non-neutral verdict wins. A result left neutral by every
// rule is rejected.
type RelevanceRule func(text string, p model.Profile) Verdict

// institutionalNoise matches structural junk that is never a career story:
// handbooks, course catalogs, policy documents, press releases.
var institutionalNoise = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bhandbook\b`),
	regexp.MustCompile(`(?i)\b(course|academic|college|program)\s+catalog`),
	regexp.MustCompile(`(?i)\bpolic(y|ies)\b`),
	regexp.MustCompile(`(?i)\bpress\s+release\b`),
	regexp.MustCompile(`(?i)\baccreditation\b`),
	regexp.MustCompile(`(?i)\btuition\b`),
}

// offTopicMarkers are narrow technical phrases that signal the result is
// about the technology itself rather than a career in it. They only reject
// when the profile's own text never mentions them.
var offTopicMarkers = []string{
	"quantum computing",
	"quantum mechanics",
	"deep learning architecture",
	"neural network training",
	"particle physics",
}

// careerKeywords mark a result as career-related on their own.
var careerKeywords = []string{
	"job",
	"career",
	"internship",
	"entry level",
	"entry-level",
	"hiring",
	"resume",
	"interview",
	"salary",
	"became a",
	"how i got",
}

// RejectInstitutionalNoise rejects results matching any institutional-noise
// pattern regardless of profile content.
func RejectInstitutionalNoise(text string, _ model.Profile) Verdict {
	for _, re := range institutionalNoise {
		if re.MatchString(text) {
			return VerdictReject
		}
	}
	return VerdictNeutral
}

// RejectOffTopicMarkers rejects results carrying narrow technical markers the
// user never mentioned themselves.
func RejectOffTopicMarkers(text string, p model.Profile) Verdict {
	own := p.OwnText()
	for _, marker := range offTopicMarkers {
		if strings.Contains(text, marker) && !strings.Contains(own, marker) {
			return VerdictReject
		}
	}
	return VerdictNeutral
}

// KeepCareerRelevant keeps results containing a career keyword or sharing a
// token of at least three characters with the user's interests.
func KeepCareerRelevant(text string, p model.Profile) Verdict {
	for _, kw := range careerKeywords {
		if strings.Contains(text, kw) {
			return VerdictKeep
		}
	}
	for _, token := range interestTokens(p.Interests) {
		if strings.Contains(text, token) {
			return VerdictKeep
		}
	}
	return VerdictNeutral
}

// interestTokens splits the free-text interests field into lowercase tokens
// of at least three characters.
func interestTokens(interests string) []string {
	fields := strings.FieldsFunc(strings.ToLower(interests), func(r rune) bool {
		return r == ' ' || r == ',' || r == ';' || r == '/' || r == '.'
	})
	var tokens []string
	for _, f := range fields {
		if len(f) >= 3 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// DefaultRules returns the hand-tuned default rule set in evaluation order.
// The lists are illustrative defaults, swappable without touching the
// orchestrator.
func DefaultRules() []RelevanceRule {
	return []RelevanceRule{
		RejectInstitutionalNoise,
		RejectOffTopicMarkers,
		KeepCareerRelevant,
	}
}

// FilterResults applies the rules to each result's concatenated
// title+snippet+url text and returns the surviving subset in order.
func FilterResults(results []model.SearchResult, p model.Profile, rules []RelevanceRule) []model.SearchResult {
	kept := make([]model.SearchResult, 0, len(results))
	for _, r := range results {
		text := strings.ToLower(r.Title + " " + r.Snippet + " " + r.URL)
		verdict := VerdictNeutral
		for _, rule := range rules {
			if v := rule(text, p); v != VerdictNeutral {
				verdict = v
				break
			}
		}
		if verdict == VerdictKeep {
			kept = append(kept, r)
		}
	}
	return kept
}
