package resolver

import (
	"regexp"
	"strings"

	"github.com/nexus/paper-discovery-service/internal/domain"
)

var (
	arxivIDPattern  = regexp.MustCompile(`^\d{4}\.\d{4,5}(v\d+)?$`)
	pmidPattern     = regexp.MustCompile(`^\d{8}$`)
	bareDOIPattern  = regexp.MustCompile(`(?i)^10\.\d{4,9}/[-._;()/:a-zA-Z0-9]+$`)
	rxivDOIFragment = "10.1101/"
)

// detectionRule maps a predicate to a source. Host tokens are matched
// against the lower-cased input and patterns against the input as given.
type detectionRule struct {
	source domain.SourceType
	match  func(input, lower string) bool
}

// detectionRules are evaluated in order; the first match wins.
var detectionRules = []detectionRule{
	{domain.SourceTypeArXiv, func(s, lower string) bool {
		return strings.Contains(lower, "arxiv.org") || arxivIDPattern.MatchString(s)
	}},
	{domain.SourceTypePubMed, func(s, lower string) bool {
		return strings.Contains(lower, "pubmed") || pmidPattern.MatchString(s)
	}},
	{domain.SourceTypeBioRxiv, func(_, lower string) bool {
		return strings.Contains(lower, "biorxiv.org")
	}},
	{domain.SourceTypeMedRxiv, func(_, lower string) bool {
		return strings.Contains(lower, "medrxiv.org")
	}},
	{domain.SourceTypeCrossRef, func(s, lower string) bool {
		return bareDOIPattern.MatchString(s) || strings.Contains(lower, "doi.org")
	}},
}

// Detect classifies an identifier or URL. It returns "" when no rule
// matches.
func Detect(input string) domain.SourceType {
	input = strings.TrimSpace(input)
	lower := strings.ToLower(input)
	for _, rule := range detectionRules {
		if rule.match(input, lower) {
			return rule.source
		}
	}
	return ""
}

// Plan returns the ordered list of sources Resolve tries for input. An
// empty plan means the input cannot be resolved automatically.
func Plan(input string) []domain.SourceType {
	input = strings.TrimSpace(input)
	detected := Detect(input)

	switch detected {
	case domain.SourceTypeArXiv, domain.SourceTypePubMed:
		return []domain.SourceType{detected}
	}

	if strings.Contains(input, rxivDOIFragment) {
		return []domain.SourceType{domain.SourceTypeBioRxiv, domain.SourceTypeMedRxiv, domain.SourceTypeCrossRef}
	}

	// A preprint-server URL without a 10.1101 DOI has nothing the details
	// API can look up, so it is treated as a generic DOI.
	switch detected {
	case domain.SourceTypeBioRxiv, domain.SourceTypeMedRxiv, domain.SourceTypeCrossRef:
		return []domain.SourceType{domain.SourceTypeCrossRef}
	}

	if strings.HasPrefix(input, "10.") {
		return []domain.SourceType{domain.SourceTypeCrossRef}
	}
	return nil
}
