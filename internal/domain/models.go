// Package domain provides domain models and business logic for the Nexus paper discovery service.
package domain

// SourceType represents the bibliographic source that provided paper metadata.
type SourceType string

const (
	SourceTypeArXiv    SourceType = "arxiv"
	SourceTypePubMed   SourceType = "pubmed"
	SourceTypeBioRxiv  SourceType = "biorxiv"
	SourceTypeMedRxiv  SourceType = "medrxiv"
	SourceTypeCrossRef SourceType = "crossref"
)

// IsValidSourceType reports whether s is one of the known source types.
func IsValidSourceType(s SourceType) bool {
	switch s {
	case SourceTypeArXiv, SourceTypePubMed, SourceTypeBioRxiv, SourceTypeMedRxiv, SourceTypeCrossRef:
		return true
	default:
		return false
	}
}

// Provenance records where a paper record came from. It replaces the
// historical convention of encoding the origin in the ID prefix.
// These values must match the CHECK constraint on papers.provenance.
type Provenance string

const (
	// ProvenanceSubmission marks papers submitted by users.
	ProvenanceSubmission Provenance = "submission"
	// ProvenanceSeeded marks curated real papers shipped with the service.
	ProvenanceSeeded Provenance = "seeded"
	// ProvenanceGenerated marks synthetic filler papers.
	ProvenanceGenerated Provenance = "generated"
	// ProvenanceAggregator marks papers pulled from a preprint listing.
	ProvenanceAggregator Provenance = "aggregator"
	// ProvenanceDatabase marks papers loaded from the shared database.
	ProvenanceDatabase Provenance = "database"
)

// IsValid reports whether p is a known provenance.
func (p Provenance) IsValid() bool {
	switch p {
	case ProvenanceSubmission, ProvenanceSeeded, ProvenanceGenerated, ProvenanceAggregator, ProvenanceDatabase:
		return true
	default:
		return false
	}
}

// IsGenerated reports whether the paper is synthetic filler.
func (p Provenance) IsGenerated() bool {
	return p == ProvenanceGenerated
}

// RanksAsSubmission reports whether the record sorts with user submissions
// in the "latest" view. The seeded community paper shares that tier.
func (p Provenance) RanksAsSubmission() bool {
	return p == ProvenanceSubmission || p == ProvenanceSeeded
}
