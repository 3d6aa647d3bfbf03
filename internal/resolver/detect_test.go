package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nexus/paper-discovery-service/internal/domain"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected domain.SourceType
	}{
		{"bare arxiv id", "1706.03762", domain.SourceTypeArXiv},
		{"bare arxiv id with version", "2301.12345v2", domain.SourceTypeArXiv},
		{"arxiv abs url", "https://arxiv.org/abs/1706.03762", domain.SourceTypeArXiv},
		{"arxiv id with surrounding space", "  1706.03762 ", domain.SourceTypeArXiv},
		{"arxiv url mixed case", "https://ArXiv.org/abs/1706.03762", domain.SourceTypeArXiv},
		{"pmid", "35000000", domain.SourceTypePubMed},
		{"pubmed url", "https://pubmed.ncbi.nlm.nih.gov/35000000/", domain.SourceTypePubMed},
		{"biorxiv url", "https://www.biorxiv.org/content/10.1101/2020.01.01.123456v1", domain.SourceTypeBioRxiv},
		{"medrxiv url", "https://www.medrxiv.org/content/10.1101/2021.11.30.21267012v1", domain.SourceTypeMedRxiv},
		{"bare doi", "10.1038/nature14539", domain.SourceTypeCrossRef},
		{"bare doi uppercase suffix", "10.1145/3292500.3330701", domain.SourceTypeCrossRef},
		{"rxiv doi", "10.1101/2020.01.01.123456", domain.SourceTypeCrossRef},
		{"doi.org url", "https://doi.org/10.1038/nature14539", domain.SourceTypeCrossRef},
		{"doi.org url upper case", "HTTPS://DOI.ORG/10.1038/nature14539", domain.SourceTypeCrossRef},
		{"seven digits", "3500000", ""},
		{"free text", "attention is all you need", ""},
		{"empty", "", ""},
		{"doi with space", "10.1038/ nature", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Detect(tt.input))
		})
	}
}

func TestDetect_BareArxivPatternAlwaysArxiv(t *testing.T) {
	for _, in := range []string{"0704.0001", "1501.00001", "2412.99999v12", "9999.9999"} {
		assert.Equal(t, domain.SourceTypeArXiv, Detect(in), in)
	}
}

func TestPlan(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []domain.SourceType
	}{
		{"arxiv", "1706.03762", []domain.SourceType{domain.SourceTypeArXiv}},
		{"pubmed", "35000000", []domain.SourceType{domain.SourceTypePubMed}},
		{
			"rxiv doi tries three sources",
			"10.1101/2020.01.01.123456",
			[]domain.SourceType{domain.SourceTypeBioRxiv, domain.SourceTypeMedRxiv, domain.SourceTypeCrossRef},
		},
		{
			"biorxiv url with doi uses chain",
			"https://www.biorxiv.org/content/10.1101/2020.01.01.123456v2",
			[]domain.SourceType{domain.SourceTypeBioRxiv, domain.SourceTypeMedRxiv, domain.SourceTypeCrossRef},
		},
		{"biorxiv url without doi", "https://www.biorxiv.org/content/early/recent", []domain.SourceType{domain.SourceTypeCrossRef}},
		{"medrxiv url without doi", "https://www.medrxiv.org/about", []domain.SourceType{domain.SourceTypeCrossRef}},
		{"generic doi", "10.1038/nature14539", []domain.SourceType{domain.SourceTypeCrossRef}},
		{"undetected doi prefix", "10.1038/ nature", []domain.SourceType{domain.SourceTypeCrossRef}},
		{"undetected", "hello world", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Plan(tt.input))
		})
	}
}
