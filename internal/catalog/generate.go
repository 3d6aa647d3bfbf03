package catalog

import (
	"fmt"
	"time"

	"github.com/nexus/paper-discovery-service/internal/domain"
)

// DefaultGeneratedCount is the number of synthetic papers added at bootstrap.
const DefaultGeneratedCount = 5000

var (
	genAdjectives = []string{"Critical", "Novel", "Systematic", "Unified"}
	genTopics     = []string{"Transformer Architecture", "Quantum Entanglement"}
	genContexts   = []string{"using Deep Learning", "in Low-Resource Settings"}
	genMethods    = []string{"Framework", "Analysis", "Architecture"}
	genCategories = []string{"Machine Learning", "Artificial Intelligence", "Mathematics"}
	genFirstNames = []string{"Arjun", "Meera", "Li", "Elena"}
	genLastNames  = []string{"Menon", "Wang", "Smith", "Patel"}
)

// SeedPapers returns the curated papers shipped with the service.
func SeedPapers() []*domain.Paper {
	return []*domain.Paper{
		{
			ID:         "sub-global-001",
			Provenance: domain.ProvenanceSeeded,
			Title:      "The Impact of Generative AI on Scientific Discovery",
			Authors:    []string{"Nexus Community", "Alex Chen", "Maria Rodriguez"},
			AbstractPreview: "An extensive analysis of how Large Language Models are accelerating " +
				"hypothesis generation and data analysis across biology and physics.",
			Abstract:        "This paper explores the transformative role of Generative AI (GenAI) in the scientific method...",
			PublicationDate: "2025",
			Category:        "Artificial Intelligence",
			DOI:             "10.1038/nexus.2025.001",
			WhyMatters:      "This work is crucial because it documents the paradigm shift currently occurring in science...",
			Upvotes:         128,
			Timestamp:       1740000000000,
		},
	}
}

// Generate builds n synthetic filler papers. Paper i is stamped
// i*10000 seconds before now, so later papers are older.
func Generate(n int, now time.Time) []*domain.Paper {
	if n <= 0 {
		return nil
	}
	base := now.UnixMilli()
	papers := make([]*domain.Paper, 0, n)
	for i := 0; i < n; i++ {
		papers = append(papers, &domain.Paper{
			ID:         fmt.Sprintf("gen-%d", i),
			Provenance: domain.ProvenanceGenerated,
			Title: fmt.Sprintf("%s %s %s: A %s",
				genAdjectives[i%len(genAdjectives)],
				genTopics[i%len(genTopics)],
				genContexts[i%len(genContexts)],
				genMethods[i%len(genMethods)]),
			Authors: []string{
				genFirstNames[i%len(genFirstNames)] + " " + genLastNames[(i+1)%len(genLastNames)],
			},
			AbstractPreview: "Automatically generated research paper...",
			Abstract:        "This is an AI-generated placeholder paper for simulation.",
			PublicationDate: fmt.Sprintf("202%d", i%5),
			Category:        genCategories[i%len(genCategories)],
			DOI:             fmt.Sprintf("10.1038/nx.%d", i),
			WhyMatters:      "Demonstrates scalable AI-driven paper synthesis.",
			Timestamp:       base - int64(i)*10000000,
		})
	}
	return papers
}
