package assistant

import (
	"fmt"
	"strings"

	"github.com/nexus/paper-discovery-service/internal/domain"
)

// MaxGeneratedInContext caps the synthetic papers included in the prompt.
const MaxGeneratedInContext = 20

// BuildSystemInstruction describes the library to the model: user
// submissions first, then real papers, then a few generated ones.
func BuildSystemInstruction(papers []*domain.Paper) string {
	var submitted, real, generated []*domain.Paper
	for _, p := range papers {
		switch {
		case p.Provenance.RanksAsSubmission():
			submitted = append(submitted, p)
		case p.Provenance.IsGenerated():
			if len(generated) < MaxGeneratedInContext {
				generated = append(generated, p)
			}
		default:
			real = append(real, p)
		}
	}

	lines := make([]string, 0, len(submitted)+len(real)+len(generated))
	for _, group := range [][]*domain.Paper{submitted, real, generated} {
		for _, p := range group {
			lines = append(lines, fmt.Sprintf("- \"%s\" by %s (%s). Category: %s. Abstract: %s",
				p.Title, strings.Join(p.Authors, ", "), p.PublicationDate, p.Category, p.AbstractPreview))
		}
	}

	var b strings.Builder
	b.WriteString(`You are the Research Assistant for "Nexus", a curated discovery platform for scientific papers.
Your tone is academic, precise, helpful, and concise.

Here is a subset of our current library (User submissions and top papers):
`)
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString(`

Answer user questions about these papers, summarize them, or suggest connections between them.
If asked about topics not in the list, you can provide general scientific knowledge but gently mention you are searching the Nexus database.
Keep answers brief (under 3-4 sentences) to fit the chat UI, unless asked to elaborate.`)

	if len(submitted) > 0 {
		titles := make([]string, len(submitted))
		for i, p := range submitted {
			titles[i] = p.Title
		}
		fmt.Fprintf(&b, "\n\nNote: The user has personally submitted specific papers to the repository (titles: %s). Be especially helpful if they ask about these.",
			strings.Join(titles, ", "))
	}

	return b.String()
}
