package catalog

import (
	"sort"
	"strings"

	"github.com/nexus/paper-discovery-service/internal/domain"
)

// SortOption selects the catalog ordering.
type SortOption string

const (
	// SortUpvotes orders by upvotes, most first.
	SortUpvotes SortOption = "upvotes"
	// SortLatest puts submissions first, then real papers, then generated
	// filler, each tier newest first.
	SortLatest SortOption = "latest"
)

// AllCategories is the category filter value that matches every paper.
const AllCategories = "All"

// DefaultPageSize is the page size used when a query does not set one.
const DefaultPageSize = 20

// MaxPageSize caps the page size of a query.
const MaxPageSize = 200

// DefaultCategories are always offered as filters, even when no paper
// carries them yet.
var DefaultCategories = []string{
	AllCategories,
	"Machine Learning",
	"Artificial Intelligence",
	"Natural Language Processing",
	"Distributed Systems",
	"Cyber Security",
	"Physics",
	"Biology",
	"Mathematics",
	"Information Theory",
	"Social Science",
}

// ParseSortOption maps a query parameter to a SortOption. Unknown or empty
// values fall back to SortUpvotes.
func ParseSortOption(s string) SortOption {
	if SortOption(strings.ToLower(strings.TrimSpace(s))) == SortLatest {
		return SortLatest
	}
	return SortUpvotes
}

// Query describes a catalog listing request.
type Query struct {
	Category string
	Search   string
	Sort     SortOption
	Page     int
	PageSize int
}

// Page is one page of query results.
type Page struct {
	Papers   []*domain.Paper `json:"papers"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
	HasMore  bool            `json:"hasMore"`
}

// applyDefaults normalizes paging and sort fields.
func (q *Query) applyDefaults() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	if q.Sort == "" {
		q.Sort = SortUpvotes
	}
}

// Run filters, searches, sorts and pages the snapshot.
func (s *Snapshot) Run(q Query) Page {
	q.applyDefaults()

	result := FilterCategory(s.papers, q.Category)
	result = Search(result, q.Search)
	Sort(result, q.Sort)

	papers, hasMore := Paginate(result, q.Page, q.PageSize)
	return Page{
		Papers:   papers,
		Total:    len(result),
		Page:     q.Page,
		PageSize: q.PageSize,
		HasMore:  hasMore,
	}
}

// FilterCategory returns the papers whose category equals category. An
// empty category or AllCategories returns a copy of papers.
func FilterCategory(papers []*domain.Paper, category string) []*domain.Paper {
	if category == "" || category == AllCategories {
		return append([]*domain.Paper(nil), papers...)
	}
	out := make([]*domain.Paper, 0)
	for _, p := range papers {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Search returns the papers matching query, case-insensitively, in title,
// any author, abstract, category or whyMatters. A blank query matches all.
func Search(papers []*domain.Paper, query string) []*domain.Paper {
	if strings.TrimSpace(query) == "" {
		return papers
	}
	q := strings.ToLower(query)
	out := make([]*domain.Paper, 0)
	for _, p := range papers {
		if p.Matches(q) {
			out = append(out, p)
		}
	}
	return out
}

// Sort orders papers in place.
func Sort(papers []*domain.Paper, option SortOption) {
	if option == SortLatest {
		sort.SliceStable(papers, func(i, j int) bool { return lessLatest(papers[i], papers[j]) })
		return
	}
	sort.SliceStable(papers, func(i, j int) bool { return lessUpvotes(papers[i], papers[j]) })
}

func lessUpvotes(a, b *domain.Paper) bool {
	if a.Upvotes != b.Upvotes {
		return a.Upvotes > b.Upvotes
	}
	return a.ID < b.ID
}

func lessLatest(a, b *domain.Paper) bool {
	subA, subB := a.Provenance.RanksAsSubmission(), b.Provenance.RanksAsSubmission()
	if subA != subB {
		return subA
	}
	genA, genB := a.Provenance.IsGenerated(), b.Provenance.IsGenerated()
	if genA != genB {
		return !genA
	}
	if a.Timestamp != b.Timestamp {
		return a.Timestamp > b.Timestamp
	}
	return a.ID < b.ID
}

// Paginate returns the 1-based page of size pageSize and whether more
// papers follow it.
func Paginate(papers []*domain.Paper, page, pageSize int) ([]*domain.Paper, bool) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	// Compare page counts before multiplying so huge page numbers cannot
	// overflow the offset.
	if len(papers) == 0 || page-1 > (len(papers)-1)/pageSize {
		return []*domain.Paper{}, false
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	if end > len(papers) {
		end = len(papers)
	}
	return papers[start:end], end < len(papers)
}

// Categories returns DefaultCategories merged with every category present
// in papers, AllCategories first and the rest sorted.
func Categories(papers []*domain.Paper) []string {
	seen := make(map[string]struct{}, len(DefaultCategories))
	for _, c := range DefaultCategories {
		seen[c] = struct{}{}
	}
	for _, p := range papers {
		seen[p.Category] = struct{}{}
	}
	delete(seen, AllCategories)
	delete(seen, "")

	out := make([]string, 0, len(seen)+1)
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return append([]string{AllCategories}, out...)
}
