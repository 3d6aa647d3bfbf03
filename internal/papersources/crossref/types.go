package crossref

import "encoding/json"

// WorkResponse is the envelope returned by /works/{doi}.
type WorkResponse struct {
	Status  string `json:"status"`
	Message *Work  `json:"message"`
}

// Work holds the fields of a CrossRef work record that Nexus uses.
type Work struct {
	DOI      string   `json:"DOI"`
	Title    []string `json:"title"`
	Abstract string   `json:"abstract"` // JATS markup
	Author   []Author `json:"author"`
	Issued   DateInfo `json:"issued"`
	Subject  []string `json:"subject"`
}

// Author is a CrossRef contributor.
type Author struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

// DateInfo is a CrossRef partial date, e.g. {"date-parts": [[2017, 6, 12]]}.
// Parts may be null for unknown dates.
type DateInfo struct {
	DateParts [][]json.Number `json:"date-parts"`
}

// Year returns the first date part, or "" when absent.
func (d DateInfo) Year() string {
	if len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 {
		return ""
	}
	return d.DateParts[0][0].String()
}
