package httpserver

import (
	"github.com/nexus/paper-discovery-service/internal/assistant"
	"github.com/nexus/paper-discovery-service/internal/domain"
)

// Request and response bodies for JSON serialization.

type resolveRequest struct {
	Input string `json:"input"`
}

type resolveErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
}

type readingListRequest struct {
	PaperID string `json:"paperId"`
}

type readingListResponse struct {
	Items []*domain.Paper `json:"items"`
}

type upvotesResponse struct {
	PaperIDs []string `json:"paperIds"`
}

type chatRequest struct {
	History []assistant.Turn `json:"history"`
	Message string           `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// nonNilPapers keeps empty lists encoded as [] rather than null.
func nonNilPapers(papers []*domain.Paper) []*domain.Paper {
	if papers == nil {
		return []*domain.Paper{}
	}
	return papers
}
