package domain

import (
	"strings"
	"unicode/utf8"
)

// PreviewLength is the number of characters kept in an abstract preview.
const PreviewLength = 150

// Paper is a catalog record. All fields except Upvotes are fixed once the
// record is created.
type Paper struct {
	ID              string     `json:"id"`
	Provenance      Provenance `json:"provenance"`
	Title           string     `json:"title"`
	Authors         []string   `json:"authors"`
	Abstract        string     `json:"abstract"`
	AbstractPreview string     `json:"abstractPreview"`
	PublicationDate string     `json:"publicationDate"`
	Category        string     `json:"category"`
	DOI             string     `json:"doi"`
	WhyMatters      string     `json:"whyMatters"`
	Upvotes         int        `json:"upvotes"`
	Timestamp       int64      `json:"timestamp"`
}

// Metadata is the normalized output of a metadata source.
type Metadata struct {
	Title           string     `json:"title"`
	Abstract        string     `json:"abstract"`
	Authors         []string   `json:"authors"`
	PublicationDate string     `json:"publicationDate"`
	DOI             string     `json:"doi"`
	Category        string     `json:"category"`
	Source          SourceType `json:"source"`
}

// Clone returns a copy of the paper that shares no slices with p.
func (p *Paper) Clone() *Paper {
	if p == nil {
		return nil
	}
	c := *p
	if p.Authors != nil {
		c.Authors = append([]string(nil), p.Authors...)
	}
	return &c
}

// AdjustUpvotes adds delta to the upvote count, never going below zero.
func (p *Paper) AdjustUpvotes(delta int) {
	p.Upvotes += delta
	if p.Upvotes < 0 {
		p.Upvotes = 0
	}
}

// Matches reports whether the lower-cased query occurs in the title, any
// author, the abstract, the category or whyMatters, ignoring case.
func (p *Paper) Matches(lowerQuery string) bool {
	if strings.Contains(strings.ToLower(p.Title), lowerQuery) {
		return true
	}
	for _, a := range p.Authors {
		if strings.Contains(strings.ToLower(a), lowerQuery) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(p.Abstract), lowerQuery) ||
		strings.Contains(strings.ToLower(p.Category), lowerQuery) ||
		strings.Contains(strings.ToLower(p.WhyMatters), lowerQuery)
}

// Preview truncates an abstract to PreviewLength characters and appends an
// ellipsis.
func Preview(abstract string) string {
	if utf8.RuneCountInString(abstract) <= PreviewLength {
		return abstract + "..."
	}
	runes := []rune(abstract)
	return string(runes[:PreviewLength]) + "..."
}
