// Package pubmed resolves PubMed identifiers through the NCBI E-utilities
// efetch endpoint.
//
// The E-utilities API documentation is available at:
// https://www.ncbi.nlm.nih.gov/books/NBK25499/
package pubmed

import (
	"encoding/xml"
	"strings"
)

// PubmedArticleSet represents the response from the efetch.fcgi endpoint.
type PubmedArticleSet struct {
	XMLName  xml.Name        `xml:"PubmedArticleSet"`
	Articles []PubmedArticle `xml:"PubmedArticle"`
}

// PubmedArticle represents a single article in the PubMed database.
type PubmedArticle struct {
	MedlineCitation MedlineCitation `xml:"MedlineCitation"`
}

// MedlineCitation contains the core bibliographic information.
type MedlineCitation struct {
	PMID    string  `xml:"PMID"`
	Article Article `xml:"Article"`
}

// Article contains the article metadata.
type Article struct {
	Journal      Journal     `xml:"Journal"`
	ArticleTitle TextContent `xml:"ArticleTitle"`
	Abstract     *Abstract   `xml:"Abstract,omitempty"`
	AuthorList   *AuthorList `xml:"AuthorList,omitempty"`
}

// Journal contains journal information.
type Journal struct {
	JournalIssue JournalIssue `xml:"JournalIssue"`
	Title        string       `xml:"Title,omitempty"`
}

// JournalIssue contains the publication date.
type JournalIssue struct {
	PubDate PubDate `xml:"PubDate"`
}

// PubDate represents the publication date which may have various formats.
type PubDate struct {
	Year        string `xml:"Year,omitempty"`
	MedlineDate string `xml:"MedlineDate,omitempty"`
}

// Abstract contains the article abstract, which may have multiple sections.
type Abstract struct {
	AbstractTexts []TextContent `xml:"AbstractText"`
}

// AuthorList contains the list of authors.
type AuthorList struct {
	Authors []Author `xml:"Author"`
}

// Author represents an article author. Collective authors carry only
// CollectiveName.
type Author struct {
	LastName       string `xml:"LastName,omitempty"`
	ForeName       string `xml:"ForeName,omitempty"`
	Initials       string `xml:"Initials,omitempty"`
	CollectiveName string `xml:"CollectiveName,omitempty"`
}

// TextContent collects all character data inside an element, including
// the text of nested inline markup such as <i> or <sup>.
type TextContent string

// UnmarshalXML implements xml.Unmarshaler.
func (t *TextContent) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var sb strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch v := tok.(type) {
		case xml.CharData:
			sb.Write(v)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	*t = TextContent(sb.String())
	return nil
}

// String returns the collected text.
func (t TextContent) String() string {
	return string(t)
}
