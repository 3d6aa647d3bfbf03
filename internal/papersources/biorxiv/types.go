package biorxiv

// DetailsResponse represents the bioRxiv/medRxiv details API response.
type DetailsResponse struct {
	Messages   []Message `json:"messages"`
	Collection []Item    `json:"collection"`
}

// Message is a status message from the details API.
type Message struct {
	Status string `json:"status"`
}

// Item is one version of a preprint. The details API returns every
// version, oldest first.
type Item struct {
	DOI      string `json:"doi"`
	Title    string `json:"title"`
	Authors  string `json:"authors"` // "Doe, J.; Roe, R."
	Date     string `json:"date"`    // "2020-03-01"
	Version  string `json:"version"`
	Category string `json:"category"`
	Abstract string `json:"abstract"`
	Server   string `json:"server"`
}
