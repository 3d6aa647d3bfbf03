package resolver

import (
	"errors"
	"strings"

	"github.com/nexus/paper-discovery-service/internal/domain"
)

// User-facing messages shown when a resolution fails. Each one leaves
// manual entry available to the caller.
const (
	UndetectedMessage = "Could not detect source type. Please use Manual Entry."
	RxivChainMessage  = "Paper details not found on bioRxiv, medRxiv, or CrossRef."
	NotFoundMessage   = "Paper not found. Please check the ID/URL."
	NetworkMessage    = "Network error. Please try again or use Manual Entry."
	GenericMessage    = "Failed to fetch paper details."
)

// UserMessage selects the message shown for a failed resolution of input.
// Rules are checked in order and the first one that applies wins.
func UserMessage(input string, err error) string {
	if err == nil {
		return ""
	}
	if strings.Contains(input, rxivDOIFragment) {
		return RxivChainMessage
	}

	text := err.Error()
	switch {
	case strings.Contains(strings.ToLower(text), "not found"):
		return NotFoundMessage
	case strings.Contains(text, "CORS"), strings.Contains(text, "Network"):
		return NetworkMessage
	case errors.Is(err, domain.ErrUndetected):
		return UndetectedMessage
	default:
		return GenericMessage
	}
}
