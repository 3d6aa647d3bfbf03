// Package assistant answers questions about the catalog with a chat model.
//
// A Provider wraps one LLM API (Anthropic, OpenAI or Gemini on Vertex AI).
// Service builds the system instruction from the current catalog snapshot,
// forwards the conversation and turns every failure into a fixed reply, so
// callers always get text back.
package assistant

import "context"

// Conversation roles. "model" is the assistant's role; providers map it to
// their own naming.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Turn is one message of the conversation history.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// ChatRequest is a single exchange sent to a provider.
type ChatRequest struct {
	SystemInstruction string
	History           []Turn
	Message           string
}

// Provider sends a conversation to an LLM and returns the reply text.
type Provider interface {
	Chat(ctx context.Context, req ChatRequest) (string, error)
	Provider() string
	Model() string
}

// normalizeRole maps any role other than "model" to "user".
func normalizeRole(role string) string {
	if role == RoleModel {
		return RoleModel
	}
	return RoleUser
}
