package assistant

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
)

const defaultVertexModel = "gemini-2.5-flash"

// VertexConfig holds the parameters needed to create a Gemini provider on
// Vertex AI. Credentials come from Application Default Credentials.
type VertexConfig struct {
	ProjectID string
	Location  string
	Model     string
}

// VertexProvider implements Provider using Gemini through Vertex AI.
type VertexProvider struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewVertexProvider connects to Vertex AI.
func NewVertexProvider(ctx context.Context, cfg VertexConfig, temperature float64) (*VertexProvider, error) {
	if cfg.ProjectID == "" || cfg.Location == "" {
		return nil, fmt.Errorf("vertex: project ID and location are required")
	}
	client, err := genai.NewClient(ctx, cfg.ProjectID, cfg.Location)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = defaultVertexModel
	}
	return &VertexProvider{client: client, model: model, temperature: float32(temperature)}, nil
}

// Chat starts a chat session seeded with the history and sends the message.
func (p *VertexProvider) Chat(ctx context.Context, req ChatRequest) (string, error) {
	model := p.client.GenerativeModel(p.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(req.SystemInstruction)},
	}
	model.GenerationConfig = genai.GenerationConfig{
		Temperature: genai.Ptr(p.temperature),
	}

	session := model.StartChat()
	session.History = vertexHistory(req.History)

	resp, err := session.SendMessage(ctx, genai.Text(req.Message))
	if err != nil {
		return "", fmt.Errorf("vertex: send message: %w", err)
	}
	return responseText(resp), nil
}

// Provider returns the provider name.
func (p *VertexProvider) Provider() string {
	return "vertex"
}

// Model returns the model identifier being used.
func (p *VertexProvider) Model() string {
	return p.model
}

// Close releases the Vertex AI client.
func (p *VertexProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

func vertexHistory(turns []Turn) []*genai.Content {
	history := make([]*genai.Content, 0, len(turns))
	for _, turn := range turns {
		history = append(history, &genai.Content{
			Role:  normalizeRole(turn.Role),
			Parts: []genai.Part{genai.Text(turn.Text)},
		})
	}
	return history
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String()
}
