package generation

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
)

// GeminiConfig holds Vertex AI settings for the chat provider.
type GeminiConfig struct {
	ProjectID   string  `env:"GOOGLE_CLOUD_PROJECT,required"`
	Location    string  `env:"GOOGLE_CLOUD_LOCATION" envDefault:"us-central1"`
	Model       string  `env:"GEMINI_MODEL" envDefault:"gemini-1.5-pro"`
	Temperature float32 `env:"GEMINI_TEMPERATURE" envDefault:"0.7"`
	MaxTokens   int32   `env:"GEMINI_MAX_TOKENS" envDefault:"1000"`
}

// GeminiClient implements ChatProvider on Vertex AI.
type GeminiClient struct {
	client *genai.Client
	cfg    GeminiConfig
}

// NewGeminiClient connects to Vertex AI. Credentials come from the
// environment via application default credentials.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.ProjectID == "" {
		return nil, ErrMissingProject
	}

	client, err := genai.NewClient(ctx, cfg.ProjectID, cfg.Location)
	if err != nil {
		return nil, fmt.Errorf("create vertex ai client: %w", err)
	}
	return &GeminiClient{client: client, cfg: cfg}, nil
}

// Chat sends the conversation to Gemini and returns the reply. All messages
// but the last become chat history; the last one is the prompt.
func (c *GeminiClient) Chat(ctx context.Context, messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", ErrEmptyConversation
	}

	model := c.client.GenerativeModel(c.cfg.Model)
	model.SetTemperature(c.cfg.Temperature)
	model.SetMaxOutputTokens(c.cfg.MaxTokens)

	chat := model.StartChat()
	chat.History = toHistory(messages[:len(messages)-1])

	prompt := messages[len(messages)-1].Content
	resp, err := chat.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini call failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}

// Close releases the underlying connection.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// toHistory converts chat messages to Gemini content. Gemini names the
// assistant role "model".
func toHistory(messages []Message) []*genai.Content {
	history := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}
	return history
}
