package generation

import "context"

// Message roles accepted by the chat provider.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatProvider produces a reply to a conversation.
type ChatProvider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// ImageRequest describes an image generation.
type ImageRequest struct {
	Prompt     string
	Amount     int
	Resolution string
}

// ImageProvider renders images and returns their URLs.
type ImageProvider interface {
	GenerateImage(ctx context.Context, req ImageRequest) ([]string, error)
}

// SpeechProvider synthesizes speech and returns the audio URL.
type SpeechProvider interface {
	GenerateSpeech(ctx context.Context, text string) (string, error)
}

// VideoOperation identifies an in-flight video generation.
type VideoOperation struct {
	Name string `json:"name"`
}

// VideoStatus reports the state of a video generation.
type VideoStatus struct {
	Done bool     `json:"done"`
	URLs []string `json:"urls,omitempty"`
}

// VideoProvider starts long-running video generations and reports on them.
type VideoProvider interface {
	StartVideo(ctx context.Context, prompt string) (*VideoOperation, error)
	CheckVideo(ctx context.Context, operationName string) (*VideoStatus, error)
}
