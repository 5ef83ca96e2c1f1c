package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Hitanshuser50/ContentFuse/pkg/logger"
)

// EdenAIConfig holds settings for the Eden AI aggregator.
type EdenAIConfig struct {
	APIKey  string        `env:"EDENAI_API_KEY,required"`
	BaseURL string        `env:"EDENAI_BASE_URL" envDefault:"https://api.edenai.run"`
	Timeout time.Duration `env:"EDENAI_TIMEOUT" envDefault:"60s"`

	// Voice used for speech synthesis.
	SpeechVoice string `env:"EDENAI_SPEECH_VOICE" envDefault:"en-US-JennyNeural"`
}

// imageProviders is the fallback order for image generation. Each provider
// is tried until one succeeds.
var imageProviders = []string{"openai", "stabilityai", "replicate"}

// EdenAIClient implements ImageProvider and SpeechProvider against the
// Eden AI REST API.
type EdenAIClient struct {
	cfg    EdenAIConfig
	client *http.Client
	log    *slog.Logger
}

// NewEdenAIClient creates an Eden AI client.
func NewEdenAIClient(cfg EdenAIConfig, log *slog.Logger) (*EdenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &EdenAIClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log,
	}, nil
}

type edenImageResult struct {
	Status string `json:"status"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
	Items []struct {
		ImageResourceURL string `json:"image_resource_url"`
	} `json:"items"`
}

// GenerateImage renders images, falling back across providers until one of
// them returns a result.
func (c *EdenAIClient) GenerateImage(ctx context.Context, req ImageRequest) ([]string, error) {
	if req.Prompt == "" {
		return nil, ErrEmptyPrompt
	}
	if req.Amount <= 0 {
		req.Amount = 1
	}
	if req.Resolution == "" {
		req.Resolution = "512x512"
	}

	var lastErr error
	for _, provider := range imageProviders {
		urls, err := c.generateImageWith(ctx, provider, req)
		if err == nil {
			return urls, nil
		}
		lastErr = err
		c.log.WarnContext(ctx, "image provider failed, trying next",
			logger.Provider(provider),
			logger.Error(err))
	}
	return nil, fmt.Errorf("%w: %w", ErrAllProvidersDown, lastErr)
}

func (c *EdenAIClient) generateImageWith(ctx context.Context, provider string, req ImageRequest) ([]string, error) {
	body := map[string]any{
		"providers":  provider,
		"text":       req.Prompt,
		"resolution": req.Resolution,
		"num_images": req.Amount,
	}

	var out map[string]json.RawMessage
	if err := c.post(ctx, "/v2/image/generation", body, &out); err != nil {
		return nil, err
	}

	raw, ok := out[provider]
	if !ok {
		return nil, fmt.Errorf("no result from provider %s", provider)
	}
	var result edenImageResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("parse %s result: %w", provider, err)
	}
	if result.Status != "success" {
		return nil, fmt.Errorf("provider %s: %s", provider, result.Error.Message)
	}
	if len(result.Items) == 0 {
		return nil, ErrEmptyResponse
	}

	urls := make([]string, 0, len(result.Items))
	for _, item := range result.Items {
		urls = append(urls, item.ImageResourceURL)
	}
	return urls, nil
}

type edenSpeechResult struct {
	Status string `json:"status"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
	AudioResourceURL string `json:"audio_resource_url"`
}

// GenerateSpeech synthesizes the text with the configured neural voice and
// returns the audio URL.
func (c *EdenAIClient) GenerateSpeech(ctx context.Context, text string) (string, error) {
	if text == "" {
		return "", ErrEmptyPrompt
	}

	body := map[string]any{
		"providers": "microsoft",
		"language":  "en-US",
		"option":    "FEMALE",
		"text":      text,
		"settings":  map[string]string{"microsoft": c.cfg.SpeechVoice},
	}

	var out map[string]json.RawMessage
	if err := c.post(ctx, "/v2/audio/text_to_speech", body, &out); err != nil {
		return "", err
	}

	raw, ok := out["microsoft"]
	if !ok {
		return "", ErrEmptyResponse
	}
	var result edenSpeechResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("parse speech result: %w", err)
	}
	if result.Status != "success" {
		return "", fmt.Errorf("speech synthesis failed: %s", result.Error.Message)
	}
	if result.AudioResourceURL == "" {
		return "", ErrEmptyResponse
	}
	return result.AudioResourceURL, nil
}

func (c *EdenAIClient) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("call eden ai: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("eden ai returned %d: %s", resp.StatusCode, msg)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
