package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// VeoConfig holds settings for the Veo video model.
type VeoConfig struct {
	APIKey  string        `env:"GEMINI_API_KEY,required"`
	BaseURL string        `env:"VEO_BASE_URL" envDefault:"https://generativelanguage.googleapis.com"`
	Model   string        `env:"VEO_MODEL" envDefault:"veo-2.0-generate-001"`
	Timeout time.Duration `env:"VEO_TIMEOUT" envDefault:"30s"`
}

// VeoClient implements VideoProvider. Video generation is long-running:
// StartVideo returns an operation name and the caller polls CheckVideo
// until it reports done.
type VeoClient struct {
	cfg    VeoConfig
	client *http.Client
}

// NewVeoClient creates a Veo client.
func NewVeoClient(cfg VeoConfig) (*VeoClient, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &VeoClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// StartVideo kicks off a video generation and returns its operation name.
func (c *VeoClient) StartVideo(ctx context.Context, prompt string) (*VideoOperation, error) {
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	body := map[string]any{
		"instances": []map[string]any{{"prompt": prompt}},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:predictLongRunning", c.cfg.BaseURL, c.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)

	var out struct {
		Name string `json:"name"`
	}
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	if out.Name == "" {
		return nil, ErrEmptyResponse
	}
	return &VideoOperation{Name: out.Name}, nil
}

// CheckVideo polls a generation operation and returns the video URLs once
// it completes.
func (c *VeoClient) CheckVideo(ctx context.Context, operationName string) (*VideoStatus, error) {
	if operationName == "" || (!strings.HasPrefix(operationName, "models/") && !strings.HasPrefix(operationName, "operations/")) {
		return nil, ErrOperationNotFound
	}

	url := fmt.Sprintf("%s/v1beta/%s", c.cfg.BaseURL, operationName)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)

	var out struct {
		Done     bool `json:"done"`
		Response struct {
			GenerateVideoResponse struct {
				GeneratedSamples []struct {
					Video struct {
						URI string `json:"uri"`
					} `json:"video"`
				} `json:"generatedSamples"`
			} `json:"generateVideoResponse"`
		} `json:"response"`
	}
	if err := c.do(req, &out); err != nil {
		return nil, err
	}

	status := &VideoStatus{Done: out.Done}
	for _, sample := range out.Response.GenerateVideoResponse.GeneratedSamples {
		if sample.Video.URI != "" {
			status.URLs = append(status.URLs, sample.Video.URI)
		}
	}
	return status, nil
}

func (c *VeoClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)
}

func (c *VeoClient) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("call veo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrOperationNotFound
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("veo returned %d: %s", resp.StatusCode, msg)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
