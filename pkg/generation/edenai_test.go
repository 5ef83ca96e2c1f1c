package generation

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEdenClient(t *testing.T, handler http.HandlerFunc) *EdenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewEdenAIClient(EdenAIConfig{
		APIKey:      "test-key",
		BaseURL:     srv.URL,
		Timeout:     5 * time.Second,
		SpeechVoice: "en-US-JennyNeural",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return client
}

func TestNewEdenAIClient(t *testing.T) {
	t.Parallel()

	_, err := NewEdenAIClient(EdenAIConfig{}, slog.Default())
	require.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestGenerateImage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("first provider succeeds", func(t *testing.T) {
		t.Parallel()
		client := newEdenClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v2/image/generation", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "openai", body["providers"])
			assert.Equal(t, "a red fox", body["text"])

			json.NewEncoder(w).Encode(map[string]any{
				"openai": map[string]any{
					"status": "success",
					"items": []map[string]string{
						{"image_resource_url": "https://cdn.test/fox1.png"},
						{"image_resource_url": "https://cdn.test/fox2.png"},
					},
				},
			})
		})

		urls, err := client.GenerateImage(ctx, ImageRequest{Prompt: "a red fox", Amount: 2, Resolution: "512x512"})
		require.NoError(t, err)
		assert.Equal(t, []string{"https://cdn.test/fox1.png", "https://cdn.test/fox2.png"}, urls)
	})

	t.Run("falls back when a provider fails", func(t *testing.T) {
		t.Parallel()
		var calls []string
		client := newEdenClient(t, func(w http.ResponseWriter, r *http.Request) {
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			provider := body["providers"].(string)
			calls = append(calls, provider)

			if provider == "openai" {
				json.NewEncoder(w).Encode(map[string]any{
					"openai": map[string]any{
						"status": "fail",
						"error":  map[string]string{"message": "quota exceeded"},
					},
				})
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				provider: map[string]any{
					"status": "success",
					"items":  []map[string]string{{"image_resource_url": "https://cdn.test/img.png"}},
				},
			})
		})

		urls, err := client.GenerateImage(ctx, ImageRequest{Prompt: "a red fox"})
		require.NoError(t, err)
		assert.Equal(t, []string{"https://cdn.test/img.png"}, urls)
		assert.Equal(t, []string{"openai", "stabilityai"}, calls)
	})

	t.Run("all providers failing reports the last error", func(t *testing.T) {
		t.Parallel()
		client := newEdenClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := client.GenerateImage(ctx, ImageRequest{Prompt: "a red fox"})
		require.ErrorIs(t, err, ErrAllProvidersDown)
	})

	t.Run("empty prompt is rejected without a call", func(t *testing.T) {
		t.Parallel()
		client := newEdenClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("unexpected request")
		})

		_, err := client.GenerateImage(ctx, ImageRequest{})
		require.ErrorIs(t, err, ErrEmptyPrompt)
	})
}

func TestGenerateSpeech(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("returns the audio URL", func(t *testing.T) {
		t.Parallel()
		client := newEdenClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v2/audio/text_to_speech", r.URL.Path)

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "microsoft", body["providers"])
			settings := body["settings"].(map[string]any)
			assert.Equal(t, "en-US-JennyNeural", settings["microsoft"])

			json.NewEncoder(w).Encode(map[string]any{
				"microsoft": map[string]any{
					"status":             "success",
					"audio_resource_url": "https://cdn.test/voice.mp3",
				},
			})
		})

		url, err := client.GenerateSpeech(ctx, "a calm piano melody")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.test/voice.mp3", url)
	})

	t.Run("provider failure surfaces the message", func(t *testing.T) {
		t.Parallel()
		client := newEdenClient(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"microsoft": map[string]any{
					"status": "fail",
					"error":  map[string]string{"message": "voice unavailable"},
				},
			})
		})

		_, err := client.GenerateSpeech(ctx, "hello")
		require.ErrorContains(t, err, "voice unavailable")
	})

	t.Run("empty text is rejected", func(t *testing.T) {
		t.Parallel()
		client := newEdenClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("unexpected request")
		})

		_, err := client.GenerateSpeech(ctx, "")
		require.ErrorIs(t, err, ErrEmptyPrompt)
	})
}
