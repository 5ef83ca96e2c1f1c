// Package generation exposes the AI generation endpoints. Every endpoint
// runs behind authentication and the free-quota gate; completed generations
// by unsubscribed users are charged to their counter.
package generation

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Hitanshuser50/ContentFuse/pkg/auth"
	"github.com/Hitanshuser50/ContentFuse/pkg/gate"
	gen "github.com/Hitanshuser50/ContentFuse/pkg/generation"
	"github.com/Hitanshuser50/ContentFuse/pkg/logger"
)

// Handler serves the generation endpoints.
type Handler struct {
	gate   *gate.Gate
	chat   gen.ChatProvider
	image  gen.ImageProvider
	speech gen.SpeechProvider
	video  gen.VideoProvider
	log    *slog.Logger
}

// NewHandler creates the generation handler.
func NewHandler(g *gate.Gate, chat gen.ChatProvider, image gen.ImageProvider, speech gen.SpeechProvider, video gen.VideoProvider, log *slog.Logger) *Handler {
	return &Handler{
		gate:   g,
		chat:   chat,
		image:  image,
		speech: speech,
		video:  video,
		log:    log,
	}
}

// authorize runs the gate for the authenticated user and writes the refusal
// when the request may not proceed. The returned ok reports whether the
// handler should continue.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request) (userID string, res gate.Result, ok bool) {
	userID, found := auth.UserIDFromContext(r.Context())
	if !found {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return "", gate.Result{}, false
	}

	res, err := h.gate.Authorize(r.Context(), userID)
	if err != nil {
		h.log.ErrorContext(r.Context(), "authorization check failed",
			logger.UserID(userID),
			logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "could not verify your plan, please retry")
		return "", gate.Result{}, false
	}
	if res.Decision == gate.DecisionDenyQuotaExceeded {
		writeError(w, http.StatusForbidden, "free_trial_exhausted", "free trial has expired, please upgrade to pro")
		return "", gate.Result{}, false
	}
	return userID, res, true
}

// charge records one completed generation for unsubscribed users. A write
// failure is logged and returned so the handler answers 500: an uncharged
// generation must not look like a successful metered one.
func (h *Handler) charge(r *http.Request, userID string, res gate.Result) error {
	if res.Entitled {
		return nil
	}
	if err := h.gate.RecordUsage(r.Context(), userID); err != nil {
		h.log.ErrorContext(r.Context(), "failed to charge generation",
			logger.UserID(userID),
			logger.Error(err))
		return err
	}
	return nil
}

type conversationRequest struct {
	Messages []gen.Message `json:"messages"`
}

// Conversation handles POST /api/conversation.
func (h *Handler) Conversation(w http.ResponseWriter, r *http.Request) {
	var req conversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "messages are required")
		return
	}

	userID, res, ok := h.authorize(w, r)
	if !ok {
		return
	}

	reply, err := h.chat.Chat(r.Context(), req.Messages)
	if err != nil {
		h.log.ErrorContext(r.Context(), "conversation failed",
			logger.UserID(userID),
			logger.Error(err))
		writeError(w, http.StatusInternalServerError, "provider_error", "conversation failed, please retry")
		return
	}

	if err := h.charge(r, userID, res); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "could not record the generation, please retry")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"role":    gen.RoleAssistant,
		"content": reply,
	})
}

type imageRequest struct {
	Prompt     string `json:"prompt"`
	Amount     int    `json:"amount"`
	Resolution string `json:"resolution"`
}

// Image handles POST /api/image.
func (h *Handler) Image(w http.ResponseWriter, r *http.Request) {
	var req imageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "prompt is required")
		return
	}

	userID, res, ok := h.authorize(w, r)
	if !ok {
		return
	}

	urls, err := h.image.GenerateImage(r.Context(), gen.ImageRequest{
		Prompt:     req.Prompt,
		Amount:     req.Amount,
		Resolution: req.Resolution,
	})
	if err != nil {
		h.log.ErrorContext(r.Context(), "image generation failed",
			logger.UserID(userID),
			logger.Error(err))
		writeError(w, http.StatusInternalServerError, "provider_error", "image generation failed, please retry")
		return
	}

	if err := h.charge(r, userID, res); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "could not record the generation, please retry")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"urls": urls})
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

// Music handles POST /api/music.
func (h *Handler) Music(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "prompt is required")
		return
	}

	userID, res, ok := h.authorize(w, r)
	if !ok {
		return
	}

	audioURL, err := h.speech.GenerateSpeech(r.Context(), req.Prompt)
	if err != nil {
		h.log.ErrorContext(r.Context(), "audio generation failed",
			logger.UserID(userID),
			logger.Error(err))
		writeError(w, http.StatusInternalServerError, "provider_error", "audio generation failed, please retry")
		return
	}

	if err := h.charge(r, userID, res); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "could not record the generation, please retry")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"audio": audioURL})
}

// Video handles POST /api/video. Video generation is reserved for
// subscribers; the free tier never covers it.
func (h *Handler) Video(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "prompt is required")
		return
	}

	userID, res, ok := h.authorize(w, r)
	if !ok {
		return
	}
	if !res.Entitled {
		writeError(w, http.StatusForbidden, "pro_required", "video generation requires a pro subscription")
		return
	}

	op, err := h.video.StartVideo(r.Context(), req.Prompt)
	if err != nil {
		h.log.ErrorContext(r.Context(), "video generation failed",
			logger.UserID(userID),
			logger.Error(err))
		writeError(w, http.StatusInternalServerError, "provider_error", "video generation failed, please retry")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"operation": op.Name})
}

// VideoStatus handles GET /api/video/status.
func (h *Handler) VideoStatus(w http.ResponseWriter, r *http.Request) {
	operation := r.URL.Query().Get("operation")
	if operation == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "operation is required")
		return
	}
	if _, found := auth.UserIDFromContext(r.Context()); !found {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	status, err := h.video.CheckVideo(r.Context(), operation)
	if err != nil {
		if errors.Is(err, gen.ErrOperationNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "unknown video operation")
			return
		}
		h.log.ErrorContext(r.Context(), "video status check failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "provider_error", "video status check failed, please retry")
		return
	}

	writeJSON(w, http.StatusOK, status)
}

// Usage handles GET /api/usage, reporting the counter the dashboard shows.
func (h *Handler) Usage(w http.ResponseWriter, r *http.Request) {
	userID, found := auth.UserIDFromContext(r.Context())
	if !found {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	res, err := h.gate.Authorize(r.Context(), userID)
	if err != nil {
		h.log.ErrorContext(r.Context(), "usage lookup failed",
			logger.UserID(userID),
			logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "could not load usage")
		return
	}

	count, limit, err := h.gate.Snapshot(r.Context(), userID)
	if err != nil {
		h.log.ErrorContext(r.Context(), "usage lookup failed",
			logger.UserID(userID),
			logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "could not load usage")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":  count,
		"limit":  limit,
		"is_pro": res.Entitled,
	})
}
