package api

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"document-qa/internal/models"
	"document-qa/pkg/response"
)

const maxRequestBytes = 1 << 20

// Asker answers a single question.
type Asker interface {
	Ask(ctx context.Context, question string) (string, error)
}

type Handler struct {
	asker   Asker
	service string
}

// NewHandler returns the chat handler. service names the backend in the
// health-check message.
func NewHandler(asker Asker, service string) *Handler {
	return &Handler{asker: asker, service: service}
}

// Health handles GET /
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]string{"message": h.service + " is running"})
}

// Chat handles POST and GET /chat
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	if !isJSON(r.Header.Get("Content-Type")) {
		response.Error(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	var req models.ChatRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		logger.Warn().Err(err).Msg("Invalid chat request body")
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.Error(w, http.StatusBadRequest, "request body too large")
			return
		}
		response.Error(w, http.StatusBadRequest, "request body must be a JSON object")
		return
	}

	answer, err := h.asker.Ask(ctx, req.Question)
	switch {
	case err == nil:
	case errors.Is(err, models.ErrInvalidRequest):
		response.Error(w, http.StatusBadRequest, "question is required")
		return
	case errors.Is(err, models.ErrNotReady):
		response.Error(w, http.StatusServiceUnavailable, "service is not ready")
		return
	default:
		logger.Error().Err(err).Msg("Failed to answer question")
		response.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	response.Success(w, models.ChatResponse{Answer: answer})
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
