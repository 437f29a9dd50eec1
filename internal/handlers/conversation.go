package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"kaspabot/internal/contextutil"
	"kaspabot/internal/export"
	"kaspabot/internal/storage"
)

// maxTranscriptTurns bounds how many turns a single read returns.
const maxTranscriptTurns = 1000

// ConversationHandler handles HTTP requests for conversation management.
type ConversationHandler struct {
	store storage.ConversationStore
}

// NewConversationHandler creates a new ConversationHandler.
func NewConversationHandler(store storage.ConversationStore) *ConversationHandler {
	return &ConversationHandler{store: store}
}

// ConversationSummary represents a conversation in list and detail responses.
//
// swagger:model ConversationSummary
type ConversationSummary struct {
	ConversationID string `json:"conversation_id"`
	Title          string `json:"title,omitempty"`
	UserID         string `json:"user_id,omitempty"`
	CreatedAt      string `json:"created_at"`
	LastUpdated    string `json:"last_updated"`
	MessageCount   int    `json:"message_count"`
}

// ConversationDetail is a summary plus the full message log.
//
// swagger:model ConversationDetail
type ConversationDetail struct {
	ConversationSummary
	Messages []storage.MessageRecord `json:"messages"`
}

func summaryFromRecord(rec storage.ConversationRecord) ConversationSummary {
	return ConversationSummary{
		ConversationID: rec.ID,
		Title:          rec.Title,
		UserID:         rec.UserID,
		CreatedAt:      rec.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		LastUpdated:    rec.LastUpdated.UTC().Format("2006-01-02T15:04:05Z"),
		MessageCount:   rec.MessageCount,
	}
}

// List handles GET /api/v1/conversations.
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	records, err := h.store.List(ctx, r.URL.Query().Get("user_id"), limit)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list conversations", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list conversations")
		return
	}

	summaries := make([]ConversationSummary, len(records))
	for i, rec := range records {
		summaries[i] = summaryFromRecord(rec)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"conversations": summaries}); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// Get handles GET /api/v1/conversations/{id}.
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)
	id := chi.URLParam(r, "id")

	rec, err := h.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Conversation not found")
			return
		}
		logger.ErrorContext(ctx, "failed to load conversation", "conversation_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load conversation")
		return
	}

	messages, err := h.store.ListTurns(ctx, id, maxTranscriptTurns)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load messages", "conversation_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load conversation")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ConversationDetail{
		ConversationSummary: summaryFromRecord(*rec),
		Messages:            messages,
	}); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// Delete handles DELETE /api/v1/conversations/{id}.
func (h *ConversationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)
	id := chi.URLParam(r, "id")

	if err := h.store.Delete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Conversation not found")
			return
		}
		logger.ErrorContext(ctx, "failed to delete conversation", "conversation_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete conversation")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Export handles GET /api/v1/conversations/{id}/export.
func (h *ConversationHandler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)
	id := chi.URLParam(r, "id")

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "markdown"
	}
	exporter, err := export.NewExporter(format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := h.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Conversation not found")
			return
		}
		logger.ErrorContext(ctx, "failed to load conversation", "conversation_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to export conversation")
		return
	}

	messages, err := h.store.ListTurns(ctx, id, maxTranscriptTurns)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load messages", "conversation_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to export conversation")
		return
	}

	w.Header().Set("Content-Type", exporter.ContentType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("conversation-%s.%s", id, exporter.Extension())))

	if err := exporter.Export(&export.Transcript{Conversation: *rec, Messages: messages}, w); err != nil {
		logger.ErrorContext(ctx, "failed to render export", "conversation_id", id, "error", err)
	}
}
