package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"kaspabot/internal/contextutil"
	"kaspabot/internal/service"
)

// AskHandler handles HTTP requests for question answering.
type AskHandler struct {
	answerService service.AnswerService
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(answerService service.AnswerService) *AskHandler {
	return &AskHandler{answerService: answerService}
}

// AskRequest represents the HTTP request payload for questions.
// This mirrors the service.AskRequest but is defined here for HTTP layer separation.
//
// swagger:model AskRequest
type AskRequest struct {
	Question       string `json:"question"`
	ConversationID string `json:"conversation_id,omitempty"`
	UserID         string `json:"user_id,omitempty"`
	K              int    `json:"k,omitempty"`
}

// CitationResponse represents one evidence citation in the HTTP response.
//
// swagger:model CitationResponse
type CitationResponse struct {
	// Origin category of the evidence (corpus partition or "web_search")
	Source string `json:"source"`

	// Section within the source document, if known
	Section string `json:"section,omitempty"`

	// Source filename, if known
	Filename string `json:"filename,omitempty"`

	// Source URL for web evidence
	URL string `json:"url,omitempty"`
}

// AskResponse represents the HTTP response payload for questions.
//
// swagger:model AskResponse
type AskResponse struct {
	// The generated answer
	Answer string `json:"answer"`

	// Evidence citations backing the answer
	Citations []CitationResponse `json:"citations"`

	// Identifier of the conversation this turn belongs to
	ConversationID string `json:"conversation_id"`
}

// ErrorResponse represents an error response.
//
// swagger:model ErrorResponse
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP handles HTTP requests for question answering.
//
// swagger:route POST /api/v1/ask askQuestion
//
// # Ask a question
//
// Answers a question by combining the indexed corpus with live web search.
// Passing a conversation_id continues an existing conversation; omitting it
// starts a new one.
//
// ---
// consumes:
// - application/json
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Successful response with answer and citations
//	  schema:
//	    "$ref": "#/definitions/AskResponse"
//	'400':
//	  description: Bad request (missing question)
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'502':
//	  description: External service error
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'503':
//	  description: Vector store unavailable
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		logger.WarnContext(ctx, "empty question in request")
		writeError(w, http.StatusBadRequest, "Question is required")
		return
	}
	if req.K < 0 {
		req.K = 0
	}

	resp, err := h.answerService.Answer(ctx, service.AskRequest{
		Question:       req.Question,
		ConversationID: req.ConversationID,
		UserID:         req.UserID,
		K:              req.K,
	})
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to answer question")
		return
	}

	citations := make([]CitationResponse, len(resp.Citations))
	for i, c := range resp.Citations {
		citations[i] = CitationResponse{
			Source:   c.Source,
			Section:  c.Section,
			Filename: c.Filename,
			URL:      c.URL,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(AskResponse{
		Answer:         resp.Answer,
		Citations:      citations,
		ConversationID: resp.ConversationID,
	}); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// handleServiceError maps service errors to appropriate HTTP status codes.
func handleServiceError(w http.ResponseWriter, ctx context.Context, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)
	logger.ErrorContext(ctx, "answer service error", "error", err)

	var vErr *service.ValidationError
	if errors.As(err, &vErr) {
		writeError(w, http.StatusBadRequest, vErr.Error())
		return
	}

	errMsg := strings.ToLower(err.Error())

	// Vector store errors -> 503
	if errors.Is(err, service.ErrVectorStore) ||
		strings.Contains(errMsg, "vector store") ||
		strings.Contains(errMsg, "qdrant") ||
		strings.Contains(errMsg, "failed to search") {
		writeError(w, http.StatusServiceUnavailable, "Vector store unavailable")
		return
	}

	// LLM/embedding errors -> 502
	if errors.Is(err, service.ErrExternalService) ||
		strings.Contains(errMsg, "embed") ||
		strings.Contains(errMsg, "llm") ||
		strings.Contains(errMsg, "generation") {
		writeError(w, http.StatusBadGateway, "External service error")
		return
	}

	writeError(w, http.StatusInternalServerError, defaultMsg)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}
