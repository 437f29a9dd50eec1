package service

//go:generate go run go.uber.org/mock/mockgen -source=answer.go -destination=mocks/mock_answer.go -package=mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"kaspabot/internal/contextutil"
	"kaspabot/internal/evidence"
	"kaspabot/internal/llm"
	"kaspabot/internal/storage"
)

// LocalRetriever searches the indexed corpus.
// This interface is defined from the service layer's perspective (consumer-first).
type LocalRetriever interface {
	// RetrieveScored returns re-ranked corpus chunks with scores retained.
	RetrieveScored(ctx context.Context, query string, k int) ([]evidence.Chunk, error)
}

// WebRetriever searches the live web.
type WebRetriever interface {
	// Retrieve returns normalized web evidence chunks.
	Retrieve(ctx context.Context, query string, k int) ([]evidence.Chunk, error)
}

// Arbiter fuses the two evidence streams into one answer.
type Arbiter interface {
	Merge(ctx context.Context, question string, history []llm.Message, local, web []evidence.Chunk) (string, error)
}

// DegradedAnswer is stored and returned when every generation path failed.
const DegradedAnswer = "Sorry, I couldn't process your question right now. Please try again."

// maxK caps how many chunks a single request may ask for.
const maxK = 20

// AskRequest represents a question in the domain layer.
type AskRequest struct {
	Question       string `validate:"required"`
	ConversationID string
	UserID         string
	K              int
}

// AskResponse represents the assembled answer.
type AskResponse struct {
	Answer         string
	Citations      []evidence.Citation
	ConversationID string
}

// AnswerService answers questions over the corpus and the live web.
type AnswerService interface {
	// Answer processes one question within a conversation.
	Answer(ctx context.Context, req AskRequest) (AskResponse, error)
}

// answerService implements AnswerService.
type answerService struct {
	local            LocalRetriever
	web              WebRetriever
	arbiter          Arbiter
	store            storage.ConversationStore
	defaultK         int
	maxContextTurns  int
	retrieverTimeout time.Duration
}

// NewAnswerService creates a new AnswerService.
func NewAnswerService(
	local LocalRetriever,
	web WebRetriever,
	arbiter Arbiter,
	store storage.ConversationStore,
	defaultK int,
	maxContextTurns int,
	retrieverTimeout time.Duration,
) AnswerService {
	return &answerService{
		local:            local,
		web:              web,
		arbiter:          arbiter,
		store:            store,
		defaultK:         defaultK,
		maxContextTurns:  maxContextTurns,
		retrieverTimeout: retrieverTimeout,
	}
}

// Answer runs the full question pipeline: conversation bookkeeping, parallel
// retrieval, arbitration, and persistence of both turns.
//
// Retriever and persistence failures degrade instead of failing the call.
// Exactly two append attempts are made per question, whatever happens to
// retrieval or generation in between.
func (s *answerService) Answer(ctx context.Context, req AskRequest) (AskResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if req.Question == "" {
		logger.WarnContext(ctx, "empty question in ask request")
		return AskResponse{}, &ValidationError{
			Field:   "question",
			Message: "cannot be empty",
		}
	}

	k := req.K
	if k <= 0 {
		k = s.defaultK
	}
	if k > maxK {
		k = maxK
	}

	conversationID, err := s.store.Create(ctx, req.ConversationID, "", req.UserID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to create conversation", "error", err)
		conversationID = req.ConversationID
		if conversationID == "" {
			conversationID = uuid.New().String()
		}
	}

	if err := s.store.Append(ctx, conversationID, storage.RoleUser, req.Question, nil); err != nil {
		logger.ErrorContext(ctx, "failed to persist user turn", "conversation_id", conversationID, "error", err)
	}

	history := s.conversationHistory(ctx, conversationID, req.Question)

	local, web := s.retrieveBoth(ctx, req.Question, k)
	logger.InfoContext(ctx, "retrieval completed",
		"conversation_id", conversationID,
		"local_chunks", len(local),
		"web_chunks", len(web),
	)

	answer, err := s.arbiter.Merge(ctx, req.Question, history, local, web)
	if err != nil {
		logger.ErrorContext(ctx, "all generation paths failed", "conversation_id", conversationID, "error", err)
		answer = DegradedAnswer
	}

	citations := buildCitations(local, web)

	var metadata map[string]any
	if len(citations) > 0 {
		metadata = map[string]any{"citations": citations}
	}
	if err := s.store.Append(ctx, conversationID, storage.RoleAssistant, answer, metadata); err != nil {
		logger.ErrorContext(ctx, "failed to persist assistant turn", "conversation_id", conversationID, "error", err)
	}

	logger.InfoContext(ctx, "question answered",
		"conversation_id", conversationID,
		"answer_length", len(answer),
		"citations", len(citations),
	)

	return AskResponse{
		Answer:         answer,
		Citations:      citations,
		ConversationID: conversationID,
	}, nil
}

// conversationHistory loads prior turns for the generation prompt. The turn
// holding the current question was just appended, so it is dropped when it
// shows up as the newest entry.
func (s *answerService) conversationHistory(ctx context.Context, conversationID, question string) []llm.Message {
	logger := contextutil.LoggerFromContext(ctx)

	turns, err := s.store.GetContext(ctx, conversationID, s.maxContextTurns+1)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load conversation context", "conversation_id", conversationID, "error", err)
		return nil
	}

	if n := len(turns); n > 0 && turns[n-1].Role == storage.RoleUser && turns[n-1].Content == question {
		turns = turns[:n-1]
	}
	if len(turns) > s.maxContextTurns {
		turns = turns[:s.maxContextTurns]
	}

	history := make([]llm.Message, 0, len(turns))
	for _, turn := range turns {
		history = append(history, llm.Message{Role: turn.Role, Content: turn.Content})
	}
	return history
}

// retrieveBoth runs the two retrievers concurrently, each under its own
// timeout. A failed retriever contributes an empty chunk set.
func (s *answerService) retrieveBoth(ctx context.Context, question string, k int) (local, web []evidence.Chunk) {
	logger := contextutil.LoggerFromContext(ctx)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		rctx, cancel := context.WithTimeout(ctx, s.retrieverTimeout)
		defer cancel()
		chunks, err := s.local.RetrieveScored(rctx, question, k)
		if err != nil {
			logger.WarnContext(ctx, "local retrieval failed", "error", err)
			return
		}
		local = chunks
	}()

	go func() {
		defer wg.Done()
		rctx, cancel := context.WithTimeout(ctx, s.retrieverTimeout)
		defer cancel()
		chunks, err := s.web.Retrieve(rctx, question, k)
		if err != nil {
			logger.WarnContext(ctx, "web retrieval failed", "error", err)
			return
		}
		web = chunks
	}()

	wg.Wait()
	return local, web
}

// buildCitations collects provenance from whichever chunk sets are non-empty.
func buildCitations(local, web []evidence.Chunk) []evidence.Citation {
	citations := make([]evidence.Citation, 0, len(local)+len(web))
	for _, c := range local {
		citations = append(citations, evidence.CitationFor(c))
	}
	for _, c := range web {
		citations = append(citations, evidence.CitationFor(c))
	}
	return citations
}
