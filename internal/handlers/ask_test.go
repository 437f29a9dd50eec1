package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kaspabot/internal/evidence"
	"kaspabot/internal/service"
	"kaspabot/internal/service/mocks"

	"go.uber.org/mock/gomock"
)

func TestAskHandlerSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockAnswerService(ctrl)
	mockSvc.EXPECT().
		Answer(gomock.Any(), service.AskRequest{
			Question:       "what is ghostdag",
			ConversationID: "conv-1",
			UserID:         "alice",
			K:              3,
		}).
		Return(service.AskResponse{
			Answer: "an ordering protocol",
			Citations: []evidence.Citation{
				{Source: "whitepaper", Section: "GHOSTDAG"},
				{Source: evidence.SourceWeb, URL: "https://example.com"},
			},
			ConversationID: "conv-1",
		}, nil)

	handler := NewAskHandler(mockSvc)

	body := `{"question": "what is ghostdag", "conversation_id": "conv-1", "user_id": "alice", "k": 3}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp AskResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Answer != "an ordering protocol" {
		t.Errorf("answer = %q", resp.Answer)
	}
	if resp.ConversationID != "conv-1" {
		t.Errorf("conversation id = %q", resp.ConversationID)
	}
	if len(resp.Citations) != 2 {
		t.Fatalf("len(citations) = %d, want 2", len(resp.Citations))
	}
	if resp.Citations[1].URL != "https://example.com" {
		t.Errorf("citation url = %q", resp.Citations[1].URL)
	}
}

func TestAskHandlerMethodNotAllowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	handler := NewAskHandler(mocks.NewMockAnswerService(ctrl))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ask", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestAskHandlerInvalidBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	handler := NewAskHandler(mocks.NewMockAnswerService(ctrl))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAskHandlerEmptyQuestion(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	handler := NewAskHandler(mocks.NewMockAnswerService(ctrl))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", strings.NewReader(`{"question": "  "}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAskHandlerErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", &service.ValidationError{Field: "question", Message: "cannot be empty"}, http.StatusBadRequest},
		{"vector store", service.WrapError(service.ErrVectorStore, "failed to search"), http.StatusServiceUnavailable},
		{"external service", service.WrapError(service.ErrExternalService, "failed to embed question"), http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockSvc := mocks.NewMockAnswerService(ctrl)
			mockSvc.EXPECT().
				Answer(gomock.Any(), gomock.Any()).
				Return(service.AskResponse{}, tc.err)

			handler := NewAskHandler(mockSvc)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", strings.NewReader(`{"question": "q"}`))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
		})
	}
}
