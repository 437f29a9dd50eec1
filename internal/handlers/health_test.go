package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	vectorstore_mocks "kaspabot/internal/vectorstore/mocks"

	"go.uber.org/mock/gomock"
)

func TestHealthHandlerHealthy(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockIndex := vectorstore_mocks.NewMockIndex(ctrl)
	mockIndex.EXPECT().Count(gomock.Any()).Return(1200, nil)

	handler := NewHealthHandler(mockIndex)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("status = %q", resp.Status)
	}
	if resp.Checks["vector_index"] != "ok" {
		t.Errorf("checks = %+v", resp.Checks)
	}
}

func TestHealthHandlerUnhealthy(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockIndex := vectorstore_mocks.NewMockIndex(ctrl)
	mockIndex.EXPECT().Count(gomock.Any()).Return(0, errors.New("connection refused"))

	handler := NewHealthHandler(mockIndex)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp.Status != "unhealthy" {
		t.Errorf("status = %q", resp.Status)
	}
	if len(resp.Issues) == 0 {
		t.Error("issues should be populated when unhealthy")
	}
}

func TestHealthHandlerMethodNotAllowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	handler := NewHealthHandler(vectorstore_mocks.NewMockIndex(ctrl))

	req := httptest.NewRequest(http.MethodPost, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
