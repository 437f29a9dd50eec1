package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func embeddingsServer(t *testing.T, vectors [][]float64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		resp := EmbeddingsResponse{}
		for _, v := range vectors {
			resp.Data = append(resp.Data, EmbeddingData{Embedding: v})
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestEmbeddingsClient_EmbedText(t *testing.T) {
	server := embeddingsServer(t, [][]float64{{0.1, 0.2, 0.3}})
	defer server.Close()

	client := NewEmbeddingsClient(server.URL, "key", "text-embedding-ada-002", 3)
	vec, err := client.EmbedText(context.Background(), "what is ghostdag")
	if err != nil {
		t.Fatalf("EmbedText() error = %v", err)
	}
	if len(vec) != 3 {
		t.Fatalf("vector length = %d, want 3", len(vec))
	}
	if vec[1] != float32(0.2) {
		t.Errorf("vec[1] = %f, want 0.2", vec[1])
	}
}

func TestEmbeddingsClient_SizeValidation(t *testing.T) {
	server := embeddingsServer(t, [][]float64{{0.1, 0.2}})
	defer server.Close()

	client := NewEmbeddingsClient(server.URL, "key", "model", 3)
	if _, err := client.EmbedText(context.Background(), "text"); err == nil {
		t.Fatal("expected error for vector size mismatch")
	}

	// Zero disables validation.
	client = NewEmbeddingsClient(server.URL, "key", "model", 0)
	if _, err := client.EmbedText(context.Background(), "text"); err != nil {
		t.Fatalf("EmbedText() with validation disabled error = %v", err)
	}
}

func TestEmbeddingsClient_CountMismatch(t *testing.T) {
	server := embeddingsServer(t, [][]float64{{0.1}, {0.2}})
	defer server.Close()

	client := NewEmbeddingsClient(server.URL, "key", "model", 0)
	if _, err := client.EmbedTexts(context.Background(), []string{"only one"}); err == nil {
		t.Fatal("expected error when response count does not match input count")
	}
}

func TestEmbeddingsClient_EmptyInput(t *testing.T) {
	client := NewEmbeddingsClient("http://localhost:0", "key", "model", 0)
	if _, err := client.EmbedTexts(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty input")
	}
}
