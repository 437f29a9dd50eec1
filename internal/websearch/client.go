// Package websearch retrieves fresh evidence from the public web through a
// grounded generation API and normalizes the output into evidence chunks.
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Client is a client for a Gemini-compatible generateContent API with the
// google_search grounding tool enabled.
type Client struct {
	BaseURL string
	APIKey  string
	Model   string
	client  *http.Client
}

// NewClient creates a new grounded generation client.
func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		client:  http.DefaultClient,
	}
}

type generatePart struct {
	Text string `json:"text"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
	Role  string         `json:"role,omitempty"`
}

type generateTool struct {
	GoogleSearch struct{} `json:"google_search"`
}

// GenerateRequest represents the request payload for generateContent.
type GenerateRequest struct {
	Contents []generateContent `json:"contents"`
	Tools    []generateTool    `json:"tools"`
}

type generateCandidate struct {
	Content generateContent `json:"content"`
}

// GenerateResponse represents the response from the generateContent API.
type GenerateResponse struct {
	Candidates []generateCandidate `json:"candidates"`
}

// GenerateGrounded sends a prompt with web-search grounding enabled and
// returns the raw model text.
func (c *Client) GenerateGrounded(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("no prompt provided")
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.BaseURL, c.Model)

	payload := GenerateRequest{
		Contents: []generateContent{{Parts: []generatePart{{Text: prompt}}}},
		Tools:    []generateTool{{}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	var genResp GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(genResp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned")
	}

	var out string
	for _, part := range genResp.Candidates[0].Content.Parts {
		out += part.Text
	}
	return out, nil
}
