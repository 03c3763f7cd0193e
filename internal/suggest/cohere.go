// Package suggest generates question-title suggestions through the Cohere
// text-generation API.
package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const generateURL = "https://api.cohere.ai/v1/generate"

type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: generateURL,
		http:    &http.Client{Timeout: 20 * time.Second},
	}
}

type generateRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Generations []struct {
		Text string `json:"text"`
	} `json:"generations"`
}

// SuggestTitle asks the model for a short title for the given draft text.
func (c *Client) SuggestTitle(ctx context.Context, prompt string) (string, error) {
	reqBody, _ := json.Marshal(generateRequest{
		Model:       "command",
		Prompt:      prompt,
		MaxTokens:   60,
		Temperature: 0.7,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("cohere request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("cohere generate failed: status %d", resp.StatusCode)
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("cohere response: %w", err)
	}
	if len(result.Generations) == 0 {
		return "", fmt.Errorf("cohere returned no generations")
	}
	return strings.TrimSpace(result.Generations[0].Text), nil
}
