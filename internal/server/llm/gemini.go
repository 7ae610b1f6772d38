// Package llm wraps the single text-generation call used by the summary mail.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// ErrEmptyResponse is returned when the model answers without any text.
var ErrEmptyResponse = errors.New("empty response")

// BlockedError reports a prompt refused by the model's safety filters.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("prompt blocked: %s", e.Reason)
}

// seams for tests
var (
	newGenaiClient = genai.NewClient

	generateContent = func(ctx context.Context, c *genai.Client, model string, contents []*genai.Content) (*genai.GenerateContentResponse, error) {
		return c.Models.GenerateContent(ctx, model, contents, nil)
	}
)

type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: api key is empty")
	}
	c, err := newGenaiClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	return &GeminiClient{client: c, model: model}, nil
}

// Generate sends prompt as a single user turn and returns the text answer.
func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := generateContent(ctx, g.client, g.model, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	return responseText(resp)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", ErrEmptyResponse
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
		return "", &BlockedError{Reason: string(fb.BlockReason)}
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
