package asr

import (
	"context"
	"errors"

	apperrors "github.com/killallgit/voicenote-api/pkg/errors"
	openai "github.com/sashabaranov/go-openai"
)

// Request is one transcription call for one audio file
type Request struct {
	FilePath string
	Model    string
	Prompt   string
	Language string
}

// Client sends audio to a speech recognition service
type Client interface {
	Transcribe(ctx context.Context, req Request) (string, error)
}

// OpenAIClient talks to any OpenAI compatible /audio/transcriptions endpoint
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient creates a client for baseURL, e.g. https://api.openai.com/v1
func NewOpenAIClient(apiKey, baseURL string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(cfg)}
}

// Transcribe uploads req.FilePath and returns the recognized text
func (c *OpenAIClient) Transcribe(ctx context.Context, req Request) (string, error) {
	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    req.Model,
		FilePath: req.FilePath,
		Prompt:   req.Prompt,
		Language: req.Language,
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", apperrors.Wrap(err, apperrors.ErrCodeAPITimeout, "transcription request timed out").
				WithDetail("service", "asr")
		}
		return "", apperrors.ExternalServiceError("asr", err)
	}
	return resp.Text, nil
}
