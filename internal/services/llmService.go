package services

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// LLMSummarizer produces a short description for a saved page. Behind an
// interface so tests can avoid a real model call.
type LLMSummarizer interface {
	Summarize(ctx context.Context, url, title string) (string, error)
}

type googleAISummarizer struct{}

func NewLLMSummarizer() LLMSummarizer {
	return &googleAISummarizer{}
}

func (g *googleAISummarizer) Summarize(ctx context.Context, url, title string) (string, error) {
	apiKey := os.Getenv("API_KEY")
	if apiKey == "" {
		return "", errors.New("missing api key")
	}

	llm, err := googleai.New(ctx, googleai.WithAPIKey(apiKey), googleai.WithDefaultModel("gemini-2.5-flash"))
	if err != nil {
		return "", fmt.Errorf("failed to create Google AI LLM: %w", err)
	}

	prompt := fmt.Sprintf(
		"You are a bookmark summarizer. Generate a concise summary in Markdown format. "+
			"Use headings, bullets when helpful. Return only Markdown.\n\nTitle: %s\nURL: %s",
		title,
		url,
	)

	summary, err := llms.GenerateFromSinglePrompt(ctx, llm, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate summary from LLM: %w", err)
	}

	return summary, nil
}
