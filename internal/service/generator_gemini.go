package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/shikshaprep/mocktest-backend/internal/model"
	"google.golang.org/api/option"
)

// GeminiGenerator generates questions with Google's Gemini models.
type GeminiGenerator struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiGenerator creates a Gemini-backed QuestionGenerator.
func NewGeminiGenerator(ctx context.Context, apiKey, modelName string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	m := client.GenerativeModel(modelName)
	m.ResponseMIMEType = "application/json"

	return &GeminiGenerator{client: client, model: m}, nil
}

// Close releases the underlying client.
func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

// GenerateQuestions sends the extracted text to Gemini and parses its JSON
// reply into a GeneratedTest.
func (g *GeminiGenerator) GenerateQuestions(ctx context.Context, text string) (*model.GeneratedTest, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(buildGenerationPrompt(text)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationService, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("%w: empty response", ErrGenerationService)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}

	return parseGeneratedTest(sb.String())
}
