package service

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"github.com/shikshaprep/mocktest-backend/internal/model"
)

// OpenAIGenerator generates questions with OpenAI chat models.
type OpenAIGenerator struct {
	client    *openai.Client
	modelName string
}

// NewOpenAIGenerator creates an OpenAI-backed QuestionGenerator.
func NewOpenAIGenerator(apiKey, modelName string) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY is not set")
	}
	return &OpenAIGenerator{
		client:    openai.NewClient(apiKey),
		modelName: modelName,
	}, nil
}

// GenerateQuestions sends the extracted text to the chat completion API and
// parses the JSON reply into a GeneratedTest.
func (g *OpenAIGenerator) GenerateQuestions(ctx context.Context, text string) (*model.GeneratedTest, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an expert mock test question generator. Reply with valid JSON only.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildGenerationPrompt(text),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationService, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrGenerationService)
	}

	return parseGeneratedTest(resp.Choices[0].Message.Content)
}
