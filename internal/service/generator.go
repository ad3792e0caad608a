package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shikshaprep/mocktest-backend/internal/config"
	"github.com/shikshaprep/mocktest-backend/internal/model"
)

// Generation errors. Service failures (network, API, timeout) and parse
// failures (the model returned something we cannot use) are distinct so the
// stored processing error tells the user which side broke.
var (
	ErrGenerationService = errors.New("ai generation service failed")
	ErrGenerationParse   = errors.New("ai response could not be parsed")
)

// QuestionGenerator turns extracted document text into a mock test.
// Implementations make exactly one attempt; the ingestion worker owns the
// failure handling.
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, text string) (*model.GeneratedTest, error)
}

// NewQuestionGenerator builds the generator selected by cfg.AIProvider.
func NewQuestionGenerator(ctx context.Context, cfg *config.Config) (QuestionGenerator, error) {
	switch cfg.AIProvider {
	case "gemini":
		return NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	case "openai":
		return NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	default:
		return nil, fmt.Errorf("unknown AI provider %q (expected gemini or openai)", cfg.AIProvider)
	}
}

// generationPrompt is the fixed instruction template. The model must answer
// with a bare JSON object: {"duration": "...", "questions": [...]}.
const generationPrompt = `You are an expert in creating mock test questions.
Given the following text from a PDF document, generate a set of diverse mock test questions.
Include Multiple Choice Questions (MCQ), True/False questions, and Short Answer questions.
For MCQs and True/False, provide a correct answer and a brief explanation.
For Short Answer questions, provide a concise correct answer and a brief explanation.

Format your output as a JSON object with a "duration" (time budget to solve these questions, such as "30m" or "1h") and a "questions" array. Each question object must have:
- "question": string (the question text)
- "options": string[] (an array of options for MCQs and True/False, empty for Short Answer)
- "correctAnswer": string (the correct answer)
- "type": "mcq" | "true-false" | "short-answer"
- "explanation": string (a brief explanation for the correct answer)

Ensure the JSON is valid and can be directly parsed. Do NOT include any introductory or concluding text outside the JSON.

PDF Content:
---
%s
---`

func buildGenerationPrompt(text string) string {
	return fmt.Sprintf(generationPrompt, text)
}

// stripCodeFence removes a surrounding ``` or ```json fence the model may
// have wrapped around its JSON reply.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if end := strings.LastIndex(s, "```"); end > 0 {
			s = s[:end]
		}
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

// parseGeneratedTest decodes and validates the model's JSON reply. An empty
// questions array is a failure: the generator never returns success with
// zero questions.
func parseGeneratedTest(raw string) (*model.GeneratedTest, error) {
	cleaned := stripCodeFence(raw)

	var gen model.GeneratedTest
	if err := json.Unmarshal([]byte(cleaned), &gen); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationParse, err)
	}

	if len(gen.Questions) == 0 {
		return nil, fmt.Errorf("%w: no questions in response", ErrGenerationParse)
	}

	for i := range gen.Questions {
		q := &gen.Questions[i]
		if strings.TrimSpace(q.Question) == "" || strings.TrimSpace(q.CorrectAnswer) == "" {
			return nil, fmt.Errorf("%w: question %d is missing text or answer", ErrGenerationParse, i)
		}
		switch q.Type {
		case model.QuestionTypeMCQ, model.QuestionTypeTrueFalse, model.QuestionTypeShortAnswer:
		default:
			return nil, fmt.Errorf("%w: question %d has unknown type %q", ErrGenerationParse, i, q.Type)
		}
		if q.Options == nil {
			q.Options = []string{}
		}
	}

	if gen.Duration == "" {
		gen.Duration = "30m"
	}
	return &gen, nil
}
