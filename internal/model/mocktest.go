package model

import (
	"time"

	"github.com/google/uuid"
)

// TestStatus enumerates the lifecycle states of a mock test.
// A test is created as "processing" and moves exactly once to a terminal
// state; terminal states never revert.
type TestStatus string

const (
	TestStatusProcessing TestStatus = "processing"
	TestStatusCompleted  TestStatus = "completed"
	TestStatusFailed     TestStatus = "failed"
)

// IsTerminal reports whether no further automatic transition can occur.
func (s TestStatus) IsTerminal() bool {
	return s == TestStatusCompleted || s == TestStatusFailed
}

// QuestionType enumerates the kinds of generated questions.
type QuestionType string

const (
	QuestionTypeMCQ         QuestionType = "mcq"
	QuestionTypeTrueFalse   QuestionType = "true-false"
	QuestionTypeShortAnswer QuestionType = "short-answer"
)

// Question is one generated quiz question, embedded in a MockTest.
// Options is empty for short-answer questions.
type Question struct {
	Question      string       `json:"question"`
	Type          QuestionType `json:"type"`
	Options       []string     `json:"options"`
	CorrectAnswer string       `json:"correctAnswer"`
	Explanation   string       `json:"explanation,omitempty"`
}

// MockTest represents one uploaded document and its generated test.
type MockTest struct {
	ID               uuid.UUID  `json:"id"`
	UserID           int        `json:"-"`
	Name             string     `json:"name"`
	OriginalFileName string     `json:"original_file_name"`
	FilePath         string     `json:"-"`
	Status           TestStatus `json:"status"`
	Questions        []Question `json:"questions"`
	Duration         *string    `json:"duration,omitempty"`
	LastTakenAt      *time.Time `json:"last_taken_at,omitempty"`
	Score            *int       `json:"score,omitempty"`
	ProcessingError  *string    `json:"processing_error,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// TestSummary is the dashboard listing shape (no question bodies).
type TestSummary struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	OriginalFileName string     `json:"original_file_name"`
	QuestionCount    int        `json:"question_count"`
	Status           TestStatus `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	LastTakenAt      *time.Time `json:"last_taken_at,omitempty"`
	Score            *int       `json:"score,omitempty"`
	ProcessingError  *string    `json:"processing_error,omitempty"`
}

// TestPayload is the cacheable test-taking payload for a completed test.
type TestPayload struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Duration  *string    `json:"duration,omitempty"`
	Status    TestStatus `json:"status"`
	Questions []Question `json:"questions"`
}

// SubmitAnswersRequest is the payload for submitting a test attempt.
// Answers are positional: answers[i] corresponds to questions[i]; missing
// trailing positions count as unattempted.
type SubmitAnswersRequest struct {
	Answers []string `json:"answers" binding:"required"`
}

// QuestionResult is the per-question breakdown of a graded attempt.
type QuestionResult struct {
	Question      string `json:"question"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
	Explanation   string `json:"explanation,omitempty"`
}

// SubmissionResult is the graded outcome of a test attempt.
type SubmissionResult struct {
	Score          int              `json:"score"`
	CorrectAnswers int              `json:"correctAnswers"`
	TotalQuestions int              `json:"totalQuestions"`
	Results        []QuestionResult `json:"results"`
}

// GeneratedTest is the validated output of the question generator.
type GeneratedTest struct {
	Duration  string     `json:"duration"`
	Questions []Question `json:"questions"`
}
