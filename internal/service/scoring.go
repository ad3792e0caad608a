package service

import (
	"math"
	"strings"

	"github.com/shikshaprep/mocktest-backend/internal/model"
)

// GradeAnswers grades a positional answer list against a test's questions.
// answers[i] corresponds to questions[i]; missing trailing positions count as
// unattempted (and therefore wrong). Extra answers beyond the question count
// are ignored.
//
// Comparison rule: both sides are trimmed; mcq and true-false compare
// case-insensitively (option casing is presentation, not meaning), while
// short-answer compares case-sensitively.
func GradeAnswers(questions []model.Question, answers []string) model.SubmissionResult {
	total := len(questions)
	results := make([]model.QuestionResult, 0, total)

	correct := 0
	for i, q := range questions {
		var userAnswer string
		if i < len(answers) {
			userAnswer = answers[i]
		}

		isCorrect := answerMatches(q, userAnswer)
		if isCorrect {
			correct++
		}

		results = append(results, model.QuestionResult{
			Question:      q.Question,
			UserAnswer:    userAnswer,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     isCorrect,
			Explanation:   q.Explanation,
		})
	}

	// Guard: a test with zero questions scores 0, never divides by zero.
	score := 0
	if total > 0 {
		score = int(math.Round(float64(correct) / float64(total) * 100))
	}

	return model.SubmissionResult{
		Score:          score,
		CorrectAnswers: correct,
		TotalQuestions: total,
		Results:        results,
	}
}

func answerMatches(q model.Question, userAnswer string) bool {
	got := strings.TrimSpace(userAnswer)
	want := strings.TrimSpace(q.CorrectAnswer)
	if got == "" {
		return false
	}
	if q.Type == model.QuestionTypeShortAnswer {
		return got == want
	}
	return strings.EqualFold(got, want)
}
