package service

import (
	"testing"

	"github.com/shikshaprep/mocktest-backend/internal/model"
)

func mcq(text, answer string) model.Question {
	return model.Question{
		Question:      text,
		Type:          model.QuestionTypeMCQ,
		Options:       []string{"A", "B", "C", "D"},
		CorrectAnswer: answer,
	}
}

func TestGradeAnswersScoring(t *testing.T) {
	questions := []model.Question{
		mcq("Q1", "A"),
		mcq("Q2", "B"),
	}

	result := GradeAnswers(questions, []string{"A", "X"})

	if result.Score != 50 {
		t.Errorf("expected score 50, got %d", result.Score)
	}
	if result.CorrectAnswers != 1 {
		t.Errorf("expected 1 correct, got %d", result.CorrectAnswers)
	}
	if result.TotalQuestions != 2 {
		t.Errorf("expected 2 total, got %d", result.TotalQuestions)
	}
	if len(result.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(result.Results))
	}
	if !result.Results[0].IsCorrect || result.Results[1].IsCorrect {
		t.Errorf("per-question correctness wrong: %+v", result.Results)
	}
}

func TestGradeAnswersRounding(t *testing.T) {
	// 1 of 3 correct → 33.33 rounds to 33; 2 of 3 → 66.67 rounds to 67.
	questions := []model.Question{mcq("Q1", "A"), mcq("Q2", "B"), mcq("Q3", "C")}

	if got := GradeAnswers(questions, []string{"A", "X", "X"}).Score; got != 33 {
		t.Errorf("1/3: expected 33, got %d", got)
	}
	if got := GradeAnswers(questions, []string{"A", "B", "X"}).Score; got != 67 {
		t.Errorf("2/3: expected 67, got %d", got)
	}
}

func TestGradeAnswersEmptyTest(t *testing.T) {
	result := GradeAnswers(nil, []string{"A"})
	if result.Score != 0 || result.TotalQuestions != 0 {
		t.Errorf("empty test should score 0/0, got %d/%d", result.Score, result.TotalQuestions)
	}
}

func TestGradeAnswersMissingAndExtraAnswers(t *testing.T) {
	questions := []model.Question{mcq("Q1", "A"), mcq("Q2", "B")}

	// Missing trailing answer counts as unattempted.
	result := GradeAnswers(questions, []string{"A"})
	if result.CorrectAnswers != 1 {
		t.Errorf("expected 1 correct with missing answer, got %d", result.CorrectAnswers)
	}
	if result.Results[1].UserAnswer != "" || result.Results[1].IsCorrect {
		t.Errorf("unattempted question should be wrong with empty answer: %+v", result.Results[1])
	}

	// Extra answers are ignored.
	result = GradeAnswers(questions, []string{"A", "B", "C", "D"})
	if result.TotalQuestions != 2 || result.CorrectAnswers != 2 {
		t.Errorf("extra answers should be ignored, got %+v", result)
	}
}

func TestGradeAnswersNormalization(t *testing.T) {
	questions := []model.Question{
		mcq("Q1", "Paris"),
		{
			Question:      "Q2",
			Type:          model.QuestionTypeTrueFalse,
			Options:       []string{"True", "False"},
			CorrectAnswer: "True",
		},
		{
			Question:      "Q3",
			Type:          model.QuestionTypeShortAnswer,
			Options:       []string{},
			CorrectAnswer: "Mitochondria",
		},
	}

	// Case-insensitive for mcq and true-false, whitespace trimmed everywhere.
	result := GradeAnswers(questions, []string{" paris ", "TRUE", " Mitochondria "})
	if result.CorrectAnswers != 3 {
		t.Errorf("expected 3 correct, got %d: %+v", result.CorrectAnswers, result.Results)
	}

	// Short answer stays case-sensitive.
	result = GradeAnswers(questions, []string{"paris", "true", "mitochondria"})
	if result.CorrectAnswers != 2 {
		t.Errorf("short answer must be case-sensitive, got %d correct", result.CorrectAnswers)
	}
}

func TestGradeAnswersEmptyAnswerNeverMatches(t *testing.T) {
	// Even if a generated answer were blank, an empty submission is wrong.
	questions := []model.Question{{
		Question:      "Q1",
		Type:          model.QuestionTypeShortAnswer,
		CorrectAnswer: "x",
	}}
	if GradeAnswers(questions, []string{"   "}).CorrectAnswers != 0 {
		t.Error("whitespace-only answer should not match")
	}
}
