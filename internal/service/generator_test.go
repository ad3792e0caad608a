package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/shikshaprep/mocktest-backend/internal/model"
)

const validReply = `{
	"duration": "45m",
	"questions": [
		{
			"question": "What is the capital of France?",
			"options": ["Paris", "London", "Berlin", "Madrid"],
			"correctAnswer": "Paris",
			"type": "mcq",
			"explanation": "Paris is the capital of France."
		},
		{
			"question": "The Earth is flat.",
			"options": ["True", "False"],
			"correctAnswer": "False",
			"type": "true-false",
			"explanation": "The Earth is an oblate spheroid."
		}
	]
}`

func TestParseGeneratedTest(t *testing.T) {
	gen, err := parseGeneratedTest(validReply)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gen.Duration != "45m" {
		t.Errorf("expected duration 45m, got %q", gen.Duration)
	}
	if len(gen.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(gen.Questions))
	}
	if gen.Questions[0].Type != model.QuestionTypeMCQ {
		t.Errorf("expected mcq, got %q", gen.Questions[0].Type)
	}
}

func TestParseGeneratedTestWithCodeFence(t *testing.T) {
	for _, fence := range []string{
		"```json\n" + validReply + "\n```",
		"```\n" + validReply + "\n```",
	} {
		gen, err := parseGeneratedTest(fence)
		if err != nil {
			t.Fatalf("fenced reply failed: %v", err)
		}
		if len(gen.Questions) != 2 {
			t.Errorf("expected 2 questions, got %d", len(gen.Questions))
		}
	}
}

func TestParseGeneratedTestDefaultDuration(t *testing.T) {
	gen, err := parseGeneratedTest(`{"questions": [
		{"question": "Q", "options": [], "correctAnswer": "A", "type": "short-answer", "explanation": ""}
	]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gen.Duration != "30m" {
		t.Errorf("expected default duration 30m, got %q", gen.Duration)
	}
	if gen.Questions[0].Options == nil {
		t.Error("options should be normalized to an empty slice")
	}
}

func TestParseGeneratedTestRejectsBadReplies(t *testing.T) {
	cases := map[string]string{
		"not json":       "I could not generate questions, sorry!",
		"empty object":   `{}`,
		"zero questions": `{"duration": "30m", "questions": []}`,
		"missing answer": `{"questions": [{"question": "Q", "options": [], "correctAnswer": "", "type": "mcq"}]}`,
		"missing text":   `{"questions": [{"question": " ", "options": [], "correctAnswer": "A", "type": "mcq"}]}`,
		"unknown type":   `{"questions": [{"question": "Q", "options": [], "correctAnswer": "A", "type": "essay"}]}`,
	}

	for name, raw := range cases {
		if _, err := parseGeneratedTest(raw); !errors.Is(err, ErrGenerationParse) {
			t.Errorf("%s: expected ErrGenerationParse, got %v", name, err)
		}
	}
}

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{`{"a":1}`, `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tc := range cases {
		if got := stripCodeFence(tc.in); got != tc.want {
			t.Errorf("stripCodeFence(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBuildGenerationPromptEmbedsText(t *testing.T) {
	prompt := buildGenerationPrompt("PHOTOSYNTHESIS NOTES")
	if !strings.Contains(prompt, "PHOTOSYNTHESIS NOTES") {
		t.Error("prompt must embed the document text")
	}
	if !strings.Contains(prompt, "correctAnswer") {
		t.Error("prompt must describe the expected JSON shape")
	}
}
