package service

import (
	"errors"
	"testing"
)

func TestExtractTextRejectsEmptyFile(t *testing.T) {
	e := NewTextExtractor()
	if _, err := e.ExtractText(nil); !errors.Is(err, ErrExtraction) {
		t.Errorf("expected ErrExtraction for empty data, got %v", err)
	}
}

func TestExtractTextRejectsNonPDF(t *testing.T) {
	e := NewTextExtractor()
	if _, err := e.ExtractText([]byte("hello, this is plain text")); !errors.Is(err, ErrExtraction) {
		t.Errorf("expected ErrExtraction for non-PDF data, got %v", err)
	}
}

func TestExtractTextRejectsTruncatedPDF(t *testing.T) {
	// Valid magic bytes but no actual document structure.
	e := NewTextExtractor()
	if _, err := e.ExtractText([]byte("%PDF-1.7\ngarbage")); !errors.Is(err, ErrExtraction) {
		t.Errorf("expected ErrExtraction for truncated PDF, got %v", err)
	}
}

func TestCollapseWhitespace(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"a  b\n\nc\td", "a b c d"},
		{"  leading and trailing  ", "leading and trailing"},
		{"\n\t ", ""},
	}
	for _, tc := range cases {
		if got := collapseWhitespace(tc.in); got != tc.want {
			t.Errorf("collapseWhitespace(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
