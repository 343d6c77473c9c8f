package errors

import (
	"fmt"
	"testing"
)

func TestCorpusError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *CorpusError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(CategoryConfig, SeverityFatal, "configuration invalid"),
			expected: "config (fatal): configuration invalid",
		},
		{
			name:     "error with cause",
			err:      Wrap(fmt.Errorf("file not found"), CategoryParse, SeverityError, "failed to read source"),
			expected: "parse (error): failed to read source: file not found",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := test.err.Error()
			if result != test.expected {
				t.Errorf("Error() = %q, want %q", result, test.expected)
			}
		})
	}
}

func TestCorpusError_WithContext(t *testing.T) {
	err := New(CategoryConvert, SeverityWarning, "milestone insertion skipped").
		WithContext("path", "book.txt").
		WithContext("stage", "milestones")

	if err.Context == nil {
		t.Fatal("Context should not be nil")
	}
	if err.Context["path"] != "book.txt" {
		t.Errorf("Context[path] = %v, want book.txt", err.Context["path"])
	}
	if err.Context["stage"] != "milestones" {
		t.Errorf("Context[stage] = %v, want milestones", err.Context["stage"])
	}
}

func TestCorpusError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := WriteFailed("out.txt", cause)

	if !Is(err, cause) {
		t.Error("wrapped cause should be reachable through Is")
	}

	var cerr *CorpusError
	if !As(err, &cerr) {
		t.Fatal("As should find the CorpusError")
	}
	if cerr.Category != CategoryFileSystem {
		t.Errorf("Category = %v, want %v", cerr.Category, CategoryFileSystem)
	}
}

func TestCorpusError_IsFatal(t *testing.T) {
	if !ConfigNotFound("missing.yaml").IsFatal() {
		t.Error("ConfigNotFound should be fatal")
	}
	if MetadataMissing("title").IsFatal() {
		t.Error("MetadataMissing should not be fatal")
	}
	if MetadataMissing("title").Severity != SeverityWarning {
		t.Error("MetadataMissing should be a warning")
	}
}
