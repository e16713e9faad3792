package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestSummaryPromptEndsWithText(t *testing.T) {
	got := SummaryPrompt("Photosynthesis converts light into chemical energy.")
	if !strings.HasSuffix(got, "\n\nPhotosynthesis converts light into chemical energy.") {
		t.Fatalf("prompt does not end with document text: %q", got)
	}
	if !strings.HasPrefix(got, "You are summarizing") {
		t.Fatalf("prompt missing instructions: %q", got)
	}
}

func TestPlaceholderClient(t *testing.T) {
	_, err := PlaceholderClient{}.Summarize(context.Background(), "x")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
