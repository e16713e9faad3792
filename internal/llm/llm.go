package llm

import (
	"context"
	"errors"
)

// Summarizer produces a short summary of document text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("summarizer not configured")

// PlaceholderClient is wired when no provider credentials are configured.
type PlaceholderClient struct{}

// Summarize returns ErrNotConfigured.
func (PlaceholderClient) Summarize(ctx context.Context, text string) (string, error) {
	_ = ctx
	_ = text
	return "", ErrNotConfigured
}

// SummarizerFunc adapts a function to Summarizer.
type SummarizerFunc func(ctx context.Context, text string) (string, error)

// Summarize calls f.
func (f SummarizerFunc) Summarize(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}
