package llm

import (
	_ "embed"
	"strings"
)

//go:embed prompts/summary_v1.txt
var summaryPromptV1 string

// SummaryPrompt wraps document text in the summarization instructions.
func SummaryPrompt(text string) string {
	var b strings.Builder
	b.Grow(len(summaryPromptV1) + len(text) + 2)
	b.WriteString(strings.TrimRight(summaryPromptV1, "\n"))
	b.WriteString("\n\n")
	b.WriteString(text)
	return b.String()
}
