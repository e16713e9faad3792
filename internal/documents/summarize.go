package documents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"slidesage-backend/internal/shared/metrics"
	"slidesage-backend/internal/shared/telemetry"
	"slidesage-backend/internal/textnorm"
)

const (
	// SummaryInputLimit caps the characters sent to the summarizer.
	SummaryInputLimit = 4000
	// SummaryFailurePrefix starts every stored failure placeholder.
	SummaryFailurePrefix = "summary generation failed: "
)

// summaryOutcome is either generated text or a failure reason.
type summaryOutcome struct {
	text   string
	failed bool
	reason string
}

func summaryOK(text string) summaryOutcome {
	return summaryOutcome{text: text}
}

func summaryErr(reason string) summaryOutcome {
	return summaryOutcome{failed: true, reason: strings.ToValidUTF8(reason, "")}
}

// render produces the stored summary text. Failures keep the placeholder form
// clients already parse.
func (o summaryOutcome) render() string {
	if o.failed {
		return SummaryFailurePrefix + o.reason
	}
	return o.text
}

// Summarize sends the start of a document's extracted text to the summarizer
// and stores the result. A provider failure is stored as a placeholder summary
// rather than returned; only lookup and precondition failures are errors.
func (s *Service) Summarize(ctx context.Context, id, userID string) (Detail, error) {
	doc, err := s.lookup(ctx, id, userID)
	if err != nil {
		return Detail{}, err
	}
	if doc.ExtractedText == nil || textnorm.IsBlank(*doc.ExtractedText) {
		return Detail{}, fmt.Errorf("%w: no extracted text", ErrPreconditionFailed)
	}

	input := truncateRunes(*doc.ExtractedText, SummaryInputLimit, "")

	start := time.Now()
	out := s.callSummarizer(ctx, input)
	metrics.ObserveSummarizeDurationMs(metrics.SinceMillis(start))

	doc.applySummary(out, s.clock())
	// The provider already answered; keep the outcome even if the caller went away.
	saved, err := s.Repo.Save(context.WithoutCancel(ctx), doc)
	if err != nil {
		return Detail{}, fmt.Errorf("save document: %w", err)
	}

	fields := map[string]any{
		"documentId": saved.ID,
		"userId":     saved.UserID,
		"inputChars": len([]rune(input)),
		"tookMs":     time.Since(start).Milliseconds(),
	}
	if out.failed {
		metrics.IncSummaryFailed()
		fields["error"] = out.reason
		telemetry.Warn("documents.summary_failed", fields)
	} else {
		metrics.IncSummaryGenerated()
		telemetry.Info("documents.summarized", fields)
	}
	return ToDetail(saved), nil
}

func (s *Service) callSummarizer(ctx context.Context, input string) (out summaryOutcome) {
	defer func() {
		if r := recover(); r != nil {
			out = summaryErr(fmt.Sprintf("summarizer panic: %v", r))
		}
	}()
	text, err := s.Summarizer.Summarize(ctx, input)
	if err != nil {
		return summaryErr(err.Error())
	}
	return summaryOK(text)
}
