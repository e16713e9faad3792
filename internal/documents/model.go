package documents

import "time"

// TextStatus is the extraction state of a document.
type TextStatus string

const (
	TextStatusNone    TextStatus = "NONE"
	TextStatusPending TextStatus = "PENDING"
	TextStatusReady   TextStatus = "READY"
	TextStatusEmpty   TextStatus = "EMPTY"
	TextStatusError   TextStatus = "ERROR"
)

// Terminal reports whether the status is the outcome of an extraction attempt.
func (s TextStatus) Terminal() bool {
	switch s {
	case TextStatusReady, TextStatusEmpty, TextStatusError:
		return true
	default:
		return false
	}
}

// ParseTextStatus maps a stored value back to a TextStatus, defaulting to NONE.
func ParseTextStatus(raw string) TextStatus {
	switch s := TextStatus(raw); s {
	case TextStatusPending, TextStatusReady, TextStatusEmpty, TextStatusError:
		return s
	default:
		return TextStatusNone
	}
}

// SummaryStatus is derived from the presence of a summary.
type SummaryStatus string

const (
	SummaryStatusNone  SummaryStatus = "NONE"
	SummaryStatusReady SummaryStatus = "READY"
)

// Document is an uploaded PDF plus everything derived from it.
//
// ExtractedText is non-nil exactly when Status is READY or EMPTY.
// SizeBytes always equals len(Content). UserID never changes after creation.
type Document struct {
	ID            string
	UserID        string
	FileName      string
	ContentType   string
	SizeBytes     int64
	Content       []byte
	ExtractedText *string
	Summary       *string
	SummaryError  *string
	PageCount     int
	Encrypted     bool
	Status        TextStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SummaryStatus derives the summary state.
func (d Document) SummaryStatus() SummaryStatus {
	if d.Summary == nil {
		return SummaryStatusNone
	}
	return SummaryStatusReady
}

// SummaryFailed reports whether the stored summary is a failure placeholder.
func (d Document) SummaryFailed() bool {
	return d.Summary != nil && d.SummaryError != nil
}

func (d *Document) applyExtraction(text string, pages int, encrypted bool, now time.Time) {
	d.ExtractedText = &text
	if text == "" {
		d.Status = TextStatusEmpty
	} else {
		d.Status = TextStatusReady
	}
	d.PageCount = pages
	d.Encrypted = encrypted
	d.touch(now)
}

func (d *Document) markExtractionFailed(now time.Time) {
	d.ExtractedText = nil
	d.Status = TextStatusError
	d.touch(now)
}

func (d *Document) applySummary(out summaryOutcome, now time.Time) {
	text := out.render()
	d.Summary = &text
	if out.failed {
		reason := out.reason
		d.SummaryError = &reason
	} else {
		d.SummaryError = nil
	}
	d.touch(now)
}

func (d *Document) touch(now time.Time) {
	if now.Before(d.CreatedAt) {
		now = d.CreatedAt
	}
	if now.Before(d.UpdatedAt) {
		now = d.UpdatedAt
	}
	d.UpdatedAt = now
}
