package documents

import (
	"time"
	"unicode/utf8"
)

const (
	// PreviewLimit is the number of characters shown before the preview is cut.
	PreviewLimit = 600
	previewMark  = "…"
)

// ListItem is the list-view projection of a document.
type ListItem struct {
	ID          string    `json:"id"`
	FileName    string    `json:"filename"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Size        int64     `json:"size"`
	ContentType string    `json:"contentType"`
}

// Detail is the detail-view projection of a document.
type Detail struct {
	ID             string        `json:"id"`
	FileName       string        `json:"filename"`
	TextStatus     TextStatus    `json:"textStatus"`
	ExtractedChars int           `json:"extractedChars"`
	Preview        string        `json:"preview"`
	PageCount      int           `json:"pageCount"`
	Encrypted      bool          `json:"encrypted"`
	UpdatedAt      time.Time     `json:"updatedAt"`
	Summary        *string       `json:"summary"`
	SummaryStatus  SummaryStatus `json:"summaryStatus"`
	SummaryFailed  bool          `json:"summaryFailed"`
	ContentType    string        `json:"contentType"`
	Size           int64         `json:"size"`
}

// ToListItem builds the list projection.
func ToListItem(doc Document) ListItem {
	return ListItem{
		ID:          doc.ID,
		FileName:    doc.FileName,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
		Size:        doc.SizeBytes,
		ContentType: doc.ContentType,
	}
}

// ToDetail builds the detail projection. ExtractedChars counts the full text.
func ToDetail(doc Document) Detail {
	d := Detail{
		ID:            doc.ID,
		FileName:      doc.FileName,
		TextStatus:    doc.Status,
		PageCount:     doc.PageCount,
		Encrypted:     doc.Encrypted,
		UpdatedAt:     doc.UpdatedAt,
		Summary:       doc.Summary,
		SummaryStatus: doc.SummaryStatus(),
		SummaryFailed: doc.SummaryFailed(),
		ContentType:   doc.ContentType,
		Size:          doc.SizeBytes,
	}
	if d.TextStatus == "" {
		d.TextStatus = TextStatusNone
	}
	if doc.ExtractedText != nil {
		d.ExtractedChars = utf8.RuneCountInString(*doc.ExtractedText)
		d.Preview = Preview(*doc.ExtractedText)
	}
	return d
}

// Preview returns text unchanged up to PreviewLimit characters, otherwise the
// first PreviewLimit characters followed by an ellipsis.
func Preview(text string) string {
	return truncateRunes(text, PreviewLimit, previewMark)
}

func truncateRunes(s string, limit int, mark string) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i] + mark
		}
		n++
	}
	return s
}
