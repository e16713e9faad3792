package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"slidesage-backend/internal/shared/telemetry"
)

// Result is the raw, un-normalized output of a PDF extraction.
type Result struct {
	Text      string
	PageCount int
	Encrypted bool
}

// Extractor turns PDF bytes into plain text.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (Result, error)
}

// PDFExtractor extracts text with github.com/ledongthuc/pdf and inspects
// document structure with pdfcpu. pdfcpu decides whether a document needs a
// password; other inspection problems never fail an extraction.
type PDFExtractor struct {
	// SkipInspect disables the pdfcpu pass.
	SkipInspect bool
}

// NewPDFExtractor constructs a PDFExtractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Extract returns the text of every page in document order, pages separated by a newline.
func (e *PDFExtractor) Extract(ctx context.Context, data []byte) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if len(data) == 0 {
		return Result{}, fail("empty document", nil)
	}

	text, pages, readErr := readText(data)
	if e.SkipInspect {
		if readErr != nil {
			return Result{}, readErr
		}
		return Result{Text: text, PageCount: pages}, nil
	}

	info, err := Inspect(data)
	if err != nil {
		telemetry.Warn("extract.inspect_failed", map[string]any{"error": err.Error()})
		if readErr != nil {
			return Result{}, readErr
		}
		return Result{Text: text, PageCount: pages}, nil
	}
	if info.Locked {
		return Result{}, fail("password protected", readErr)
	}
	if readErr != nil {
		if info.Encrypted {
			return Result{}, fail("unsupported encryption", readErr)
		}
		return Result{}, readErr
	}

	res := Result{Text: text, PageCount: pages, Encrypted: info.Encrypted}
	if res.PageCount == 0 {
		res.PageCount = info.PageCount
	}
	return res, nil
}

func readText(data []byte) (text string, pages int, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, pages = "", 0
			err = fail("parser panic", fmt.Errorf("%v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) {
			return "", 0, fail("password protected", err)
		}
		return "", 0, fail("malformed pdf", err)
	}

	pages = reader.NumPage()
	fonts := make(map[string]*pdf.Font)
	var b strings.Builder
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := page.Font(name)
				fonts[name] = &f
			}
		}
		pageText, err := page.GetPlainText(fonts)
		if err != nil {
			return "", 0, fail(fmt.Sprintf("page %d", i), err)
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(stripNUL(pageText))
	}
	return b.String(), pages, nil
}

// stripNUL drops U+0000, which some fonts decode to and Postgres TEXT rejects.
func stripNUL(s string) string {
	return strings.ReplaceAll(s, "\x00", "")
}
