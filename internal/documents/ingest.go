package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"slidesage-backend/internal/extract"
	"slidesage-backend/internal/shared/metrics"
	"slidesage-backend/internal/shared/storage/object"
	"slidesage-backend/internal/shared/telemetry"
	"slidesage-backend/internal/textnorm"
)

const contentTypePDF = "application/pdf"

// Upload is a file handed over by the transport layer.
type Upload struct {
	Body        io.Reader
	Size        int64 // declared size; negative when unknown
	ContentType string
	FileName    string
	UserID      string
}

// Ingest validates an upload, extracts and normalizes its text, and stores
// exactly one record. Nothing is stored when any step fails.
func (s *Service) Ingest(ctx context.Context, up Upload) (Detail, error) {
	if up.Body == nil || up.Size == 0 {
		return Detail{}, fmt.Errorf("%w: no file uploaded", ErrInvalidInput)
	}
	if !IsPDF(up.ContentType) {
		return Detail{}, fmt.Errorf("%w: unsupported type", ErrInvalidInput)
	}
	if strings.TrimSpace(up.UserID) == "" {
		return Detail{}, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}

	data, err := io.ReadAll(up.Body)
	if err != nil {
		return Detail{}, fmt.Errorf("%w: %w", ErrIO, err)
	}
	if len(data) == 0 {
		return Detail{}, fmt.Errorf("%w: no file uploaded", ErrInvalidInput)
	}

	res, err := s.extract(ctx, data)
	if err != nil {
		telemetry.Error("documents.extraction_failed", map[string]any{
			"userId":   up.UserID,
			"fileName": up.FileName,
			"size":     len(data),
			"error":    err.Error(),
		})
		return Detail{}, err
	}

	now := s.clock()
	doc := Document{
		ID:          s.id(),
		UserID:      up.UserID,
		FileName:    up.FileName,
		ContentType: up.ContentType,
		SizeBytes:   int64(len(data)),
		Content:     data,
		Status:      TextStatusNone,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	doc.applyExtraction(textnorm.Normalize(res.Text), res.PageCount, res.Encrypted, now)

	saved, err := s.Repo.Save(ctx, doc)
	if err != nil {
		return Detail{}, fmt.Errorf("save document: %w", err)
	}
	s.archive(ctx, saved)

	metrics.IncDocumentsIngested()
	telemetry.Info("documents.ingested", map[string]any{
		"documentId": saved.ID,
		"userId":     saved.UserID,
		"textStatus": string(saved.Status),
		"pages":      saved.PageCount,
		"size":       saved.SizeBytes,
	})
	return ToDetail(saved), nil
}

// Reprocess re-runs extraction over a stored document. A parser failure is
// recorded on the document as ERROR before ErrExtractionFailed is returned.
func (s *Service) Reprocess(ctx context.Context, id, userID string) (Detail, error) {
	doc, err := s.lookup(ctx, id, userID)
	if err != nil {
		return Detail{}, err
	}
	if !IsPDF(doc.ContentType) {
		return Detail{}, fmt.Errorf("%w: unsupported type", ErrInvalidInput)
	}
	if len(doc.Content) == 0 {
		return Detail{}, fmt.Errorf("%w: document has no content", ErrInvalidInput)
	}

	res, extractErr := s.extract(ctx, doc.Content)
	if extractErr != nil {
		if !errors.Is(extractErr, ErrExtractionFailed) {
			return Detail{}, extractErr
		}
		prev := doc.Status
		doc.markExtractionFailed(s.clock())
		if _, err := s.Repo.Save(context.WithoutCancel(ctx), doc); err != nil {
			return Detail{}, fmt.Errorf("save document: %w", err)
		}
		telemetry.Error("documents.extraction_failed", map[string]any{
			"documentId": doc.ID,
			"userId":     doc.UserID,
			"from":       string(prev),
			"to":         string(doc.Status),
			"error":      extractErr.Error(),
		})
		return Detail{}, extractErr
	}

	prev := doc.Status
	doc.applyExtraction(textnorm.Normalize(res.Text), res.PageCount, res.Encrypted, s.clock())
	saved, err := s.Repo.Save(ctx, doc)
	if err != nil {
		return Detail{}, fmt.Errorf("save document: %w", err)
	}
	s.archive(ctx, saved)

	telemetry.Info("documents.reprocessed", map[string]any{
		"documentId": saved.ID,
		"from":       string(prev),
		"to":         string(saved.Status),
	})
	return ToDetail(saved), nil
}

// IsPDF reports whether a declared content type names a PDF, ignoring case and parameters.
func IsPDF(contentType string) bool {
	mediaType := strings.TrimSpace(strings.Split(contentType, ";")[0])
	return strings.EqualFold(mediaType, contentTypePDF)
}

func (s *Service) extract(ctx context.Context, data []byte) (extract.Result, error) {
	res, err := s.Extractor.Extract(ctx, data)
	if err == nil {
		return res, nil
	}
	if errors.Is(err, extract.ErrExtractionFailed) {
		metrics.IncExtractionFailed()
		return extract.Result{}, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}
	return extract.Result{}, err
}

func (s *Service) archive(ctx context.Context, doc Document) {
	if s.Archive == nil || doc.ExtractedText == nil {
		return
	}
	key := object.ExtractedTextKey(doc.UserID, doc.ID)
	if _, err := s.Archive.Put(ctx, key, "text/plain; charset=utf-8", bytes.NewReader([]byte(*doc.ExtractedText))); err != nil {
		telemetry.Warn("documents.archive_failed", map[string]any{
			"documentId": doc.ID,
			"key":        key,
			"error":      err.Error(),
		})
	}
}
