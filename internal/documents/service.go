package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"slidesage-backend/internal/extract"
	"slidesage-backend/internal/llm"
	"slidesage-backend/internal/shared/storage/object"
)

// Service runs the ingestion and summarization pipelines over a Repo.
type Service struct {
	Repo       Repo
	Extractor  extract.Extractor
	Summarizer llm.Summarizer
	// Archive receives a copy of each document's normalized text. Optional.
	Archive object.ObjectStore

	now   func() time.Time
	newID func() string
}

// NewService constructs a Service. A nil summarizer is replaced by llm.PlaceholderClient.
func NewService(repo Repo, extractor extract.Extractor, summarizer llm.Summarizer, archive object.ObjectStore) *Service {
	if summarizer == nil {
		summarizer = llm.PlaceholderClient{}
	}
	if extractor == nil {
		extractor = extract.NewPDFExtractor()
	}
	return &Service{
		Repo:       repo,
		Extractor:  extractor,
		Summarizer: summarizer,
		Archive:    archive,
	}
}

// WithClock overrides the time source. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) clock() time.Time {
	if s.now != nil {
		return s.now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) id() string {
	if s.newID != nil {
		return s.newID()
	}
	return uuid.NewString()
}

// Get returns the detail view of a user's document.
func (s *Service) Get(ctx context.Context, id, userID string) (Detail, error) {
	doc, err := s.lookup(ctx, id, userID)
	if err != nil {
		return Detail{}, err
	}
	return ToDetail(doc), nil
}

// Content returns the full record, including raw bytes, for download.
func (s *Service) Content(ctx context.Context, id, userID string) (Document, error) {
	return s.lookup(ctx, id, userID)
}

// List returns a user's documents, most recently updated first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]ListItem, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	items, err := s.Repo.ListByOwner(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return items, nil
}

func (s *Service) lookup(ctx context.Context, id, userID string) (Document, error) {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(userID) == "" {
		return Document{}, ErrNotFound
	}
	doc, err := s.Repo.FindByIDAndOwner(ctx, id, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Document{}, ErrNotFound
		}
		return Document{}, fmt.Errorf("find document: %w", err)
	}
	return doc, nil
}
