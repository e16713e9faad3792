package documents

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Document // documentID -> document
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]Document),
	}
}

// Save stores or overwrites a document by ID.
func (r *MemoryRepo) Save(ctx context.Context, doc Document) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[doc.ID] = doc
	return doc, nil
}

// FindByID returns a document by ID.
func (r *MemoryRepo) FindByID(ctx context.Context, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.data[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

// FindByIDAndOwner returns a document by ID when it belongs to userID.
func (r *MemoryRepo) FindByIDAndOwner(ctx context.Context, id, userID string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.data[id]
	if !ok || doc.UserID != userID {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

// ListByOwner returns a user's documents, most recently updated first.
func (r *MemoryRepo) ListByOwner(ctx context.Context, userID string, limit, offset int) ([]ListItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	docs := make([]Document, 0)
	for _, doc := range r.data {
		if doc.UserID == userID {
			docs = append(docs, doc)
		}
	}
	r.mu.RUnlock()

	sortByUpdatedDesc(docs)
	start, end := pageBounds(len(docs), limit, offset)

	out := make([]ListItem, 0, end-start)
	for _, doc := range docs[start:end] {
		out = append(out, ToListItem(doc))
	}
	return out, nil
}

// Len reports how many documents are stored.
func (r *MemoryRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}

func sortByUpdatedDesc(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].UpdatedAt.Equal(docs[j].UpdatedAt) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].UpdatedAt.After(docs[j].UpdatedAt)
	})
}

var _ Repo = (*MemoryRepo)(nil)
