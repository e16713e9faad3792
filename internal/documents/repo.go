package documents

import "context"

// Repo defines persistence operations for documents.
type Repo interface {
	// Save inserts the record or replaces it in place, returning what was stored.
	Save(ctx context.Context, doc Document) (Document, error)
	FindByID(ctx context.Context, id string) (Document, error)
	// FindByIDAndOwner looks a record up by id and owner in one query.
	FindByIDAndOwner(ctx context.Context, id, userID string) (Document, error)
	// ListByOwner returns list projections ordered by UpdatedAt descending.
	// A non-positive limit returns every record after offset.
	ListByOwner(ctx context.Context, userID string, limit, offset int) ([]ListItem, error)
}

func pageBounds(n, limit, offset int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	end := n
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return offset, end
}
