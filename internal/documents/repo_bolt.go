package documents

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Layout: documents/<owner>/<id> holds metadata, contents/<id> the raw PDF,
// owners/<id> the owning user for lookups by ID alone.
var (
	documentsBucket = []byte("documents")
	contentsBucket  = []byte("contents")
	ownersBucket    = []byte("owners")
)

// BoltRepo implements Repo on an embedded bbolt file for single-node deployments.
type BoltRepo struct {
	db *bolt.DB
}

type boltRecord struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	FileName      string     `json:"fileName"`
	ContentType   string     `json:"contentType"`
	SizeBytes     int64      `json:"sizeBytes"`
	ExtractedText *string    `json:"extractedText,omitempty"`
	Summary       *string    `json:"summary,omitempty"`
	SummaryError  *string    `json:"summaryError,omitempty"`
	PageCount     int        `json:"pageCount"`
	Encrypted     bool       `json:"encrypted,omitempty"`
	Status        TextStatus `json:"status"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// OpenBoltRepo opens (creating if needed) the bbolt file at path.
func OpenBoltRepo(path string) (*BoltRepo, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create bolt dir: %w", err)
		}
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{documentsBucket, contentsBucket, ownersBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &BoltRepo{db: db}, nil
}

// Close releases the underlying file.
func (r *BoltRepo) Close() error {
	return r.db.Close()
}

// Save writes the document under its owner. The owner of an existing ID is
// never rewritten.
func (r *BoltRepo) Save(ctx context.Context, doc Document) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	if doc.ID == "" || doc.UserID == "" {
		return Document{}, fmt.Errorf("save document: id and owner are required")
	}
	err := r.db.Update(func(tx *bolt.Tx) error {
		key := []byte(doc.ID)
		owners := tx.Bucket(ownersBucket)
		owner := doc.UserID
		if prev := owners.Get(key); prev != nil {
			owner = string(prev)
		} else if err := owners.Put(key, []byte(owner)); err != nil {
			return err
		}

		rec := toBoltRecord(doc)
		rec.UserID = owner
		raw, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode document: %w", err)
		}
		perOwner, err := tx.Bucket(documentsBucket).CreateBucketIfNotExists([]byte(owner))
		if err != nil {
			return err
		}
		if err := perOwner.Put(key, raw); err != nil {
			return err
		}
		return tx.Bucket(contentsBucket).Put(key, doc.Content)
	})
	if err != nil {
		return Document{}, fmt.Errorf("save document: %w", err)
	}
	return doc, nil
}

// FindByID returns a document by ID.
func (r *BoltRepo) FindByID(ctx context.Context, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	var doc Document
	err := r.db.View(func(tx *bolt.Tx) error {
		owner := tx.Bucket(ownersBucket).Get([]byte(id))
		if owner == nil {
			return ErrNotFound
		}
		var err error
		doc, err = loadDocument(tx, string(owner), id)
		return err
	})
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}

// FindByIDAndOwner returns a document by ID when it belongs to userID. Only
// that owner's bucket is consulted.
func (r *BoltRepo) FindByIDAndOwner(ctx context.Context, id, userID string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	if userID == "" {
		return Document{}, ErrNotFound
	}
	var doc Document
	err := r.db.View(func(tx *bolt.Tx) error {
		var err error
		doc, err = loadDocument(tx, userID, id)
		return err
	})
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}

// ListByOwner reads the owner's bucket, most recently updated first. Content
// is not loaded.
func (r *BoltRepo) ListByOwner(ctx context.Context, userID string, limit, offset int) ([]ListItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var docs []Document
	err := r.db.View(func(tx *bolt.Tx) error {
		if userID == "" {
			return nil
		}
		perOwner := tx.Bucket(documentsBucket).Bucket([]byte(userID))
		if perOwner == nil {
			return nil
		}
		return perOwner.ForEach(func(k, v []byte) error {
			var rec boltRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decode document %s: %w", k, err)
			}
			docs = append(docs, rec.document())
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sortByUpdatedDesc(docs)
	start, end := pageBounds(len(docs), limit, offset)
	out := make([]ListItem, 0, end-start)
	for _, doc := range docs[start:end] {
		out = append(out, ToListItem(doc))
	}
	return out, nil
}

func loadDocument(tx *bolt.Tx, owner, id string) (Document, error) {
	perOwner := tx.Bucket(documentsBucket).Bucket([]byte(owner))
	if perOwner == nil {
		return Document{}, ErrNotFound
	}
	v := perOwner.Get([]byte(id))
	if v == nil {
		return Document{}, ErrNotFound
	}
	var rec boltRecord
	if err := json.Unmarshal(v, &rec); err != nil {
		return Document{}, fmt.Errorf("decode document %s: %w", id, err)
	}
	doc := rec.document()
	// bbolt values are only valid inside the transaction.
	if content := tx.Bucket(contentsBucket).Get([]byte(id)); content != nil {
		doc.Content = append([]byte(nil), content...)
	}
	return doc, nil
}

func toBoltRecord(doc Document) boltRecord {
	return boltRecord{
		ID:            doc.ID,
		UserID:        doc.UserID,
		FileName:      doc.FileName,
		ContentType:   doc.ContentType,
		SizeBytes:     doc.SizeBytes,
		ExtractedText: doc.ExtractedText,
		Summary:       doc.Summary,
		SummaryError:  doc.SummaryError,
		PageCount:     doc.PageCount,
		Encrypted:     doc.Encrypted,
		Status:        doc.Status,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}
}

func (rec boltRecord) document() Document {
	return Document{
		ID:            rec.ID,
		UserID:        rec.UserID,
		FileName:      rec.FileName,
		ContentType:   rec.ContentType,
		SizeBytes:     rec.SizeBytes,
		ExtractedText: rec.ExtractedText,
		Summary:       rec.Summary,
		SummaryError:  rec.SummaryError,
		PageCount:     rec.PageCount,
		Encrypted:     rec.Encrypted,
		Status:        ParseTextStatus(string(rec.Status)),
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}
}

var _ Repo = (*BoltRepo)(nil)
