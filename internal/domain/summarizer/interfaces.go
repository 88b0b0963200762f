package summarizer

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// RunRepository persists asynchronous run records.
type RunRepository interface {
	Create(ctx context.Context, run Run) error
	Update(ctx context.Context, run Run) error
	Get(ctx context.Context, id uuid.UUID) (Run, bool, error)
}

// ArticleStorage abstracts blob storage for submitted articles (memory/S3).
type ArticleStorage interface {
	Put(ctx context.Context, key string, data []byte, mimeType string) (StoredObject, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// StoredObject captures persisted blob metadata.
type StoredObject struct {
	Key      string
	Size     int64
	MimeType string
	ETag     string
}

// JobQueue enqueues processing tasks.
type JobQueue interface {
	Enqueue(ctx context.Context, name string, payload any) error
}
