package domain

import (
	"context"
	"time"
)

// File is an uploaded file stored in the database (invoices, profile pictures)
type File struct {
	ID         int64
	Filename   string
	Mimetype   string
	Size       int64
	Data       []byte
	UploadedAt time.Time
}

// FileRepository defines data access for stored files
type FileRepository interface {
	Create(ctx context.Context, file *File) error
	// GetByID returns file metadata without the blob
	GetByID(ctx context.Context, id int64) (*File, error)
	// GetWithData returns the file including its contents
	GetWithData(ctx context.Context, id int64) (*File, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*File, error)
}
