package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yourorg/rentease/internal/domain"
)

// PostgresFileRepository implements domain.FileRepository, storing file
// contents in a bytea column alongside the metadata
type PostgresFileRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresFileRepository creates a new file repository
func NewPostgresFileRepository(db *sql.DB, logger *slog.Logger) *PostgresFileRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresFileRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a file with its contents
func (r *PostgresFileRepository) Create(ctx context.Context, file *domain.File) error {
	query := `
		INSERT INTO files (filename, mimetype, size, data)
		VALUES ($1, $2, $3, $4)
		RETURNING id, uploaded_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		file.Filename,
		file.Mimetype,
		file.Size,
		file.Data,
	).Scan(&file.ID, &file.UploadedAt)

	if err != nil {
		r.logger.Error("failed to store file",
			slog.String("filename", file.Filename),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to store file: %w", err)
	}

	return nil
}

// GetByID returns file metadata without the blob
func (r *PostgresFileRepository) GetByID(ctx context.Context, id int64) (*domain.File, error) {
	query := `SELECT id, filename, mimetype, size, uploaded_at FROM files WHERE id = $1`

	file := &domain.File{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&file.ID,
		&file.Filename,
		&file.Mimetype,
		&file.Size,
		&file.UploadedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("file %d not found", id)
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	return file, nil
}

// GetWithData returns the file including its contents
func (r *PostgresFileRepository) GetWithData(ctx context.Context, id int64) (*domain.File, error) {
	query := `SELECT id, filename, mimetype, size, data, uploaded_at FROM files WHERE id = $1`

	file := &domain.File{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&file.ID,
		&file.Filename,
		&file.Mimetype,
		&file.Size,
		&file.Data,
		&file.UploadedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("file %d not found", id)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return file, nil
}

// Delete removes a file; payments referencing it fall back to NULL via the
// schema's ON DELETE SET NULL
func (r *PostgresFileRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NotFound("file %d not found", id)
	}

	return nil
}

// List returns metadata for all stored files
func (r *PostgresFileRepository) List(ctx context.Context) ([]*domain.File, error) {
	query := `SELECT id, filename, mimetype, size, uploaded_at FROM files ORDER BY uploaded_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("failed to list files", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	var files []*domain.File
	for rows.Next() {
		file := &domain.File{}
		err := rows.Scan(&file.ID, &file.Filename, &file.Mimetype, &file.Size, &file.UploadedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, file)
	}
	return files, rows.Err()
}
