package file

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const repoTimeout = 5 * time.Second

// Repository provides access to file metadata storage.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a new file repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts metadata for a new file.
func (r *Repository) Create(ctx context.Context, f File) (File, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
INSERT INTO files (id, customer_id, file_name, file_path, file_type, upload_date, update_date)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, customer_id, file_name, file_path, file_type, upload_date, update_date;`

	row := r.pool.QueryRow(ctx, query,
		f.ID, f.CustomerID, f.FileName, f.FilePath, f.FileType, f.UploadDate, f.UpdateDate,
	)

	var stored File
	if err := row.Scan(&stored.ID, &stored.CustomerID, &stored.FileName, &stored.FilePath, &stored.FileType, &stored.UploadDate, &stored.UpdateDate); err != nil {
		return File{}, fmt.Errorf("create file metadata: %w", err)
	}
	return stored, nil
}

// Get fetches metadata for a single file.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (File, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
SELECT id, customer_id, file_name, file_path, file_type, upload_date, update_date
FROM files
WHERE id = $1;`

	var f File
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&f.ID, &f.CustomerID, &f.FileName, &f.FilePath, &f.FileType, &f.UploadDate, &f.UpdateDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return File{}, ErrFileNotFound
		}
		return File{}, fmt.Errorf("get file metadata: %w", err)
	}
	return f, nil
}

// GetWithOwner fetches metadata plus the owning username resolved through the
// customer and user tables.
func (r *Repository) GetWithOwner(ctx context.Context, id uuid.UUID) (File, string, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
SELECT f.id, f.customer_id, f.file_name, f.file_path, f.file_type, f.upload_date, f.update_date, u.username
FROM files f
JOIN customers c ON c.id = f.customer_id
JOIN users u ON u.id = c.user_id
WHERE f.id = $1;`

	var f File
	var owner string
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&f.ID, &f.CustomerID, &f.FileName, &f.FilePath, &f.FileType, &f.UploadDate, &f.UpdateDate, &owner,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return File{}, "", ErrFileNotFound
		}
		return File{}, "", fmt.Errorf("get file owner: %w", err)
	}
	return f, owner, nil
}

// Update rewrites the mutable fields of an existing record in place.
func (r *Repository) Update(ctx context.Context, f File) (File, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
UPDATE files
SET file_name = $2, file_path = $3, file_type = $4, update_date = $5
WHERE id = $1
RETURNING id, customer_id, file_name, file_path, file_type, upload_date, update_date;`

	var stored File
	err := r.pool.QueryRow(ctx, query, f.ID, f.FileName, f.FilePath, f.FileType, f.UpdateDate).Scan(
		&stored.ID, &stored.CustomerID, &stored.FileName, &stored.FilePath, &stored.FileType, &stored.UploadDate, &stored.UpdateDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return File{}, ErrFileNotFound
		}
		return File{}, fmt.Errorf("update file metadata: %w", err)
	}
	return stored, nil
}

// Delete removes metadata and returns the deleted record.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (File, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
DELETE FROM files
WHERE id = $1
RETURNING id, customer_id, file_name, file_path, file_type, upload_date, update_date;`

	var f File
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&f.ID, &f.CustomerID, &f.FileName, &f.FilePath, &f.FileType, &f.UploadDate, &f.UpdateDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return File{}, ErrFileNotFound
		}
		return File{}, fmt.Errorf("delete file metadata: %w", err)
	}
	return f, nil
}

// ListForCustomer returns the files belonging to a customer. Order is
// unspecified.
func (r *Repository) ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]File, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
SELECT id, customer_id, file_name, file_path, file_type, upload_date, update_date
FROM files
WHERE customer_id = $1;`

	rows, err := r.pool.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var files []File
	for rows.Next() {
		var f File
		if err := rows.Scan(&f.ID, &f.CustomerID, &f.FileName, &f.FilePath, &f.FileType, &f.UploadDate, &f.UpdateDate); err != nil {
			return nil, fmt.Errorf("scan file metadata: %w", err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}
	return files, nil
}

// ListPathsForCustomer returns blob paths for cascade cleanup when the
// customer is deleted.
func (r *Repository) ListPathsForCustomer(ctx context.Context, customerID uuid.UUID) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `SELECT file_path FROM files WHERE customer_id = $1;`

	rows, err := r.pool.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("list file paths: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan file path: %w", err)
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate file paths: %w", err)
	}
	return paths, nil
}
