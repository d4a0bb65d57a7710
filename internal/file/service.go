package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/adilkhan/custarchive/internal/blob"
	"github.com/adilkhan/custarchive/internal/customer"
	"github.com/adilkhan/custarchive/internal/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type metadataStore interface {
	Create(ctx context.Context, f File) (File, error)
	Get(ctx context.Context, id uuid.UUID) (File, error)
	GetWithOwner(ctx context.Context, id uuid.UUID) (File, string, error)
	Update(ctx context.Context, f File) (File, error)
	Delete(ctx context.Context, id uuid.UUID) (File, error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]File, error)
}

type customerDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (customer.Customer, error)
}

// Service manages the file lifecycle, keeping metadata records and blobs
// consistent. Ownership checks are the caller's responsibility and must run
// before any mutating operation here; this service never re-checks them.
type Service struct {
	repo      metadataStore
	customers customerDirectory
	blobs     blob.Store
	nowFunc   func() time.Time
}

// NewService constructs a file service.
func NewService(repo metadataStore, customers customerDirectory, blobs blob.Store) *Service {
	return &Service{
		repo:      repo,
		customers: customers,
		blobs:     blobs,
		nowFunc:   time.Now,
	}
}

// Add stores the blob first and only then creates the metadata record, so a
// record never references bytes that were not durably stored. A metadata
// insert failure triggers a compensating blob removal.
func (s *Service) Add(ctx context.Context, customerID uuid.UUID, payload io.Reader, declaredName, declaredType string) (File, error) {
	if _, err := s.customers.GetByID(ctx, customerID); err != nil {
		return File{}, translateCustomerError(err)
	}

	storedName, err := s.blobs.Save(ctx, declaredName, payload)
	if err != nil {
		return File{}, err
	}

	now := s.nowFunc()
	f := File{
		ID:         uuid.New(),
		CustomerID: customerID,
		FileName:   storedName,
		FilePath:   storedName,
		FileType:   normalizeContentType(declaredType),
		UploadDate: now,
		UpdateDate: now,
	}

	stored, err := s.repo.Create(ctx, f)
	if err != nil {
		_ = s.blobs.Remove(ctx, storedName)
		return File{}, err
	}
	return stored, nil
}

// Update replaces the blob and rewrites the record's mutable fields. The old
// blob is removed first; an I/O failure there aborts the update before any
// new bytes are written or metadata changed.
func (s *Service) Update(ctx context.Context, fileID uuid.UUID, payload io.Reader, declaredName, declaredType string) (File, error) {
	existing, err := s.repo.Get(ctx, fileID)
	if err != nil {
		return File{}, err
	}

	if err := s.blobs.Remove(ctx, existing.FilePath); err != nil {
		return File{}, fmt.Errorf("%w: remove old blob: %v", ErrStorage, err)
	}

	storedName, err := s.blobs.Save(ctx, declaredName, payload)
	if err != nil {
		return File{}, err
	}

	existing.FileName = storedName
	existing.FilePath = storedName
	existing.FileType = normalizeContentType(declaredType)
	existing.UpdateDate = s.nowFunc()

	return s.repo.Update(ctx, existing)
}

// Delete removes the metadata record, then the blob. A blob removal failure
// leaves an orphaned blob with the record already gone; that asymmetry is
// surfaced as ErrStorage and logged, never swallowed.
func (s *Service) Delete(ctx context.Context, fileID uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, fileID)
	if err != nil {
		return err
	}

	if err := s.blobs.Remove(ctx, deleted.FilePath); err != nil {
		logger.L().Error("orphaned blob after metadata delete",
			zap.String("file_id", fileID.String()),
			zap.String("path", deleted.FilePath),
			zap.Error(err))
		return fmt.Errorf("%w: remove blob: %v", ErrStorage, err)
	}
	return nil
}

// Load resolves metadata and opens the blob at its recorded path. An absent
// record and an absent blob are distinct failures.
func (s *Service) Load(ctx context.Context, fileID uuid.UUID) (File, io.ReadCloser, error) {
	f, err := s.repo.Get(ctx, fileID)
	if err != nil {
		return File{}, nil, err
	}

	reader, err := s.blobs.Open(ctx, f.FilePath)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return File{}, nil, fmt.Errorf("%w: %s", ErrMissingOnDisk, f.FilePath)
		}
		return File{}, nil, fmt.Errorf("open blob: %w", err)
	}
	return f, reader, nil
}

// ListForCustomer enumerates a customer's files.
func (s *Service) ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]File, error) {
	if _, err := s.customers.GetByID(ctx, customerID); err != nil {
		return nil, translateCustomerError(err)
	}
	return s.repo.ListForCustomer(ctx, customerID)
}

// IsOwnedByUser reports whether the file's customer's user chain resolves to
// username. A missing file is an error, distinct from a false result.
func (s *Service) IsOwnedByUser(ctx context.Context, fileID uuid.UUID, username string) (bool, error) {
	_, owner, err := s.repo.GetWithOwner(ctx, fileID)
	if err != nil {
		return false, err
	}
	return owner == username, nil
}

func normalizeContentType(declaredType string) string {
	if declaredType == "" {
		return "application/octet-stream"
	}
	return declaredType
}

func translateCustomerError(err error) error {
	if errors.Is(err, customer.ErrCustomerNotFound) {
		return ErrCustomerNotFound
	}
	return err
}
