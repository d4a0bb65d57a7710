package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/adilkhan/custarchive/internal/auth"
	"github.com/adilkhan/custarchive/internal/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type repository interface {
	Create(ctx context.Context, name, email string, userID uuid.UUID) (Customer, error)
	ListByOwner(ctx context.Context, username string) ([]Customer, error)
	GetByIDAndOwner(ctx context.Context, id uuid.UUID, username string) (Customer, error)
	GetByID(ctx context.Context, id uuid.UUID) (Customer, error)
	UpdateByOwner(ctx context.Context, id uuid.UUID, username, name, email string) (Customer, error)
	DeleteByOwner(ctx context.Context, id uuid.UUID, username string) error
}

type userDirectory interface {
	FindUserByUsername(ctx context.Context, username string) (auth.User, error)
}

// FileIndex exposes the blob paths belonging to a customer's files, used to
// purge blobs when the customer is deleted.
type FileIndex interface {
	ListPathsForCustomer(ctx context.Context, customerID uuid.UUID) ([]string, error)
}

type blobRemover interface {
	Remove(ctx context.Context, physicalPath string) error
}

// Service orchestrates the customer lifecycle for a single owning user.
type Service struct {
	repo  repository
	users userDirectory
	files FileIndex
	blobs blobRemover
}

// NewService constructs a customer service.
func NewService(repo repository, users userDirectory, files FileIndex, blobs blobRemover) *Service {
	return &Service{
		repo:  repo,
		users: users,
		files: files,
		blobs: blobs,
	}
}

// Add creates a customer owned by username. The owning edge is set exactly
// once here and never reassigned.
func (s *Service) Add(ctx context.Context, name, email, username string) (Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Customer{}, fmt.Errorf("customer name required")
	}

	user, err := s.users.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			// An authenticated principal always has a user record.
			return Customer{}, ErrOwnerMissing
		}
		return Customer{}, fmt.Errorf("resolve owner: %w", err)
	}

	c, err := s.repo.Create(ctx, name, strings.ToLower(strings.TrimSpace(email)), user.ID)
	if err != nil {
		return Customer{}, err
	}
	c.Owner = user.Username
	return c, nil
}

// Update mutates name and email of an owned customer. The id and owning edge
// are immutable.
func (s *Service) Update(ctx context.Context, id uuid.UUID, username, name, email string) (Customer, error) {
	return s.repo.UpdateByOwner(ctx, id, username, strings.TrimSpace(name), strings.ToLower(strings.TrimSpace(email)))
}

// Delete removes an owned customer, its file records, and their blobs. Blobs
// are purged before the metadata cascade; a blob removal failure aborts the
// delete with the customer still intact.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, username string) error {
	if _, err := s.repo.GetByIDAndOwner(ctx, id, username); err != nil {
		return err
	}

	paths, err := s.files.ListPathsForCustomer(ctx, id)
	if err != nil {
		return fmt.Errorf("list customer blobs: %w", err)
	}
	for _, p := range paths {
		if err := s.blobs.Remove(ctx, p); err != nil {
			return fmt.Errorf("purge blob %s: %w", p, err)
		}
	}

	if err := s.repo.DeleteByOwner(ctx, id, username); err != nil {
		if errors.Is(err, ErrCustomerNotFound) && len(paths) > 0 {
			// Lost a race after the blobs were already purged.
			logger.L().Warn("customer vanished mid-delete after blob purge",
				zap.String("customer_id", id.String()))
		}
		return err
	}
	return nil
}

// ListForOwner returns all customers owned by username.
func (s *Service) ListForOwner(ctx context.Context, username string) ([]Customer, error) {
	return s.repo.ListByOwner(ctx, username)
}

// GetByID returns an owned customer, conflating absent and not-owned.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID, username string) (Customer, error) {
	return s.repo.GetByIDAndOwner(ctx, id, username)
}

// IsOwnedByUser reports whether the customer's owner chain resolves to
// username. A missing customer is an error, distinct from a false result.
func (s *Service) IsOwnedByUser(ctx context.Context, id uuid.UUID, username string) (bool, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return c.Owner == username, nil
}
