package customer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const repoTimeout = 5 * time.Second

// Repository provides access to customer records.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a new customer repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a customer owned by userID.
func (r *Repository) Create(ctx context.Context, name, email string, userID uuid.UUID) (Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
INSERT INTO customers (name, email, user_id)
VALUES ($1, $2, $3)
RETURNING id, name, email, user_id, created_at, updated_at;`

	var c Customer
	err := r.pool.QueryRow(ctx, query, name, email, userID).Scan(
		&c.ID, &c.Name, &c.Email, &c.UserID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return Customer{}, ErrEmailTaken
		}
		return Customer{}, fmt.Errorf("create customer: %w", err)
	}
	return c, nil
}

// ListByOwner returns the customers owned by username. Order is unspecified.
func (r *Repository) ListByOwner(ctx context.Context, username string) ([]Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
SELECT c.id, c.name, c.email, c.user_id, u.username, c.created_at, c.updated_at
FROM customers c
JOIN users u ON u.id = c.user_id
WHERE u.username = $1;`

	rows, err := r.pool.Query(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.UserID, &c.Owner, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}
	return customers, nil
}

// GetByIDAndOwner fetches a single customer, requiring ownership in the same
// query. Missing and not-owned both surface as ErrCustomerNotFound.
func (r *Repository) GetByIDAndOwner(ctx context.Context, id uuid.UUID, username string) (Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
SELECT c.id, c.name, c.email, c.user_id, u.username, c.created_at, c.updated_at
FROM customers c
JOIN users u ON u.id = c.user_id
WHERE c.id = $1 AND u.username = $2;`

	var c Customer
	err := r.pool.QueryRow(ctx, query, id, username).Scan(
		&c.ID, &c.Name, &c.Email, &c.UserID, &c.Owner, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, ErrCustomerNotFound
		}
		return Customer{}, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

// GetByID fetches a customer regardless of ownership, including the owner
// username for guard decisions.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
SELECT c.id, c.name, c.email, c.user_id, u.username, c.created_at, c.updated_at
FROM customers c
JOIN users u ON u.id = c.user_id
WHERE c.id = $1;`

	var c Customer
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Email, &c.UserID, &c.Owner, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, ErrCustomerNotFound
		}
		return Customer{}, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

// UpdateByOwner mutates name and email in a single conditional statement; the
// ownership predicate is part of the UPDATE so check and mutation cannot race.
func (r *Repository) UpdateByOwner(ctx context.Context, id uuid.UUID, username, name, email string) (Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
UPDATE customers c
SET name = $3, email = $4, updated_at = NOW()
FROM users u
WHERE c.id = $1 AND c.user_id = u.id AND u.username = $2
RETURNING c.id, c.name, c.email, c.user_id, u.username, c.created_at, c.updated_at;`

	var c Customer
	err := r.pool.QueryRow(ctx, query, id, username, name, email).Scan(
		&c.ID, &c.Name, &c.Email, &c.UserID, &c.Owner, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, ErrCustomerNotFound
		}
		if isUniqueViolation(err) {
			return Customer{}, ErrEmailTaken
		}
		return Customer{}, fmt.Errorf("update customer: %w", err)
	}
	return c, nil
}

// DeleteByOwner removes a customer in a single conditional statement.
// Dependent file rows are removed by the ON DELETE CASCADE constraint.
func (r *Repository) DeleteByOwner(ctx context.Context, id uuid.UUID, username string) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
DELETE FROM customers c
USING users u
WHERE c.id = $1 AND c.user_id = u.id AND u.username = $2
RETURNING c.id;`

	var deleted uuid.UUID
	if err := r.pool.QueryRow(ctx, query, id, username).Scan(&deleted); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCustomerNotFound
		}
		return fmt.Errorf("delete customer: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
