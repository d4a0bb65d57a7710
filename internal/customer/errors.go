package customer

import "errors"

var (
	// ErrCustomerNotFound signals that no customer matched the id, or that it
	// exists but is not owned by the acting user. The two cases are
	// intentionally conflated for owner-scoped lookups.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrEmailTaken indicates the customer email is already registered.
	ErrEmailTaken = errors.New("customer email already in use")
	// ErrOwnerMissing means the resolved principal has no backing user record,
	// which should be impossible for an authenticated request.
	ErrOwnerMissing = errors.New("owner user not found")
)
