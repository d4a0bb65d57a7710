package customer

import (
	"context"
	"testing"
	"time"

	"github.com/adilkhan/custarchive/internal/auth"
	"github.com/google/uuid"
)

func newTestService() (*Service, *fakeRepo, *fakeUsers, *fakeFileIndex, *fakeBlobRemover) {
	usernames := map[uuid.UUID]string{}
	repo := newFakeRepo(usernames)
	users := &fakeUsers{users: map[string]auth.User{}, usernames: usernames}
	files := &fakeFileIndex{paths: map[uuid.UUID][]string{}}
	blobs := &fakeBlobRemover{}
	return NewService(repo, users, files, blobs), repo, users, files, blobs
}

func TestAddSetsOwnerEdge(t *testing.T) {
	service, repo, users, _, _ := newTestService()
	alice := users.add("alice")

	created, err := service.Add(context.Background(), "Bob Co", "bob@co.com", "alice")
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	if created.ID == uuid.Nil {
		t.Fatalf("expected a non-nil customer id")
	}
	if created.Owner != "alice" {
		t.Fatalf("expected owner alice, got %q", created.Owner)
	}
	if created.UserID != alice.ID {
		t.Fatalf("owning edge not set to alice's user id")
	}
	if len(repo.customers) != 1 {
		t.Fatalf("expected customer persisted, got %d", len(repo.customers))
	}
}

func TestAddUnknownPrincipalFails(t *testing.T) {
	service, _, _, _, _ := newTestService()

	if _, err := service.Add(context.Background(), "Bob Co", "bob@co.com", "ghost"); err != ErrOwnerMissing {
		t.Fatalf("expected ErrOwnerMissing, got %v", err)
	}
}

func TestAddDuplicateEmailConflicts(t *testing.T) {
	service, _, users, _, _ := newTestService()
	users.add("alice")
	users.add("carol")

	if _, err := service.Add(context.Background(), "Bob Co", "bob@co.com", "alice"); err != nil {
		t.Fatalf("first Add returned error: %v", err)
	}
	if _, err := service.Add(context.Background(), "Bob Inc", "bob@co.com", "carol"); err != ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestGetByIDScopedToOwner(t *testing.T) {
	service, _, users, _, _ := newTestService()
	users.add("alice")
	users.add("carol")

	created, err := service.Add(context.Background(), "Bob Co", "bob@co.com", "alice")
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	got, err := service.GetByID(context.Background(), created.ID, "alice")
	if err != nil {
		t.Fatalf("owner lookup returned error: %v", err)
	}
	if got.ID != created.ID {
		t.Fatalf("expected customer %s, got %s", created.ID, got.ID)
	}

	if _, err := service.GetByID(context.Background(), created.ID, "carol"); err != ErrCustomerNotFound {
		t.Fatalf("expected ErrCustomerNotFound for non-owner, got %v", err)
	}
}

func TestUpdateByNonOwnerFails(t *testing.T) {
	service, _, users, _, _ := newTestService()
	users.add("alice")
	users.add("carol")

	created, err := service.Add(context.Background(), "Bob Co", "bob@co.com", "alice")
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	if _, err := service.Update(context.Background(), created.ID, "carol", "Evil Co", "evil@co.com"); err != ErrCustomerNotFound {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}

	got, _ := service.GetByID(context.Background(), created.ID, "alice")
	if got.Name != "Bob Co" {
		t.Fatalf("customer mutated by non-owner: %q", got.Name)
	}
}

func TestIsOwnedByUser(t *testing.T) {
	service, _, users, _, _ := newTestService()
	users.add("alice")

	created, err := service.Add(context.Background(), "Bob Co", "bob@co.com", "alice")
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	owned, err := service.IsOwnedByUser(context.Background(), created.ID, "alice")
	if err != nil || !owned {
		t.Fatalf("expected owned=true, got owned=%v err=%v", owned, err)
	}

	owned, err = service.IsOwnedByUser(context.Background(), created.ID, "carol")
	if err != nil {
		t.Fatalf("ownership check returned error: %v", err)
	}
	if owned {
		t.Fatalf("expected owned=false for carol")
	}

	if _, err := service.IsOwnedByUser(context.Background(), uuid.New(), "alice"); err != ErrCustomerNotFound {
		t.Fatalf("expected ErrCustomerNotFound for missing id, got %v", err)
	}
}

func TestDeletePurgesBlobsAndCascades(t *testing.T) {
	service, repo, users, files, blobs := newTestService()
	users.add("alice")

	created, err := service.Add(context.Background(), "Bob Co", "bob@co.com", "alice")
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	files.paths[created.ID] = []string{"invoice.pdf", "contract.docx"}

	if err := service.Delete(context.Background(), created.ID, "alice"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if len(blobs.removed) != 2 {
		t.Fatalf("expected 2 blobs purged, got %d", len(blobs.removed))
	}
	if len(repo.customers) != 0 {
		t.Fatalf("expected customer metadata removed")
	}
}

func TestDeleteByNonOwnerLeavesBlobs(t *testing.T) {
	service, _, users, files, blobs := newTestService()
	users.add("alice")

	created, err := service.Add(context.Background(), "Bob Co", "bob@co.com", "alice")
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	files.paths[created.ID] = []string{"invoice.pdf"}

	if err := service.Delete(context.Background(), created.ID, "carol"); err != ErrCustomerNotFound {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
	if len(blobs.removed) != 0 {
		t.Fatalf("no blobs should be purged for a non-owner, got %d", len(blobs.removed))
	}
}

// --- fakes ---

type fakeRepo struct {
	customers map[uuid.UUID]Customer
	usernames map[uuid.UUID]string
}

func newFakeRepo(usernames map[uuid.UUID]string) *fakeRepo {
	return &fakeRepo{customers: make(map[uuid.UUID]Customer), usernames: usernames}
}

func (f *fakeRepo) Create(ctx context.Context, name, email string, userID uuid.UUID) (Customer, error) {
	for _, c := range f.customers {
		if c.Email == email {
			return Customer{}, ErrEmailTaken
		}
	}
	c := Customer{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		UserID:    userID,
		Owner:     f.usernames[userID],
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.customers[c.ID] = c
	return c, nil
}

func (f *fakeRepo) ListByOwner(ctx context.Context, username string) ([]Customer, error) {
	var list []Customer
	for _, c := range f.customers {
		if c.Owner == username {
			list = append(list, c)
		}
	}
	return list, nil
}

func (f *fakeRepo) GetByIDAndOwner(ctx context.Context, id uuid.UUID, username string) (Customer, error) {
	c, ok := f.customers[id]
	if !ok || c.Owner != username {
		return Customer{}, ErrCustomerNotFound
	}
	return c, nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return Customer{}, ErrCustomerNotFound
	}
	return c, nil
}

func (f *fakeRepo) UpdateByOwner(ctx context.Context, id uuid.UUID, username, name, email string) (Customer, error) {
	c, ok := f.customers[id]
	if !ok || c.Owner != username {
		return Customer{}, ErrCustomerNotFound
	}
	c.Name = name
	c.Email = email
	c.UpdatedAt = time.Now()
	f.customers[id] = c
	return c, nil
}

func (f *fakeRepo) DeleteByOwner(ctx context.Context, id uuid.UUID, username string) error {
	c, ok := f.customers[id]
	if !ok || c.Owner != username {
		return ErrCustomerNotFound
	}
	delete(f.customers, id)
	return nil
}

type fakeUsers struct {
	users     map[string]auth.User
	usernames map[uuid.UUID]string
}

func (f *fakeUsers) add(username string) auth.User {
	u := auth.User{ID: uuid.New(), Username: username, Email: username + "@example.com"}
	f.users[username] = u
	f.usernames[u.ID] = username
	return u
}

func (f *fakeUsers) FindUserByUsername(ctx context.Context, username string) (auth.User, error) {
	u, ok := f.users[username]
	if !ok {
		return auth.User{}, auth.ErrUserNotFound
	}
	return u, nil
}

type fakeFileIndex struct {
	paths map[uuid.UUID][]string
}

func (f *fakeFileIndex) ListPathsForCustomer(ctx context.Context, customerID uuid.UUID) ([]string, error) {
	return f.paths[customerID], nil
}

type fakeBlobRemover struct {
	removed []string
}

func (f *fakeBlobRemover) Remove(ctx context.Context, physicalPath string) error {
	f.removed = append(f.removed, physicalPath)
	return nil
}
