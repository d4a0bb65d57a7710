package file

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/adilkhan/custarchive/internal/auth"
	"github.com/adilkhan/custarchive/internal/customer"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func newTestRouter(principal string, service *Service, guard customerGuard) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/")
	group.Use(func(c *gin.Context) {
		auth.SetPrincipal(c, principal)
		c.Next()
	})
	RegisterRoutes(group, service, guard)
	return r
}

func TestDownloadMapsOwnershipToStatusCodes(t *testing.T) {
	service, _, customers, _ := newTestService()
	customerID := customers.add("alice")

	meta, err := service.Add(context.Background(), customerID, strings.NewReader("payload"), "a.txt", "text/plain")
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	cases := []struct {
		name      string
		principal string
		fileID    string
		want      int
	}{
		{"owner downloads", "alice", meta.ID.String(), http.StatusOK},
		{"non-owner forbidden", "carol", meta.ID.String(), http.StatusForbidden},
		{"missing file not found", "alice", uuid.NewString(), http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(tc.principal, service, &stubGuard{})

			req, _ := http.NewRequest(http.MethodGet, "/files/"+tc.fileID+"/download", nil)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			if rr.Code != tc.want {
				t.Fatalf("expected status %d, got %d (%s)", tc.want, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestListFilesGuardsCustomerOwnership(t *testing.T) {
	service, _, customers, _ := newTestService()
	customerID := customers.add("alice")

	guard := &stubGuard{customers: customers}

	r := newTestRouter("carol", service, guard)
	req, _ := http.NewRequest(http.MethodGet, "/customers/"+customerID.String()+"/files", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner, got %d", rr.Code)
	}

	r = newTestRouter("alice", service, guard)
	req, _ = http.NewRequest(http.MethodGet, "/customers/"+uuid.NewString()+"/files", nil)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing customer, got %d", rr.Code)
	}
}

type stubGuard struct {
	customers *fakeCustomers
}

func (g *stubGuard) IsOwnedByUser(ctx context.Context, id uuid.UUID, username string) (bool, error) {
	if g.customers == nil {
		return true, nil
	}
	c, err := g.customers.GetByID(ctx, id)
	if err != nil {
		return false, customer.ErrCustomerNotFound
	}
	return c.Owner == username, nil
}
