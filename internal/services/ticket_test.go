package services

import (
	"errors"
	"testing"

	"ecommerce-platform/internal/models"
	"ecommerce-platform/internal/repositories"
)

// fakeTicketStore implements TicketStore over a slice
type fakeTicketStore struct {
	tickets []*models.Ticket

	statusCalls []models.TicketStatus
	statsFilter repositories.TicketSearchFilters
}

func (f *fakeTicketStore) Create(req *models.TicketCreateRequest) (*models.Ticket, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeTicketStore) GetByID(id int) (*models.Ticket, error) {
	for _, t := range f.tickets {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, models.NewNotFoundError("ticket", id)
}

func (f *fakeTicketStore) GetByCode(code string) (*models.Ticket, error) {
	for _, t := range f.tickets {
		if t.Code == code {
			return t, nil
		}
	}
	return nil, models.NewNotFoundError("ticket", code)
}

func (f *fakeTicketStore) Search(filters repositories.TicketSearchFilters) ([]*models.Ticket, int, error) {
	var matched []*models.Ticket
	for _, t := range f.tickets {
		if filters.Purchaser == "" || t.Purchaser == filters.Purchaser {
			matched = append(matched, t)
		}
	}
	return matched, len(matched), nil
}

func (f *fakeTicketStore) UpdateStatus(id int, status models.TicketStatus) (*models.Ticket, error) {
	f.statusCalls = append(f.statusCalls, status)
	return f.GetByID(id)
}

func (f *fakeTicketStore) Delete(id int) error {
	_, err := f.GetByID(id)
	return err
}

func (f *fakeTicketStore) Stats(filters repositories.TicketSearchFilters) (*models.TicketStats, error) {
	f.statsFilter = filters
	return &models.TicketStats{}, nil
}

func ticketFixture() (*TicketService, *fakeTicketStore, *models.User, *models.User) {
	store := &fakeTicketStore{
		tickets: []*models.Ticket{
			{ID: 1, Code: "code-1", Purchaser: "alice@example.com"},
			{ID: 2, Code: "code-2", Purchaser: "bob@example.com"},
		},
	}
	admin := &models.User{ID: 1, Email: "admin@example.com", Role: models.RoleAdmin}
	alice := &models.User{ID: 2, Email: "alice@example.com", Role: models.RoleUser}
	return NewTicketService(store, nil), store, admin, alice
}

func TestTicketServiceGetOwnership(t *testing.T) {
	svc, _, admin, alice := ticketFixture()

	if _, err := svc.Get(alice, 1); err != nil {
		t.Errorf("owner should see own ticket: %v", err)
	}
	if _, err := svc.Get(alice, 2); !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for foreign ticket, got %v", err)
	}
	if _, err := svc.Get(admin, 2); err != nil {
		t.Errorf("admin should see any ticket: %v", err)
	}
}

func TestTicketServiceSearchScoping(t *testing.T) {
	svc, _, admin, alice := ticketFixture()

	own, _, err := svc.Search(alice, repositories.TicketSearchFilters{})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(own) != 1 || own[0].Purchaser != alice.Email {
		t.Errorf("non-admin search must be scoped to own tickets, got %+v", own)
	}

	// Non-admins cannot widen the scope by passing another purchaser
	other, _, err := svc.Search(alice, repositories.TicketSearchFilters{Purchaser: "bob@example.com"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(other) != 1 || other[0].Purchaser != alice.Email {
		t.Errorf("purchaser filter override leaked, got %+v", other)
	}

	all, _, err := svc.Search(admin, repositories.TicketSearchFilters{})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("admin should see all tickets, got %d", len(all))
	}
}

func TestTicketServiceAdminOnlyOperations(t *testing.T) {
	svc, store, admin, alice := ticketFixture()

	if _, err := svc.Stats(alice, repositories.TicketSearchFilters{}); !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("stats must be admin only, got %v", err)
	}
	if _, err := svc.UpdateStatus(alice, 1, models.TicketProcessing); !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("status update must be admin only, got %v", err)
	}
	if err := svc.Delete(alice, 1); !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("delete must be admin only, got %v", err)
	}

	if _, err := svc.UpdateStatus(admin, 1, models.TicketProcessing); err != nil {
		t.Errorf("admin status update failed: %v", err)
	}
	if len(store.statusCalls) != 1 || store.statusCalls[0] != models.TicketProcessing {
		t.Errorf("unexpected status calls: %v", store.statusCalls)
	}
}

func TestTicketServiceSummaryScopedToRequester(t *testing.T) {
	svc, store, _, alice := ticketFixture()

	if _, err := svc.Summary(alice); err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if store.statsFilter.Purchaser != alice.Email {
		t.Errorf("summary must aggregate the requester's tickets, got %q", store.statsFilter.Purchaser)
	}
}
