package repositories

import (
	"errors"
	"testing"
	"time"

	"ecommerce-platform/internal/models"
)

func seedTicket(t *testing.T, repo *TicketRepository, purchaser string, items []models.TicketItem) *models.Ticket {
	t.Helper()

	ticket, err := repo.Create(&models.TicketCreateRequest{
		Purchaser: purchaser,
		Items:     items,
	})
	if err != nil {
		t.Fatalf("failed to seed ticket: %v", err)
	}
	return ticket
}

func TestTicketCreate(t *testing.T) {
	db := newTestDB(t)
	repo := NewTicketRepository(db.DB)

	ticket := seedTicket(t, repo, "buyer@example.com", []models.TicketItem{
		{ProductID: 1, Title: "Widget", Quantity: 2, Price: 1500},
		{ProductID: 2, Title: "Gadget", Quantity: 1, Price: 4200},
	})

	if ticket.Code == "" {
		t.Error("expected a generated ticket code")
	}
	if ticket.Status != models.TicketPending {
		t.Errorf("new tickets start pending, got %s", ticket.Status)
	}
	if ticket.Amount != 2*1500+4200 {
		t.Errorf("expected amount %d, got %d", 2*1500+4200, ticket.Amount)
	}
	for _, item := range ticket.Items {
		if item.Subtotal != item.Price*item.Quantity {
			t.Errorf("item %d: subtotal %d != price*quantity %d",
				item.ProductID, item.Subtotal, item.Price*item.Quantity)
		}
	}
}

func TestTicketCreateValidation(t *testing.T) {
	db := newTestDB(t)
	repo := NewTicketRepository(db.DB)

	tests := []struct {
		name string
		req  models.TicketCreateRequest
	}{
		{"missing purchaser", models.TicketCreateRequest{
			Items: []models.TicketItem{{ProductID: 1, Title: "X", Quantity: 1, Price: 100}},
		}},
		{"bad email", models.TicketCreateRequest{
			Purchaser: "not-an-email",
			Items:     []models.TicketItem{{ProductID: 1, Title: "X", Quantity: 1, Price: 100}},
		}},
		{"no items", models.TicketCreateRequest{Purchaser: "a@b.com"}},
		{"zero quantity", models.TicketCreateRequest{
			Purchaser: "a@b.com",
			Items:     []models.TicketItem{{ProductID: 1, Title: "X", Quantity: 0, Price: 100}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := repo.Create(&tt.req); !models.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestTicketGetByCode(t *testing.T) {
	db := newTestDB(t)
	repo := NewTicketRepository(db.DB)

	created := seedTicket(t, repo, "buyer@example.com", []models.TicketItem{
		{ProductID: 1, Title: "Widget", Quantity: 1, Price: 1000},
	})

	got, err := repo.GetByCode(created.Code)
	if err != nil {
		t.Fatalf("GetByCode failed: %v", err)
	}
	if got.ID != created.ID || len(got.Items) != 1 {
		t.Errorf("unexpected ticket: %+v", got)
	}

	if _, err := repo.GetByCode("missing-code"); !models.IsNotFound(err) {
		t.Errorf("expected not found error, got %v", err)
	}
}

// Item snapshots stay frozen regardless of later catalog changes. The ticket
// stores its own copy of title and price, so nothing to re-read here; this
// guards the persistence round trip.
func TestTicketItemsSnapshot(t *testing.T) {
	db := newTestDB(t)
	repo := NewTicketRepository(db.DB)

	created := seedTicket(t, repo, "buyer@example.com", []models.TicketItem{
		{ProductID: 7, Title: "Original Title", Quantity: 3, Price: 999},
	})

	got, err := repo.GetByID(created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	item := got.Items[0]
	if item.Title != "Original Title" || item.Price != 999 || item.Subtotal != 2997 {
		t.Errorf("snapshot not preserved: %+v", item)
	}
}

func TestTicketUpdateStatus(t *testing.T) {
	db := newTestDB(t)
	repo := NewTicketRepository(db.DB)

	items := []models.TicketItem{{ProductID: 1, Title: "X", Quantity: 1, Price: 100}}

	t.Run("allowed transitions", func(t *testing.T) {
		ticket := seedTicket(t, repo, "a@b.com", items)

		updated, err := repo.UpdateStatus(ticket.ID, models.TicketProcessing)
		if err != nil {
			t.Fatalf("pending -> processing failed: %v", err)
		}
		if updated.Status != models.TicketProcessing {
			t.Errorf("expected processing, got %s", updated.Status)
		}

		updated, err = repo.UpdateStatus(ticket.ID, models.TicketCompleted)
		if err != nil {
			t.Fatalf("processing -> completed failed: %v", err)
		}
		if updated.Status != models.TicketCompleted {
			t.Errorf("expected completed, got %s", updated.Status)
		}
	})

	t.Run("cancel from pending", func(t *testing.T) {
		ticket := seedTicket(t, repo, "a@b.com", items)
		if _, err := repo.UpdateStatus(ticket.ID, models.TicketCancelled); err != nil {
			t.Fatalf("pending -> cancelled failed: %v", err)
		}
	})

	t.Run("complete directly from pending", func(t *testing.T) {
		ticket := seedTicket(t, repo, "a@b.com", items)
		updated, err := repo.UpdateStatus(ticket.ID, models.TicketCompleted)
		if err != nil {
			t.Fatalf("pending -> completed failed: %v", err)
		}
		if updated.Status != models.TicketCompleted {
			t.Errorf("expected completed, got %s", updated.Status)
		}
	})

	t.Run("terminal states absorb", func(t *testing.T) {
		ticket := seedTicket(t, repo, "a@b.com", items)

		var transErr *models.InvalidTransitionError
		repo.UpdateStatus(ticket.ID, models.TicketCancelled)
		for _, next := range []models.TicketStatus{
			models.TicketPending, models.TicketProcessing, models.TicketCompleted,
		} {
			if _, err := repo.UpdateStatus(ticket.ID, next); !errors.As(err, &transErr) {
				t.Errorf("cancelled -> %s: expected InvalidTransitionError, got %v", next, err)
			}
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		ticket := seedTicket(t, repo, "a@b.com", items)
		if _, err := repo.UpdateStatus(ticket.ID, "shipped"); !models.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}

func TestTicketSearch(t *testing.T) {
	db := newTestDB(t)
	repo := NewTicketRepository(db.DB)

	cheap := []models.TicketItem{{ProductID: 1, Title: "X", Quantity: 1, Price: 500}}
	pricey := []models.TicketItem{{ProductID: 2, Title: "Y", Quantity: 1, Price: 5000}}

	seedTicket(t, repo, "alice@example.com", cheap)
	seedTicket(t, repo, "alice@example.com", pricey)
	bob := seedTicket(t, repo, "bob@example.com", pricey)
	repo.UpdateStatus(bob.ID, models.TicketProcessing)

	tests := []struct {
		name    string
		filters TicketSearchFilters
		want    int
	}{
		{"all", TicketSearchFilters{}, 3},
		{"by purchaser", TicketSearchFilters{Purchaser: "alice@example.com"}, 2},
		{"by status", TicketSearchFilters{Status: models.TicketProcessing}, 1},
		{"min amount", TicketSearchFilters{MinAmount: 1000}, 2},
		{"amount range", TicketSearchFilters{MinAmount: 100, MaxAmount: 1000}, 1},
		{"purchaser and amount", TicketSearchFilters{Purchaser: "alice@example.com", MinAmount: 1000}, 1},
		{"future window", TicketSearchFilters{DateFrom: time.Now().Add(time.Hour)}, 0},
		{"past to now", TicketSearchFilters{DateFrom: time.Now().Add(-time.Hour), DateTo: time.Now().Add(time.Hour)}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tickets, total, err := repo.Search(tt.filters)
			if err != nil {
				t.Fatalf("Search failed: %v", err)
			}
			if total != tt.want || len(tickets) != tt.want {
				t.Errorf("expected %d tickets, got %d (total %d)", tt.want, len(tickets), total)
			}
		})
	}
}

func TestTicketStats(t *testing.T) {
	db := newTestDB(t)
	repo := NewTicketRepository(db.DB)

	amounts := []int{1000, 2000, 3000}
	for _, amount := range amounts {
		seedTicket(t, repo, "stats@example.com", []models.TicketItem{
			{ProductID: 1, Title: "X", Quantity: 1, Price: amount},
		})
	}
	last := seedTicket(t, repo, "other@example.com", []models.TicketItem{
		{ProductID: 1, Title: "X", Quantity: 1, Price: 4000},
	})
	repo.UpdateStatus(last.ID, models.TicketCancelled)

	stats, err := repo.Stats(TicketSearchFilters{})
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalTickets != 4 {
		t.Errorf("expected 4 tickets, got %d", stats.TotalTickets)
	}
	if stats.TotalAmount != 10000 {
		t.Errorf("expected total 10000, got %d", stats.TotalAmount)
	}
	if stats.AverageAmount != 2500 {
		t.Errorf("expected average 2500, got %f", stats.AverageAmount)
	}
	if stats.MinAmount != 1000 || stats.MaxAmount != 4000 {
		t.Errorf("unexpected min/max: %d/%d", stats.MinAmount, stats.MaxAmount)
	}
	if stats.ByStatus[models.TicketPending] != 3 || stats.ByStatus[models.TicketCancelled] != 1 {
		t.Errorf("unexpected status histogram: %v", stats.ByStatus)
	}

	filtered, err := repo.Stats(TicketSearchFilters{Purchaser: "stats@example.com"})
	if err != nil {
		t.Fatalf("filtered Stats failed: %v", err)
	}
	if filtered.TotalTickets != 3 || filtered.TotalAmount != 6000 {
		t.Errorf("unexpected filtered stats: %+v", filtered)
	}
}

func TestTicketStatsEmpty(t *testing.T) {
	db := newTestDB(t)
	repo := NewTicketRepository(db.DB)

	stats, err := repo.Stats(TicketSearchFilters{})
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalTickets != 0 || stats.TotalAmount != 0 || stats.MinAmount != 0 {
		t.Errorf("expected zeroed stats, got %+v", stats)
	}
	if len(stats.ByStatus) != 0 {
		t.Errorf("expected empty histogram, got %v", stats.ByStatus)
	}
}

func TestTicketDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewTicketRepository(db.DB)

	ticket := seedTicket(t, repo, "del@example.com", []models.TicketItem{
		{ProductID: 1, Title: "X", Quantity: 1, Price: 100},
	})

	if err := repo.Delete(ticket.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.GetByID(ticket.ID); !models.IsNotFound(err) {
		t.Errorf("expected not found after delete, got %v", err)
	}
	if err := repo.Delete(ticket.ID); !models.IsNotFound(err) {
		t.Errorf("expected not found on second delete, got %v", err)
	}
}
