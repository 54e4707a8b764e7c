package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"ecommerce-platform/internal/models"
)

type checkoutFixture struct {
	engine  *CheckoutEngine
	stock   *mockStockStore
	carts   *mockCartStore
	tickets *mockTicketStore
}

// newCheckoutFixture builds an engine over a cart with three products:
// two healthy, one inactive.
func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()

	carts := newMockCartStore()
	carts.catalog[1] = &models.Product{ID: 1, Title: "Widget", Price: 1500, Stock: 10, Status: models.ProductActive}
	carts.catalog[2] = &models.Product{ID: 2, Title: "Gadget", Price: 4200, Stock: 5, Status: models.ProductActive}
	carts.catalog[3] = &models.Product{ID: 3, Title: "Relic", Price: 9900, Stock: 1, Status: models.ProductInactive}

	stock := newMockStockStore(map[int]int{1: 10, 2: 5, 3: 1})
	tickets := &mockTicketStore{}

	return &checkoutFixture{
		engine:  NewCheckoutEngine(stock, carts, tickets, nil, nil, nil),
		stock:   stock,
		carts:   carts,
		tickets: tickets,
	}
}

func (f *checkoutFixture) withCart(id int, items ...models.CartItem) {
	f.carts.carts[id] = &models.Cart{ID: id, Items: items}
}

func buyer() Purchaser {
	return Purchaser{Email: "buyer@example.com", Name: "Buyer"}
}

func TestPurchaseComplete(t *testing.T) {
	f := newCheckoutFixture(t)
	f.withCart(1,
		models.CartItem{ProductID: 1, Quantity: 2},
		models.CartItem{ProductID: 2, Quantity: 1},
	)

	result, err := f.engine.Purchase(context.Background(), PurchaseRequest{CartID: 1, Purchaser: buyer()})
	if err != nil {
		t.Fatalf("Purchase failed: %v", err)
	}

	if result.Outcome != OutcomeComplete {
		t.Errorf("expected complete outcome, got %s", result.Outcome)
	}
	if len(result.Rejected) != 0 {
		t.Errorf("expected no rejected lines, got %+v", result.Rejected)
	}
	if result.Ticket == nil {
		t.Fatal("expected a ticket")
	}
	if result.Ticket.Amount != 2*1500+4200 {
		t.Errorf("expected amount %d, got %d", 2*1500+4200, result.Ticket.Amount)
	}
	if f.stock.current(1) != 8 || f.stock.current(2) != 4 {
		t.Errorf("stock not decremented: %d, %d", f.stock.current(1), f.stock.current(2))
	}
	if len(f.carts.carts[1].Items) != 0 {
		t.Errorf("cart should be emptied, got %+v", f.carts.carts[1].Items)
	}
}

func TestPurchasePriceSnapshot(t *testing.T) {
	f := newCheckoutFixture(t)
	f.withCart(1, models.CartItem{ProductID: 1, Quantity: 3})

	result, err := f.engine.Purchase(context.Background(), PurchaseRequest{CartID: 1, Purchaser: buyer()})
	if err != nil {
		t.Fatalf("Purchase failed: %v", err)
	}

	item := result.Ticket.Items[0]
	if item.Title != "Widget" || item.Price != 1500 || item.Subtotal != 4500 {
		t.Errorf("snapshot mismatch: %+v", item)
	}
}

func TestPurchasePartial(t *testing.T) {
	f := newCheckoutFixture(t)
	f.withCart(1,
		models.CartItem{ProductID: 1, Quantity: 2},
		models.CartItem{ProductID: 3, Quantity: 1},  // inactive
		models.CartItem{ProductID: 2, Quantity: 50}, // more than stock
	)

	result, err := f.engine.Purchase(context.Background(), PurchaseRequest{CartID: 1, Purchaser: buyer()})
	if err != nil {
		t.Fatalf("Purchase failed: %v", err)
	}

	if result.Outcome != OutcomePartial {
		t.Errorf("expected partial outcome, got %s", result.Outcome)
	}
	if len(result.Ticket.Items) != 1 || result.Ticket.Items[0].ProductID != 1 {
		t.Errorf("unexpected purchased items: %+v", result.Ticket.Items)
	}
	if len(result.Rejected) != 2 {
		t.Fatalf("expected 2 rejected lines, got %d", len(result.Rejected))
	}

	reasons := map[int]string{}
	for _, line := range result.Rejected {
		reasons[line.Item.ProductID] = line.Reason
	}
	if reasons[3] != models.ReasonProductInactive || reasons[2] != models.ReasonInsufficientStock {
		t.Errorf("unexpected reasons: %v", reasons)
	}

	// Rejected lines stay in the cart, purchased ones leave
	remaining := f.carts.carts[1].Items
	if len(remaining) != 2 {
		t.Fatalf("expected 2 lines left in cart, got %d", len(remaining))
	}
	for _, item := range remaining {
		if item.ProductID == 1 {
			t.Error("purchased line was not trimmed from cart")
		}
	}
}

// A line that passes validation can still lose the race at decrement time.
func TestPurchaseLineRacesToRejection(t *testing.T) {
	f := newCheckoutFixture(t)
	f.withCart(1,
		models.CartItem{ProductID: 1, Quantity: 2},
		models.CartItem{ProductID: 2, Quantity: 3},
	)
	// Catalog snapshot says 5 in stock, but another buyer got there first
	f.stock.stock[2] = 1

	result, err := f.engine.Purchase(context.Background(), PurchaseRequest{CartID: 1, Purchaser: buyer()})
	if err != nil {
		t.Fatalf("Purchase failed: %v", err)
	}

	if result.Outcome != OutcomePartial {
		t.Errorf("expected partial outcome, got %s", result.Outcome)
	}
	if len(result.Rejected) != 1 {
		t.Fatalf("expected 1 rejected line, got %d", len(result.Rejected))
	}
	line := result.Rejected[0]
	if line.Item.ProductID != 2 || line.Reason != models.ReasonInsufficientStock || line.AvailableStock != 1 {
		t.Errorf("unexpected rejected line: %+v", line)
	}
}

func TestPurchaseNothingFulfillable(t *testing.T) {
	f := newCheckoutFixture(t)
	f.withCart(1,
		models.CartItem{ProductID: 3, Quantity: 1},  // inactive
		models.CartItem{ProductID: 99, Quantity: 1}, // missing
	)

	result, err := f.engine.Purchase(context.Background(), PurchaseRequest{CartID: 1, Purchaser: buyer()})
	if !errors.Is(err, models.ErrInsufficientItems) {
		t.Fatalf("expected ErrInsufficientItems, got %v", err)
	}
	if result == nil || len(result.Rejected) != 2 {
		t.Fatalf("expected rejection detail, got %+v", result)
	}
	if len(f.tickets.created) != 0 {
		t.Error("no ticket should be created")
	}
	if len(f.carts.carts[1].Items) != 2 {
		t.Error("cart must be untouched when nothing is fulfillable")
	}
}

func TestPurchaseEmptyCart(t *testing.T) {
	f := newCheckoutFixture(t)
	f.withCart(1)

	_, err := f.engine.Purchase(context.Background(), PurchaseRequest{CartID: 1, Purchaser: buyer()})
	if !errors.Is(err, models.ErrInsufficientItems) {
		t.Errorf("expected ErrInsufficientItems, got %v", err)
	}
}

func TestPurchaseCartNotFound(t *testing.T) {
	f := newCheckoutFixture(t)

	_, err := f.engine.Purchase(context.Background(), PurchaseRequest{CartID: 404, Purchaser: buyer()})
	if !models.IsNotFound(err) {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestPurchaseMissingPurchaser(t *testing.T) {
	f := newCheckoutFixture(t)
	f.withCart(1, models.CartItem{ProductID: 1, Quantity: 1})

	_, err := f.engine.Purchase(context.Background(), PurchaseRequest{CartID: 1})
	if !models.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

// If ticket persistence fails, every claimed decrement is rolled back.
func TestPurchaseTicketFailureReleasesStock(t *testing.T) {
	f := newCheckoutFixture(t)
	f.withCart(1,
		models.CartItem{ProductID: 1, Quantity: 2},
		models.CartItem{ProductID: 2, Quantity: 1},
	)
	f.tickets.failErr = errors.New("disk full")

	_, err := f.engine.Purchase(context.Background(), PurchaseRequest{CartID: 1, Purchaser: buyer()})
	if err == nil {
		t.Fatal("expected an error")
	}
	if f.stock.current(1) != 10 || f.stock.current(2) != 5 {
		t.Errorf("stock not released: %d, %d", f.stock.current(1), f.stock.current(2))
	}
	if len(f.carts.carts[1].Items) != 2 {
		t.Error("cart must be untouched after a failed checkout")
	}
}

func TestPurchaseNotifierFailureIsBestEffort(t *testing.T) {
	f := newCheckoutFixture(t)
	f.withCart(1, models.CartItem{ProductID: 1, Quantity: 1})

	notifier := &mockNotifier{err: errors.New("smtp down")}
	f.engine.notifier = notifier

	result, err := f.engine.Purchase(context.Background(), PurchaseRequest{CartID: 1, Purchaser: buyer()})
	if err != nil {
		t.Fatalf("Purchase must not fail on notifier error: %v", err)
	}
	if result.Outcome != OutcomeComplete {
		t.Errorf("expected complete outcome, got %s", result.Outcome)
	}
}

func TestPurchaseNotifies(t *testing.T) {
	f := newCheckoutFixture(t)
	f.withCart(1, models.CartItem{ProductID: 1, Quantity: 1})

	notifier := &mockNotifier{}
	f.engine.notifier = notifier

	result, err := f.engine.Purchase(context.Background(), PurchaseRequest{CartID: 1, Purchaser: buyer()})
	if err != nil {
		t.Fatalf("Purchase failed: %v", err)
	}
	if !reflect.DeepEqual(notifier.sent, []string{result.Ticket.Code}) {
		t.Errorf("expected confirmation for %s, got %v", result.Ticket.Code, notifier.sent)
	}
}

func TestPurchaseIdempotentReplay(t *testing.T) {
	f := newCheckoutFixture(t)
	f.withCart(1, models.CartItem{ProductID: 1, Quantity: 2})
	f.engine.idempotency = NewMemoryIdempotencyStore()

	req := PurchaseRequest{CartID: 1, AttemptID: "attempt-1", Purchaser: buyer()}

	first, err := f.engine.Purchase(context.Background(), req)
	if err != nil {
		t.Fatalf("first Purchase failed: %v", err)
	}

	// Retry of the same attempt returns the original ticket without
	// touching stock again
	second, err := f.engine.Purchase(context.Background(), req)
	if err != nil {
		t.Fatalf("replayed Purchase failed: %v", err)
	}

	if !second.Replayed {
		t.Error("expected replayed result")
	}
	if second.Ticket.Code != first.Ticket.Code {
		t.Errorf("replay returned a different ticket: %s vs %s", second.Ticket.Code, first.Ticket.Code)
	}
	if second.Outcome != first.Outcome {
		t.Errorf("replay changed outcome: %s vs %s", second.Outcome, first.Outcome)
	}
	if len(f.tickets.created) != 1 {
		t.Errorf("expected a single ticket, got %d", len(f.tickets.created))
	}
	if f.stock.current(1) != 8 {
		t.Errorf("stock charged twice: %d", f.stock.current(1))
	}
}

func TestPurchaseAttemptLockContention(t *testing.T) {
	f := newCheckoutFixture(t)
	f.withCart(1, models.CartItem{ProductID: 1, Quantity: 1})

	store := NewMemoryIdempotencyStore()
	f.engine.idempotency = store

	// Simulate an in-flight attempt holding the lock
	locked, err := store.TryLock(context.Background(), "attempt-busy", attemptTTL)
	if err != nil || !locked {
		t.Fatalf("failed to prepare lock: %v", err)
	}

	_, err = f.engine.Purchase(context.Background(), PurchaseRequest{
		CartID: 1, AttemptID: "attempt-busy", Purchaser: buyer(),
	})
	if !errors.Is(err, ErrCheckoutInProgress) {
		t.Errorf("expected ErrCheckoutInProgress, got %v", err)
	}
}

// A failed attempt releases its lock so the same attempt id can retry.
func TestPurchaseFailedAttemptUnlocks(t *testing.T) {
	f := newCheckoutFixture(t)
	f.withCart(1, models.CartItem{ProductID: 1, Quantity: 1})
	f.engine.idempotency = NewMemoryIdempotencyStore()
	f.tickets.failErr = errors.New("disk full")

	req := PurchaseRequest{CartID: 1, AttemptID: "attempt-retry", Purchaser: buyer()}
	if _, err := f.engine.Purchase(context.Background(), req); err == nil {
		t.Fatal("expected first attempt to fail")
	}

	f.tickets.failErr = nil
	result, err := f.engine.Purchase(context.Background(), req)
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if result.Outcome != OutcomeComplete {
		t.Errorf("expected complete outcome on retry, got %s", result.Outcome)
	}
}

func TestPurchaseQuantityMultiplies(t *testing.T) {
	f := newCheckoutFixture(t)
	f.withCart(1, models.CartItem{ProductID: 2, Quantity: 4})

	result, err := f.engine.Purchase(context.Background(), PurchaseRequest{CartID: 1, Purchaser: buyer()})
	if err != nil {
		t.Fatalf("Purchase failed: %v", err)
	}
	if got := sortedIDs(result.Ticket.Items); !reflect.DeepEqual(got, []int{2}) {
		t.Fatalf("unexpected items: %v", got)
	}
	if result.Ticket.Amount != 4*4200 {
		t.Errorf("expected amount %d, got %d", 4*4200, result.Ticket.Amount)
	}
	if f.stock.current(2) != 1 {
		t.Errorf("expected stock 1, got %d", f.stock.current(2))
	}
}
