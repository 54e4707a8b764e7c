package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"ecommerce-platform/internal/models"
)

// In-memory fakes used by the service tests. They implement the narrow
// checkout interfaces against plain maps so engine behavior can be tested
// without a database.

type mockStockStore struct {
	mu     sync.Mutex
	stock  map[int]int
	failOn map[int]error // forced error per product id
}

func newMockStockStore(stock map[int]int) *mockStockStore {
	return &mockStockStore{stock: stock, failOn: map[int]error{}}
}

func (m *mockStockStore) DecrementStock(id, quantity int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.failOn[id]; ok {
		return 0, err
	}
	available, ok := m.stock[id]
	if !ok {
		return 0, models.NewNotFoundError("product", id)
	}
	if available < quantity {
		return 0, &models.InsufficientStockError{ProductID: id, Requested: quantity, Available: available}
	}
	m.stock[id] = available - quantity
	return m.stock[id], nil
}

func (m *mockStockStore) IncrementStock(id, quantity int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.stock[id]; !ok {
		return 0, models.NewNotFoundError("product", id)
	}
	m.stock[id] += quantity
	return m.stock[id], nil
}

func (m *mockStockStore) current(id int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stock[id]
}

type mockCartStore struct {
	carts     map[int]*models.Cart
	catalog   map[int]*models.Product
	trimmed   map[int][]int // cartID -> product ids removed
	getErr    error
	validErr  error
	removeErr error
}

func newMockCartStore() *mockCartStore {
	return &mockCartStore{
		carts:   map[int]*models.Cart{},
		catalog: map[int]*models.Product{},
		trimmed: map[int][]int{},
	}
}

func (m *mockCartStore) GetByID(id int) (*models.Cart, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	cart, ok := m.carts[id]
	if !ok {
		return nil, models.NewNotFoundError("cart", id)
	}
	return cart, nil
}

func (m *mockCartStore) ValidateAgainstCatalog(cart *models.Cart) (*models.CartValidation, error) {
	if m.validErr != nil {
		return nil, m.validErr
	}

	validation := &models.CartValidation{}
	for _, item := range cart.Items {
		product, ok := m.catalog[item.ProductID]
		switch {
		case !ok:
			validation.Invalid = append(validation.Invalid, models.RejectedLine{
				Item: item, Reason: models.ReasonProductMissing,
			})
		case !product.IsActive():
			validation.Invalid = append(validation.Invalid, models.RejectedLine{
				Item: item, Reason: models.ReasonProductInactive, AvailableStock: product.Stock,
			})
		case product.Stock < item.Quantity:
			validation.Invalid = append(validation.Invalid, models.RejectedLine{
				Item: item, Reason: models.ReasonInsufficientStock, AvailableStock: product.Stock,
			})
		default:
			validation.Valid = append(validation.Valid, models.ValidatedLine{Item: item, Product: product})
		}
	}
	return validation, nil
}

func (m *mockCartStore) RemoveItems(cartID int, productIDs []int) error {
	if m.removeErr != nil {
		return m.removeErr
	}

	m.trimmed[cartID] = append(m.trimmed[cartID], productIDs...)
	cart := m.carts[cartID]
	if cart == nil {
		return nil
	}

	remove := map[int]bool{}
	for _, id := range productIDs {
		remove[id] = true
	}
	kept := cart.Items[:0]
	for _, item := range cart.Items {
		if !remove[item.ProductID] {
			kept = append(kept, item)
		}
	}
	cart.Items = kept
	return nil
}

type mockTicketStore struct {
	mu      sync.Mutex
	created []*models.Ticket
	nextID  int
	failErr error
}

func (m *mockTicketStore) Create(req *models.TicketCreateRequest) (*models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failErr != nil {
		return nil, m.failErr
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	m.nextID++
	ticket := &models.Ticket{
		ID:        m.nextID,
		Code:      fmt.Sprintf("ticket-%d", m.nextID),
		Purchaser: req.Purchaser,
		Amount:    req.Amount(),
		Items:     req.Items,
		Status:    models.TicketPending,
	}
	m.created = append(m.created, ticket)
	return ticket, nil
}

func (m *mockTicketStore) GetByCode(code string) (*models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, ticket := range m.created {
		if ticket.Code == code {
			return ticket, nil
		}
	}
	return nil, models.NewNotFoundError("ticket", code)
}

type mockNotifier struct {
	mu   sync.Mutex
	sent []string // ticket codes
	err  error
}

func (m *mockNotifier) Send(_ context.Context, email, name string, ticket *models.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, ticket.Code)
	return nil
}

func sortedIDs(items []models.TicketItem) []int {
	ids := make([]int, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}
	sort.Ints(ids)
	return ids
}
