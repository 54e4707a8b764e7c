package models

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// TicketStatus represents the fulfillment status of a purchase ticket
type TicketStatus string

const (
	TicketPending    TicketStatus = "pending"
	TicketProcessing TicketStatus = "processing"
	TicketCompleted  TicketStatus = "completed"
	TicketCancelled  TicketStatus = "cancelled"
)

// ticketTransitions defines the allowed status transitions. Processing is
// an optional intermediate state; completed and cancelled are terminal.
var ticketTransitions = map[TicketStatus][]TicketStatus{
	TicketPending:    {TicketProcessing, TicketCompleted, TicketCancelled},
	TicketProcessing: {TicketCompleted, TicketCancelled},
	TicketCompleted:  {},
	TicketCancelled:  {},
}

// Ticket represents an immutable order receipt produced by checkout.
// Only Status changes after creation, under the transition rules above.
type Ticket struct {
	ID                int          `json:"id" db:"id"`
	Code              string       `json:"code" db:"code"`
	Purchaser         string       `json:"purchaser" db:"purchaser"`
	PurchaseDatetime  time.Time    `json:"purchase_datetime" db:"purchase_datetime"`
	Amount            int          `json:"amount" db:"amount"` // Amount in cents
	Items             []TicketItem `json:"items"`
	Status            TicketStatus `json:"status" db:"status"`
}

// TicketItem is a purchased line with the price frozen at purchase time
type TicketItem struct {
	ProductID int    `json:"product_id" db:"product_id"`
	Title     string `json:"title" db:"title"`
	Quantity  int    `json:"quantity" db:"quantity"`
	Price     int    `json:"price" db:"price"` // Snapshot, never re-read from the catalog
	Subtotal  int    `json:"subtotal" db:"subtotal"`
}

// TicketCreateRequest represents the data needed to persist a ticket
type TicketCreateRequest struct {
	Purchaser string
	Items     []TicketItem
}

var purchaserEmailRegex = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Validate validates ticket creation data and recomputes derived amounts
func (req *TicketCreateRequest) Validate() error {
	if req.Purchaser == "" {
		return NewValidationError("purchaser", "purchaser email is required")
	}
	if !purchaserEmailRegex.MatchString(req.Purchaser) {
		return NewValidationError("purchaser", "purchaser email format is invalid")
	}
	if len(req.Items) == 0 {
		return NewValidationError("items", "at least one item is required")
	}
	for i := range req.Items {
		item := &req.Items[i]
		if item.ProductID <= 0 {
			return NewValidationError("items", "item product id is required")
		}
		if item.Title == "" {
			return NewValidationError("items", "item title is required")
		}
		if item.Quantity < 1 {
			return NewValidationError("items", "item quantity must be at least 1")
		}
		if item.Price < 0 {
			return NewValidationError("items", "item price cannot be negative")
		}
		item.Subtotal = item.Price * item.Quantity
	}
	return nil
}

// Amount sums the item subtotals
func (req *TicketCreateRequest) Amount() int {
	total := 0
	for _, item := range req.Items {
		total += item.Subtotal
	}
	return total
}

// GenerateTicketCode generates a unique ticket code
func GenerateTicketCode() string {
	return uuid.NewString()
}

// CanTransitionTo reports whether the ticket may move to the given status
func (t *Ticket) CanTransitionTo(status TicketStatus) bool {
	allowed, ok := ticketTransitions[t.Status]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == status {
			return true
		}
	}
	return false
}

// ValidateTicketStatus checks that a status value is one of the known states
func ValidateTicketStatus(status TicketStatus) error {
	switch status {
	case TicketPending, TicketProcessing, TicketCompleted, TicketCancelled:
		return nil
	default:
		return NewValidationError("status", "invalid ticket status")
	}
}

// IsTerminal returns true if no further transitions are allowed
func (t *Ticket) IsTerminal() bool {
	return t.Status == TicketCompleted || t.Status == TicketCancelled
}

// AmountInCurrency returns the amount in the main currency unit as a float
func (t *Ticket) AmountInCurrency() float64 {
	return float64(t.Amount) / 100.0
}

// TicketView is the single projected response shape for a ticket
type TicketView struct {
	ID               int          `json:"id,omitempty"`
	Code             string       `json:"code"`
	Purchaser        string       `json:"purchaser,omitempty"`
	PurchaseDatetime time.Time    `json:"purchase_datetime"`
	Amount           int          `json:"amount"`
	Items            []TicketItem `json:"items,omitempty"`
	Status           TicketStatus `json:"status"`
}

// View projects the ticket for the given audience. Admin sees the internal
// id and purchaser; the public shape is what a buyer gets as a receipt.
func (t *Ticket) View(audience Audience) TicketView {
	view := TicketView{
		Code:             t.Code,
		PurchaseDatetime: t.PurchaseDatetime,
		Amount:           t.Amount,
		Items:            t.Items,
		Status:           t.Status,
	}
	if audience == AudienceAdmin {
		view.ID = t.ID
		view.Purchaser = t.Purchaser
	}
	return view
}

// TicketStats aggregates tickets matching a filter
type TicketStats struct {
	TotalTickets  int                  `json:"total_tickets"`
	TotalAmount   int                  `json:"total_amount"`
	AverageAmount float64              `json:"average_amount"`
	MinAmount     int                  `json:"min_amount"`
	MaxAmount     int                  `json:"max_amount"`
	ByStatus      map[TicketStatus]int `json:"by_status"`
}
