package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"ecommerce-platform/internal/models"
)

// TicketRepository handles ticket data operations
type TicketRepository struct {
	db *sql.DB
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(db *sql.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// TicketSearchFilters represents filters for ticket search
type TicketSearchFilters struct {
	Purchaser string
	Status    models.TicketStatus
	DateFrom  time.Time
	DateTo    time.Time
	MinAmount int
	MaxAmount int
	Limit     int
	Offset    int
}

func (f TicketSearchFilters) build() (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if f.Purchaser != "" {
		conditions = append(conditions, "purchaser = ?")
		args = append(args, f.Purchaser)
	}
	if f.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, f.Status)
	}
	if !f.DateFrom.IsZero() {
		conditions = append(conditions, "purchase_datetime >= ?")
		args = append(args, f.DateFrom)
	}
	if !f.DateTo.IsZero() {
		conditions = append(conditions, "purchase_datetime <= ?")
		args = append(args, f.DateTo)
	}
	if f.MinAmount > 0 {
		conditions = append(conditions, "amount >= ?")
		args = append(args, f.MinAmount)
	}
	if f.MaxAmount > 0 {
		conditions = append(conditions, "amount <= ?")
		args = append(args, f.MaxAmount)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// Create persists a ticket with its item snapshots in a single transaction.
// The code is generated here; amount is recomputed from the item subtotals.
func (r *TicketRepository) Create(req *models.TicketCreateRequest) (*models.Ticket, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	code := models.GenerateTicketCode()
	now := time.Now().UTC()
	amount := req.Amount()

	result, err := tx.Exec(`
		INSERT INTO tickets (code, purchaser, purchase_datetime, amount, status)
		VALUES (?, ?, ?, ?, ?)`,
		code, req.Purchaser, now, amount, models.TicketPending,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, models.ErrDuplicateCode
		}
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket id: %w", err)
	}

	for _, item := range req.Items {
		_, err := tx.Exec(`
			INSERT INTO ticket_items (ticket_id, product_id, title, quantity, price, subtotal)
			VALUES (?, ?, ?, ?, ?, ?)`,
			id, item.ProductID, item.Title, item.Quantity, item.Price, item.Subtotal,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create ticket item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	return &models.Ticket{
		ID:               int(id),
		Code:             code,
		Purchaser:        req.Purchaser,
		PurchaseDatetime: now,
		Amount:           amount,
		Items:            req.Items,
		Status:           models.TicketPending,
	}, nil
}

func (r *TicketRepository) loadItems(ticketID int) ([]models.TicketItem, error) {
	rows, err := r.db.Query(`
		SELECT product_id, title, quantity, price, subtotal
		FROM ticket_items WHERE ticket_id = ? ORDER BY id`, ticketID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket items: %w", err)
	}
	defer rows.Close()

	items := []models.TicketItem{}
	for rows.Next() {
		var item models.TicketItem
		if err := rows.Scan(&item.ProductID, &item.Title, &item.Quantity, &item.Price, &item.Subtotal); err != nil {
			return nil, fmt.Errorf("failed to scan ticket item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (r *TicketRepository) getBy(column string, value interface{}) (*models.Ticket, error) {
	ticket := &models.Ticket{}
	query := fmt.Sprintf(`
		SELECT id, code, purchaser, purchase_datetime, amount, status
		FROM tickets WHERE %s = ?`, column)

	err := r.db.QueryRow(query, value).Scan(
		&ticket.ID, &ticket.Code, &ticket.Purchaser,
		&ticket.PurchaseDatetime, &ticket.Amount, &ticket.Status,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.NewNotFoundError("ticket", value)
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	ticket.Items, err = r.loadItems(ticket.ID)
	if err != nil {
		return nil, err
	}

	return ticket, nil
}

// GetByID retrieves a ticket with its items
func (r *TicketRepository) GetByID(id int) (*models.Ticket, error) {
	return r.getBy("id", id)
}

// GetByCode retrieves a ticket by its public code
func (r *TicketRepository) GetByCode(code string) (*models.Ticket, error) {
	return r.getBy("code", code)
}

// Search returns tickets matching the filters, newest first, plus the total
// match count for pagination
func (r *TicketRepository) Search(filters TicketSearchFilters) ([]*models.Ticket, int, error) {
	whereClause, args := filters.build()

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM tickets %s", whereClause)
	var total int
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tickets: %w", err)
	}

	if filters.Limit <= 0 {
		filters.Limit = 50
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	query := fmt.Sprintf(`
		SELECT id, code, purchaser, purchase_datetime, amount, status
		FROM tickets %s
		ORDER BY purchase_datetime DESC, id DESC
		LIMIT ? OFFSET ?`, whereClause)
	args = append(args, filters.Limit, filters.Offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*models.Ticket
	for rows.Next() {
		ticket := &models.Ticket{}
		err := rows.Scan(
			&ticket.ID, &ticket.Code, &ticket.Purchaser,
			&ticket.PurchaseDatetime, &ticket.Amount, &ticket.Status,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating tickets: %w", err)
	}

	for _, ticket := range tickets {
		ticket.Items, err = r.loadItems(ticket.ID)
		if err != nil {
			return nil, 0, err
		}
	}

	return tickets, total, nil
}

// UpdateStatus moves a ticket to a new status, enforcing the transition
// rules. Terminal tickets reject every change.
func (r *TicketRepository) UpdateStatus(id int, status models.TicketStatus) (*models.Ticket, error) {
	if err := models.ValidateTicketStatus(status); err != nil {
		return nil, err
	}

	ticket, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}

	if !ticket.CanTransitionTo(status) {
		return nil, &models.InvalidTransitionError{From: ticket.Status, To: status}
	}

	// Guard the transition in SQL too, in case the ticket moved since the read
	result, err := r.db.Exec(
		"UPDATE tickets SET status = ? WHERE id = ? AND status = ?",
		status, id, ticket.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update ticket status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, &models.InvalidTransitionError{From: ticket.Status, To: status}
	}

	ticket.Status = status
	return ticket, nil
}

// Delete deletes a ticket and its items
func (r *TicketRepository) Delete(id int) error {
	result, err := r.db.Exec("DELETE FROM tickets WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete ticket: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.NewNotFoundError("ticket", id)
	}

	return nil
}

// Stats aggregates the tickets matching the filters. Min and max are zero
// when nothing matches.
func (r *TicketRepository) Stats(filters TicketSearchFilters) (*models.TicketStats, error) {
	whereClause, args := filters.build()

	stats := &models.TicketStats{ByStatus: map[models.TicketStatus]int{}}

	query := fmt.Sprintf(`
		SELECT COUNT(*),
		       COALESCE(SUM(amount), 0),
		       COALESCE(AVG(amount), 0),
		       COALESCE(MIN(amount), 0),
		       COALESCE(MAX(amount), 0)
		FROM tickets %s`, whereClause)

	err := r.db.QueryRow(query, args...).Scan(
		&stats.TotalTickets, &stats.TotalAmount, &stats.AverageAmount,
		&stats.MinAmount, &stats.MaxAmount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate tickets: %w", err)
	}

	histQuery := fmt.Sprintf(
		"SELECT status, COUNT(*) FROM tickets %s GROUP BY status", whereClause)
	rows, err := r.db.Query(histQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ticket statuses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status models.TicketStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		stats.ByStatus[status] = count
	}

	return stats, rows.Err()
}
