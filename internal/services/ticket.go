package services

import (
	"go.uber.org/zap"

	"ecommerce-platform/internal/models"
	"ecommerce-platform/internal/repositories"
)

// TicketService handles ticket business logic and access rules. A ticket is
// visible to its purchaser and to administrators; mutation is admin only.
type TicketService struct {
	tickets TicketStore
	logger  *zap.Logger
}

// NewTicketService creates a new ticket service
func NewTicketService(tickets TicketStore, logger *zap.Logger) *TicketService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{tickets: tickets, logger: logger}
}

func canSee(requester *models.User, ticket *models.Ticket) bool {
	return requester.IsAdmin() || requester.Email == ticket.Purchaser
}

// Get retrieves a ticket the requester is allowed to see
func (s *TicketService) Get(requester *models.User, id int) (*models.Ticket, error) {
	ticket, err := s.tickets.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !canSee(requester, ticket) {
		return nil, models.ErrUnauthorized
	}
	return ticket, nil
}

// GetByCode retrieves a ticket by its public code. The code is an unguessable
// receipt reference, so possession of it grants read access.
func (s *TicketService) GetByCode(code string) (*models.Ticket, error) {
	return s.tickets.GetByCode(code)
}

// Search lists tickets. Non-admin requesters only see their own.
func (s *TicketService) Search(requester *models.User, filters repositories.TicketSearchFilters) ([]*models.Ticket, int, error) {
	if !requester.IsAdmin() {
		filters.Purchaser = requester.Email
	}
	return s.tickets.Search(filters)
}

// Summary aggregates the requester's own tickets
func (s *TicketService) Summary(requester *models.User) (*models.TicketStats, error) {
	return s.tickets.Stats(repositories.TicketSearchFilters{Purchaser: requester.Email})
}

// Stats aggregates tickets matching the filters. Admin only.
func (s *TicketService) Stats(requester *models.User, filters repositories.TicketSearchFilters) (*models.TicketStats, error) {
	if !requester.IsAdmin() {
		return nil, models.ErrUnauthorized
	}
	return s.tickets.Stats(filters)
}

// UpdateStatus moves a ticket through its lifecycle. Admin only.
func (s *TicketService) UpdateStatus(requester *models.User, id int, status models.TicketStatus) (*models.Ticket, error) {
	if !requester.IsAdmin() {
		return nil, models.ErrUnauthorized
	}

	ticket, err := s.tickets.UpdateStatus(id, status)
	if err != nil {
		return nil, err
	}

	s.logger.Info("ticket status updated",
		zap.Int("ticket_id", id),
		zap.String("status", string(status)))
	return ticket, nil
}

// Delete removes a ticket. Admin only.
func (s *TicketService) Delete(requester *models.User, id int) error {
	if !requester.IsAdmin() {
		return models.ErrUnauthorized
	}

	if err := s.tickets.Delete(id); err != nil {
		return err
	}

	s.logger.Info("ticket deleted", zap.Int("ticket_id", id))
	return nil
}
