package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"ecommerce-platform/internal/models"
)

// CheckoutOutcome classifies a finished purchase
type CheckoutOutcome string

const (
	OutcomeComplete CheckoutOutcome = "complete"
	OutcomePartial  CheckoutOutcome = "partial"
)

// ErrCheckoutInProgress is returned when the same attempt id is already
// being processed by another request.
var ErrCheckoutInProgress = errors.New("checkout attempt already in progress")

// attemptTTL bounds how long an attempt id stays locked or remembered
const attemptTTL = 24 * time.Hour

// PurchaseRequest describes one checkout attempt. AttemptID deduplicates
// retries of the same attempt; callers that do not retry may leave it empty.
type PurchaseRequest struct {
	CartID    int
	AttemptID string
	Purchaser Purchaser
}

// Purchaser identifies who is buying
type Purchaser struct {
	Email string
	Name  string
}

// CheckoutResult is the outcome of a purchase. Rejected carries the cart
// lines that could not be fulfilled; on a partial outcome those lines stay
// in the cart.
type CheckoutResult struct {
	Outcome  CheckoutOutcome       `json:"outcome"`
	Ticket   *models.Ticket        `json:"ticket"`
	Rejected []models.RejectedLine `json:"rejected,omitempty"`
	Replayed bool                  `json:"-"`
}

// CheckoutEngine orchestrates a purchase: it validates the cart against the
// catalog, claims stock line by line with conditional decrements, persists a
// ticket with price snapshots and trims the purchased lines from the cart.
type CheckoutEngine struct {
	products    StockStore
	carts       CheckoutCartStore
	tickets     CheckoutTicketStore
	idempotency IdempotencyStore
	notifier    Notifier
	logger      *zap.Logger
}

// NewCheckoutEngine creates a checkout engine. idempotency and notifier may
// be nil, disabling attempt deduplication and confirmations respectively.
func NewCheckoutEngine(
	products StockStore,
	carts CheckoutCartStore,
	tickets CheckoutTicketStore,
	idempotency IdempotencyStore,
	notifier Notifier,
	logger *zap.Logger,
) *CheckoutEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutEngine{
		products:    products,
		carts:       carts,
		tickets:     tickets,
		idempotency: idempotency,
		notifier:    notifier,
		logger:      logger,
	}
}

// Purchase runs one checkout attempt.
//
// Lines whose product passes validation are claimed one at a time with an
// atomic conditional decrement, so a line that raced another buyer is
// rejected instead of overselling. If every line is claimed the outcome is
// complete; if only some are, the outcome is partial and the rejected lines
// remain in the cart for a retry. If none are, no ticket is created, stock
// is untouched and ErrInsufficientItems is returned alongside a result
// carrying the per-line rejection reasons.
func (e *CheckoutEngine) Purchase(ctx context.Context, req PurchaseRequest) (*CheckoutResult, error) {
	if req.Purchaser.Email == "" {
		return nil, models.NewValidationError("purchaser", "purchaser email is required")
	}

	if replay, err := e.recallAttempt(ctx, req.AttemptID); replay != nil || err != nil {
		return replay, err
	}
	locked, err := e.lockAttempt(ctx, req.AttemptID)
	if err != nil {
		return nil, err
	}

	cart, err := e.carts.GetByID(req.CartID)
	if err != nil {
		e.unlockAttempt(ctx, req.AttemptID, locked)
		return nil, err
	}
	if len(cart.Items) == 0 {
		e.unlockAttempt(ctx, req.AttemptID, locked)
		return nil, models.ErrInsufficientItems
	}

	validation, err := e.carts.ValidateAgainstCatalog(cart)
	if err != nil {
		e.unlockAttempt(ctx, req.AttemptID, locked)
		return nil, err
	}

	purchased, rejected, err := e.claimStock(validation)
	if err != nil {
		e.unlockAttempt(ctx, req.AttemptID, locked)
		return nil, err
	}

	if len(purchased) == 0 {
		e.unlockAttempt(ctx, req.AttemptID, locked)
		return &CheckoutResult{Rejected: rejected}, models.ErrInsufficientItems
	}

	ticket, err := e.tickets.Create(&models.TicketCreateRequest{
		Purchaser: req.Purchaser.Email,
		Items:     purchased,
	})
	if err != nil {
		e.releaseStock(purchased)
		e.unlockAttempt(ctx, req.AttemptID, locked)
		return nil, fmt.Errorf("failed to persist ticket: %w", err)
	}

	// Trim only the purchased lines; rejected ones stay for a retry
	productIDs := make([]int, len(purchased))
	for i, item := range purchased {
		productIDs[i] = item.ProductID
	}
	if err := e.carts.RemoveItems(req.CartID, productIDs); err != nil {
		e.logger.Error("failed to trim purchased lines from cart",
			zap.Int("cart_id", req.CartID),
			zap.String("ticket_code", ticket.Code),
			zap.Error(err))
	}

	result := &CheckoutResult{
		Ticket:   ticket,
		Rejected: rejected,
		Outcome:  OutcomeComplete,
	}
	if len(rejected) > 0 {
		result.Outcome = OutcomePartial
	}

	e.rememberAttempt(ctx, req.AttemptID, result)
	e.notify(ctx, req.Purchaser, ticket)

	e.logger.Info("checkout finished",
		zap.Int("cart_id", req.CartID),
		zap.String("ticket_code", ticket.Code),
		zap.String("outcome", string(result.Outcome)),
		zap.Int("purchased_lines", len(purchased)),
		zap.Int("rejected_lines", len(rejected)))

	return result, nil
}

// claimStock decrements stock for each validated line. Validation is only
// advisory, so a line can still lose a race here and move to the rejected
// set with the stock observed at failure time.
func (e *CheckoutEngine) claimStock(validation *models.CartValidation) ([]models.TicketItem, []models.RejectedLine, error) {
	purchased := make([]models.TicketItem, 0, len(validation.Valid))
	rejected := append([]models.RejectedLine{}, validation.Invalid...)

	for _, line := range validation.Valid {
		_, err := e.products.DecrementStock(line.Item.ProductID, line.Item.Quantity)
		if err != nil {
			var stockErr *models.InsufficientStockError
			switch {
			case errors.As(err, &stockErr):
				rejected = append(rejected, models.RejectedLine{
					Item:           line.Item,
					Reason:         models.ReasonInsufficientStock,
					AvailableStock: stockErr.Available,
				})
			case models.IsNotFound(err):
				rejected = append(rejected, models.RejectedLine{
					Item:   line.Item,
					Reason: models.ReasonProductMissing,
				})
			default:
				e.releaseStock(purchased)
				return nil, nil, fmt.Errorf("failed to claim stock: %w", err)
			}
			continue
		}

		purchased = append(purchased, models.TicketItem{
			ProductID: line.Item.ProductID,
			Title:     line.Product.Title,
			Quantity:  line.Item.Quantity,
			Price:     line.Product.Price,
			Subtotal:  line.Product.Price * line.Item.Quantity,
		})
	}

	return purchased, rejected, nil
}

// releaseStock undoes claimed decrements after a downstream failure
func (e *CheckoutEngine) releaseStock(purchased []models.TicketItem) {
	for _, item := range purchased {
		if _, err := e.products.IncrementStock(item.ProductID, item.Quantity); err != nil {
			e.logger.Error("failed to release claimed stock",
				zap.Int("product_id", item.ProductID),
				zap.Int("quantity", item.Quantity),
				zap.Error(err))
		}
	}
}

func (e *CheckoutEngine) recallAttempt(ctx context.Context, attemptID string) (*CheckoutResult, error) {
	if e.idempotency == nil || attemptID == "" {
		return nil, nil
	}

	value, found, err := e.idempotency.Recall(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to check attempt id: %w", err)
	}
	if !found {
		return nil, nil
	}

	outcome, code, ok := strings.Cut(value, " ")
	if !ok {
		return nil, fmt.Errorf("corrupt attempt record %q", value)
	}
	ticket, err := e.tickets.GetByCode(code)
	if err != nil {
		return nil, fmt.Errorf("failed to load replayed ticket: %w", err)
	}

	e.logger.Info("replayed checkout attempt",
		zap.String("attempt_id", attemptID),
		zap.String("ticket_code", code))

	return &CheckoutResult{
		Outcome:  CheckoutOutcome(outcome),
		Ticket:   ticket,
		Replayed: true,
	}, nil
}

func (e *CheckoutEngine) lockAttempt(ctx context.Context, attemptID string) (bool, error) {
	if e.idempotency == nil || attemptID == "" {
		return false, nil
	}

	locked, err := e.idempotency.TryLock(ctx, attemptID, attemptTTL)
	if err != nil {
		return false, fmt.Errorf("failed to lock attempt id: %w", err)
	}
	if !locked {
		return false, ErrCheckoutInProgress
	}
	return true, nil
}

func (e *CheckoutEngine) unlockAttempt(ctx context.Context, attemptID string, locked bool) {
	if !locked {
		return
	}
	if err := e.idempotency.Release(ctx, attemptID); err != nil {
		e.logger.Warn("failed to release attempt lock",
			zap.String("attempt_id", attemptID),
			zap.Error(err))
	}
}

func (e *CheckoutEngine) rememberAttempt(ctx context.Context, attemptID string, result *CheckoutResult) {
	if e.idempotency == nil || attemptID == "" {
		return
	}

	value := fmt.Sprintf("%s %s", result.Outcome, result.Ticket.Code)
	if err := e.idempotency.Remember(ctx, attemptID, value, attemptTTL); err != nil {
		e.logger.Warn("failed to record attempt outcome",
			zap.String("attempt_id", attemptID),
			zap.Error(err))
	}
}

func (e *CheckoutEngine) notify(ctx context.Context, purchaser Purchaser, ticket *models.Ticket) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Send(ctx, purchaser.Email, purchaser.Name, ticket); err != nil {
		e.logger.Warn("failed to send purchase confirmation",
			zap.String("purchaser", purchaser.Email),
			zap.String("ticket_code", ticket.Code),
			zap.Error(err))
	}
}
