// Package order implements the order ledger: it turns committed cakes into
// orders, drives the status lifecycle and lists a customer's history.
package order

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/bakecake/internal/logging"
	"github.com/aretw0/bakecake/pkg/domain"
	"github.com/aretw0/bakecake/pkg/ports"
)

// Ledger manages orders on top of the order and cake stores.
type Ledger struct {
	orders ports.OrderStore
	cakes  ports.CakeStore
	logger *slog.Logger
}

// Option configures the Ledger.
type Option func(*Ledger)

// WithLogger configures a logger for the Ledger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// NewLedger creates a Ledger over the given stores.
func NewLedger(orders ports.OrderStore, cakes ports.CakeStore, opts ...Option) *Ledger {
	l := &Ledger{
		orders: orders,
		cakes:  cakes,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Create opens a forming order holding the given committed cakes. The total
// is computed from the cake prices at creation.
func (l *Ledger) Create(ctx context.Context, customerID string, cakeIDs []string) (int64, error) {
	if len(cakeIDs) == 0 {
		return 0, fmt.Errorf("order needs at least one cake")
	}

	order := &domain.Order{
		CustomerID: customerID,
		Status:     domain.StatusForming,
		CreatedAt:  time.Now(),
	}
	for _, id := range cakeIDs {
		cake, err := l.cakes.Get(ctx, id)
		if err != nil {
			return 0, err
		}
		if !cake.Committed {
			return 0, fmt.Errorf("cake %s is not committed", id)
		}
		order.Cakes = append(order.Cakes, *cake)
	}
	order.Total = order.CakesTotal()

	id, err := l.orders.Create(ctx, order)
	if err != nil {
		return 0, fmt.Errorf("failed to create order: %w", err)
	}

	l.logger.Info("order created",
		"order_id", id,
		"customer_id", customerID,
		"cakes", len(order.Cakes),
		"total", order.Total,
	)
	return id, nil
}

// Get loads one order.
func (l *Ledger) Get(ctx context.Context, orderID int64) (*domain.Order, error) {
	return l.orders.Get(ctx, orderID)
}

// ListByCustomer returns the customer's orders ordered by creation time.
func (l *Ledger) ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	return l.orders.ListByCustomer(ctx, customerID)
}

// List returns all orders. Admin surfaces only.
func (l *Ledger) List(ctx context.Context) ([]domain.Order, error) {
	return l.orders.List(ctx)
}

// AdvanceStatus moves the order to the next lifecycle status. The move is
// strictly monotonic; advancing a completed order fails with
// domain.ErrInvalidTransition. Leaving the forming status freezes the total.
func (l *Ledger) AdvanceStatus(ctx context.Context, orderID int64) (domain.OrderStatus, error) {
	order, err := l.orders.Get(ctx, orderID)
	if err != nil {
		return "", err
	}

	next, ok := order.Status.Next()
	if !ok {
		return "", domain.ErrInvalidTransition
	}

	if order.Status == domain.StatusForming {
		// Last moment the total may move: freeze the snapshot.
		order.Total = order.CakesTotal()
	}
	from := order.Status
	order.Status = next

	if err := l.orders.Update(ctx, order); err != nil {
		return "", fmt.Errorf("failed to advance order %d: %w", orderID, err)
	}

	l.logger.Info("order status advanced", "order_id", orderID, "from", from, "to", next)
	return next, nil
}

// Cancel discards an order that never left the forming status, together with
// its cakes. Anything further along the lifecycle cannot be canceled here.
func (l *Ledger) Cancel(ctx context.Context, orderID int64) error {
	order, err := l.orders.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != domain.StatusForming {
		return domain.ErrInvalidTransition
	}

	for _, cake := range order.Cakes {
		if err := l.cakes.Delete(ctx, cake.ID); err != nil {
			return fmt.Errorf("failed to remove cake %s: %w", cake.ID, err)
		}
	}
	if err := l.orders.Delete(ctx, orderID); err != nil {
		return fmt.Errorf("failed to cancel order %d: %w", orderID, err)
	}

	l.logger.Info("order canceled", "order_id", orderID)
	return nil
}
