package ports

import (
	"context"

	"github.com/aretw0/bakecake/pkg/domain"
)

// ProfileStore persists customer records.
type ProfileStore interface {
	// GetOrCreate loads the customer with the given chat identity, creating
	// the record with the provided names on first contact. The boolean
	// reports whether the record was created.
	GetOrCreate(ctx context.Context, id, firstName, lastName string) (*domain.Customer, bool, error)

	// Get returns domain.ErrNotFound for an unknown identity.
	Get(ctx context.Context, id string) (*domain.Customer, error)

	// Update persists a mutated customer record.
	Update(ctx context.Context, customer *domain.Customer) error

	// List returns all customers. Used by the admin surfaces only.
	List(ctx context.Context) ([]domain.Customer, error)
}

// Catalog exposes the read-only option catalog.
type Catalog interface {
	// Categories returns all categories with their options, sorted by
	// choice order ascending, ties broken by insertion order.
	Categories(ctx context.Context) ([]domain.CategoryWithOptions, error)

	// Option resolves one option by id. Returns domain.ErrNotFound for an
	// unknown id.
	Option(ctx context.Context, id int64) (*domain.Option, error)
}

// CakeStore persists cakes, draft and committed.
type CakeStore interface {
	Save(ctx context.Context, cake *domain.Cake) error

	// Get returns domain.ErrNotFound for an unknown id.
	Get(ctx context.Context, id string) (*domain.Cake, error)

	// Delete removes a cake. Deleting an absent cake is not an error, which
	// makes draft discards idempotent.
	Delete(ctx context.Context, id string) error
}

// OrderStore persists orders.
type OrderStore interface {
	// Create assigns the order id and persists it.
	Create(ctx context.Context, order *domain.Order) (int64, error)

	// Get returns domain.ErrNotFound for an unknown id.
	Get(ctx context.Context, id int64) (*domain.Order, error)

	Update(ctx context.Context, order *domain.Order) error

	// Delete removes an order that never left the forming status.
	Delete(ctx context.Context, id int64) error

	// ListByCustomer returns the customer's orders ordered by creation time.
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)

	// List returns all orders ordered by creation time. Admin surfaces only.
	List(ctx context.Context) ([]domain.Order, error)
}

// SessionStore persists conversation snapshots keyed by session identity.
type SessionStore interface {
	// Load returns domain.ErrSessionNotFound for an unknown session.
	Load(ctx context.Context, sessionID string) (*domain.Session, error)

	Save(ctx context.Context, sessionID string, session *domain.Session) error

	Delete(ctx context.Context, sessionID string) error

	// List returns the known session IDs.
	List(ctx context.Context) ([]string, error)
}
