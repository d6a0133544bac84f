// Package memory provides in-memory implementations of every store port.
// They back the test suites, the interactive CLI demo and single-process
// deployments that do not need durability.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/bakecake/pkg/domain"
)

// ProfileStore is an in-memory ports.ProfileStore.
type ProfileStore struct {
	mu        sync.RWMutex
	customers map[string]domain.Customer
}

// NewProfileStore creates an empty profile store.
func NewProfileStore() *ProfileStore {
	return &ProfileStore{customers: make(map[string]domain.Customer)}
}

func (s *ProfileStore) GetOrCreate(ctx context.Context, id, firstName, lastName string) (*domain.Customer, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.customers[id]; ok {
		return &c, false, nil
	}
	c := domain.Customer{ID: id, FirstName: firstName, LastName: lastName}
	s.customers[id] = c
	return &c, true, nil
}

func (s *ProfileStore) Get(ctx context.Context, id string) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (s *ProfileStore) Update(ctx context.Context, customer *domain.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[customer.ID]; !ok {
		return domain.ErrNotFound
	}
	s.customers[customer.ID] = *customer
	return nil
}

func (s *ProfileStore) List(ctx context.Context) ([]domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Catalog is an in-memory ports.Catalog built from a fixed category list.
type Catalog struct {
	categories []domain.CategoryWithOptions
	options    map[int64]domain.Option
}

// NewCatalog creates a catalog from the given categories. The input order is
// the insertion order; categories are sorted by choice order ascending with
// ties keeping insertion order.
func NewCatalog(categories []domain.CategoryWithOptions) *Catalog {
	sorted := make([]domain.CategoryWithOptions, len(categories))
	copy(sorted, categories)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ChoiceOrder < sorted[j].ChoiceOrder
	})

	options := make(map[int64]domain.Option)
	for _, cat := range sorted {
		for _, opt := range cat.Options {
			options[opt.ID] = opt
		}
	}
	return &Catalog{categories: sorted, options: options}
}

func (c *Catalog) Categories(ctx context.Context) ([]domain.CategoryWithOptions, error) {
	out := make([]domain.CategoryWithOptions, len(c.categories))
	copy(out, c.categories)
	return out, nil
}

func (c *Catalog) Option(ctx context.Context, id int64) (*domain.Option, error) {
	opt, ok := c.options[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &opt, nil
}

// CakeStore is an in-memory ports.CakeStore.
type CakeStore struct {
	mu    sync.RWMutex
	cakes map[string]domain.Cake
}

// NewCakeStore creates an empty cake store.
func NewCakeStore() *CakeStore {
	return &CakeStore{cakes: make(map[string]domain.Cake)}
}

func (s *CakeStore) Save(ctx context.Context, cake *domain.Cake) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *cake
	stored.Selections = append([]domain.Selection(nil), cake.Selections...)
	s.cakes[cake.ID] = stored
	return nil
}

func (s *CakeStore) Get(ctx context.Context, id string) (*domain.Cake, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.cakes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := c
	out.Selections = append([]domain.Selection(nil), c.Selections...)
	return &out, nil
}

func (s *CakeStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.cakes, id)
	return nil
}

// OrderStore is an in-memory ports.OrderStore with auto-incremented ids.
type OrderStore struct {
	mu     sync.RWMutex
	nextID int64
	orders map[int64]domain.Order
}

// NewOrderStore creates an empty order store.
func NewOrderStore() *OrderStore {
	return &OrderStore{nextID: 1, orders: make(map[int64]domain.Order)}
}

func (s *OrderStore) Create(ctx context.Context, order *domain.Order) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order.ID = s.nextID
	s.nextID++

	now := time.Now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.ModifiedAt = now

	s.orders[order.ID] = cloneOrder(order)
	return order.ID, nil
}

func (s *OrderStore) Get(ctx context.Context, id int64) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := cloneOrder(&o)
	return &out, nil
}

func (s *OrderStore) Update(ctx context.Context, order *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[order.ID]; !ok {
		return domain.ErrNotFound
	}
	order.ModifiedAt = time.Now()
	s.orders[order.ID] = cloneOrder(order)
	return nil
}

func (s *OrderStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.orders, id)
	return nil
}

func (s *OrderStore) ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Order
	for _, o := range s.orders {
		if o.CustomerID == customerID {
			out = append(out, cloneOrder(&o))
		}
	}
	sortOrders(out)
	return out, nil
}

func (s *OrderStore) List(ctx context.Context) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, cloneOrder(&o))
	}
	sortOrders(out)
	return out, nil
}

func sortOrders(orders []domain.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID < orders[j].ID
		}
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})
}

func cloneOrder(o *domain.Order) domain.Order {
	out := *o
	out.Cakes = make([]domain.Cake, len(o.Cakes))
	for i, c := range o.Cakes {
		out.Cakes[i] = c
		out.Cakes[i].Selections = append([]domain.Selection(nil), c.Selections...)
	}
	return out
}
