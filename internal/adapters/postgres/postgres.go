// Package postgres implements the profile, catalog, cake and order stores on
// PostgreSQL via GORM. It is the durable backend for real deployments; the
// conversation sessions themselves live in Redis or on disk.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aretw0/bakecake/pkg/domain"
)

// Open connects to the database and migrates the schema.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := db.AutoMigrate(
		&customerModel{},
		&categoryModel{},
		&optionModel{},
		&cakeModel{},
		&orderModel{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return db, nil
}

// ProfileStore is the Postgres ports.ProfileStore.
type ProfileStore struct {
	db *gorm.DB
}

// NewProfileStore creates a ProfileStore over an open connection.
func NewProfileStore(db *gorm.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

func (s *ProfileStore) GetOrCreate(ctx context.Context, id, firstName, lastName string) (*domain.Customer, bool, error) {
	var m customerModel
	res := s.db.WithContext(ctx).
		Where(customerModel{ID: id}).
		Attrs(customerModel{FirstName: firstName, LastName: lastName}).
		FirstOrCreate(&m)
	if res.Error != nil {
		return nil, false, fmt.Errorf("failed to get or create customer: %w", res.Error)
	}
	return m.toDomain(), res.RowsAffected > 0, nil
}

func (s *ProfileStore) Get(ctx context.Context, id string) (*domain.Customer, error) {
	var m customerModel
	if err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}
	return m.toDomain(), nil
}

func (s *ProfileStore) Update(ctx context.Context, customer *domain.Customer) error {
	m := customerFromDomain(customer)
	res := s.db.WithContext(ctx).Model(&customerModel{ID: m.ID}).
		Select("FirstName", "LastName", "Phone", "Address", "Consent").
		Updates(m)
	if res.Error != nil {
		return fmt.Errorf("failed to update customer: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *ProfileStore) List(ctx context.Context) ([]domain.Customer, error) {
	var models []customerModel
	if err := s.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	out := make([]domain.Customer, len(models))
	for i := range models {
		out[i] = *models[i].toDomain()
	}
	return out, nil
}

// Catalog is the Postgres ports.Catalog.
type Catalog struct {
	db *gorm.DB
}

// NewCatalog creates a Catalog over an open connection.
func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

func (c *Catalog) Categories(ctx context.Context) ([]domain.CategoryWithOptions, error) {
	var models []categoryModel
	err := c.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("choice_order, id").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	out := make([]domain.CategoryWithOptions, 0, len(models))
	for _, m := range models {
		cwo := domain.CategoryWithOptions{
			Category: domain.Category{
				ID:          m.ID,
				Title:       m.Title,
				Mandatory:   m.Mandatory,
				ChoiceOrder: m.ChoiceOrder,
			},
		}
		for i := range m.Options {
			cwo.Options = append(cwo.Options, *m.Options[i].toDomain())
		}
		out = append(out, cwo)
	}
	return out, nil
}

func (c *Catalog) Option(ctx context.Context, id int64) (*domain.Option, error) {
	var m optionModel
	if err := c.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load option: %w", err)
	}
	return m.toDomain(), nil
}

// CakeStore is the Postgres ports.CakeStore.
type CakeStore struct {
	db *gorm.DB
}

// NewCakeStore creates a CakeStore over an open connection.
func NewCakeStore(db *gorm.DB) *CakeStore {
	return &CakeStore{db: db}
}

func (s *CakeStore) Save(ctx context.Context, cake *domain.Cake) error {
	m, err := cakeFromDomain(cake)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Save(m).Error; err != nil {
		return fmt.Errorf("failed to save cake: %w", err)
	}
	return nil
}

func (s *CakeStore) Get(ctx context.Context, id string) (*domain.Cake, error) {
	var m cakeModel
	if err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load cake: %w", err)
	}
	return m.toDomain()
}

func (s *CakeStore) Delete(ctx context.Context, id string) error {
	// Idempotent: deleting an absent cake is fine.
	if err := s.db.WithContext(ctx).Delete(&cakeModel{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete cake: %w", err)
	}
	return nil
}

// OrderStore is the Postgres ports.OrderStore.
type OrderStore struct {
	db *gorm.DB
}

// NewOrderStore creates an OrderStore over an open connection.
func NewOrderStore(db *gorm.DB) *OrderStore {
	return &OrderStore{db: db}
}

func (s *OrderStore) Create(ctx context.Context, order *domain.Order) (int64, error) {
	m, err := orderFromDomain(order)
	if err != nil {
		return 0, err
	}
	m.ID = 0 // let the database assign it
	now := time.Now()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.ModifiedAt = now

	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return 0, fmt.Errorf("failed to create order: %w", err)
	}
	order.ID = m.ID
	return m.ID, nil
}

func (s *OrderStore) Get(ctx context.Context, id int64) (*domain.Order, error) {
	var m orderModel
	if err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return m.toDomain()
}

func (s *OrderStore) Update(ctx context.Context, order *domain.Order) error {
	m, err := orderFromDomain(order)
	if err != nil {
		return err
	}
	m.ModifiedAt = time.Now()

	res := s.db.WithContext(ctx).Model(&orderModel{ID: m.ID}).
		Select("Status", "Total", "Cakes", "ModifiedAt").
		Updates(m)
	if res.Error != nil {
		return fmt.Errorf("failed to update order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *OrderStore) Delete(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&orderModel{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *OrderStore) ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	var models []orderModel
	err := s.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at, id").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return toDomainOrders(models)
}

func (s *OrderStore) List(ctx context.Context) ([]domain.Order, error) {
	var models []orderModel
	if err := s.db.WithContext(ctx).Order("created_at, id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return toDomainOrders(models)
}

func toDomainOrders(models []orderModel) ([]domain.Order, error) {
	out := make([]domain.Order, 0, len(models))
	for i := range models {
		o, err := models[i].toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, nil
}
