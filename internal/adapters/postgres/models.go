package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/bakecake/pkg/domain"
)

// customerModel is the customers table.
type customerModel struct {
	ID        string `gorm:"primaryKey;size:64"`
	FirstName string
	LastName  string
	Phone     string `gorm:"size:20"`
	Address   string
	Consent   string `gorm:"size:16"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (customerModel) TableName() string { return "customers" }

func (m *customerModel) toDomain() *domain.Customer {
	return &domain.Customer{
		ID:        m.ID,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Phone:     m.Phone,
		Address:   m.Address,
		Consent:   domain.Consent(m.Consent),
	}
}

func customerFromDomain(c *domain.Customer) *customerModel {
	return &customerModel{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Phone:     c.Phone,
		Address:   c.Address,
		Consent:   string(c.Consent),
	}
}

// categoryModel is the catalog categories table.
type categoryModel struct {
	ID          int64  `gorm:"primaryKey"`
	Title       string `gorm:"not null"`
	Mandatory   bool
	ChoiceOrder int
	Options     []optionModel `gorm:"foreignKey:CategoryID"`
}

func (categoryModel) TableName() string { return "categories" }

// optionModel is the catalog options table.
type optionModel struct {
	ID         int64 `gorm:"primaryKey"`
	CategoryID int64 `gorm:"not null;index"`
	Name       string
	Price      int64
}

func (optionModel) TableName() string { return "options" }

func (m *optionModel) toDomain() *domain.Option {
	return &domain.Option{
		ID:         m.ID,
		CategoryID: m.CategoryID,
		Name:       m.Name,
		Price:      m.Price,
	}
}

// cakeModel is the cakes table. Selections are stored as a JSON column: they
// are only ever read back as a whole, never queried individually.
type cakeModel struct {
	ID          string `gorm:"primaryKey;size:36"`
	CustomerID  string `gorm:"size:64;index"`
	Selections  []byte `gorm:"type:jsonb"`
	Inscription string
	Committed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (cakeModel) TableName() string { return "cakes" }

func (m *cakeModel) toDomain() (*domain.Cake, error) {
	cake := &domain.Cake{
		ID:          m.ID,
		CustomerID:  m.CustomerID,
		Inscription: m.Inscription,
		Committed:   m.Committed,
	}
	if len(m.Selections) > 0 {
		if err := json.Unmarshal(m.Selections, &cake.Selections); err != nil {
			return nil, fmt.Errorf("corrupt selections for cake %s: %w", m.ID, err)
		}
	}
	return cake, nil
}

func cakeFromDomain(c *domain.Cake) (*cakeModel, error) {
	selections, err := json.Marshal(c.Selections)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal selections: %w", err)
	}
	return &cakeModel{
		ID:          c.ID,
		CustomerID:  c.CustomerID,
		Selections:  selections,
		Inscription: c.Inscription,
		Committed:   c.Committed,
	}, nil
}

// orderModel is the orders table. The cakes are stored as a JSON snapshot:
// once an order leaves forming, its contents and total are frozen and the
// snapshot is exactly that.
type orderModel struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	CustomerID string `gorm:"size:64;index"`
	Status     string `gorm:"size:16"`
	Total      int64
	Cakes      []byte `gorm:"type:jsonb"`
	CreatedAt  time.Time
	ModifiedAt time.Time
}

func (orderModel) TableName() string { return "orders" }

func (m *orderModel) toDomain() (*domain.Order, error) {
	order := &domain.Order{
		ID:         m.ID,
		CustomerID: m.CustomerID,
		Status:     domain.OrderStatus(m.Status),
		Total:      m.Total,
		CreatedAt:  m.CreatedAt,
		ModifiedAt: m.ModifiedAt,
	}
	if len(m.Cakes) > 0 {
		if err := json.Unmarshal(m.Cakes, &order.Cakes); err != nil {
			return nil, fmt.Errorf("corrupt cakes for order %d: %w", m.ID, err)
		}
	}
	return order, nil
}

func orderFromDomain(o *domain.Order) (*orderModel, error) {
	cakes, err := json.Marshal(o.Cakes)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cakes: %w", err)
	}
	return &orderModel{
		ID:         o.ID,
		CustomerID: o.CustomerID,
		Status:     string(o.Status),
		Total:      o.Total,
		Cakes:      cakes,
		CreatedAt:  o.CreatedAt,
		ModifiedAt: o.ModifiedAt,
	}, nil
}
