// Package cake implements the cake builder: it accumulates a customer's
// option selections into a draft cake, computes the price and finalizes the
// draft into a committed cake.
package cake

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/aretw0/bakecake/internal/logging"
	"github.com/aretw0/bakecake/pkg/domain"
	"github.com/aretw0/bakecake/pkg/ports"
)

// Builder composes draft cakes on top of a cake store and the catalog.
type Builder struct {
	cakes   ports.CakeStore
	catalog ports.Catalog
	logger  *slog.Logger
}

// Option configures the Builder.
type Option func(*Builder)

// WithLogger configures a logger for the Builder.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// NewBuilder creates a Builder over the given store and catalog.
func NewBuilder(cakes ports.CakeStore, catalog ports.Catalog, opts ...Option) *Builder {
	b := &Builder{
		cakes:   cakes,
		catalog: catalog,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Start creates a new draft cake for the customer and returns its id.
func (b *Builder) Start(ctx context.Context, customerID string) (string, error) {
	draft := &domain.Cake{
		ID:         uuid.NewString(),
		CustomerID: customerID,
	}
	if err := b.cakes.Save(ctx, draft); err != nil {
		return "", fmt.Errorf("failed to create draft cake: %w", err)
	}

	b.logger.Debug("draft cake started", "cake_id", draft.ID, "customer_id", customerID)
	return draft.ID, nil
}

// Get loads a cake by id.
func (b *Builder) Get(ctx context.Context, draftID string) (*domain.Cake, error) {
	return b.cakes.Get(ctx, draftID)
}

// Choose attaches the option to the draft. Each category may be answered at
// most once per traversal; a second choice for the same category is rejected
// with domain.ErrCategoryFilled, never silently overwritten.
func (b *Builder) Choose(ctx context.Context, draftID string, optionID int64) error {
	draft, err := b.cakes.Get(ctx, draftID)
	if err != nil {
		return err
	}
	if draft.Committed {
		return domain.ErrCakeCommitted
	}

	option, err := b.catalog.Option(ctx, optionID)
	if err != nil {
		return err
	}

	if _, filled := draft.SelectionFor(option.CategoryID); filled {
		return domain.ErrCategoryFilled
	}

	draft.Selections = append(draft.Selections, domain.Selection{
		CategoryID: option.CategoryID,
		OptionID:   option.ID,
		OptionName: option.Name,
		Price:      option.Price,
	})
	if err := b.cakes.Save(ctx, draft); err != nil {
		return fmt.Errorf("failed to save draft cake: %w", err)
	}

	b.logger.Debug("option chosen",
		"cake_id", draftID,
		"option_id", optionID,
		"price", draft.Price(),
	)
	return nil
}

// Skip records that the customer left a category unset. Only optional
// categories may be skipped.
func (b *Builder) Skip(ctx context.Context, draftID string, categoryID int64) error {
	draft, err := b.cakes.Get(ctx, draftID)
	if err != nil {
		return err
	}
	if draft.Committed {
		return domain.ErrCakeCommitted
	}

	category, err := b.category(ctx, categoryID)
	if err != nil {
		return err
	}
	if category.Mandatory {
		return domain.ErrMandatoryCategory
	}
	// Nothing to persist: a skipped category is simply absent from the
	// selections.
	return nil
}

// SetInscription stores the free-text inscription on the draft.
func (b *Builder) SetInscription(ctx context.Context, draftID, text string) error {
	draft, err := b.cakes.Get(ctx, draftID)
	if err != nil {
		return err
	}
	if draft.Committed {
		return domain.ErrCakeCommitted
	}

	draft.Inscription = text
	if err := b.cakes.Save(ctx, draft); err != nil {
		return fmt.Errorf("failed to save inscription: %w", err)
	}
	return nil
}

// Discard removes the draft. Discarding an already-absent draft is a no-op,
// so abandoning a flow twice has the same observable effect as once.
func (b *Builder) Discard(ctx context.Context, draftID string) error {
	if draftID == "" {
		return nil
	}
	if err := b.cakes.Delete(ctx, draftID); err != nil {
		return fmt.Errorf("failed to discard draft cake: %w", err)
	}
	b.logger.Debug("draft cake discarded", "cake_id", draftID)
	return nil
}

// Commit finalizes the draft into an immutable cake and returns its id.
// It fails with domain.ErrMandatoryCategory while any mandatory category is
// unanswered.
func (b *Builder) Commit(ctx context.Context, draftID string) (string, error) {
	draft, err := b.cakes.Get(ctx, draftID)
	if err != nil {
		return "", err
	}
	if draft.Committed {
		return "", domain.ErrCakeCommitted
	}

	categories, err := b.catalog.Categories(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load catalog: %w", err)
	}
	for _, cat := range categories {
		if !cat.Mandatory {
			continue
		}
		if _, answered := draft.SelectionFor(cat.ID); !answered {
			return "", domain.ErrMandatoryCategory
		}
	}

	draft.Committed = true
	if err := b.cakes.Save(ctx, draft); err != nil {
		return "", fmt.Errorf("failed to commit cake: %w", err)
	}

	b.logger.Info("cake committed", "cake_id", draft.ID, "price", draft.Price())
	return draft.ID, nil
}

func (b *Builder) category(ctx context.Context, categoryID int64) (*domain.Category, error) {
	categories, err := b.catalog.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	for i := range categories {
		if categories[i].ID == categoryID {
			return &categories[i].Category, nil
		}
	}
	return nil, domain.ErrNotFound
}
