package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/bakecake/pkg/domain"
	"github.com/aretw0/bakecake/pkg/ports"
)

func TestSessionStore_Contract(t *testing.T) {
	ports.RunSessionStoreContract(t, NewSessionStore())
}

func TestCatalog_SortedByChoiceOrder(t *testing.T) {
	catalog := NewCatalog([]domain.CategoryWithOptions{
		{Category: domain.Category{ID: 1, Title: "Topping", ChoiceOrder: 2}},
		{Category: domain.Category{ID: 2, Title: "Layers", ChoiceOrder: 1, Mandatory: true}},
		{Category: domain.Category{ID: 3, Title: "Berries", ChoiceOrder: 2}},
	})

	cats, err := catalog.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 3)
	assert.Equal(t, "Layers", cats[0].Title)
	// Equal choice order keeps insertion order.
	assert.Equal(t, "Topping", cats[1].Title)
	assert.Equal(t, "Berries", cats[2].Title)
}

func TestCatalog_OptionLookup(t *testing.T) {
	catalog := NewCatalog([]domain.CategoryWithOptions{
		{
			Category: domain.Category{ID: 1, Title: "Layers", ChoiceOrder: 1},
			Options:  []domain.Option{{ID: 10, CategoryID: 1, Name: "Two layers", Price: 400}},
		},
	})

	opt, err := catalog.Option(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(400), opt.Price)

	_, err = catalog.Option(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrderStore_ListByCustomerOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewOrderStore()

	first := &domain.Order{CustomerID: "alice", Status: domain.StatusForming}
	second := &domain.Order{CustomerID: "alice", Status: domain.StatusForming}
	other := &domain.Order{CustomerID: "bob", Status: domain.StatusForming}

	_, err := store.Create(ctx, first)
	require.NoError(t, err)
	_, err = store.Create(ctx, second)
	require.NoError(t, err)
	_, err = store.Create(ctx, other)
	require.NoError(t, err)

	orders, err := store.ListByCustomer(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, first.ID, orders[0].ID)
	assert.Equal(t, second.ID, orders[1].ID)
}

func TestCakeStore_DeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewCakeStore()

	require.NoError(t, store.Save(ctx, &domain.Cake{ID: "c1", CustomerID: "alice"}))
	require.NoError(t, store.Delete(ctx, "c1"))
	require.NoError(t, store.Delete(ctx, "c1"), "deleting an absent cake must not fail")

	_, err := store.Get(ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProfileStore_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	store := NewProfileStore()

	created, isNew, err := store.GetOrCreate(ctx, "chat-1", "Alice", "Smith")
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, "Alice Smith", created.DisplayName())

	again, isNew, err := store.GetOrCreate(ctx, "chat-1", "Someone", "Else")
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, "Alice", again.FirstName, "existing record is not renamed")
}
