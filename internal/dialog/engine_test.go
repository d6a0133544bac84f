package dialog_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/bakecake/internal/adapters/memory"
	"github.com/aretw0/bakecake/internal/cake"
	"github.com/aretw0/bakecake/internal/dialog"
	"github.com/aretw0/bakecake/internal/order"
	"github.com/aretw0/bakecake/pkg/domain"
)

type fixture struct {
	engine   *dialog.Engine
	profiles *memory.ProfileStore
	cakes    *memory.CakeStore
	orders   *memory.OrderStore
	builder  *cake.Builder
	ledger   *order.Ledger
}

func testCatalog() *memory.Catalog {
	return memory.NewCatalog([]domain.CategoryWithOptions{
		{
			// Listed out of choice order on purpose.
			Category: domain.Category{ID: 2, Title: "Topping", ChoiceOrder: 2},
			Options: []domain.Option{
				{ID: 21, CategoryID: 2, Name: "Chocolate", Price: 200},
				{ID: 22, CategoryID: 2, Name: "Caramel", Price: 180},
			},
		},
		{
			Category: domain.Category{ID: 1, Title: "Layers", Mandatory: true, ChoiceOrder: 1},
			Options: []domain.Option{
				{ID: 11, CategoryID: 1, Name: "Two layers", Price: 400},
				{ID: 12, CategoryID: 1, Name: "Three layers", Price: 550},
			},
		},
		{
			Category: domain.Category{ID: 3, Title: "Inscription", ChoiceOrder: 3},
			Options: []domain.Option{
				{ID: 31, CategoryID: 3, Name: "Custom inscription", Price: 500},
			},
		},
	})
}

func newFixture(opts ...dialog.Option) *fixture {
	catalog := testCatalog()
	profiles := memory.NewProfileStore()
	cakes := memory.NewCakeStore()
	orders := memory.NewOrderStore()
	builder := cake.NewBuilder(cakes, catalog)
	ledger := order.NewLedger(orders, cakes)
	return &fixture{
		engine:   dialog.NewEngine(profiles, catalog, builder, ledger, opts...),
		profiles: profiles,
		cakes:    cakes,
		orders:   orders,
		builder:  builder,
		ledger:   ledger,
	}
}

func allText(replies []domain.Reply) string {
	var b strings.Builder
	for _, r := range replies {
		b.WriteString(r.Text)
		b.WriteString("\n")
	}
	return b.String()
}

func lastSuggestions(replies []domain.Reply) []string {
	for i := len(replies) - 1; i >= 0; i-- {
		if len(replies[i].Suggestions) > 0 {
			return replies[i].Suggestions
		}
	}
	return nil
}

// authorize walks a fresh session through start, consent, phone and address,
// landing on the main menu.
func authorize(t *testing.T, f *fixture, sessionID string, sess *domain.Session) {
	t.Helper()
	ctx := context.Background()

	f.engine.Start(ctx, sessionID, "Alice Liddell", sess)
	require.Equal(t, domain.StateConsentProcessing, sess.State)

	f.engine.Handle(ctx, sessionID, dialog.LabelAccept, sess)
	require.Equal(t, domain.StateInputPhone, sess.State)

	f.engine.Handle(ctx, sessionID, "+79161234567", sess)
	require.Equal(t, domain.StateInputAddress, sess.State)

	f.engine.Handle(ctx, sessionID, "Wonderland, 1", sess)
	require.Equal(t, domain.StateMainMenu, sess.State)
}

// buildCake drives the traversal to the review screen: mandatory layers,
// skipped topping and inscription category skipped too.
func buildToReview(t *testing.T, f *fixture, sessionID string, sess *domain.Session) {
	t.Helper()
	ctx := context.Background()

	f.engine.Handle(ctx, sessionID, dialog.LabelBuildCake, sess)
	require.Equal(t, domain.StateBuildingCake, sess.State)
	f.engine.Handle(ctx, sessionID, "Two layers — 400 ₽ #11", sess)
	f.engine.Handle(ctx, sessionID, dialog.LabelSkip, sess)
	f.engine.Handle(ctx, sessionID, dialog.LabelSkip, sess)
	require.Equal(t, domain.StateCakeReady, sess.State)
	f.engine.Handle(ctx, sessionID, dialog.LabelPlaceOrder, sess)
	require.Equal(t, domain.StateOrderReview, sess.State)
}

func TestEngine_StartGreetsAndAsksConsent(t *testing.T) {
	f := newFixture(dialog.WithPolicyDocument("assets/policy.md"))
	sess := domain.NewSession()

	replies := f.engine.Start(context.Background(), "chat-1", "Alice Liddell", sess)

	assert.Equal(t, domain.StateConsentProcessing, sess.State)
	assert.Contains(t, allText(replies), "Hi, Alice!")
	assert.Equal(t, []string{dialog.LabelAccept, dialog.LabelDecline}, lastSuggestions(replies))

	var docs []string
	for _, r := range replies {
		if r.DocumentPath != "" {
			docs = append(docs, r.DocumentPath)
		}
	}
	assert.Equal(t, []string{"assets/policy.md"}, docs)
}

func TestEngine_StartWithoutNameStillGreets(t *testing.T) {
	f := newFixture()
	sess := domain.NewSession()

	replies := f.engine.Start(context.Background(), "chat-1", "", sess)
	assert.Contains(t, allText(replies), "Hi!")
}

func TestEngine_AuthorizationChain(t *testing.T) {
	f := newFixture()
	sess := domain.NewSession()
	authorize(t, f, "chat-1", sess)

	customer, err := f.profiles.Get(context.Background(), "chat-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ConsentGranted, customer.Consent)
	assert.Equal(t, "+79161234567", customer.Phone)
	assert.Equal(t, "Wonderland, 1", customer.Address)
}

func TestEngine_AuthorizationSkipsCapturedSteps(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sess := domain.NewSession()
	authorize(t, f, "chat-1", sess)

	// A fresh session for the same identity goes straight to the menu.
	again := domain.NewSession()
	replies := f.engine.Start(ctx, "chat-1", "Alice Liddell", again)
	assert.Equal(t, domain.StateMainMenu, again.State)
	assert.Contains(t, lastSuggestions(replies), dialog.LabelBuildCake)
}

func TestEngine_ConsentDeclineLoops(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sess := domain.NewSession()

	f.engine.Start(ctx, "chat-1", "Alice", sess)
	replies := f.engine.Handle(ctx, "chat-1", dialog.LabelDecline, sess)

	assert.Equal(t, domain.StateConsentProcessing, sess.State)
	assert.Equal(t, []string{dialog.LabelAccept, dialog.LabelDecline}, lastSuggestions(replies))

	customer, err := f.profiles.Get(ctx, "chat-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ConsentDeclined, customer.Consent)
}

func TestEngine_InvalidPhoneKeepsState(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sess := domain.NewSession()

	f.engine.Start(ctx, "chat-1", "Alice", sess)
	f.engine.Handle(ctx, "chat-1", dialog.LabelAccept, sess)
	require.Equal(t, domain.StateInputPhone, sess.State)

	replies := f.engine.Handle(ctx, "chat-1", "abc", sess)
	assert.Equal(t, domain.StateInputPhone, sess.State)
	assert.Contains(t, allText(replies), "valid phone")

	customer, err := f.profiles.Get(ctx, "chat-1")
	require.NoError(t, err)
	assert.Empty(t, customer.Phone, "a rejected value must not touch the record")
}

func TestEngine_PhoneNormalization(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sess := domain.NewSession()

	f.engine.Start(ctx, "chat-1", "Alice", sess)
	f.engine.Handle(ctx, "chat-1", dialog.LabelAccept, sess)
	f.engine.Handle(ctx, "chat-1", "8 (916) 123-45-67", sess)
	require.Equal(t, domain.StateInputAddress, sess.State)

	customer, err := f.profiles.Get(ctx, "chat-1")
	require.NoError(t, err)
	assert.Equal(t, "+79161234567", customer.Phone)
}

func TestEngine_CategoriesPresentedInChoiceOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sess := domain.NewSession()
	authorize(t, f, "chat-1", sess)

	replies := f.engine.Handle(ctx, "chat-1", dialog.LabelBuildCake, sess)
	assert.Contains(t, allText(replies), "Layers", "the lowest choice order goes first")
	assert.NotContains(t, allText(replies), "Topping")

	replies = f.engine.Handle(ctx, "chat-1", "Two layers — 400 ₽ #11", sess)
	assert.Contains(t, allText(replies), "Topping")
}

func TestEngine_MandatoryCategoryCannotBeSkipped(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sess := domain.NewSession()
	authorize(t, f, "chat-1", sess)

	f.engine.Handle(ctx, "chat-1", dialog.LabelBuildCake, sess)
	replies := f.engine.Handle(ctx, "chat-1", dialog.LabelSkip, sess)

	assert.Equal(t, domain.StateBuildingCake, sess.State)
	assert.Equal(t, 0, sess.CategoryIndex)
	assert.Contains(t, allText(replies), "required")
}

func TestEngine_OptionalCategorySkipAbsentFromCake(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sess := domain.NewSession()
	authorize(t, f, "chat-1", sess)

	f.engine.Handle(ctx, "chat-1", dialog.LabelBuildCake, sess)
	f.engine.Handle(ctx, "chat-1", "#11", sess)
	f.engine.Handle(ctx, "chat-1", dialog.LabelSkip, sess)
	replies := f.engine.Handle(ctx, "chat-1", dialog.LabelSkip, sess)

	require.Equal(t, domain.StateCakeReady, sess.State)
	assert.Contains(t, allText(replies), "400 ₽", "skipped categories do not add to the price")

	draft, err := f.builder.Get(ctx, sess.DraftCakeID)
	require.NoError(t, err)
	assert.Len(t, draft.Selections, 1)
}

func TestEngine_OptionFromAnotherCategoryRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sess := domain.NewSession()
	authorize(t, f, "chat-1", sess)

	f.engine.Handle(ctx, "chat-1", dialog.LabelBuildCake, sess)
	// A topping row while layers are on screen.
	replies := f.engine.Handle(ctx, "chat-1", "Chocolate — 200 ₽ #21", sess)

	assert.Equal(t, 0, sess.CategoryIndex)
	assert.Contains(t, allText(replies), "did not understand")
}

func TestEngine_InscriptionFlow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sess := domain.NewSession()
	authorize(t, f, "chat-1", sess)

	f.engine.Handle(ctx, "chat-1", dialog.LabelBuildCake, sess)
	f.engine.Handle(ctx, "chat-1", "#11", sess)
	f.engine.Handle(ctx, "chat-1", dialog.LabelSkip, sess)
	replies := f.engine.Handle(ctx, "chat-1", "#31", sess)

	require.Equal(t, domain.StateInputInscription, sess.State)
	assert.Contains(t, allText(replies), "write on the cake")

	replies = f.engine.Handle(ctx, "chat-1", "Happy birthday!", sess)
	require.Equal(t, domain.StateCakeReady, sess.State)
	assert.Contains(t, allText(replies), "900 ₽")

	draft, err := f.builder.Get(ctx, sess.DraftCakeID)
	require.NoError(t, err)
	assert.Equal(t, "Happy birthday!", draft.Inscription)
}

func TestEngine_FullOrderRoundTrip(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sess := domain.NewSession()
	authorize(t, f, "chat-1", sess)

	buildToReview(t, f, "chat-1", sess)
	require.NotZero(t, sess.OrderID)
	assert.Empty(t, sess.DraftCakeID, "the draft is handed over to the order")

	o, err := f.ledger.Get(ctx, sess.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusForming, o.Status)
	assert.Equal(t, int64(400), o.Total)

	replies := f.engine.Handle(ctx, "chat-1", dialog.LabelConfirmOrder, sess)
	assert.Equal(t, domain.StateMainMenu, sess.State)
	assert.Contains(t, allText(replies), "confirmed")
	assert.Contains(t, lastSuggestions(replies), dialog.LabelViewOrders)

	o, err = f.ledger.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, o.Status)
}

func TestEngine_ReviewSummaryShowsRecipient(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sess := domain.NewSession()
	authorize(t, f, "chat-1", sess)

	f.engine.Handle(ctx, "chat-1", dialog.LabelBuildCake, sess)
	f.engine.Handle(ctx, "chat-1", "#11", sess)
	f.engine.Handle(ctx, "chat-1", dialog.LabelSkip, sess)
	f.engine.Handle(ctx, "chat-1", dialog.LabelSkip, sess)
	replies := f.engine.Handle(ctx, "chat-1", dialog.LabelPlaceOrder, sess)

	text := allText(replies)
	assert.Contains(t, text, "Alice Liddell")
	assert.Contains(t, text, "+79161234567")
	assert.Contains(t, text, "Wonderland, 1")
	assert.Contains(t, text, "400 ₽")
}

func TestEngine_ReviewChangePhone(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sess := domain.NewSession()
	authorize(t, f, "chat-1", sess)
	buildToReview(t, f, "chat-1", sess)

	f.engine.Handle(ctx, "chat-1", dialog.LabelChangePhone, sess)
	require.Equal(t, domain.StateChangePhone, sess.State)

	replies := f.engine.Handle(ctx, "chat-1", "+79990001122", sess)
	assert.Equal(t, domain.StateOrderReview, sess.State)
	assert.Contains(t, allText(replies), "+79990001122", "the summary reflects the new phone")

	customer, err := f.profiles.Get(ctx, "chat-1")
	require.NoError(t, err)
	assert.Equal(t, "+79990001122", customer.Phone)
}

func TestEngine_ReviewChangeAddress(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sess := domain.NewSession()
	authorize(t, f, "chat-1", sess)
	buildToReview(t, f, "chat-1", sess)

	f.engine.Handle(ctx, "chat-1", dialog.LabelChangeAddress, sess)
	require.Equal(t, domain.StateChangeAddress, sess.State)

	replies := f.engine.Handle(ctx, "chat-1", "Looking-Glass, 2", sess)
	assert.Equal(t, domain.StateOrderReview, sess.State)
	assert.Contains(t, allText(replies), "Looking-Glass, 2")
}

func TestEngine_ReviewCancelRemovesOrderAndCakes(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sess := domain.NewSession()
	authorize(t, f, "chat-1", sess)
	buildToReview(t, f, "chat-1", sess)
	orderID := sess.OrderID

	replies := f.engine.Handle(ctx, "chat-1", dialog.LabelCancel, sess)
	assert.Equal(t, domain.StateMainMenu, sess.State)
	assert.Zero(t, sess.OrderID)
	assert.Contains(t, allText(replies), "canceled")
	assert.NotContains(t, lastSuggestions(replies), dialog.LabelViewOrders)

	_, err := f.ledger.Get(ctx, orderID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEngine_ReturnToMenuDiscardsDraft(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sess := domain.NewSession()
	authorize(t, f, "chat-1", sess)

	f.engine.Handle(ctx, "chat-1", dialog.LabelBuildCake, sess)
	f.engine.Handle(ctx, "chat-1", "#11", sess)
	draftID := sess.DraftCakeID
	require.NotEmpty(t, draftID)

	f.engine.Handle(ctx, "chat-1", dialog.LabelReturnToMenu, sess)
	assert.Equal(t, domain.StateMainMenu, sess.State)
	assert.Empty(t, sess.DraftCakeID)

	_, err := f.builder.Get(ctx, draftID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEngine_OrderHistory(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sess := domain.NewSession()
	authorize(t, f, "chat-1", sess)
	buildToReview(t, f, "chat-1", sess)
	orderID := sess.OrderID
	f.engine.Handle(ctx, "chat-1", dialog.LabelConfirmOrder, sess)

	replies := f.engine.Handle(ctx, "chat-1", dialog.LabelViewOrders, sess)
	require.Equal(t, domain.StateOrderDetails, sess.State)
	suggestions := lastSuggestions(replies)
	require.NotEmpty(t, suggestions)
	assert.Contains(t, suggestions[0], fmt.Sprintf("№%d", orderID))

	replies = f.engine.Handle(ctx, "chat-1", suggestions[0], sess)
	assert.Equal(t, domain.StateOrderDetails, sess.State, "details view stays until back to menu")
	assert.Contains(t, allText(replies), "Status: Processing")

	f.engine.Handle(ctx, "chat-1", dialog.LabelReturnToMenu, sess)
	assert.Equal(t, domain.StateMainMenu, sess.State)
}

func TestEngine_StaleOrderReferenceResetsToMenu(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sess := domain.NewSession()
	authorize(t, f, "chat-1", sess)
	sess.State = domain.StateOrderDetails

	replies := f.engine.Handle(ctx, "chat-1", "Order №99 — 400 ₽ (01.01.2024)", sess)
	assert.Equal(t, domain.StateMainMenu, sess.State)
	assert.Contains(t, allText(replies), "lost track")
}

func TestEngine_ForeignOrderTreatedAsMissing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	mallory := domain.NewSession()
	authorize(t, f, "mallory", mallory)
	buildToReview(t, f, "mallory", mallory)
	foreignID := mallory.OrderID

	alice := domain.NewSession()
	authorize(t, f, "chat-1", alice)
	alice.State = domain.StateOrderDetails

	f.engine.Handle(ctx, "chat-1", fmt.Sprintf("№%d", foreignID), alice)
	assert.Equal(t, domain.StateMainMenu, alice.State)
}

func TestEngine_MalformedMarkerNotUnderstood(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sess := domain.NewSession()
	authorize(t, f, "chat-1", sess)

	replies := f.engine.Handle(ctx, "chat-1", "#abc", sess)
	assert.Equal(t, domain.StateMainMenu, sess.State)
	assert.Contains(t, allText(replies), "did not understand")
}

func TestEngine_ConcurrentCustomersIsolated(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	alice := domain.NewSession()
	bob := domain.NewSession()
	authorize(t, f, "alice", alice)
	authorize(t, f, "bob", bob)

	// Interleave the two traversals.
	f.engine.Handle(ctx, "alice", dialog.LabelBuildCake, alice)
	f.engine.Handle(ctx, "bob", dialog.LabelBuildCake, bob)
	f.engine.Handle(ctx, "alice", "#11", alice)
	f.engine.Handle(ctx, "bob", "#12", bob)
	f.engine.Handle(ctx, "alice", dialog.LabelSkip, alice)
	f.engine.Handle(ctx, "bob", "#21", bob)
	f.engine.Handle(ctx, "alice", dialog.LabelSkip, alice)
	f.engine.Handle(ctx, "bob", dialog.LabelSkip, bob)

	require.Equal(t, domain.StateCakeReady, alice.State)
	require.Equal(t, domain.StateCakeReady, bob.State)
	require.NotEqual(t, alice.DraftCakeID, bob.DraftCakeID)

	aliceCake, err := f.builder.Get(ctx, alice.DraftCakeID)
	require.NoError(t, err)
	bobCake, err := f.builder.Get(ctx, bob.DraftCakeID)
	require.NoError(t, err)

	assert.Equal(t, int64(400), aliceCake.Price())
	assert.Equal(t, int64(750), bobCake.Price())
}

func TestEngine_HooksObserveTransitionsAndRecoveries(t *testing.T) {
	var transitions []string
	var recovered []string
	hooks := domain.LifecycleHooks{
		OnTransition: func(_ context.Context, ev *domain.TransitionEvent) {
			transitions = append(transitions, fmt.Sprintf("%s->%s", ev.From, ev.To))
		},
		OnRecoveredError: func(_ context.Context, ev *domain.RecoveredErrorEvent) {
			recovered = append(recovered, ev.Kind)
		},
	}
	f := newFixture(dialog.WithHooks(hooks))
	ctx := context.Background()
	sess := domain.NewSession()

	f.engine.Start(ctx, "chat-1", "Alice", sess)
	f.engine.Handle(ctx, "chat-1", dialog.LabelAccept, sess)
	f.engine.Handle(ctx, "chat-1", "abc", sess)

	assert.Equal(t, []string{
		"authorization->consent_processing",
		"consent_processing->input_phone",
	}, transitions)
	assert.Equal(t, []string{"validation"}, recovered)
}
