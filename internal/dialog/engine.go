// Package dialog implements the conversation state machine of the bakecake
// bot: one finite-state machine per session, driven by classified inbound
// events, reading and writing the profile, catalog, cake and order
// collaborators through their ports.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/bakecake/internal/cake"
	"github.com/aretw0/bakecake/internal/logging"
	"github.com/aretw0/bakecake/internal/order"
	"github.com/aretw0/bakecake/internal/validate"
	"github.com/aretw0/bakecake/pkg/domain"
	"github.com/aretw0/bakecake/pkg/ports"
)

// inscriptionCategory is the catalog category whose chosen option routes the
// flow through the free-text inscription step.
const inscriptionCategory = "Inscription"

// Engine is the dialogue hub. It owns no session storage itself; the caller
// passes the session snapshot in and persists it back after each event, with
// all events for one identity serialized (see pkg/session).
type Engine struct {
	profiles ports.ProfileStore
	catalog  ports.Catalog
	builder  *cake.Builder
	ledger   *order.Ledger

	logger     *slog.Logger
	hooks      domain.LifecycleHooks
	policyPath string
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger configures a logger for the Engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithPolicyDocument sets the path of the personal-data policy delivered on
// the consent prompt.
func WithPolicyDocument(path string) Option {
	return func(e *Engine) {
		e.policyPath = path
	}
}

// NewEngine creates the dialogue engine over its collaborators.
func NewEngine(profiles ports.ProfileStore, catalog ports.Catalog, builder *cake.Builder, ledger *order.Ledger, opts ...Option) *Engine {
	e := &Engine{
		profiles: profiles,
		catalog:  catalog,
		builder:  builder,
		ledger:   ledger,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start handles session initiation. It greets the customer, creating the
// profile record on first contact, discards any half-finished draft left
// over from a previous run, and resolves the authorization chain.
func (e *Engine) Start(ctx context.Context, sessionID, displayName string, sess *domain.Session) []domain.Reply {
	before := sess.State

	first, last := splitDisplayName(displayName)
	customer, isNew, err := e.profiles.GetOrCreate(ctx, sessionID, first, last)
	if err != nil {
		e.logger.Error("failed to load customer", "session_id", sessionID, "err", err)
		return []domain.Reply{somethingWentWrong()}
	}
	if isNew {
		e.logger.Info("new customer", "session_id", sessionID, "name", customer.DisplayName())
	}

	// Restarting abandons an in-progress cake.
	e.discardDraft(ctx, sess)
	sess.OrderID = 0

	greeting := "Hi!"
	if customer.FirstName != "" {
		greeting = fmt.Sprintf("Hi, %s!", customer.FirstName)
	}

	replies := append([]domain.Reply{text(greeting)}, e.resolveAuthorization(ctx, sess, customer)...)
	e.emitTransition(ctx, sessionID, before, sess.State)
	return replies
}

// Handle processes one inbound event for the session. Every error is
// recovered into a user-visible reply and a defined next state; nothing
// propagates to the transport as a fault.
func (e *Engine) Handle(ctx context.Context, sessionID, input string, sess *domain.Session) []domain.Reply {
	before := sess.State
	if e.hooks.OnEvent != nil {
		e.hooks.OnEvent(ctx, sessionID, before)
	}

	ev, err := Classify(input)
	if err != nil {
		// Malformed option/order markers are just noise, not faults.
		e.emitRecovered(ctx, sessionID, sess.State, "parse")
		return []domain.Reply{notUnderstood()}
	}

	replies := e.dispatch(ctx, sessionID, input, ev, sess)
	e.emitTransition(ctx, sessionID, before, sess.State)
	return replies
}

func (e *Engine) dispatch(ctx context.Context, sessionID, raw string, ev Event, sess *domain.Session) []domain.Reply {
	switch sess.State {
	case domain.StateAuthorization:
		return e.handleAuthorization(ctx, sessionID, sess)
	case domain.StateConsentProcessing:
		return e.handleConsent(ctx, sessionID, ev, sess)
	case domain.StateInputPhone:
		return e.handlePhoneInput(ctx, sessionID, raw, sess)
	case domain.StateInputAddress:
		return e.handleAddressInput(ctx, sessionID, raw, sess)
	case domain.StateMainMenu:
		return e.handleMainMenu(ctx, sessionID, ev, sess)
	case domain.StateBuildingCake:
		return e.handleBuildingCake(ctx, sessionID, ev, sess)
	case domain.StateInputInscription:
		return e.handleInscription(ctx, sessionID, raw, ev, sess)
	case domain.StateCakeReady:
		return e.handleCakeReady(ctx, sessionID, ev, sess)
	case domain.StateOrderReview:
		return e.handleOrderReview(ctx, sessionID, ev, sess)
	case domain.StateChangePhone:
		return e.handlePhoneChange(ctx, sessionID, raw, sess)
	case domain.StateChangeAddress:
		return e.handleAddressChange(ctx, sessionID, raw, sess)
	case domain.StateOrderDetails:
		return e.handleOrderDetails(ctx, sessionID, ev, sess)
	}

	// An unknown persisted state means the snapshot outlived this version of
	// the flow. Recover to the menu instead of wedging the session.
	e.logger.Warn("unknown session state", "session_id", sessionID, "state", sess.State)
	return e.resetToMenu(ctx, sessionID, sess)
}

// resolveAuthorization walks the consent -> phone -> address chain until it
// reaches a stable state. It is an explicit loop instead of handlers calling
// each other, so the entry and exit points stay auditable.
func (e *Engine) resolveAuthorization(ctx context.Context, sess *domain.Session, customer *domain.Customer) []domain.Reply {
	switch {
	case customer.Consent != domain.ConsentGranted:
		sess.State = domain.StateConsentProcessing
		return consentPrompt(e.policyPath)
	case customer.Phone == "":
		sess.State = domain.StateInputPhone
		return []domain.Reply{phonePrompt()}
	case customer.Address == "":
		sess.State = domain.StateInputAddress
		return []domain.Reply{addressPrompt()}
	}

	sess.State = domain.StateMainMenu
	return []domain.Reply{mainMenu(e.hasOrders(ctx, customer.ID))}
}

func (e *Engine) handleAuthorization(ctx context.Context, sessionID string, sess *domain.Session) []domain.Reply {
	customer, err := e.profiles.Get(ctx, sessionID)
	if err != nil {
		// Session without a /start: create the record on the fly.
		customer, _, err = e.profiles.GetOrCreate(ctx, sessionID, "", "")
		if err != nil {
			e.logger.Error("failed to load customer", "session_id", sessionID, "err", err)
			return []domain.Reply{somethingWentWrong()}
		}
	}
	return e.resolveAuthorization(ctx, sess, customer)
}

func (e *Engine) handleConsent(ctx context.Context, sessionID string, ev Event, sess *domain.Session) []domain.Reply {
	var consent domain.Consent
	var ack string
	switch ev.(type) {
	case AcceptConsent:
		consent = domain.ConsentGranted
		ack = "Thank you! Your consent has been recorded."
	case DeclineConsent:
		consent = domain.ConsentDeclined
		ack = "We cannot take orders without your consent."
	default:
		return []domain.Reply{notUnderstood()}
	}

	customer, err := e.profiles.Get(ctx, sessionID)
	if err != nil {
		return e.recover(ctx, sessionID, sess, err)
	}
	customer.Consent = consent
	if err := e.profiles.Update(ctx, customer); err != nil {
		return e.recover(ctx, sessionID, sess, err)
	}

	// Declining loops straight back to the consent prompt: the remaining
	// capture steps are only reachable once consent is granted.
	return append([]domain.Reply{text(ack)}, e.resolveAuthorization(ctx, sess, customer)...)
}

func (e *Engine) handlePhoneInput(ctx context.Context, sessionID, raw string, sess *domain.Session) []domain.Reply {
	phone, err := validate.Phone(raw)
	if err != nil {
		// User-correctable: stay in the same state, do not touch the record.
		e.emitRecovered(ctx, sessionID, sess.State, "validation")
		return []domain.Reply{text("Please enter a valid phone number, like +79161234567.")}
	}

	customer, err := e.profiles.Get(ctx, sessionID)
	if err != nil {
		return e.recover(ctx, sessionID, sess, err)
	}
	customer.Phone = phone
	if err := e.profiles.Update(ctx, customer); err != nil {
		return e.recover(ctx, sessionID, sess, err)
	}
	e.logger.Info("phone captured", "session_id", sessionID)

	reply := text(fmt.Sprintf("Saved your phone: %s.", phone))
	return append([]domain.Reply{reply}, e.resolveAuthorization(ctx, sess, customer)...)
}

func (e *Engine) handleAddressInput(ctx context.Context, sessionID, raw string, sess *domain.Session) []domain.Reply {
	address, err := validate.Address(raw)
	if err != nil {
		e.emitRecovered(ctx, sessionID, sess.State, "validation")
		return []domain.Reply{addressPrompt()}
	}

	customer, err := e.profiles.Get(ctx, sessionID)
	if err != nil {
		return e.recover(ctx, sessionID, sess, err)
	}
	customer.Address = address
	if err := e.profiles.Update(ctx, customer); err != nil {
		return e.recover(ctx, sessionID, sess, err)
	}
	e.logger.Info("address captured", "session_id", sessionID)

	reply := text(fmt.Sprintf("Saved your delivery address: %s.", address))
	return append([]domain.Reply{reply}, e.resolveAuthorization(ctx, sess, customer)...)
}

func (e *Engine) handleMainMenu(ctx context.Context, sessionID string, ev Event, sess *domain.Session) []domain.Reply {
	switch ev.(type) {
	case BuildCake:
		return e.startCakeFlow(ctx, sessionID, sess)
	case ViewOrders:
		orders, err := e.ledger.ListByCustomer(ctx, sessionID)
		if err != nil {
			return e.recover(ctx, sessionID, sess, err)
		}
		if len(orders) == 0 {
			return []domain.Reply{text("You have no orders yet."), mainMenu(false)}
		}
		sess.State = domain.StateOrderDetails
		return []domain.Reply{ordersPrompt(orders)}
	}
	return []domain.Reply{notUnderstood()}
}

func (e *Engine) startCakeFlow(ctx context.Context, sessionID string, sess *domain.Session) []domain.Reply {
	categories, err := e.catalog.Categories(ctx)
	if err != nil {
		return e.recover(ctx, sessionID, sess, err)
	}
	if len(categories) == 0 {
		return []domain.Reply{text("We are updating the menu, please come back a bit later.")}
	}

	draftID, err := e.builder.Start(ctx, sessionID)
	if err != nil {
		return e.recover(ctx, sessionID, sess, err)
	}

	sess.State = domain.StateBuildingCake
	sess.DraftCakeID = draftID
	sess.CategoryIndex = 0
	return []domain.Reply{categoryPrompt(categories[0])}
}

func (e *Engine) handleBuildingCake(ctx context.Context, sessionID string, ev Event, sess *domain.Session) []domain.Reply {
	categories, err := e.catalog.Categories(ctx)
	if err != nil {
		return e.recover(ctx, sessionID, sess, err)
	}
	if sess.CategoryIndex < 0 || sess.CategoryIndex >= len(categories) {
		return e.resetToMenu(ctx, sessionID, sess)
	}
	current := categories[sess.CategoryIndex]

	switch ev := ev.(type) {
	case ReturnToMenu:
		e.discardDraft(ctx, sess)
		return e.handleAuthorization(ctx, sessionID, sess)

	case Skip:
		if err := e.builder.Skip(ctx, sess.DraftCakeID, current.ID); err != nil {
			if errors.Is(err, domain.ErrMandatoryCategory) {
				e.emitRecovered(ctx, sessionID, sess.State, "mandatory_skip")
				return []domain.Reply{
					text(fmt.Sprintf("%q is required, please pick an option.", current.Title)),
					categoryPrompt(current),
				}
			}
			return e.recover(ctx, sessionID, sess, err)
		}
		return e.advanceCategory(ctx, sessionID, sess, categories)

	case SelectOption:
		option, err := e.catalog.Option(ctx, ev.OptionID)
		if err != nil {
			return e.recover(ctx, sessionID, sess, err)
		}
		if option.CategoryID != current.ID {
			// A stale keyboard row from another category.
			e.emitRecovered(ctx, sessionID, sess.State, "parse")
			return []domain.Reply{notUnderstood(), categoryPrompt(current)}
		}
		if err := e.builder.Choose(ctx, sess.DraftCakeID, ev.OptionID); err != nil {
			if errors.Is(err, domain.ErrCategoryFilled) {
				e.emitRecovered(ctx, sessionID, sess.State, "category_filled")
				return []domain.Reply{
					text(fmt.Sprintf("%q is already chosen for this cake.", current.Title)),
					categoryPrompt(current),
				}
			}
			return e.recover(ctx, sessionID, sess, err)
		}
		return e.advanceCategory(ctx, sessionID, sess, categories)
	}

	return []domain.Reply{notUnderstood()}
}

// advanceCategory moves the traversal to the next category, or finishes the
// cake when the list is exhausted.
func (e *Engine) advanceCategory(ctx context.Context, sessionID string, sess *domain.Session, categories []domain.CategoryWithOptions) []domain.Reply {
	sess.CategoryIndex++
	if sess.CategoryIndex < len(categories) {
		return []domain.Reply{categoryPrompt(categories[sess.CategoryIndex])}
	}

	draft, err := e.builder.Get(ctx, sess.DraftCakeID)
	if err != nil {
		return e.recover(ctx, sessionID, sess, err)
	}

	if e.wantsInscription(draft, categories) {
		sess.State = domain.StateInputInscription
		return []domain.Reply{inscriptionPrompt()}
	}

	sess.State = domain.StateCakeReady
	return []domain.Reply{cakeReadyPrompt(draft)}
}

// wantsInscription reports whether the finished cake picked an option in the
// inscription category.
func (e *Engine) wantsInscription(draft *domain.Cake, categories []domain.CategoryWithOptions) bool {
	for _, cat := range categories {
		if !strings.EqualFold(cat.Title, inscriptionCategory) {
			continue
		}
		_, answered := draft.SelectionFor(cat.ID)
		return answered
	}
	return false
}

func (e *Engine) handleInscription(ctx context.Context, sessionID, raw string, ev Event, sess *domain.Session) []domain.Reply {
	if _, ok := ev.(ReturnToMenu); ok {
		e.discardDraft(ctx, sess)
		return e.handleAuthorization(ctx, sessionID, sess)
	}

	inscription := strings.TrimSpace(raw)
	if inscription == "" {
		return []domain.Reply{inscriptionPrompt()}
	}

	if err := e.builder.SetInscription(ctx, sess.DraftCakeID, inscription); err != nil {
		return e.recover(ctx, sessionID, sess, err)
	}

	draft, err := e.builder.Get(ctx, sess.DraftCakeID)
	if err != nil {
		return e.recover(ctx, sessionID, sess, err)
	}
	sess.State = domain.StateCakeReady
	return []domain.Reply{cakeReadyPrompt(draft)}
}

func (e *Engine) handleCakeReady(ctx context.Context, sessionID string, ev Event, sess *domain.Session) []domain.Reply {
	switch ev.(type) {
	case ReturnToMenu:
		e.discardDraft(ctx, sess)
		return e.handleAuthorization(ctx, sessionID, sess)

	case PlaceOrder:
		cakeID, err := e.builder.Commit(ctx, sess.DraftCakeID)
		if err != nil {
			if errors.Is(err, domain.ErrMandatoryCategory) {
				// The traversal should make this impossible; rebuild.
				e.emitRecovered(ctx, sessionID, sess.State, "mandatory_unanswered")
				e.discardDraft(ctx, sess)
				replies := e.handleAuthorization(ctx, sessionID, sess)
				return append([]domain.Reply{text("Your cake is missing a required choice, let's start over.")}, replies...)
			}
			return e.recover(ctx, sessionID, sess, err)
		}

		orderID, err := e.ledger.Create(ctx, sessionID, []string{cakeID})
		if err != nil {
			return e.recover(ctx, sessionID, sess, err)
		}
		sess.DraftCakeID = ""
		sess.CategoryIndex = 0
		sess.OrderID = orderID
		sess.State = domain.StateOrderReview
		return e.showReview(ctx, sessionID, sess)
	}
	return []domain.Reply{notUnderstood()}
}

// showReview renders the order summary plus the confirm/edit keyboard.
func (e *Engine) showReview(ctx context.Context, sessionID string, sess *domain.Session) []domain.Reply {
	o, err := e.ledger.Get(ctx, sess.OrderID)
	if err != nil {
		return e.recover(ctx, sessionID, sess, err)
	}
	customer, err := e.profiles.Get(ctx, sessionID)
	if err != nil {
		return e.recover(ctx, sessionID, sess, err)
	}
	return []domain.Reply{orderSummary(o, customer), reviewPrompt()}
}

func (e *Engine) handleOrderReview(ctx context.Context, sessionID string, ev Event, sess *domain.Session) []domain.Reply {
	switch ev.(type) {
	case ConfirmOrder:
		if _, err := e.ledger.AdvanceStatus(ctx, sess.OrderID); err != nil {
			if errors.Is(err, domain.ErrInvalidTransition) {
				e.emitRecovered(ctx, sessionID, sess.State, "invalid_transition")
				return []domain.Reply{text("This order can no longer be confirmed here.")}
			}
			return e.recover(ctx, sessionID, sess, err)
		}
		confirmed := text(fmt.Sprintf("Order №%d confirmed. We are on it!", sess.OrderID))
		sess.OrderID = 0
		return append([]domain.Reply{confirmed}, e.handleAuthorization(ctx, sessionID, sess)...)

	case ChangePhone:
		sess.State = domain.StateChangePhone
		return []domain.Reply{text("Enter a new phone number.")}

	case ChangeAddress:
		sess.State = domain.StateChangeAddress
		return []domain.Reply{text("Enter a new delivery address.")}

	case CancelOrder:
		if err := e.ledger.Cancel(ctx, sess.OrderID); err != nil {
			if errors.Is(err, domain.ErrInvalidTransition) {
				e.emitRecovered(ctx, sessionID, sess.State, "invalid_transition")
				return []domain.Reply{text("This order can no longer be canceled here.")}
			}
			return e.recover(ctx, sessionID, sess, err)
		}
		sess.OrderID = 0
		canceled := text("The order has been canceled. Come back soon!")
		return append([]domain.Reply{canceled}, e.handleAuthorization(ctx, sessionID, sess)...)
	}
	return []domain.Reply{notUnderstood()}
}

func (e *Engine) handlePhoneChange(ctx context.Context, sessionID, raw string, sess *domain.Session) []domain.Reply {
	phone, err := validate.Phone(raw)
	if err != nil {
		e.emitRecovered(ctx, sessionID, sess.State, "validation")
		return []domain.Reply{text("Please enter a valid phone number, like +79161234567.")}
	}

	customer, err := e.profiles.Get(ctx, sessionID)
	if err != nil {
		return e.recover(ctx, sessionID, sess, err)
	}
	customer.Phone = phone
	if err := e.profiles.Update(ctx, customer); err != nil {
		return e.recover(ctx, sessionID, sess, err)
	}

	sess.State = domain.StateOrderReview
	reply := text(fmt.Sprintf("Saved your phone: %s.", phone))
	return append([]domain.Reply{reply}, e.showReview(ctx, sessionID, sess)...)
}

func (e *Engine) handleAddressChange(ctx context.Context, sessionID, raw string, sess *domain.Session) []domain.Reply {
	address, err := validate.Address(raw)
	if err != nil {
		e.emitRecovered(ctx, sessionID, sess.State, "validation")
		return []domain.Reply{text("Enter a new delivery address.")}
	}

	customer, err := e.profiles.Get(ctx, sessionID)
	if err != nil {
		return e.recover(ctx, sessionID, sess, err)
	}
	customer.Address = address
	if err := e.profiles.Update(ctx, customer); err != nil {
		return e.recover(ctx, sessionID, sess, err)
	}

	sess.State = domain.StateOrderReview
	reply := text(fmt.Sprintf("Saved your delivery address: %s.", address))
	return append([]domain.Reply{reply}, e.showReview(ctx, sessionID, sess)...)
}

func (e *Engine) handleOrderDetails(ctx context.Context, sessionID string, ev Event, sess *domain.Session) []domain.Reply {
	switch ev := ev.(type) {
	case ReturnToMenu:
		return e.handleAuthorization(ctx, sessionID, sess)

	case SelectOrder:
		o, err := e.ledger.Get(ctx, ev.OrderID)
		if err != nil {
			return e.recover(ctx, sessionID, sess, err)
		}
		if o.CustomerID != sessionID {
			// Never show another customer's order, however the id got here.
			return e.recover(ctx, sessionID, sess, domain.ErrNotFound)
		}
		customer, err := e.profiles.Get(ctx, sessionID)
		if err != nil {
			return e.recover(ctx, sessionID, sess, err)
		}
		return []domain.Reply{orderSummary(o, customer)}
	}
	return []domain.Reply{notUnderstood()}
}

// recover maps an operation error onto the spec'd recovery: stale ids abort
// to the main menu, everything else keeps the state and apologizes. No error
// ever reaches the transport as a fault.
func (e *Engine) recover(ctx context.Context, sessionID string, sess *domain.Session, err error) []domain.Reply {
	if errors.Is(err, domain.ErrNotFound) {
		e.emitRecovered(ctx, sessionID, sess.State, "not_found")
		e.logger.Warn("stale reference, resetting session", "session_id", sessionID, "state", sess.State, "err", err)
		return e.resetToMenu(ctx, sessionID, sess)
	}

	e.emitRecovered(ctx, sessionID, sess.State, "internal")
	e.logger.Error("transition failed", "session_id", sessionID, "state", sess.State, "err", err)
	return []domain.Reply{somethingWentWrong()}
}

// resetToMenu defensively clears the transient flow state and lands the
// session back on the authorization chain (normally the main menu).
func (e *Engine) resetToMenu(ctx context.Context, sessionID string, sess *domain.Session) []domain.Reply {
	e.discardDraft(ctx, sess)
	sess.OrderID = 0
	replies := e.handleAuthorization(ctx, sessionID, sess)
	return append([]domain.Reply{text("Sorry, I lost track of that. Back to the menu.")}, replies...)
}

// discardDraft drops the in-progress cake, if any. Best-effort and
// idempotent.
func (e *Engine) discardDraft(ctx context.Context, sess *domain.Session) {
	if sess.DraftCakeID == "" {
		return
	}
	if err := e.builder.Discard(ctx, sess.DraftCakeID); err != nil {
		e.logger.Warn("failed to discard draft cake", "cake_id", sess.DraftCakeID, "err", err)
	}
	sess.DraftCakeID = ""
	sess.CategoryIndex = 0
}

func (e *Engine) hasOrders(ctx context.Context, customerID string) bool {
	orders, err := e.ledger.ListByCustomer(ctx, customerID)
	if err != nil {
		e.logger.Warn("failed to list orders", "customer_id", customerID, "err", err)
		return false
	}
	return len(orders) > 0
}

func (e *Engine) emitTransition(ctx context.Context, sessionID string, from, to domain.State) {
	if from == to || e.hooks.OnTransition == nil {
		return
	}
	e.hooks.OnTransition(ctx, &domain.TransitionEvent{
		Timestamp: time.Now(),
		SessionID: sessionID,
		From:      from,
		To:        to,
	})
}

func (e *Engine) emitRecovered(ctx context.Context, sessionID string, state domain.State, kind string) {
	if e.hooks.OnRecoveredError == nil {
		return
	}
	e.hooks.OnRecoveredError(ctx, &domain.RecoveredErrorEvent{
		Timestamp: time.Now(),
		SessionID: sessionID,
		State:     state,
		Kind:      kind,
	})
}

// splitDisplayName separates a transport display name into first/last parts.
func splitDisplayName(displayName string) (first, last string) {
	fields := strings.Fields(displayName)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}
