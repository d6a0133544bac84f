package bakecake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/bakecake/internal/cake"
	"github.com/aretw0/bakecake/internal/dialog"
	"github.com/aretw0/bakecake/internal/logging"
	"github.com/aretw0/bakecake/internal/order"
	"github.com/aretw0/bakecake/pkg/domain"
	"github.com/aretw0/bakecake/pkg/ports"
	"github.com/aretw0/bakecake/pkg/session"
)

// Stores bundles the persistence ports the bot runs on. Any combination of
// backends works as long as each port is satisfied; see internal/adapters for
// the provided implementations.
type Stores struct {
	Profiles ports.ProfileStore
	Catalog  ports.Catalog
	Cakes    ports.CakeStore
	Orders   ports.OrderStore
	Sessions ports.SessionStore
}

// Bot is the high-level entry point of the library. It wraps the dialogue
// engine with per-session locking so a transport can feed it events from any
// number of goroutines.
type Bot struct {
	engine   *dialog.Engine
	sessions *session.Manager
	builder  *cake.Builder
	ledger   *order.Ledger
	profiles ports.ProfileStore

	logger     *slog.Logger
	hooks      domain.LifecycleHooks
	policyPath string
	locker     ports.DistributedLocker
	lockTTL    time.Duration
}

// Option defines a functional option for configuring the Bot.
type Option func(*Bot)

// WithLogger sets a structured logger for the bot and its components.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) {
		b.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(b *Bot) {
		b.hooks = hooks
	}
}

// WithPolicyDocument sets the personal-data policy file delivered on the
// consent prompt.
func WithPolicyDocument(path string) Option {
	return func(b *Bot) {
		b.policyPath = path
	}
}

// WithLocker enables distributed session locking, for deployments running
// more than one bot process against a shared session store.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(b *Bot) {
		b.locker = locker
	}
}

// WithLockTTL overrides the distributed lock TTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(b *Bot) {
		b.lockTTL = ttl
	}
}

// New assembles a Bot over the given stores.
func New(stores Stores, opts ...Option) (*Bot, error) {
	switch {
	case stores.Profiles == nil:
		return nil, fmt.Errorf("profile store is required")
	case stores.Catalog == nil:
		return nil, fmt.Errorf("catalog is required")
	case stores.Cakes == nil:
		return nil, fmt.Errorf("cake store is required")
	case stores.Orders == nil:
		return nil, fmt.Errorf("order store is required")
	case stores.Sessions == nil:
		return nil, fmt.Errorf("session store is required")
	}

	b := &Bot{profiles: stores.Profiles}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = logging.NewNop()
	}

	b.builder = cake.NewBuilder(stores.Cakes, stores.Catalog, cake.WithLogger(b.logger))
	b.ledger = order.NewLedger(stores.Orders, stores.Cakes, order.WithLogger(b.logger))
	b.engine = dialog.NewEngine(stores.Profiles, stores.Catalog, b.builder, b.ledger,
		dialog.WithLogger(b.logger),
		dialog.WithHooks(b.hooks),
		dialog.WithPolicyDocument(b.policyPath),
	)

	sessionOpts := []session.Option{session.WithLogger(b.logger)}
	if b.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(b.locker))
	}
	if b.lockTTL > 0 {
		sessionOpts = append(sessionOpts, session.WithLockTTL(b.lockTTL))
	}
	b.sessions = session.NewManager(stores.Sessions, sessionOpts...)

	return b, nil
}

// Start handles session initiation for the identity: it greets the customer,
// creates the profile on first contact and returns the opening replies.
// A pre-existing session for the identity is resumed, not wiped.
func (b *Bot) Start(ctx context.Context, sessionID, displayName string) (domain.State, []domain.Reply, error) {
	return b.withSession(ctx, sessionID, func(ctx context.Context, sess *domain.Session) []domain.Reply {
		return b.engine.Start(ctx, sessionID, displayName, sess)
	})
}

// HandleEvent processes one inbound text event for the identity and returns
// the resulting state and replies. Events for the same identity are
// serialized; different identities proceed in parallel. Dialogue-level
// problems never surface as errors here, only persistence failures do.
func (b *Bot) HandleEvent(ctx context.Context, sessionID, input string) (domain.State, []domain.Reply, error) {
	return b.withSession(ctx, sessionID, func(ctx context.Context, sess *domain.Session) []domain.Reply {
		return b.engine.Handle(ctx, sessionID, input, sess)
	})
}

// withSession runs fn under the session lock, loading the snapshot first
// (creating a fresh one for an unknown identity) and persisting it after.
func (b *Bot) withSession(ctx context.Context, sessionID string, fn func(context.Context, *domain.Session) []domain.Reply) (domain.State, []domain.Reply, error) {
	var state domain.State
	var replies []domain.Reply

	err := b.sessions.WithLock(ctx, sessionID, func(ctx context.Context) error {
		sess, err := b.sessions.Store().Load(ctx, sessionID)
		if errors.Is(err, domain.ErrSessionNotFound) {
			sess = domain.NewSession()
		} else if err != nil {
			return fmt.Errorf("failed to load session: %w", err)
		}

		replies = fn(ctx, sess)
		state = sess.State

		if err := b.sessions.Store().Save(ctx, sessionID, sess); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", nil, err
	}
	return state, replies, nil
}

// Ledger exposes the order ledger for admin surfaces.
func (b *Bot) Ledger() *order.Ledger {
	return b.ledger
}

// Profiles exposes the profile store for admin surfaces.
func (b *Bot) Profiles() ports.ProfileStore {
	return b.profiles
}

// Sessions returns the session manager.
func (b *Bot) Sessions() *session.Manager {
	return b.sessions
}
