/*
Package bakecake is a conversational order-taking engine for a custom cake
bakery. It models the whole customer dialogue as a finite-state machine:
consent and contact capture, category-by-category cake composition, order
review and an order history view.

# Concept

The bot is transport-agnostic. A host (Telegram webhook, HTTP API, terminal
chat) feeds it raw text events keyed by a session identity and renders the
replies it gets back, including the suggested quick-reply buttons. All
conversation state lives in the session snapshot, so any number of customers
can talk to one bot process at the same time, and a multi-process deployment
only needs a shared session store plus the distributed locker.

# Key Properties

  - Per-session serialization: events for one identity are handled one at a
    time; different identities proceed in parallel.
  - Recoverable by construction: invalid input, stale buttons and missing
    records all resolve to a user-visible reply and a defined next state.
  - Pluggable persistence: every store is a small port with in-memory, file,
    Redis and Postgres implementations provided.

# Usage

	bot, err := bakecake.New(stores) // any bakecake.Stores implementation set
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	_, replies, err := bot.Start(ctx, "chat-42", "Alice Liddell")
	if err != nil {
		log.Fatal(err)
	}
	for _, r := range replies {
		fmt.Println(r.Text)
	}

	// Feed every subsequent customer message through HandleEvent and render
	// the replies; r.Suggestions carries the quick-reply buttons.
	_, replies, err = bot.HandleEvent(ctx, "chat-42", "Accept the policy")
*/
package bakecake
