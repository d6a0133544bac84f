package domain

import (
	"context"
	"time"
)

// TransitionEvent describes one state change of a session.
type TransitionEvent struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	From      State     `json:"from"`
	To        State     `json:"to"`
}

// RecoveredErrorEvent describes an error the engine absorbed and turned into
// a user-visible message (validation failure, stale id, malformed input).
type RecoveredErrorEvent struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	State     State     `json:"state"`
	Kind      string    `json:"kind"`
}

// LifecycleHooks defines callbacks for engine observability. All fields are
// optional; nil hooks are skipped.
type LifecycleHooks struct {
	OnEvent          func(context.Context, string, State)
	OnTransition     func(context.Context, *TransitionEvent)
	OnRecoveredError func(context.Context, *RecoveredErrorEvent)
}
