package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/bakecake/pkg/domain"
)

type nopStore struct{}

func (nopStore) Save(ctx context.Context, sessionID string, sess *domain.Session) error { return nil }
func (nopStore) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	return nil, domain.ErrSessionNotFound
}
func (nopStore) Delete(ctx context.Context, sessionID string) error { return nil }
func (nopStore) List(ctx context.Context) ([]string, error)         { return nil, nil }

func TestManager_LockEntriesDoNotLeak(t *testing.T) {
	mgr := NewManager(nopStore{})
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		sid := fmt.Sprintf("session-%d", i)
		_ = mgr.Save(ctx, sid, &domain.Session{})
		_ = mgr.Delete(ctx, sid)
	}

	if remaining := len(mgr.locks); remaining != 0 {
		t.Errorf("memory leak: %d lock entries remaining after all sessions released", remaining)
	}
}
