package fakeauditrepo

import (
	"context"
	"sync"

	"github.com/jrsteele09/wedding-site/auth"
	"github.com/jrsteele09/wedding-site/internal/errors"
)

var _ auth.AuditRepo = (*FakeAuditRepo)(nil)

type FakeAuditRepo struct {
	attempts []auth.LoginAttempt
	fail     error
	lock     sync.RWMutex
}

func NewFakeAuditRepo() *FakeAuditRepo {
	return &FakeAuditRepo{}
}

// FailWith makes every subsequent write return err.
func (r *FakeAuditRepo) FailWith(err error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.fail = err
}

func (r *FakeAuditRepo) RecordLoginAttempt(ctx context.Context, attempt auth.LoginAttempt) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrapf(err, "RecordLoginAttempt")
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.fail != nil {
		return r.fail
	}
	attempt.ID = int64(len(r.attempts) + 1)
	r.attempts = append(r.attempts, attempt)
	return nil
}

// ListLoginAttempts returns the newest attempts first.
func (r *FakeAuditRepo) ListLoginAttempts(_ context.Context, limit int) ([]auth.LoginAttempt, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	out := make([]auth.LoginAttempt, 0, len(r.attempts))
	for i := len(r.attempts) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, r.attempts[i])
	}
	return out, nil
}

// Attempts returns every recorded attempt in insertion order.
func (r *FakeAuditRepo) Attempts() []auth.LoginAttempt {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return append([]auth.LoginAttempt(nil), r.attempts...)
}
