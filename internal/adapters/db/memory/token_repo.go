// Package memory keeps revoked token ids in process memory. It is used when
// no Redis address is configured, so revocations do not survive a restart
// and are not shared between replicas.
package memory

import (
	"context"
	"sync"
	"time"
)

const sweepInterval = time.Minute

// TokenRepo holds every revoked id until the token it names has expired.
// Entries are never evicted early: a revoked id that disappeared from the
// store would make its token valid again.
type TokenRepo struct {
	mu        sync.Mutex
	refresh   map[string]time.Time
	access    map[string]time.Time
	now       func() time.Time
	lastSweep time.Time
}

func NewTokenRepo() *TokenRepo {
	return &TokenRepo{
		refresh: make(map[string]time.Time),
		access:  make(map[string]time.Time),
		now:     time.Now,
	}
}

func (r *TokenRepo) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	r.add(r.refresh, jti, expiresAt)
	return nil
}

func (r *TokenRepo) IsRevoked(_ context.Context, jti string) (bool, error) {
	return r.lookup(r.refresh, jti), nil
}

func (r *TokenRepo) RevokeAccess(_ context.Context, jti string, expiresAt time.Time) error {
	r.add(r.access, jti, expiresAt)
	return nil
}

func (r *TokenRepo) IsAccessRevoked(_ context.Context, jti string) (bool, error) {
	return r.lookup(r.access, jti), nil
}

// Len reports how many revoked ids of both kinds are currently held.
func (r *TokenRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.refresh) + len(r.access)
}

func (r *TokenRepo) add(set map[string]time.Time, jti string, expiresAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if !expiresAt.IsZero() && !now.Before(expiresAt) {
		return
	}
	set[jti] = expiresAt

	if now.Sub(r.lastSweep) >= sweepInterval {
		r.sweep(now)
		r.lastSweep = now
	}
}

func (r *TokenRepo) lookup(set map[string]time.Time, jti string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	exp, ok := set[jti]
	if !ok {
		return false
	}
	if expired(exp, r.now()) {
		delete(set, jti)
		return false
	}
	return true
}

// sweep drops ids whose tokens have expired. Zero expiry means the token
// never expires, so those ids are kept.
func (r *TokenRepo) sweep(now time.Time) {
	for _, set := range []map[string]time.Time{r.refresh, r.access} {
		for jti, exp := range set {
			if expired(exp, now) {
				delete(set, jti)
			}
		}
	}
}

func expired(exp, now time.Time) bool {
	return !exp.IsZero() && !now.Before(exp)
}
