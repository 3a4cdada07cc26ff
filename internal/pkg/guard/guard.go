// Package guard throttles repeated failed logins per client address.
package guard

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/admission/internal/pkg/apperrors"
	"github.com/yigit/admission/internal/pkg/metrics"
)

// Store keeps failure counters and lockouts.
type Store interface {
	// Locked returns the remaining lockout for key, or zero when key is not locked.
	Locked(ctx context.Context, key string) (time.Duration, error)
	// Fail records a failure inside window and returns the failures counted so far.
	Fail(ctx context.Context, key string, window time.Duration) (int, error)
	// Lock locks key for d and resets its counter.
	Lock(ctx context.Context, key string, d time.Duration) error
	// Clear forgets every failure and lockout of key.
	Clear(ctx context.Context, key string) error
}

// Policy configures when a key gets locked.
type Policy struct {
	MaxAttempts int
	Window      time.Duration
	Lockout     time.Duration
}

// DefaultPolicy locks a client for 15 minutes after 5 failures within 15 minutes.
var DefaultPolicy = Policy{
	MaxAttempts: 5,
	Window:      15 * time.Minute,
	Lockout:     15 * time.Minute,
}

// Guard is the brute-force login guard.
type Guard struct {
	store  Store
	policy Policy
	logger zerolog.Logger
}

// New creates a Guard. Zero policy fields fall back to DefaultPolicy.
func New(store Store, policy Policy, logger zerolog.Logger) *Guard {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = DefaultPolicy.MaxAttempts
	}
	if policy.Window <= 0 {
		policy.Window = DefaultPolicy.Window
	}
	if policy.Lockout <= 0 {
		policy.Lockout = DefaultPolicy.Lockout
	}

	return &Guard{
		store:  store,
		policy: policy,
		logger: logger.With().Str("component", "guard").Logger(),
	}
}

// Policy returns the effective policy.
func (g *Guard) Policy() Policy {
	return g.policy
}

// Check returns a *apperrors.LockoutError while key is locked.
func (g *Guard) Check(ctx context.Context, key string) error {
	remaining, err := g.store.Locked(ctx, key)
	if err != nil {
		return err
	}
	if remaining <= 0 {
		return nil
	}
	return &apperrors.LockoutError{RetryAfterSeconds: int(math.Ceil(remaining.Seconds()))}
}

// Fail records a failed attempt and locks key once MaxAttempts is reached.
// It reports whether this failure caused a lockout.
func (g *Guard) Fail(ctx context.Context, key string) (bool, error) {
	count, err := g.store.Fail(ctx, key, g.policy.Window)
	if err != nil {
		return false, err
	}
	if count < g.policy.MaxAttempts {
		return false, nil
	}

	if err := g.store.Lock(ctx, key, g.policy.Lockout); err != nil {
		return false, err
	}
	metrics.Lockouts.Inc()
	g.logger.Warn().
		Str("key", key).
		Int("attempts", count).
		Dur("lockout", g.policy.Lockout).
		Msg("Too many failed login attempts, locking out")
	return true, nil
}

// Succeed clears the failure history of key.
func (g *Guard) Succeed(ctx context.Context, key string) error {
	return g.store.Clear(ctx, key)
}
