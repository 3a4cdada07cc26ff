package jobs

import (
	"context"
)

// Sweeper drops expired in-process entries and reports how many went away
type Sweeper interface {
	Sweep() int
}

// TokenCleaner deletes expired and long-revoked refresh tokens
type TokenCleaner interface {
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}

// Cleaner drops idle rate limit buckets
type Cleaner interface {
	Cleanup() int
}

// GuardSweep forgets lapsed login failures of the in-memory guard store
func GuardSweep(schedule string, store Sweeper) Job {
	return Job{
		Name:     "guard_sweep",
		Schedule: schedule,
		Run: func(context.Context) (int64, error) {
			return int64(store.Sweep()), nil
		},
	}
}

// LimiterCleanup drops rate limit buckets of clients gone quiet
func LimiterCleanup(schedule string, limiter Cleaner) Job {
	return Job{
		Name:     "rate_limiter_cleanup",
		Schedule: schedule,
		Run: func(context.Context) (int64, error) {
			return int64(limiter.Cleanup()), nil
		},
	}
}

// TokenCleanup deletes refresh tokens nobody can use anymore
func TokenCleanup(schedule string, tokens TokenCleaner) Job {
	return Job{
		Name:     "refresh_token_cleanup",
		Schedule: schedule,
		Run:      tokens.CleanupExpiredTokens,
	}
}
