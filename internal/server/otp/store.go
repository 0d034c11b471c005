package otp

import (
	"context"
	"time"

	"github.com/dmitrijs2005/pointgate/internal/server/models"
)

// ResolveFunc inspects the stored challenge and decides whether it is
// consumed. Its error is returned from Resolve unchanged.
type ResolveFunc func(c *models.Challenge) (consume bool, err error)

// ChallengeStore holds at most one challenge per username.
type ChallengeStore interface {
	// Put stores c, replacing any earlier challenge for c.UserName. A
	// positive ttl drops the entry after ttl even if nobody resolves it;
	// otherwise it stays until Resolve consumes it.
	Put(ctx context.Context, c *models.Challenge, ttl time.Duration) error
	// Resolve runs fn on the user's challenge and deletes it when fn asks
	// to, as one atomic step. Without a challenge it returns
	// common.ErrNoActiveChallenge and does not call fn.
	Resolve(ctx context.Context, userName string, fn ResolveFunc) error
}
