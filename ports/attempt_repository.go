package ports

import (
	"context"

	"chronle/domain/core"
	"chronle/domain/puzzle"
)

// AttemptRepository is the persistence contract for order-mode attempts,
// keyed by (user, puzzle). The store enforces at-most-one accepted write
// per key; this pipeline relies on that and does not re-implement it.
type AttemptRepository interface {
	SaveAttempt(ctx context.Context, attempt *puzzle.OrderAttempt) error
	GetAttempt(ctx context.Context, userID core.UserID, puzzleID core.PuzzleID) (*puzzle.OrderAttempt, error)
	ListUserAttempts(ctx context.Context, userID core.UserID) ([]*puzzle.OrderAttempt, error)
}
