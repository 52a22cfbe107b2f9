package app

import (
	"context"
	"fmt"

	"chronle/domain/core"
	"chronle/domain/puzzle"
	"chronle/internal/ordering"
	"chronle/ports"
)

// PlayService evaluates and records order-mode attempts. All scoring is
// recomputed server-side from the stored puzzle; nothing the client claims
// about correctness is trusted.
type PlayService struct {
	puzzles  ports.PuzzleRepository
	attempts ports.AttemptRepository
}

// NewPlayService creates a play service
func NewPlayService(puzzles ports.PuzzleRepository, attempts ports.AttemptRepository) *PlayService {
	return &PlayService{
		puzzles:  puzzles,
		attempts: attempts,
	}
}

// SubmitAttempt scores a submitted ordering against the puzzle's ground
// truth and records it. A second submission for the same (user, puzzle)
// fails with ErrAttemptExists.
func (s *PlayService) SubmitAttempt(ctx context.Context, userID core.UserID, puzzleID core.PuzzleID, submitted []core.EventID) (*puzzle.OrderAttempt, error) {
	p, err := s.puzzles.GetPuzzle(ctx, puzzleID)
	if err != nil {
		return nil, err
	}
	// An empty puzzle would make any submission vacuously solved; refuse
	// to score against one.
	if len(p.Events) == 0 {
		return nil, fmt.Errorf("puzzle %s has no events: %w", puzzleID, core.ErrEmptyPuzzle)
	}
	// Scoring is per-submitted-slot, so a short submission would be judged
	// only on the slots it fills. Require full coverage before scoring.
	if len(submitted) != len(p.Events) {
		return nil, fmt.Errorf("ordering has %d events, puzzle has %d: %w",
			len(submitted), len(p.Events), core.ErrOrderingLengthMismatch)
	}

	result := ordering.EvaluateOrdering(submitted, p.Events)

	attempt := &puzzle.OrderAttempt{
		ID:        core.AttemptID(core.NewID()),
		UserID:    userID,
		PuzzleID:  puzzleID,
		Ordering:  submitted,
		Result:    result,
		Solved:    ordering.IsSolved(result),
		CreatedAt: core.Now(),
	}

	if err := s.attempts.SaveAttempt(ctx, attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}

// GetDailyPuzzle returns the puzzle for a YYYY-MM-DD day slot
func (s *PlayService) GetDailyPuzzle(ctx context.Context, day string) (*puzzle.Puzzle, error) {
	return s.puzzles.GetPuzzleByDay(ctx, day)
}

// GetAttempt returns one user's recorded attempt at a puzzle
func (s *PlayService) GetAttempt(ctx context.Context, userID core.UserID, puzzleID core.PuzzleID) (*puzzle.OrderAttempt, error) {
	return s.attempts.GetAttempt(ctx, userID, puzzleID)
}

// ListUserAttempts returns a user's attempt history, most recent first
func (s *PlayService) ListUserAttempts(ctx context.Context, userID core.UserID) ([]*puzzle.OrderAttempt, error) {
	return s.attempts.ListUserAttempts(ctx, userID)
}
