package ports

import (
	"context"

	"chronle/domain/core"
	"chronle/domain/event"
	"chronle/domain/puzzle"
)

// EventRepository is the persistence contract for the per-year event pool.
type EventRepository interface {
	// ImportEvents appends a bounded batch of events under a year.
	ImportEvents(ctx context.Context, year int, events []event.CandidateEvent) ([]event.PoolEvent, error)

	// GetYearStats returns per-year aggregates for every year that has
	// at least one event.
	GetYearStats(ctx context.Context) ([]event.YearStat, error)

	// GetAvailableEvents returns unused events for a year.
	GetAvailableEvents(ctx context.Context, year int) ([]event.PoolEvent, error)

	// MarkUsed flags events as consumed by a published puzzle.
	MarkUsed(ctx context.Context, ids []core.EventID) error
}

// PuzzleRepository is the persistence contract for published puzzles.
type PuzzleRepository interface {
	SavePuzzle(ctx context.Context, p *puzzle.Puzzle) error
	GetPuzzle(ctx context.Context, id core.PuzzleID) (*puzzle.Puzzle, error)
	GetPuzzleByDay(ctx context.Context, day string) (*puzzle.Puzzle, error)
}
