package postgres

import (
	"context"
	"database/sql"
	"time"

	"chronle/domain/core"
	"chronle/domain/event"
	"chronle/domain/puzzle"
	"chronle/ports"

	"github.com/jmoiron/sqlx"
)

// PuzzleRepositoryImpl implements PuzzleRepository for PostgreSQL
type PuzzleRepositoryImpl struct {
	db *sqlx.DB
}

// NewPuzzleRepository creates a new PostgreSQL puzzle repository
func NewPuzzleRepository(db *sqlx.DB) ports.PuzzleRepository {
	return &PuzzleRepositoryImpl{db: db}
}

// SavePuzzle persists a puzzle and its ordered events atomically
func (r *PuzzleRepositoryImpl) SavePuzzle(ctx context.Context, p *puzzle.Puzzle) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO puzzles (id, day, created_at) VALUES ($1, $2, $3)
	`, p.ID.String(), p.Day, p.CreatedAt.Time())
	if err != nil {
		return err
	}

	for position, ev := range p.Events {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO puzzle_events (puzzle_id, position, event_id, year, text)
			VALUES ($1, $2, $3, $4, $5)
		`, p.ID.String(), position, ev.ID.String(), ev.Year, ev.Text)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetPuzzle retrieves a puzzle by its ID
func (r *PuzzleRepositoryImpl) GetPuzzle(ctx context.Context, id core.PuzzleID) (*puzzle.Puzzle, error) {
	return r.loadPuzzle(ctx, `SELECT id, day, created_at FROM puzzles WHERE id = $1`, id.String())
}

// GetPuzzleByDay retrieves the puzzle published for a YYYY-MM-DD slot
func (r *PuzzleRepositoryImpl) GetPuzzleByDay(ctx context.Context, day string) (*puzzle.Puzzle, error) {
	return r.loadPuzzle(ctx, `SELECT id, day, created_at FROM puzzles WHERE day = $1`, day)
}

func (r *PuzzleRepositoryImpl) loadPuzzle(ctx context.Context, query string, arg interface{}) (*puzzle.Puzzle, error) {
	var header struct {
		ID        string    `db:"id"`
		Day       time.Time `db:"day"`
		CreatedAt time.Time `db:"created_at"`
	}
	err := r.db.GetContext(ctx, &header, query, arg)
	if err == sql.ErrNoRows {
		return nil, core.ErrPuzzleNotFound
	}
	if err != nil {
		return nil, err
	}

	var eventRows []struct {
		EventID string `db:"event_id"`
		Year    int    `db:"year"`
		Text    string `db:"text"`
	}
	err = r.db.SelectContext(ctx, &eventRows, `
		SELECT event_id, year, text
		FROM puzzle_events
		WHERE puzzle_id = $1
		ORDER BY position
	`, header.ID)
	if err != nil {
		return nil, err
	}

	events := make([]event.OrderEvent, 0, len(eventRows))
	for _, row := range eventRows {
		events = append(events, event.OrderEvent{
			ID:   core.EventID(row.EventID),
			Year: row.Year,
			Text: row.Text,
		})
	}

	return &puzzle.Puzzle{
		ID:        core.PuzzleID(header.ID),
		Day:       header.Day.Format("2006-01-02"),
		Events:    events,
		CreatedAt: core.NewTimestamp(header.CreatedAt),
	}, nil
}
