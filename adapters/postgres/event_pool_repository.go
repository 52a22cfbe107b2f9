package postgres

import (
	"context"
	"time"

	"chronle/domain/core"
	"chronle/domain/event"
	"chronle/ports"

	"github.com/jmoiron/sqlx"
)

// eventRow is the flat database shape of a pooled event
type eventRow struct {
	ID         string    `db:"id"`
	Year       int       `db:"year"`
	Text       string    `db:"text"`
	Title      string    `db:"title"`
	Category   string    `db:"category"`
	Difficulty int       `db:"difficulty"`
	Region     string    `db:"region"`
	Used       bool      `db:"used"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r eventRow) toPoolEvent() event.PoolEvent {
	return event.PoolEvent{
		ID:   core.EventID(r.ID),
		Year: r.Year,
		Event: event.CandidateEvent{
			Text:       r.Text,
			Title:      r.Title,
			Category:   event.Category(r.Category),
			Difficulty: r.Difficulty,
			Region:     r.Region,
		},
		Used:      r.Used,
		CreatedAt: core.NewTimestamp(r.CreatedAt),
	}
}

// EventPoolRepositoryImpl implements EventRepository for PostgreSQL
type EventPoolRepositoryImpl struct {
	db *sqlx.DB
}

// NewEventPoolRepository creates a new PostgreSQL event pool repository
func NewEventPoolRepository(db *sqlx.DB) ports.EventRepository {
	return &EventPoolRepositoryImpl{db: db}
}

// ImportEvents appends a batch of candidate events under a year
func (r *EventPoolRepositoryImpl) ImportEvents(ctx context.Context, year int, events []event.CandidateEvent) ([]event.PoolEvent, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	imported := make([]event.PoolEvent, 0, len(events))
	now := time.Now()

	for _, candidate := range events {
		row := eventRow{
			ID:         core.NewID().String(),
			Year:       year,
			Text:       candidate.Text,
			Title:      candidate.Title,
			Category:   string(candidate.Category),
			Difficulty: candidate.Difficulty,
			Region:     candidate.Region,
			Used:       false,
			CreatedAt:  now,
		}
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO events (
				id, year, text, title, category, difficulty, region, used, created_at
			) VALUES (
				:id, :year, :text, :title, :category, :difficulty, :region, :used, :created_at
			)
		`, row)
		if err != nil {
			return nil, err
		}
		imported = append(imported, row.toPoolEvent())
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return imported, nil
}

// GetYearStats returns per-year aggregates for every year that has events
func (r *EventPoolRepositoryImpl) GetYearStats(ctx context.Context) ([]event.YearStat, error) {
	var stats []event.YearStat
	err := r.db.SelectContext(ctx, &stats, `
		SELECT year,
		       COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE used) AS used,
		       COUNT(*) FILTER (WHERE NOT used) AS available
		FROM events
		GROUP BY year
		ORDER BY year
	`)
	return stats, err
}

// GetAvailableEvents returns unused events for a year
func (r *EventPoolRepositoryImpl) GetAvailableEvents(ctx context.Context, year int) ([]event.PoolEvent, error) {
	var rows []eventRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, year, text, title, category, difficulty, region, used, created_at
		FROM events
		WHERE year = $1 AND NOT used
		ORDER BY created_at
	`, year)
	if err != nil {
		return nil, err
	}

	events := make([]event.PoolEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, row.toPoolEvent())
	}
	return events, nil
}

// MarkUsed flags events as consumed by a published puzzle
func (r *EventPoolRepositoryImpl) MarkUsed(ctx context.Context, ids []core.EventID) error {
	if len(ids) == 0 {
		return nil
	}

	raw := make([]string, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.String())
	}

	query, args, err := sqlx.In(`UPDATE events SET used = TRUE WHERE id IN (?)`, raw)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	return err
}
