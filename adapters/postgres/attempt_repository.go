package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"chronle/domain/core"
	"chronle/domain/puzzle"
	"chronle/ports"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// attemptRow is the flat database shape of an order attempt
type attemptRow struct {
	ID           string          `db:"id"`
	UserID       string          `db:"user_id"`
	PuzzleID     string          `db:"puzzle_id"`
	Ordering     json.RawMessage `db:"ordering"`
	Feedback     json.RawMessage `db:"feedback"`
	PairsCorrect int             `db:"pairs_correct"`
	TotalPairs   int             `db:"total_pairs"`
	Solved       bool            `db:"solved"`
	CreatedAt    time.Time       `db:"created_at"`
}

func (r attemptRow) toAttempt() (*puzzle.OrderAttempt, error) {
	var ordering []core.EventID
	if err := json.Unmarshal(r.Ordering, &ordering); err != nil {
		return nil, err
	}
	var feedback []puzzle.PositionFeedback
	if err := json.Unmarshal(r.Feedback, &feedback); err != nil {
		return nil, err
	}
	return &puzzle.OrderAttempt{
		ID:       core.AttemptID(r.ID),
		UserID:   core.UserID(r.UserID),
		PuzzleID: core.PuzzleID(r.PuzzleID),
		Ordering: ordering,
		Result: puzzle.AttemptValidation{
			Feedback:     feedback,
			PairsCorrect: r.PairsCorrect,
			TotalPairs:   r.TotalPairs,
		},
		Solved:    r.Solved,
		CreatedAt: core.NewTimestamp(r.CreatedAt),
	}, nil
}

// AttemptRepositoryImpl implements AttemptRepository for PostgreSQL
type AttemptRepositoryImpl struct {
	db *sqlx.DB
}

// NewAttemptRepository creates a new PostgreSQL attempt repository
func NewAttemptRepository(db *sqlx.DB) ports.AttemptRepository {
	return &AttemptRepositoryImpl{db: db}
}

// SaveAttempt persists one attempt. The (user_id, puzzle_id) unique
// constraint makes duplicate submissions fail with ErrAttemptExists.
func (r *AttemptRepositoryImpl) SaveAttempt(ctx context.Context, attempt *puzzle.OrderAttempt) error {
	ordering, err := json.Marshal(attempt.Ordering)
	if err != nil {
		return err
	}
	feedback, err := json.Marshal(attempt.Result.Feedback)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO order_attempts (
			id, user_id, puzzle_id, ordering, feedback,
			pairs_correct, total_pairs, solved, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		attempt.ID.String(), attempt.UserID.String(), attempt.PuzzleID.String(),
		ordering, feedback,
		attempt.Result.PairsCorrect, attempt.Result.TotalPairs,
		attempt.Solved, attempt.CreatedAt.Time(),
	)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return core.ErrAttemptExists
	}
	return err
}

// GetAttempt retrieves one user's attempt at a puzzle
func (r *AttemptRepositoryImpl) GetAttempt(ctx context.Context, userID core.UserID, puzzleID core.PuzzleID) (*puzzle.OrderAttempt, error) {
	var row attemptRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, user_id, puzzle_id, ordering, feedback,
		       pairs_correct, total_pairs, solved, created_at
		FROM order_attempts
		WHERE user_id = $1 AND puzzle_id = $2
	`, userID.String(), puzzleID.String())
	if err == sql.ErrNoRows {
		return nil, core.ErrAttemptNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toAttempt()
}

// ListUserAttempts retrieves a user's attempts, most recent first
func (r *AttemptRepositoryImpl) ListUserAttempts(ctx context.Context, userID core.UserID) ([]*puzzle.OrderAttempt, error) {
	var rows []attemptRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, puzzle_id, ordering, feedback,
		       pairs_correct, total_pairs, solved, created_at
		FROM order_attempts
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID.String())
	if err != nil {
		return nil, err
	}

	attempts := make([]*puzzle.OrderAttempt, 0, len(rows))
	for _, row := range rows {
		attempt, err := row.toAttempt()
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}
	return attempts, nil
}
