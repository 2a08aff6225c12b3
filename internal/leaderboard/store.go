// internal/leaderboard/store.go
//
// Persistence for daily challenge results. One row per user per date
// (UNIQUE(user_id, date), INSERT OR IGNORE). The leaderboard query orders by
// the same keys as Compare, with created_at as the final stable tie-break.

package leaderboard

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// Result is a single user's finished daily challenge run.
type Result struct {
	UserID             string  `json:"userId"`
	Date               string  `json:"date"` // 8-digit YYYYMMDD
	Score              int     `json:"score"`
	RawScorePercentage float64 `json:"rawScorePercentage"`
	TimeInSeconds      int     `json:"timeInSeconds"`
}

// Row is one leaderboard line returned to clients.
type Row struct {
	UserID             string  `json:"userId"`
	Score              int     `json:"score"`
	RawScorePercentage float64 `json:"rawScorePercentage"`
	TimeInSeconds      int     `json:"timeInSeconds"`
}

// Store wraps the daily_results table.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// AlreadyPlayed reports whether the user has a recorded run for the date.
func (s *Store) AlreadyPlayed(ctx context.Context, userID, date string) (bool, error) {
	query, args, err := sqlBuilder.
		Select("COUNT(1)").
		From("daily_results").
		Where(squirrel.Eq{"user_id": userID, "date": date}).
		ToSql()
	if err != nil {
		return false, err
	}
	var cnt int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&cnt); err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// InsertResult records a finished run. A second run on the same date is
// ignored, keeping the first.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	query, args, err := sqlBuilder.
		Insert("daily_results").
		Options("OR IGNORE").
		Columns("user_id", "date", "score", "raw_score", "time_seconds").
		Values(r.UserID, r.Date, r.Score, r.RawScorePercentage, r.TimeInSeconds).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

// Top returns the best results for a date, ranked by the Compare order.
func (s *Store) Top(ctx context.Context, date string, limit int) ([]Row, error) {
	if limit <= 0 {
		limit = 20
	}
	query, args, err := sqlBuilder.
		Select("user_id", "score", "raw_score", "time_seconds").
		From("daily_results").
		Where(squirrel.Eq{"date": date}).
		OrderBy("score DESC", "raw_score DESC", "time_seconds ASC", "created_at ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Row, 0, limit)
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.UserID, &r.Score, &r.RawScorePercentage, &r.TimeInSeconds); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
