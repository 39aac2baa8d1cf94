package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresWatchlistStore persists watchlists in Postgres.
type PostgresWatchlistStore struct {
	pool *pgxpool.Pool
}

func NewPostgresWatchlistStore(pool *pgxpool.Pool) *PostgresWatchlistStore {
	return &PostgresWatchlistStore{pool: pool}
}

func (s *PostgresWatchlistStore) Toggle(ctx context.Context, userID, movieID string) (bool, int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx,
		`DELETE FROM watchlist WHERE user_id = $1 AND movie_id = $2::uuid`, userID, movieID)
	if err != nil {
		return false, 0, err
	}
	added := tag.RowsAffected() == 0
	if added {
		if _, err := tx.Exec(ctx,
			`INSERT INTO watchlist (user_id, movie_id) VALUES ($1, $2::uuid)`, userID, movieID); err != nil {
			return false, 0, err
		}
	}

	var total int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM watchlist WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return false, 0, err
	}
	return added, total, tx.Commit(ctx)
}

func (s *PostgresWatchlistStore) List(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT movie_id FROM watchlist WHERE user_id = $1 ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
