package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/movie-platform/services/movies/internal/engagement"
)

// PostgresMovieStore persists movie aggregates in Postgres. Per-movie
// serialization comes from transactions with SELECT ... FOR UPDATE on the
// movie row; the comment cascade closure is still computed by the pure
// core so memory and Postgres delete exactly the same set.
type PostgresMovieStore struct {
	pool *pgxpool.Pool
}

func NewPostgresMovieStore(pool *pgxpool.Pool) *PostgresMovieStore {
	return &PostgresMovieStore{pool: pool}
}

const uniqueViolation = "23505"

func isDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (s *PostgresMovieStore) Create(ctx context.Context, m Movie) (Movie, error) {
	const q = `INSERT INTO movies (title, director, year, description, genre, poster_url, created_by)
	           VALUES ($1, $2, $3, $4, $5, $6, $7)
	           RETURNING id, created_at, updated_at`
	err := s.pool.QueryRow(ctx, q,
		strings.TrimSpace(m.Title), m.Director, m.Year, m.Description, m.Genre, m.PosterURL, m.CreatedBy,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if isDuplicate(err) {
			return Movie{}, ErrDuplicate
		}
		return Movie{}, err
	}
	m.Likes = []string{}
	m.Ratings = nil
	m.AverageRating = 0
	m.Comments = nil
	return m, nil
}

func (s *PostgresMovieStore) GetByID(ctx context.Context, id string) (Movie, error) {
	m, err := s.getMovieRow(ctx, id)
	if err != nil {
		return Movie{}, err
	}
	if m.Likes, err = s.movieLikes(ctx, id); err != nil {
		return Movie{}, err
	}
	if m.Ratings, err = s.movieRatings(ctx, id); err != nil {
		return Movie{}, err
	}
	m.AverageRating = engagement.Summarize(m.Ratings).AverageRating
	if m.Comments, err = s.loadComments(ctx, id); err != nil {
		return Movie{}, err
	}
	return m, nil
}

func (s *PostgresMovieStore) GetByIDs(ctx context.Context, ids []string) ([]Movie, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx, listSelect+` WHERE m.id = ANY($1::uuid[])`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMovieSummaries(rows)
}

const listSelect = `
SELECT m.id, m.title, m.director, m.year, m.description, m.genre, m.poster_url, m.created_by,
       m.created_at, m.updated_at,
       COALESCE(r.avg_rating, 0), COALESCE(l.user_ids, '{}')
FROM movies m
LEFT JOIN (SELECT movie_id, AVG(value) AS avg_rating FROM ratings GROUP BY movie_id) r ON r.movie_id = m.id
LEFT JOIN (SELECT movie_id, COUNT(*) AS like_count, array_agg(user_id ORDER BY created_at) AS user_ids
           FROM movie_likes GROUP BY movie_id) l ON l.movie_id = m.id`

func (s *PostgresMovieStore) List(ctx context.Context, q ListQuery) (ListResult, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 50 {
		q.Limit = 10
	}

	var order string
	switch q.Sort {
	case engagement.SortHighestRated:
		order = `COALESCE(r.avg_rating, 0) DESC`
	case engagement.SortMostLiked:
		order = `COALESCE(l.like_count, 0) DESC`
	case engagement.SortTrending:
		order = `COALESCE(r.avg_rating, 0) * 2 + COALESCE(l.like_count, 0) DESC`
	default:
		order = `m.created_at DESC`
	}

	where := ` WHERE ($1 = '' OR m.title ILIKE '%' || $1 || '%')
	             AND ($2 = '' OR m.genre ILIKE '%' || $2 || '%')`

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM movies m`+where, q.Search, q.Genre).Scan(&total); err != nil {
		return ListResult{}, err
	}

	sql := fmt.Sprintf("%s%s ORDER BY %s, m.created_at DESC LIMIT $3 OFFSET $4", listSelect, where, order)
	rows, err := s.pool.Query(ctx, sql, q.Search, q.Genre, q.Limit, (q.Page-1)*q.Limit)
	if err != nil {
		return ListResult{}, err
	}
	defer rows.Close()

	movies, err := scanMovieSummaries(rows)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{
		Movies:       movies,
		TotalResults: total,
		CurrentPage:  q.Page,
		TotalPages:   (total + q.Limit - 1) / q.Limit,
	}, nil
}

func scanMovieSummaries(rows pgx.Rows) ([]Movie, error) {
	movies := []Movie{}
	for rows.Next() {
		var m Movie
		if err := rows.Scan(&m.ID, &m.Title, &m.Director, &m.Year, &m.Description, &m.Genre,
			&m.PosterURL, &m.CreatedBy, &m.CreatedAt, &m.UpdatedAt, &m.AverageRating, &m.Likes); err != nil {
			return nil, err
		}
		if m.Likes == nil {
			m.Likes = []string{}
		}
		movies = append(movies, m)
	}
	return movies, rows.Err()
}

func (s *PostgresMovieStore) Update(ctx context.Context, id, callerID string, admin bool, p MoviePatch) (Movie, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Movie{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var createdBy string
	err = tx.QueryRow(ctx, `SELECT created_by FROM movies WHERE id = $1::uuid FOR UPDATE`, id).Scan(&createdBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Movie{}, engagement.ErrNotFound
		}
		return Movie{}, err
	}
	if createdBy != callerID && !admin {
		return Movie{}, engagement.ErrForbidden
	}

	const q = `UPDATE movies SET
	             title = COALESCE($2, title),
	             director = COALESCE($3, director),
	             year = COALESCE($4, year),
	             description = COALESCE($5, description),
	             genre = COALESCE($6, genre),
	             poster_url = COALESCE($7, poster_url),
	             updated_at = now()
	           WHERE id = $1::uuid`
	if _, err := tx.Exec(ctx, q, id, p.Title, p.Director, p.Year, p.Description, p.Genre, p.PosterURL); err != nil {
		if isDuplicate(err) {
			return Movie{}, ErrDuplicate
		}
		return Movie{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Movie{}, err
	}
	return s.GetByID(ctx, id)
}

func (s *PostgresMovieStore) Delete(ctx context.Context, id, callerID string, admin bool) error {
	var createdBy string
	err := s.pool.QueryRow(ctx, `SELECT created_by FROM movies WHERE id = $1::uuid`, id).Scan(&createdBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return engagement.ErrNotFound
		}
		return err
	}
	if createdBy != callerID && !admin {
		return engagement.ErrForbidden
	}
	// comments, ratings, likes and reactions go via ON DELETE CASCADE
	_, err = s.pool.Exec(ctx, `DELETE FROM movies WHERE id = $1::uuid`, id)
	return err
}

func (s *PostgresMovieStore) ToggleLike(ctx context.Context, id, userID string) (bool, int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := movieExists(ctx, tx, id); err != nil {
		return false, 0, err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM movie_likes WHERE movie_id = $1::uuid AND user_id = $2`, id, userID)
	if err != nil {
		return false, 0, err
	}
	added := tag.RowsAffected() == 0
	if added {
		if _, err := tx.Exec(ctx, `INSERT INTO movie_likes (movie_id, user_id) VALUES ($1::uuid, $2)`, id, userID); err != nil {
			return false, 0, err
		}
	}

	var total int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM movie_likes WHERE movie_id = $1::uuid`, id).Scan(&total); err != nil {
		return false, 0, err
	}
	return added, total, tx.Commit(ctx)
}

func (s *PostgresMovieStore) Rate(ctx context.Context, id, userID string, value int) (engagement.RatingSummary, error) {
	if value < 1 || value > 5 {
		return engagement.RatingSummary{}, engagement.ErrInvalidInput
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return engagement.RatingSummary{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := movieExists(ctx, tx, id); err != nil {
		return engagement.RatingSummary{}, err
	}

	const upsert = `INSERT INTO ratings (movie_id, user_id, value)
	                VALUES ($1::uuid, $2, $3)
	                ON CONFLICT (movie_id, user_id) DO UPDATE SET
	                  value = EXCLUDED.value,
	                  updated_at = now()`
	if _, err := tx.Exec(ctx, upsert, id, userID, value); err != nil {
		return engagement.RatingSummary{}, err
	}

	var summary engagement.RatingSummary
	err = tx.QueryRow(ctx, `SELECT COALESCE(AVG(value), 0), COUNT(*) FROM ratings WHERE movie_id = $1::uuid`, id).
		Scan(&summary.AverageRating, &summary.TotalRatings)
	if err != nil {
		return engagement.RatingSummary{}, err
	}
	return summary, tx.Commit(ctx)
}

func (s *PostgresMovieStore) Comments(ctx context.Context, movieID string) ([]engagement.Comment, error) {
	if _, err := s.getMovieRow(ctx, movieID); err != nil {
		return nil, err
	}
	return s.loadComments(ctx, movieID)
}

func (s *PostgresMovieStore) AddComment(ctx context.Context, movieID, userID, body string, parentID *string) (engagement.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return engagement.Comment{}, engagement.ErrInvalidInput
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return engagement.Comment{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := movieExists(ctx, tx, movieID); err != nil {
		return engagement.Comment{}, err
	}
	if parentID != nil {
		var exists bool
		err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM comments WHERE id = $1::uuid AND movie_id = $2::uuid)`,
			*parentID, movieID).Scan(&exists)
		if err != nil {
			return engagement.Comment{}, err
		}
		if !exists {
			return engagement.Comment{}, engagement.ErrNotFound
		}
	}

	c := engagement.Comment{UserID: userID, ParentID: parentID, Body: body, Likes: []string{}, Dislikes: []string{}}
	const q = `INSERT INTO comments (movie_id, user_id, parent_id, body)
	           VALUES ($1::uuid, $2, $3, $4)
	           RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, q, movieID, userID, parentID, body).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return engagement.Comment{}, err
	}
	return c, tx.Commit(ctx)
}

func (s *PostgresMovieStore) EditComment(ctx context.Context, movieID, commentID, callerID string, admin bool, body string) error {
	body = strings.TrimSpace(body)
	if body == "" {
		return engagement.ErrInvalidInput
	}

	authorID, err := s.commentAuthor(ctx, movieID, commentID)
	if err != nil {
		return err
	}
	if authorID != callerID && !admin {
		return engagement.ErrForbidden
	}

	const q = `UPDATE comments SET body = $3, is_edited = TRUE, edited_at = now(), updated_at = now()
	           WHERE id = $1::uuid AND movie_id = $2::uuid`
	_, err = s.pool.Exec(ctx, q, commentID, movieID, body)
	return err
}

func (s *PostgresMovieStore) DeleteComment(ctx context.Context, movieID, commentID, callerID string, admin bool) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var authorID string
	err = tx.QueryRow(ctx,
		`SELECT user_id FROM comments WHERE id = $1::uuid AND movie_id = $2::uuid FOR UPDATE`,
		commentID, movieID).Scan(&authorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, engagement.ErrNotFound
		}
		return 0, err
	}
	if authorID != callerID && !admin {
		return 0, engagement.ErrForbidden
	}

	// Compute the cascade closure with the pure resolver over the flat
	// parent-pointer rows, then delete the whole set at once.
	rows, err := tx.Query(ctx, `SELECT id, parent_id FROM comments WHERE movie_id = $1::uuid`, movieID)
	if err != nil {
		return 0, err
	}
	flat := []engagement.Comment{}
	for rows.Next() {
		var c engagement.Comment
		if err := rows.Scan(&c.ID, &c.ParentID); err != nil {
			rows.Close()
			return 0, err
		}
		flat = append(flat, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	doomed := engagement.DescendantIDs(flat, commentID)
	ids := make([]string, 0, len(doomed))
	for id := range doomed {
		ids = append(ids, id)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM comments WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), tx.Commit(ctx)
}

func (s *PostgresMovieStore) ReactToComment(ctx context.Context, movieID, commentID, userID string, kind engagement.ReactionKind) (engagement.ReactionCounts, error) {
	if kind != engagement.ReactionLike && kind != engagement.ReactionDislike {
		return engagement.ReactionCounts{}, engagement.ErrInvalidInput
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return engagement.ReactionCounts{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := s.commentAuthorTx(ctx, tx, movieID, commentID); err != nil {
		return engagement.ReactionCounts{}, err
	}

	// One reaction per user: clear both kinds, then set the requested one.
	if _, err := tx.Exec(ctx,
		`DELETE FROM comment_reactions WHERE comment_id = $1::uuid AND user_id = $2`,
		commentID, userID); err != nil {
		return engagement.ReactionCounts{}, err
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO comment_reactions (comment_id, user_id, kind) VALUES ($1::uuid, $2, $3)`,
		commentID, userID, string(kind)); err != nil {
		return engagement.ReactionCounts{}, err
	}

	var counts engagement.ReactionCounts
	const q = `SELECT
	             COUNT(*) FILTER (WHERE kind = 'like'),
	             COUNT(*) FILTER (WHERE kind = 'dislike')
	           FROM comment_reactions WHERE comment_id = $1::uuid`
	if err := tx.QueryRow(ctx, q, commentID).Scan(&counts.Likes, &counts.Dislikes); err != nil {
		return engagement.ReactionCounts{}, err
	}
	return counts, tx.Commit(ctx)
}

func (s *PostgresMovieStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	const q = `SELECT
	             (SELECT COUNT(*) FROM movies),
	             (SELECT COUNT(*) FROM comments),
	             (SELECT COUNT(*) FROM ratings),
	             (SELECT COUNT(*) FROM movie_likes)`
	err := s.pool.QueryRow(ctx, q).Scan(&st.TotalMovies, &st.TotalComments, &st.TotalRatings, &st.TotalMovieLikes)
	return st, err
}

func (s *PostgresMovieStore) AllComments(ctx context.Context) ([]FlatComment, error) {
	const q = `SELECT c.id, c.user_id, c.parent_id, c.body, c.is_edited, c.edited_at,
	                  c.created_at, c.updated_at, m.id, m.title
	           FROM comments c JOIN movies m ON m.id = c.movie_id
	           ORDER BY c.created_at ASC, c.id ASC`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []FlatComment{}
	for rows.Next() {
		var fc FlatComment
		if err := rows.Scan(&fc.ID, &fc.UserID, &fc.ParentID, &fc.Body, &fc.IsEdited, &fc.EditedAt,
			&fc.CreatedAt, &fc.UpdatedAt, &fc.MovieID, &fc.MovieTitle); err != nil {
			return nil, err
		}
		fc.Likes = []string{}
		fc.Dislikes = []string{}
		out = append(out, fc)
	}
	return out, rows.Err()
}

// ── row helpers ────────────────────────────────────────────────────────────

func (s *PostgresMovieStore) getMovieRow(ctx context.Context, id string) (Movie, error) {
	const q = `SELECT id, title, director, year, description, genre, poster_url, created_by, created_at, updated_at
	           FROM movies WHERE id = $1::uuid`
	var m Movie
	err := s.pool.QueryRow(ctx, q, id).Scan(&m.ID, &m.Title, &m.Director, &m.Year, &m.Description,
		&m.Genre, &m.PosterURL, &m.CreatedBy, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Movie{}, engagement.ErrNotFound
		}
		return Movie{}, err
	}
	return m, nil
}

func (s *PostgresMovieStore) movieLikes(ctx context.Context, id string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT user_id FROM movie_likes WHERE movie_id = $1::uuid ORDER BY created_at ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	likes := []string{}
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return nil, err
		}
		likes = append(likes, uid)
	}
	return likes, rows.Err()
}

func (s *PostgresMovieStore) movieRatings(ctx context.Context, id string) ([]engagement.Rating, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT user_id, value FROM ratings WHERE movie_id = $1::uuid ORDER BY created_at ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ratings := []engagement.Rating{}
	for rows.Next() {
		var r engagement.Rating
		if err := rows.Scan(&r.UserID, &r.Value); err != nil {
			return nil, err
		}
		ratings = append(ratings, r)
	}
	return ratings, rows.Err()
}

// loadComments returns the flat, insertion-ordered comment list with
// reaction sets attached.
func (s *PostgresMovieStore) loadComments(ctx context.Context, movieID string) ([]engagement.Comment, error) {
	const q = `SELECT id, user_id, parent_id, body, is_edited, edited_at, created_at, updated_at
	           FROM comments WHERE movie_id = $1::uuid
	           ORDER BY created_at ASC, id ASC`
	rows, err := s.pool.Query(ctx, q, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []engagement.Comment{}
	index := map[string]int{}
	for rows.Next() {
		var c engagement.Comment
		if err := rows.Scan(&c.ID, &c.UserID, &c.ParentID, &c.Body, &c.IsEdited, &c.EditedAt,
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		c.Likes = []string{}
		c.Dislikes = []string{}
		index[c.ID] = len(comments)
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return comments, nil
	}

	const rq = `SELECT r.comment_id, r.user_id, r.kind
	            FROM comment_reactions r
	            JOIN comments c ON c.id = r.comment_id
	            WHERE c.movie_id = $1::uuid
	            ORDER BY r.created_at ASC`
	rrows, err := s.pool.Query(ctx, rq, movieID)
	if err != nil {
		return nil, err
	}
	defer rrows.Close()

	for rrows.Next() {
		var commentID, userID, kind string
		if err := rrows.Scan(&commentID, &userID, &kind); err != nil {
			return nil, err
		}
		i, ok := index[commentID]
		if !ok {
			continue
		}
		if kind == string(engagement.ReactionLike) {
			comments[i].Likes = append(comments[i].Likes, userID)
		} else {
			comments[i].Dislikes = append(comments[i].Dislikes, userID)
		}
	}
	return comments, rrows.Err()
}

func movieExists(ctx context.Context, tx pgx.Tx, id string) error {
	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM movies WHERE id = $1::uuid)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return engagement.ErrNotFound
	}
	return nil
}

func (s *PostgresMovieStore) commentAuthor(ctx context.Context, movieID, commentID string) (string, error) {
	var authorID string
	err := s.pool.QueryRow(ctx,
		`SELECT user_id FROM comments WHERE id = $1::uuid AND movie_id = $2::uuid`,
		commentID, movieID).Scan(&authorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", engagement.ErrNotFound
		}
		return "", err
	}
	return authorID, nil
}

func (s *PostgresMovieStore) commentAuthorTx(ctx context.Context, tx pgx.Tx, movieID, commentID string) (string, error) {
	var authorID string
	err := tx.QueryRow(ctx,
		`SELECT user_id FROM comments WHERE id = $1::uuid AND movie_id = $2::uuid`,
		commentID, movieID).Scan(&authorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", engagement.ErrNotFound
		}
		return "", err
	}
	return authorID, nil
}
