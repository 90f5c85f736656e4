package repositories

import (
	"context"
	"database/sql"
	"github.com/jmoiron/sqlx"
	"github.com/myrjola/reelguess/internal/catalog"
	"github.com/myrjola/reelguess/internal/errors"
	"github.com/myrjola/reelguess/internal/models"
	"github.com/myrjola/reelguess/internal/sqlite"
	"log/slog"
	"strconv"
	"strings"
)

// MovieRepository is the catalog.Store backed by the SQLite catalog database.
type MovieRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewMovieRepository(db *sqlite.Database, logger *slog.Logger) *MovieRepository {
	return &MovieRepository{
		db:     db,
		logger: logger.With("source", "MovieRepository"),
	}
}

type candidateRow struct {
	models.Item
	GenreIDs string `db:"genre_ids"`
}

// ListCandidates returns the movies matching f with their genre identifiers pre-joined.
func (r *MovieRepository) ListCandidates(ctx context.Context, f catalog.Filter) ([]models.Item, error) {
	var (
		rows []candidateRow
		err  error
	)

	stmt := `SELECT m.id,
       m.title,
       m.release_date,
       m.runtime,
       m.budget,
       m.revenue,
       m.vote_average,
       m.vote_count,
       m.popularity,
       m.original_language,
       m.adult,
       COALESCE((SELECT GROUP_CONCAT(mg.genre_id) FROM movie_genres mg WHERE mg.movie_id = m.id), '') AS genre_ids
FROM movies m
WHERE m.popularity >= ?`
	args := []any{f.MinPopularity}
	if len(f.Languages) > 0 {
		stmt += ` AND m.original_language IN (?)`
		args = append(args, f.Languages)
	}
	stmt += ` ORDER BY m.popularity DESC, m.id LIMIT ?`
	limit := -1
	if f.Limit > 0 {
		limit = f.Limit
	}
	args = append(args, limit)

	if stmt, args, err = sqlx.In(stmt, args...); err != nil {
		return nil, errors.Wrap(err, "expand languages")
	}
	if err = r.db.ReadOnly.SelectContext(ctx, &rows, r.db.ReadOnly.Rebind(stmt), args...); err != nil {
		return nil, errors.Wrap(err, "select candidates")
	}

	items := make([]models.Item, len(rows))
	for i, row := range rows {
		item := row.Item
		item.Year = models.YearFromDate(item.ReleaseDate)
		if item.GenreIDs, err = parseIDs(row.GenreIDs); err != nil {
			return nil, errors.Wrap(err, "parse genre ids", slog.Int64("movie_id", item.ID))
		}
		items[i] = item
	}
	return items, nil
}

func parseIDs(csv string) ([]int64, error) {
	if csv == "" {
		return nil, nil
	}
	parts := strings.Split(csv, ",")
	ids := make([]int64, len(parts))
	for i, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, errors.Wrap(err, "parse id", slog.String("id", p))
		}
		ids[i] = id
	}
	return ids, nil
}

// EnrichedDetail loads the relations of movie id. An unknown id yields an empty record.
func (r *MovieRepository) EnrichedDetail(ctx context.Context, id int64) (models.Detail, error) {
	var (
		d   models.Detail
		err error
		row struct {
			Runtime        int            `db:"runtime"`
			Budget         int64          `db:"budget"`
			Revenue        int64          `db:"revenue"`
			CollectionID   sql.NullInt64  `db:"collection_id"`
			CollectionName sql.NullString `db:"collection_name"`
		}
	)
	db := r.db.ReadOnly

	stmt := `SELECT m.runtime, m.budget, m.revenue, c.id AS collection_id, c.name AS collection_name
FROM movies m
         LEFT JOIN collections c ON c.id = m.collection_id
WHERE m.id = ?`
	if err = db.GetContext(ctx, &row, stmt, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Detail{}, nil
		}
		return models.Detail{}, errors.Wrap(err, "get movie", slog.Int64("movie_id", id))
	}
	d.Found = true
	d.Runtime = row.Runtime
	d.Budget = row.Budget
	d.Revenue = row.Revenue
	if row.CollectionID.Valid {
		d.Collection = &models.Collection{ID: row.CollectionID.Int64, Name: row.CollectionName.String}
	}

	stmt = `SELECT g.id, g.name FROM movie_genres mg JOIN genres g ON g.id = mg.genre_id WHERE mg.movie_id = ? ORDER BY g.id`
	if err = db.SelectContext(ctx, &d.Genres, stmt, id); err != nil {
		return models.Detail{}, errors.Wrap(err, "select genres", slog.Int64("movie_id", id))
	}

	stmt = `SELECT LOWER(k.name)
FROM movie_keywords mk
         JOIN keywords k ON k.id = mk.keyword_id
WHERE mk.movie_id = ?
ORDER BY mk.rowid`
	if err = db.SelectContext(ctx, &d.Keywords, stmt, id); err != nil {
		return models.Detail{}, errors.Wrap(err, "select keywords", slog.Int64("movie_id", id))
	}

	stmt = `SELECT p.name, mc.character, mc.cast_order
FROM movie_cast mc
         JOIN people p ON p.id = mc.person_id
WHERE mc.movie_id = ?
ORDER BY mc.cast_order`
	if err = db.SelectContext(ctx, &d.Cast, stmt, id); err != nil {
		return models.Detail{}, errors.Wrap(err, "select cast", slog.Int64("movie_id", id))
	}

	stmt = `SELECT p.name, mc.job, mc.department
FROM movie_crew mc
         JOIN people p ON p.id = mc.person_id
WHERE mc.movie_id = ?
ORDER BY mc.rowid`
	if err = db.SelectContext(ctx, &d.Crew, stmt, id); err != nil {
		return models.Detail{}, errors.Wrap(err, "select crew", slog.Int64("movie_id", id))
	}

	stmt = `SELECT country_code FROM movie_countries WHERE movie_id = ? ORDER BY rowid`
	if err = db.SelectContext(ctx, &d.Countries, stmt, id); err != nil {
		return models.Detail{}, errors.Wrap(err, "select countries", slog.Int64("movie_id", id))
	}

	return d, nil
}

// GenreNames returns the genre table.
func (r *MovieRepository) GenreNames(ctx context.Context) (map[int64]string, error) {
	var genres []models.Genre
	if err := r.db.ReadOnly.SelectContext(ctx, &genres, `SELECT id, name FROM genres`); err != nil {
		return nil, errors.Wrap(err, "select genres")
	}
	names := make(map[int64]string, len(genres))
	for _, g := range genres {
		names[g.ID] = g.Name
	}
	return names, nil
}

// CountMovies returns the number of movies in the catalog.
func (r *MovieRepository) CountMovies(ctx context.Context) (int, error) {
	var count int
	if err := r.db.ReadOnly.GetContext(ctx, &count, `SELECT COUNT(*) FROM movies`); err != nil {
		return 0, errors.Wrap(err, "count movies")
	}
	return count, nil
}

// Import upserts movies with their relations in a single transaction. The relations of an imported movie replace
// the stored ones.
func (r *MovieRepository) Import(ctx context.Context, movies []models.Movie) (err error) {
	var tx *sqlx.Tx
	if tx, err = r.db.ReadWrite.BeginTxx(ctx, nil); err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				err = errors.Join(err, errors.Wrap(rollbackErr, "rollback"))
			}
		}
	}()

	for _, m := range movies {
		if err = importMovie(ctx, tx, m); err != nil {
			return errors.Wrap(err, "import movie", slog.Int64("movie_id", m.ID), slog.String("title", m.Title))
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit")
	}
	r.logger.LogAttrs(ctx, slog.LevelInfo, "movies imported", slog.Int("count", len(movies)))
	return nil
}

func importMovie(ctx context.Context, tx *sqlx.Tx, m models.Movie) error {
	var collectionID *int64
	if m.Collection != nil {
		stmt := `INSERT INTO collections (id, name) VALUES (?, ?) ON CONFLICT (id) DO UPDATE SET name = excluded.name`
		if _, err := tx.ExecContext(ctx, stmt, m.Collection.ID, m.Collection.Name); err != nil {
			return errors.Wrap(err, "upsert collection")
		}
		collectionID = &m.Collection.ID
	}

	stmt := `INSERT INTO movies (id, title, release_date, runtime, budget, revenue, popularity, vote_average, vote_count,
                    original_language, adult, collection_id)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET title             = excluded.title,
                               release_date      = excluded.release_date,
                               runtime           = excluded.runtime,
                               budget            = excluded.budget,
                               revenue           = excluded.revenue,
                               popularity        = excluded.popularity,
                               vote_average      = excluded.vote_average,
                               vote_count        = excluded.vote_count,
                               original_language = excluded.original_language,
                               adult             = excluded.adult,
                               collection_id     = excluded.collection_id`
	if _, err := tx.ExecContext(ctx, stmt, m.ID, m.Title, m.ReleaseDate, m.Runtime, m.Budget, m.Revenue,
		m.Popularity, m.Rating, m.VoteCount, m.Language, m.Adult, collectionID); err != nil {
		return errors.Wrap(err, "upsert movie")
	}

	for _, table := range []string{"movie_genres", "movie_keywords", "movie_cast", "movie_crew", "movie_countries"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE movie_id = ?`, m.ID); err != nil {
			return errors.Wrap(err, "clear relation", slog.String("table", table))
		}
	}

	for _, g := range m.Genres {
		stmt = `INSERT INTO genres (id, name) VALUES (?, ?) ON CONFLICT (id) DO UPDATE SET name = excluded.name`
		if _, err := tx.ExecContext(ctx, stmt, g.ID, g.Name); err != nil {
			return errors.Wrap(err, "upsert genre")
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO movie_genres (movie_id, genre_id) VALUES (?, ?)`,
			m.ID, g.ID); err != nil {
			return errors.Wrap(err, "link genre")
		}
	}

	for _, k := range m.Keywords {
		id, err := upsertName(ctx, tx, "keywords", k)
		if err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, `INSERT OR IGNORE INTO movie_keywords (movie_id, keyword_id) VALUES (?, ?)`,
			m.ID, id); err != nil {
			return errors.Wrap(err, "link keyword")
		}
	}

	for _, c := range m.Cast {
		id, err := upsertName(ctx, tx, "people", c.Name)
		if err != nil {
			return err
		}
		stmt = `INSERT OR IGNORE INTO movie_cast (movie_id, person_id, character, cast_order) VALUES (?, ?, ?, ?)`
		if _, err = tx.ExecContext(ctx, stmt, m.ID, id, c.Character, c.Order); err != nil {
			return errors.Wrap(err, "link cast member")
		}
	}

	for _, c := range m.Crew {
		id, err := upsertName(ctx, tx, "people", c.Name)
		if err != nil {
			return err
		}
		stmt = `INSERT OR IGNORE INTO movie_crew (movie_id, person_id, job, department) VALUES (?, ?, ?, ?)`
		if _, err = tx.ExecContext(ctx, stmt, m.ID, id, c.Job, c.Department); err != nil {
			return errors.Wrap(err, "link crew member")
		}
	}

	for _, country := range m.Countries {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO movie_countries (movie_id, country_code) VALUES (?, ?)`, m.ID, country); err != nil {
			return errors.Wrap(err, "link country")
		}
	}
	return nil
}

// upsertName returns the id of name in a table with a unique name column, inserting it when missing.
func upsertName(ctx context.Context, tx *sqlx.Tx, table string, name string) (int64, error) {
	var id int64
	stmt := `INSERT INTO ` + table + ` (name) VALUES (?) ON CONFLICT (name) DO UPDATE SET name = excluded.name RETURNING id`
	if err := tx.GetContext(ctx, &id, stmt, name); err != nil {
		return 0, errors.Wrap(err, "upsert name", slog.String("table", table), slog.String("name", name))
	}
	return id, nil
}
