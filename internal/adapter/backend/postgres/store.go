// Package postgres stores catalog items directly in a Postgres table.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mmcdole/marquee/internal/domain"
)

const selectColumns = `id::text, title, coalesce(description, ''), coalesce(embed_url, ''),
	coalesce(cover_image_url, ''), coalesce(genre, ''), coalesce(release_year, 0),
	coalesce(duration, ''), coalesce(rating, 0)::float8, views, likes, created_at, updated_at`

// Store implements domain.ItemRepository over a pgx pool
type Store struct {
	pool   *pgxpool.Pool
	table  string // sanitized identifier
	logger *slog.Logger
}

// Open connects to dsn and verifies the connection
func Open(ctx context.Context, dsn, table string, logger *slog.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create pool: %w", domain.ErrStore, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: failed to reach database: %w", domain.ErrStore, err)
	}
	return NewStore(pool, table, logger), nil
}

// NewStore wraps an existing pool. table may be schema-qualified.
func NewStore(pool *pgxpool.Pool, table string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if table == "" {
		table = "movies"
	}
	return &Store{
		pool:   pool,
		table:  pgx.Identifier(strings.Split(table, ".")).Sanitize(),
		logger: logger,
	}
}

// Close releases the pool
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// EnsureSchema creates the items table when it does not exist yet
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS `+s.table+` (
		id              uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		title           text NOT NULL CHECK (length(trim(title)) > 0),
		description     text,
		embed_url       text,
		cover_image_url text,
		genre           text,
		release_year    integer,
		duration        text,
		rating          numeric(3,1) CHECK (rating >= 0 AND rating <= 10),
		views           bigint,
		likes           bigint,
		created_at      timestamptz NOT NULL DEFAULT now(),
		updated_at      timestamptz NOT NULL DEFAULT now()
	)`)
	if err != nil {
		return classify(err)
	}
	return nil
}

func (s *Store) ListItems(ctx context.Context) ([]domain.Item, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+selectColumns+` FROM `+s.table+` ORDER BY created_at DESC`)
	if err != nil {
		s.logger.Error("failed to list items", "error", err)
		return nil, classify(err)
	}
	items, err := pgx.CollectRows(rows, func(r pgx.CollectableRow) (domain.Item, error) {
		return scanItem(r)
	})
	if err != nil {
		return nil, classify(err)
	}
	return items, nil
}

func (s *Store) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	row := s.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM `+s.table+` WHERE id = $1`, uid)
	item, err := scanItem(row)
	if err != nil {
		return nil, classify(err)
	}
	return &item, nil
}

func (s *Store) InsertItem(ctx context.Context, draft domain.ItemDraft) (*domain.Item, error) {
	row := s.pool.QueryRow(ctx, `INSERT INTO `+s.table+`
		(title, description, embed_url, cover_image_url, genre, release_year, duration, rating, views, likes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+selectColumns,
		draft.Title, draft.Description, draft.EmbedURL, draft.CoverImageURL, draft.Genre,
		draft.ReleaseYear, draft.Duration, draft.Rating, draft.Views, draft.Likes,
	)
	item, err := scanItem(row)
	if err != nil {
		s.logger.Error("failed to insert item", "error", err, "title", draft.Title)
		return nil, classify(err)
	}
	return &item, nil
}

func (s *Store) UpdateItem(ctx context.Context, id string, patch domain.ItemPatch) (*domain.Item, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	set, args := assignments(patch)
	args = append(args, uid)
	sql := `UPDATE ` + s.table + ` SET ` + strings.Join(set, ", ") +
		fmt.Sprintf(` WHERE id = $%d RETURNING `, len(args)) + selectColumns

	item, err := scanItem(s.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.logger.Error("failed to update item", "error", err, "id", id)
		}
		return nil, classify(err)
	}
	return &item, nil
}

func (s *Store) RemoveItem(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return domain.ErrNotFound
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM `+s.table+` WHERE id = $1`, uid)
	if err != nil {
		s.logger.Error("failed to delete item", "error", err, "id", id)
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// assignments builds the SET list for a patch. updated_at is always set,
// falling back to the database clock.
func assignments(p domain.ItemPatch) ([]string, []any) {
	var set []string
	var args []any
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.EmbedURL != nil {
		add("embed_url", *p.EmbedURL)
	}
	if p.CoverImageURL != nil {
		add("cover_image_url", *p.CoverImageURL)
	}
	if p.Genre != nil {
		add("genre", *p.Genre)
	}
	if p.ReleaseYear != nil {
		add("release_year", *p.ReleaseYear)
	}
	if p.Duration != nil {
		add("duration", *p.Duration)
	}
	if p.Rating != nil {
		add("rating", *p.Rating)
	}
	if p.Views != nil {
		add("views", *p.Views)
	}
	if p.Likes != nil {
		add("likes", *p.Likes)
	}
	if p.UpdatedAt.IsZero() {
		set = append(set, "updated_at = now()")
	} else {
		add("updated_at", p.UpdatedAt)
	}
	return set, args
}

func scanItem(row pgx.Row) (domain.Item, error) {
	var it domain.Item
	err := row.Scan(
		&it.ID, &it.Title, &it.Description, &it.EmbedURL, &it.CoverImageURL, &it.Genre,
		&it.ReleaseYear, &it.Duration, &it.Rating, &it.Views, &it.Likes,
		&it.CreatedAt, &it.UpdatedAt,
	)
	return it, err
}

// classify maps pgx failures onto the domain error classes. Integrity and
// data errors (SQLSTATE classes 23 and 22) are rejections of the submitted
// fields.
func classify(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "23"), strings.HasPrefix(pgErr.Code, "22"):
			return fmt.Errorf("%w: %s", domain.ErrValidation, pgErr.Message)
		}
	}
	return fmt.Errorf("%w: %w", domain.ErrStore, err)
}
