package wheelrepo

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/astrachart/astrachart/internal/domain/chart"
	"github.com/astrachart/astrachart/internal/domain/layout"
)

// PostgresRepository stores wheel definitions as jsonb documents keyed by
// slug. Definitions validate on read so a hand-edited row cannot reach the
// assembler malformed.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get fetches one wheel by slug.
func (r *PostgresRepository) Get(ctx context.Context, slug string) (layout.Definition, bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT definition
		FROM wheels
		WHERE slug = $1
		LIMIT 1
	`, slug)
	if err != nil {
		return layout.Definition{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return layout.Definition{}, false, rows.Err()
	}
	def, err := scanDefinition(rows)
	if err != nil {
		return layout.Definition{}, false, err
	}
	return def, true, rows.Err()
}

// List returns every stored wheel, ordered by slug.
func (r *PostgresRepository) List(ctx context.Context) ([]layout.Definition, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT definition
		FROM wheels
		ORDER BY slug
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []layout.Definition
	for rows.Next() {
		def, err := scanDefinition(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, def)
	}
	return out, rows.Err()
}

// Upsert stores a wheel definition under its slug.
func (r *PostgresRepository) Upsert(ctx context.Context, def layout.Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(def)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO wheels (slug, name, definition)
		VALUES ($1, $2, $3)
		ON CONFLICT (slug) DO UPDATE SET name = $2, definition = $3
	`, def.Slug, def.Name, payload)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDefinition(row rowScanner) (layout.Definition, error) {
	var payload []byte
	if err := row.Scan(&payload); err != nil {
		return layout.Definition{}, err
	}
	return layout.ParseDefinition(payload)
}

var _ chart.WheelRepository = (*PostgresRepository)(nil)
