package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/mytv-catalog/internal/domain"
)

const (
	// DefaultListLimit applies when List is called with a non-positive limit.
	DefaultListLimit = 20
	// MaxListLimit caps a single List call.
	MaxListLimit = 100
)

// PassesRepository stores the history of aggregation passes.
type PassesRepository struct {
	pool *pgxpool.Pool
}

const passColumns = `
    id::text,
    started_at,
    finished_at,
    genre_count,
    total,
    sections
`

// RecordPass inserts a completed pass. Recording the same ID twice is a no-op.
func (r *PassesRepository) RecordPass(ctx context.Context, pass domain.Pass) error {
	sections, err := marshalSections(pass.Sections)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
        INSERT INTO aggregation_passes (id, started_at, finished_at, genre_count, total, sections)
        VALUES ($1::uuid, $2, $3, $4, $5, $6)
        ON CONFLICT (id) DO NOTHING
    `, pass.ID, pass.StartedAt, pass.FinishedAt, pass.GenreCount, pass.Total, sections)
	if err != nil {
		return fmt.Errorf("insert pass %s: %w", pass.ID, err)
	}
	return nil
}

// GetByID loads one pass.
func (r *PassesRepository) GetByID(ctx context.Context, id string) (domain.Pass, error) {
	query := fmt.Sprintf(`SELECT %s FROM aggregation_passes WHERE id::text = $1`, passColumns)
	pass, err := scanPass(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Pass{}, ErrNotFound
		}
		return domain.Pass{}, err
	}
	return pass, nil
}

// List returns the most recent passes first.
func (r *PassesRepository) List(ctx context.Context, limit int) ([]domain.Pass, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	query := fmt.Sprintf(`SELECT %s FROM aggregation_passes ORDER BY started_at DESC, id DESC LIMIT $1`, passColumns)
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	passes := make([]domain.Pass, 0, limit)
	for rows.Next() {
		pass, err := scanPass(rows)
		if err != nil {
			return nil, err
		}
		passes = append(passes, pass)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return passes, nil
}

func scanPass(row pgx.Row) (domain.Pass, error) {
	var (
		pass     domain.Pass
		sections []byte
	)
	if err := row.Scan(&pass.ID, &pass.StartedAt, &pass.FinishedAt, &pass.GenreCount, &pass.Total, &sections); err != nil {
		return domain.Pass{}, err
	}
	pass.StartedAt = pass.StartedAt.UTC()
	pass.FinishedAt = pass.FinishedAt.UTC()
	pass.Sections = []domain.SectionReport{}
	if len(sections) > 0 {
		if err := json.Unmarshal(sections, &pass.Sections); err != nil {
			return domain.Pass{}, fmt.Errorf("decode sections of pass %s: %w", pass.ID, err)
		}
	}
	return pass, nil
}

func marshalSections(sections []domain.SectionReport) ([]byte, error) {
	if sections == nil {
		sections = []domain.SectionReport{}
	}
	payload, err := json.Marshal(sections)
	if err != nil {
		return nil, fmt.Errorf("encode sections: %w", err)
	}
	return payload, nil
}
