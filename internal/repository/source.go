package repository

import (
	"context"
	"errors"
	"time"

	"github.com/inkstand-ai/inkstand/internal/domain"
	"github.com/inkstand-ai/inkstand/internal/pagination"
	"github.com/inkstand-ai/inkstand/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SourceRepository struct {
	db dbtx
}

func NewSourceRepository(pool *pgxpool.Pool) *SourceRepository {
	return &SourceRepository{db: pool}
}

func NewSourceRepositoryWithTx(tx pgx.Tx) *SourceRepository {
	return &SourceRepository{db: tx}
}

func (r *SourceRepository) Create(ctx context.Context, s *domain.Source) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO sources (id, title, full_text, file_path, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.Title, s.FullText, nullableString(s.FilePath), s.CreatedAt, s.UpdatedAt,
	)
	return err
}

func (r *SourceRepository) GetByID(ctx context.Context, id string) (*domain.Source, error) {
	var s domain.Source
	var filePath *string
	err := r.db.QueryRow(ctx,
		`SELECT id, title, full_text, file_path, created_at, updated_at
		 FROM sources WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.Title, &s.FullText, &filePath, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSourceNotFound
		}
		return nil, err
	}
	if filePath != nil {
		s.FilePath = *filePath
	}
	return &s, nil
}

func (r *SourceRepository) List(ctx context.Context) ([]*domain.Source, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, title, full_text, file_path, created_at, updated_at
		 FROM sources ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSourceRows(rows)
}

func (r *SourceRepository) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*service.SourcePageResult, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT id, title, full_text, file_path, created_at, updated_at
			 FROM sources
			 WHERE (updated_at, id) < ($1, $2)
			 ORDER BY updated_at DESC, id DESC
			 LIMIT $3`,
			cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT id, title, full_text, file_path, created_at, updated_at
			 FROM sources
			 ORDER BY updated_at DESC, id DESC
			 LIMIT $1`,
			limit+1,
		)
	}

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanSourceRows(rows)
	if err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		last := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(last.ID, last.UpdatedAt)
	}

	return &service.SourcePageResult{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

func (r *SourceRepository) Update(ctx context.Context, s *domain.Source) error {
	s.UpdatedAt = time.Now().UTC()
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE sources SET title = $1, full_text = $2, file_path = $3, updated_at = $4
		 WHERE id = $5`,
		s.Title, s.FullText, nullableString(s.FilePath), s.UpdatedAt, s.ID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrSourceNotFound
	}
	return nil
}

func (r *SourceRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM sources WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrSourceNotFound
	}
	return nil
}

func scanSourceRows(rows pgx.Rows) ([]*domain.Source, error) {
	var results []*domain.Source
	for rows.Next() {
		var s domain.Source
		var filePath *string
		if err := rows.Scan(&s.ID, &s.Title, &s.FullText, &filePath, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		if filePath != nil {
			s.FilePath = *filePath
		}
		results = append(results, &s)
	}
	return results, rows.Err()
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
