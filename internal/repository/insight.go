package repository

import (
	"context"
	"errors"

	"github.com/inkstand-ai/inkstand/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

type InsightRepository struct {
	db dbtx
}

func NewInsightRepository(pool *pgxpool.Pool) *InsightRepository {
	return &InsightRepository{db: pool}
}

func NewInsightRepositoryWithTx(tx pgx.Tx) *InsightRepository {
	return &InsightRepository{db: tx}
}

func (r *InsightRepository) Create(ctx context.Context, i *domain.SourceInsight) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO source_insights (id, source_id, insight_type, content, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		i.ID, i.SourceID, i.InsightType, i.Content, i.CreatedAt,
	)
	return err
}

func (r *InsightRepository) GetByID(ctx context.Context, id string) (*domain.SourceInsight, error) {
	var i domain.SourceInsight
	err := r.db.QueryRow(ctx,
		`SELECT id, source_id, insight_type, content, created_at
		 FROM source_insights WHERE id = $1`,
		id,
	).Scan(&i.ID, &i.SourceID, &i.InsightType, &i.Content, &i.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInsightNotFound
		}
		return nil, err
	}
	return &i, nil
}

func (r *InsightRepository) ListBySource(ctx context.Context, sourceID string) ([]*domain.SourceInsight, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, source_id, insight_type, content, created_at
		 FROM source_insights WHERE source_id = $1 ORDER BY created_at DESC`,
		sourceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var insights []*domain.SourceInsight
	for rows.Next() {
		var i domain.SourceInsight
		if err := rows.Scan(&i.ID, &i.SourceID, &i.InsightType, &i.Content, &i.CreatedAt); err != nil {
			return nil, err
		}
		insights = append(insights, &i)
	}
	return insights, rows.Err()
}

func (r *InsightRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM source_insights WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrInsightNotFound
	}
	return nil
}

func (r *InsightRepository) UpdateEmbedding(ctx context.Context, id string, embedding []float32) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE source_insights SET embedding = $1 WHERE id = $2`,
		pgvector.NewVector(embedding), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrInsightNotFound
	}
	return nil
}

