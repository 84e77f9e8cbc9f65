package repository

import (
	"context"
	"time"

	"github.com/inkstand-ai/inkstand/internal/domain"
	"github.com/inkstand-ai/inkstand/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// SourceChunkRepository handles persistence of chunked source embeddings.
type SourceChunkRepository struct {
	db dbtx
}

func NewSourceChunkRepository(pool *pgxpool.Pool) *SourceChunkRepository {
	return &SourceChunkRepository{db: pool}
}

func NewSourceChunkRepositoryWithTx(tx dbtx) *SourceChunkRepository {
	return &SourceChunkRepository{db: tx}
}

// DeleteBySource removes all chunks of a source so a re-embed starts clean.
func (r *SourceChunkRepository) DeleteBySource(ctx context.Context, sourceID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM source_chunks WHERE source_id = $1`, sourceID)
	return err
}

func (r *SourceChunkRepository) InsertChunks(ctx context.Context, chunks []domain.SourceChunk) error {
	for _, c := range chunks {
		createdAt := c.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		_, err := r.db.Exec(ctx,
			`INSERT INTO source_chunks (id, source_id, chunk_index, content, embedding, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			c.ID, c.SourceID, c.ChunkIndex, c.Content, pgvector.NewVector(c.Embedding), createdAt,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *SourceChunkRepository) ListBySource(ctx context.Context, sourceID string) ([]*domain.SourceChunk, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, source_id, chunk_index, content, created_at
		 FROM source_chunks WHERE source_id = $1 ORDER BY chunk_index ASC`,
		sourceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*domain.SourceChunk
	for rows.Next() {
		var c domain.SourceChunk
		if err := rows.Scan(&c.ID, &c.SourceID, &c.ChunkIndex, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		chunks = append(chunks, &c)
	}
	return chunks, rows.Err()
}

func (r *SourceChunkRepository) CountBySource(ctx context.Context, sourceID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM source_chunks WHERE source_id = $1`,
		sourceID,
	).Scan(&count)
	return count, err
}

// SearchByEmbedding runs a cosine-distance search over source chunks and
// returns the closest matches with their source titles.
func (r *SourceChunkRepository) SearchByEmbedding(ctx context.Context, embedding []float32, limit int) ([]*service.ChunkSearchResult, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(ctx,
		`SELECT c.id, c.source_id, s.title, c.chunk_index, c.content,
		        1.0 / (1.0 + (c.embedding <=> $1)) AS score
		 FROM source_chunks c
		 JOIN sources s ON s.id = c.source_id
		 WHERE c.embedding IS NOT NULL
		 ORDER BY score DESC
		 LIMIT $2`,
		pgvector.NewVector(embedding), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]*service.ChunkSearchResult, 0)
	for rows.Next() {
		var res service.ChunkSearchResult
		if err := rows.Scan(&res.ChunkID, &res.SourceID, &res.SourceTitle, &res.ChunkIndex, &res.Content, &res.Score); err != nil {
			return nil, err
		}
		results = append(results, &res)
	}
	return results, rows.Err()
}
