package repository

import (
	"context"
	"errors"
	"time"

	"github.com/inkstand-ai/inkstand/internal/domain"
	"github.com/inkstand-ai/inkstand/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

type NoteRepository struct {
	db dbtx
}

func NewNoteRepository(pool *pgxpool.Pool) *NoteRepository {
	return &NoteRepository{db: pool}
}

func NewNoteRepositoryWithTx(tx pgx.Tx) *NoteRepository {
	return &NoteRepository{db: tx}
}

func (r *NoteRepository) Create(ctx context.Context, n *domain.Note) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO notes (id, title, content, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		n.ID, n.Title, n.Content, n.CreatedAt, n.UpdatedAt,
	)
	return err
}

func (r *NoteRepository) GetByID(ctx context.Context, id string) (*domain.Note, error) {
	var n domain.Note
	err := r.db.QueryRow(ctx,
		`SELECT id, title, content, created_at, updated_at
		 FROM notes WHERE id = $1`,
		id,
	).Scan(&n.ID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoteNotFound
		}
		return nil, err
	}
	return &n, nil
}

func (r *NoteRepository) List(ctx context.Context) ([]*domain.Note, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, title, content, created_at, updated_at
		 FROM notes ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []*domain.Note
	for rows.Next() {
		var n domain.Note
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, &n)
	}
	return notes, rows.Err()
}

func (r *NoteRepository) Update(ctx context.Context, n *domain.Note) error {
	n.UpdatedAt = time.Now().UTC()
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE notes SET title = $1, content = $2, updated_at = $3 WHERE id = $4`,
		n.Title, n.Content, n.UpdatedAt, n.ID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrNoteNotFound
	}
	return nil
}

func (r *NoteRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM notes WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrNoteNotFound
	}
	return nil
}

func (r *NoteRepository) UpdateEmbedding(ctx context.Context, id string, embedding []float32) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE notes SET embedding = $1, updated_at = $2 WHERE id = $3`,
		pgvector.NewVector(embedding), time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrNoteNotFound
	}
	return nil
}

// SearchByEmbedding runs a cosine-distance search over note embeddings.
func (r *NoteRepository) SearchByEmbedding(ctx context.Context, embedding []float32, limit int) ([]*service.NoteSearchResult, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, title, content, 1.0 / (1.0 + (embedding <=> $1)) AS score
		 FROM notes
		 WHERE embedding IS NOT NULL
		 ORDER BY score DESC
		 LIMIT $2`,
		pgvector.NewVector(embedding), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]*service.NoteSearchResult, 0)
	for rows.Next() {
		var res service.NoteSearchResult
		if err := rows.Scan(&res.NoteID, &res.Title, &res.Content, &res.Score); err != nil {
			return nil, err
		}
		results = append(results, &res)
	}
	return results, rows.Err()
}
