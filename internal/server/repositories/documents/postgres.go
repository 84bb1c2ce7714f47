// Package documents stores partial-update JSON documents in PostgreSQL.
package documents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/trailkeeper/internal/common"
	"github.com/dmitrijs2005/trailkeeper/internal/dbx"
	"github.com/dmitrijs2005/trailkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Merge(ctx context.Context, doc *models.Document) error {
	fields, err := json.Marshal(doc.Fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}

	query :=
		`INSERT INTO documents (path, parent, doc_id, owner_id, fields, updated_at)
		 VALUES ($1, $2, $3, $4, $5::jsonb, now())
		 ON CONFLICT (path) DO UPDATE
		 SET fields = documents.fields || EXCLUDED.fields, updated_at = now()
		 WHERE documents.owner_id = EXCLUDED.owner_id
		 `

	res, err := r.db.ExecContext(ctx, query, doc.Path, doc.Parent, doc.DocID, doc.OwnerID, string(fields))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", common.ErrOwnershipConflict, doc.Path)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, parent string) ([]models.Document, error) {
	query :=
		`SELECT path, parent, doc_id, owner_id, fields, updated_at FROM documents
		 WHERE parent = $1
		 ORDER BY path
		 `
	return r.query(ctx, query, parent)
}

// ListEmbedded returns every document of ownerID that carries an
// embedding_vector field.
func (r *PostgresRepository) ListEmbedded(ctx context.Context, ownerID string) ([]models.Document, error) {
	query :=
		`SELECT path, parent, doc_id, owner_id, fields, updated_at FROM documents
		 WHERE owner_id = $1 AND (fields -> 'embedding_vector') IS NOT NULL
		 ORDER BY path
		 `
	return r.query(ctx, query, ownerID)
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]models.Document, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Document
	for rows.Next() {
		var (
			d   models.Document
			raw []byte
		)
		if err := rows.Scan(&d.Path, &d.Parent, &d.DocID, &d.OwnerID, &raw, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if err := decodeFields(raw, &d); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func decodeFields(raw []byte, d *models.Document) error {
	d.Fields = map[string]any{}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, &d.Fields); err != nil {
		return fmt.Errorf("decode fields of %s: %w", d.Path, err)
	}
	return nil
}

var _ Repository = (*PostgresRepository)(nil)
