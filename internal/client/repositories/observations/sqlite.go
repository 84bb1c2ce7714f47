package observations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/trailkeeper/internal/client/models"
	"github.com/dmitrijs2005/trailkeeper/internal/common"
	"github.com/dmitrijs2005/trailkeeper/internal/dbx"
)

const columns = `o.id, o.hike_id, o.text, o.time, o.comments, o.location, o.picture,
	o.created_at, o.updated_at, o.synced, o.deleted, o.deleted_at`

const selectFrom = `SELECT ` + columns + ` FROM observations o `

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Upsert inserts o or overwrites the row with the same id. A zero id is
// assigned by the database.
func (r *SQLiteRepository) Upsert(ctx context.Context, o *models.Observation) error {
	if o.Text == "" {
		return fmt.Errorf("observation text: %w", common.ErrInvalidArgument)
	}

	args := []any{
		o.HikeID, o.Text, o.Time.UnixMilli(), o.Comments, o.Location, o.Picture,
		o.CreatedAt, o.UpdatedAt, o.Synced, o.Deleted, o.DeletedAt,
	}

	if o.ID == 0 {
		res, err := r.db.ExecContext(ctx, `INSERT INTO observations
			(hike_id, text, time, comments, location, picture, created_at, updated_at, synced, deleted, deleted_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
		if err != nil {
			return fmt.Errorf("failed to insert observation: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read observation id: %w", err)
		}
		o.ID = id
		return nil
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO observations
		(id, hike_id, text, time, comments, location, picture, created_at, updated_at, synced, deleted, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			hike_id = excluded.hike_id,
			text = excluded.text,
			time = excluded.time,
			comments = excluded.comments,
			location = excluded.location,
			picture = excluded.picture,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			synced = excluded.synced,
			deleted = excluded.deleted,
			deleted_at = excluded.deleted_at`, append([]any{o.ID}, args...)...)
	if err != nil {
		return fmt.Errorf("failed to upsert observation %d: %w", o.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Observation, error) {
	o, err := scan(r.db.QueryRowContext(ctx, selectFrom+`WHERE o.id = ? AND o.deleted = 0`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("observation %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get observation %d: %w", id, err)
	}
	return o, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Observation, error) {
	return r.list(ctx, `WHERE o.deleted = 0 ORDER BY o.time, o.id`)
}

func (r *SQLiteRepository) GetAllIncludingDeleted(ctx context.Context) ([]models.Observation, error) {
	return r.list(ctx, `ORDER BY o.id`)
}

func (r *SQLiteRepository) GetByHike(ctx context.Context, hikeID int64) ([]models.Observation, error) {
	return r.list(ctx, `WHERE o.deleted = 0 AND o.hike_id = ? ORDER BY o.time, o.id`, hikeID)
}

func (r *SQLiteRepository) GetByOwner(ctx context.Context, userID int64) ([]models.Observation, error) {
	return r.list(ctx, `JOIN hikes h ON h.id = o.hike_id
		WHERE o.deleted = 0 AND h.deleted = 0 AND h.user_id = ? ORDER BY o.id`, userID)
}

func (r *SQLiteRepository) GetUnsynced(ctx context.Context) ([]models.Observation, error) {
	return r.list(ctx, `WHERE o.deleted = 0 AND o.synced = 0 ORDER BY o.id`)
}

// GetUnsyncedOwnedBy returns dirty observations whose parent hike belongs to
// userID.
func (r *SQLiteRepository) GetUnsyncedOwnedBy(ctx context.Context, userID int64) ([]models.Observation, error) {
	return r.list(ctx, `JOIN hikes h ON h.id = o.hike_id
		WHERE o.deleted = 0 AND o.synced = 0 AND h.user_id = ? ORDER BY o.id`, userID)
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE observations SET synced = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark observation %d synced: %w", id, err)
	}
	if err := dbx.ExpectRows(res, 1); err != nil {
		return fmt.Errorf("mark observation %d synced: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) SoftDelete(ctx context.Context, now int64, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	args := []any{now, now}
	for _, id := range ids {
		args = append(args, id)
	}
	_, err := r.db.ExecContext(ctx, `UPDATE observations SET deleted = 1, deleted_at = ?, synced = 0,
		updated_at = MAX(updated_at, ?) WHERE deleted = 0 AND id IN (`+dbx.Placeholders(len(ids))+`)`, args...)
	if err != nil {
		return fmt.Errorf("failed to soft delete observations: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SoftDeleteAll(ctx context.Context, now int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE observations SET deleted = 1, deleted_at = ?, synced = 0,
		updated_at = MAX(updated_at, ?) WHERE deleted = 0`, now, now)
	if err != nil {
		return fmt.Errorf("failed to soft delete observations: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) HardDelete(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM observations WHERE id IN (`+dbx.Placeholders(len(ids))+`)`, args...)
	if err != nil {
		return fmt.Errorf("failed to delete observations: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) HardDeleteByHike(ctx context.Context, hikeID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM observations WHERE hike_id = ?`, hikeID); err != nil {
		return fmt.Errorf("failed to delete observations of hike %d: %w", hikeID, err)
	}
	return nil
}

func (r *SQLiteRepository) HardDeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM observations`); err != nil {
		return fmt.Errorf("failed to delete observations: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) list(ctx context.Context, tail string, args ...any) ([]models.Observation, error) {
	rows, err := r.db.QueryContext(ctx, selectFrom+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select observations: %w", err)
	}
	defer rows.Close()

	var result []models.Observation
	for rows.Next() {
		o, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	return result, rows.Err()
}

func scan(s interface{ Scan(dest ...any) error }) (*models.Observation, error) {
	var (
		o  models.Observation
		ts int64
	)
	if err := s.Scan(&o.ID, &o.HikeID, &o.Text, &ts, &o.Comments, &o.Location, &o.Picture,
		&o.CreatedAt, &o.UpdatedAt, &o.Synced, &o.Deleted, &o.DeletedAt); err != nil {
		return nil, err
	}
	o.Time = time.UnixMilli(ts).UTC()
	return &o, nil
}
