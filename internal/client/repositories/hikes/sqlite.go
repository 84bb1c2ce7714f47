package hikes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/trailkeeper/internal/client/models"
	"github.com/dmitrijs2005/trailkeeper/internal/common"
	"github.com/dmitrijs2005/trailkeeper/internal/dbx"
	"github.com/dmitrijs2005/trailkeeper/internal/timex"
)

const columns = `id, name, location, date, length, difficulty, parking_available,
	description, purchase_parking_pass, user_id, active, start_time, end_time,
	created_at, updated_at, synced, deleted, deleted_at`

// SQLiteRepository implements Repository over a dbx.DBTX.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, h *models.Hike) error {
	args := []any{
		h.Name, h.Location, timex.UnixMilli(h.Date), h.Length, h.Difficulty, h.ParkingAvailable,
		h.Description, h.PurchaseParkingPass, h.UserID, h.Active, h.StartTime, h.EndTime,
		h.CreatedAt, h.UpdatedAt, h.Synced, h.Deleted, h.DeletedAt,
	}

	if h.ID == 0 {
		res, err := r.db.ExecContext(ctx, `INSERT INTO hikes (`+columns[4:]+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
		if err != nil {
			return fmt.Errorf("failed to insert hike: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read hike id: %w", err)
		}
		h.ID = id
		return nil
	}

	query := `INSERT INTO hikes (` + columns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			location = excluded.location,
			date = excluded.date,
			length = excluded.length,
			difficulty = excluded.difficulty,
			parking_available = excluded.parking_available,
			description = excluded.description,
			purchase_parking_pass = excluded.purchase_parking_pass,
			user_id = excluded.user_id,
			active = excluded.active,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			synced = excluded.synced,
			deleted = excluded.deleted,
			deleted_at = excluded.deleted_at`
	if _, err := r.db.ExecContext(ctx, query, append([]any{h.ID}, args...)...); err != nil {
		return fmt.Errorf("failed to upsert hike %d: %w", h.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Hike, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM hikes WHERE id = ? AND deleted = 0`, id)
	h, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("hike %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hike %d: %w", id, err)
	}
	return h, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Hike, error) {
	return r.list(ctx, `WHERE deleted = 0 ORDER BY date DESC, id`)
}

func (r *SQLiteRepository) GetAllIncludingDeleted(ctx context.Context) ([]models.Hike, error) {
	return r.list(ctx, `ORDER BY id`)
}

func (r *SQLiteRepository) GetByOwner(ctx context.Context, userID int64) ([]models.Hike, error) {
	return r.list(ctx, `WHERE deleted = 0 AND user_id = ? ORDER BY date DESC, id`, userID)
}

func (r *SQLiteRepository) GetUnowned(ctx context.Context) ([]models.Hike, error) {
	return r.list(ctx, `WHERE deleted = 0 AND user_id IS NULL ORDER BY date DESC, id`)
}

func (r *SQLiteRepository) GetUnsynced(ctx context.Context) ([]models.Hike, error) {
	return r.list(ctx, `WHERE deleted = 0 AND synced = 0 ORDER BY id`)
}

func (r *SQLiteRepository) GetUnsyncedOwnedBy(ctx context.Context, userID int64) ([]models.Hike, error) {
	return r.list(ctx, `WHERE deleted = 0 AND synced = 0 AND user_id = ? ORDER BY id`, userID)
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE hikes SET synced = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark hike %d synced: %w", id, err)
	}
	if err := dbx.ExpectRows(res, 1); err != nil {
		return fmt.Errorf("mark hike %d synced: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) SoftDelete(ctx context.Context, now int64, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE hikes SET deleted = 1, deleted_at = ?, synced = 0, updated_at = MAX(updated_at, ?)
		WHERE deleted = 0 AND id IN (` + dbx.Placeholders(len(ids)) + `)`
	if _, err := r.db.ExecContext(ctx, query, append([]any{now, now}, int64Args(ids)...)...); err != nil {
		return fmt.Errorf("failed to soft delete hikes: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SoftDeleteAll(ctx context.Context, now int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE hikes SET deleted = 1, deleted_at = ?, synced = 0,
		updated_at = MAX(updated_at, ?) WHERE deleted = 0`, now, now)
	if err != nil {
		return fmt.Errorf("failed to soft delete hikes: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) HardDelete(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	args := int64Args(ids)
	in := dbx.Placeholders(len(ids))
	if _, err := r.db.ExecContext(ctx, `DELETE FROM observations WHERE hike_id IN (`+in+`)`, args...); err != nil {
		return fmt.Errorf("failed to delete observations of hikes: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM hikes WHERE id IN (`+in+`)`, args...); err != nil {
		return fmt.Errorf("failed to delete hikes: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) HardDeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM observations`); err != nil {
		return fmt.Errorf("failed to delete observations: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM hikes`); err != nil {
		return fmt.Errorf("failed to delete hikes: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MigrateToUser(ctx context.Context, userID, now int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE hikes SET user_id = ?, updated_at = MAX(updated_at, ?), synced = 0
		WHERE user_id IS NULL`, userID, now)
	if err != nil {
		return fmt.Errorf("failed to migrate hikes to user %d: %w", userID, err)
	}
	return nil
}

func (r *SQLiteRepository) GetActive(ctx context.Context) (*models.Hike, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM hikes WHERE active = 1 AND deleted = 0 LIMIT 1`)
	h, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active hike: %w", err)
	}
	return h, nil
}

func (r *SQLiteRepository) Start(ctx context.Context, id, now int64) error {
	if err := r.DeactivateAll(ctx, now); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE hikes SET active = 1, start_time = ?, end_time = NULL,
		synced = 0, updated_at = MAX(updated_at, ?) WHERE id = ? AND deleted = 0`, now, now, id)
	if err != nil {
		return fmt.Errorf("failed to start hike %d: %w", id, err)
	}
	if err := dbx.ExpectRows(res, 1); err != nil {
		return fmt.Errorf("hike %d: %w", id, common.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) End(ctx context.Context, id, now int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE hikes SET active = 0, end_time = ?,
		synced = 0, updated_at = MAX(updated_at, ?) WHERE id = ? AND deleted = 0`, now, now, id)
	if err != nil {
		return fmt.Errorf("failed to end hike %d: %w", id, err)
	}
	if err := dbx.ExpectRows(res, 1); err != nil {
		return fmt.Errorf("hike %d: %w", id, common.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) DeactivateAll(ctx context.Context, now int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE hikes SET active = 0, synced = 0, updated_at = MAX(updated_at, ?)
		WHERE active = 1`, now)
	if err != nil {
		return fmt.Errorf("failed to deactivate hikes: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) list(ctx context.Context, where string, args ...any) ([]models.Hike, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+columns+` FROM hikes `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select hikes: %w", err)
	}
	defer rows.Close()

	var result []models.Hike
	for rows.Next() {
		h, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*models.Hike, error) {
	var (
		h    models.Hike
		date sql.NullInt64
	)
	err := s.Scan(&h.ID, &h.Name, &h.Location, &date, &h.Length, &h.Difficulty, &h.ParkingAvailable,
		&h.Description, &h.PurchaseParkingPass, &h.UserID, &h.Active, &h.StartTime, &h.EndTime,
		&h.CreatedAt, &h.UpdatedAt, &h.Synced, &h.Deleted, &h.DeletedAt)
	if err != nil {
		return nil, err
	}
	if date.Valid {
		h.Date = timex.FromUnixMilli(&date.Int64)
	}
	return &h, nil
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
