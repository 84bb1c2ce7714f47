package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/trailkeeper/internal/client/models"
	"github.com/dmitrijs2005/trailkeeper/internal/common"
	"github.com/dmitrijs2005/trailkeeper/internal/dbx"
)

const selectUser = `SELECT id, name, email, password_hash, phone, firebase_uid, created_at, updated_at FROM users `

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Upsert inserts u, assigning an id when it is zero. An existing id is
// overwritten; a duplicate email on insert yields common.ErrAlreadyExists.
func (r *SQLiteRepository) Upsert(ctx context.Context, u *models.User) error {
	if u.ID == 0 {
		if _, err := r.GetByEmail(ctx, u.Email); err == nil {
			return fmt.Errorf("user %s: %w", u.Email, common.ErrAlreadyExists)
		} else if !errors.Is(err, common.ErrNotFound) {
			return err
		}

		res, err := r.db.ExecContext(ctx, `INSERT INTO users
			(name, email, password_hash, phone, firebase_uid, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			u.Name, u.Email, u.PasswordHash, u.Phone, u.FirebaseUID, u.CreatedAt, u.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert user: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read user id: %w", err)
		}
		u.ID = id
		return nil
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO users
		(id, name, email, password_hash, phone, firebase_uid, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			password_hash = excluded.password_hash,
			phone = excluded.phone,
			firebase_uid = excluded.firebase_uid,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Phone, u.FirebaseUID, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert user %d: %w", u.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.one(ctx, `WHERE id = ?`, id)
}

func (r *SQLiteRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.one(ctx, `WHERE email = ?`, email)
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, selectUser+`ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select users: %w", err)
	}
	defer rows.Close()

	var result []models.User
	for rows.Next() {
		var u models.User
		if err := scan(rows, &u); err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

func (r *SQLiteRepository) SetFirebaseUID(ctx context.Context, id int64, uid string, now int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET firebase_uid = ?, updated_at = MAX(updated_at, ?)
		WHERE id = ?`, uid, now, id)
	if err != nil {
		return fmt.Errorf("failed to link user %d: %w", id, err)
	}
	if err := dbx.ExpectRows(res, 1); err != nil {
		return fmt.Errorf("user %d: %w", id, common.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) one(ctx context.Context, where string, arg any) (*models.User, error) {
	var u models.User
	err := scan(r.db.QueryRowContext(ctx, selectUser+where, arg), &u)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func scan(s interface{ Scan(dest ...any) error }, u *models.User) error {
	return s.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.FirebaseUID, &u.CreatedAt, &u.UpdatedAt)
}
