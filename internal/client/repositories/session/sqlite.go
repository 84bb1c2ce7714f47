package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/trailkeeper/internal/client/models"
	"github.com/dmitrijs2005/trailkeeper/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Get returns nil for a missing key.
func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	return value, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete metadata[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM metadata WHERE key IN (?, ?, ?)`,
		KeyActiveUserID, KeyIdentityID, KeyAccessToken)
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Load(ctx context.Context) (models.Session, error) {
	var s models.Session

	raw, err := r.Get(ctx, KeyActiveUserID)
	if err != nil {
		return s, err
	}
	if len(raw) > 0 {
		id, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return s, fmt.Errorf("malformed %s %q: %w", KeyActiveUserID, raw, err)
		}
		s.UserID = id
	}

	identity, err := r.Get(ctx, KeyIdentityID)
	if err != nil {
		return s, err
	}
	s.IdentityID = string(identity)

	token, err := r.Get(ctx, KeyAccessToken)
	if err != nil {
		return s, err
	}
	s.AccessToken = string(token)

	return s, nil
}

// Save writes all three keys; empty values are deleted.
func (r *SQLiteRepository) Save(ctx context.Context, s models.Session) error {
	values := map[string]string{
		KeyIdentityID:  s.IdentityID,
		KeyAccessToken: s.AccessToken,
	}
	if s.UserID > 0 {
		values[KeyActiveUserID] = strconv.FormatInt(s.UserID, 10)
	} else {
		values[KeyActiveUserID] = ""
	}

	for k, v := range values {
		var err error
		if v == "" {
			err = r.Delete(ctx, k)
		} else {
			err = r.Set(ctx, k, []byte(v))
		}
		if err != nil {
			return err
		}
	}
	return nil
}
