// Package hikes stores Hike rows in the local SQLite database.
package hikes

import (
	"context"

	"github.com/dmitrijs2005/trailkeeper/internal/client/models"
)

// Repository is the local hike store. Every read path except
// GetAllIncludingDeleted skips soft-deleted rows.
type Repository interface {
	// Upsert inserts h, or replaces the row with the same id. A zero id is
	// assigned by the database and written back to h.
	Upsert(ctx context.Context, h *models.Hike) error

	GetByID(ctx context.Context, id int64) (*models.Hike, error)
	GetAll(ctx context.Context) ([]models.Hike, error)
	GetAllIncludingDeleted(ctx context.Context) ([]models.Hike, error)
	GetByOwner(ctx context.Context, userID int64) ([]models.Hike, error)
	GetUnowned(ctx context.Context) ([]models.Hike, error)

	GetUnsynced(ctx context.Context) ([]models.Hike, error)
	// GetUnsyncedOwnedBy returns dirty, non-deleted hikes of userID.
	GetUnsyncedOwnedBy(ctx context.Context, userID int64) ([]models.Hike, error)
	MarkSynced(ctx context.Context, id int64) error

	SoftDelete(ctx context.Context, now int64, ids ...int64) error
	SoftDeleteAll(ctx context.Context, now int64) error
	HardDelete(ctx context.Context, ids ...int64) error
	HardDeleteAll(ctx context.Context) error

	// MigrateToUser adopts hikes recorded before sign in.
	MigrateToUser(ctx context.Context, userID, now int64) error

	GetActive(ctx context.Context) (*models.Hike, error)
	// Start marks id as the active hike and stamps its start time.
	// Any other active hike is deactivated first.
	Start(ctx context.Context, id, now int64) error
	End(ctx context.Context, id, now int64) error
	DeactivateAll(ctx context.Context, now int64) error
}
