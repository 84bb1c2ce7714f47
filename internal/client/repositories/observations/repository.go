// Package observations stores Observation rows in the local SQLite database.
package observations

import (
	"context"

	"github.com/dmitrijs2005/trailkeeper/internal/client/models"
)

// Repository is the local observation store. Ownership is inherited from
// the parent hike.
type Repository interface {
	Upsert(ctx context.Context, o *models.Observation) error
	GetByID(ctx context.Context, id int64) (*models.Observation, error)
	GetAll(ctx context.Context) ([]models.Observation, error)
	GetAllIncludingDeleted(ctx context.Context) ([]models.Observation, error)
	GetByHike(ctx context.Context, hikeID int64) ([]models.Observation, error)
	GetByOwner(ctx context.Context, userID int64) ([]models.Observation, error)
	GetUnsynced(ctx context.Context) ([]models.Observation, error)
	GetUnsyncedOwnedBy(ctx context.Context, userID int64) ([]models.Observation, error)
	MarkSynced(ctx context.Context, id int64) error
	SoftDelete(ctx context.Context, now int64, ids ...int64) error
	SoftDeleteAll(ctx context.Context, now int64) error
	HardDelete(ctx context.Context, ids ...int64) error
	HardDeleteByHike(ctx context.Context, hikeID int64) error
	HardDeleteAll(ctx context.Context) error
}
