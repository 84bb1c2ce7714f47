// Package users stores local accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/trailkeeper/internal/client/models"
)

type Repository interface {
	Upsert(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetAll(ctx context.Context) ([]models.User, error)
	SetFirebaseUID(ctx context.Context, id int64, uid string, now int64) error
}
