// Package session persists the signed-in identity in the local metadata
// key/value table.
package session

import (
	"context"

	"github.com/dmitrijs2005/trailkeeper/internal/client/models"
)

const (
	KeyActiveUserID = "active_user_id"
	KeyIdentityID   = "identity_id"
	KeyAccessToken  = "access_token"
)

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error

	// Load returns the zero Session when nobody is signed in.
	Load(ctx context.Context) (models.Session, error)
	Save(ctx context.Context, s models.Session) error
}
