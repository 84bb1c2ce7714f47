package documents

import (
	"context"

	"github.com/dmitrijs2005/trailkeeper/internal/server/models"
)

type Repository interface {
	// Merge creates the document or merges fields into the stored ones.
	// Writing a path owned by another identity fails with
	// common.ErrOwnershipConflict.
	Merge(ctx context.Context, doc *models.Document) error
	List(ctx context.Context, parent string) ([]models.Document, error)
	ListEmbedded(ctx context.Context, ownerID string) ([]models.Document, error)
}
