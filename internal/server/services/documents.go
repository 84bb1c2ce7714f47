package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/trailkeeper/internal/common"
	"github.com/dmitrijs2005/trailkeeper/internal/docpath"
	"github.com/dmitrijs2005/trailkeeper/internal/server/models"
	"github.com/dmitrijs2005/trailkeeper/internal/server/repositories/repomanager"
)

// DocumentService stores documents on behalf of an authenticated identity.
// Every path must live under users/{identity}.
type DocumentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewDocumentService(db *sql.DB, m repomanager.RepositoryManager) *DocumentService {
	return &DocumentService{db: db, repomanager: m}
}

// owned parses path and checks that identityID owns it.
func owned(identityID, path string) (docpath.Path, error) {
	p, err := docpath.Parse(path)
	if err != nil {
		return docpath.Path{}, err
	}
	if identityID == "" || p.Owner() != identityID {
		return docpath.Path{}, fmt.Errorf("%w: %s", common.ErrOwnershipConflict, path)
	}
	return p, nil
}

// Merge writes fields into the document at path. Fields not present keep
// their stored values.
func (s *DocumentService) Merge(ctx context.Context, identityID, path string, fields map[string]any) error {
	p, err := owned(identityID, path)
	if err != nil {
		return err
	}
	if !p.IsDocument() {
		return fmt.Errorf("%w: %s is a collection", common.ErrInvalidPath, path)
	}
	if fields == nil {
		fields = map[string]any{}
	}

	return s.repomanager.Documents(s.db).Merge(ctx, &models.Document{
		Path:    p.String(),
		Parent:  p.Parent(),
		DocID:   p.ID(),
		OwnerID: identityID,
		Fields:  fields,
	})
}

// List returns the direct children of the collection at path.
func (s *DocumentService) List(ctx context.Context, identityID, path string) ([]models.Document, error) {
	p, err := owned(identityID, path)
	if err != nil {
		return nil, err
	}
	if p.IsDocument() {
		return nil, fmt.Errorf("%w: %s is a document", common.ErrInvalidPath, path)
	}
	return s.repomanager.Documents(s.db).List(ctx, p.String())
}
