package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/trailkeeper/internal/client/client"
)

var errNoIdentity = errors.New("sign in while online to enable sync")

// Sync pushes local changes and refreshes embeddings.
func (a *App) Sync(ctx context.Context, _ []string) error {
	if !a.session.HasIdentity() {
		return errNoIdentity
	}
	if err := a.sync.PushLocalChanges(ctx); err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			return errors.New("server unavailable, changes stay local")
		}
		return err
	}
	printlnFn("Sync complete")
	return nil
}

// Download replaces local hikes with the remote snapshot. Pending changes
// are pushed first; a failed push aborts the download so they are not lost.
func (a *App) Download(ctx context.Context, _ []string) error {
	if !a.session.HasIdentity() {
		return errNoIdentity
	}
	if err := a.sync.PushLocalChanges(ctx); err != nil {
		return err
	}
	if err := a.sync.PullRemoteSnapshot(ctx); err != nil {
		return err
	}
	printlnFn("Download complete")
	return nil
}
