// Package services contains the application services of the TrailKeeper
// client.
//
// Services are constructed explicitly by the CLI composition root:
//
//   - HikeService, ObservationService: local CRUD with dirty-flag tracking.
//   - SessionService: local accounts, remote sign in, sign out.
//   - SyncService: push of dirty rows and pull of the remote snapshot.
//   - VectorService: embedding of owned hikes and observations.
//   - SearchService: semantic search with fuzzy fallback, and filtering.
//
// Every blocking method takes a context.Context. Remote-bound work consults
// a connectivity.Gate first.
package services
