// Package cli provides the interactive TrailKeeper command-line client.
//
// It wires configuration, the local SQLite store, the remote transport and
// the client services into a REPL that works offline and syncs when the
// server is reachable. A background connectivity.Watcher keeps the
// online/offline status shown in the prompt current.
//
// Commands:
//   - register, login, logout
//   - addhike, list, show, delete, purge, start, end
//   - addobs, delobs, attach
//   - search, filter
//   - sync (push), download (push then pull)
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
