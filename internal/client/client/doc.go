// Package client contains the transport and local persistence building blocks
// of the TrailKeeper CLI.
//
// # Overview
//
// The package provides:
//  1. The DocumentStore contract used by the sync engine: partial-field Merge
//     and List of a collection's direct child documents.
//  2. GRPCClient, the gRPC implementation of DocumentStore plus Ping,
//     Register/Login, SemanticSearch and PresignPicture. It injects the access
//     token via an interceptor and maps gRPC status codes to sentinel errors.
//  3. MemoryStore, an in-process DocumentStore for tests and offline demos.
//  4. InitDatabase and RunMigrations, which open the local SQLite database
//     and apply the embedded goose migrations.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrLocalDataNotAvailable.
package client
