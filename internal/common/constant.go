// Package common contains constants and sentinel errors shared by the
// TrailKeeper client and server.
package common

// AccessTokenHeaderName is the gRPC metadata key carrying the access token.
const AccessTokenHeaderName = "access_token"

// EmbeddingSource is recorded next to every stored embedding vector.
const EmbeddingSource = "gemini-2.5-flash"
