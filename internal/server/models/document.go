// Package models holds the rows persisted by the server.
package models

import "time"

// Document is one stored document. Parent is the collection path and DocID
// the last path segment, so listing a collection is an equality lookup.
type Document struct {
	Path      string
	Parent    string
	DocID     string
	OwnerID   string
	Fields    map[string]any
	UpdatedAt time.Time
}
