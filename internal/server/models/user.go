package models

import "time"

// User is a remote account. ID is the identity id handed to clients and
// used as the first segment of every document path they own.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
