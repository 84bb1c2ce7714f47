package common

import "errors"

// Callers match these with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidToken      = errors.New("invalid token")
	ErrTokenExpired      = errors.New("token expired")
	ErrAlreadyExists     = errors.New("already exists")
	ErrOwnershipConflict = errors.New("document owned by another identity")
	ErrInvalidPath       = errors.New("invalid document path")
	ErrInvalidArgument   = errors.New("invalid argument")
)
