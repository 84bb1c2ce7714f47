package services

import "errors"

var (
	// ErrPushFailed wraps the joined errors of the failed push tasks.
	ErrPushFailed = errors.New("push failed")
	// ErrPullFailed wraps the first error of a failed pull.
	ErrPullFailed = errors.New("pull failed")
)
