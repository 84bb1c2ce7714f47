// Package models defines the local entities tracked by the TrailKeeper
// client and their dirty-flag state transitions.
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Difficulty is one of the closed vocabulary values.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
	DifficultyExpert Difficulty = "Expert"
)

var ErrUnknownDifficulty = errors.New("unknown difficulty")

// ParseDifficulty accepts any casing of the four known values.
func ParseDifficulty(s string) (Difficulty, error) {
	for _, d := range []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyExpert} {
		if strings.EqualFold(strings.TrimSpace(s), string(d)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
}

// Hike is a planned or completed hike. Timestamps are unix milliseconds.
type Hike struct {
	ID                  int64
	Name                string
	Location            string
	Date                *time.Time
	Length              float64
	Difficulty          string
	ParkingAvailable    bool
	Description         *string
	PurchaseParkingPass *string

	// UserID is nil for hikes recorded before any sign in.
	UserID *int64

	Active    bool
	StartTime *int64
	EndTime   *int64

	CreatedAt int64
	UpdatedAt int64

	// Synced is false while the row has local changes not acknowledged by
	// the remote store.
	Synced    bool
	Deleted   bool
	DeletedAt *int64
}

// OwnedBy reports whether the hike belongs to userID.
func (h *Hike) OwnedBy(userID int64) bool {
	return h.UserID != nil && *h.UserID == userID
}

// MarkDirty records a local mutation at now.
func (h *Hike) MarkDirty(now int64) {
	h.UpdatedAt = touch(h.UpdatedAt, now)
	h.Synced = false
}

// MarkSynced records a remote acknowledgement or a pulled row.
func (h *Hike) MarkSynced() {
	h.Synced = true
}

// SoftDelete hides the hike from read paths and marks it dirty.
func (h *Hike) SoftDelete(now int64) {
	h.Deleted = true
	h.DeletedAt = &now
	h.MarkDirty(now)
}

// Start begins an activity session.
func (h *Hike) Start(now int64) {
	h.Active = true
	h.StartTime = &now
	h.MarkDirty(now)
}

// End finishes the activity session.
func (h *Hike) End(now int64) {
	h.Active = false
	h.EndTime = &now
	h.MarkDirty(now)
}

func touch(prev, now int64) int64 {
	if now > prev {
		return now
	}
	return prev
}
