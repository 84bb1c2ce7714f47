package models

import "time"

// Observation is a note taken during a hike.
type Observation struct {
	ID       int64
	HikeID   int64
	Text     string
	Time     time.Time
	Comments *string
	Location *string

	// Picture is an object storage key set by the picture upload flow.
	Picture *string

	CreatedAt int64
	UpdatedAt int64
	Synced    bool
	Deleted   bool
	DeletedAt *int64
}

func (o *Observation) MarkDirty(now int64) {
	o.UpdatedAt = touch(o.UpdatedAt, now)
	o.Synced = false
}

func (o *Observation) MarkSynced() {
	o.Synced = true
}

func (o *Observation) SoftDelete(now int64) {
	o.Deleted = true
	o.DeletedAt = &now
	o.MarkDirty(now)
}
