package search

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/trailkeeper/internal/client/models"
)

// Filter holds optional predicates. Zero values and nil pointers are
// ignored.
type Filter struct {
	Name      string
	Location  string
	MinLength *float64
	MaxLength *float64
	StartDate *time.Time
	EndDate   *time.Time
	// Difficulty must equal the hike's difficulty exactly.
	Difficulty string
	// Parking is "yes" or "no", in any case. Other values are ignored.
	Parking string
}

// IsZero reports whether no predicate is set.
func (f Filter) IsZero() bool {
	return strings.TrimSpace(f.Name) == "" &&
		strings.TrimSpace(f.Location) == "" &&
		f.MinLength == nil && f.MaxLength == nil &&
		f.StartDate == nil && f.EndDate == nil &&
		strings.TrimSpace(f.Difficulty) == "" &&
		strings.TrimSpace(f.Parking) == ""
}

// AdvancedFilter keeps the hikes that satisfy every predicate in f.
func AdvancedFilter(hikes []models.Hike, f Filter) []models.Hike {
	if f.IsZero() {
		return hikes
	}

	var out []models.Hike
	for _, h := range hikes {
		if f.Match(h) {
			out = append(out, h)
		}
	}
	return out
}

// Match evaluates f against a single hike. Once any date bound is set, a
// hike without a date does not match.
func (f Filter) Match(h models.Hike) bool {
	if n := strings.ToLower(strings.TrimSpace(f.Name)); n != "" &&
		!strings.Contains(strings.ToLower(h.Name), n) {
		return false
	}
	if l := strings.ToLower(strings.TrimSpace(f.Location)); l != "" &&
		!strings.Contains(strings.ToLower(h.Location), l) {
		return false
	}

	if f.MinLength != nil && h.Length < *f.MinLength {
		return false
	}
	if f.MaxLength != nil && h.Length > *f.MaxLength {
		return false
	}

	if f.StartDate != nil || f.EndDate != nil {
		if h.Date == nil {
			return false
		}
		if f.StartDate != nil && h.Date.Before(*f.StartDate) {
			return false
		}
		if f.EndDate != nil && h.Date.After(*f.EndDate) {
			return false
		}
	}

	if d := strings.TrimSpace(f.Difficulty); d != "" && h.Difficulty != d {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(f.Parking)) {
	case "yes":
		if !h.ParkingAvailable {
			return false
		}
	case "no":
		if h.ParkingAvailable {
			return false
		}
	}

	return true
}
