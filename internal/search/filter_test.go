package search

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/trailkeeper/internal/client/models"
	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func day(d int) *time.Time {
	t := time.Date(2024, 6, d, 12, 0, 0, 0, time.UTC)
	return &t
}

func fixtures() []models.Hike {
	return []models.Hike{
		{ID: 1, Name: "Helvellyn", Location: "Lake District", Length: 12, Difficulty: "Hard", ParkingAvailable: true, Date: day(1)},
		{ID: 2, Name: "Catbells", Location: "Lake District", Length: 5.5, Difficulty: "Easy", ParkingAvailable: false, Date: day(10)},
		{ID: 3, Name: "Snowdon", Location: "Eryri", Length: 14, Difficulty: "Hard", ParkingAvailable: true},
		{ID: 4, Name: "Ben Nevis", Location: "Highlands", Length: 17, Difficulty: "Expert", ParkingAvailable: false, Date: day(20)},
	}
}

func TestAdvancedFilter_EmptyReturnsInput(t *testing.T) {
	in := fixtures()
	assert.Equal(t, in, AdvancedFilter(in, Filter{}))
	assert.Equal(t, in, AdvancedFilter(in, Filter{Name: "  ", Parking: " "}))
}

func TestAdvancedFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []int64
	}{
		{"name substring", Filter{Name: "BELL"}, []int64{2}},
		{"location substring", Filter{Location: "lake"}, []int64{1, 2}},
		{"min length inclusive", Filter{MinLength: ptr(14.0)}, []int64{3, 4}},
		{"max length inclusive", Filter{MaxLength: ptr(12.0)}, []int64{1, 2}},
		{"difficulty exact", Filter{Difficulty: "Hard"}, []int64{1, 3}},
		{"difficulty case sensitive", Filter{Difficulty: "hard"}, nil},
		{"parking yes", Filter{Parking: "YES"}, []int64{1, 3}},
		{"parking no", Filter{Parking: "no"}, []int64{2, 4}},
		{"parking other ignored", Filter{Parking: "maybe"}, []int64{1, 2, 3, 4}},
		{"date range excludes undated", Filter{StartDate: day(1), EndDate: day(10)}, []int64{1, 2}},
		{"start only", Filter{StartDate: day(5)}, []int64{2, 4}},
		{"end only", Filter{EndDate: day(5)}, []int64{1}},
		{"conjunction", Filter{Location: "lake", Difficulty: "Hard", Parking: "yes"}, []int64{1}},
		{"no match", Filter{Name: "helvellyn", Parking: "no"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []int64
			for _, h := range AdvancedFilter(fixtures(), tt.filter) {
				got = append(got, h.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

// Every hike is kept iff it passes each predicate on its own.
func TestAdvancedFilter_ConjunctionProperty(t *testing.T) {
	single := []Filter{
		{Name: "e"},
		{Location: "lake"},
		{MinLength: ptr(6.0)},
		{MaxLength: ptr(15.0)},
		{StartDate: day(2)},
		{Difficulty: "Hard"},
		{Parking: "yes"},
	}

	for mask := 0; mask < 1<<len(single); mask++ {
		var combined Filter
		var parts []Filter
		for i, f := range single {
			if mask&(1<<i) == 0 {
				continue
			}
			parts = append(parts, f)
			combined = merge(combined, f)
		}

		kept := map[int64]bool{}
		for _, h := range AdvancedFilter(fixtures(), combined) {
			kept[h.ID] = true
		}
		for _, h := range fixtures() {
			want := true
			for _, p := range parts {
				want = want && p.Match(h)
			}
			assert.Equal(t, want, kept[h.ID], "mask %b hike %d", mask, h.ID)
		}
	}
}

func merge(a, b Filter) Filter {
	if b.Name != "" {
		a.Name = b.Name
	}
	if b.Location != "" {
		a.Location = b.Location
	}
	if b.MinLength != nil {
		a.MinLength = b.MinLength
	}
	if b.MaxLength != nil {
		a.MaxLength = b.MaxLength
	}
	if b.StartDate != nil {
		a.StartDate = b.StartDate
	}
	if b.EndDate != nil {
		a.EndDate = b.EndDate
	}
	if b.Difficulty != "" {
		a.Difficulty = b.Difficulty
	}
	if b.Parking != "" {
		a.Parking = b.Parking
	}
	return a
}
