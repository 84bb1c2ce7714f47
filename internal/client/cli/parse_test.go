package cli

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/trailkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	id, err := parseID("#12")
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	for _, bad := range []string{"", "abc", "0", "-3"} {
		_, err := parseID(bad)
		assert.ErrorIs(t, err, common.ErrInvalidArgument, bad)
	}
}

func TestParseFilter(t *testing.T) {
	f, err := parseFilter([]string{"name=ridge", "min=5", "max=20.5", "from=2024-01-01", "to=2024-12-31", "difficulty=Hard", "parking=yes"})
	require.NoError(t, err)

	assert.Equal(t, "ridge", f.Name)
	assert.Equal(t, 5.0, *f.MinLength)
	assert.Equal(t, 20.5, *f.MaxLength)
	assert.True(t, f.StartDate.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, f.EndDate.Equal(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Hard", f.Difficulty)
	assert.Equal(t, "yes", f.Parking)

	empty, err := parseFilter(nil)
	require.NoError(t, err)
	assert.True(t, empty.IsZero())

	_, err = parseFilter([]string{"min=far"})
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
	_, err = parseFilter([]string{"colour=red"})
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
	_, err = parseFilter([]string{"ridge"})
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
}

func TestParseYesNo(t *testing.T) {
	for in, want := range map[string]bool{"yes": true, "Y": true, "no": false, "": false} {
		got, err := parseYesNo(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := parseYesNo("maybe")
	assert.Error(t, err)
}
