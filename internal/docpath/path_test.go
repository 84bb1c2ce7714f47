package docpath

import (
	"testing"

	"github.com/dmitrijs2005/trailkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilders(t *testing.T) {
	assert.Equal(t, "users/u1", User("u1"))
	assert.Equal(t, "users/u1/hikes", HikesCollection("u1"))
	assert.Equal(t, "users/u1/hikes/7", Hike("u1", 7))
	assert.Equal(t, "users/u1/hikes/7/observations", ObservationsCollection("u1", 7))
	assert.Equal(t, "users/u1/hikes/7/observations/3", Observation("u1", 7, 3))
}

func TestParse(t *testing.T) {
	p, err := Parse("/users/u1/hikes/7/")
	require.NoError(t, err)
	assert.True(t, p.IsDocument())
	assert.Equal(t, "u1", p.Owner())
	assert.Equal(t, "7", p.ID())
	assert.Equal(t, "users/u1/hikes", p.Parent())
	assert.Equal(t, "users/u1/hikes/7", p.String())

	c, err := Parse("users/u1/hikes")
	require.NoError(t, err)
	assert.False(t, c.IsDocument())
	assert.Equal(t, "", c.ID())
	assert.Equal(t, "users/u1", c.Parent())
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{
		"",
		"accounts/u1",
		"users//hikes",
		"users/u1/trips/1",
		"users/u1/hikes/1/photos/2",
		"users/u1/hikes/1/observations/2/extra",
	} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, common.ErrInvalidPath, in)
	}
}

func TestHikeIDFromObservation(t *testing.T) {
	id, err := HikeIDFromObservation("users/u1/hikes/42/observations/5")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = HikeIDFromObservation("users/u1/hikes/abc/observations/5")
	assert.ErrorIs(t, err, common.ErrInvalidPath)

	_, err = HikeIDFromObservation("users/u1/hikes/42")
	assert.ErrorIs(t, err, common.ErrInvalidPath)
}
