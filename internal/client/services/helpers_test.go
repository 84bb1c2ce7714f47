package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/trailkeeper/internal/client/client"
	"github.com/dmitrijs2005/trailkeeper/internal/client/dbtest"
	"github.com/dmitrijs2005/trailkeeper/internal/client/models"
	"github.com/dmitrijs2005/trailkeeper/internal/timex"
	"github.com/stretchr/testify/require"
)

const fixedNow = int64(1_700_000_000_000)

func ptr[T any](v T) *T { return &v }

// freezeClock pins timex.NowMilli for the duration of the test.
func freezeClock(t *testing.T) {
	t.Helper()
	orig := timex.NowMilli
	timex.NowMilli = func() int64 { return fixedNow }
	t.Cleanup(func() { timex.NowMilli = orig })
}

type fixture struct {
	db    *sql.DB
	repos *client.Repositories
	store *client.MemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	freezeClock(t)
	db := dbtest.Open(t)
	return &fixture{db: db, repos: client.NewRepositories(db), store: client.NewMemoryStore()}
}

func (f *fixture) addUser(t *testing.T, id int64, email string) {
	t.Helper()
	require.NoError(t, f.repos.Users.Upsert(context.Background(), &models.User{
		ID: id, Name: email, Email: email, PasswordHash: "x", CreatedAt: 1, UpdatedAt: 1,
	}))
}

func (f *fixture) signIn(t *testing.T, userID int64, uid string) {
	t.Helper()
	require.NoError(t, f.repos.Session.Save(context.Background(), models.Session{UserID: userID, IdentityID: uid}))
}

func (f *fixture) addHike(t *testing.T, name string, owner *int64) models.Hike {
	t.Helper()
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	h := models.Hike{
		Name:                name,
		Location:            "Snowdonia",
		Date:                &date,
		Length:              12.5,
		Difficulty:          string(models.DifficultyMedium),
		ParkingAvailable:    true,
		Description:         ptr("views over " + name),
		PurchaseParkingPass: ptr("yes"),
		UserID:              owner,
		CreatedAt:           1000,
		UpdatedAt:           1000,
	}
	require.NoError(t, f.repos.Hikes.Upsert(context.Background(), &h))
	return h
}

func (f *fixture) addObservation(t *testing.T, hikeID int64, text string) models.Observation {
	t.Helper()
	o := models.Observation{
		HikeID:    hikeID,
		Text:      text,
		Time:      time.UnixMilli(5000).UTC(),
		Comments:  ptr("near the summit"),
		CreatedAt: 1000,
		UpdatedAt: 1000,
	}
	require.NoError(t, f.repos.Observations.Upsert(context.Background(), &o))
	return o
}

// recordingVectors counts SyncUserVectors calls.
type recordingVectors struct {
	mu    sync.Mutex
	calls []vectorCall
	err   error
}

type vectorCall struct {
	userID int64
	uid    string
}

func (r *recordingVectors) SyncUserVectors(_ context.Context, userID int64, uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, vectorCall{userID: userID, uid: uid})
	return r.err
}

func (r *recordingVectors) Calls() []vectorCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]vectorCall(nil), r.calls...)
}
