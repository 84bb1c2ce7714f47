package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/trailkeeper/internal/client/client"
	"github.com/dmitrijs2005/trailkeeper/internal/client/connectivity"
	"github.com/dmitrijs2005/trailkeeper/internal/client/models"
	"github.com/dmitrijs2005/trailkeeper/internal/common"
	"github.com/dmitrijs2005/trailkeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	identity client.Identity
	err      error
	token    string
	logins   int
}

func (f *fakeAuth) Register(context.Context, string, string) (client.Identity, error) {
	return f.identity, f.err
}

func (f *fakeAuth) Login(context.Context, string, string) (client.Identity, error) {
	f.logins++
	return f.identity, f.err
}

func (f *fakeAuth) SetAccessToken(token string) { f.token = token }

func TestSessionService_RegisterOffline(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewSessionService(f.db, nil, connectivity.Static(false), logging.Nop())

	u, err := svc.Register(ctx, "Ann", " Ann@Example.com ", "", []byte("secret"))
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", u.Email)
	assert.Nil(t, u.FirebaseUID)
	assert.NotEqual(t, "secret", u.PasswordHash)

	_, err = svc.Register(ctx, "Ann", "ann@example.com", "", []byte("other"))
	assert.ErrorIs(t, err, common.ErrAlreadyExists)

	_, err = svc.Register(ctx, "Ann", "", "", []byte("other"))
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
}

func TestSessionService_RegisterLinksRemoteIdentity(t *testing.T) {
	f := newFixture(t)
	auth := &fakeAuth{identity: client.Identity{ID: "uid-ann", AccessToken: "tok"}}
	svc := NewSessionService(f.db, auth, connectivity.Static(true), logging.Nop())

	u, err := svc.Register(context.Background(), "Ann", "ann@example.com", "", []byte("secret"))
	require.NoError(t, err)
	require.NotNil(t, u.FirebaseUID)
	assert.Equal(t, "uid-ann", *u.FirebaseUID)
}

func TestSessionService_SignInAdoptsAnonymousHikes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	anon := f.addHike(t, "Tryfan", nil)

	auth := &fakeAuth{identity: client.Identity{ID: "uid-ann", AccessToken: "tok"}}
	svc := NewSessionService(f.db, auth, connectivity.Static(true), logging.Nop())
	u, err := svc.Register(ctx, "Ann", "ann@example.com", "", []byte("secret"))
	require.NoError(t, err)

	sess, err := svc.SignIn(ctx, "ann@example.com", []byte("secret"))
	require.NoError(t, err)
	assert.Equal(t, models.Session{UserID: u.ID, IdentityID: "uid-ann", AccessToken: "tok"}, sess)
	assert.Equal(t, "tok", auth.token)

	h, err := f.repos.Hikes.GetByID(ctx, anon.ID)
	require.NoError(t, err)
	assert.True(t, h.OwnedBy(u.ID))
	assert.False(t, h.Synced)

	saved, err := f.repos.Session.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sess, saved)

	cur, user, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, sess, cur)
	assert.Equal(t, "Ann", user.Name)
}

func TestSessionService_SignInFailures(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	offline := NewSessionService(f.db, nil, connectivity.Static(false), logging.Nop())

	_, err := offline.SignIn(ctx, "ghost@example.com", []byte("x"))
	assert.ErrorIs(t, err, client.ErrLocalDataNotAvailable)

	_, err = offline.Register(ctx, "Ann", "ann@example.com", "", []byte("secret"))
	require.NoError(t, err)

	_, err = offline.SignIn(ctx, "ann@example.com", []byte("wrong"))
	assert.ErrorIs(t, err, client.ErrUnauthorized)

	rejecting := NewSessionService(f.db, &fakeAuth{err: client.ErrUnauthorized}, connectivity.Static(true), logging.Nop())
	_, err = rejecting.SignIn(ctx, "ann@example.com", []byte("secret"))
	assert.ErrorIs(t, err, client.ErrUnauthorized)
}

func TestSessionService_SignInLocallyWhenServerDown(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	auth := &fakeAuth{err: client.ErrUnavailable}
	svc := NewSessionService(f.db, auth, connectivity.Static(true), logging.Nop())

	u, err := svc.Register(ctx, "Ann", "ann@example.com", "", []byte("secret"))
	require.NoError(t, err)

	sess, err := svc.SignIn(ctx, "ann@example.com", []byte("secret"))
	require.NoError(t, err)
	assert.Equal(t, u.ID, sess.UserID)
	assert.False(t, sess.HasIdentity())
	assert.Equal(t, 1, auth.logins)
}

func TestSessionService_SignInCreatesLocalUserFromRemote(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	auth := &fakeAuth{identity: client.Identity{ID: "uid-bob", AccessToken: "tok"}}
	svc := NewSessionService(f.db, auth, connectivity.Static(true), logging.Nop())

	sess, err := svc.SignIn(ctx, "bob@example.com", []byte("secret"))
	require.NoError(t, err)
	assert.True(t, sess.HasIdentity())

	u, err := f.repos.Users.GetByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, "uid-bob", *u.FirebaseUID)
}

func TestSessionService_SignOutWipesLocalData(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signIn(t, 7, "uid-7")
	h := f.addHike(t, "Tryfan", ptr(int64(7)))
	f.addObservation(t, h.ID, "raven")

	auth := &fakeAuth{token: "tok"}
	svc := NewSessionService(f.db, auth, connectivity.Static(true), logging.Nop())
	require.NoError(t, svc.SignOut(ctx))

	hikes, err := f.repos.Hikes.GetAllIncludingDeleted(ctx)
	require.NoError(t, err)
	assert.Empty(t, hikes)
	obs, err := f.repos.Observations.GetAllIncludingDeleted(ctx)
	require.NoError(t, err)
	assert.Empty(t, obs)

	sess, err := f.repos.Session.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Session{}, sess)
	assert.Empty(t, auth.token)
}

func TestSessionService_Restore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.repos.Session.Save(ctx, models.Session{UserID: 7, IdentityID: "uid-7", AccessToken: "tok"}))

	auth := &fakeAuth{}
	sess, err := NewSessionService(f.db, auth, connectivity.Static(false), logging.Nop()).Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, "uid-7", sess.IdentityID)
	assert.Equal(t, "tok", auth.token)
}
