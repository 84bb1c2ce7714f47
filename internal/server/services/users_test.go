package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/trailkeeper/internal/common"
	"github.com/dmitrijs2005/trailkeeper/internal/server/auth"
	"github.com/dmitrijs2005/trailkeeper/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T, m *fakeManager) *UserService {
	t.Helper()
	cfg := &config.Config{SecretKey: "k", AccessTokenValidityDuration: time.Hour}
	return NewUserService(nil, m, cfg)
}

func TestUserService_RegisterThenLogin(t *testing.T) {
	orig := newIdentityID
	newIdentityID = func() string { return "id-1" }
	t.Cleanup(func() { newIdentityID = orig })

	m := newFakeManager()
	svc := newUserService(t, m)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "  Alice@Example.com ", "pw")
	require.NoError(t, err)
	assert.Equal(t, "id-1", reg.ID)

	stored := m.users.byEmail["alice@example.com"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "pw", stored.PasswordHash)

	got, err := auth.GetIdentityFromToken(reg.AccessToken, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, "id-1", got)

	in, err := svc.Login(ctx, "ALICE@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "id-1", in.ID)
	assert.NotEmpty(t, in.AccessToken)
}

func TestUserService_RegisterValidation(t *testing.T) {
	svc := newUserService(t, newFakeManager())

	_, err := svc.Register(context.Background(), "", "pw")
	assert.ErrorIs(t, err, common.ErrInvalidArgument)

	_, err = svc.Register(context.Background(), "a@b.c", "")
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
}

func TestUserService_RegisterDuplicate(t *testing.T) {
	svc := newUserService(t, newFakeManager())
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@b.c", "pw")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "A@B.C", "other")
	assert.ErrorIs(t, err, common.ErrAlreadyExists)
}

func TestUserService_RegisterRepoError(t *testing.T) {
	m := newFakeManager()
	m.users.err = errors.New("db down")
	svc := newUserService(t, m)

	_, err := svc.Register(context.Background(), "a@b.c", "pw")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error creating user")
}

func TestUserService_LoginFailures(t *testing.T) {
	m := newFakeManager()
	svc := newUserService(t, m)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@b.c", "pw")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "a@b.c", "wrong")
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	_, err = svc.Login(ctx, "ghost@b.c", "pw")
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	m.users.err = errors.New("db down")
	_, err = svc.Login(ctx, "a@b.c", "pw")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrUnauthorized)
}
