package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/trailkeeper/internal/client/client"
	"github.com/dmitrijs2005/trailkeeper/internal/client/connectivity"
	"github.com/dmitrijs2005/trailkeeper/internal/client/models"
	"github.com/dmitrijs2005/trailkeeper/internal/common"
	"github.com/dmitrijs2005/trailkeeper/internal/cryptox"
	"github.com/dmitrijs2005/trailkeeper/internal/dbx"
	"github.com/dmitrijs2005/trailkeeper/internal/logging"
	"github.com/dmitrijs2005/trailkeeper/internal/timex"
)

// Authenticator is the identity part of the remote store.
type Authenticator interface {
	Register(ctx context.Context, email, password string) (client.Identity, error)
	Login(ctx context.Context, email, password string) (client.Identity, error)
	SetAccessToken(token string)
}

// SessionService manages local accounts and the signed in identity.
type SessionService struct {
	db     *sql.DB
	repos  *client.Repositories
	auth   Authenticator
	gate   connectivity.Gate
	logger logging.Logger
}

// NewSessionService builds the service. auth may be nil for offline-only
// use.
func NewSessionService(db *sql.DB, auth Authenticator, gate connectivity.Gate, logger logging.Logger) *SessionService {
	return &SessionService{
		db:     db,
		repos:  client.NewRepositories(db),
		auth:   auth,
		gate:   gate,
		logger: logger.With("module", "session"),
	}
}

func (s *SessionService) remoteReachable() bool {
	return s.auth != nil && s.gate.Online()
}

// Register creates a local account. When the server is reachable the
// identity is registered remotely too and linked to the account; an
// unreachable server leaves the account local until the next sign in.
func (s *SessionService) Register(ctx context.Context, name, email, phone string, password []byte) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(password) == 0 {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrInvalidArgument)
	}
	if _, err := s.repos.Users.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("user %s: %w", email, common.ErrAlreadyExists)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := timex.NowMilli()
	u := &models.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Phone:        strings.TrimSpace(phone),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if s.remoteReachable() {
		ident, err := s.auth.Register(ctx, email, string(password))
		switch {
		case err == nil:
			u.FirebaseUID = &ident.ID
		case errors.Is(err, client.ErrUnavailable):
			s.logger.Warn(ctx, "server unavailable, account stays local", "email", email)
		default:
			return nil, fmt.Errorf("remote register: %w", err)
		}
	}

	if err := s.repos.Users.Upsert(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// SignIn verifies the credentials, links the remote identity when the
// server is reachable, adopts hikes recorded anonymously and saves the
// session.
func (s *SessionService) SignIn(ctx context.Context, email string, password []byte) (models.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.repos.Users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return models.Session{}, err
	}
	if u != nil {
		ok, err := cryptox.VerifyPassword(password, u.PasswordHash)
		if err != nil {
			return models.Session{}, err
		}
		if !ok {
			return models.Session{}, client.ErrUnauthorized
		}
	}

	var ident client.Identity
	if s.remoteReachable() {
		ident, err = s.auth.Login(ctx, email, string(password))
		switch {
		case err == nil:
		case errors.Is(err, client.ErrUnavailable) && u != nil:
			s.logger.Warn(ctx, "server unavailable, signing in locally", "email", email)
		default:
			return models.Session{}, fmt.Errorf("remote login: %w", err)
		}
	}

	now := timex.NowMilli()
	if u == nil {
		if ident.ID == "" {
			return models.Session{}, client.ErrLocalDataNotAvailable
		}
		hash, err := cryptox.HashPassword(password)
		if err != nil {
			return models.Session{}, err
		}
		u = &models.User{Name: email, Email: email, PasswordHash: hash, FirebaseUID: &ident.ID, CreatedAt: now, UpdatedAt: now}
		if err := s.repos.Users.Upsert(ctx, u); err != nil {
			return models.Session{}, err
		}
	} else if ident.ID != "" && (u.FirebaseUID == nil || *u.FirebaseUID != ident.ID) {
		if err := s.repos.Users.SetFirebaseUID(ctx, u.ID, ident.ID, now); err != nil {
			return models.Session{}, err
		}
		u.FirebaseUID = &ident.ID
	}

	sess := models.Session{UserID: u.ID, AccessToken: ident.AccessToken}
	if u.FirebaseUID != nil {
		sess.IdentityID = *u.FirebaseUID
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repos := client.NewRepositories(tx)
		if err := repos.Hikes.MigrateToUser(ctx, u.ID, now); err != nil {
			return err
		}
		return repos.Session.Save(ctx, sess)
	})
	if err != nil {
		return models.Session{}, fmt.Errorf("save session: %w", err)
	}

	if s.auth != nil && sess.AccessToken != "" {
		s.auth.SetAccessToken(sess.AccessToken)
	}
	s.logger.Info(ctx, "signed in", "user", u.ID, "linked", sess.IdentityID != "")
	return sess, nil
}

// SignOut clears the session and wipes local hikes and observations,
// including rows that were never pushed.
func (s *SessionService) SignOut(ctx context.Context) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repos := client.NewRepositories(tx)
		if err := repos.Hikes.HardDeleteAll(ctx); err != nil {
			return err
		}
		return repos.Session.Clear(ctx)
	})
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	if s.auth != nil {
		s.auth.SetAccessToken("")
	}
	s.logger.Info(ctx, "signed out")
	return nil
}

// Current returns the saved session and its user. The user is nil when
// nobody is signed in.
func (s *SessionService) Current(ctx context.Context) (models.Session, *models.User, error) {
	sess, err := s.repos.Session.Load(ctx)
	if err != nil {
		return models.Session{}, nil, err
	}
	if sess.UserID == 0 {
		return sess, nil, nil
	}
	u, err := s.repos.Users.GetByID(ctx, sess.UserID)
	if err != nil {
		return sess, nil, err
	}
	return sess, u, nil
}

// Restore reapplies the saved access token to the transport at startup.
func (s *SessionService) Restore(ctx context.Context) (models.Session, error) {
	sess, err := s.repos.Session.Load(ctx)
	if err != nil {
		return models.Session{}, err
	}
	if s.auth != nil && sess.AccessToken != "" {
		s.auth.SetAccessToken(sess.AccessToken)
	}
	return sess, nil
}
