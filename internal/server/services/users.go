// Package services contains server-side business logic: accounts and
// tokens, document storage, semantic search and picture presigning.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/trailkeeper/internal/common"
	"github.com/dmitrijs2005/trailkeeper/internal/cryptox"
	"github.com/dmitrijs2005/trailkeeper/internal/server/auth"
	"github.com/dmitrijs2005/trailkeeper/internal/server/config"
	"github.com/dmitrijs2005/trailkeeper/internal/server/models"
	"github.com/dmitrijs2005/trailkeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// Identity is returned by Register and Login.
type Identity struct {
	ID          string
	AccessToken string
}

// newIdentityID is a seam for tests.
var newIdentityID = uuid.NewString

// UserService provides authentication-related operations:
// - Register: create users and mint a token
// - Login: verify credentials and mint a token
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user and returns its identity. A taken email yields
// common.ErrAlreadyExists.
func (s *UserService) Register(ctx context.Context, email, password string) (*Identity, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrInvalidArgument)
	}

	hash, err := cryptox.HashPassword([]byte(password))
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	repo := s.repomanager.Users(s.db)
	u, err := repo.Create(ctx, &models.User{ID: newIdentityID(), Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return s.issue(u.ID)
}

// Login verifies the password and returns the identity with a fresh token.
// Unknown emails and wrong passwords both yield common.ErrUnauthorized.
func (s *UserService) Login(ctx context.Context, email, password string) (*Identity, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	ok, err := cryptox.VerifyPassword([]byte(password), user.PasswordHash)
	if err != nil || !ok {
		return nil, common.ErrUnauthorized
	}
	return s.issue(user.ID)
}

func (s *UserService) issue(identityID string) (*Identity, error) {
	token, err := auth.GenerateToken(identityID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &Identity{ID: identityID, AccessToken: token}, nil
}
