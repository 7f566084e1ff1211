// Package services contains server-side business logic. UserService
// registers accounts, verifies credentials and issues access tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/signmanager/internal/common"
	"github.com/dmitrijs2005/signmanager/internal/server/auth"
	"github.com/dmitrijs2005/signmanager/internal/server/models"
	"github.com/dmitrijs2005/signmanager/internal/server/passwords"
	"github.com/dmitrijs2005/signmanager/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

type tokenIssuer interface {
	Issue(subject string, ttl time.Duration) (auth.IssuedToken, error)
}

// AccessToken is what a successful login hands back to the caller.
type AccessToken struct {
	Token     string
	TokenType string
	ExpiresAt time.Time
}

type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	tokens                      tokenIssuer
	hasher                      passwords.Hasher
	accessTokenValidityDuration time.Duration
	now                         func() time.Time

	// verified against when the email is unknown so both login failures
	// cost one bcrypt comparison
	dummyHash string
}

// NewUserService wires the service. It hashes one random secret up front to
// use for unknown-email logins.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, tokens tokenIssuer, hasher passwords.Hasher, ttl time.Duration) (*UserService, error) {
	secret, err := common.MakeRandHexString(16)
	if err != nil {
		return nil, fmt.Errorf("%w: dummy secret: %w", common.ErrorInternal, err)
	}
	dummy, err := hasher.Hash(secret)
	if err != nil {
		return nil, fmt.Errorf("%w: dummy hash: %w", common.ErrorInternal, err)
	}

	return &UserService{
		db:                          db,
		repomanager:                 m,
		tokens:                      tokens,
		hasher:                      hasher,
		accessTokenValidityDuration: ttl,
		now:                         time.Now,
		dummyHash:                   dummy,
	}, nil
}

// Register creates a credential record. An email that is already taken
// yields common.ErrorDuplicateIdentifier and nothing is written.
func (s *UserService) Register(ctx context.Context, email, displayName, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrorValidation)
	}

	repo := s.repomanager.Users(s.db)

	exists, err := repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: check email: %w", common.ErrorInternal, err)
	}
	if exists {
		return nil, common.ErrorDuplicateIdentifier
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, passwords.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: %w", common.ErrorValidation, err)
		}
		return nil, fmt.Errorf("%w: hash password: %w", common.ErrorInternal, err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		DisplayName:  displayName,
		CreatedAt:    s.now().UTC().Truncate(time.Microsecond),
	}

	u, err := repo.Create(ctx, user)
	if err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorDuplicateIdentifier
		}
		return nil, fmt.Errorf("%w: create user: %w", common.ErrorInternal, err)
	}
	return u, nil
}

// Login checks the password and issues an access token for the email.
// Unknown email and wrong password return the same error value.
func (s *UserService) Login(ctx context.Context, email, password string) (*AccessToken, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_, _ = s.hasher.Verify(password, s.dummyHash)
			return nil, common.ErrorInvalidCredentials
		}
		return nil, fmt.Errorf("%w: find user: %w", common.ErrorInternal, err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("%w: verify password: %w", common.ErrorInternal, err)
	}
	if !ok {
		return nil, common.ErrorInvalidCredentials
	}

	issued, err := s.tokens.Issue(user.Email, s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("%w: issue token: %w", common.ErrorInternal, err)
	}

	return &AccessToken{
		Token:     issued.Value,
		TokenType: issued.Scheme,
		ExpiresAt: issued.ExpiresAt,
	}, nil
}

// Profile returns the record of an authenticated subject.
func (s *UserService) Profile(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: find user: %w", common.ErrorInternal, err)
	}
	return user, nil
}
