// Package services contains server-side business logic. UserService owns the
// credential store: registration, sign-in, profile updates and account
// removal.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/dbx"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/server/auth"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/ownership"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// AuthResult is returned by sign-up and sign-in.
type AuthResult struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      *auth.TokenService
	hasher      auth.PasswordHasher
	cache       ownership.ListCache
	logger      logging.Logger
}

// NewUserService wires the credential store. cache may be nil.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, tokens *auth.TokenService,
	hasher auth.PasswordHasher, cache ownership.ListCache, logger logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		tokens:      tokens,
		hasher:      hasher,
		cache:       cache,
		logger:      logger.With("service", "users"),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register validates input, hashes the password and stores a new user.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = normalizeEmail(email)

	switch {
	case username == "":
		return nil, fmt.Errorf("%w: username is required", common.ErrorInvalidInput)
	case email == "":
		return nil, fmt.Errorf("%w: email is required", common.ErrorInvalidInput)
	case strings.TrimSpace(password) == "":
		return nil, fmt.Errorf("%w: password is required", common.ErrorInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: email is malformed", common.ErrorInvalidInput)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		UserName:     username,
		Email:        email,
		PasswordHash: hash,
	}

	user, err = s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorDuplicateIdentity) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// FindByEmail returns the user registered under email.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByEmail(ctx, normalizeEmail(email))
}

// SignUp registers a user and issues a token for it.
func (s *UserService) SignUp(ctx context.Context, username, email, password string) (*AuthResult, error) {
	user, err := s.Register(ctx, username, email, password)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// SignIn checks the password of the user registered under email. An unknown
// email yields common.ErrorNotFound, a wrong password
// common.ErrorInvalidCredentials.
func (s *UserService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	if normalizeEmail(email) == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrorInvalidInput)
	}

	user, err := s.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := s.hasher.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, common.ErrorInvalidCredentials) {
			return nil, err
		}
		return nil, fmt.Errorf("error verifying password: %w", err)
	}

	return s.issue(user)
}

func (s *UserService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("error issuing token: %w", err)
	}
	return &AuthResult{Token: token, User: user.Public()}, nil
}

// UpdateCredentials changes username and/or password. The password is only
// re-hashed when a non-blank one is supplied; a blank username is ignored.
func (s *UserService) UpdateCredentials(ctx context.Context, userID string, upd models.CredentialsUpdate) (*models.User, error) {
	var userName, hash *string

	if upd.UserName != nil {
		if v := strings.TrimSpace(*upd.UserName); v != "" {
			userName = &v
		}
	}
	if upd.Password != nil && strings.TrimSpace(*upd.Password) != "" {
		h, err := s.hasher.Hash(*upd.Password)
		if err != nil {
			return nil, fmt.Errorf("error hashing password: %w", err)
		}
		hash = &h
	}

	if userName == nil && hash == nil {
		return nil, fmt.Errorf("%w: nothing to update", common.ErrorInvalidInput)
	}

	return s.repomanager.Users(s.db).UpdateCredentials(ctx, userID, userName, hash)
}

// Delete removes the user together with every folder and note it owns.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	var notes, folders int64
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		if notes, err = s.repomanager.Notes(tx).DeleteOwnedBy(ctx, userID); err != nil {
			return fmt.Errorf("error deleting notes: %w", err)
		}
		if folders, err = s.repomanager.Folders(tx).DeleteOwnedBy(ctx, userID); err != nil {
			return fmt.Errorf("error deleting folders: %w", err)
		}
		return s.repomanager.Users(tx).Delete(ctx, userID)
	})
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "user deleted", "user_id", userID, "notes", notes, "folders", folders)

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, userID); err != nil {
			s.logger.Warn(ctx, "list cache invalidate failed", "user_id", userID, "error", err)
		}
	}
	return nil
}
