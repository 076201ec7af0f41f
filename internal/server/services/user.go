// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login and identity lookup.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/imagevault/internal/common"
	"github.com/dmitrijs2005/imagevault/internal/cryptox"
	"github.com/dmitrijs2005/imagevault/internal/server/auth"
	"github.com/dmitrijs2005/imagevault/internal/server/models"
	"github.com/dmitrijs2005/imagevault/internal/server/repositories/repomanager"
)

const minPasswordLength = 4

// LoginResult is the sanitized user plus a fresh token pair.
type LoginResult struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
}

// UserService provides authentication-related operations:
// - Register: create users with a hashed password
// - Login: verify credentials, mint tokens, persist the refresh token
// - GetByID: resolve the caller of an authenticated request
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	issuer      *auth.Issuer
}

// NewUserService constructs a UserService using repositories and a token issuer.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, issuer *auth.Issuer) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		issuer:      issuer,
	}
}

// Register creates a new user. The email is trimmed and lowercased before
// the uniqueness check and storage.
func (s *UserService) Register(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return nil, common.NewValidationError("email and password are required")
	}
	if !validEmail(email) {
		return nil, common.NewValidationError("invalid email address")
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return nil, common.NewValidationError(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	repo := s.repomanager.Users(s.db)

	_, err := repo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, common.ErrorAlreadyExists
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	u, err := repo.Create(ctx, &models.User{Email: email, PasswordHash: hash})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return sanitize(u), nil
}

// Login verifies the password and, on success, issues a token pair and
// overwrites the stored refresh token.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, common.NewValidationError("email and password are required")
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	if !cryptox.VerifyPassword(password, user.PasswordHash) {
		return nil, common.ErrorUnauthorized
	}

	pair, err := s.issuer.IssuePair(user.ID)
	if err != nil {
		return nil, fmt.Errorf("error issuing tokens: %w", err)
	}

	if err := repo.UpdateRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}

	return &LoginResult{
		User:         sanitize(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// GetByID returns the sanitized user or common.ErrorNotFound.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	if !isUUID(id) {
		return nil, common.ErrorNotFound
	}
	u, err := s.repomanager.Users(s.db).GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return sanitize(u), nil
}

// --- helpers below ---

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validEmail accepts a bare address only ("a@b.c", not "A <a@b.c>").
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func sanitize(u *models.User) *models.User {
	return &models.User{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
