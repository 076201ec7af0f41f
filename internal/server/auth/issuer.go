package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/imagevault/internal/common"
)

const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// TokenPair is the result of a successful login.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Issuer signs access and refresh tokens with distinct secrets and lifetimes.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewIssuer builds an Issuer. Non-positive TTLs fall back to the defaults.
func NewIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Issuer {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (i *Issuer) AccessTTL() time.Duration  { return i.accessTTL }
func (i *Issuer) RefreshTTL() time.Duration { return i.refreshTTL }

func (i *Issuer) IssueAccess(userID string) (string, error) {
	return GenerateToken(userID, i.accessSecret, i.accessTTL)
}

func (i *Issuer) IssueRefresh(userID string) (string, error) {
	return GenerateToken(userID, i.refreshSecret, i.refreshTTL)
}

// IssuePair returns a fresh access/refresh pair for userID.
func (i *Issuer) IssuePair(userID string) (TokenPair, error) {
	access, err := i.IssueAccess(userID)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := i.IssueRefresh(userID)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccess returns the user id carried by an access token.
func (i *Issuer) VerifyAccess(token string) (string, error) {
	return GetUserIDFromToken(token, i.accessSecret)
}

// VerifyRefresh returns the user id carried by a refresh token. Expiry is
// reported as common.ErrRefreshTokenExpired.
func (i *Issuer) VerifyRefresh(token string) (string, error) {
	userID, err := GetUserIDFromToken(token, i.refreshSecret)
	if errors.Is(err, common.ErrTokenExpired) {
		return "", common.ErrRefreshTokenExpired
	}
	return userID, err
}
