// Package auth issues and verifies admin bearer tokens.
//
// Tokens are HS256 JWTs with an expiry and a unique id; logging out records
// the id as revoked until the token would have expired.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

const (
	issuer  = "treasurehunt"
	subject = "admin"
)

// Revoker persists revoked token ids.
type Revoker interface {
	RevokeToken(ctx context.Context, id string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, id string) (bool, error)
}

type Token struct {
	Value     string
	ID        string
	ExpiresAt time.Time
}

type Issuer struct {
	secret       []byte
	passwordHash []byte
	ttl          time.Duration
	revoker      Revoker
	now          func() time.Time
}

func NewIssuer(secret string, passwordHash []byte, ttl time.Duration, revoker Revoker) *Issuer {
	return &Issuer{
		secret:       []byte(secret),
		passwordHash: passwordHash,
		ttl:          ttl,
		revoker:      revoker,
		now:          time.Now,
	}
}

// HashPassword bcrypt-hashes a plain admin password.
func HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// Login checks password and issues a fresh token.
func (i *Issuer) Login(password string) (Token, error) {
	if password == "" || bcrypt.CompareHashAndPassword(i.passwordHash, []byte(password)) != nil {
		return Token{}, ErrInvalidCredentials
	}

	now := i.now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return Token{}, fmt.Errorf("signing token: %w", err)
	}
	return Token{Value: signed, ID: claims.ID, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Verify parses raw and checks signature, expiry and revocation.
func (i *Issuer) Verify(ctx context.Context, raw string) (Token, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithSubject(subject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return Token{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	revoked, err := i.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return Token{}, fmt.Errorf("checking revocation: %w", err)
	}
	if revoked {
		return Token{}, fmt.Errorf("%w: revoked", ErrInvalidToken)
	}
	return Token{Value: raw, ID: claims.ID, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Revoke invalidates a verified token.
func (i *Issuer) Revoke(ctx context.Context, t Token) error {
	return i.revoker.RevokeToken(ctx, t.ID, t.ExpiresAt)
}
