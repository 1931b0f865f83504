package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicer/internal/apperr"
)

// Audiences keep a token issued for one purpose from being accepted for
// another, even when the secrets are shared.
const (
	AudienceBusiness = "business"
	AudienceClient   = "client-portal"
	AudienceApproval = "client-approval"
)

var ErrInvalidToken = &apperr.Error{Kind: apperr.ErrUnauthorized, Message: "Invalid or expired token"}

type Issuer struct {
	secret   []byte
	ttl      time.Duration
	audience string
	now      func() time.Time
}

func NewIssuer(secret string, ttl time.Duration, audience string) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, audience: audience, now: time.Now}
}

// WithClock replaces the time source used for issuing and validating.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

func (i *Issuer) Issue(subject uuid.UUID) (string, error) {
	now := i.now()

	claims := jwt.RegisteredClaims{
		Subject:   subject.String(),
		Audience:  jwt.ClaimStrings{i.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}

// Parse verifies raw and returns its subject.
func (i *Issuer) Parse(raw string) (uuid.UUID, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(i.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)

	var claims jwt.RegisteredClaims

	_, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	})
	if err != nil {
		return uuid.Nil, errors.Join(ErrInvalidToken, err)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	return id, nil
}
