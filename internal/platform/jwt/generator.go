package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenExpired is returned when the token's exp is in the past.
	ErrTokenExpired = errors.New("token is expired")
	// ErrTokenInvalid covers malformed tokens, bad signatures and wrong issuers.
	ErrTokenInvalid = errors.New("token is invalid")
)

// Generator defines the interface for JWT token generation and verification.
type Generator interface {
	// GenerateToken creates a signed JWT token for the given subject.
	GenerateToken(subject string) (string, error)
	// ParseSubject verifies the token and returns its subject.
	ParseSubject(token string) (string, error)
}

// Option configures a generator.
type Option func(*generator)

// WithTimeFunc replaces the clock used for iat, exp and validation.
func WithTimeFunc(now func() time.Time) Option {
	return func(g *generator) { g.now = now }
}

// generator implements the Generator interface with HS256.
type generator struct {
	secret     []byte
	expiration time.Duration
	issuer     string
	now        func() time.Time
}

// NewGenerator creates a new JWT generator with the provided secret, expiration duration and issuer.
func NewGenerator(secret string, expiration time.Duration, issuer string, opts ...Option) *generator {
	g := &generator{
		secret:     []byte(secret),
		expiration: expiration,
		issuer:     issuer,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateToken creates a signed JWT token with registered claims only.
func (g *generator) GenerateToken(subject string) (string, error) {
	if subject == "" {
		return "", errors.New("subject is empty")
	}
	now := g.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    g.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(g.expiration)),
		ID:        uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseSubject verifies signature, algorithm, issuer and expiry, then returns sub.
func (g *generator) ParseSubject(tokenStr string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(g.now),
	}
	if g.issuer != "" {
		opts = append(opts, jwt.WithIssuer(g.issuer))
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (any, error) {
		return g.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return "", fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}
	return claims.Subject, nil
}
