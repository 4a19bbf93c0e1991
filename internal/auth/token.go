// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskFlow Contributors

package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// Token configuration defaults.
const (
	DefaultTokenAlgorithm = "HS256"
	DefaultTokenTTL       = 30 * time.Minute
)

// TokenConfig holds the signing parameters for bearer tokens. It is built
// once at startup and passed in explicitly; rotating the secret invalidates
// all outstanding tokens.
type TokenConfig struct {
	// SecretKey is the HMAC signing key. Required.
	SecretKey string

	// Algorithm names the JWT signing algorithm. Must be in the HMAC family
	// (HS256, HS384, HS512). Defaults to HS256.
	Algorithm string

	// TTL is the default validity window for issued tokens.
	// Defaults to DefaultTokenTTL.
	TTL time.Duration
}

// TokenService signs and verifies time-limited bearer tokens carrying a
// subject account id. Issuance and verification are pure and stateless.
type TokenService struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption configures a TokenService.
type TokenOption func(*TokenService)

// WithClock overrides the time source, for deterministic expiry tests.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

// NewTokenService creates a TokenService from explicit configuration.
func NewTokenService(cfg TokenConfig, opts ...TokenOption) (*TokenService, error) {
	if cfg.SecretKey == "" {
		return nil, oops.Code("CONFIG_INVALID").Errorf("token secret key is required")
	}

	alg := cfg.Algorithm
	if alg == "" {
		alg = DefaultTokenAlgorithm
	}
	method := jwt.GetSigningMethod(alg)
	if method == nil {
		return nil, oops.Code("CONFIG_INVALID").With("algorithm", alg).Errorf("unknown token algorithm %q", alg)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, oops.Code("CONFIG_INVALID").With("algorithm", alg).Errorf("token algorithm %q is not an HMAC method", alg)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	s := &TokenService{
		secret: []byte(cfg.SecretKey),
		method: method,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TTL returns the default validity window for issued tokens.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for the given subject account id. An optional ttl
// overrides the configured default.
func (s *TokenService) Issue(subjectID int64, ttl ...time.Duration) (string, error) {
	expiry := s.ttl
	if len(ttl) > 0 && ttl[0] > 0 {
		expiry = ttl[0]
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(subjectID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", oops.Code("TOKEN_SIGN_FAILED").
			With("subject", subjectID).
			Wrap(err)
	}
	return signed, nil
}

// Verify checks the token's signature, structure, and expiry, and returns
// the subject account id. Any failure yields ErrInvalidToken.
func (s *TokenService) Verify(tokenString string) (int64, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return 0, oops.Code("INVALID_TOKEN").
			With("reason", err.Error()).
			Wrap(ErrInvalidToken)
	}
	if !parsed.Valid {
		return 0, oops.Code("INVALID_TOKEN").Wrap(ErrInvalidToken)
	}

	subjectID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, oops.Code("INVALID_TOKEN").
			With("reason", "malformed subject claim").
			Wrap(ErrInvalidToken)
	}
	return subjectID, nil
}
