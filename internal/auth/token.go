package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// MinKeyLength is the shortest signing key accepted. HS256 with a shorter
// key would undercut the hash itself.
const MinKeyLength = 32

// Config mirrors config.AuthConfig but avoids importing the config package here.
type Config struct {
	SigningKey    string
	Issuer        string
	Audience      string
	TokenLifetime time.Duration
	ClockSkew     time.Duration
}

// Claims is the claim set embedded in every issued token.
type Claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// TokenService mints and validates HS256 bearer tokens. Both sides run in
// this process, so a symmetric key suffices. Validation takes the current
// time as a parameter so expiry boundaries are testable.
type TokenService struct {
	key      []byte
	issuer   string
	audience string
	lifetime time.Duration
	skew     time.Duration
}

// NewTokenService builds a TokenService from configuration.
func NewTokenService(cfg Config) (*TokenService, error) {
	if len(cfg.SigningKey) < MinKeyLength {
		return nil, errors.New("auth: signing key must be at least 32 bytes")
	}
	lifetime := cfg.TokenLifetime
	if lifetime <= 0 {
		lifetime = time.Hour
	}
	skew := cfg.ClockSkew
	if skew < 0 {
		skew = 0
	}
	return &TokenService{
		key:      []byte(cfg.SigningKey),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		lifetime: lifetime,
		skew:     skew,
	}, nil
}

// Lifetime reports the configured token lifetime.
func (s *TokenService) Lifetime() time.Duration {
	return s.lifetime
}

// Issue signs a token for the given identity, valid from now until
// now+lifetime. The jti claim is a fresh random identifier.
func (s *TokenService) Issue(userID int64, username string, now time.Time) (string, error) {
	claims := Claims{
		Name: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

// Validate checks the signature, issuer, audience and time window of a
// presented token and extracts the subject. Every failure collapses into a
// single false result: callers never learn why a token was rejected.
func (s *TokenService) Validate(tokenString string, now time.Time) (int64, bool) {
	var claims Claims
	token, err := jwt.ParseWithClaims(
		tokenString,
		&claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return s.key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		// Time-based claims are checked below against the caller's clock.
		jwt.WithoutClaimsValidation(),
	)
	if err != nil || !token.Valid {
		return 0, false
	}

	if claims.Issuer != s.issuer {
		return 0, false
	}
	if !containsAudience(claims.Audience, s.audience) {
		return 0, false
	}
	if claims.ExpiresAt == nil || now.After(claims.ExpiresAt.Add(s.skew)) {
		return 0, false
	}
	if claims.IssuedAt != nil && now.Before(claims.IssuedAt.Add(-s.skew)) {
		return 0, false
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, false
	}
	return userID, true
}

func containsAudience(aud jwt.ClaimStrings, want string) bool {
	for _, a := range aud {
		if a == want {
			return true
		}
	}
	return false
}
