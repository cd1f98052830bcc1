package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

func testConfig() Config {
	return Config{
		SigningKey:    testKey,
		Issuer:        "taskvault-test",
		Audience:      "taskvault-api",
		TokenLifetime: time.Hour,
		ClockSkew:     2 * time.Minute,
	}
}

func newTestService(t *testing.T, cfg Config) *TokenService {
	t.Helper()
	svc, err := NewTokenService(cfg)
	require.NoError(t, err)
	return svc
}

func TestNewTokenService_RejectsShortKey(t *testing.T) {
	cfg := testConfig()
	cfg.SigningKey = "too-short"
	_, err := NewTokenService(cfg)
	assert.Error(t, err)
}

func TestNewTokenService_DefaultLifetime(t *testing.T) {
	cfg := testConfig()
	cfg.TokenLifetime = 0
	svc := newTestService(t, cfg)
	assert.Equal(t, time.Hour, svc.Lifetime())
}

func TestIssueValidate_RoundTrip(t *testing.T) {
	svc := newTestService(t, testConfig())
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	token, err := svc.Issue(42, "alice", issuedAt)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, ok := svc.Validate(token, issuedAt.Add(time.Minute))
	assert.True(t, ok)
	assert.Equal(t, int64(42), userID)
}

func TestValidate_Expired(t *testing.T) {
	cfg := testConfig()
	svc := newTestService(t, cfg)
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	token, err := svc.Issue(7, "bob", issuedAt)
	require.NoError(t, err)

	// Inside lifetime+skew the token still validates.
	_, ok := svc.Validate(token, issuedAt.Add(cfg.TokenLifetime+cfg.ClockSkew-time.Second))
	assert.True(t, ok)

	// Past lifetime+skew it does not.
	_, ok = svc.Validate(token, issuedAt.Add(cfg.TokenLifetime+cfg.ClockSkew+time.Minute))
	assert.False(t, ok)
}

func TestValidate_NotYetValid(t *testing.T) {
	cfg := testConfig()
	svc := newTestService(t, cfg)
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	token, err := svc.Issue(7, "bob", issuedAt)
	require.NoError(t, err)

	_, ok := svc.Validate(token, issuedAt.Add(-cfg.ClockSkew-time.Minute))
	assert.False(t, ok)
}

func TestValidate_WrongKey(t *testing.T) {
	svc := newTestService(t, testConfig())
	otherCfg := testConfig()
	otherCfg.SigningKey = "ffffffffffffffffffffffffffffffff"
	other := newTestService(t, otherCfg)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	token, err := other.Issue(1, "mallory", now)
	require.NoError(t, err)

	_, ok := svc.Validate(token, now)
	assert.False(t, ok)
}

func TestValidate_WrongIssuerOrAudience(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	issuerCfg := testConfig()
	issuerCfg.Issuer = "someone-else"
	wrongIssuer := newTestService(t, issuerCfg)

	audienceCfg := testConfig()
	audienceCfg.Audience = "another-api"
	wrongAudience := newTestService(t, audienceCfg)

	svc := newTestService(t, testConfig())

	tokenWrongIssuer, err := wrongIssuer.Issue(1, "alice", now)
	require.NoError(t, err)
	tokenWrongAudience, err := wrongAudience.Issue(1, "alice", now)
	require.NoError(t, err)

	_, ok := svc.Validate(tokenWrongIssuer, now)
	assert.False(t, ok)
	_, ok = svc.Validate(tokenWrongAudience, now)
	assert.False(t, ok)
}

func TestValidate_Garbage(t *testing.T) {
	svc := newTestService(t, testConfig())
	now := time.Now()

	for _, tokenString := range []string{"", "not-a-token", "a.b.c", "eyJhbGciOiJIUzI1NiJ9..sig"} {
		_, ok := svc.Validate(tokenString, now)
		assert.False(t, ok, "token %q should not validate", tokenString)
	}
}

func TestIssue_FreshTokenIdentifiers(t *testing.T) {
	svc := newTestService(t, testConfig())
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	token1, err := svc.Issue(9, "carol", now)
	require.NoError(t, err)
	token2, err := svc.Issue(9, "carol", now)
	require.NoError(t, err)

	// Same identity and clock still yield distinct tokens via the jti claim.
	assert.NotEqual(t, token1, token2)
}
