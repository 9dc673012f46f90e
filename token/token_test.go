package token_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-identity-service/token"
	"github.com/jrsteele09/go-identity-service/token/keys"
	"github.com/jrsteele09/go-identity-service/users"
)

const (
	testIssuer   = "com.testissuer"
	testAudience = "api"
)

func newTestSigner(t *testing.T) keys.Signer {
	t.Helper()
	keyPair, err := keys.GenerateRSAKeyPair("test-key-1", 2048)
	require.NoError(t, err)
	return keys.NewKeyPairSigner(keyPair)
}

func testUser() *users.User {
	return &users.User{
		ID:       "user-1",
		Email:    "john.doe@example.com",
		Username: "johndoe",
		Phone:    "+15551234567",
		TenantID: "tenant-1",
		Roles:    []users.RoleType{users.RoleTenantAdmin, users.RoleTenantOperator},
	}
}

// TestAccessToken_ClaimsRoundTrip tests that an issued access token carries
// the principal's identity and verifies cleanly
func TestAccessToken_ClaimsRoundTrip(t *testing.T) {
	signer := newTestSigner(t)
	issuer, err := token.NewIssuer(signer, testIssuer, testAudience)
	require.NoError(t, err)

	issued, err := issuer.AccessToken(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, issued.Value)
	require.WithinDuration(t, time.Now().Add(issuer.AccessTokenExpiry()), issued.ExpiresAt, 5*time.Second)

	claims, err := token.NewVerifier(signer).Parse(issued.Value)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, "john.doe@example.com", claims.Email)
	require.Equal(t, "johndoe", claims.Username)
	require.Equal(t, "+15551234567", claims.Phone)
	require.Equal(t, "tenant-1", claims.TenantID)
	require.Equal(t, []string{"tenant_admin", "tenant_operator"}, claims.Roles)
	require.Equal(t, testIssuer, claims.Issuer)
	require.Equal(t, testAudience, claims.Audience)
	require.NotEmpty(t, claims.JTI)
	require.True(t, claims.HasSubject())
}

// TestAccessToken_OmitsEmptyPhone tests that the phone claim is absent for
// users without a phone number
func TestAccessToken_OmitsEmptyPhone(t *testing.T) {
	signer := newTestSigner(t)
	issuer, err := token.NewIssuer(signer, testIssuer, testAudience)
	require.NoError(t, err)

	user := testUser()
	user.Phone = ""
	issued, err := issuer.AccessToken(user)
	require.NoError(t, err)

	claims, err := token.NewVerifier(signer).Parse(issued.Value)
	require.NoError(t, err)
	require.Empty(t, claims.Phone)
}

// TestAccessToken_UniqueJTI tests that consecutive tokens get distinct ids
func TestAccessToken_UniqueJTI(t *testing.T) {
	signer := newTestSigner(t)
	issuer, err := token.NewIssuer(signer, testIssuer, testAudience)
	require.NoError(t, err)
	verifier := token.NewVerifier(signer)

	first, err := issuer.AccessToken(testUser())
	require.NoError(t, err)
	second, err := issuer.AccessToken(testUser())
	require.NoError(t, err)

	firstClaims, err := verifier.Parse(first.Value)
	require.NoError(t, err)
	secondClaims, err := verifier.Parse(second.Value)
	require.NoError(t, err)
	require.NotEqual(t, firstClaims.JTI, secondClaims.JTI)
}

// TestParse_ExpiredToken tests that Parse rejects a lapsed token while
// ParseExpired still accepts it with intact claims
func TestParse_ExpiredToken(t *testing.T) {
	signer := newTestSigner(t)
	pastTime := time.Now().Add(-2 * time.Hour)
	issuer, err := token.NewIssuer(signer, testIssuer, testAudience,
		token.WithNowTime(func() time.Time { return pastTime }))
	require.NoError(t, err)

	issued, err := issuer.AccessToken(testUser())
	require.NoError(t, err)

	verifier := token.NewVerifier(signer)

	_, err = verifier.Parse(issued.Value)
	require.ErrorIs(t, err, token.ErrInvalidToken)

	claims, err := verifier.ParseExpired(issued.Value)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.True(t, claims.ExpiresAt.Before(time.Now()))
}

// TestParse_WrongKey tests that a token signed elsewhere fails verification
func TestParse_WrongKey(t *testing.T) {
	issuingSigner := newTestSigner(t)
	issuer, err := token.NewIssuer(issuingSigner, testIssuer, testAudience)
	require.NoError(t, err)

	issued, err := issuer.AccessToken(testUser())
	require.NoError(t, err)

	verifier := token.NewVerifier(newTestSigner(t))
	_, err = verifier.Parse(issued.Value)
	require.ErrorIs(t, err, token.ErrInvalidToken)
	_, err = verifier.ParseExpired(issued.Value)
	require.ErrorIs(t, err, token.ErrInvalidToken)
}

// TestParse_GarbageInput tests malformed token strings
func TestParse_GarbageInput(t *testing.T) {
	verifier := token.NewVerifier(newTestSigner(t))

	for _, rawToken := range []string{"", "   ", "not-a-jwt", "a.b.c"} {
		_, err := verifier.Parse(rawToken)
		require.ErrorIs(t, err, token.ErrInvalidToken)
		_, err = verifier.ParseExpired(rawToken)
		require.ErrorIs(t, err, token.ErrInvalidToken)
	}
}

// TestParse_MissingSubject tests that a signed token without a sub claim is
// rejected even though its signature is valid
func TestParse_MissingSubject(t *testing.T) {
	signer := newTestSigner(t)
	signedToken, err := signer.Sign(jwt.MapClaims{"email": "john.doe@example.com"})
	require.NoError(t, err)

	_, err = token.NewVerifier(signer).Parse(signedToken)
	require.ErrorIs(t, err, token.ErrInvalidToken)
}

// TestRefreshToken_Opaque tests refresh token generation
func TestRefreshToken_Opaque(t *testing.T) {
	signer := newTestSigner(t)
	fixedTime := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	issuer, err := token.NewIssuer(signer, testIssuer, testAudience,
		token.WithNowTime(func() time.Time { return fixedTime }))
	require.NoError(t, err)

	first, err := issuer.RefreshToken()
	require.NoError(t, err)
	second, err := issuer.RefreshToken()
	require.NoError(t, err)

	require.NotEqual(t, first.Value, second.Value, "Refresh tokens must be unique")
	require.GreaterOrEqual(t, len(first.Value), 64)
	require.Equal(t, fixedTime.Add(issuer.RefreshTokenExpiry()), first.ExpiresAt)

	// Opaque handle, not a JWT
	_, err = token.NewVerifier(signer).Parse(first.Value)
	require.ErrorIs(t, err, token.ErrInvalidToken)
}

// TestWithTokenExpiry tests lifetime overrides, ignoring non-positive values
func TestWithTokenExpiry(t *testing.T) {
	signer := newTestSigner(t)

	issuer, err := token.NewIssuer(signer, testIssuer, testAudience,
		token.WithTokenExpiry(15*time.Minute, 24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, 15*time.Minute, issuer.AccessTokenExpiry())
	require.Equal(t, 24*time.Hour, issuer.RefreshTokenExpiry())

	issuer, err = token.NewIssuer(signer, testIssuer, testAudience,
		token.WithTokenExpiry(0, -time.Hour))
	require.NoError(t, err)
	require.Equal(t, 60*time.Minute, issuer.AccessTokenExpiry())
	require.Equal(t, 7*24*time.Hour, issuer.RefreshTokenExpiry())
}

// TestNewIssuer_RequiresSigner tests dependency validation
func TestNewIssuer_RequiresSigner(t *testing.T) {
	_, err := token.NewIssuer(nil, testIssuer, testAudience)
	require.Error(t, err)
	require.Contains(t, err.Error(), "signer is required")
}
