package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-identity-service/auth"
	"github.com/jrsteele09/go-identity-service/sessions"
	"github.com/jrsteele09/go-identity-service/token"
	"github.com/jrsteele09/go-identity-service/token/keys"
	"github.com/jrsteele09/go-identity-service/users"
	fakeuserrepo "github.com/jrsteele09/go-identity-service/users/repofake"
)

const (
	testIssuer       = "com.testissuer"
	testAudience     = "api"
	testUserID       = "user-1"
	testUserEmail    = "john.doe@example.com"
	testUserName     = "johndoe"
	testUserPassword = "password123"
	testTenantID     = "tenant-1"

	accessExpiry  = 60 * time.Minute
	refreshExpiry = 7 * 24 * time.Hour
)

// testFixture holds all test dependencies. The clock is fixture-controlled:
// advance moves every component's notion of now in lockstep.
type testFixture struct {
	userRepo *fakeuserrepo.FakeUserRepo
	store    *sessions.InMemoryStore
	issuer   *token.Issuer
	verifier *token.Verifier
	manager  *auth.SessionManager
	now      time.Time
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	nowFunc := func() time.Time { return f.now }

	keyPair, err := keys.GenerateRSAKeyPair("test-key-1", 2048)
	require.NoError(t, err)
	signer := keys.NewKeyPairSigner(keyPair)

	f.issuer, err = token.NewIssuer(signer, testIssuer, testAudience,
		token.WithNowTime(nowFunc),
		token.WithTokenExpiry(accessExpiry, refreshExpiry))
	require.NoError(t, err)
	f.verifier = token.NewVerifier(signer)

	f.userRepo = fakeuserrepo.NewFakeUserRepo()
	f.store = sessions.NewInMemoryStore(0, sessions.WithNowTime(nowFunc))
	t.Cleanup(f.store.Close)

	f.manager, err = auth.NewSessionManager(f.userRepo, f.store, f.issuer, auth.WithNowTime(nowFunc))
	require.NoError(t, err)

	return f
}

func (f *testFixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

// createTestUser creates and stores a test user
func (f *testFixture) createTestUser(t *testing.T) {
	t.Helper()

	passwordHash, err := users.HashPassword(testUserPassword)
	require.NoError(t, err)

	err = f.userRepo.Upsert(context.Background(), &users.User{
		ID:           testUserID,
		Email:        testUserEmail,
		Username:     testUserName,
		PasswordHash: passwordHash,
		TenantID:     testTenantID,
		Roles:        []users.RoleType{users.RoleTenantOperator},
		DateJoined:   f.now,
	})
	require.NoError(t, err)
}

func ownerClaims() *token.Claims {
	return &token.Claims{UserID: testUserID, TenantID: testTenantID}
}

// TestLogin_Success tests that login returns a token pair and stores the session
func TestLogin_Success(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t)
	ctx := context.Background()

	record, err := f.manager.Login(ctx, testUserEmail, testUserPassword)
	require.NoError(t, err)
	require.NotEmpty(t, record.AccessToken)
	require.NotEmpty(t, record.RefreshToken)
	require.Equal(t, testUserID, record.UserID)
	require.Equal(t, f.now.Add(accessExpiry), record.AccessTokenExpiry)
	require.Equal(t, f.now.Add(refreshExpiry), record.RefreshTokenExpiry)

	// The access token verifies and carries the principal's identity
	claims, err := f.verifier.ParseExpired(record.AccessToken)
	require.NoError(t, err)
	require.Equal(t, testUserID, claims.UserID)
	require.Equal(t, []string{"tenant_operator"}, claims.Roles)

	// The session is retrievable under its refresh-token key
	stored, err := f.store.Get(ctx, sessions.RefreshTokenKey(record.RefreshToken))
	require.NoError(t, err)
	require.Equal(t, record.AccessToken, stored.AccessToken)
}

// TestLogin_ByUsername tests that the identifier matches username as well as email
func TestLogin_ByUsername(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t)

	record, err := f.manager.Login(context.Background(), testUserName, testUserPassword)
	require.NoError(t, err)
	require.Equal(t, testUserID, record.UserID)
}

// TestLogin_UnknownUser tests that an unknown identifier and a wrong password
// are indistinguishable to the caller
func TestLogin_UnknownUser(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.manager.Login(context.Background(), "nobody@example.com", testUserPassword)
	require.ErrorIs(t, err, auth.InvalidCredentialsErr)
}

// TestLogin_WrongPassword tests the credential check
func TestLogin_WrongPassword(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t)

	_, err := f.manager.Login(context.Background(), testUserEmail, "wrong-password")
	require.ErrorIs(t, err, auth.InvalidCredentialsErr)
}

// TestLogin_EchoesUnexpiredSession tests that a second login returns the
// stored pair unchanged instead of minting a fresh one
func TestLogin_EchoesUnexpiredSession(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t)
	ctx := context.Background()

	first, err := f.manager.Login(ctx, testUserEmail, testUserPassword)
	require.NoError(t, err)

	f.advance(time.Hour)
	second, err := f.manager.Login(ctx, testUserEmail, testUserPassword)
	require.NoError(t, err)

	require.Equal(t, first.AccessToken, second.AccessToken)
	require.Equal(t, first.RefreshToken, second.RefreshToken)
}

// TestLogin_WrongPasswordDespiteCachedSession tests that credential
// verification happens before the cached session is consulted
func TestLogin_WrongPasswordDespiteCachedSession(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t)
	ctx := context.Background()

	_, err := f.manager.Login(ctx, testUserEmail, testUserPassword)
	require.NoError(t, err)

	_, err = f.manager.Login(ctx, testUserEmail, "wrong-password")
	require.ErrorIs(t, err, auth.InvalidCredentialsErr)
}

// TestLogin_MintsNewSessionAfterExpiry tests that an expired session is not echoed
func TestLogin_MintsNewSessionAfterExpiry(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t)
	ctx := context.Background()

	first, err := f.manager.Login(ctx, testUserEmail, testUserPassword)
	require.NoError(t, err)

	f.advance(refreshExpiry + time.Minute)
	second, err := f.manager.Login(ctx, testUserEmail, testUserPassword)
	require.NoError(t, err)

	require.NotEqual(t, first.RefreshToken, second.RefreshToken)
	require.NotEqual(t, first.AccessToken, second.AccessToken)
}

// TestRefresh_SoftServesUnexpiredSession tests that refreshing before the
// recorded expiry returns the stored pair unchanged, repeatedly
func TestRefresh_SoftServesUnexpiredSession(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t)
	ctx := context.Background()

	record, err := f.manager.Login(ctx, testUserEmail, testUserPassword)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		f.advance(time.Hour)
		refreshed, err := f.manager.Refresh(ctx, record.RefreshToken, ownerClaims())
		require.NoError(t, err)
		require.Equal(t, record.AccessToken, refreshed.AccessToken)
		require.Equal(t, record.RefreshToken, refreshed.RefreshToken)
	}
}

// TestRefresh_RotatesAfterExpiry tests single-use rotation: a new pair is
// minted and the old refresh token dies
func TestRefresh_RotatesAfterExpiry(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t)
	ctx := context.Background()

	record, err := f.manager.Login(ctx, testUserEmail, testUserPassword)
	require.NoError(t, err)

	f.advance(refreshExpiry + time.Minute)
	rotated, err := f.manager.Refresh(ctx, record.RefreshToken, ownerClaims())
	require.NoError(t, err)
	require.NotEqual(t, record.RefreshToken, rotated.RefreshToken, "Refresh token should rotate")
	require.NotEqual(t, record.AccessToken, rotated.AccessToken)
	require.Equal(t, f.now.Add(refreshExpiry), rotated.RefreshTokenExpiry)

	// The old refresh token is single-use: it no longer resolves a session
	_, err = f.manager.Refresh(ctx, record.RefreshToken, ownerClaims())
	require.ErrorIs(t, err, auth.SessionNotFoundErr)

	// The new pair soft-serves as usual
	refreshed, err := f.manager.Refresh(ctx, rotated.RefreshToken, ownerClaims())
	require.NoError(t, err)
	require.Equal(t, rotated.RefreshToken, refreshed.RefreshToken)
}

// TestRefresh_UnknownToken tests refreshing with a token nobody issued
func TestRefresh_UnknownToken(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.manager.Refresh(context.Background(), "unknown-refresh-token", ownerClaims())
	require.ErrorIs(t, err, auth.SessionNotFoundErr)
}

// TestRefresh_ExpiredRequiresSubject tests that rotation demands a usable
// caller identity
func TestRefresh_ExpiredRequiresSubject(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t)
	ctx := context.Background()

	record, err := f.manager.Login(ctx, testUserEmail, testUserPassword)
	require.NoError(t, err)

	f.advance(refreshExpiry + time.Minute)
	_, err = f.manager.Refresh(ctx, record.RefreshToken, &token.Claims{})
	require.ErrorIs(t, err, auth.InvalidClaimsErr)
	_, err = f.manager.Refresh(ctx, record.RefreshToken, nil)
	require.ErrorIs(t, err, auth.InvalidClaimsErr)
}

// TestRefresh_ExpiredNonOwner tests that only the session's owner may rotate
// an expired refresh token
func TestRefresh_ExpiredNonOwner(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t)
	ctx := context.Background()

	record, err := f.manager.Login(ctx, testUserEmail, testUserPassword)
	require.NoError(t, err)

	f.advance(refreshExpiry + time.Minute)
	_, err = f.manager.Refresh(ctx, record.RefreshToken, &token.Claims{UserID: "someone-else"})
	require.ErrorIs(t, err, auth.RefreshTokenExpiredErr)

	// The failed attempt must not consume the session
	_, err = f.store.Get(ctx, sessions.RefreshTokenKey(record.RefreshToken))
	require.NoError(t, err)
}

// TestRefresh_ExpiredUserDeleted tests rotation for a principal that no
// longer exists
func TestRefresh_ExpiredUserDeleted(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t)
	ctx := context.Background()

	record, err := f.manager.Login(ctx, testUserEmail, testUserPassword)
	require.NoError(t, err)

	require.NoError(t, f.userRepo.Delete(ctx, testUserID))

	f.advance(refreshExpiry + time.Minute)
	_, err = f.manager.Refresh(ctx, record.RefreshToken, ownerClaims())
	require.ErrorIs(t, err, auth.UserNotFoundErr)
}

// TestRefresh_ConcurrentRotation_SingleWinner tests that of many concurrent
// rotations of the same refresh token exactly one mints a new pair
func TestRefresh_ConcurrentRotation_SingleWinner(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t)
	ctx := context.Background()

	record, err := f.manager.Login(ctx, testUserEmail, testUserPassword)
	require.NoError(t, err)

	f.advance(refreshExpiry + time.Minute)

	const callers = 8
	var wg sync.WaitGroup
	results := make([]*sessions.Record, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.manager.Refresh(ctx, record.RefreshToken, ownerClaims())
		}(i)
	}
	wg.Wait()

	winners := 0
	for i := 0; i < callers; i++ {
		if errs[i] == nil {
			winners++
			require.NotEqual(t, record.RefreshToken, results[i].RefreshToken)
		} else {
			require.ErrorIs(t, errs[i], auth.SessionNotFoundErr)
		}
	}
	require.Equal(t, 1, winners, "Exactly one caller should win the rotation")
}

// TestLogout_Success tests that logout revokes the session
func TestLogout_Success(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t)
	ctx := context.Background()

	record, err := f.manager.Login(ctx, testUserEmail, testUserPassword)
	require.NoError(t, err)

	require.NoError(t, f.manager.Logout(ctx, record.RefreshToken, ownerClaims()))

	// The refresh token no longer resolves a session
	_, err = f.manager.Refresh(ctx, record.RefreshToken, ownerClaims())
	require.ErrorIs(t, err, auth.SessionNotFoundErr)

	// A subsequent login mints a fresh pair rather than echoing the dead one
	next, err := f.manager.Login(ctx, testUserEmail, testUserPassword)
	require.NoError(t, err)
	require.NotEqual(t, record.RefreshToken, next.RefreshToken)
}

// TestLogout_Idempotence tests that a second logout of the same token reports
// the session as gone
func TestLogout_Idempotence(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t)
	ctx := context.Background()

	record, err := f.manager.Login(ctx, testUserEmail, testUserPassword)
	require.NoError(t, err)

	require.NoError(t, f.manager.Logout(ctx, record.RefreshToken, ownerClaims()))
	err = f.manager.Logout(ctx, record.RefreshToken, ownerClaims())
	require.ErrorIs(t, err, auth.SessionNotFoundErr)
}

// TestLogout_RequiresSubject tests claim validation on logout
func TestLogout_RequiresSubject(t *testing.T) {
	f := setupTestFixture(t)

	err := f.manager.Logout(context.Background(), "some-refresh-token", &token.Claims{})
	require.ErrorIs(t, err, auth.InvalidClaimsErr)
}

// TestWhoAmI_Success tests the profile projection
func TestWhoAmI_Success(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t)

	profile, err := f.manager.WhoAmI(context.Background(), ownerClaims())
	require.NoError(t, err)
	require.Equal(t, testUserID, profile.ID)
	require.Equal(t, testUserEmail, profile.Email)
	require.Equal(t, testUserName, profile.Username)
	require.Equal(t, testTenantID, profile.TenantID)
	require.Equal(t, []string{"tenant_operator"}, profile.Roles)
}

// TestWhoAmI_ServesCachedProjection tests that the cached profile survives
// the user disappearing from the repository
func TestWhoAmI_ServesCachedProjection(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t)
	ctx := context.Background()

	_, err := f.manager.WhoAmI(ctx, ownerClaims())
	require.NoError(t, err)

	require.NoError(t, f.userRepo.Delete(ctx, testUserID))

	profile, err := f.manager.WhoAmI(ctx, ownerClaims())
	require.NoError(t, err)
	require.Equal(t, testUserID, profile.ID)
}

// TestWhoAmI_UnknownUser tests projection for a principal that does not exist
func TestWhoAmI_UnknownUser(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.manager.WhoAmI(context.Background(), &token.Claims{UserID: "ghost"})
	require.ErrorIs(t, err, auth.UserNotFoundErr)
}

// TestWhoAmI_RequiresSubject tests claim validation on the projection
func TestWhoAmI_RequiresSubject(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.manager.WhoAmI(context.Background(), nil)
	require.ErrorIs(t, err, auth.InvalidClaimsErr)
}

// TestNewSessionManager_MissingDependencies tests constructor validation
func TestNewSessionManager_MissingDependencies(t *testing.T) {
	f := setupTestFixture(t)

	tests := []struct {
		name      string
		userRepo  users.Repo
		store     sessions.Store
		issuer    *token.Issuer
		expectErr string
	}{
		{
			name:      "missing user repo",
			store:     f.store,
			issuer:    f.issuer,
			expectErr: "user repo is required",
		},
		{
			name:      "missing session store",
			userRepo:  f.userRepo,
			issuer:    f.issuer,
			expectErr: "session store is required",
		},
		{
			name:      "missing token issuer",
			userRepo:  f.userRepo,
			store:     f.store,
			expectErr: "token issuer is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.NewSessionManager(tt.userRepo, tt.store, tt.issuer)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.expectErr)
		})
	}
}
