package auth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jrsteele09/go-identity-service/sessions"
	"github.com/jrsteele09/go-identity-service/token"
	"github.com/jrsteele09/go-identity-service/users"
	"github.com/pkg/errors"
)

// whoAmICacheExpiry bounds how long a cached profile projection can lag
// behind the user repository
const whoAmICacheExpiry = 60 * time.Minute

// Profile is the caller-facing projection of a principal
type Profile struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	Username string   `json:"username"`
	Phone    string   `json:"phone,omitempty"`
	TenantID string   `json:"tenant_id"`
	Roles    []string `json:"roles"`
}

// SessionManager orchestrates the Login, Refresh, Logout, and WhoAmI
// protocols on top of the token issuer, the session store, and the user
// repository. It only ever reads principals; their lifecycle belongs to the
// repository.
type SessionManager struct {
	userRepo     users.Repo
	store        sessions.Store
	issuer       *token.Issuer
	refreshLocks *keyedMutex
	nowTime      func() time.Time
}

// SessionManagerOption defines a function type to modify the SessionManager instance
type SessionManagerOption func(*SessionManager)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) SessionManagerOption {
	return func(sm *SessionManager) {
		sm.nowTime = nowFunc
	}
}

// NewSessionManager initializes a new SessionManager with required dependencies
func NewSessionManager(userRepo users.Repo, store sessions.Store, issuer *token.Issuer, options ...SessionManagerOption) (*SessionManager, error) {
	if userRepo == nil {
		return nil, errors.New("[NewSessionManager] user repo is required")
	}
	if store == nil {
		return nil, errors.New("[NewSessionManager] session store is required")
	}
	if issuer == nil {
		return nil, errors.New("[NewSessionManager] token issuer is required")
	}

	sessionManager := &SessionManager{
		userRepo:     userRepo,
		store:        store,
		issuer:       issuer,
		refreshLocks: newKeyedMutex(),
		nowTime:      time.Now,
	}

	for _, opt := range options {
		opt(sessionManager)
	}

	return sessionManager, nil
}

// Login authenticates the identifier/password pair and returns the session's
// token pair. An unexpired session for the same identifier is echoed back
// unchanged instead of minting a fresh pair.
func (sm *SessionManager) Login(ctx context.Context, identifier, password string) (*sessions.Record, error) {
	user, err := sm.userRepo.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, InvalidCredentialsErr
		}
		return nil, errors.Wrap(err, "[SessionManager.Login] userRepo.GetByIdentifier")
	}

	if !users.CheckPasswordHash(password, user.PasswordHash) {
		return nil, InvalidCredentialsErr
	}

	// Credentials verified; an unexpired session for this user is echoed
	// back unchanged rather than minting a second one
	if cached := sm.cachedSession(ctx, identifier); cached != nil {
		return cached, nil
	}

	record, err := sm.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	// Identifier pointer for fast re-login echoing; best-effort only
	_ = sm.store.PutString(ctx, sessions.IdentifierKey(identifier), user.ID, record.RefreshTokenExpiry.Sub(sm.nowTime()))

	return record, nil
}

// Refresh exchanges a refresh token for a token pair. Before the recorded
// refresh expiry the stored pair is served back unchanged (soft-serve), so
// repeated calls are idempotent within the window. After expiry the session
// is rotated: a new pair is minted and the old refresh token dies. The whole
// sequence is serialised per refresh-token key - of two concurrent rotations
// exactly one wins and the other observes the outcome.
func (sm *SessionManager) Refresh(ctx context.Context, refreshToken string, claims *token.Claims) (*sessions.Record, error) {
	unlock := sm.refreshLocks.Lock(refreshToken)
	defer unlock()

	record, err := sm.store.Get(ctx, sessions.RefreshTokenKey(refreshToken))
	if err != nil {
		if errors.Is(err, sessions.ErrNotFound) {
			return nil, SessionNotFoundErr
		}
		return nil, errors.Wrap(err, "[SessionManager.Refresh] store.Get")
	}

	if !record.Expired(sm.nowTime()) {
		return record, nil
	}

	// Rotation: the caller's identity comes from their already-verified
	// access token claims, not from the dying session record
	if !claims.HasSubject() {
		return nil, InvalidClaimsErr
	}
	if claims.UserID != record.UserID {
		// Only the session's owner may rotate an expired refresh token
		return nil, RefreshTokenExpiredErr
	}

	user, err := sm.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, UserNotFoundErr
		}
		return nil, errors.Wrap(err, "[SessionManager.Refresh] userRepo.GetByID")
	}

	if err := sm.store.Delete(ctx, sessions.RefreshTokenKey(refreshToken)); err != nil {
		return nil, errors.Wrap(err, "[SessionManager.Refresh] store.Delete")
	}

	return sm.issueSession(ctx, user)
}

// Logout deletes the session under both its refresh-token and user-id keys.
// An unknown refresh token means the session is already gone.
func (sm *SessionManager) Logout(ctx context.Context, refreshToken string, claims *token.Claims) error {
	if !claims.HasSubject() {
		return InvalidClaimsErr
	}

	unlock := sm.refreshLocks.Lock(refreshToken)
	defer unlock()

	if _, err := sm.store.Get(ctx, sessions.RefreshTokenKey(refreshToken)); err != nil {
		if errors.Is(err, sessions.ErrNotFound) {
			return SessionNotFoundErr
		}
		return errors.Wrap(err, "[SessionManager.Logout] store.Get")
	}

	if err := sm.store.Delete(ctx, sessions.RefreshTokenKey(refreshToken)); err != nil {
		return errors.Wrap(err, "[SessionManager.Logout] delete refresh token record")
	}
	if err := sm.store.Delete(ctx, sessions.UserTokensKey(claims.UserID)); err != nil {
		return errors.Wrap(err, "[SessionManager.Logout] delete user record")
	}
	_ = sm.store.Delete(ctx, sessions.WhoAmIKey(claims.UserID))

	return nil
}

// WhoAmI projects the caller's principal from their token claims. The cached
// projection is an optimisation, not a correctness requirement.
func (sm *SessionManager) WhoAmI(ctx context.Context, claims *token.Claims) (*Profile, error) {
	if !claims.HasSubject() {
		return nil, InvalidClaimsErr
	}

	if cached, err := sm.store.GetString(ctx, sessions.WhoAmIKey(claims.UserID)); err == nil {
		var profile Profile
		if err := json.Unmarshal([]byte(cached), &profile); err == nil {
			return &profile, nil
		}
	}

	user, err := sm.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, UserNotFoundErr
		}
		return nil, errors.Wrap(err, "[SessionManager.WhoAmI] userRepo.GetByID")
	}

	profile := &Profile{
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
		Phone:    user.Phone,
		TenantID: user.TenantID,
		Roles:    user.RoleStrings(),
	}

	if data, err := json.Marshal(profile); err == nil {
		_ = sm.store.PutString(ctx, sessions.WhoAmIKey(user.ID), string(data), whoAmICacheExpiry)
	}

	return profile, nil
}

// issueSession mints a fresh token pair and stores the record under its
// refresh-token and user-id keys. The refresh-token key outlives the
// recorded expiry by one access-token lifetime so the record is still
// around to be rotated; the record's own expiry stays authoritative.
func (sm *SessionManager) issueSession(ctx context.Context, user *users.User) (*sessions.Record, error) {
	accessToken, err := sm.issuer.AccessToken(user)
	if err != nil {
		return nil, errors.Wrap(err, "[SessionManager.issueSession] issuer.AccessToken")
	}

	refreshToken, err := sm.issuer.RefreshToken()
	if err != nil {
		return nil, errors.Wrap(err, "[SessionManager.issueSession] issuer.RefreshToken")
	}

	record := &sessions.Record{
		AccessToken:        accessToken.Value,
		AccessTokenExpiry:  accessToken.ExpiresAt,
		RefreshToken:       refreshToken.Value,
		RefreshTokenExpiry: refreshToken.ExpiresAt,
		UserID:             user.ID,
	}

	ttl := record.RefreshTokenExpiry.Sub(sm.nowTime())
	rotationGrace := sm.issuer.AccessTokenExpiry()

	if err := sm.store.Put(ctx, sessions.RefreshTokenKey(record.RefreshToken), record, ttl+rotationGrace); err != nil {
		return nil, errors.Wrap(err, "[SessionManager.issueSession] store refresh token record")
	}
	if err := sm.store.Put(ctx, sessions.UserTokensKey(user.ID), record, ttl); err != nil {
		return nil, errors.Wrap(err, "[SessionManager.issueSession] store user record")
	}

	return record, nil
}

// cachedSession returns the unexpired session for an identifier, if any.
// Store failures here degrade to a cache miss rather than failing the login.
func (sm *SessionManager) cachedSession(ctx context.Context, identifier string) *sessions.Record {
	userID, err := sm.store.GetString(ctx, sessions.IdentifierKey(identifier))
	if err != nil || userID == "" {
		return nil
	}

	record, err := sm.store.Get(ctx, sessions.UserTokensKey(userID))
	if err != nil || record.Expired(sm.nowTime()) {
		return nil
	}
	return record
}
