package token

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-identity-service/token/keys"
	"github.com/jrsteele09/go-identity-service/users"
	"github.com/pkg/errors"
)

const (
	defaultAccessTokenExpiry  = 60 * time.Minute
	defaultRefreshTokenExpiry = 7 * 24 * time.Hour

	// 64 bytes of randomness (512 bits) makes refresh token collisions
	// negligible across the process lifetime
	refreshTokenLength = 64
)

// IssuedToken pairs a token value with its expiry instant
type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Issuer mints RS256-signed access tokens and opaque refresh tokens. Signing
// is CPU-bound only; the issuer performs no I/O.
type Issuer struct {
	signer             keys.Signer
	issuer             string
	audience           string
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
	nowTime            func() time.Time
}

// IssuerOption defines a function type to modify the Issuer instance
type IssuerOption func(*Issuer)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) IssuerOption {
	return func(i *Issuer) {
		i.nowTime = nowFunc
	}
}

// WithTokenExpiry overrides the access and refresh token lifetimes
func WithTokenExpiry(accessTokenExpiry, refreshTokenExpiry time.Duration) IssuerOption {
	return func(i *Issuer) {
		if accessTokenExpiry > 0 {
			i.accessTokenExpiry = accessTokenExpiry
		}
		if refreshTokenExpiry > 0 {
			i.refreshTokenExpiry = refreshTokenExpiry
		}
	}
}

// NewIssuer creates a token issuer signing with the given key material
func NewIssuer(signer keys.Signer, issuer, audience string, options ...IssuerOption) (*Issuer, error) {
	if signer == nil {
		return nil, errors.New("[NewIssuer] signer is required")
	}

	tokenIssuer := &Issuer{
		signer:             signer,
		issuer:             issuer,
		audience:           audience,
		accessTokenExpiry:  defaultAccessTokenExpiry,
		refreshTokenExpiry: defaultRefreshTokenExpiry,
		nowTime:            time.Now,
	}

	for _, opt := range options {
		opt(tokenIssuer)
	}

	return tokenIssuer, nil
}

// AccessToken builds and signs the claim set for a principal
func (i *Issuer) AccessToken(user *users.User) (*IssuedToken, error) {
	now := i.nowTime()
	expiresAt := now.Add(i.accessTokenExpiry)

	claims := jwt.MapClaims{
		"iss":       i.issuer,
		"aud":       i.audience,
		"sub":       user.ID,
		"email":     user.Email,
		"username":  user.Username,
		"tenant_id": user.TenantID,
		"roles":     user.RoleStrings(),
		"iat":       now.Unix(),
		"exp":       expiresAt.Unix(),
		"jti":       uuid.New().String(),
	}
	if user.Phone != "" {
		claims["phone"] = user.Phone
	}

	signedToken, err := i.signer.Sign(claims)
	if err != nil {
		return nil, errors.Wrap(err, "[Issuer.AccessToken] signer.Sign")
	}

	return &IssuedToken{Value: signedToken, ExpiresAt: expiresAt}, nil
}

// RefreshToken draws an opaque high-entropy token from crypto/rand. The value
// carries no claims; it is only a handle into the session store.
func (i *Issuer) RefreshToken() (*IssuedToken, error) {
	tokenBytes := make([]byte, refreshTokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return nil, errors.Wrap(err, "[Issuer.RefreshToken] rand.Read")
	}

	return &IssuedToken{
		Value:     base64.RawURLEncoding.EncodeToString(tokenBytes),
		ExpiresAt: i.nowTime().Add(i.refreshTokenExpiry),
	}, nil
}

// AccessTokenExpiry returns the configured access token lifetime
func (i *Issuer) AccessTokenExpiry() time.Duration {
	return i.accessTokenExpiry
}

// RefreshTokenExpiry returns the configured refresh token lifetime
func (i *Issuer) RefreshTokenExpiry() time.Duration {
	return i.refreshTokenExpiry
}
