package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-identity-service/internal/utils"
	"github.com/pkg/errors"
)

// Claims is the validated claim set extracted from an access token. The
// token is self-contained: everything needed to identify the caller is here,
// no store lookup involved.
type Claims struct {
	UserID    string    // "sub"
	Email     string    // "email"
	Username  string    // "username"
	Phone     string    // "phone" (optional)
	TenantID  string    // "tenant_id"
	Roles     []string  // "roles"
	Issuer    string    // "iss"
	Audience  string    // "aud"
	JTI       string    // "jti"
	IssuedAt  time.Time // "iat"
	ExpiresAt time.Time // "exp"
}

// HasSubject reports whether the claims carry a usable identity
func (c *Claims) HasSubject() bool {
	return c != nil && c.UserID != ""
}

func claimsFromMap(mapClaims jwt.MapClaims) (*Claims, error) {
	sub, _ := mapClaims["sub"].(string)
	if sub == "" {
		return nil, errors.New("token missing sub claim")
	}

	email, _ := mapClaims["email"].(string)
	username, _ := mapClaims["username"].(string)
	phone, _ := mapClaims["phone"].(string)
	tenantID, _ := mapClaims["tenant_id"].(string)
	iss, _ := mapClaims["iss"].(string)
	aud, _ := mapClaims["aud"].(string)
	jti, _ := mapClaims["jti"].(string)
	iat, _ := mapClaims["iat"].(float64)
	exp, _ := mapClaims["exp"].(float64)

	var roles []string
	if claimRoles, ok := mapClaims["roles"].([]any); ok {
		roles = utils.ToStringSlice(claimRoles)
	}

	return &Claims{
		UserID:    sub,
		Email:     email,
		Username:  username,
		Phone:     phone,
		TenantID:  tenantID,
		Roles:     roles,
		Issuer:    iss,
		Audience:  aud,
		JTI:       jti,
		IssuedAt:  time.Unix(int64(iat), 0),
		ExpiresAt: time.Unix(int64(exp), 0),
	}, nil
}
