package token

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-identity-service/token/keys"
	"github.com/pkg/errors"
)

// ErrInvalidToken covers malformed tokens, bad signatures, and expired
// access tokens detected during verification
var ErrInvalidToken = errors.New("invalid token")

// Verifier validates access tokens against the public half of the key
// material and extracts their claims.
type Verifier struct {
	signer keys.Signer
}

// NewVerifier creates a verifier backed by the given key material
func NewVerifier(signer keys.Signer) *Verifier {
	return &Verifier{signer: signer}
}

// Parse validates signature and expiry and returns the claim set
func (v *Verifier) Parse(rawToken string) (*Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, ErrInvalidToken
	}

	parsedToken, err := jwt.ParseWithClaims(rawToken, jwt.MapClaims{}, v.signer.GetVerificationKey)
	if err != nil || !parsedToken.Valid {
		return nil, ErrInvalidToken
	}

	return v.extractClaims(parsedToken)
}

// ParseExpired validates the signature only, accepting a token whose lifetime
// has lapsed. Used during refresh rotation, where the caller proves identity
// with an access token that may already be past its expiry.
func (v *Verifier) ParseExpired(rawToken string) (*Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, ErrInvalidToken
	}

	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	parsedToken, err := parser.ParseWithClaims(rawToken, jwt.MapClaims{}, v.signer.GetVerificationKey)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return v.extractClaims(parsedToken)
}

func (v *Verifier) extractClaims(parsedToken *jwt.Token) (*Claims, error) {
	mapClaims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	claims, err := claimsFromMap(mapClaims)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
