package keys

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// RS256 is the only signing algorithm the service issues tokens with
const RS256 = "RS256"

// KeyPair holds the RSA key material used to sign and verify access tokens.
// PrivateKey is nil for verify-only key pairs.
type KeyPair struct {
	KeyID      string
	PrivateKey *rsa.PrivateKey
	PublicKey  *rsa.PublicKey
	Algorithm  string
}

// GetSigningMethod returns the JWT signing method for this key pair
func (kp *KeyPair) GetSigningMethod() jwt.SigningMethod {
	return jwt.SigningMethodRS256
}

// CanSign reports whether the private half is present
func (kp *KeyPair) CanSign() bool {
	return kp.PrivateKey != nil
}

// GenerateRSAKeyPair generates a new RSA key pair for RS256 signing
func GenerateRSAKeyPair(keyID string, bits int) (*KeyPair, error) {
	if bits < 2048 {
		bits = 2048
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, errors.Wrap(err, "[GenerateRSAKeyPair] rsa.GenerateKey")
	}

	return &KeyPair{
		KeyID:      keyID,
		PrivateKey: privateKey,
		PublicKey:  &privateKey.PublicKey,
		Algorithm:  RS256,
	}, nil
}

// LoadKeyPairFromFiles loads the signing key pair from PEM files. A missing or
// malformed file is a fatal configuration error; the caller must not serve
// traffic without key material.
func LoadKeyPairFromFiles(keyID, privateKeyPath, publicKeyPath string) (*KeyPair, error) {
	privatePEM, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, errors.Wrapf(err, "[LoadKeyPairFromFiles] reading private key %q", privateKeyPath)
	}
	publicPEM, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, errors.Wrapf(err, "[LoadKeyPairFromFiles] reading public key %q", publicKeyPath)
	}
	return LoadKeyPairFromPEM(keyID, string(privatePEM), string(publicPEM))
}

// LoadKeyPairFromPEM loads a key pair from PEM-encoded strings
func LoadKeyPairFromPEM(keyID, privateKeyPEM, publicKeyPEM string) (*KeyPair, error) {
	privateKey, err := parseRSAPrivateKey(privateKeyPEM)
	if err != nil {
		return nil, errors.Wrap(err, "[LoadKeyPairFromPEM] private key")
	}

	publicKey, err := parseRSAPublicKey(publicKeyPEM)
	if err != nil {
		return nil, errors.Wrap(err, "[LoadKeyPairFromPEM] public key")
	}

	return &KeyPair{
		KeyID:      keyID,
		PrivateKey: privateKey,
		PublicKey:  publicKey,
		Algorithm:  RS256,
	}, nil
}

// LoadVerifyOnlyKeyPair loads just the public half, for resource servers that
// verify tokens but never issue them.
func LoadVerifyOnlyKeyPair(keyID, publicKeyPEM string) (*KeyPair, error) {
	publicKey, err := parseRSAPublicKey(publicKeyPEM)
	if err != nil {
		return nil, errors.Wrap(err, "[LoadVerifyOnlyKeyPair] public key")
	}
	return &KeyPair{
		KeyID:     keyID,
		PublicKey: publicKey,
		Algorithm: RS256,
	}, nil
}

// ExportPrivateKeyPEM exports the RSA private key as PEM
func (kp *KeyPair) ExportPrivateKeyPEM() (string, error) {
	if kp.PrivateKey == nil {
		return "", errors.New("[ExportPrivateKeyPEM] key pair has no private key")
	}
	privateKeyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(kp.PrivateKey),
	})
	return string(privateKeyPEM), nil
}

// ExportPublicKeyPEM exports the public key as PEM
func (kp *KeyPair) ExportPublicKeyPEM() (string, error) {
	pubKeyBytes, err := x509.MarshalPKIXPublicKey(kp.PublicKey)
	if err != nil {
		return "", errors.Wrap(err, "[ExportPublicKeyPEM] x509.MarshalPKIXPublicKey")
	}
	pubKeyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubKeyBytes,
	})
	return string(pubKeyPEM), nil
}

func parseRSAPrivateKey(pemData string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, errors.New("failed to decode PEM block")
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	// openssl genpkey emits PKCS#8
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse RSA private key")
	}
	rsaKey, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("private key is not RSA")
	}
	return rsaKey, nil
}

func parseRSAPublicKey(pemData string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, errors.New("failed to decode PEM block")
	}

	if key, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		return key, nil
	}

	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse RSA public key")
	}
	rsaKey, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("public key is not RSA")
	}
	return rsaKey, nil
}
