package sessions

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned when no record exists under a key
	ErrNotFound = errors.New("session record not found")

	// ErrUnavailable is returned when the backing store cannot be reached.
	// Distinct from authentication failures; callers may retry.
	ErrUnavailable = errors.New("session store unavailable")
)

// Store is a TTL-keyed capability store for session records. Put is
// last-write-wins and visible to any Get issued after it returns. The store
// provides no cross-key transactionality; atomicity across the key families
// below is the session manager's responsibility.
type Store interface {
	Put(ctx context.Context, key string, record *Record, ttl time.Duration) error
	Get(ctx context.Context, key string) (*Record, error)
	Delete(ctx context.Context, key string) error

	// String variants back the identifier pointer and response-cache keys
	PutString(ctx context.Context, key, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
}

// Key families. Each session is indexed by refresh token and by user id;
// the identifier pointer is an optimisation for fast re-login echoing.
const (
	refreshTokenKeyPrefix = "refresh_token:"
	userTokensKeyPrefix   = "user_tokens:"
	identifierKeyPrefix   = "users_id:"
	whoAmIKeyPrefix       = "me:"
)

func RefreshTokenKey(refreshToken string) string { return refreshTokenKeyPrefix + refreshToken }
func UserTokensKey(userID string) string         { return userTokensKeyPrefix + userID }
func IdentifierKey(identifier string) string     { return identifierKeyPrefix + identifier }
func WhoAmIKey(userID string) string             { return whoAmIKeyPrefix + userID }
