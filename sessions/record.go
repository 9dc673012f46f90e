package sessions

import "time"

// Record is the stored association between a refresh token, its access token,
// their expiries, and the owning user. Rotation replaces the whole record;
// individual fields are never mutated in place. The RefreshTokenExpiry field
// is the authoritative expiry check - store TTL eviction is best-effort only.
type Record struct {
	AccessToken        string    `json:"access_token"`
	AccessTokenExpiry  time.Time `json:"access_token_expiry"`
	RefreshToken       string    `json:"refresh_token"`
	RefreshTokenExpiry time.Time `json:"refresh_token_expiry"`
	UserID             string    `json:"user_id"`
}

// Expired reports whether the recorded refresh expiry has passed
func (r *Record) Expired(now time.Time) bool {
	return !r.RefreshTokenExpiry.After(now)
}
