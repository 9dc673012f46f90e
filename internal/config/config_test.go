package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-identity-service/internal/config"
)

// TestDefaults tests the built-in defaults used when nothing is configured
func TestDefaults(t *testing.T) {
	cfg := config.FromSettings(nil)

	require.Equal(t, ":8080", cfg.GetPort())
	require.Equal(t, "DEV", cfg.GetEnv())
	require.True(t, cfg.IsDev())
	require.Equal(t, 60*time.Minute, cfg.GetAccessTokenExpiry())
	require.Equal(t, 7*24*time.Hour, cfg.GetRefreshTokenExpiry())
	require.Equal(t, config.SessionBackendMemory, cfg.GetSessionBackend())
	require.Equal(t, "localhost:6379", cfg.GetRedisAddr())
	require.Empty(t, cfg.GetEndpointRoles())
}

// TestGetPort_PrependsColon tests port normalisation
func TestGetPort_PrependsColon(t *testing.T) {
	cfg := config.FromSettings(map[string]any{"server.port": "9000"})
	require.Equal(t, ":9000", cfg.GetPort())

	cfg = config.FromSettings(map[string]any{"server.port": ":9000"})
	require.Equal(t, ":9000", cfg.GetPort())
}

// TestOverrides tests that explicit settings replace the defaults
func TestOverrides(t *testing.T) {
	cfg := config.FromSettings(map[string]any{
		"server.env":               "PROD",
		"jwt.access_token_expiry":  "15m",
		"jwt.refresh_token_expiry": "24h",
		"sessions.backend":         config.SessionBackendRedis,
	})

	require.False(t, cfg.IsDev())
	require.Equal(t, 15*time.Minute, cfg.GetAccessTokenExpiry())
	require.Equal(t, 24*time.Hour, cfg.GetRefreshTokenExpiry())
	require.Equal(t, config.SessionBackendRedis, cfg.GetSessionBackend())
}

// TestGetEndpointRoles tests the role table loader with both slice shapes the
// settings can arrive in
func TestGetEndpointRoles(t *testing.T) {
	cfg := config.FromSettings(map[string]any{
		"endpoint_roles": map[string]any{
			"auth": map[string]any{
				"me": []string{"system_admin", "tenant_operator"},
			},
			"tenant": map[string]any{
				"create": []any{"system_admin"},
			},
			"broken": "not a map, ignored",
		},
	})

	table := cfg.GetEndpointRoles()
	require.Equal(t, []string{"system_admin", "tenant_operator"}, table["auth"]["me"])
	require.Equal(t, []string{"system_admin"}, table["tenant"]["create"])
	require.NotContains(t, table, "broken")
}
