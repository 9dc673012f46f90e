package authz_test

import (
	"testing"

	"github.com/jrsteele09/go-identity-service/authz"
	"github.com/stretchr/testify/require"
)

func testTable() authz.Table {
	return authz.Table{
		"auth": {
			"me":     {"system_admin", "tenant_admin", "tenant_operator"},
			"logout": {"system_admin", "tenant_admin", "tenant_operator"},
		},
		"tenant": {
			"create": {"system_admin"},
			"update": {"system_admin", "tenant_admin"},
			"locked": {},
		},
	}
}

// TestDecide_Grid exercises the allow and deny paths of the decision table
func TestDecide_Grid(t *testing.T) {
	tests := []struct {
		name       string
		controller string
		action     string
		roles      []string
		allowed    bool
	}{
		{
			name:       "single matching role",
			controller: "tenant",
			action:     "create",
			roles:      []string{"system_admin"},
			allowed:    true,
		},
		{
			name:       "any role matching grants access",
			controller: "tenant",
			action:     "update",
			roles:      []string{"tenant_operator", "tenant_admin"},
			allowed:    true,
		},
		{
			name:       "insufficient role",
			controller: "tenant",
			action:     "create",
			roles:      []string{"tenant_admin", "tenant_operator"},
			allowed:    false,
		},
		{
			name:       "unknown controller denies every caller",
			controller: "billing",
			action:     "create",
			roles:      []string{"system_admin"},
			allowed:    false,
		},
		{
			name:       "unknown action denies every caller",
			controller: "tenant",
			action:     "export",
			roles:      []string{"system_admin"},
			allowed:    false,
		},
		{
			name:       "empty role list on the endpoint denies every caller",
			controller: "tenant",
			action:     "locked",
			roles:      []string{"system_admin"},
			allowed:    false,
		},
		{
			name:       "caller with no roles",
			controller: "auth",
			action:     "me",
			roles:      nil,
			allowed:    false,
		},
		{
			name:       "role match is exact, no prefix or case folding",
			controller: "tenant",
			action:     "create",
			roles:      []string{"System_Admin", "system_admin_extra"},
			allowed:    false,
		},
	}

	table := testTable()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.allowed, authz.Decide(table, tt.controller, tt.action, tt.roles))
		})
	}
}

// TestDecide_EmptyTable verifies that a nil or empty table denies everything
func TestDecide_EmptyTable(t *testing.T) {
	require.False(t, authz.Decide(nil, "auth", "me", []string{"system_admin"}))
	require.False(t, authz.Decide(authz.Table{}, "auth", "me", []string{"system_admin"}))
}
