// Package authz decides, per endpoint, whether a caller's roles permit
// access. The decision table is loaded once at startup and read-only after
// that; an endpoint with no entry is inaccessible to everyone.
package authz

// Table maps canonical controller name -> action name -> roles permitted to
// invoke it. Absence of a key is a legitimate deny state, not an error.
type Table map[string]map[string][]string

// Decide evaluates a (controller, action, caller-roles) triple against the
// table. Default-deny, fail-closed: a missing controller or action entry
// denies every caller regardless of role. Access is granted when any caller
// role appears in the configured set - exact string equality, no hierarchy,
// no wildcards.
func Decide(table Table, controller, action string, callerRoles []string) bool {
	actionRoles, ok := table[controller]
	if !ok {
		return false
	}

	allowedRoles, ok := actionRoles[action]
	if !ok {
		return false
	}

	for _, callerRole := range callerRoles {
		for _, allowed := range allowedRoles {
			if callerRole == allowed {
				return true
			}
		}
	}
	return false
}
