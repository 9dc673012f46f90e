package tenants

import (
	"context"
	"errors"
)

// ErrNotFound is returned by repo lookups when no active tenant matches
var ErrNotFound = errors.New("tenant not found")

// Repo owns the tenant lifecycle. Lookups only return active tenants; the
// deleted state is enforced here rather than filtered at call sites.
type Repo interface {
	Upsert(ctx context.Context, tenant *Tenant) error
	Get(ctx context.Context, id string) (*Tenant, error)
	List(ctx context.Context, offset, limit int) ([]*Tenant, error)
	SoftDelete(ctx context.Context, id string) error
}
