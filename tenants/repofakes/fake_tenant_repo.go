package repofakes

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jrsteele09/go-identity-service/internal/utils"
	"github.com/jrsteele09/go-identity-service/tenants"
)

var _ tenants.Repo = (*FakeTenantRepo)(nil)

// FakeTenantRepo is an in-memory tenant repository used in tests and for
// development seeding. Soft-deleted tenants stay in the map but are hidden
// from Get and List.
type FakeTenantRepo struct {
	tenantsByID map[string]*tenants.Tenant
	nowTime     func() time.Time
	lock        sync.RWMutex
}

func NewFakeTenantRepo() *FakeTenantRepo {
	return &FakeTenantRepo{
		tenantsByID: make(map[string]*tenants.Tenant),
		nowTime:     time.Now,
	}
}

func (tr *FakeTenantRepo) Upsert(_ context.Context, tenant *tenants.Tenant) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	copied := *tenant
	if copied.Status == "" {
		copied.Status = tenants.StatusActive
	}
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = tr.nowTime()
	}
	copied.UpdatedAt = tr.nowTime()
	tr.tenantsByID[tenant.ID] = &copied
	return nil
}

func (tr *FakeTenantRepo) Get(_ context.Context, id string) (*tenants.Tenant, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	tenant, ok := tr.tenantsByID[id]
	if !ok || !tenant.IsActive() {
		return nil, tenants.ErrNotFound
	}
	copied := *tenant
	return &copied, nil
}

func (tr *FakeTenantRepo) List(_ context.Context, offset, limit int) ([]*tenants.Tenant, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	all := make([]*tenants.Tenant, 0, len(tr.tenantsByID))
	for _, tenant := range tr.tenantsByID {
		if !tenant.IsActive() {
			continue
		}
		copied := *tenant
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if offset >= len(all) {
		return []*tenants.Tenant{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (tr *FakeTenantRepo) SoftDelete(_ context.Context, id string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	tenant, ok := tr.tenantsByID[id]
	if !ok || !tenant.IsActive() {
		return tenants.ErrNotFound
	}
	now := tr.nowTime()
	tenant.Status = tenants.StatusDeleted
	tenant.DeletedAt = utils.Ptr(now)
	tenant.UpdatedAt = now
	return nil
}
