package server

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-identity-service/tenants"
	"github.com/jrsteele09/go-identity-service/users"
)

// SeedDevData populates the repositories with a known tenant and users for
// local development. Never called outside the DEV environment.
func SeedDevData(ctx context.Context, repos Repos) error {
	existing, err := repos.Users.List(ctx, 0, 1)
	if err != nil {
		return errors.Wrap(err, "[SeedDevData] users.List")
	}
	if len(existing) > 0 {
		return nil
	}

	tenantOne := &tenants.Tenant{
		ID:        "b5644c8f-0558-42df-94cb-e0d04bc2e3f3",
		Name:      "Tenant One",
		Status:    tenants.StatusActive,
		CreatedAt: time.Now(),
	}
	tenantTwo := &tenants.Tenant{
		ID:        "94c01af5-0a43-47ca-bedf-05ab15bc4c43",
		Name:      "Tenant Two",
		Status:    tenants.StatusActive,
		CreatedAt: time.Now(),
	}
	for _, tenant := range []*tenants.Tenant{tenantOne, tenantTwo} {
		if err := repos.Tenants.Upsert(ctx, tenant); err != nil {
			return errors.Wrap(err, "[SeedDevData] tenants.Upsert")
		}
	}

	passwordHash, err := users.HashPassword("123456")
	if err != nil {
		return errors.Wrap(err, "[SeedDevData] users.HashPassword")
	}

	seedUsers := []*users.User{
		{
			ID:           "6f1f788b-59b7-4e9c-8f9c-3cf1b20f0d8a",
			Email:        "amjad@test.com",
			Username:     "amjad",
			Phone:        "+880123456789",
			PasswordHash: passwordHash,
			TenantID:     tenantOne.ID,
			Roles:        []users.RoleType{users.RoleSystemAdmin},
			DateJoined:   time.Now(),
		},
		{
			ID:           "9c6bb2a5-21a4-4f49-9b48-92ad64a71a5e",
			Email:        "alice@test.com",
			Username:     "alice",
			PasswordHash: passwordHash,
			TenantID:     tenantOne.ID,
			Roles:        []users.RoleType{users.RoleTenantOperator},
			DateJoined:   time.Now(),
		},
		{
			ID:           "0a3d0f3e-5d82-4f1a-a7a4-6e1f0cf25b1d",
			Email:        "bob@test.com",
			Username:     "bob",
			PasswordHash: passwordHash,
			TenantID:     tenantTwo.ID,
			Roles:        []users.RoleType{users.RoleTenantAdmin},
			DateJoined:   time.Now(),
		},
	}
	for _, user := range seedUsers {
		if err := repos.Users.Upsert(ctx, user); err != nil {
			return errors.Wrap(err, "[SeedDevData] users.Upsert")
		}
	}

	log.Info().Int("users", len(seedUsers)).Msg("development seed data created")
	return nil
}
