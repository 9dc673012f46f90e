package users

import (
	"context"
	"errors"
)

// ErrNotFound is returned by repo lookups when no user matches
var ErrNotFound = errors.New("user not found")

// Repo resolves principals for the session manager and owns the user
// lifecycle. GetByIdentifier accepts either an email address or a username.
type Repo interface {
	Upsert(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
	GetByIdentifier(ctx context.Context, identifier string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, offset, limit int) ([]*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}
