package repofake

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-identity-service/users"
)

var _ users.Repo = (*FakeUserRepo)(nil)

// FakeUserRepo is an in-memory user repository used in tests and for
// development seeding.
type FakeUserRepo struct {
	usersByID map[string]*users.User
	lock      sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		usersByID: make(map[string]*users.User),
	}
}

func (ur *FakeUserRepo) Upsert(_ context.Context, user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()
	copied := *user
	ur.usersByID[user.ID] = &copied
	return nil
}

func (ur *FakeUserRepo) Delete(_ context.Context, id string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()
	if _, ok := ur.usersByID[id]; !ok {
		return users.ErrNotFound
	}
	delete(ur.usersByID, id)
	return nil
}

func (ur *FakeUserRepo) GetByIdentifier(_ context.Context, identifier string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()
	for _, user := range ur.usersByID {
		if user.Email == identifier || user.Username == identifier {
			copied := *user
			return &copied, nil
		}
	}
	return nil, users.ErrNotFound
}

func (ur *FakeUserRepo) GetByID(_ context.Context, id string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()
	user, ok := ur.usersByID[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (ur *FakeUserRepo) List(_ context.Context, offset, limit int) ([]*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()
	all := make([]*users.User, 0, len(ur.usersByID))
	for _, user := range ur.usersByID {
		copied := *user
		all = append(all, &copied)
	}
	if offset >= len(all) {
		return []*users.User{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (ur *FakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()
	for _, user := range ur.usersByID {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (ur *FakeUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()
	for _, user := range ur.usersByID {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}
