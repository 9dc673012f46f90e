package sessions

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
)

var _ Store = (*InMemoryStore)(nil)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time // zero means no expiry
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !e.expiresAt.After(now)
}

// InMemoryStore is a mutex-guarded map with TTL eviction. Expired entries are
// dropped lazily on read and actively by a background janitor. Suitable for a
// single service instance; multi-instance deployments use the Redis store.
type InMemoryStore struct {
	entries map[string]memoryEntry
	nowTime func() time.Time
	lock    sync.RWMutex
	stop    chan struct{}
	once    sync.Once
}

// InMemoryStoreOption defines a function type to modify the InMemoryStore instance
type InMemoryStoreOption func(*InMemoryStore)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) InMemoryStoreOption {
	return func(s *InMemoryStore) {
		s.nowTime = nowFunc
	}
}

// NewInMemoryStore creates an in-process session store. The janitor sweeps
// expired entries every sweepInterval; zero disables active eviction.
func NewInMemoryStore(sweepInterval time.Duration, options ...InMemoryStoreOption) *InMemoryStore {
	store := &InMemoryStore{
		entries: make(map[string]memoryEntry),
		nowTime: time.Now,
		stop:    make(chan struct{}),
	}

	for _, opt := range options {
		opt(store)
	}

	if sweepInterval > 0 {
		go store.janitor(sweepInterval)
	}

	return store
}

func (s *InMemoryStore) Put(_ context.Context, key string, record *Record, ttl time.Duration) error {
	data, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "[InMemoryStore.Put] json.Marshal")
	}
	s.set(key, data, ttl)
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, key string) (*Record, error) {
	data, err := s.get(key)
	if err != nil {
		return nil, err
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, errors.Wrap(err, "[InMemoryStore.Get] json.Unmarshal")
	}
	return &record, nil
}

func (s *InMemoryStore) Delete(_ context.Context, key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *InMemoryStore) PutString(_ context.Context, key, value string, ttl time.Duration) error {
	s.set(key, []byte(value), ttl)
	return nil
}

func (s *InMemoryStore) GetString(_ context.Context, key string) (string, error) {
	data, err := s.get(key)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Close stops the janitor goroutine
func (s *InMemoryStore) Close() {
	s.once.Do(func() { close(s.stop) })
}

func (s *InMemoryStore) set(key string, data []byte, ttl time.Duration) {
	entry := memoryEntry{data: data}
	if ttl > 0 {
		entry.expiresAt = s.nowTime().Add(ttl)
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	s.entries[key] = entry
}

func (s *InMemoryStore) get(key string) ([]byte, error) {
	s.lock.RLock()
	entry, ok := s.entries[key]
	s.lock.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if entry.expired(s.nowTime()) {
		s.lock.Lock()
		delete(s.entries, key)
		s.lock.Unlock()
		return nil, ErrNotFound
	}
	return entry.data, nil
}

func (s *InMemoryStore) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *InMemoryStore) sweep() {
	now := s.nowTime()
	s.lock.Lock()
	defer s.lock.Unlock()
	for key, entry := range s.entries {
		if entry.expired(now) {
			delete(s.entries, key)
		}
	}
}
