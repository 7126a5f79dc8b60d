package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/signup-service/internal/cache"
	"github.com/spec-kit/signup-service/internal/domain"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeAuthCodeRepo struct {
	mu    sync.Mutex
	codes map[string]domain.AuthCode
	err   error
}

func newFakeAuthCodeRepo() *fakeAuthCodeRepo {
	return &fakeAuthCodeRepo{codes: map[string]domain.AuthCode{}}
}

func (r *fakeAuthCodeRepo) Create(_ context.Context, code *domain.AuthCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	code.UpdatedAt = code.CreatedAt
	r.codes[code.ID] = *code
	return nil
}

func (r *fakeAuthCodeRepo) GetByID(_ context.Context, id string) (*domain.AuthCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	code, ok := r.codes[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &code, nil
}

type fakeAccountRepo struct {
	mu       sync.Mutex
	nextID   int64
	accounts []domain.Account
	probes   []string
	err      error
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{nextID: 1}
}

func (r *fakeAccountRepo) Create(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for _, existing := range r.accounts {
		if existing.Email == account.Email {
			return domain.ErrDuplicateEmail
		}
		if existing.Username == account.Username {
			return domain.ErrUsernameTaken
		}
	}
	account.ID = r.nextID
	r.nextID++
	r.accounts = append(r.accounts, *account)
	return nil
}

func (r *fakeAccountRepo) GetByID(_ context.Context, id int64) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.ID == id {
			found := a
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeAccountRepo) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, a := range r.accounts {
		if a.Email == email {
			found := a
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeAccountRepo) UsernameExists(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	r.probes = append(r.probes, username)
	for _, a := range r.accounts {
		if a.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAccountRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.accounts)
}

func newTestStore(t *testing.T) (cache.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewRedisStore(client), mr
}

// flakyStore fails the nth SetWithTTL call (1-based) and delegates the rest.
type flakyStore struct {
	cache.Store
	failOn int
	sets   int
}

func (s *flakyStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.sets++
	if s.sets == s.failOn {
		return fmt.Errorf("%w: write refused", domain.ErrStoreUnavailable)
	}
	return s.Store.SetWithTTL(ctx, key, value, ttl)
}
