package service

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/signup-service/internal/cache"
	"github.com/spec-kit/signup-service/internal/domain"
	"github.com/spec-kit/signup-service/internal/events"
)

type registrationHarness struct {
	svc        *RegistrationService
	codes      *AuthCodeService
	codeRepo   *fakeAuthCodeRepo
	accounts   *fakeAccountRepo
	tokens     *TokenService
	mr         *miniredis.Miniredis
	clock      *fakeClock
	dispatcher events.Dispatcher
}

func newRegistrationHarness(t *testing.T) *registrationHarness {
	t.Helper()
	store, mr := newTestStore(t)
	clock := newFakeClock()
	codeRepo := newFakeAuthCodeRepo()
	accounts := newFakeAccountRepo()
	dispatcher := events.NewInMemoryDispatcher()

	cfg := testAuthConfig()
	codes := NewAuthCodeService(cfg, codeRepo, dispatcher, nil).WithClock(clock.Now)
	tokens := NewTokenService(newTestTokenManager(t, clock), store, nil)
	svc := NewRegistrationService(RegistrationDependencies{
		AuthCodes:  codes,
		Accounts:   accounts,
		Cache:      store,
		Usernames:  NewUsernameAllocator(accounts, cfg.UsernameLength),
		Tokens:     tokens,
		Dispatcher: dispatcher,
	}).WithClock(clock.Now)

	return &registrationHarness{
		svc:        svc,
		codes:      codes,
		codeRepo:   codeRepo,
		accounts:   accounts,
		tokens:     tokens,
		mr:         mr,
		clock:      clock,
		dispatcher: dispatcher,
	}
}

func testProfile(email string) domain.Profile {
	return domain.Profile{
		DisplayName: "Alice",
		Email:       email,
		Birthdate:   time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestRegisterThenComplete(t *testing.T) {
	h := newRegistrationHarness(t)
	ctx := context.Background()

	var registered []events.AccountRegisteredPayload
	h.dispatcher.Subscribe(events.EventAccountRegistered, func(_ context.Context, e events.Event) error {
		registered = append(registered, e.Payload.(events.AccountRegisteredPayload))
		return nil
	})

	code, err := h.svc.Register(ctx, testProfile("a@x.com"))
	require.NoError(t, err)

	account, pair, err := h.svc.Complete(ctx, code.ID, code.Code)
	require.NoError(t, err)

	assert.Equal(t, "Alice", account.DisplayName)
	assert.Equal(t, "a@x.com", account.Email)
	assert.True(t, account.Birthdate.Equal(time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Len(t, account.Username, 15)
	assert.False(t, account.Verified)
	assert.Zero(t, account.AuthFailureCount)
	assert.False(t, account.Locked)
	assert.False(t, account.Deleted)
	assert.Equal(t, 1, h.accounts.count())

	require.NotNil(t, pair)
	access, err := h.tokens.TokenManager().ParseToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, strconv.FormatInt(account.ID, 10), access.Subject)

	require.Len(t, registered, 1)
	assert.Equal(t, account.ID, registered[0].AccountID)
	assert.Equal(t, account.Username, registered[0].Username)
}

func TestStageExpiresWithCode(t *testing.T) {
	h := newRegistrationHarness(t)
	ctx := context.Background()

	code, err := h.codes.Issue(ctx, "a@x.com")
	require.NoError(t, err)

	h.clock.Advance(4 * time.Minute)
	require.NoError(t, h.svc.Stage(ctx, *code, testProfile("a@x.com")))

	key := cache.StagedRegistrationKey(code.ID, code.Code)
	assert.Equal(t, 6*time.Minute, h.mr.TTL(key))

	h.mr.FastForward(6 * time.Minute)
	assert.False(t, h.mr.Exists(key))
}

func TestStageRejectsExpiredCode(t *testing.T) {
	h := newRegistrationHarness(t)
	ctx := context.Background()

	code, err := h.codes.Issue(ctx, "a@x.com")
	require.NoError(t, err)

	h.clock.Advance(10 * time.Minute)
	err = h.svc.Stage(ctx, *code, testProfile("a@x.com"))
	assert.ErrorIs(t, err, domain.ErrCodeExpired)
}

func TestPromoteIsSingleUse(t *testing.T) {
	h := newRegistrationHarness(t)
	ctx := context.Background()

	code, err := h.svc.Register(ctx, testProfile("a@x.com"))
	require.NoError(t, err)

	_, err = h.svc.Promote(ctx, code.ID, code.Code)
	require.NoError(t, err)

	_, err = h.svc.Promote(ctx, code.ID, code.Code)
	assert.ErrorIs(t, err, domain.ErrStagingNotFound)
	assert.Equal(t, 1, h.accounts.count())
}

func TestConcurrentPromoteCreatesOneAccount(t *testing.T) {
	h := newRegistrationHarness(t)
	ctx := context.Background()

	code, err := h.svc.Register(ctx, testProfile("a@x.com"))
	require.NoError(t, err)

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		notFound  int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.svc.Promote(ctx, code.ID, code.Code)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case assert.ErrorIs(t, err, domain.ErrStagingNotFound):
				notFound++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, notFound)
	assert.Equal(t, 1, h.accounts.count())
}

func TestPromoteWrongCodeLeavesStagingIntact(t *testing.T) {
	h := newRegistrationHarness(t)
	ctx := context.Background()

	code, err := h.svc.Register(ctx, testProfile("a@x.com"))
	require.NoError(t, err)

	_, err = h.svc.Promote(ctx, code.ID, "not-the-code")
	assert.ErrorIs(t, err, domain.ErrCodeMismatch)
	assert.True(t, h.mr.Exists(cache.StagedRegistrationKey(code.ID, code.Code)))

	_, err = h.svc.Promote(ctx, code.ID, code.Code)
	assert.NoError(t, err)
}

func TestPromoteExpiredCode(t *testing.T) {
	h := newRegistrationHarness(t)
	ctx := context.Background()

	code, err := h.svc.Register(ctx, testProfile("a@x.com"))
	require.NoError(t, err)

	h.clock.Advance(11 * time.Minute)
	_, err = h.svc.Promote(ctx, code.ID, code.Code)
	assert.ErrorIs(t, err, domain.ErrCodeExpired)
	assert.Zero(t, h.accounts.count())
}

func TestPromoteWithoutStagedRegistration(t *testing.T) {
	h := newRegistrationHarness(t)
	ctx := context.Background()

	code, err := h.codes.Issue(ctx, "a@x.com")
	require.NoError(t, err)

	_, err = h.svc.Promote(ctx, code.ID, code.Code)
	assert.ErrorIs(t, err, domain.ErrStagingNotFound)
}

func TestRegisterRejectsKnownEmail(t *testing.T) {
	h := newRegistrationHarness(t)
	ctx := context.Background()

	code, err := h.svc.Register(ctx, testProfile("a@x.com"))
	require.NoError(t, err)
	_, err = h.svc.Promote(ctx, code.ID, code.Code)
	require.NoError(t, err)

	_, err = h.svc.Register(ctx, testProfile("a@x.com"))
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)

	registered, err := h.svc.IsRegisteredEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, registered)
}

func TestPromoteDuplicateEmail(t *testing.T) {
	h := newRegistrationHarness(t)
	ctx := context.Background()

	first, err := h.svc.Register(ctx, testProfile("a@x.com"))
	require.NoError(t, err)
	second, err := h.svc.Register(ctx, testProfile("a@x.com"))
	require.NoError(t, err)

	_, err = h.svc.Promote(ctx, first.ID, first.Code)
	require.NoError(t, err)

	_, err = h.svc.Promote(ctx, second.ID, second.Code)
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
	assert.Equal(t, 1, h.accounts.count())

	// the staged entry was consumed before the duplicate check
	_, err = h.svc.Promote(ctx, second.ID, second.Code)
	assert.ErrorIs(t, err, domain.ErrStagingNotFound)
}

func TestRegisterStoreUnavailable(t *testing.T) {
	h := newRegistrationHarness(t)
	h.mr.Close()

	_, err := h.svc.Register(context.Background(), testProfile("a@x.com"))
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestMintFailureAfterPromoteKeepsAccount(t *testing.T) {
	h := newRegistrationHarness(t)
	ctx := context.Background()

	code, err := h.svc.Register(ctx, testProfile("a@x.com"))
	require.NoError(t, err)

	// consume the staged entry directly so only the token write hits the closed store
	account, err := h.svc.Promote(ctx, code.ID, code.Code)
	require.NoError(t, err)
	h.mr.Close()

	_, err = h.tokens.Mint(ctx, *account)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Equal(t, 1, h.accounts.count())
}

func TestIssueStageVerifyScenario(t *testing.T) {
	h := newRegistrationHarness(t)
	ctx := context.Background()

	code, err := h.codes.Issue(ctx, "a@x.com")
	require.NoError(t, err)
	require.NoError(t, h.svc.Stage(ctx, *code, domain.Profile{
		DisplayName: "A",
		Email:       "a@x.com",
		Birthdate:   time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
	}))

	h.clock.Advance(time.Minute)
	account, err := h.svc.Promote(ctx, code.ID, code.Code)
	require.NoError(t, err)

	assert.Equal(t, "a@x.com", account.Email)
	assert.Equal(t, "A", account.DisplayName)
	assert.Len(t, account.Username, 15)
	assert.False(t, account.Verified)
	assert.Zero(t, account.AuthFailureCount)
}
