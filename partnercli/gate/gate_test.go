package gate

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/bazaarpanel/bazaar/database/model"
	"github.com/bazaarpanel/bazaar/partnercli/api"
	"github.com/bazaarpanel/bazaar/partnercli/state"

	"github.com/stretchr/testify/assert"
	"go.uber.org/atomic"
)

type fakeFetcher struct {
	identity *model.Identity
	err      error
}

func (f *fakeFetcher) Me() (*model.Identity, error) {
	return f.identity, f.err
}

func newTestStore(t *testing.T, token string) *state.Store {
	t.Helper()
	store := state.NewStore(filepath.Join(t.TempDir(), "partner.json"))
	assert.NoError(t, store.Initialize())
	if token != "" {
		assert.NoError(t, store.Login(token, &model.Identity{Id: 1, Email: "stale@example.com"}))
	}
	return store
}

func TestCheckAdmitsValidSession(t *testing.T) {
	store := newTestStore(t, "tok")
	fetcher := &fakeFetcher{identity: &model.Identity{Id: 1, Email: "p@example.com", Role: model.RoleVendor}}

	g := New(store, fetcher, func() { t.Fatal("redirect must not fire") })
	s, err := g.Check()
	assert.NoError(t, err)
	assert.Equal(t, StateAuthenticated, s)
	// The admitted identity is the server's answer, not the cached hint.
	assert.Equal(t, "p@example.com", g.Identity().Email)
}

func TestCheckRedirectsWithoutToken(t *testing.T) {
	store := newTestStore(t, "")
	redirects := 0

	g := New(store, &fakeFetcher{}, func() { redirects++ })
	s, err := g.Check()
	assert.NoError(t, err)
	assert.Equal(t, StateRedirecting, s)
	assert.Equal(t, 1, redirects)
}

func TestCheckRejectionClearsStaleSession(t *testing.T) {
	store := newTestStore(t, "expired-tok")
	fetcher := &fakeFetcher{err: api.ErrUnauthorized}

	g := New(store, fetcher, nil)
	s, err := g.Check()
	assert.NoError(t, err)
	assert.Equal(t, StateRedirecting, s)
	assert.False(t, store.IsLoggedIn())
}

func TestCheckOutageLeavesGateUndecided(t *testing.T) {
	store := newTestStore(t, "tok")
	fetcher := &fakeFetcher{err: api.ErrServerUnavailable}

	g := New(store, fetcher, func() { t.Fatal("outage must not redirect") })
	s, err := g.Check()
	assert.ErrorIs(t, err, api.ErrServerUnavailable)
	assert.Equal(t, StateChecking, s)
	// The session is kept so a later retry can succeed.
	assert.True(t, store.IsLoggedIn())
}

func TestConcurrentChecksRedirectOnce(t *testing.T) {
	store := newTestStore(t, "expired-tok")
	fetcher := &fakeFetcher{err: api.ErrUnauthorized}

	var redirects atomic.Int32
	g := New(store, fetcher, func() { redirects.Inc() })

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := g.Check()
			assert.NoError(t, err)
			assert.Equal(t, StateRedirecting, s)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, redirects.Load())
}
