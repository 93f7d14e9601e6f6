// Package gate decides whether the partner CLI may proceed with an
// authenticated command or must send the user back to login. The locally
// cached identity is never trusted on its own: the gate re-verifies the
// session against the panel before admitting a command.
package gate

import (
	"errors"

	"github.com/bazaarpanel/bazaar/database/model"
	"github.com/bazaarpanel/bazaar/partnercli/api"
	"github.com/bazaarpanel/bazaar/partnercli/state"

	"go.uber.org/atomic"
)

// State is the gate's decision state.
type State int32

const (
	// StateChecking means no decision has been made yet.
	StateChecking State = iota
	// StateAuthenticated admits the command.
	StateAuthenticated
	// StateRedirecting means the session was rejected and the user is being
	// sent to login.
	StateRedirecting
)

// IdentityFetcher is the slice of the API client the gate needs.
type IdentityFetcher interface {
	Me() (*model.Identity, error)
}

// Gate verifies the stored session once and settles into a terminal state.
// Concurrent checks agree on a single decision; the redirect callback runs
// at most once no matter how many callers race through.
type Gate struct {
	store    *state.Store
	fetcher  IdentityFetcher
	redirect func()

	state    atomic.Int32
	identity atomic.Pointer[model.Identity]
}

// New builds a gate over the session store. The redirect callback is invoked
// exactly once when the gate decides the user must log in again.
func New(store *state.Store, fetcher IdentityFetcher, redirect func()) *Gate {
	return &Gate{store: store, fetcher: fetcher, redirect: redirect}
}

// State returns the current decision state.
func (g *Gate) State() State {
	return State(g.state.Load())
}

// Identity returns the server-verified identity once the gate has admitted
// the caller, nil otherwise.
func (g *Gate) Identity() *model.Identity {
	return g.identity.Load()
}

// Check verifies the stored session against the panel and settles the gate.
// A missing token or a server rejection moves the gate to StateRedirecting
// and clears the stale local session. A panel outage leaves the gate
// undecided and surfaces the error so the caller can retry.
func (g *Gate) Check() (State, error) {
	if s := g.State(); s != StateChecking {
		return s, nil
	}

	if !g.store.IsLoggedIn() {
		return g.reject(false), nil
	}

	identity, err := g.fetcher.Me()
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return g.reject(true), nil
		}
		return StateChecking, err
	}

	if g.state.CompareAndSwap(int32(StateChecking), int32(StateAuthenticated)) {
		g.identity.Store(identity)
	}
	return g.State(), nil
}

// reject moves the gate to StateRedirecting. Only the winning caller runs the
// redirect and clears the stored session.
func (g *Gate) reject(clearStore bool) State {
	if g.state.CompareAndSwap(int32(StateChecking), int32(StateRedirecting)) {
		if clearStore {
			_ = g.store.Logout()
		}
		if g.redirect != nil {
			g.redirect()
		}
	}
	return g.State()
}
