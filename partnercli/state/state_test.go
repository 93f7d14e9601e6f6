package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bazaarpanel/bazaar/database/model"

	"github.com/stretchr/testify/assert"
)

func testStorePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "partner.json")
}

func TestStoreRoundTrip(t *testing.T) {
	path := testStorePath(t)

	store := NewStore(path)
	assert.NoError(t, store.Initialize())
	assert.False(t, store.IsLoggedIn())
	assert.Nil(t, store.Identity())

	identity := &model.Identity{Id: 3, Email: "p@example.com", Name: "P", Role: model.RoleVendor}
	assert.NoError(t, store.Login("tok-abc", identity))
	assert.True(t, store.IsLoggedIn())
	assert.Equal(t, "tok-abc", store.Token())

	// A fresh store over the same file sees the persisted session.
	reloaded := NewStore(path)
	assert.NoError(t, reloaded.Initialize())
	assert.True(t, reloaded.IsLoggedIn())
	assert.Equal(t, "tok-abc", reloaded.Token())
	if assert.NotNil(t, reloaded.Identity()) {
		assert.Equal(t, "p@example.com", reloaded.Identity().Email)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	path := testStorePath(t)

	store := NewStore(path)
	assert.NoError(t, store.Initialize())
	assert.NoError(t, store.Login("tok", &model.Identity{Id: 1}))

	assert.NoError(t, store.Logout())
	assert.False(t, store.IsLoggedIn())
	// Logging out again is harmless.
	assert.NoError(t, store.Logout())
	assert.False(t, store.IsLoggedIn())
}

func TestCorruptStateFileMeansNoSession(t *testing.T) {
	path := testStorePath(t)
	assert.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store := NewStore(path)
	assert.NoError(t, store.Initialize())
	assert.False(t, store.IsLoggedIn())
	assert.Nil(t, store.Identity())

	// The store recovers by writing a fresh session over the bad file.
	assert.NoError(t, store.Login("tok-new", &model.Identity{Id: 2}))
	reloaded := NewStore(path)
	assert.NoError(t, reloaded.Initialize())
	assert.Equal(t, "tok-new", reloaded.Token())
}

func TestInitializeRunsOnce(t *testing.T) {
	path := testStorePath(t)

	store := NewStore(path)
	assert.NoError(t, store.Initialize())
	assert.NoError(t, store.Login("tok", &model.Identity{Id: 1}))

	// A second Initialize does not clobber the in-memory session even though
	// another process may have rewritten the file.
	assert.NoError(t, os.WriteFile(path, []byte(`{"accessToken":"other"}`), 0o600))
	assert.NoError(t, store.Initialize())
	assert.Equal(t, "tok", store.Token())
}
