// Package state persists the partner CLI's local session between runs.
// The store keeps exactly two entries, the access token and the cached
// identity, in a single JSON state file. The cached identity is a display
// hint; the server remains the source of truth for who is logged in.
package state

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/bazaarpanel/bazaar/database/model"

	json "github.com/goccy/go-json"
)

const stateFileMode = 0o600

// Session is the on-disk shape of the stored session.
type Session struct {
	AccessToken string          `json:"accessToken"`
	Identity    *model.Identity `json:"identity"`
}

// Store is a file-backed session store. It is initialized exactly once per
// process; later Initialize calls are no-ops.
type Store struct {
	mu       sync.Mutex
	path     string
	session  Session
	initOnce sync.Once
	initErr  error
}

// NewStore creates a store over the given state file path. The file is not
// touched until Initialize.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath places the state file under the user config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "bazaar", "partner.json")
}

// Initialize loads the state file. A missing file and a corrupt file both
// start an empty session; only I/O errors other than absence are reported.
// Repeated calls return the first outcome.
func (s *Store) Initialize() error {
	s.initOnce.Do(func() {
		data, err := os.ReadFile(s.path)
		if err != nil {
			if !os.IsNotExist(err) {
				s.initErr = err
			}
			return
		}
		var sess Session
		if err := json.Unmarshal(data, &sess); err != nil {
			// Unreadable state is treated as no session rather than an error.
			return
		}
		s.mu.Lock()
		s.session = sess
		s.mu.Unlock()
	})
	return s.initErr
}

// Login stores the token and identity together and persists them.
func (s *Store) Login(token string, identity *model.Identity) error {
	s.mu.Lock()
	s.session = Session{AccessToken: token, Identity: identity}
	s.mu.Unlock()
	return s.persist()
}

// Logout clears the session. Calling it with no session stored is harmless.
func (s *Store) Logout() error {
	s.mu.Lock()
	s.session = Session{}
	s.mu.Unlock()
	return s.persist()
}

// Token returns the stored access token, empty when logged out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.AccessToken
}

// Identity returns the cached identity hint, nil when logged out.
func (s *Store) Identity() *model.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Identity
}

// IsLoggedIn reports whether a token is present locally. It says nothing
// about whether the server still accepts it.
func (s *Store) IsLoggedIn() bool {
	return s.Token() != ""
}

// persist writes the session through a temp file rename so a crash never
// leaves a half-written state file behind.
func (s *Store) persist() error {
	s.mu.Lock()
	data, err := json.Marshal(s.session)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, stateFileMode); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
