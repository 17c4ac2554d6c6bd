package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/alfajarsadiq/admincontrol/pkg/models"
)

// Session is the process-wide mutable auth state: the logged-in profile and
// its bearer token, kept in memory and mirrored to a JSON file so a restart
// picks up where the operator left off. Teardown clears both and fires the
// registered logout hook.
type Session struct {
	mu         sync.RWMutex
	path       string
	profile    *models.AdminProfile
	token      string
	onTeardown func()
	logger     *logrus.Logger
}

type persisted struct {
	Profile *models.AdminProfile `json:"profile"`
	Token   string               `json:"token"`
}

// Load initializes the session from the file at path. A missing file yields a
// logged-out session; a corrupt file is an error so the operator notices
// instead of silently losing their login.
func Load(path string, logger *logrus.Logger) (*Session, error) {
	s := &Session{path: path, logger: logger}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}

	s.profile = p.Profile
	s.token = p.Token
	if s.profile != nil {
		logger.WithFields(logrus.Fields{
			"email": s.profile.Email,
			"role":  s.profile.Role,
		}).Info("Restored persisted session")
	}
	return s, nil
}

// OnTeardown registers the hook invoked when the session is torn down. The
// dashboard equivalent is the forced navigation back to the login page.
func (s *Session) OnTeardown(fn func()) {
	s.mu.Lock()
	s.onTeardown = fn
	s.mu.Unlock()
}

func (s *Session) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile != nil && s.token != ""
}

// Profile returns a copy of the current profile, or nil when logged out.
func (s *Session) Profile() *models.AdminProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Update replaces the profile and token in memory and on disk.
func (s *Session) Update(profile *models.AdminProfile, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profile = profile
	s.token = token
	return s.persistLocked()
}

// Teardown logs the session out: memory and the persisted file are cleared
// and the logout hook fires. Safe to call on an already logged-out session;
// the hook only fires when there was something to tear down.
func (s *Session) Teardown() {
	s.mu.Lock()
	wasLoggedIn := s.profile != nil || s.token != ""
	s.profile = nil
	s.token = ""
	hook := s.onTeardown

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		s.logger.WithError(err).Warn("Failed to remove session file")
	}
	s.mu.Unlock()

	if wasLoggedIn {
		s.logger.Info("Session torn down")
		if hook != nil {
			hook()
		}
	}
}

func (s *Session) persistLocked() error {
	data, err := json.Marshal(persisted{Profile: s.profile, Token: s.token})
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}
