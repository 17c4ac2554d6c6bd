package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/alfajarsadiq/admincontrol/pkg/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func TestLoadMissingFileStartsLoggedOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	s, err := Load(path, testLogger())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.LoggedIn() {
		t.Error("expected logged-out session for missing file")
	}
	if s.Profile() != nil {
		t.Error("expected nil profile")
	}
}

func TestUpdatePersistsAcrossLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	s, err := Load(path, testLogger())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	profile := &models.AdminProfile{
		ID:    "u1",
		Name:  "Priya",
		Email: "priya@example.com",
		Role:  models.RoleAdmin,
	}
	if err := s.Update(profile, "token-abc"); err != nil {
		t.Fatalf("Update: %v", err)
	}

	restored, err := Load(path, testLogger())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !restored.LoggedIn() {
		t.Fatal("expected restored session to be logged in")
	}
	if restored.Token() != "token-abc" {
		t.Errorf("token = %q, want token-abc", restored.Token())
	}
	if p := restored.Profile(); p == nil || p.Email != "priya@example.com" || p.Role != models.RoleAdmin {
		t.Errorf("unexpected restored profile: %+v", p)
	}
}

func TestTeardownClearsMemoryAndDiskAndFiresHook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	s, err := Load(path, testLogger())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := s.Update(&models.AdminProfile{ID: "u1", Email: "a@b.c", Role: models.RoleStandard}, "tok"); err != nil {
		t.Fatalf("Update: %v", err)
	}

	var hookCalls int
	s.OnTeardown(func() { hookCalls++ })

	s.Teardown()

	if s.LoggedIn() {
		t.Error("session still logged in after teardown")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("session file still exists after teardown")
	}
	if hookCalls != 1 {
		t.Errorf("hook calls = %d, want 1", hookCalls)
	}

	// Tearing down an already logged-out session must not refire the hook.
	s.Teardown()
	if hookCalls != 1 {
		t.Errorf("hook calls after second teardown = %d, want 1", hookCalls)
	}
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path, testLogger()); err == nil {
		t.Error("expected error for corrupt session file")
	}
}
