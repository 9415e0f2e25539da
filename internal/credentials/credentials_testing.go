package credentials

import (
	"path/filepath"
	"testing"

	"github.com/zalando/go-keyring"

	"lab/internal/config"
)

// credentials_testing.go provides a Store for tests that never touches the
// developer's real keyring or config file.
//
// keyring.MockInit swaps the process-wide keyring provider for an in-memory
// one, so tests that use NewTestStore must not run in parallel with tests
// that expect the real keyring.

// NewTestStore returns a Store backed by an in-memory keyring and a config
// file in a temporary directory. GIT_LAB_CONFIG points at that file for the
// rest of the test so that code calling Open sees the same config.
func NewTestStore(t *testing.T) *Store {
	t.Helper()

	keyring.MockInit()

	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv(config.EnvConfigPath, path)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("failed to load test config: %v", err)
	}
	return New(cfg, Service, nil)
}
